package dbmove

import (
	"database/sql"

	"github.com/arikos/dbmove/dblog"
	"github.com/arikos/dbmove/dialect"
)

// config holds everything an Option can set. It is assembled once per
// ExecuteMigrations call and never mutated afterward.
type config struct {
	nativeSources []NativeSource
	logger        *dblog.Logger
	openDB        func(driverName, connectionString string) (*sql.DB, error)
}

// Option customizes an ExecuteMigrations run beyond its three required
// parameters.
type Option func(*config)

// WithNativeSource registers one or more collaborators that supply native
// (compiled Go) migration units. Without this option, the engine applies
// only the SQL units it finds in migrationsPath.
func WithNativeSource(sources ...NativeSource) Option {
	return func(c *config) {
		c.nativeSources = append(c.nativeSources, sources...)
	}
}

// WithLogger sets the structured logging sink. Without this option, the
// engine logs nowhere.
func WithLogger(logger *dblog.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

// withOpenDB overrides how the engine opens its database/sql connection.
// Exposed only to this package's own tests, which substitute an
// already-open *sql.DB rather than dialing out.
func withOpenDB(fn func(driverName, connectionString string) (*sql.DB, error)) Option {
	return func(c *config) {
		c.openDB = fn
	}
}

func buildConfig(opts []Option) *config {
	c := &config{
		logger: dblog.NewNop(),
		openDB: func(driverName, connectionString string) (*sql.DB, error) {
			return sql.Open(driverName, connectionString)
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ExecuteMigrations is the engine's single entrypoint, matching spec §6.1:
// given a target dialect, a connection string, and a migrations directory,
// it advances the database to the latest declared schema state by applying
// every previously-unapplied migration exactly once, in ascending version
// order, halting the run on the first failure.
func ExecuteMigrations(dbType, connectionString, migrationsPath string, opts ...Option) error {
	c := buildConfig(opts)
	return run(c, dbType, connectionString, migrationsPath)
}

// ExecuteMigrationsDryRun performs the read-only steps of ExecuteMigrations:
// it scans, parses, merges, sorts, and checks for duplicate versions, then —
// if a connection is available and the version-info table exists — reports
// which jobs are already applied. It never creates or writes to the
// version-info table and never begins a transaction.
func ExecuteMigrationsDryRun(dbType, connectionString, migrationsPath string, opts ...Option) ([]DryRunEntry, error) {
	c := buildConfig(opts)
	return dryRun(c, dbType, connectionString, migrationsPath)
}

// DryRunEntry describes one job as ExecuteMigrationsDryRun would report it.
type DryRunEntry struct {
	Version        uint64
	Description    string
	Kind           JobKind
	AlreadyApplied bool
}

func resolveDialect(dbType string) (dialect.Dialect, error) {
	d, err := dialect.Lookup(dbType)
	if err != nil {
		return nil, newError(KindUnsupportedDialect, dbType, err)
	}
	return d, nil
}

func gatherJobs(c *config, migrationsPath string) ([]Job, error) {
	entries, err := scan(migrationsPath)
	if err != nil {
		return nil, err
	}

	sqlUnits := scanSQLUnits(migrationsPath, entries)

	var nativeUnits []NativeMigration
	for _, src := range c.nativeSources {
		migs, err := src.Load()
		if err != nil {
			return nil, newError(KindLoaderFailure, "load native migrations", err)
		}
		nativeUnits = append(nativeUnits, migs...)
	}

	return createJobs(nativeUnits, sqlUnits)
}
