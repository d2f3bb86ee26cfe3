package dbmove

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/arikos/dbmove/dblog"
)

// errorLogger is the narrow slice of *dblog.Logger that applyJob needs.
type errorLogger interface {
	Error(msg string, fields ...zap.Field)
}

var _ errorLogger = (*dblog.Logger)(nil)

// run drives the ordered application of jobs against the target database.
// Steps follow spec §4.7 exactly: validate the directory, build the job
// list, bail out early if there's nothing to do, ensure and load the
// version-info table, then walk the jobs in ascending version order,
// skipping what's already applied, warning on (but not rejecting)
// out-of-order application, and halting the whole run on the first
// failure.
func run(c *config, dbType, connectionString, migrationsPath string) error {
	ctx := context.Background()

	d, err := resolveDialect(dbType)
	if err != nil {
		return err
	}

	jobs, err := gatherJobs(c, migrationsPath)
	if err != nil {
		return err
	}

	if len(jobs) == 0 {
		c.logger.Warn("no migrations found", zap.String("path", migrationsPath))
		c.logger.Info("migration run complete", zap.Int("applied", 0), zap.Int("total", 0))
		return nil
	}

	db, err := c.openDB(d.DriverName(), connectionString)
	if err != nil {
		return newError(KindVersionStoreError, "open database connection", err)
	}
	defer db.Close()

	store := NewVersionStore(db, d)
	if err := store.Ensure(ctx); err != nil {
		return err
	}
	if _, err := store.Load(ctx); err != nil {
		return err
	}

	proc := NewProcessor(db, d)
	sink := NewErrorLogSink(c.logger)

	applied := 0
	for _, job := range jobs {
		if store.Has(job.Version) {
			c.logger.Info(fmt.Sprintf("Skipping already applied migration (from previous run): %d", job.Version))
			continue
		}

		if maxSoFar := store.MaxApplied(); maxSoFar > 0 && job.Version < maxSoFar {
			c.logger.Warn(fmt.Sprintf(
				"Applying out-of-order migration: Version %d is being applied after a higher version %d has already been applied.",
				job.Version, maxSoFar,
			))
		}

		if err := applyJob(ctx, proc, store, sink, c.logger, job); err != nil {
			return err
		}
		applied++
	}

	c.logger.Info("migration run complete", zap.Int("applied", applied), zap.Int("total", len(jobs)))
	return nil
}

// applyJob begins a transaction, applies one job inside it, records its
// version, and commits — or rolls back and halts the run on any failure
// along the way.
func applyJob(ctx context.Context, proc *Processor, store *VersionStore, sink *ErrorLogSink, logger errorLogger, job Job) error {
	if err := proc.Begin(ctx); err != nil {
		return newError(KindVersionStoreError, "begin transaction", err)
	}

	if err := applyJobBody(ctx, proc, store, job); err != nil {
		if rbErr := proc.Rollback(); rbErr != nil {
			logger.Error(fmt.Sprintf("rollback failed for migration %d: %v", job.Version, rbErr))
		}

		message := fmt.Sprintf(
			"CRITICAL ERROR applying %s migration %d (%s). Halting execution.",
			job.Kind, job.Version, job.Source(),
		)
		logger.Error(message)
		sink.Append(fmt.Sprintf("%s: %v", message, err))

		return newError(KindMigrationFailed, fmt.Sprintf("version %d (%s)", job.Version, job.Source()), err)
	}

	if err := proc.Commit(); err != nil {
		return newError(KindVersionStoreError, fmt.Sprintf("commit version %d", job.Version), err)
	}
	return nil
}

// applyJobBody runs the job's apply step and records its version, both
// inside the caller's already-open transaction. The version table is
// always written by the orchestrator, never by a native migration's own
// apply routine — the single-writer model recommended in spec §9.
func applyJobBody(ctx context.Context, proc *Processor, store *VersionStore, job Job) error {
	switch job.Kind {
	case JobNative:
		if err := proc.ExecuteNative(ctx, job.Apply); err != nil {
			return err
		}
	case JobSQL:
		scriptText, err := readScript(job.ScriptPath)
		if err != nil {
			return err
		}
		if err := proc.Execute(ctx, scriptText); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown job kind %v", job.Kind)
	}

	return store.Record(ctx, proc.Executor(), job.Version, job.Description)
}

// dryRun performs scanning, parsing, merging, sorting, and duplicate
// detection, then — if the database is reachable — annotates each job with
// whether it is already applied. It never opens a transaction and never
// writes to the version-info table.
func dryRun(c *config, dbType, connectionString, migrationsPath string) ([]DryRunEntry, error) {
	ctx := context.Background()

	d, err := resolveDialect(dbType)
	if err != nil {
		return nil, err
	}

	jobs, err := gatherJobs(c, migrationsPath)
	if err != nil {
		return nil, err
	}

	entries := make([]DryRunEntry, len(jobs))
	for i, job := range jobs {
		entries[i] = DryRunEntry{Version: job.Version, Description: job.Description, Kind: job.Kind}
	}

	db, err := c.openDB(d.DriverName(), connectionString)
	if err != nil {
		// A dry run should still produce the ordered job list even if the
		// database is unreachable; only the "already applied" annotation
		// is skipped.
		return entries, nil
	}
	defer db.Close()

	// The version table is not created here; if it does not exist yet, Load
	// fails and every entry is reported as not applied.
	store := NewVersionStore(db, d)
	if _, err := store.Load(ctx); err != nil {
		return entries, nil
	}
	for i := range entries {
		entries[i].AlreadyApplied = store.Has(entries[i].Version)
	}
	return entries, nil
}
