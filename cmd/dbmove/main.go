// Command dbmove is a thin shell around the dbmove engine: it parses flags,
// wires a logger, and calls ExecuteMigrations (or, with -n, previews the job
// list via ExecuteMigrationsDryRun). All migration logic lives in the
// dbmove package; this binary owns none of it.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/Masterminds/semver"

	"github.com/arikos/dbmove"
	"github.com/arikos/dbmove/dblog"
)

// engineVersion is dbmove's own release version, reported by the `version`
// subcommand. It has nothing to do with migration version numbers, which
// are plain uint64s.
const engineVersion = "0.1.0"

func main() {
	if len(os.Args) > 1 && os.Args[1] == "version" {
		runVersion()
		return
	}

	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitCodeFor(err))
	}
}

func runVersion() {
	v, err := semver.NewVersion(engineVersion)
	if err != nil {
		fmt.Fprintf(os.Stderr, "dbmove: invalid engine version %q: %v\n", engineVersion, err)
		os.Exit(1)
	}
	fmt.Printf("dbmove %s\n", v)
}

type cliArgs struct {
	dbType           string
	connection       string
	path             string
	verbose          bool
	quiet            bool
	dryRun           bool
	nativePluginsDir string
}

func parseArgs(args []string) (*cliArgs, error) {
	fs := flag.NewFlagSet("dbmove", flag.ContinueOnError)

	a := &cliArgs{}
	for _, name := range []string{"t", "type"} {
		fs.StringVar(&a.dbType, name, "", "target dialect: SqlServer, PostgreSql, or SQLite")
	}
	for _, name := range []string{"c", "connection"} {
		fs.StringVar(&a.connection, name, "", "database connection string")
	}
	for _, name := range []string{"p", "path"} {
		fs.StringVar(&a.path, name, "", "migrations directory")
	}
	for _, name := range []string{"v", "verbose"} {
		fs.BoolVar(&a.verbose, name, false, "lower the log threshold to Trace")
	}
	for _, name := range []string{"q", "quiet"} {
		fs.BoolVar(&a.quiet, name, false, "raise the log threshold to Error")
	}
	for _, name := range []string{"n", "dry-run"} {
		fs.BoolVar(&a.dryRun, name, false, "preview the ordered job list without applying it")
	}
	fs.StringVar(&a.nativePluginsDir, "native-plugins", "", "optional directory of *.so native migration artifacts")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if a.dbType == "" || a.connection == "" || a.path == "" {
		return nil, fmt.Errorf("dbmove: -t/--type, -c/--connection, and -p/--path are all required")
	}
	return a, nil
}

func run(args []string) error {
	a, err := parseArgs(args)
	if err != nil {
		return &argError{err}
	}

	logger := dblog.New(a.verbose, a.quiet)
	defer logger.Sync()

	opts := []dbmove.Option{dbmove.WithLogger(logger)}
	if a.nativePluginsDir != "" {
		opts = append(opts, dbmove.WithNativeSource(dbmove.PluginNativeSource{
			Dir:    a.nativePluginsDir,
			Logger: logger,
		}))
	}

	if a.dryRun {
		entries, err := dbmove.ExecuteMigrationsDryRun(a.dbType, a.connection, a.path, opts...)
		if err != nil {
			return err
		}
		printDryRun(entries)
		return nil
	}

	return dbmove.ExecuteMigrations(a.dbType, a.connection, a.path, opts...)
}

func printDryRun(entries []dbmove.DryRunEntry) {
	for _, e := range entries {
		status := "pending"
		if e.AlreadyApplied {
			status = "applied"
		}
		fmt.Printf("%d\t%s\t%s\t%s\n", e.Version, e.Kind, status, e.Description)
	}
}

// argError marks a flag-parsing failure, which exits with code 1 per
// spec §6.1's CLI exit code table. Anything else (an engine error) exits
// with a negative code, per the same table.
type argError struct{ err error }

func (e *argError) Error() string { return e.err.Error() }
func (e *argError) Unwrap() error { return e.err }

func exitCodeFor(err error) int {
	if _, ok := err.(*argError); ok {
		return 1
	}
	return -1
}
