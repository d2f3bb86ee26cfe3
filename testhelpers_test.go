package dbmove

import (
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	_ "modernc.org/sqlite"

	"github.com/stretchr/testify/require"
)

// writeFile writes a migration fixture file named name into dir, creating
// dir if necessary.
func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0o755))
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func writeDir(path string) error {
	return os.MkdirAll(path, 0o755)
}

// newTestDB opens a fresh in-memory SQLite database, one per call. Pinned
// to a single connection: database/sql pools connections, and a second
// connection to ":memory:" opens its own private database, making anything
// written on one connection invisible on another.
func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, db.Ping())
	return db
}

// newTestDBPath returns the path to a temp-file SQLite database, per
// spec test-tooling guidance to use a real file once a test needs the
// database to survive being closed and reopened by separate
// ExecuteMigrations calls, the way an in-memory database cannot.
func newTestDBPath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "dbmove-test.db")
}

// testOpenDBAtPath is passed to withOpenDB so repeated ExecuteMigrations
// calls each open their own connection to the same on-disk database,
// mirroring how the engine opens and closes a connection per call in
// production.
func testOpenDBAtPath(path string) func(driverName, connectionString string) (*sql.DB, error) {
	return func(driverName, _ string) (*sql.DB, error) {
		db, err := sql.Open(driverName, path)
		if err != nil {
			return nil, err
		}
		db.SetMaxOpenConns(1)
		return db, nil
	}
}
