package dbmove

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func countRows(t *testing.T, db *sql.DB, table string) int {
	t.Helper()
	var n int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM "+table).Scan(&n))
	return n
}

// openTestDB opens a fresh connection to the temp-file database at path,
// for inspecting state after a run has closed its own connection.
func openTestDB(t *testing.T, path string) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestExecuteMigrationsMissingDirectory(t *testing.T) {
	opt := withOpenDB(testOpenDBAtPath(newTestDBPath(t)))
	err := ExecuteMigrations("SQLite", "ignored", "/nonexistent/migrations", opt)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDirectoryMissing)
}

func TestExecuteMigrationsEmptyDirectorySucceeds(t *testing.T) {
	opt := withOpenDB(testOpenDBAtPath(newTestDBPath(t)))
	err := ExecuteMigrations("SQLite", "ignored", t.TempDir(), opt)
	require.NoError(t, err)
}

func TestExecuteMigrationsMixedCleanApply(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "000000000001_create_widgets.sql", "CREATE TABLE widgets (id INTEGER);")
	writeFile(t, dir, "000000000003_create_gadgets.sql", "CREATE TABLE gadgets (id INTEGER);")

	path := newTestDBPath(t)
	nativeApplied := false
	native := StaticNativeSource{Migrations: []NativeMigration{
		{
			Version:     2,
			Description: "seed widget rows",
			Apply: func(ctx context.Context, exec Executor) error {
				nativeApplied = true
				_, err := exec.ExecContext(ctx, "INSERT INTO widgets (id) VALUES (1);")
				return err
			},
		},
	}}

	err := ExecuteMigrations("SQLite", "ignored", dir,
		withOpenDB(testOpenDBAtPath(path)),
		WithNativeSource(native),
	)
	require.NoError(t, err)
	assert.True(t, nativeApplied)

	db := openTestDB(t, path)
	assert.Equal(t, 3, countRows(t, db, VersionTableName))
	assert.Equal(t, 1, countRows(t, db, "widgets"))
}

func TestExecuteMigrationsRerunIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "000000000001_create_widgets.sql", "CREATE TABLE widgets (id INTEGER);")

	path := newTestDBPath(t)
	opt := withOpenDB(testOpenDBAtPath(path))

	require.NoError(t, ExecuteMigrations("SQLite", "ignored", dir, opt))
	require.NoError(t, ExecuteMigrations("SQLite", "ignored", dir, opt))

	db := openTestDB(t, path)
	assert.Equal(t, 1, countRows(t, db, VersionTableName))
}

func TestExecuteMigrationsOutOfOrderStillApplies(t *testing.T) {
	dir := t.TempDir()
	path := newTestDBPath(t)
	opt := withOpenDB(testOpenDBAtPath(path))

	writeFile(t, dir, "000000000005_create_widgets.sql", "CREATE TABLE widgets (id INTEGER);")
	require.NoError(t, ExecuteMigrations("SQLite", "ignored", dir, opt))

	// A lower-numbered migration shows up after version 5 has already been
	// applied; the run must still apply it rather than rejecting it.
	writeFile(t, dir, "000000000002_create_gadgets.sql", "CREATE TABLE gadgets (id INTEGER);")
	require.NoError(t, ExecuteMigrations("SQLite", "ignored", dir, opt))

	db := openTestDB(t, path)
	assert.Equal(t, 2, countRows(t, db, VersionTableName))
}

func TestExecuteMigrationsFailureHaltsRunAndRollsBack(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "000000000001_create_widgets.sql", "CREATE TABLE widgets (id INTEGER);")
	writeFile(t, dir, "000000000002_broken.sql", "THIS IS NOT VALID SQL;")
	writeFile(t, dir, "000000000003_create_gadgets.sql", "CREATE TABLE gadgets (id INTEGER);")

	path := newTestDBPath(t)
	err := ExecuteMigrations("SQLite", "ignored", dir, withOpenDB(testOpenDBAtPath(path)))
	require.Error(t, err)
	kind, ok := KindOf(err)
	require.True(t, ok)
	assert.Equal(t, KindMigrationFailed, kind)

	// Version 1 committed before the failure; version 3 never ran.
	db := openTestDB(t, path)
	assert.Equal(t, 1, countRows(t, db, VersionTableName))
	var name string
	scanErr := db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name='gadgets'").Scan(&name)
	assert.Error(t, scanErr)
}

func TestExecuteMigrationsRejectsDuplicateVersion(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "000000000001_a.sql", "CREATE TABLE a (id INTEGER);")
	writeFile(t, dir, "000000000001_b.sql", "CREATE TABLE b (id INTEGER);")

	opt := withOpenDB(testOpenDBAtPath(newTestDBPath(t)))
	err := ExecuteMigrations("SQLite", "ignored", dir, opt)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDuplicateVersion)
}

func TestExecuteMigrationsDryRunNeverMutatesDatabase(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "000000000001_create_widgets.sql", "CREATE TABLE widgets (id INTEGER);")

	path := newTestDBPath(t)
	entries, err := ExecuteMigrationsDryRun("SQLite", "ignored", dir, withOpenDB(testOpenDBAtPath(path)))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.False(t, entries[0].AlreadyApplied)

	db := openTestDB(t, path)
	var name string
	scanErr := db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name='widgets'").Scan(&name)
	assert.Error(t, scanErr, "dry run must not create the table it previewed")

	scanErr = db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name=?", VersionTableName).Scan(&name)
	assert.Error(t, scanErr, "dry run must not create the version table either")
}

func TestExecuteMigrationsDryRunAnnotatesAlreadyApplied(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "000000000001_create_widgets.sql", "CREATE TABLE widgets (id INTEGER);")

	opt := withOpenDB(testOpenDBAtPath(newTestDBPath(t)))
	require.NoError(t, ExecuteMigrations("SQLite", "ignored", dir, opt))

	entries, err := ExecuteMigrationsDryRun("SQLite", "ignored", dir, opt)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.True(t, entries[0].AlreadyApplied)
}
