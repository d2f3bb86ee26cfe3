package dbmove

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/sqlscan"

	"github.com/arikos/dbmove/dialect"
)

// VersionTableName is the fixed name of the version-info table, per
// spec §6.3. The engine never drops it.
const VersionTableName = "VersionInfo"

// VersionStore reads and writes the version-info table. Its in-memory
// Applied Set is loaded once at the start of a run (Load) and grows as
// versions are recorded during the run (Record updates it too), matching
// the has() semantics of spec §4.5: membership is checked against the set
// that was loaded plus anything recorded since.
type VersionStore struct {
	db      *sql.DB
	dialect dialect.Dialect
	table   string

	applied map[uint64]struct{}
}

// NewVersionStore returns a VersionStore bound to db using d's DDL/DML
// dialect.
func NewVersionStore(db *sql.DB, d dialect.Dialect) *VersionStore {
	return &VersionStore{db: db, dialect: d, table: VersionTableName, applied: map[uint64]struct{}{}}
}

// Ensure creates the version-info table if it does not already exist.
func (v *VersionStore) Ensure(ctx context.Context) error {
	if _, err := v.db.ExecContext(ctx, v.dialect.VersionTableDDL(v.table)); err != nil {
		return newError(KindVersionStoreError, "ensure version table", err)
	}
	return nil
}

// Load reads every version currently recorded in the version-info table
// into the in-memory Applied Set, which Load also returns as a plain map.
// The Orchestrator ignores the returned map and uses Has and MaxApplied.
func (v *VersionStore) Load(ctx context.Context) (map[uint64]struct{}, error) {
	query, args, err := squirrel.Select("Version").
		From(v.dialect.TableRef(v.table)).
		PlaceholderFormat(v.dialect.PlaceholderFormat()).
		ToSql()
	if err != nil {
		return nil, newError(KindVersionStoreError, "build load query", err)
	}

	var versions []uint64
	if err := sqlscan.Select(ctx, v.db, &versions, query, args...); err != nil {
		return nil, newError(KindVersionStoreError, "load applied versions", err)
	}

	v.applied = make(map[uint64]struct{}, len(versions))
	for _, ver := range versions {
		v.applied[ver] = struct{}{}
	}
	return v.applied, nil
}

// Has reports whether version is in the Applied Set — either loaded at the
// start of the run, or recorded since.
func (v *VersionStore) Has(version uint64) bool {
	_, ok := v.applied[version]
	return ok
}

// MaxApplied returns the highest version in the Applied Set, or 0 if it is
// empty.
func (v *VersionStore) MaxApplied() uint64 {
	var max uint64
	for ver := range v.applied {
		if ver > max {
			max = ver
		}
	}
	return max
}

// Record inserts a row for version into the version-info table, using exec
// so the insert participates in the job's active transaction, and marks
// version applied in the in-memory set. A duplicate-key failure here (the
// Applied Set gate should have prevented it) is surfaced as a
// VersionStoreError, per the idempotence backstop in spec §4.5.
func (v *VersionStore) Record(ctx context.Context, exec Executor, version uint64, description string) error {
	query, args, err := squirrel.Insert(v.dialect.TableRef(v.table)).
		Columns("Version", "AppliedOn", "Description").
		Values(version, time.Now().UTC(), description).
		PlaceholderFormat(v.dialect.PlaceholderFormat()).
		ToSql()
	if err != nil {
		return newError(KindVersionStoreError, "build record query", err)
	}
	if _, err := exec.ExecContext(ctx, query, args...); err != nil {
		return newError(KindVersionStoreError, fmt.Sprintf("record version %d", version), err)
	}
	v.applied[version] = struct{}{}
	return nil
}
