// Package dialect holds the per-database knowledge the migration engine
// needs beyond "send this SQL over this connection": identifier quoting,
// default schema, the version-info table DDL, the database/sql driver
// name to open with, and the squirrel placeholder format its query builder
// must use.
package dialect

import (
	"fmt"

	"github.com/Masterminds/squirrel"

	// Driver registrations. Each import's side effect is registering a
	// database/sql driver name; the dialects below open connections
	// through database/sql so the rest of the engine never imports a
	// driver package directly.
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/microsoft/go-mssqldb"
	_ "modernc.org/sqlite"
)

// Kind identifies a supported target database.
type Kind string

const (
	SqlServer  Kind = "SqlServer"
	PostgreSql Kind = "PostgreSql"
	SQLite     Kind = "SQLite"
)

// Dialect captures everything about a target database that the engine's
// dialect-agnostic core needs in order to talk to the version-info table.
type Dialect interface {
	// Kind returns the dialect's own identifier, for log messages.
	Kind() Kind
	// DriverName is the database/sql driver name to pass to sql.Open.
	DriverName() string
	// QuoteIdent quotes a single identifier per the dialect's rules.
	QuoteIdent(name string) string
	// DefaultSchema returns the dialect's default schema, or "" if the
	// dialect has no schema concept (SQLite).
	DefaultSchema() string
	// TableRef returns the schema-qualified, quoted reference to
	// tableName, suitable for use in SQL statements.
	TableRef(tableName string) string
	// VersionTableDDL returns the CREATE TABLE / CREATE INDEX statements
	// needed to create the version-info table if it does not exist.
	VersionTableDDL(tableName string) string
	// PlaceholderFormat is the squirrel placeholder style this dialect's
	// driver expects.
	PlaceholderFormat() squirrel.PlaceholderFormat
	// SplitsBatches reports whether script text must be split on a
	// dialect-specific batch separator before submission.
	SplitsBatches() bool
}

// Lookup resolves dbType to its Dialect. An unrecognized dbType is a fatal
// configuration error per spec §4.9, surfaced before any DB work happens.
func Lookup(dbType string) (Dialect, error) {
	switch Kind(dbType) {
	case SqlServer:
		return sqlServerDialect{}, nil
	case PostgreSql:
		return postgreSQLDialect{}, nil
	case SQLite:
		return sqliteDialect{}, nil
	default:
		return nil, fmt.Errorf("unsupported dialect %q", dbType)
	}
}
