package dialect

import (
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
)

type sqliteDialect struct{}

func (sqliteDialect) Kind() Kind         { return SQLite }
func (sqliteDialect) DriverName() string { return "sqlite" }

func (sqliteDialect) QuoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// DefaultSchema returns "" — SQLite has no schema concept beyond the
// implicit "main" database, which is never spelled out in DDL here.
func (sqliteDialect) DefaultSchema() string { return "" }

func (d sqliteDialect) TableRef(tableName string) string {
	return d.QuoteIdent(tableName)
}

func (d sqliteDialect) VersionTableDDL(tableName string) string {
	table := d.TableRef(tableName)
	return fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	Version BIGINT NOT NULL,
	AppliedOn DATETIME NOT NULL,
	Description TEXT NULL
);
CREATE UNIQUE INDEX IF NOT EXISTS UC_Version ON %s (Version);`, table, table)
}

func (sqliteDialect) PlaceholderFormat() squirrel.PlaceholderFormat {
	return squirrel.Question
}

func (sqliteDialect) SplitsBatches() bool { return false }
