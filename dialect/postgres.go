package dialect

import (
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
)

type postgreSQLDialect struct{}

func (postgreSQLDialect) Kind() Kind         { return PostgreSql }
func (postgreSQLDialect) DriverName() string { return "pgx" }

func (postgreSQLDialect) QuoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func (postgreSQLDialect) DefaultSchema() string { return "public" }

func (d postgreSQLDialect) TableRef(tableName string) string {
	return d.QuoteIdent(d.DefaultSchema()) + "." + d.QuoteIdent(tableName)
}

func (d postgreSQLDialect) VersionTableDDL(tableName string) string {
	table := d.TableRef(tableName)
	return fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	Version BIGINT NOT NULL,
	AppliedOn TIMESTAMP NOT NULL,
	Description TEXT NULL
);
CREATE UNIQUE INDEX IF NOT EXISTS UC_Version ON %s (Version);`, table, table)
}

func (postgreSQLDialect) PlaceholderFormat() squirrel.PlaceholderFormat {
	return squirrel.Dollar
}

func (postgreSQLDialect) SplitsBatches() bool { return false }
