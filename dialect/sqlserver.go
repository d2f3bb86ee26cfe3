package dialect

import (
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
)

type sqlServerDialect struct{}

func (sqlServerDialect) Kind() Kind         { return SqlServer }
func (sqlServerDialect) DriverName() string { return "sqlserver" }

func (sqlServerDialect) QuoteIdent(name string) string {
	return "[" + strings.ReplaceAll(name, "]", "]]") + "]"
}

func (sqlServerDialect) DefaultSchema() string { return "dbo" }

func (d sqlServerDialect) TableRef(tableName string) string {
	return d.QuoteIdent(d.DefaultSchema()) + "." + d.QuoteIdent(tableName)
}

func (d sqlServerDialect) VersionTableDDL(tableName string) string {
	table := d.TableRef(tableName)
	return fmt.Sprintf(`IF NOT EXISTS (SELECT * FROM sys.tables WHERE name = '%s')
BEGIN
	CREATE TABLE %s (
		Version BIGINT NOT NULL,
		AppliedOn DATETIME2 NOT NULL,
		Description NVARCHAR(MAX) NULL
	);
	CREATE UNIQUE INDEX UC_Version ON %s (Version);
END`, tableName, table, table)
}

func (sqlServerDialect) PlaceholderFormat() squirrel.PlaceholderFormat {
	return squirrel.AtP
}

func (sqlServerDialect) SplitsBatches() bool { return true }
