package database

import (
	"fmt"
	"strings"
)

// DialectMSSQL generates SQL Server statements. There is no bundled driver
// for it; pair it with NewDriverWithDB and a connection you open yourself.
func DialectMSSQL() Dialect {
	return dialectMSSQL{}
}

type dialectMSSQL struct{}

func (dialect dialectMSSQL) Name() string {
	return "mssql"
}

func (dialect dialectMSSQL) quoteIdentifier(name string) string {
	return "[" + strings.ReplaceAll(name, "]", "]]") + "]"
}

func (dialect dialectMSSQL) convertType(columnType ColumnType) string {
	switch columnType {
	case TypeText:
		return "NVARCHAR(MAX)"
	case TypeReal, TypeFloat:
		return "REAL"
	case TypeDouble:
		return "FLOAT"
	case TypeNumeric:
		return "NUMERIC(38,10)"
	case TypeMoney:
		return "MONEY"
	case TypeSmallInt:
		return "SMALLINT"
	case TypeBigInt:
		return "BIGINT"
	case TypeDateTime:
		return "DATETIME2"
	case TypeBoolean:
		return "BIT"
	case TypeBlob:
		return "VARBINARY(MAX)"
	}

	return "INT"
}

func (dialect dialectMSSQL) renderColumn(column *Column) string {
	extras := ""
	if column.primaryKey {
		extras = " PRIMARY KEY"
		if column.autoIncrement {
			extras = " IDENTITY(1,1) PRIMARY KEY"
		}
	}

	notNull := ""
	if column.notNull {
		notNull = " NOT NULL"
	}

	return fmt.Sprintf(
		"%s %s%s%s",
		dialect.quoteIdentifier(column.name),
		dialect.convertType(column.columnType),
		extras,
		notNull,
	)
}

func (dialect dialectMSSQL) renderForeignKey(table string, relation *ColumnRelation) string {
	return foreignKeyConstraint(dialect, table, relation)
}

// SQL Server has no CREATE TABLE IF NOT EXISTS.
func (dialect dialectMSSQL) renderCreateTable(table string) string {
	return fmt.Sprintf(
		"IF OBJECT_ID(N'%s', N'U') IS NULL CREATE TABLE %s",
		strings.ReplaceAll(table, "'", "''"),
		dialect.quoteIdentifier(table),
	)
}

// OFFSET/FETCH needs an ORDER BY, so an unordered read orders by a constant.
func (dialect dialectMSSQL) renderLimitOffset(limit int, skip int, ordered bool) (string, []any) {
	if limit == 0 && skip == 0 {
		return "", nil
	}

	clause := "OFFSET ? ROWS"
	if !ordered {
		clause = "ORDER BY (SELECT NULL) " + clause
	}

	if limit == 0 {
		return clause, []any{skip}
	}

	return clause + " FETCH NEXT ? ROWS ONLY", []any{skip, limit}
}

func (dialect dialectMSSQL) renderReturning(column string) string {
	return ""
}

func (dialect dialectMSSQL) renderAddColumn(table string, column *Column) string {
	return fmt.Sprintf("ALTER TABLE %s ADD %s", dialect.quoteIdentifier(table), dialect.renderColumn(column))
}
