package database

import (
	"fmt"
	"strings"
)

func DialectPostgres() Dialect {
	return dialectPostgres{}
}

type dialectPostgres struct{}

func (dialect dialectPostgres) Name() string {
	return "postgres"
}

func (dialect dialectPostgres) quoteIdentifier(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func (dialect dialectPostgres) convertType(columnType ColumnType) string {
	switch columnType {
	case TypeText:
		return "TEXT"
	case TypeReal, TypeFloat:
		return "REAL"
	case TypeDouble:
		return "DOUBLE PRECISION"
	case TypeNumeric:
		return "NUMERIC"
	case TypeMoney:
		return "MONEY"
	case TypeSmallInt:
		return "SMALLINT"
	case TypeBigInt:
		return "BIGINT"
	case TypeDateTime:
		return "TIMESTAMP"
	case TypeBoolean:
		return "BOOLEAN"
	case TypeBlob:
		return "BYTEA"
	}

	return "INTEGER"
}

func (dialect dialectPostgres) renderColumn(column *Column) string {
	notNull := ""
	if column.notNull {
		notNull = " NOT NULL"
	}

	extras := ""
	if column.primaryKey {
		extras = " PRIMARY KEY"
		if column.autoIncrement {
			extras = " GENERATED BY DEFAULT AS IDENTITY PRIMARY KEY"
		}
	}

	return fmt.Sprintf(
		`%s %s%s%s`,
		dialect.quoteIdentifier(column.name),
		dialect.convertType(column.columnType),
		extras,
		notNull,
	)
}

func (dialect dialectPostgres) renderForeignKey(table string, relation *ColumnRelation) string {
	return foreignKeyConstraint(dialect, table, relation)
}

func (dialect dialectPostgres) renderCreateTable(table string) string {
	return "CREATE TABLE IF NOT EXISTS " + dialect.quoteIdentifier(table)
}

func (dialect dialectPostgres) renderLimitOffset(limit int, skip int, ordered bool) (string, []any) {
	switch {
	case limit > 0 && skip > 0:
		return "LIMIT ? OFFSET ?", []any{limit, skip}
	case limit > 0:
		return "LIMIT ?", []any{limit}
	case skip > 0:
		return "OFFSET ?", []any{skip}
	}

	return "", nil
}

func (dialect dialectPostgres) renderReturning(column string) string {
	return "RETURNING " + dialect.quoteIdentifier(column)
}

func (dialect dialectPostgres) renderAddColumn(table string, column *Column) string {
	return fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s", dialect.quoteIdentifier(table), dialect.renderColumn(column))
}
