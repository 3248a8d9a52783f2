package database

import (
	"fmt"
	"strings"
)

func DialectMySQL() Dialect {
	return dialectMySQL{}
}

type dialectMySQL struct{}

func (dialect dialectMySQL) Name() string {
	return "mysql"
}

func (dialect dialectMySQL) quoteIdentifier(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}

func (dialect dialectMySQL) convertType(columnType ColumnType) string {
	switch columnType {
	case TypeText:
		return "TEXT"
	case TypeReal, TypeDouble:
		return "DOUBLE"
	case TypeFloat:
		return "FLOAT"
	case TypeNumeric:
		return "DECIMAL(65,30)"
	case TypeMoney:
		return "DECIMAL(19,4)"
	case TypeSmallInt:
		return "SMALLINT"
	case TypeBigInt:
		return "BIGINT"
	case TypeDateTime:
		return "DATETIME"
	case TypeBoolean:
		return "TINYINT(1)"
	case TypeBlob:
		return "LONGBLOB"
	}

	return "INT"
}

func (dialect dialectMySQL) renderColumn(column *Column) string {
	notNull := ""
	if column.notNull {
		notNull = " NOT NULL"
	}

	extras := ""
	if column.primaryKey {
		extras = " PRIMARY KEY"
		if column.autoIncrement {
			extras += " AUTO_INCREMENT"
		}
	}

	return fmt.Sprintf(
		"%s %s%s%s",
		dialect.quoteIdentifier(column.name),
		dialect.convertType(column.columnType),
		notNull,
		extras,
	)
}

func (dialect dialectMySQL) renderForeignKey(table string, relation *ColumnRelation) string {
	return foreignKeyConstraint(dialect, table, relation)
}

func (dialect dialectMySQL) renderCreateTable(table string) string {
	return "CREATE TABLE IF NOT EXISTS " + dialect.quoteIdentifier(table)
}

func (dialect dialectMySQL) renderLimitOffset(limit int, skip int, ordered bool) (string, []any) {
	switch {
	case limit > 0 && skip > 0:
		return "LIMIT ? OFFSET ?", []any{limit, skip}
	case limit > 0:
		return "LIMIT ?", []any{limit}
	case skip > 0:
		// MySQL has no OFFSET without LIMIT, the documented workaround is the largest BIGINT UNSIGNED
		return "LIMIT 18446744073709551615 OFFSET ?", []any{skip}
	}

	return "", nil
}

func (dialect dialectMySQL) renderReturning(column string) string {
	return ""
}

func (dialect dialectMySQL) renderAddColumn(table string, column *Column) string {
	return fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s", dialect.quoteIdentifier(table), dialect.renderColumn(column))
}
