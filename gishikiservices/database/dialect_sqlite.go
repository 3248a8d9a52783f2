package database

import (
	"fmt"
	"strings"
)

func DialectSQLite() Dialect {
	return dialectSQLite{}
}

type dialectSQLite struct{}

func (dialect dialectSQLite) Name() string {
	return "sqlite"
}

func (dialect dialectSQLite) quoteIdentifier(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func (dialect dialectSQLite) convertType(columnType ColumnType) string {
	switch columnType {
	case TypeText:
		return "TEXT"
	case TypeReal, TypeFloat, TypeDouble, TypeNumeric, TypeMoney:
		return "REAL"
	case TypeDateTime:
		return "DATETIME"
	case TypeBlob:
		return "BLOB"
	}

	return "INT"
}

func (dialect dialectSQLite) renderColumn(column *Column) string {
	// AUTOINCREMENT is only accepted on an INTEGER PRIMARY KEY
	if column.primaryKey && column.autoIncrement {
		return fmt.Sprintf(`%s INTEGER PRIMARY KEY AUTOINCREMENT`, dialect.quoteIdentifier(column.name))
	}

	primaryKey := ""
	if column.primaryKey {
		primaryKey = " PRIMARY KEY"
	}

	notNull := ""
	if column.notNull {
		notNull = " NOT NULL"
	}

	foreignKey := ""
	if column.relation != nil {
		foreignKey = fmt.Sprintf(
			` REFERENCES %s(%s) ON DELETE CASCADE`,
			dialect.quoteIdentifier(column.relation.foreignTable.name),
			dialect.quoteIdentifier(column.relation.foreign.name),
		)
	}

	return fmt.Sprintf(
		`%s %s%s%s%s`,
		dialect.quoteIdentifier(column.name),
		dialect.convertType(column.columnType),
		primaryKey,
		notNull,
		foreignKey,
	)
}

// Foreign keys are declared inline by renderColumn.
func (dialect dialectSQLite) renderForeignKey(table string, relation *ColumnRelation) string {
	return ""
}

func (dialect dialectSQLite) renderCreateTable(table string) string {
	return "CREATE TABLE IF NOT EXISTS " + dialect.quoteIdentifier(table)
}

func (dialect dialectSQLite) renderLimitOffset(limit int, skip int, ordered bool) (string, []any) {
	switch {
	case limit > 0 && skip > 0:
		return "LIMIT ? OFFSET ?", []any{limit, skip}
	case limit > 0:
		return "LIMIT ?", []any{limit}
	case skip > 0:
		// OFFSET is only valid after a LIMIT, -1 means no limit
		return "LIMIT -1 OFFSET ?", []any{skip}
	}

	return "", nil
}

func (dialect dialectSQLite) renderReturning(column string) string {
	return ""
}

func (dialect dialectSQLite) renderAddColumn(table string, column *Column) string {
	return fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s", dialect.quoteIdentifier(table), dialect.renderColumn(column))
}
