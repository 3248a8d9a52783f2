package database

import (
	"fmt"
	"strings"
)

// Dialect holds what differs between SQL backends: identifier quoting, type
// names, table DDL and paging.
type Dialect interface {
	Name() string
	quoteIdentifier(name string) string
	convertType(columnType ColumnType) string
	renderColumn(column *Column) string
	renderForeignKey(table string, relation *ColumnRelation) string
	renderCreateTable(table string) string
	renderAddColumn(table string, column *Column) string
	renderLimitOffset(limit int, skip int, ordered bool) (string, []any)
	renderReturning(column string) string
}

// quoteReference quotes a table or field reference. A trailing alias
// ("users u", "users AS u") and dotted names ("u.name") are supported.
func quoteReference(dialect Dialect, reference string) string {
	parts := strings.Fields(reference)

	switch {
	case len(parts) == 1:
		return quoteName(dialect, parts[0])
	case len(parts) == 2:
		return quoteName(dialect, parts[0]) + " " + dialect.quoteIdentifier(parts[1])
	case len(parts) == 3 && strings.EqualFold(parts[1], "AS"):
		return quoteName(dialect, parts[0]) + " AS " + dialect.quoteIdentifier(parts[2])
	}

	return dialect.quoteIdentifier(reference)
}

func quoteName(dialect Dialect, name string) string {
	segments := strings.Split(name, ".")
	for i, segment := range segments {
		if segment == "*" {
			continue
		}

		segments[i] = dialect.quoteIdentifier(segment)
	}

	return strings.Join(segments, ".")
}

func foreignKeyName(table string, relation *ColumnRelation) string {
	return fmt.Sprintf(
		"fk_%s_%s_%s_%s",
		table,
		relation.local.name,
		relation.foreignTable.name,
		relation.foreign.name,
	)
}

func foreignKeyConstraint(dialect Dialect, table string, relation *ColumnRelation) string {
	return fmt.Sprintf(
		"CONSTRAINT %s FOREIGN KEY (%s) REFERENCES %s (%s) ON DELETE CASCADE",
		dialect.quoteIdentifier(foreignKeyName(table, relation)),
		dialect.quoteIdentifier(relation.local.name),
		dialect.quoteIdentifier(relation.foreignTable.name),
		dialect.quoteIdentifier(relation.foreign.name),
	)
}
