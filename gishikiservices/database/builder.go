package database

import (
	"fmt"
	"maps"
	"slices"
	"strings"
)

// QueryBuilder assembles one parameterized statement. Every clause method
// appends to the statement and returns the builder; ExportQuery and
// ExportParams read the result without changing it. The first invalid input
// stops the builder and is reported by Err.
type QueryBuilder struct {
	dialect Dialect
	sql     string
	params  []any
	table   string
	err     error
}

func NewQueryBuilder(dialect Dialect) *QueryBuilder {
	return &QueryBuilder{
		dialect: dialect,
		params:  []any{},
	}
}

func (builder *QueryBuilder) Dialect() Dialect {
	return builder.dialect
}

func (builder *QueryBuilder) InsertInto(table string) *QueryBuilder {
	if !builder.begin(table) {
		return builder
	}

	return builder.append("INSERT INTO " + quoteReference(builder.dialect, table))
}

// Values lists the columns to insert, in column name order.
func (builder *QueryBuilder) Values(data map[string]any) *QueryBuilder {
	columns, params, ok := builder.columnValues(data)
	if !ok {
		return builder
	}

	placeholders := slices.Repeat([]string{"?"}, len(columns))

	return builder.append(
		fmt.Sprintf(" (%s) VALUES (%s)", strings.Join(columns, ", "), strings.Join(placeholders, ", ")),
		params...,
	)
}

func (builder *QueryBuilder) Update(table string) *QueryBuilder {
	if !builder.begin(table) {
		return builder
	}

	return builder.append("UPDATE " + quoteReference(builder.dialect, table))
}

// Set lists the columns to update, in column name order.
func (builder *QueryBuilder) Set(data map[string]any) *QueryBuilder {
	columns, params, ok := builder.columnValues(data)
	if !ok {
		return builder
	}

	sets := []string{}
	for _, column := range columns {
		sets = append(sets, column+" = ?")
	}

	return builder.append(" SET "+strings.Join(sets, ", "), params...)
}

func (builder *QueryBuilder) DeleteFrom(table string) *QueryBuilder {
	if !builder.begin(table) {
		return builder
	}

	return builder.append("DELETE FROM " + quoteReference(builder.dialect, table))
}

func (builder *QueryBuilder) SelectAllFrom(table string) *QueryBuilder {
	return builder.SelectFrom(table, nil)
}

// SelectFrom projects the given fields; no fields selects every column.
func (builder *QueryBuilder) SelectFrom(table string, fields []string) *QueryBuilder {
	if !builder.begin(table) {
		return builder
	}

	projection := "*"
	if len(fields) > 0 {
		quoted := []string{}
		for _, field := range fields {
			if field == "" {
				return builder.fail(ArgumentError{Argument: "fields", Reason: "field names must be non-empty strings"})
			}

			quoted = append(quoted, quoteReference(builder.dialect, field))
		}

		projection = strings.Join(quoted, ", ")
	}

	return builder.append(fmt.Sprintf("SELECT %s FROM %s", projection, quoteReference(builder.dialect, table)))
}

// Where appends the WHERE clause of the criteria, predicates in the order
// they were added. Empty or nil criteria add nothing.
func (builder *QueryBuilder) Where(criteria *SelectionCriteria) *QueryBuilder {
	if builder.err != nil {
		return builder
	}

	if err := criteria.Err(); err != nil {
		return builder.fail(err)
	}

	if !criteria.hasAny() {
		return builder
	}

	export := criteria.export()
	clause := " WHERE"
	params := []any{}

	for i, entry := range export.historic {
		if i > 0 {
			clause += " " + entry.Conjunction.keyword()
		}

		predicate, predicateParams := builder.renderCriterion(export.at(entry))
		clause += " " + predicate
		params = append(params, predicateParams...)
	}

	return builder.append(clause, params...)
}

// LimitOffsetOrderBy appends ORDER BY followed by the dialect's paging clause.
func (builder *QueryBuilder) LimitOffsetOrderBy(modifier *ResultModifier) *QueryBuilder {
	if builder.err != nil {
		return builder
	}

	if err := modifier.Err(); err != nil {
		return builder.fail(err)
	}

	export := modifier.export()

	if len(export.order) > 0 {
		orders := []string{}
		for _, order := range export.order {
			orders = append(orders, fmt.Sprintf("%s %s", quoteReference(builder.dialect, order.Field), order.Direction))
		}

		builder.append(" ORDER BY " + strings.Join(orders, ", "))
	}

	paging, params := builder.dialect.renderLimitOffset(export.limit, export.skip, len(export.order) > 0)
	if paging == "" {
		return builder
	}

	return builder.append(" "+paging, params...)
}

func (builder *QueryBuilder) CreateTable(table string) *QueryBuilder {
	if !builder.begin(table) {
		return builder
	}

	return builder.append(builder.dialect.renderCreateTable(table))
}

// DefinedAs lists the column definitions of the table being created,
// followed by the constraints of the columns that reference other tables.
func (builder *QueryBuilder) DefinedAs(columns []*Column) *QueryBuilder {
	if builder.err != nil {
		return builder
	}

	if len(columns) == 0 {
		return builder.fail(ArgumentError{Argument: "columns", Reason: "a table needs at least one column"})
	}

	definitions := []string{}
	for _, column := range columns {
		definitions = append(definitions, builder.dialect.renderColumn(column))
	}

	for _, column := range columns {
		if column.relation == nil {
			continue
		}

		if foreignKey := builder.dialect.renderForeignKey(builder.table, column.relation); foreignKey != "" {
			definitions = append(definitions, foreignKey)
		}
	}

	return builder.append(" (" + strings.Join(definitions, ", ") + ")")
}

func (builder *QueryBuilder) DropTable(table string) *QueryBuilder {
	if !builder.begin(table) {
		return builder
	}

	return builder.append("DROP TABLE IF EXISTS " + builder.dialect.quoteIdentifier(table))
}

// Returning asks for the value of column to be returned by an INSERT, on
// dialects that can.
func (builder *QueryBuilder) Returning(column string) *QueryBuilder {
	if builder.err != nil {
		return builder
	}

	if returning := builder.dialect.renderReturning(column); returning != "" {
		builder.append(" " + returning)
	}

	return builder
}

func (builder *QueryBuilder) ExportQuery() string {
	return beautify(builder.sql)
}

func (builder *QueryBuilder) ExportParams() []any {
	return slices.Clone(builder.params)
}

func (builder *QueryBuilder) Err() error {
	return builder.err
}

func (builder *QueryBuilder) statement() (statement, error) {
	if builder.err != nil {
		return statement{}, builder.err
	}

	return statement{
		Query:      builder.ExportQuery(),
		Parameters: builder.ExportParams(),
	}, nil
}

func (builder *QueryBuilder) begin(table string) bool {
	if builder.err != nil {
		return false
	}

	if table == "" {
		builder.fail(ArgumentError{Argument: "table", Reason: "table name must be a non-empty string"})
		return false
	}

	builder.table = table

	return true
}

func (builder *QueryBuilder) append(fragment string, params ...any) *QueryBuilder {
	builder.sql += fragment
	builder.params = append(builder.params, params...)

	return builder
}

func (builder *QueryBuilder) fail(err error) *QueryBuilder {
	if builder.err == nil {
		builder.err = err
	}

	return builder
}

func (builder *QueryBuilder) columnValues(data map[string]any) ([]string, []any, bool) {
	if builder.err != nil {
		return nil, nil, false
	}

	if len(data) == 0 {
		builder.fail(ArgumentError{Argument: "data", Reason: "at least one column is required"})
		return nil, nil, false
	}

	columns := []string{}
	params := []any{}
	for _, column := range slices.Sorted(maps.Keys(data)) {
		value := data[column]
		if column == "" {
			builder.fail(ArgumentError{Argument: "data", Reason: "column names must be non-empty strings"})
			return nil, nil, false
		}

		if !isScalar(value) {
			builder.fail(ArgumentError{Argument: "data", Reason: fmt.Sprintf("unsupported value type %T for column %s", value, column)})
			return nil, nil, false
		}

		columns = append(columns, quoteName(builder.dialect, column))
		params = append(params, value)
	}

	return columns, params, true
}

func (builder *QueryBuilder) renderCriterion(c criterion) (string, []any) {
	field := quoteReference(builder.dialect, c.Field)

	if !c.Relation.takesValue() {
		return fmt.Sprintf("%s %s", field, c.Relation), nil
	}

	if items, isList := listValues(c.Value); isList {
		placeholders := slices.Repeat([]string{"?"}, len(items))
		return fmt.Sprintf("%s %s (%s)", field, c.Relation, strings.Join(placeholders, ", ")), items
	}

	return fmt.Sprintf("%s %s ?", field, c.Relation), []any{c.Value}
}

// beautify is cosmetic only: it never touches placeholders or their order.
func beautify(sql string) string {
	for strings.Contains(sql, "  ") {
		sql = strings.ReplaceAll(sql, "  ", " ")
	}

	sql = strings.ReplaceAll(sql, "( ", "(")
	sql = strings.ReplaceAll(sql, " )", ")")

	for strings.Contains(sql, "?, ?") {
		sql = strings.ReplaceAll(sql, "?, ?", "?,?")
	}

	return strings.TrimSpace(sql)
}
