package database

import (
	"fmt"
	"reflect"
	"slices"
	"strings"
	"time"

	"github.com/lunagic/gishiki/gishikiservices/database/internal/utils"
)

type ColumnType int

const (
	TypeInteger ColumnType = iota + 1
	TypeText
	TypeReal
	TypeNumeric
	TypeMoney
	TypeFloat
	TypeDouble
	TypeSmallInt
	TypeBigInt
	TypeDateTime
	TypeBoolean
	TypeBlob
)

var columnTypeNames = map[ColumnType]string{
	TypeInteger:  "INTEGER",
	TypeText:     "TEXT",
	TypeReal:     "REAL",
	TypeNumeric:  "NUMERIC",
	TypeMoney:    "MONEY",
	TypeFloat:    "FLOAT",
	TypeDouble:   "DOUBLE",
	TypeSmallInt: "SMALLINT",
	TypeBigInt:   "BIGINT",
	TypeDateTime: "DATETIME",
	TypeBoolean:  "BOOLEAN",
	TypeBlob:     "BLOB",
}

func (columnType ColumnType) String() string {
	if name, found := columnTypeNames[columnType]; found {
		return name
	}

	return fmt.Sprintf("ColumnType(%d)", int(columnType))
}

func (columnType ColumnType) valid() bool {
	return columnType >= TypeInteger && columnType <= TypeBlob
}

// ParseColumnType resolves a type name such as "text" or "BIGINT".
func ParseColumnType(name string) (ColumnType, error) {
	for columnType, columnTypeName := range columnTypeNames {
		if strings.EqualFold(columnTypeName, name) {
			return columnType, nil
		}
	}

	return 0, ErrUnsupportedType{Type: name}
}

type Column struct {
	name          string
	columnType    ColumnType
	notNull       bool
	autoIncrement bool
	primaryKey    bool
	relation      *ColumnRelation
	table         *Table
}

func NewColumn(name string, columnType ColumnType) (*Column, error) {
	if name == "" {
		return nil, ArgumentError{Argument: "name", Reason: "column name must be a non-empty string"}
	}

	column := &Column{
		name: name,
	}

	if err := column.SetType(columnType); err != nil {
		return nil, err
	}

	return column, nil
}

func (column *Column) Name() string {
	return column.name
}

func (column *Column) Type() ColumnType {
	return column.columnType
}

func (column *Column) SetType(columnType ColumnType) error {
	if !columnType.valid() {
		return ErrUnsupportedType{Type: columnType.String()}
	}

	column.columnType = columnType

	return nil
}

func (column *Column) NotNull() bool {
	return column.notNull
}

func (column *Column) SetNotNull(notNull bool) *Column {
	column.notNull = notNull
	return column
}

func (column *Column) AutoIncrement() bool {
	return column.autoIncrement
}

func (column *Column) SetAutoIncrement(autoIncrement bool) *Column {
	column.autoIncrement = autoIncrement
	return column
}

func (column *Column) PrimaryKey() bool {
	return column.primaryKey
}

func (column *Column) SetPrimaryKey(primaryKey bool) *Column {
	column.primaryKey = primaryKey
	return column
}

// Relation is set once the column is registered through Table.AddForeignKey.
func (column *Column) Relation() *ColumnRelation {
	return column.relation
}

// ColumnRelation points a local column at the primary key of another table.
type ColumnRelation struct {
	local        *Column
	foreignTable *Table
	foreign      *Column
}

func NewColumnRelation(local *Column, foreignTable *Table, foreign *Column) (*ColumnRelation, error) {
	if local == nil || foreignTable == nil || foreign == nil {
		return nil, ArgumentError{Argument: "relation", Reason: "local column, foreign table and foreign column are required"}
	}

	if local == foreign || (local.table != nil && local.table == foreignTable) {
		return nil, ArgumentError{Argument: "relation", Reason: fmt.Sprintf("column %s cannot reference its own table", local.name)}
	}

	if owner, found := foreignTable.Column(foreign.name); !found || owner != foreign {
		return nil, ArgumentError{Argument: "relation", Reason: fmt.Sprintf("column %s does not belong to table %s", foreign.name, foreignTable.name)}
	}

	if !foreign.primaryKey {
		return nil, ArgumentError{Argument: "relation", Reason: fmt.Sprintf("column %s.%s is not a primary key", foreignTable.name, foreign.name)}
	}

	return &ColumnRelation{
		local:        local,
		foreignTable: foreignTable,
		foreign:      foreign,
	}, nil
}

func (relation *ColumnRelation) Local() *Column {
	return relation.local
}

func (relation *ColumnRelation) ForeignTable() *Table {
	return relation.foreignTable
}

func (relation *ColumnRelation) Foreign() *Column {
	return relation.foreign
}

func (relation *ColumnRelation) target() string {
	return relation.foreignTable.name + "." + relation.foreign.name
}

type Table struct {
	name        string
	columns     []*Column
	foreignKeys []*ColumnRelation
}

func NewTable(name string) (*Table, error) {
	if name == "" {
		return nil, ArgumentError{Argument: "name", Reason: "table name must be a non-empty string"}
	}

	return &Table{
		name:        name,
		columns:     []*Column{},
		foreignKeys: []*ColumnRelation{},
	}, nil
}

func (table *Table) Name() string {
	return table.name
}

func (table *Table) AddColumn(column *Column) error {
	if column == nil {
		return ArgumentError{Argument: "column", Reason: "must not be nil"}
	}

	if _, found := table.Column(column.name); found {
		return ErrDuplicateColumn{
			Table:  table.name,
			Column: column.name,
		}
	}

	if column.table != nil && column.table != table {
		return ArgumentError{Argument: "column", Reason: fmt.Sprintf("column %s already belongs to table %s", column.name, column.table.name)}
	}

	column.table = table
	table.columns = append(table.columns, column)

	return nil
}

func (table *Table) AddForeignKey(relation *ColumnRelation) error {
	if relation == nil {
		return ArgumentError{Argument: "relation", Reason: "must not be nil"}
	}

	if owner, found := table.Column(relation.local.name); !found || owner != relation.local {
		return ArgumentError{Argument: "relation", Reason: fmt.Sprintf("column %s does not belong to table %s", relation.local.name, table.name)}
	}

	if relation.foreignTable == table {
		return ArgumentError{Argument: "relation", Reason: fmt.Sprintf("table %s cannot reference itself", table.name)}
	}

	for _, existing := range table.foreignKeys {
		if existing.target() == relation.target() {
			return ErrDuplicateForeignKey{
				Table:  table.name,
				Target: relation.target(),
			}
		}
	}

	relation.local.relation = relation
	table.foreignKeys = append(table.foreignKeys, relation)

	return nil
}

func (table *Table) Column(name string) (*Column, bool) {
	column, found := table.lookups().columns[name]
	return column, found
}

func (table *Table) Columns() []*Column {
	return slices.Clone(table.columns)
}

func (table *Table) ForeignKeys() []*ColumnRelation {
	return slices.Clone(table.foreignKeys)
}

type tableLookups struct {
	columns map[string]*Column
}

func (table *Table) lookups() tableLookups {
	lookup := tableLookups{
		columns: map[string]*Column{},
	}

	for _, column := range table.columns {
		lookup.columns[column.name] = column
	}

	return lookup
}

// Entity is a struct whose `db` tags describe a table.
type Entity interface {
	TableName() string
}

var typeMapping = map[any]ColumnType{
	reflect.Bool:                TypeBoolean,
	reflect.Int:                 TypeInteger,
	reflect.Int8:                TypeSmallInt,
	reflect.Int16:               TypeSmallInt,
	reflect.Int32:               TypeInteger,
	reflect.Int64:               TypeBigInt,
	reflect.Uint:                TypeInteger,
	reflect.Uint8:               TypeSmallInt,
	reflect.Uint16:              TypeInteger,
	reflect.Uint32:              TypeBigInt,
	reflect.Uint64:              TypeBigInt,
	reflect.Float32:             TypeFloat,
	reflect.Float64:             TypeDouble,
	reflect.String:              TypeText,
	reflect.TypeFor[time.Time](): TypeDateTime,
	reflect.TypeFor[[]byte]():    TypeBlob,
}

func translateType(t reflect.Type) (ColumnType, error) {
	{ // First look for exact matches (time.Time, []byte)
		match, found := typeMapping[t]
		if found {
			return match, nil
		}
	}

	{ // Then look for more generic kind matches
		match, found := typeMapping[t.Kind()]
		if found {
			return match, nil
		}
	}

	return 0, ErrUnsupportedType{
		Type: t.String(),
	}
}

// TableFromEntity describes the entity's table from its `db` tags, e.g.
// `db:"id,primaryKey,autoIncrement"` or `db:"price,type=money"`. Pointer
// fields are nullable.
func TableFromEntity(entity Entity) (*Table, error) {
	table, err := NewTable(entity.TableName())
	if err != nil {
		return nil, err
	}

	if err := utils.LoopOverStructFields(reflect.ValueOf(entity), func(fieldDefinition reflect.StructField, _ reflect.Value) error {
		tag := utils.ParseTag(fieldDefinition.Tag)
		if tag.Column == "" {
			return nil
		}

		fieldType := fieldDefinition.Type
		nullable := false
		if fieldType.Kind() == reflect.Pointer {
			nullable = true
			fieldType = fieldType.Elem()
		}

		columnType, err := translateType(fieldType)
		if tag.TypeOverride != "" {
			columnType, err = ParseColumnType(tag.TypeOverride)
		}
		if err != nil {
			return err
		}

		column, err := NewColumn(tag.Column, columnType)
		if err != nil {
			return err
		}

		column.
			SetNotNull(!nullable).
			SetPrimaryKey(tag.PrimaryKey).
			SetAutoIncrement(tag.AutoIncrement)

		return table.AddColumn(column)
	}); err != nil {
		return nil, err
	}

	return table, nil
}
