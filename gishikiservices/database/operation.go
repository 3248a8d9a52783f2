package database

import (
	"database/sql/driver"
	"fmt"
	"reflect"
	"time"
)

// Relation is the comparison applied between a field and its value.
type Relation string

const (
	Equal          Relation = "="
	NotEqual       Relation = "!="
	GreaterThan    Relation = ">"
	GreaterOrEqual Relation = ">="
	LessThan       Relation = "<"
	LessOrEqual    Relation = "<="
	Like           Relation = "LIKE"
	NotLike        Relation = "NOT LIKE"
	InRange        Relation = "IN"
	NotInRange     Relation = "NOT IN"
	IsNull         Relation = "IS NULL"
	IsNotNull      Relation = "IS NOT NULL"
)

func (relation Relation) valid() bool {
	switch relation {
	case Equal, NotEqual, GreaterThan, GreaterOrEqual, LessThan, LessOrEqual,
		Like, NotLike, InRange, NotInRange, IsNull, IsNotNull:
		return true
	}

	return false
}

func (relation Relation) takesList() bool {
	return relation == InRange || relation == NotInRange
}

func (relation Relation) takesValue() bool {
	return relation != IsNull && relation != IsNotNull
}

// Conjunction joins a criterion to the ones applied before it.
type Conjunction int

const (
	ConjunctionAnd Conjunction = iota
	ConjunctionOr
)

func (conjunction Conjunction) keyword() string {
	if conjunction == ConjunctionOr {
		return "OR"
	}

	return "AND"
}

func (conjunction Conjunction) String() string {
	return conjunction.keyword()
}

type criterion struct {
	Field    string
	Relation Relation
	Value    any
}

func checkCriterion(field string, relation Relation, value any) error {
	if field == "" {
		return ArgumentError{Argument: "field", Reason: "must be a non-empty string"}
	}

	if !relation.valid() {
		return ArgumentError{Argument: "relation", Reason: fmt.Sprintf("unknown relation %q", string(relation))}
	}

	if isCriteriaValue(value) {
		return ArgumentError{Argument: "value", Reason: "selection criteria cannot be nested"}
	}

	if !relation.takesValue() {
		return nil
	}

	items, isList := listValues(value)
	if relation.takesList() {
		if !isList {
			return ArgumentError{Argument: "value", Reason: fmt.Sprintf("%s requires a list of values", relation)}
		}

		if len(items) == 0 {
			return ArgumentError{Argument: "value", Reason: fmt.Sprintf("%s requires at least one value", relation)}
		}

		for _, item := range items {
			if isCriteriaValue(item) {
				return ArgumentError{Argument: "value", Reason: "selection criteria cannot be nested"}
			}

			if !isScalar(item) {
				return ArgumentError{Argument: "value", Reason: fmt.Sprintf("unsupported list item type %T", item)}
			}
		}

		return nil
	}

	if isList {
		return ArgumentError{Argument: "value", Reason: fmt.Sprintf("%s requires a single value", relation)}
	}

	if !isScalar(value) {
		return ArgumentError{Argument: "value", Reason: fmt.Sprintf("unsupported value type %T", value)}
	}

	return nil
}

func isCriteriaValue(value any) bool {
	switch value.(type) {
	case *SelectionCriteria, SelectionCriteria, *ResultModifier, ResultModifier:
		return true
	}

	return false
}

// listValues flattens slices and arrays; []byte is a single value.
func listValues(value any) ([]any, bool) {
	if value == nil {
		return nil, false
	}

	if _, isBytes := value.([]byte); isBytes {
		return nil, false
	}

	valueOf := reflect.ValueOf(value)
	if valueOf.Kind() != reflect.Slice && valueOf.Kind() != reflect.Array {
		return nil, false
	}

	items := make([]any, 0, valueOf.Len())
	for i := range valueOf.Len() {
		items = append(items, valueOf.Index(i).Interface())
	}

	return items, true
}

func isScalar(value any) bool {
	if value == nil {
		return true
	}

	switch value.(type) {
	case driver.Valuer, time.Time, []byte:
		return true
	}

	switch reflect.TypeOf(value).Kind() {
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64,
		reflect.String:
		return true
	}

	return false
}
