package database

import (
	"fmt"
	"slices"
)

type Direction string

const (
	Ascending  Direction = "ASC"
	Descending Direction = "DESC"
)

type ordering struct {
	Field     string
	Direction Direction
}

type ModifierSeed struct {
	Limit int
	Skip  int
}

// ResultModifier holds the limit, offset and ordering of a read. A limit of
// zero means unlimited.
type ResultModifier struct {
	limit int
	skip  int
	order []ordering
	err   error
}

func NewResultModifier(seed ...ModifierSeed) *ResultModifier {
	modifier := &ResultModifier{
		order: []ordering{},
	}

	for _, s := range seed {
		modifier.Limit(s.Limit).Skip(s.Skip)
	}

	return modifier
}

func (modifier *ResultModifier) Limit(n int) *ResultModifier {
	if modifier.err != nil {
		return modifier
	}

	if n < 0 {
		modifier.err = ArgumentError{Argument: "limit", Reason: fmt.Sprintf("must not be negative, got %d", n)}
		return modifier
	}

	modifier.limit = n

	return modifier
}

func (modifier *ResultModifier) Skip(n int) *ResultModifier {
	if modifier.err != nil {
		return modifier
	}

	if n < 0 {
		modifier.err = ArgumentError{Argument: "skip", Reason: fmt.Sprintf("must not be negative, got %d", n)}
		return modifier
	}

	modifier.skip = n

	return modifier
}

// Order appends a sort key. The first call is the primary key; ordering an
// already ordered field changes its direction without moving it.
func (modifier *ResultModifier) Order(field string, direction Direction) *ResultModifier {
	if modifier.err != nil {
		return modifier
	}

	if field == "" {
		modifier.err = ArgumentError{Argument: "field", Reason: "must be a non-empty string"}
		return modifier
	}

	if direction != Ascending && direction != Descending {
		modifier.err = ArgumentError{Argument: "direction", Reason: fmt.Sprintf("unknown direction %q", string(direction))}
		return modifier
	}

	for i, existing := range modifier.order {
		if existing.Field == field {
			modifier.order[i].Direction = direction
			return modifier
		}
	}

	modifier.order = append(modifier.order, ordering{
		Field:     field,
		Direction: direction,
	})

	return modifier
}

func (modifier *ResultModifier) Err() error {
	if modifier == nil {
		return nil
	}

	return modifier.err
}

type modifierExport struct {
	limit int
	skip  int
	order []ordering
}

func (modifier *ResultModifier) export() modifierExport {
	if modifier == nil {
		return modifierExport{}
	}

	return modifierExport{
		limit: modifier.limit,
		skip:  modifier.skip,
		order: slices.Clone(modifier.order),
	}
}
