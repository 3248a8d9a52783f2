package database

import (
	"maps"
	"slices"
)

type historicEntry struct {
	Conjunction Conjunction
	Index       int
}

// SelectionCriteria accumulates the filter predicates of a WHERE clause.
//
// Criteria are kept per conjunction and the global order of the AndWhere and
// OrWhere calls is kept separately, so the generated clause reproduces the
// exact call sequence. Invalid input is recorded on the call that introduced
// it and reported by Err; every later call is ignored.
type SelectionCriteria struct {
	and      []criterion
	or       []criterion
	historic []historicEntry
	err      error
}

func NewSelectionCriteria() *SelectionCriteria {
	return &SelectionCriteria{
		and:      []criterion{},
		or:       []criterion{},
		historic: []historicEntry{},
	}
}

// Select builds criteria where every entry must match: lists become IN
// ranges, everything else an equality. Entries are applied in key order.
func Select(equalities map[string]any) *SelectionCriteria {
	criteria := NewSelectionCriteria()

	for _, field := range slices.Sorted(maps.Keys(equalities)) {
		value := equalities[field]

		relation := Equal
		if _, isList := listValues(value); isList {
			relation = InRange
		}

		criteria.AndWhere(field, relation, value)
	}

	return criteria
}

func (criteria *SelectionCriteria) AndWhere(field string, relation Relation, value any) *SelectionCriteria {
	return criteria.where(ConjunctionAnd, field, relation, value)
}

func (criteria *SelectionCriteria) OrWhere(field string, relation Relation, value any) *SelectionCriteria {
	return criteria.where(ConjunctionOr, field, relation, value)
}

func (criteria *SelectionCriteria) Err() error {
	if criteria == nil {
		return nil
	}

	return criteria.err
}

func (criteria *SelectionCriteria) hasAny() bool {
	return criteria != nil && len(criteria.historic) > 0
}

func (criteria *SelectionCriteria) where(conjunction Conjunction, field string, relation Relation, value any) *SelectionCriteria {
	if criteria.err != nil {
		return criteria
	}

	if err := checkCriterion(field, relation, value); err != nil {
		criteria.err = err
		return criteria
	}

	entry := historicEntry{Conjunction: conjunction}
	c := criterion{
		Field:    field,
		Relation: relation,
		Value:    value,
	}

	if conjunction == ConjunctionOr {
		entry.Index = len(criteria.or)
		criteria.or = append(criteria.or, c)
	} else {
		entry.Index = len(criteria.and)
		criteria.and = append(criteria.and, c)
	}

	criteria.historic = append(criteria.historic, entry)

	return criteria
}

type criteriaExport struct {
	historic []historicEntry
	and      []criterion
	or       []criterion
}

func (criteria *SelectionCriteria) export() criteriaExport {
	if criteria == nil {
		return criteriaExport{}
	}

	return criteriaExport{
		historic: slices.Clone(criteria.historic),
		and:      slices.Clone(criteria.and),
		or:       slices.Clone(criteria.or),
	}
}

func (export criteriaExport) at(entry historicEntry) criterion {
	if entry.Conjunction == ConjunctionOr {
		return export.or[entry.Index]
	}

	return export.and[entry.Index]
}
