package database

import (
	"context"
)

// Read returns every column of the rows matching criteria. Nil criteria and
// nil modifier select everything.
func (service *Service) Read(ctx context.Context, collection string, criteria *SelectionCriteria, modifier *ResultModifier) ([]Record, error) {
	return service.ReadSelective(ctx, collection, nil, criteria, modifier)
}

// ReadSelective returns the given fields of the rows matching criteria.
func (service *Service) ReadSelective(
	ctx context.Context,
	collection string,
	fields []string,
	criteria *SelectionCriteria,
	modifier *ResultModifier,
) ([]Record, error) {
	builder := service.Builder().SelectFrom(collection, fields).Where(criteria)
	if modifier != nil {
		builder.LimitOffsetOrderBy(modifier)
	}

	statement, err := builder.statement()
	if err != nil {
		return nil, err
	}

	if service.resultCache == nil {
		return service.runSelect(ctx, statement)
	}

	return service.resultCache.remember(
		ctx,
		service.driver.Dialect().Name(),
		collectionName(collection),
		statement,
		func() ([]Record, error) {
			return service.runSelect(ctx, statement)
		},
	)
}

// ReadSingle returns the first matching row, or ErrNoRows.
func (service *Service) ReadSingle(ctx context.Context, collection string, fields []string, criteria *SelectionCriteria) (Record, error) {
	records, err := service.ReadSelective(ctx, collection, fields, criteria, NewResultModifier(ModifierSeed{Limit: 1}))
	if err != nil {
		return nil, err
	}

	if len(records) < 1 {
		return nil, ErrNoRows
	}

	return records[0], nil
}
