package database

import (
	"context"
	"slices"
)

// NewRepository binds the service to one collection. Reads project fields,
// or every column when none are given.
func NewRepository(service *Service, collection string, fields ...string) *Repository {
	return &Repository{
		service:    service,
		collection: collection,
		fields:     slices.Clone(fields),
	}
}

type Repository struct {
	service    *Service
	collection string
	fields     []string
}

func (repository *Repository) Collection() string {
	return repository.collection
}

func (repository *Repository) Insert(ctx context.Context, data map[string]any) (int64, error) {
	return repository.service.Create(ctx, repository.collection, data)
}

func (repository *Repository) Find(ctx context.Context, criteria *SelectionCriteria, modifier *ResultModifier) ([]Record, error) {
	return repository.service.ReadSelective(ctx, repository.collection, repository.fields, criteria, modifier)
}

func (repository *Repository) FindOne(ctx context.Context, criteria *SelectionCriteria) (Record, error) {
	return repository.service.ReadSingle(ctx, repository.collection, repository.fields, criteria)
}

func (repository *Repository) Update(ctx context.Context, data map[string]any, criteria *SelectionCriteria) (int64, error) {
	return repository.service.Update(ctx, repository.collection, data, criteria)
}

func (repository *Repository) Delete(ctx context.Context, criteria *SelectionCriteria) (int64, error) {
	return repository.service.Delete(ctx, repository.collection, criteria)
}

func (repository *Repository) DeleteAll(ctx context.Context) (int64, error) {
	return repository.service.DeleteAll(ctx, repository.collection)
}
