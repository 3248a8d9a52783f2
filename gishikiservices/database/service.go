package database

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/lunagic/gishiki/gishikiservices/database/internal/utils"
)

type Service struct {
	driver            Driver
	standardLibraryDB *sql.DB
	preRunFuncs       []func(ctx context.Context, statement string, args []any) error
	postRunFuncs      []func(ctx context.Context) error
	primaryKey        string
	retryIntervals    []time.Duration
	resultCache       *resultCache
}

func New(
	driver Driver,
	configFuncs ...ServiceConfigFunc,
) (*Service, error) {
	db, err := driver.Open()
	if err != nil {
		return nil, err
	}

	service := &Service{
		driver:            driver,
		standardLibraryDB: db,
		preRunFuncs:       []func(ctx context.Context, statement string, args []any) error{},
		postRunFuncs:      []func(ctx context.Context) error{},
		primaryKey:        "id",
	}

	for _, configFunc := range configFuncs {
		if err := configFunc(service); err != nil {
			return nil, err
		}
	}

	return service, nil
}

func (service *Service) Ping(ctx context.Context) error {
	return service.standardLibraryDB.PingContext(ctx)
}

func (service *Service) Close() error {
	return service.standardLibraryDB.Close()
}

// Builder returns a fresh query builder for the service's dialect.
func (service *Service) Builder() *QueryBuilder {
	return NewQueryBuilder(service.driver.Dialect())
}

// Create inserts one row and returns its primary key.
func (service *Service) Create(ctx context.Context, collection string, data map[string]any) (int64, error) {
	builder := service.Builder().InsertInto(collection).Values(data)

	if !service.driver.usesLastInsertId() {
		statement, err := builder.Returning(service.primaryKey).statement()
		if err != nil {
			return 0, err
		}

		records, err := service.runSelect(ctx, statement)
		if err != nil {
			return 0, err
		}

		if err := service.invalidate(ctx, collection); err != nil {
			return 0, err
		}

		if len(records) == 0 {
			return 0, ErrNoRows
		}

		return toInt64(records[0][service.primaryKey])
	}

	statement, err := builder.statement()
	if err != nil {
		return 0, err
	}

	result, err := service.runExecute(ctx, statement)
	if err != nil {
		return 0, err
	}

	if err := service.invalidate(ctx, collection); err != nil {
		return 0, err
	}

	return result.LastInsertId()
}

// Update changes the rows matching criteria and returns how many were affected.
func (service *Service) Update(ctx context.Context, collection string, data map[string]any, criteria *SelectionCriteria) (int64, error) {
	statement, err := service.Builder().Update(collection).Set(data).Where(criteria).statement()
	if err != nil {
		return 0, err
	}

	return service.execAffecting(ctx, collection, statement)
}

// Delete removes the rows matching criteria. Empty criteria are rejected,
// use DeleteAll to empty a collection.
func (service *Service) Delete(ctx context.Context, collection string, criteria *SelectionCriteria) (int64, error) {
	if err := criteria.Err(); err != nil {
		return 0, err
	}

	if !criteria.hasAny() {
		return 0, ArgumentError{Argument: "criteria", Reason: "refusing to delete without criteria"}
	}

	statement, err := service.Builder().DeleteFrom(collection).Where(criteria).statement()
	if err != nil {
		return 0, err
	}

	return service.execAffecting(ctx, collection, statement)
}

func (service *Service) DeleteAll(ctx context.Context, collection string) (int64, error) {
	statement, err := service.Builder().DeleteFrom(collection).statement()
	if err != nil {
		return 0, err
	}

	return service.execAffecting(ctx, collection, statement)
}

func (service *Service) execAffecting(ctx context.Context, collection string, statement statement) (int64, error) {
	result, err := service.runExecute(ctx, statement)
	if err != nil {
		return 0, err
	}

	if err := service.invalidate(ctx, collection); err != nil {
		return 0, err
	}

	return result.RowsAffected()
}

func (service *Service) runSelect(
	ctx context.Context,
	statement statement,
) (
	[]Record,
	error,
) {
	preparedQuery := utils.Prepare(statement.Query, service.driver.usesNumberedParameters())
	if preparedQuery == "" {
		return nil, ErrBlankQuery
	}

	for _, preRunFunc := range service.preRunFuncs {
		if err := preRunFunc(ctx, preparedQuery, statement.Parameters); err != nil {
			return nil, err
		}
	}

	var rows *sql.Rows
	if err := service.withRetry(ctx, func() error {
		var err error
		rows, err = service.standardLibraryDB.QueryContext(ctx, preparedQuery, statement.Parameters...)
		return err
	}); err != nil {
		return nil, err
	}
	defer func() {
		_ = rows.Close()
	}()

	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	records := []Record{}
	for rows.Next() {
		values := make([]any, len(columns))
		scanFields := make([]any, len(columns))
		for i := range values {
			scanFields[i] = &values[i]
		}

		if err := rows.Scan(scanFields...); err != nil {
			return nil, err
		}

		record := Record{}
		for i, column := range columns {
			// Drivers hand back text as []byte, records always carry strings
			if raw, isBytes := values[i].([]byte); isBytes {
				record[column] = string(raw)
				continue
			}

			record[column] = values[i]
		}

		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, postRunFunc := range service.postRunFuncs {
		if err := postRunFunc(ctx); err != nil {
			return nil, err
		}
	}

	return records, nil
}

func (service *Service) runExecute(
	ctx context.Context,
	statement statement,
) (
	sql.Result,
	error,
) {
	preparedQuery := utils.Prepare(statement.Query, service.driver.usesNumberedParameters())
	if preparedQuery == "" {
		return nil, ErrBlankQuery
	}

	for _, preRunFunc := range service.preRunFuncs {
		if err := preRunFunc(ctx, preparedQuery, statement.Parameters); err != nil {
			return nil, err
		}
	}

	var result sql.Result
	if err := service.withRetry(ctx, func() error {
		var err error
		result, err = service.standardLibraryDB.ExecContext(ctx, preparedQuery, statement.Parameters...)
		return err
	}); err != nil {
		return nil, err
	}

	for _, postRunFunc := range service.postRunFuncs {
		if err := postRunFunc(ctx); err != nil {
			return nil, err
		}
	}

	return result, nil
}

// withRetry reruns fn while the driver reports lock contention, sleeping
// through the configured intervals in order.
func (service *Service) withRetry(ctx context.Context, fn func() error) error {
	for attempt := 0; ; attempt++ {
		err := fn()
		if err == nil || attempt >= len(service.retryIntervals) || !service.driver.shouldRetry(err) {
			return err
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(service.retryIntervals[attempt]):
		}
	}
}

func (service *Service) invalidate(ctx context.Context, collection string) error {
	if service.resultCache == nil {
		return nil
	}

	return service.resultCache.invalidate(ctx, collectionName(collection))
}

// collectionName strips an alias from a table reference.
func collectionName(collection string) string {
	parts := strings.Fields(collection)
	if len(parts) == 0 {
		return collection
	}

	return parts[0]
}

func toInt64(value any) (int64, error) {
	switch v := value.(type) {
	case int64:
		return v, nil
	case int32:
		return int64(v), nil
	case int:
		return int64(v), nil
	case uint64:
		return int64(v), nil
	case string:
		return strconv.ParseInt(v, 10, 64)
	}

	return 0, fmt.Errorf("unexpected primary key type %T", value)
}
