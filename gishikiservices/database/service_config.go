package database

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/lunagic/gishiki/gishikiservices/cache"
)

type ServiceConfigFunc func(service *Service) error

type queryIDKey struct{}

// DefaultLockRetryIntervals is how long the service waits between attempts
// when a statement fails on a locked database.
var DefaultLockRetryIntervals = []time.Duration{
	50 * time.Millisecond,
	100 * time.Millisecond,
	150 * time.Millisecond,
	200 * time.Millisecond,
	300 * time.Millisecond,
	400 * time.Millisecond,
	500 * time.Millisecond,
	700 * time.Millisecond,
	1000 * time.Millisecond,
}

func WithPostConnectFunc(callback func(db *sql.DB) error) ServiceConfigFunc {
	return func(service *Service) error {
		return callback(service.standardLibraryDB)
	}
}

func WithPreRunFunc(preRunFunc func(ctx context.Context, statement string, args []any) error) ServiceConfigFunc {
	return func(service *Service) error {
		service.preRunFuncs = append(service.preRunFuncs, preRunFunc)
		return nil
	}
}

func WithPostRunFunc(postRunFunc func(ctx context.Context) error) ServiceConfigFunc {
	return func(service *Service) error {
		service.postRunFuncs = append(service.postRunFuncs, postRunFunc)
		return nil
	}
}

func WithLogger(logger *slog.Logger) ServiceConfigFunc {
	return func(service *Service) error {
		service.preRunFuncs = append(service.preRunFuncs, func(ctx context.Context, statement string, args []any) error {
			logger.InfoContext(ctx, "Database Run",
				"query_id", queryID(ctx),
				"dialect", service.driver.Dialect().Name(),
				"statement", statement,
				"args", args,
			)

			return nil
		})
		return nil
	}
}

// WithLockRetry retries statements that fail on a locked database. No
// intervals means DefaultLockRetryIntervals.
func WithLockRetry(intervals ...time.Duration) ServiceConfigFunc {
	return func(service *Service) error {
		if len(intervals) == 0 {
			intervals = DefaultLockRetryIntervals
		}

		for _, interval := range intervals {
			if interval < 0 {
				return ArgumentError{Argument: "intervals", Reason: "retry intervals must not be negative"}
			}
		}

		service.retryIntervals = append([]time.Duration{}, intervals...)

		return nil
	}
}

// WithResultCache keeps read results in driver for ttl. Writes through the
// service drop the cached reads of the collection they touch.
func WithResultCache(driver cache.Driver, ttl time.Duration) ServiceConfigFunc {
	return func(service *Service) error {
		if driver == nil {
			return ArgumentError{Argument: "driver", Reason: "a cache driver is required"}
		}

		if ttl <= 0 {
			return ArgumentError{Argument: "ttl", Reason: "ttl must be positive"}
		}

		service.resultCache = newResultCache(driver, ttl)

		return nil
	}
}

// WithPrimaryKey names the column Create reads back on dialects that return
// inserted values. Defaults to "id".
func WithPrimaryKey(column string) ServiceConfigFunc {
	return func(service *Service) error {
		if column == "" {
			return ArgumentError{Argument: "column", Reason: "primary key column must be a non-empty string"}
		}

		service.primaryKey = column

		return nil
	}
}

// WithQueryID tags ctx so every statement run with it logs the same id.
func WithQueryID(ctx context.Context) context.Context {
	return context.WithValue(ctx, queryIDKey{}, uuid.NewString())
}

func queryID(ctx context.Context) string {
	if id, ok := ctx.Value(queryIDKey{}).(string); ok {
		return id
	}

	return uuid.NewString()
}
