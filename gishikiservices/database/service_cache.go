package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"
	"github.com/lunagic/gishiki/gishikiservices/cache"
	"github.com/vmihailenco/msgpack/v5"
	"golang.org/x/sync/singleflight"
)

// resultCache stores read results keyed by a hash of the statement and the
// current generation of the collection read. Bumping a generation orphans
// every result cached under the old one; they expire on their own.
type resultCache struct {
	driver  cache.Driver
	records *cache.Repository[string, []Record]
	ttl     time.Duration
	group   singleflight.Group
}

func newResultCache(driver cache.Driver, ttl time.Duration) *resultCache {
	return &resultCache{
		driver:  driver,
		records: cache.NewRepository[string, []Record](driver, "gishiki-records"),
		ttl:     ttl,
	}
}

func (resultCache *resultCache) remember(
	ctx context.Context,
	dialect string,
	collection string,
	statement statement,
	load func() ([]Record, error),
) ([]Record, error) {
	generation, err := resultCache.generation(ctx, collection)
	if err != nil {
		return nil, err
	}

	key, err := resultCacheKey(dialect, generation, statement)
	if err != nil {
		return nil, err
	}

	records, err := resultCache.records.Get(ctx, key)
	if err == nil {
		return records, nil
	}

	if !errors.Is(err, cache.ErrNotFound) {
		return nil, err
	}

	result, err, _ := resultCache.group.Do(key, func() (any, error) {
		records, err := load()
		if err != nil {
			return nil, err
		}

		if err := resultCache.records.Set(ctx, key, records, resultCache.ttl); err != nil {
			return nil, err
		}

		return records, nil
	})
	if err != nil {
		return nil, err
	}

	return result.([]Record), nil
}

func (resultCache *resultCache) invalidate(ctx context.Context, collection string) error {
	return resultCache.driver.Delete(ctx, generationKey(collection))
}

func (resultCache *resultCache) generation(ctx context.Context, collection string) (string, error) {
	key := generationKey(collection)

	generation, err := resultCache.driver.Get(ctx, key)
	if err == nil {
		return generation, nil
	}

	if !errors.Is(err, cache.ErrNotFound) {
		return "", err
	}

	generation = uuid.NewString()
	// Outlives the records so a live record never loses its generation
	if err := resultCache.driver.Set(ctx, key, generation, resultCache.ttl*2); err != nil {
		return "", err
	}

	return generation, nil
}

func generationKey(collection string) string {
	return "gishiki-generation-" + collection
}

func resultCacheKey(dialect string, generation string, statement statement) (string, error) {
	payload, err := msgpack.Marshal([]any{dialect, generation, statement.Query, statement.Parameters})
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("%016x", xxhash.Sum64(payload)), nil
}
