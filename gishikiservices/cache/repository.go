package cache

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/vmihailenco/msgpack/v5"
)

// NewRepository stores typed values in driver under prefixed keys, encoded
// with msgpack.
func NewRepository[Key comparable, Value any](
	driver Driver,
	prefix string,
) *Repository[Key, Value] {
	return &Repository[Key, Value]{
		driver: driver,
		prefix: prefix,
	}
}

type Repository[Key comparable, Value any] struct {
	driver Driver
	prefix string
}

func (r *Repository[Key, Value]) Set(ctx context.Context, key Key, value Value, duration time.Duration) error {
	encoded, err := msgpack.Marshal(value)
	if err != nil {
		return err
	}

	return r.driver.Set(ctx, r.key(key), string(encoded), duration)
}

func (r *Repository[Key, Value]) Get(ctx context.Context, key Key) (Value, error) {
	val, err := r.driver.Get(ctx, r.key(key))
	if err != nil {
		return *new(Value), err
	}

	// Loose decoding turns every integer into int64 and every float into
	// float64, matching what SQL drivers scan into interfaces.
	decoder := msgpack.NewDecoder(bytes.NewReader([]byte(val)))
	decoder.UseLooseInterfaceDecoding(true)

	target := *new(Value)
	if err := decoder.Decode(&target); err != nil {
		return *new(Value), err
	}

	return target, nil
}

func (r *Repository[Key, Value]) Delete(ctx context.Context, key Key) error {
	return r.driver.Delete(ctx, r.key(key))
}

func (r *Repository[Key, Value]) key(key Key) string {
	return fmt.Sprintf("%s-%v", r.prefix, key)
}
