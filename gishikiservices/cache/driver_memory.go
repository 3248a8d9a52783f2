package cache

import (
	"context"
	"sync"
	"time"
)

const memorySweepInterval = time.Minute

type memoryEntry struct {
	value     string
	expiresAt time.Time
}

// NewDriverMemory keeps entries in process. Expired entries are swept
// during writes, at most once per minute.
func NewDriverMemory() (Driver, error) {
	return &driverMemory{
		data:      map[string]memoryEntry{},
		lastSweep: time.Now(),
	}, nil
}

type driverMemory struct {
	mutex     sync.Mutex
	data      map[string]memoryEntry
	lastSweep time.Time
}

func (driver *driverMemory) Delete(ctx context.Context, key string) error {
	driver.mutex.Lock()
	defer driver.mutex.Unlock()

	delete(driver.data, key)

	return nil
}

func (driver *driverMemory) Get(ctx context.Context, key string) (string, error) {
	driver.mutex.Lock()
	defer driver.mutex.Unlock()

	entry, found := driver.data[key]
	if !found || !time.Now().Before(entry.expiresAt) {
		return "", ErrNotFound
	}

	return entry.value, nil
}

func (driver *driverMemory) Set(ctx context.Context, key string, value string, duration time.Duration) error {
	driver.mutex.Lock()
	defer driver.mutex.Unlock()

	now := time.Now()
	if now.Sub(driver.lastSweep) >= memorySweepInterval {
		driver.sweep(now)
	}

	driver.data[key] = memoryEntry{
		value:     value,
		expiresAt: now.Add(duration),
	}

	return nil
}

// sweep expects the mutex to be held.
func (driver *driverMemory) sweep(now time.Time) {
	for key, entry := range driver.data {
		if now.Before(entry.expiresAt) {
			continue
		}

		delete(driver.data, key)
	}

	driver.lastSweep = now
}
