package driver

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// MemorySessionDriver keeps sessions in a process-local expiring LRU.
// Used when no Redis URL is configured.
type MemorySessionDriver struct {
	cache *expirable.LRU[string, []byte]
}

func NewMemorySessionDriver(size int, ttl time.Duration) *MemorySessionDriver {
	return &MemorySessionDriver{
		cache: expirable.NewLRU[string, []byte](size, nil, ttl),
	}
}

func (d *MemorySessionDriver) Get(_ context.Context, key string) ([]byte, error) {
	value, ok := d.cache.Get(key)
	if !ok {
		return nil, ErrKeyNotFound
	}
	out := make([]byte, len(value))
	copy(out, value)
	return out, nil
}

func (d *MemorySessionDriver) Set(_ context.Context, key string, value []byte) error {
	stored := make([]byte, len(value))
	copy(stored, value)
	d.cache.Add(key, stored)
	return nil
}

func (d *MemorySessionDriver) Close() error {
	d.cache.Purge()
	return nil
}
