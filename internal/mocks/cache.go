package mocks

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/tduarte/shorts-server/internal/model"
)

// MemCache is an in-memory model.Cache. TTLs are accepted and ignored.
// Setting Broken makes every call fail, to exercise degraded-cache paths.
type MemCache struct {
	mu      sync.Mutex
	entries map[string][]byte
	Broken  bool
}

func NewMemCache() *MemCache {
	return &MemCache{entries: make(map[string][]byte)}
}

var errCacheDown = errors.New("cache down")

func (c *MemCache) Get(ctx context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.Broken {
		return nil, errCacheDown
	}
	raw, ok := c.entries[key]
	if !ok {
		return nil, model.ErrNotFound
	}
	return raw, nil
}

func (c *MemCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.Broken {
		return errCacheDown
	}
	c.entries[key] = value
	return nil
}

func (c *MemCache) Delete(ctx context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.Broken {
		return errCacheDown
	}
	for _, key := range keys {
		delete(c.entries, key)
	}
	return nil
}

// Contains reports whether a key is currently cached.
func (c *MemCache) Contains(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.entries[key]
	return ok
}
