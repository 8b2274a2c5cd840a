package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/tduarte/shorts-server/internal/logger"
	"github.com/tduarte/shorts-server/internal/model"
)

// Aside wraps a cache with the read-through/invalidate-on-write discipline.
// The cache is trusted unconditionally between writes, so every write path
// must call Put or Invalidate before reporting success; readers otherwise
// observe stale data until TTL expiry.
type Aside struct {
	cache  model.Cache
	ttl    time.Duration
	logger *logger.Logger
}

// NewAside creates the cache-aside layer. A zero ttl falls back to the
// default one-hour TTL.
func NewAside(cache model.Cache, ttl time.Duration, l *logger.Logger) *Aside {
	if ttl <= 0 {
		ttl = model.DefaultCacheTTL
	}
	return &Aside{cache: cache, ttl: ttl, logger: l}
}

// GetOrLoad returns the cached snapshot of key, or calls loader and caches
// its result. Cache faults are degraded: the loader result is returned and
// population is skipped. Loader failures are never cached.
func GetOrLoad[V any](ctx context.Context, a *Aside, key string, loader func(ctx context.Context) (V, error)) (V, error) {
	var value V

	raw, err := a.cache.Get(ctx, key)
	switch {
	case err == nil:
		if err := json.Unmarshal(raw, &value); err == nil {
			hits.Inc()
			return value, nil
		}
		// Undecodable entry: drop it and fall through to the loader.
		a.Invalidate(ctx, key)
	case errors.Is(err, model.ErrNotFound):
		misses.Inc()
	default:
		faults.Inc()
		a.logger.Warn("cache read failed, falling back to backend", "key", key, "error", err)
	}

	value, err = loader(ctx)
	if err != nil {
		return value, err
	}

	a.put(ctx, key, value)
	return value, nil
}

// Put overwrites the snapshot for key. Used by write paths that already hold
// the fresh value, so the next read hits.
func (a *Aside) Put(ctx context.Context, key string, value any) {
	a.put(ctx, key, value)
}

func (a *Aside) put(ctx context.Context, key string, value any) {
	raw, err := json.Marshal(value)
	if err != nil {
		a.logger.Warn("failed to encode cache value", "key", key, "error", err)
		return
	}
	if err := a.cache.Set(ctx, key, raw, a.ttl); err != nil {
		faults.Inc()
		a.logger.Warn("cache write failed", "key", key, "error", err)
	}
}

// Invalidate drops the given keys. Failures are logged, not surfaced: the
// entries still expire by TTL and the operation itself already succeeded.
func (a *Aside) Invalidate(ctx context.Context, keys ...string) {
	if err := a.cache.Delete(ctx, keys...); err != nil {
		faults.Inc()
		a.logger.Warn("cache invalidation failed", "keys", fmt.Sprint(keys), "error", err)
	}
}
