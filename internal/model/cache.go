package model

import (
	"context"
	"time"
)

// DefaultCacheTTL is the expiry applied to cached snapshots unless a write
// path overrides it.
const DefaultCacheTTL = time.Hour

// Cache is a key-value accelerator in front of the backend. It owns no state
// of record: a Get miss returns ErrNotFound and any connection fault must be
// treated by callers as a miss, never as an operation failure.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}
