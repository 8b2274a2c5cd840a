package model

import (
	"context"
	"io"
)

// BlobStorage stores binary media keyed by opaque locators it never
// interprets. DeleteAll removes every object under the given key prefix.
type BlobStorage interface {
	Upload(ctx context.Context, key string, reader io.Reader) error
	Download(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
	DeleteAll(ctx context.Context, prefix string) error
	Exists(ctx context.Context, key string) (bool, error)
}
