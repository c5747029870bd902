package blobstore

import (
	"context"
	"io"
	"time"
)

// Store is the object storage surface the pipeline depends on. Keys are
// slash-separated paths; writes overwrite existing objects, which is what
// makes re-invoking a processor with the same inputs safe.
type Store interface {
	Put(ctx context.Context, key string, data io.Reader) error
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
	List(ctx context.Context, prefix string) ([]string, error)
	Stat(ctx context.Context, key string) (int64, error)
	Presign(ctx context.Context, key string, ttl time.Duration) (string, error)
}
