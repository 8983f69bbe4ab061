// Package metadata is the client's local key/value store. The persisted
// session lives here under a single key.
package metadata

import (
	"context"
	"time"
)

// Entry is one stored record.
type Entry struct {
	Key       string
	Value     []byte
	UpdatedAt time.Time
}

// Repository stores opaque values by key. Get returns (nil, nil) when the
// key does not exist.
type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	List(ctx context.Context) ([]Entry, error)
}
