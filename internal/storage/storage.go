package storage

import (
	"context"
	"errors"
)

// ErrNotFound is returned by KV.Get when the key has never been written
// or has been deleted.
var ErrNotFound = errors.New("record not found")

// KV is the string-keyed durable store the lineage engine persists into.
// Each namespace key holds one opaque value (the JSON event sequence).
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	Close() error
}
