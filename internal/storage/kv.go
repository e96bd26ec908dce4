package storage

import (
	"context"

	"github.com/cockroachdb/errors"
)

// ErrNotFound is returned by a KV when a key has never been written.
var ErrNotFound = errors.New("key not found")

// KV is the blob store the gateway persists collections into.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Close() error
}
