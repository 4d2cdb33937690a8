// Package kvstore provides the durable key-value store the dashboard keeps
// its collections in. Values are read and written whole; there are no
// partial updates.
package kvstore

import (
	"context"
	"errors"
)

// ErrKeyNotFound is returned by Get when no value exists under the key.
var ErrKeyNotFound = errors.New("kvstore: key not found")

// Store is the persistence port. Implementations must treat values as
// opaque bytes (JSON documents in practice).
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}
