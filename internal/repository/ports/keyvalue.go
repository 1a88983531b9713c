package ports

import (
	"context"
	"errors"
)

// ErrKeyNotFound is returned by GetItem when the key has never been written.
var ErrKeyNotFound = errors.New("key not found")

// KeyValueStore is the persistence boundary for user state. Values are
// opaque blobs written whole; there are no deltas and no transactions.
type KeyValueStore interface {
	GetItem(ctx context.Context, key string) ([]byte, error)
	SetItem(ctx context.Context, key string, value []byte) error
}
