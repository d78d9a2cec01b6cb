package storage

import (
	"context"
	"errors"
)

// KVStore is the durable key-value storage a cart is persisted into.
// Set replaces the whole value under key in a single operation. There is no
// delete: a cleared cart is stored as an empty array.
type KVStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
}

var (
	ErrNotFound      = errors.New("key not found")
	ErrQuotaExceeded = errors.New("storage quota exceeded")
)
