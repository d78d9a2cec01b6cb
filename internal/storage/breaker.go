package storage

import (
	"context"
	"errors"

	"github.com/fjod/phone_store/pkg/circuitbreaker"
	"github.com/sony/gobreaker/v2"
)

// BreakerStore stops calling a failing backend for a while instead of
// stalling every cart request on it. While open, calls fail with
// gobreaker.ErrOpenState.
type BreakerStore struct {
	next KVStore
	cb   *gobreaker.CircuitBreaker[[]byte]
}

func NewBreakerStore(next KVStore, name string, opts ...circuitbreaker.Option) *BreakerStore {
	opts = append([]circuitbreaker.Option{circuitbreaker.WithSuccess(isHealthy)}, opts...)
	return &BreakerStore{
		next: next,
		cb:   circuitbreaker.New[[]byte](name, opts...),
	}
}

func (b *BreakerStore) Get(ctx context.Context, key string) ([]byte, error) {
	return b.cb.Execute(func() ([]byte, error) {
		return b.next.Get(ctx, key)
	})
}

func (b *BreakerStore) Set(ctx context.Context, key string, value []byte) error {
	_, err := b.cb.Execute(func() ([]byte, error) {
		return nil, b.next.Set(ctx, key, value)
	})
	return err
}

func (b *BreakerStore) State() gobreaker.State {
	return b.cb.State()
}

// a missing key or a full quota says nothing about backend health
func isHealthy(err error) bool {
	return err == nil || errors.Is(err, ErrNotFound) || errors.Is(err, ErrQuotaExceeded)
}
