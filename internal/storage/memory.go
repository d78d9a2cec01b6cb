package storage

import (
	"context"
	"fmt"
	"sync"
)

// MemoryStore keeps values in process memory. A non-zero quota caps the size
// of a single value, the way browser storage refuses oversized writes.
type MemoryStore struct {
	mu     sync.RWMutex
	values map[string][]byte
	quota  int
}

func NewMemoryStore(quota int) *MemoryStore {
	return &MemoryStore{
		values: make(map[string][]byte),
		quota:  quota,
	}
}

func (s *MemoryStore) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	v, exists := s.values[key]
	if !exists {
		return nil, ErrNotFound
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, nil
}

func (s *MemoryStore) Set(ctx context.Context, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.quota > 0 && len(value) > s.quota {
		return fmt.Errorf("%w: %d bytes over limit of %d", ErrQuotaExceeded, len(value), s.quota)
	}

	v := make([]byte, len(value))
	copy(v, value)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = v
	return nil
}
