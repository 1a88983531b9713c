// Package memory is a map-backed key-value store for tests and throwaway
// environments. Contents vanish with the process.
package memory

import (
	"context"
	"sync"

	"github.com/lescale-paris/escale-backend/internal/repository/ports"
)

type KeyValueStore struct {
	mu    sync.RWMutex
	items map[string][]byte
}

func NewKeyValueStore() *KeyValueStore {
	return &KeyValueStore{items: make(map[string][]byte)}
}

func (s *KeyValueStore) GetItem(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	value, ok := s.items[key]
	if !ok {
		return nil, ports.ErrKeyNotFound
	}
	out := make([]byte, len(value))
	copy(out, value)
	return out, nil
}

func (s *KeyValueStore) SetItem(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := make([]byte, len(value))
	copy(stored, value)
	s.items[key] = stored
	return nil
}

var _ ports.KeyValueStore = (*KeyValueStore)(nil)
