// Package memory provides a process-local domain.KVStore. Nothing survives a
// restart, so it is meant for tests and throwaway local runs.
package memory

import (
	"context"
	"sync"

	"github.com/pscheid92/blace/internal/domain"
)

type KVStore struct {
	mu     sync.RWMutex
	values map[string][]byte
}

var _ domain.KVStore = (*KVStore)(nil)

func NewKVStore() *KVStore {
	return &KVStore{values: make(map[string][]byte)}
}

func (s *KVStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.values[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}

func (s *KVStore) Put(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.values[key] = append([]byte(nil), value...)
	return nil
}

func (s *KVStore) Ping(context.Context) error { return nil }

func (s *KVStore) Close() error { return nil }

// Len returns the number of stored keys.
func (s *KVStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.values)
}
