package store

import (
	"context"
	"sync"
)

// MemoryStore is an in-process Store used by tests and as a harmless
// fallback when no data directory is configured.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string][]byte)}
}

func memKey(username, key string) string {
	return username + "\x00" + key
}

// Get implements Store.
func (s *MemoryStore) Get(_ context.Context, username, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	raw, ok := s.data[memKey(username, key)]
	if !ok {
		return nil, ErrNoDocument
	}
	cp := make([]byte, len(raw))
	copy(cp, raw)
	return cp, nil
}

// Set implements Store.
func (s *MemoryStore) Set(_ context.Context, username, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := make([]byte, len(value))
	copy(cp, value)
	s.data[memKey(username, key)] = cp
	return nil
}

// Delete implements Store.
func (s *MemoryStore) Delete(_ context.Context, username, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, memKey(username, key))
	return nil
}
