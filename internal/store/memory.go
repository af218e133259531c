package store

import (
	"context"
	"encoding/json"
	"sync"
)

// MemoryStore is the in-memory Store implementation used by tests and
// single-node development runs.
type MemoryStore struct {
	mu   sync.Mutex
	docs map[string][]byte
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		docs: make(map[string][]byte),
	}
}

func (s *MemoryStore) Load(_ context.Context, key string) (json.RawMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return normalizeDoc(s.docs[key]), nil
}

func (s *MemoryStore) Save(_ context.Context, key string, doc json.RawMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.docs[key] = append([]byte(nil), doc...)
	return nil
}

func (s *MemoryStore) Update(_ context.Context, key string, mutate func(json.RawMessage) (json.RawMessage, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, err := mutate(normalizeDoc(s.docs[key]))
	if err != nil {
		return err
	}

	s.docs[key] = append([]byte(nil), next...)
	return nil
}
