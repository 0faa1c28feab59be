package storage

import (
	"context"
	"sync"
)

// MemoryStore keeps state in process memory. Values are copied on the way in
// and out.
type MemoryStore struct {
	mu     sync.RWMutex
	values map[string]map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		values: make(map[string]map[string][]byte),
	}
}

func (s *MemoryStore) Load(_ context.Context, session, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.values[session][key]
	if !ok {
		return nil, ErrStateNotFound
	}
	return append([]byte(nil), v...), nil
}

func (s *MemoryStore) Save(_ context.Context, session, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.set(session, key, value)
	return nil
}

func (s *MemoryStore) SaveAll(_ context.Context, session string, values map[string][]byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for k, v := range values {
		s.set(session, k, v)
	}
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, session, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.values[session], key)
	return nil
}

func (s *MemoryStore) set(session, key string, value []byte) {
	m, ok := s.values[session]
	if !ok {
		m = make(map[string][]byte)
		s.values[session] = m
	}
	m[key] = append([]byte(nil), value...)
}
