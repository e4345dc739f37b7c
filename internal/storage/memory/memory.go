package memory

import (
	"context"
	"sync"

	"wealthflow/internal/storage"
)

// Store keeps values in process memory. Contents are lost on restart.
type Store struct {
	mu     sync.RWMutex
	values map[string][]byte
}

var (
	_ storage.KV     = (*Store)(nil)
	_ storage.Pinger = (*Store)(nil)
)

func New() *Store {
	return &Store{values: make(map[string][]byte)}
}

// NewWithValues seeds the store, mostly for tests.
func NewWithValues(values map[string]string) *Store {
	s := New()
	for k, v := range values {
		s.values[k] = []byte(v)
	}
	return s
}

func (s *Store) Get(_ context.Context, key string) ([]byte, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}

func (s *Store) Set(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = append([]byte(nil), value...)
	return nil
}

// Len returns the number of stored keys.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.values)
}

// Ping always succeeds.
func (s *Store) Ping(context.Context) error { return nil }
