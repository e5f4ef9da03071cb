package memory

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
)

// Store is a process-local Storage, the server-side stand-in for browser
// session storage. Values are kept JSON-encoded so readers never share
// memory with writers.
type Store struct {
	ns string
	mu sync.RWMutex
	m  map[string][]byte
}

func New(namespace string) *Store {
	return &Store{ns: namespace, m: make(map[string][]byte)}
}

func (s *Store) key(k string) string { return s.ns + ":" + k }

func (s *Store) Get(_ context.Context, key string, dst any) (bool, error) {
	s.mu.RLock()
	b, ok := s.m[s.key(key)]
	s.mu.RUnlock()
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(b, dst)
}

func (s *Store) Set(_ context.Context, key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.m[s.key(key)] = b
	s.mu.Unlock()
	return nil
}

func (s *Store) Remove(_ context.Context, key string) error {
	s.mu.Lock()
	delete(s.m, s.key(key))
	s.mu.Unlock()
	return nil
}

func (s *Store) Clear(_ context.Context) error {
	prefix := s.ns + ":"
	s.mu.Lock()
	defer s.mu.Unlock()
	for k := range s.m {
		if strings.HasPrefix(k, prefix) {
			delete(s.m, k)
		}
	}
	return nil
}
