package store

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
)

var (
	// ErrClosed indicates an operation on a closed store.
	ErrClosed = errors.New("store: closed")
	// ErrNameRequired indicates an empty key.
	ErrNameRequired = errors.New("store: name is required")
	// ErrNotInteger indicates a stored value that does not parse as an integer.
	ErrNotInteger = errors.New("store: value is not an integer")
)

// MemoryStore is an in-memory store intended for tests and examples. Values
// are kept as text like the SQLite backend. The zero value is ready to use.
type MemoryStore struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: map[string]string{}}
}

func (s *MemoryStore) GetInt(_ context.Context, name string) (int, bool, error) {
	raw, ok := s.lookup(name)
	if !ok {
		return 0, false, nil
	}
	value, err := parseInt(name, raw)
	if err != nil {
		return 0, false, err
	}
	return value, true, nil
}

func (s *MemoryStore) GetStr(_ context.Context, name string) (string, bool, error) {
	raw, ok := s.lookup(name)
	return raw, ok, nil
}

func (s *MemoryStore) SetInt(ctx context.Context, name string, value int) error {
	return s.SetStr(ctx, name, strconv.Itoa(value))
}

func (s *MemoryStore) SetStr(_ context.Context, name string, value string) error {
	if name == "" {
		return ErrNameRequired
	}
	s.mu.Lock()
	if s.values == nil {
		s.values = map[string]string{}
	}
	s.values[name] = value
	s.mu.Unlock()
	return nil
}

// Delete removes name so reads report it as missing again.
func (s *MemoryStore) Delete(_ context.Context, name string) error {
	s.mu.Lock()
	delete(s.values, name)
	s.mu.Unlock()
	return nil
}

// Len returns the number of stored keys.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.values)
}

func (s *MemoryStore) lookup(name string) (string, bool) {
	s.mu.RLock()
	raw, ok := s.values[name]
	s.mu.RUnlock()
	return raw, ok
}

func parseInt(name, raw string) (int, error) {
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s=%q", ErrNotInteger, name, raw)
	}
	return value, nil
}
