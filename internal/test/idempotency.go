package test

import (
	"context"
	"sync"
)

// IdempotencyStoreStub keeps keys in memory. An empty value marks a reserved key.
type IdempotencyStoreStub struct {
	ReserveErr error

	mu   sync.Mutex
	keys map[string]string
}

func NewIdempotencyStoreStub() *IdempotencyStoreStub {
	return &IdempotencyStoreStub{keys: make(map[string]string)}
}

func (s *IdempotencyStoreStub) Reserve(_ context.Context, key string) (string, bool, error) {
	if s.ReserveErr != nil {
		return "", false, s.ReserveErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if ref, ok := s.keys[key]; ok {
		return ref, false, nil
	}
	s.keys[key] = ""
	return "", true, nil
}

func (s *IdempotencyStoreStub) Complete(_ context.Context, key, reference string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.keys[key] = reference
	return nil
}

func (s *IdempotencyStoreStub) Release(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.keys, key)
	return nil
}

// Value returns the stored reference and whether key exists.
func (s *IdempotencyStoreStub) Value(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ref, ok := s.keys[key]
	return ref, ok
}
