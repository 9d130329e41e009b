package store

import (
	"context"
	"slices"
	"strings"
	"sync"
)

// MemoryStore keeps builds in memory. Intended for development and tests;
// contents are lost on restart.
type MemoryStore struct {
	mu     sync.RWMutex
	builds map[string]*Build
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{builds: make(map[string]*Build)}
}

// Put implements Store.
func (s *MemoryStore) Put(_ context.Context, b *Build) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.builds[b.ID] = b
	return nil
}

// Get implements Store.
func (s *MemoryStore) Get(_ context.Context, id string) (*Build, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.builds[id]
	if !ok {
		return nil, ErrNotFound
	}
	return b, nil
}

// List implements Store.
func (s *MemoryStore) List(_ context.Context, limit int) ([]Summary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Summary, 0, len(s.builds))
	for _, b := range s.builds {
		out = append(out, b.Summary())
	}
	slices.SortFunc(out, func(a, b Summary) int {
		if a.CreatedAt.After(b.CreatedAt) {
			return -1
		}
		if a.CreatedAt.Before(b.CreatedAt) {
			return 1
		}
		// Equal timestamps happen in tests; keep the order stable.
		return strings.Compare(a.ID, b.ID)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Delete implements Store.
func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.builds[id]; !ok {
		return ErrNotFound
	}
	delete(s.builds, id)
	return nil
}

// Close implements Store.
func (s *MemoryStore) Close(context.Context) error { return nil }

var _ Store = (*MemoryStore)(nil)
