package store

import (
	"cmp"
	"context"
	"slices"
	"sync"
)

// MemoryStore keeps dashboards in a map.
type MemoryStore struct {
	mu    sync.RWMutex
	items map[string]Dashboard
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{items: make(map[string]Dashboard)}
}

func (s *MemoryStore) Save(_ context.Context, d *Dashboard) error {
	if err := prepare(d); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[d.ID] = *d
	return nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (*Dashboard, error) {
	key, err := ParseID(id)
	if err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.items[key]
	if !ok {
		return nil, notFound(id)
	}
	return &d, nil
}

func (s *MemoryStore) List(_ context.Context, limit int) ([]Dashboard, error) {
	s.mu.RLock()
	out := make([]Dashboard, 0, len(s.items))
	for _, d := range s.items {
		out = append(out, d)
	}
	s.mu.RUnlock()

	slices.SortFunc(out, func(a, b Dashboard) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	if n := listLimit(limit); len(out) > n {
		out = out[:n]
	}
	return out, nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	key, err := ParseID(id)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[key]; !ok {
		return notFound(id)
	}
	delete(s.items, key)
	return nil
}

func (s *MemoryStore) Close(context.Context) error { return nil }

var _ Store = (*MemoryStore)(nil)
