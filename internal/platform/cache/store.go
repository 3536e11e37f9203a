package cache

import (
	"context"
	"sync"
	"time"
)

type item struct {
	value    any
	deadline time.Time
}

// Store is an in-process TTL cache used to soften repeated provider
// reads (rankings, fighter search) inside one deployment. A zero TTL
// keeps entries until they are deleted.
type Store struct {
	mu    sync.RWMutex
	items map[string]item
	ttl   time.Duration

	now func() time.Time
}

func NewStore(ttl time.Duration) *Store {
	return &Store{
		items: make(map[string]item),
		ttl:   ttl,
		now:   time.Now,
	}
}

func (s *Store) Get(_ context.Context, key string) (any, bool) {
	if key == "" {
		return nil, false
	}

	s.mu.RLock()
	it, ok := s.items[key]
	s.mu.RUnlock()

	switch {
	case !ok:
		return nil, false
	case !it.deadline.IsZero() && !s.now().Before(it.deadline):
		s.mu.Lock()
		delete(s.items, key)
		s.mu.Unlock()
		return nil, false
	default:
		return it.value, true
	}
}

func (s *Store) Set(_ context.Context, key string, value any) {
	if key == "" {
		return
	}

	it := item{value: value}
	if s.ttl > 0 {
		it.deadline = s.now().Add(s.ttl)
	}

	s.mu.Lock()
	s.items[key] = it
	s.mu.Unlock()
}

func (s *Store) Delete(_ context.Context, key string) {
	if key == "" {
		return
	}

	s.mu.Lock()
	delete(s.items, key)
	s.mu.Unlock()
}
