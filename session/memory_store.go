package session

import (
	"context"
	"time"

	lru "github.com/hashicorp/golang-lru"
)

// memoryStore keeps sessions in a bounded lru. Values are copied in and out
// so a caller never shares a *State with another turn.
type memoryStore struct {
	cache *lru.Cache
	ttl   time.Duration
	now   func() time.Time
}

// Get implements Store.
func (s *memoryStore) Get(ctx context.Context, key string) (*State, error) {
	v, ok := s.cache.Get(key)
	if !ok {
		return nil, nil
	}
	stored := v.(*State)
	if s.now().Sub(stored.UpdatedAt) > s.ttl {
		s.cache.Remove(key)
		return nil, nil
	}
	return stored.clone(), nil
}

// Save implements Store.
func (s *memoryStore) Save(ctx context.Context, state *State) error {
	state.UpdatedAt = s.now()
	s.cache.Add(state.Key(), state.clone())
	return nil
}

// Delete implements Store.
func (s *memoryStore) Delete(ctx context.Context, key string) error {
	s.cache.Remove(key)
	return nil
}

// Close implements Store.
func (s *memoryStore) Close() error {
	s.cache.Purge()
	return nil
}

func (s *State) clone() *State {
	c := *s
	c.History = make([]Turn, len(s.History))
	copy(c.History, s.History)
	return &c
}
