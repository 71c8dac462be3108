package session

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

const sessionKeyPrefix = "concierge:session:"

// redisStore keeps sessions as JSON values whose TTL is refreshed on every
// read and write.
type redisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// Get implements Store.
func (s *redisStore) Get(ctx context.Context, key string) (*State, error) {
	redisKey := sessionKeyPrefix + key
	val, err := s.client.Get(ctx, redisKey).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var state State
	if err := json.Unmarshal([]byte(val), &state); err != nil {
		return nil, err
	}
	if state.History == nil {
		state.History = []Turn{}
	}

	// Refresh TTL on read
	_ = s.client.Expire(ctx, redisKey, s.ttl).Err()

	return &state, nil
}

// Save implements Store.
func (s *redisStore) Save(ctx context.Context, state *State) error {
	state.UpdatedAt = time.Now()
	val, err := json.Marshal(state)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, sessionKeyPrefix+state.Key(), val, s.ttl).Err()
}

// Delete implements Store.
func (s *redisStore) Delete(ctx context.Context, key string) error {
	return s.client.Del(ctx, sessionKeyPrefix+key).Err()
}

// Close implements Store.
func (s *redisStore) Close() error {
	return s.client.Close()
}
