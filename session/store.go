package session

import (
	"context"
	"errors"
	"time"

	lru "github.com/hashicorp/golang-lru"
	"github.com/redis/go-redis/v9"
)

var (
	ErrInvalidConfig    = errors.New("invalid session store configuration")
	ErrInvalidStoreType = errors.New("invalid session store type")
)

// Store persists session state between turns.
type Store interface {
	// Get returns nil, nil when no state exists for key.
	Get(ctx context.Context, key string) (*State, error)
	Save(ctx context.Context, state *State) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// StoreType selects a Store driver.
type StoreType string

const (
	StoreTypeMemory StoreType = "memory"
	StoreTypeRedis  StoreType = "redis"
)

// StoreOption is a functional option for configuring a session store.
type StoreOption func(*storeConfig)

type storeConfig struct {
	redisClient *redis.Client
	ttl         time.Duration
	capacity    int
}

// WithRedisClient sets the Redis client for the Redis store.
func WithRedisClient(client *redis.Client) StoreOption {
	return func(c *storeConfig) {
		c.redisClient = client
	}
}

// WithTTL sets how long an idle session survives.
func WithTTL(ttl time.Duration) StoreOption {
	return func(c *storeConfig) {
		c.ttl = ttl
	}
}

// WithCapacity bounds the number of sessions the memory store keeps.
func WithCapacity(n int) StoreOption {
	return func(c *storeConfig) {
		c.capacity = n
	}
}

const (
	defaultTTL      = 24 * time.Hour
	defaultCapacity = 10000
)

// NewStore creates a Store of the given type.
func NewStore(storeType StoreType, opts ...StoreOption) (Store, error) {
	config := &storeConfig{}
	for _, opt := range opts {
		opt(config)
	}
	if config.ttl <= 0 {
		config.ttl = defaultTTL
	}
	if config.capacity <= 0 {
		config.capacity = defaultCapacity
	}

	switch storeType {
	case StoreTypeMemory:
		cache, err := lru.New(config.capacity)
		if err != nil {
			return nil, err
		}
		return &memoryStore{cache: cache, ttl: config.ttl, now: time.Now}, nil
	case StoreTypeRedis:
		if config.redisClient == nil {
			return nil, ErrInvalidConfig
		}
		return &redisStore{client: config.redisClient, ttl: config.ttl}, nil
	default:
		return nil, ErrInvalidStoreType
	}
}
