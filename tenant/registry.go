package tenant

import (
	"fmt"
	"sync"

	apperrors "concierge/errors"

	lru "github.com/hashicorp/golang-lru"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Registry is a read-through cache of loaded tenants keyed by tenant id.
// Cached values are never mutated; Invalidate swaps in a fresh *Tenant.
type Registry struct {
	source Source
	cache  *lru.Cache
	loads  singleflight.Group
	logger *zap.Logger

	// reloadMu serializes Invalidate calls so every file change gets its
	// own load. mu guards generations and the cache writes that depend on it.
	reloadMu    sync.Mutex
	mu          sync.Mutex
	generations map[string]uint64
}

func NewRegistry(source Source, size int, logger *zap.Logger) (*Registry, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	cache, err := lru.New(size)
	if err != nil {
		return nil, apperrors.WrapError(err, "create tenant cache")
	}
	return &Registry{
		source:      source,
		cache:       cache,
		logger:      logger,
		generations: make(map[string]uint64),
	}, nil
}

// Get returns the latest successfully loaded configuration for id, loading
// it on a cache miss. Concurrent misses for the same id share one load.
func (r *Registry) Get(id string) (*Tenant, error) {
	if cached, ok := r.cache.Get(id); ok {
		return cached.(*Tenant), nil
	}

	v, err, _ := r.loads.Do(id, func() (interface{}, error) {
		if cached, ok := r.cache.Get(id); ok {
			return cached, nil
		}
		return r.load(id)
	})
	if err != nil {
		return nil, err
	}
	t, ok := v.(*Tenant)
	if !ok {
		return nil, fmt.Errorf("%w: tenant %s", apperrors.ErrInvalidConfig, id)
	}
	return t, nil
}

// load fills the cache on a miss. A reload that lands while the file is
// being read wins: the miss result is only cached if no Invalidate ran in
// between.
func (r *Registry) load(id string) (*Tenant, error) {
	gen := r.generation(id)
	t, err := r.source.Load(id)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	if r.generations[id] == gen {
		if present, _ := r.cache.ContainsOrAdd(id, t); !present {
			r.mu.Unlock()
			return t, nil
		}
	}
	cached, ok := r.cache.Get(id)
	r.mu.Unlock()
	if ok {
		return cached.(*Tenant), nil
	}

	// The reload evicted the tenant or failed to parse it; report what is
	// on disk now without caching it.
	return r.source.Load(id)
}

func (r *Registry) generation(id string) uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.generations[id]
}

// Invalidate reloads id. A removed file evicts the tenant; a file that no
// longer parses leaves the previous valid configuration in place.
func (r *Registry) Invalidate(id string) {
	r.reloadMu.Lock()
	defer r.reloadMu.Unlock()

	t, err := r.source.Load(id)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.generations[id]++

	switch {
	case err == nil:
		r.cache.Add(id, t)
		r.logger.Info("Tenant configuration reloaded", zap.String("tenant_id", id))
	case apperrors.IsNotFound(err) || apperrors.IsInvalidInput(err):
		r.cache.Remove(id)
		r.logger.Info("Tenant configuration removed", zap.String("tenant_id", id))
	default:
		_, retained := r.cache.Peek(id)
		r.logger.Error("Tenant reload failed",
			zap.String("tenant_id", id),
			zap.Bool("previous_retained", retained),
			zap.Error(err))
	}
}

// Len reports the number of cached tenants.
func (r *Registry) Len() int {
	return r.cache.Len()
}
