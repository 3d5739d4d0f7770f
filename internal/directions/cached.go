package directions

import (
	"context"
	"log"

	"route-planner/internal/cache"
	"route-planner/internal/metrics"
	"route-planner/internal/models"
	"route-planner/internal/ratelimit"
)

// CachedRouter serves directions from the shared cache and paces provider
// calls through its queue.
type CachedRouter struct {
	provider Provider
	store    cache.Store
	queue    *ratelimit.Queue
	metrics  *metrics.Metrics
}

// NewCachedRouter wires a provider to a cache and a pacing queue. metrics may
// be nil.
func NewCachedRouter(provider Provider, store cache.Store, queue *ratelimit.Queue, m *metrics.Metrics) *CachedRouter {
	return &CachedRouter{
		provider: provider,
		store:    store,
		queue:    queue,
		metrics:  m,
	}
}

// Route returns directions from origin through waypoints to dest
func (r *CachedRouter) Route(ctx context.Context, origin, dest models.Coordinates, waypoints []models.Coordinates) (*models.Directions, error) {
	key := cache.Key(cache.KindDirections, CacheInput(origin, dest, waypoints))

	var cached models.Directions
	hit, err := cache.GetJSON(ctx, r.store, key, &cached)
	if err != nil {
		log.Printf("[WARN] Directions cache read failed: key=%s err=%v", key, err)
	}
	r.metrics.ObserveCacheLookup(cache.KindDirections, hit)
	if hit {
		log.Printf("[CACHE] HIT: directions %s", key)
		return &cached, nil
	}

	result, err := ratelimit.Do(ctx, r.queue, func(ctx context.Context) (*models.Directions, error) {
		return r.provider.Directions(ctx, origin, dest, waypoints)
	})
	r.metrics.ObserveProviderCall(r.provider.Name(), err)
	if err != nil {
		return nil, err
	}

	if err := cache.SetJSON(ctx, r.store, key, result, cache.DefaultTTL); err != nil {
		log.Printf("[WARN] Directions cache write failed: key=%s err=%v", key, err)
	}
	return result, nil
}
