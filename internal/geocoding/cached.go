package geocoding

import (
	"context"
	"log"

	"route-planner/internal/cache"
	"route-planner/internal/metrics"
	"route-planner/internal/ratelimit"
)

// CachedGeocoder is the orchestrated entry point for geocoding: lookups hit
// the shared cache under the normalized address, and misses go to the
// provider one at a time through the queue.
type CachedGeocoder struct {
	provider Provider
	store    cache.Store
	queue    *ratelimit.Queue
	metrics  *metrics.Metrics
}

// NewCachedGeocoder wires a provider to a cache and a pacing queue. metrics
// may be nil.
func NewCachedGeocoder(provider Provider, store cache.Store, queue *ratelimit.Queue, m *metrics.Metrics) *CachedGeocoder {
	return &CachedGeocoder{
		provider: provider,
		store:    store,
		queue:    queue,
		metrics:  m,
	}
}

// BatchItem is one entry of a batch geocode. Exactly one of Result and Error
// is set.
type BatchItem struct {
	Address string  `json:"address"`
	Result  *Result `json:"result,omitempty"`
	Error   string  `json:"error,omitempty"`
}

// Geocode resolves an address, consulting the cache first
func (g *CachedGeocoder) Geocode(ctx context.Context, address string) (*Result, error) {
	key := cache.Key(cache.KindGeocode, NormalizeAddress(address))

	var cached Result
	hit, err := cache.GetJSON(ctx, g.store, key, &cached)
	if err != nil {
		log.Printf("[WARN] Geocode cache read failed: key=%s err=%v", key, err)
	}
	g.metrics.ObserveCacheLookup(cache.KindGeocode, hit)
	if hit {
		log.Printf("[CACHE] HIT: geocode %s", address)
		return &cached, nil
	}

	result, err := ratelimit.Do(ctx, g.queue, func(ctx context.Context) (*Result, error) {
		return g.provider.Geocode(ctx, address)
	})
	g.metrics.ObserveProviderCall(g.provider.Name(), err)
	if err != nil {
		return nil, err
	}

	if err := cache.SetJSON(ctx, g.store, key, result, cache.DefaultTTL); err != nil {
		log.Printf("[WARN] Geocode cache write failed: key=%s err=%v", key, err)
	}
	return result, nil
}

// BatchGeocode resolves addresses in order. A failure is recorded on its item
// and does not stop the batch.
func (g *CachedGeocoder) BatchGeocode(ctx context.Context, addresses []string) []BatchItem {
	items := make([]BatchItem, len(addresses))
	for i, address := range addresses {
		items[i].Address = address
		result, err := g.Geocode(ctx, address)
		if err != nil {
			items[i].Error = err.Error()
			continue
		}
		items[i].Result = result
	}
	return items
}
