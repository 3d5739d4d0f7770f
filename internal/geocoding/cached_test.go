package geocoding_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"route-planner/internal/cache"
	"route-planner/internal/geocoding"
	"route-planner/internal/metrics"
	"route-planner/internal/ratelimit"
	"route-planner/internal/testutil"
)

func newCachedGeocoder(t *testing.T) (*geocoding.CachedGeocoder, *testutil.MockGeocoder, *testutil.MemoryStore, *metrics.Metrics) {
	t.Helper()
	provider := testutil.NewMockGeocoder()
	store := testutil.NewMemoryStore()
	queue := ratelimit.NewQueue("geocode", time.Millisecond)
	t.Cleanup(queue.Close)
	m := metrics.New()
	return geocoding.NewCachedGeocoder(provider, store, queue, m), provider, store, m
}

func TestCachedGeocoderMissThenHit(t *testing.T) {
	g, provider, store, _ := newCachedGeocoder(t)
	provider.Set("500 W Garvey Ave #E", 34.06, -118.13)
	ctx := context.Background()

	first, err := g.Geocode(ctx, "500 W Garvey Ave #E")
	require.NoError(t, err)
	assert.Equal(t, 34.06, first.Lat)
	assert.Equal(t, 1, provider.CallCount())

	// A different spelling of the same address shares the cache entry.
	second, err := g.Geocode(ctx, "500 West Garvey Avenue")
	require.NoError(t, err)
	assert.Equal(t, first.Lat, second.Lat)
	assert.Equal(t, first.Lng, second.Lng)
	assert.Equal(t, 1, provider.CallCount())

	keys := store.Keys()
	require.Len(t, keys, 1)
	assert.Equal(t, cache.Key(cache.KindGeocode, "500 west garvey avenue"), keys[0])
}

func TestCachedGeocoderSendsOriginalAddress(t *testing.T) {
	g, provider, _, _ := newCachedGeocoder(t)
	provider.Set("12 Elm Dr # 204", 34.0, -118.0)

	_, err := g.Geocode(context.Background(), "12 Elm Dr # 204")
	require.NoError(t, err)
	assert.Equal(t, []string{"12 Elm Dr # 204"}, provider.Calls)
}

func TestCachedGeocoderFailureNotCached(t *testing.T) {
	g, provider, store, _ := newCachedGeocoder(t)
	ctx := context.Background()

	_, err := g.Geocode(ctx, "Nowhere")
	var geoErr *geocoding.ErrGeocodingFailed
	require.ErrorAs(t, err, &geoErr)
	assert.Empty(t, store.Keys())

	_, err = g.Geocode(ctx, "Nowhere")
	require.Error(t, err)
	assert.Equal(t, 2, provider.CallCount())
}

func TestBatchGeocodeReportsPerItem(t *testing.T) {
	g, provider, _, _ := newCachedGeocoder(t)
	provider.Set("A St", 1, 2)
	provider.Set("C St", 5, 6)

	items := g.BatchGeocode(context.Background(), []string{"A St", "B St", "C St"})

	require.Len(t, items, 3)
	assert.Equal(t, "A St", items[0].Address)
	require.NotNil(t, items[0].Result)
	assert.Equal(t, 1.0, items[0].Result.Lat)
	assert.Empty(t, items[0].Error)

	assert.Nil(t, items[1].Result)
	assert.Contains(t, items[1].Error, "B St")

	require.NotNil(t, items[2].Result)
	assert.Equal(t, 6.0, items[2].Result.Lng)
}
