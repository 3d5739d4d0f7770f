package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveProviderCall(t *testing.T) {
	m := New()

	m.ObserveProviderCall("google_geocoding", nil)
	m.ObserveProviderCall("google_geocoding", nil)
	m.ObserveProviderCall("google_geocoding", errors.New("denied"))

	assert.Equal(t, 2.0, testutil.ToFloat64(m.ProviderCallsTotal.WithLabelValues("google_geocoding", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ProviderCallsTotal.WithLabelValues("google_geocoding", "error")))
}

func TestObserveCacheLookup(t *testing.T) {
	m := New()

	m.ObserveCacheLookup("geocode", true)
	m.ObserveCacheLookup("geocode", false)
	m.ObserveCacheLookup("geocode", false)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.CacheLookupsTotal.WithLabelValues("geocode", "hit")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.CacheLookupsTotal.WithLabelValues("geocode", "miss")))
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.ObserveHTTP("GET", "/", 200, time.Millisecond)
		m.ObserveProviderCall("x", nil)
		m.ObserveCacheLookup("geocode", true)
		m.ObserveRouteCompute("cluster", time.Second)
		m.AddSkippedShipments("pickup", 2)
		m.AddGeocodeFailures(1)
		m.Shutdown()
	})
}

func TestHandlerExposesMetrics(t *testing.T) {
	m := New()
	m.AddSkippedShipments("pickup", 3)
	m.ObserveHTTP("GET", "/api/v1/routes", 200, 10*time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `route_planner_skipped_shipments_total{direction="pickup"} 3`)
	assert.Contains(t, body, "route_planner_http_requests_total")
}
