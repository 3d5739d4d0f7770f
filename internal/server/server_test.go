package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"route-planner/internal/handlers"
	"route-planner/internal/metrics"
	"route-planner/internal/models"
	"route-planner/internal/testutil"
)

func newTestServer(t *testing.T, cfg Config) *Server {
	t.Helper()
	handler := &handlers.Handler{
		DB:    testutil.NewMemoryDataStore(models.DefaultSettings()),
		Cache: testutil.NewMemoryStore(),
	}
	srv := New(cfg, handler)
	t.Cleanup(func() { srv.Shutdown(context.Background()) })
	return srv
}

func serve(srv *Server, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)
	return w
}

func TestRoutesDispatchByMethodAndPath(t *testing.T) {
	srv := newTestServer(t, Config{Addr: "127.0.0.1:0"})

	w := serve(srv, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)

	w = serve(srv, httptest.NewRequest(http.MethodPost, "/api/v1/health", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)

	w = serve(srv, httptest.NewRequest(http.MethodGet, "/api/v1/manifests/abc", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "NOT_FOUND")

	w = serve(srv, httptest.NewRequest(http.MethodDelete, "/api/v1/cache?prefix=routes", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = serve(srv, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCORS(t *testing.T) {
	srv := newTestServer(t, Config{AllowedOrigins: []string{"https://dispatch.example.org"}})

	tests := []struct {
		origin  string
		allowed bool
	}{
		{"https://dispatch.example.org", true},
		{"http://localhost:5173", true},
		{"http://127.0.0.1", true},
		{"https://evil.example.com", false},
		{"http://localhost.evil.com", false},
	}

	for _, tt := range tests {
		t.Run(tt.origin, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
			req.Header.Set("Origin", tt.origin)
			w := serve(srv, req)

			if tt.allowed {
				assert.Equal(t, tt.origin, w.Header().Get("Access-Control-Allow-Origin"))
			} else {
				assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
			}
		})
	}

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/routes", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	w := serve(srv, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), "PUT")
}

func TestCORSWildcard(t *testing.T) {
	assert.True(t, originAllowed([]string{"*"}, "https://anything.example"))
	assert.False(t, originAllowed(nil, "https://anything.example"))
}

func TestRateLimitPerClient(t *testing.T) {
	srv := newTestServer(t, Config{RequestsPerSecond: 0.001, Burst: 2})

	request := func(remote string) int {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
		req.RemoteAddr = remote
		return serve(srv, req).Code
	}

	assert.Equal(t, http.StatusOK, request("10.0.0.1:5000"))
	assert.Equal(t, http.StatusOK, request("10.0.0.1:5001"))
	assert.Equal(t, http.StatusTooManyRequests, request("10.0.0.1:5002"))

	// a different client has its own bucket
	assert.Equal(t, http.StatusOK, request("10.0.0.2:5000"))
}

func TestRateLimitResponse(t *testing.T) {
	srv := newTestServer(t, Config{RequestsPerSecond: 0.5, Burst: 1})

	serve(srv, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))
	w := serve(srv, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))

	require.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "2", w.Header().Get("Retry-After"))
	assert.Contains(t, w.Body.String(), "RATE_LIMITED")
}

func TestClientLimiterEvictsIdleClients(t *testing.T) {
	l := newClientLimiter(10, 10)
	defer l.Stop()

	now := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }
	l.get("10.0.0.1")

	now = now.Add(5 * time.Minute)
	l.get("10.0.0.2")

	now = now.Add(6 * time.Minute)
	l.evictIdle()

	l.mu.RLock()
	defer l.mu.RUnlock()
	assert.NotContains(t, l.clients, "10.0.0.1")
	assert.Contains(t, l.clients, "10.0.0.2")
}

func TestMetricsEndpointRecordsRoutePatterns(t *testing.T) {
	m := metrics.New()
	srv := newTestServer(t, Config{Metrics: m})

	serve(srv, httptest.NewRequest(http.MethodGet, "/api/v1/manifests/abc", nil))
	serve(srv, httptest.NewRequest(http.MethodGet, "/nope", nil))

	w := serve(srv, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)

	body := w.Body.String()
	assert.True(t, strings.Contains(body, `path="GET /api/v1/manifests/{id}"`), body)
	assert.Contains(t, body, `path="unmatched"`)
}

func TestStartAndShutdown(t *testing.T) {
	srv := newTestServer(t, Config{Addr: "127.0.0.1:0"})

	addr, err := srv.Start()
	require.NoError(t, err)

	resp, err := http.Get("http://" + addr + "/api/v1/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, srv.Shutdown(ctx))
}
