// Package metrics provides Prometheus metrics for the route planner.
package metrics

import (
	"context"
	"database/sql"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application. A nil *Metrics
// is valid and records nothing.
type Metrics struct {
	Registry *prometheus.Registry

	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	ProviderCallsTotal    *prometheus.CounterVec
	CacheLookupsTotal     *prometheus.CounterVec
	RouteComputeDuration  *prometheus.HistogramVec
	SkippedShipmentsTotal *prometheus.CounterVec
	GeocodeFailuresTotal  prometheus.Counter

	DBConnectionsOpen  prometheus.Gauge
	DBConnectionsInUse prometheus.Gauge

	collectorStarted atomic.Bool
	cancel           context.CancelFunc
	wg               sync.WaitGroup
}

// New creates and registers all application metrics with a new registry
func New() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		Registry: registry,
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "route_planner_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "route_planner_http_request_duration_seconds",
				Help:    "HTTP request latency distribution",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		ProviderCallsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "route_planner_provider_calls_total",
				Help: "External provider calls by provider and outcome",
			},
			[]string{"provider", "outcome"},
		),
		CacheLookupsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "route_planner_cache_lookups_total",
				Help: "Cache lookups by key kind and result",
			},
			[]string{"kind", "result"},
		),
		RouteComputeDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "route_planner_route_compute_duration_seconds",
				Help:    "Time to compute route data for a manifest",
				Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120},
			},
			[]string{"strategy"},
		),
		SkippedShipmentsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "route_planner_skipped_shipments_total",
				Help: "Passengers the optimizer left unassigned",
			},
			[]string{"direction"},
		),
		GeocodeFailuresTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "route_planner_geocode_failures_total",
			Help: "Addresses that could not be geocoded during route computation",
		}),
		DBConnectionsOpen: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "route_planner_db_connections_open",
			Help: "Number of open database connections",
		}),
		DBConnectionsInUse: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "route_planner_db_connections_in_use",
			Help: "Number of database connections currently in use",
		}),
	}

	registry.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.ProviderCallsTotal,
		m.CacheLookupsTotal,
		m.RouteComputeDuration,
		m.SkippedShipmentsTotal,
		m.GeocodeFailuresTotal,
		m.DBConnectionsOpen,
		m.DBConnectionsInUse,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return m
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{Registry: m.Registry})
}

// ObserveHTTP records one served request
func (m *Metrics) ObserveHTTP(method, path string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path).Observe(d.Seconds())
}

// ObserveProviderCall records the outcome of an external provider request
func (m *Metrics) ObserveProviderCall(provider string, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.ProviderCallsTotal.WithLabelValues(provider, outcome).Inc()
}

// ObserveCacheLookup records a cache hit or miss for a key kind
func (m *Metrics) ObserveCacheLookup(kind string, hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.CacheLookupsTotal.WithLabelValues(kind, result).Inc()
}

// ObserveRouteCompute records how long a full computation took
func (m *Metrics) ObserveRouteCompute(strategy string, d time.Duration) {
	if m == nil {
		return
	}
	m.RouteComputeDuration.WithLabelValues(strategy).Observe(d.Seconds())
}

// AddSkippedShipments counts passengers the optimizer could not place
func (m *Metrics) AddSkippedShipments(direction string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.SkippedShipmentsTotal.WithLabelValues(direction).Add(float64(n))
}

// AddGeocodeFailures counts addresses that failed to geocode
func (m *Metrics) AddGeocodeFailures(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.GeocodeFailuresTotal.Add(float64(n))
}

// StartDBStatsCollector periodically copies connection pool stats into the
// gauges. Only the first call starts a collector.
func (m *Metrics) StartDBStatsCollector(db *sql.DB, interval time.Duration) {
	if m == nil || db == nil {
		return
	}
	if !m.collectorStarted.CompareAndSwap(false, true) {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	m.wg.Add(1)
	m.cancel = cancel

	go func() {
		defer m.wg.Done()

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				stats := db.Stats()
				m.DBConnectionsOpen.Set(float64(stats.OpenConnections))
				m.DBConnectionsInUse.Set(float64(stats.InUse))
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Shutdown stops the DB stats collector and waits for it to exit
func (m *Metrics) Shutdown() {
	if m == nil {
		return
	}
	if m.cancel != nil {
		m.cancel()
	}
	m.wg.Wait()
}
