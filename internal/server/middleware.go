package server

import (
	"encoding/json"
	"log"
	"net"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"

	"route-planner/internal/metrics"
)

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		lrw := &loggingResponseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(lrw, r)

		duration := time.Since(start)
		log.Printf("[HTTP] %s %s %d %v", r.Method, r.URL.Path, lrw.statusCode, duration)
	})
}

type loggingResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (lrw *loggingResponseWriter) WriteHeader(code int) {
	lrw.statusCode = code
	lrw.ResponseWriter.WriteHeader(code)
}

// metricsMiddleware records one observation per request, labelled by the
// matched route pattern so path parameters do not explode cardinality.
func metricsMiddleware(m *metrics.Metrics, next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		lrw := &loggingResponseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(lrw, r)

		pattern := r.Pattern
		if pattern == "" {
			pattern = "unmatched"
		}
		m.ObserveHTTP(r.Method, pattern, lrw.statusCode, time.Since(start))
	})
}

// corsMiddleware echoes allowed origins. Localhost origins are always
// allowed; "*" allows everything.
func corsMiddleware(allowed []string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")

		if origin != "" && originAllowed(allowed, origin) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Vary", "Origin")
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func originAllowed(allowed []string, origin string) bool {
	if isLocalOrigin(origin) {
		return true
	}
	return slices.Contains(allowed, "*") || slices.Contains(allowed, origin)
}

func isLocalOrigin(origin string) bool {
	for _, host := range []string{"http://localhost", "http://127.0.0.1"} {
		if origin == host || strings.HasPrefix(origin, host+":") {
			return true
		}
	}
	return false
}

const limiterIdleTimeout = 10 * time.Minute

type limitedClient struct {
	limiter  *rate.Limiter
	lastSeen atomic.Int64
}

// clientLimiter keeps one token bucket per client IP
type clientLimiter struct {
	mu       sync.RWMutex
	clients  map[string]*limitedClient
	limit    rate.Limit
	burst    int
	now      func() time.Time
	stop     chan struct{}
	stopOnce sync.Once
}

func newClientLimiter(perSecond float64, burst int) *clientLimiter {
	if burst < 1 {
		burst = max(1, int(perSecond))
	}
	l := &clientLimiter{
		clients: make(map[string]*limitedClient),
		limit:   rate.Limit(perSecond),
		burst:   burst,
		now:     time.Now,
		stop:    make(chan struct{}),
	}
	go l.cleanupLoop()
	return l
}

func (l *clientLimiter) get(key string) *rate.Limiter {
	now := l.now().UnixNano()

	l.mu.RLock()
	if c, ok := l.clients[key]; ok {
		c.lastSeen.Store(now)
		l.mu.RUnlock()
		return c.limiter
	}
	l.mu.RUnlock()

	l.mu.Lock()
	defer l.mu.Unlock()
	if c, ok := l.clients[key]; ok {
		c.lastSeen.Store(now)
		return c.limiter
	}
	c := &limitedClient{limiter: rate.NewLimiter(l.limit, l.burst)}
	c.lastSeen.Store(now)
	l.clients[key] = c
	return c.limiter
}

func (l *clientLimiter) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodOptions {
			next.ServeHTTP(w, r)
			return
		}

		if !l.get(clientKey(r)).Allow() {
			retryAfter := max(1, int(1/float64(l.limit)))
			w.Header().Set("Content-Type", "application/json")
			w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
			w.WriteHeader(http.StatusTooManyRequests)
			json.NewEncoder(w).Encode(map[string]any{
				"error": map[string]string{
					"code":    "RATE_LIMITED",
					"message": "Rate limit exceeded. Please try again later.",
				},
			})
			return
		}

		next.ServeHTTP(w, r)
	})
}

func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// evictIdle drops clients not seen within the idle timeout
func (l *clientLimiter) evictIdle() {
	cutoff := l.now().Add(-limiterIdleTimeout).UnixNano()

	l.mu.Lock()
	defer l.mu.Unlock()
	for key, c := range l.clients {
		if c.lastSeen.Load() < cutoff {
			delete(l.clients, key)
		}
	}
}

func (l *clientLimiter) cleanupLoop() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			l.evictIdle()
		case <-l.stop:
			return
		}
	}
}

// Stop ends the cleanup goroutine. Safe to call more than once.
func (l *clientLimiter) Stop() {
	l.stopOnce.Do(func() { close(l.stop) })
}
