package server

import (
	"context"
	"fmt"
	"log"
	"net"
	"net/http"
	"time"

	"route-planner/internal/handlers"
	"route-planner/internal/metrics"
)

// Server wraps the HTTP server and its middleware state
type Server struct {
	httpServer *http.Server
	handler    *handlers.Handler
	limiter    *clientLimiter
	listener   net.Listener
	addr       string
}

// Config holds server configuration
type Config struct {
	Addr           string // e.g., "127.0.0.1:8080" or "127.0.0.1:0" for random port
	AllowedOrigins []string
	// Per-client inbound limit; zero disables limiting
	RequestsPerSecond float64
	Burst             int
	Metrics           *metrics.Metrics
}

// New builds the server around a handler (does not start it)
func New(cfg Config, handler *handlers.Handler) *Server {
	mux := setupRoutes(handler, cfg.Metrics)

	var limiter *clientLimiter
	var h http.Handler = mux
	if cfg.RequestsPerSecond > 0 {
		limiter = newClientLimiter(cfg.RequestsPerSecond, cfg.Burst)
		h = limiter.middleware(h)
	}
	h = corsMiddleware(cfg.AllowedOrigins, h)
	h = metricsMiddleware(cfg.Metrics, h)
	h = loggingMiddleware(h)

	return &Server{
		httpServer: &http.Server{
			Addr:         cfg.Addr,
			Handler:      h,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 120 * time.Second,
			IdleTimeout:  120 * time.Second,
		},
		handler: handler,
		limiter: limiter,
		addr:    cfg.Addr,
	}
}

// Handler returns the fully wrapped HTTP handler
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start starts the server and returns the actual address (useful for random port)
func (s *Server) Start() (string, error) {
	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		return "", fmt.Errorf("failed to listen: %w", err)
	}

	s.listener = listener
	actualAddr := listener.Addr().String()
	log.Printf("[HTTP] Starting server on %s", actualAddr)

	go func() {
		if err := s.httpServer.Serve(listener); err != nil && err != http.ErrServerClosed {
			log.Printf("[ERROR] Server error: %v", err)
		}
	}()

	return actualAddr, nil
}

// Shutdown gracefully shuts down the server. The data store is owned by the
// caller and stays open.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.limiter != nil {
		s.limiter.Stop()
	}
	return s.httpServer.Shutdown(ctx)
}
