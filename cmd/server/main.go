package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"route-planner/internal/cache"
	"route-planner/internal/config"
	"route-planner/internal/database"
	"route-planner/internal/directions"
	"route-planner/internal/geocoding"
	"route-planner/internal/handlers"
	"route-planner/internal/metrics"
	"route-planner/internal/optimizer"
	"route-planner/internal/planner"
	"route-planner/internal/ratelimit"
	"route-planner/internal/routing"
	"route-planner/internal/server"
	"route-planner/internal/sqlstore"
)

const purgeInterval = time.Hour

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	configPath := getEnv("CONFIG_FILE", "")
	if configPath == "" {
		if p, err := database.GetConfigFilePath(); err == nil {
			if _, statErr := os.Stat(p); statErr == nil {
				configPath = p
			}
		}
	}

	cfg, err := config.Load(configPath, os.Getenv)
	if err != nil {
		if config.IsMissingCredential(err) {
			return fmt.Errorf("missing credentials: %w", err)
		}
		return fmt.Errorf("failed to load config: %w", err)
	}

	dsn := cfg.Database.URL
	if dsn == "" {
		dsn, err = database.GetDefaultDBPath()
		if err != nil {
			return fmt.Errorf("failed to resolve database path: %w", err)
		}
	}

	log.Printf("Initializing data store: driver=%s", cfg.Database.Driver)
	store, err := sqlstore.New(cfg.Database.Driver, dsn)
	if err != nil {
		return fmt.Errorf("failed to initialize data store: %w", err)
	}
	defer store.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := metrics.New()
	defer m.Shutdown()
	m.StartDBStatsCollector(store.DB(), 15*time.Second)

	cacheStore, closeCache, err := openCache(ctx, cfg, store)
	if err != nil {
		return err
	}
	defer closeCache()

	geoQueue := ratelimit.NewQueue("geocode", cfg.GeocodeDelay())
	defer geoQueue.Close()
	dirQueue := ratelimit.NewQueue("directions", cfg.Pacing.Directions)
	defer dirQueue.Close()

	geocoder := geocoding.NewCachedGeocoder(newGeocodingProvider(cfg), cacheStore, geoQueue, m)
	router := directions.NewCachedRouter(newDirectionsProvider(cfg), cacheStore, dirQueue, m)

	clusterBuilder := routing.NewClusterBuilder(cfg.Routing)
	fallback := &planner.Planner{
		Builder:  clusterBuilder,
		Strategy: planner.StrategyCluster,
		Hub:      cfg.Hub,
		Metrics:  m,
	}

	primary := &planner.Planner{
		Builder:    clusterBuilder,
		Strategy:   planner.StrategyCluster,
		Hub:        cfg.Hub,
		Geocoder:   geocoder,
		Directions: router,
		Metrics:    m,
	}
	if cfg.UseOptimizer() {
		builder, err := optimizerBuilder(ctx, cfg, m)
		if err != nil {
			return err
		}
		primary.Builder = builder
		primary.Strategy = planner.StrategyOptimizer
		primary.Directions = nil
	}
	log.Printf("[PLANNER] Strategy: %s", primary.Strategy)

	service := planner.NewService(store.Manifests(), store.Settings(), cacheStore, primary, fallback, m)

	handler := &handlers.Handler{
		DB:         store,
		Routes:     service,
		Geocoder:   geocoder,
		Directions: router,
		Cache:      cacheStore,
	}

	srv := server.New(server.Config{
		Addr:              cfg.Server.Addr,
		AllowedOrigins:    cfg.Server.AllowedOrigins,
		RequestsPerSecond: cfg.Server.RequestsPerSecond,
		Burst:             cfg.Server.Burst,
		Metrics:           m,
	}, handler)

	actualAddr, err := srv.Start()
	if err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}
	log.Printf("Listening on http://%s", actualAddr)

	go purgeExpired(ctx, store)

	<-ctx.Done()
	log.Printf("Received shutdown signal, starting graceful shutdown")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("could not gracefully shutdown the server: %w", err)
	}

	log.Println("Server stopped")
	return nil
}

// openCache selects the shared cache backend. The sql backend reuses the
// data store's cache_entries table.
func openCache(ctx context.Context, cfg *config.Config, store *sqlstore.Store) (cache.Store, func(), error) {
	noop := func() {}

	switch cfg.Cache.Backend {
	case config.CacheBackendRedis:
		rs, err := cache.NewRedisStore(ctx, cfg.Cache.RedisURL)
		if err != nil {
			return nil, noop, fmt.Errorf("failed to connect to redis: %w", err)
		}
		return rs, func() { closeQuietly("redis cache", rs) }, nil

	case config.CacheBackendFile:
		path := cfg.Cache.FilePath
		if path == "" {
			var err error
			path, err = database.GetCacheFilePath()
			if err != nil {
				return nil, noop, fmt.Errorf("failed to resolve cache path: %w", err)
			}
		}
		fileStore, err := cache.NewFileStore(path)
		if err != nil {
			return nil, noop, fmt.Errorf("failed to open cache file: %w", err)
		}
		return fileStore, noop, nil

	default:
		return store, noop, nil
	}
}

func newGeocodingProvider(cfg *config.Config) geocoding.Provider {
	if cfg.Providers.Geocoding == config.ProviderNominatim {
		return geocoding.NewNominatimGeocoder(cfg.Providers.NominatimURL, cfg.Providers.NominatimUserAgent)
	}
	return geocoding.NewGoogleGeocoder(cfg.Providers.GoogleMapsAPIKey)
}

func newDirectionsProvider(cfg *config.Config) directions.Provider {
	if cfg.Providers.Directions == config.ProviderOSRM {
		return directions.NewOSRMDirections(cfg.Providers.OSRMURL)
	}
	return directions.NewGoogleDirections(cfg.Providers.GoogleMapsAPIKey)
}

func optimizerBuilder(ctx context.Context, cfg *config.Config, m *metrics.Metrics) (routing.TripBuilder, error) {
	client, err := optimizer.NewDefaultClient(ctx, cfg.Providers.GoogleCloudProject)
	if err != nil {
		return nil, fmt.Errorf("failed to create route optimization client: %w", err)
	}
	return optimizer.NewBuilder(client, m), nil
}

// purgeExpired periodically drops expired rows from the sql cache table
func purgeExpired(ctx context.Context, store *sqlstore.Store) {
	ticker := time.NewTicker(purgeInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := store.PurgeExpired(ctx)
			if err != nil {
				log.Printf("[WARN] Cache purge failed: err=%v", err)
				continue
			}
			if n > 0 {
				log.Printf("[CACHE] Purged %d expired entries", n)
			}
		}
	}
}

func closeQuietly(name string, c io.Closer) {
	if err := c.Close(); err != nil {
		log.Printf("[WARN] Failed to close %s: err=%v", name, err)
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
