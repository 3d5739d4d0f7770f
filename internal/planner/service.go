package planner

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"route-planner/internal/cache"
	"route-planner/internal/database"
	"route-planner/internal/metrics"
	"route-planner/internal/models"
)

// cachedRoutes is the stored form of a computed RouteData
type cachedRoutes struct {
	Data     models.RouteData `json:"data"`
	CachedAt time.Time        `json:"cached_at"`
}

// Service serves route data for stored manifests, caching each result under
// the manifest id and the configuration fingerprint.
type Service struct {
	manifests database.ManifestRepository
	settings  database.SettingsRepository
	store     cache.Store
	planner   *Planner
	fallback  *Planner
	metrics   *metrics.Metrics
	now       func() time.Time
}

// NewService creates a Service. fallback is the provider-free planner used to
// preview row sets; metrics may be nil.
func NewService(manifests database.ManifestRepository, settings database.SettingsRepository, store cache.Store, planner, fallback *Planner, m *metrics.Metrics) *Service {
	return &Service{
		manifests: manifests,
		settings:  settings,
		store:     store,
		planner:   planner,
		fallback:  fallback,
		metrics:   m,
		now:       time.Now,
	}
}

// GetRoutes returns routes for a manifest, or for the newest one when
// manifestID is empty. A missing manifest yields an empty RouteData. force
// skips the cache read but still refreshes the entry.
func (s *Service) GetRoutes(ctx context.Context, manifestID string, force bool) (*models.RouteResponse, error) {
	meta, err := s.resolveManifest(ctx, manifestID)
	if errors.Is(err, database.ErrNotFound) {
		return &models.RouteResponse{RouteData: s.emptyRouteData()}, nil
	}
	if err != nil {
		return nil, err
	}

	settings, err := s.settings.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}
	key := RouteCacheKey(meta.ID, ConfigHash(*settings))

	if !force {
		var cached cachedRoutes
		hit, err := cache.GetJSON(ctx, s.store, key, &cached)
		if err != nil {
			log.Printf("[WARN] Route cache read failed: key=%s err=%v", key, err)
		}
		s.metrics.ObserveCacheLookup(cache.KindRoutes, hit)
		if hit {
			log.Printf("[CACHE] HIT: %s", key)
			cachedAt := cached.CachedAt
			return &models.RouteResponse{
				RouteData: cached.Data,
				Cache:     models.CacheStatus{Cached: true, CachedAt: &cachedAt},
			}, nil
		}
	}

	rows, err := s.manifests.GetRows(ctx, meta.ID, "")
	if err != nil {
		return nil, fmt.Errorf("failed to load manifest rows: %w", err)
	}

	log.Printf("[PLANNER] Computing routes: manifest=%s rows=%d force=%t", meta.ID, len(rows), force)
	data, err := s.planner.Compute(ctx, rows, *settings)
	if err != nil {
		return nil, err
	}

	entry := cachedRoutes{Data: *data, CachedAt: s.now().UTC()}
	if err := cache.SetJSON(ctx, s.store, key, entry, cache.DefaultTTL); err != nil {
		log.Printf("[WARN] Route cache write failed: key=%s err=%v", key, err)
	}

	return &models.RouteResponse{RouteData: *data}, nil
}

// OptimizeRows runs the provider-free planner over ad-hoc rows
func (s *Service) OptimizeRows(ctx context.Context, rows []models.ManifestRow) (*models.RouteData, error) {
	settings, err := s.settings.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}
	return s.fallback.Compute(ctx, rows, *settings)
}

// Passengers builds the passenger index of a manifest's routes
func (s *Service) Passengers(ctx context.Context, manifestID string) ([]models.PassengerSummary, error) {
	resp, err := s.GetRoutes(ctx, manifestID, false)
	if err != nil {
		return nil, err
	}
	return BuildPassengerIndex(&resp.RouteData), nil
}

func (s *Service) resolveManifest(ctx context.Context, manifestID string) (*models.ManifestMeta, error) {
	if manifestID == "" {
		return s.manifests.Latest(ctx)
	}
	return s.manifests.Get(ctx, manifestID)
}

func (s *Service) emptyRouteData() models.RouteData {
	return models.RouteData{
		Generated:    s.now(),
		Hub:          s.planner.Hub,
		PickupTrips:  []models.Trip{},
		DropoffTrips: []models.Trip{},
	}
}
