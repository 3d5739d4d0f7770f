// Package testutil holds deterministic test doubles for the provider and
// storage contracts.
package testutil

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"route-planner/internal/cache"
	"route-planner/internal/directions"
	"route-planner/internal/geocoding"
	"route-planner/internal/models"
)

// MemoryStore is an in-memory cache.Store. Entries never expire.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string][]byte
	Sets    int
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string][]byte)}
}

func (s *MemoryStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.entries[key]
	return v, ok, nil
}

func (s *MemoryStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = value
	s.Sets++
	return nil
}

func (s *MemoryStore) ClearByPrefix(ctx context.Context, prefix string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for k := range s.entries {
		if strings.HasPrefix(k, cache.KeyPrefix(prefix)) {
			delete(s.entries, k)
			n++
		}
	}
	return n, nil
}

// Keys returns the stored keys
func (s *MemoryStore) Keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	keys := make([]string, 0, len(s.entries))
	for k := range s.entries {
		keys = append(keys, k)
	}
	return keys
}

// MockGeocoder resolves addresses from a fixed table. Unknown addresses fail.
type MockGeocoder struct {
	mu      sync.Mutex
	Results map[string]models.Coordinates
	Calls   []string
}

func NewMockGeocoder() *MockGeocoder {
	return &MockGeocoder{Results: make(map[string]models.Coordinates)}
}

// Set registers the coordinates returned for an address
func (m *MockGeocoder) Set(address string, lat, lng float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Results[address] = models.Coordinates{Lat: lat, Lng: lng}
}

func (m *MockGeocoder) Name() string {
	return "mock_geocoder"
}

func (m *MockGeocoder) Geocode(ctx context.Context, address string) (*geocoding.Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, address)

	c, ok := m.Results[address]
	if !ok {
		return nil, &geocoding.ErrGeocodingFailed{Address: address, Reason: "ZERO_RESULTS - No results"}
	}
	return &geocoding.Result{
		Lat:              c.Lat,
		Lng:              c.Lng,
		FormattedAddress: address,
		PlaceID:          fmt.Sprintf("mock-%d", len(m.Calls)),
	}, nil
}

// CallCount returns how many provider calls were made
func (m *MockGeocoder) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}

// DirectionsCall tracks a call to the directions provider
type DirectionsCall struct {
	Origin    models.Coordinates
	Dest      models.Coordinates
	Waypoints []models.Coordinates
}

// MockDirections returns one leg per hop. WaypointOrder is the identity
// unless Order is set.
type MockDirections struct {
	mu    sync.Mutex
	Order []int
	Err   error
	Calls []DirectionsCall
}

func NewMockDirections() *MockDirections {
	return &MockDirections{}
}

func (m *MockDirections) Name() string {
	return "mock_directions"
}

func (m *MockDirections) Directions(ctx context.Context, origin, dest models.Coordinates, waypoints []models.Coordinates) (*models.Directions, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, DirectionsCall{Origin: origin, Dest: dest, Waypoints: waypoints})

	if m.Err != nil {
		return nil, m.Err
	}

	order := m.Order
	if order == nil {
		order = make([]int, len(waypoints))
		for i := range order {
			order[i] = i
		}
	}

	legs := make([]models.Leg, len(waypoints)+1)
	for i := range legs {
		legs[i] = models.Leg{Distance: "1.0 mi", Duration: "3 mins"}
	}
	return &models.Directions{
		OverviewPolyline: "mock",
		WaypointOrder:    append([]int(nil), order...),
		Legs:             legs,
	}, nil
}

// CallCount returns how many provider calls were made
func (m *MockDirections) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}

var (
	_ cache.Store         = (*MemoryStore)(nil)
	_ geocoding.Provider  = (*MockGeocoder)(nil)
	_ directions.Provider = (*MockDirections)(nil)
)
