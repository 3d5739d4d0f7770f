package testutil

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"route-planner/internal/database"
	"route-planner/internal/models"
)

// MemoryManifests is an in-memory database.ManifestRepository
type MemoryManifests struct {
	mu        sync.Mutex
	metas     map[string]models.ManifestMeta
	rows      map[string][]models.ManifestRow
	RowsReads int
}

func NewMemoryManifests() *MemoryManifests {
	return &MemoryManifests{
		metas: make(map[string]models.ManifestMeta),
		rows:  make(map[string][]models.ManifestRow),
	}
}

func (m *MemoryManifests) Create(ctx context.Context, meta *models.ManifestMeta, rows []models.ManifestRow) (*models.ManifestMeta, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored := *meta
	if stored.ID == "" {
		stored.ID = uuid.NewString()
	}
	if stored.UploadedAt.IsZero() {
		stored.UploadedAt = time.Now().UTC()
	}
	stored.Status = models.ManifestReady
	stored.TotalRows = len(rows)
	m.metas[stored.ID] = stored
	m.rows[stored.ID] = append([]models.ManifestRow(nil), rows...)
	return &stored, nil
}

func (m *MemoryManifests) List(ctx context.Context) ([]models.ManifestMeta, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]models.ManifestMeta, 0, len(m.metas))
	for _, meta := range m.metas {
		out = append(out, meta)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UploadedAt.After(out[j].UploadedAt) })
	return out, nil
}

func (m *MemoryManifests) Get(ctx context.Context, id string) (*models.ManifestMeta, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	meta, ok := m.metas[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	return &meta, nil
}

func (m *MemoryManifests) GetRows(ctx context.Context, id string, leg models.LegType) ([]models.ManifestRow, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rows, ok := m.rows[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	m.RowsReads++
	var out []models.ManifestRow
	for _, r := range rows {
		if leg == "" || r.Leg == leg {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *MemoryManifests) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.metas[id]; !ok {
		return database.ErrNotFound
	}
	delete(m.metas, id)
	delete(m.rows, id)
	return nil
}

func (m *MemoryManifests) Latest(ctx context.Context) (*models.ManifestMeta, error) {
	list, _ := m.List(ctx)
	if len(list) == 0 {
		return nil, database.ErrNotFound
	}
	return &list[0], nil
}

// MemorySettings is an in-memory database.SettingsRepository
type MemorySettings struct {
	mu       sync.Mutex
	settings models.Settings
}

func NewMemorySettings(s models.Settings) *MemorySettings {
	return &MemorySettings{settings: s}
}

func (m *MemorySettings) Get(ctx context.Context) (*models.Settings, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := m.settings
	s.Vehicles = append([]models.Vehicle(nil), m.settings.Vehicles...)
	return &s, nil
}

func (m *MemorySettings) Update(ctx context.Context, s *models.Settings) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.settings = *s
	m.settings.Vehicles = append([]models.Vehicle(nil), s.Vehicles...)
	return nil
}

// MemoryDataStore bundles the in-memory repositories as a database.DataStore
type MemoryDataStore struct {
	ManifestRepo *MemoryManifests
	SettingsRepo *MemorySettings
	HealthErr    error
}

func NewMemoryDataStore(s models.Settings) *MemoryDataStore {
	return &MemoryDataStore{
		ManifestRepo: NewMemoryManifests(),
		SettingsRepo: NewMemorySettings(s),
	}
}

func (d *MemoryDataStore) Close() error                           { return nil }
func (d *MemoryDataStore) HealthCheck(ctx context.Context) error  { return d.HealthErr }
func (d *MemoryDataStore) Manifests() database.ManifestRepository { return d.ManifestRepo }
func (d *MemoryDataStore) Settings() database.SettingsRepository  { return d.SettingsRepo }

var (
	_ database.ManifestRepository = (*MemoryManifests)(nil)
	_ database.SettingsRepository = (*MemorySettings)(nil)
	_ database.DataStore          = (*MemoryDataStore)(nil)
)
