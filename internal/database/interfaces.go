package database

import (
	"context"

	"route-planner/internal/models"
)

// DataStore is the interface for data persistence
type DataStore interface {
	Close() error
	HealthCheck(ctx context.Context) error
	Manifests() ManifestRepository
	Settings() SettingsRepository
}

// ManifestRepository handles uploaded manifests and their parsed rows
type ManifestRepository interface {
	// Create stores a manifest and its rows. meta.ID is assigned when empty.
	Create(ctx context.Context, meta *models.ManifestMeta, rows []models.ManifestRow) (*models.ManifestMeta, error)
	// List returns every manifest, newest first
	List(ctx context.Context) ([]models.ManifestMeta, error)
	Get(ctx context.Context, id string) (*models.ManifestMeta, error)
	// GetRows returns a manifest's rows in file order. An empty leg returns all rows.
	GetRows(ctx context.Context, id string, leg models.LegType) ([]models.ManifestRow, error)
	Delete(ctx context.Context, id string) error
	// Latest returns the newest ready manifest, or ErrNotFound
	Latest(ctx context.Context) (*models.ManifestMeta, error)
}

// SettingsRepository handles settings persistence
type SettingsRepository interface {
	// Get returns the stored settings, falling back to defaults for unset values
	Get(ctx context.Context) (*models.Settings, error)
	Update(ctx context.Context, s *models.Settings) error
}
