package sqlstore

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"route-planner/internal/models"
)

const (
	keyDriveTimeLimit = "drive_time_limit_minutes"
	keyBufferMinutes  = "time_window_buffer_minutes"
	keyVehicles       = "vehicles"
)

type settingsRepository struct {
	store *Store
}

// Get starts from models.DefaultSettings and overlays stored values
func (r *settingsRepository) Get(ctx context.Context) (*models.Settings, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	rows, err := r.store.db.QueryContext(ctx, `SELECT key, value FROM settings`)
	if err != nil {
		return nil, fmt.Errorf("failed to query settings: %w", err)
	}
	defer rows.Close()

	settingsMap := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("failed to scan setting: %w", err)
		}
		settingsMap[key] = value
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	settings := models.DefaultSettings()
	if v, err := strconv.Atoi(settingsMap[keyDriveTimeLimit]); err == nil {
		settings.DriveTimeLimitMinutes = v
	}
	if v, err := strconv.Atoi(settingsMap[keyBufferMinutes]); err == nil {
		settings.TimeWindowBufferMinutes = v
	}
	if raw, ok := settingsMap[keyVehicles]; ok {
		var vehicles []models.Vehicle
		if err := json.Unmarshal([]byte(raw), &vehicles); err != nil {
			return nil, fmt.Errorf("failed to decode vehicles setting: %w", err)
		}
		settings.Vehicles = vehicles
	}

	return &settings, nil
}

func (r *settingsRepository) Update(ctx context.Context, s *models.Settings) error {
	vehicles := s.Vehicles
	if vehicles == nil {
		vehicles = []models.Vehicle{}
	}
	vehiclesJSON, err := json.Marshal(vehicles)
	if err != nil {
		return fmt.Errorf("failed to encode vehicles: %w", err)
	}

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	tx, err := r.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, r.store.rebind(
		`INSERT INTO settings (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value`))
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	values := map[string]string{
		keyDriveTimeLimit: strconv.Itoa(s.DriveTimeLimitMinutes),
		keyBufferMinutes:  strconv.Itoa(s.TimeWindowBufferMinutes),
		keyVehicles:       string(vehiclesJSON),
	}
	for key, value := range values {
		if _, err := stmt.ExecContext(ctx, key, value); err != nil {
			return fmt.Errorf("failed to update setting %s: %w", key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
