package sqlstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"route-planner/internal/database"
	"route-planner/internal/models"
)

type manifestRepository struct {
	store *Store
}

const manifestColumns = `id, file_name, job_date, uploaded_at, total_rows, total_passengers, size_bytes, status`

// Create writes the manifest as processing, inserts its rows and flips it to
// ready in one transaction.
func (r *manifestRepository) Create(ctx context.Context, meta *models.ManifestMeta, rows []models.ManifestRow) (*models.ManifestMeta, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	stored := *meta
	if stored.ID == "" {
		stored.ID = uuid.NewString()
	}
	if stored.UploadedAt.IsZero() {
		stored.UploadedAt = time.Now().UTC()
	}
	stored.TotalRows = len(rows)

	tx, err := r.store.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	insert := r.store.rebind(`INSERT INTO manifests (` + manifestColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	_, err = tx.ExecContext(ctx, insert,
		stored.ID, stored.FileName, stored.JobDate, formatTime(stored.UploadedAt),
		stored.TotalRows, stored.TotalPassengers, stored.SizeBytes, string(models.ManifestProcessing),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert manifest: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, r.store.rebind(`INSERT INTO manifest_rows (manifest_id, row_index, leg, data) VALUES (?, ?, ?, ?)`))
	if err != nil {
		return nil, fmt.Errorf("failed to prepare row insert: %w", err)
	}
	defer stmt.Close()

	for i := range rows {
		data, err := json.Marshal(rows[i])
		if err != nil {
			return nil, fmt.Errorf("failed to encode row %d: %w", i, err)
		}
		if _, err := stmt.ExecContext(ctx, stored.ID, i, string(rows[i].Leg), string(data)); err != nil {
			return nil, fmt.Errorf("failed to insert row %d: %w", i, err)
		}
	}

	if _, err := tx.ExecContext(ctx, r.store.rebind(`UPDATE manifests SET status = ? WHERE id = ?`), string(models.ManifestReady), stored.ID); err != nil {
		return nil, fmt.Errorf("failed to mark manifest ready: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	stored.Status = models.ManifestReady
	log.Printf("[MANIFEST] Stored manifest: id=%s file=%s rows=%d", stored.ID, stored.FileName, stored.TotalRows)
	return &stored, nil
}

func (r *manifestRepository) List(ctx context.Context) ([]models.ManifestMeta, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	rows, err := r.store.db.QueryContext(ctx, `SELECT `+manifestColumns+` FROM manifests ORDER BY uploaded_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query manifests: %w", err)
	}
	defer rows.Close()

	manifests := []models.ManifestMeta{}
	for rows.Next() {
		m, err := scanManifest(rows)
		if err != nil {
			return nil, err
		}
		manifests = append(manifests, *m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating manifests: %w", err)
	}

	return manifests, nil
}

func (r *manifestRepository) Get(ctx context.Context, id string) (*models.ManifestMeta, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	row := r.store.db.QueryRowContext(ctx, r.store.rebind(`SELECT `+manifestColumns+` FROM manifests WHERE id = ?`), id)
	return scanManifest(row)
}

func (r *manifestRepository) Latest(ctx context.Context) (*models.ManifestMeta, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	query := r.store.rebind(`SELECT ` + manifestColumns + ` FROM manifests WHERE status = ? ORDER BY uploaded_at DESC, id LIMIT 1`)
	return scanManifest(r.store.db.QueryRowContext(ctx, query, string(models.ManifestReady)))
}

func (r *manifestRepository) GetRows(ctx context.Context, id string, leg models.LegType) ([]models.ManifestRow, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var exists int
	err := r.store.db.QueryRowContext(ctx, r.store.rebind(`SELECT 1 FROM manifests WHERE id = ?`), id).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, database.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get manifest: %w", err)
	}

	var rows *sql.Rows
	if leg == "" {
		rows, err = r.store.db.QueryContext(ctx,
			r.store.rebind(`SELECT data FROM manifest_rows WHERE manifest_id = ? ORDER BY row_index`), id)
	} else {
		rows, err = r.store.db.QueryContext(ctx,
			r.store.rebind(`SELECT data FROM manifest_rows WHERE manifest_id = ? AND leg = ? ORDER BY row_index`), id, string(leg))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query manifest rows: %w", err)
	}
	defer rows.Close()

	result := []models.ManifestRow{}
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("failed to scan manifest row: %w", err)
		}
		var row models.ManifestRow
		if err := json.Unmarshal([]byte(data), &row); err != nil {
			return nil, fmt.Errorf("failed to decode manifest row: %w", err)
		}
		result = append(result, row)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating manifest rows: %w", err)
	}

	return result, nil
}

func (r *manifestRepository) Delete(ctx context.Context, id string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	tx, err := r.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, r.store.rebind(`DELETE FROM manifest_rows WHERE manifest_id = ?`), id); err != nil {
		return fmt.Errorf("failed to delete manifest rows: %w", err)
	}

	result, err := tx.ExecContext(ctx, r.store.rebind(`DELETE FROM manifests WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("failed to delete manifest: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return database.ErrNotFound
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanManifest(row rowScanner) (*models.ManifestMeta, error) {
	var (
		m          models.ManifestMeta
		uploadedAt string
		status     string
	)
	err := row.Scan(&m.ID, &m.FileName, &m.JobDate, &uploadedAt, &m.TotalRows, &m.TotalPassengers, &m.SizeBytes, &status)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, database.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan manifest: %w", err)
	}

	m.UploadedAt, err = time.Parse(time.RFC3339Nano, uploadedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse uploaded_at %q: %w", uploadedAt, err)
	}
	m.Status = models.ManifestStatus(status)
	return &m, nil
}

// formatTime keeps a fixed width so uploaded_at sorts as text
func formatTime(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000000000Z07:00")
}
