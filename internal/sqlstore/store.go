// Package sqlstore persists manifests, settings and cache entries in SQL,
// on embedded SQLite by default or Postgres through pgx.
package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"route-planner/internal/database"
)

// Supported database/sql driver names
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "pgx"
)

const schemaVersion = 1

// Store is a SQL-backed data store implementing database.DataStore. It also
// serves as a cache.Store.
type Store struct {
	db     *sql.DB
	driver string
	mu     sync.RWMutex

	manifestRepo database.ManifestRepository
	settingsRepo database.SettingsRepository
}

// New opens the database and brings the schema up to date. For SQLite the dsn
// is a file path (its directory is created) or ":memory:".
func New(driver, dsn string) (*Store, error) {
	switch driver {
	case DriverSQLite:
		if dsn != ":memory:" && !strings.HasPrefix(dsn, "file:") {
			if err := os.MkdirAll(filepath.Dir(dsn), 0700); err != nil {
				return nil, fmt.Errorf("failed to create database directory: %w", err)
			}
		}
	case DriverPostgres:
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	log.Printf("Opening %s database", driver)

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if driver == DriverSQLite {
		// a single connection keeps ":memory:" databases shared
		db.SetMaxOpenConns(1)

		pragmas := []string{
			"PRAGMA foreign_keys = ON",
			"PRAGMA journal_mode = WAL",
			"PRAGMA synchronous = NORMAL",
			"PRAGMA busy_timeout = 5000",
		}
		for _, pragma := range pragmas {
			if _, err := db.Exec(pragma); err != nil {
				db.Close()
				return nil, fmt.Errorf("failed to set pragma %s: %w", pragma, err)
			}
		}
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	store := &Store{
		db:     db,
		driver: driver,
	}

	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	store.manifestRepo = &manifestRepository{store: store}
	store.settingsRepo = &settingsRepository{store: store}

	return store, nil
}

// DB exposes the pool for connection statistics
func (s *Store) DB() *sql.DB {
	return s.db
}

func (s *Store) initSchema() error {
	var version int
	err := s.db.QueryRow("SELECT version FROM schema_version LIMIT 1").Scan(&version)
	if err != nil {
		return s.createSchema()
	}

	if version < schemaVersion {
		if _, err := s.db.Exec(s.rebind("UPDATE schema_version SET version = ?"), schemaVersion); err != nil {
			return fmt.Errorf("failed to update schema version: %w", err)
		}
	}
	return nil
}

func (s *Store) createSchema() error {
	blob := "BLOB"
	if s.driver == DriverPostgres {
		blob = "BYTEA"
	}

	statements := []string{
		`CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY
		)`,
		`CREATE TABLE IF NOT EXISTS manifests (
			id TEXT PRIMARY KEY,
			file_name TEXT NOT NULL,
			job_date TEXT NOT NULL DEFAULT '',
			uploaded_at TEXT NOT NULL,
			total_rows INTEGER NOT NULL DEFAULT 0,
			total_passengers INTEGER NOT NULL DEFAULT 0,
			size_bytes BIGINT NOT NULL DEFAULT 0,
			status TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS manifest_rows (
			manifest_id TEXT NOT NULL REFERENCES manifests(id) ON DELETE CASCADE,
			row_index INTEGER NOT NULL,
			leg TEXT NOT NULL,
			data TEXT NOT NULL,
			PRIMARY KEY (manifest_id, row_index)
		)`,
		`CREATE TABLE IF NOT EXISTS settings (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS cache_entries (
			key TEXT PRIMARY KEY,
			value ` + blob + ` NOT NULL,
			expires_at BIGINT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_manifests_uploaded ON manifests(uploaded_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_manifest_rows_leg ON manifest_rows(manifest_id, leg)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}
	if _, err := s.db.Exec(s.rebind("INSERT INTO schema_version (version) VALUES (?)"), schemaVersion); err != nil {
		return fmt.Errorf("failed to record schema version: %w", err)
	}

	log.Printf("%s schema initialized (version %d)", s.driver, schemaVersion)
	return nil
}

// rebind rewrites "?" placeholders to "$n" for Postgres
func (s *Store) rebind(query string) string {
	if s.driver != DriverPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Close closes the database connection
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	if s.driver == DriverSQLite {
		s.db.Exec("PRAGMA wal_checkpoint(TRUNCATE)")
	}
	return s.db.Close()
}

// HealthCheck verifies the database connection
func (s *Store) HealthCheck(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Repository accessors
func (s *Store) Manifests() database.ManifestRepository { return s.manifestRepo }
func (s *Store) Settings() database.SettingsRepository  { return s.settingsRepo }

var _ database.DataStore = (*Store)(nil)
