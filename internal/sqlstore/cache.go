package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"route-planner/internal/cache"
)

// Get returns a live cache entry. Expired rows read as misses and are left
// for PurgeExpired.
func (s *Store) Get(ctx context.Context, key string) ([]byte, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var (
		value     []byte
		expiresAt int64
	)
	err := s.db.QueryRowContext(ctx, s.rebind(`SELECT value, expires_at FROM cache_entries WHERE key = ?`), key).
		Scan(&value, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to get cache entry: %w", err)
	}

	if time.Now().Unix() >= expiresAt {
		return nil, false, nil
	}
	return value, true, nil
}

func (s *Store) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := s.rebind(`INSERT INTO cache_entries (key, value, expires_at) VALUES (?, ?, ?)
	          ON CONFLICT(key) DO UPDATE SET value = excluded.value, expires_at = excluded.expires_at`)

	if _, err := s.db.ExecContext(ctx, query, key, value, time.Now().Add(ttl).Unix()); err != nil {
		return fmt.Errorf("failed to set cache entry: %w", err)
	}
	return nil
}

// ClearByPrefix deletes every entry of a key kind
func (s *Store) ClearByPrefix(ctx context.Context, prefix string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	result, err := s.db.ExecContext(ctx, s.rebind(`DELETE FROM cache_entries WHERE key LIKE ?`), cache.KeyPrefix(prefix)+"%")
	if err != nil {
		return 0, fmt.Errorf("failed to clear cache: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return n, nil
}

// PurgeExpired removes entries past their expiry
func (s *Store) PurgeExpired(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	result, err := s.db.ExecContext(ctx, s.rebind(`DELETE FROM cache_entries WHERE expires_at <= ?`), time.Now().Unix())
	if err != nil {
		return 0, fmt.Errorf("failed to purge cache: %w", err)
	}
	return result.RowsAffected()
}

var _ cache.Store = (*Store)(nil)
