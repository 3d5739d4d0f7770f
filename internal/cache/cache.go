// Package cache stores provider results and computed routes behind a small
// key/value contract with expiry.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"
)

// DefaultTTL is how long provider results stay valid
const DefaultTTL = 30 * 24 * time.Hour

// Key kinds
const (
	KindGeocode    = "geocode"
	KindDirections = "directions"
	KindRoutes     = "routes"
)

// Store is a key/value store with per-entry expiry. Get reports a miss with
// ok=false and a nil error.
type Store interface {
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// ClearByPrefix deletes every key of a kind and returns how many were removed
	ClearByPrefix(ctx context.Context, prefix string) (int64, error)
}

// Key derives a stable cache key: "<kind>:" followed by the first 16 hex
// characters of the SHA-256 of input.
func Key(kind, input string) string {
	sum := sha256.Sum256([]byte(input))
	return kind + ":" + hex.EncodeToString(sum[:])[:16]
}

// ClearablePrefix reports whether callers may bulk-delete a kind
func ClearablePrefix(prefix string) bool {
	return prefix == KindGeocode || prefix == KindDirections
}

// KeyPrefix is the literal prefix shared by every key of a kind
func KeyPrefix(kind string) string {
	return kind + ":"
}

// GetJSON loads and decodes a value written by SetJSON
func GetJSON(ctx context.Context, s Store, key string, dst any) (bool, error) {
	raw, ok, err := s.Get(ctx, key)
	if err != nil || !ok {
		return false, err
	}
	if err := decode(raw, dst); err != nil {
		return false, fmt.Errorf("failed to decode cache entry %s: %w", key, err)
	}
	return true, nil
}

// SetJSON encodes v and stores it under key
func SetJSON(ctx context.Context, s Store, key string, v any, ttl time.Duration) error {
	raw, err := encode(v)
	if err != nil {
		return fmt.Errorf("failed to encode cache entry %s: %w", key, err)
	}
	return s.Set(ctx, key, raw, ttl)
}
