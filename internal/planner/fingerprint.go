package planner

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"

	"route-planner/internal/cache"
	"route-planner/internal/models"
)

type configFingerprint struct {
	DriveTimeLimitMinutes   int              `json:"driveTimeLimitMinutes"`
	TimeWindowBufferMinutes int              `json:"timeWindowBufferMinutes"`
	Vehicles                []models.Vehicle `json:"vehicles"`
}

// ConfigHash fingerprints every setting that can change a routing outcome.
// It is the first 12 hex characters of a SHA-256 over their JSON form.
func ConfigHash(s models.Settings) string {
	vehicles := s.Vehicles
	if vehicles == nil {
		vehicles = []models.Vehicle{}
	}
	// Marshal cannot fail on these field types.
	raw, _ := json.Marshal(configFingerprint{
		DriveTimeLimitMinutes:   s.DriveTimeLimitMinutes,
		TimeWindowBufferMinutes: s.TimeWindowBufferMinutes,
		Vehicles:                vehicles,
	})
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:])[:12]
}

// RouteCacheKey is the cache key of a manifest's routes under one configuration
func RouteCacheKey(manifestID, configHash string) string {
	return cache.KeyPrefix(cache.KindRoutes) + manifestID + ":" + configHash
}
