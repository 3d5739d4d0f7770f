// Package directions resolves driving directions for an ordered set of stops.
package directions

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"route-planner/internal/models"
)

// Provider computes a route from origin to destination through waypoints.
// Waypoint order is always optimized by the provider and reported back in
// Directions.WaypointOrder.
type Provider interface {
	Name() string
	Directions(ctx context.Context, origin, dest models.Coordinates, waypoints []models.Coordinates) (*models.Directions, error)
}

// ErrDirectionsFailed is returned when a provider cannot produce a route
type ErrDirectionsFailed struct {
	Reason string
}

func (e *ErrDirectionsFailed) Error() string {
	return fmt.Sprintf("directions failed: %s", e.Reason)
}

// CacheInput renders the canonical cache input for a request:
// "olat,olng>dlat,dlng" followed by "|lat,lng" per waypoint.
func CacheInput(origin, dest models.Coordinates, waypoints []models.Coordinates) string {
	var b strings.Builder
	b.WriteString(formatLatLng(origin))
	b.WriteByte('>')
	b.WriteString(formatLatLng(dest))
	for _, w := range waypoints {
		b.WriteByte('|')
		b.WriteString(formatLatLng(w))
	}
	return b.String()
}

func formatLatLng(c models.Coordinates) string {
	return strconv.FormatFloat(c.Lat, 'f', -1, 64) + "," + strconv.FormatFloat(c.Lng, 'f', -1, 64)
}

const metersPerMile = 1609.34

// FormatDistance renders meters as miles with one decimal, e.g. "3.2 mi"
func FormatDistance(meters float64) string {
	return fmt.Sprintf("%.1f mi", meters/metersPerMile)
}

// FormatDuration renders seconds as "N mins" or "H hr M mins"
func FormatDuration(seconds float64) string {
	mins := int(math.Round(seconds / 60))
	if mins < 60 {
		return fmt.Sprintf("%d mins", mins)
	}
	return fmt.Sprintf("%d hr %d mins", mins/60, mins%60)
}

func defaultHTTPClient() *http.Client {
	return &http.Client{Timeout: 30 * time.Second}
}
