package geocoding

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"route-planner/internal/models"
)

// Result contains the result of a geocoding operation
type Result struct {
	Lat              float64 `json:"lat"`
	Lng              float64 `json:"lng"`
	FormattedAddress string  `json:"formatted_address"`
	PlaceID          string  `json:"place_id"`
}

// Coords returns the location of the result
func (r *Result) Coords() models.Coordinates {
	return models.Coordinates{Lat: r.Lat, Lng: r.Lng}
}

// Provider resolves one free-text address. Implementations do no caching or
// pacing of their own.
type Provider interface {
	Name() string
	Geocode(ctx context.Context, address string) (*Result, error)
}

// ErrGeocodingFailed is returned when an address cannot be geocoded
type ErrGeocodingFailed struct {
	Address string
	Reason  string
}

func (e *ErrGeocodingFailed) Error() string {
	return fmt.Sprintf("geocoding failed for address: %s - %s", e.Address, e.Reason)
}

func defaultHTTPClient() *http.Client {
	return &http.Client{Timeout: 10 * time.Second}
}
