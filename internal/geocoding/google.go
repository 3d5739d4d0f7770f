package geocoding

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
)

const googleGeocodeBaseURL = "https://maps.googleapis.com/maps/api/geocode/json"

type googleGeocoder struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

type googleGeocodeResponse struct {
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message"`
	Results      []struct {
		FormattedAddress string `json:"formatted_address"`
		PlaceID          string `json:"place_id"`
		Geometry         struct {
			Location struct {
				Lat float64 `json:"lat"`
				Lng float64 `json:"lng"`
			} `json:"location"`
		} `json:"geometry"`
	} `json:"results"`
}

// NewGoogleGeocoder creates a Google Geocoding API provider
func NewGoogleGeocoder(apiKey string) Provider {
	return &googleGeocoder{
		baseURL:    googleGeocodeBaseURL,
		apiKey:     apiKey,
		httpClient: defaultHTTPClient(),
	}
}

func (g *googleGeocoder) Name() string {
	return "google_geocoding"
}

func (g *googleGeocoder) Geocode(ctx context.Context, address string) (*Result, error) {
	params := url.Values{}
	params.Set("address", address)
	params.Set("key", g.apiKey)
	queryURL := g.baseURL + "?" + params.Encode()

	log.Printf("[GEOCODING] Request: provider=google address=%s", address)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, queryURL, nil)
	if err != nil {
		return nil, &ErrGeocodingFailed{Address: address, Reason: err.Error()}
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		log.Printf("[ERROR] Geocoding API request failed: address=%s err=%v", address, err)
		return nil, &ErrGeocodingFailed{Address: address, Reason: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		log.Printf("[ERROR] Geocoding API error: address=%s status=%d body=%s", address, resp.StatusCode, string(body))
		return nil, &ErrGeocodingFailed{
			Address: address,
			Reason:  fmt.Sprintf("HTTP %d: %s", resp.StatusCode, string(body)),
		}
	}

	var payload googleGeocodeResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		log.Printf("[ERROR] Failed to decode geocoding response: address=%s err=%v", address, err)
		return nil, &ErrGeocodingFailed{Address: address, Reason: err.Error()}
	}

	if payload.Status != "OK" || len(payload.Results) == 0 {
		reason := payload.Status
		if payload.ErrorMessage != "" {
			reason += " - " + payload.ErrorMessage
		} else {
			reason += " - No results"
		}
		log.Printf("[ERROR] Geocoding rejected: address=%s reason=%s", address, reason)
		return nil, &ErrGeocodingFailed{Address: address, Reason: reason}
	}

	first := payload.Results[0]
	result := &Result{
		Lat:              first.Geometry.Location.Lat,
		Lng:              first.Geometry.Location.Lng,
		FormattedAddress: first.FormattedAddress,
		PlaceID:          first.PlaceID,
	}

	log.Printf("[GEOCODING] Response: address=%s lat=%.6f lng=%.6f formatted=%s", address, result.Lat, result.Lng, result.FormattedAddress)
	return result, nil
}
