package geocoding

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
)

const nominatimBaseURL = "https://nominatim.openstreetmap.org"

type nominatimGeocoder struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
}

type nominatimResponse struct {
	PlaceID     int64  `json:"place_id"`
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}

// NewNominatimGeocoder creates an OpenStreetMap Nominatim provider. The public
// instance allows one request per second, so pair it with a matching queue.
func NewNominatimGeocoder(baseURL, userAgent string) Provider {
	if baseURL == "" {
		baseURL = nominatimBaseURL
	}
	if userAgent == "" {
		userAgent = "RoutePlanner/1.0"
	}
	return &nominatimGeocoder{
		baseURL:    baseURL,
		userAgent:  userAgent,
		httpClient: defaultHTTPClient(),
	}
}

func (g *nominatimGeocoder) Name() string {
	return "nominatim"
}

func (g *nominatimGeocoder) Geocode(ctx context.Context, address string) (*Result, error) {
	queryURL := fmt.Sprintf("%s/search?q=%s&format=json&limit=1&countrycodes=us", g.baseURL, url.QueryEscape(address))
	log.Printf("[GEOCODING] Request: provider=nominatim address=%s", address)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, queryURL, nil)
	if err != nil {
		return nil, &ErrGeocodingFailed{Address: address, Reason: err.Error()}
	}
	req.Header.Set("User-Agent", g.userAgent)

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

	var results []nominatimResponse
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		log.Printf("[ERROR] Failed to decode geocoding response: address=%s err=%v", address, err)
		return nil, &ErrGeocodingFailed{Address: address, Reason: err.Error()}
	}

	if len(results) == 0 {
		log.Printf("[ERROR] No geocoding results found: address=%s", address)
		return nil, &ErrGeocodingFailed{Address: address, Reason: "no results found"}
	}

	first := results[0]
	lat, err := strconv.ParseFloat(first.Lat, 64)
	if err != nil {
		return nil, &ErrGeocodingFailed{Address: address, Reason: "invalid latitude"}
	}
	lng, err := strconv.ParseFloat(first.Lon, 64)
	if err != nil {
		return nil, &ErrGeocodingFailed{Address: address, Reason: "invalid longitude"}
	}

	log.Printf("[GEOCODING] Response: address=%s lat=%.6f lng=%.6f display_name=%s", address, lat, lng, first.DisplayName)
	return &Result{
		Lat:              lat,
		Lng:              lng,
		FormattedAddress: first.DisplayName,
		PlaceID:          strconv.FormatInt(first.PlaceID, 10),
	}, nil
}
