package directions

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"

	"route-planner/internal/models"
)

const googleDirectionsBaseURL = "https://maps.googleapis.com/maps/api/directions/json"

type googleDirections struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

type googleDirectionsResponse struct {
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message"`
	Routes       []struct {
		OverviewPolyline struct {
			Points string `json:"points"`
		} `json:"overview_polyline"`
		WaypointOrder []int `json:"waypoint_order"`
		Legs          []struct {
			Distance struct {
				Text string `json:"text"`
			} `json:"distance"`
			Duration struct {
				Text string `json:"text"`
			} `json:"duration"`
			StartAddress string `json:"start_address"`
			EndAddress   string `json:"end_address"`
		} `json:"legs"`
	} `json:"routes"`
}

// NewGoogleDirections creates a Google Directions API provider
func NewGoogleDirections(apiKey string) Provider {
	return &googleDirections{
		baseURL:    googleDirectionsBaseURL,
		apiKey:     apiKey,
		httpClient: defaultHTTPClient(),
	}
}

func (g *googleDirections) Name() string {
	return "google_directions"
}

func (g *googleDirections) Directions(ctx context.Context, origin, dest models.Coordinates, waypoints []models.Coordinates) (*models.Directions, error) {
	params := url.Values{}
	params.Set("origin", formatLatLng(origin))
	params.Set("destination", formatLatLng(dest))
	params.Set("key", g.apiKey)
	if len(waypoints) > 0 {
		parts := make([]string, 0, len(waypoints)+1)
		parts = append(parts, "optimize:true")
		for _, w := range waypoints {
			parts = append(parts, formatLatLng(w))
		}
		params.Set("waypoints", strings.Join(parts, "|"))
	}
	queryURL := g.baseURL + "?" + params.Encode()

	log.Printf("[DIRECTIONS] Request: provider=google origin=%s dest=%s waypoints=%d", origin, dest, len(waypoints))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, queryURL, nil)
	if err != nil {
		return nil, &ErrDirectionsFailed{Reason: err.Error()}
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		log.Printf("[ERROR] Directions API request failed: err=%v", err)
		return nil, &ErrDirectionsFailed{Reason: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		log.Printf("[ERROR] Directions API error: status=%d body=%s", resp.StatusCode, string(body))
		return nil, &ErrDirectionsFailed{Reason: fmt.Sprintf("HTTP %d: %s", resp.StatusCode, string(body))}
	}

	var payload googleDirectionsResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		log.Printf("[ERROR] Failed to decode directions response: err=%v", err)
		return nil, &ErrDirectionsFailed{Reason: err.Error()}
	}

	if payload.Status != "OK" || len(payload.Routes) == 0 {
		reason := payload.Status + " - No routes"
		if payload.ErrorMessage != "" {
			reason = payload.Status + " - " + payload.ErrorMessage
		}
		log.Printf("[ERROR] Directions rejected: reason=%s", reason)
		return nil, &ErrDirectionsFailed{Reason: reason}
	}

	route := payload.Routes[0]
	result := &models.Directions{
		OverviewPolyline: route.OverviewPolyline.Points,
		WaypointOrder:    route.WaypointOrder,
		Legs:             make([]models.Leg, 0, len(route.Legs)),
	}
	if result.WaypointOrder == nil {
		result.WaypointOrder = []int{}
	}
	for _, leg := range route.Legs {
		result.Legs = append(result.Legs, models.Leg{
			Distance:     leg.Distance.Text,
			Duration:     leg.Duration.Text,
			StartAddress: leg.StartAddress,
			EndAddress:   leg.EndAddress,
		})
	}

	log.Printf("[DIRECTIONS] Response: legs=%d waypoint_order=%v", len(result.Legs), result.WaypointOrder)
	return result, nil
}
