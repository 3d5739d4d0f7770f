package directions

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"sort"
	"strings"

	"route-planner/internal/models"
)

const osrmBaseURL = "https://router.project-osrm.org"

// maxOSRMCoordinates is the maximum number of coordinates OSRM public API accepts
const maxOSRMCoordinates = 80

type osrmDirections struct {
	baseURL    string
	httpClient *http.Client
}

type osrmTripResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Trips   []struct {
		Geometry string `json:"geometry"`
		Legs     []struct {
			Distance float64 `json:"distance"`
			Duration float64 `json:"duration"`
		} `json:"legs"`
	} `json:"trips"`
	Waypoints []struct {
		Name          string `json:"name"`
		WaypointIndex int    `json:"waypoint_index"`
		TripsIndex    int    `json:"trips_index"`
	} `json:"waypoints"`
}

// NewOSRMDirections creates a provider backed by the OSRM trip service, which
// keeps the first and last coordinates fixed and reorders the ones between.
func NewOSRMDirections(baseURL string) Provider {
	if baseURL == "" {
		baseURL = osrmBaseURL
	}
	return &osrmDirections{
		baseURL:    baseURL,
		httpClient: defaultHTTPClient(),
	}
}

func (c *osrmDirections) Name() string {
	return "osrm"
}

func (c *osrmDirections) Directions(ctx context.Context, origin, dest models.Coordinates, waypoints []models.Coordinates) (*models.Directions, error) {
	points := make([]models.Coordinates, 0, len(waypoints)+2)
	points = append(points, origin)
	points = append(points, waypoints...)
	points = append(points, dest)
	n := len(points)

	if n > maxOSRMCoordinates {
		return nil, &ErrDirectionsFailed{Reason: fmt.Sprintf("too many coordinates: %d > %d", n, maxOSRMCoordinates)}
	}

	coords := make([]string, n)
	for i, p := range points {
		coords[i] = fmt.Sprintf("%.6f,%.6f", p.Lng, p.Lat)
	}
	queryURL := fmt.Sprintf("%s/trip/v1/driving/%s?source=first&destination=last&roundtrip=false&geometries=polyline&overview=full",
		c.baseURL, strings.Join(coords, ";"))

	log.Printf("[DIRECTIONS] Request: provider=osrm points=%d", n)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, queryURL, nil)
	if err != nil {
		log.Printf("[ERROR] Failed to create OSRM request: points=%d err=%v", n, err)
		return nil, &ErrDirectionsFailed{Reason: err.Error()}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Printf("[ERROR] OSRM API request failed: points=%d err=%v", n, err)
		return nil, &ErrDirectionsFailed{Reason: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		log.Printf("[ERROR] OSRM API error: points=%d status=%d body=%s", n, resp.StatusCode, string(body))
		return nil, &ErrDirectionsFailed{Reason: fmt.Sprintf("HTTP %d: %s", resp.StatusCode, string(body))}
	}

	var osrmResp osrmTripResponse
	if err := json.NewDecoder(resp.Body).Decode(&osrmResp); err != nil {
		log.Printf("[ERROR] Failed to decode OSRM response: points=%d err=%v", n, err)
		return nil, &ErrDirectionsFailed{Reason: err.Error()}
	}

	if osrmResp.Code != "Ok" || len(osrmResp.Trips) == 0 {
		log.Printf("[ERROR] OSRM returned error code: points=%d code=%s", n, osrmResp.Code)
		return nil, &ErrDirectionsFailed{Reason: fmt.Sprintf("OSRM error: %s %s", osrmResp.Code, osrmResp.Message)}
	}
	if len(osrmResp.Waypoints) != n {
		return nil, &ErrDirectionsFailed{Reason: fmt.Sprintf("OSRM returned %d waypoints for %d coordinates", len(osrmResp.Waypoints), n)}
	}

	// Input i sits at trip position waypoints[i].waypoint_index.
	visit := make([]int, n)
	for i := range visit {
		visit[i] = i
	}
	sort.SliceStable(visit, func(a, b int) bool {
		return osrmResp.Waypoints[visit[a]].WaypointIndex < osrmResp.Waypoints[visit[b]].WaypointIndex
	})

	order := make([]int, 0, len(waypoints))
	for _, idx := range visit {
		if idx == 0 || idx == n-1 {
			continue
		}
		order = append(order, idx-1)
	}

	trip := osrmResp.Trips[0]
	legs := make([]models.Leg, 0, len(trip.Legs))
	for i, leg := range trip.Legs {
		l := models.Leg{
			Distance: FormatDistance(leg.Distance),
			Duration: FormatDuration(leg.Duration),
		}
		if i+1 < len(visit) {
			l.StartAddress = osrmResp.Waypoints[visit[i]].Name
			l.EndAddress = osrmResp.Waypoints[visit[i+1]].Name
		}
		legs = append(legs, l)
	}

	log.Printf("[DIRECTIONS] Response: provider=osrm legs=%d waypoint_order=%v", len(legs), order)
	return &models.Directions{
		OverviewPolyline: trip.Geometry,
		WaypointOrder:    order,
		Legs:             legs,
	}, nil
}
