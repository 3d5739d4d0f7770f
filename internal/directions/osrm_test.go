package directions

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"route-planner/internal/models"
)

func newTestOSRM(url string) *osrmDirections {
	return &osrmDirections{
		baseURL:    url,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

func TestOSRMDirectionsSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/trip/v1/driving/-118.100000,34.100000;-118.110000,34.110000;-118.120000,34.120000;-118.200000,34.200000", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "first", q.Get("source"))
		assert.Equal(t, "last", q.Get("destination"))
		assert.Equal(t, "false", q.Get("roundtrip"))
		assert.Equal(t, "polyline", q.Get("geometries"))

		// The second input waypoint is visited first.
		w.Write([]byte(`{
			"code": "Ok",
			"trips": [{
				"geometry": "_p~iF~ps|U",
				"legs": [
					{"distance": 1609.34, "duration": 240},
					{"distance": 3218.68, "duration": 420},
					{"distance": 800, "duration": 3900}
				]
			}],
			"waypoints": [
				{"name": "Start Rd", "waypoint_index": 0, "trips_index": 0},
				{"name": "Second Ave", "waypoint_index": 2, "trips_index": 0},
				{"name": "First St", "waypoint_index": 1, "trips_index": 0},
				{"name": "End Blvd", "waypoint_index": 3, "trips_index": 0}
			]
		}`))
	}))
	defer server.Close()

	result, err := newTestOSRM(server.URL).Directions(context.Background(),
		models.Coordinates{Lat: 34.1, Lng: -118.1},
		models.Coordinates{Lat: 34.2, Lng: -118.2},
		[]models.Coordinates{{Lat: 34.11, Lng: -118.11}, {Lat: 34.12, Lng: -118.12}},
	)

	require.NoError(t, err)
	assert.Equal(t, "_p~iF~ps|U", result.OverviewPolyline)
	assert.Equal(t, []int{1, 0}, result.WaypointOrder)
	require.Len(t, result.Legs, 3)
	assert.Equal(t, models.Leg{Distance: "1.0 mi", Duration: "4 mins", StartAddress: "Start Rd", EndAddress: "First St"}, result.Legs[0])
	assert.Equal(t, "Second Ave", result.Legs[1].EndAddress)
	assert.Equal(t, "1 hr 5 mins", result.Legs[2].Duration)
}

func TestOSRMDirectionsErrorCode(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"code": "NoTrips", "message": "no trip found"}`))
	}))
	defer server.Close()

	_, err := newTestOSRM(server.URL).Directions(context.Background(),
		models.Coordinates{Lat: 1, Lng: 2}, models.Coordinates{Lat: 3, Lng: 4}, nil)

	var dirErr *ErrDirectionsFailed
	require.ErrorAs(t, err, &dirErr)
	assert.Contains(t, dirErr.Reason, "NoTrips")
}

func TestOSRMDirectionsTooManyCoordinates(t *testing.T) {
	waypoints := make([]models.Coordinates, maxOSRMCoordinates)
	_, err := newTestOSRM("http://unused").Directions(context.Background(),
		models.Coordinates{}, models.Coordinates{}, waypoints)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "too many coordinates")
}
