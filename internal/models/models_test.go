package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPassengerStopCoords(t *testing.T) {
	home := &Coordinates{Lat: 34.06, Lng: -118.13}
	facility := &Coordinates{Lat: 34.0823, Lng: -118.1622}

	pickup := Passenger{Leg: LegPickup, Origin: home, Destination: facility}
	assert.Same(t, home, pickup.StopCoords())
	assert.Same(t, facility, pickup.FacilityCoords())

	dropoff := Passenger{Leg: LegDropoff, Origin: facility, Destination: home}
	assert.Same(t, home, dropoff.StopCoords())
	assert.Same(t, facility, dropoff.FacilityCoords())
}

func TestZeroCoordinatesAreRepresentable(t *testing.T) {
	p := Passenger{Leg: LegPickup, Origin: &Coordinates{Lat: 0, Lng: 0}}
	require.NotNil(t, p.StopCoords())

	data, err := json.Marshal(p)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"origin":{"lat":0,"lng":0}`)
	assert.NotContains(t, string(data), `"destination"`)
}

func TestTripSetPassengers(t *testing.T) {
	trip := Trip{ID: "pickup-1"}
	trip.SetPassengers([]Passenger{{Name: "A"}, {Name: "B"}})

	assert.Equal(t, 2, trip.PassengerCount)
	assert.Len(t, trip.Passengers, 2)
}

func TestSettingsTotalCapacity(t *testing.T) {
	s := Settings{Vehicles: []Vehicle{{ID: "a", Name: "A", Capacity: 4}, {ID: "b", Name: "B", Capacity: 6}}}
	assert.Equal(t, 10, s.TotalCapacity())
}

func TestRouteResponseCacheAnnotation(t *testing.T) {
	resp := RouteResponse{Cache: CacheStatus{Cached: false}}

	data, err := json.Marshal(resp)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"_cache":{"cached":false}`)
	assert.Contains(t, string(data), `"pickup_trips"`)
}

func TestLegTypeValid(t *testing.T) {
	assert.True(t, LegPickup.Valid())
	assert.True(t, LegDropoff.Valid())
	assert.False(t, LegType("return").Valid())
}

func TestDefaultSettings(t *testing.T) {
	s := DefaultSettings()

	assert.Equal(t, 45, s.DriveTimeLimitMinutes)
	assert.Equal(t, 60, s.TimeWindowBufferMinutes)
	require.Len(t, s.Vehicles, 4)
	assert.Equal(t, Vehicle{ID: "van-1", Name: "Van 1", Capacity: 10}, s.Vehicles[0])
	assert.Equal(t, "Van 4", s.Vehicles[3].Name)
	assert.Equal(t, 40, s.TotalCapacity())
}
