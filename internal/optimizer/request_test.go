package optimizer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"route-planner/internal/models"
)

var testHub = models.Hub{Name: "Center", Address: "1839 S Valley Blvd", Lat: 34.0, Lng: -118.0}

func testSettings() models.Settings {
	return models.Settings{
		DriveTimeLimitMinutes:   45,
		TimeWindowBufferMinutes: 60,
		Vehicles: []models.Vehicle{
			{ID: "v1", Name: "Van 1", Capacity: 10},
			{ID: "v2", Name: "Van 2", Capacity: 6},
		},
	}
}

func pickup(name, time string, lat, lng float64) models.Passenger {
	return models.Passenger{Name: name, Leg: models.LegPickup, Time: time, Origin: &models.Coordinates{Lat: lat, Lng: lng}}
}

func dropoff(name, time string, lat, lng float64) models.Passenger {
	return models.Passenger{Name: name, Leg: models.LegDropoff, Time: time, Destination: &models.Coordinates{Lat: lat, Lng: lng}}
}

func TestTripsPerVehicle(t *testing.T) {
	tests := []struct {
		passengers, capacity, want int
	}{
		{0, 40, 2},
		{25, 40, 2},
		{45, 40, 3},
		{81, 40, 4},
		{10, 0, 11},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, TripsPerVehicle(tt.passengers, tt.capacity), "passengers=%d capacity=%d", tt.passengers, tt.capacity)
	}
}

func TestBuildPlanPickupPinsOnlyEnd(t *testing.T) {
	day := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	plan := BuildPlan([]models.Passenger{pickup("Ana", "8:30 AM", 34.05, -118.1)}, testSettings(), models.LegPickup, testHub, day)

	// two vehicles, two trips each
	require.Len(t, plan.Request.Model.Vehicles, 4)
	require.Len(t, plan.Slots, 4)
	assert.Equal(t, VehicleSlot{Name: "Van 1", Trip: 2}, plan.Slots[1])
	assert.Equal(t, VehicleSlot{Name: "Van 2", Trip: 1}, plan.Slots[2])

	for _, v := range plan.Request.Model.Vehicles {
		assert.Nil(t, v.StartLocation, v.DisplayName)
		require.NotNil(t, v.EndLocation, v.DisplayName)
		assert.Equal(t, LatLng{Latitude: 34.0, Longitude: -118.0}, *v.EndLocation)
		assert.Equal(t, "2700s", v.RouteDurationLimit.MaxDuration)
		assert.Equal(t, 30.0, v.CostPerHour)
		assert.Equal(t, 1.0, v.CostPerKilometer)
	}
	assert.Equal(t, "Van 1 #1", plan.Request.Model.Vehicles[0].DisplayName)
	assert.Equal(t, "10", plan.Request.Model.Vehicles[0].LoadLimits["seats"].MaxLoad)
	assert.Equal(t, "6", plan.Request.Model.Vehicles[3].LoadLimits["seats"].MaxLoad)

	s := plan.Request.Model.Shipments[0]
	require.Len(t, s.Pickups, 1)
	assert.Empty(t, s.Deliveries)
	assert.Equal(t, LatLng{Latitude: 34.05, Longitude: -118.1}, s.Pickups[0].ArrivalLocation)
	assert.Equal(t, "120s", s.Pickups[0].Duration)
	assert.Equal(t, "1", s.LoadDemands["seats"].Amount)
	assert.Equal(t, 100000.0, s.PenaltyCost)
	assert.Equal(t, "Ana", s.Label)

	assert.True(t, plan.Request.PopulatePolylines)
	assert.True(t, plan.Request.PopulateTransitionPolylines)
	assert.Equal(t, "2026-03-02T00:00:00Z", plan.Request.Model.GlobalStartTime)
	assert.Equal(t, "2026-03-03T00:00:00Z", plan.Request.Model.GlobalEndTime)
}

func TestBuildPlanDropoffPinsOnlyStart(t *testing.T) {
	day := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	plan := BuildPlan([]models.Passenger{dropoff("Ben", "3:00 PM", 34.07, -118.2)}, testSettings(), models.LegDropoff, testHub, day)

	for _, v := range plan.Request.Model.Vehicles {
		require.NotNil(t, v.StartLocation, v.DisplayName)
		assert.Nil(t, v.EndLocation, v.DisplayName)
	}

	s := plan.Request.Model.Shipments[0]
	assert.Empty(t, s.Pickups)
	require.Len(t, s.Deliveries, 1)
	assert.Equal(t, LatLng{Latitude: 34.07, Longitude: -118.2}, s.Deliveries[0].ArrivalLocation)
}

func TestBuildPlanTimeWindows(t *testing.T) {
	day := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	passengers := []models.Passenger{
		pickup("Morning", "8:30 AM", 1, 1),
		pickup("Early", "12:15 AM", 1, 1),
		pickup("Late", "11:30 PM", 1, 1),
		pickup("", "", 1, 1),
	}

	plan := BuildPlan(passengers, testSettings(), models.LegPickup, testHub, day)
	shipments := plan.Request.Model.Shipments
	require.Len(t, shipments, 4)

	assert.Equal(t, []TimeWindow{{StartTime: "2026-03-02T07:30:00Z", EndTime: "2026-03-02T09:30:00Z"}}, shipments[0].Pickups[0].TimeWindows)
	assert.Equal(t, []TimeWindow{{StartTime: "2026-03-02T00:00:00Z", EndTime: "2026-03-02T01:15:00Z"}}, shipments[1].Pickups[0].TimeWindows)
	assert.Equal(t, []TimeWindow{{StartTime: "2026-03-02T22:30:00Z", EndTime: "2026-03-03T00:00:00Z"}}, shipments[2].Pickups[0].TimeWindows)

	assert.Empty(t, shipments[3].Pickups[0].TimeWindows)
	assert.Equal(t, "passenger-3", shipments[3].Label)
}

func TestBuildPlanLateAfternoonGetsWindow(t *testing.T) {
	day := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	passengers := []models.Passenger{
		dropoff("Evening", "5:00 PM", 1, 1),
		dropoff("Boundary", "4:39 PM", 1, 1),
	}

	plan := BuildPlan(passengers, testSettings(), models.LegDropoff, testHub, day)
	shipments := plan.Request.Model.Shipments
	require.Len(t, shipments, 2)

	assert.Equal(t, []TimeWindow{{StartTime: "2026-03-02T16:00:00Z", EndTime: "2026-03-02T18:00:00Z"}}, shipments[0].Deliveries[0].TimeWindows)
	assert.Equal(t, []TimeWindow{{StartTime: "2026-03-02T15:39:00Z", EndTime: "2026-03-02T17:39:00Z"}}, shipments[1].Deliveries[0].TimeWindows)
}

func TestBuildPlanUsesBufferFromSettings(t *testing.T) {
	day := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	settings := testSettings()
	settings.TimeWindowBufferMinutes = 15

	plan := BuildPlan([]models.Passenger{pickup("Ana", "10:00 AM", 1, 1)}, settings, models.LegPickup, testHub, day)

	assert.Equal(t, []TimeWindow{{StartTime: "2026-03-02T09:45:00Z", EndTime: "2026-03-02T10:15:00Z"}},
		plan.Request.Model.Shipments[0].Pickups[0].TimeWindows)
}

func TestReferenceDay(t *testing.T) {
	loc := time.FixedZone("PT", -8*3600)
	now := time.Date(2026, 3, 2, 17, 45, 12, 0, loc)

	day := ReferenceDay(now)

	assert.Equal(t, time.Date(2026, 3, 2, 0, 0, 0, 0, loc), day)
	assert.Equal(t, "2026-03-02T08:00:00Z", timestamp(day, 0))
}
