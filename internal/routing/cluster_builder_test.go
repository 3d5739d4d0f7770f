package routing

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"route-planner/internal/manifest"
	"route-planner/internal/models"
)

const hubStreet = "1839 W Valley Blvd"

func pickupRow(name, zip, aptTime string) models.ManifestRow {
	return models.ManifestRow{
		CustName: name,
		PUAddr:   "100 Home St",
		PickZip:  zip,
		DOAddr:   hubStreet,
		DropZip:  "91803",
		AptTime:  aptTime,
		JobID:    name + "-A",
		Leg:      models.LegPickup,
	}
}

func dropoffRow(name, zip, schPU string) models.ManifestRow {
	return models.ManifestRow{
		CustName: name,
		PUAddr:   hubStreet,
		PickZip:  "91803",
		DOAddr:   "100 Home St",
		DropZip:  zip,
		SchPU:    schPU,
		JobID:    name + "-B",
		Leg:      models.LegDropoff,
	}
}

func makeRequest(direction models.LegType, rows []models.ManifestRow) *TripRequest {
	passengers := make([]models.Passenger, len(rows))
	for i := range rows {
		passengers[i] = manifest.RowToPassenger(&rows[i])
	}
	return &TripRequest{Direction: direction, Rows: rows, Passengers: passengers}
}

func repeatRows(prefix, zip string, n int) []models.ManifestRow {
	rows := make([]models.ManifestRow, n)
	for i := range rows {
		rows[i] = pickupRow(fmt.Sprintf("%s%d", prefix, i), zip, "08:00 AM")
	}
	return rows
}

func groupSizes(sizes ...int) []ClusterGroup {
	names := []string{"Alhambra", "Monterey Park", "San Gabriel", "Rosemead", "El Monte"}
	groups := make([]ClusterGroup, len(sizes))
	next := 0
	for i, size := range sizes {
		groups[i].Name = names[i]
		for j := 0; j < size; j++ {
			groups[i].Members = append(groups[i].Members, next)
			next++
		}
	}
	return groups
}

func TestPackTripsLargeAndSmallNeighbor(t *testing.T) {
	cfg := DefaultClusterConfig()

	packs := PackTrips(groupSizes(8, 4), cfg.Adjacency, 10, 5)

	require.Len(t, packs, 2)
	assert.Equal(t, "Alhambra", packs[0].Area)
	assert.Len(t, packs[0].Members, 8)
	assert.Equal(t, "Monterey Park", packs[1].Area)
	assert.Len(t, packs[1].Members, 4)
}

func TestPackTripsLargeClusterThreshold(t *testing.T) {
	cfg := DefaultClusterConfig()

	// four rows are small and merge with an adjacent small cluster
	packs := PackTrips(groupSizes(4, 3), cfg.Adjacency, 10, 5)
	require.Len(t, packs, 1)
	assert.Equal(t, "Alhambra / Monterey Park", packs[0].Area)
	assert.Len(t, packs[0].Members, 7)

	// five rows are large and stay on their own
	packs = PackTrips(groupSizes(5, 3), cfg.Adjacency, 10, 5)
	require.Len(t, packs, 2)
	assert.Equal(t, "Alhambra", packs[0].Area)
	assert.Equal(t, "Monterey Park", packs[1].Area)
}

func TestPackTripsMergeRespectsMaxStops(t *testing.T) {
	cfg := DefaultClusterConfig()

	// Alhambra(4)+Monterey Park(4) fits, San Gabriel(3) would overflow
	packs := PackTrips(groupSizes(4, 4, 3), cfg.Adjacency, 10, 5)

	require.Len(t, packs, 2)
	assert.Equal(t, "Alhambra / Monterey Park", packs[0].Area)
	assert.Len(t, packs[0].Members, 8)
	assert.Equal(t, "San Gabriel", packs[1].Area)
}

func TestPackTripsChunksLargeClusters(t *testing.T) {
	packs := PackTrips(groupSizes(23), nil, 10, 5)

	require.Len(t, packs, 3)
	assert.Len(t, packs[0].Members, 10)
	assert.Len(t, packs[1].Members, 10)
	assert.Len(t, packs[2].Members, 3)
	for _, p := range packs {
		assert.Equal(t, "Alhambra", p.Area)
	}
}

func TestPackTripsStableOrderOnTies(t *testing.T) {
	groups := []ClusterGroup{
		{Name: "DTLA", Members: []int{0, 1, 2, 3, 4}},
		{Name: "Pasadena", Members: []int{5, 6, 7, 8, 9}},
	}

	packs := PackTrips(groups, nil, 10, 5)

	require.Len(t, packs, 2)
	assert.Equal(t, "DTLA", packs[0].Area)
	assert.Equal(t, "Pasadena", packs[1].Area)
}

func TestClusterBuilderEightPlusFour(t *testing.T) {
	rows := append(repeatRows("alh", "91801", 8), repeatRows("mp", "91754", 4)...)
	builder := NewClusterBuilder(DefaultClusterConfig())

	trips, err := builder.BuildTrips(context.Background(), makeRequest(models.LegPickup, rows))

	require.NoError(t, err)
	require.Len(t, trips, 2)
	assert.Equal(t, "pickup-1", trips[0].ID)
	assert.Equal(t, "Alhambra (Morning)", trips[0].Area)
	assert.Equal(t, 8, trips[0].PassengerCount)
	assert.Equal(t, "pickup-2", trips[1].ID)
	assert.Equal(t, "Monterey Park (Morning)", trips[1].Area)
	assert.Equal(t, 4, trips[1].PassengerCount)
	assert.Equal(t, TripColors[0], trips[0].Color)
	assert.Equal(t, TripColors[1], trips[1].Color)
}

func TestClusterBuilderEveryPassengerOnceAndMaxStops(t *testing.T) {
	var rows []models.ManifestRow
	zips := []string{"91801", "91754", "91775", "91770", "91780", "91006", "91101", "91731", "90014", "99999"}
	for i := 0; i < 57; i++ {
		rows = append(rows, pickupRow(fmt.Sprintf("p%02d", i), zips[i%len(zips)], "09:00 AM"))
	}
	for i := 0; i < 6; i++ {
		row := pickupRow(fmt.Sprintf("x%02d", i), "91801", "10:00 AM")
		row.DOAddr = "500 Hospital Way"
		rows = append(rows, row)
	}

	builder := NewClusterBuilder(DefaultClusterConfig())
	trips, err := builder.BuildTrips(context.Background(), makeRequest(models.LegPickup, rows))
	require.NoError(t, err)

	seen := map[string]int{}
	for _, trip := range trips {
		assert.LessOrEqual(t, len(trip.Passengers), DefaultMaxStops)
		assert.Equal(t, len(trip.Passengers), trip.PassengerCount)
		assert.Nil(t, trip.Directions)
		for _, p := range trip.Passengers {
			seen[p.Name]++
		}
	}
	assert.Len(t, seen, len(rows))
	for name, count := range seen {
		assert.Equal(t, 1, count, name)
	}

	last := trips[len(trips)-1]
	assert.Equal(t, VariousDestinations, last.Area)
	assert.Equal(t, 6, last.PassengerCount)
}

func TestClusterBuilderSortsByTimeAndLabels(t *testing.T) {
	rows := []models.ManifestRow{
		dropoffRow("late", "91801", "03:30 PM"),
		dropoffRow("early", "91801", "01:00 PM"),
		dropoffRow("unknown", "91801", ""),
	}
	builder := NewClusterBuilder(DefaultClusterConfig())

	trips, err := builder.BuildTrips(context.Background(), makeRequest(models.LegDropoff, rows))

	require.NoError(t, err)
	require.Len(t, trips, 1)
	assert.Equal(t, "dropoff-1", trips[0].ID)
	assert.Equal(t, models.LegDropoff, trips[0].Type)
	// average of 13:00 and 15:30 is past 13:00
	assert.Equal(t, "Alhambra (Afternoon)", trips[0].Area)
	names := []string{trips[0].Passengers[0].Name, trips[0].Passengers[1].Name, trips[0].Passengers[2].Name}
	assert.Equal(t, []string{"early", "late", "unknown"}, names)
}

func TestClusterBuilderLateAfternoonTimes(t *testing.T) {
	rows := []models.ManifestRow{
		dropoffRow("missing", "91754", ""),
		dropoffRow("quarter-past", "91754", "5:15 PM"),
		dropoffRow("quarter-to", "91754", "4:45 PM"),
	}
	builder := NewClusterBuilder(DefaultClusterConfig())

	trips, err := builder.BuildTrips(context.Background(), makeRequest(models.LegDropoff, rows))

	require.NoError(t, err)
	require.Len(t, trips, 1)
	assert.Equal(t, "Monterey Park (Afternoon)", trips[0].Area)
	names := []string{trips[0].Passengers[0].Name, trips[0].Passengers[1].Name, trips[0].Passengers[2].Name}
	assert.Equal(t, []string{"quarter-to", "quarter-past", "missing"}, names)
}

func TestClusterBuilderNoTimeLabelWithoutTimes(t *testing.T) {
	rows := []models.ManifestRow{pickupRow("a", "91801", ""), pickupRow("b", "91801", "n/a")}
	builder := NewClusterBuilder(DefaultClusterConfig())

	trips, err := builder.BuildTrips(context.Background(), makeRequest(models.LegPickup, rows))

	require.NoError(t, err)
	require.Len(t, trips, 1)
	assert.Equal(t, "Alhambra", trips[0].Area)
}

func TestClusterBuilderUnknownZipGoesToOther(t *testing.T) {
	builder := NewClusterBuilder(DefaultClusterConfig())

	assert.Equal(t, "Alhambra", builder.ClusterFor(" 91803 "))
	assert.Equal(t, OtherCluster, builder.ClusterFor("12345"))
	assert.Equal(t, OtherCluster, builder.ClusterFor(""))
}

func TestIsHubBound(t *testing.T) {
	cfg := DefaultClusterConfig()

	pickup := pickupRow("a", "91801", "")
	pickup.DOAddr = "1839   w.  VALLEY blvd"
	assert.True(t, cfg.IsHubBound(&pickup, models.LegPickup))

	pickup.DOAddr = "1839 Main St"
	assert.False(t, cfg.IsHubBound(&pickup, models.LegPickup))

	dropoff := dropoffRow("b", "91801", "")
	assert.True(t, cfg.IsHubBound(&dropoff, models.LegDropoff))
	assert.False(t, cfg.IsHubBound(&dropoff, models.LegPickup))
}

func TestTimeWindowLabel(t *testing.T) {
	assert.Equal(t, TimeMorning, TimeWindowLabel(600))
	assert.Equal(t, TimeMidday, TimeWindowLabel(601))
	assert.Equal(t, TimeMidday, TimeWindowLabel(780))
	assert.Equal(t, TimeAfternoon, TimeWindowLabel(781))
}

func TestTripColorWraps(t *testing.T) {
	assert.Equal(t, TripColors[0], TripColor(len(TripColors)))
	assert.Equal(t, TripColors[3], TripColor(3))
}
