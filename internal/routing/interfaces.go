package routing

import (
	"context"
	"fmt"

	"route-planner/internal/models"
)

// TripRequest contains the input for building the trips of one direction.
// Passengers[i] is the projection of Rows[i], geocoded where possible.
type TripRequest struct {
	Direction  models.LegType
	Rows       []models.ManifestRow
	Passengers []models.Passenger
	Settings   models.Settings
	Hub        models.Hub
}

// TripBuilder groups a direction's passengers into vehicle trips
type TripBuilder interface {
	BuildTrips(ctx context.Context, req *TripRequest) ([]models.Trip, error)
}

// ErrRoutingFailed is returned when no valid set of trips can be produced
type ErrRoutingFailed struct {
	Direction models.LegType
	Reason    string
}

func (e *ErrRoutingFailed) Error() string {
	return fmt.Sprintf("routing failed for %s trips: %s", e.Direction, e.Reason)
}

// TripID formats the id of the n-th (1-based) trip of a direction
func TripID(direction models.LegType, n int) string {
	return fmt.Sprintf("%s-%d", direction, n)
}
