package planner

import (
	"context"
	"log"

	"route-planner/internal/models"
)

// Router resolves driving directions through optimizable waypoints
type Router interface {
	Route(ctx context.Context, origin, dest models.Coordinates, waypoints []models.Coordinates) (*models.Directions, error)
}

// TripDirections requests directions for a trip's geocoded stops. Pickups
// run from the first stop through the rest to the facility; dropoffs run from
// the facility through all but the last stop to the last. The facility is the
// first known facility coordinate among the riders, else the hub. Returns nil
// when nothing is geocoded or the provider fails.
func TripDirections(ctx context.Context, r Router, trip *models.Trip, hub models.Hub) *models.Directions {
	geocoded, _ := splitGeocoded(trip.Passengers)
	if len(geocoded) == 0 {
		return nil
	}

	stops := make([]models.Coordinates, len(geocoded))
	for i := range geocoded {
		stops[i] = *geocoded[i].StopCoords()
	}

	facility := hub.Coords()
	for i := range geocoded {
		if c := geocoded[i].FacilityCoords(); c != nil {
			facility = *c
			break
		}
	}

	var (
		dirs *models.Directions
		err  error
	)
	if trip.Type == models.LegPickup {
		dirs, err = r.Route(ctx, stops[0], facility, stops[1:])
	} else {
		last := len(stops) - 1
		dirs, err = r.Route(ctx, facility, stops[last], stops[:last])
	}
	if err != nil {
		log.Printf("[WARN] Directions failed for trip %s: %v", trip.ID, err)
		return nil
	}
	return dirs
}

// ReorderByDrivingOrder rewrites trip.Passengers into the order the vehicle
// visits them. The fixed anchor stop stays in place, the waypoint permutation
// orders the rest, and riders without coordinates go last. The permutation is
// then reset to the identity.
func ReorderByDrivingOrder(trip *models.Trip) {
	if trip.Directions == nil || len(trip.Directions.WaypointOrder) == 0 {
		return
	}

	geocoded, ungeocoded := splitGeocoded(trip.Passengers)
	if len(geocoded) <= 1 {
		return
	}

	// Waypoints are geocoded[1:] for pickups and geocoded[:n-1] for dropoffs.
	n := len(geocoded)
	offset, anchor := 1, 0
	if trip.Type != models.LegPickup {
		offset, anchor = 0, n-1
	}

	used := make([]bool, n)
	reordered := make([]models.Passenger, 0, len(trip.Passengers))
	take := func(i int) {
		if i >= 0 && i < n && !used[i] {
			used[i] = true
			reordered = append(reordered, geocoded[i])
		}
	}

	if trip.Type == models.LegPickup {
		take(anchor)
	}
	for _, wp := range trip.Directions.WaypointOrder {
		if idx := wp + offset; idx != anchor {
			take(idx)
		}
	}
	// stops a malformed permutation left out
	for i := range geocoded {
		if i != anchor {
			take(i)
		}
	}
	take(anchor)

	order := make([]int, len(reordered))
	for i := range order {
		order[i] = i
	}

	trip.SetPassengers(append(reordered, ungeocoded...))
	trip.Directions.WaypointOrder = order
}

func splitGeocoded(passengers []models.Passenger) (geocoded, ungeocoded []models.Passenger) {
	for i := range passengers {
		if passengers[i].StopCoords() != nil {
			geocoded = append(geocoded, passengers[i])
		} else {
			ungeocoded = append(ungeocoded, passengers[i])
		}
	}
	return geocoded, ungeocoded
}
