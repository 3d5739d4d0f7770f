package optimizer

import (
	"context"
	"log"
	"strings"
	"time"

	"route-planner/internal/metrics"
	"route-planner/internal/models"
	"route-planner/internal/routing"
)

// Builder is the solver-backed TripBuilder
type Builder struct {
	solver  Solver
	metrics *metrics.Metrics

	// Now supplies the reference day for time windows
	Now func() time.Time
}

// NewBuilder creates a Builder. metrics may be nil.
func NewBuilder(solver Solver, m *metrics.Metrics) *Builder {
	return &Builder{
		solver:  solver,
		metrics: m,
		Now:     time.Now,
	}
}

// BuildTrips solves one direction. Passengers without stop coordinates cannot
// be framed as shipments and are left out. A solver failure fails the call, as
// does a fleet with no seats.
func (b *Builder) BuildTrips(ctx context.Context, req *routing.TripRequest) ([]models.Trip, error) {
	var geocoded []models.Passenger
	for i := range req.Passengers {
		if req.Passengers[i].StopCoords() != nil {
			geocoded = append(geocoded, req.Passengers[i])
		}
	}

	if dropped := len(req.Passengers) - len(geocoded); dropped > 0 {
		log.Printf("[OPTIMIZER] %s: %d passengers without coordinates left out", req.Direction, dropped)
	}
	if len(geocoded) == 0 {
		return []models.Trip{}, nil
	}
	if req.Settings.TotalCapacity() == 0 {
		return nil, &routing.ErrRoutingFailed{
			Direction: req.Direction,
			Reason:    "no vehicle capacity configured",
		}
	}

	plan := BuildPlan(geocoded, req.Settings, req.Direction, req.Hub, ReferenceDay(b.Now()))

	resp, err := b.solver.OptimizeTours(ctx, plan.Request)
	if err != nil {
		return nil, err
	}

	if skipped := SkippedLabels(resp, plan); len(skipped) > 0 {
		log.Printf("[WARN] Route optimization: %d %s shipments skipped: %s", len(skipped), req.Direction, strings.Join(skipped, ", "))
		b.metrics.AddSkippedShipments(string(req.Direction), len(skipped))
	}

	trips := DecodeTrips(resp, plan, req.Direction)
	log.Printf("[OPTIMIZER] %s: %d trips from %d routes", req.Direction, len(trips), len(resp.Routes))
	return trips, nil
}

var _ routing.TripBuilder = (*Builder)(nil)
