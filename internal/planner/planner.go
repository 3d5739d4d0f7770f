// Package planner runs the route pipeline: project manifest rows, geocode,
// build trips per direction, resolve directions, and assemble RouteData.
package planner

import (
	"context"
	"log"
	"time"

	"golang.org/x/sync/errgroup"

	"route-planner/internal/manifest"
	"route-planner/internal/metrics"
	"route-planner/internal/models"
	"route-planner/internal/routing"
)

// Strategy names, used in logs and metrics
const (
	StrategyOptimizer = "optimizer"
	StrategyCluster   = "cluster"
)

// Planner computes RouteData for a set of manifest rows
type Planner struct {
	Builder  routing.TripBuilder
	Strategy string
	Hub      models.Hub

	// Geocoder is optional. Without it passengers stay ungeocoded.
	Geocoder Geocoder

	// Directions is set for strategies that do not route trips themselves
	Directions Router

	Metrics *metrics.Metrics
	Now     func() time.Time
}

// Compute runs the full pipeline. Only a trip builder failure fails it;
// geocoding and directions problems degrade the affected passengers or trips.
func (p *Planner) Compute(ctx context.Context, rows []models.ManifestRow, settings models.Settings) (*models.RouteData, error) {
	start := time.Now()

	passengers := make([]models.Passenger, len(rows))
	for i := range rows {
		passengers[i] = manifest.RowToPassenger(&rows[i])
	}

	if p.Geocoder != nil {
		failures := GeocodePassengers(ctx, p.Geocoder, passengers)
		p.Metrics.AddGeocodeFailures(len(failures))
		FindDuplicateCoordinates(passengers)
	}

	pickupReq := p.tripRequest(models.LegPickup, rows, passengers, settings)
	dropoffReq := p.tripRequest(models.LegDropoff, rows, passengers, settings)

	var pickupTrips, dropoffTrips []models.Trip
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		trips, err := p.buildDirection(gctx, pickupReq)
		pickupTrips = trips
		return err
	})
	g.Go(func() error {
		trips, err := p.buildDirection(gctx, dropoffReq)
		dropoffTrips = trips
		return err
	})
	if err := g.Wait(); err != nil {
		log.Printf("[ERROR] Route computation failed: strategy=%s err=%v", p.Strategy, err)
		return nil, err
	}

	p.Metrics.ObserveRouteCompute(p.Strategy, time.Since(start))
	log.Printf("[PLANNER] Computed routes: strategy=%s rows=%d pickup_trips=%d dropoff_trips=%d duration=%s",
		p.Strategy, len(rows), len(pickupTrips), len(dropoffTrips), time.Since(start).Round(time.Millisecond))

	return &models.RouteData{
		Generated:       p.now(),
		TotalPassengers: len(rows),
		Hub:             p.Hub,
		PickupTrips:     pickupTrips,
		DropoffTrips:    dropoffTrips,
	}, nil
}

func (p *Planner) tripRequest(leg models.LegType, rows []models.ManifestRow, passengers []models.Passenger, settings models.Settings) *routing.TripRequest {
	req := &routing.TripRequest{
		Direction: leg,
		Settings:  settings,
		Hub:       p.Hub,
	}
	for i := range rows {
		if rows[i].Leg == leg {
			req.Rows = append(req.Rows, rows[i])
			req.Passengers = append(req.Passengers, passengers[i])
		}
	}
	return req
}

func (p *Planner) buildDirection(ctx context.Context, req *routing.TripRequest) ([]models.Trip, error) {
	trips, err := p.Builder.BuildTrips(ctx, req)
	if err != nil {
		return nil, err
	}
	if trips == nil {
		trips = []models.Trip{}
	}

	if p.Directions != nil {
		for i := range trips {
			trips[i].Directions = TripDirections(ctx, p.Directions, &trips[i], p.Hub)
			ReorderByDrivingOrder(&trips[i])
		}
	}
	return trips, nil
}

func (p *Planner) now() time.Time {
	if p.Now != nil {
		return p.Now()
	}
	return time.Now()
}
