package optimizer

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/twpayne/go-polyline"

	"route-planner/internal/directions"
	"route-planner/internal/models"
	"route-planner/internal/routing"
)

// DecodeTrips turns solved routes into trips. Routes without visits are
// unused virtual vehicles and are dropped. Trips of the same physical vehicle
// are labeled "<Name> (Trip N)" when it made more than one.
func DecodeTrips(resp *Response, plan *Plan, direction models.LegType) []models.Trip {
	type activeRoute struct {
		route *Route
		name  string
	}

	var active []activeRoute
	for i := range resp.Routes {
		route := &resp.Routes[i]
		if len(route.Visits) == 0 {
			continue
		}
		name := fmt.Sprintf("Vehicle %d", route.VehicleIndex+1)
		if route.VehicleIndex >= 0 && route.VehicleIndex < len(plan.Slots) {
			name = plan.Slots[route.VehicleIndex].Name
		}
		active = append(active, activeRoute{route: route, name: name})
	}

	perVehicle := make(map[string]int)
	for _, a := range active {
		perVehicle[a.name]++
	}

	numbering := make(map[string]int)
	trips := make([]models.Trip, 0, len(active))
	for _, a := range active {
		numbering[a.name]++

		area := a.name
		if perVehicle[a.name] > 1 {
			area = fmt.Sprintf("%s (Trip %d)", a.name, numbering[a.name])
		}

		var passengers []models.Passenger
		for _, visit := range a.route.Visits {
			if visit.ShipmentIndex >= 0 && visit.ShipmentIndex < len(plan.Passengers) {
				passengers = append(passengers, plan.Passengers[visit.ShipmentIndex])
			}
		}
		if len(passengers) == 0 {
			continue
		}

		trip := models.Trip{
			ID:         routing.TripID(direction, len(trips)+1),
			Type:       direction,
			Area:       area,
			Color:      routing.TripColor(len(trips)),
			Directions: routeDirections(a.route),
		}
		trip.SetPassengers(passengers)
		trips = append(trips, trip)
	}

	return trips
}

// SkippedLabels lists the labels of shipments the solver left unassigned
func SkippedLabels(resp *Response, plan *Plan) []string {
	labels := make([]string, 0, len(resp.SkippedShipments))
	for _, s := range resp.SkippedShipments {
		label := s.Label
		if label == "" && s.Index >= 0 && s.Index < len(plan.Passengers) {
			label = plan.Passengers[s.Index].Name
		}
		labels = append(labels, label)
	}
	return labels
}

func routeDirections(route *Route) *models.Directions {
	points := ""
	if route.RoutePolyline != nil {
		points = route.RoutePolyline.Points
	}
	if points == "" {
		points = stitchTransitions(route.Transitions)
	}
	if points == "" {
		return nil
	}

	legs := make([]models.Leg, 0, len(route.Transitions))
	for _, t := range route.Transitions {
		legs = append(legs, models.Leg{
			Distance: directions.FormatDistance(t.TravelDistanceMeters),
			Duration: directions.FormatDuration(parseSeconds(t.TravelDuration)),
		})
	}

	order := make([]int, len(route.Visits))
	for i := range order {
		order[i] = i
	}

	return &models.Directions{
		OverviewPolyline: points,
		WaypointOrder:    order,
		Legs:             legs,
	}
}

// stitchTransitions joins per-transition polylines into one, dropping the
// repeated point where consecutive transitions meet.
func stitchTransitions(transitions []Transition) string {
	var coords [][]float64
	for _, t := range transitions {
		if t.RoutePolyline == nil || t.RoutePolyline.Points == "" {
			continue
		}
		decoded, _, err := polyline.DecodeCoords([]byte(t.RoutePolyline.Points))
		if err != nil {
			log.Printf("[WARN] Skipping undecodable transition polyline: err=%v", err)
			continue
		}
		if len(coords) > 0 && len(decoded) > 0 && samePoint(coords[len(coords)-1], decoded[0]) {
			decoded = decoded[1:]
		}
		coords = append(coords, decoded...)
	}
	if len(coords) == 0 {
		return ""
	}
	return string(polyline.EncodeCoords(coords))
}

func samePoint(a, b []float64) bool {
	return len(a) == 2 && len(b) == 2 && a[0] == b[0] && a[1] == b[1]
}

// parseSeconds reads a protobuf JSON duration like "754s" or "12.5s"
func parseSeconds(s string) float64 {
	if !strings.HasSuffix(s, "s") {
		return 0
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0
	}
	return d.Seconds()
}
