// Package optimizer adapts the Google Route Optimization optimizeTours API
// into trips: passengers become shipments, fleet vehicles become virtual
// vehicles, and solved routes become trips.
package optimizer

// LatLng is a location in the solver's wire format
type LatLng struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type TimeWindow struct {
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
}

type VisitRequest struct {
	ArrivalLocation LatLng       `json:"arrivalLocation"`
	Duration        string       `json:"duration"`
	TimeWindows     []TimeWindow `json:"timeWindows,omitempty"`
}

type LoadDemand struct {
	Amount string `json:"amount"`
}

type Shipment struct {
	Pickups     []VisitRequest        `json:"pickups,omitempty"`
	Deliveries  []VisitRequest        `json:"deliveries,omitempty"`
	LoadDemands map[string]LoadDemand `json:"loadDemands,omitempty"`
	Label       string                `json:"label,omitempty"`
	PenaltyCost float64               `json:"penaltyCost,omitempty"`
}

type LoadLimit struct {
	MaxLoad string `json:"maxLoad"`
}

type DurationLimit struct {
	MaxDuration string `json:"maxDuration"`
}

// Vehicle is one virtual vehicle. Exactly one of StartLocation and
// EndLocation is set.
type Vehicle struct {
	DisplayName        string               `json:"displayName,omitempty"`
	StartLocation      *LatLng              `json:"startLocation,omitempty"`
	EndLocation        *LatLng              `json:"endLocation,omitempty"`
	LoadLimits         map[string]LoadLimit `json:"loadLimits,omitempty"`
	RouteDurationLimit *DurationLimit       `json:"routeDurationLimit,omitempty"`
	CostPerHour        float64              `json:"costPerHour,omitempty"`
	CostPerKilometer   float64              `json:"costPerKilometer,omitempty"`
}

type Model struct {
	Shipments       []Shipment `json:"shipments"`
	Vehicles        []Vehicle  `json:"vehicles"`
	GlobalStartTime string     `json:"globalStartTime,omitempty"`
	GlobalEndTime   string     `json:"globalEndTime,omitempty"`
}

// Request is the optimizeTours request body
type Request struct {
	Model                       Model `json:"model"`
	PopulatePolylines           bool  `json:"populatePolylines,omitempty"`
	PopulateTransitionPolylines bool  `json:"populateTransitionPolylines,omitempty"`
}

type Polyline struct {
	Points string `json:"points"`
}

type Visit struct {
	ShipmentIndex int    `json:"shipmentIndex"`
	IsPickup      bool   `json:"isPickup"`
	StartTime     string `json:"startTime"`
	ShipmentLabel string `json:"shipmentLabel"`
}

type Transition struct {
	TravelDuration       string    `json:"travelDuration"`
	TravelDistanceMeters float64   `json:"travelDistanceMeters"`
	RoutePolyline        *Polyline `json:"routePolyline"`
}

type RouteMetrics struct {
	TravelDuration       string  `json:"travelDuration"`
	TotalDuration        string  `json:"totalDuration"`
	TravelDistanceMeters float64 `json:"travelDistanceMeters"`
}

type Route struct {
	VehicleIndex  int           `json:"vehicleIndex"`
	VehicleLabel  string        `json:"vehicleLabel"`
	Visits        []Visit       `json:"visits"`
	Transitions   []Transition  `json:"transitions"`
	Metrics       *RouteMetrics `json:"metrics"`
	RoutePolyline *Polyline     `json:"routePolyline"`
}

type SkippedShipment struct {
	Index int    `json:"index"`
	Label string `json:"label"`
}

// Response is the optimizeTours response body
type Response struct {
	Routes           []Route           `json:"routes"`
	SkippedShipments []SkippedShipment `json:"skippedShipments"`
}
