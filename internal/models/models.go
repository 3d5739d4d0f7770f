package models

import (
	"fmt"
	"time"
)

// LegType distinguishes trips toward the facility from trips away from it
type LegType string

const (
	LegPickup  LegType = "pickup"
	LegDropoff LegType = "dropoff"
)

// Valid reports whether l is a known leg type
func (l LegType) Valid() bool {
	return l == LegPickup || l == LegDropoff
}

// Coordinates represents a geographic point
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// String formats the point the way the directions providers expect it
func (c Coordinates) String() string {
	return fmt.Sprintf("%f,%f", c.Lat, c.Lng)
}

// ManifestRow is one booked job from an uploaded manifest
type ManifestRow struct {
	JobDate           string  `json:"job_date"`
	IDNumber          string  `json:"id_number"`
	CustName          string  `json:"cust_name"`
	Phone             string  `json:"phone"`
	BookingPurpose    string  `json:"booking_purpose"`
	PUAddr            string  `json:"pu_addr"`
	PUUnit            string  `json:"pu_unit"`
	PickupCity        string  `json:"pickup_city"`
	PUState           string  `json:"pu_state"`
	PickZip           string  `json:"pick_zip"`
	DOAddr            string  `json:"do_addr"`
	DOUnit            string  `json:"do_unit"`
	DropCity          string  `json:"drop_city"`
	DOState           string  `json:"do_state"`
	DropZip           string  `json:"drop_zip"`
	AssistiveDevice   string  `json:"assistive_device"`
	NTotalWheelChairs int     `json:"n_total_wheelchairs"`
	NTotalPassengers  int     `json:"n_total_passengers"`
	SchPU             string  `json:"sch_pu"`
	AptTime           string  `json:"apt_time"`
	Notes             string  `json:"notes"`
	JobID             string  `json:"job_id"`
	Leg               LegType `json:"leg_type"`
}

// Passenger is the presentation view of a manifest row. Origin and
// Destination stay nil until geocoding succeeds for that end.
type Passenger struct {
	Name            string       `json:"name"`
	Leg             LegType      `json:"leg_type"`
	Address         string       `json:"address"`
	DestAddress     string       `json:"dest_address"`
	Time            string       `json:"time"`
	Purpose         string       `json:"purpose"`
	Phone           string       `json:"phone"`
	Notes           string       `json:"notes"`
	AssistiveDevice string       `json:"assistive_device"`
	Origin          *Coordinates `json:"origin,omitempty"`
	Destination     *Coordinates `json:"destination,omitempty"`
}

// StopCoords returns the passenger's home end: the origin of a pickup or
// the destination of a dropoff.
func (p *Passenger) StopCoords() *Coordinates {
	if p.Leg == LegDropoff {
		return p.Destination
	}
	return p.Origin
}

// FacilityCoords returns the end of the leg opposite to StopCoords
func (p *Passenger) FacilityCoords() *Coordinates {
	if p.Leg == LegDropoff {
		return p.Origin
	}
	return p.Destination
}

// Leg is one segment of a driving route
type Leg struct {
	Distance     string `json:"distance"`
	Duration     string `json:"duration"`
	StartAddress string `json:"start_address"`
	EndAddress   string `json:"end_address"`
}

// Directions is the resolved driving route for a trip
type Directions struct {
	OverviewPolyline string `json:"overview_polyline"`
	WaypointOrder    []int  `json:"waypoint_order"`
	Legs             []Leg  `json:"legs"`
}

// Trip is one vehicle run in a single direction
type Trip struct {
	ID             string      `json:"id"`
	Type           LegType     `json:"type"`
	Area           string      `json:"area"`
	Color          string      `json:"color"`
	PassengerCount int         `json:"passenger_count"`
	Passengers     []Passenger `json:"passengers"`
	Directions     *Directions `json:"directions"`
}

// SetPassengers replaces the passenger list and keeps the count in step
func (t *Trip) SetPassengers(passengers []Passenger) {
	t.Passengers = passengers
	t.PassengerCount = len(passengers)
}

// Hub is the facility every hub-bound trip starts or ends at
type Hub struct {
	Name    string  `json:"name" yaml:"name" validate:"required"`
	Address string  `json:"address" yaml:"address" validate:"required"`
	Lat     float64 `json:"lat" yaml:"lat" validate:"gte=-90,lte=90"`
	Lng     float64 `json:"lng" yaml:"lng" validate:"gte=-180,lte=180"`
}

// Coords returns the hub location
func (h Hub) Coords() Coordinates {
	return Coordinates{Lat: h.Lat, Lng: h.Lng}
}

// RouteData is the full planning result for one manifest
type RouteData struct {
	Generated       time.Time `json:"generated"`
	TotalPassengers int       `json:"total_passengers"`
	Hub             Hub       `json:"hub"`
	PickupTrips     []Trip    `json:"pickup_trips"`
	DropoffTrips    []Trip    `json:"dropoff_trips"`
}

// CacheStatus annotates a response with where its payload came from
type CacheStatus struct {
	Cached   bool       `json:"cached"`
	CachedAt *time.Time `json:"cached_at,omitempty"`
}

// RouteResponse is RouteData plus its cache annotation
type RouteResponse struct {
	RouteData
	Cache CacheStatus `json:"_cache"`
}

// Vehicle is one physical vehicle in the fleet
type Vehicle struct {
	ID       string `json:"id" validate:"required"`
	Name     string `json:"name" validate:"required"`
	Capacity int    `json:"capacity" validate:"gte=1"`
}

// Settings holds the operator-tunable planning parameters
type Settings struct {
	DriveTimeLimitMinutes   int       `json:"drive_time_limit_minutes" validate:"gte=15,lte=120"`
	TimeWindowBufferMinutes int       `json:"time_window_buffer_minutes" validate:"gte=15,lte=180"`
	Vehicles                []Vehicle `json:"vehicles" validate:"dive"`
}

// Settings defaults used until an operator changes them
const (
	DefaultDriveTimeLimitMinutes   = 45
	DefaultTimeWindowBufferMinutes = 60
	DefaultVehicleCount            = 4
	DefaultVehicleCapacity         = 10
)

// DefaultVehicles returns the stock fleet: "Van 1" through "Van 4"
func DefaultVehicles() []Vehicle {
	vehicles := make([]Vehicle, DefaultVehicleCount)
	for i := range vehicles {
		vehicles[i] = Vehicle{
			ID:       fmt.Sprintf("van-%d", i+1),
			Name:     fmt.Sprintf("Van %d", i+1),
			Capacity: DefaultVehicleCapacity,
		}
	}
	return vehicles
}

// DefaultSettings returns the settings of a fresh install
func DefaultSettings() Settings {
	return Settings{
		DriveTimeLimitMinutes:   DefaultDriveTimeLimitMinutes,
		TimeWindowBufferMinutes: DefaultTimeWindowBufferMinutes,
		Vehicles:                DefaultVehicles(),
	}
}

// TotalCapacity sums the seat capacity of the fleet
func (s *Settings) TotalCapacity() int {
	total := 0
	for _, v := range s.Vehicles {
		total += v.Capacity
	}
	return total
}

// ManifestStatus tracks an upload through ingestion
type ManifestStatus string

const (
	ManifestProcessing ManifestStatus = "processing"
	ManifestReady      ManifestStatus = "ready"
	ManifestError      ManifestStatus = "error"
)

// ManifestMeta describes an uploaded manifest
type ManifestMeta struct {
	ID              string         `json:"id"`
	FileName        string         `json:"file_name"`
	JobDate         string         `json:"job_date"`
	UploadedAt      time.Time      `json:"uploaded_at"`
	TotalRows       int            `json:"total_rows"`
	TotalPassengers int            `json:"total_passengers"`
	SizeBytes       int64          `json:"size_bytes"`
	Status          ManifestStatus `json:"status"`
}

// PassengerTripRef locates a passenger inside one trip
type PassengerTripRef struct {
	TripID       string   `json:"trip_id"`
	Area         string   `json:"area"`
	Color        string   `json:"color"`
	Type         LegType  `json:"type"`
	StopIndex    int      `json:"stop_index"`
	CoPassengers []string `json:"co_passengers"`
}

// PassengerSummary joins a passenger's pickup and dropoff trips by name
type PassengerSummary struct {
	Name            string            `json:"name"`
	Address         string            `json:"address"`
	DestAddress     string            `json:"dest_address"`
	Time            string            `json:"time"`
	Phone           string            `json:"phone"`
	Purpose         string            `json:"purpose"`
	Notes           string            `json:"notes"`
	AssistiveDevice string            `json:"assistive_device"`
	Origin          *Coordinates      `json:"origin,omitempty"`
	Destination     *Coordinates      `json:"destination,omitempty"`
	PickupTrip      *PassengerTripRef `json:"pickup_trip"`
	DropoffTrip     *PassengerTripRef `json:"dropoff_trip"`
}
