package optimizer

import (
	"fmt"
	"log"
	"math"
	"strconv"
	"time"

	"route-planner/internal/manifest"
	"route-planner/internal/models"
)

const (
	seatsDemand = "seats"

	// serviceDuration is the fixed stop time per passenger
	serviceDuration = "120s"

	// penaltyCost makes skipping a passenger far costlier than any route
	penaltyCost = 100000

	costPerHour      = 30
	costPerKilometer = 1

	minutesPerDay = 24 * 60
)

// VehicleSlot identifies which physical vehicle a virtual vehicle stands for
type VehicleSlot struct {
	Name string
	Trip int
}

// Plan is a framed optimization problem. Shipment i carries Passengers[i] and
// virtual vehicle j is Slots[j].
type Plan struct {
	Request    *Request
	Passengers []models.Passenger
	Slots      []VehicleSlot
}

// TripsPerVehicle is how many virtual copies each physical vehicle gets
func TripsPerVehicle(passengers, totalCapacity int) int {
	needed := int(math.Ceil(float64(passengers)/float64(max(totalCapacity, 1)))) + 1
	return max(2, needed)
}

// BuildPlan frames passengers as shipments against the fleet. Passengers must
// already be filtered to those with stop coordinates. day is the reference
// midnight for time windows.
func BuildPlan(passengers []models.Passenger, settings models.Settings, direction models.LegType, hub models.Hub, day time.Time) *Plan {
	buffer := settings.TimeWindowBufferMinutes

	shipments := make([]Shipment, len(passengers))
	for i, p := range passengers {
		c := p.StopCoords()
		visit := VisitRequest{
			ArrivalLocation: LatLng{Latitude: c.Lat, Longitude: c.Lng},
			Duration:        serviceDuration,
		}

		if t, ok := manifest.ParseClock(p.Time); ok {
			start := max(0, t-buffer)
			end := min(minutesPerDay, t+buffer)
			visit.TimeWindows = []TimeWindow{{
				StartTime: timestamp(day, start),
				EndTime:   timestamp(day, end),
			}}
		}

		label := p.Name
		if label == "" {
			label = fmt.Sprintf("passenger-%d", i)
		}

		s := Shipment{
			LoadDemands: map[string]LoadDemand{seatsDemand: {Amount: "1"}},
			Label:       label,
			PenaltyCost: penaltyCost,
		}
		if direction == models.LegPickup {
			s.Pickups = []VisitRequest{visit}
		} else {
			s.Deliveries = []VisitRequest{visit}
		}
		shipments[i] = s
	}

	hubLocation := &LatLng{Latitude: hub.Lat, Longitude: hub.Lng}
	tripsPerVehicle := TripsPerVehicle(len(passengers), settings.TotalCapacity())
	maxDuration := fmt.Sprintf("%ds", settings.DriveTimeLimitMinutes*60)

	var vehicles []Vehicle
	var slots []VehicleSlot
	for _, v := range settings.Vehicles {
		for trip := 1; trip <= tripsPerVehicle; trip++ {
			vehicle := Vehicle{
				DisplayName:        fmt.Sprintf("%s #%d", v.Name, trip),
				LoadLimits:         map[string]LoadLimit{seatsDemand: {MaxLoad: strconv.Itoa(v.Capacity)}},
				RouteDurationLimit: &DurationLimit{MaxDuration: maxDuration},
				CostPerHour:        costPerHour,
				CostPerKilometer:   costPerKilometer,
			}
			// Only the passenger-carrying end is pinned, so the duration limit
			// never counts the empty leg to or from the hub.
			if direction == models.LegPickup {
				vehicle.EndLocation = hubLocation
			} else {
				vehicle.StartLocation = hubLocation
			}
			vehicles = append(vehicles, vehicle)
			slots = append(slots, VehicleSlot{Name: v.Name, Trip: trip})
		}
	}

	log.Printf("[OPTIMIZER] %s: %d passengers, %d physical vehicles x %d trips = %d virtual vehicles",
		direction, len(passengers), len(settings.Vehicles), tripsPerVehicle, len(vehicles))

	return &Plan{
		Request: &Request{
			Model: Model{
				Shipments:       shipments,
				Vehicles:        vehicles,
				GlobalStartTime: timestamp(day, 0),
				GlobalEndTime:   timestamp(day, minutesPerDay),
			},
			PopulatePolylines:           true,
			PopulateTransitionPolylines: true,
		},
		Passengers: passengers,
		Slots:      slots,
	}
}

// ReferenceDay returns local midnight of the day containing now
func ReferenceDay(now time.Time) time.Time {
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
}

func timestamp(day time.Time, minutes int) string {
	return day.Add(time.Duration(minutes) * time.Minute).UTC().Format(time.RFC3339)
}
