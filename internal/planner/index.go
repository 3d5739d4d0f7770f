package planner

import (
	"sort"

	"route-planner/internal/models"
)

// BuildPassengerIndex joins passengers across pickup and dropoff trips by
// exact name. Pickups supply the origin side and dropoffs the destination
// side; other details keep the first non-empty value seen.
func BuildPassengerIndex(data *models.RouteData) []models.PassengerSummary {
	byName := make(map[string]*models.PassengerSummary)

	index := func(trips []models.Trip) {
		for _, trip := range trips {
			for i := range trip.Passengers {
				p := &trip.Passengers[i]
				if p.Name == "" {
					continue
				}

				var others []string
				for _, other := range trip.Passengers {
					if other.Name != "" && other.Name != p.Name {
						others = append(others, other.Name)
					}
				}
				if others == nil {
					others = []string{}
				}
				ref := &models.PassengerTripRef{
					TripID:       trip.ID,
					Area:         trip.Area,
					Color:        trip.Color,
					Type:         trip.Type,
					StopIndex:    i,
					CoPassengers: others,
				}

				entry, ok := byName[p.Name]
				if !ok {
					entry = &models.PassengerSummary{
						Name:            p.Name,
						Address:         p.Address,
						DestAddress:     p.DestAddress,
						Time:            p.Time,
						Phone:           p.Phone,
						Purpose:         p.Purpose,
						Notes:           p.Notes,
						AssistiveDevice: p.AssistiveDevice,
						Origin:          p.Origin,
						Destination:     p.Destination,
					}
					byName[p.Name] = entry
				}

				if trip.Type == models.LegPickup {
					entry.PickupTrip = ref
					if p.Address != "" {
						entry.Address = p.Address
					}
					if p.Origin != nil {
						entry.Origin = p.Origin
					}
				} else {
					entry.DropoffTrip = ref
					if p.DestAddress != "" {
						entry.DestAddress = p.DestAddress
					}
					if p.Destination != nil {
						entry.Destination = p.Destination
					}
				}

				fillEmpty(&entry.Time, p.Time)
				fillEmpty(&entry.Phone, p.Phone)
				fillEmpty(&entry.Purpose, p.Purpose)
				fillEmpty(&entry.Notes, p.Notes)
				fillEmpty(&entry.AssistiveDevice, p.AssistiveDevice)
			}
		}
	}

	index(data.PickupTrips)
	index(data.DropoffTrips)

	out := make([]models.PassengerSummary, 0, len(byName))
	for _, entry := range byName {
		out = append(out, *entry)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func fillEmpty(dst *string, v string) {
	if *dst == "" && v != "" {
		*dst = v
	}
}
