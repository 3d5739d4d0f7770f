package planner

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"

	"route-planner/internal/geocoding"
	"route-planner/internal/models"
)

// Geocoder resolves one address
type Geocoder interface {
	Geocode(ctx context.Context, address string) (*geocoding.Result, error)
}

// GeocodePassengers geocodes every distinct address once and fills in the
// passengers' coordinates in place. Failed addresses are returned and leave
// the affected ends nil.
func GeocodePassengers(ctx context.Context, g Geocoder, passengers []models.Passenger) []string {
	var addresses []string
	seen := make(map[string]bool)
	for i := range passengers {
		for _, addr := range []string{passengers[i].Address, passengers[i].DestAddress} {
			if addr != "" && !seen[addr] {
				seen[addr] = true
				addresses = append(addresses, addr)
			}
		}
	}

	resolved := make(map[string]models.Coordinates, len(addresses))
	var failures []string
	for _, addr := range addresses {
		result, err := g.Geocode(ctx, addr)
		if err != nil {
			log.Printf("[WARN] Geocode failed: address=%s err=%v", addr, err)
			failures = append(failures, addr)
			continue
		}
		resolved[addr] = result.Coords()
	}

	if len(failures) > 0 {
		log.Printf("[PLANNER] %d/%d addresses failed to geocode", len(failures), len(addresses))
	}

	for i := range passengers {
		p := &passengers[i]
		if c, ok := resolved[p.Address]; ok {
			origin := c
			p.Origin = &origin
		}
		if c, ok := resolved[p.DestAddress]; ok {
			dest := c
			p.Destination = &dest
		}
	}

	return failures
}

// SharedCoordinate is a stop location used by more than one passenger
type SharedCoordinate struct {
	Coord      string
	Passengers []string
}

// FindDuplicateCoordinates reports stop coordinates, rounded to six decimals,
// shared by several passengers. These usually point at bad address data.
func FindDuplicateCoordinates(passengers []models.Passenger) []SharedCoordinate {
	byCoord := make(map[string][]string)
	var order []string
	for i := range passengers {
		p := &passengers[i]
		c := p.StopCoords()
		if c == nil {
			continue
		}
		key := fmt.Sprintf("%.6f,%.6f", c.Lat, c.Lng)
		if _, ok := byCoord[key]; !ok {
			order = append(order, key)
		}
		byCoord[key] = append(byCoord[key], fmt.Sprintf("%s (%s)", initials(p.Name), stopAddress(p)))
	}

	var dupes []SharedCoordinate
	for _, key := range order {
		if len(byCoord[key]) > 1 {
			dupes = append(dupes, SharedCoordinate{Coord: key, Passengers: byCoord[key]})
		}
	}
	sort.SliceStable(dupes, func(i, j int) bool { return dupes[i].Coord < dupes[j].Coord })

	if len(dupes) > 0 {
		log.Printf("[WARN] Geocode: %d coordinates shared by multiple passengers", len(dupes))
		for _, d := range dupes {
			log.Printf("[WARN]   %s: %s", d.Coord, strings.Join(d.Passengers, " | "))
		}
	}
	return dupes
}

func stopAddress(p *models.Passenger) string {
	if p.Leg == models.LegDropoff {
		return p.DestAddress
	}
	return p.Address
}

func initials(name string) string {
	var b strings.Builder
	for _, w := range strings.Fields(name) {
		b.WriteString(strings.ToUpper(w[:1]))
	}
	return b.String()
}
