package routing

import (
	"context"
	"log"
	"math"
	"sort"
	"strings"

	"route-planner/internal/manifest"
	"route-planner/internal/models"
)

// VariousDestinations labels trips of rows whose facility end is not the hub
const VariousDestinations = "Various Destinations"

// ClusterGroup is the set of request indices that fell into one cluster
type ClusterGroup struct {
	Name    string
	Members []int
}

// Pack is one trip-sized group produced by PackTrips
type Pack struct {
	Area    string
	Members []int
}

// PackTrips turns cluster groups into trip-sized packs. Groups at or above
// the large-cluster threshold are chunked on their own; smaller groups absorb
// adjacent small groups while the combined size fits in maxStops. Groups must
// be given in first-appearance order; ties keep that order.
func PackTrips(groups []ClusterGroup, adjacency map[string][]string, maxStops, largeThreshold int) []Pack {
	sorted := make([]ClusterGroup, len(groups))
	copy(sorted, groups)
	sort.SliceStable(sorted, func(i, j int) bool {
		return len(sorted[i].Members) > len(sorted[j].Members)
	})

	var packs []Pack
	var small []ClusterGroup

	for _, g := range sorted {
		if len(g.Members) >= largeThreshold {
			for _, chunk := range chunk(g.Members, maxStops) {
				packs = append(packs, Pack{Area: g.Name, Members: chunk})
			}
			continue
		}
		small = append(small, g)
	}

	smallByName := make(map[string]ClusterGroup, len(small))
	for _, g := range small {
		smallByName[g.Name] = g
	}

	merged := make(map[string]bool, len(small))
	for _, g := range small {
		if merged[g.Name] {
			continue
		}
		merged[g.Name] = true

		members := append([]int(nil), g.Members...)
		names := []string{g.Name}

		for _, neighbor := range adjacency[g.Name] {
			if merged[neighbor] {
				continue
			}
			other, ok := smallByName[neighbor]
			if !ok {
				continue
			}
			if len(members)+len(other.Members) <= maxStops {
				members = append(members, other.Members...)
				names = append(names, neighbor)
				merged[neighbor] = true
			}
		}

		if len(members) > 0 {
			packs = append(packs, Pack{Area: strings.Join(names, " / "), Members: members})
		}
	}

	return packs
}

// ClusterBuilder is the deterministic fallback strategy: hub-bound rows are
// grouped by zip cluster and packed into trips, everything else is chunked
// into "Various Destinations" trips. It never calls a provider and leaves
// Directions unset.
type ClusterBuilder struct {
	config ClusterConfig
	zips   map[string]string
}

// NewClusterBuilder creates a fallback trip builder over the given geography
func NewClusterBuilder(cfg ClusterConfig) *ClusterBuilder {
	if cfg.MaxStops <= 0 {
		cfg.MaxStops = DefaultMaxStops
	}
	if cfg.LargeClusterThreshold <= 0 {
		cfg.LargeClusterThreshold = DefaultLargeClusterThreshold
	}
	return &ClusterBuilder{
		config: cfg,
		zips:   cfg.zipIndex(),
	}
}

// ClusterFor returns the cluster of a zip code, or OtherCluster
func (b *ClusterBuilder) ClusterFor(zip string) string {
	if name, ok := b.zips[strings.TrimSpace(zip)]; ok {
		return name
	}
	return OtherCluster
}

func (b *ClusterBuilder) BuildTrips(ctx context.Context, req *TripRequest) ([]models.Trip, error) {
	var hubBound, elsewhere []int
	for i := range req.Rows {
		if b.config.IsHubBound(&req.Rows[i], req.Direction) {
			hubBound = append(hubBound, i)
		} else {
			elsewhere = append(elsewhere, i)
		}
	}

	var groups []ClusterGroup
	groupIdx := make(map[string]int)
	for _, i := range hubBound {
		name := b.ClusterFor(clusterZip(&req.Rows[i], req.Direction))
		gi, ok := groupIdx[name]
		if !ok {
			gi = len(groups)
			groupIdx[name] = gi
			groups = append(groups, ClusterGroup{Name: name})
		}
		groups[gi].Members = append(groups[gi].Members, i)
	}

	packs := PackTrips(groups, b.config.Adjacency, b.config.MaxStops, b.config.LargeClusterThreshold)

	trips := make([]models.Trip, 0, len(packs)+1)
	for _, pack := range packs {
		members := sortByTime(pack.Members, req.Rows)
		area := pack.Area
		if label := averageTimeLabel(members, req.Rows); label != "" {
			area = area + " (" + label + ")"
		}
		trips = append(trips, b.newTrip(req, len(trips), area, members))
	}

	for _, c := range chunk(elsewhere, b.config.MaxStops) {
		trips = append(trips, b.newTrip(req, len(trips), VariousDestinations, sortByTime(c, req.Rows)))
	}

	log.Printf("[ROUTING] Cluster packing: direction=%s rows=%d hub_bound=%d clusters=%d trips=%d",
		req.Direction, len(req.Rows), len(hubBound), len(groups), len(trips))
	return trips, nil
}

func (b *ClusterBuilder) newTrip(req *TripRequest, n int, area string, members []int) models.Trip {
	passengers := make([]models.Passenger, 0, len(members))
	for _, i := range members {
		passengers = append(passengers, req.Passengers[i])
	}
	trip := models.Trip{
		ID:    TripID(req.Direction, n+1),
		Type:  req.Direction,
		Area:  area,
		Color: TripColor(n),
	}
	trip.SetPassengers(passengers)
	return trip
}

func sortByTime(members []int, rows []models.ManifestRow) []int {
	sorted := append([]int(nil), members...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return timeSortKey(&rows[sorted[i]]) < timeSortKey(&rows[sorted[j]])
	})
	return sorted
}

// timeSortKey puts rows without a parseable time after every real time
func timeSortKey(row *models.ManifestRow) int {
	if t, ok := manifest.ParseClock(manifest.RowTime(row)); ok {
		return t
	}
	return math.MaxInt
}

// averageTimeLabel is empty when no member has a parseable time
func averageTimeLabel(members []int, rows []models.ManifestRow) string {
	sum, n := 0, 0
	for _, i := range members {
		if t, ok := manifest.ParseClock(manifest.RowTime(&rows[i])); ok {
			sum += t
			n++
		}
	}
	if n == 0 {
		return ""
	}
	return TimeWindowLabel(float64(sum) / float64(n))
}

func chunk(items []int, size int) [][]int {
	var chunks [][]int
	for start := 0; start < len(items); start += size {
		end := start + size
		if end > len(items) {
			end = len(items)
		}
		chunks = append(chunks, items[start:end])
	}
	return chunks
}
