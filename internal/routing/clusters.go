package routing

import (
	"strings"

	"route-planner/internal/models"
)

// OtherCluster collects zip codes missing from the cluster table
const OtherCluster = "Other"

const (
	DefaultMaxStops              = 10
	DefaultLargeClusterThreshold = 5
)

// Cluster is a named set of zip codes served together
type Cluster struct {
	Name string   `yaml:"name" validate:"required"`
	Zips []string `yaml:"zips" validate:"min=1"`
}

// ClusterConfig is the static geography the fallback packer works from
type ClusterConfig struct {
	Clusters  []Cluster           `yaml:"clusters" validate:"dive"`
	Adjacency map[string][]string `yaml:"adjacency"`
	// HubMatchTokens must all appear (case-insensitive) in a facility-side
	// address for the row to count as hub-bound.
	HubMatchTokens        []string `yaml:"hub_match_tokens" validate:"min=1"`
	MaxStops              int      `yaml:"max_stops" validate:"gte=1"`
	LargeClusterThreshold int      `yaml:"large_cluster_threshold" validate:"gte=1"`
}

// DefaultClusterConfig returns the San Gabriel Valley service area
func DefaultClusterConfig() ClusterConfig {
	return ClusterConfig{
		Clusters: []Cluster{
			{Name: "Monterey Park", Zips: []string{"91754", "91755"}},
			{Name: "San Gabriel", Zips: []string{"91775", "91776"}},
			{Name: "Arcadia/San Marino", Zips: []string{"91006", "91007", "91108"}},
			{Name: "Rosemead", Zips: []string{"91770"}},
			{Name: "Alhambra", Zips: []string{"91801", "91803"}},
			{Name: "Pasadena", Zips: []string{"91101", "91103", "91105"}},
			{Name: "Temple City", Zips: []string{"91780"}},
			{Name: "El Monte", Zips: []string{"91731", "91732", "91733"}},
			{Name: "DTLA", Zips: []string{"90014", "90015", "90032", "90033"}},
		},
		Adjacency: map[string][]string{
			"Alhambra":           {"Monterey Park", "San Gabriel", "Pasadena"},
			"Monterey Park":      {"Alhambra", "Rosemead", "El Monte"},
			"San Gabriel":        {"Alhambra", "Rosemead", "Temple City", "Arcadia/San Marino"},
			"Rosemead":           {"Monterey Park", "San Gabriel", "Temple City", "El Monte"},
			"Temple City":        {"San Gabriel", "Rosemead", "Arcadia/San Marino"},
			"Arcadia/San Marino": {"San Gabriel", "Temple City", "Pasadena"},
			"Pasadena":           {"Alhambra", "Arcadia/San Marino"},
			"El Monte":           {"Monterey Park", "Rosemead"},
			"DTLA":               {"Alhambra"},
		},
		HubMatchTokens:        []string{"1839", "valley"},
		MaxStops:              DefaultMaxStops,
		LargeClusterThreshold: DefaultLargeClusterThreshold,
	}
}

// zipIndex maps every known zip code to its cluster name
func (c *ClusterConfig) zipIndex() map[string]string {
	idx := make(map[string]string)
	for _, cl := range c.Clusters {
		for _, zip := range cl.Zips {
			zip = strings.TrimSpace(zip)
			if _, exists := idx[zip]; !exists {
				idx[zip] = cl.Name
			}
		}
	}
	return idx
}

// IsHubBound reports whether the facility side of the row is the hub: the
// drop-off address of a pickup, the pickup address of a dropoff.
func (c *ClusterConfig) IsHubBound(row *models.ManifestRow, direction models.LegType) bool {
	addr := row.DOAddr
	if direction == models.LegDropoff {
		addr = row.PUAddr
	}
	addr = strings.ToLower(strings.Join(strings.Fields(addr), " "))
	if addr == "" {
		return false
	}
	for _, token := range c.HubMatchTokens {
		if !strings.Contains(addr, strings.ToLower(token)) {
			return false
		}
	}
	return true
}

// clusterZip is the zip that places a row on the map for its direction
func clusterZip(row *models.ManifestRow, direction models.LegType) string {
	if direction == models.LegDropoff {
		return strings.TrimSpace(row.DropZip)
	}
	return strings.TrimSpace(row.PickZip)
}
