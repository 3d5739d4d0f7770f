// Package config loads the deployment configuration: built-in defaults, an
// optional YAML file, then environment overrides, validated as a whole.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"route-planner/internal/models"
	"route-planner/internal/routing"
)

// Provider and backend names
const (
	ProviderGoogle    = "google"
	ProviderNominatim = "nominatim"
	ProviderOSRM      = "osrm"

	CacheBackendSQL   = "sql"
	CacheBackendRedis = "redis"
	CacheBackendFile  = "file"
)

// ErrMissingCredential is returned when a selected provider has no credential
type ErrMissingCredential struct {
	Name     string
	Provider string
}

func (e *ErrMissingCredential) Error() string {
	return fmt.Sprintf("%s is required for the %s provider", e.Name, e.Provider)
}

type ServerConfig struct {
	Addr           string   `yaml:"addr" validate:"required"`
	AllowedOrigins []string `yaml:"allowed_origins"`
	// Inbound per-client limit; zero disables it
	RequestsPerSecond float64 `yaml:"requests_per_second" validate:"gte=0"`
	Burst             int     `yaml:"burst" validate:"gte=0"`
}

type DatabaseConfig struct {
	Driver string `yaml:"driver" validate:"oneof=sqlite pgx"`
	// File path for sqlite, connection string for pgx. Empty selects the
	// default sqlite file.
	URL string `yaml:"url" validate:"required_if=Driver pgx"`
}

type CacheConfig struct {
	Backend  string `yaml:"backend" validate:"oneof=sql redis file"`
	RedisURL string `yaml:"redis_url" validate:"required_if=Backend redis"`
	FilePath string `yaml:"file_path"`
}

type ProvidersConfig struct {
	Geocoding          string `yaml:"geocoding" validate:"oneof=google nominatim"`
	Directions         string `yaml:"directions" validate:"oneof=google osrm"`
	GoogleMapsAPIKey   string `yaml:"google_maps_api_key"`
	GoogleCloudProject string `yaml:"google_cloud_project_id"`
	NominatimURL       string `yaml:"nominatim_url" validate:"omitempty,url"`
	NominatimUserAgent string `yaml:"nominatim_user_agent"`
	OSRMURL            string `yaml:"osrm_url" validate:"omitempty,url"`
}

// PacingConfig holds the pause between consecutive provider calls
type PacingConfig struct {
	Geocode    time.Duration `yaml:"geocode" validate:"gte=0"`
	Directions time.Duration `yaml:"directions" validate:"gte=0"`
	Nominatim  time.Duration `yaml:"nominatim" validate:"gte=0"`
}

type Config struct {
	Server    ServerConfig          `yaml:"server"`
	Database  DatabaseConfig        `yaml:"database"`
	Cache     CacheConfig           `yaml:"cache"`
	Providers ProvidersConfig       `yaml:"providers"`
	Pacing    PacingConfig          `yaml:"pacing"`
	Hub       models.Hub            `yaml:"hub"`
	Routing   routing.ClusterConfig `yaml:"routing"`
}

// UseOptimizer reports whether trips go through the route optimization API
func (c *Config) UseOptimizer() bool {
	return c.Providers.GoogleCloudProject != ""
}

// GeocodeDelay is the pacing for the selected geocoding provider
func (c *Config) GeocodeDelay() time.Duration {
	if c.Providers.Geocoding == ProviderNominatim {
		return c.Pacing.Nominatim
	}
	return c.Pacing.Geocode
}

// Default returns the configuration of the reference deployment
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:              "127.0.0.1:8080",
			RequestsPerSecond: 20,
			Burst:             40,
		},
		Database: DatabaseConfig{Driver: "sqlite"},
		Cache:    CacheConfig{Backend: CacheBackendSQL},
		Providers: ProvidersConfig{
			Geocoding:          ProviderGoogle,
			Directions:         ProviderGoogle,
			NominatimUserAgent: "RoutePlanner/1.0",
		},
		Pacing: PacingConfig{
			Geocode:    100 * time.Millisecond,
			Directions: 200 * time.Millisecond,
			Nominatim:  time.Second,
		},
		Hub: models.Hub{
			Name:    "Seen Health PACE Center",
			Address: "1839 W Valley Blvd, Alhambra, CA 91803",
			Lat:     34.0823,
			Lng:     -118.1622,
		},
		Routing: routing.DefaultClusterConfig(),
	}
}

// Load builds the configuration. path may be empty; a missing file at an
// explicit path is an error. getenv is usually os.Getenv.
func Load(path string, getenv func(string) string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnv(cfg, getenv)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config, getenv func(string) string) {
	set := func(dst *string, key string) {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			*dst = v
		}
	}

	set(&cfg.Server.Addr, "SERVER_ADDR")
	set(&cfg.Database.Driver, "DATABASE_DRIVER")
	set(&cfg.Database.URL, "DATABASE_URL")
	set(&cfg.Cache.Backend, "CACHE_BACKEND")
	set(&cfg.Cache.RedisURL, "REDIS_URL")
	set(&cfg.Providers.Geocoding, "GEOCODING_PROVIDER")
	set(&cfg.Providers.Directions, "DIRECTIONS_PROVIDER")
	set(&cfg.Providers.GoogleMapsAPIKey, "GOOGLE_MAPS_API_KEY")
	set(&cfg.Providers.GoogleCloudProject, "GOOGLE_CLOUD_PROJECT_ID")
	set(&cfg.Providers.NominatimURL, "NOMINATIM_URL")
	set(&cfg.Providers.OSRMURL, "OSRM_URL")
}

// Validate checks struct constraints, then provider credentials
func (c *Config) Validate() error {
	if err := Validator().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if c.Providers.GoogleMapsAPIKey == "" {
		if c.Providers.Geocoding == ProviderGoogle {
			return &ErrMissingCredential{Name: "GOOGLE_MAPS_API_KEY", Provider: "google geocoding"}
		}
		if c.Providers.Directions == ProviderGoogle && !c.UseOptimizer() {
			return &ErrMissingCredential{Name: "GOOGLE_MAPS_API_KEY", Provider: "google directions"}
		}
	}
	return nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validator returns the shared validator instance
func Validator() *validator.Validate {
	return validate
}

// IsMissingCredential reports whether err is an ErrMissingCredential
func IsMissingCredential(err error) bool {
	var target *ErrMissingCredential
	return errors.As(err, &target)
}
