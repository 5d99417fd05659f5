// Package config loads server configuration from defaults, an optional
// YAML file and environment variables, in that order of precedence
// (env wins).
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// envPrefix scopes environment overrides, e.g.
// RR__ROUTING__PRIMARY__API_KEY sets routing.primary.api_key
const envPrefix = "RR__"

// Config is the complete server configuration
type Config struct {
	Server        ServerConfig   `koanf:"server"`
	Routing       RoutingConfig  `koanf:"routing"`
	Catalog       CatalogConfig  `koanf:"catalog"`
	FeaturedTrips []FeaturedTrip `koanf:"featured_trips"`
	Metrics       MetricsConfig  `koanf:"metrics"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Addr            string        `koanf:"addr"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	CorsOrigins     []string      `koanf:"cors_origins"`
}

// RoutingConfig holds routing provider settings
type RoutingConfig struct {
	Primary         ProviderConfig `koanf:"primary"`
	Fallback        ProviderConfig `koanf:"fallback"`
	CacheTTL        time.Duration  `koanf:"cache_ttl"`
	RefreshInterval time.Duration  `koanf:"refresh_interval"`
}

// ProviderConfig holds a single routing backend's settings
type ProviderConfig struct {
	BaseURL string `koanf:"base_url"`
	APIKey  string `koanf:"api_key"`
}

// CatalogConfig holds the campsite catalog settings
type CatalogConfig struct {
	Path           string        `koanf:"path"`
	ReloadInterval time.Duration `koanf:"reload_interval"`
}

// FeaturedTrip is a curated trip whose route is refreshed periodically
// so it is always served warm
type FeaturedTrip struct {
	ID        string         `koanf:"id"`
	Name      string         `koanf:"name"`
	Waypoints []TripWaypoint `koanf:"waypoints"`
}

// TripWaypoint is a waypoint of a featured trip
type TripWaypoint struct {
	ID        string  `koanf:"id"`
	Name      string  `koanf:"name"`
	Latitude  float64 `koanf:"lat"`
	Longitude float64 `koanf:"lng"`
}

// MetricsConfig holds Prometheus exposition settings
type MetricsConfig struct {
	Enabled bool   `koanf:"enabled"`
	Path    string `koanf:"path"`
}

func defaults() map[string]interface{} {
	return map[string]interface{}{
		"server.addr":               ":8080",
		"server.read_timeout":       "15s",
		"server.write_timeout":      "30s",
		"server.shutdown_timeout":   "10s",
		"server.cors_origins":       []string{"*"},
		"routing.primary.base_url":  "https://api.openrouteservice.org",
		"routing.fallback.base_url": "https://router.project-osrm.org",
		"routing.cache_ttl":         "15m",
		"routing.refresh_interval":  "10m",
		"catalog.path":              "catalog.json",
		"catalog.reload_interval":   "1h",
		"metrics.enabled":           true,
		"metrics.path":              "/metrics",
	}
}

// Load reads configuration from defaults, then path (when it exists),
// then RR__ environment variables. A missing file is not an error; an
// unreadable or malformed one is.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load default config: %w", err)
	}

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
				return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
			}
		}
	}

	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, envPrefix)), "__", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment config: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr must not be empty")
	}
	if c.Routing.Primary.BaseURL == "" {
		return fmt.Errorf("routing.primary.base_url must not be empty")
	}
	if c.Routing.Fallback.BaseURL == "" {
		return fmt.Errorf("routing.fallback.base_url must not be empty")
	}
	if c.Routing.CacheTTL <= 0 {
		return fmt.Errorf("routing.cache_ttl must be positive")
	}
	for _, trip := range c.FeaturedTrips {
		if trip.ID == "" {
			return fmt.Errorf("featured trip %q has no id", trip.Name)
		}
		if len(trip.Waypoints) < 2 {
			return fmt.Errorf("featured trip %q needs at least 2 waypoints", trip.ID)
		}
	}
	return nil
}
