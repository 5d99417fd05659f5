package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "roamroute.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, "https://api.openrouteservice.org", cfg.Routing.Primary.BaseURL)
	assert.Equal(t, "https://router.project-osrm.org", cfg.Routing.Fallback.BaseURL)
	assert.Equal(t, 15*time.Minute, cfg.Routing.CacheTTL)
	assert.True(t, cfg.Metrics.Enabled)
	assert.Equal(t, "/metrics", cfg.Metrics.Path)
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Server.Addr)
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	path := writeConfigFile(t, `
server:
  addr: ":9090"
routing:
  primary:
    api_key: file-key
  cache_ttl: 5m
featured_trips:
  - id: provence
    name: Provence Loop
    waypoints:
      - id: wp-1
        name: Lyon
        lat: 45.764
        lng: 4.8357
      - id: wp-2
        name: Marseille
        lat: 43.2965
        lng: 5.3698
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, "file-key", cfg.Routing.Primary.APIKey)
	assert.Equal(t, 5*time.Minute, cfg.Routing.CacheTTL)
	// Untouched keys keep their defaults
	assert.Equal(t, "https://api.openrouteservice.org", cfg.Routing.Primary.BaseURL)

	require.Len(t, cfg.FeaturedTrips, 1)
	trip := cfg.FeaturedTrips[0]
	assert.Equal(t, "provence", trip.ID)
	require.Len(t, trip.Waypoints, 2)
	assert.Equal(t, 45.764, trip.Waypoints[0].Latitude)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	path := writeConfigFile(t, `
routing:
  primary:
    api_key: file-key
`)
	t.Setenv("RR__ROUTING__PRIMARY__API_KEY", "env-key")
	t.Setenv("RR__SERVER__ADDR", ":7070")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "env-key", cfg.Routing.Primary.APIKey)
	assert.Equal(t, ":7070", cfg.Server.Addr)
}

func TestLoadValidation(t *testing.T) {
	path := writeConfigFile(t, `
featured_trips:
  - id: lonely
    name: Single Stop
    waypoints:
      - id: wp-1
        name: Lyon
        lat: 45.764
        lng: 4.8357
`)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at least 2 waypoints")
}

func TestLoadMalformedFile(t *testing.T) {
	path := writeConfigFile(t, "server: [not: valid")

	_, err := Load(path)
	assert.Error(t, err)
}
