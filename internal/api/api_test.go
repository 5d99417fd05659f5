package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twpayne/go-polyline"
	"go.uber.org/zap"

	"github.com/roamroute/server/internal/cache"
	"github.com/roamroute/server/internal/export"
	"github.com/roamroute/server/internal/lib/geo"
	"github.com/roamroute/server/internal/metrics"
	"github.com/roamroute/server/internal/routing"
	"github.com/roamroute/server/internal/services"
)

type stubProvider struct {
	name   string
	err    error
	routes []routing.RouteAlternative
}

func (s *stubProvider) Name() string                  { return s.name }
func (s *stubProvider) SupportsVehicleProfiles() bool { return true }

func (s *stubProvider) ComputeRoutes(ctx context.Context, waypoints []routing.Waypoint, profile routing.Profile, vehicle *routing.VehicleProfile, opts routing.Options) ([]routing.RouteAlternative, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.routes, nil
}

func stubRoutes() []routing.RouteAlternative {
	return []routing.RouteAlternative{
		{
			Geometry: []routing.Position{
				{Lng: 4.8357, Lat: 45.764},
				{Lng: 5.3698, Lat: 43.2965},
			},
			DistanceM: 315000,
			DurationS: 11400,
		},
	}
}

const apiCatalog = `{
  "sites": [
    {"id": "cs-1", "name": "Camping du Rhône", "lat": 45.75, "lng": 4.84, "type": "campsite",
     "amenities": {"toilets": true}, "vehicle_compatible": true},
    {"id": "cs-2", "name": "Aire de Provence", "lat": 43.5, "lng": 5.1, "type": "aire"},
    {"id": "cs-3", "name": "Parking Bellevue", "lat": 48.85, "lng": 2.35, "type": "parking"}
  ]
}`

func newTestServer(t *testing.T, primary, fallback routing.Provider) *httptest.Server {
	t.Helper()

	catalogPath := filepath.Join(t.TempDir(), "catalog.json")
	require.NoError(t, os.WriteFile(catalogPath, []byte(apiCatalog), 0o644))

	m := metrics.Init()
	logger := zap.NewNop()
	g := geo.NewGeo()

	routesSvc := services.NewRoutesService(primary, fallback, cache.New(nil), time.Minute, m, logger)
	sitesSvc, err := services.NewSitesService(catalogPath, g, m, logger)
	require.NoError(t, err)
	exportsSvc := services.NewExportService(export.NewExporter(g), m, logger)

	handlers := NewHandlers(routesSvc, sitesSvc, exportsSvc, logger)
	server := httptest.NewServer(handlers.Router(nil, m.Handler(), "/metrics"))
	t.Cleanup(server.Close)
	return server
}

func postJSON(t *testing.T, url string, payload interface{}) *http.Response {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	return resp
}

func routeRequestBody() map[string]interface{} {
	return map[string]interface{}{
		"waypoints": []map[string]interface{}{
			{"id": "wp-1", "name": "Lyon", "lat": 45.764, "lng": 4.8357, "role": "start"},
			{"id": "wp-2", "name": "Marseille", "lat": 43.2965, "lng": 5.3698, "role": "end"},
		},
	}
}

func TestComputeRouteEndpoint(t *testing.T) {
	server := newTestServer(t,
		&stubProvider{name: "openroute", routes: stubRoutes()},
		&stubProvider{name: "osrm"},
	)

	resp := postJSON(t, server.URL+"/api/v1/routes", routeRequestBody())
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var result routing.CanonicalRoute
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.Equal(t, routing.StatusOK, result.Status)
	assert.Equal(t, "openroute", result.Metadata.Provider)
	require.Len(t, result.Routes, 1)
	assert.Equal(t, 315000.0, result.Routes[0].DistanceM)
}

func TestComputeRouteEndpointValidation(t *testing.T) {
	server := newTestServer(t,
		&stubProvider{name: "openroute", routes: stubRoutes()},
		&stubProvider{name: "osrm"},
	)

	resp := postJSON(t, server.URL+"/api/v1/routes", map[string]interface{}{
		"waypoints": []map[string]interface{}{
			{"id": "wp-1", "name": "Lyon", "lat": 45.764, "lng": 4.8357, "role": "start"},
		},
	})
	defer resp.Body.Close()
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var errResp errorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&errResp))
	assert.Equal(t, routing.CodeInvalidWaypoints, errResp.Code)
}

func TestComputeRouteEndpointProvidersDown(t *testing.T) {
	server := newTestServer(t,
		&stubProvider{name: "openroute", err: errors.New("down")},
		&stubProvider{name: "osrm", err: errors.New("down")},
	)

	resp := postJSON(t, server.URL+"/api/v1/routes", routeRequestBody())
	defer resp.Body.Close()
	require.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

	var errResp errorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&errResp))
	assert.Equal(t, routing.CodeAllProvidersDown, errResp.Code)
}

func TestQuerySitesEndpoint(t *testing.T) {
	server := newTestServer(t,
		&stubProvider{name: "openroute", routes: stubRoutes()},
		&stubProvider{name: "osrm"},
	)

	resp, err := http.Get(server.URL + "/api/v1/sites?types=campsite&amenities=toilets")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Sites []json.RawMessage `json:"sites"`
		Count int               `json:"count"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, 1, body.Count)
	assert.Contains(t, string(body.Sites[0]), "Camping du Rhône")
}

func TestQuerySitesEndpointNearRoute(t *testing.T) {
	server := newTestServer(t,
		&stubProvider{name: "openroute", routes: stubRoutes()},
		&stubProvider{name: "osrm"},
	)

	// Lyon to Marseille; the Paris parking is hundreds of km off route
	encoded := string(polyline.EncodeCoords([][]float64{
		{45.764, 4.8357},
		{43.2965, 5.3698},
	}))

	query := url.Values{}
	query.Set("route", encoded)
	query.Set("max_route_distance_km", "30")

	resp, err := http.Get(server.URL + "/api/v1/sites?" + query.Encode())
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Count int `json:"count"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, 2, body.Count)
}

func TestQuerySitesEndpointRejectsBadParams(t *testing.T) {
	server := newTestServer(t,
		&stubProvider{name: "openroute", routes: stubRoutes()},
		&stubProvider{name: "osrm"},
	)

	for _, path := range []string{
		"/api/v1/sites?sort=popularity",
		"/api/v1/sites?types=hotel",
		"/api/v1/sites?max_results=-1",
		"/api/v1/sites?open_now=maybe",
		"/api/v1/sites?lat=45.0",
	} {
		resp, err := http.Get(server.URL + path)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, path)
	}
}

func TestExportEndpoints(t *testing.T) {
	server := newTestServer(t,
		&stubProvider{name: "openroute", routes: stubRoutes()},
		&stubProvider{name: "osrm"},
	)

	body := routeRequestBody()
	body["name"] = "Weekend Trip"
	body["format"] = "gpx"

	resp := postJSON(t, server.URL+"/api/v1/exports", body)
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var created createExportResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	assert.NotEmpty(t, created.ID)
	assert.Contains(t, created.Filename, "weekend_trip")
	assert.Equal(t, "application/gpx+xml", created.MIMEType)

	download, err := http.Get(server.URL + "/api/v1/exports/" + created.ID)
	require.NoError(t, err)
	defer download.Body.Close()
	require.Equal(t, http.StatusOK, download.StatusCode)
	assert.Contains(t, download.Header.Get("Content-Disposition"), created.Filename)

	missing, err := http.Get(server.URL + "/api/v1/exports/nope")
	require.NoError(t, err)
	missing.Body.Close()
	assert.Equal(t, http.StatusNotFound, missing.StatusCode)
}

func TestHealthAndMetricsEndpoints(t *testing.T) {
	server := newTestServer(t,
		&stubProvider{name: "openroute", routes: stubRoutes()},
		&stubProvider{name: "osrm"},
	)

	health, err := http.Get(server.URL + "/healthz")
	require.NoError(t, err)
	health.Body.Close()
	assert.Equal(t, http.StatusOK, health.StatusCode)

	promMetrics, err := http.Get(server.URL + "/metrics")
	require.NoError(t, err)
	promMetrics.Body.Close()
	assert.Equal(t, http.StatusOK, promMetrics.StatusCode)
}
