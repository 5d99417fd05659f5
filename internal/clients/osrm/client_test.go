package osrm

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twpayne/go-polyline"

	"github.com/roamroute/server/internal/routing"
)

func tripWaypoints() []routing.Waypoint {
	return []routing.Waypoint{
		{ID: "wp-1", Name: "Paris", Latitude: 48.8566, Longitude: 2.3522, Role: routing.RoleStart},
		{ID: "wp-2", Name: "Marseille", Latitude: 43.2965, Longitude: 5.3698, Role: routing.RoleEnd},
	}
}

func routeFixture() string {
	encoded := string(polyline.EncodeCoords([][]float64{
		{48.8566, 2.3522},
		{43.2965, 5.3698},
	}))
	return fmt.Sprintf(`{
		"code": "Ok",
		"routes": [{
			"distance": 775123.0,
			"duration": 26900.5,
			"geometry": %q,
			"legs": [{
				"distance": 775123.0,
				"duration": 26900.5,
				"steps": [
					{"name": "A6", "distance": 1500.0, "duration": 80.0, "maneuver": {"type": "turn", "modifier": "left"}},
					{"name": "", "distance": 200.0, "duration": 15.0, "maneuver": {"type": "arrive"}}
				]
			}]
		}]
	}`, encoded)
}

func TestComputeRoutes_Success(t *testing.T) {
	var capturedPath string
	var capturedQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		capturedPath = r.URL.Path
		capturedQuery = r.URL.RawQuery
		fmt.Fprint(w, routeFixture())
	}))
	defer server.Close()

	client := NewClient(server.URL)
	routes, err := client.ComputeRoutes(context.Background(), tripWaypoints(), routing.ProfileCar, nil, routing.Options{Instructions: true})
	require.NoError(t, err)
	require.Len(t, routes, 1)

	assert.Contains(t, capturedPath, "/route/v1/driving/")
	assert.Contains(t, capturedPath, "2.352200,48.856600")
	assert.Contains(t, capturedQuery, "overview=full")
	assert.Contains(t, capturedQuery, "steps=true")

	route := routes[0]
	assert.Equal(t, 775123.0, route.DistanceM)
	assert.Equal(t, 26900.5, route.DurationS)
	require.Len(t, route.Geometry, 2)
	assert.InDelta(t, 2.3522, route.Geometry[0].Lng, 0.0001)

	require.Len(t, route.Segments, 1)
	require.Len(t, route.Segments[0].Instructions, 2)
	assert.Equal(t, "turn left onto A6", route.Segments[0].Instructions[0].Text)
	assert.Equal(t, "arrive", route.Segments[0].Instructions[1].Text)
}

func TestComputeRoutes_VehicleProfileIgnored(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, routeFixture())
	}))
	defer server.Close()

	client := NewClient(server.URL)
	assert.False(t, client.SupportsVehicleProfiles())

	// A vehicle profile does not change the request; the call succeeds
	vehicle := &routing.VehicleProfile{HeightM: 3.5, WidthM: 2.3, LengthM: 8.0, WeightT: 5.0}
	routes, err := client.ComputeRoutes(context.Background(), tripWaypoints(), routing.ProfileHeavy, vehicle, routing.Options{})
	require.NoError(t, err)
	assert.Len(t, routes, 1)
}

func TestComputeRoutes_ErrorCode(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"code": "NoRoute", "message": "Impossible route between points", "routes": []}`)
	}))
	defer server.Close()

	client := NewClient(server.URL)
	_, err := client.ComputeRoutes(context.Background(), tripWaypoints(), routing.ProfileCar, nil, routing.Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "NoRoute")
}

func TestComputeRoutes_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(503)
	}))
	defer server.Close()

	client := NewClient(server.URL)
	_, err := client.ComputeRoutes(context.Background(), tripWaypoints(), routing.ProfileCar, nil, routing.Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "route API error 503")
}
