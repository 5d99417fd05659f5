package services

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/roamroute/server/internal/cache"
	"github.com/roamroute/server/internal/metrics"
	"github.com/roamroute/server/internal/routing"
)

// fakeProvider is a scriptable routing backend
type fakeProvider struct {
	name     string
	vehicles bool
	err      error
	routes   []routing.RouteAlternative
	calls    atomic.Int64
}

func (f *fakeProvider) Name() string                  { return f.name }
func (f *fakeProvider) SupportsVehicleProfiles() bool { return f.vehicles }

func (f *fakeProvider) ComputeRoutes(ctx context.Context, waypoints []routing.Waypoint, profile routing.Profile, vehicle *routing.VehicleProfile, opts routing.Options) ([]routing.RouteAlternative, error) {
	f.calls.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	return f.routes, nil
}

func fakeRoutes() []routing.RouteAlternative {
	return []routing.RouteAlternative{
		{
			Geometry: []routing.Position{
				{Lng: 2.3522, Lat: 48.8566},
				{Lng: 4.8357, Lat: 45.764},
			},
			DistanceM: 465000,
			DurationS: 16200,
		},
	}
}

func testServiceWaypoints() []routing.Waypoint {
	return []routing.Waypoint{
		{ID: "wp-1", Name: "Paris", Latitude: 48.8566, Longitude: 2.3522, Role: routing.RoleStart},
		{ID: "wp-2", Name: "Lyon", Latitude: 45.764, Longitude: 4.8357, Role: routing.RoleEnd},
	}
}

func newRoutesService(primary, fallback routing.Provider, ttl time.Duration) *RoutesService {
	return NewRoutesService(primary, fallback, cache.New(nil), ttl, metrics.Init(), zap.NewNop())
}

func TestComputeRouteCachesResult(t *testing.T) {
	primary := &fakeProvider{name: "openroute", vehicles: true, routes: fakeRoutes()}
	fallback := &fakeProvider{name: "osrm"}
	svc := newRoutesService(primary, fallback, time.Minute)

	first, err := svc.ComputeRoute(context.Background(), testServiceWaypoints(), nil, routing.Options{})
	require.NoError(t, err)
	assert.Equal(t, routing.StatusOK, first.Status)
	assert.Equal(t, int64(1), primary.calls.Load())

	second, err := svc.ComputeRoute(context.Background(), testServiceWaypoints(), nil, routing.Options{})
	require.NoError(t, err)
	assert.Equal(t, first.Metadata.ComputedAt.Unix(), second.Metadata.ComputedAt.Unix())
	// Served from cache, no second provider call
	assert.Equal(t, int64(1), primary.calls.Load())
	assert.Equal(t, int64(0), fallback.calls.Load())
}

func TestComputeRouteDistinctQueriesMissCache(t *testing.T) {
	primary := &fakeProvider{name: "openroute", vehicles: true, routes: fakeRoutes()}
	svc := newRoutesService(primary, &fakeProvider{name: "osrm"}, time.Minute)

	_, err := svc.ComputeRoute(context.Background(), testServiceWaypoints(), nil, routing.Options{})
	require.NoError(t, err)

	_, err = svc.ComputeRoute(context.Background(), testServiceWaypoints(), nil, routing.Options{Alternatives: 2})
	require.NoError(t, err)

	assert.Equal(t, int64(2), primary.calls.Load())
}

func TestComputeRouteValidationErrorsAreNotCached(t *testing.T) {
	primary := &fakeProvider{name: "openroute", vehicles: true, routes: fakeRoutes()}
	svc := newRoutesService(primary, &fakeProvider{name: "osrm"}, time.Minute)

	_, err := svc.ComputeRoute(context.Background(), nil, nil, routing.Options{})
	require.Error(t, err)
	assert.True(t, routing.IsValidationError(err))
	assert.Equal(t, int64(0), primary.calls.Load())
}

func TestComputeRouteServesStaleOnProviderFailure(t *testing.T) {
	primary := &fakeProvider{name: "openroute", vehicles: true, routes: fakeRoutes()}
	fallback := &fakeProvider{name: "osrm", err: errors.New("down")}
	svc := newRoutesService(primary, fallback, 200*time.Millisecond)

	_, err := svc.ComputeRoute(context.Background(), testServiceWaypoints(), nil, routing.Options{})
	require.NoError(t, err)

	// Let the entry go stale but stay within the stale-serving window,
	// then take every provider down
	time.Sleep(250 * time.Millisecond)
	primary.err = errors.New("down")

	result, err := svc.ComputeRoute(context.Background(), testServiceWaypoints(), nil, routing.Options{})
	require.NoError(t, err)
	require.NotEmpty(t, result.Warnings)
	assert.Contains(t, result.Warnings[len(result.Warnings)-1], "routing services unavailable")
	assert.Len(t, result.Routes, 1)
}

func TestComputeRouteFailsWhenNothingCached(t *testing.T) {
	primary := &fakeProvider{name: "openroute", vehicles: true, err: errors.New("down")}
	fallback := &fakeProvider{name: "osrm", err: errors.New("down")}
	svc := newRoutesService(primary, fallback, time.Minute)

	_, err := svc.ComputeRoute(context.Background(), testServiceWaypoints(), nil, routing.Options{})
	require.Error(t, err)

	var rErr *routing.Error
	require.ErrorAs(t, err, &rErr)
	assert.Equal(t, routing.CodeAllProvidersDown, rErr.Code)
}

func TestComputeRouteUsesFallback(t *testing.T) {
	primary := &fakeProvider{name: "openroute", vehicles: true, err: errors.New("down")}
	fallback := &fakeProvider{name: "osrm", routes: fakeRoutes()}
	svc := newRoutesService(primary, fallback, time.Minute)

	result, err := svc.ComputeRoute(context.Background(), testServiceWaypoints(), nil, routing.Options{})
	require.NoError(t, err)
	assert.Equal(t, "osrm", result.Metadata.Provider)
}
