package services

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/roamroute/server/internal/config"
	"github.com/roamroute/server/internal/routing"
)

// FeaturedTripsRefresher recomputes the curated trips on an interval so
// their routes are always served warm from cache
type FeaturedTripsRefresher struct {
	routes   *RoutesService
	trips    []config.FeaturedTrip
	interval time.Duration
	logger   *zap.Logger

	stopChan chan struct{}
	running  bool
}

// NewFeaturedTripsRefresher creates the refresher; Start must be called
// to begin refreshing
func NewFeaturedTripsRefresher(routes *RoutesService, trips []config.FeaturedTrip, interval time.Duration, logger *zap.Logger) *FeaturedTripsRefresher {
	return &FeaturedTripsRefresher{
		routes:   routes,
		trips:    trips,
		interval: interval,
		logger:   logger,
		stopChan: make(chan struct{}),
	}
}

// Start begins periodic refresh. The first pass runs immediately so the
// cache is warm before the first user request.
func (r *FeaturedTripsRefresher) Start(ctx context.Context) {
	if r.running || len(r.trips) == 0 {
		return
	}
	r.running = true

	r.logger.Info("starting featured trips refresh",
		zap.Int("trips", len(r.trips)),
		zap.Duration("interval", r.interval),
	)

	go r.refreshLoop(ctx)
}

// Stop halts periodic refresh
func (r *FeaturedTripsRefresher) Stop() {
	if !r.running {
		return
	}
	r.running = false
	close(r.stopChan)
}

// IsRunning reports whether periodic refresh is active
func (r *FeaturedTripsRefresher) IsRunning() bool {
	return r.running
}

func (r *FeaturedTripsRefresher) refreshLoop(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.refreshAll(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-r.stopChan:
			return
		case <-ticker.C:
			r.refreshAll(ctx)
		}
	}
}

// refreshAll recomputes every trip. ComputeRoute goes through the route
// cache, so a fresh cached route costs nothing.
func (r *FeaturedTripsRefresher) refreshAll(ctx context.Context) {
	for _, trip := range r.trips {
		refreshCtx, cancel := context.WithTimeout(ctx, 2*time.Minute)
		_, err := r.routes.ComputeRoute(refreshCtx, TripWaypoints(trip), nil, routing.Options{})
		cancel()

		if err != nil {
			r.logger.Warn("featured trip refresh failed",
				zap.String("trip", trip.ID),
				zap.Error(err),
			)
		}
	}
}

// TripWaypoints converts a configured trip into an ordered waypoint
// list with roles assigned by position
func TripWaypoints(trip config.FeaturedTrip) []routing.Waypoint {
	waypoints := make([]routing.Waypoint, len(trip.Waypoints))
	for i, w := range trip.Waypoints {
		role := routing.RoleIntermediate
		switch i {
		case 0:
			role = routing.RoleStart
		case len(trip.Waypoints) - 1:
			role = routing.RoleEnd
		}
		waypoints[i] = routing.Waypoint{
			ID:        w.ID,
			Name:      w.Name,
			Latitude:  w.Latitude,
			Longitude: w.Longitude,
			Role:      role,
		}
	}
	return waypoints
}
