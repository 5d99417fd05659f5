// Package services wires the domain engines to caching, metrics and
// background refresh.
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/cespare/xxhash/v2"
	"go.uber.org/zap"

	"github.com/roamroute/server/internal/cache"
	"github.com/roamroute/server/internal/metrics"
	"github.com/roamroute/server/internal/routing"
)

const routesCacheName = "routes"

// RoutesService computes routes through the planner with a read-through
// cache in front. When every provider is down it serves the last known
// route while it is stale but not very stale, with a warning attached.
type RoutesService struct {
	planner  *routing.Planner
	fallback routing.Provider
	cache    *cache.Cache
	cacheTTL time.Duration
	metrics  *metrics.Provider
	logger   *zap.Logger
}

// NewRoutesService builds the planner over the two providers and wraps
// it with caching
func NewRoutesService(primary, fallback routing.Provider, c *cache.Cache, cacheTTL time.Duration, m *metrics.Provider, logger *zap.Logger) *RoutesService {
	return &RoutesService{
		planner:  routing.NewPlanner(primary, fallback, logger),
		fallback: fallback,
		cache:    c,
		cacheTTL: cacheTTL,
		metrics:  m,
		logger:   logger,
	}
}

// ComputeRoute returns a cached route when fresh, otherwise computes
// one. Validation errors are never cached and never served stale.
func (s *RoutesService) ComputeRoute(ctx context.Context, waypoints []routing.Waypoint, vehicle *routing.VehicleProfile, opts routing.Options) (*routing.CanonicalRoute, error) {
	key, err := routeCacheKey(waypoints, vehicle, opts)
	if err != nil {
		return nil, err
	}

	var cached routing.CanonicalRoute
	if found, err := s.cache.Get(key, &cached); err == nil && found {
		s.metrics.CacheHits.WithLabelValues(routesCacheName).Inc()
		return &cached, nil
	}
	s.metrics.CacheMisses.WithLabelValues(routesCacheName).Inc()

	start := time.Now()
	result, err := s.planner.ComputeRoute(ctx, waypoints, vehicle, opts)
	s.metrics.RouteDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		if routing.IsValidationError(err) {
			return nil, err
		}
		if stale := s.serveStale(key); stale != nil {
			return stale, nil
		}
		return nil, err
	}

	s.metrics.ProviderCalls.WithLabelValues(result.Metadata.Provider).Inc()
	if result.Metadata.Provider == s.fallback.Name() {
		s.metrics.FallbackUses.Inc()
	}

	if cacheErr := s.cache.Set(key, result, s.cacheTTL, result.Metadata.Provider); cacheErr != nil {
		s.logger.Warn("failed to cache route", zap.Error(cacheErr))
	}

	return result, nil
}

// serveStale returns the cached route when it is stale but still
// within the stale-serving window, nil otherwise
func (s *RoutesService) serveStale(key string) *routing.CanonicalRoute {
	if s.cache.IsVeryStale(key) {
		return nil
	}

	var stale routing.CanonicalRoute
	entry, found, err := s.cache.GetWithMetadata(key, &stale)
	if err != nil || !found {
		return nil
	}

	s.metrics.StaleServes.Inc()
	s.logger.Warn("serving stale route after provider failure",
		zap.String("provider", stale.Metadata.Provider),
		zap.Time("computed_at", entry.CreatedAt),
	)

	stale.Warnings = append(stale.Warnings, fmt.Sprintf(
		"routing services unavailable, showing route computed at %s",
		entry.CreatedAt.UTC().Format("15:04 MST")))
	return &stale
}

// routeCacheKey digests the full query so any change in waypoints,
// vehicle or options misses the cache
func routeCacheKey(waypoints []routing.Waypoint, vehicle *routing.VehicleProfile, opts routing.Options) (string, error) {
	query := routing.Query{Waypoints: waypoints, Vehicle: vehicle, Options: opts}
	data, err := json.Marshal(query)
	if err != nil {
		return "", fmt.Errorf("failed to build route cache key: %w", err)
	}
	return fmt.Sprintf("route:%016x", xxhash.Sum64(data)), nil
}
