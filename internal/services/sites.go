package services

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/roamroute/server/internal/catalog"
	"github.com/roamroute/server/internal/lib/geo"
	"github.com/roamroute/server/internal/metrics"
	"github.com/roamroute/server/internal/poi"
)

// SitesService serves campsite queries over a catalog loaded from
// disk. The catalog is swapped atomically on reload; queries running
// during a reload see the old snapshot.
type SitesService struct {
	engine  *poi.Engine
	path    string
	metrics *metrics.Provider
	logger  *zap.Logger

	mu    sync.RWMutex
	sites []poi.Campsite
}

// NewSitesService loads the catalog at path and builds the filter
// engine over it
func NewSitesService(path string, g geo.Geo, m *metrics.Provider, logger *zap.Logger) (*SitesService, error) {
	sites, err := catalog.Load(path)
	if err != nil {
		return nil, err
	}

	logger.Info("campsite catalog loaded",
		zap.String("path", path),
		zap.Int("sites", len(sites)),
	)

	return &SitesService{
		engine:  poi.NewEngine(g),
		path:    path,
		metrics: m,
		logger:  logger,
		sites:   sites,
	}, nil
}

// Query runs the filter pipeline over the current catalog snapshot
func (s *SitesService) Query(state poi.FilterState, route *geo.Polyline, currentLocation *geo.Point) ([]poi.RankedSite, error) {
	s.mu.RLock()
	sites := s.sites
	s.mu.RUnlock()

	s.metrics.SiteQueries.Inc()
	return s.engine.Filter(sites, state, route, currentLocation)
}

// Count returns the size of the current catalog snapshot
func (s *SitesService) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sites)
}

// Reload re-reads the catalog from disk. On failure the current
// snapshot stays in place.
func (s *SitesService) Reload() error {
	sites, err := catalog.Load(s.path)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.sites = sites
	s.mu.Unlock()

	s.logger.Info("campsite catalog reloaded", zap.Int("sites", len(sites)))
	return nil
}

// StartPeriodicReload re-reads the catalog every interval until ctx is
// cancelled. Reload failures are logged and retried next tick.
func (s *SitesService) StartPeriodicReload(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := s.Reload(); err != nil {
					s.logger.Warn("catalog reload failed, keeping current snapshot", zap.Error(err))
				}
			}
		}
	}()
}
