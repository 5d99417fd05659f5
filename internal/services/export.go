package services

import (
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"go.uber.org/zap"

	"github.com/roamroute/server/internal/export"
	"github.com/roamroute/server/internal/metrics"
	"github.com/roamroute/server/internal/routing"
)

const (
	exportArtifactLimit = 256
	exportArtifactTTL   = time.Hour
)

// ExportService serializes routes and keeps the resulting artifacts
// around for a bounded time so a download link survives a page reload
type ExportService struct {
	exporter  *export.Exporter
	artifacts *expirable.LRU[string, *export.Result]
	metrics   *metrics.Provider
	logger    *zap.Logger
}

// NewExportService creates the service with an expiring artifact store
func NewExportService(exporter *export.Exporter, m *metrics.Provider, logger *zap.Logger) *ExportService {
	return &ExportService{
		exporter:  exporter,
		artifacts: expirable.NewLRU[string, *export.Result](exportArtifactLimit, nil, exportArtifactTTL),
		metrics:   m,
		logger:    logger,
	}
}

// Create serializes the route and stores the artifact under a fresh ID
func (s *ExportService) Create(route *routing.CanonicalRoute, waypoints []routing.Waypoint, format export.Format, name string, opts export.Options) (string, *export.Result, error) {
	result, err := s.exporter.Export(route, waypoints, format, name, opts)
	if err != nil {
		return "", nil, err
	}

	id := uuid.NewString()
	s.artifacts.Add(id, result)
	s.metrics.Exports.WithLabelValues(string(format)).Inc()

	s.logger.Info("route exported",
		zap.String("format", string(format)),
		zap.String("filename", result.Filename),
		zap.Int("bytes", result.ByteSize),
	)

	return id, result, nil
}

// Get returns a previously created artifact while it is still retained
func (s *ExportService) Get(id string) (*export.Result, bool) {
	return s.artifacts.Get(id)
}
