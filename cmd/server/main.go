// Command server runs the roamroute trip-planning API.
package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/roamroute/server/internal/api"
	"github.com/roamroute/server/internal/cache"
	"github.com/roamroute/server/internal/clients/ors"
	"github.com/roamroute/server/internal/clients/osrm"
	"github.com/roamroute/server/internal/config"
	"github.com/roamroute/server/internal/export"
	"github.com/roamroute/server/internal/lib/geo"
	"github.com/roamroute/server/internal/metrics"
	"github.com/roamroute/server/internal/services"
)

func main() {
	configPath := flag.String("config", "roamroute.yaml", "path to the YAML config file")
	devLogging := flag.Bool("dev", false, "human-readable logging")
	flag.Parse()

	logger, err := buildLogger(*devLogging)
	if err != nil {
		os.Exit(1)
	}
	defer logger.Sync()

	if err := run(*configPath, logger); err != nil {
		logger.Fatal("server exited", zap.Error(err))
	}
}

func buildLogger(dev bool) (*zap.Logger, error) {
	if dev {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func run(configPath string, logger *zap.Logger) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	m := metrics.Init()
	g := geo.NewGeo()

	routeCache := cache.New(logger)
	routeCache.StartPeriodicCleanup(ctx, cfg.Routing.CacheTTL)

	primary := ors.NewClient(cfg.Routing.Primary.BaseURL, cfg.Routing.Primary.APIKey)
	fallback := osrm.NewClient(cfg.Routing.Fallback.BaseURL)

	routesSvc := services.NewRoutesService(primary, fallback, routeCache, cfg.Routing.CacheTTL, m, logger)

	sitesSvc, err := services.NewSitesService(cfg.Catalog.Path, g, m, logger)
	if err != nil {
		return err
	}
	if cfg.Catalog.ReloadInterval > 0 {
		sitesSvc.StartPeriodicReload(ctx, cfg.Catalog.ReloadInterval)
	}

	exportsSvc := services.NewExportService(export.NewExporter(g), m, logger)

	refresher := services.NewFeaturedTripsRefresher(routesSvc, cfg.FeaturedTrips, cfg.Routing.RefreshInterval, logger)
	refresher.Start(ctx)
	defer refresher.Stop()

	var metricsHandler http.Handler
	if cfg.Metrics.Enabled {
		metricsHandler = m.Handler()
	}

	handlers := api.NewHandlers(routesSvc, sitesSvc, exportsSvc, logger)
	srv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      handlers.Router(cfg.Server.CorsOrigins, metricsHandler, cfg.Metrics.Path),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", zap.String("addr", cfg.Server.Addr))
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}
