// Package api exposes the trip-planning services over HTTP/JSON.
package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/roamroute/server/internal/routing"
	"github.com/roamroute/server/internal/services"
)

// Handlers binds the services to their HTTP endpoints
type Handlers struct {
	routes  *services.RoutesService
	sites   *services.SitesService
	exports *services.ExportService
	logger  *zap.Logger
}

// NewHandlers creates the handler set
func NewHandlers(routes *services.RoutesService, sites *services.SitesService, exports *services.ExportService, logger *zap.Logger) *Handlers {
	return &Handlers{
		routes:  routes,
		sites:   sites,
		exports: exports,
		logger:  logger,
	}
}

// Router assembles the full route tree. metricsHandler may be nil when
// metrics exposition is disabled.
func (h *Handlers) Router(corsOrigins []string, metricsHandler http.Handler, metricsPath string) http.Handler {
	r := chi.NewRouter()
	r.Use(Recover(h.logger))
	r.Use(Logging(h.logger))
	r.Use(CORS(corsOrigins))

	r.Get("/healthz", h.handleHealth)
	if metricsHandler != nil {
		r.Get(metricsPath, metricsHandler.ServeHTTP)
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/routes", h.handleComputeRoute)
		r.Get("/sites", h.handleQuerySites)
		r.Post("/exports", h.handleCreateExport)
		r.Get("/exports/{id}", h.handleDownloadExport)
	})

	return r
}

func (h *Handlers) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type errorResponse struct {
	Error       string `json:"error"`
	Code        string `json:"code,omitempty"`
	Provider    string `json:"provider,omitempty"`
	Recoverable bool   `json:"recoverable,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// writeError maps routing errors onto HTTP statuses: validation
// failures are the client's fault, exhausted providers are an upstream
// outage
func writeError(w http.ResponseWriter, err error) {
	var rErr *routing.Error
	if errors.As(err, &rErr) {
		status := http.StatusBadGateway
		switch {
		case routing.IsValidationError(rErr):
			status = http.StatusBadRequest
		case rErr.Code == routing.CodeAllProvidersDown:
			status = http.StatusServiceUnavailable
		}
		writeJSON(w, status, errorResponse{
			Error:       rErr.Message,
			Code:        rErr.Code,
			Provider:    rErr.Provider,
			Recoverable: rErr.Recoverable,
		})
		return
	}

	writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
}
