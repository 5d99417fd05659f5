package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/roamroute/server/internal/export"
	"github.com/roamroute/server/internal/routing"
)

// createExportRequest is the POST /api/v1/exports body. The route is
// recomputed through the route cache, so exporting a just-displayed
// route does not trigger a second provider call.
type createExportRequest struct {
	Name      string                  `json:"name"`
	Format    export.Format           `json:"format"`
	Waypoints []routing.Waypoint      `json:"waypoints"`
	Vehicle   *routing.VehicleProfile `json:"vehicle,omitempty"`
	Options   routing.Options         `json:"options"`
	Export    *export.Options         `json:"export,omitempty"`
}

type createExportResponse struct {
	ID       string `json:"id"`
	Filename string `json:"filename"`
	MIMEType string `json:"mime_type"`
	ByteSize int    `json:"byte_size"`
}

func (h *Handlers) handleCreateExport(w http.ResponseWriter, r *http.Request) {
	var req createExportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body: " + err.Error()})
		return
	}

	route, err := h.routes.ComputeRoute(r.Context(), req.Waypoints, req.Vehicle, req.Options)
	if err != nil {
		writeError(w, err)
		return
	}

	opts := export.DefaultOptions()
	if req.Export != nil {
		opts = *req.Export
	}

	id, result, err := h.exports.Create(route, req.Waypoints, req.Format, req.Name, opts)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusCreated, createExportResponse{
		ID:       id,
		Filename: result.Filename,
		MIMEType: result.MIMEType,
		ByteSize: result.ByteSize,
	})
}

func (h *Handlers) handleDownloadExport(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	result, ok := h.exports.Get(id)
	if !ok {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "export not found or expired"})
		return
	}

	w.Header().Set("Content-Type", result.MIMEType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+result.Filename+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(result.Content)
}
