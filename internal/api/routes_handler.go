package api

import (
	"encoding/json"
	"net/http"

	"github.com/roamroute/server/internal/routing"
)

// computeRouteRequest is the POST /api/v1/routes body
type computeRouteRequest struct {
	Waypoints []routing.Waypoint      `json:"waypoints"`
	Vehicle   *routing.VehicleProfile `json:"vehicle,omitempty"`
	Options   routing.Options         `json:"options"`
}

func (h *Handlers) handleComputeRoute(w http.ResponseWriter, r *http.Request) {
	var req computeRouteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body: " + err.Error()})
		return
	}

	result, err := h.routes.ComputeRoute(r.Context(), req.Waypoints, req.Vehicle, req.Options)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}
