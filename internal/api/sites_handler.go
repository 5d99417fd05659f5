package api

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/twpayne/go-polyline"

	"github.com/roamroute/server/internal/lib/geo"
	"github.com/roamroute/server/internal/poi"
)

const (
	defaultMaxResults      = 50
	defaultRouteDistanceKm = 5.0
)

// handleQuerySites serves GET /api/v1/sites. Filter configuration comes
// from query parameters; route geometry arrives as an encoded polyline.
func (h *Handlers) handleQuerySites(w http.ResponseWriter, r *http.Request) {
	state, route, location, err := parseSitesQuery(r.URL.Query())
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	results, err := h.sites.Query(state, route, location)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"sites": results,
		"count": len(results),
	})
}

func parseSitesQuery(q url.Values) (poi.FilterState, *geo.Polyline, *geo.Point, error) {
	state := poi.FilterState{
		VisibleTypes: []poi.SiteType{poi.TypeCampsite, poi.TypeAire, poi.TypeParking, poi.TypeWild},
		MaxResults:   defaultMaxResults,
	}

	// An explicit types parameter replaces the default set; an explicit
	// empty one means show nothing
	if q.Has("types") {
		state.VisibleTypes = nil
		for _, t := range splitCSV(q.Get("types")) {
			switch st := poi.SiteType(t); st {
			case poi.TypeCampsite, poi.TypeAire, poi.TypeParking, poi.TypeWild:
				state.VisibleTypes = append(state.VisibleTypes, st)
			default:
				return state, nil, nil, fmt.Errorf("unknown site type %q", t)
			}
		}
	}

	state.RequiredAmenities = splitCSV(q.Get("amenities"))
	state.SearchQuery = q.Get("q")
	state.LocationQuery = q.Get("location")

	var err error
	if state.VehicleOnly, err = parseBool(q, "vehicle_only"); err != nil {
		return state, nil, nil, err
	}
	if state.OpenNow, err = parseBool(q, "open_now"); err != nil {
		return state, nil, nil, err
	}
	if state.FreeOnly, err = parseBool(q, "free_only"); err != nil {
		return state, nil, nil, err
	}
	if state.AcceptsReservations, err = parseBool(q, "reservations"); err != nil {
		return state, nil, nil, err
	}

	if q.Has("sort") {
		switch key := poi.SortKey(q.Get("sort")); key {
		case poi.SortByDistance, poi.SortByName, poi.SortByRelevance, poi.SortByRating:
			state.SortBy = key
		default:
			return state, nil, nil, fmt.Errorf("unknown sort key %q", q.Get("sort"))
		}
	}

	if q.Has("max_results") {
		n, err := strconv.Atoi(q.Get("max_results"))
		if err != nil || n < 0 {
			return state, nil, nil, fmt.Errorf("max_results must be a non-negative integer")
		}
		state.MaxResults = n
	}

	var route *geo.Polyline
	if encoded := q.Get("route"); encoded != "" {
		coords, _, err := polyline.DecodeCoords([]byte(encoded))
		if err != nil {
			return state, nil, nil, fmt.Errorf("invalid route polyline: %w", err)
		}
		route = &geo.Polyline{Points: make([]geo.Point, len(coords))}
		for i, c := range coords {
			route.Points[i] = geo.Point{Latitude: c[0], Longitude: c[1]}
		}
		state.NearRoute = true
		state.MaxRouteDistanceKm = defaultRouteDistanceKm
		if q.Has("max_route_distance_km") {
			d, err := strconv.ParseFloat(q.Get("max_route_distance_km"), 64)
			if err != nil || d <= 0 {
				return state, nil, nil, fmt.Errorf("max_route_distance_km must be a positive number")
			}
			state.MaxRouteDistanceKm = d
		}
	}

	var location *geo.Point
	if q.Has("lat") || q.Has("lng") {
		lat, latErr := strconv.ParseFloat(q.Get("lat"), 64)
		lng, lngErr := strconv.ParseFloat(q.Get("lng"), 64)
		if latErr != nil || lngErr != nil {
			return state, nil, nil, fmt.Errorf("lat and lng must both be valid numbers")
		}
		location = &geo.Point{Latitude: lat, Longitude: lng}
	}

	return state, route, location, nil
}

func splitCSV(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := parts[:0]
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func parseBool(q url.Values, key string) (bool, error) {
	if !q.Has(key) {
		return false, nil
	}
	v, err := strconv.ParseBool(q.Get(key))
	if err != nil {
		return false, fmt.Errorf("%s must be a boolean", key)
	}
	return v, nil
}
