// Package export serializes computed routes into downloadable
// interchange formats: GPX, KML, JSON and CSV.
package export

import (
	"errors"
	"time"

	"github.com/roamroute/server/internal/lib/geo"
	"github.com/roamroute/server/internal/routing"
)

// ExportWaypoint is a waypoint with its order index fixed for output
type ExportWaypoint struct {
	routing.Waypoint
	OrderIndex int `json:"order_index"`
}

// TrackPoint is a single point of exported track geometry
type TrackPoint struct {
	Position     routing.Position `json:"position"`
	SegmentIndex int              `json:"segment_index"`
	CumulativeKm float64          `json:"cumulative_km"`
}

// ExportableRoute is the format-agnostic normalization every
// serializer consumes. Derived at export time, never stored.
type ExportableRoute struct {
	Name           string                   `json:"name"`
	Waypoints      []ExportWaypoint         `json:"waypoints"`
	TrackPoints    []TrackPoint             `json:"track_points"`
	Segments       []routing.Segment        `json:"segments"`
	BoundingBox    geo.BoundingBox          `json:"bounding_box"`
	TotalDistanceM float64                  `json:"total_distance_m"`
	TotalDurationS float64                  `json:"total_duration_s"`
	HasElevation   bool                     `json:"has_elevation"`
	Vehicle        *routing.VehicleProfile  `json:"vehicle,omitempty"`
	Restrictions   *routing.Restrictions    `json:"restrictions,omitempty"`
	Provider       string                   `json:"provider"`
	CreatedAt      time.Time                `json:"created_at"`
}

// buildExportable normalizes the primary route alternative plus the
// waypoint list. Fails when there is nothing to export: an empty
// artifact would be worse than an error.
func (e *Exporter) buildExportable(route *routing.CanonicalRoute, waypoints []routing.Waypoint, name string) (*ExportableRoute, error) {
	if route == nil || len(route.Routes) == 0 {
		return nil, errors.New("route has no alternatives to export")
	}
	if len(waypoints) == 0 {
		return nil, errors.New("route has no waypoints to export")
	}

	primary := route.Routes[0]
	if len(primary.Geometry) == 0 {
		return nil, errors.New("route has no geometry to export")
	}

	exportable := &ExportableRoute{
		Name:           name,
		Segments:       primary.Segments,
		TotalDistanceM: primary.DistanceM,
		TotalDurationS: primary.DurationS,
		Vehicle:        route.Metadata.Query.Vehicle,
		Restrictions:   route.Restrictions,
		Provider:       route.Metadata.Provider,
		CreatedAt:      time.Now().UTC(),
	}

	for i, w := range waypoints {
		exportable.Waypoints = append(exportable.Waypoints, ExportWaypoint{Waypoint: w, OrderIndex: i})
	}

	line := geo.Polyline{Points: make([]geo.Point, len(primary.Geometry))}
	for i, p := range primary.Geometry {
		line.Points[i] = geo.Point{Latitude: p.Lat, Longitude: p.Lng}
		if p.Elevation != nil {
			exportable.HasElevation = true
		}
	}

	box, err := e.geo.BoundingBox(line, 0)
	if err != nil {
		return nil, err
	}
	exportable.BoundingBox = box

	exportable.TrackPoints = e.buildTrackPoints(primary)

	return exportable, nil
}

// buildTrackPoints assigns geometry to segments by dividing the full
// geometry array evenly across the segment count. Providers do not
// return per-segment geometry, so this even split is an approximation:
// a point's segment index can be off by one near segment boundaries on
// routes whose legs differ greatly in point density. Cumulative
// distance is exact haversine regardless.
func (e *Exporter) buildTrackPoints(route routing.RouteAlternative) []TrackPoint {
	numSegments := len(route.Segments)
	if numSegments == 0 {
		numSegments = 1
	}
	total := len(route.Geometry)

	points := make([]TrackPoint, total)
	cumulative := 0.0
	for i, p := range route.Geometry {
		if i > 0 {
			prev := route.Geometry[i-1]
			d, err := e.geo.Distance(
				geo.Point{Latitude: prev.Lat, Longitude: prev.Lng},
				geo.Point{Latitude: p.Lat, Longitude: p.Lng},
			)
			if err == nil {
				cumulative += d
			}
		}

		segmentIndex := i * numSegments / total
		if segmentIndex >= numSegments {
			segmentIndex = numSegments - 1
		}

		points[i] = TrackPoint{
			Position:     p,
			SegmentIndex: segmentIndex,
			CumulativeKm: cumulative,
		}
	}

	return points
}
