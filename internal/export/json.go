package export

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/roamroute/server/internal/lib/geo"
	"github.com/roamroute/server/internal/routing"
)

// jsonDocument is the JSON export envelope: the full normalized route
// plus derived statistics and provenance for consumers that re-import
// the file later.
type jsonDocument struct {
	Route      *jsonRoute     `json:"route"`
	Stats      jsonStats      `json:"stats"`
	Provenance jsonProvenance `json:"provenance"`
}

// jsonRoute mirrors ExportableRoute with sections elided per Options
type jsonRoute struct {
	Name           string                  `json:"name"`
	Waypoints      []ExportWaypoint        `json:"waypoints,omitempty"`
	TrackPoints    []TrackPoint            `json:"track_points,omitempty"`
	Segments       []routing.Segment       `json:"segments,omitempty"`
	BoundingBox    geo.BoundingBox         `json:"bounding_box"`
	TotalDistanceM float64                 `json:"total_distance_m"`
	TotalDurationS float64                 `json:"total_duration_s"`
	Vehicle        *routing.VehicleProfile `json:"vehicle,omitempty"`
	Restrictions   *routing.Restrictions   `json:"restrictions,omitempty"`
	Provider       string                  `json:"provider"`
}

type jsonStats struct {
	WaypointCount    int             `json:"waypoint_count"`
	TrackPointCount  int             `json:"track_point_count"`
	SegmentCount     int             `json:"segment_count"`
	InstructionCount int             `json:"instruction_count"`
	HasElevation     bool            `json:"has_elevation"`
	BoundingBox      geo.BoundingBox `json:"bounding_box"`
}

type jsonProvenance struct {
	FormatVersion string    `json:"format_version"`
	Options       Options   `json:"options"`
	ExportedAt    time.Time `json:"exported_at"`
}

func (e *Exporter) serializeJSON(route *ExportableRoute, opts Options) ([]byte, error) {
	doc := jsonDocument{
		Route: &jsonRoute{
			Name:           route.Name,
			BoundingBox:    route.BoundingBox,
			TotalDistanceM: route.TotalDistanceM,
			TotalDurationS: route.TotalDurationS,
			Provider:       route.Provider,
		},
		Stats: jsonStats{
			WaypointCount:   len(route.Waypoints),
			TrackPointCount: len(route.TrackPoints),
			SegmentCount:    len(route.Segments),
			HasElevation:    route.HasElevation,
			BoundingBox:     route.BoundingBox,
		},
		Provenance: jsonProvenance{
			FormatVersion: formatVersion,
			Options:       opts,
			ExportedAt:    route.CreatedAt,
		},
	}

	for _, seg := range route.Segments {
		doc.Stats.InstructionCount += len(seg.Instructions)
	}

	if opts.IncludeWaypoints {
		doc.Route.Waypoints = route.Waypoints
	}
	if opts.IncludeTrack {
		doc.Route.TrackPoints = route.TrackPoints
	}
	if opts.IncludeInstructions {
		doc.Route.Segments = route.Segments
	}
	doc.Route.Vehicle = route.Vehicle
	doc.Route.Restrictions = route.Restrictions

	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(doc); err != nil {
		return nil, fmt.Errorf("failed to encode JSON: %w", err)
	}

	return buf.Bytes(), nil
}
