package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
)

// serializeCSV emits stacked sections separated by blank lines:
// waypoints, track points, instructions, then a key/value summary.
// encoding/csv handles quoting, so names containing commas or quotes
// stay intact on re-import.
func (e *Exporter) serializeCSV(route *ExportableRoute, opts Options) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if opts.IncludeWaypoints {
		writer.Write([]string{"section", "order", "id", "name", "lat", "lng", "role"})
		for _, w := range route.Waypoints {
			writer.Write([]string{
				"waypoint",
				strconv.Itoa(w.OrderIndex),
				w.ID,
				w.Name,
				formatCoord(w.Latitude),
				formatCoord(w.Longitude),
				string(w.Role),
			})
		}
		writer.Flush()
		buf.WriteByte('\n')
	}

	if opts.IncludeTrack {
		writer.Write([]string{"section", "index", "lat", "lng", "elevation_m", "segment", "cumulative_km"})
		for i, tp := range route.TrackPoints {
			elevation := ""
			if tp.Position.Elevation != nil {
				elevation = strconv.FormatFloat(*tp.Position.Elevation, 'f', 1, 64)
			}
			writer.Write([]string{
				"trackpoint",
				strconv.Itoa(i),
				formatCoord(tp.Position.Lat),
				formatCoord(tp.Position.Lng),
				elevation,
				strconv.Itoa(tp.SegmentIndex),
				strconv.FormatFloat(tp.CumulativeKm, 'f', 3, 64),
			})
		}
		writer.Flush()
		buf.WriteByte('\n')
	}

	if opts.IncludeInstructions {
		writer.Write([]string{"section", "segment", "step", "text", "distance_m", "duration_s"})
		for segIdx, seg := range route.Segments {
			for stepIdx, inst := range seg.Instructions {
				writer.Write([]string{
					"instruction",
					strconv.Itoa(segIdx),
					strconv.Itoa(stepIdx),
					inst.Text,
					strconv.FormatFloat(inst.DistanceM, 'f', 0, 64),
					strconv.FormatFloat(inst.DurationS, 'f', 0, 64),
				})
			}
		}
		writer.Flush()
		buf.WriteByte('\n')
	}

	writer.Write([]string{"key", "value"})
	writer.Write([]string{"name", route.Name})
	writer.Write([]string{"provider", route.Provider})
	writer.Write([]string{"total_distance_km", strconv.FormatFloat(route.TotalDistanceM/1000, 'f', 1, 64)})
	writer.Write([]string{"total_duration_min", strconv.FormatFloat(route.TotalDurationS/60, 'f', 0, 64)})
	writer.Write([]string{"exported_at", route.CreatedAt.Format("2006-01-02T15:04:05Z")})
	writer.Flush()

	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("failed to encode CSV: %w", err)
	}

	return buf.Bytes(), nil
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}
