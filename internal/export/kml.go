package export

import (
	"bytes"
	"fmt"
	"image/color"

	"github.com/twpayne/go-kml/v2"

	"github.com/roamroute/server/internal/routing"
)

// KML style identifiers by waypoint role
const (
	kmlStyleStart = "wp-start"
	kmlStyleEnd   = "wp-end"
	kmlStyleVia   = "wp-via"
	kmlStyleRoute = "route-line"
)

// serializeKML emits the same data as GPX organized KML-style: a
// waypoint folder, a single route line and a human-readable summary in
// the document description. go-kml escapes all text content.
func (e *Exporter) serializeKML(route *ExportableRoute, opts Options) ([]byte, error) {
	description := fmt.Sprintf("Distance: %.1f km\nDuration: %.0f minutes\nProvider: %s",
		route.TotalDistanceM/1000, route.TotalDurationS/60, route.Provider)
	if route.Vehicle != nil {
		description += fmt.Sprintf("\nVehicle: %.2fm high, %.2fm wide, %.2fm long, %.1ft",
			route.Vehicle.HeightM, route.Vehicle.WidthM, route.Vehicle.LengthM, route.Vehicle.WeightT)
	}

	children := []kml.Element{
		kml.Name(route.Name),
		kml.Description(description),
		kml.SharedStyle(kmlStyleStart,
			kml.IconStyle(kml.Icon(kml.Href("http://maps.google.com/mapfiles/kml/paddle/go.png"))),
		),
		kml.SharedStyle(kmlStyleEnd,
			kml.IconStyle(kml.Icon(kml.Href("http://maps.google.com/mapfiles/kml/paddle/red-stars.png"))),
		),
		kml.SharedStyle(kmlStyleVia,
			kml.IconStyle(kml.Icon(kml.Href("http://maps.google.com/mapfiles/kml/paddle/blu-circle.png"))),
		),
		kml.SharedStyle(kmlStyleRoute,
			kml.LineStyle(
				kml.Color(color.RGBA{R: 0x1e, G: 0x6f, B: 0xd8, A: 0xff}),
				kml.Width(4),
			),
		),
	}

	if opts.IncludeWaypoints {
		var placemarks []kml.Element
		for _, w := range route.Waypoints {
			placemarks = append(placemarks, kml.Placemark(
				kml.Name(w.Name),
				kml.StyleURL("#"+kmlStyle(w.Role)),
				kml.Point(kml.Coordinates(kml.Coordinate{Lon: w.Longitude, Lat: w.Latitude})),
			))
		}
		folderChildren := append([]kml.Element{kml.Name("Waypoints")}, placemarks...)
		children = append(children, kml.Folder(folderChildren...))
	}

	if opts.IncludeTrack {
		coords := make([]kml.Coordinate, len(route.TrackPoints))
		for i, tp := range route.TrackPoints {
			coords[i] = kml.Coordinate{Lon: tp.Position.Lng, Lat: tp.Position.Lat}
			if tp.Position.Elevation != nil {
				coords[i].Alt = *tp.Position.Elevation
			}
		}
		children = append(children, kml.Placemark(
			kml.Name(route.Name),
			kml.StyleURL("#"+kmlStyleRoute),
			kml.LineString(
				kml.Coordinates(coords...),
				kml.Tessellate(true),
			),
		))
	}

	doc := kml.KML(kml.Document(children...))

	var buf bytes.Buffer
	if err := doc.WriteIndent(&buf, "", "  "); err != nil {
		return nil, fmt.Errorf("failed to encode KML: %w", err)
	}
	buf.WriteByte('\n')

	return buf.Bytes(), nil
}

func kmlStyle(role routing.WaypointRole) string {
	switch role {
	case routing.RoleStart:
		return kmlStyleStart
	case routing.RoleEnd:
		return kmlStyleEnd
	default:
		return kmlStyleVia
	}
}
