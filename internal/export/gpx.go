package export

import (
	"bytes"
	"encoding/xml"
	"fmt"

	"github.com/roamroute/server/internal/routing"
)

// Waypoint symbols by role. Consumers style markers off these
// identifiers, so they are part of the format contract.
const (
	gpxSymStart       = "flag-start"
	gpxSymEnd         = "flag-end"
	gpxSymVia         = "flag-via"
	gpxSymInstruction = "turn"
)

// serializeGPX emits a GPX 1.1 document: metadata block, optional
// per-role waypoint markers, optional track line and optional
// per-instruction markers. encoding/xml escapes all free text, so
// untrusted waypoint names cannot break out of the document.
func (e *Exporter) serializeGPX(route *ExportableRoute, opts Options) ([]byte, error) {
	doc := gpxFile{
		Version: "1.1",
		Creator: "roamroute",
		Xmlns:   "http://www.topografix.com/GPX/1/1",
		Metadata: gpxMetadata{
			Name: route.Name,
			Desc: fmt.Sprintf("%.1fkm, %.0f minutes", route.TotalDistanceM/1000, route.TotalDurationS/60),
			Time: route.CreatedAt.Format("2006-01-02T15:04:05Z"),
			Bounds: gpxBounds{
				MinLat: route.BoundingBox.South,
				MinLon: route.BoundingBox.West,
				MaxLat: route.BoundingBox.North,
				MaxLon: route.BoundingBox.East,
			},
		},
	}

	if opts.IncludeWaypoints {
		for _, w := range route.Waypoints {
			doc.Waypoints = append(doc.Waypoints, gpxWaypoint{
				Lat:  w.Latitude,
				Lon:  w.Longitude,
				Name: w.Name,
				Sym:  gpxSymbol(w.Role),
				Type: string(w.Role),
			})
		}
	}

	if opts.IncludeInstructions {
		doc.Waypoints = append(doc.Waypoints, e.instructionMarkers(route)...)
	}

	if opts.IncludeTrack {
		segment := gpxTrackSegment{}
		for _, tp := range route.TrackPoints {
			point := gpxTrackPoint{Lat: tp.Position.Lat, Lon: tp.Position.Lng}
			if tp.Position.Elevation != nil {
				point.Ele = tp.Position.Elevation
			}
			segment.Points = append(segment.Points, point)
		}
		doc.Track = &gpxTrack{
			Name:     route.Name,
			Segments: []gpxTrackSegment{segment},
		}
	}

	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	encoder := xml.NewEncoder(&buf)
	encoder.Indent("", "  ")
	if err := encoder.Encode(doc); err != nil {
		return nil, fmt.Errorf("failed to encode GPX: %w", err)
	}
	buf.WriteByte('\n')

	return buf.Bytes(), nil
}

// instructionMarkers places each turn instruction at the track point
// nearest its cumulative distance within the route
func (e *Exporter) instructionMarkers(route *ExportableRoute) []gpxWaypoint {
	var markers []gpxWaypoint

	running := 0.0
	pointIdx := 0
	for _, seg := range route.Segments {
		for _, inst := range seg.Instructions {
			for pointIdx < len(route.TrackPoints)-1 && route.TrackPoints[pointIdx].CumulativeKm < running {
				pointIdx++
			}
			tp := route.TrackPoints[pointIdx]
			markers = append(markers, gpxWaypoint{
				Lat:  tp.Position.Lat,
				Lon:  tp.Position.Lng,
				Name: inst.Text,
				Sym:  gpxSymInstruction,
				Type: "instruction",
			})
			running += inst.DistanceM / 1000
		}
	}

	return markers
}

func gpxSymbol(role routing.WaypointRole) string {
	switch role {
	case routing.RoleStart:
		return gpxSymStart
	case routing.RoleEnd:
		return gpxSymEnd
	default:
		return gpxSymVia
	}
}

type gpxFile struct {
	XMLName   xml.Name      `xml:"gpx"`
	Version   string        `xml:"version,attr"`
	Creator   string        `xml:"creator,attr"`
	Xmlns     string        `xml:"xmlns,attr"`
	Metadata  gpxMetadata   `xml:"metadata"`
	Waypoints []gpxWaypoint `xml:"wpt"`
	Track     *gpxTrack     `xml:"trk"`
}

type gpxMetadata struct {
	Name   string    `xml:"name"`
	Desc   string    `xml:"desc,omitempty"`
	Time   string    `xml:"time"`
	Bounds gpxBounds `xml:"bounds"`
}

type gpxBounds struct {
	MinLat float64 `xml:"minlat,attr"`
	MinLon float64 `xml:"minlon,attr"`
	MaxLat float64 `xml:"maxlat,attr"`
	MaxLon float64 `xml:"maxlon,attr"`
}

type gpxWaypoint struct {
	Lat  float64 `xml:"lat,attr"`
	Lon  float64 `xml:"lon,attr"`
	Name string  `xml:"name"`
	Sym  string  `xml:"sym,omitempty"`
	Type string  `xml:"type,omitempty"`
}

type gpxTrack struct {
	Name     string            `xml:"name"`
	Segments []gpxTrackSegment `xml:"trkseg"`
}

type gpxTrackSegment struct {
	Points []gpxTrackPoint `xml:"trkpt"`
}

type gpxTrackPoint struct {
	Lat float64  `xml:"lat,attr"`
	Lon float64  `xml:"lon,attr"`
	Ele *float64 `xml:"ele,omitempty"`
}
