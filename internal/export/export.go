package export

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/roamroute/server/internal/lib/geo"
	"github.com/roamroute/server/internal/routing"
)

// Format selects the output serializer
type Format string

const (
	FormatGPX  Format = "gpx"
	FormatKML  Format = "kml"
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
)

// formatVersion stamps JSON exports for forward compatibility
const formatVersion = "1.0"

// Options tunes what an export artifact contains
type Options struct {
	IncludeWaypoints    bool `json:"include_waypoints"`
	IncludeTrack        bool `json:"include_track"`
	IncludeInstructions bool `json:"include_instructions"`
}

// DefaultOptions includes everything except instruction markers
func DefaultOptions() Options {
	return Options{IncludeWaypoints: true, IncludeTrack: true}
}

// Result is a finished export artifact
type Result struct {
	Content  []byte `json:"content"`
	Filename string `json:"filename"`
	MIMEType string `json:"mime_type"`
	ByteSize int    `json:"byte_size"`
}

// Exporter converts canonical routes into downloadable artifacts
type Exporter struct {
	geo geo.Geo
}

// NewExporter creates an Exporter over the given geometry utilities
func NewExporter(g geo.Geo) *Exporter {
	return &Exporter{geo: g}
}

// Export serializes the route into the requested format. Failures are
// independent per format: a GPX failure says nothing about KML.
func (e *Exporter) Export(route *routing.CanonicalRoute, waypoints []routing.Waypoint, format Format, name string, opts Options) (*Result, error) {
	if name == "" {
		name = "route"
	}

	exportable, err := e.buildExportable(route, waypoints, name)
	if err != nil {
		return nil, fmt.Errorf("%s export failed: %w", format, err)
	}

	var content []byte
	var mimeType string

	switch format {
	case FormatGPX:
		content, err = e.serializeGPX(exportable, opts)
		mimeType = "application/gpx+xml"
	case FormatKML:
		content, err = e.serializeKML(exportable, opts)
		mimeType = "application/vnd.google-earth.kml+xml"
	case FormatJSON:
		content, err = e.serializeJSON(exportable, opts)
		mimeType = "application/json"
	case FormatCSV:
		content, err = e.serializeCSV(exportable, opts)
		mimeType = "text/csv"
	default:
		return nil, fmt.Errorf("unsupported export format %q", format)
	}
	if err != nil {
		return nil, fmt.Errorf("%s export failed: %w", format, err)
	}

	return &Result{
		Content:  content,
		Filename: Filename(name, format, exportable.CreatedAt),
		MIMEType: mimeType,
		ByteSize: len(content),
	}, nil
}

// filenameStripRe removes everything that is not a letter, digit,
// space or hyphen. Route names are user input; anything else is a
// path-traversal or shell-quoting hazard in a download filename.
var filenameStripRe = regexp.MustCompile(`[^A-Za-z0-9 -]+`)

var whitespaceRe = regexp.MustCompile(`\s+`)

// Filename derives a stable download filename from the route name: the
// same name on the same day always produces the same filename.
// Collisions across different routes with the same name on the same
// day are accepted.
func Filename(name string, format Format, at time.Time) string {
	cleaned := filenameStripRe.ReplaceAllString(name, "")
	cleaned = strings.TrimSpace(cleaned)
	cleaned = whitespaceRe.ReplaceAllString(cleaned, "_")
	cleaned = strings.ToLower(cleaned)
	if cleaned == "" {
		cleaned = "route"
	}

	return fmt.Sprintf("%s_%s.%s", cleaned, at.Format("2006-01-02"), format)
}
