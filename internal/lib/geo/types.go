package geo

// Point represents a geographic coordinate
type Point struct {
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lng"`
}

// Polyline represents an ordered sequence of points forming a route line
type Polyline struct {
	Points []Point `json:"points"`
}

// SegmentProjection is the result of projecting a point onto a segment
type SegmentProjection struct {
	DistanceKm   float64 `json:"distance_km"`
	NearestPoint Point   `json:"nearest_point"`
}

// PolylineProjection is the result of projecting a point onto a polyline
type PolylineProjection struct {
	DistanceKm   float64 `json:"distance_km"`
	NearestPoint Point   `json:"nearest_point"`
	SegmentIndex int     `json:"segment_index"`
}

// BoundingBox is an axis-aligned lat/lng box
type BoundingBox struct {
	North float64 `json:"north"`
	South float64 `json:"south"`
	East  float64 `json:"east"`
	West  float64 `json:"west"`
}

// Geo defines the geographic calculation utilities shared by route
// computation, campsite filtering and export. All operations are pure
// and side-effect free.
type Geo interface {
	// Great-circle distance between two points in kilometres
	Distance(a, b Point) (float64, error)

	// Minimum distance from a point to a single segment, with the
	// nearest point on that segment
	DistanceToSegment(p, segStart, segEnd Point) (SegmentProjection, error)

	// Minimum distance from a point to a polyline across all segments
	DistanceToPolyline(p Point, line Polyline) (PolylineProjection, error)

	// Axis-aligned bounding box of a polyline expanded by a buffer in km
	BoundingBox(line Polyline, bufferKm float64) (BoundingBox, error)
}

// NewGeo is implemented in geo.go
