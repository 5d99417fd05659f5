package geo

import (
	"errors"
	"math"
)

// EarthRadiusKm is the mean spherical Earth radius used for all
// great-circle math. Error stays well under 0.5% for the distances this
// site deals with (a few hundred km at most).
const EarthRadiusKm = 6371.0

// kmPerDegreeLat converts kilometres to degrees of latitude. The same
// factor is reused for longitude in BoundingBox, which overstates the
// buffer at high latitudes; documented approximation, not corrected.
const kmPerDegreeLat = 111.32

// geoUtils implements the Geo interface
type geoUtils struct{}

// NewGeo creates a new Geo implementation
func NewGeo() Geo {
	return &geoUtils{}
}

// Distance calculates great-circle distance between two points in
// kilometres using the haversine formula
func (g *geoUtils) Distance(a, b Point) (float64, error) {
	if !isValidCoordinate(a) || !isValidCoordinate(b) {
		return 0, errors.New("invalid coordinates: latitude must be [-90, 90], longitude must be [-180, 180]")
	}

	if a.Latitude == b.Latitude && a.Longitude == b.Longitude {
		return 0, nil
	}

	lat1 := a.Latitude * math.Pi / 180
	lon1 := a.Longitude * math.Pi / 180
	lat2 := b.Latitude * math.Pi / 180
	lon2 := b.Longitude * math.Pi / 180

	dlat := lat2 - lat1
	dlon := lon2 - lon1

	h := math.Sin(dlat/2)*math.Sin(dlat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dlon/2)*math.Sin(dlon/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return EarthRadiusKm * c, nil
}

// DistanceToSegment projects p onto the segment [segStart, segEnd] with
// the projection parameter clamped to [0, 1]. A zero-length segment
// degenerates to point-to-point distance.
func (g *geoUtils) DistanceToSegment(p, segStart, segEnd Point) (SegmentProjection, error) {
	if !isValidCoordinate(p) || !isValidCoordinate(segStart) || !isValidCoordinate(segEnd) {
		return SegmentProjection{}, errors.New("invalid coordinates: latitude must be [-90, 90], longitude must be [-180, 180]")
	}

	nearest := g.projectOntoSegment(p, segStart, segEnd)
	dist, err := g.Distance(p, nearest)
	if err != nil {
		return SegmentProjection{}, err
	}

	return SegmentProjection{DistanceKm: dist, NearestPoint: nearest}, nil
}

// DistanceToPolyline calculates minimum distance from p to the polyline
// as the minimum over all consecutive segment pairs. O(n) in polyline
// length; fine for catalogs of hundreds to low thousands of points.
// Very large catalogs would want a spatial index in front of this.
func (g *geoUtils) DistanceToPolyline(p Point, line Polyline) (PolylineProjection, error) {
	if !isValidCoordinate(p) {
		return PolylineProjection{}, errors.New("invalid point coordinates")
	}

	if len(line.Points) == 0 {
		return PolylineProjection{}, errors.New("polyline has no points")
	}

	if len(line.Points) == 1 {
		dist, err := g.Distance(p, line.Points[0])
		if err != nil {
			return PolylineProjection{}, err
		}
		return PolylineProjection{DistanceKm: dist, NearestPoint: line.Points[0], SegmentIndex: 0}, nil
	}

	best := PolylineProjection{DistanceKm: math.Inf(1)}
	for i := 0; i < len(line.Points)-1; i++ {
		proj, err := g.DistanceToSegment(p, line.Points[i], line.Points[i+1])
		if err != nil {
			return PolylineProjection{}, err
		}
		if proj.DistanceKm < best.DistanceKm {
			best = PolylineProjection{
				DistanceKm:   proj.DistanceKm,
				NearestPoint: proj.NearestPoint,
				SegmentIndex: i,
			}
		}
	}

	return best, nil
}

// BoundingBox computes the min/max box of a polyline expanded by
// bufferKm on each side. The km-to-degrees conversion uses a fixed
// 111.32 km/degree for both axes; the longitude buffer is therefore
// undersized away from the equator, which is acceptable at this scale.
func (g *geoUtils) BoundingBox(line Polyline, bufferKm float64) (BoundingBox, error) {
	if len(line.Points) == 0 {
		return BoundingBox{}, errors.New("polyline has no points")
	}
	if bufferKm < 0 {
		return BoundingBox{}, errors.New("buffer must not be negative")
	}

	box := BoundingBox{
		North: line.Points[0].Latitude,
		South: line.Points[0].Latitude,
		East:  line.Points[0].Longitude,
		West:  line.Points[0].Longitude,
	}

	for _, p := range line.Points[1:] {
		box.North = math.Max(box.North, p.Latitude)
		box.South = math.Min(box.South, p.Latitude)
		box.East = math.Max(box.East, p.Longitude)
		box.West = math.Min(box.West, p.Longitude)
	}

	bufferDeg := bufferKm / kmPerDegreeLat
	box.North = math.Min(box.North+bufferDeg, 90)
	box.South = math.Max(box.South-bufferDeg, -90)
	box.East = math.Min(box.East+bufferDeg, 180)
	box.West = math.Max(box.West-bufferDeg, -180)

	return box, nil
}

// projectOntoSegment finds the nearest point on [a, b] to p using a
// clamped parametric projection in a local equirectangular plane. Good
// enough for road-segment scale; not valid across the antimeridian.
func (g *geoUtils) projectOntoSegment(p, a, b Point) Point {
	if a.Latitude == b.Latitude && a.Longitude == b.Longitude {
		return a
	}

	// Scale longitude by cos(mean latitude) so both axes are in
	// comparable units before projecting.
	meanLat := (a.Latitude + b.Latitude) / 2 * math.Pi / 180
	lngScale := math.Cos(meanLat)

	ax := a.Longitude * lngScale
	ay := a.Latitude
	bx := b.Longitude * lngScale
	by := b.Latitude
	px := p.Longitude * lngScale
	py := p.Latitude

	dx := bx - ax
	dy := by - ay

	t := ((px-ax)*dx + (py-ay)*dy) / (dx*dx + dy*dy)
	t = math.Max(0, math.Min(1, t))

	return Point{
		Latitude:  a.Latitude + t*(b.Latitude-a.Latitude),
		Longitude: a.Longitude + t*(b.Longitude-a.Longitude),
	}
}

// isValidCoordinate validates latitude and longitude values
func isValidCoordinate(p Point) bool {
	return p.Latitude >= -90 && p.Latitude <= 90 &&
		p.Longitude >= -180 && p.Longitude <= 180
}
