package poi

import (
	"sort"
	"strings"
	"time"

	"github.com/roamroute/server/internal/lib/geo"
)

// Scoring constants. Proximity decays linearly from 100 at 0km to 0 at
// the cutoff; the amenity bonus is capped so amenity-stuffed listings
// cannot dominate ranking.
const (
	proximityScoreCutoffKm = 10.0
	proximityScoreMax      = 100.0
	compatibilityBonus     = 10.0
	amenityBonusPerItem    = 2.0
	amenityBonusCap        = 20.0

	searchScoreExact     = 100.0
	searchScorePrefix    = 75.0
	searchScoreSubstring = 50.0
	searchScoreCategory  = 15.0
)

// Engine applies the staged filter pipeline over a campsite catalog
type Engine struct {
	geo geo.Geo

	// now is swappable for open-now tests
	now func() time.Time
}

// NewEngine creates a filter engine over the given geometry utilities
func NewEngine(g geo.Geo) *Engine {
	return &Engine{geo: g, now: time.Now}
}

// Filter runs the pipeline over the catalog and returns ranked views.
// Stages run in a fixed order; given identical inputs the output
// ordering is fully deterministic.
func (e *Engine) Filter(catalog []Campsite, state FilterState, route *geo.Polyline, currentLocation *geo.Point) ([]RankedSite, error) {
	// Stage 1: type filter. Empty visible-type set means show nothing.
	visible := make(map[SiteType]bool, len(state.VisibleTypes))
	for _, t := range state.VisibleTypes {
		visible[t] = true
	}

	results := make([]RankedSite, 0, len(catalog))
	for _, site := range catalog {
		if !visible[site.Type] {
			continue
		}
		results = append(results, RankedSite{Campsite: site})
	}

	// Stage 2: required amenities, AND semantics
	if len(state.RequiredAmenities) > 0 {
		results = keep(results, func(s RankedSite) bool {
			if len(s.Amenities) == 0 {
				return false
			}
			for _, required := range state.RequiredAmenities {
				if !s.Amenities[required] {
					return false
				}
			}
			return true
		})
	}

	// Stage 3: vehicle compatibility
	if state.VehicleOnly {
		results = keep(results, func(s RankedSite) bool {
			return s.VehicleCompatible
		})
	}

	// Stage 4: route proximity, annotating surviving entries
	if state.NearRoute && route != nil && len(route.Points) > 0 {
		filtered := results[:0:0]
		for _, s := range results {
			proj, err := e.geo.DistanceToPolyline(geo.Point{Latitude: s.Latitude, Longitude: s.Longitude}, *route)
			if err != nil {
				return nil, err
			}
			if proj.DistanceKm > state.MaxRouteDistanceKm {
				continue
			}
			d := proj.DistanceKm
			s.RouteDistanceKm = &d
			filtered = append(filtered, s)
		}
		results = filtered
	}

	// Stage 5: heuristic boolean filters
	if state.OpenNow {
		now := e.now()
		results = keep(results, func(s RankedSite) bool {
			return isOpenAt(s.OpeningHours, now)
		})
	}
	if state.FreeOnly {
		results = keep(results, func(s RankedSite) bool {
			return looksFree(s.Campsite)
		})
	}
	if state.AcceptsReservations {
		results = keep(results, func(s RankedSite) bool {
			return acceptsReservations(s.Campsite)
		})
	}

	// Stage 6: free-text search with match-quality scoring
	for _, query := range []string{state.SearchQuery, state.LocationQuery} {
		q := strings.ToLower(strings.TrimSpace(query))
		if q == "" {
			continue
		}
		filtered := results[:0:0]
		for _, s := range results {
			score, ok := searchScore(s.Campsite, q)
			if !ok {
				continue
			}
			s.SearchScore += score
			filtered = append(filtered, s)
		}
		results = filtered
	}

	// Stage 7: relevance scoring
	for i := range results {
		results[i].Relevance = relevance(results[i])
	}

	// Stage 8: sort with a deterministic name/ID tiebreak
	e.sortResults(results, state, currentLocation)

	// Stage 9: cap. Zero is a valid, empty result.
	if state.MaxResults < len(results) {
		results = results[:state.MaxResults]
	}

	return results, nil
}

// keep filters in place, preserving order
func keep(sites []RankedSite, pred func(RankedSite) bool) []RankedSite {
	out := sites[:0:0]
	for _, s := range sites {
		if pred(s) {
			out = append(out, s)
		}
	}
	return out
}

// searchScore matches q against name, category label, amenity keys and
// address. Exact beats prefix beats substring; a category match adds a
// flat bonus.
func searchScore(site Campsite, q string) (float64, bool) {
	name := strings.ToLower(site.Name)
	category := strings.ToLower(string(site.Type))
	address := strings.ToLower(site.Address)

	score := 0.0
	switch {
	case name == q:
		score = searchScoreExact
	case strings.HasPrefix(name, q):
		score = searchScorePrefix
	case strings.Contains(name, q) || strings.Contains(address, q):
		score = searchScoreSubstring
	default:
		for amenity := range site.Amenities {
			if strings.Contains(strings.ToLower(amenity), q) {
				score = searchScoreSubstring
				break
			}
		}
	}

	if strings.Contains(category, q) {
		if score == 0 {
			score = searchScoreSubstring
		}
		score += searchScoreCategory
	}

	return score, score > 0
}

// relevance combines proximity decay, search match quality, a flat
// compatibility bonus and a capped amenity-richness bonus
func relevance(s RankedSite) float64 {
	score := s.SearchScore

	if s.RouteDistanceKm != nil {
		proximity := proximityScoreMax * (1 - *s.RouteDistanceKm/proximityScoreCutoffKm)
		if proximity > 0 {
			score += proximity
		}
	}

	if s.VehicleCompatible {
		score += compatibilityBonus
	}

	amenityCount := 0
	for _, has := range s.Amenities {
		if has {
			amenityCount++
		}
	}
	amenityBonus := float64(amenityCount) * amenityBonusPerItem
	if amenityBonus > amenityBonusCap {
		amenityBonus = amenityBonusCap
	}
	score += amenityBonus

	return score
}

// sortResults orders by the requested key. Ties break on name then ID
// so output is stable across runs regardless of catalog order.
func (e *Engine) sortResults(results []RankedSite, state FilterState, currentLocation *geo.Point) {
	less := func(a, b RankedSite) bool {
		switch state.SortBy {
		case SortByName:
			if a.Name != b.Name {
				return a.Name < b.Name
			}
		case SortByDistance:
			da, db := e.proximity(a, currentLocation), e.proximity(b, currentLocation)
			if da != db {
				return da < db
			}
		default: // relevance; rating aliases relevance
			if a.Relevance != b.Relevance {
				return a.Relevance > b.Relevance
			}
		}
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		return a.ID < b.ID
	}

	sort.SliceStable(results, func(i, j int) bool {
		return less(results[i], results[j])
	})
}

// proximity resolves a distance for the distance sort: the annotated
// route distance when present, otherwise distance to the caller's
// current location, otherwise a sentinel that sorts last
func (e *Engine) proximity(s RankedSite, currentLocation *geo.Point) float64 {
	if s.RouteDistanceKm != nil {
		return *s.RouteDistanceKm
	}
	if currentLocation != nil {
		d, err := e.geo.Distance(*currentLocation, geo.Point{Latitude: s.Latitude, Longitude: s.Longitude})
		if err == nil {
			return d
		}
	}
	return 1 << 20
}
