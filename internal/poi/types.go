// Package poi filters and ranks campsites and other points of interest
// against a planned route. The engine is a pure function of its inputs:
// it never mutates the catalog, only produces ranked views over it.
package poi

// SiteType is the fixed category enumeration for catalog entries
type SiteType string

const (
	TypeCampsite SiteType = "campsite"
	TypeAire     SiteType = "aire"
	TypeParking  SiteType = "parking"
	TypeWild     SiteType = "wild"
)

// Access describes which vehicle classes an entry can take
type Access struct {
	Motorhome bool `json:"motorhome"`
	Caravan   bool `json:"caravan"`
	Tent      bool `json:"tent"`
}

// Campsite is a catalog entry. Sourced from an external catalog and
// never mutated by this package.
type Campsite struct {
	ID                string          `json:"id"`
	Name              string          `json:"name"`
	Latitude          float64         `json:"lat"`
	Longitude         float64         `json:"lng"`
	Type              SiteType        `json:"type"`
	Amenities         map[string]bool `json:"amenities,omitempty"`
	Access            Access          `json:"access"`
	VehicleCompatible bool            `json:"vehicle_compatible"`
	Address           string          `json:"address,omitempty"`
	OpeningHours      string          `json:"opening_hours,omitempty"`
	Phone             string          `json:"phone,omitempty"`
	Website           string          `json:"website,omitempty"`
}

// SortKey selects the final ordering of ranked results
type SortKey string

const (
	SortByDistance  SortKey = "distance"
	SortByName      SortKey = "name"
	SortByRelevance SortKey = "relevance"

	// SortByRating aliases relevance until a rating system exists
	SortByRating SortKey = "rating"
)

// FilterState is the configuration the filter pipeline consumes. Pure
// configuration; persistence is the caller's concern.
type FilterState struct {
	// VisibleTypes is the set of types to keep. An empty set yields an
	// empty result: "show nothing" is an expressible state, distinct
	// from "show everything".
	VisibleTypes []SiteType `json:"visible_types"`

	// RequiredAmenities with AND semantics; entries lacking amenity
	// data satisfy none of them
	RequiredAmenities []string `json:"required_amenities,omitempty"`

	// VehicleOnly keeps only vehicle-compatible entries
	VehicleOnly bool `json:"vehicle_only,omitempty"`

	// NearRoute drops entries further than MaxRouteDistanceKm from the
	// route polyline; requires route geometry
	NearRoute          bool    `json:"near_route,omitempty"`
	MaxRouteDistanceKm float64 `json:"max_route_distance_km,omitempty"`

	// Free-text queries, case-insensitive substring semantics
	SearchQuery   string `json:"search_query,omitempty"`
	LocationQuery string `json:"location_query,omitempty"`

	// Heuristic boolean toggles
	OpenNow             bool `json:"open_now,omitempty"`
	FreeOnly            bool `json:"free_only,omitempty"`
	AcceptsReservations bool `json:"accepts_reservations,omitempty"`

	SortBy SortKey `json:"sort_by,omitempty"`

	// MaxResults caps the result list. Zero is a valid, empty result.
	MaxResults int `json:"max_results"`
}

// RankedSite is a view over a catalog entry annotated by the pipeline
type RankedSite struct {
	Campsite

	// RouteDistanceKm is set when the route-proximity stage ran
	RouteDistanceKm *float64 `json:"route_distance_km,omitempty"`

	// SearchScore is set when a free-text query matched
	SearchScore float64 `json:"search_score,omitempty"`

	// Relevance is the composite ranking scalar
	Relevance float64 `json:"relevance"`
}
