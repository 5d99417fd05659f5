package routing

import (
	"context"
	"time"
)

// WaypointRole identifies a waypoint's position in the trip
type WaypointRole string

const (
	RoleStart        WaypointRole = "start"
	RoleIntermediate WaypointRole = "intermediate"
	RoleEnd          WaypointRole = "end"
)

// Waypoint is an ordered, user-assigned stop. Waypoints are treated as
// immutable once a route computation begins.
type Waypoint struct {
	ID        string       `json:"id"`
	Name      string       `json:"name"`
	Latitude  float64      `json:"lat"`
	Longitude float64      `json:"lng"`
	Role      WaypointRole `json:"role"`
}

// VehicleProfile describes the physical constraints of a large vehicle.
// Dimensions in metres, weight in tonnes.
type VehicleProfile struct {
	HeightM float64 `json:"height_m"`
	WidthM  float64 `json:"width_m"`
	LengthM float64 `json:"length_m"`
	WeightT float64 `json:"weight_t"`
}

// Profile selects the routing profile requested from a provider
type Profile string

const (
	ProfileCar   Profile = "driving-car"
	ProfileHeavy Profile = "driving-hgv"
)

// Position is a single point of route geometry. Elevation is optional;
// nil when the provider did not return it.
type Position struct {
	Lng       float64  `json:"lng"`
	Lat       float64  `json:"lat"`
	Elevation *float64 `json:"elevation,omitempty"`
}

// Instruction is a single turn instruction within a segment
type Instruction struct {
	Text      string  `json:"text"`
	DistanceM float64 `json:"distance_m"`
	DurationS float64 `json:"duration_s"`
}

// Segment is a leg of a route alternative between two waypoints
type Segment struct {
	DistanceM    float64       `json:"distance_m"`
	DurationS    float64       `json:"duration_s"`
	Instructions []Instruction `json:"instructions,omitempty"`
}

// RouteAlternative is one drivable route between the requested waypoints
type RouteAlternative struct {
	Geometry  []Position `json:"geometry"`
	DistanceM float64    `json:"distance_m"`
	DurationS float64    `json:"duration_s"`
	Segments  []Segment  `json:"segments"`
}

// Dimension names a vehicle dimension in restriction reports
type Dimension string

const (
	DimensionHeight Dimension = "height"
	DimensionWidth  Dimension = "width"
	DimensionWeight Dimension = "weight"
	DimensionLength Dimension = "length"
)

// Restrictions reports vehicle dimensions that exceed legal road-use
// limits on a computed route. CannotAccommodate means no legal route
// exists for the vehicle regardless of geometry.
type Restrictions struct {
	ViolatedDimensions []Dimension `json:"violated_dimensions"`
	SuggestedActions   []string    `json:"suggested_actions"`
	CannotAccommodate  bool        `json:"cannot_accommodate"`
}

// Query captures the original computation request for metadata
type Query struct {
	Waypoints []Waypoint      `json:"waypoints"`
	Vehicle   *VehicleProfile `json:"vehicle,omitempty"`
	Options   Options         `json:"options"`
}

// Metadata records which provider and profile produced a route
type Metadata struct {
	Provider   string    `json:"provider"`
	Profile    Profile   `json:"profile"`
	ComputedAt time.Time `json:"computed_at"`
	Query      Query     `json:"query"`
}

// Status of the overall computation result
type Status string

const (
	StatusOK    Status = "ok"
	StatusError Status = "error"
)

// CanonicalRoute is the provider-independent result of route
// computation. Routes[0] is always present on success; no route at all
// is a terminal failure, never a partial result.
type CanonicalRoute struct {
	Status       Status             `json:"status"`
	Routes       []RouteAlternative `json:"routes"`
	Restrictions *Restrictions      `json:"restrictions,omitempty"`
	Warnings     []string           `json:"warnings,omitempty"`
	Metadata     Metadata           `json:"metadata"`
}

// Options tunes a route computation request
type Options struct {
	// Profile forces a routing profile; empty means infer from the
	// vehicle profile
	Profile Profile `json:"profile,omitempty"`

	// Alternatives requests up to N additional route alternatives
	Alternatives int `json:"alternatives,omitempty"`

	// Instructions requests per-segment turn instructions
	Instructions bool `json:"instructions,omitempty"`
}

// Provider is a routing backend. Two implementations exist: the primary
// (vehicle-dimension aware, alternatives) and the fallback (generic
// driving only). Response shape differences are absorbed behind this
// interface; nothing outside this package knows there are two.
type Provider interface {
	// Name tags errors and metadata with the originating provider
	Name() string

	// SupportsVehicleProfiles reports whether vehicle dimensions are
	// honored by this backend
	SupportsVehicleProfiles() bool

	// ComputeRoutes returns one or more route alternatives for the
	// ordered waypoints
	ComputeRoutes(ctx context.Context, waypoints []Waypoint, profile Profile, vehicle *VehicleProfile, opts Options) ([]RouteAlternative, error)
}
