package routing

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

const (
	minWaypoints = 2
	maxWaypoints = 50

	// An alternative this much longer than the primary route is rarely
	// worth presenting without comment.
	longAlternativeFactor = 1.75
)

// Planner validates routing requests, orchestrates the primary and
// fallback providers and post-processes the result into a
// CanonicalRoute. At most one provider call is outstanding at a time;
// the fallback is a last resort, never a race.
type Planner struct {
	primary  Provider
	fallback Provider
	logger   *zap.Logger
}

// NewPlanner creates a Planner over the two providers
func NewPlanner(primary, fallback Provider, logger *zap.Logger) *Planner {
	return &Planner{
		primary:  primary,
		fallback: fallback,
		logger:   logger,
	}
}

// ComputeRoute turns an ordered waypoint list plus an optional vehicle
// profile into a CanonicalRoute. Validation failures and exhausted
// providers are returned as a *Error; legal infeasibility is reported
// in the result's Restrictions instead, because the caller needs the
// geometry to explain why.
func (p *Planner) ComputeRoute(ctx context.Context, waypoints []Waypoint, vehicle *VehicleProfile, opts Options) (*CanonicalRoute, error) {
	if err := validateRequest(waypoints, vehicle); err != nil {
		return nil, err
	}

	profile := opts.Profile
	if profile == "" {
		profile = inferProfile(vehicle)
	}

	query := Query{Waypoints: waypoints, Vehicle: vehicle, Options: opts}

	routes, providerName, warnings, err := p.callProviders(ctx, waypoints, profile, vehicle, opts)
	if err != nil {
		return nil, err
	}

	result := &CanonicalRoute{
		Status:   StatusOK,
		Routes:   routes,
		Warnings: warnings,
		Metadata: Metadata{
			Provider:   providerName,
			Profile:    profile,
			ComputedAt: time.Now().UTC(),
			Query:      query,
		},
	}

	if restrictions := detectRestrictions(vehicle); restrictions != nil {
		result.Restrictions = restrictions
		if restrictions.CannotAccommodate {
			// A route that cannot legally be driven is not a success,
			// even though the geometry is returned for display.
			result.Status = StatusError
		}
	}

	result.Warnings = append(result.Warnings, alternativeWarnings(routes)...)

	p.logger.Info("route computed",
		zap.String("provider", providerName),
		zap.String("profile", string(profile)),
		zap.Int("alternatives", len(routes)),
		zap.Int("warnings", len(result.Warnings)),
	)

	return result, nil
}

// callProviders runs the PRIMARY -> FALLBACK state machine. An empty
// route set counts as a failure: absence of any route is terminal, not
// a partial result.
func (p *Planner) callProviders(ctx context.Context, waypoints []Waypoint, profile Profile, vehicle *VehicleProfile, opts Options) ([]RouteAlternative, string, []string, error) {
	routes, err := p.primary.ComputeRoutes(ctx, waypoints, profile, vehicle, opts)
	if err == nil && len(routes) > 0 {
		return routes, p.primary.Name(), nil, nil
	}

	if err != nil {
		p.logger.Warn("primary routing provider failed, trying fallback",
			zap.String("provider", p.primary.Name()),
			zap.Error(err),
		)
	} else {
		p.logger.Warn("primary routing provider returned no routes, trying fallback",
			zap.String("provider", p.primary.Name()),
		)
	}

	routes, err = p.fallback.ComputeRoutes(ctx, waypoints, profile, vehicle, opts)
	if err != nil || len(routes) == 0 {
		if err != nil {
			p.logger.Error("fallback routing provider failed",
				zap.String("provider", p.fallback.Name()),
				zap.Error(err),
			)
		}
		return nil, "", nil, &Error{
			Code:        CodeAllProvidersDown,
			Message:     "all routing services unavailable",
			Provider:    p.fallback.Name(),
			Recoverable: false,
		}
	}

	warnings := []string{"primary routing service unavailable, using fallback route"}
	if vehicle != nil && !p.fallback.SupportsVehicleProfiles() {
		warnings = append(warnings, "fallback service does not support vehicle restrictions, verify the route manually")
	}

	return routes, p.fallback.Name(), warnings, nil
}

// validateRequest checks waypoint count, coordinates and vehicle
// dimensions, in that order, before any network call.
func validateRequest(waypoints []Waypoint, vehicle *VehicleProfile) *Error {
	if len(waypoints) < minWaypoints || len(waypoints) > maxWaypoints {
		return newValidationError(CodeInvalidWaypoints,
			"waypoint count must be between %d and %d, got %d",
			minWaypoints, maxWaypoints, len(waypoints))
	}

	for i, w := range waypoints {
		if w.Latitude < -90 || w.Latitude > 90 || w.Longitude < -180 || w.Longitude > 180 {
			return newValidationError(CodeInvalidCoordinates,
				"invalid coordinates for waypoint %d (%q): latitude must be [-90, 90], longitude must be [-180, 180]",
				i, w.Name)
		}
	}

	if vehicle != nil {
		if err := validateVehicleProfile(vehicle); err != nil {
			return err
		}
	}

	return nil
}

// alternativeWarnings flags alternatives significantly longer than the
// primary route
func alternativeWarnings(routes []RouteAlternative) []string {
	if len(routes) < 2 {
		return nil
	}

	var warnings []string
	primary := routes[0].DistanceM
	if primary <= 0 {
		return nil
	}

	for i, alt := range routes[1:] {
		if alt.DistanceM > primary*longAlternativeFactor {
			extraKm := (alt.DistanceM - primary) / 1000
			warnings = append(warnings, fmt.Sprintf(
				"alternative route %d is %.0fkm longer than the primary route", i+1, extraKm))
		}
	}
	return warnings
}
