package routing

import "fmt"

// EU legal maxima for unrestricted road use. A route computed for a
// vehicle beyond any of these carries a restriction report.
const (
	MaxLegalHeightM = 4.0
	MaxLegalWidthM  = 2.55
	MaxLegalLengthM = 18.75
	MaxLegalWeightT = 40.0
)

// Request validation ranges. These bound the vehicle profile well below
// physically impossible values; a profile outside them invalidates the
// request itself, before any provider call.
const (
	maxRequestHeightM = 10.0
	maxRequestWidthM  = 5.0
	maxRequestLengthM = 30.0
	maxRequestWeightT = 60.0
)

// Small-vehicle thresholds. Any dimension above these switches profile
// inference from driving-car to driving-hgv.
const (
	heavyHeightM = 2.0
	heavyWidthM  = 2.2
	heavyLengthM = 6.0
	heavyWeightT = 3.5
)

// cannotAccommodateFactor: a dimension this far beyond its legal
// maximum is considered unfixable by rerouting. Two or more such
// dimensions mean no legal route exists at all.
const cannotAccommodateFactor = 1.25

// validateVehicleProfile rejects out-of-range dimensions with a message
// naming the dimension and its valid range. Checked in a fixed order so
// error messages are deterministic.
func validateVehicleProfile(v *VehicleProfile) *Error {
	checks := []struct {
		dim   Dimension
		value float64
		max   float64
		unit  string
	}{
		{DimensionHeight, v.HeightM, maxRequestHeightM, "m"},
		{DimensionWidth, v.WidthM, maxRequestWidthM, "m"},
		{DimensionLength, v.LengthM, maxRequestLengthM, "m"},
		{DimensionWeight, v.WeightT, maxRequestWeightT, "t"},
	}

	for _, c := range checks {
		if c.value <= 0 || c.value > c.max {
			return newValidationError(CodeInvalidVehicle,
				"vehicle %s %.2f%s is out of range (0, %.2f%s]",
				c.dim, c.value, c.unit, c.max, c.unit)
		}
	}
	return nil
}

// inferProfile picks a routing profile from the vehicle dimensions. An
// explicitly requested profile always wins (handled by the planner).
func inferProfile(v *VehicleProfile) Profile {
	if v == nil {
		return ProfileCar
	}
	if v.HeightM > heavyHeightM || v.WidthM > heavyWidthM ||
		v.LengthM > heavyLengthM || v.WeightT > heavyWeightT {
		return ProfileHeavy
	}
	return ProfileCar
}

// detectRestrictions compares the vehicle profile against EU legal
// maxima, independent of which provider produced the route. Returns nil
// when nothing is violated.
func detectRestrictions(v *VehicleProfile) *Restrictions {
	if v == nil {
		return nil
	}

	type violation struct {
		dim    Dimension
		ratio  float64
		action string
	}
	var violations []violation

	if v.HeightM > MaxLegalHeightM {
		violations = append(violations, violation{
			DimensionHeight, v.HeightM / MaxLegalHeightM,
			fmt.Sprintf("vehicle height %.2fm exceeds the %.2fm EU limit; consider a route that avoids low bridges and tunnels", v.HeightM, MaxLegalHeightM),
		})
	}
	if v.WidthM > MaxLegalWidthM {
		violations = append(violations, violation{
			DimensionWidth, v.WidthM / MaxLegalWidthM,
			fmt.Sprintf("vehicle width %.2fm exceeds the %.2fm EU limit; avoid narrow mountain and village roads", v.WidthM, MaxLegalWidthM),
		})
	}
	if v.WeightT > MaxLegalWeightT {
		violations = append(violations, violation{
			DimensionWeight, v.WeightT / MaxLegalWeightT,
			fmt.Sprintf("vehicle weight %.1ft exceeds the %.0ft EU limit; check bridge weight limits along the route", v.WeightT, MaxLegalWeightT),
		})
	}
	if v.LengthM > MaxLegalLengthM {
		violations = append(violations, violation{
			DimensionLength, v.LengthM / MaxLegalLengthM,
			fmt.Sprintf("vehicle length %.2fm exceeds the %.2fm EU limit; avoid routes with tight switchbacks", v.LengthM, MaxLegalLengthM),
		})
	}

	if len(violations) == 0 {
		return nil
	}

	r := &Restrictions{}
	farBeyond := 0
	for _, viol := range violations {
		r.ViolatedDimensions = append(r.ViolatedDimensions, viol.dim)
		r.SuggestedActions = append(r.SuggestedActions, viol.action)
		if viol.ratio > cannotAccommodateFactor {
			farBeyond++
		}
	}

	// A single oversized dimension can often be routed around; two or
	// more dimensions far beyond legal limits cannot.
	if farBeyond >= 2 {
		r.CannotAccommodate = true
	}

	return r
}
