package routing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectRestrictions_NominalVehicle(t *testing.T) {
	// At or below every EU legal maximum: no restrictions
	v := &VehicleProfile{HeightM: 4.0, WidthM: 2.55, LengthM: 18.75, WeightT: 40.0}
	assert.Nil(t, detectRestrictions(v))

	assert.Nil(t, detectRestrictions(nil))
}

func TestDetectRestrictions_SingleDimension(t *testing.T) {
	// Only the height is oversized; exactly that dimension is reported
	v := &VehicleProfile{HeightM: 4.5, WidthM: 2.3, LengthM: 8.0, WeightT: 3.5}
	r := detectRestrictions(v)
	require.NotNil(t, r)

	assert.Equal(t, []Dimension{DimensionHeight}, r.ViolatedDimensions)
	require.Len(t, r.SuggestedActions, 1)
	assert.Contains(t, r.SuggestedActions[0], "low bridges")
	assert.False(t, r.CannotAccommodate, "a single oversized dimension can be routed around")
}

func TestDetectRestrictions_CannotAccommodate(t *testing.T) {
	// Height and width both far beyond legal limits: no legal route exists
	v := &VehicleProfile{HeightM: 5.5, WidthM: 3.6, LengthM: 10.0, WeightT: 10.0}
	r := detectRestrictions(v)
	require.NotNil(t, r)

	assert.ElementsMatch(t, []Dimension{DimensionHeight, DimensionWidth}, r.ViolatedDimensions)
	assert.True(t, r.CannotAccommodate)
}

func TestDetectRestrictions_TwoModerateViolations(t *testing.T) {
	// Two violations, but neither far beyond the limit: still drivable
	// with care, not flagged as cannot-accommodate
	v := &VehicleProfile{HeightM: 4.2, WidthM: 2.7, LengthM: 10.0, WeightT: 10.0}
	r := detectRestrictions(v)
	require.NotNil(t, r)
	assert.Len(t, r.ViolatedDimensions, 2)
	assert.False(t, r.CannotAccommodate)
}

func TestInferProfile(t *testing.T) {
	tests := []struct {
		name    string
		vehicle *VehicleProfile
		want    Profile
	}{
		{"nil vehicle", nil, ProfileCar},
		{"small car", &VehicleProfile{HeightM: 1.5, WidthM: 1.8, LengthM: 4.2, WeightT: 1.4}, ProfileCar},
		{"tall camper van", &VehicleProfile{HeightM: 2.8, WidthM: 2.1, LengthM: 5.9, WeightT: 3.3}, ProfileHeavy},
		{"heavy but compact", &VehicleProfile{HeightM: 1.9, WidthM: 2.0, LengthM: 5.5, WeightT: 4.2}, ProfileHeavy},
		{"long trailer combination", &VehicleProfile{HeightM: 2.0, WidthM: 2.0, LengthM: 9.5, WeightT: 3.0}, ProfileHeavy},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, inferProfile(tt.vehicle))
		})
	}
}

func TestValidateVehicleProfile_NamesDimension(t *testing.T) {
	v := &VehicleProfile{HeightM: 3.0, WidthM: 2.2, LengthM: 7.0, WeightT: 75}
	err := validateVehicleProfile(v)
	require.NotNil(t, err)
	assert.Equal(t, CodeInvalidVehicle, err.Code)
	assert.Contains(t, err.Message, "weight")
	assert.Contains(t, err.Message, "60.00t")

	// Zero and negative dimensions are invalid too
	err = validateVehicleProfile(&VehicleProfile{HeightM: 0, WidthM: 2, LengthM: 6, WeightT: 3})
	require.NotNil(t, err)
	assert.Contains(t, err.Message, "height")
}
