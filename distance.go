package points

import (
	"fmt"
	"math"
)

// NearFarScalar maps camera distance to a scalar: NearValue at or below
// Near, FarValue at or beyond Far, interpolated in between.
type NearFarScalar struct {
	Near      float64
	NearValue float64
	Far       float64
	FarValue  float64
}

// DistanceDisplayCondition shows a point only while the camera distance is
// within [Near, Far].
type DistanceDisplayCondition struct {
	Near float64
	Far  float64
}

func validateNearFar(v *NearFarScalar) error {
	if v == nil {
		return nil
	}
	if !finite(v.Near) || !finite(v.NearValue) || !finite(v.FarValue) || math.IsNaN(v.Far) {
		return fmt.Errorf("%w: non-finite near-far scalar", ErrInvalidArgument)
	}
	if v.Far <= v.Near {
		return fmt.Errorf("%w: far distance %g must be greater than near distance %g",
			ErrInvalidArgument, v.Far, v.Near)
	}
	return nil
}

func validateDisplayCondition(v *DistanceDisplayCondition) error {
	if v == nil {
		return nil
	}
	if math.IsNaN(v.Near) || math.IsNaN(v.Far) {
		return fmt.Errorf("%w: NaN display distance", ErrInvalidArgument)
	}
	if v.Far <= v.Near {
		return fmt.Errorf("%w: far distance %g must be greater than near distance %g",
			ErrInvalidArgument, v.Far, v.Near)
	}
	return nil
}

// equalNearFar compares optional scalars by value.
func equalNearFar(a, b *NearFarScalar) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func equalDisplayCondition(a, b *DistanceDisplayCondition) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func cloneNearFar(v *NearFarScalar) *NearFarScalar {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func cloneDisplayCondition(v *DistanceDisplayCondition) *DistanceDisplayCondition {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
