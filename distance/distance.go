package distance

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// SquaredL2 calculates the squared L2 (Euclidean) distance between two points.
// Assumes points are the same length (caller's responsibility).
func SquaredL2(a, b []float64) float64 {
	var sum float64
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}

// SquaredL2Bounded is SquaredL2 with early exit: once the partial sum exceeds
// bound the partial sum is returned. Callers that only need to know whether
// the distance is <= bound save the remaining axes.
func SquaredL2Bounded(a, b []float64, bound float64) float64 {
	var sum float64
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
		if sum > bound {
			return sum
		}
	}
	return sum
}

// SquaredAxisGap returns the squared distance from q to the hyperplane
// x[axis] = split.
func SquaredAxisGap(q []float64, axis int, split float64) float64 {
	d := q[axis] - split
	return d * d
}

// MaxAbs returns the largest absolute coordinate of p, or 0 for an empty p.
func MaxAbs(p []float64) float64 {
	if len(p) == 0 {
		return 0
	}
	return floats.Norm(p, math.Inf(1))
}

// maxExp is the largest binary exponent a coordinate may have in the space
// distances are computed in. Differences then stay below 2^(maxExp+1) and a
// sum of their squares stays finite for any practical dimension.
const maxExp = 480

// Space computes squared Euclidean distances after multiplying every
// coordinate by a power of two. Such scaling is exact and preserves the
// order of distances; it is only applied when coordinates are large enough
// for squares to overflow.
//
// The zero Space does not scale.
type Space struct {
	scale float64 // 0 means 1
}

// NewSpace returns the space for points and queries whose coordinates are at
// most maxAbs in magnitude.
func NewSpace(maxAbs float64) Space {
	_, exp := math.Frexp(maxAbs)
	if exp <= maxExp {
		return Space{}
	}
	return Space{scale: math.Ldexp(1, maxExp-exp)}
}

// Scale returns the factor coordinates are multiplied by.
func (s Space) Scale() float64 {
	if s.scale == 0 {
		return 1
	}
	return s.scale
}

// SquaredL2 is SquaredL2 in s.
func (s Space) SquaredL2(a, b []float64) float64 {
	if s.scale == 0 {
		return SquaredL2(a, b)
	}
	var sum float64
	for i := range a {
		d := a[i]*s.scale - b[i]*s.scale
		sum += d * d
	}
	return sum
}

// SquaredL2Bounded is SquaredL2Bounded in s.
func (s Space) SquaredL2Bounded(a, b []float64, bound float64) float64 {
	if s.scale == 0 {
		return SquaredL2Bounded(a, b, bound)
	}
	var sum float64
	for i := range a {
		d := a[i]*s.scale - b[i]*s.scale
		sum += d * d
		if sum > bound {
			return sum
		}
	}
	return sum
}

// SquaredAxisGap is SquaredAxisGap in s.
func (s Space) SquaredAxisGap(q []float64, axis int, split float64) float64 {
	if s.scale == 0 {
		return SquaredAxisGap(q, axis, split)
	}
	d := q[axis]*s.scale - split*s.scale
	return d * d
}

// SquaredBoxGap returns the squared distance in s from q to the closest point
// of the box [lower, upper]. It is zero when q lies inside the box.
func (s Space) SquaredBoxGap(q, lower, upper []float64) float64 {
	sc := s.Scale()
	var sum float64
	for i, c := range q {
		var d float64
		switch {
		case c < lower[i]:
			d = lower[i]*sc - c*sc
		case c > upper[i]:
			d = c*sc - upper[i]*sc
		}
		sum += d * d
	}
	return sum
}

// SquaredRadius converts a radius to a squared radius in s. A radius whose
// square overflows becomes +Inf, which admits every point the space can
// hold.
func (s Space) SquaredRadius(r float64) float64 {
	r *= s.Scale()
	return r * r
}

// Distance converts a squared distance in s back to a Euclidean distance.
func (s Space) Distance(sq float64) float64 {
	return math.Sqrt(sq) / s.Scale()
}
