package geom

import (
	"math"
	"slices"
	"strconv"
	"strings"
)

// Point is an ordered sequence of coordinates.
type Point []float64

// Dim returns the number of coordinates.
func (p Point) Dim() int { return len(p) }

// Clone returns a copy of p that shares no memory with it.
func (p Point) Clone() Point {
	if p == nil {
		return nil
	}
	return slices.Clone(p)
}

// Equal reports whether p and q have the same arity and compare equal on every axis.
// Comparison is IEEE equality, so +0 and -0 are equal.
func (p Point) Equal(q Point) bool {
	if len(p) != len(q) {
		return false
	}
	for i := range p {
		if p[i] != q[i] {
			return false
		}
	}
	return true
}

// EqualWithin reports whether every coordinate of p differs from q by at most eps.
func (p Point) EqualWithin(q Point, eps float64) bool {
	if len(p) != len(q) {
		return false
	}
	for i := range p {
		if math.Abs(p[i]-q[i]) > eps {
			return false
		}
	}
	return true
}

// String formats p as "(x0,x1,...)".
func (p Point) String() string {
	var sb strings.Builder
	sb.WriteByte('(')
	for i, c := range p {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(strconv.FormatFloat(c, 'g', -1, 64))
	}
	sb.WriteByte(')')
	return sb.String()
}

// Validate checks that p has exactly dim coordinates and that all of them are finite.
// It returns a *DimensionError or a *CoordinateError.
func Validate(p Point, dim int) error {
	if len(p) != dim {
		return &DimensionError{Expected: dim, Actual: len(p)}
	}
	for i, c := range p {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return &CoordinateError{Axis: i, Value: c}
		}
	}
	return nil
}
