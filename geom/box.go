package geom

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// Box is an axis-aligned box. Both corners are inclusive.
type Box struct {
	Lower Point
	Upper Point
}

// NewBox validates that lower <= upper on every axis and returns the box.
// The corners are copied.
func NewBox(lower, upper Point) (Box, error) {
	if len(lower) != len(upper) {
		return Box{}, &DimensionError{Expected: len(lower), Actual: len(upper)}
	}
	for i := range lower {
		if lower[i] > upper[i] {
			return Box{}, &RangeError{Axis: i, Low: lower[i], High: upper[i]}
		}
	}
	return Box{Lower: lower.Clone(), Upper: upper.Clone()}, nil
}

// EmptyBox returns an inverted box that contains nothing; growing it by a
// point yields the degenerate box around that point.
func EmptyBox(dim int) Box {
	b := Box{Lower: make(Point, dim), Upper: make(Point, dim)}
	for i := range dim {
		b.Lower[i] = math.Inf(1)
		b.Upper[i] = math.Inf(-1)
	}
	return b
}

// Dim returns the dimensionality of the box.
func (b Box) Dim() int { return len(b.Lower) }

// IsEmpty reports whether the box is inverted on any axis.
func (b Box) IsEmpty() bool {
	for i := range b.Lower {
		if b.Lower[i] > b.Upper[i] {
			return true
		}
	}
	return false
}

// Clone returns a deep copy of b.
func (b Box) Clone() Box {
	return Box{Lower: b.Lower.Clone(), Upper: b.Upper.Clone()}
}

// Grow extends b in place so that it contains p.
func (b *Box) Grow(p Point) {
	for i, c := range p {
		b.Lower[i] = math.Min(b.Lower[i], c)
		b.Upper[i] = math.Max(b.Upper[i], c)
	}
}

// Contains reports whether p lies inside b, bounds inclusive.
func (b Box) Contains(p Point) bool {
	for i, c := range p {
		if c < b.Lower[i] || c > b.Upper[i] {
			return false
		}
	}
	return true
}

// ContainsBox reports whether o lies entirely inside b.
func (b Box) ContainsBox(o Box) bool {
	for i := range b.Lower {
		if o.Lower[i] < b.Lower[i] || o.Upper[i] > b.Upper[i] {
			return false
		}
	}
	return true
}

// Overlaps reports whether b and o share at least one point.
func (b Box) Overlaps(o Box) bool {
	for i := range b.Lower {
		if b.Lower[i] > o.Upper[i] || b.Upper[i] < o.Lower[i] {
			return false
		}
	}
	return true
}

// Extent returns the per-axis side lengths of b.
func (b Box) Extent() []float64 {
	return floats.SubTo(make([]float64, len(b.Upper)), b.Upper, b.Lower)
}

// WidestDimension returns the axis along which b is longest.
// Ties resolve to the lowest axis.
func (b Box) WidestDimension() int {
	if len(b.Lower) == 0 {
		return 0
	}
	return floats.MaxIdx(b.Extent())
}
