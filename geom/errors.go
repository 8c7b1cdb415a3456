package geom

import "fmt"

// DimensionError reports a point whose arity does not match the expected dimension.
type DimensionError struct {
	Expected int
	Actual   int
}

func (e *DimensionError) Error() string {
	return fmt.Sprintf("dimension mismatch: expected %d, got %d", e.Expected, e.Actual)
}

// CoordinateError reports a NaN or infinite coordinate.
type CoordinateError struct {
	Axis  int
	Value float64
}

func (e *CoordinateError) Error() string {
	return fmt.Sprintf("invalid coordinate on axis %d: %v", e.Axis, e.Value)
}

// RangeError reports a box whose lower corner exceeds its upper corner on some axis.
type RangeError struct {
	Axis int
	Low  float64
	High float64
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("invalid range on axis %d: low %v > high %v", e.Axis, e.Low, e.High)
}
