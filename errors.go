package kdgo

import (
	"errors"
	"fmt"

	"github.com/hupe1980/kdgo/geom"
	"github.com/hupe1980/kdgo/internal/tree"
)

var (
	// ErrInvalidArgument is the category every argument validation error
	// matches via errors.Is.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrInvalidK is returned when k is not positive.
	ErrInvalidK = fmt.Errorf("%w: k must be positive", ErrInvalidArgument)

	// ErrInvalidLeafCapacity is returned when the leaf capacity is less than one.
	ErrInvalidLeafCapacity = fmt.Errorf("%w: leaf capacity must be at least 1", ErrInvalidArgument)

	// ErrTooManyEntries is returned by Build when the index holds more entries
	// than a single tree can address.
	ErrTooManyEntries = errors.New("too many entries")

	// ErrNotFound is returned by SearchBuilder.First when no entry matches.
	ErrNotFound = errors.New("not found")

	// ErrEmptyTree is returned by SearchBuilder.First when no entry is
	// visible to searches at all.
	ErrEmptyTree = errors.New("empty tree")
)

// ErrDimensionMismatch indicates a key/query dimensionality mismatch.
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type ErrDimensionMismatch struct {
	Expected int
	Actual   int
	cause    error
}

func (e *ErrDimensionMismatch) Error() string {
	return fmt.Sprintf("dimension mismatch: expected %d, got %d", e.Expected, e.Actual)
}

func (e *ErrDimensionMismatch) Unwrap() error { return e.cause }

// Is reports whether target is ErrInvalidArgument.
func (e *ErrDimensionMismatch) Is(target error) bool { return target == ErrInvalidArgument }

// ErrInvalidDimension indicates an invalid configured dimension.
type ErrInvalidDimension struct {
	Dimension int
}

func (e *ErrInvalidDimension) Error() string {
	return fmt.Sprintf("invalid dimension: %d", e.Dimension)
}

// Is reports whether target is ErrInvalidArgument.
func (e *ErrInvalidDimension) Is(target error) bool { return target == ErrInvalidArgument }

// ErrInvalidCoordinate indicates a NaN or infinite coordinate in a key.
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type ErrInvalidCoordinate struct {
	Axis  int
	Value float64
	cause error
}

func (e *ErrInvalidCoordinate) Error() string {
	return fmt.Sprintf("invalid coordinate on axis %d: %v", e.Axis, e.Value)
}

func (e *ErrInvalidCoordinate) Unwrap() error { return e.cause }

// Is reports whether target is ErrInvalidArgument.
func (e *ErrInvalidCoordinate) Is(target error) bool { return target == ErrInvalidArgument }

// ErrInvalidRange indicates a range query whose low corner exceeds its high
// corner on some axis.
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type ErrInvalidRange struct {
	Axis  int
	Low   float64
	High  float64
	cause error
}

func (e *ErrInvalidRange) Error() string {
	return fmt.Sprintf("invalid range on axis %d: low %v > high %v", e.Axis, e.Low, e.High)
}

func (e *ErrInvalidRange) Unwrap() error { return e.cause }

// Is reports whether target is ErrInvalidArgument.
func (e *ErrInvalidRange) Is(target error) bool { return target == ErrInvalidArgument }

// ErrInvalidRadius indicates a negative or NaN search radius.
type ErrInvalidRadius struct {
	Radius float64
}

func (e *ErrInvalidRadius) Error() string {
	return fmt.Sprintf("invalid radius: %v", e.Radius)
}

// Is reports whether target is ErrInvalidArgument.
func (e *ErrInvalidRadius) Is(target error) bool { return target == ErrInvalidArgument }

// ErrInvalidTolerance indicates a negative or non-finite match tolerance.
type ErrInvalidTolerance struct {
	Epsilon float64
}

func (e *ErrInvalidTolerance) Error() string {
	return fmt.Sprintf("invalid tolerance: %v", e.Epsilon)
}

// Is reports whether target is ErrInvalidArgument.
func (e *ErrInvalidTolerance) Is(target error) bool { return target == ErrInvalidArgument }

func translateError(err error) error {
	if err == nil {
		return nil
	}

	var de *geom.DimensionError
	if errors.As(err, &de) {
		return &ErrDimensionMismatch{Expected: de.Expected, Actual: de.Actual, cause: err}
	}
	var ce *geom.CoordinateError
	if errors.As(err, &ce) {
		return &ErrInvalidCoordinate{Axis: ce.Axis, Value: ce.Value, cause: err}
	}
	var re *geom.RangeError
	if errors.As(err, &re) {
		return &ErrInvalidRange{Axis: re.Axis, Low: re.Low, High: re.High, cause: err}
	}
	if errors.Is(err, tree.ErrTooManyEntries) {
		return fmt.Errorf("%w: %w", ErrTooManyEntries, err)
	}

	return err
}
