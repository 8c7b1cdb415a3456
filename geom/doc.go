// Package geom provides the N-dimensional point and axis-aligned box types
// used by kdgo.
//
// A Point is a plain []float64. Every point handed to an index must have the
// index's dimensionality and only finite coordinates; Validate checks both.
//
//	p := geom.Point{1.4, 2, 3}
//	if err := geom.Validate(p, 3); err != nil { ... }
//
//	box, err := geom.NewBox(geom.Point{-10, -10}, geom.Point{10, 10})
//	box.Contains(geom.Point{10, 10}) // true, bounds are inclusive
package geom
