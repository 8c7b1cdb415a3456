// Package distance provides the Euclidean distance functions used by kdgo.
//
// Nearest-neighbor search compares squared distances internally and only
// takes the square root when reporting a result. Queries run in a Space,
// which rescales coordinates by a power of two when they are so large that
// their squares would overflow.
//
// # Usage
//
//	sp := distance.NewSpace(maxAbs)
//	sq := sp.SquaredL2(a, b)
//	d := sp.Distance(sq)
//	gap := sp.SquaredAxisGap(q, axis, split)
package distance
