// Package testutil provides testing utilities for kdgo.
//
// This package is intended for use in tests and benchmarks only.
// It provides helpers for generating random point sets and computing
// exact (brute-force) query answers to check the tree against.
//
// # Random Point Generation
//
//	rng := testutil.NewRNG(seed)
//	pts := rng.UniformPoints(1000, 3)        // uniform [0, 1)
//	pts = rng.ClusteredPoints(1000, 3, 8, 0.05)
//	pts = rng.DuplicatePoints(1000, 3, 20)   // only 20 distinct keys
//
// # Ground Truth
//
//	nn, ok := testutil.ExactNearest(pts, query)
//	knn := testutil.ExactKNN(pts, query, k, math.Inf(1))
//	ids := testutil.ExactRange(pts, lower, upper)
package testutil
