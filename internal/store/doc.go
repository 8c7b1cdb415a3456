// Package store holds the entries of an index before and independently of
// any tree built over them.
//
// Coordinates are stored row-major in one contiguous slice: entry i occupies
// coords[i*dim : (i+1)*dim]. Values live in a parallel slice. Both slices are
// append-only, so a Snapshot taken at any time stays valid and unchanged
// while later Appends grow the store; Reset allocates fresh backing arrays
// instead of truncating.
//
// The scan functions implement every query as a linear pass over a
// Snapshot. They serve the unbuilt index and act as ground truth for the
// tree walkers.
//
// # Concurrency
//
// A Store requires external synchronization for Append and Reset.
// Snapshots are safe for concurrent reads.
package store
