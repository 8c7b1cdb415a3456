// Package tree implements the k-d tree over a flat coordinate array.
//
// # Layout
//
// Nodes live in a pre-sized arena and refer to each other by int32 index.
// Every node covers a contiguous run order[start:end] of entry IDs, so a
// leaf's bucket is its run and a subtree fully inside a query box can be
// collected without visiting its nodes. Partitioning is stable, which keeps
// each bucket in ascending ID order.
//
// # Build
//
// At each node the split axis is chosen by the configured SplitPolicy; the
// split value is the median coordinate on that axis (quickselect). Entries
// with coordinate < split go left, the rest right. Large subtrees are built
// concurrently; node slots are claimed with an atomic counter so workers
// never share a slot.
//
// # Search
//
// All searches are read-only and safe for concurrent use on the same Tree.
package tree
