// Package searcher provides the result collection primitives shared by the
// tree walkers and the linear-scan fallback:
//   - Candidate: an entry ID with its squared distance to the query
//   - PriorityQueue: a value-based max-heap ordered by (distance, ID)
//   - Stats: per-query traversal counters
package searcher
