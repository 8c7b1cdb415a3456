// Package kdgo provides an embeddable k-d tree for Go.
//
// An Index associates D-dimensional float64 keys with values of any type and
// answers exact-key, nearest-neighbor, k-nearest-neighbor, radius and
// axis-aligned range queries.
//
// # Quick Start
//
//	idx, _ := kdgo.New[string](2)
//	_ = idx.Add([]float64{1, 2}, "a")
//	_ = idx.Add([]float64{3, 4}, "b")
//	_ = idx.Build()
//
//	v, ok, _ := idx.Find([]float64{1, 2})                          // "a", true
//	nb, ok, _ := idx.FindClosest([]float64{2.9, 4})                // entry "b"
//	vals, _ := idx.AllValuesInRange([]float64{0, 0}, []float64{2, 3}) // ["a"]
//
// # Lifecycle
//
// Entries are appended with Add or AddBatch. Before the first Build every
// query is answered by a linear scan over all entries. Build constructs a
// balanced tree over the entries present at that moment; entries added
// later stay invisible until the next Build. Clear returns the index to
// the empty, unbuilt state.
//
// # Determinism
//
// Every entry has an ID, its insertion sequence number. Duplicate keys are
// kept. Find returns the first-added match; nearest-neighbor ties are broken
// by the lower ID; range results come in tree traversal order, which is
// stable for a given build.
//
// # Queries
//
// Nearest-neighbor queries accept QueryOptions:
//
//	bm, _ := idx.RangeIDs(low, high)
//	res, _ := idx.KNN(5, q, func(o *kdgo.QueryOptions) {
//	    o.MaxRadius = 10
//	    o.Filter = bm // only entries inside [low, high]
//	})
//
// or the fluent builder:
//
//	res, _ := idx.Search(q).KNN(5).Within(low, high).Execute()
//
// # Concurrency
//
// Index is not safe for concurrent use. SyncIndex wraps it with a
// read-write lock and builds trees outside the lock.
//
// # Observability
//
// WithLogger installs a structured slog logger; WithMetricsCollector
// installs a MetricsCollector such as BasicMetricsCollector or the
// Prometheus collector in package prom.
package kdgo
