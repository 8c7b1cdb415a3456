package kdgo

import (
	"iter"

	"github.com/RoaringBitmap/roaring/v2"
)

// Search creates a new fluent search builder for the given query key.
//
// Example:
//
//	results, err := idx.Search(query).
//	    KNN(10).
//	    MaxRadius(2.5).
//	    Execute()
//
//	// Nearest entry inside a box:
//	nn, err := idx.Search(query).Within(low, high).First()
func (idx *Index[V]) Search(query []float64) *SearchBuilder[V] {
	return newSearchBuilder(func(fn func(*Index[V])) { fn(idx) }, query)
}

// newSearchBuilder creates a builder whose every execution runs inside a
// single call of view.
func newSearchBuilder[V any](view func(fn func(*Index[V])), query []float64) *SearchBuilder[V] {
	return &SearchBuilder[V]{
		view:  view,
		query: query,
		k:     1,
	}
}

// SearchBuilder is a fluent builder for constructing nearest-neighbor queries.
type SearchBuilder[V any] struct {
	view  func(fn func(*Index[V]))
	query []float64
	k     int

	maxRadius *float64
	filter    *roaring.Bitmap
	low, high []float64
	stats     *SearchStats
}

// KNN sets the number of nearest neighbors to return. Default: 1.
func (sb *SearchBuilder[V]) KNN(k int) *SearchBuilder[V] {
	sb.k = k
	return sb
}

// MaxRadius limits results to entries within r of the query.
func (sb *SearchBuilder[V]) MaxRadius(r float64) *SearchBuilder[V] {
	sb.maxRadius = &r
	return sb
}

// Filter restricts results to entries whose ID is in ids.
func (sb *SearchBuilder[V]) Filter(ids *roaring.Bitmap) *SearchBuilder[V] {
	sb.filter = ids
	return sb
}

// Within restricts results to entries whose key lies in [low, high].
// It combines with Filter by intersection.
func (sb *SearchBuilder[V]) Within(low, high []float64) *SearchBuilder[V] {
	sb.low, sb.high = low, high
	return sb
}

// Stats collects the work done by the search into st.
func (sb *SearchBuilder[V]) Stats(st *SearchStats) *SearchBuilder[V] {
	sb.stats = st
	return sb
}

// Execute runs the search and returns the results, nearest first.
func (sb *SearchBuilder[V]) Execute() ([]Neighbor[V], error) {
	var (
		results []Neighbor[V]
		err     error
	)
	sb.view(func(idx *Index[V]) {
		results, err = sb.execute(idx)
	})
	return results, err
}

func (sb *SearchBuilder[V]) execute(idx *Index[V]) ([]Neighbor[V], error) {
	filter := sb.filter
	if sb.low != nil || sb.high != nil {
		box, err := idx.RangeIDs(sb.low, sb.high)
		if err != nil {
			return nil, err
		}
		if filter != nil {
			box.And(filter)
		}
		filter = box
	}

	return idx.KNN(sb.k, sb.query, func(o *QueryOptions) {
		if sb.maxRadius != nil {
			o.MaxRadius = *sb.maxRadius
		}
		o.Filter = filter
		o.Stats = sb.stats
	})
}

// MustExecute runs the search, panicking on error.
// Use this only in tests or when you're certain the query is valid.
func (sb *SearchBuilder[V]) MustExecute() []Neighbor[V] {
	results, err := sb.Execute()
	if err != nil {
		panic(err)
	}
	return results
}

// Stream returns an iterator over search results, nearest first.
// The iterator supports early termination by breaking from the loop.
//
// Example:
//
//	for nb, err := range idx.Search(query).KNN(100).Stream() {
//	    if err != nil { break }
//	    if nb.Distance > 1.0 { break }
//	    process(nb)
//	}
func (sb *SearchBuilder[V]) Stream() iter.Seq2[Neighbor[V], error] {
	return func(yield func(Neighbor[V], error) bool) {
		results, err := sb.Execute()
		if err != nil {
			yield(Neighbor[V]{}, err)
			return
		}
		for _, r := range results {
			if !yield(r, nil) {
				return
			}
		}
	}
}

// First returns only the nearest result. It returns ErrEmptyTree when no
// entry is visible to searches and ErrNotFound when none matches.
func (sb *SearchBuilder[V]) First() (Neighbor[V], error) {
	sb.k = 1

	var (
		results []Neighbor[V]
		err     error
		indexed int
	)
	sb.view(func(idx *Index[V]) {
		results, err = sb.execute(idx)
		indexed = idx.Indexed()
	})
	if err != nil {
		return Neighbor[V]{}, err
	}
	if len(results) == 0 {
		if indexed == 0 {
			return Neighbor[V]{}, ErrEmptyTree
		}
		return Neighbor[V]{}, ErrNotFound
	}
	return results[0], nil
}

// Count executes the search and returns the number of results.
func (sb *SearchBuilder[V]) Count() (int, error) {
	results, err := sb.Execute()
	if err != nil {
		return 0, err
	}
	return len(results), nil
}

// Exists checks if at least one result matches the search.
func (sb *SearchBuilder[V]) Exists() (bool, error) {
	sb.k = 1
	results, err := sb.Execute()
	if err != nil {
		return false, err
	}
	return len(results) > 0, nil
}
