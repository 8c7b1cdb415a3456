package kdgo

import (
	"math"
	"time"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/hupe1980/kdgo/distance"
	"github.com/hupe1980/kdgo/geom"
	"github.com/hupe1980/kdgo/internal/searcher"
	"github.com/hupe1980/kdgo/internal/store"
)

// SearchStats counts the work done by a single query.
type SearchStats = searcher.Stats

// Neighbor is an entry returned by a nearest-neighbor query.
type Neighbor[V any] struct {
	Entry[V]

	// Distance is the Euclidean distance from the query to Key.
	Distance float64
}

// Find returns the value of the first-added entry whose key equals key on
// every axis. The bool is false when no entry matches.
func (idx *Index[V]) Find(key []float64) (V, bool, error) {
	start := time.Now()
	var zero V

	if err := idx.validateKey(key); err != nil {
		idx.observe(SearchFind, 0, start, err)
		return zero, false, err
	}

	v := idx.visible()
	var (
		id uint32
		ok bool
	)
	if idx.tree != nil {
		id, ok = idx.tree.Find(key)
	} else {
		id, ok = store.ScanFind(v, key)
	}

	if !ok {
		idx.observe(SearchFind, 0, start, nil)
		return zero, false, nil
	}
	idx.observe(SearchFind, 1, start, nil)
	return v.Value(id), true, nil
}

// FindWithTolerance is like Find but matches any key whose coordinates each
// differ from key by at most eps. Among matches the first-added entry wins.
func (idx *Index[V]) FindWithTolerance(key []float64, eps float64) (V, bool, error) {
	start := time.Now()
	var zero V

	if err := idx.validateKey(key); err != nil {
		idx.observe(SearchFind, 0, start, err)
		return zero, false, err
	}
	if eps < 0 || math.IsNaN(eps) || math.IsInf(eps, 0) {
		err := &ErrInvalidTolerance{Epsilon: eps}
		idx.observe(SearchFind, 0, start, err)
		return zero, false, err
	}

	v := idx.visible()
	var (
		id uint32
		ok bool
	)
	if idx.tree != nil {
		id, ok = idx.tree.FindWithin(key, eps)
	} else {
		id, ok = store.ScanFindWithin(v, key, eps)
	}

	if !ok {
		idx.observe(SearchFind, 0, start, nil)
		return zero, false, nil
	}
	idx.observe(SearchFind, 1, start, nil)
	return v.Value(id), true, nil
}

// FindAll returns the values of all entries whose key equals key, in the
// order they were added.
func (idx *Index[V]) FindAll(key []float64) ([]V, error) {
	start := time.Now()

	if err := idx.validateKey(key); err != nil {
		idx.observe(SearchFind, 0, start, err)
		return nil, err
	}

	v := idx.visible()
	var ids []uint32
	if idx.tree != nil {
		ids = idx.tree.FindAll(key)
	} else {
		ids = store.ScanFindAll(v, key)
	}

	out := make([]V, len(ids))
	for i, id := range ids {
		out[i] = v.Value(id)
	}
	idx.observe(SearchFind, len(out), start, nil)
	return out, nil
}

// FindClosest returns the entry nearest to key by Euclidean distance. On
// equal distances the first-added entry wins. The bool is false when no
// entry qualifies: the index is empty, or every entry is excluded by the
// query options.
func (idx *Index[V]) FindClosest(key []float64, optFns ...func(o *QueryOptions)) (Neighbor[V], bool, error) {
	start := time.Now()

	res, err := idx.nearest(SearchNearest, key, 1, optFns)
	if err != nil {
		idx.observe(SearchNearest, 0, start, err)
		return Neighbor[V]{}, false, err
	}
	idx.observe(SearchNearest, len(res), start, nil)

	if len(res) == 0 {
		return Neighbor[V]{}, false, nil
	}
	return res[0], true, nil
}

// FindClosestAll returns the entry nearest to key together with every other
// entry stored under exactly the same key, in ID order, all at the same
// distance. It returns no entries when FindClosest would report none.
func (idx *Index[V]) FindClosestAll(key []float64, optFns ...func(o *QueryOptions)) ([]Neighbor[V], error) {
	start := time.Now()

	res, err := idx.nearest(SearchNearest, key, 1, optFns)
	if err != nil || len(res) == 0 {
		idx.observe(SearchNearest, 0, start, err)
		return nil, err
	}

	var opts QueryOptions
	for _, fn := range optFns {
		fn(&opts)
	}

	nb := res[0]
	v := idx.visible()
	var ids []uint32
	if idx.tree != nil {
		ids = idx.tree.FindAll(nb.Key)
	} else {
		ids = store.ScanFindAll(v, nb.Key)
	}

	out := make([]Neighbor[V], 0, len(ids))
	for _, id := range ids {
		if opts.Filter != nil && !opts.Filter.Contains(id) {
			continue
		}
		out = append(out, Neighbor[V]{Entry: idx.entry(v, id), Distance: nb.Distance})
	}
	idx.observe(SearchNearest, len(out), start, nil)
	return out, nil
}

// KNN returns the k entries nearest to key, nearest first; equal distances
// are ordered by ID. Fewer than k results are returned when fewer entries
// qualify.
func (idx *Index[V]) KNN(k int, key []float64, optFns ...func(o *QueryOptions)) ([]Neighbor[V], error) {
	start := time.Now()

	if k < 1 {
		idx.observe(SearchKNN, 0, start, ErrInvalidK)
		return nil, ErrInvalidK
	}

	res, err := idx.nearest(SearchKNN, key, k, optFns)
	idx.observe(SearchKNN, len(res), start, err)
	return res, err
}

func (idx *Index[V]) nearest(kind SearchKind, key []float64, k int, optFns []func(o *QueryOptions)) ([]Neighbor[V], error) {
	if err := idx.validateKey(key); err != nil {
		return nil, err
	}

	opts := QueryOptions{MaxRadius: math.Inf(1)}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.MaxRadius < 0 || math.IsNaN(opts.MaxRadius) {
		return nil, &ErrInvalidRadius{Radius: opts.MaxRadius}
	}

	v := idx.visible()
	sp := v.Space(key)

	cacheable := opts.Filter == nil && opts.Stats == nil
	var ckey string
	if cacheable && idx.cache != nil {
		ckey = cacheKey(k, opts.MaxRadius, key)
		if cs, ok := idx.cache.get(ckey); ok {
			idx.metrics.RecordCacheHit(kind)
			return idx.neighbors(v, sp, cs), nil
		}
	}

	c := searcher.NewCollector(k, opts.MaxRadius, sp)
	if opts.Filter != nil {
		c.Filter = opts.Filter.Contains
	}
	if opts.Stats != nil {
		opts.Stats.Reset()
		c.Stats = opts.Stats
	}

	if idx.tree != nil {
		idx.tree.Nearest(key, c)
	} else {
		store.ScanCollect(v, key, c)
	}
	cs := c.Results()

	if ckey != "" {
		idx.cache.add(ckey, cs)
	}
	return idx.neighbors(v, sp, cs), nil
}

func (idx *Index[V]) neighbors(v store.Snapshot[V], sp distance.Space, cs []searcher.Candidate) []Neighbor[V] {
	out := make([]Neighbor[V], len(cs))
	for i, c := range cs {
		out[i] = Neighbor[V]{
			Entry:    idx.entry(v, c.ID),
			Distance: sp.Distance(c.Distance),
		}
	}
	return out
}

// AllPointsInRadius returns every entry within Euclidean distance radius of
// key (inclusive), in tree traversal order.
func (idx *Index[V]) AllPointsInRadius(key []float64, radius float64) ([]Entry[V], error) {
	start := time.Now()

	if err := idx.validateKey(key); err != nil {
		idx.observe(SearchRadius, 0, start, err)
		return nil, err
	}
	if radius < 0 || math.IsNaN(radius) {
		err := &ErrInvalidRadius{Radius: radius}
		idx.observe(SearchRadius, 0, start, err)
		return nil, err
	}

	v := idx.visible()
	sp := v.Space(key)
	var ids []uint32
	if idx.tree != nil {
		ids = idx.tree.Radius(key, radius, sp, nil)
	} else {
		ids = store.ScanRadius(v, key, radius, sp)
	}

	out := idx.entries(v, ids)
	idx.observe(SearchRadius, len(out), start, nil)
	return out, nil
}

// AllValuesInRange returns the values of all entries whose key lies in the
// axis-aligned box [low, high], bounds inclusive. Infinite bounds are
// allowed.
func (idx *Index[V]) AllValuesInRange(low, high []float64) ([]V, error) {
	v, ids, err := idx.rangeIDs(low, high)
	if err != nil {
		return nil, err
	}

	out := make([]V, len(ids))
	for i, id := range ids {
		out[i] = v.Value(id)
	}
	return out, nil
}

// AllPointsInRange is like AllValuesInRange but returns whole entries.
func (idx *Index[V]) AllPointsInRange(low, high []float64) ([]Entry[V], error) {
	v, ids, err := idx.rangeIDs(low, high)
	if err != nil {
		return nil, err
	}
	return idx.entries(v, ids), nil
}

// RangeIDs returns the IDs of all entries inside [low, high] as a bitmap.
// The result can serve as QueryOptions.Filter to restrict a
// nearest-neighbor query to the box.
func (idx *Index[V]) RangeIDs(low, high []float64) (*roaring.Bitmap, error) {
	_, ids, err := idx.rangeIDs(low, high)
	if err != nil {
		return nil, err
	}
	return roaring.BitmapOf(ids...), nil
}

// CountInRange returns the number of entries inside [low, high].
func (idx *Index[V]) CountInRange(low, high []float64) (int, error) {
	start := time.Now()

	if err := idx.validateBox(low, high); err != nil {
		idx.observe(SearchRange, 0, start, err)
		return 0, err
	}

	var n int
	if idx.tree != nil {
		n = idx.tree.CountRange(low, high, nil)
	} else {
		n = len(store.ScanRange(idx.store.Snapshot(), low, high))
	}
	idx.observe(SearchRange, n, start, nil)
	return n, nil
}

func (idx *Index[V]) rangeIDs(low, high []float64) (store.Snapshot[V], []uint32, error) {
	start := time.Now()

	if err := idx.validateBox(low, high); err != nil {
		idx.observe(SearchRange, 0, start, err)
		return store.Snapshot[V]{}, nil, err
	}

	v := idx.visible()
	var ids []uint32
	if idx.tree != nil {
		ids = idx.tree.Range(low, high, nil)
	} else {
		ids = store.ScanRange(v, low, high)
	}

	idx.observe(SearchRange, len(ids), start, nil)
	return v, ids, nil
}

// validateBox checks arity, rejects NaN corners and requires low <= high.
func (idx *Index[V]) validateBox(low, high []float64) error {
	for _, corner := range [][]float64{low, high} {
		if len(corner) != idx.dim {
			return &ErrDimensionMismatch{Expected: idx.dim, Actual: len(corner)}
		}
		for i, c := range corner {
			if math.IsNaN(c) {
				return &ErrInvalidCoordinate{Axis: i, Value: c}
			}
		}
	}
	_, err := geom.NewBox(low, high)
	return translateError(err)
}

func (idx *Index[V]) entries(v store.Snapshot[V], ids []uint32) []Entry[V] {
	out := make([]Entry[V], len(ids))
	for i, id := range ids {
		out[i] = idx.entry(v, id)
	}
	return out
}

func (idx *Index[V]) observe(kind SearchKind, results int, start time.Time, err error) {
	idx.metrics.RecordSearch(kind, results, time.Since(start), err)
	idx.logger.LogSearch(kind, results, err)
}
