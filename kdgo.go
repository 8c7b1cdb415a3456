package kdgo

import (
	"fmt"
	"time"

	"github.com/hupe1980/kdgo/geom"
	"github.com/hupe1980/kdgo/internal/store"
	"github.com/hupe1980/kdgo/internal/tree"
)

// Entry is a key-value pair stored in an index.
type Entry[V any] struct {
	// ID is the insertion sequence number of the entry, starting at 0.
	// IDs are dense and stable until Clear.
	ID uint32

	// Key is a copy of the entry's key.
	Key geom.Point

	// Value is the value the entry was added with.
	Value V
}

// Item is an input pair for AddBatch.
type Item[V any] struct {
	Key   []float64
	Value V
}

// Index is a k-d tree over D-dimensional keys with values of type V.
//
// Entries are appended with Add and become visible to the tree after Build.
// Until the first Build every query answers by linear scan over all entries;
// afterwards queries see exactly the entries present at the last Build.
//
// An Index is not safe for concurrent use; wrap it in a SyncIndex to share
// it between goroutines.
type Index[V any] struct {
	dim     int
	cfg     tree.Config
	store   *store.Store[V]
	tree    *tree.Tree
	view    store.Snapshot[V] // entries visible to tree
	epoch   uint64            // incremented by Clear
	cache   *queryCache
	metrics MetricsCollector
	logger  *Logger
}

// New creates an empty index for keys of dimension dim.
func New[V any](dim int, optFns ...Option) (*Index[V], error) {
	if dim < 1 {
		return nil, &ErrInvalidDimension{Dimension: dim}
	}

	opts := applyOptions(optFns)
	if opts.leafCapacity < 1 {
		return nil, ErrInvalidLeafCapacity
	}

	cache, err := newQueryCache(opts.cacheSize)
	if err != nil {
		return nil, fmt.Errorf("kdgo: failed to create query cache: %w", err)
	}

	return &Index[V]{
		dim: dim,
		cfg: tree.Config{
			LeafCapacity: opts.leafCapacity,
			Policy:       opts.splitPolicy,
			Parallelism:  opts.parallelism,
		},
		store:   store.New[V](dim),
		cache:   cache,
		metrics: opts.metricsCollector,
		logger:  opts.logger.WithDimension(dim),
	}, nil
}

// Dimension returns the key dimensionality.
func (idx *Index[V]) Dimension() int { return idx.dim }

// Size returns the number of entries added since creation or the last Clear,
// including entries not yet visible to a built tree.
func (idx *Index[V]) Size() int { return idx.store.Len() }

// Indexed returns the number of entries visible to queries: all entries
// while the index is unbuilt, the entries present at the last Build after.
func (idx *Index[V]) Indexed() int {
	if idx.tree != nil {
		return idx.view.Len()
	}
	return idx.store.Len()
}

// Built reports whether Build has run since creation or the last Clear.
func (idx *Index[V]) Built() bool { return idx.tree != nil }

// Add appends an entry. The key is copied. Duplicate keys are kept as
// separate entries.
func (idx *Index[V]) Add(key []float64, value V) error {
	start := time.Now()

	if err := idx.validateKey(key); err != nil {
		idx.metrics.RecordAdd(time.Since(start), err)
		idx.logger.LogAdd(0, err)
		return err
	}

	id := idx.store.Append(key, value)
	if idx.tree == nil {
		idx.cache.purge()
	}

	idx.metrics.RecordAdd(time.Since(start), nil)
	idx.logger.LogAdd(id, nil)
	return nil
}

// AddBatch appends all items, or none if any key is invalid. The returned
// error names the first invalid item.
func (idx *Index[V]) AddBatch(items []Item[V]) error {
	start := time.Now()

	for i, it := range items {
		if err := idx.validateKey(it.Key); err != nil {
			err = fmt.Errorf("item %d: %w", i, err)
			idx.metrics.RecordAddBatch(len(items), time.Since(start), err)
			idx.logger.LogAddBatch(len(items), err)
			return err
		}
	}

	idx.store.Grow(len(items))
	for _, it := range items {
		idx.store.Append(it.Key, it.Value)
	}
	if idx.tree == nil && len(items) > 0 {
		idx.cache.purge()
	}

	idx.metrics.RecordAddBatch(len(items), time.Since(start), nil)
	idx.logger.LogAddBatch(len(items), nil)
	return nil
}

// Build (re)constructs the tree from every entry added so far and makes
// them visible to queries. The previous tree is discarded.
func (idx *Index[V]) Build() error {
	start := time.Now()

	in := idx.prepareBuild()
	t, err := idx.buildTree(in)
	if err == nil {
		idx.install(in, t)
	}

	idx.finishBuild(time.Since(start), err)
	return err
}

// Clear drops all entries and returns the index to the unbuilt state.
// Snapshots held by earlier results are unaffected.
func (idx *Index[V]) Clear() {
	dropped := idx.store.Len()

	idx.store.Reset()
	idx.tree = nil
	idx.view = store.Snapshot[V]{}
	idx.epoch++
	idx.cache.purge()

	idx.logger.LogClear(dropped)
}

// Stats describes the index and the shape of its tree.
type Stats struct {
	Dimension      int
	Entries        int  // entries added, visible or not
	IndexedEntries int  // entries visible to queries
	Built          bool // whether a tree is installed
	Nodes          int
	Leaves         int
	MaxDepth       int
	MaxLeafSize    int
	Bounds         geom.Box // bounding box of the indexed entries; empty while unbuilt
	LeafCapacity   int
	SplitPolicy    SplitPolicy
	CachedQueries  int
}

// Stats returns index statistics. Tree statistics are zero while unbuilt.
func (idx *Index[V]) Stats() Stats {
	st := Stats{
		Dimension:      idx.dim,
		Entries:        idx.store.Len(),
		IndexedEntries: idx.Indexed(),
		Built:          idx.tree != nil,
		Bounds:         geom.EmptyBox(idx.dim),
		LeafCapacity:   idx.cfg.LeafCapacity,
		SplitPolicy:    idx.cfg.Policy,
		CachedQueries:  idx.cache.len(),
	}
	if idx.tree != nil {
		ts := idx.tree.Stats()
		st.Nodes = ts.Nodes
		st.Leaves = ts.Leaves
		st.MaxDepth = ts.MaxDepth
		st.MaxLeafSize = ts.MaxLeafSize
		st.Bounds = idx.tree.Bounds()
	}
	return st
}

// buildInput is the state a build works from. It can be taken under a read
// lock and built without one.
type buildInput[V any] struct {
	epoch uint64
	view  store.Snapshot[V]
}

func (idx *Index[V]) prepareBuild() buildInput[V] {
	return buildInput[V]{epoch: idx.epoch, view: idx.store.Snapshot()}
}

// buildTree only reads immutable state and is safe to run concurrently with
// Add and queries.
func (idx *Index[V]) buildTree(in buildInput[V]) (*tree.Tree, error) {
	t, err := tree.Build(in.view.Coords(), idx.dim, idx.cfg)
	if err != nil {
		return nil, translateError(err)
	}
	return t, nil
}

// install publishes t unless the index was cleared since in was taken or a
// build over more entries is already installed.
func (idx *Index[V]) install(in buildInput[V], t *tree.Tree) bool {
	if in.epoch != idx.epoch {
		return false
	}
	if idx.tree != nil && in.view.Len() < idx.view.Len() {
		return false
	}

	idx.tree = t
	idx.view = in.view
	idx.cache.purge()
	return true
}

func (idx *Index[V]) finishBuild(duration time.Duration, err error) {
	st := idx.Stats()
	idx.metrics.RecordBuild(st.IndexedEntries, duration, err)
	idx.logger.LogBuild(st, duration, err)
}

// visible returns the entries queries run against.
func (idx *Index[V]) visible() store.Snapshot[V] {
	if idx.tree != nil {
		return idx.view
	}
	return idx.store.Snapshot()
}

func (idx *Index[V]) validateKey(key []float64) error {
	return translateError(geom.Validate(key, idx.dim))
}

func (idx *Index[V]) entry(v store.Snapshot[V], id uint32) Entry[V] {
	return Entry[V]{
		ID:    id,
		Key:   geom.Point(v.Key(id)).Clone(),
		Value: v.Value(id),
	}
}
