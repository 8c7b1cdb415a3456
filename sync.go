package kdgo

import (
	"sync"
	"time"

	"github.com/RoaringBitmap/roaring/v2"
)

// SyncIndex is an Index safe for concurrent use by multiple goroutines.
//
// Add, AddBatch and Clear take an exclusive lock; queries share a read
// lock. Build constructs the new tree without holding the lock, so queries
// and adds proceed while it runs; entries added meanwhile stay pending
// until the next Build.
type SyncIndex[V any] struct {
	mu  sync.RWMutex
	idx *Index[V]
}

// NewSync creates an empty concurrency-safe index for keys of dimension dim.
func NewSync[V any](dim int, optFns ...Option) (*SyncIndex[V], error) {
	idx, err := New[V](dim, optFns...)
	if err != nil {
		return nil, err
	}
	return &SyncIndex[V]{idx: idx}, nil
}

// Dimension returns the key dimensionality.
func (s *SyncIndex[V]) Dimension() int { return s.idx.Dimension() }

// Add appends an entry. See Index.Add.
func (s *SyncIndex[V]) Add(key []float64, value V) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.idx.Add(key, value)
}

// AddBatch appends all items or none. See Index.AddBatch.
func (s *SyncIndex[V]) AddBatch(items []Item[V]) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.idx.AddBatch(items)
}

// Build (re)constructs the tree over every entry added before the call.
//
// If the index is cleared while the tree is being built, the build is
// repeated under the lock. If a concurrent Build already installed a tree
// over more entries, the older result is dropped.
func (s *SyncIndex[V]) Build() error {
	start := time.Now()

	s.mu.RLock()
	in := s.idx.prepareBuild()
	s.mu.RUnlock()

	t, err := s.idx.buildTree(in)

	s.mu.Lock()
	defer s.mu.Unlock()

	if err == nil && !s.idx.install(in, t) && in.epoch != s.idx.epoch {
		in = s.idx.prepareBuild()
		if t, err = s.idx.buildTree(in); err == nil {
			s.idx.install(in, t)
		}
	}

	s.idx.finishBuild(time.Since(start), err)
	return err
}

// Clear drops all entries. See Index.Clear.
func (s *SyncIndex[V]) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.idx.Clear()
}

// Size returns the number of entries added. See Index.Size.
func (s *SyncIndex[V]) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.idx.Size()
}

// Indexed returns the number of entries visible to queries.
func (s *SyncIndex[V]) Indexed() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.idx.Indexed()
}

// Built reports whether a tree is installed.
func (s *SyncIndex[V]) Built() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.idx.Built()
}

// Stats returns index statistics.
func (s *SyncIndex[V]) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.idx.Stats()
}

// Find returns the value of the first-added entry with key. See Index.Find.
func (s *SyncIndex[V]) Find(key []float64) (V, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.idx.Find(key)
}

// FindWithTolerance matches keys within eps on every axis. See Index.FindWithTolerance.
func (s *SyncIndex[V]) FindWithTolerance(key []float64, eps float64) (V, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.idx.FindWithTolerance(key, eps)
}

// FindAll returns the values of all entries with key. See Index.FindAll.
func (s *SyncIndex[V]) FindAll(key []float64) ([]V, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.idx.FindAll(key)
}

// FindClosest returns the nearest entry. See Index.FindClosest.
func (s *SyncIndex[V]) FindClosest(key []float64, optFns ...func(o *QueryOptions)) (Neighbor[V], bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.idx.FindClosest(key, optFns...)
}

// FindClosestAll returns the nearest entry and its duplicates. See Index.FindClosestAll.
func (s *SyncIndex[V]) FindClosestAll(key []float64, optFns ...func(o *QueryOptions)) ([]Neighbor[V], error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.idx.FindClosestAll(key, optFns...)
}

// KNN returns the k nearest entries. See Index.KNN.
func (s *SyncIndex[V]) KNN(k int, key []float64, optFns ...func(o *QueryOptions)) ([]Neighbor[V], error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.idx.KNN(k, key, optFns...)
}

// AllPointsInRadius returns every entry within radius. See Index.AllPointsInRadius.
func (s *SyncIndex[V]) AllPointsInRadius(key []float64, radius float64) ([]Entry[V], error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.idx.AllPointsInRadius(key, radius)
}

// AllValuesInRange returns the values inside a box. See Index.AllValuesInRange.
func (s *SyncIndex[V]) AllValuesInRange(low, high []float64) ([]V, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.idx.AllValuesInRange(low, high)
}

// AllPointsInRange returns the entries inside a box. See Index.AllPointsInRange.
func (s *SyncIndex[V]) AllPointsInRange(low, high []float64) ([]Entry[V], error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.idx.AllPointsInRange(low, high)
}

// RangeIDs returns the IDs of entries inside a box. See Index.RangeIDs.
func (s *SyncIndex[V]) RangeIDs(low, high []float64) (*roaring.Bitmap, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.idx.RangeIDs(low, high)
}

// CountInRange counts the entries inside a box. See Index.CountInRange.
func (s *SyncIndex[V]) CountInRange(low, high []float64) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.idx.CountInRange(low, high)
}

// Search creates a fluent search builder. Each execution of the built query
// runs under a single read lock, so a Within box and the nearest-neighbor
// search see the same entries.
func (s *SyncIndex[V]) Search(query []float64) *SearchBuilder[V] {
	return newSearchBuilder(func(fn func(*Index[V])) {
		s.mu.RLock()
		defer s.mu.RUnlock()
		fn(s.idx)
	}, query)
}
