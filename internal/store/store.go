package store

import "github.com/hupe1980/kdgo/distance"

// Store is an append-only columnar container of (key, value) entries.
type Store[V any] struct {
	dim    int
	coords []float64
	values []V
	maxAbs float64 // largest absolute coordinate appended
}

// New creates an empty store for dim-dimensional keys.
func New[V any](dim int) *Store[V] {
	return &Store[V]{dim: dim}
}

// Dim returns the key dimensionality.
func (s *Store[V]) Dim() int { return s.dim }

// Len returns the number of entries.
func (s *Store[V]) Len() int { return len(s.values) }

// Append copies key and stores it with value. It returns the entry ID, which
// is the insertion sequence number. The key must already be validated.
func (s *Store[V]) Append(key []float64, value V) uint32 {
	id := uint32(len(s.values))
	s.coords = append(s.coords, key[:s.dim]...)
	s.values = append(s.values, value)
	s.maxAbs = max(s.maxAbs, distance.MaxAbs(key[:s.dim]))
	return id
}

// Grow ensures capacity for n more entries.
func (s *Store[V]) Grow(n int) {
	if n <= 0 {
		return
	}
	if free := cap(s.values) - len(s.values); free < n {
		values := make([]V, len(s.values), len(s.values)+n)
		copy(values, s.values)
		s.values = values

		coords := make([]float64, len(s.coords), len(s.coords)+n*s.dim)
		copy(coords, s.coords)
		s.coords = coords
	}
}

// Reset drops all entries. Snapshots taken before Reset remain readable.
func (s *Store[V]) Reset() {
	s.coords = nil
	s.values = nil
	s.maxAbs = 0
}

// Snapshot returns a read-only view of the entries present now.
func (s *Store[V]) Snapshot() Snapshot[V] {
	n := len(s.values)
	return Snapshot[V]{
		dim:    s.dim,
		coords: s.coords[:n*s.dim : n*s.dim],
		values: s.values[:n:n],
		maxAbs: s.maxAbs,
	}
}

// Snapshot provides a read-only view of the store at a specific point in time.
type Snapshot[V any] struct {
	dim    int
	coords []float64
	values []V
	maxAbs float64
}

// Dim returns the key dimensionality.
func (v Snapshot[V]) Dim() int { return v.dim }

// Len returns the number of entries in the snapshot.
func (v Snapshot[V]) Len() int { return len(v.values) }

// Coords returns the flat coordinate array; entry i occupies [i*dim, (i+1)*dim).
func (v Snapshot[V]) Coords() []float64 { return v.coords }

// Key returns the key of entry id. The slice aliases the snapshot and must
// not be modified.
func (v Snapshot[V]) Key(id uint32) []float64 {
	off := int(id) * v.dim
	return v.coords[off : off+v.dim : off+v.dim]
}

// MaxAbs returns the largest absolute coordinate of any entry in the snapshot.
func (v Snapshot[V]) MaxAbs() float64 { return v.maxAbs }

// Space returns the distance space for queries against the snapshot with
// the given query point.
func (v Snapshot[V]) Space(q []float64) distance.Space {
	return distance.NewSpace(max(v.maxAbs, distance.MaxAbs(q)))
}

// Value returns the value of entry id.
func (v Snapshot[V]) Value(id uint32) V { return v.values[id] }
