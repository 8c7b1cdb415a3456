package testutil

import (
	"math"
	"math/rand"
	"slices"
	"sync"

	"github.com/hupe1980/kdgo/distance"
)

// SearchResult represents a search result.
type SearchResult struct {
	ID       uint32
	Distance float64 // squared L2
}

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Float64 returns a pseudo-random number in [0.0,1.0).
func (r *RNG) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Float64()
}

// FillUniform fills dst with random values in range [0, 1).
// Locks only once per call (preferred over calling Float64 in a loop).
func (r *RNG) FillUniform(dst []float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range dst {
		dst[i] = r.rand.Float64()
	}
}

// Point returns a single point with coordinates in [0, 1).
func (r *RNG) Point(dim int) []float64 {
	p := make([]float64, dim)
	r.FillUniform(p)
	return p
}

// UniformPoints generates random points with coordinates in range [0, 1).
// Uses a single backing array for efficiency.
func (r *RNG) UniformPoints(num, dim int) [][]float64 {
	return r.UniformRangePoints(num, dim, 0, 1)
}

// UniformRangePoints generates random points with coordinates in [minVal, maxVal).
func (r *RNG) UniformRangePoints(num, dim int, minVal, maxVal float64) [][]float64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	data := make([]float64, num*dim)
	points := make([][]float64, num)
	span := maxVal - minVal

	for i := range num {
		p := data[i*dim : (i+1)*dim : (i+1)*dim]
		for j := range p {
			p[j] = minVal + r.rand.Float64()*span
		}
		points[i] = p
	}

	return points
}

// GaussianPoints generates points with coordinates from a standard normal distribution.
func (r *RNG) GaussianPoints(num, dim int) [][]float64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	data := make([]float64, num*dim)
	points := make([][]float64, num)

	for i := range num {
		p := data[i*dim : (i+1)*dim : (i+1)*dim]
		for j := range p {
			p[j] = r.rand.NormFloat64()
		}
		points[i] = p
	}

	return points
}

// ClusteredPoints generates points clustered around random centroids in
// [0, 1)^dim. Useful for exercising unbalanced splits.
func (r *RNG) ClusteredPoints(num, dim, clusters int, spread float64) [][]float64 {
	// UniformPoints takes the lock, so centroids are drawn before we hold it.
	centroids := r.UniformPoints(clusters, dim)

	r.mu.Lock()
	defer r.mu.Unlock()

	data := make([]float64, num*dim)
	points := make([][]float64, num)

	for i := range num {
		centroid := centroids[i%clusters]
		p := data[i*dim : (i+1)*dim : (i+1)*dim]
		for j := range dim {
			p[j] = centroid[j] + r.rand.NormFloat64()*spread
		}
		points[i] = p
	}

	return points
}

// GridPoints generates points on an integer lattice with side coordinates
// 0..side-1 in row-major order. Lattices produce many ties in distance and
// many coordinates equal to split values.
func GridPoints(side, dim int) [][]float64 {
	n := 1
	for range dim {
		n *= side
	}

	points := make([][]float64, n)
	for i := range n {
		p := make([]float64, dim)
		rem := i
		for j := dim - 1; j >= 0; j-- {
			p[j] = float64(rem % side)
			rem /= side
		}
		points[i] = p
	}
	return points
}

// DuplicatePoints generates num points drawn from a pool of distinct keys.
// Keys are picked with a Zipf skew so a few keys repeat heavily.
func (r *RNG) DuplicatePoints(num, dim, distinct int) [][]float64 {
	pool := r.UniformPoints(distinct, dim)

	r.mu.Lock()
	defer r.mu.Unlock()

	points := make([][]float64, num)
	for i := range num {
		points[i] = slices.Clone(pool[r.zipfLocked(distinct, 1.1)])
	}
	return points
}

// Zipf returns a Zipfian-distributed value in [0, n).
// Uses Zipf's law: P(k) ∝ 1/k^s where s is the skew parameter.
func (r *RNG) Zipf(n int, s float64) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.zipfLocked(n, s)
}

// zipfLocked is the internal implementation (caller must hold lock).
func (r *RNG) zipfLocked(n int, s float64) int {
	if n <= 1 {
		return 0
	}

	var hns float64
	for i := 1; i <= n; i++ {
		hns += 1.0 / math.Pow(float64(i), s)
	}

	// Inverse transform over the harmonic weights.
	u := r.rand.Float64() * hns
	var cumulative float64
	for k := 1; k <= n; k++ {
		cumulative += 1.0 / math.Pow(float64(k), s)
		if u <= cumulative {
			return k - 1
		}
	}

	return n - 1
}

// Shuffle returns a copy of points in random order.
func (r *RNG) Shuffle(points [][]float64) [][]float64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := slices.Clone(points)
	r.rand.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	return out
}

// ExactNearest returns the nearest point to query, lowest index on ties.
func ExactNearest(points [][]float64, query []float64) (SearchResult, bool) {
	res := ExactKNN(points, query, 1, math.Inf(1))
	if len(res) == 0 {
		return SearchResult{}, false
	}
	return res[0], true
}

// ExactKNN returns the k nearest points to query within squared distance
// maxSquared, ordered by distance and then index.
func ExactKNN(points [][]float64, query []float64, k int, maxSquared float64) []SearchResult {
	results := make([]SearchResult, 0, len(points))
	for i, p := range points {
		d := distance.SquaredL2(query, p)
		if d <= maxSquared {
			results = append(results, SearchResult{ID: uint32(i), Distance: d})
		}
	}

	slices.SortStableFunc(results, func(a, b SearchResult) int {
		switch {
		case a.Distance < b.Distance:
			return -1
		case a.Distance > b.Distance:
			return 1
		default:
			return 0
		}
	})

	if len(results) > k {
		results = results[:k]
	}
	return results
}

// ExactRadius returns the indices of points within radius of query, ascending.
func ExactRadius(points [][]float64, query []float64, radius float64) []uint32 {
	var out []uint32
	for i, p := range points {
		if distance.SquaredL2(query, p) <= radius*radius {
			out = append(out, uint32(i))
		}
	}
	return out
}

// ExactRange returns the indices of points inside the inclusive box
// [lower, upper], ascending.
func ExactRange(points [][]float64, lower, upper []float64) []uint32 {
	var out []uint32
outer:
	for i, p := range points {
		for j, c := range p {
			if c < lower[j] || c > upper[j] {
				continue outer
			}
		}
		out = append(out, uint32(i))
	}
	return out
}

// ExactFind returns the indices of points equal to key, ascending.
func ExactFind(points [][]float64, key []float64) []uint32 {
	var out []uint32
	for i, p := range points {
		if slices.Equal(p, key) {
			out = append(out, uint32(i))
		}
	}
	return out
}

// IDs returns the IDs of results in order.
func IDs(results []SearchResult) []uint32 {
	out := make([]uint32, len(results))
	for i, r := range results {
		out[i] = r.ID
	}
	return out
}

// Flatten concatenates points into a single coordinate slice.
func Flatten(points [][]float64) []float64 {
	if len(points) == 0 {
		return nil
	}
	out := make([]float64, 0, len(points)*len(points[0]))
	for _, p := range points {
		out = append(out, p...)
	}
	return out
}
