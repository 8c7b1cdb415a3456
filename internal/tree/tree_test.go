package tree

import (
	"math"
	"slices"
	"testing"

	"github.com/hupe1980/kdgo/distance"
	"github.com/hupe1980/kdgo/internal/searcher"
	"github.com/hupe1980/kdgo/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type dataset struct {
	name   string
	dim    int
	points [][]float64
	dups   bool
}

func datasets() []dataset {
	rng := testutil.NewRNG(4711)
	return []dataset{
		{name: "uniform-2d", dim: 2, points: rng.UniformPoints(2000, 2)},
		{name: "uniform-5d", dim: 5, points: rng.UniformRangePoints(1500, 5, -10, 10)},
		{name: "gaussian-3d", dim: 3, points: rng.GaussianPoints(1500, 3)},
		{name: "clustered-3d", dim: 3, points: rng.ClusteredPoints(1500, 3, 6, 0.02)},
		{name: "grid-2d", dim: 2, points: rng.Shuffle(testutil.GridPoints(30, 2))},
		{name: "duplicates-2d", dim: 2, points: rng.DuplicatePoints(1000, 2, 15), dups: true},
		{name: "line-1d", dim: 1, points: rng.UniformPoints(500, 1)},
	}
}

func mustBuild(t testing.TB, points [][]float64, dim int, cfg Config) *Tree {
	t.Helper()
	tr, err := Build(testutil.Flatten(points), dim, cfg)
	require.NoError(t, err)
	return tr
}

func sortedIDs(ids []uint32) []uint32 {
	return slices.Sorted(slices.Values(ids))
}

func TestBuild(t *testing.T) {
	policies := []SplitPolicy{SplitRoundRobin, SplitWidestExtent, SplitMaxVariance}

	for _, ds := range datasets() {
		for _, policy := range policies {
			for _, capacity := range []int{1, 4, 16} {
				cfg := Config{LeafCapacity: capacity, Policy: policy}
				tr := mustBuild(t, ds.points, ds.dim, cfg)

				require.NoError(t, tr.Verify(), "%s %s cap=%d", ds.name, policy, capacity)

				st := tr.Stats()
				assert.Equal(t, len(ds.points), st.Entries)
				assert.Equal(t, 2*st.Leaves-1, st.Nodes)
				if !ds.dups {
					assert.LessOrEqual(t, st.MaxLeafSize, capacity, "%s %s", ds.name, policy)
				}
			}
		}
	}
}

func TestBuildEdgeCases(t *testing.T) {
	t.Run("invalid dimension", func(t *testing.T) {
		_, err := Build(nil, 0, DefaultConfig)
		require.Error(t, err)
	})

	t.Run("empty", func(t *testing.T) {
		tr, err := Build(nil, 3, DefaultConfig)
		require.NoError(t, err)

		assert.Equal(t, 0, tr.Len())
		assert.True(t, tr.Bounds().IsEmpty())
		assert.NoError(t, tr.Verify())

		_, ok := tr.Find([]float64{0, 0, 0})
		assert.False(t, ok)

		c := searcher.NewCollector(1, math.Inf(1), distance.Space{})
		tr.Nearest([]float64{0, 0, 0}, c)
		assert.Equal(t, 0, c.Len())

		assert.Empty(t, tr.Range([]float64{-1, -1, -1}, []float64{1, 1, 1}, nil))
		assert.Empty(t, tr.Radius([]float64{0, 0, 0}, 10, distance.Space{}, nil))
	})

	t.Run("single entry", func(t *testing.T) {
		tr := mustBuild(t, [][]float64{{1, 2}}, 2, DefaultConfig)

		id, ok := tr.Find([]float64{1, 2})
		require.True(t, ok)
		assert.Equal(t, uint32(0), id)
		assert.Equal(t, 1, tr.Stats().Leaves)
	})

	t.Run("identical keys stay in one leaf", func(t *testing.T) {
		points := make([][]float64, 50)
		for i := range points {
			points[i] = []float64{7, 7, 7}
		}
		tr := mustBuild(t, points, 3, Config{LeafCapacity: 2})

		st := tr.Stats()
		assert.Equal(t, 1, st.Nodes)
		assert.Equal(t, 50, st.MaxLeafSize)

		id, ok := tr.Find([]float64{7, 7, 7})
		require.True(t, ok)
		assert.Equal(t, uint32(0), id)
		assert.Len(t, tr.FindAll([]float64{7, 7, 7}), 50)
	})

	t.Run("constant axis is skipped", func(t *testing.T) {
		points := make([][]float64, 64)
		for i := range points {
			points[i] = []float64{1, float64(i)}
		}
		tr := mustBuild(t, points, 2, Config{LeafCapacity: 2})

		require.NoError(t, tr.Verify())
		assert.LessOrEqual(t, tr.Stats().MaxLeafSize, 2)
	})

	t.Run("median equal to minimum", func(t *testing.T) {
		// Most coordinates equal the minimum, so the split moves up to 1.
		points := [][]float64{{0}, {0}, {0}, {0}, {0}, {1}, {2}}
		tr := mustBuild(t, points, 1, Config{LeafCapacity: 1})

		require.NoError(t, tr.Verify())
		root := tr.nodes[tr.root]
		assert.Equal(t, 1.0, root.split)
		assert.Equal(t, []uint32{0, 1, 2, 3, 4}, tr.order[root.start:tr.nodes[root.left].end])
	})

	t.Run("zero leaf capacity uses default", func(t *testing.T) {
		tr := mustBuild(t, testutil.NewRNG(1).UniformPoints(100, 2), 2, Config{})
		assert.LessOrEqual(t, tr.Stats().MaxLeafSize, DefaultConfig.LeafCapacity)
	})

	t.Run("bounds", func(t *testing.T) {
		tr := mustBuild(t, [][]float64{{1, 5}, {-2, 3}, {4, -1}}, 2, DefaultConfig)

		b := tr.Bounds()
		assert.Equal(t, []float64{-2, -1}, []float64(b.Lower))
		assert.Equal(t, []float64{4, 5}, []float64(b.Upper))
	})
}

func TestParallelBuild(t *testing.T) {
	rng := testutil.NewRNG(99)
	points := rng.UniformPoints(3*parallelThreshold, 3)

	seq := mustBuild(t, points, 3, Config{LeafCapacity: 8, Parallelism: 1})
	par := mustBuild(t, points, 3, Config{LeafCapacity: 8, Parallelism: 4})

	require.NoError(t, par.Verify())
	assert.Equal(t, seq.Stats(), par.Stats())
	assert.Equal(t, seq.order, par.order)

	for range 50 {
		q := rng.Point(3)

		cs := searcher.NewCollector(5, math.Inf(1), distance.Space{})
		seq.Nearest(q, cs)
		cp := searcher.NewCollector(5, math.Inf(1), distance.Space{})
		par.Nearest(q, cp)
		assert.Equal(t, cs.Results(), cp.Results())

		lower := []float64{q[0] - 0.1, q[1] - 0.1, q[2] - 0.1}
		upper := []float64{q[0] + 0.1, q[1] + 0.1, q[2] + 0.1}
		assert.Equal(t, seq.Range(lower, upper, nil), par.Range(lower, upper, nil))
	}
}

func TestFind(t *testing.T) {
	for _, ds := range datasets() {
		tr := mustBuild(t, ds.points, ds.dim, Config{LeafCapacity: 4})

		for i := 0; i < len(ds.points); i += 7 {
			key := ds.points[i]
			want := testutil.ExactFind(ds.points, key)

			id, ok := tr.Find(key)
			require.True(t, ok, ds.name)
			assert.Equal(t, want[0], id, ds.name)
			assert.Equal(t, want, tr.FindAll(key), ds.name)
		}

		missing := make([]float64, ds.dim)
		for i := range missing {
			missing[i] = 1e9
		}
		_, ok := tr.Find(missing)
		assert.False(t, ok, ds.name)
		assert.Empty(t, tr.FindAll(missing), ds.name)
	}
}

func TestFindSignedZero(t *testing.T) {
	tr := mustBuild(t, [][]float64{{0, 1}, {1, 1}, {2, 2}}, 2, Config{LeafCapacity: 1})

	id, ok := tr.Find([]float64{math.Copysign(0, -1), 1})
	require.True(t, ok)
	assert.Equal(t, uint32(0), id)
}

func TestFindWithin(t *testing.T) {
	rng := testutil.NewRNG(3)
	points := rng.UniformPoints(2000, 3)
	tr := mustBuild(t, points, 3, Config{LeafCapacity: 4})

	const eps = 0.01
	exact := func(q []float64) (uint32, bool) {
		for i, p := range points {
			ok := true
			for j := range p {
				if math.Abs(p[j]-q[j]) > eps {
					ok = false
					break
				}
			}
			if ok {
				return uint32(i), true
			}
		}
		return 0, false
	}

	for i := range 200 {
		q := slices.Clone(points[i*7])
		q[0] += 0.005
		wantID, wantOK := exact(q)

		id, ok := tr.FindWithin(q, eps)
		require.Equal(t, wantOK, ok)
		assert.Equal(t, wantID, id)
	}

	for range 100 {
		q := rng.Point(3)
		wantID, wantOK := exact(q)

		id, ok := tr.FindWithin(q, eps)
		require.Equal(t, wantOK, ok)
		if ok {
			assert.Equal(t, wantID, id)
		}
	}

	t.Run("zero tolerance is exact", func(t *testing.T) {
		id, ok := tr.FindWithin(points[10], 0)
		require.True(t, ok)
		assert.Equal(t, uint32(10), id)
	})
}

func TestNearest(t *testing.T) {
	rng := testutil.NewRNG(11)

	for _, ds := range datasets() {
		for _, policy := range []SplitPolicy{SplitRoundRobin, SplitWidestExtent, SplitMaxVariance} {
			tr := mustBuild(t, ds.points, ds.dim, Config{LeafCapacity: 4, Policy: policy})

			for range 30 {
				q := rng.Point(ds.dim)
				for _, k := range []int{1, 5} {
					want := testutil.ExactKNN(ds.points, q, k, math.Inf(1))

					c := searcher.NewCollector(k, math.Inf(1), distance.Space{})
					tr.Nearest(q, c)
					got := c.Results()

					require.Len(t, got, len(want), "%s %s", ds.name, policy)
					for i := range want {
						assert.Equal(t, want[i].ID, got[i].ID, "%s %s k=%d", ds.name, policy, k)
						assert.Equal(t, want[i].Distance, got[i].Distance)
					}
				}
			}
		}
	}
}

func TestNearestTies(t *testing.T) {
	// Query in the middle of four lattice points: all are equally close.
	points := testutil.GridPoints(10, 2)
	rng := testutil.NewRNG(5)
	shuffled := rng.Shuffle(points)
	tr := mustBuild(t, shuffled, 2, Config{LeafCapacity: 1})

	for _, q := range [][]float64{{4.5, 4.5}, {0.5, 8.5}, {3, 3.5}} {
		want := testutil.ExactKNN(shuffled, q, 3, math.Inf(1))

		c := searcher.NewCollector(3, math.Inf(1), distance.Space{})
		tr.Nearest(q, c)
		assert.Equal(t, testutil.IDs(want), idsOf(c.Results()), "query %v", q)
	}
}

func TestNearestLargeCoordinates(t *testing.T) {
	rng := testutil.NewRNG(29)
	points := rng.UniformRangePoints(2000, 2, -1e300, 1e300)
	points = append(points, []float64{math.MaxFloat64, -math.MaxFloat64})
	tr := mustBuild(t, points, 2, Config{LeafCapacity: 4})

	sp := distance.NewSpace(math.MaxFloat64)
	for range 30 {
		q := rng.Point(2)
		q[0], q[1] = (q[0]-0.5)*2e300, (q[1]-0.5)*2e300

		best := -1
		bestSq := math.Inf(1)
		for i, p := range points {
			if d := sp.SquaredL2(q, p); d < bestSq {
				best, bestSq = i, d
			}
		}
		require.False(t, math.IsInf(bestSq, 0))

		c := searcher.NewCollector(1, math.Inf(1), sp)
		tr.Nearest(q, c)
		got := c.Results()
		require.Len(t, got, 1)
		assert.Equal(t, uint32(best), got[0].ID)

		r := sp.Distance(bestSq) * 1.5
		var want []uint32
		for i, p := range points {
			if sp.SquaredL2(q, p) <= sp.SquaredRadius(r) {
				want = append(want, uint32(i))
			}
		}
		assert.Equal(t, want, sortedIDs(tr.Radius(q, r, sp, nil)))
	}

	t.Run("radius does not overflow", func(t *testing.T) {
		tr := mustBuild(t, [][]float64{{-1e300}, {1e300}, {1}}, 1, DefaultConfig)
		sp := distance.NewSpace(1e300)
		assert.Equal(t, []uint32{2}, tr.Radius([]float64{0}, 1e200, sp, nil))

		c := searcher.NewCollector(3, 1e200, sp)
		tr.Nearest([]float64{0}, c)
		assert.Equal(t, []uint32{2}, idsOf(c.Results()))
	})
}

func TestNearestMaxRadiusAndFilter(t *testing.T) {
	rng := testutil.NewRNG(13)
	points := rng.UniformPoints(3000, 2)
	tr := mustBuild(t, points, 2, DefaultConfig)

	t.Run("max radius", func(t *testing.T) {
		q := []float64{0.5, 0.5}
		r := 0.1
		want := testutil.ExactKNN(points, q, 1000, r*r)

		c := searcher.NewCollector(1000, r, distance.Space{})
		tr.Nearest(q, c)
		assert.Equal(t, testutil.IDs(want), idsOf(c.Results()))
	})

	t.Run("radius excludes everything", func(t *testing.T) {
		c := searcher.NewCollector(1, 1e-6, distance.Space{})
		tr.Nearest([]float64{5, 5}, c)
		assert.Equal(t, 0, c.Len())
	})

	t.Run("filter", func(t *testing.T) {
		even := func(id uint32) bool { return id%2 == 0 }
		var allowed [][]float64
		var ids []uint32
		for i, p := range points {
			if even(uint32(i)) {
				allowed = append(allowed, p)
				ids = append(ids, uint32(i))
			}
		}

		for range 20 {
			q := rng.Point(2)
			want := testutil.ExactKNN(allowed, q, 3, math.Inf(1))

			c := searcher.NewCollector(3, math.Inf(1), distance.Space{})
			c.Filter = even
			tr.Nearest(q, c)

			got := idsOf(c.Results())
			require.Len(t, got, 3)
			for i, w := range want {
				assert.Equal(t, ids[w.ID], got[i])
			}
		}
	})
}

func TestNearestPrunes(t *testing.T) {
	rng := testutil.NewRNG(17)
	points := rng.UniformPoints(10000, 2)
	tr := mustBuild(t, points, 2, DefaultConfig)

	var st searcher.Stats
	for range 100 {
		c := searcher.NewCollector(1, math.Inf(1), distance.Space{})
		c.Stats = &st
		tr.Nearest(rng.Point(2), c)
	}

	avg := st.EntriesCompared / 100
	assert.Less(t, avg, len(points)/20, "average entries compared: %d", avg)
	assert.Positive(t, st.LeavesVisited)
}

func TestRadius(t *testing.T) {
	rng := testutil.NewRNG(19)

	for _, ds := range datasets() {
		tr := mustBuild(t, ds.points, ds.dim, Config{LeafCapacity: 6})

		for range 20 {
			q := rng.Point(ds.dim)
			for _, r := range []float64{0, 0.05, 0.3} {
				want := testutil.ExactRadius(ds.points, q, r)
				got := tr.Radius(q, r, distance.Space{}, nil)
				assert.Equal(t, want, sortedIDs(got), "%s r=%v", ds.name, r)
			}
		}
	}

	t.Run("exact hit at zero radius", func(t *testing.T) {
		points := testutil.GridPoints(5, 2)
		tr := mustBuild(t, points, 2, Config{LeafCapacity: 1})
		assert.Equal(t, []uint32{7}, tr.Radius([]float64{1, 2}, 0, distance.Space{}, nil))
	})
}

func TestRange(t *testing.T) {
	rng := testutil.NewRNG(23)

	for _, ds := range datasets() {
		tr := mustBuild(t, ds.points, ds.dim, Config{LeafCapacity: 4})
		b := tr.Bounds()

		for range 40 {
			lower := make([]float64, ds.dim)
			upper := make([]float64, ds.dim)
			for a := range ds.dim {
				x := b.Lower[a] + rng.Float64()*(b.Upper[a]-b.Lower[a])
				y := b.Lower[a] + rng.Float64()*(b.Upper[a]-b.Lower[a])
				lower[a], upper[a] = min(x, y), max(x, y)
			}

			want := testutil.ExactRange(ds.points, lower, upper)
			got := tr.Range(lower, upper, nil)
			assert.Equal(t, want, sortedIDs(got), ds.name)
			assert.Equal(t, len(want), tr.CountRange(lower, upper, nil), ds.name)
		}

		all := tr.Range(b.Lower, b.Upper, nil)
		assert.Len(t, all, len(ds.points), ds.name)
	}
}

func TestRangeBoundariesInclusive(t *testing.T) {
	points := testutil.GridPoints(10, 2)
	tr := mustBuild(t, points, 2, Config{LeafCapacity: 1})

	t.Run("degenerate box", func(t *testing.T) {
		got := tr.Range([]float64{3, 4}, []float64{3, 4}, nil)
		assert.Equal(t, []uint32{34}, got)
	})

	t.Run("edges on split values", func(t *testing.T) {
		got := tr.Range([]float64{2, 2}, []float64{4, 4}, nil)
		assert.Equal(t, testutil.ExactRange(points, []float64{2, 2}, []float64{4, 4}), sortedIDs(got))
		assert.Len(t, got, 9)
	})

	t.Run("outside bounds", func(t *testing.T) {
		assert.Empty(t, tr.Range([]float64{20, 20}, []float64{30, 30}, nil))
		assert.Empty(t, tr.Range([]float64{-5, 0}, []float64{-1, 9}, nil))
	})

	t.Run("output order is stable", func(t *testing.T) {
		a := tr.Range([]float64{1, 1}, []float64{8, 8}, nil)
		b := tr.Range([]float64{1, 1}, []float64{8, 8}, nil)
		assert.Equal(t, a, b)
	})
}

func TestRangePrunes(t *testing.T) {
	rng := testutil.NewRNG(29)
	points := rng.UniformPoints(10000, 2)
	tr := mustBuild(t, points, 2, DefaultConfig)

	var st searcher.Stats
	got := tr.Range([]float64{0.4, 0.4}, []float64{0.5, 0.5}, &st)

	assert.Equal(t, testutil.ExactRange(points, []float64{0.4, 0.4}, []float64{0.5, 0.5}), sortedIDs(got))
	assert.Less(t, st.EntriesCompared, len(points)/10)
	assert.Less(t, st.NodesVisited, tr.Stats().Nodes/5)
}

func TestSplitPolicyString(t *testing.T) {
	assert.Equal(t, "RoundRobin", SplitRoundRobin.String())
	assert.Equal(t, "WidestExtent", SplitWidestExtent.String())
	assert.Equal(t, "MaxVariance", SplitMaxVariance.String())
	assert.Equal(t, "Unknown(9)", SplitPolicy(9).String())
}

func idsOf(cs []searcher.Candidate) []uint32 {
	out := make([]uint32, len(cs))
	for i, c := range cs {
		out[i] = c.ID
	}
	return out
}

func BenchmarkBuild(b *testing.B) {
	points := testutil.NewRNG(1).UniformPoints(100000, 3)
	coords := testutil.Flatten(points)

	for _, bc := range []struct {
		name string
		par  int
	}{{"sequential", 1}, {"parallel", 8}} {
		b.Run(bc.name, func(b *testing.B) {
			for b.Loop() {
				if _, err := Build(coords, 3, Config{LeafCapacity: 8, Parallelism: bc.par}); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkNearest(b *testing.B) {
	rng := testutil.NewRNG(1)
	tr := mustBuild(b, rng.UniformPoints(100000, 3), 3, DefaultConfig)
	q := rng.Point(3)

	for b.Loop() {
		c := searcher.NewCollector(10, math.Inf(1), distance.Space{})
		tr.Nearest(q, c)
	}
}
