package kdgo

import (
	"sync"
	"testing"

	"github.com/hupe1980/kdgo/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSyncIndexConcurrent(t *testing.T) {
	s, err := NewSync[int](3, WithQueryCache(32))
	require.NoError(t, err)

	rng := testutil.NewRNG(8)
	const writers, perWriter = 4, 500

	var wg sync.WaitGroup
	for w := range writers {
		points := rng.UniformPoints(perWriter, 3)
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i, p := range points {
				assert.NoError(t, s.Add(p, w*perWriter+i))
				if i%100 == 0 {
					assert.NoError(t, s.Build())
				}
			}
		}()
	}
	for range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 200 {
				q := rng.Point(3)
				_, _, err := s.FindClosest(q)
				assert.NoError(t, err)
				_, err = s.AllValuesInRange([]float64{0, 0, 0}, q)
				assert.NoError(t, err)
				_, err = s.Search(q).KNN(3).Execute()
				assert.NoError(t, err)
			}
		}()
	}
	wg.Wait()

	require.NoError(t, s.Build())
	assert.Equal(t, writers*perWriter, s.Size())
	assert.Equal(t, writers*perWriter, s.Indexed())
	assert.True(t, s.Built())

	n, err := s.CountInRange([]float64{0, 0, 0}, []float64{1, 1, 1})
	require.NoError(t, err)
	assert.Equal(t, writers*perWriter, n)
}

func TestSyncIndexDelegates(t *testing.T) {
	s, err := NewSync[string](2)
	require.NoError(t, err)
	assert.Equal(t, 2, s.Dimension())

	require.NoError(t, s.AddBatch([]Item[string]{
		{Key: []float64{0, 0}, Value: "a"},
		{Key: []float64{1, 1}, Value: "b"},
		{Key: []float64{1, 1}, Value: "b2"},
	}))
	require.NoError(t, s.Build())

	v, ok, err := s.Find([]float64{1, 1})
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "b", v)

	v, ok, err = s.FindWithTolerance([]float64{0.01, 0}, 0.1)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "a", v)

	all, err := s.FindAll([]float64{1, 1})
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "b2"}, all)

	closest, err := s.FindClosestAll([]float64{0.9, 1.1})
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "b2"}, values(closest))

	res, err := s.KNN(2, []float64{0, 0})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, values(res))

	pts, err := s.AllPointsInRadius([]float64{0, 0}, 1.5)
	require.NoError(t, err)
	assert.Len(t, pts, 3)

	ps, err := s.AllPointsInRange([]float64{0.5, 0.5}, []float64{2, 2})
	require.NoError(t, err)
	assert.Len(t, ps, 2)

	bm, err := s.RangeIDs([]float64{0.5, 0.5}, []float64{2, 2})
	require.NoError(t, err)
	assert.Equal(t, []uint32{1, 2}, bm.ToArray())

	assert.Equal(t, 3, s.Stats().IndexedEntries)

	s.Clear()
	assert.Equal(t, 0, s.Size())
	_, err = s.Search([]float64{0, 0}).First()
	assert.ErrorIs(t, err, ErrEmptyTree)
}

func TestSyncSearchWithinSeesOneState(t *testing.T) {
	s, err := NewSync[string](2)
	require.NoError(t, err)

	outside := func(i int) Item[string] {
		return Item[string]{Key: []float64{5 + float64(i), 5}, Value: "out"}
	}
	inside := Item[string]{Key: []float64{0.5, 0.5}, Value: "in"}

	// The entry inside the box alternates between the first and the last ID,
	// so a box computed against one layout names an outside entry in the other.
	layouts := make([][]Item[string], 2)
	layouts[0] = append(layouts[0], inside)
	for i := range 10 {
		layouts[0] = append(layouts[0], outside(i))
		layouts[1] = append(layouts[1], outside(i))
	}
	layouts[1] = append(layouts[1], inside)

	stop := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; ; i++ {
			select {
			case <-stop:
				return
			default:
			}
			s.Clear()
			assert.NoError(t, s.AddBatch(layouts[i%2]))
			assert.NoError(t, s.Build())
		}
	}()

	for range 2000 {
		res, err := s.Search([]float64{0, 0}).
			Within([]float64{0, 0}, []float64{1, 1}).
			KNN(5).
			Execute()
		require.NoError(t, err)
		for _, r := range res {
			require.Equal(t, "in", r.Value)
		}
	}
	close(stop)
	wg.Wait()
}

func TestInstallRejectsStaleBuilds(t *testing.T) {
	idx := newTestIndex[string](t, 1)
	require.NoError(t, idx.Add([]float64{1}, "a"))

	t.Run("cleared during build", func(t *testing.T) {
		in := idx.prepareBuild()
		tr, err := idx.buildTree(in)
		require.NoError(t, err)

		idx.Clear()
		assert.False(t, idx.install(in, tr))
		assert.False(t, idx.Built())
	})

	t.Run("older snapshot", func(t *testing.T) {
		require.NoError(t, idx.Add([]float64{1}, "a"))
		old := idx.prepareBuild()
		oldTree, err := idx.buildTree(old)
		require.NoError(t, err)

		require.NoError(t, idx.Add([]float64{2}, "b"))
		require.NoError(t, idx.Build())

		assert.False(t, idx.install(old, oldTree))
		assert.Equal(t, 2, idx.Indexed())
	})
}
