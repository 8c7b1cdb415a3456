package tree

import (
	"github.com/hupe1980/kdgo/geom"
	"github.com/hupe1980/kdgo/internal/searcher"
)

// Range returns the IDs of all entries inside the inclusive box
// [lower, upper], in traversal order: left subtree before right, each leaf
// bucket in ascending ID order.
func (t *Tree) Range(lower, upper []float64, st *searcher.Stats) []uint32 {
	var out []uint32
	t.walkRange(lower, upper, st, func(ids []uint32) {
		out = append(out, ids...)
	}, func(id uint32) {
		out = append(out, id)
	})
	return out
}

// CountRange returns the number of entries inside [lower, upper].
func (t *Tree) CountRange(lower, upper []float64, st *searcher.Stats) int {
	n := 0
	t.walkRange(lower, upper, st, func(ids []uint32) {
		n += len(ids)
	}, func(uint32) {
		n++
	})
	return n
}

type rangeWalker struct {
	t     *Tree
	query geom.Box
	// cell of the current node; its upper corner is exclusive on axes where
	// a left descent has narrowed it, which only makes containment stricter.
	cell geom.Box
	st   *searcher.Stats
	all  func([]uint32)
	one  func(uint32)
}

func (t *Tree) walkRange(lower, upper []float64, st *searcher.Stats, all func([]uint32), one func(uint32)) {
	query := geom.Box{Lower: lower, Upper: upper}
	if t.root < 0 || !query.Overlaps(t.bounds) {
		return
	}
	w := &rangeWalker{
		t:     t,
		query: query,
		cell:  t.bounds.Clone(),
		st:    st,
		all:   all,
		one:   one,
	}
	w.walk(t.root)
}

func (w *rangeWalker) walk(idx int32) {
	nd := &w.t.nodes[idx]
	if w.st != nil {
		w.st.NodesVisited++
	}

	if w.query.ContainsBox(w.cell) {
		w.all(w.t.order[nd.start:nd.end])
		return
	}

	if nd.leaf() {
		if w.st != nil {
			w.st.LeavesVisited++
			w.st.EntriesCompared += int(nd.end - nd.start)
		}
		for _, id := range w.t.order[nd.start:nd.end] {
			if w.query.Contains(w.t.point(id)) {
				w.one(id)
			}
		}
		return
	}

	axis := nd.axis
	if w.query.Lower[axis] < nd.split {
		saved := w.cell.Upper[axis]
		w.cell.Upper[axis] = nd.split
		w.walk(nd.left)
		w.cell.Upper[axis] = saved
	}
	if w.query.Upper[axis] >= nd.split {
		saved := w.cell.Lower[axis]
		w.cell.Lower[axis] = nd.split
		w.walk(nd.right)
		w.cell.Lower[axis] = saved
	}
}
