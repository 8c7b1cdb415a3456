package tree

import (
	"github.com/hupe1980/kdgo/distance"
	"github.com/hupe1980/kdgo/internal/searcher"
)

// Nearest offers the entries that can still improve c, visiting the child on
// the query's side of each split first. A far child is entered only while
// the squared gap to its split plane is admitted by the collector's bound.
// Distances are measured in c.Space().
func (t *Tree) Nearest(q []float64, c *searcher.Collector) {
	sp := c.Space()
	if t.root < 0 || !c.Admits(sp.SquaredBoxGap(q, t.bounds.Lower, t.bounds.Upper)) {
		return
	}
	t.nearest(t.root, q, sp, c)
}

func (t *Tree) nearest(idx int32, q []float64, sp distance.Space, c *searcher.Collector) {
	nd := &t.nodes[idx]
	if c.Stats != nil {
		c.Stats.NodesVisited++
	}

	if nd.leaf() {
		if c.Stats != nil {
			c.Stats.LeavesVisited++
		}
		for _, id := range t.order[nd.start:nd.end] {
			c.Offer(id, sp.SquaredL2Bounded(q, t.point(id), c.Bound()))
		}
		return
	}

	near, far := nd.left, nd.right
	if q[nd.axis] >= nd.split {
		near, far = far, near
	}

	t.nearest(near, q, sp, c)
	if c.Admits(sp.SquaredAxisGap(q, int(nd.axis), nd.split)) {
		t.nearest(far, q, sp, c)
	}
}

// Radius returns the IDs of all entries within Euclidean distance radius of
// q, inclusive, in traversal order. Distances are measured in sp.
func (t *Tree) Radius(q []float64, radius float64, sp distance.Space, st *searcher.Stats) []uint32 {
	sqRadius := sp.SquaredRadius(radius)
	if t.root < 0 || sp.SquaredBoxGap(q, t.bounds.Lower, t.bounds.Upper) > sqRadius {
		return nil
	}

	var out []uint32
	var walk func(idx int32)
	walk = func(idx int32) {
		nd := &t.nodes[idx]
		if st != nil {
			st.NodesVisited++
		}
		if nd.leaf() {
			if st != nil {
				st.LeavesVisited++
				st.EntriesCompared += int(nd.end - nd.start)
			}
			for _, id := range t.order[nd.start:nd.end] {
				if sp.SquaredL2Bounded(q, t.point(id), sqRadius) <= sqRadius {
					out = append(out, id)
				}
			}
			return
		}

		gap := sp.SquaredAxisGap(q, int(nd.axis), nd.split)
		if q[nd.axis] < nd.split || gap <= sqRadius {
			walk(nd.left)
		}
		if q[nd.axis] >= nd.split || gap <= sqRadius {
			walk(nd.right)
		}
	}
	walk(t.root)
	return out
}
