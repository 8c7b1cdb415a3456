package tree

import (
	"errors"
	"fmt"
	"slices"

	"github.com/hupe1980/kdgo/geom"
)

type node struct {
	split float64
	axis  int32
	left  int32 // -1 for leaves
	right int32
	start int32 // the subtree's entries are order[start:end]
	end   int32
}

func (n *node) leaf() bool { return n.left < 0 }

// Tree is an immutable k-d tree over a snapshot of entry coordinates.
type Tree struct {
	dim    int
	coords []float64
	order  []uint32
	nodes  []node
	root   int32 // -1 when empty
	bounds geom.Box
}

// Len returns the number of entries in the tree.
func (t *Tree) Len() int { return len(t.order) }

// Dim returns the key dimensionality.
func (t *Tree) Dim() int { return t.dim }

// Bounds returns the bounding box of all entries. It is empty (inverted)
// for an empty tree.
func (t *Tree) Bounds() geom.Box { return t.bounds.Clone() }

func (t *Tree) point(id uint32) []float64 {
	off := int(id) * t.dim
	return t.coords[off : off+t.dim]
}

func (t *Tree) coord(id uint32, axis int) float64 {
	return t.coords[int(id)*t.dim+axis]
}

// Stats describes the shape of a tree.
type Stats struct {
	Entries     int
	Nodes       int
	Leaves      int
	MaxDepth    int
	MaxLeafSize int
}

// Stats walks the tree and reports its shape.
func (t *Tree) Stats() Stats {
	st := Stats{Entries: len(t.order), Nodes: len(t.nodes)}
	if t.root < 0 {
		return st
	}

	type frame struct {
		idx   int32
		depth int
	}
	stack := []frame{{t.root, 0}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		st.MaxDepth = max(st.MaxDepth, f.depth)
		nd := &t.nodes[f.idx]
		if nd.leaf() {
			st.Leaves++
			st.MaxLeafSize = max(st.MaxLeafSize, int(nd.end-nd.start))
			continue
		}
		stack = append(stack, frame{nd.right, f.depth + 1}, frame{nd.left, f.depth + 1})
	}
	return st
}

// Verify checks the structural invariants: every entry appears exactly once,
// each split node's children partition its run, and every entry lies on the
// side of each ancestor split that its coordinates dictate.
func (t *Tree) Verify() error {
	if t.root < 0 {
		if len(t.order) != 0 {
			return fmt.Errorf("tree: empty root with %d entries", len(t.order))
		}
		if !t.bounds.IsEmpty() {
			return errors.New("tree: empty tree with non-empty bounds")
		}
		return nil
	}

	seen := make([]bool, len(t.order))
	for _, id := range t.order {
		if int(id) >= len(seen) || seen[id] {
			return fmt.Errorf("tree: entry %d duplicated or out of range", id)
		}
		seen[id] = true
	}

	// Cells are [lower, upper] per axis; the upper bound becomes exclusive
	// once a left descent has set it to a split value.
	var check func(idx int32, lower, upper []float64, strict []bool) error
	check = func(idx int32, lower, upper []float64, strict []bool) error {
		nd := &t.nodes[idx]
		if nd.start >= nd.end {
			return fmt.Errorf("tree: node %d has an empty run", idx)
		}
		if nd.leaf() {
			for _, id := range t.order[nd.start:nd.end] {
				p := t.point(id)
				for a := range t.dim {
					if p[a] < lower[a] || p[a] > upper[a] || strict[a] && p[a] == upper[a] {
						return fmt.Errorf("tree: entry %d misplaced on axis %d", id, a)
					}
				}
			}
			return nil
		}
		l, r := &t.nodes[nd.left], &t.nodes[nd.right]
		if l.start != nd.start || l.end != r.start || r.end != nd.end {
			return fmt.Errorf("tree: node %d children do not partition its run", idx)
		}
		axis := int(nd.axis)

		lu, ls := slices.Clone(upper), slices.Clone(strict)
		lu[axis], ls[axis] = nd.split, true
		if err := check(nd.left, lower, lu, ls); err != nil {
			return err
		}
		rl := slices.Clone(lower)
		rl[axis] = nd.split
		return check(nd.right, rl, upper, strict)
	}

	return check(t.root, t.bounds.Lower.Clone(), t.bounds.Upper.Clone(), make([]bool, t.dim))
}
