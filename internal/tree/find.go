package tree

import "github.com/hupe1980/kdgo/geom"

// Find returns the lowest ID whose key equals key exactly. Equal keys always
// take the same path, so only one leaf is examined.
func (t *Tree) Find(key []float64) (uint32, bool) {
	if t.root < 0 {
		return 0, false
	}
	nd := t.descend(key)
	for _, id := range t.order[nd.start:nd.end] {
		if t.equal(id, key) {
			return id, true
		}
	}
	return 0, false
}

// FindAll returns the IDs of every entry whose key equals key, ascending.
func (t *Tree) FindAll(key []float64) []uint32 {
	if t.root < 0 {
		return nil
	}
	nd := t.descend(key)
	var out []uint32
	for _, id := range t.order[nd.start:nd.end] {
		if t.equal(id, key) {
			out = append(out, id)
		}
	}
	return out
}

// FindWithin returns the lowest ID whose key differs from key by at most eps
// on every axis. Both children are searched when the split lies within eps.
func (t *Tree) FindWithin(key []float64, eps float64) (uint32, bool) {
	if t.root < 0 {
		return 0, false
	}

	best, found := uint32(0), false
	stack := []int32{t.root}
	for len(stack) > 0 {
		nd := &t.nodes[stack[len(stack)-1]]
		stack = stack[:len(stack)-1]

		if nd.leaf() {
			for _, id := range t.order[nd.start:nd.end] {
				if found && id >= best {
					break
				}
				if t.within(id, key, eps) {
					best, found = id, true
					break
				}
			}
			continue
		}

		c := key[nd.axis]
		if c+eps >= nd.split {
			stack = append(stack, nd.right)
		}
		if c-eps < nd.split {
			stack = append(stack, nd.left)
		}
	}
	return best, found
}

func (t *Tree) descend(key []float64) *node {
	nd := &t.nodes[t.root]
	for !nd.leaf() {
		if key[nd.axis] < nd.split {
			nd = &t.nodes[nd.left]
		} else {
			nd = &t.nodes[nd.right]
		}
	}
	return nd
}

func (t *Tree) equal(id uint32, key []float64) bool {
	return geom.Point(t.point(id)).Equal(key)
}

func (t *Tree) within(id uint32, key []float64, eps float64) bool {
	return geom.Point(t.point(id)).EqualWithin(key, eps)
}
