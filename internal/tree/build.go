package tree

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"sync/atomic"

	"github.com/hupe1980/kdgo/geom"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/stat"
)

// ErrTooManyEntries is returned when the entry count does not fit the node arena.
var ErrTooManyEntries = errors.New("too many entries for a single tree")

// MaxEntries is the largest number of entries a tree can hold; the arena
// needs up to 2n-1 int32-addressed nodes.
const MaxEntries = math.MaxInt32 / 2

// parallelThreshold is the minimum subtree size handed to another goroutine.
const parallelThreshold = 4096

// SplitPolicy selects the split axis at each node.
type SplitPolicy int

const (
	// SplitRoundRobin cycles through the axes by depth (depth mod D).
	SplitRoundRobin SplitPolicy = iota
	// SplitWidestExtent splits the axis with the largest bounding-box extent.
	SplitWidestExtent
	// SplitMaxVariance splits the axis with the largest coordinate variance.
	SplitMaxVariance
)

func (p SplitPolicy) String() string {
	switch p {
	case SplitRoundRobin:
		return "RoundRobin"
	case SplitWidestExtent:
		return "WidestExtent"
	case SplitMaxVariance:
		return "MaxVariance"
	default:
		return fmt.Sprintf("Unknown(%d)", p)
	}
}

// Config controls tree construction.
type Config struct {
	// LeafCapacity is the largest bucket the builder leaves unsplit.
	LeafCapacity int
	// Policy chooses the split axis.
	Policy SplitPolicy
	// Parallelism is the maximum number of goroutines building subtrees.
	// Values <= 1 build sequentially.
	Parallelism int
}

// DefaultConfig is the configuration used for zero fields.
var DefaultConfig = Config{
	LeafCapacity: 8,
	Policy:       SplitRoundRobin,
	Parallelism:  1,
}

type builder struct {
	t    *Tree
	cfg  Config
	ids  []uint32  // partition scratch, indexed like t.order
	vals []float64 // coordinate scratch, indexed like t.order
	next atomic.Int32
	g    *errgroup.Group
}

// Build constructs a tree over the first len(coords)/dim entries of coords.
// The tree references coords without copying; the caller must not modify
// that range afterwards.
func Build(coords []float64, dim int, cfg Config) (*Tree, error) {
	if dim < 1 {
		return nil, fmt.Errorf("invalid dimension: %d", dim)
	}
	if cfg.LeafCapacity < 1 {
		cfg.LeafCapacity = DefaultConfig.LeafCapacity
	}

	n := len(coords) / dim
	if n > MaxEntries {
		return nil, ErrTooManyEntries
	}

	t := &Tree{
		dim:    dim,
		coords: coords[: n*dim : n*dim],
		root:   -1,
		bounds: geom.EmptyBox(dim),
	}
	if n == 0 {
		return t, nil
	}

	t.order = make([]uint32, n)
	for i := range t.order {
		t.order[i] = uint32(i)
		t.bounds.Grow(t.point(uint32(i)))
	}
	t.nodes = make([]node, 2*n-1)

	b := &builder{
		t:    t,
		cfg:  cfg,
		ids:  make([]uint32, n),
		vals: make([]float64, n),
	}
	if cfg.Parallelism > 1 && n >= 2*parallelThreshold {
		b.g = new(errgroup.Group)
		b.g.SetLimit(cfg.Parallelism - 1)
	}

	t.root = b.alloc()
	b.build(t.root, 0, n, 0)
	if b.g != nil {
		if err := b.g.Wait(); err != nil {
			return nil, err
		}
	}

	t.nodes = slices.Clip(t.nodes[:b.next.Load()])
	return t, nil
}

func (b *builder) alloc() int32 {
	return b.next.Add(1) - 1
}

func (b *builder) build(idx int32, start, end, depth int) {
	nd := node{left: -1, right: -1, start: int32(start), end: int32(end)}

	if end-start > b.cfg.LeafCapacity {
		if axis, split, mid, ok := b.split(start, end, depth); ok {
			nd.axis = int32(axis)
			nd.split = split
			nd.left, nd.right = b.alloc(), b.alloc()
			b.t.nodes[idx] = nd

			left := nd.left
			spawned := b.g != nil && mid-start >= parallelThreshold && b.g.TryGo(func() error {
				b.build(left, start, mid, depth+1)
				return nil
			})
			if !spawned {
				b.build(left, start, mid, depth+1)
			}
			b.build(nd.right, mid, end, depth+1)
			return
		}
	}

	b.t.nodes[idx] = nd
}

// split picks the axis and value for the run order[start:end] and partitions
// the run around it. It returns ok=false when all keys in the run are equal.
func (b *builder) split(start, end, depth int) (axis int, split float64, mid int, ok bool) {
	dim := b.t.dim
	first := b.preferredAxis(start, end, depth)
	for i := range dim {
		axis = (first + i) % dim
		if split, ok = b.median(start, end, axis); ok {
			return axis, split, b.partition(start, end, axis, split), true
		}
	}
	return 0, 0, 0, false
}

func (b *builder) preferredAxis(start, end, depth int) int {
	switch b.cfg.Policy {
	case SplitWidestExtent:
		box := geom.EmptyBox(b.t.dim)
		for _, id := range b.t.order[start:end] {
			box.Grow(b.t.point(id))
		}
		return box.WidestDimension()
	case SplitMaxVariance:
		best, bestVar := 0, math.Inf(-1)
		vals := b.vals[start:end]
		for axis := range b.t.dim {
			for i, id := range b.t.order[start:end] {
				vals[i] = b.t.coord(id, axis)
			}
			if v := stat.Variance(vals, nil); v > bestVar {
				best, bestVar = axis, v
			}
		}
		return best
	default:
		return depth % b.t.dim
	}
}

// median returns the split value on axis for the run order[start:end]: the
// median coordinate, or the smallest coordinate above the minimum when the
// median is the minimum itself. Both sides of the split are then non-empty.
func (b *builder) median(start, end, axis int) (float64, bool) {
	vals := b.vals[start:end]
	lo, hi := math.Inf(1), math.Inf(-1)
	for i, id := range b.t.order[start:end] {
		c := b.t.coord(id, axis)
		vals[i] = c
		lo = math.Min(lo, c)
		hi = math.Max(hi, c)
	}
	if lo == hi {
		return 0, false
	}

	m := selectKth(vals, len(vals)/2)
	if m == lo {
		next := hi
		for _, c := range vals {
			if c > lo && c < next {
				next = c
			}
		}
		m = next
	}
	return m, true
}

// partition stably moves entries with coordinate < split to the front of the
// run and returns the index of the first entry of the right side.
func (b *builder) partition(start, end, axis int, split float64) int {
	order := b.t.order[start:end]
	tmp := b.ids[start:end]

	l := 0
	for _, id := range order {
		if b.t.coord(id, axis) < split {
			tmp[l] = id
			l++
		}
	}
	r := l
	for _, id := range order {
		if b.t.coord(id, axis) >= split {
			tmp[r] = id
			r++
		}
	}

	copy(order, tmp)
	return start + l
}
