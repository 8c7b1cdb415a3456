// Package searcher implements search queues and utilities.
package searcher

import (
	"math"

	"github.com/hupe1980/kdgo/distance"
)

// Candidate is an entry found during search.
type Candidate struct {
	ID       uint32  // Insertion sequence number of the entry.
	Distance float64 // Squared L2 distance to the query in the search's distance.Space.
}

// Less orders candidates by distance, then by ID. The lower ID wins ties so
// that results do not depend on traversal order.
func (c Candidate) Less(o Candidate) bool {
	if c.Distance != o.Distance {
		return c.Distance < o.Distance
	}
	return c.ID < o.ID
}

// PriorityQueue implements a binary max heap holding Candidates: the top is
// the worst candidate kept.
// Value-based storage; it does NOT implement container/heap to avoid interface overhead.
type PriorityQueue struct {
	items []Candidate
}

// NewPriorityQueue creates a new priority queue.
func NewPriorityQueue() *PriorityQueue {
	return &PriorityQueue{
		items: make([]Candidate, 0, 16),
	}
}

// Reset clears the priority queue for reuse.
func (pq *PriorityQueue) Reset() {
	pq.items = pq.items[:0]
}

// Len returns the number of elements in the heap.
func (pq *PriorityQueue) Len() int {
	return len(pq.items)
}

// TopItem returns the top element of the heap.
func (pq *PriorityQueue) TopItem() (Candidate, bool) {
	if len(pq.items) == 0 {
		return Candidate{}, false
	}
	return pq.items[0], true
}

// PushItem inserts an item while maintaining the heap invariant.
func (pq *PriorityQueue) PushItem(item Candidate) {
	pq.items = append(pq.items, item)
	pq.siftUp(len(pq.items) - 1)
}

// PushItemBounded inserts an item into a heap that keeps at most capacity
// of the best (smallest) candidates. If the heap is full, the item replaces
// the top only when it orders before it.
func (pq *PriorityQueue) PushItemBounded(item Candidate, capacity int) {
	if len(pq.items) < capacity {
		pq.PushItem(item)
		return
	}
	if item.Less(pq.items[0]) {
		pq.items[0] = item
		pq.siftDown(0)
	}
}

// PopItem removes and returns the top element from the heap.
func (pq *PriorityQueue) PopItem() (Candidate, bool) {
	n := len(pq.items)
	if n == 0 {
		return Candidate{}, false
	}

	item := pq.items[0]
	pq.items[0] = pq.items[n-1]
	pq.items = pq.items[:n-1]

	if len(pq.items) > 0 {
		pq.siftDown(0)
	}

	return item, true
}

// Sorted drains the heap and returns its items ordered best first.
func (pq *PriorityQueue) Sorted() []Candidate {
	out := make([]Candidate, len(pq.items))
	for i := len(out) - 1; i >= 0; i-- {
		out[i], _ = pq.PopItem()
	}
	return out
}

// Less reports whether the element with index i is nearer the top than the
// element with index j, that is, whether it is the worse candidate.
func (pq *PriorityQueue) Less(i, j int) bool {
	return pq.items[j].Less(pq.items[i])
}

// Swap swaps the elements with indexes i and j.
func (pq *PriorityQueue) Swap(i, j int) {
	pq.items[i], pq.items[j] = pq.items[j], pq.items[i]
}

func (pq *PriorityQueue) siftUp(i int) {
	for i > 0 {
		parent := (i - 1) / 2
		if !pq.Less(i, parent) {
			break
		}
		pq.Swap(i, parent)
		i = parent
	}
}

func (pq *PriorityQueue) siftDown(i int) {
	n := len(pq.items)
	for {
		left := 2*i + 1
		if left >= n {
			break
		}
		child := left
		right := left + 1
		if right < n && pq.Less(right, left) {
			child = right
		}
		if !pq.Less(child, i) {
			break
		}
		pq.Swap(i, child)
		i = child
	}
}

// Collector gathers the k best candidates within a radius.
// It is the shared accumulator for nearest, kNN and the linear-scan fallback.
type Collector struct {
	k      int
	space  distance.Space
	bound  float64 // squared radius in space, inclusive
	pq     *PriorityQueue
	Filter func(id uint32) bool
	Stats  *Stats
}

// NewCollector returns a collector for the k best candidates within
// Euclidean distance maxRadius, measured in sp. Use math.Inf(1) for an
// unbounded search.
func NewCollector(k int, maxRadius float64, sp distance.Space) *Collector {
	return &Collector{
		k:     k,
		space: sp,
		bound: sp.SquaredRadius(maxRadius),
		pq:    NewPriorityQueue(),
	}
}

// Space returns the space offered distances must be measured in.
func (c *Collector) Space() distance.Space {
	return c.space
}

// Bound returns the current pruning bound: the squared radius while the
// collector is not full, the worst kept distance afterwards.
func (c *Collector) Bound() float64 {
	if c.pq.Len() < c.k {
		return c.bound
	}
	top, _ := c.pq.TopItem()
	return top.Distance
}

// Admits reports whether a region at squared distance sq may still hold a
// candidate that would be kept. Equality admits, since an equally distant
// entry with a lower ID still wins.
func (c *Collector) Admits(sq float64) bool {
	return sq <= c.Bound()
}

// Offer considers an entry for the result set.
func (c *Collector) Offer(id uint32, sq float64) {
	if c.Stats != nil {
		c.Stats.EntriesCompared++
	}
	if c.Filter != nil && !c.Filter(id) {
		return
	}
	if sq > c.bound || math.IsNaN(sq) {
		return
	}
	c.pq.PushItemBounded(Candidate{ID: id, Distance: sq}, c.k)
}

// Len returns the number of candidates kept so far.
func (c *Collector) Len() int {
	return c.pq.Len()
}

// Results drains the collector, best first.
func (c *Collector) Results() []Candidate {
	return c.pq.Sorted()
}
