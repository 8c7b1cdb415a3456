package tree

import (
	"math/bits"
	"slices"
)

// selectKth reorders a so that a[k] holds the value that would be at index k
// if a were sorted, and returns it. Expected linear time; after a logarithmic
// number of unproductive rounds it falls back to sorting the remaining range.
func selectKth(a []float64, k int) float64 {
	lo, hi := 0, len(a)-1
	budget := 2 * bits.Len(uint(len(a)))

	for lo < hi {
		if budget == 0 {
			slices.Sort(a[lo : hi+1])
			return a[k]
		}
		budget--

		p := medianOfThree(a[lo], a[lo+(hi-lo)/2], a[hi])

		// Three-way partition: a[lo:lt] < p, a[lt:gt+1] == p, a[gt+1:hi+1] > p.
		lt, i, gt := lo, lo, hi
		for i <= gt {
			switch {
			case a[i] < p:
				a[lt], a[i] = a[i], a[lt]
				lt++
				i++
			case a[i] > p:
				a[i], a[gt] = a[gt], a[i]
				gt--
			default:
				i++
			}
		}

		switch {
		case k < lt:
			hi = lt - 1
		case k > gt:
			lo = gt + 1
		default:
			return p
		}
	}
	return a[k]
}

func medianOfThree(x, y, z float64) float64 {
	if x > y {
		x, y = y, x
	}
	if y > z {
		y = z
	}
	if x > y {
		y = x
	}
	return y
}
