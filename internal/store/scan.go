package store

import (
	"github.com/hupe1980/kdgo/distance"
	"github.com/hupe1980/kdgo/geom"
	"github.com/hupe1980/kdgo/internal/searcher"
)

// ScanFind returns the lowest ID whose key equals key exactly.
func ScanFind[V any](v Snapshot[V], key []float64) (uint32, bool) {
	for id := range uint32(v.Len()) {
		if geom.Point(v.Key(id)).Equal(key) {
			return id, true
		}
	}
	return 0, false
}

// ScanFindWithin returns the lowest ID whose key is within eps of key on every axis.
func ScanFindWithin[V any](v Snapshot[V], key []float64, eps float64) (uint32, bool) {
	for id := range uint32(v.Len()) {
		if geom.Point(v.Key(id)).EqualWithin(key, eps) {
			return id, true
		}
	}
	return 0, false
}

// ScanFindAll returns the IDs of all entries whose key equals key, ascending.
func ScanFindAll[V any](v Snapshot[V], key []float64) []uint32 {
	var out []uint32
	for id := range uint32(v.Len()) {
		if geom.Point(v.Key(id)).Equal(key) {
			out = append(out, id)
		}
	}
	return out
}

// ScanCollect offers every entry to c, measuring distances in c.Space().
func ScanCollect[V any](v Snapshot[V], q []float64, c *searcher.Collector) {
	sp := c.Space()
	for id := range uint32(v.Len()) {
		c.Offer(id, sp.SquaredL2(q, v.Key(id)))
	}
}

// ScanRadius returns the IDs of entries within Euclidean distance radius of q
// (inclusive) measured in sp, ascending.
func ScanRadius[V any](v Snapshot[V], q []float64, radius float64, sp distance.Space) []uint32 {
	sqRadius := sp.SquaredRadius(radius)
	var out []uint32
	for id := range uint32(v.Len()) {
		if sp.SquaredL2Bounded(q, v.Key(id), sqRadius) <= sqRadius {
			out = append(out, id)
		}
	}
	return out
}

// ScanRange returns the IDs of entries inside [lower, upper] (inclusive), ascending.
func ScanRange[V any](v Snapshot[V], lower, upper []float64) []uint32 {
	box := geom.Box{Lower: lower, Upper: upper}
	var out []uint32
	for id := range uint32(v.Len()) {
		if box.Contains(v.Key(id)) {
			out = append(out, id)
		}
	}
	return out
}
