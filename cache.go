package kdgo

import (
	"encoding/binary"
	"math"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/hupe1980/kdgo/internal/searcher"
)

// queryCache memoizes nearest-neighbor results by query. Cached candidates
// are shared between callers and must not be modified.
type queryCache struct {
	lru *lru.Cache[string, []searcher.Candidate]
}

func newQueryCache(size int) (*queryCache, error) {
	if size <= 0 {
		return nil, nil
	}
	c, err := lru.New[string, []searcher.Candidate](size)
	if err != nil {
		return nil, err
	}
	return &queryCache{lru: c}, nil
}

func (c *queryCache) get(key string) ([]searcher.Candidate, bool) {
	if c == nil {
		return nil, false
	}
	return c.lru.Get(key)
}

func (c *queryCache) add(key string, cs []searcher.Candidate) {
	if c == nil {
		return
	}
	c.lru.Add(key, cs)
}

func (c *queryCache) purge() {
	if c == nil {
		return
	}
	c.lru.Purge()
}

func (c *queryCache) len() int {
	if c == nil {
		return 0
	}
	return c.lru.Len()
}

// cacheKey encodes everything that determines a nearest-neighbor result.
// -0 and +0 encode differently; that only costs a cache miss.
func cacheKey(k int, maxRadius float64, q []float64) string {
	buf := make([]byte, 0, 16+8*len(q))
	buf = binary.LittleEndian.AppendUint64(buf, uint64(k))
	buf = binary.LittleEndian.AppendUint64(buf, math.Float64bits(maxRadius))
	for _, c := range q {
		buf = binary.LittleEndian.AppendUint64(buf, math.Float64bits(c))
	}
	return string(buf)
}
