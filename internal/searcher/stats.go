package searcher

// Stats counts the work done by one query.
type Stats struct {
	NodesVisited    int // split and leaf nodes entered
	LeavesVisited   int // leaf buckets scanned
	EntriesCompared int // entries whose key was compared against the query
}

// Reset zeroes all counters.
func (s *Stats) Reset() {
	*s = Stats{}
}
