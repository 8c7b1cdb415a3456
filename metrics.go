package kdgo

import (
	"fmt"
	"sync/atomic"
	"time"
)

// SearchKind identifies a query operation for metrics and logging.
type SearchKind int

const (
	SearchFind SearchKind = iota
	SearchNearest
	SearchKNN
	SearchRadius
	SearchRange
)

func (k SearchKind) String() string {
	switch k {
	case SearchFind:
		return "find"
	case SearchNearest:
		return "nearest"
	case SearchKNN:
		return "knn"
	case SearchRadius:
		return "radius"
	case SearchRange:
		return "range"
	default:
		return fmt.Sprintf("unknown(%d)", int(k))
	}
}

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems; package
// prom provides a Prometheus implementation.
type MetricsCollector interface {
	// RecordAdd is called after each add operation.
	// duration is the total time taken, err is nil if successful.
	RecordAdd(duration time.Duration, err error)

	// RecordAddBatch is called after each batch add operation.
	// count is the number of items attempted.
	RecordAddBatch(count int, duration time.Duration, err error)

	// RecordBuild is called after each build. entries is the number of
	// entries in the new tree.
	RecordBuild(entries int, duration time.Duration, err error)

	// RecordSearch is called after each query.
	// results is the number of results returned.
	RecordSearch(kind SearchKind, results int, duration time.Duration, err error)

	// RecordCacheHit is called when a query is answered from the query cache.
	RecordCacheHit(kind SearchKind)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordAdd(time.Duration, error)                     {}
func (NoopMetricsCollector) RecordAddBatch(int, time.Duration, error)           {}
func (NoopMetricsCollector) RecordBuild(int, time.Duration, error)              {}
func (NoopMetricsCollector) RecordSearch(SearchKind, int, time.Duration, error) {}
func (NoopMetricsCollector) RecordCacheHit(SearchKind)                          {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	AddCount         atomic.Int64
	AddErrors        atomic.Int64
	AddTotalNanos    atomic.Int64
	BatchCount       atomic.Int64
	BatchItems       atomic.Int64
	BatchErrors      atomic.Int64
	BuildCount       atomic.Int64
	BuildErrors      atomic.Int64
	BuildTotalNanos  atomic.Int64
	LastBuildEntries atomic.Int64
	SearchCount      atomic.Int64
	SearchErrors     atomic.Int64
	SearchResults    atomic.Int64
	SearchTotalNanos atomic.Int64
	CacheHits        atomic.Int64
}

// RecordAdd implements MetricsCollector.
func (b *BasicMetricsCollector) RecordAdd(duration time.Duration, err error) {
	b.AddCount.Add(1)
	b.AddTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.AddErrors.Add(1)
	}
}

// RecordAddBatch implements MetricsCollector.
func (b *BasicMetricsCollector) RecordAddBatch(count int, duration time.Duration, err error) {
	b.BatchCount.Add(1)
	if err != nil {
		b.BatchErrors.Add(1)
		return
	}
	b.BatchItems.Add(int64(count))
}

// RecordBuild implements MetricsCollector.
func (b *BasicMetricsCollector) RecordBuild(entries int, duration time.Duration, err error) {
	b.BuildCount.Add(1)
	b.BuildTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.BuildErrors.Add(1)
		return
	}
	b.LastBuildEntries.Store(int64(entries))
}

// RecordSearch implements MetricsCollector.
func (b *BasicMetricsCollector) RecordSearch(kind SearchKind, results int, duration time.Duration, err error) {
	b.SearchCount.Add(1)
	b.SearchTotalNanos.Add(duration.Nanoseconds())
	b.SearchResults.Add(int64(results))
	if err != nil {
		b.SearchErrors.Add(1)
	}
}

// RecordCacheHit implements MetricsCollector.
func (b *BasicMetricsCollector) RecordCacheHit(SearchKind) {
	b.CacheHits.Add(1)
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		AddCount:         b.AddCount.Load(),
		AddErrors:        b.AddErrors.Load(),
		AddAvgNanos:      avg(b.AddTotalNanos.Load(), b.AddCount.Load()),
		BatchCount:       b.BatchCount.Load(),
		BatchItems:       b.BatchItems.Load(),
		BatchErrors:      b.BatchErrors.Load(),
		BuildCount:       b.BuildCount.Load(),
		BuildErrors:      b.BuildErrors.Load(),
		BuildAvgNanos:    avg(b.BuildTotalNanos.Load(), b.BuildCount.Load()),
		LastBuildEntries: b.LastBuildEntries.Load(),
		SearchCount:      b.SearchCount.Load(),
		SearchErrors:     b.SearchErrors.Load(),
		SearchResults:    b.SearchResults.Load(),
		SearchAvgNanos:   avg(b.SearchTotalNanos.Load(), b.SearchCount.Load()),
		CacheHits:        b.CacheHits.Load(),
	}
}

func avg(total, count int64) int64 {
	if count == 0 {
		return 0
	}
	return total / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	AddCount         int64
	AddErrors        int64
	AddAvgNanos      int64
	BatchCount       int64
	BatchItems       int64
	BatchErrors      int64
	BuildCount       int64
	BuildErrors      int64
	BuildAvgNanos    int64
	LastBuildEntries int64
	SearchCount      int64
	SearchErrors     int64
	SearchResults    int64
	SearchAvgNanos   int64
	CacheHits        int64
}
