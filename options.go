package kdgo

import (
	"log/slog"
	"runtime"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/hupe1980/kdgo/internal/tree"
)

// SplitPolicy selects the axis each tree node splits on.
type SplitPolicy = tree.SplitPolicy

const (
	// SplitRoundRobin cycles through the axes by depth. This is the default.
	SplitRoundRobin = tree.SplitRoundRobin
	// SplitWidestExtent splits the axis along which the node's entries spread widest.
	SplitWidestExtent = tree.SplitWidestExtent
	// SplitMaxVariance splits the axis with the largest coordinate variance.
	SplitMaxVariance = tree.SplitMaxVariance
)

// DefaultLeafCapacity is the default maximum bucket size of a leaf.
const DefaultLeafCapacity = 8

type options struct {
	leafCapacity     int
	splitPolicy      SplitPolicy
	parallelism      int
	cacheSize        int
	metricsCollector MetricsCollector
	logger           *Logger
}

// Option configures Index constructor behavior.
type Option func(*options)

// WithLeafCapacity sets the largest number of entries a leaf holds before it
// is split. Must be at least 1; New fails with ErrInvalidLeafCapacity otherwise.
// Entries with identical keys always share a leaf, so a leaf may exceed the
// capacity when more than capacity entries have the same key.
func WithLeafCapacity(n int) Option {
	return func(o *options) {
		o.leafCapacity = n
	}
}

// WithSplitPolicy sets the split axis policy used by Build.
func WithSplitPolicy(p SplitPolicy) Option {
	return func(o *options) {
		o.splitPolicy = p
	}
}

// WithBuildParallelism sets the maximum number of goroutines Build uses.
// Values <= 0 select runtime.GOMAXPROCS(0); 1 builds sequentially.
// The resulting tree answers every query identically regardless of this value.
func WithBuildParallelism(n int) Option {
	return func(o *options) {
		o.parallelism = n
	}
}

// WithQueryCache enables an LRU cache of the given size for nearest-neighbor
// queries (FindClosest and KNN without a filter or stats sink).
// The cache is invalidated whenever the visible entry set changes.
// size <= 0 disables the cache.
func WithQueryCache(size int) Option {
	return func(o *options) {
		o.cacheSize = size
	}
}

// WithMetricsCollector configures a metrics collector for monitoring operations.
// Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &kdgo.BasicMetricsCollector{}
//	idx, _ := kdgo.New[string](3, kdgo.WithMetricsCollector(metrics))
//	// ... use idx ...
//	stats := metrics.GetStats()
//	fmt.Printf("Searches: %d, Avg latency: %dns\n", stats.SearchCount, stats.SearchAvgNanos)
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metricsCollector = mc
	}
}

// WithLogger configures structured logging for operations.
// Pass nil to disable logging.
//
// Example with JSON logging:
//
//	logger := kdgo.NewJSONLogger(slog.LevelInfo)
//	idx, _ := kdgo.New[string](3, kdgo.WithLogger(logger))
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		if logger == nil {
			logger = NoopLogger()
		}
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		leafCapacity:     DefaultLeafCapacity,
		splitPolicy:      SplitRoundRobin,
		metricsCollector: NoopMetricsCollector{},
		logger:           NoopLogger(),
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	if o.parallelism <= 0 {
		o.parallelism = runtime.GOMAXPROCS(0)
	}
	return o
}

// QueryOptions contains per-query options for nearest-neighbor searches.
type QueryOptions struct {
	// MaxRadius limits results to entries within this Euclidean distance of
	// the query (inclusive). Default: +Inf.
	MaxRadius float64

	// Filter, if non-nil, restricts results to entries whose ID is in the bitmap.
	Filter *roaring.Bitmap

	// Stats, if non-nil, is reset and then filled with the work done by the query.
	Stats *SearchStats
}
