// Package prom exports kdgo index metrics to Prometheus.
//
//	reg := prometheus.NewRegistry()
//	c, err := prom.New(reg, prom.WithNamespace("myapp"))
//	...
//	idx, err := kdgo.New[string](3, kdgo.WithMetricsCollector(c))
package prom

import (
	"time"

	"github.com/hupe1980/kdgo"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	statusSuccess = "success"
	statusError   = "error"
)

// Collector implements kdgo.MetricsCollector on top of Prometheus metrics.
type Collector struct {
	opLatency   *prometheus.HistogramVec
	addedItems  prometheus.Counter
	indexed     prometheus.Gauge
	results     *prometheus.HistogramVec
	cacheHits   *prometheus.CounterVec
	searchTotal *prometheus.CounterVec
}

var _ kdgo.MetricsCollector = (*Collector)(nil)

type options struct {
	namespace   string
	constLabels prometheus.Labels
	buckets     []float64
}

// Option configures a Collector.
type Option func(o *options)

// WithNamespace sets the metric name prefix. Default: "kdgo".
func WithNamespace(ns string) Option {
	return func(o *options) {
		o.namespace = ns
	}
}

// WithConstLabels attaches fixed labels to every metric, e.g. to tell
// several indexes apart.
func WithConstLabels(labels prometheus.Labels) Option {
	return func(o *options) {
		o.constLabels = labels
	}
}

// WithLatencyBuckets overrides the latency histogram buckets.
func WithLatencyBuckets(buckets []float64) Option {
	return func(o *options) {
		o.buckets = buckets
	}
}

// New creates a Collector and registers its metrics with reg.
func New(reg prometheus.Registerer, optFns ...Option) (*Collector, error) {
	opts := options{
		namespace: "kdgo",
		buckets:   prometheus.ExponentialBuckets(1e-6, 4, 12),
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	c := &Collector{
		opLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   opts.namespace,
			Name:        "operation_latency_seconds",
			Help:        "Latency of index operations",
			ConstLabels: opts.constLabels,
			Buckets:     opts.buckets,
		}, []string{"op", "status"}),
		addedItems: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   opts.namespace,
			Name:        "added_entries_total",
			Help:        "Total entries added to the index",
			ConstLabels: opts.constLabels,
		}),
		indexed: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   opts.namespace,
			Name:        "indexed_entries",
			Help:        "Entries covered by the last successful build",
			ConstLabels: opts.constLabels,
		}),
		results: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   opts.namespace,
			Name:        "search_results",
			Help:        "Number of results returned per search",
			ConstLabels: opts.constLabels,
			Buckets:     prometheus.ExponentialBuckets(1, 4, 8),
		}, []string{"kind"}),
		cacheHits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   opts.namespace,
			Name:        "query_cache_hits_total",
			Help:        "Searches answered from the query cache",
			ConstLabels: opts.constLabels,
		}, []string{"kind"}),
		searchTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   opts.namespace,
			Name:        "searches_total",
			Help:        "Total searches by kind and status",
			ConstLabels: opts.constLabels,
		}, []string{"kind", "status"}),
	}

	for _, m := range []prometheus.Collector{c.opLatency, c.addedItems, c.indexed, c.results, c.cacheHits, c.searchTotal} {
		if err := reg.Register(m); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// RecordAdd implements kdgo.MetricsCollector.
func (c *Collector) RecordAdd(d time.Duration, err error) {
	c.opLatency.WithLabelValues("add", status(err)).Observe(d.Seconds())
	if err == nil {
		c.addedItems.Inc()
	}
}

// RecordAddBatch implements kdgo.MetricsCollector.
func (c *Collector) RecordAddBatch(count int, d time.Duration, err error) {
	c.opLatency.WithLabelValues("add_batch", status(err)).Observe(d.Seconds())
	if err == nil {
		c.addedItems.Add(float64(count))
	}
}

// RecordBuild implements kdgo.MetricsCollector.
func (c *Collector) RecordBuild(entries int, d time.Duration, err error) {
	c.opLatency.WithLabelValues("build", status(err)).Observe(d.Seconds())
	if err == nil {
		c.indexed.Set(float64(entries))
	}
}

// RecordSearch implements kdgo.MetricsCollector.
func (c *Collector) RecordSearch(kind kdgo.SearchKind, results int, d time.Duration, err error) {
	st := status(err)
	c.opLatency.WithLabelValues("search_"+kind.String(), st).Observe(d.Seconds())
	c.searchTotal.WithLabelValues(kind.String(), st).Inc()
	if err == nil {
		c.results.WithLabelValues(kind.String()).Observe(float64(results))
	}
}

// RecordCacheHit implements kdgo.MetricsCollector.
func (c *Collector) RecordCacheHit(kind kdgo.SearchKind) {
	c.cacheHits.WithLabelValues(kind.String()).Inc()
}

func status(err error) string {
	if err != nil {
		return statusError
	}
	return statusSuccess
}
