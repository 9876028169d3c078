package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for feed
// fetching, sanitizing, and caching.
type Metrics struct {
	// Upstream fetch metrics.
	FetchRequests *prometheus.CounterVec   // labels: feed={statewide,zoned}, outcome={success,error}
	FetchDuration *prometheus.HistogramVec // labels: feed
	RowsDropped   *prometheus.CounterVec   // labels: feed, reason
	DatasetRows   *prometheus.GaugeVec     // labels: feed

	// Cache metrics.
	CacheLookups         *prometheus.CounterVec // labels: result={fresh,stale,miss}
	RefreshFailures      prometheus.Counter
	LastRefreshTimestamp prometheus.Gauge
	BreakerOpen          prometheus.Gauge

	SnapshotsPublished prometheus.Counter
}

// NewMetrics creates and registers all metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.FetchRequests,
		m.FetchDuration,
		m.RowsDropped,
		m.DatasetRows,
		m.CacheLookups,
		m.RefreshFailures,
		m.LastRefreshTimestamp,
		m.BreakerOpen,
		m.SnapshotsPublished,
	)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		FetchRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fire_tally",
			Name:      "fetch_requests_total",
			Help:      "Upstream feed fetches by feed and outcome.",
		}, []string{"feed", "outcome"}),
		FetchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "fire_tally",
			Name:      "fetch_duration_seconds",
			Help:      "Upstream feed download and parse duration.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"feed"}),
		RowsDropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fire_tally",
			Name:      "rows_dropped_total",
			Help:      "Rows discarded during sanitizing, by feed and reason.",
		}, []string{"feed", "reason"}),
		DatasetRows: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "fire_tally",
			Name:      "dataset_rows",
			Help:      "Valid records in the current dataset, by feed.",
		}, []string{"feed"}),
		CacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fire_tally",
			Name:      "cache_lookups_total",
			Help:      "Cache lookups by result.",
		}, []string{"result"}),
		RefreshFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "fire_tally",
			Name:      "refresh_failures_total",
			Help:      "Failed fetch and sanitize cycles.",
		}),
		LastRefreshTimestamp: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "fire_tally",
			Name:      "last_refresh_timestamp_seconds",
			Help:      "Unix time of the last successful refresh.",
		}),
		BreakerOpen: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "fire_tally",
			Name:      "upstream_breaker_open",
			Help:      "1 while the upstream circuit breaker is open, 0 otherwise.",
		}),
		SnapshotsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "fire_tally",
			Name:      "snapshots_published_total",
			Help:      "Snapshot summaries written to Kafka.",
		}),
	}
}
