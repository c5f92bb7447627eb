package pipeline

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds Prometheus metrics for the ingestion pipeline.
type Metrics struct {
	ScansTotal          *prometheus.CounterVec
	ScanDuration        prometheus.Histogram
	PostsStoredTotal    prometheus.Counter
	DuplicatesTotal     prometheus.Counter
	InvalidRecordsTotal prometheus.Counter
	RiskScore           prometheus.Histogram
}

// NewMetrics registers and returns pipeline metrics on the given registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		ScansTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sentinel_scans_total",
			Help: "Total account scans by platform and outcome.",
		}, []string{"platform", "outcome"}),
		ScanDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "sentinel_scan_duration_seconds",
			Help:    "Duration of account scans in seconds.",
			Buckets: prometheus.ExponentialBuckets(0.5, 2, 10), // 0.5s .. ~256s
		}),
		PostsStoredTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sentinel_posts_stored_total",
			Help: "Total new posts persisted.",
		}),
		DuplicatesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sentinel_duplicate_records_total",
			Help: "Total records skipped because their URL was already stored.",
		}),
		InvalidRecordsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sentinel_invalid_records_total",
			Help: "Total records rejected for missing url or content.",
		}),
		RiskScore: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "sentinel_risk_score",
			Help:    "Risk scores of newly stored posts.",
			Buckets: prometheus.LinearBuckets(0, 0.1, 11), // 0.0 .. 1.0
		}),
	}

	reg.MustRegister(
		m.ScansTotal,
		m.ScanDuration,
		m.PostsStoredTotal,
		m.DuplicatesTotal,
		m.InvalidRecordsTotal,
		m.RiskScore,
	)

	return m
}
