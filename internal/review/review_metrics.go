package review

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds Prometheus metrics for the review queue.
type Metrics struct {
	VerdictsTotal *prometheus.CounterVec
}

// NewMetrics registers and returns review metrics on the given registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		VerdictsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sentinel_verdicts_total",
			Help: "Verdict transition attempts by target verdict and outcome.",
		}, []string{"verdict", "outcome"}),
	}
	reg.MustRegister(m.VerdictsTotal)
	return m
}
