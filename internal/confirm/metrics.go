package confirm

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusMetrics records confirmation outcomes. A nil value records nothing.
type PrometheusMetrics struct {
	outcomes *prometheus.CounterVec
	wait     prometheus.Histogram
}

func InitPrometheusMetrics(namespace string, reg prometheus.Registerer) *PrometheusMetrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	m := &PrometheusMetrics{
		outcomes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "confirmations_total",
				Help:      "Total number of confirmation prompts by outcome",
			},
			[]string{"outcome"},
		),
		wait: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "confirmation_wait_seconds",
				Help:      "Time from prompt to resolution",
				Buckets:   []float64{.5, 1, 2, 5, 10, 15, 30, 60},
			},
		),
	}

	reg.MustRegister(m.outcomes, m.wait)
	return m
}

func (m *PrometheusMetrics) Record(outcome Outcome, wait time.Duration) {
	if m == nil {
		return
	}
	m.outcomes.WithLabelValues(outcome.String()).Inc()
	m.wait.Observe(wait.Seconds())
}
