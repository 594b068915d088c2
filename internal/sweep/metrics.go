package sweep

import (
	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusMetrics records sweep activity. A nil *PrometheusMetrics is valid
// and records nothing.
type PrometheusMetrics struct {
	runsTotal       *prometheus.CounterVec
	deletedTotal    *prometheus.CounterVec
	deleteCalls     prometheus.Counter
	sweepDuration   *prometheus.HistogramVec
	sweepsInFlight  prometheus.Gauge
	skippedInFlight prometheus.Counter
}

func InitPrometheusMetrics(namespace string, reg prometheus.Registerer) *PrometheusMetrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	m := &PrometheusMetrics{
		runsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "sweep_runs_total",
				Help:      "Total number of channel sweeps",
			},
			[]string{"trigger", "result"},
		),
		deletedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "sweep_messages_deleted_total",
				Help:      "Total number of messages deleted by sweeps",
			},
			[]string{"trigger"},
		),
		deleteCalls: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "sweep_delete_calls_total",
				Help:      "Total number of bulk delete calls issued",
			},
		),
		sweepDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "sweep_duration_seconds",
				Help:      "Duration of channel sweeps",
				Buckets:   []float64{.1, .5, 1, 5, 10, 30, 60, 120, 300},
			},
			[]string{"trigger"},
		),
		sweepsInFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "sweeps_in_flight",
				Help:      "Number of sweeps currently running",
			},
		),
		skippedInFlight: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "sweep_skipped_in_flight_total",
				Help:      "Scheduled sweeps skipped because the channel was still being swept",
			},
		),
	}

	reg.MustRegister(
		m.runsTotal,
		m.deletedTotal,
		m.deleteCalls,
		m.sweepDuration,
		m.sweepsInFlight,
		m.skippedInFlight,
	)

	return m
}

func (m *PrometheusMetrics) RecordRun(trigger string, res Result, err error) {
	if m == nil {
		return
	}
	result := "success"
	if err != nil {
		result = "error"
	}
	m.runsTotal.WithLabelValues(trigger, result).Inc()
	m.deletedTotal.WithLabelValues(trigger).Add(float64(res.Deleted))
	m.sweepDuration.WithLabelValues(trigger).Observe(res.Duration.Seconds())
}

func (m *PrometheusMetrics) RecordDeleteCall() {
	if m == nil {
		return
	}
	m.deleteCalls.Inc()
}

func (m *PrometheusMetrics) SweepStarted() {
	if m == nil {
		return
	}
	m.sweepsInFlight.Inc()
}

func (m *PrometheusMetrics) SweepFinished() {
	if m == nil {
		return
	}
	m.sweepsInFlight.Dec()
}

// RecordSkipped counts a scheduled sweep dropped because the channel was busy.
func (m *PrometheusMetrics) RecordSkipped() {
	if m == nil {
		return
	}
	m.skippedInFlight.Inc()
}
