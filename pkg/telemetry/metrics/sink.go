package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"mercator-hq/sieve/pkg/config"
)

// SinkMetrics tracks output of emitted lines.
//
// Metrics:
//   - sieve_sink_writes_total: lines handed to each sink
//   - sieve_sink_errors_total: failed writes per sink
//   - sieve_sink_pruned_total: stored lines removed by retention
type SinkMetrics struct {
	writesTotal *prometheus.CounterVec
	errorsTotal *prometheus.CounterVec
	prunedTotal prometheus.Counter
}

// NewSinkMetrics creates and registers sink metrics with the provided registry.
func NewSinkMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *SinkMetrics {
	sm := &SinkMetrics{
		writesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "sink_writes_total",
				Help:      "Total number of lines written to a sink",
			},
			[]string{"sink"},
		),

		errorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "sink_errors_total",
				Help:      "Total number of failed sink writes",
			},
			[]string{"sink"},
		),

		prunedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "sink_pruned_total",
				Help:      "Total number of stored lines deleted by retention",
			},
		),
	}

	registry.MustRegister(sm.writesTotal, sm.errorsTotal, sm.prunedTotal)

	return sm
}

// RecordWrite counts a line written to sink.
func (sm *SinkMetrics) RecordWrite(sink string) {
	sm.writesTotal.WithLabelValues(sink).Inc()
}

// RecordError counts a failed write to sink.
func (sm *SinkMetrics) RecordError(sink string) {
	sm.errorsTotal.WithLabelValues(sink).Inc()
}

// RecordPruned adds n deleted lines.
func (sm *SinkMetrics) RecordPruned(n int64) {
	sm.prunedTotal.Add(float64(n))
}
