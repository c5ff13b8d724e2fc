package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"mercator-hq/sieve/pkg/config"
)

// VerdictMetrics tracks filtering decisions.
//
// Metrics:
//   - sieve_verdicts_total: decisions by severity and reason
//   - sieve_decision_duration_seconds: time spent deciding
//   - sieve_suppressed_owner_total: suppressions by owning class
type VerdictMetrics struct {
	verdictsTotal    *prometheus.CounterVec
	decisionDuration prometheus.Histogram
	suppressedOwner  *prometheus.CounterVec
}

// NewVerdictMetrics creates and registers verdict metrics with the provided registry.
func NewVerdictMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *VerdictMetrics {
	vm := &VerdictMetrics{
		verdictsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "verdicts_total",
				Help:      "Total number of filtering decisions",
			},
			[]string{"severity", "reason"},
		),

		decisionDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "decision_duration_seconds",
				Help:      "Duration of a filtering decision in seconds",
				// Decisions are in-memory lookups (100ns to ~1.6ms)
				Buckets: prometheus.ExponentialBuckets(0.0000001, 2, 15),
			},
		),

		suppressedOwner: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "suppressed_owner_total",
				Help:      "Total number of suppressed requests by owning class",
			},
			[]string{"owner"},
		),
	}

	registry.MustRegister(
		vm.verdictsTotal,
		vm.decisionDuration,
		vm.suppressedOwner,
	)

	return vm
}

// RecordVerdict records one decision.
func (vm *VerdictMetrics) RecordVerdict(severity, reason string, duration time.Duration) {
	vm.verdictsTotal.WithLabelValues(severity, reason).Inc()
	vm.decisionDuration.Observe(duration.Seconds())
}

// RecordSuppressedOwner counts a suppression against its owning class.
func (vm *VerdictMetrics) RecordSuppressedOwner(owner string) {
	vm.suppressedOwner.WithLabelValues(owner).Inc()
}
