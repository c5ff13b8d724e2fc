package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"mercator-hq/sieve/pkg/config"
)

// PolicyMetrics tracks policy loading.
//
// Metrics:
//   - sieve_policy_reloads_total: load attempts by source and status
//   - sieve_policy_last_reload_timestamp_seconds: time of the last successful load
type PolicyMetrics struct {
	reloadsTotal *prometheus.CounterVec
	lastReload   *prometheus.GaugeVec
}

// NewPolicyMetrics creates and registers policy metrics with the provided registry.
func NewPolicyMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *PolicyMetrics {
	pm := &PolicyMetrics{
		reloadsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "policy_reloads_total",
				Help:      "Total number of policy load attempts",
			},
			[]string{"source", "status"},
		),

		lastReload: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "policy_last_reload_timestamp_seconds",
				Help:      "Unix time of the last successful policy load",
			},
			[]string{"source"},
		),
	}

	registry.MustRegister(pm.reloadsTotal, pm.lastReload)

	return pm
}

// RecordReload records a load attempt from source.
func (pm *PolicyMetrics) RecordReload(source string, ok bool) {
	status := "success"
	if !ok {
		status = "failure"
	}
	pm.reloadsTotal.WithLabelValues(source, status).Inc()
	if ok {
		pm.lastReload.WithLabelValues(source).Set(float64(time.Now().Unix()))
	}
}
