package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"mercator-hq/sieve/pkg/config"
)

// maxOwnerCardinality bounds the number of distinct owner labels recorded for
// suppressed requests. Owners past the limit are counted as "other".
const maxOwnerCardinality = 1000

// Collector owns every Prometheus metric sieve records. All Record methods
// are safe for concurrent use, and all are no-ops on a nil Collector or when
// metrics are disabled, so callers never need to guard them.
type Collector struct {
	config   *config.MetricsConfig
	registry *prometheus.Registry

	verdictMetrics *VerdictMetrics
	sinkMetrics    *SinkMetrics
	policyMetrics  *PolicyMetrics

	ownerLimiter *CardinalityLimiter
}

// NewCollector creates a collector and registers its metrics with registry.
// A nil registry gets a fresh one.
//
// Example:
//
//	cfg := &config.MetricsConfig{Enabled: true, Namespace: "sieve"}
//	collector := metrics.NewCollector(cfg, nil)
func NewCollector(cfg *config.MetricsConfig, registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	if cfg == nil {
		cfg = &config.MetricsConfig{Enabled: true}
	}
	if cfg.Namespace == "" {
		cfg.Namespace = config.DefaultMetricsNamespace
	}

	return &Collector{
		config:         cfg,
		registry:       registry,
		verdictMetrics: NewVerdictMetrics(cfg, registry),
		sinkMetrics:    NewSinkMetrics(cfg, registry),
		policyMetrics:  NewPolicyMetrics(cfg, registry),
		ownerLimiter:   NewCardinalityLimiter(maxOwnerCardinality),
	}
}

func (c *Collector) enabled() bool {
	return c != nil && c.config.Enabled
}

// RecordVerdict records one filtering decision.
//
// Parameters:
//   - severity: severity label of the request (e.g. "Error", "Method")
//   - reason: why the request was emitted or suppressed (e.g. "emitted", "tag")
//   - owner: owning class of the call site, recorded only for suppressions
//   - duration: time spent deciding
func (c *Collector) RecordVerdict(severity, reason, owner string, duration time.Duration) {
	if !c.enabled() {
		return
	}

	c.verdictMetrics.RecordVerdict(severity, reason, duration)
	if reason == "emitted" {
		return
	}
	if owner == "" {
		owner = "none"
	}
	if !c.ownerLimiter.Allow(owner) {
		owner = "other"
	}
	c.verdictMetrics.RecordSuppressedOwner(owner)
}

// RecordSinkWrite records a line handed to a sink.
func (c *Collector) RecordSinkWrite(sink string) {
	if !c.enabled() {
		return
	}
	c.sinkMetrics.RecordWrite(sink)
}

// RecordSinkError records a failed sink write.
func (c *Collector) RecordSinkError(sink string) {
	if !c.enabled() {
		return
	}
	c.sinkMetrics.RecordError(sink)
}

// RecordPolicyReload records a policy load attempt from source ("file" or
// "git"). A nil err counts as success.
func (c *Collector) RecordPolicyReload(source string, err error) {
	if !c.enabled() {
		return
	}
	c.policyMetrics.RecordReload(source, err == nil)
}

// RecordPruned records lines deleted by retention.
func (c *Collector) RecordPruned(n int64) {
	if !c.enabled() || n <= 0 {
		return
	}
	c.sinkMetrics.RecordPruned(n)
}

// Registry returns the Prometheus registry used by this collector.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// CardinalityLimiter prevents metric cardinality explosion by limiting
// the number of unique label values per metric.
type CardinalityLimiter struct {
	maxCardinality int
	current        map[string]struct{}
	mu             sync.RWMutex
}

// NewCardinalityLimiter creates a new cardinality limiter with the specified
// maximum cardinality.
func NewCardinalityLimiter(maxCardinality int) *CardinalityLimiter {
	return &CardinalityLimiter{
		maxCardinality: maxCardinality,
		current:        make(map[string]struct{}),
	}
}

// Allow reports whether value may be used as a label. Values already seen
// are always allowed; new values are allowed until the limit is reached.
func (cl *CardinalityLimiter) Allow(value string) bool {
	cl.mu.RLock()
	if _, exists := cl.current[value]; exists {
		cl.mu.RUnlock()
		return true
	}
	cl.mu.RUnlock()

	cl.mu.Lock()
	defer cl.mu.Unlock()

	// Double-check after acquiring write lock
	if _, exists := cl.current[value]; exists {
		return true
	}

	if len(cl.current) >= cl.maxCardinality {
		return false
	}

	cl.current[value] = struct{}{}
	return true
}

// Count returns the current cardinality.
func (cl *CardinalityLimiter) Count() int {
	cl.mu.RLock()
	defer cl.mu.RUnlock()
	return len(cl.current)
}
