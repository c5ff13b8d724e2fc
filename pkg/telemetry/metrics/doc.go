// Package metrics provides Prometheus metrics for sieve.
//
// # Metrics
//
//   - Verdicts: decision count by severity and reason, decision latency and
//     suppressions by owning class (bounded by a cardinality limiter)
//   - Sinks: writes, write errors and retention deletions
//   - Policy: reload attempts and the time of the last good load
//
// # Usage
//
//	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
//	collector.RecordVerdict("Error", "emitted", "Store", elapsed)
//	mux.Handle(cfg.Telemetry.Metrics.Path, collector.Handler())
//
// A nil *Collector is valid and records nothing.
package metrics
