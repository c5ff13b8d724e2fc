// Package telemetry groups sieve's own observability: structured process
// logging in the logging subpackage and Prometheus metrics in the metrics
// subpackage. Neither is involved in deciding whether a call-site line is
// emitted; they report on the process doing the deciding.
package telemetry
