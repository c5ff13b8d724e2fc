package sieve

import (
	"log/slog"
	"time"

	"mercator-hq/sieve/pkg/callsite"
	"mercator-hq/sieve/pkg/filter"
	"mercator-hq/sieve/pkg/policy"
	"mercator-hq/sieve/pkg/sink"
)

// Provider supplies the policy in effect for a single call. *policy.Holder
// and policy.Static implement it.
type Provider interface {
	Current() policy.Policy
}

// Recorder receives one observation per decision. *metrics.Collector
// implements it.
type Recorder interface {
	RecordVerdict(severity, reason, owner string, duration time.Duration)
}

// Debugger is the call-site logging entry point. It reads the current
// policy on every call, so policy swaps take effect immediately. A Debugger
// is safe for concurrent use and never panics into its caller.
type Debugger struct {
	provider  Provider
	sink      sink.Sink
	engine    filter.Engine
	threshold filter.Threshold
	recorder  Recorder
	logger    *slog.Logger
}

// Option configures a Debugger.
type Option func(*Debugger)

// WithThreshold drops requests below a minimum severity before any rule is
// consulted.
func WithThreshold(t filter.Threshold) Option {
	return func(d *Debugger) { d.threshold = t }
}

// WithFormatter replaces the line formatter.
func WithFormatter(f filter.Formatter) Option {
	return func(d *Debugger) { d.engine.Formatter = f }
}

// WithRecorder records every decision.
func WithRecorder(r Recorder) Option {
	return func(d *Debugger) { d.recorder = r }
}

// WithLogger sets the logger for the debugger's own diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(d *Debugger) {
		if l != nil {
			d.logger = l
		}
	}
}

// New creates a Debugger. A nil provider means no policy (everything is
// emitted) and a nil sink discards emitted lines.
func New(provider Provider, s sink.Sink, opts ...Option) *Debugger {
	if provider == nil {
		provider = policy.Static{}
	}
	if s == nil {
		s = sink.Discard{}
	}
	d := &Debugger{
		provider: provider,
		sink:     s,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(d)
	}
	d.logger = d.logger.With("component", "sieve")
	return d
}

// Log filters and, if admitted, emits one request.
func (d *Debugger) Log(signature string, kind callsite.CallKind, severity callsite.Severity, role callsite.Role, tags []string, message string) callsite.Verdict {
	return d.Emit(callsite.Request{
		Signature: signature,
		Kind:      kind,
		Severity:  severity,
		Role:      role,
		Tags:      tags,
		Message:   message,
	})
}

// Method traces entry into a method.
func (d *Debugger) Method(signature string, kind callsite.CallKind, role callsite.Role) callsite.Verdict {
	return d.Emit(callsite.Request{
		Signature: signature,
		Kind:      kind,
		Severity:  callsite.MethodName,
		Role:      role,
	})
}

// Emit filters req and hands an admitted line to the sink. The returned
// verdict is informational; callers need not inspect it.
func (d *Debugger) Emit(req callsite.Request) callsite.Verdict {
	start := time.Now()
	verdict := d.decide(req)
	elapsed := time.Since(start)

	if verdict.Emit {
		d.deliver(verdict.Line, req.Severity)
	}

	if d.recorder != nil {
		d.recorder.RecordVerdict(req.Severity.String(), string(verdict.Reason), req.OwnerClass(), elapsed)
	}
	return verdict
}

// Evaluate returns the verdict for req without emitting anything.
func (d *Debugger) Evaluate(req callsite.Request) callsite.Verdict {
	return d.decide(req)
}

func (d *Debugger) decide(req callsite.Request) (verdict callsite.Verdict) {
	if !d.threshold.Passes(req.Severity) {
		return callsite.Suppressed(callsite.ReasonThreshold)
	}

	p := d.currentPolicy()

	defer func() {
		if r := recover(); r != nil {
			// Policy panics stop in the adapter, so this is the formatter.
			d.logger.Error("Formatter panicked, using default format", "panic", r, "signature", req.Signature)
			verdict = filter.Engine{}.Evaluate(req, p)
		}
	}()
	return d.engine.Evaluate(req, p)
}

func (d *Debugger) currentPolicy() (p policy.Policy) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("Policy provider panicked, using defaults", "panic", r)
			p = nil
		}
	}()
	return d.provider.Current()
}

func (d *Debugger) deliver(line string, severity callsite.Severity) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("Sink panicked, line dropped", "panic", r)
		}
	}()
	d.sink.Emit(line, severity)
}
