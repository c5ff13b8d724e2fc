package sink

import (
	"mercator-hq/sieve/pkg/callsite"
)

// Sink accepts formatted lines. Emit must not panic and does not report
// failure to the caller; implementations surface write errors through their
// Recorder and logger.
type Sink interface {
	Emit(line string, severity callsite.Severity)
}

// Func adapts a function to the Sink interface.
type Func func(line string, severity callsite.Severity)

// Emit calls f.
func (f Func) Emit(line string, severity callsite.Severity) {
	f(line, severity)
}

// Discard drops every line.
type Discard struct{}

// Emit does nothing.
func (Discard) Emit(string, callsite.Severity) {}

// Multi fans a line out to every sink in order. Nil entries are skipped.
type Multi []Sink

// Emit writes line to every sink.
func (m Multi) Emit(line string, severity callsite.Severity) {
	for _, s := range m {
		if s != nil {
			s.Emit(line, severity)
		}
	}
}

// Recorder receives sink outcomes. *metrics.Collector satisfies it.
type Recorder interface {
	RecordSinkWrite(sink string)
	RecordSinkError(sink string)
	RecordPruned(n int64)
}

type nopRecorder struct{}

func (nopRecorder) RecordSinkWrite(string) {}
func (nopRecorder) RecordSinkError(string) {}
func (nopRecorder) RecordPruned(int64) {}

func recorderOrNop(r Recorder) Recorder {
	if r == nil {
		return nopRecorder{}
	}
	return r
}
