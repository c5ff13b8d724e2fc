package sink

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"mercator-hq/sieve/pkg/callsite"
)

// WriterSink writes lines through a slog handler to an io.Writer. Each line
// becomes the record message; the level carries the severity label.
type WriterSink struct {
	name     string
	handler  slog.Handler
	recorder Recorder
	logger   *slog.Logger
}

// NewWriterSink creates a sink named name writing to w in format "text" or
// "json". rec and logger may be nil.
func NewWriterSink(name string, w io.Writer, format string, rec Recorder, logger *slog.Logger) (*WriterSink, error) {
	if w == nil {
		return nil, fmt.Errorf("writer cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	opts := &slog.HandlerOptions{
		// Filtering already happened; accept every level.
		Level:       LevelMethod,
		ReplaceAttr: renameLevel,
	}

	var handler slog.Handler
	switch format {
	case "json":
		handler = slog.NewJSONHandler(w, opts)
	case "text", "":
		handler = slog.NewTextHandler(w, opts)
	default:
		return nil, fmt.Errorf("unknown sink format: %s", format)
	}

	return &WriterSink{
		name:     name,
		handler:  handler,
		recorder: recorderOrNop(rec),
		logger:   logger.With("component", "sink.writer", "sink", name),
	}, nil
}

// Name returns the sink name used in metrics.
func (s *WriterSink) Name() string {
	return s.name
}

// Emit writes one line.
func (s *WriterSink) Emit(line string, severity callsite.Severity) {
	record := slog.NewRecord(time.Now(), Level(severity), line, 0)
	if err := s.handler.Handle(context.Background(), record); err != nil {
		s.recorder.RecordSinkError(s.name)
		s.logger.Warn("Failed to write line", "error", err)
		return
	}
	s.recorder.RecordSinkWrite(s.name)
}
