package sink

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"mercator-hq/sieve/pkg/callsite"
	"mercator-hq/sieve/pkg/config"
)

// Set is the sink assembled from configuration: every configured output
// behind one Multi, plus the SQLite sink when one is configured.
type Set struct {
	multi  Multi
	SQLite *SQLiteSink
}

// Build opens every output listed in cfg. stdout and stderr back the
// "stdout" and "stderr" outputs.
func Build(cfg config.SinkConfig, stdout, stderr io.Writer, rec Recorder, logger *slog.Logger) (*Set, error) {
	set := &Set{}
	for _, output := range cfg.Outputs {
		switch output {
		case "stdout", "stderr":
			w := stdout
			if output == "stderr" {
				w = stderr
			}
			ws, err := NewWriterSink(output, w, cfg.Format, rec, logger)
			if err != nil {
				set.Close()
				return nil, fmt.Errorf("failed to create %s sink: %w", output, err)
			}
			set.multi = append(set.multi, ws)
		case "sqlite":
			ss, err := OpenSQLite(cfg.SQLite, rec, logger)
			if err != nil {
				set.Close()
				return nil, fmt.Errorf("failed to open sqlite sink: %w", err)
			}
			set.SQLite = ss
			set.multi = append(set.multi, ss)
		default:
			set.Close()
			return nil, fmt.Errorf("unknown sink output: %s", output)
		}
	}
	return set, nil
}

// Emit writes line to every output.
func (s *Set) Emit(line string, severity callsite.Severity) {
	s.multi.Emit(line, severity)
}

// Close releases any open outputs.
func (s *Set) Close() error {
	var errs []error
	if s.SQLite != nil {
		errs = append(errs, s.SQLite.Close())
	}
	return errors.Join(errs...)
}
