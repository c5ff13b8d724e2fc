package policy

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// ReloadHook observes every load attempt of a source. err is nil on success.
type ReloadHook func(source string, err error)

// FileSource loads a policy file into a Holder and keeps it current.
type FileSource struct {
	path     string
	holder   *Holder
	debounce time.Duration
	logger   *slog.Logger

	// OnReload, when set, is called after every load attempt.
	OnReload ReloadHook
}

// NewFileSource creates a source for path that stores into holder.
func NewFileSource(path string, holder *Holder, debounce time.Duration, logger *slog.Logger) *FileSource {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileSource{
		path:     path,
		holder:   holder,
		debounce: debounce,
		logger:   logger.With("component", "policy.file"),
	}
}

// Load reads the policy file and stores it. On failure the previously stored
// policy stays in effect.
func (s *FileSource) Load() error {
	start := time.Now()

	rules, version, err := LoadFile(s.path)
	if s.OnReload != nil {
		s.OnReload("file", err)
	}
	if err != nil {
		s.logger.Error("Failed to load policy, keeping previous",
			"path", s.path,
			"error", err,
			"current_version", s.holder.Snapshot().Version,
		)
		return err
	}

	s.holder.Store(rules, version, s.path)
	s.logger.Info("Policy loaded",
		"path", s.path,
		"version", version,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return nil
}

// Watch reloads the policy whenever the file changes, until ctx is done.
// Reload errors are logged and do not stop watching.
func (s *FileSource) Watch(ctx context.Context) error {
	fw, err := NewFileWatcher(s.path, s.debounce, s.logger)
	if err != nil {
		return fmt.Errorf("failed to create policy watcher: %w", err)
	}
	defer fw.Stop()

	return fw.Watch(ctx, func() {
		_ = s.Load()
	})
}
