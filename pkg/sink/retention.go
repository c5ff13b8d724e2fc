package sink

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"mercator-hq/sieve/pkg/config"
)

// Store is the storage a Pruner trims. *SQLiteSink implements it.
type Store interface {
	DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error)
	KeepNewest(ctx context.Context, n int64) (int64, error)
}

// Pruner enforces retention on stored lines.
type Pruner struct {
	store    Store
	config   config.RetentionConfig
	recorder Recorder
	logger   *slog.Logger

	// now is replaced in tests.
	now func() time.Time
}

// NewPruner creates a pruner for store. rec and logger may be nil.
func NewPruner(store Store, cfg config.RetentionConfig, rec Recorder, logger *slog.Logger) *Pruner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pruner{
		store:    store,
		config:   cfg,
		recorder: recorderOrNop(rec),
		logger:   logger.With("component", "sink.retention"),
		now:      time.Now,
	}
}

// Prune deletes lines older than the retention period, then deletes the
// oldest lines beyond the record limit. It returns the total deleted.
func (p *Pruner) Prune(ctx context.Context) (int64, error) {
	var totalDeleted int64

	if p.config.RetentionDays > 0 {
		cutoff := p.now().AddDate(0, 0, -p.config.RetentionDays)
		deleted, err := p.store.DeleteBefore(ctx, cutoff)
		if err != nil {
			return totalDeleted, fmt.Errorf("prune by age failed: %w", err)
		}
		totalDeleted += deleted
		p.logger.Debug("pruned lines by age",
			"deleted_count", deleted,
			"retention_days", p.config.RetentionDays,
		)
	}

	if p.config.MaxRecords > 0 {
		deleted, err := p.store.KeepNewest(ctx, p.config.MaxRecords)
		if err != nil {
			p.recorder.RecordPruned(totalDeleted)
			return totalDeleted, fmt.Errorf("prune by count failed: %w", err)
		}
		totalDeleted += deleted
		p.logger.Debug("pruned lines by count",
			"deleted_count", deleted,
			"max_records", p.config.MaxRecords,
		)
	}

	p.recorder.RecordPruned(totalDeleted)
	if totalDeleted > 0 {
		p.logger.Info("line pruning completed",
			"total_deleted", totalDeleted,
			"retention_days", p.config.RetentionDays,
			"max_records", p.config.MaxRecords,
		)
	}

	return totalDeleted, nil
}
