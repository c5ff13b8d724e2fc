package sink

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3" // registers "sqlite3" (cgo)
	_ "modernc.org/sqlite"          // registers "sqlite" (pure Go)

	"mercator-hq/sieve/pkg/callsite"
	"mercator-hq/sieve/pkg/config"
)

// Record is one stored line.
type Record struct {
	ID         string
	RecordedAt time.Time
	Severity   string
	Line       string
}

// Query selects stored lines. Zero fields do not filter.
type Query struct {
	Since    time.Time
	Severity string
	Limit    int
}

// SQLiteSink appends emitted lines to a SQLite database. It is the durable
// sink: lines survive restarts and are pruned by a Pruner.
type SQLiteSink struct {
	db       *sql.DB
	cfg      config.SQLiteSinkConfig
	insert   *sql.Stmt
	recorder Recorder
	logger   *slog.Logger

	closeOnce sync.Once
	closeErr  error
}

// OpenSQLite opens or creates the database at cfg.Path, applies pragmas and
// creates the schema.
func OpenSQLite(cfg config.SQLiteSinkConfig, rec Recorder, logger *slog.Logger) (*SQLiteSink, error) {
	if cfg.Path == "" {
		return nil, NewStorageError("sqlite", "open", fmt.Errorf("database path cannot be empty"))
	}
	if cfg.Driver == "" {
		cfg.Driver = config.DefaultSQLiteDriver
	}
	if cfg.MaxOpenConns <= 0 {
		cfg.MaxOpenConns = config.DefaultSQLiteMaxOpen
	}
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "sink.sqlite")

	if dir := filepath.Dir(cfg.Path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, NewStorageError("sqlite", "create_dir", err)
		}
	}

	db, err := sql.Open(cfg.Driver, cfg.Path)
	if err != nil {
		return nil, NewStorageError("sqlite", "open", err)
	}
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxOpenConns)

	s := &SQLiteSink{
		db:       db,
		cfg:      cfg,
		recorder: recorderOrNop(rec),
		logger:   logger,
	}

	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}

	logger.Info("SQLite sink initialized",
		"path", cfg.Path,
		"driver", cfg.Driver,
		"journal_mode", cfg.JournalMode,
	)

	return s, nil
}

func (s *SQLiteSink) initialize() error {
	if s.cfg.JournalMode != "" {
		mode := strings.ToUpper(s.cfg.JournalMode)
		if _, err := s.db.Exec(fmt.Sprintf("PRAGMA journal_mode=%s;", mode)); err != nil {
			return NewStorageError("sqlite", "set_journal_mode", err)
		}
	}

	if s.cfg.BusyTimeout > 0 {
		if _, err := s.db.Exec(fmt.Sprintf("PRAGMA busy_timeout=%d;", s.cfg.BusyTimeout.Milliseconds())); err != nil {
			return NewStorageError("sqlite", "set_busy_timeout", err)
		}
	}

	if _, err := s.db.Exec(Schema); err != nil {
		return NewStorageError("sqlite", "create_schema", err)
	}

	if _, err := s.db.Exec(InsertSchemaVersion, SchemaVersion); err != nil {
		return NewStorageError("sqlite", "insert_schema_version", err)
	}

	var version int
	err := s.db.QueryRow(GetSchemaVersion).Scan(&version)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return NewStorageError("sqlite", "get_schema_version", err)
	}
	if version != SchemaVersion {
		return NewStorageError("sqlite", "schema_version_mismatch",
			fmt.Errorf("expected schema version %d, got %d", SchemaVersion, version))
	}

	stmt, err := s.db.Prepare(insertLine)
	if err != nil {
		return NewStorageError("sqlite", "prepare_insert", err)
	}
	s.insert = stmt
	return nil
}

// Name returns the sink name used in metrics.
func (s *SQLiteSink) Name() string {
	return "sqlite"
}

// Emit stores one line. Failures are counted and logged.
func (s *SQLiteSink) Emit(line string, severity callsite.Severity) {
	if err := s.Store(context.Background(), line, severity); err != nil {
		s.recorder.RecordSinkError(s.Name())
		s.logger.Warn("Failed to store line", "error", err)
		return
	}
	s.recorder.RecordSinkWrite(s.Name())
}

// Store inserts one line and returns any error.
func (s *SQLiteSink) Store(ctx context.Context, line string, severity callsite.Severity) error {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	_, err = s.insert.ExecContext(ctx, id.String(), time.Now().UnixNano(), severity.String(), line)
	if err != nil {
		return NewStorageError("sqlite", "insert", err)
	}
	return nil
}

// Query returns stored lines, newest first.
func (s *SQLiteSink) Query(ctx context.Context, q Query) ([]Record, error) {
	var (
		where []string
		args  []any
	)
	if !q.Since.IsZero() {
		where = append(where, "recorded_at >= ?")
		args = append(args, q.Since.UnixNano())
	}
	if q.Severity != "" {
		where = append(where, "severity = ?")
		args = append(args, q.Severity)
	}

	query := "SELECT id, recorded_at, severity, line FROM lines"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY recorded_at DESC, rowid DESC"
	if q.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, q.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, NewStorageError("sqlite", "query", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var (
			r     Record
			nanos int64
		)
		if err := rows.Scan(&r.ID, &nanos, &r.Severity, &r.Line); err != nil {
			return nil, NewStorageError("sqlite", "scan", err)
		}
		r.RecordedAt = time.Unix(0, nanos)
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, NewStorageError("sqlite", "query", err)
	}
	return records, nil
}

// Count returns the number of stored lines.
func (s *SQLiteSink) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM lines").Scan(&n); err != nil {
		return 0, NewStorageError("sqlite", "count", err)
	}
	return n, nil
}

// DeleteBefore deletes lines recorded before cutoff.
func (s *SQLiteSink) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, deleteBefore, cutoff.UnixNano())
	if err != nil {
		return 0, NewStorageError("sqlite", "delete_before", err)
	}
	return res.RowsAffected()
}

// KeepNewest deletes all but the newest n lines.
func (s *SQLiteSink) KeepNewest(ctx context.Context, n int64) (int64, error) {
	res, err := s.db.ExecContext(ctx, deleteAllButNewest, n)
	if err != nil {
		return 0, NewStorageError("sqlite", "keep_newest", err)
	}
	return res.RowsAffected()
}

// Close closes the database. It is safe to call more than once.
func (s *SQLiteSink) Close() error {
	s.closeOnce.Do(func() {
		if s.insert != nil {
			s.insert.Close()
		}
		s.closeErr = s.db.Close()
	})
	return s.closeErr
}
