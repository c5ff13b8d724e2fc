package sink

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"mercator-hq/sieve/pkg/callsite"
	"mercator-hq/sieve/pkg/config"
)

func testSQLiteConfig(t *testing.T, driver string) config.SQLiteSinkConfig {
	t.Helper()
	return config.SQLiteSinkConfig{
		Path:         filepath.Join(t.TempDir(), "data", "sieve.db"),
		Driver:       driver,
		JournalMode:  "wal",
		BusyTimeout:  time.Second,
		MaxOpenConns: 1,
	}
}

func openTestSQLite(t *testing.T, rec Recorder) *SQLiteSink {
	t.Helper()
	s, err := OpenSQLite(testSQLiteConfig(t, "sqlite"), rec, nil)
	if err != nil {
		t.Fatalf("OpenSQLite() error = %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSQLiteSink_EmitAndQuery(t *testing.T) {
	rec := newCountingRecorder()
	s := openTestSQLite(t, rec)
	ctx := context.Background()

	s.Emit("[Error][Setter] instance Store.Put: write failed", callsite.Error)
	s.Emit("[Info][Getter] instance Store.Get", callsite.Info)
	s.Emit("[Error][Action] instance Store.Flush", callsite.Error)

	n, err := s.Count(ctx)
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if n != 3 {
		t.Errorf("Count() = %d, want 3", n)
	}
	if rec.writes["sqlite"] != 3 {
		t.Errorf("recorded writes = %d, want 3", rec.writes["sqlite"])
	}

	records, err := s.Query(ctx, Query{Severity: "Error"})
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("Query(Error) returned %d records, want 2", len(records))
	}
	if records[0].Line != "[Error][Action] instance Store.Flush" {
		t.Errorf("newest record = %q, want Store.Flush line", records[0].Line)
	}
	if records[0].ID == "" || records[0].ID == records[1].ID {
		t.Errorf("record IDs not unique: %q, %q", records[0].ID, records[1].ID)
	}

	limited, err := s.Query(ctx, Query{Limit: 1})
	if err != nil {
		t.Fatalf("Query(limit) error = %v", err)
	}
	if len(limited) != 1 {
		t.Errorf("Query(Limit: 1) returned %d records", len(limited))
	}

	future, err := s.Query(ctx, Query{Since: time.Now().Add(time.Hour)})
	if err != nil {
		t.Fatalf("Query(since) error = %v", err)
	}
	if len(future) != 0 {
		t.Errorf("Query(Since: future) returned %d records", len(future))
	}
}

func TestSQLiteSink_Reopen(t *testing.T) {
	cfg := testSQLiteConfig(t, "sqlite")

	s, err := OpenSQLite(cfg, nil, nil)
	if err != nil {
		t.Fatalf("OpenSQLite() error = %v", err)
	}
	s.Emit("persisted", callsite.Notice)
	if err := s.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := s.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}

	s, err = OpenSQLite(cfg, nil, nil)
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	defer s.Close()

	n, err := s.Count(context.Background())
	if err != nil || n != 1 {
		t.Errorf("Count() after reopen = %d, %v; want 1", n, err)
	}
}

func TestSQLiteSink_CgoDriver(t *testing.T) {
	s, err := OpenSQLite(testSQLiteConfig(t, "sqlite3"), nil, nil)
	if err != nil {
		if strings.Contains(err.Error(), "CGO") {
			t.Skip("sqlite3 driver needs cgo")
		}
		t.Fatalf("OpenSQLite(sqlite3) error = %v", err)
	}
	defer s.Close()

	s.Emit("via cgo", callsite.Warning)
	if n, err := s.Count(context.Background()); err != nil || n != 1 {
		t.Errorf("Count() = %d, %v; want 1", n, err)
	}
}

func TestOpenSQLite_Errors(t *testing.T) {
	_, err := OpenSQLite(config.SQLiteSinkConfig{}, nil, nil)
	var serr *StorageError
	if !errors.As(err, &serr) || serr.Operation != "open" {
		t.Errorf("empty path error = %v, want StorageError(open)", err)
	}

	cfg := testSQLiteConfig(t, "sqlite")
	cfg.Driver = "postgres"
	if _, err := OpenSQLite(cfg, nil, nil); err == nil {
		t.Error("unknown driver error = nil")
	}
}

func TestSQLiteSink_EmitAfterClose(t *testing.T) {
	rec := newCountingRecorder()
	s, err := OpenSQLite(testSQLiteConfig(t, "sqlite"), rec, nil)
	if err != nil {
		t.Fatalf("OpenSQLite() error = %v", err)
	}
	s.Close()

	s.Emit("lost", callsite.Error)

	if rec.errors["sqlite"] != 1 {
		t.Errorf("recorded errors = %d, want 1", rec.errors["sqlite"])
	}
}

func TestBuild_SQLite(t *testing.T) {
	cfg := config.SinkConfig{
		Outputs: []string{"sqlite", "stdout"},
		Format:  "json",
		SQLite:  testSQLiteConfig(t, "sqlite"),
	}
	stdout := &bytes.Buffer{}

	set, err := Build(cfg, stdout, nil, nil, nil)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	defer set.Close()

	set.Emit("stored and printed", callsite.Alert)

	if set.SQLite == nil {
		t.Fatal("Build() did not expose SQLite sink")
	}
	if n, _ := set.SQLite.Count(context.Background()); n != 1 {
		t.Errorf("stored lines = %d, want 1", n)
	}
	if !strings.Contains(stdout.String(), "stored and printed") {
		t.Errorf("stdout = %q", stdout.String())
	}
}
