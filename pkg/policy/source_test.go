package policy

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestFileSource_LoadKeepsLastGoodPolicy(t *testing.T) {
	dir := t.TempDir()
	path := writePolicy(t, dir, "master: false")
	holder := NewHolder(nil)

	var attempts, failures int
	src := NewFileSource(path, holder, 0, nil)
	src.OnReload = func(source string, err error) {
		if source != "file" {
			t.Errorf("source = %q, want file", source)
		}
		attempts++
		if err != nil {
			failures++
		}
	}

	if err := src.Load(); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	first := holder.Snapshot()
	if on, _ := first.Policy.(*Rules).MasterOn(); on {
		t.Error("loaded policy has master on")
	}

	writePolicy(t, dir, "severities:\n  nonsense: true")
	if err := src.Load(); err == nil {
		t.Fatal("Load() of invalid policy error = nil")
	}

	if holder.Snapshot().Version != first.Version {
		t.Error("invalid policy replaced the last good one")
	}
	if attempts != 2 || failures != 1 {
		t.Errorf("attempts = %d, failures = %d; want 2, 1", attempts, failures)
	}
}

func TestFileSource_WatchReloadsOnChange(t *testing.T) {
	dir := t.TempDir()
	path := writePolicy(t, dir, "master: true")
	holder := NewHolder(nil)

	src := NewFileSource(path, holder, 20*time.Millisecond, nil)
	if err := src.Load(); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	initial := holder.Snapshot().Version

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- src.Watch(ctx) }()

	// Give the watcher time to register before writing.
	time.Sleep(100 * time.Millisecond)
	writePolicy(t, dir, "master: false")

	deadline := time.Now().Add(3 * time.Second)
	for holder.Snapshot().Version == initial {
		if time.Now().After(deadline) {
			cancel()
			t.Fatal("policy was not reloaded after file change")
		}
		time.Sleep(20 * time.Millisecond)
	}

	if on, _ := holder.Current().(*Rules).MasterOn(); on {
		t.Error("reloaded policy has master on, want off")
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Watch() error = %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Watch() did not return after cancel")
	}
}

func TestFileWatcher_IgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	path := writePolicy(t, dir, "master: true")

	fw, err := NewFileWatcher(path, 20*time.Millisecond, nil)
	if err != nil {
		t.Fatalf("NewFileWatcher() error = %v", err)
	}

	var calls atomic.Int32
	ctx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = fw.Watch(ctx, func() { calls.Add(1) })
	}()

	time.Sleep(100 * time.Millisecond)
	if err := os.WriteFile(filepath.Join(dir, "other.yaml"), []byte("x: 1"), 0644); err != nil {
		t.Fatal(err)
	}
	time.Sleep(200 * time.Millisecond)

	cancel()
	wg.Wait()
	_ = fw.Stop()

	if n := calls.Load(); n != 0 {
		t.Errorf("callback ran %d times for an unrelated file", n)
	}
}

func TestNewFileWatcher_EmptyPath(t *testing.T) {
	if _, err := NewFileWatcher("", 0, nil); err == nil {
		t.Error("NewFileWatcher(\"\") error = nil")
	}
}

func TestDebouncer_CoalescesBursts(t *testing.T) {
	d := NewDebouncer(30 * time.Millisecond)
	defer d.Stop()

	var calls atomic.Int32
	for i := 0; i < 10; i++ {
		d.Trigger(func() { calls.Add(1) })
		time.Sleep(5 * time.Millisecond)
	}
	time.Sleep(150 * time.Millisecond)

	if n := calls.Load(); n != 1 {
		t.Errorf("callback ran %d times, want 1", n)
	}
}

func TestDebouncer_StopCancelsPending(t *testing.T) {
	d := NewDebouncer(30 * time.Millisecond)

	var calls atomic.Int32
	d.Trigger(func() { calls.Add(1) })
	d.Stop()
	d.Trigger(func() { calls.Add(1) })
	time.Sleep(100 * time.Millisecond)

	if n := calls.Load(); n != 0 {
		t.Errorf("callback ran %d times after Stop, want 0", n)
	}
}
