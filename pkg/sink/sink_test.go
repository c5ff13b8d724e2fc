package sink

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"

	"mercator-hq/sieve/pkg/callsite"
	"mercator-hq/sieve/pkg/config"
)

type countingRecorder struct {
	mu     sync.Mutex
	writes map[string]int
	errors map[string]int
	pruned int64
}

func newCountingRecorder() *countingRecorder {
	return &countingRecorder{writes: map[string]int{}, errors: map[string]int{}}
}

func (r *countingRecorder) RecordSinkWrite(sink string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.writes[sink]++
}

func (r *countingRecorder) RecordSinkError(sink string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errors[sink]++
}

func (r *countingRecorder) RecordPruned(n int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pruned += n
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestMulti(t *testing.T) {
	var got []string
	record := Func(func(line string, sev callsite.Severity) {
		got = append(got, sev.String()+":"+line)
	})

	Multi{record, nil, Discard{}, record}.Emit("hello", callsite.Notice)

	want := []string{"Notice:hello", "Notice:hello"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("Multi emitted %v, want %v", got, want)
	}
}

func TestLevel(t *testing.T) {
	order := []callsite.Severity{
		callsite.MethodName, callsite.Debug, callsite.Info, callsite.Notice,
		callsite.Warning, callsite.Error, callsite.Critical, callsite.Alert, callsite.Emergency,
	}
	for i := 1; i < len(order); i++ {
		if Level(order[i-1]) >= Level(order[i]) {
			t.Errorf("Level(%v) >= Level(%v)", order[i-1], order[i])
		}
	}
	if Level(callsite.Severity(99)) != LevelInfo {
		t.Error("unknown severity should map to Info")
	}
}

func TestWriterSink_Text(t *testing.T) {
	buf := &bytes.Buffer{}
	rec := newCountingRecorder()
	s, err := NewWriterSink("stdout", buf, "text", rec, nil)
	if err != nil {
		t.Fatalf("NewWriterSink() error = %v", err)
	}

	s.Emit("[Critical][Action] instance Store.Put: boom", callsite.Critical)
	s.Emit("[Method] class Store.New", callsite.MethodName)

	out := buf.String()
	for _, want := range []string{"level=Critical", "level=Method", `msg="[Critical][Action] instance Store.Put: boom"`} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if rec.writes["stdout"] != 2 {
		t.Errorf("writes = %d, want 2", rec.writes["stdout"])
	}
}

func TestWriterSink_JSON(t *testing.T) {
	buf := &bytes.Buffer{}
	s, err := NewWriterSink("stderr", buf, "json", nil, nil)
	if err != nil {
		t.Fatalf("NewWriterSink() error = %v", err)
	}

	s.Emit("[Notice][Getter] instance Cache.Get", callsite.Notice)

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if entry["level"] != "Notice" {
		t.Errorf("level = %v, want Notice", entry["level"])
	}
	if entry["msg"] != "[Notice][Getter] instance Cache.Get" {
		t.Errorf("msg = %v", entry["msg"])
	}
}

func TestWriterSink_WriteError(t *testing.T) {
	rec := newCountingRecorder()
	s, err := NewWriterSink("stdout", failingWriter{}, "text", rec, nil)
	if err != nil {
		t.Fatalf("NewWriterSink() error = %v", err)
	}

	s.Emit("line", callsite.Error)

	if rec.errors["stdout"] != 1 || rec.writes["stdout"] != 0 {
		t.Errorf("errors = %d, writes = %d; want 1, 0", rec.errors["stdout"], rec.writes["stdout"])
	}
}

func TestNewWriterSink_Errors(t *testing.T) {
	if _, err := NewWriterSink("x", nil, "text", nil, nil); err == nil {
		t.Error("nil writer error = nil")
	}
	if _, err := NewWriterSink("x", &bytes.Buffer{}, "xml", nil, nil); err == nil {
		t.Error("unknown format error = nil")
	}
}

func TestBuild(t *testing.T) {
	stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}

	set, err := Build(config.SinkConfig{
		Outputs: []string{"stdout", "stderr"},
		Format:  "text",
	}, stdout, stderr, nil, nil)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	defer set.Close()

	set.Emit("both", callsite.Info)

	if !strings.Contains(stdout.String(), "both") || !strings.Contains(stderr.String(), "both") {
		t.Errorf("stdout = %q, stderr = %q", stdout.String(), stderr.String())
	}
	if set.SQLite != nil {
		t.Error("SQLite set without sqlite output")
	}

	if _, err := Build(config.SinkConfig{Outputs: []string{"syslog"}}, stdout, stderr, nil, nil); err == nil {
		t.Error("Build() with unknown output error = nil")
	}
}
