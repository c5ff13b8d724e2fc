package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"mercator-hq/sieve/pkg/config"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{name: "valid JSON config", config: Config{Level: "info", Format: "json"}},
		{name: "valid text config", config: Config{Level: "debug", Format: "text"}},
		{name: "valid console config", config: Config{Level: "warn", Format: "console"}},
		{name: "defaults", config: Config{}},
		{name: "upper case", config: Config{Level: "ERROR", Format: "JSON"}},
		{name: "invalid log level", config: Config{Level: "verbose"}, wantErr: true},
		{name: "invalid format", config: Config{Format: "xml"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.config.Writer = &bytes.Buffer{}
			logger, err := New(tt.config)
			if (err != nil) != tt.wantErr {
				t.Errorf("New() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if !tt.wantErr && logger == nil {
				t.Error("New() returned nil logger")
			}
		})
	}
}

func TestLogger_LevelFiltering(t *testing.T) {
	tests := []struct {
		name     string
		logLevel string
		log      func(*slog.Logger, string, ...any)
		wantLog  bool
	}{
		{name: "debug level logs debug", logLevel: "debug", log: (*slog.Logger).Debug, wantLog: true},
		{name: "info level filters debug", logLevel: "info", log: (*slog.Logger).Debug, wantLog: false},
		{name: "info level logs info", logLevel: "info", log: (*slog.Logger).Info, wantLog: true},
		{name: "warn level filters info", logLevel: "warn", log: (*slog.Logger).Info, wantLog: false},
		{name: "error level logs error", logLevel: "error", log: (*slog.Logger).Error, wantLog: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			logger, err := New(Config{Level: tt.logLevel, Format: "text", Writer: buf})
			if err != nil {
				t.Fatalf("New() error = %v", err)
			}

			tt.log(logger, "test message")

			if got := strings.Contains(buf.String(), "test message"); got != tt.wantLog {
				t.Errorf("logged = %v, want %v (output %q)", got, tt.wantLog, buf.String())
			}
		})
	}
}

func TestLogger_JSONFormat(t *testing.T) {
	buf := &bytes.Buffer{}
	logger, err := New(FromConfig(config.LoggingConfig{Level: "info", Format: "json"}, buf))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	logger.Info("Policy loaded", "version", "abc123")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("output is not JSON: %v (%q)", err, buf.String())
	}
	if entry["msg"] != "Policy loaded" || entry["version"] != "abc123" {
		t.Errorf("entry = %v", entry)
	}
}

func TestLogger_ConsoleOmitsTime(t *testing.T) {
	buf := &bytes.Buffer{}
	logger, err := New(Config{Format: "console", Writer: buf})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	logger.Info("hello")

	if strings.Contains(buf.String(), "time=") {
		t.Errorf("console output has a timestamp: %q", buf.String())
	}
	if !strings.Contains(buf.String(), "msg=hello") {
		t.Errorf("console output = %q", buf.String())
	}
}

func TestContextLogger(t *testing.T) {
	buf := &bytes.Buffer{}
	logger, err := New(Config{Format: "text", Writer: buf})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	ctx := WithLogger(context.Background(), logger)
	ctx = WithPolicyVersion(ctx, "deadbeef")
	FromContext(ctx).Info("reloaded")

	if !strings.Contains(buf.String(), "policy_version=deadbeef") {
		t.Errorf("output missing policy version: %q", buf.String())
	}
	if GetPolicyVersion(context.Background()) != "" {
		t.Error("GetPolicyVersion() on empty context not empty")
	}
	if FromContext(context.Background()) == nil {
		t.Error("FromContext() on empty context returned nil")
	}
}

func TestDiscard(t *testing.T) {
	if Discard().Enabled(context.Background(), slog.LevelError) {
		t.Error("Discard() logger enabled at error level")
	}
}
