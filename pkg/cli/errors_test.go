package cli

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"mercator-hq/sieve/pkg/policy"
)

func TestConfigError(t *testing.T) {
	tests := []struct {
		err  *ConfigError
		want string
	}{
		{
			err:  NewConfigError("sink.sqlite.driver", "must be sqlite or sqlite3"),
			want: "config error at sink.sqlite.driver: must be sqlite or sqlite3",
		},
		{
			err:  NewConfigError("", "no such file"),
			want: "config error: no such file",
		},
		{
			err:  &ConfigError{Path: "/etc/sieve.yaml", Field: "policy.source", Message: "invalid source"},
			want: "config error in /etc/sieve.yaml at policy.source: invalid source",
		},
	}

	for _, tt := range tests {
		if got := tt.err.Error(); got != tt.want {
			t.Errorf("Error() = %q, want %q", got, tt.want)
		}
	}
}

func TestPolicyError(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "policy.yaml")
	if err := os.WriteFile(path, []byte("severities:\n  verbose: true\nroles:\n  janitor: false\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	t.Run("validation fields", func(t *testing.T) {
		_, _, err := policy.LoadFile(path)
		pe := NewPolicyError(path, err)

		if len(pe.Fields) != 2 {
			t.Fatalf("Fields = %v, want 2 entries", pe.Fields)
		}
		if got := pe.Problems(); len(got) != 2 || !strings.Contains(got[0], "severities.verbose") {
			t.Errorf("Problems() = %v", got)
		}
		if !strings.Contains(pe.Error(), "2 invalid field(s)") {
			t.Errorf("Error() = %q", pe.Error())
		}
		var lerr *policy.LoadError
		if !errors.As(pe, &lerr) {
			t.Error("errors.As() did not find the LoadError")
		}
	})

	t.Run("load failure", func(t *testing.T) {
		missing := filepath.Join(dir, "missing.yaml")
		_, _, err := policy.LoadFile(missing)
		pe := NewPolicyError(missing, err)

		if len(pe.Fields) != 0 {
			t.Errorf("Fields = %v, want none", pe.Fields)
		}
		if got := pe.Problems(); len(got) != 1 || !strings.Contains(got[0], "cannot stat file") {
			t.Errorf("Problems() = %v", got)
		}
	})
}

func TestCommandError(t *testing.T) {
	cause := errors.New("database locked")
	err := NewCommandError("prune", cause)

	if err.Error() != "prune: database locked" {
		t.Errorf("Error() = %q", err.Error())
	}
	if !errors.Is(err, cause) {
		t.Error("errors.Is() did not find the cause")
	}
}
