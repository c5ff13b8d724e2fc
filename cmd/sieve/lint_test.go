package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestRunLint(t *testing.T) {
	tests := []struct {
		name    string
		files   []string
		format  string
		wantErr bool
		want    []string
	}{
		{
			name:  "valid file",
			files: []string{"testdata/valid-policy.yaml"},
			want:  []string{"✓ testdata/valid-policy.yaml", "1 file(s) checked, 0 invalid"},
		},
		{
			name:    "invalid file lists every field",
			files:   []string{"testdata/invalid-policy.yaml"},
			wantErr: true,
			want:    []string{"severities.verbose: unknown severity", "roles.janitor: unknown role", "tags.allow[0]: empty name"},
		},
		{
			name:    "missing file",
			files:   []string{"testdata/nonexistent.yaml"},
			wantErr: true,
			want:    []string{"cannot stat file"},
		},
		{
			name:    "mixed",
			files:   []string{"testdata/valid-policy.yaml", "testdata/invalid-policy.yaml"},
			wantErr: true,
			want:    []string{"2 file(s) checked, 1 invalid"},
		},
		{
			name:    "bad format",
			files:   []string{"testdata/valid-policy.yaml"},
			format:  "xml",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			format := tt.format
			if format == "" {
				format = "text"
			}
			err := runLint(&buf, tt.files, format)
			if (err != nil) != tt.wantErr {
				t.Fatalf("runLint() error = %v, wantErr %v", err, tt.wantErr)
			}
			for _, want := range tt.want {
				if !strings.Contains(buf.String(), want) {
					t.Errorf("output missing %q:\n%s", want, buf.String())
				}
			}
		})
	}
}

func TestRunLint_JSON(t *testing.T) {
	var buf bytes.Buffer
	err := runLint(&buf, []string{"testdata/valid-policy.yaml", "testdata/invalid-policy.yaml"}, "json")
	if err == nil {
		t.Fatal("runLint() error = nil with an invalid file")
	}

	var results []LintResult
	if err := json.Unmarshal(buf.Bytes(), &results); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, buf.String())
	}
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	if !results[0].Valid || results[0].Version == "" {
		t.Errorf("valid result = %+v", results[0])
	}
	if results[1].Valid || len(results[1].Errors) != 3 {
		t.Errorf("invalid result = %+v", results[1])
	}
}

func TestLintPolicies_NoFiles(t *testing.T) {
	lintFlags.dir = ""
	if err := lintPolicies(nil, nil); err == nil {
		t.Error("lintPolicies() without files error = nil")
	}
}

func TestLintPolicies_Dir(t *testing.T) {
	lintFlags.dir = "testdata"
	lintFlags.format = "text"
	defer func() { lintFlags.dir = "" }()

	// testdata holds one invalid policy.
	if err := lintPolicies(nil, nil); err == nil {
		t.Error("lintPolicies(--dir testdata) error = nil")
	}
}
