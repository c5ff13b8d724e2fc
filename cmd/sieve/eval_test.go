package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"mercator-hq/sieve/pkg/cli"
)

func TestRunEval(t *testing.T) {
	tests := []struct {
		name       string
		policy     string
		req        requestJSON
		minSev     string
		wantEmit   bool
		wantReason string
	}{
		{
			name:       "no policy emits",
			req:        requestJSON{Signature: "Store.Put", Severity: "error", Role: "setter"},
			wantEmit:   true,
			wantReason: "emitted",
		},
		{
			name:       "role switched off",
			policy:     "testdata/valid-policy.yaml",
			req:        requestJSON{Signature: "Store.Get", Severity: "info", Role: "getter"},
			wantReason: "role",
		},
		{
			name:       "denied tag",
			policy:     "testdata/valid-policy.yaml",
			req:        requestJSON{Signature: "Panel.Draw", Severity: "info", Tags: []string{"render", "ui"}},
			wantReason: "tag",
		},
		{
			name:       "denied class",
			policy:     "testdata/valid-policy.yaml",
			req:        requestJSON{Signature: "Noisy.tick", Severity: "error"},
			wantReason: "class",
		},
		{
			name:       "method trace ignores severity switch",
			policy:     "testdata/valid-policy.yaml",
			req:        requestJSON{Signature: "Store.Put", Severity: "method"},
			wantEmit:   true,
			wantReason: "emitted",
		},
		{
			name:       "threshold",
			req:        requestJSON{Signature: "Store.Put", Severity: "info"},
			minSev:     "warning",
			wantReason: "threshold",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := runEval(&buf, tt.policy, tt.req, tt.minSev, "json"); err != nil {
				t.Fatalf("runEval() error = %v", err)
			}

			var got evalResult
			if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
				t.Fatalf("output is not JSON: %v\n%s", err, buf.String())
			}
			if got.Emit != tt.wantEmit || got.Reason != tt.wantReason {
				t.Errorf("runEval() = %+v, want emit=%v reason=%s", got, tt.wantEmit, tt.wantReason)
			}
			if tt.policy != "" && got.PolicyVersion == "" {
				t.Error("policy version not reported")
			}
		})
	}
}

func TestRunEval_Text(t *testing.T) {
	var buf bytes.Buffer
	req := requestJSON{Signature: "Store.Put", Severity: "error", Role: "setter", Message: "write failed"}
	if err := runEval(&buf, "", req, "", "text"); err != nil {
		t.Fatalf("runEval() error = %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "emitted") || !strings.Contains(out, "Store.Put") || !strings.Contains(out, "write failed") {
		t.Errorf("text output = %q", out)
	}
}

func TestRunEval_Errors(t *testing.T) {
	valid := requestJSON{Signature: "A.b", Severity: "info"}
	tests := []struct {
		name   string
		policy string
		req    requestJSON
		minSev string
		format string
	}{
		{name: "bad format", req: valid, format: "yaml"},
		{name: "bad request", req: requestJSON{Signature: "A.b", Severity: "loud"}, format: "text"},
		{name: "bad threshold", req: valid, minSev: "loud", format: "text"},
		{name: "invalid policy", policy: "testdata/invalid-policy.yaml", req: valid, format: "text"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := runEval(&bytes.Buffer{}, tt.policy, tt.req, tt.minSev, tt.format); err == nil {
				t.Error("runEval() error = nil")
			}
		})
	}
}

func TestRunEval_InvalidPolicyNamesFile(t *testing.T) {
	path := "testdata/invalid-policy.yaml"
	err := runEval(&bytes.Buffer{}, path, requestJSON{Signature: "A.b", Severity: "info"}, "", "text")

	var perr *cli.PolicyError
	if !errors.As(err, &perr) {
		t.Fatalf("runEval() error = %v, want *cli.PolicyError", err)
	}
	if perr.Path != path || len(perr.Fields) == 0 {
		t.Errorf("PolicyError = %+v", perr)
	}
}
