package main

import (
	"fmt"

	"mercator-hq/sieve/pkg/callsite"
)

// requestJSON is one line of the newline-delimited request stream read by
// "sieve run". Enums travel as labels.
type requestJSON struct {
	Signature string   `json:"signature"`
	Kind      string   `json:"kind,omitempty"`
	Severity  string   `json:"severity"`
	Role      string   `json:"role,omitempty"`
	Tags      []string `json:"tags,omitempty"`
	Category  string   `json:"category,omitempty"`
	Class     string   `json:"class,omitempty"`
	Message   string   `json:"message,omitempty"`
}

func (r requestJSON) toRequest() (callsite.Request, error) {
	if r.Signature == "" {
		return callsite.Request{}, fmt.Errorf("signature is required")
	}
	kind, err := callsite.ParseCallKind(r.Kind)
	if err != nil {
		return callsite.Request{}, err
	}
	severity, err := callsite.ParseSeverity(r.Severity)
	if err != nil {
		return callsite.Request{}, err
	}
	role, err := callsite.ParseRole(r.Role)
	if err != nil {
		return callsite.Request{}, err
	}
	return callsite.Request{
		Signature: r.Signature,
		Kind:      kind,
		Severity:  severity,
		Role:      role,
		Tags:      r.Tags,
		Category:  r.Category,
		Class:     r.Class,
		Message:   r.Message,
	}, nil
}
