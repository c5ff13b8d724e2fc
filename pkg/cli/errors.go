package cli

import (
	"errors"
	"fmt"
	"strings"

	"mercator-hq/sieve/pkg/policy"
)

// ConfigError reports an unusable configuration. Path and Field are
// optional.
type ConfigError struct {
	Path    string
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	var sb strings.Builder
	sb.WriteString("config error")
	if e.Path != "" {
		fmt.Fprintf(&sb, " in %s", e.Path)
	}
	if e.Field != "" {
		fmt.Fprintf(&sb, " at %s", e.Field)
	}
	sb.WriteString(": ")
	sb.WriteString(e.Message)
	return sb.String()
}

// NewConfigError creates a ConfigError for a flag or config field.
func NewConfigError(field, message string) *ConfigError {
	return &ConfigError{Field: field, Message: message}
}

// PolicyError reports a policy file that could not be used. Fields lists
// every invalid field when the file parsed but failed validation.
type PolicyError struct {
	Path   string
	Fields []string
	Err    error
}

// NewPolicyError wraps a policy load error for path.
func NewPolicyError(path string, err error) *PolicyError {
	pe := &PolicyError{Path: path, Err: err}
	var verr *policy.ValidationError
	if errors.As(err, &verr) {
		for _, fe := range verr.Errors {
			pe.Fields = append(pe.Fields, fe.Error())
		}
	}
	return pe
}

func (e *PolicyError) Error() string {
	if len(e.Fields) > 0 {
		return fmt.Sprintf("policy %s has %d invalid field(s): %s", e.Path, len(e.Fields), strings.Join(e.Fields, "; "))
	}
	return fmt.Sprintf("policy %s: %v", e.Path, e.Err)
}

func (e *PolicyError) Unwrap() error {
	return e.Err
}

// Problems returns the messages to show per file: the field errors, or the
// load error itself.
func (e *PolicyError) Problems() []string {
	if len(e.Fields) > 0 {
		return e.Fields
	}
	return []string{e.Err.Error()}
}

// CommandError represents an error from a command execution.
type CommandError struct {
	Command string
	Err     error
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("%s: %v", e.Command, e.Err)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// NewCommandError creates a new CommandError.
func NewCommandError(command string, err error) *CommandError {
	return &CommandError{Command: command, Err: err}
}
