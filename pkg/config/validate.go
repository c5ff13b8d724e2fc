package config

import (
	"fmt"
	"net"
	"strings"

	"github.com/robfig/cron/v3"

	"mercator-hq/sieve/pkg/callsite"
)

// FieldError represents a validation error for a specific configuration field.
type FieldError struct {
	// Field is the dotted path to the configuration field (e.g., "policy.source").
	Field string

	// Message is a human-readable error message.
	Message string
}

// Error returns the error message for this field error.
func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError represents one or more validation errors in a configuration.
// It implements the error interface and provides access to all field errors.
type ValidationError struct {
	// Errors contains all validation errors found in the configuration.
	Errors []FieldError
}

// Error returns a formatted string containing all validation errors.
func (e ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "configuration validation failed"
	}
	if len(e.Errors) == 1 {
		return fmt.Sprintf("configuration validation failed: %s", e.Errors[0].Error())
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("configuration validation failed with %d errors:\n", len(e.Errors)))
	for _, err := range e.Errors {
		sb.WriteString(fmt.Sprintf("  - %s\n", err.Error()))
	}
	return sb.String()
}

// Validate validates the entire configuration and returns a ValidationError
// if any validation rules fail. It returns nil if the configuration is valid.
// All validation errors are collected and returned together.
func Validate(cfg *Config) error {
	var errs []FieldError

	errs = append(errs, validatePolicy(&cfg.Policy)...)
	errs = append(errs, validateFilter(&cfg.Filter)...)
	errs = append(errs, validateSink(&cfg.Sink)...)
	errs = append(errs, validateTelemetry(&cfg.Telemetry)...)

	if len(errs) > 0 {
		return ValidationError{Errors: errs}
	}

	return nil
}

func validatePolicy(cfg *PolicyConfig) []FieldError {
	var errs []FieldError

	switch cfg.Source {
	case "file":
		if cfg.FilePath == "" {
			errs = append(errs, FieldError{
				Field:   "policy.file_path",
				Message: "file path is required when source is 'file'",
			})
		}
	case "git":
		if cfg.Git.Repository == "" {
			errs = append(errs, FieldError{
				Field:   "policy.git.repository",
				Message: "repository is required when source is 'git'",
			})
		}
		if cfg.Git.Branch == "" {
			errs = append(errs, FieldError{
				Field:   "policy.git.branch",
				Message: "branch is required when source is 'git'",
			})
		}
		if cfg.Git.PollInterval < 0 {
			errs = append(errs, FieldError{
				Field:   "policy.git.poll_interval",
				Message: "poll interval cannot be negative",
			})
		}
		switch cfg.Git.Auth.Type {
		case "none", "":
		case "token":
			if cfg.Git.Auth.Token == "" {
				errs = append(errs, FieldError{
					Field:   "policy.git.auth.token",
					Message: "token is required for token auth",
				})
			}
		case "ssh":
			if cfg.Git.Auth.SSHKeyPath == "" {
				errs = append(errs, FieldError{
					Field:   "policy.git.auth.ssh_key_path",
					Message: "ssh key path is required for ssh auth",
				})
			}
		default:
			errs = append(errs, FieldError{
				Field:   "policy.git.auth.type",
				Message: fmt.Sprintf("invalid auth type %q: must be 'none', 'token' or 'ssh'", cfg.Git.Auth.Type),
			})
		}
	case "none":
	default:
		errs = append(errs, FieldError{
			Field:   "policy.source",
			Message: fmt.Sprintf("invalid source %q: must be 'file', 'git' or 'none'", cfg.Source),
		})
	}

	if cfg.DebounceInterval < 0 {
		errs = append(errs, FieldError{
			Field:   "policy.debounce_interval",
			Message: "debounce interval cannot be negative",
		})
	}

	return errs
}

func validateFilter(cfg *FilterConfig) []FieldError {
	if cfg.MinSeverity == "" {
		return nil
	}
	sev, err := callsite.ParseSeverity(cfg.MinSeverity)
	if err != nil {
		return []FieldError{{Field: "filter.min_severity", Message: err.Error()}}
	}
	if sev == callsite.MethodName {
		return []FieldError{{
			Field:   "filter.min_severity",
			Message: "method traces are not a severity threshold",
		}}
	}
	return nil
}

func validateSink(cfg *SinkConfig) []FieldError {
	var errs []FieldError

	usesSQLite := false
	seen := make(map[string]bool)
	for i, out := range cfg.Outputs {
		switch out {
		case "stdout", "stderr":
		case "sqlite":
			usesSQLite = true
		default:
			errs = append(errs, FieldError{
				Field:   fmt.Sprintf("sink.outputs[%d]", i),
				Message: fmt.Sprintf("invalid output %q: must be 'stdout', 'stderr' or 'sqlite'", out),
			})
		}
		if seen[out] {
			errs = append(errs, FieldError{
				Field:   fmt.Sprintf("sink.outputs[%d]", i),
				Message: fmt.Sprintf("duplicate output %q", out),
			})
		}
		seen[out] = true
	}

	if cfg.Format != "text" && cfg.Format != "json" {
		errs = append(errs, FieldError{
			Field:   "sink.format",
			Message: fmt.Sprintf("invalid format %q: must be 'text' or 'json'", cfg.Format),
		})
	}

	if usesSQLite {
		errs = append(errs, validateSQLite(&cfg.SQLite)...)
	}

	return errs
}

func validateSQLite(cfg *SQLiteSinkConfig) []FieldError {
	var errs []FieldError

	if cfg.Path == "" {
		errs = append(errs, FieldError{Field: "sink.sqlite.path", Message: "path is required"})
	}
	if cfg.Driver != "sqlite" && cfg.Driver != "sqlite3" {
		errs = append(errs, FieldError{
			Field:   "sink.sqlite.driver",
			Message: fmt.Sprintf("invalid driver %q: must be 'sqlite' or 'sqlite3'", cfg.Driver),
		})
	}
	if cfg.MaxOpenConns < 0 {
		errs = append(errs, FieldError{Field: "sink.sqlite.max_open_conns", Message: "cannot be negative"})
	}
	if cfg.Retention.RetentionDays < 0 {
		errs = append(errs, FieldError{Field: "sink.sqlite.retention.retention_days", Message: "cannot be negative"})
	}
	if cfg.Retention.MaxRecords < 0 {
		errs = append(errs, FieldError{Field: "sink.sqlite.retention.max_records", Message: "cannot be negative"})
	}
	if cfg.Retention.PruneSchedule != "" {
		if _, err := cron.ParseStandard(cfg.Retention.PruneSchedule); err != nil {
			errs = append(errs, FieldError{
				Field:   "sink.sqlite.retention.prune_schedule",
				Message: fmt.Sprintf("invalid cron expression: %v", err),
			})
		}
	}

	return errs
}

func validateTelemetry(cfg *TelemetryConfig) []FieldError {
	var errs []FieldError

	switch strings.ToLower(cfg.Logging.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.level",
			Message: fmt.Sprintf("invalid level %q: must be 'debug', 'info', 'warn' or 'error'", cfg.Logging.Level),
		})
	}

	switch strings.ToLower(cfg.Logging.Format) {
	case "json", "text", "console":
	default:
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.format",
			Message: fmt.Sprintf("invalid format %q: must be 'json', 'text' or 'console'", cfg.Logging.Format),
		})
	}

	if cfg.Metrics.Enabled {
		if _, _, err := net.SplitHostPort(cfg.Metrics.ListenAddress); err != nil {
			errs = append(errs, FieldError{
				Field:   "telemetry.metrics.listen_address",
				Message: fmt.Sprintf("invalid address: %v", err),
			})
		}
		if !strings.HasPrefix(cfg.Metrics.Path, "/") {
			errs = append(errs, FieldError{
				Field:   "telemetry.metrics.path",
				Message: "path must start with '/'",
			})
		}
	}

	return errs
}
