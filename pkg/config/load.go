package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// LoadConfig loads configuration from a YAML file at the specified path.
// It applies default values, validates the configuration, and returns any errors.
// An empty path returns the defaults. The configuration is not modified by
// environment variables; use LoadConfigWithEnvOverrides for that functionality.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}

	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// LoadConfigWithEnvOverrides loads configuration from a YAML file and applies
// environment variable overrides. Environment variables follow the naming
// convention SIEVE_SECTION_FIELD (e.g., SIEVE_POLICY_FILE_PATH).
// Environment variables always take precedence over file-based configuration.
//
// The loading sequence is:
// 1. Load YAML from file
// 2. Apply default values
// 3. Apply environment variable overrides
// 4. Validate final configuration
func LoadConfigWithEnvOverrides(path string) (*Config, error) {
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed after environment overrides: %w", err)
	}

	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides to the configuration.
func applyEnvOverrides(cfg *Config) {
	// Policy overrides
	if val := os.Getenv("SIEVE_POLICY_SOURCE"); val != "" {
		cfg.Policy.Source = val
	}
	if val := os.Getenv("SIEVE_POLICY_FILE_PATH"); val != "" {
		cfg.Policy.FilePath = val
	}
	if val := os.Getenv("SIEVE_POLICY_WATCH"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Policy.Watch = b
		}
	}
	if val := os.Getenv("SIEVE_POLICY_DEBOUNCE_INTERVAL"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Policy.DebounceInterval = d
		}
	}
	if val := os.Getenv("SIEVE_POLICY_GIT_REPOSITORY"); val != "" {
		cfg.Policy.Git.Repository = val
	}
	if val := os.Getenv("SIEVE_POLICY_GIT_BRANCH"); val != "" {
		cfg.Policy.Git.Branch = val
	}
	if val := os.Getenv("SIEVE_POLICY_GIT_FILE"); val != "" {
		cfg.Policy.Git.File = val
	}
	if val := os.Getenv("SIEVE_POLICY_GIT_POLL_INTERVAL"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Policy.Git.PollInterval = d
		}
	}
	if val := os.Getenv("SIEVE_POLICY_GIT_AUTH_TYPE"); val != "" {
		cfg.Policy.Git.Auth.Type = val
	}
	if val := os.Getenv("SIEVE_POLICY_GIT_AUTH_TOKEN"); val != "" {
		cfg.Policy.Git.Auth.Token = val
	}

	// Filter overrides
	if val, ok := os.LookupEnv("SIEVE_FILTER_MIN_SEVERITY"); ok {
		cfg.Filter.MinSeverity = val
	}

	// Sink overrides
	if val := os.Getenv("SIEVE_SINK_OUTPUTS"); val != "" {
		var outputs []string
		for _, out := range strings.Split(val, ",") {
			if out = strings.TrimSpace(out); out != "" {
				outputs = append(outputs, out)
			}
		}
		cfg.Sink.Outputs = outputs
	}
	if val := os.Getenv("SIEVE_SINK_FORMAT"); val != "" {
		cfg.Sink.Format = val
	}
	if val := os.Getenv("SIEVE_SINK_SQLITE_PATH"); val != "" {
		cfg.Sink.SQLite.Path = val
	}
	if val := os.Getenv("SIEVE_SINK_SQLITE_DRIVER"); val != "" {
		cfg.Sink.SQLite.Driver = val
	}
	if val := os.Getenv("SIEVE_SINK_SQLITE_RETENTION_DAYS"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.Sink.SQLite.Retention.RetentionDays = i
		}
	}

	// Telemetry overrides
	if val := os.Getenv("SIEVE_TELEMETRY_LOGGING_LEVEL"); val != "" {
		cfg.Telemetry.Logging.Level = val
	}
	if val := os.Getenv("SIEVE_TELEMETRY_LOGGING_FORMAT"); val != "" {
		cfg.Telemetry.Logging.Format = val
	}
	if val := os.Getenv("SIEVE_TELEMETRY_METRICS_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Telemetry.Metrics.Enabled = b
		}
	}
	if val := os.Getenv("SIEVE_TELEMETRY_METRICS_LISTEN_ADDRESS"); val != "" {
		cfg.Telemetry.Metrics.ListenAddress = val
	}
}
