// Package config provides configuration management for sieve.
//
// This package handles loading, validating, and managing configuration from
// YAML files with environment variable overrides. Configuration covers the
// policy source, the minimum severity threshold, the sinks emitted lines go
// to, and the process's own logging and metrics.
//
// # Configuration Loading
//
// Configuration can be loaded in two ways:
//
//  1. From a YAML file only:
//     cfg, err := config.LoadConfig("sieve.yaml")
//
//  2. From a YAML file with environment variable overrides:
//     cfg, err := config.LoadConfigWithEnvOverrides("sieve.yaml")
//
// An empty path yields the defaults.
//
// # Environment Variable Overrides
//
// Environment variables follow the naming convention SIEVE_SECTION_FIELD.
// For example:
//
//   - SIEVE_POLICY_FILE_PATH overrides policy.file_path
//   - SIEVE_FILTER_MIN_SEVERITY overrides filter.min_severity
//   - SIEVE_TELEMETRY_LOGGING_LEVEL overrides telemetry.logging.level
//
// Environment variables always take precedence over file-based configuration.
//
// # Example
//
//	policy:
//	  source: file
//	  file_path: sieve-policy.yaml
//	  watch: true
//	filter:
//	  min_severity: notice
//	sink:
//	  outputs: [stderr, sqlite]
//	  sqlite:
//	    path: data/sieve.db
//	    retention:
//	      retention_days: 7
//	      prune_schedule: "0 3 * * *"
//	telemetry:
//	  metrics:
//	    enabled: true
//	    listen_address: 127.0.0.1:9464
package config
