package config

import "time"

// Default configuration values.
const (
	DefaultPolicySource     = "file"
	DefaultPolicyFilePath   = "sieve-policy.yaml"
	DefaultDebounceInterval = 100 * time.Millisecond

	DefaultGitBranch       = "main"
	DefaultGitFile         = "sieve-policy.yaml"
	DefaultGitPollInterval = 30 * time.Second
	DefaultGitTimeout      = 30 * time.Second
	DefaultGitAuthType     = "none"

	DefaultSinkOutput        = "stderr"
	DefaultSinkFormat        = "text"
	DefaultSQLitePath        = "data/sieve.db"
	DefaultSQLiteDriver      = "sqlite"
	DefaultSQLiteJournalMode = "WAL"
	DefaultSQLiteBusyTimeout = 5 * time.Second
	DefaultSQLiteMaxOpen     = 4

	DefaultLogLevel  = "info"
	DefaultLogFormat = "text"

	DefaultMetricsListenAddress = "127.0.0.1:9464"
	DefaultMetricsPath          = "/metrics"
	DefaultMetricsNamespace     = "sieve"
)

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}

// ApplyDefaults applies default values to a Config struct.
// It sets defaults for any fields that have zero values.
// This function is idempotent and safe to call multiple times.
func ApplyDefaults(cfg *Config) {
	// Policy defaults
	if cfg.Policy.Source == "" {
		cfg.Policy.Source = DefaultPolicySource
	}
	if cfg.Policy.FilePath == "" {
		cfg.Policy.FilePath = DefaultPolicyFilePath
	}
	if cfg.Policy.DebounceInterval == 0 {
		cfg.Policy.DebounceInterval = DefaultDebounceInterval
	}
	if cfg.Policy.Git.Branch == "" {
		cfg.Policy.Git.Branch = DefaultGitBranch
	}
	if cfg.Policy.Git.File == "" {
		cfg.Policy.Git.File = DefaultGitFile
	}
	if cfg.Policy.Git.PollInterval == 0 {
		cfg.Policy.Git.PollInterval = DefaultGitPollInterval
	}
	if cfg.Policy.Git.Timeout == 0 {
		cfg.Policy.Git.Timeout = DefaultGitTimeout
	}
	if cfg.Policy.Git.Auth.Type == "" {
		cfg.Policy.Git.Auth.Type = DefaultGitAuthType
	}

	// Sink defaults
	if len(cfg.Sink.Outputs) == 0 {
		cfg.Sink.Outputs = []string{DefaultSinkOutput}
	}
	if cfg.Sink.Format == "" {
		cfg.Sink.Format = DefaultSinkFormat
	}
	if cfg.Sink.SQLite.Path == "" {
		cfg.Sink.SQLite.Path = DefaultSQLitePath
	}
	if cfg.Sink.SQLite.Driver == "" {
		cfg.Sink.SQLite.Driver = DefaultSQLiteDriver
	}
	if cfg.Sink.SQLite.JournalMode == "" {
		cfg.Sink.SQLite.JournalMode = DefaultSQLiteJournalMode
	}
	if cfg.Sink.SQLite.BusyTimeout == 0 {
		cfg.Sink.SQLite.BusyTimeout = DefaultSQLiteBusyTimeout
	}
	if cfg.Sink.SQLite.MaxOpenConns == 0 {
		cfg.Sink.SQLite.MaxOpenConns = DefaultSQLiteMaxOpen
	}

	// Telemetry defaults
	if cfg.Telemetry.Logging.Level == "" {
		cfg.Telemetry.Logging.Level = DefaultLogLevel
	}
	if cfg.Telemetry.Logging.Format == "" {
		cfg.Telemetry.Logging.Format = DefaultLogFormat
	}
	if cfg.Telemetry.Metrics.ListenAddress == "" {
		cfg.Telemetry.Metrics.ListenAddress = DefaultMetricsListenAddress
	}
	if cfg.Telemetry.Metrics.Path == "" {
		cfg.Telemetry.Metrics.Path = DefaultMetricsPath
	}
	if cfg.Telemetry.Metrics.Namespace == "" {
		cfg.Telemetry.Metrics.Namespace = DefaultMetricsNamespace
	}
}
