package config

import "time"

// Config is the root configuration structure for sieve.
type Config struct {
	// Policy selects where the filtering policy comes from.
	Policy PolicyConfig `yaml:"policy"`

	// Filter contains settings applied before the policy is consulted.
	Filter FilterConfig `yaml:"filter"`

	// Sink selects where emitted lines are written.
	Sink SinkConfig `yaml:"sink"`

	// Telemetry contains configuration for the process's own logging and
	// metrics.
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// PolicyConfig contains configuration for the policy source.
type PolicyConfig struct {
	// Source specifies how the policy is loaded.
	// Options: "file", "git", "none" (no policy, everything is emitted)
	// Default: "file"
	Source string `yaml:"source"`

	// FilePath is the policy file for the "file" source.
	// Default: "sieve-policy.yaml"
	FilePath string `yaml:"file_path"`

	// Watch reloads the policy file when it changes.
	// Default: false
	Watch bool `yaml:"watch"`

	// DebounceInterval is the quiet period after a file change before the
	// policy is reloaded.
	// Default: 100ms
	DebounceInterval time.Duration `yaml:"debounce_interval"`

	// Git configures the "git" source.
	Git GitPolicyConfig `yaml:"git"`
}

// GitPolicyConfig contains configuration for loading the policy from a Git
// repository.
type GitPolicyConfig struct {
	// Repository is the clone URL.
	Repository string `yaml:"repository"`

	// Branch to track.
	// Default: "main"
	Branch string `yaml:"branch"`

	// File is the policy file path inside the repository.
	// Default: "sieve-policy.yaml"
	File string `yaml:"file"`

	// LocalPath is where the repository is cloned.
	// Default: "<tmp>/sieve-policies"
	LocalPath string `yaml:"local_path"`

	// Depth limits clone history (0 = full history).
	Depth int `yaml:"depth"`

	// PollInterval is how often the repository is checked for new commits.
	// Default: 30s
	PollInterval time.Duration `yaml:"poll_interval"`

	// Timeout bounds each clone or pull.
	// Default: 30s
	Timeout time.Duration `yaml:"timeout"`

	// Auth contains repository credentials.
	Auth GitAuthConfig `yaml:"auth"`
}

// GitAuthConfig contains Git authentication settings.
type GitAuthConfig struct {
	// Type is the authentication type.
	// Options: "none", "token", "ssh"
	// Default: "none"
	Type string `yaml:"type"`

	// Token is the access token for "token" auth.
	Token string `yaml:"token"`

	// SSHKeyPath is the private key for "ssh" auth.
	SSHKeyPath string `yaml:"ssh_key_path"`

	// SSHKeyPassphrase decrypts the private key, if encrypted.
	SSHKeyPassphrase string `yaml:"ssh_key_passphrase"`
}

// FilterConfig contains settings applied before policy evaluation.
type FilterConfig struct {
	// MinSeverity drops requests below this severity before the policy is
	// consulted. Empty disables the threshold.
	// Options: "", "debug", "info", "notice", "warning", "error", "critical",
	// "alert", "emergency"
	// Default: ""
	MinSeverity string `yaml:"min_severity"`
}

// SinkConfig selects the outputs emitted lines are written to.
type SinkConfig struct {
	// Outputs lists the sinks that receive every emitted line.
	// Options: "stdout", "stderr", "sqlite"
	// Default: ["stderr"]
	Outputs []string `yaml:"outputs"`

	// Format is the encoding for stdout and stderr sinks.
	// Options: "text", "json"
	// Default: "text"
	Format string `yaml:"format"`

	// SQLite configures the "sqlite" sink.
	SQLite SQLiteSinkConfig `yaml:"sqlite"`
}

// SQLiteSinkConfig contains configuration for the durable SQLite sink.
type SQLiteSinkConfig struct {
	// Path is the database file path.
	// Default: "data/sieve.db"
	Path string `yaml:"path"`

	// Driver is the database/sql driver name.
	// Options: "sqlite" (pure Go), "sqlite3" (cgo)
	// Default: "sqlite"
	Driver string `yaml:"driver"`

	// JournalMode is the SQLite journal mode.
	// Default: "WAL"
	JournalMode string `yaml:"journal_mode"`

	// BusyTimeout is how long a writer waits on a locked database.
	// Default: 5s
	BusyTimeout time.Duration `yaml:"busy_timeout"`

	// MaxOpenConns limits open connections.
	// Default: 4
	MaxOpenConns int `yaml:"max_open_conns"`

	// Retention controls pruning of stored lines.
	Retention RetentionConfig `yaml:"retention"`
}

// RetentionConfig controls how long stored lines are kept.
type RetentionConfig struct {
	// RetentionDays deletes lines older than this many days (0 = keep).
	RetentionDays int `yaml:"retention_days"`

	// MaxRecords keeps at most this many newest lines (0 = unlimited).
	MaxRecords int64 `yaml:"max_records"`

	// PruneSchedule is a standard cron expression; empty disables scheduled
	// pruning.
	PruneSchedule string `yaml:"prune_schedule"`
}

// TelemetryConfig contains configuration for the process's own observability.
type TelemetryConfig struct {
	// Logging contains logging configuration.
	Logging LoggingConfig `yaml:"logging"`

	// Metrics contains metrics collection configuration.
	Metrics MetricsConfig `yaml:"metrics"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level to emit.
	// Options: "debug", "info", "warn", "error"
	// Default: "info"
	Level string `yaml:"level"`

	// Format controls the log output format.
	// Options: "json", "text", "console"
	// Default: "text"
	Format string `yaml:"format"`

	// AddSource includes file and line number in log entries.
	// Default: false
	AddSource bool `yaml:"add_source"`
}

// MetricsConfig contains Prometheus metrics configuration.
type MetricsConfig struct {
	// Enabled controls whether metrics are collected and served.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// ListenAddress is where the metrics endpoint listens.
	// Default: "127.0.0.1:9464"
	ListenAddress string `yaml:"listen_address"`

	// Path is the HTTP path for the Prometheus metrics endpoint.
	// Default: "/metrics"
	Path string `yaml:"path"`

	// Namespace is the metric name prefix.
	// Default: "sieve"
	Namespace string `yaml:"namespace"`

	// Subsystem is the metric subsystem name.
	// Default: ""
	Subsystem string `yaml:"subsystem"`
}
