package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"mercator-hq/sieve/pkg/cli"
	"mercator-hq/sieve/pkg/config"
	"mercator-hq/sieve/pkg/filter"
	"mercator-hq/sieve/pkg/policy"
	"mercator-hq/sieve/pkg/sieve"
	"mercator-hq/sieve/pkg/sink"
	"mercator-hq/sieve/pkg/telemetry/logging"
	"mercator-hq/sieve/pkg/telemetry/metrics"
)

// maxRequestLine bounds a single NDJSON request.
const maxRequestLine = 1 << 20

// drainTimeout bounds how long shutdown waits for the reader to notice
// cancellation. A read blocked on stdin may never return.
const drainTimeout = 2 * time.Second

var runFlags struct {
	input       string
	minSeverity string
	logLevel    string
	dryRun      bool
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Filter a stream of log requests",
	Long: `Read newline-delimited JSON log requests and emit the ones the policy admits.

Each input line is an object such as:

  {"signature":"Store.Put","kind":"instance","severity":"error","role":"setter",
   "tags":["storage"],"category":"db","message":"write failed"}

Admitted lines go to the configured sinks. Malformed lines are logged and
skipped. The policy is reloaded in place when its file or repository changes.

Examples:
  # Filter stdin with the default configuration
  app | sieve run

  # Use a config file and read from a file
  sieve run --config /etc/sieve/config.yaml --input requests.ndjson

  # Drop everything below warning before the policy runs
  sieve run --min-severity warning

  # Validate config without processing input
  sieve run --dry-run`,
	RunE: runSieve,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runFlags.input, "input", "i", "-", "request file (- for stdin)")
	runCmd.Flags().StringVar(&runFlags.minSeverity, "min-severity", "", "override filter.min_severity")
	runCmd.Flags().StringVar(&runFlags.logLevel, "log-level", "", "override log level (debug, info, warn, error)")
	runCmd.Flags().BoolVar(&runFlags.dryRun, "dry-run", false, "validate config without processing input")
}

func runSieve(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfigWithEnvOverrides(cfgFile)
	if err != nil {
		return &cli.ConfigError{Path: cfgFile, Message: fmt.Sprintf("failed to load config: %v", err)}
	}

	if runFlags.minSeverity != "" {
		cfg.Filter.MinSeverity = runFlags.minSeverity
	}
	if runFlags.logLevel != "" {
		cfg.Telemetry.Logging.Level = runFlags.logLevel
	}
	if err := config.Validate(cfg); err != nil {
		return &cli.ConfigError{Path: cfgFile, Message: err.Error()}
	}

	if runFlags.dryRun {
		fmt.Fprintln(cmd.OutOrStdout(), "✓ Configuration valid")
		return nil
	}

	in := cmd.InOrStdin()
	if runFlags.input != "" && runFlags.input != "-" {
		f, err := os.Open(runFlags.input)
		if err != nil {
			return cli.NewCommandError("run", err)
		}
		defer f.Close()
		in = f
	}

	ctx, cancel := cli.SetupSignalHandler(cmd.Context())
	defer cancel()

	if err := serve(ctx, cfg, in, cmd.OutOrStdout(), cmd.ErrOrStderr()); err != nil {
		return cli.NewCommandError("run", err)
	}
	return nil
}

// streamStats summarizes one pass over the request stream.
type streamStats struct {
	Processed int
	Emitted   int
	Invalid   int
}

// serve wires the policy source, sinks and metrics endpoint around a
// Debugger and filters in until EOF or ctx is done.
func serve(ctx context.Context, cfg *config.Config, in io.Reader, stdout, stderr io.Writer) error {
	logger, err := logging.New(logging.FromConfig(cfg.Telemetry.Logging, stderr))
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}

	threshold, err := filter.ParseThreshold(cfg.Filter.MinSeverity)
	if err != nil {
		return fmt.Errorf("invalid minimum severity: %w", err)
	}

	var collector *metrics.Collector
	if cfg.Telemetry.Metrics.Enabled {
		collector = metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
	}

	ctx, cancel := context.WithCancel(logging.WithLogger(ctx, logger))
	defer cancel()

	holder := policy.NewHolder(nil)
	if err := startPolicySource(ctx, cfg.Policy, holder, collector, logger); err != nil {
		return err
	}

	set, err := sink.Build(cfg.Sink, stdout, stderr, collector, logger)
	if err != nil {
		return err
	}
	gate := &emitGate{}
	defer func() {
		// No emit may run once the sinks start closing.
		gate.close()
		if err := set.Close(); err != nil {
			logger.Error("Failed to close sinks", "error", err)
		}
	}()

	if set.SQLite != nil {
		pruner := sink.NewPruner(set.SQLite, cfg.Sink.SQLite.Retention, collector, logger)
		scheduler := sink.NewScheduler(pruner, cfg.Sink.SQLite.Retention.PruneSchedule, logger)
		if err := scheduler.Start(ctx); err != nil {
			logger.Warn("Failed to start retention scheduler", "error", err)
		} else {
			defer scheduler.Stop()
			if next := scheduler.NextRun(); next != nil {
				logger.Debug("Retention scheduler started", "next_run", next)
			}
		}
	}

	if collector != nil {
		stop, err := serveMetrics(cfg.Telemetry.Metrics, collector, logger)
		if err != nil {
			return err
		}
		defer stop()
	}

	d := sieve.New(holder, set,
		sieve.WithThreshold(threshold),
		sieve.WithRecorder(collector),
		sieve.WithLogger(logger),
	)

	done := make(chan streamResult, 1)
	go func() {
		stats, err := consume(ctx, d, in, gate)
		done <- streamResult{stats, err}
	}()

	select {
	case res := <-done:
		if res.err != nil {
			return fmt.Errorf("failed to read requests: %w", res.err)
		}
		logging.FromContext(logging.WithPolicyVersion(ctx, holder.Snapshot().Version)).Info("Request stream finished",
			"processed", res.stats.Processed,
			"emitted", res.stats.Emitted,
			"invalid", res.stats.Invalid,
		)
		return nil
	case <-ctx.Done():
		logger.Info("Shutting down")
		select {
		case res := <-done:
			logger.Debug("Request stream drained", "processed", res.stats.Processed)
		case <-time.After(drainTimeout):
			logger.Debug("Request reader still blocked, closing sinks")
		}
		return nil
	}
}

// emitGate serializes emits against sink shutdown. After close returns no
// emit is in flight and none will start.
type emitGate struct {
	mu     sync.Mutex
	closed bool
}

// do runs fn unless the gate is closed and reports whether it ran. A nil
// gate always runs fn.
func (g *emitGate) do(fn func()) bool {
	if g == nil {
		fn()
		return true
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.closed {
		return false
	}
	fn()
	return true
}

func (g *emitGate) close() {
	g.mu.Lock()
	g.closed = true
	g.mu.Unlock()
}

type streamResult struct {
	stats streamStats
	err   error
}

// startPolicySource performs the initial load for the configured source and,
// when enabled, keeps the holder current in the background.
func startPolicySource(ctx context.Context, cfg config.PolicyConfig, holder *policy.Holder, collector *metrics.Collector, logger *slog.Logger) error {
	switch cfg.Source {
	case "none", "":
		logger.Info("No policy configured, emitting everything")
		return nil

	case "file":
		src := policy.NewFileSource(cfg.FilePath, holder, cfg.DebounceInterval, logger)
		src.OnReload = collector.RecordPolicyReload
		if err := src.Load(); err != nil {
			return err
		}
		if cfg.Watch {
			go func() {
				if err := src.Watch(ctx); err != nil {
					logger.Error("Policy file watcher stopped", "error", err)
				}
			}()
		}
		return nil

	case "git":
		src, err := policy.NewGitSource(cfg.Git, holder, logger)
		if err != nil {
			return err
		}
		src.OnReload = collector.RecordPolicyReload
		if err := src.Clone(ctx); err != nil {
			return err
		}
		if err := src.Load(); err != nil {
			return err
		}
		logger.Info("Policy repository ready", "commit", src.LastLoadedCommit())
		go func() {
			if err := src.Watch(ctx); err != nil {
				logger.Error("Policy repository watcher stopped", "error", err)
			}
		}()
		return nil

	default:
		return fmt.Errorf("unknown policy source: %s", cfg.Source)
	}
}

// serveMetrics exposes the collector's registry and returns a function that
// shuts the listener down. The listener is bound before returning so address
// errors fail startup.
func serveMetrics(cfg config.MetricsConfig, collector *metrics.Collector, logger *slog.Logger) (func(), error) {
	ln, err := net.Listen("tcp", cfg.ListenAddress)
	if err != nil {
		return nil, fmt.Errorf("failed to listen for metrics: %w", err)
	}

	mux := http.NewServeMux()
	mux.Handle(cfg.Path, collector.Handler())

	srv := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("Metrics endpoint listening", "address", ln.Addr().String(), "path", cfg.Path)
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Metrics endpoint failed", "error", err)
		}
	}()

	return func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Metrics endpoint shutdown failed", "error", err)
		}
	}, nil
}

// consume filters every request in in. Blank lines are ignored and malformed
// ones are logged and skipped. Emits go through gate so none races the sink
// shutdown; consume stops at the first request the closed gate refuses.
func consume(ctx context.Context, d *sieve.Debugger, in io.Reader, gate *emitGate) (streamStats, error) {
	var stats streamStats
	logger := logging.FromContext(ctx)

	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), maxRequestLine)

	lineNo := 0
	for scanner.Scan() {
		if ctx.Err() != nil {
			return stats, nil
		}
		lineNo++

		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}

		var raw requestJSON
		if err := json.Unmarshal([]byte(text), &raw); err != nil {
			stats.Invalid++
			logger.Warn("Skipping malformed request", "line", lineNo, "error", err)
			continue
		}
		req, err := raw.toRequest()
		if err != nil {
			stats.Invalid++
			logger.Warn("Skipping invalid request", "line", lineNo, "error", err)
			continue
		}

		var emitted bool
		if !gate.do(func() { emitted = d.Emit(req).Emit }) {
			return stats, nil
		}
		stats.Processed++
		if emitted {
			stats.Emitted++
		}
	}
	return stats, scanner.Err()
}
