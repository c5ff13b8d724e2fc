package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"mercator-hq/sieve/pkg/cli"
	"mercator-hq/sieve/pkg/config"
	"mercator-hq/sieve/pkg/sink"
	"mercator-hq/sieve/pkg/telemetry/logging"
)

var pruneFlags struct {
	retentionDays int
	maxRecords    int64
}

var pruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Apply retention to the SQLite sink",
	Long: `Delete stored lines that fall outside the retention policy.

Retention comes from sink.sqlite.retention and can be overridden with flags.

Examples:
  # Prune with configured retention
  sieve prune --config sieve.yaml

  # Keep only the newest 10000 lines
  sieve prune --config sieve.yaml --max-records 10000`,
	RunE: pruneStore,
}

func init() {
	rootCmd.AddCommand(pruneCmd)

	pruneCmd.Flags().IntVar(&pruneFlags.retentionDays, "retention-days", 0, "override retention days")
	pruneCmd.Flags().Int64Var(&pruneFlags.maxRecords, "max-records", 0, "override maximum stored lines")
}

func pruneStore(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfigWithEnvOverrides(cfgFile)
	if err != nil {
		return &cli.ConfigError{Path: cfgFile, Message: fmt.Sprintf("failed to load config: %v", err)}
	}

	retention := cfg.Sink.SQLite.Retention
	if pruneFlags.retentionDays > 0 {
		retention.RetentionDays = pruneFlags.retentionDays
	}
	if pruneFlags.maxRecords > 0 {
		retention.MaxRecords = pruneFlags.maxRecords
	}
	cfg.Sink.SQLite.Retention = retention

	return runPrune(cmd.Context(), cmd.OutOrStdout(), cfg)
}

func runPrune(ctx context.Context, w io.Writer, cfg *config.Config) error {
	logger, err := logging.New(logging.FromConfig(cfg.Telemetry.Logging, os.Stderr))
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}

	store, err := sink.OpenSQLite(cfg.Sink.SQLite, nil, logger)
	if err != nil {
		return cli.NewCommandError("prune", err)
	}
	defer store.Close()

	deleted, err := sink.NewPruner(store, cfg.Sink.SQLite.Retention, nil, logger).Prune(ctx)
	if err != nil {
		return cli.NewCommandError("prune", err)
	}

	remaining, err := store.Count(ctx)
	if err != nil {
		return cli.NewCommandError("prune", err)
	}

	fmt.Fprintf(w, "✓ Pruned %d line(s), %d remaining in %s\n", deleted, remaining, cfg.Sink.SQLite.Path)
	return nil
}
