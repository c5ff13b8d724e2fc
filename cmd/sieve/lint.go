package main

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"mercator-hq/sieve/pkg/cli"
	"mercator-hq/sieve/pkg/policy"
)

var lintFlags struct {
	dir    string
	format string
}

var lintCmd = &cobra.Command{
	Use:   "lint [policy files...]",
	Short: "Validate policy files",
	Long: `Validate sieve policy files.

The lint command parses each file and checks:
  - YAML syntax and unknown fields
  - Severity and role names in the switch maps
  - Empty names in allow/deny lists

Examples:
  # Lint single file
  sieve lint sieve-policy.yaml

  # Lint directory
  sieve lint --dir policies/

  # JSON output for CI/CD
  sieve lint sieve-policy.yaml --format json`,
	RunE: lintPolicies,
}

func init() {
	rootCmd.AddCommand(lintCmd)

	lintCmd.Flags().StringVarP(&lintFlags.dir, "dir", "d", "", "directory of policy files")
	lintCmd.Flags().StringVar(&lintFlags.format, "format", "text", "output format: text, json")
}

func lintPolicies(cmd *cobra.Command, args []string) error {
	files := append([]string(nil), args...)

	if lintFlags.dir != "" {
		for _, pattern := range []string{"*.yaml", "*.yml"} {
			matches, err := filepath.Glob(filepath.Join(lintFlags.dir, pattern))
			if err != nil {
				return fmt.Errorf("failed to list policy files: %w", err)
			}
			files = append(files, matches...)
		}
	}

	if len(files) == 0 {
		return fmt.Errorf("no policy files given; pass files or --dir")
	}

	var w io.Writer = io.Discard
	if cmd != nil {
		w = cmd.OutOrStdout()
	}
	return runLint(w, files, lintFlags.format)
}

// LintResult is the validation outcome for a single policy file.
type LintResult struct {
	File    string   `json:"file"`
	Valid   bool     `json:"valid"`
	Version string   `json:"version,omitempty"`
	Errors  []string `json:"errors,omitempty"`
}

type lintReport []LintResult

func (r lintReport) String() string {
	var sb strings.Builder
	failed := 0
	for _, res := range r {
		if res.Valid {
			fmt.Fprintf(&sb, "✓ %s (version %s)\n", res.File, res.Version)
			continue
		}
		failed++
		fmt.Fprintf(&sb, "✗ %s\n", res.File)
		for _, e := range res.Errors {
			fmt.Fprintf(&sb, "    %s\n", e)
		}
	}
	fmt.Fprintf(&sb, "\n%d file(s) checked, %d invalid", len(r), failed)
	return sb.String()
}

func runLint(w io.Writer, files []string, format string) error {
	outFormat, err := cli.ParseOutputFormat(format)
	if err != nil {
		return cli.NewConfigError("format", err.Error())
	}

	report := make(lintReport, 0, len(files))
	invalid := 0
	for _, file := range files {
		res := lintFile(file)
		if !res.Valid {
			invalid++
		}
		report = append(report, res)
	}

	if err := cli.NewFormatter(outFormat).FormatTo(w, report); err != nil {
		return err
	}
	if invalid > 0 {
		return fmt.Errorf("%d of %d policy files are invalid", invalid, len(files))
	}
	return nil
}

func lintFile(path string) LintResult {
	_, version, err := policy.LoadFile(path)
	if err == nil {
		return LintResult{File: path, Valid: true, Version: version}
	}

	return LintResult{File: path, Errors: cli.NewPolicyError(path, err).Problems()}
}
