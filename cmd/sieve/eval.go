package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"mercator-hq/sieve/pkg/cli"
	"mercator-hq/sieve/pkg/filter"
	"mercator-hq/sieve/pkg/policy"
	"mercator-hq/sieve/pkg/sieve"
	"mercator-hq/sieve/pkg/telemetry/logging"
)

var evalFlags struct {
	policy      string
	request     requestJSON
	minSeverity string
	format      string
}

var evalCmd = &cobra.Command{
	Use:   "eval",
	Short: "Show how a policy treats one call site",
	Long: `Evaluate a single request against a policy file and print the verdict.

Nothing is emitted; the command reports whether the line would be, which rule
decided, and the formatted line.

Examples:
  # Would an instance-level warning from Store.Put be logged?
  sieve eval --policy sieve-policy.yaml --signature Store.Put --severity warning --role setter

  # Method entry trace with tags
  sieve eval --policy sieve-policy.yaml --signature Cache.Get --severity method --tag hot --tag cache

  # JSON output for scripts
  sieve eval --signature Foo.bar --severity error --format json`,
	RunE: evalRequest,
}

func init() {
	rootCmd.AddCommand(evalCmd)

	evalCmd.Flags().StringVarP(&evalFlags.policy, "policy", "p", "", "policy file (empty means no policy)")
	evalCmd.Flags().StringVarP(&evalFlags.request.Signature, "signature", "s", "", "call-site signature, e.g. Store.Put")
	evalCmd.Flags().StringVar(&evalFlags.request.Kind, "kind", "instance", "call kind: class, instance")
	evalCmd.Flags().StringVar(&evalFlags.request.Severity, "severity", "info", "severity or \"method\" for an entry trace")
	evalCmd.Flags().StringVar(&evalFlags.request.Role, "role", "unspecified", "call-site role")
	evalCmd.Flags().StringSliceVarP(&evalFlags.request.Tags, "tag", "t", nil, "tag (repeatable)")
	evalCmd.Flags().StringVar(&evalFlags.request.Category, "category", "", "category")
	evalCmd.Flags().StringVar(&evalFlags.request.Class, "class", "", "owning class override")
	evalCmd.Flags().StringVarP(&evalFlags.request.Message, "message", "m", "", "message text")
	evalCmd.Flags().StringVar(&evalFlags.minSeverity, "min-severity", "", "minimum severity threshold")
	evalCmd.Flags().StringVar(&evalFlags.format, "format", "text", "output format: text, json")

	_ = evalCmd.MarkFlagRequired("signature")
}

func evalRequest(cmd *cobra.Command, args []string) error {
	return runEval(cmd.OutOrStdout(), evalFlags.policy, evalFlags.request, evalFlags.minSeverity, evalFlags.format)
}

// evalResult is the printed outcome of an evaluation.
type evalResult struct {
	Emit          bool   `json:"emit"`
	Reason        string `json:"reason"`
	Line          string `json:"line,omitempty"`
	PolicyVersion string `json:"policy_version,omitempty"`
}

func (r evalResult) String() string {
	if r.Emit {
		return fmt.Sprintf("✓ emitted\n  %s", r.Line)
	}
	return fmt.Sprintf("✗ suppressed by %s rule", r.Reason)
}

func runEval(w io.Writer, policyPath string, raw requestJSON, minSeverity, format string) error {
	outFormat, err := cli.ParseOutputFormat(format)
	if err != nil {
		return cli.NewConfigError("format", err.Error())
	}

	req, err := raw.toRequest()
	if err != nil {
		return cli.NewConfigError("request", err.Error())
	}

	threshold, err := filter.ParseThreshold(minSeverity)
	if err != nil {
		return cli.NewConfigError("min-severity", err.Error())
	}

	var (
		provider sieve.Provider = policy.Static{}
		version  string
	)
	if policyPath != "" {
		rules, v, err := policy.LoadFile(policyPath)
		if err != nil {
			return cli.NewPolicyError(policyPath, err)
		}
		provider = policy.Static{Policy: rules}
		version = v
	}

	d := sieve.New(provider, nil, sieve.WithThreshold(threshold), sieve.WithLogger(logging.Discard()))
	verdict := d.Evaluate(req)

	result := evalResult{
		Emit:          verdict.Emit,
		Reason:        string(verdict.Reason),
		Line:          verdict.Line,
		PolicyVersion: version,
	}
	return cli.NewFormatter(outFormat).FormatTo(w, result)
}
