package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile string
)

var rootCmd = &cobra.Command{
	Use:   "sieve",
	Short: "Sieve - policy-driven call-site log filter",
	Long: `Sieve decides, per call site, whether a log line is emitted.

Requests carry a signature, call kind, severity, role, tags and an optional
category. A policy file combines a master switch, call-kind, method-name,
severity and role switches with allow/deny lists for classes, categories,
tags and methods. Policies reload from disk or a Git repository without a
restart.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path (defaults apply when empty)")
}
