// Package main provides the entry point for the recheck CLI tool.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/recheck/cmd/recheck/commands"
	"github.com/Sumatoshi-tech/recheck/pkg/version"
)

var verbose bool

func main() {
	version.InitBinaryVersion()

	rootCmd := &cobra.Command{
		Use:   "recheck",
		Short: "Recheck - diagnostic-driven remediation of suppressed type errors",
		Long: `Recheck finds source files hiding type errors behind a file-scoped
suppression directive, collects the real diagnostics, applies known fixes,
and removes the directive once the file verifies clean.

Commands:
  scan      List suppressed files
  run       Remediate suppressed files
  progress  Show the durable remediation ledger`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	// Add commands.
	rootCmd.AddCommand(commands.NewScanCommand(&verbose))
	rootCmd.AddCommand(commands.NewRunCommand(&verbose))
	rootCmd.AddCommand(commands.NewProgressCommand())
	rootCmd.AddCommand(commands.NewMCPCommand())
	rootCmd.AddCommand(versionCmd())

	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Fprintf(os.Stdout, "recheck %s (commit: %s, built: %s)\n", version.Version, version.Commit, version.Date)
		},
	}
}
