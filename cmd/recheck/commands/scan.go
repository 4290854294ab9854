package commands

import (
	"context"
	"fmt"
	"os"
	"sort"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/recheck/internal/scan"
)

// NewScanCommand creates the scan command: list suppressed files without
// touching anything.
func NewScanCommand(verbose *bool) *cobra.Command {
	var (
		configPath   string
		moduleFilter string
		fileFilter   string
	)

	cmd := &cobra.Command{
		Use:   "scan [path]",
		Short: "List files carrying the suppression directive",
		Long: `Walk the source tree and list every file carrying the type-check
suppression directive, grouped by module. Read-only.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(_ *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath, args)
			if err != nil {
				return err
			}

			providers, err := initObservability(verbose != nil && *verbose)
			if err != nil {
				return err
			}

			defer func() {
				shutdownErr := providers.Shutdown(context.Background())
				if shutdownErr != nil {
					providers.Logger.Warn("observability shutdown failed", "error", shutdownErr)
				}
			}()

			scanner := newScanner(cfg, providers.Logger)

			items, scanErr := scanner.Scan(scan.Filters{Module: moduleFilter, File: fileFilter})
			if scanErr != nil {
				return scanErr
			}

			renderScan(items)

			return nil
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "config file path (default: .recheck.yaml)")
	cmd.Flags().StringVarP(&moduleFilter, "module", "m", "", "only modules whose name contains this substring")
	cmd.Flags().StringVarP(&fileFilter, "file", "f", "", "only files whose path contains this substring")

	return cmd
}

// renderScan prints the suppressed file table grouped by module.
func renderScan(items []scan.WorkItem) {
	if len(items) == 0 {
		fmt.Fprintln(os.Stdout, "No suppressed files found")

		return
	}

	sorted := make([]scan.WorkItem, len(items))
	copy(sorted, items)

	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Module != sorted[j].Module {
			return sorted[i].Module < sorted[j].Module
		}

		return sorted[i].Path < sorted[j].Path
	})

	tbl := table.NewWriter()
	tbl.SetOutputMirror(os.Stdout)
	tbl.SetStyle(table.StyleLight)
	tbl.AppendHeader(table.Row{"Module", "File"})

	for _, item := range sorted {
		tbl.AppendRow(table.Row{item.Module, item.Path})
	}

	tbl.AppendFooter(table.Row{"", fmt.Sprintf("%s files", humanize.Comma(int64(len(sorted))))})
	tbl.Render()
}
