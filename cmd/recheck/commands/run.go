package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/recheck/internal/config"
	"github.com/Sumatoshi-tech/recheck/internal/ledger"
	"github.com/Sumatoshi-tech/recheck/internal/observability"
	"github.com/Sumatoshi-tech/recheck/internal/remedy"
	"github.com/Sumatoshi-tech/recheck/internal/report"
	"github.com/Sumatoshi-tech/recheck/internal/scan"
)

// RunOptions holds the run command's flag values.
type RunOptions struct {
	ConfigPath   string
	ModuleFilter string
	FileFilter   string
	Patterns     []string
	DryRun       bool
	Diff         bool
	Workers      int
}

// NewRunCommand creates the run command: the full remediation pipeline.
func NewRunCommand(verbose *bool) *cobra.Command {
	var opts RunOptions

	cmd := &cobra.Command{
		Use:   "run [path]",
		Short: "Remediate suppressed files",
		Long: `Remediate every file carrying the suppression directive: collect
diagnostics from the external checker, apply matching transforms, re-verify,
and remove the directive from files that come back clean. Files that do not
improve are left byte-identical to their pre-run content.

The durable progress ledger is updated after every non-dry run.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cobraCmd *cobra.Command, args []string) error {
			return executeRun(cobraCmd.Context(), opts, verbose != nil && *verbose, args)
		},
	}

	cmd.Flags().StringVar(&opts.ConfigPath, "config", "", "config file path (default: .recheck.yaml)")
	cmd.Flags().StringVarP(&opts.ModuleFilter, "module", "m", "", "only modules whose name contains this substring")
	cmd.Flags().StringVarP(&opts.FileFilter, "file", "f", "", "only files whose path contains this substring")
	cmd.Flags().StringSliceVarP(&opts.Patterns, "pattern", "p", nil, "only the named error patterns (default: all)")
	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "compute outcomes without writing any file")
	cmd.Flags().BoolVar(&opts.Diff, "diff", false, "print change previews for written files")
	cmd.Flags().IntVarP(&opts.Workers, "workers", "w", 0, "parallel file workers (default: from config)")

	return cmd
}

// executeRun drives one full remediation run.
func executeRun(ctx context.Context, opts RunOptions, verbose bool, args []string) error {
	cfg, err := loadConfig(opts.ConfigPath, args)
	if err != nil {
		return err
	}

	if opts.Workers > 0 {
		cfg.Pipeline.Workers = opts.Workers
	}

	providers, err := initObservability(verbose)
	if err != nil {
		return err
	}

	defer func() {
		shutdownErr := providers.Shutdown(context.Background())
		if shutdownErr != nil {
			providers.Logger.Warn("observability shutdown failed", "error", shutdownErr)
		}
	}()

	metrics, err := observability.NewRunMetrics(providers.Meter)
	if err != nil {
		return err
	}

	// The full scan feeds ledger accounting; filters narrow only what gets
	// remediated.
	scanner := newScanner(cfg, providers.Logger)

	allItems, scanErr := scanner.Scan(scan.Filters{})
	if scanErr != nil {
		return scanErr
	}

	metrics.RecordScanned(ctx, len(allItems))

	items := scan.Apply(allItems, scan.Filters{Module: opts.ModuleFilter, File: opts.FileFilter})

	executor, buildErr := remedy.NewPipeline(cfg, remedy.PipelineOptions{
		DryRun:   opts.DryRun,
		EmitDiff: opts.Diff,
		Patterns: opts.Patterns,
		Logger:   providers.Logger,
		Metrics:  metrics,
	})
	if buildErr != nil {
		return buildErr
	}

	result := executor.Run(ctx, items)

	report.RenderRun(os.Stdout, result)

	if opts.Diff || opts.DryRun {
		report.RenderDiffs(os.Stdout, result)
	}

	if opts.DryRun {
		return nil
	}

	mergeErr := mergeLedger(cfg, allItems, result)
	if mergeErr != nil {
		// Losing the ledger means losing durable progress; fail loudly.
		return fmt.Errorf("update ledger: %w", mergeErr)
	}

	return nil
}

// mergeLedger folds the run into the durable progress ledger.
func mergeLedger(cfg *config.Config, allItems []scan.WorkItem, result remedy.RunResult) error {
	path := ledgerPath(cfg)

	doc, loadErr := ledger.Load(path)
	if loadErr != nil {
		return loadErr
	}

	suppressed := map[string]int{}
	for _, item := range allItems {
		suppressed[item.Module]++
	}

	doc.Merge(ledger.RunSummary{
		SuppressedByModule: suppressed,
		ResolvedByModule:   result.ResolvedByModule(),
		Notes:              "cli run",
	})

	return ledger.Save(path, doc)
}
