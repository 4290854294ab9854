package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/recheck/internal/ledger"
	"github.com/Sumatoshi-tech/recheck/internal/report"
)

// NewProgressCommand creates the progress command: render the durable ledger.
func NewProgressCommand() *cobra.Command {
	var (
		configPath string
		plotPath   string
	)

	cmd := &cobra.Command{
		Use:   "progress [path]",
		Short: "Show remediation progress",
		Long: `Render the durable progress ledger: per-module fixed/total counts
and overall completion. With --plot, additionally write the run history as an
HTML line chart.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(_ *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath, args)
			if err != nil {
				return err
			}

			doc, loadErr := ledger.Load(ledgerPath(cfg))
			if loadErr != nil {
				return loadErr
			}

			report.RenderProgress(os.Stdout, doc)

			if plotPath == "" {
				return nil
			}

			return writePlot(plotPath, doc)
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "config file path (default: .recheck.yaml)")
	cmd.Flags().StringVar(&plotPath, "plot", "", "write the history chart to this HTML file")

	return cmd
}

// writePlot renders the ledger history chart to an HTML file.
func writePlot(path string, doc *ledger.Document) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create plot file: %w", err)
	}
	defer file.Close()

	renderErr := report.WriteProgressPlot(file, doc)
	if renderErr != nil {
		return fmt.Errorf("render plot: %w", renderErr)
	}

	fmt.Fprintf(os.Stdout, "Progress chart written to %s\n", path)

	return nil
}
