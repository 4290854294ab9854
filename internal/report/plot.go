package report

import (
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/Sumatoshi-tech/recheck/internal/ledger"
)

const (
	plotWidth        = "100%"
	plotHeight       = "500px"
	emptyChartHeight = "400px"
	lineWidth        = 2
)

// WriteProgressPlot renders the remediation history as an HTML line chart:
// files fixed per run plus the cumulative total over time.
func WriteProgressPlot(w io.Writer, doc *ledger.Document) error {
	line := charts.NewLine()

	if doc == nil || len(doc.History) == 0 {
		line.SetGlobalOptions(
			charts.WithInitializationOpts(opts.Initialization{Width: plotWidth, Height: emptyChartHeight}),
			charts.WithTitleOpts(opts.Title{Title: "Remediation Progress", Subtitle: "No data"}),
		)

		return line.Render(w)
	}

	labels := make([]string, len(doc.History))
	perRun := make([]opts.LineData, len(doc.History))
	cumulative := make([]opts.LineData, len(doc.History))

	running := 0

	for i, entry := range doc.History {
		labels[i] = entry.Date
		perRun[i] = opts.LineData{Value: entry.FilesFixed}

		running += entry.FilesFixed
		cumulative[i] = opts.LineData{Value: running}
	}

	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: plotWidth, Height: plotHeight}),
		charts.WithTitleOpts(opts.Title{
			Title:    "Remediation Progress",
			Subtitle: "Files fixed per run and cumulative total",
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Run"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Files"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Top: "bottom"}),
	)

	line.SetXAxis(labels)
	line.AddSeries("Fixed per run", perRun,
		charts.WithLineChartOpts(opts.LineChart{Smooth: opts.Bool(true)}),
		charts.WithLineStyleOpts(opts.LineStyle{Width: lineWidth}),
	)
	line.AddSeries("Cumulative fixed", cumulative,
		charts.WithLineChartOpts(opts.LineChart{Smooth: opts.Bool(true)}),
		charts.WithLineStyleOpts(opts.LineStyle{Width: lineWidth}),
	)

	return line.Render(w)
}
