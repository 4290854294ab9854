package report

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/Sumatoshi-tech/recheck/internal/ledger"
)

const (
	percentageValue = 100
	barLength       = 20
)

const msgNoProgressData = "No remediation progress recorded yet"

// RenderProgress writes the per-module ledger table with completion bars.
func RenderProgress(w io.Writer, doc *ledger.Document) {
	if doc == nil || len(doc.PerModule) == 0 {
		fmt.Fprintln(w, msgNoProgressData)

		return
	}

	modules := make([]string, 0, len(doc.PerModule))
	for module := range doc.PerModule {
		modules = append(modules, module)
	}

	sort.Strings(modules)

	tbl := table.NewWriter()
	tbl.SetOutputMirror(w)
	tbl.SetStyle(table.StyleLight)
	tbl.Style().Format.Footer = text.FormatDefault
	tbl.AppendHeader(table.Row{"Module", "Fixed", "Total", "Progress"})

	for _, module := range modules {
		bucket := doc.PerModule[module]
		tbl.AppendRow(table.Row{
			module,
			humanize.Comma(int64(bucket.Fixed)),
			humanize.Comma(int64(bucket.Total)),
			progressBar(bucket.Fixed, bucket.Total),
		})
	}

	tbl.AppendFooter(table.Row{
		"all",
		humanize.Comma(int64(doc.FixedFiles)),
		humanize.Comma(int64(doc.TotalFiles)),
		progressBar(doc.FixedFiles, doc.TotalFiles),
	})
	tbl.Render()

	fmt.Fprintln(w)

	remaining := doc.Remaining()
	if remaining == 0 {
		color.New(color.FgGreen).Fprintln(w, "All suppressed files remediated")
	} else {
		color.New(color.FgYellow).Fprintf(w, "%s files remaining\n", humanize.Comma(int64(remaining)))
	}
}

// progressBar renders a fixed-width completion bar with a percentage.
func progressBar(fixed, total int) string {
	if total == 0 {
		return "[" + strings.Repeat("░", barLength) + "] n/a"
	}

	ratio := float64(fixed) / float64(total)
	if ratio > 1 {
		ratio = 1
	}

	filled := int(ratio * barLength)
	bar := strings.Repeat("█", filled) + strings.Repeat("░", barLength-filled)

	return fmt.Sprintf("[%s] %.1f%%", bar, ratio*percentageValue)
}
