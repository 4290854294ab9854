// Package report renders run and progress output for terminals and plots.
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

	"github.com/Sumatoshi-tech/recheck/internal/remedy"
)

const msgNoFilesProcessed = "No suppressed files to process"

// outcomeColor maps each outcome to its terminal color.
func outcomeColor(outcome remedy.Outcome) *color.Color {
	switch outcome {
	case remedy.OutcomeResolved:
		return color.New(color.FgGreen)
	case remedy.OutcomePartial:
		return color.New(color.FgYellow)
	case remedy.OutcomeNoFix:
		return color.New(color.FgCyan)
	case remedy.OutcomeRegressed, remedy.OutcomeCollectFailed:
		return color.New(color.FgRed)
	default:
		return color.New(color.Reset)
	}
}

// RenderRun writes the per-file outcome table and summary line for one run.
func RenderRun(w io.Writer, result remedy.RunResult) {
	if len(result.Files) == 0 {
		fmt.Fprintln(w, msgNoFilesProcessed)

		return
	}

	files := make([]remedy.FileResult, len(result.Files))
	copy(files, result.Files)

	sort.Slice(files, func(i, j int) bool {
		if files[i].Module != files[j].Module {
			return files[i].Module < files[j].Module
		}

		return files[i].Path < files[j].Path
	})

	tbl := table.NewWriter()
	tbl.SetOutputMirror(w)
	tbl.SetStyle(table.StyleLight)
	tbl.Style().Format.Footer = text.FormatDefault
	tbl.AppendHeader(table.Row{"Module", "File", "Outcome", "Before", "After", "Patterns"})

	for _, file := range files {
		tbl.AppendRow(table.Row{
			file.Module,
			file.Path,
			outcomeColor(file.Outcome).Sprint(string(file.Outcome)),
			file.DiagnosticsBefore,
			file.DiagnosticsAfter,
			strings.Join(file.Patterns, ", "),
		})
	}

	tbl.AppendFooter(table.Row{"", "", "", "", "", fmt.Sprintf("%s files", humanize.Comma(int64(len(files))))})
	tbl.Render()

	fmt.Fprintln(w)
	renderTally(w, result)

	if result.DryRun {
		fmt.Fprintln(w)
		color.New(color.FgYellow).Fprintln(w, "Dry run: no files were modified")
	}
}

// renderTally prints the one-line outcome counters.
func renderTally(w io.Writer, result remedy.RunResult) {
	parts := []string{
		outcomeColor(remedy.OutcomeResolved).Sprintf("resolved: %d", result.Resolved),
		outcomeColor(remedy.OutcomePartial).Sprintf("partial: %d", result.Partial),
		outcomeColor(remedy.OutcomeRegressed).Sprintf("regressed: %d", result.Regressed),
		outcomeColor(remedy.OutcomeNoFix).Sprintf("no fix: %d", result.NoFix),
		outcomeColor(remedy.OutcomeCollectFailed).Sprintf("collect failed: %d", result.CollectFailed),
	}

	fmt.Fprintln(w, strings.Join(parts, " | "))
}

// RenderDiffs writes the rendered change previews for files that carry one.
func RenderDiffs(w io.Writer, result remedy.RunResult) {
	for _, file := range result.Files {
		if file.Diff == "" {
			continue
		}

		color.New(color.FgCyan).Fprintf(w, "--- %s (%s)\n", file.Path, string(file.Outcome))
		fmt.Fprintln(w, file.Diff)
	}
}
