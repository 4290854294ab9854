// Package remedy orchestrates one file's remediation lifecycle: snapshot,
// classify, transform, re-verify, then accept or roll back.
package remedy

// State is a stage in the per-file remediation lifecycle.
type State string

// Lifecycle states, in order.
const (
	StateDiscovered  State = "discovered"
	StateDiagnosed   State = "diagnosed"
	StateClassified  State = "classified"
	StateTransformed State = "transformed"
	StateVerified    State = "verified"
	StateFinalized   State = "finalized"
)

// Outcome is the finalized verdict for one file.
type Outcome string

// Finalized outcomes.
const (
	// OutcomeResolved: verification reported zero diagnostics; the directive
	// was removed and the transformed content written.
	OutcomeResolved Outcome = "resolved"
	// OutcomePartial: diagnostics decreased but did not reach zero; content
	// written with the directive retained.
	OutcomePartial Outcome = "partially_resolved"
	// OutcomeRegressed: no improvement; the file on disk is byte-identical to
	// its pre-run content.
	OutcomeRegressed Outcome = "regressed"
	// OutcomeCollectFailed: the checker could not produce diagnostics; the
	// file was left untouched.
	OutcomeCollectFailed Outcome = "collect_failed"
	// OutcomeNoFix: diagnostics exist but no registered pattern matched.
	OutcomeNoFix Outcome = "no_fix_available"
)

// FileResult is the finalized record for one work item.
type FileResult struct {
	Path    string
	Module  string
	Outcome Outcome
	// Patterns are the matched pattern names, in application order.
	Patterns []string
	// DiagnosticsBefore counts diagnostics on the directive-stripped original.
	DiagnosticsBefore int
	// DiagnosticsAfter counts diagnostics after transforms; meaningful for
	// Resolved, Partial and Regressed outcomes.
	DiagnosticsAfter int
	// Err carries the per-file failure, if any. Per-file errors never abort
	// the run.
	Err error
	// Diff is the rendered change preview when diff output was requested.
	Diff string
}

// RunResult aggregates one remediation run.
type RunResult struct {
	Files []FileResult

	Resolved      int
	Partial       int
	Regressed     int
	CollectFailed int
	NoFix         int

	DryRun bool
}

// Tally recomputes the outcome counters from Files.
func (r *RunResult) Tally() {
	r.Resolved, r.Partial, r.Regressed, r.CollectFailed, r.NoFix = 0, 0, 0, 0, 0

	for _, file := range r.Files {
		switch file.Outcome {
		case OutcomeResolved:
			r.Resolved++
		case OutcomePartial:
			r.Partial++
		case OutcomeRegressed:
			r.Regressed++
		case OutcomeCollectFailed:
			r.CollectFailed++
		case OutcomeNoFix:
			r.NoFix++
		}
	}
}

// ResolvedByModule returns the count of newly resolved files per module.
func (r *RunResult) ResolvedByModule() map[string]int {
	counts := map[string]int{}

	for _, file := range r.Files {
		if file.Outcome == OutcomeResolved {
			counts[file.Module]++
		}
	}

	return counts
}
