package remedy

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/Sumatoshi-tech/recheck/internal/diagnose"
	"github.com/Sumatoshi-tech/recheck/internal/observability"
	"github.com/Sumatoshi-tech/recheck/internal/patterns"
	"github.com/Sumatoshi-tech/recheck/internal/scan"
	"github.com/Sumatoshi-tech/recheck/internal/strategy"
	"github.com/Sumatoshi-tech/recheck/internal/synth"
)

// Executor owns all on-disk mutation of source files during a run. Files are
// processed independently; the synthesizer is the only shared resource and
// serializes internally.
type Executor struct {
	collector   *diagnose.Collector
	strategies  *strategy.Registry
	synthesizer *synth.Synthesizer
	snapshots   *SnapshotStore

	directive    string
	utilitiesDir string
	dryRun       bool
	emitDiff     bool
	workers      int

	logger  *slog.Logger
	metrics *observability.RunMetrics
}

// ExecutorOptions configures an Executor.
type ExecutorOptions struct {
	Collector   *diagnose.Collector
	Strategies  *strategy.Registry
	Synthesizer *synth.Synthesizer
	Snapshots   *SnapshotStore

	// Directive is the suppression directive text.
	Directive string
	// UtilitiesDir is the root-relative directory of synthesized helpers, so
	// generated imports resolve to where the synthesizer writes.
	UtilitiesDir string
	// DryRun computes outcomes without writing any file.
	DryRun bool
	// EmitDiff attaches a rendered change preview to each written result.
	EmitDiff bool
	// Workers bounds parallel file processing. Values below 1 mean 1.
	Workers int

	// Logger is optional; nil discards executor logging.
	Logger *slog.Logger
	// Metrics is optional; nil disables run telemetry.
	Metrics *observability.RunMetrics
}

// NewExecutor creates a remediation executor.
func NewExecutor(opts ExecutorOptions) *Executor {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	workers := opts.Workers
	if workers < 1 {
		workers = 1
	}

	return &Executor{
		collector:    opts.Collector,
		strategies:   opts.Strategies,
		synthesizer:  opts.Synthesizer,
		snapshots:    opts.Snapshots,
		directive:    opts.Directive,
		utilitiesDir: opts.UtilitiesDir,
		dryRun:       opts.DryRun,
		emitDiff:     opts.EmitDiff,
		workers:      workers,
		logger:       logger,
		metrics:      opts.Metrics,
	}
}

// Run remediates every work item and returns the aggregated result. Items
// are distributed over a bounded worker pool; each file is processed
// strictly sequentially within its own lifecycle. Per-file failures are
// contained and never abort the run.
func (e *Executor) Run(ctx context.Context, items []scan.WorkItem) RunResult {
	start := time.Now()

	result := RunResult{
		Files:  make([]FileResult, len(items)),
		DryRun: e.dryRun,
	}

	workers := e.workers
	if workers > len(items) {
		workers = len(items)
	}

	jobs := make(chan int)

	var wg sync.WaitGroup

	for w := 0; w < workers; w++ {
		wg.Add(1)

		go func() {
			defer wg.Done()

			for i := range jobs {
				result.Files[i] = e.Remediate(ctx, items[i])
			}
		}()
	}

	for i := range items {
		jobs <- i
	}

	close(jobs)
	wg.Wait()

	result.Tally()

	if e.metrics != nil {
		for _, file := range result.Files {
			e.metrics.RecordOutcome(ctx, string(file.Outcome))
		}

		e.metrics.RecordRunDuration(ctx, time.Since(start))
	}

	return result
}

// Remediate drives one work item through the full lifecycle and returns its
// finalized result. The original file is mutated only on a Resolved or
// PartiallyResolved verdict, via snapshot-then-atomic-replace.
func (e *Executor) Remediate(ctx context.Context, item scan.WorkItem) FileResult {
	result := FileResult{Path: item.Path, Module: item.Module}

	state := StateDiscovered
	e.logState(item.Path, state)

	original, readErr := os.ReadFile(item.AbsPath)
	if readErr != nil {
		result.Outcome = OutcomeCollectFailed
		result.Err = fmt.Errorf("read source: %w", readErr)

		return result
	}

	stripped, hadDirective := diagnose.StripDirective(string(original), e.directive)

	before, beforeErr := e.collector.CollectText(ctx, item.AbsPath, stripped)
	if beforeErr != nil {
		result.Outcome = OutcomeCollectFailed
		result.Err = beforeErr

		return result
	}

	state = StateDiagnosed
	e.logState(item.Path, state)

	result.DiagnosticsBefore = len(before)

	// The directive was hiding nothing. Dropping it is the whole fix.
	if len(before) == 0 {
		result.Outcome = OutcomeResolved

		if hadDirective {
			writeErr := e.commit(item, original, stripped, &result)
			if writeErr != nil {
				result.Outcome = OutcomeRegressed
				result.Err = writeErr
			}
		}

		return result
	}

	matched := e.strategies.Rules().Classify(before)
	result.Patterns = matched

	state = StateClassified
	e.logState(item.Path, state)

	if len(matched) == 0 {
		// Diagnostics exist but nothing we know how to rewrite.
		result.Outcome = OutcomeNoFix
		result.DiagnosticsAfter = len(before)

		return result
	}

	steps, resolveErr := e.strategies.Resolve(item.Path, matched)
	if resolveErr != nil {
		result.Outcome = OutcomeNoFix
		result.Err = resolveErr
		result.DiagnosticsAfter = len(before)

		return result
	}

	fctx := patterns.FileContext{Path: item.Path, Records: before, HelperDir: e.utilitiesDir}

	working, transformErr := e.applySteps(steps, stripped, fctx)
	if transformErr != nil {
		// Chain aborted; nothing was written, so disk content already equals
		// the pre-run snapshot.
		result.Outcome = OutcomeRegressed
		result.Err = transformErr
		result.DiagnosticsAfter = len(before)

		return result
	}

	state = StateTransformed
	e.logState(item.Path, state)

	after, afterErr := e.collector.CollectText(ctx, item.AbsPath, working)
	if afterErr != nil {
		result.Outcome = OutcomeCollectFailed
		result.Err = afterErr

		return result
	}

	state = StateVerified
	e.logState(item.Path, state)

	result.DiagnosticsAfter = len(after)

	switch {
	case len(after) == 0:
		result.Outcome = OutcomeResolved

		writeErr := e.commit(item, original, working, &result)
		if writeErr != nil {
			result.Outcome = OutcomeRegressed
			result.Err = writeErr
		}
	case len(after) < len(before):
		// Improved but not certified: keep the better content, keep the
		// directive.
		result.Outcome = OutcomePartial

		writeErr := e.commit(item, original, diagnose.AddDirective(working, e.directive), &result)
		if writeErr != nil {
			result.Outcome = OutcomeRegressed
			result.Err = writeErr
		}
	default:
		result.Outcome = OutcomeRegressed
	}

	e.logState(item.Path, StateFinalized)

	return result
}

// applySteps runs the resolved transform chain against an in-memory copy,
// synthesizing each declared utility at most once per file.
func (e *Executor) applySteps(steps []strategy.Step, text string, fctx patterns.FileContext) (string, error) {
	satisfied := map[string]bool{}

	for _, step := range steps {
		for _, dep := range step.Requires {
			if satisfied[dep] {
				continue
			}

			ensureErr := e.synthesizer.Ensure(dep)
			if ensureErr != nil {
				return "", fmt.Errorf("transform %s: %w", step.Name, ensureErr)
			}

			satisfied[dep] = true
		}

		next, applyErr := step.Apply(text, fctx)
		if applyErr != nil {
			return "", fmt.Errorf("transform %s: %w", step.Name, applyErr)
		}

		text = next
	}

	return text, nil
}

// commit persists the accepted content: snapshot first, then atomic replace.
// In dry-run mode it only renders the diff preview.
func (e *Executor) commit(item scan.WorkItem, original []byte, final string, result *FileResult) error {
	if e.emitDiff || e.dryRun {
		result.Diff = renderDiff(string(original), final)
	}

	if e.dryRun {
		return nil
	}

	snapErr := e.snapshots.Save(item.Path, original)
	if snapErr != nil {
		return snapErr
	}

	return atomicWrite(item.AbsPath, []byte(final))
}

// logState traces lifecycle transitions at debug level.
func (e *Executor) logState(path string, state State) {
	e.logger.Debug("state transition", "file", path, "state", string(state))
}

// atomicWrite replaces path via a temp file in the same directory and a
// rename, so an interrupted run never leaves a truncated source file.
func atomicWrite(path string, data []byte) error {
	dir := filepath.Dir(path)

	tmp, tmpErr := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if tmpErr != nil {
		return fmt.Errorf("create temp file: %w", tmpErr)
	}

	tmpName := tmp.Name()

	_, writeErr := tmp.Write(data)
	closeErr := tmp.Close()

	if writeErr != nil || closeErr != nil {
		os.Remove(tmpName)

		if writeErr != nil {
			return fmt.Errorf("write temp file: %w", writeErr)
		}

		return fmt.Errorf("close temp file: %w", closeErr)
	}

	renameErr := os.Rename(tmpName, path)
	if renameErr != nil {
		os.Remove(tmpName)

		return fmt.Errorf("replace %s: %w", path, renameErr)
	}

	return nil
}

// renderDiff builds a human-readable change preview.
func renderDiff(before, after string) string {
	dmp := diffmatchpatch.New()

	diffs := dmp.DiffMain(before, after, false)
	diffs = dmp.DiffCleanupSemantic(diffs)

	return dmp.DiffPrettyText(diffs)
}
