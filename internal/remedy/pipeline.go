package remedy

import (
	"log/slog"
	"path/filepath"
	"time"

	"github.com/Sumatoshi-tech/recheck/internal/config"
	"github.com/Sumatoshi-tech/recheck/internal/diagnose"
	"github.com/Sumatoshi-tech/recheck/internal/observability"
	"github.com/Sumatoshi-tech/recheck/internal/patterns"
	"github.com/Sumatoshi-tech/recheck/internal/strategy"
	"github.com/Sumatoshi-tech/recheck/internal/synth"
)

// PipelineOptions are the per-run knobs layered over configuration.
type PipelineOptions struct {
	// DryRun computes outcomes without writing any file.
	DryRun bool
	// EmitDiff attaches change previews to written results.
	EmitDiff bool
	// Patterns restricts the rule registry to the named patterns. Empty
	// keeps the full default registry.
	Patterns []string

	// Logger is optional; nil discards pipeline logging.
	Logger *slog.Logger
	// Metrics is optional; nil disables run telemetry.
	Metrics *observability.RunMetrics
}

// NewPipeline wires a complete executor from configuration: collector,
// default rule registry, strategy resolution, utility synthesizer and
// snapshot store.
func NewPipeline(cfg *config.Config, opts PipelineOptions) (*Executor, error) {
	collector := diagnose.NewCollector(diagnose.CollectorOptions{
		Command:   cfg.Checker.Command,
		Args:      cfg.Checker.Args,
		Directive: cfg.Directive,
		Timeout:   time.Duration(cfg.Checker.TimeoutSec) * time.Second,
		Logger:    opts.Logger,
		Metrics:   opts.Metrics,
	})

	rules := patterns.DefaultRegistry()

	if len(opts.Patterns) > 0 {
		restricted, restrictErr := rules.Restrict(opts.Patterns)
		if restrictErr != nil {
			return nil, restrictErr
		}

		rules = restricted
	}

	synthesizer := synth.New(filepath.Join(cfg.Root, cfg.Utilities.Dir), opts.Logger)
	synth.RegisterDefaultTemplates(synthesizer)

	return NewExecutor(ExecutorOptions{
		Collector:    collector,
		Strategies:   strategy.NewRegistry(rules),
		Synthesizer:  synthesizer,
		Snapshots:    NewSnapshotStore(filepath.Join(cfg.Root, cfg.Snapshots.Dir)),
		Directive:    cfg.Directive,
		UtilitiesDir: cfg.Utilities.Dir,
		DryRun:       opts.DryRun,
		EmitDiff:     opts.EmitDiff,
		Workers:      cfg.Pipeline.Workers,
		Logger:       opts.Logger,
		Metrics:      opts.Metrics,
	}), nil
}
