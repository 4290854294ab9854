package diagnose

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/Sumatoshi-tech/recheck/internal/observability"
)

// transientMarker is inserted into the transient copy's filename so a crashed
// run leaves recognizable debris instead of clobbering user files.
const transientMarker = ".recheck"

// directiveScanLines mirrors the scanner's leading-line window.
const directiveScanLines = 15

// Sentinel errors for diagnostic collection.
var (
	// ErrCheckerTimeout indicates the checker exceeded its deadline.
	ErrCheckerTimeout = errors.New("checker invocation timed out")
	// ErrCheckerFailed indicates the checker crashed or produced no parseable output.
	ErrCheckerFailed = errors.New("checker invocation failed")
)

// Collector runs the external type checker against single files in
// diagnostics-only mode. The original file is never mutated: the checker sees
// a transient sibling copy with the suppression directive stripped.
type Collector struct {
	command   string
	args      []string
	directive string
	timeout   time.Duration
	logger    *slog.Logger
	metrics   *observability.RunMetrics
}

// CollectorOptions configures a Collector.
type CollectorOptions struct {
	// Command is the checker executable (e.g. "npx").
	Command string
	// Args are the fixed checker arguments; the file path is appended.
	Args []string
	// Directive is the suppression directive to strip before checking.
	Directive string
	// Timeout bounds one checker invocation.
	Timeout time.Duration
	// Logger is optional; nil discards collector logging.
	Logger *slog.Logger
	// Metrics is optional; nil disables invocation telemetry.
	Metrics *observability.RunMetrics
}

// NewCollector creates a diagnostic collector.
func NewCollector(opts CollectorOptions) *Collector {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &Collector{
		command:   opts.Command,
		args:      opts.Args,
		directive: opts.Directive,
		timeout:   opts.Timeout,
		logger:    logger,
		metrics:   opts.Metrics,
	}
}

// Collect reads the file at path, strips the suppression directive, and
// returns the diagnostics the checker reports for it. A non-nil error means
// collection failed, which callers must treat as "unknown", never as "clean".
func (c *Collector) Collect(ctx context.Context, path string) ([]Record, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read source: %w", err)
	}

	stripped, _ := StripDirective(string(content), c.directive)

	return c.CollectText(ctx, path, stripped)
}

// CollectText checks the given text as if it were the content of path. The
// text is written to a transient sibling copy so relative imports resolve,
// then the copy is removed.
func (c *Collector) CollectText(ctx context.Context, path, text string) ([]Record, error) {
	copyPath := transientCopyPath(path)

	writeErr := os.WriteFile(copyPath, []byte(text), 0o644)
	if writeErr != nil {
		return nil, fmt.Errorf("write transient copy: %w", writeErr)
	}
	defer os.Remove(copyPath)

	output, invokeErr := c.invoke(ctx, copyPath)

	all := ParseOutput(output)
	records := filterForFile(all, copyPath, path)

	if invokeErr != nil {
		// A nonzero exit with parseable diagnostics is the checker reporting
		// errors, not failing. Anything else is a collection failure.
		var exitErr *exec.ExitError
		if !errors.As(invokeErr, &exitErr) || len(all) == 0 {
			if c.metrics != nil {
				c.metrics.RecordCollectFailure(ctx)
			}

			return nil, invokeErr
		}
	}

	return records, nil
}

// Result pairs one file's records with its collection error, if any.
type Result struct {
	Path    string
	Records []Record
	Err     error
}

// CollectBatch collects diagnostics for many files over a bounded worker
// pool. Collection is read-only and independent per file, so invocations run
// concurrently. Results are returned in input order.
func (c *Collector) CollectBatch(ctx context.Context, paths []string, workers int) []Result {
	if workers <= 0 {
		workers = 1
	}

	if workers > len(paths) {
		workers = len(paths)
	}

	results := make([]Result, len(paths))
	jobs := make(chan int)

	var wg sync.WaitGroup

	for w := 0; w < workers; w++ {
		wg.Add(1)

		go func() {
			defer wg.Done()

			for i := range jobs {
				records, err := c.Collect(ctx, paths[i])
				results[i] = Result{Path: paths[i], Records: records, Err: err}
			}
		}()
	}

	for i := range paths {
		jobs <- i
	}

	close(jobs)
	wg.Wait()

	return results
}

// invoke runs one checker invocation against the given file and returns its
// combined output.
func (c *Collector) invoke(ctx context.Context, path string) (string, error) {
	deadlineCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	args := append(append([]string{}, c.args...), filepath.Base(path))

	cmd := exec.CommandContext(deadlineCtx, c.command, args...)
	cmd.Dir = filepath.Dir(path)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	runErr := cmd.Run()
	elapsed := time.Since(start)

	if c.metrics != nil {
		c.metrics.RecordCheckerDuration(ctx, elapsed)
	}

	c.logger.Debug("checker invocation",
		"file", path, "duration", elapsed, "exit_ok", runErr == nil)

	output := stdout.String()
	if output == "" {
		output = stderr.String()
	}

	if deadlineCtx.Err() != nil {
		return output, fmt.Errorf("%w after %s: %s", ErrCheckerTimeout, c.timeout, path)
	}

	if runErr != nil {
		var exitErr *exec.ExitError
		if errors.As(runErr, &exitErr) {
			// Keep the ExitError in the chain: callers distinguish "checker
			// reporting errors" from "checker broken" by its presence.
			return output, fmt.Errorf("%w: %w", ErrCheckerFailed, runErr)
		}

		return output, fmt.Errorf("%w: %v", ErrCheckerFailed, runErr)
	}

	return output, nil
}

// StripDirective removes whole lines equal to the directive from the leading
// portion of text. It reports whether a directive was removed.
func StripDirective(text, directive string) (string, bool) {
	lines := strings.Split(text, "\n")
	found := false

	kept := lines[:0]

	for i, line := range lines {
		if !found && i < directiveScanLines && strings.TrimSpace(line) == directive {
			found = true

			continue
		}

		kept = append(kept, line)
	}

	return strings.Join(kept, "\n"), found
}

// AddDirective prepends the directive line to text.
func AddDirective(text, directive string) string {
	return directive + "\n" + text
}

// transientCopyPath derives the sibling copy path for a source file:
// src/user.ts becomes src/user.recheck.ts.
func transientCopyPath(path string) string {
	ext := filepath.Ext(path)

	return strings.TrimSuffix(path, ext) + transientMarker + ext
}

// filterForFile keeps records addressed to the transient copy and remaps them
// to the original path. Diagnostics the checker reports in imported files are
// not actionable for this work item.
func filterForFile(records []Record, copyPath, originalPath string) []Record {
	copyBase := filepath.Base(copyPath)

	var kept []Record

	for _, record := range records {
		if filepath.Base(record.FilePath) != copyBase {
			continue
		}

		record.FilePath = originalPath
		kept = append(kept, record)
	}

	return kept
}
