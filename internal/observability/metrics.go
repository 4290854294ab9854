package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	metricFilesScanned    = "recheck.files.scanned"
	metricFileOutcomes    = "recheck.files.outcomes"
	metricCollectFailures = "recheck.collect.failures"
	metricCheckerDuration = "recheck.checker.duration.seconds"
	metricRunDuration     = "recheck.run.duration.seconds"

	attrOutcome = "outcome"
)

// checkerBucketBoundaries covers 100ms to 600s; a cold tsc invocation against a
// large project routinely takes tens of seconds.
var checkerBucketBoundaries = []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120, 300, 600}

// RunMetrics holds the OTel instruments for remediation run telemetry.
type RunMetrics struct {
	filesScanned    metric.Int64Counter
	fileOutcomes    metric.Int64Counter
	collectFailures metric.Int64Counter
	checkerDuration metric.Float64Histogram
	runDuration     metric.Float64Histogram
}

// NewRunMetrics creates run metric instruments from the given meter.
func NewRunMetrics(mt metric.Meter) (*RunMetrics, error) {
	b := newMetricBuilder(mt)

	rm := &RunMetrics{
		filesScanned:    b.counter(metricFilesScanned, "Suppressed files discovered by the scanner", "{file}"),
		fileOutcomes:    b.counter(metricFileOutcomes, "Finalized file outcomes by kind", "{file}"),
		collectFailures: b.counter(metricCollectFailures, "Diagnostic collection failures", "{failure}"),
		checkerDuration: b.histogram(metricCheckerDuration, "External checker invocation duration", "s", checkerBucketBoundaries...),
		runDuration:     b.histogram(metricRunDuration, "Full remediation run duration", "s"),
	}

	if b.err != nil {
		return nil, b.err
	}

	return rm, nil
}

// RecordScanned adds discovered files to the scan counter.
func (rm *RunMetrics) RecordScanned(ctx context.Context, count int) {
	rm.filesScanned.Add(ctx, int64(count))
}

// RecordOutcome records one finalized file outcome.
func (rm *RunMetrics) RecordOutcome(ctx context.Context, outcome string) {
	rm.fileOutcomes.Add(ctx, 1, metric.WithAttributes(attribute.String(attrOutcome, outcome)))
}

// RecordCollectFailure records one diagnostic collection failure.
func (rm *RunMetrics) RecordCollectFailure(ctx context.Context) {
	rm.collectFailures.Add(ctx, 1)
}

// RecordCheckerDuration records one external checker invocation duration.
func (rm *RunMetrics) RecordCheckerDuration(ctx context.Context, d time.Duration) {
	rm.checkerDuration.Record(ctx, d.Seconds())
}

// RecordRunDuration records the duration of a full remediation run.
func (rm *RunMetrics) RecordRunDuration(ctx context.Context, d time.Duration) {
	rm.runDuration.Record(ctx, d.Seconds())
}
