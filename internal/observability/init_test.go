package observability_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/recheck/internal/observability"
)

func TestInit(t *testing.T) {
	t.Parallel()

	cfg := observability.DefaultConfig()
	cfg.ServiceVersion = "test"

	providers, err := observability.Init(cfg)
	require.NoError(t, err)

	assert.NotNil(t, providers.Meter)
	assert.NotNil(t, providers.Logger)
	assert.NotNil(t, providers.Registry)
	require.NotNil(t, providers.Shutdown)

	require.NoError(t, providers.Shutdown(context.Background()))
}

func TestNewRunMetrics(t *testing.T) {
	t.Parallel()

	providers, err := observability.Init(observability.DefaultConfig())
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = providers.Shutdown(context.Background())
	})

	metrics, metricsErr := observability.NewRunMetrics(providers.Meter)
	require.NoError(t, metricsErr)
	require.NotNil(t, metrics)

	// Recording through every instrument must not panic.
	ctx := context.Background()
	metrics.RecordScanned(ctx, 3)
	metrics.RecordOutcome(ctx, "resolved")
	metrics.RecordCollectFailure(ctx)
	metrics.RecordCheckerDuration(ctx, 0)
	metrics.RecordRunDuration(ctx, 0)
}

func TestRunMetrics_ScannedCountExported(t *testing.T) {
	t.Parallel()

	providers, err := observability.Init(observability.DefaultConfig())
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = providers.Shutdown(context.Background())
	})

	metrics, metricsErr := observability.NewRunMetrics(providers.Meter)
	require.NoError(t, metricsErr)

	// One recording of the full scan size: the exported counter must match
	// it exactly.
	metrics.RecordScanned(context.Background(), 3)

	families, gatherErr := providers.Registry.Gather()
	require.NoError(t, gatherErr)

	found := false

	var scanned float64

	for _, family := range families {
		if !strings.HasPrefix(family.GetName(), "recheck_files_scanned") {
			continue
		}

		found = true

		for _, m := range family.GetMetric() {
			scanned += m.GetCounter().GetValue()
		}
	}

	require.True(t, found, "scan counter family not exported")
	assert.InDelta(t, 3, scanned, 0)
}
