package ledger_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/recheck/internal/ledger"
)

func TestMerge_FirstRun(t *testing.T) {
	t.Parallel()

	doc := ledger.NewDocument()

	doc.Merge(ledger.RunSummary{
		Date:               time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
		SuppressedByModule: map[string]int{"billing": 10, "auth": 5},
		ResolvedByModule:   map[string]int{"billing": 3},
		Notes:              "first pass",
	})

	assert.Equal(t, 15, doc.TotalFiles)
	assert.Equal(t, 3, doc.FixedFiles)
	assert.Equal(t, ledger.Bucket{Total: 10, Fixed: 3}, doc.PerModule["billing"])
	assert.Equal(t, ledger.Bucket{Total: 5, Fixed: 0}, doc.PerModule["auth"])

	require.Len(t, doc.History, 1)
	assert.Equal(t, "2026-08-01T12:00:00Z", doc.History[0].Date)
	assert.Equal(t, 3, doc.History[0].FilesFixed)
	assert.Equal(t, "first pass", doc.History[0].Notes)
}

func TestMerge_AccumulatesAcrossRuns(t *testing.T) {
	t.Parallel()

	doc := ledger.NewDocument()

	doc.Merge(ledger.RunSummary{
		SuppressedByModule: map[string]int{"billing": 10},
		ResolvedByModule:   map[string]int{"billing": 3},
	})

	// Next scan sees 7 suppressed; 2 more get fixed.
	doc.Merge(ledger.RunSummary{
		SuppressedByModule: map[string]int{"billing": 7},
		ResolvedByModule:   map[string]int{"billing": 2},
	})

	assert.Equal(t, ledger.Bucket{Total: 10, Fixed: 5}, doc.PerModule["billing"])
	assert.Equal(t, 5, doc.FixedFiles)
	assert.Equal(t, 10, doc.TotalFiles)
	assert.Len(t, doc.History, 2)
}

func TestMerge_RerunWithNothingResolved(t *testing.T) {
	t.Parallel()

	doc := ledger.NewDocument()

	doc.Merge(ledger.RunSummary{
		SuppressedByModule: map[string]int{"billing": 10},
		ResolvedByModule:   map[string]int{"billing": 10},
	})

	before := *doc

	// A fully fixed tree scans empty; fixed counts must not move.
	doc.Merge(ledger.RunSummary{
		SuppressedByModule: map[string]int{},
		ResolvedByModule:   map[string]int{},
	})

	assert.Equal(t, before.FixedFiles, doc.FixedFiles)
	assert.Equal(t, before.TotalFiles, doc.TotalFiles)
	assert.Equal(t, ledger.Bucket{Total: 10, Fixed: 10}, doc.PerModule["billing"])
}

func TestMerge_FixedNeverExceedsTotal(t *testing.T) {
	t.Parallel()

	doc := ledger.NewDocument()

	doc.Merge(ledger.RunSummary{
		SuppressedByModule: map[string]int{"auth": 2},
		ResolvedByModule:   map[string]int{"auth": 2},
	})

	// New suppressed files appear later in the same module.
	doc.Merge(ledger.RunSummary{
		SuppressedByModule: map[string]int{"auth": 4},
		ResolvedByModule:   map[string]int{"auth": 1},
	})

	bucket := doc.PerModule["auth"]
	assert.LessOrEqual(t, bucket.Fixed, bucket.Total)
	assert.Equal(t, ledger.Bucket{Total: 6, Fixed: 3}, bucket)
}

func TestMerge_NewModuleAppears(t *testing.T) {
	t.Parallel()

	doc := ledger.NewDocument()

	doc.Merge(ledger.RunSummary{
		SuppressedByModule: map[string]int{"billing": 5},
		ResolvedByModule:   map[string]int{},
	})

	doc.Merge(ledger.RunSummary{
		SuppressedByModule: map[string]int{"billing": 5, "search": 3},
		ResolvedByModule:   map[string]int{"search": 1},
	})

	assert.Equal(t, ledger.Bucket{Total: 5, Fixed: 0}, doc.PerModule["billing"])
	assert.Equal(t, ledger.Bucket{Total: 3, Fixed: 1}, doc.PerModule["search"])
	assert.Equal(t, 8, doc.TotalFiles)
}

func TestRemaining(t *testing.T) {
	t.Parallel()

	doc := ledger.NewDocument()
	assert.Equal(t, 0, doc.Remaining())

	doc.Merge(ledger.RunSummary{
		SuppressedByModule: map[string]int{"billing": 10},
		ResolvedByModule:   map[string]int{"billing": 4},
	})

	assert.Equal(t, 6, doc.Remaining())
}
