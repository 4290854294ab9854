package remedy_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Sumatoshi-tech/recheck/internal/remedy"
)

func TestRunResult_Tally(t *testing.T) {
	t.Parallel()

	result := remedy.RunResult{
		Files: []remedy.FileResult{
			{Outcome: remedy.OutcomeResolved},
			{Outcome: remedy.OutcomeResolved},
			{Outcome: remedy.OutcomePartial},
			{Outcome: remedy.OutcomeRegressed},
			{Outcome: remedy.OutcomeCollectFailed},
			{Outcome: remedy.OutcomeNoFix},
		},
	}

	result.Tally()

	assert.Equal(t, 2, result.Resolved)
	assert.Equal(t, 1, result.Partial)
	assert.Equal(t, 1, result.Regressed)
	assert.Equal(t, 1, result.CollectFailed)
	assert.Equal(t, 1, result.NoFix)
}

func TestRunResult_TallyIsIdempotent(t *testing.T) {
	t.Parallel()

	result := remedy.RunResult{
		Files: []remedy.FileResult{{Outcome: remedy.OutcomeResolved}},
	}

	result.Tally()
	result.Tally()

	assert.Equal(t, 1, result.Resolved)
}

func TestRunResult_ResolvedByModule(t *testing.T) {
	t.Parallel()

	result := remedy.RunResult{
		Files: []remedy.FileResult{
			{Module: "billing", Outcome: remedy.OutcomeResolved},
			{Module: "billing", Outcome: remedy.OutcomeResolved},
			{Module: "auth", Outcome: remedy.OutcomeResolved},
			{Module: "auth", Outcome: remedy.OutcomePartial},
			{Module: "search", Outcome: remedy.OutcomeRegressed},
		},
	}

	counts := result.ResolvedByModule()

	assert.Equal(t, map[string]int{"billing": 2, "auth": 1}, counts)
}
