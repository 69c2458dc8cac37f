package canonical

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTestCaseCloneIsIndependent(t *testing.T) {
	original := &TestCase{
		ID:     "tc-1",
		Name:   "Verify login",
		Status: StatusReady,
		TestSteps: []TestStep{
			{ID: "s1", Order: 1, Action: "open page"},
		},
		Tags:     []string{"smoke"},
		Metadata: map[string]any{"labels": []string{"ui"}},
	}

	clone := original.Clone()
	require.NotNil(t, clone)

	clone.Name = "mutated"
	clone.TestSteps[0].Action = "mutated"
	clone.Tags[0] = "mutated"
	clone.Metadata["labels"] = "mutated"

	assert.Equal(t, "Verify login", original.Name)
	assert.Equal(t, "open page", original.TestSteps[0].Action)
	assert.Equal(t, "smoke", original.Tags[0])
	assert.Equal(t, []string{"ui"}, original.Metadata["labels"])
}

func TestStepOrderInvariant(t *testing.T) {
	tc := &TestCase{
		TestSteps: []TestStep{
			{Order: 1}, {Order: 2}, {Order: 3},
		},
	}

	for i, s := range tc.TestSteps {
		assert.Equal(t, i+1, s.Order, "step order must be dense 1..N with no gaps")
	}
}

func TestPriorityValid(t *testing.T) {
	assert.True(t, PriorityHigh.Valid())
	assert.False(t, Priority("URGENT").Valid())
}

func TestMigrationJobRecordSuccess(t *testing.T) {
	job := &MigrationJob{}

	job.RecordSuccess(TranslationSuccess)
	job.RecordSuccess(TranslationPartial)
	job.RecordSuccess(TranslationError)

	assert.Equal(t, 3, job.ProcessedItems)
	assert.Equal(t, 2, job.SuccessCount)
	assert.Equal(t, 1, job.WarningCount)
	assert.Equal(t, 1, job.ErrorCount)
}
