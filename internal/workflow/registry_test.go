package workflow_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cedricziel/migrated/internal/workflow"
)

func TestRegistrySubmitAndGet(t *testing.T) {
	reg := workflow.NewRegistry()
	wf := workflow.NewWorkflow("wf-1", workflow.MigrationInput{SourceSystem: "zephyr", TargetSystem: "qtest"})
	reg.Submit(wf)

	got, ok := reg.Get("wf-1")
	require.True(t, ok)
	assert.Same(t, wf, got)
}

func TestRegistryGetUnknownReturnsFalse(t *testing.T) {
	reg := workflow.NewRegistry()
	_, ok := reg.Get("does-not-exist")
	assert.False(t, ok)
}

func TestRegistryListIsSortedByID(t *testing.T) {
	reg := workflow.NewRegistry()
	reg.Submit(workflow.NewWorkflow("wf-b", workflow.MigrationInput{}))
	reg.Submit(workflow.NewWorkflow("wf-a", workflow.MigrationInput{}))

	list := reg.List()
	require.Len(t, list, 2)
	assert.Equal(t, "wf-a", list[0].ID)
	assert.Equal(t, "wf-b", list[1].ID)
}
