package workflow_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cedricziel/migrated/internal/adapter"
	"github.com/cedricziel/migrated/internal/mapper"
	"github.com/cedricziel/migrated/internal/mapper/qtest"
	"github.com/cedricziel/migrated/internal/mapper/zephyr"
	"github.com/cedricziel/migrated/internal/translate"
	"github.com/cedricziel/migrated/internal/workflow"
)

func newTestRegistry() *mapper.Registry {
	reg := mapper.NewRegistry()
	zephyr.Register(reg)
	qtest.Register(reg)
	return reg
}

func sampleZephyrCase(id string) mapper.SourceRecord {
	return mapper.SourceRecord{
		"id":     id,
		"key":    "PROJ-" + id,
		"name":   "sample case " + id,
		"status": "READY",
		"steps": []any{
			map[string]any{"index": 1, "description": "do the thing", "expectedResult": "it happens"},
		},
	}
}

func TestWorkflowHappyPath(t *testing.T) {
	zephyrAdapter := &fakeAdapter{system: "zephyr", records: []mapper.SourceRecord{sampleZephyrCase("1"), sampleZephyrCase("2")}}
	qtestAdapter := &fakeAdapter{system: "qtest"}

	adapters := adapter.NewRegistry()
	adapters.Register("zephyr", zephyrAdapter)
	adapters.Register("qtest", qtestAdapter)

	svc := translate.NewService(translate.NewTransformer(newTestRegistry(), nil))
	engine := workflow.NewEngine(adapters, svc, nil)

	wf := workflow.NewWorkflow("wf-1", workflow.MigrationInput{
		SourceSystem: "zephyr",
		TargetSystem: "qtest",
		ProjectKey:   "PROJ",
		EntityTypes:  []string{string(mapper.EntityTestCase)},
	})

	err := engine.Start(context.Background(), wf)
	require.NoError(t, err)

	assert.Equal(t, workflow.WorkflowCompleted, wf.State)
	require.NotNil(t, wf.CompletedAt)
	for _, step := range wf.Steps {
		assert.Equal(t, workflow.StepCompleted, step.Status, "step %s", step.ID)
	}

	result, ok := wf.Result.(workflow.MigrationResult)
	require.True(t, ok)
	assert.True(t, result.Success)
	assert.Equal(t, 2, result.MigratedCount)
	assert.Equal(t, 0, result.FailedCount)
	assert.Len(t, result.Records, 2)
	assert.Len(t, qtestAdapter.created, 2)
}

func TestWorkflowFailsValidationOnMissingSourceSystem(t *testing.T) {
	adapters := adapter.NewRegistry()
	svc := translate.NewService(translate.NewTransformer(newTestRegistry(), nil))
	engine := workflow.NewEngine(adapters, svc, nil)

	wf := workflow.NewWorkflow("wf-2", workflow.MigrationInput{
		TargetSystem: "qtest",
		ProjectKey:   "PROJ",
		EntityTypes:  []string{string(mapper.EntityTestCase)},
	})

	err := engine.Start(context.Background(), wf)
	require.Error(t, err)

	assert.Equal(t, workflow.WorkflowFailed, wf.State)
	assert.Contains(t, wf.Error, "sourceSystem")
	assert.Equal(t, workflow.StepFailed, wf.Step("step-1").Status)
	for _, id := range []string{"step-2", "step-3", "step-4", "step-5", "step-6", "step-7"} {
		assert.Equal(t, workflow.StepPending, wf.Step(id).Status, "step %s should remain pending", id)
	}
}

func TestWorkflowFailsValidationWhenSourceEqualsTarget(t *testing.T) {
	adapters := adapter.NewRegistry()
	svc := translate.NewService(translate.NewTransformer(newTestRegistry(), nil))
	engine := workflow.NewEngine(adapters, svc, nil)

	wf := workflow.NewWorkflow("wf-3", workflow.MigrationInput{
		SourceSystem: "zephyr",
		TargetSystem: "zephyr",
		ProjectKey:   "PROJ",
		EntityTypes:  []string{string(mapper.EntityTestCase)},
	})

	err := engine.Start(context.Background(), wf)
	require.Error(t, err)
	assert.Equal(t, workflow.WorkflowFailed, wf.State)
}

func TestWorkflowExtractFailureThenRetryResumesWithoutReconnecting(t *testing.T) {
	zephyrAdapter := &fakeAdapter{system: "zephyr", records: []mapper.SourceRecord{sampleZephyrCase("1")}, failExtract: true}
	qtestAdapter := &fakeAdapter{system: "qtest"}

	adapters := adapter.NewRegistry()
	adapters.Register("zephyr", zephyrAdapter)
	adapters.Register("qtest", qtestAdapter)

	svc := translate.NewService(translate.NewTransformer(newTestRegistry(), nil))
	engine := workflow.NewEngine(adapters, svc, nil)

	wf := workflow.NewWorkflow("wf-4", workflow.MigrationInput{
		SourceSystem: "zephyr",
		TargetSystem: "qtest",
		ProjectKey:   "PROJ",
		EntityTypes:  []string{string(mapper.EntityTestCase)},
	})

	err := engine.Start(context.Background(), wf)
	require.Error(t, err)
	assert.Equal(t, workflow.WorkflowFailed, wf.State)
	assert.Equal(t, workflow.StepCompleted, wf.Step("step-2").Status)
	assert.Equal(t, workflow.StepCompleted, wf.Step("step-3").Status)
	assert.Equal(t, workflow.StepFailed, wf.Step("step-4").Status)

	// Clear the fault and retry only step-4.
	zephyrAdapter.failExtract = false
	require.NoError(t, engine.RetryStep(wf, "step-4"))
	assert.Equal(t, workflow.StepPending, wf.Step("step-4").Status)

	err = engine.Start(context.Background(), wf)
	require.NoError(t, err)
	assert.Equal(t, workflow.WorkflowCompleted, wf.State)
	assert.Equal(t, workflow.StepCompleted, wf.Step("step-4").Status)
}

func TestRetryStepUnknownIDReturnsError(t *testing.T) {
	adapters := adapter.NewRegistry()
	svc := translate.NewService(translate.NewTransformer(newTestRegistry(), nil))
	engine := workflow.NewEngine(adapters, svc, nil)

	wf := workflow.NewWorkflow("wf-5", workflow.MigrationInput{SourceSystem: "zephyr", TargetSystem: "qtest", ProjectKey: "PROJ"})
	err := engine.RetryStep(wf, "step-99")
	assert.Error(t, err)
}

func TestStartOnCompletedWorkflowReturnsError(t *testing.T) {
	zephyrAdapter := &fakeAdapter{system: "zephyr"}
	qtestAdapter := &fakeAdapter{system: "qtest"}
	adapters := adapter.NewRegistry()
	adapters.Register("zephyr", zephyrAdapter)
	adapters.Register("qtest", qtestAdapter)

	svc := translate.NewService(translate.NewTransformer(newTestRegistry(), nil))
	engine := workflow.NewEngine(adapters, svc, nil)

	wf := workflow.NewWorkflow("wf-6", workflow.MigrationInput{
		SourceSystem: "zephyr",
		TargetSystem: "qtest",
		ProjectKey:   "PROJ",
		EntityTypes:  []string{string(mapper.EntityTestCase)},
	})
	require.NoError(t, engine.Start(context.Background(), wf))

	err := engine.Start(context.Background(), wf)
	require.Error(t, err)
	var alreadyCompleted *workflow.AlreadyCompletedError
	assert.ErrorAs(t, err, &alreadyCompleted)
}
