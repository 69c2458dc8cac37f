package qtest

import (
	"fmt"

	"github.com/cedricziel/migrated/internal/canonical"
	"github.com/cedricziel/migrated/internal/mapper"
	"github.com/cedricziel/migrated/internal/mapper/mapcommon"
)

// TestExecutionMapper converts between qTest's nested test_run/test_log
// execution shape and the canonical model.
type TestExecutionMapper struct{}

var _ mapper.TestExecutionMapper = TestExecutionMapper{}

func (TestExecutionMapper) SystemName() string            { return SystemName }
func (TestExecutionMapper) EntityType() mapper.EntityType { return mapper.EntityTestExecution }

func (m TestExecutionMapper) ToCanonical(source mapper.SourceRecord, ctx *canonical.TransformationContext) (*canonical.TestExecution, error) {
	testRun, _ := source["test_run"].(map[string]any)
	testLog, _ := source["latest_test_log"].(map[string]any)
	if testLog == nil {
		testLog, _ = source["test_log"].(map[string]any)
	}

	exec := &canonical.TestExecution{
		SourceSystem: SystemName,
		ID:           idString(source["id"]),
		TestCaseID:   idString(firstNonNil(testRun, "test_case_id")),
		TestCycleID:  idString(firstNonNil(testRun, "test_cycle_id")),
		Status:       m.execStatusToCanonical(mapcommon.StringField(testLog, "status")),
		ExecutionTime: int64(mapcommon.IntField(testLog, "exe_start_date")),
	}

	if execDate := testLog["execution_date"]; execDate != nil {
		exec.EndTime = mapcommon.ParseTime(execDate)
		exec.StartTime = exec.EndTime
	}

	if note := mapcommon.StringField(testLog, "note"); note != "" {
		exec.Metadata = map[string]any{"note": note}
	}

	if steps, ok := testLog["test_step_logs"].([]any); ok {
		sr, err := m.mapStepResultsToCanonical(steps)
		if err != nil {
			return nil, err
		}
		exec.StepResults = sr
	}

	return exec, nil
}

func (m TestExecutionMapper) FromCanonical(exec *canonical.TestExecution, ctx *canonical.TransformationContext) (mapper.SourceRecord, error) {
	testLog := map[string]any{
		"status": m.execStatusFromCanonical(exec.Status),
	}
	if !exec.EndTime.IsZero() {
		testLog["execution_date"] = exec.EndTime.UTC().UnixMilli()
	}

	steps := make([]any, len(exec.StepResults))
	for i, sr := range exec.StepResults {
		steps[i] = map[string]any{
			"step_id": sr.StepID,
			"status":  m.execStatusFromCanonical(sr.Status),
			"actual_result": sr.ActualResult,
		}
	}
	testLog["test_step_logs"] = steps

	return mapper.SourceRecord{
		"id": exec.ID,
		"test_run": map[string]any{
			"test_case_id":  exec.TestCaseID,
			"test_cycle_id": exec.TestCycleID,
		},
		"latest_test_log": testLog,
	}, nil
}

func (m TestExecutionMapper) ValidateMapping(source mapper.SourceRecord, target *canonical.TestExecution) []string {
	var messages []string
	testLog, _ := source["latest_test_log"].(map[string]any)
	if testLog == nil {
		testLog, _ = source["test_log"].(map[string]any)
	}
	if steps, ok := testLog["test_step_logs"].([]any); ok {
		if len(steps) != len(target.StepResults) {
			messages = append(messages, fmt.Sprintf("step result count mismatch: source had %d, canonical has %d", len(steps), len(target.StepResults)))
		}
	}
	return messages
}

func (m TestExecutionMapper) mapStepResultsToCanonical(steps []any) ([]canonical.StepResult, error) {
	out := make([]canonical.StepResult, 0, len(steps))
	for i, raw := range steps {
		s, ok := raw.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("qtest step log %d: not an object", i)
		}
		out = append(out, canonical.StepResult{
			StepID:       idString(s["step_id"]),
			Status:       m.execStatusToCanonical(mapcommon.StringField(s, "status")),
			ActualResult: mapcommon.StringField(s, "actual_result"),
		})
	}
	return out, nil
}

func firstNonNil(m map[string]any, key string) any {
	if m == nil {
		return nil
	}
	return m[key]
}

var qtestExecStatusToCanonical = map[string]canonical.ExecutionStatus{
	"pass":         canonical.ExecPassed,
	"passed":       canonical.ExecPassed,
	"fail":         canonical.ExecFailed,
	"failed":       canonical.ExecFailed,
	"blocked":      canonical.ExecBlocked,
	"not run":      canonical.ExecNotExecuted,
	"not_executed": canonical.ExecNotExecuted,
	"in progress":  canonical.ExecInProgress,
	"skipped":      canonical.ExecSkipped,
}

func (m TestExecutionMapper) execStatusToCanonical(s string) canonical.ExecutionStatus {
	if status, ok := qtestExecStatusToCanonical[mapcommon.Lower(s)]; ok {
		return status
	}
	return canonical.ExecNotExecuted
}

func (m TestExecutionMapper) execStatusFromCanonical(s canonical.ExecutionStatus) string {
	switch s {
	case canonical.ExecPassed:
		return "PASS"
	case canonical.ExecFailed:
		return "FAIL"
	case canonical.ExecBlocked:
		return "BLOCKED"
	case canonical.ExecInProgress:
		return "IN_PROGRESS"
	case canonical.ExecSkipped:
		return "SKIPPED"
	default:
		return "NOT_EXECUTED"
	}
}
