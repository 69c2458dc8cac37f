package zephyr

import (
	"fmt"

	"github.com/cedricziel/migrated/internal/canonical"
	"github.com/cedricziel/migrated/internal/mapper"
)

// TestExecutionMapper converts between Zephyr Scale's execution JSON shape
// and the canonical model.
type TestExecutionMapper struct{}

var _ mapper.TestExecutionMapper = TestExecutionMapper{}

func (TestExecutionMapper) SystemName() string            { return SystemName }
func (TestExecutionMapper) EntityType() mapper.EntityType { return mapper.EntityTestExecution }

func (m TestExecutionMapper) ToCanonical(source mapper.SourceRecord, ctx *canonical.TransformationContext) (*canonical.TestExecution, error) {
	exec := &canonical.TestExecution{
		SourceSystem: SystemName,
		ID:           stringField(source, "id"),
		TestCaseID:   stringField(source, "testCaseKey"),
		TestCycleID:  stringField(source, "testCycleKey"),
		Status:       m.execStatusToCanonical(stringField(source, "status")),
		Environment:  stringField(source, "environment"),
		BuildVersion: stringField(source, "buildVersion"),
		StartTime:    parseTime(source["executedOn"]),
		EndTime:      parseTime(source["executedOn"]),
	}

	if executedBy := stringField(source, "executedBy"); executedBy != "" {
		exec.ExecutedBy = &canonical.User{ID: executedBy}
	}

	if steps, ok := source["stepResults"].([]any); ok {
		sr, err := m.mapStepResultsToCanonical(steps)
		if err != nil {
			return nil, err
		}
		exec.StepResults = sr
	}

	return exec, nil
}

func (m TestExecutionMapper) FromCanonical(exec *canonical.TestExecution, ctx *canonical.TransformationContext) (mapper.SourceRecord, error) {
	out := mapper.SourceRecord{
		"id":           exec.ID,
		"testCaseKey":  exec.TestCaseID,
		"testCycleKey": exec.TestCycleID,
		"status":       m.execStatusFromCanonical(exec.Status),
		"environment":  exec.Environment,
		"buildVersion": exec.BuildVersion,
	}
	if !exec.EndTime.IsZero() {
		out["executedOn"] = exec.EndTime.UTC().Format("2006-01-02T15:04:05Z")
	}
	if exec.ExecutedBy != nil {
		out["executedBy"] = exec.ExecutedBy.ID
	}

	steps := make([]any, len(exec.StepResults))
	for i, sr := range exec.StepResults {
		steps[i] = map[string]any{
			"stepId":       sr.StepID,
			"status":       m.execStatusFromCanonical(sr.Status),
			"actualResult": sr.ActualResult,
		}
	}
	out["stepResults"] = steps

	return out, nil
}

func (m TestExecutionMapper) ValidateMapping(source mapper.SourceRecord, target *canonical.TestExecution) []string {
	var messages []string
	if steps, ok := source["stepResults"].([]any); ok {
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
			return nil, fmt.Errorf("zephyr step result %d: not an object", i)
		}
		out = append(out, canonical.StepResult{
			StepID:       stringField(s, "stepId"),
			Status:       m.execStatusToCanonical(stringField(s, "status")),
			ActualResult: stringField(s, "actualResult"),
		})
	}
	return out, nil
}

var zephyrExecStatusToCanonical = map[string]canonical.ExecutionStatus{
	"PASS":         canonical.ExecPassed,
	"PASSED":       canonical.ExecPassed,
	"FAIL":         canonical.ExecFailed,
	"FAILED":       canonical.ExecFailed,
	"BLOCKED":      canonical.ExecBlocked,
	"NOT_EXECUTED": canonical.ExecNotExecuted,
	"IN_PROGRESS":  canonical.ExecInProgress,
	"SKIPPED":      canonical.ExecSkipped,
}

func (m TestExecutionMapper) execStatusToCanonical(s string) canonical.ExecutionStatus {
	if status, ok := zephyrExecStatusToCanonical[upper(s)]; ok {
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
