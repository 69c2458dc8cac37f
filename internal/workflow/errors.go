package workflow

import "fmt"

// ConfigError reports a missing or invalid MigrationInput field, the only
// failure kind Validate Input raises.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error: %s: %s", e.Field, e.Message)
}

// StepNotFoundError is returned by RetryStep when the requested step id
// does not exist in the fixed seven-step pipeline.
type StepNotFoundError struct {
	StepID string
}

func (e *StepNotFoundError) Error() string {
	return fmt.Sprintf("workflow: no such step %q", e.StepID)
}

// AlreadyCompletedError is returned by Start when called on a Workflow that
// has already reached COMPLETED; a completed workflow is immutable except
// through explicit RetryStep.
type AlreadyCompletedError struct {
	WorkflowID string
}

func (e *AlreadyCompletedError) Error() string {
	return fmt.Sprintf("workflow %q already completed", e.WorkflowID)
}
