// Package workflow implements the Migration Workflow: a fixed, seven-step
// resumable state machine that drives one MigrationInput from validation
// through verification, invoking the Transformation Service for the
// transform phase and adapter.Adapter implementations for connect, extract,
// and load. Grounded on the teacher's DurableExecutionEngine step-status
// lifecycle (pkg/execution/engine.go) and its in-memory run registry
// convention, adapted from durable DB-backed execution to a single
// in-process, synchronous step runner.
package workflow

import (
	"time"

	"github.com/cedricziel/migrated/internal/canonical"
)

// WorkflowState is the closed set of states a Workflow may occupy.
type WorkflowState string

const (
	WorkflowCreated   WorkflowState = "CREATED"
	WorkflowRunning   WorkflowState = "RUNNING"
	WorkflowCompleted WorkflowState = "COMPLETED"
	WorkflowFailed    WorkflowState = "FAILED"
)

// StepStatus is the closed set of states a WorkflowStep may occupy.
type StepStatus string

const (
	StepPending   StepStatus = "PENDING"
	StepRunning   StepStatus = "RUNNING"
	StepCompleted StepStatus = "COMPLETED"
	StepFailed    StepStatus = "FAILED"
)

// RecognizedSystems is the closed set of system names Validate Input accepts
// for sourceSystem/targetSystem. Only zephyr and qtest have mappers wired in
// this module; the rest are named so Validate Input's acceptance set matches
// the full roster this core was designed against, even though connecting to
// them requires an Adapter this module does not ship.
var RecognizedSystems = map[string]bool{
	"zephyr":       true,
	"qtest":        true,
	"azure-devops": true,
	"rally":        true,
	"hp-alm":       true,
	"excel":        true,
}

// MigrationInput is the job configuration a Workflow is created from.
type MigrationInput struct {
	SourceSystem  string
	TargetSystem  string
	ProjectKey    string
	EntityTypes   []string
	SourceConfig  map[string]any
	TargetConfig  map[string]any
	Filters       map[string]any
	FieldMappings map[string]canonical.FieldMappings
	ValueMappings map[string]canonical.ValueMappings
}

// WorkflowStep is one unit of execution in a Workflow's fixed pipeline.
type WorkflowStep struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Order     int        `json:"order"`
	Status    StepStatus `json:"status"`
	StartTime *time.Time `json:"startTime,omitempty"`
	EndTime   *time.Time `json:"endTime,omitempty"`
	Result    any        `json:"result,omitempty"`
	Error     string     `json:"error,omitempty"`
}

// Workflow is one migration run: a fixed, ordered sequence of seven steps
// plus the job configuration they operate on.
type Workflow struct {
	ID          string         `json:"id"`
	Type        string         `json:"type"`
	State       WorkflowState  `json:"state"`
	Input       MigrationInput `json:"input"`
	Steps       []*WorkflowStep `json:"steps"`
	CreatedAt   time.Time      `json:"createdAt"`
	StartedAt   *time.Time     `json:"startedAt,omitempty"`
	CompletedAt *time.Time     `json:"completedAt,omitempty"`
	Result      any            `json:"result,omitempty"`
	Error       string         `json:"error,omitempty"`
}

const workflowType = "migration"

// stepDefinitions is the canonical, ordered, fixed step list every Workflow
// is constructed with. Step ids are stable wire identifiers, never
// renumbered even if a later step is skipped.
var stepDefinitions = []struct {
	id   string
	name string
}{
	{"step-1", "Validate Input"},
	{"step-2", "Connect Source"},
	{"step-3", "Connect Target"},
	{"step-4", "Extract"},
	{"step-5", "Transform"},
	{"step-6", "Load"},
	{"step-7", "Verify"},
}

// NewWorkflow constructs a Workflow in CREATED state with all seven steps
// PENDING.
func NewWorkflow(id string, input MigrationInput) *Workflow {
	steps := make([]*WorkflowStep, len(stepDefinitions))
	for i, d := range stepDefinitions {
		steps[i] = &WorkflowStep{ID: d.id, Name: d.name, Order: i + 1, Status: StepPending}
	}
	return &Workflow{
		ID:        id,
		Type:      workflowType,
		State:     WorkflowCreated,
		Input:     input,
		Steps:     steps,
		CreatedAt: time.Now().UTC(),
	}
}

// Step returns the step registered under id, or nil.
func (w *Workflow) Step(id string) *WorkflowStep {
	for _, s := range w.Steps {
		if s.ID == id {
			return s
		}
	}
	return nil
}
