package workflow

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/cedricziel/migrated/internal/adapter"
	"github.com/cedricziel/migrated/internal/mapper"
	"github.com/cedricziel/migrated/internal/translate"
)

// Engine runs Workflows against a Mapper-backed Transformation Service and
// an Adapter Registry. One Engine is shared by every in-flight Workflow;
// each Workflow owns only its own adapter sessions, cached here keyed by
// workflow id for the run's lifetime.
type Engine struct {
	adapters     *adapter.Registry
	transformSvc *translate.Service
	logger       *log.Logger

	mu       sync.Mutex
	sessions map[string]*sessionPair
}

type sessionPair struct {
	source adapter.Session
	target adapter.Session
}

// NewEngine returns an Engine backed by adapters and svc. A nil logger falls
// back to log.Default().
func NewEngine(adapters *adapter.Registry, svc *translate.Service, logger *log.Logger) *Engine {
	if logger == nil {
		logger = log.Default()
	}
	return &Engine{
		adapters:     adapters,
		transformSvc: svc,
		logger:       logger,
		sessions:     make(map[string]*sessionPair),
	}
}

// Start runs wf forward from its current position: COMPLETED steps are
// skipped (their Result carries forward as the next step's input);
// PENDING or FAILED steps execute in order. Execution stops at the first
// failing step, transitioning wf to FAILED. A Workflow already COMPLETED
// cannot be started again.
func (e *Engine) Start(ctx context.Context, wf *Workflow) error {
	if wf.State == WorkflowCompleted {
		return &AlreadyCompletedError{WorkflowID: wf.ID}
	}

	if wf.StartedAt == nil {
		now := time.Now().UTC()
		wf.StartedAt = &now
	}
	wf.State = WorkflowRunning
	wf.Error = ""

	// A failed or cancelled run released this workflow's adapter sessions;
	// reopen those whose Connect step already COMPLETED before resuming.
	if e.sessionsFor(wf.ID) == nil {
		if s := wf.Step("step-2"); s.Status == StepCompleted {
			if err := e.connectSource(ctx, wf); err != nil {
				e.failWorkflow(wf, s, err)
				return err
			}
		}
		if s := wf.Step("step-3"); s.Status == StepCompleted {
			if err := e.connectTarget(ctx, wf); err != nil {
				e.failWorkflow(wf, s, err)
				return err
			}
		}
	}

	var prevResult any
	for _, step := range wf.Steps {
		if step.Status == StepCompleted {
			prevResult = step.Result
			continue
		}

		result, err := e.runStep(ctx, wf, step, prevResult)
		if err != nil {
			e.failWorkflow(wf, step, err)
			return err
		}
		prevResult = result
		// Cancel marks wf FAILED while a step runs; stop at this boundary.
		if wf.State == WorkflowFailed {
			return fmt.Errorf("workflow %s: %s", wf.ID, wf.Error)
		}
	}

	e.completeWorkflow(wf, prevResult)
	return nil
}

// RetryStep resets stepID (and only stepID) to PENDING and clears wf's
// error, without executing it; a subsequent Start follows resume semantics.
func (e *Engine) RetryStep(wf *Workflow, stepID string) error {
	step := wf.Step(stepID)
	if step == nil {
		return &StepNotFoundError{StepID: stepID}
	}
	step.Status = StepPending
	step.Error = ""
	step.StartTime = nil
	step.EndTime = nil
	wf.Error = ""
	if wf.State == WorkflowFailed {
		wf.State = WorkflowRunning
	}
	return nil
}

func (e *Engine) runStep(ctx context.Context, wf *Workflow, step *WorkflowStep, input any) (any, error) {
	start := time.Now().UTC()
	step.StartTime = &start
	step.Status = StepRunning

	var (
		result any
		err    error
	)

	switch step.ID {
	case "step-1":
		err = e.validateInput(wf.Input)
	case "step-2":
		err = e.connectSource(ctx, wf)
	case "step-3":
		err = e.connectTarget(ctx, wf)
	case "step-4":
		result, err = e.extract(ctx, wf)
	case "step-5":
		result, err = e.transform(wf, input)
	case "step-6":
		result, err = e.load(ctx, wf, input)
	case "step-7":
		result, err = e.verify(wf, input)
	default:
		err = fmt.Errorf("workflow: unknown step %q", step.ID)
	}

	end := time.Now().UTC()
	step.EndTime = &end

	if err != nil {
		step.Status = StepFailed
		step.Error = err.Error()
		return nil, err
	}

	step.Status = StepCompleted
	step.Result = result
	return result, nil
}

func (e *Engine) failWorkflow(wf *Workflow, step *WorkflowStep, err error) {
	wf.State = WorkflowFailed
	wf.Error = err.Error()
	e.logger.Printf("workflow %s failed at %s: %v", wf.ID, step.ID, err)
	e.releaseSessions(wf.ID)
}

func (e *Engine) completeWorkflow(wf *Workflow, verifyResult any) {
	now := time.Now().UTC()
	wf.CompletedAt = &now
	wf.State = WorkflowCompleted
	wf.Result = e.projectResult(wf, verifyResult)
	e.releaseSessions(wf.ID)
}

// projectResult assembles the workflow's final Result by projecting the
// verify step's counts together with the load step's per-record summary, per
// the "result assembled by projecting the verify step's result together
// with the load step's per-record summary" contract.
func (e *Engine) projectResult(wf *Workflow, verifyResult any) any {
	vr, ok := verifyResult.(VerifyResult)
	if !ok {
		return verifyResult
	}

	var records []LoadedRecord
	if loadStep := wf.Step("step-6"); loadStep != nil {
		if lr, ok := loadStep.Result.(LoadResult); ok {
			records = lr.Results
		}
	}

	success := vr.Failed == 0
	if len(records) > 0 && vr.Migrated == 0 {
		success = false
	}

	return MigrationResult{
		Success:       success,
		MigratedCount: vr.Migrated,
		FailedCount:   vr.Failed,
		WarningCount:  vr.Warnings,
		Messages:      vr.Messages,
		Records:       records,
	}
}

// Cancel observes a cancellation request at the next step boundary: a step
// currently RUNNING runs to completion or failure; after that, wf
// transitions to FAILED with error "cancelled".
func (e *Engine) Cancel(wf *Workflow) {
	if wf.State == WorkflowCompleted || wf.State == WorkflowFailed {
		return
	}
	wf.State = WorkflowFailed
	wf.Error = "cancelled"
	e.releaseSessions(wf.ID)
}

func (e *Engine) releaseSessions(workflowID string) {
	e.mu.Lock()
	pair, ok := e.sessions[workflowID]
	delete(e.sessions, workflowID)
	e.mu.Unlock()

	if !ok {
		return
	}
	if pair.source != nil {
		_ = pair.source.Close()
	}
	if pair.target != nil {
		_ = pair.target.Close()
	}
}

func (e *Engine) cacheSessions(workflowID string, mutate func(*sessionPair)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	pair, ok := e.sessions[workflowID]
	if !ok {
		pair = &sessionPair{}
		e.sessions[workflowID] = pair
	}
	mutate(pair)
}

func (e *Engine) sessionsFor(workflowID string) *sessionPair {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.sessions[workflowID]
}

// validateInput implements step 1: Validate Input.
func (e *Engine) validateInput(input MigrationInput) error {
	if input.SourceSystem == "" {
		return &ConfigError{Field: "sourceSystem", Message: "is required"}
	}
	if input.TargetSystem == "" {
		return &ConfigError{Field: "targetSystem", Message: "is required"}
	}
	if input.ProjectKey == "" {
		return &ConfigError{Field: "projectKey", Message: "is required"}
	}
	if !RecognizedSystems[input.SourceSystem] {
		return &ConfigError{Field: "sourceSystem", Message: fmt.Sprintf("%q is not a recognized system", input.SourceSystem)}
	}
	if !RecognizedSystems[input.TargetSystem] {
		return &ConfigError{Field: "targetSystem", Message: fmt.Sprintf("%q is not a recognized system", input.TargetSystem)}
	}
	if input.SourceSystem == input.TargetSystem {
		return &ConfigError{Field: "targetSystem", Message: "must differ from sourceSystem"}
	}
	return nil
}

// connectSource implements step 2: Connect Source.
func (e *Engine) connectSource(ctx context.Context, wf *Workflow) error {
	a, ok := e.adapters.Get(wf.Input.SourceSystem)
	if !ok {
		return fmt.Errorf("no adapter registered for source system %q", wf.Input.SourceSystem)
	}
	session, err := a.Connect(ctx, wf.Input.SourceConfig)
	if err != nil {
		return fmt.Errorf("connect source: %w", err)
	}
	e.cacheSessions(wf.ID, func(p *sessionPair) { p.source = session })
	return nil
}

// connectTarget implements step 3: Connect Target.
func (e *Engine) connectTarget(ctx context.Context, wf *Workflow) error {
	a, ok := e.adapters.Get(wf.Input.TargetSystem)
	if !ok {
		return fmt.Errorf("no adapter registered for target system %q", wf.Input.TargetSystem)
	}
	session, err := a.Connect(ctx, wf.Input.TargetConfig)
	if err != nil {
		return fmt.Errorf("connect target: %w", err)
	}
	e.cacheSessions(wf.ID, func(p *sessionPair) { p.target = session })
	return nil
}

// extractedRecord pairs a raw source record with the entity type it was
// extracted as, since Extract fans out across every entity type the job
// requested.
type extractedRecord struct {
	EntityType mapper.EntityType
	Record     mapper.SourceRecord
}

// ExtractResult is step 4's result shape.
type ExtractResult struct {
	Count   int               `json:"count"`
	Records []extractedRecord `json:"records"`
}

// extract implements step 4: Extract.
func (e *Engine) extract(ctx context.Context, wf *Workflow) (any, error) {
	a, ok := e.adapters.Get(wf.Input.SourceSystem)
	if !ok {
		return nil, fmt.Errorf("no adapter registered for source system %q", wf.Input.SourceSystem)
	}
	session := e.sessionsFor(wf.ID)
	if session == nil || session.source == nil {
		return nil, fmt.Errorf("extract: no open source session for workflow %s", wf.ID)
	}

	filters := adapter.Filters(wf.Input.Filters)
	var out []extractedRecord

	for _, et := range wf.Input.EntityTypes {
		entityType := mapper.EntityType(et)
		cursor := ""
		for {
			page, err := e.listByEntityType(ctx, a, session.source, entityType, wf.Input.ProjectKey, cursor, filters)
			if err != nil {
				return nil, fmt.Errorf("extract %s: %w", entityType, err)
			}
			for _, r := range page.Records {
				out = append(out, extractedRecord{EntityType: entityType, Record: r})
			}
			if !page.HasMore {
				break
			}
			cursor = page.NextCursor
		}
	}

	return ExtractResult{Count: len(out), Records: out}, nil
}

func (e *Engine) listByEntityType(ctx context.Context, a adapter.Adapter, session adapter.Session, entityType mapper.EntityType, projectKey, cursor string, filters adapter.Filters) (adapter.Page, error) {
	switch entityType {
	case mapper.EntityTestCase:
		return a.ListTestCases(ctx, session, projectKey, cursor, filters)
	case mapper.EntityTestExecution:
		return a.ListTestExecutions(ctx, session, projectKey, cursor, filters)
	case mapper.EntityTestSuite:
		return a.ListTestSuites(ctx, session, projectKey, cursor, filters)
	case mapper.EntityTestCycle:
		return a.ListTestCycles(ctx, session, projectKey, cursor, filters)
	default:
		return adapter.Page{}, fmt.Errorf("unsupported entity type %q", entityType)
	}
}
