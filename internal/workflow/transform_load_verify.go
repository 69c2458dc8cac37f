package workflow

import (
	"context"
	"fmt"

	"github.com/cedricziel/migrated/internal/adapter"
	"github.com/cedricziel/migrated/internal/canonical"
	"github.com/cedricziel/migrated/internal/mapper"
)

// TransformedRecord carries one record through to the Load step, tagged
// with the outcome of its Transformation Service call.
type TransformedRecord struct {
	EntityType mapper.EntityType           `json:"entityType"`
	SourceID   string                      `json:"sourceId"`
	Record     mapper.SourceRecord         `json:"record,omitempty"`
	Status     canonical.TranslationStatus `json:"status"`
	Error      string                      `json:"error,omitempty"`
}

// TransformResult is step 5's result shape.
type TransformResult struct {
	Records []TransformedRecord `json:"records"`
}

// transform implements step 5: Transform. Per-record failures do not fail
// the step; the step fails only if zero records succeed while at least one
// was attempted.
func (e *Engine) transform(wf *Workflow, input any) (any, error) {
	extracted, ok := input.(ExtractResult)
	if !ok {
		return nil, fmt.Errorf("transform: unexpected input type %T", input)
	}

	job := &canonical.MigrationJob{
		ID:            wf.ID,
		SourceSystem:  wf.Input.SourceSystem,
		TargetSystem:  wf.Input.TargetSystem,
		FieldMappings: wf.Input.FieldMappings,
		ValueMappings: wf.Input.ValueMappings,
	}

	records := make([]TransformedRecord, 0, len(extracted.Records))
	succeeded := 0

	for _, rec := range extracted.Records {
		sourceID := rawID(rec.Record)
		warningsBefore := job.WarningCount
		targetData, err := e.transform0(job, rec.EntityType, rec.Record)
		if err != nil {
			records = append(records, TransformedRecord{
				EntityType: rec.EntityType,
				SourceID:   sourceID,
				Status:     canonical.TranslationError,
				Error:      err.Error(),
			})
			continue
		}
		succeeded++
		status := canonical.TranslationSuccess
		if job.WarningCount > warningsBefore {
			status = canonical.TranslationPartial
		}
		records = append(records, TransformedRecord{
			EntityType: rec.EntityType,
			SourceID:   sourceID,
			Record:     targetData,
			Status:     status,
		})
	}

	if len(extracted.Records) > 0 && succeeded == 0 {
		return nil, fmt.Errorf("transform: all %d records failed", len(extracted.Records))
	}

	return TransformResult{Records: records}, nil
}

func (e *Engine) transform0(job *canonical.MigrationJob, entityType mapper.EntityType, record mapper.SourceRecord) (mapper.SourceRecord, error) {
	return e.transformSvc.Transform(job, entityType, record)
}

func rawID(record mapper.SourceRecord) string {
	if record == nil {
		return ""
	}
	if v, ok := record["id"]; ok {
		return fmt.Sprintf("%v", v)
	}
	return ""
}

// LoadedRecord reports the outcome of pushing one transformed record into
// the target system.
type LoadedRecord struct {
	SourceID string `json:"sourceId"`
	TargetID string `json:"targetId,omitempty"`
	Status   string `json:"status"`
	Error    string `json:"error,omitempty"`
}

// LoadResult is step 6's result shape.
type LoadResult struct {
	Results []LoadedRecord `json:"results"`
}

// load implements step 6: Load.
func (e *Engine) load(ctx context.Context, wf *Workflow, input any) (any, error) {
	transformed, ok := input.(TransformResult)
	if !ok {
		return nil, fmt.Errorf("load: unexpected input type %T", input)
	}

	a, ok := e.adapters.Get(wf.Input.TargetSystem)
	if !ok {
		return nil, fmt.Errorf("no adapter registered for target system %q", wf.Input.TargetSystem)
	}
	session := e.sessionsFor(wf.ID)
	if session == nil || session.target == nil {
		return nil, fmt.Errorf("load: no open target session for workflow %s", wf.ID)
	}

	var results []LoadedRecord
	for _, tr := range transformed.Records {
		if tr.Status == canonical.TranslationError {
			results = append(results, LoadedRecord{SourceID: tr.SourceID, Status: "skipped", Error: tr.Error})
			continue
		}

		targetID, err := e.createByEntityType(ctx, a, session.target, tr.EntityType, tr.Record)
		if err != nil {
			results = append(results, LoadedRecord{SourceID: tr.SourceID, Status: "failed", Error: err.Error()})
			continue
		}
		results = append(results, LoadedRecord{SourceID: tr.SourceID, TargetID: targetID, Status: "loaded"})
	}

	return LoadResult{Results: results}, nil
}

func (e *Engine) createByEntityType(ctx context.Context, a adapter.Adapter, session adapter.Session, entityType mapper.EntityType, record mapper.SourceRecord) (string, error) {
	switch entityType {
	case mapper.EntityTestCase:
		return a.CreateTestCase(ctx, session, record)
	case mapper.EntityTestExecution:
		return a.CreateTestExecution(ctx, session, record)
	case mapper.EntityTestSuite:
		return a.CreateTestSuite(ctx, session, record)
	case mapper.EntityTestCycle:
		return a.CreateTestCycle(ctx, session, record)
	default:
		return "", fmt.Errorf("unsupported entity type %q", entityType)
	}
}

// VerifyResult is step 7's result shape, and is what Workflow.Result is
// assembled from on success.
type VerifyResult struct {
	Migrated int      `json:"migrated"`
	Failed   int      `json:"failed"`
	Warnings int      `json:"warnings"`
	Messages []string `json:"messages,omitempty"`
}

// MigrationResult is the Workflow.Result shape for a COMPLETED migration: the
// verify step's aggregate counts projected together with the load step's
// per-record {sourceId,targetId,status} summary.
type MigrationResult struct {
	Success       bool           `json:"success"`
	MigratedCount int            `json:"migratedCount"`
	FailedCount   int            `json:"failedCount"`
	WarningCount  int            `json:"warningCount"`
	Messages      []string       `json:"messages,omitempty"`
	Records       []LoadedRecord `json:"records,omitempty"`
}

// verify implements step 7: Verify.
func (e *Engine) verify(wf *Workflow, input any) (any, error) {
	loaded, ok := input.(LoadResult)
	if !ok {
		return nil, fmt.Errorf("verify: unexpected input type %T", input)
	}

	var result VerifyResult
	for _, r := range loaded.Results {
		switch r.Status {
		case "loaded":
			result.Migrated++
		case "failed":
			result.Failed++
			result.Messages = append(result.Messages, fmt.Sprintf("%s: %s", r.SourceID, r.Error))
		case "skipped":
			result.Warnings++
			result.Messages = append(result.Messages, fmt.Sprintf("%s: skipped, %s", r.SourceID, r.Error))
		}
	}

	if len(loaded.Results) > 0 && result.Migrated == 0 {
		return nil, fmt.Errorf("verify: zero records migrated though %d were expected", len(loaded.Results))
	}

	return result, nil
}
