package canonical

import "time"

// Translation is an audit record for a single entity conversion, written
// exactly once per (SourceSystem, TargetSystem, EntityType, SourceID) tuple
// per job; re-runs overwrite the existing entry.
type Translation struct {
	SourceSystem string            `json:"sourceSystem"`
	TargetSystem string            `json:"targetSystem"`
	EntityType   string            `json:"entityType"`
	SourceID     string            `json:"sourceId"`
	TargetID     string            `json:"targetId"`
	Status       TranslationStatus `json:"status"`
	Timestamp    time.Time         `json:"timestamp"`
	SourceData   any               `json:"sourceData,omitempty"`
	TargetData   any               `json:"targetData,omitempty"`
	Messages     []string          `json:"messages,omitempty"`
	MigrationID  string            `json:"migrationId,omitempty"`
}

// Key returns the tuple this Translation is uniquely addressed by.
func (t Translation) Key() string {
	return t.SourceSystem + ":" + t.TargetSystem + ":" + t.EntityType + ":" + t.SourceID
}

// FieldMappings renames canonical field names before emission to the target
// system, keyed by the canonical field name. A MigrationJob holds one table
// per entity type.
type FieldMappings map[string]string

// ValueMappings substitutes values per field, keyed by the canonical field
// name (the name before any FieldMappings rename is applied).
type ValueMappings map[string]map[string]string

// TransformationContext carries the overrides and bookkeeping a Transformer
// invocation needs beyond the raw source record.
type TransformationContext struct {
	SourceSystem  string
	TargetSystem  string
	MigrationID   string
	FieldMappings FieldMappings
	ValueMappings ValueMappings
}

// NewTransformationContext builds a context with empty override maps, the
// default a Transformer falls back to when the caller supplies none.
func NewTransformationContext(sourceSystem, targetSystem string) *TransformationContext {
	return &TransformationContext{
		SourceSystem:  sourceSystem,
		TargetSystem:  targetSystem,
		FieldMappings: FieldMappings{},
		ValueMappings: ValueMappings{},
	}
}

// RenameField applies a field-mapping override, if any is registered for
// name; otherwise it returns name unchanged.
func (c *TransformationContext) RenameField(name string) string {
	if c == nil || c.FieldMappings == nil {
		return name
	}
	if renamed, ok := c.FieldMappings[name]; ok {
		return renamed
	}
	return name
}

// MapValue applies a value-mapping override registered for fieldName/value,
// if any; otherwise it returns value unchanged.
func (c *TransformationContext) MapValue(fieldName, value string) string {
	if c == nil || c.ValueMappings == nil {
		return value
	}
	if table, ok := c.ValueMappings[fieldName]; ok {
		if mapped, ok := table[value]; ok {
			return mapped
		}
	}
	return value
}

// MigrationJob is a configured request to move a set of entity types from one
// source system to one target system.
type MigrationJob struct {
	ID             string                   `json:"id"`
	Name           string                   `json:"name,omitempty"`
	SourceSystem   string                   `json:"sourceSystem"`
	SourceConfig   map[string]any           `json:"sourceConfig,omitempty"`
	TargetSystem   string                   `json:"targetSystem"`
	TargetConfig   map[string]any           `json:"targetConfig,omitempty"`
	EntityTypes    []string                 `json:"entityTypes"`
	Filters        map[string]any           `json:"filters,omitempty"`
	FieldMappings  map[string]FieldMappings `json:"fieldMappings,omitempty"`
	ValueMappings  map[string]ValueMappings `json:"valueMappings,omitempty"`
	Status         JobStatus                `json:"status"`
	TotalItems     int                      `json:"totalItems"`
	ProcessedItems int                      `json:"processedItems"`
	SuccessCount   int                      `json:"successCount"`
	ErrorCount     int                      `json:"errorCount"`
	WarningCount   int                      `json:"warningCount"`
	CreatedAt      time.Time                `json:"createdAt"`
	StartedAt      *time.Time               `json:"startedAt,omitempty"`
	CompletedAt    *time.Time               `json:"completedAt,omitempty"`
}

// ContextFor assembles a TransformationContext for entityType from this job's
// field/value override tables, falling back to empty maps when the job
// declares none for that entity type.
func (j *MigrationJob) ContextFor(entityType string) *TransformationContext {
	ctx := NewTransformationContext(j.SourceSystem, j.TargetSystem)
	ctx.MigrationID = j.ID
	if fm, ok := j.FieldMappings[entityType]; ok {
		ctx.FieldMappings = fm
	}
	if vm, ok := j.ValueMappings[entityType]; ok {
		ctx.ValueMappings = vm
	}
	return ctx
}

// RecordSuccess advances the job's progress counters for one processed
// record, classifying it by the Translation status recorded for it: success
// and partial count as successes (partial also as a warning), error counts
// as an error.
func (j *MigrationJob) RecordSuccess(status TranslationStatus) {
	j.ProcessedItems++
	switch status {
	case TranslationSuccess:
		j.SuccessCount++
	case TranslationPartial:
		j.SuccessCount++
		j.WarningCount++
	case TranslationError:
		j.ErrorCount++
	}
}
