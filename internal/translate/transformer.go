// Package translate implements the Transformer and TransformationService:
// the orchestration layer that drives a single entity through
// source-mapper -> canonical -> target-mapper and records a Translation
// audit entry per call, grounded on transformer.py's Transformer and
// TransformationService classes.
package translate

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/cedricziel/migrated/internal/canonical"
	"github.com/cedricziel/migrated/internal/mapper"
)

// Transformer orchestrates source -> canonical -> target conversions using a
// Mapper Registry, validates both legs, and records a Translation audit
// entry per call. Per the Mapper contract, mapper operations are pure,
// so nothing in the Transformer itself blocks on I/O.
type Transformer struct {
	registry *mapper.Registry
	logger   *log.Logger

	mu           sync.Mutex
	translations map[string]canonical.Translation
	order        []string
}

// NewTransformer returns a Transformer backed by reg. A nil logger falls
// back to log.Default(), matching the teacher's convention of constructing a
// *log.Logger per subsystem rather than adopting a structured-logging
// library the teacher itself never imports.
func NewTransformer(reg *mapper.Registry, logger *log.Logger) *Transformer {
	if logger == nil {
		logger = log.Default()
	}
	return &Transformer{
		registry:     reg,
		logger:       logger,
		translations: make(map[string]canonical.Translation),
	}
}

// Transform converts sourceData for entityType from sourceSystem's dialect
// into targetSystem's dialect, recording a Translation audit entry keyed by
// "{sourceSystem}:{targetSystem}:{entityType}:{sourceId}" exactly once per
// call (overwriting any prior entry for the same tuple).
//
// ctx may be nil, in which case an empty-override context is built for the
// call. Any error — missing mapper, or a mapper-internal failure — is
// recorded as an error-status Translation and returned wrapped in a
// *TransformationError; it is the caller's (i.e. the workflow Transform
// step's) responsibility to decide whether one record's failure fails the
// whole step.
func (t *Transformer) Transform(sourceSystem, targetSystem string, entityType mapper.EntityType, sourceData mapper.SourceRecord, ctx *canonical.TransformationContext) (mapper.SourceRecord, error) {
	if ctx == nil {
		ctx = canonical.NewTransformationContext(sourceSystem, targetSystem)
	}

	sourceMapper, err := t.resolve(sourceSystem, entityType)
	if err != nil {
		return nil, t.recordFailure(sourceSystem, targetSystem, entityType, rawSourceID(sourceData), ctx.MigrationID, sourceData, err)
	}
	targetMapper, err := t.resolve(targetSystem, entityType)
	if err != nil {
		return nil, t.recordFailure(sourceSystem, targetSystem, entityType, rawSourceID(sourceData), ctx.MigrationID, sourceData, err)
	}

	canonicalValue, err := toCanonical(sourceMapper, entityType, sourceData, ctx)
	if err != nil {
		return nil, t.recordFailure(sourceSystem, targetSystem, entityType, rawSourceID(sourceData), ctx.MigrationID, sourceData, err)
	}

	sourceID := canonicalID(entityType, canonicalValue)

	targetData, err := fromCanonical(targetMapper, entityType, canonicalValue, ctx)
	if err != nil {
		return nil, t.recordFailure(sourceSystem, targetSystem, entityType, sourceID, ctx.MigrationID, sourceData, err)
	}

	messages := t.validate(sourceMapper, targetMapper, entityType, sourceData, targetData, canonicalValue)

	status := canonical.TranslationSuccess
	if len(messages) > 0 {
		status = canonical.TranslationPartial
	}

	t.record(canonical.Translation{
		SourceSystem: sourceSystem,
		TargetSystem: targetSystem,
		EntityType:   string(entityType),
		SourceID:     sourceID,
		TargetID:     sourceID,
		Status:       status,
		Timestamp:    time.Now().UTC(),
		SourceData:   sourceData,
		TargetData:   targetData,
		Messages:     messages,
		MigrationID:  ctx.MigrationID,
	})

	return targetData, nil
}

func (t *Transformer) resolve(systemName string, entityType mapper.EntityType) (mapper.Mapper, error) {
	m, ok := t.registry.Get(systemName, entityType)
	if !ok {
		return nil, fmt.Errorf("%w: system %q, entity %q", ErrMapperNotFound, systemName, entityType)
	}
	return m, nil
}

func (t *Transformer) validate(sourceMapper, targetMapper mapper.Mapper, entityType mapper.EntityType, sourceData, targetData mapper.SourceRecord, canonicalValue any) []string {
	var messages []string
	messages = append(messages, validateMapping(sourceMapper, entityType, sourceData, canonicalValue)...)
	messages = append(messages, validateMapping(targetMapper, entityType, targetData, canonicalValue)...)
	return messages
}

func (t *Transformer) recordFailure(sourceSystem, targetSystem string, entityType mapper.EntityType, sourceID, migrationID string, sourceData mapper.SourceRecord, cause error) error {
	t.logger.Printf("transform failed: %s -> %s entity=%s source=%s: %v", sourceSystem, targetSystem, entityType, sourceID, cause)
	t.record(canonical.Translation{
		SourceSystem: sourceSystem,
		TargetSystem: targetSystem,
		EntityType:   string(entityType),
		SourceID:     sourceID,
		TargetID:     "failed",
		Status:       canonical.TranslationError,
		Timestamp:    time.Now().UTC(),
		SourceData:   sourceData,
		Messages:     []string{cause.Error()},
		MigrationID:  migrationID,
	})
	return &TransformationError{SourceID: sourceID, Cause: cause}
}

// record stores tr, preserving the order entries were first seen so the
// Translation log can be replayed in the same order entities were processed
// even though a later call for the same tuple overwrites the entry in place.
func (t *Transformer) record(tr canonical.Translation) {
	t.mu.Lock()
	defer t.mu.Unlock()
	key := tr.Key()
	if _, exists := t.translations[key]; !exists {
		t.order = append(t.order, key)
	}
	t.translations[key] = tr
}

// GetCanonicalForm exposes the source -> canonical half of the pipeline for
// callers that need the intermediate form.
func (t *Transformer) GetCanonicalForm(systemName string, entityType mapper.EntityType, sourceData mapper.SourceRecord, ctx *canonical.TransformationContext) (any, error) {
	m, err := t.resolve(systemName, entityType)
	if err != nil {
		return nil, err
	}
	if ctx == nil {
		ctx = canonical.NewTransformationContext(systemName, "")
	}
	return toCanonical(m, entityType, sourceData, ctx)
}

// FromCanonicalForm exposes the canonical -> target half of the pipeline for
// callers that need to emit without a paired source conversion.
func (t *Transformer) FromCanonicalForm(systemName string, entityType mapper.EntityType, canonicalValue any, ctx *canonical.TransformationContext) (mapper.SourceRecord, error) {
	m, err := t.resolve(systemName, entityType)
	if err != nil {
		return nil, err
	}
	if ctx == nil {
		ctx = canonical.NewTransformationContext("", systemName)
	}
	return fromCanonical(m, entityType, canonicalValue, ctx)
}

// GetTranslations returns a snapshot of every recorded Translation entry, in
// the order each (sourceSystem, targetSystem, entityType, sourceId) tuple was
// first recorded for this Transformer.
func (t *Transformer) GetTranslations() []canonical.Translation {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]canonical.Translation, 0, len(t.order))
	for _, key := range t.order {
		out = append(out, t.translations[key])
	}
	return out
}

// ClearTranslations discards the audit log.
func (t *Transformer) ClearTranslations() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.translations = make(map[string]canonical.Translation)
	t.order = nil
}
