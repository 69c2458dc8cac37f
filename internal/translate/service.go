package translate

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/cedricziel/migrated/internal/canonical"
	"github.com/cedricziel/migrated/internal/mapper"
)

// Service is the thin stateful façade in front of a Transformer: it applies
// field/value-mapping overrides from a MigrationJob's configuration and owns
// the Job table, delegating the Translation audit log to its Transformer.
type Service struct {
	transformer *Transformer

	mu   sync.Mutex
	jobs map[string]*canonical.MigrationJob
}

// NewService returns a Service backed by t.
func NewService(t *Transformer) *Service {
	return &Service{transformer: t, jobs: make(map[string]*canonical.MigrationJob)}
}

// Transform assembles a TransformationContext from job's field/value
// overrides for entityType and delegates to the underlying Transformer.
func (s *Service) Transform(job *canonical.MigrationJob, entityType mapper.EntityType, sourceData mapper.SourceRecord) (mapper.SourceRecord, error) {
	ctx := job.ContextFor(string(entityType))
	result, err := s.transformer.Transform(job.SourceSystem, job.TargetSystem, entityType, sourceData, ctx)
	if err != nil {
		job.RecordSuccess(canonical.TranslationError)
		return nil, err
	}
	job.RecordSuccess(s.lastStatus(job, entityType, sourceData))
	return result, nil
}

// lastStatus looks up the Translation entry just recorded for sourceData so
// the job's progress counters reflect success vs. partial accurately.
func (s *Service) lastStatus(job *canonical.MigrationJob, entityType mapper.EntityType, sourceData mapper.SourceRecord) canonical.TranslationStatus {
	key := fmt.Sprintf("%s:%s:%s:%s", job.SourceSystem, job.TargetSystem, entityType, rawSourceID(sourceData))
	for _, tr := range s.transformer.GetTranslations() {
		if tr.Key() == key {
			return tr.Status
		}
	}
	return canonical.TranslationSuccess
}

// CreateMigrationJob registers a new job with a generated id and CREATED
// status.
func (s *Service) CreateMigrationJob(sourceSystem, targetSystem string, entityTypes []string) *canonical.MigrationJob {
	job := &canonical.MigrationJob{
		ID:           uuid.NewString(),
		SourceSystem: sourceSystem,
		TargetSystem: targetSystem,
		EntityTypes:  entityTypes,
		Status:       canonical.JobCreated,
		CreatedAt:    time.Now().UTC(),
	}

	s.mu.Lock()
	s.jobs[job.ID] = job
	s.mu.Unlock()

	return job
}

// GetMigrationJob returns the job registered under id, or (nil, false).
func (s *Service) GetMigrationJob(id string) (*canonical.MigrationJob, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[id]
	return job, ok
}

// GetTranslations exposes the Transformer's audit log for fine-grained
// per-record inspection.
func (s *Service) GetTranslations() []canonical.Translation {
	return s.transformer.GetTranslations()
}

// ClearTranslations discards the Transformer's audit log.
func (s *Service) ClearTranslations() {
	s.transformer.ClearTranslations()
}
