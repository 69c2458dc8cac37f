package translate_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cedricziel/migrated/internal/canonical"
	"github.com/cedricziel/migrated/internal/mapper"
	"github.com/cedricziel/migrated/internal/translate"
)

func TestCreateMigrationJobAssignsIDAndCreatedStatus(t *testing.T) {
	svc := translate.NewService(translate.NewTransformer(newRegistry(), nil))

	job := svc.CreateMigrationJob("zephyr", "qtest", []string{"test-case"})
	require.NotEmpty(t, job.ID)
	assert.Equal(t, canonical.JobCreated, job.Status)

	got, ok := svc.GetMigrationJob(job.ID)
	require.True(t, ok)
	assert.Same(t, job, got)
}

func TestGetMigrationJobUnknownIDReturnsFalse(t *testing.T) {
	svc := translate.NewService(translate.NewTransformer(newRegistry(), nil))
	_, ok := svc.GetMigrationJob("does-not-exist")
	assert.False(t, ok)
}

func TestServiceTransformAdvancesJobProgressCounters(t *testing.T) {
	svc := translate.NewService(translate.NewTransformer(newRegistry(), nil))
	job := svc.CreateMigrationJob("zephyr", "qtest", []string{"test-case"})

	source := mapper.SourceRecord{"id": "TC-1", "name": "valid case", "status": "READY"}
	_, err := svc.Transform(job, mapper.EntityTestCase, source)
	require.NoError(t, err)

	assert.Equal(t, 1, job.ProcessedItems)
	assert.Equal(t, 1, job.SuccessCount)
	assert.Equal(t, 0, job.ErrorCount)
}

func TestServiceTransformRecordsErrorOnUnknownSystem(t *testing.T) {
	svc := translate.NewService(translate.NewTransformer(newRegistry(), nil))
	job := svc.CreateMigrationJob("unknown", "qtest", []string{"test-case"})

	_, err := svc.Transform(job, mapper.EntityTestCase, mapper.SourceRecord{"id": "TC-1"})
	require.Error(t, err)
	assert.Equal(t, 1, job.ProcessedItems)
	assert.Equal(t, 1, job.ErrorCount)
}

func TestServiceTransformWithJobFieldMappingOverrideSucceeds(t *testing.T) {
	svc := translate.NewService(translate.NewTransformer(newRegistry(), nil))
	job := svc.CreateMigrationJob("zephyr", "zephyr", []string{"test-case"})
	job.FieldMappings = map[string]canonical.FieldMappings{
		"test-case": {"priority": "severity"},
	}

	source := mapper.SourceRecord{"id": "TC-5", "name": "renamed field case"}
	out, err := svc.Transform(job, mapper.EntityTestCase, source)
	require.NoError(t, err)
	require.NotNil(t, out)
}
