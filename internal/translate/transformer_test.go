package translate_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cedricziel/migrated/internal/mapper"
	"github.com/cedricziel/migrated/internal/mapper/qtest"
	"github.com/cedricziel/migrated/internal/mapper/zephyr"
	"github.com/cedricziel/migrated/internal/translate"
)

func newRegistry() *mapper.Registry {
	reg := mapper.NewRegistry()
	zephyr.Register(reg)
	qtest.Register(reg)
	return reg
}

func TestTransformZephyrToQTestRecordsOneTranslation(t *testing.T) {
	tr := translate.NewTransformer(newRegistry(), nil)

	source := mapper.SourceRecord{
		"id":     "TC-1",
		"key":    "PROJ-T1",
		"name":   "Login succeeds with valid credentials",
		"status": "READY",
		"steps": []any{
			map[string]any{"index": 1, "description": "enter credentials", "expectedResult": "fields accept input"},
			map[string]any{"index": 2, "description": "submit", "expectedResult": "user lands on dashboard"},
		},
	}

	out, err := tr.Transform("zephyr", "qtest", mapper.EntityTestCase, source, nil)
	require.NoError(t, err)
	require.NotNil(t, out)

	translations := tr.GetTranslations()
	require.Len(t, translations, 1)
	assert.Equal(t, "zephyr:qtest:test-case:TC-1", translations[0].Key())
	assert.Equal(t, "TC-1", translations[0].SourceID)

	// Re-running the same tuple overwrites rather than appends.
	_, err = tr.Transform("zephyr", "qtest", mapper.EntityTestCase, source, nil)
	require.NoError(t, err)
	assert.Len(t, tr.GetTranslations(), 1)
}

func TestTransformUnknownSourceSystemIsMapperNotFound(t *testing.T) {
	tr := translate.NewTransformer(newRegistry(), nil)

	_, err := tr.Transform("unknown-system", "qtest", mapper.EntityTestCase, mapper.SourceRecord{"id": "1"}, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, translate.ErrMapperNotFound)

	translations := tr.GetTranslations()
	require.Len(t, translations, 1)
	assert.Equal(t, "error", string(translations[0].Status))
}

func TestTransformStepWithoutExpectedResultIsSuccess(t *testing.T) {
	tr := translate.NewTransformer(newRegistry(), nil)

	source := mapper.SourceRecord{
		"id":   "TC-2",
		"name": "case with malformed step",
		"steps": []any{
			map[string]any{"index": 1, "description": "only step"},
		},
	}

	_, err := tr.Transform("zephyr", "zephyr", mapper.EntityTestCase, source, nil)
	require.NoError(t, err)

	translations := tr.GetTranslations()
	require.Len(t, translations, 1)
	assert.Equal(t, "success", string(translations[0].Status))
}

func TestGetTranslationsPreservesInsertionOrder(t *testing.T) {
	tr := translate.NewTransformer(newRegistry(), nil)

	ids := []string{"TC-10", "TC-11", "TC-12", "TC-13"}
	for _, id := range ids {
		_, err := tr.Transform("zephyr", "qtest", mapper.EntityTestCase, mapper.SourceRecord{"id": id, "name": id}, nil)
		require.NoError(t, err)
	}

	// Re-run an earlier tuple; it must overwrite in place, not move to the end.
	_, err := tr.Transform("zephyr", "qtest", mapper.EntityTestCase, mapper.SourceRecord{"id": "TC-11", "name": "TC-11 (again)"}, nil)
	require.NoError(t, err)

	translations := tr.GetTranslations()
	require.Len(t, translations, len(ids))
	for i, id := range ids {
		assert.Equal(t, id, translations[i].SourceID, "position %d", i)
	}
}

func TestClearTranslationsEmptiesTheLog(t *testing.T) {
	tr := translate.NewTransformer(newRegistry(), nil)
	_, err := tr.Transform("zephyr", "qtest", mapper.EntityTestCase, mapper.SourceRecord{"id": "TC-3", "name": "x"}, nil)
	require.NoError(t, err)
	require.Len(t, tr.GetTranslations(), 1)

	tr.ClearTranslations()
	assert.Empty(t, tr.GetTranslations())
}

func TestGetCanonicalFormExposesIntermediateShape(t *testing.T) {
	tr := translate.NewTransformer(newRegistry(), nil)

	canonicalValue, err := tr.GetCanonicalForm("zephyr", mapper.EntityTestCase, mapper.SourceRecord{
		"id":   "TC-4",
		"name": "direct canonical read",
	}, nil)
	require.NoError(t, err)
	require.NotNil(t, canonicalValue)
}
