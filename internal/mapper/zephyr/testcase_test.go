package zephyr_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cedricziel/migrated/internal/canonical"
	"github.com/cedricziel/migrated/internal/mapper"
	"github.com/cedricziel/migrated/internal/mapper/zephyr"
)

func TestTestCaseMapperToCanonicalStepOrdering(t *testing.T) {
	m := zephyr.TestCaseMapper{}
	source := mapper.SourceRecord{
		"id":   "Z-1",
		"key":  "DEMO-T1",
		"name": "Verify login",
		"steps": []any{
			map[string]any{"description": "open page", "expectedResult": "page loads"},
			map[string]any{"description": "enter creds", "expectedResult": "logged in"},
		},
	}

	tc, err := m.ToCanonical(source, nil)
	require.NoError(t, err)

	require.Len(t, tc.TestSteps, 2)
	assert.Equal(t, 1, tc.TestSteps[0].Order)
	assert.Equal(t, 2, tc.TestSteps[1].Order)
}

func TestTestCaseMapperEmptyStepsRoundTrip(t *testing.T) {
	m := zephyr.TestCaseMapper{}
	source := mapper.SourceRecord{"id": "Z-2", "name": "No steps", "steps": []any{}}

	tc, err := m.ToCanonical(source, nil)
	require.NoError(t, err)
	assert.Empty(t, tc.TestSteps)

	back, err := m.FromCanonical(tc, nil)
	require.NoError(t, err)
	steps, ok := back["steps"].([]any)
	require.True(t, ok)
	assert.Empty(t, steps)
}

func TestTestCaseMapperUnknownStatusFallsBackToDraft(t *testing.T) {
	m := zephyr.TestCaseMapper{}
	source := mapper.SourceRecord{"id": "Z-3", "name": "Weird status", "status": "NOT_A_REAL_STATUS"}

	tc, err := m.ToCanonical(source, nil)
	require.NoError(t, err)
	assert.Equal(t, canonical.StatusDraft, tc.Status)
}

func TestTestCaseMapperUnicodeSurvives(t *testing.T) {
	m := zephyr.TestCaseMapper{}
	source := mapper.SourceRecord{
		"id":          "Z-4",
		"name":        "áéíóú !@#$%^",
		"description": "special chars áéíóú",
	}

	tc, err := m.ToCanonical(source, nil)
	require.NoError(t, err)
	assert.Equal(t, "áéíóú !@#$%^", tc.Name)

	back, err := m.FromCanonical(tc, nil)
	require.NoError(t, err)
	assert.Equal(t, "áéíóú !@#$%^", back["name"])
	assert.Equal(t, "special chars áéíóú", back["description"])
}

func TestTestCaseMapperValidateMappingFlagsUnknownStatusAndPriority(t *testing.T) {
	m := zephyr.TestCaseMapper{}
	source := mapper.SourceRecord{"id": "Z-6", "name": "Weird status", "status": "NOT_A_REAL_STATUS", "priority": "SUPER_URGENT"}

	tc, err := m.ToCanonical(source, nil)
	require.NoError(t, err)

	messages := m.ValidateMapping(source, tc)
	assert.Contains(t, messages, `unrecognized status "NOT_A_REAL_STATUS", defaulted to DRAFT`)
	assert.Contains(t, messages, `unrecognized priority "SUPER_URGENT", defaulted to MEDIUM`)
}

func TestTestCaseMapperFromCanonicalAppliesValueMapping(t *testing.T) {
	m := zephyr.TestCaseMapper{}
	tc := &canonical.TestCase{
		ID:   "Z-7",
		Name: "Custom field value override",
		CustomFields: []canonical.CustomField{
			{Name: "Risk", Value: "high", IsCustom: true},
		},
	}
	ctx := canonical.NewTransformationContext("zephyr", "qtest")
	ctx.ValueMappings = canonical.ValueMappings{
		"Risk": {"high": "Critical Risk"},
	}

	out, err := m.FromCanonical(tc, ctx)
	require.NoError(t, err)

	fields, ok := out["customFields"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Critical Risk", fields["Risk"])
}

func TestTestCaseMapperValidateMappingFlagsStepCountMismatch(t *testing.T) {
	m := zephyr.TestCaseMapper{}
	source := mapper.SourceRecord{
		"id":   "Z-5",
		"name": "Step mismatch",
		"steps": []any{
			map[string]any{"description": "a"},
		},
	}
	target := &canonical.TestCase{ID: "Z-5", Name: "Step mismatch"}

	messages := m.ValidateMapping(source, target)
	require.NotEmpty(t, messages)
}
