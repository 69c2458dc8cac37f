package mapper_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cedricziel/migrated/internal/canonical"
	"github.com/cedricziel/migrated/internal/mapper"
)

type stubTestCaseMapper struct{ system string }

func (s stubTestCaseMapper) SystemName() string            { return s.system }
func (s stubTestCaseMapper) EntityType() mapper.EntityType { return mapper.EntityTestCase }
func (s stubTestCaseMapper) ToCanonical(mapper.SourceRecord, *canonical.TransformationContext) (*canonical.TestCase, error) {
	return &canonical.TestCase{SourceSystem: s.system}, nil
}
func (s stubTestCaseMapper) FromCanonical(*canonical.TestCase, *canonical.TransformationContext) (mapper.SourceRecord, error) {
	return mapper.SourceRecord{}, nil
}
func (s stubTestCaseMapper) ValidateMapping(mapper.SourceRecord, *canonical.TestCase) []string {
	return nil
}

func TestRegistryGetUnknownReturnsNotFound(t *testing.T) {
	reg := mapper.NewRegistry()
	_, err := reg.GetTestCaseMapper("unknown-system")
	require.Error(t, err)
	assert.ErrorIs(t, err, mapper.ErrMapperNotFound)
}

func TestRegistryRegisterAndGet(t *testing.T) {
	reg := mapper.NewRegistry()
	reg.Register("acme", mapper.EntityTestCase, stubTestCaseMapper{system: "acme"})

	m, err := reg.GetTestCaseMapper("acme")
	require.NoError(t, err)
	assert.Equal(t, "acme", m.SystemName())
}

func TestRegistryAllSystemsSorted(t *testing.T) {
	reg := mapper.NewRegistry()
	reg.Register("zephyr", mapper.EntityTestCase, stubTestCaseMapper{system: "zephyr"})
	reg.Register("qtest", mapper.EntityTestCase, stubTestCaseMapper{system: "qtest"})

	assert.Equal(t, []string{"qtest", "zephyr"}, reg.AllSystems())
}
