package translate

import (
	"fmt"

	"github.com/cedricziel/migrated/internal/canonical"
	"github.com/cedricziel/migrated/internal/mapper"
)

// toCanonical dispatches to the entity-kind-specific ToCanonical method on m,
// recovering the concrete mapper interface by type-asserting on entityType —
// the same type-switch-over-marker-interface idiom the teacher uses to
// recover a node's concrete kind (ActionNode, TriggerNode, ...) from its
// common NodeDefinition marker.
func toCanonical(m mapper.Mapper, entityType mapper.EntityType, source mapper.SourceRecord, ctx *canonical.TransformationContext) (any, error) {
	switch entityType {
	case mapper.EntityTestCase:
		tcm, ok := m.(mapper.TestCaseMapper)
		if !ok {
			return nil, fmt.Errorf("mapper for system %q does not implement TestCaseMapper", m.SystemName())
		}
		return tcm.ToCanonical(source, ctx)
	case mapper.EntityTestExecution:
		tem, ok := m.(mapper.TestExecutionMapper)
		if !ok {
			return nil, fmt.Errorf("mapper for system %q does not implement TestExecutionMapper", m.SystemName())
		}
		return tem.ToCanonical(source, ctx)
	case mapper.EntityTestSuite:
		tsm, ok := m.(mapper.TestSuiteMapper)
		if !ok {
			return nil, fmt.Errorf("mapper for system %q does not implement TestSuiteMapper", m.SystemName())
		}
		return tsm.ToCanonical(source, ctx)
	case mapper.EntityTestCycle:
		tcym, ok := m.(mapper.TestCycleMapper)
		if !ok {
			return nil, fmt.Errorf("mapper for system %q does not implement TestCycleMapper", m.SystemName())
		}
		return tcym.ToCanonical(source, ctx)
	default:
		return nil, fmt.Errorf("unsupported entity type %q", entityType)
	}
}

func fromCanonical(m mapper.Mapper, entityType mapper.EntityType, canonicalValue any, ctx *canonical.TransformationContext) (mapper.SourceRecord, error) {
	switch entityType {
	case mapper.EntityTestCase:
		tcm, ok := m.(mapper.TestCaseMapper)
		if !ok {
			return nil, fmt.Errorf("mapper for system %q does not implement TestCaseMapper", m.SystemName())
		}
		return tcm.FromCanonical(canonicalValue.(*canonical.TestCase), ctx)
	case mapper.EntityTestExecution:
		tem, ok := m.(mapper.TestExecutionMapper)
		if !ok {
			return nil, fmt.Errorf("mapper for system %q does not implement TestExecutionMapper", m.SystemName())
		}
		return tem.FromCanonical(canonicalValue.(*canonical.TestExecution), ctx)
	case mapper.EntityTestSuite:
		tsm, ok := m.(mapper.TestSuiteMapper)
		if !ok {
			return nil, fmt.Errorf("mapper for system %q does not implement TestSuiteMapper", m.SystemName())
		}
		return tsm.FromCanonical(canonicalValue.(*canonical.TestSuite), ctx)
	case mapper.EntityTestCycle:
		tcym, ok := m.(mapper.TestCycleMapper)
		if !ok {
			return nil, fmt.Errorf("mapper for system %q does not implement TestCycleMapper", m.SystemName())
		}
		return tcym.FromCanonical(canonicalValue.(*canonical.TestCycle), ctx)
	default:
		return nil, fmt.Errorf("unsupported entity type %q", entityType)
	}
}

func validateMapping(m mapper.Mapper, entityType mapper.EntityType, source mapper.SourceRecord, canonicalValue any) []string {
	switch entityType {
	case mapper.EntityTestCase:
		tcm, ok := m.(mapper.TestCaseMapper)
		if !ok {
			return nil
		}
		return tcm.ValidateMapping(source, canonicalValue.(*canonical.TestCase))
	case mapper.EntityTestExecution:
		tem, ok := m.(mapper.TestExecutionMapper)
		if !ok {
			return nil
		}
		return tem.ValidateMapping(source, canonicalValue.(*canonical.TestExecution))
	case mapper.EntityTestSuite:
		tsm, ok := m.(mapper.TestSuiteMapper)
		if !ok {
			return nil
		}
		return tsm.ValidateMapping(source, canonicalValue.(*canonical.TestSuite))
	case mapper.EntityTestCycle:
		tcym, ok := m.(mapper.TestCycleMapper)
		if !ok {
			return nil
		}
		return tcym.ValidateMapping(source, canonicalValue.(*canonical.TestCycle))
	default:
		return nil
	}
}

// canonicalID extracts the id field used as the Translation key's sourceId
// component from a converted canonical value.
func canonicalID(entityType mapper.EntityType, canonicalValue any) string {
	switch entityType {
	case mapper.EntityTestCase:
		return canonicalValue.(*canonical.TestCase).ID
	case mapper.EntityTestExecution:
		return canonicalValue.(*canonical.TestExecution).ID
	case mapper.EntityTestSuite:
		return canonicalValue.(*canonical.TestSuite).ID
	case mapper.EntityTestCycle:
		return canonicalValue.(*canonical.TestCycle).ID
	default:
		return ""
	}
}

// rawSourceID best-effort extracts an id from an untyped source record, used
// when conversion fails before a canonical id is ever produced.
func rawSourceID(source mapper.SourceRecord) string {
	if source == nil {
		return ""
	}
	if v, ok := source["id"]; ok {
		return fmt.Sprintf("%v", v)
	}
	return ""
}
