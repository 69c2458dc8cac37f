// Package mapper defines the bidirectional-conversion contract between a
// single external test-management system's wire dialect and the canonical
// model, plus the process-wide registry that looks mappers up by
// (systemName, entityType).
package mapper

import "github.com/cedricziel/migrated/internal/canonical"

// EntityType names one of the entity kinds a mapper can be registered for.
type EntityType string

const (
	EntityTestCase      EntityType = "test-case"
	EntityTestExecution EntityType = "test-execution"
	EntityTestSuite     EntityType = "test-suite"
	EntityTestCycle     EntityType = "test-cycle"
)

// SourceRecord is the raw, system-specific payload a mapper converts from and
// to. It is left untyped (map[string]any) because each system's wire shape is
// its own, arbitrarily nested JSON-like structure; the canonical model is
// where a stable Go type takes over.
type SourceRecord = map[string]any

// Mapper is the common marker every registered mapper satisfies; it is
// intentionally minimal so the registry can hold heterogeneous entity-kind
// mappers behind one interface type, the same way the teacher's node
// definitions share one marker interface and are recovered by type-asserting
// to the entity-specific interface the caller actually needs.
type Mapper interface {
	SystemName() string
	EntityType() EntityType
}

// TestCaseMapper converts test cases between one system's dialect and the
// canonical model.
//
// ToCanonical must be a pure function: no I/O, deterministic for identical
// inputs. FromCanonical is its symmetric inverse. ValidateMapping reports
// discrepancies between a source record and the canonical form produced from
// it (or from it back); an empty slice means the mapping was lossless.
type TestCaseMapper interface {
	Mapper
	ToCanonical(source SourceRecord, ctx *canonical.TransformationContext) (*canonical.TestCase, error)
	FromCanonical(tc *canonical.TestCase, ctx *canonical.TransformationContext) (SourceRecord, error)
	ValidateMapping(source SourceRecord, target *canonical.TestCase) []string
}

// TestExecutionMapper converts test executions between one system's dialect
// and the canonical model.
type TestExecutionMapper interface {
	Mapper
	ToCanonical(source SourceRecord, ctx *canonical.TransformationContext) (*canonical.TestExecution, error)
	FromCanonical(exec *canonical.TestExecution, ctx *canonical.TransformationContext) (SourceRecord, error)
	ValidateMapping(source SourceRecord, target *canonical.TestExecution) []string
}

// TestSuiteMapper converts test suites between one system's dialect and the
// canonical model.
type TestSuiteMapper interface {
	Mapper
	ToCanonical(source SourceRecord, ctx *canonical.TransformationContext) (*canonical.TestSuite, error)
	FromCanonical(suite *canonical.TestSuite, ctx *canonical.TransformationContext) (SourceRecord, error)
	ValidateMapping(source SourceRecord, target *canonical.TestSuite) []string
}

// TestCycleMapper converts test cycles between one system's dialect and the
// canonical model.
type TestCycleMapper interface {
	Mapper
	ToCanonical(source SourceRecord, ctx *canonical.TransformationContext) (*canonical.TestCycle, error)
	FromCanonical(cycle *canonical.TestCycle, ctx *canonical.TransformationContext) (SourceRecord, error)
	ValidateMapping(source SourceRecord, target *canonical.TestCycle) []string
}
