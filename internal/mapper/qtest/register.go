package qtest

import "github.com/cedricziel/migrated/internal/mapper"

// Register adds this package's mappers to reg under the "qtest" system name.
func Register(reg *mapper.Registry) {
	reg.Register(SystemName, mapper.EntityTestCase, TestCaseMapper{})
	reg.Register(SystemName, mapper.EntityTestExecution, TestExecutionMapper{})
}
