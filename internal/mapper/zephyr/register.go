package zephyr

import "github.com/cedricziel/migrated/internal/mapper"

// Register adds this package's mappers to reg under the "zephyr" system name.
// Called explicitly by the program entrypoint rather than via init(), so that
// registration order and the set of registered systems stays an explicit,
// testable decision rather than an import-time side effect.
func Register(reg *mapper.Registry) {
	reg.Register(SystemName, mapper.EntityTestCase, TestCaseMapper{})
	reg.Register(SystemName, mapper.EntityTestExecution, TestExecutionMapper{})
}
