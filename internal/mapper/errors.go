package mapper

import "errors"

// ErrMapperNotFound is returned when the registry has no mapper registered
// for a requested (systemName, entityType) pair.
var ErrMapperNotFound = errors.New("mapper not found")

// ErrMappingFailed wraps an error raised from inside a mapper's ToCanonical
// or FromCanonical implementation.
var ErrMappingFailed = errors.New("mapping failed")
