package adapter

import "errors"

// Sentinel errors an Adapter implementation should wrap with fmt.Errorf's
// %w verb so callers can classify a connection failure via errors.Is.
var (
	ErrAuth    = errors.New("adapter: authentication failed")
	ErrNetwork = errors.New("adapter: network error")
	ErrConfig  = errors.New("adapter: invalid configuration")
	ErrTimeout = errors.New("adapter: timed out")
)

// Registry is the process-wide, read-only-after-init mapping of system name
// to its Adapter, populated once at start-up by explicit registration calls
// — the same convention the Mapper Registry uses.
type Registry struct {
	adapters map[string]Adapter
}

// NewRegistry returns an empty adapter Registry.
func NewRegistry() *Registry {
	return &Registry{adapters: make(map[string]Adapter)}
}

// Register adds a under systemName, overwriting any prior registration.
func (r *Registry) Register(systemName string, a Adapter) {
	r.adapters[systemName] = a
}

// Get returns the Adapter registered for systemName.
func (r *Registry) Get(systemName string) (Adapter, bool) {
	a, ok := r.adapters[systemName]
	return a, ok
}
