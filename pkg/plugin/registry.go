package plugin

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Registry maps plugin type names to factories. Names match
// case-insensitively.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]entry
}

type entry struct {
	name    string
	factory Factory
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]entry)}
}

// Register adds a factory. Registering the same name twice is an error.
func (r *Registry) Register(name string, f Factory) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("plugin type name is required")
	}
	if f == nil {
		return fmt.Errorf("cannot register nil factory for %s", name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	key := strings.ToLower(name)
	if existing, ok := r.factories[key]; ok {
		return fmt.Errorf("plugin type %s already registered as %s", name, existing.name)
	}
	r.factories[key] = entry{name: name, factory: f}
	return nil
}

// Lookup returns the factory registered under name.
func (r *Registry) Lookup(name string) (Factory, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.factories[strings.ToLower(name)]
	return e.factory, ok
}

// Names lists the registered type names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.factories))
	for _, e := range r.factories {
		names = append(names, e.name)
	}
	sort.Strings(names)
	return names
}

// globalRegistry receives factories registered from init functions of
// compiled-in plugins and shared objects.
var globalRegistry = NewRegistry()

// DefaultRegistry returns the process-wide registry.
func DefaultRegistry() *Registry {
	return globalRegistry
}

// Register adds a factory to the process-wide registry.
func Register(name string, f Factory) error {
	return globalRegistry.Register(name, f)
}
