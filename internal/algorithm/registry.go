package algorithm

import (
	"fmt"
	"sort"
	"sync"

	"liuren/internal/logging"
)

// Registry maps adapter names to adapters. It is an explicit instance wired
// through constructors, not a package-level singleton, so tests and multiple
// coordinators never share registration state by accident.
type Registry struct {
	mu       sync.RWMutex
	adapters map[string]Adapter
	fallback string
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{adapters: make(map[string]Adapter)}
}

// Register adds an adapter. Registering a duplicate name is a startup
// configuration error, not a silent overwrite. The first registered adapter
// becomes the routing fallback.
func (r *Registry) Register(a Adapter) error {
	if a == nil {
		return fmt.Errorf("registry: nil adapter")
	}
	name := a.Name()
	if name == "" {
		return fmt.Errorf("registry: adapter with empty name")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.adapters[name]; exists {
		return fmt.Errorf("registry: adapter %q already registered", name)
	}
	r.adapters[name] = a
	if r.fallback == "" {
		r.fallback = name
	}
	logging.Routing("registered adapter %q", name)
	return nil
}

// Get returns the adapter with the exact name.
func (r *Registry) Get(name string) (Adapter, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.adapters[name]
	return a, ok
}

// Route resolves a routing hint to an adapter. An empty hint routes to the
// fallback adapter; an unknown hint is a miss, reported with false rather
// than an error so the caller can map it to an unsupported-intent response.
func (r *Registry) Route(hint string) (Adapter, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if hint == "" {
		hint = r.fallback
	}
	a, ok := r.adapters[hint]
	if !ok {
		logging.Routing("route miss for hint %q", hint)
	}
	return a, ok
}

// Names returns the registered adapter names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.adapters))
	for name := range r.adapters {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Clear removes every adapter. Administrative use only.
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.adapters = make(map[string]Adapter)
	r.fallback = ""
}
