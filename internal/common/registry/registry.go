// Package registry provides a generic, thread-safe registry pattern
// for managing named instances of any type.
//
// This package eliminates duplication by providing a reusable registry
// implementation that backs the strategy registry and the invalidation
// rule set.
//
// Example usage:
//
//	registry := registry.New[model.Strategy]("strategy")
//	registry.Register("financial", financialStrategy)
//	strategy, err := registry.Get("financial")
package registry

import (
	"fmt"
	"sync"

	"cache-manager/internal/common/errors"
)

// Registry provides a generic, thread-safe registry for named instances.
// Registration under an existing name atomically replaces the prior entry.
type Registry[T any] struct {
	kind    string
	entries map[string]T
	mu      sync.RWMutex
}

// New creates a new empty registry for entries of type T. The kind string
// names what the registry holds and appears in not-found errors.
func New[T any](kind string) *Registry[T] {
	return &Registry[T]{
		kind:    kind,
		entries: make(map[string]T),
	}
}

// Register adds an entry under the specified name.
// If an entry with the same name already exists, it is replaced.
// The registration is thread-safe.
func (r *Registry[T]) Register(name string, entry T) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[name] = entry
}

// Get retrieves an entry by name.
// Returns an error if the name is not registered.
// The lookup is thread-safe.
func (r *Registry[T]) Get(name string) (T, error) {
	r.mu.RLock()
	entry, exists := r.entries[name]
	r.mu.RUnlock()

	if !exists {
		var zero T
		return zero, errors.NotFoundError(fmt.Sprintf("%s %q", r.kind, name))
	}

	return entry, nil
}

// Names returns a list of all registered names.
// The returned slice is a copy and safe to modify.
// The operation is thread-safe.
func (r *Registry[T]) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.entries))
	for name := range r.entries {
		names = append(names, name)
	}
	return names
}

// IsRegistered checks if a name is registered.
// The check is thread-safe.
func (r *Registry[T]) IsRegistered(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, exists := r.entries[name]
	return exists
}

// Count returns the number of registered entries.
// The operation is thread-safe.
func (r *Registry[T]) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// Clear removes all registered entries from the registry.
// This operation is useful for testing or resetting the registry state.
// The operation is thread-safe.
func (r *Registry[T]) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = make(map[string]T)
}
