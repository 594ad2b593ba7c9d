// Package tokenizer manages the registry of format tokenizers. It supports
// both the global default registry used throughout the engine and standalone
// instance registries for tests and embedders.
package tokenizer

import (
	"sort"
	"sync"

	"github.com/nvisycom/core/pkg/core"
)

// Factory creates a new tokenizer instance.
type Factory func() core.Tokenizer

// Registry provides thread-safe registration and retrieval of tokenizers
// keyed by content kind.
type Registry struct {
	mu        sync.RWMutex
	factories map[core.ContentKind]Factory
}

// GlobalRegistry is the default registry instance used throughout the engine.
var GlobalRegistry = NewRegistry()

// NewRegistry creates an empty tokenizer registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[core.ContentKind]Factory)}
}

// Register registers a tokenizer factory for a content kind. An existing
// factory for the same kind is replaced.
func (r *Registry) Register(kind core.ContentKind, factory Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[kind] = factory
}

// Get creates a new tokenizer for the given content kind.
func (r *Registry) Get(kind core.ContentKind) (core.Tokenizer, error) {
	r.mu.RLock()
	factory, ok := r.factories[kind]
	r.mu.RUnlock()

	if !ok {
		return nil, core.NewError(core.ErrUnsupportedFormat, "tokenizer",
			"no tokenizer registered for kind").WithContext("kind", kind.String())
	}
	return factory(), nil
}

// Has reports whether a tokenizer is registered for the kind.
func (r *Registry) Has(kind core.ContentKind) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.factories[kind]
	return ok
}

// Kinds returns the registered content kinds in sorted order.
func (r *Registry) Kinds() []core.ContentKind {
	r.mu.RLock()
	defer r.mu.RUnlock()

	kinds := make([]core.ContentKind, 0, len(r.factories))
	for k := range r.factories {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}
