/*
Copyright 2026 Benny Powers. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

package template

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"bennypowers.dev/reftoken/async"
	"bennypowers.dev/reftoken/parser"
)

var (
	// ErrUnknownGrammar indicates no builder is registered under a name.
	ErrUnknownGrammar = errors.New("unknown grammar")

	// ErrDuplicateGrammar indicates a builder is already registered under a name.
	ErrDuplicateGrammar = errors.New("grammar already registered")
)

// Builder constructs a parser for a grammar.
type Builder func(adapter async.Adapter, opts parser.Options) (parser.Parser, error)

// Registry maps grammar names to builders, so reference shapes can be
// registered at runtime and selected by configuration.
type Registry struct {
	mu       sync.RWMutex
	builders map[string]Builder
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{builders: make(map[string]Builder)}
}

// DefaultRegistry returns a registry holding the resource, parameter and
// pattern grammars.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	_ = r.Register(ResourceGrammar, func(a async.Adapter, opts parser.Options) (parser.Parser, error) {
		return NewResource(a, opts), nil
	})
	_ = r.Register(ParameterGrammar, func(a async.Adapter, opts parser.Options) (parser.Parser, error) {
		return NewParameter(a, opts), nil
	})
	_ = r.Register(PatternGrammar, func(a async.Adapter, opts parser.Options) (parser.Parser, error) {
		return NewPattern(a, opts)
	})
	return r
}

// Register adds a builder under name.
func (r *Registry) Register(name string, b Builder) error {
	if name == "" || b == nil {
		return fmt.Errorf("%w: grammar needs a name and a builder", parser.ErrInvalidParser)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.builders[name]; exists {
		return fmt.Errorf("%w: %q", ErrDuplicateGrammar, name)
	}
	r.builders[name] = b
	return nil
}

// Build constructs the grammar registered under kind.
func (r *Registry) Build(kind string, adapter async.Adapter, opts parser.Options) (parser.Parser, error) {
	r.mu.RLock()
	b, ok := r.builders[kind]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownGrammar, kind)
	}
	return b(adapter, opts)
}

// Names returns the registered grammar names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.builders))
	for name := range r.builders {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// NewDefault returns a composite holding the resource grammar followed by
// the parameter grammar.
func NewDefault(adapter async.Adapter) *parser.Composite {
	return parser.NewComposite(adapter, parser.Options{Name: "default"}).
		MustAdd(NewResource(adapter, parser.Options{}), false).
		MustAdd(NewParameter(adapter, parser.Options{}), false)
}
