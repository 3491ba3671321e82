/*
Copyright 2026 Benny Powers. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

package parser

import (
	"fmt"
	"reflect"
	"slices"
	"sync"
	"sync/atomic"

	"bennypowers.dev/reftoken/async"
	"bennypowers.dev/reftoken/internal/logger"
	"bennypowers.dev/reftoken/token"
)

// Composite is an ordered set of parsers. Registration order is priority
// order. Children are shared by reference with clones, so they must be
// immutable once added.
type Composite struct {
	adapter async.Adapter
	options Options

	mu      sync.RWMutex
	parsers []Parser
}

var _ Parser = (*Composite)(nil)

// NewComposite creates an empty composite.
func NewComposite(adapter async.Adapter, opts Options) *Composite {
	if adapter == nil {
		adapter = async.Inline()
	}
	return &Composite{
		adapter: adapter,
		options: opts,
	}
}

// Add registers p, at the front when prepend is true and at the back
// otherwise. It fails with ErrInvalidParser, leaving the composite
// untouched, when p is nil or would make the composite contain itself.
func (c *Composite) Add(p Parser, prepend bool) (*Composite, error) {
	if err := c.validate(p); err != nil {
		return c, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if prepend {
		c.parsers = slices.Insert(c.parsers, 0, p)
	} else {
		c.parsers = append(c.parsers, p)
	}
	return c, nil
}

// MustAdd is like Add but panics on error. It is intended for chaining
// during static setup.
func (c *Composite) MustAdd(p Parser, prepend bool) *Composite {
	if _, err := c.Add(p, prepend); err != nil {
		panic(err)
	}
	return c
}

// Test resolves true when at least one child accepts candidate. Children
// are started without waiting on one another. The first truthy child wins;
// a child error observed before any truthy result rejects the whole test.
// With no accepting child the result is false, not an error.
func (c *Composite) Test(candidate any) *async.Deferred[bool] {
	children := c.snapshot()

	return async.Promise(c.adapter, func(resolve func(bool), reject func(error)) {
		if len(children) == 0 {
			resolve(false)
			return
		}

		var pending atomic.Int64
		pending.Store(int64(len(children)))

		for _, child := range children {
			c.adapter.Schedule(func() {
				invokeTest(c.adapter, child, candidate).OnSettled(func(ok bool, err error) {
					switch {
					case err != nil:
						reject(err)
					case ok:
						resolve(true)
					default:
						if pending.Add(-1) == 0 {
							resolve(false)
						}
					}
				})
			})
		}
	})
}

// Parse tests children in registration order, one at a time, and
// delegates to the first that accepts candidate. A child error stops the
// scan. When nobody accepts, the result is rejected with ErrNoAccepter.
func (c *Composite) Parse(candidate any) *async.Deferred[token.Reference] {
	children := c.snapshot()

	accepter := async.Promise(c.adapter, func(resolve func(Parser), reject func(error)) {
		c.findSeries(children, candidate, 0, resolve, reject)
	})

	return async.Chain(accepter, func(p Parser) *async.Deferred[token.Reference] {
		if p == nil {
			return async.Reject[token.Reference](c.adapter,
				fmt.Errorf("%w: %s", ErrNoAccepter, describe(candidate)))
		}
		logger.Debug("%s: %T accepted %s", c.options.NameOr("composite"), p, describe(candidate))
		return invokeParse(c.adapter, p, candidate)
	})
}

// Clone returns a composite with the same adapter and options holding the
// same children in the same order. Later additions to either composite do
// not affect the other.
func (c *Composite) Clone() Parser {
	clone := NewComposite(c.adapter, c.options.Clone())
	for _, p := range c.snapshot() {
		clone.MustAdd(p, false)
	}
	return clone
}

// Len returns the number of registered children.
func (c *Composite) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.parsers)
}

// Parsers returns the children in priority order.
func (c *Composite) Parsers() []Parser {
	return c.snapshot()
}

// Adapter returns the async adapter the composite was built with.
func (c *Composite) Adapter() async.Adapter {
	return c.adapter
}

// Options returns the options the composite was built with.
func (c *Composite) Options() Options {
	return c.options
}

func (c *Composite) findSeries(children []Parser, candidate any, i int, resolve func(Parser), reject func(error)) {
	if i == len(children) {
		resolve(nil)
		return
	}

	child := children[i]
	invokeTest(c.adapter, child, candidate).OnSettled(func(ok bool, err error) {
		switch {
		case err != nil:
			reject(err)
		case ok:
			resolve(child)
		default:
			c.findSeries(children, candidate, i+1, resolve, reject)
		}
	})
}

// snapshot copies the children so concurrent Add calls cannot change
// which parsers an in-flight operation considers.
func (c *Composite) snapshot() []Parser {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.parsers)
}

func (c *Composite) validate(p Parser) error {
	if isNil(p) {
		return fmt.Errorf("%w: got nil", ErrInvalidParser)
	}
	if contains(p, c) {
		return fmt.Errorf("%w: composite cannot contain itself", ErrInvalidParser)
	}
	return nil
}

// contains reports whether p is target or holds target among its descendants.
func contains(p Parser, target *Composite) bool {
	composite, ok := p.(*Composite)
	if !ok {
		return false
	}
	if composite == target {
		return true
	}
	for _, child := range composite.snapshot() {
		if contains(child, target) {
			return true
		}
	}
	return false
}

func isNil(p Parser) bool {
	if p == nil {
		return true
	}
	v := reflect.ValueOf(p)
	switch v.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Interface, reflect.Chan:
		return v.IsNil()
	}
	return false
}

// invokeTest calls p.Test, turning a panic or a missing result into a
// rejected deferred on adapter a.
func invokeTest(a async.Adapter, p Parser, candidate any) (d *async.Deferred[bool]) {
	defer func() {
		if r := recover(); r != nil {
			d = async.Reject[bool](a, panicError(p, "Test", r))
		}
	}()
	return async.Adopt(a, p.Test(candidate))
}

func invokeParse(a async.Adapter, p Parser, candidate any) (d *async.Deferred[token.Reference]) {
	defer func() {
		if r := recover(); r != nil {
			d = async.Reject[token.Reference](a, panicError(p, "Parse", r))
		}
	}()
	return async.Adopt(a, p.Parse(candidate))
}

// panicError wraps a recovered value in async.ErrPanic. An error value stays
// in the chain so callers can still match it.
func panicError(p Parser, method string, r any) error {
	if err, ok := r.(error); ok {
		return fmt.Errorf("%w: %T.%s: %w", async.ErrPanic, p, method, err)
	}
	return fmt.Errorf("%w: %T.%s: %v", async.ErrPanic, p, method, r)
}

func describe(candidate any) string {
	if s, ok := candidate.(string); ok {
		return fmt.Sprintf("%q", s)
	}
	return fmt.Sprintf("%T", candidate)
}
