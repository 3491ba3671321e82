/*
Copyright 2026 Benny Powers. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

// Package async normalizes synchronous and deferred results into a single
// awaitable type, so parsers never branch on whether a value is ready yet.
package async

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/semaphore"
)

// Backend names accepted by FromName.
const (
	BackendInline    = "inline"
	BackendGoroutine = "goroutine"
	BackendPool      = "pool"
)

// Adapter schedules the continuations of deferred results.
// Implementations must be comparable.
type Adapter interface {
	// Schedule runs fn under the backend's concurrency primitive.
	Schedule(fn func())

	// Name identifies the backend.
	Name() string
}

type inlineAdapter struct{}

// Inline returns an adapter that runs continuations on the calling goroutine.
func Inline() Adapter {
	return inlineAdapter{}
}

func (inlineAdapter) Schedule(fn func()) { fn() }

func (inlineAdapter) Name() string { return BackendInline }

type goroutineAdapter struct{}

// Goroutine returns an adapter that runs every continuation on its own goroutine.
func Goroutine() Adapter {
	return goroutineAdapter{}
}

func (goroutineAdapter) Schedule(fn func()) { go fn() }

func (goroutineAdapter) Name() string { return BackendGoroutine }

type poolAdapter struct {
	sem   *semaphore.Weighted
	limit int64
}

// Pool returns an adapter that runs at most limit continuations at once.
// Scheduling never blocks the caller; excess work waits for a slot.
func Pool(limit int) Adapter {
	if limit < 1 {
		limit = 1
	}
	return &poolAdapter{
		sem:   semaphore.NewWeighted(int64(limit)),
		limit: int64(limit),
	}
}

func (p *poolAdapter) Schedule(fn func()) {
	go func() {
		// Acquire only fails when the context is done.
		_ = p.sem.Acquire(context.Background(), 1)
		defer p.sem.Release(1)
		fn()
	}()
}

func (p *poolAdapter) Name() string { return BackendPool }

// FromName returns the backend registered under name.
// The limit only applies to the pool backend.
func FromName(name string, limit int) (Adapter, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", BackendInline:
		return Inline(), nil
	case BackendGoroutine:
		return Goroutine(), nil
	case BackendPool:
		return Pool(limit), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, name)
	}
}

// Backends lists the names accepted by FromName.
func Backends() []string {
	return []string{BackendInline, BackendGoroutine, BackendPool}
}

// same reports whether a and b are the same adapter.
// Non-comparable adapters are never considered equal.
func same(a, b Adapter) (eq bool) {
	defer func() {
		if recover() != nil {
			eq = false
		}
	}()
	return a == b
}
