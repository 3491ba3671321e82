/*
Copyright 2026 Benny Powers. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

package async

import (
	"context"
	"fmt"
	"sync"

	"bennypowers.dev/reftoken/internal/logger"
)

// Deferred is a result that is either available now or settled later.
// It settles exactly once; later attempts are ignored.
type Deferred[T any] struct {
	adapter Adapter
	done    chan struct{}

	mu        sync.Mutex
	settled   bool
	value     T
	err       error
	callbacks []func(T, error)
}

func newDeferred[T any](a Adapter) *Deferred[T] {
	if a == nil {
		a = Inline()
	}
	return &Deferred[T]{
		adapter: a,
		done:    make(chan struct{}),
	}
}

// Resolve returns a deferred already resolved with v.
func Resolve[T any](a Adapter, v T) *Deferred[T] {
	d := newDeferred[T](a)
	d.settle(v, nil)
	return d
}

// Reject returns a deferred already rejected with err.
func Reject[T any](a Adapter, err error) *Deferred[T] {
	d := newDeferred[T](a)
	var zero T
	d.settle(zero, rejection(err))
	return d
}

// Adopt moves d onto adapter a, so continuations registered on the result
// are dispatched by a. It returns d unchanged when d already uses a.
// A nil d yields a deferred rejected with ErrNilDeferred.
func Adopt[T any](a Adapter, d *Deferred[T]) *Deferred[T] {
	if d == nil {
		return Reject[T](a, ErrNilDeferred)
	}
	if a == nil || same(d.adapter, a) {
		return d
	}
	return Promise(a, func(resolve func(T), reject func(error)) {
		d.OnSettled(func(v T, err error) {
			if err != nil {
				reject(err)
				return
			}
			resolve(v)
		})
	})
}

// Promise builds a deferred from an executor that receives resolve and
// reject callbacks. The executor runs on the calling goroutine and may hand
// either callback to other goroutines. A panicking executor rejects the
// result with ErrPanic.
func Promise[T any](a Adapter, executor func(resolve func(T), reject func(error))) *Deferred[T] {
	d := newDeferred[T](a)
	var zero T

	resolve := func(v T) { d.settle(v, nil) }
	reject := func(err error) { d.settle(zero, rejection(err)) }

	func() {
		defer func() {
			if r := recover(); r != nil {
				reject(fmt.Errorf("%w: %v", ErrPanic, r))
			}
		}()
		executor(resolve, reject)
	}()

	return d
}

// Then returns a deferred holding fn applied to the value of d.
// Rejections of d skip fn and propagate unchanged.
func Then[T, U any](d *Deferred[T], fn func(T) (U, error)) *Deferred[U] {
	if d == nil {
		return Reject[U](nil, ErrNilDeferred)
	}
	return Promise(d.adapter, func(resolve func(U), reject func(error)) {
		d.OnSettled(func(v T, err error) {
			if err != nil {
				reject(err)
				return
			}
			defer func() {
				if r := recover(); r != nil {
					reject(fmt.Errorf("%w: %v", ErrPanic, r))
				}
			}()
			u, err := fn(v)
			if err != nil {
				reject(err)
				return
			}
			resolve(u)
		})
	})
}

// Chain returns a deferred that follows the deferred produced by fn.
func Chain[T, U any](d *Deferred[T], fn func(T) *Deferred[U]) *Deferred[U] {
	if d == nil {
		return Reject[U](nil, ErrNilDeferred)
	}
	return Promise(d.adapter, func(resolve func(U), reject func(error)) {
		d.OnSettled(func(v T, err error) {
			if err != nil {
				reject(err)
				return
			}
			defer func() {
				if r := recover(); r != nil {
					reject(fmt.Errorf("%w: %v", ErrPanic, r))
				}
			}()
			next := fn(v)
			if next == nil {
				reject(ErrNilDeferred)
				return
			}
			next.OnSettled(func(u U, err error) {
				if err != nil {
					reject(err)
					return
				}
				resolve(u)
			})
		})
	})
}

// Adapter returns the adapter that dispatches the continuations of d.
func (d *Deferred[T]) Adapter() Adapter {
	return d.adapter
}

// OnSettled registers fn to run once d settles. If d has already settled,
// fn is dispatched right away. Continuations run through the adapter.
func (d *Deferred[T]) OnSettled(fn func(T, error)) {
	d.mu.Lock()
	if !d.settled {
		d.callbacks = append(d.callbacks, fn)
		d.mu.Unlock()
		return
	}
	v, err := d.value, d.err
	d.mu.Unlock()

	d.dispatch(fn, v, err)
}

// Await blocks until d settles or ctx is done. Cancelling ctx stops the
// wait, not the computation.
func (d *Deferred[T]) Await(ctx context.Context) (T, error) {
	select {
	case <-d.done:
		return d.value, d.err
	default:
	}

	select {
	case <-d.done:
		return d.value, d.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Done returns a channel closed when d settles.
func (d *Deferred[T]) Done() <-chan struct{} {
	return d.done
}

// Settled reports whether d has a value or an error.
func (d *Deferred[T]) Settled() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.settled
}

func (d *Deferred[T]) settle(v T, err error) bool {
	d.mu.Lock()
	if d.settled {
		d.mu.Unlock()
		return false
	}
	d.settled = true
	d.value = v
	d.err = err
	callbacks := d.callbacks
	d.callbacks = nil
	close(d.done)
	d.mu.Unlock()

	for _, fn := range callbacks {
		d.dispatch(fn, v, err)
	}
	return true
}

func (d *Deferred[T]) dispatch(fn func(T, error), v T, err error) {
	d.adapter.Schedule(func() {
		defer func() {
			if r := recover(); r != nil {
				logger.Warn("deferred continuation panicked: %v", r)
			}
		}()
		fn(v, err)
	})
}

func rejection(err error) error {
	if err == nil {
		return ErrNilRejection
	}
	return err
}
