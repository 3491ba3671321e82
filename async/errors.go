/*
Copyright 2026 Benny Powers. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

package async

import "errors"

// Sentinel errors for deferred results.
var (
	// ErrUnknownBackend indicates an unrecognized adapter name.
	ErrUnknownBackend = errors.New("unknown async backend")

	// ErrPanic indicates an executor or continuation panicked.
	ErrPanic = errors.New("deferred computation panicked")

	// ErrNilRejection indicates reject was called with a nil error.
	ErrNilRejection = errors.New("deferred rejected without an error")

	// ErrNilDeferred indicates a nil deferred was given where a result was expected.
	ErrNilDeferred = errors.New("nil deferred result")
)
