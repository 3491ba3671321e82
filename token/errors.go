/*
Copyright 2026 Benny Powers. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

package token

import "errors"

// Sentinel errors for reference tokens.
var (
	// ErrUnknownKind indicates an unrecognized reference kind name.
	ErrUnknownKind = errors.New("unknown reference kind")

	// ErrInvalidHandler indicates a handler string cannot be split into service and method.
	ErrInvalidHandler = errors.New("invalid handler")
)
