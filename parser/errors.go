/*
Copyright 2026 Benny Powers. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

package parser

import (
	"errors"
	"fmt"
)

// Sentinel errors for parsing operations.
var (
	// ErrInvalidParser indicates a value that cannot serve as a Parser,
	// such as a nil parser or a composite added to itself.
	ErrInvalidParser = errors.New("parser is expected")

	// ErrInvalidInput indicates a non-string candidate given to a leaf grammar.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNoAccepter indicates that no registered parser accepted a candidate.
	// It is a recoverable grammar mismatch, unlike a propagated child error.
	ErrNoAccepter = errors.New("could not parse given candidate")

	// ErrNotAccepted indicates Parse was called on input the grammar rejects.
	ErrNotAccepted = errors.New("candidate does not match grammar")
)

// InputError reports a candidate of the wrong type.
type InputError struct {
	// Grammar is the name of the rejecting parser.
	Grammar string

	// Got is the Go type of the candidate.
	Got string
}

func (e *InputError) Error() string {
	return fmt.Sprintf("%s: %s: expected string candidate, got %s", ErrInvalidInput, e.Grammar, e.Got)
}

// Unwrap returns ErrInvalidInput.
func (e *InputError) Unwrap() error {
	return ErrInvalidInput
}
