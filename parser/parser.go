/*
Copyright 2026 Benny Powers. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

// Package parser defines the capability every reference recognizer
// satisfies and the Composite that dispatches between them.
package parser

import (
	"fmt"
	"maps"

	"bennypowers.dev/reftoken/async"
	"bennypowers.dev/reftoken/token"
)

// Parser recognizes and decodes one family of reference tokens.
// Every Parser is built from an async.Adapter and Options.
type Parser interface {
	// Test reports whether candidate can be decoded by this parser.
	// It never mutates candidate.
	Test(candidate any) *async.Deferred[bool]

	// Parse decodes candidate. It is only well defined when Test would
	// resolve true; callers test first.
	Parse(candidate any) *async.Deferred[token.Reference]

	// Clone returns an independently mutable parser configured identically.
	Clone() Parser
}

// Options configures a parser. Settings are backend specific and opaque
// to the composite.
type Options struct {
	// Name labels the parser in references and diagnostics.
	Name string

	// Settings holds grammar-specific values, such as a pattern source.
	Settings map[string]any
}

// Clone returns a copy of o whose Settings can be modified independently.
func (o Options) Clone() Options {
	return Options{
		Name:     o.Name,
		Settings: maps.Clone(o.Settings),
	}
}

// String returns the setting under key as a string.
// Missing settings yield the empty string.
func (o Options) String(key string) string {
	v, ok := o.Settings[key]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

// NameOr returns the configured name, or fallback when none is set.
func (o Options) NameOr(fallback string) string {
	if o.Name != "" {
		return o.Name
	}
	return fallback
}

// Candidate asserts that candidate is a string, as leaf grammars require.
// The error wraps ErrInvalidInput.
func Candidate(grammar string, candidate any) (string, error) {
	s, ok := candidate.(string)
	if !ok {
		return "", &InputError{Grammar: grammar, Got: fmt.Sprintf("%T", candidate)}
	}
	return s, nil
}
