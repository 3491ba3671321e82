/*
Copyright 2026 Benny Powers. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

// Package template provides the leaf grammars that recognize reference
// templates inside configuration values, and a registry to build them by name.
package template

import (
	"fmt"
	"regexp"

	"bennypowers.dev/reftoken/async"
	"bennypowers.dev/reftoken/parser"
	"bennypowers.dev/reftoken/token"
)

// ResourceGrammar is the registry name of the resource grammar.
const ResourceGrammar = "resource"

// resourcePattern matches #path# and #handler!path#.
// Neither part may contain # or !, and both are non-empty.
var resourcePattern = regexp.MustCompile(`^#(?:([^#!]+)!)?([^#!]+)#$`)

// Resource recognizes resource references of the form #handler!path#.
// The handler is optional and passed through verbatim.
type Resource struct {
	adapter async.Adapter
	options parser.Options
}

var _ parser.Parser = (*Resource)(nil)

// NewResource creates a resource reference parser.
func NewResource(adapter async.Adapter, opts parser.Options) *Resource {
	if adapter == nil {
		adapter = async.Inline()
	}
	return &Resource{adapter: adapter, options: opts}
}

// Test reports whether candidate is a complete resource reference.
// Non-string candidates reject with parser.ErrInvalidInput.
func (r *Resource) Test(candidate any) *async.Deferred[bool] {
	s, err := parser.Candidate(r.name(), candidate)
	if err != nil {
		return async.Reject[bool](r.adapter, err)
	}
	return async.Resolve(r.adapter, resourcePattern.MatchString(s))
}

// Parse decodes candidate into its path and optional handler.
func (r *Resource) Parse(candidate any) *async.Deferred[token.Reference] {
	s, err := parser.Candidate(r.name(), candidate)
	if err != nil {
		return async.Reject[token.Reference](r.adapter, err)
	}

	m := resourcePattern.FindStringSubmatch(s)
	if m == nil {
		return async.Reject[token.Reference](r.adapter, fmt.Errorf("%w: %s: %q", parser.ErrNotAccepted, r.name(), s))
	}

	return async.Resolve(r.adapter, token.Reference{
		Raw:     s,
		Path:    m[2],
		Handler: m[1],
		Kind:    token.KindResource,
		Grammar: r.name(),
	})
}

// Clone returns the parser itself; Resource holds no mutable state.
func (r *Resource) Clone() parser.Parser {
	return r
}

func (r *Resource) name() string {
	return r.options.NameOr(ResourceGrammar)
}
