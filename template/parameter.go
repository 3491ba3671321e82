/*
Copyright 2026 Benny Powers. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

package template

import (
	"fmt"
	"regexp"

	"bennypowers.dev/reftoken/async"
	"bennypowers.dev/reftoken/parser"
	"bennypowers.dev/reftoken/token"
)

// ParameterGrammar is the registry name of the parameter grammar.
const ParameterGrammar = "parameter"

var parameterPattern = regexp.MustCompile(`^%([^%\s]+)%$`)

// Parameter recognizes parameter references of the form %name%.
type Parameter struct {
	adapter async.Adapter
	options parser.Options
}

var _ parser.Parser = (*Parameter)(nil)

// NewParameter creates a parameter reference parser.
func NewParameter(adapter async.Adapter, opts parser.Options) *Parameter {
	if adapter == nil {
		adapter = async.Inline()
	}
	return &Parameter{adapter: adapter, options: opts}
}

// Test reports whether candidate is a complete parameter reference.
func (p *Parameter) Test(candidate any) *async.Deferred[bool] {
	s, err := parser.Candidate(p.name(), candidate)
	if err != nil {
		return async.Reject[bool](p.adapter, err)
	}
	return async.Resolve(p.adapter, parameterPattern.MatchString(s))
}

// Parse decodes candidate into the parameter name.
func (p *Parameter) Parse(candidate any) *async.Deferred[token.Reference] {
	s, err := parser.Candidate(p.name(), candidate)
	if err != nil {
		return async.Reject[token.Reference](p.adapter, err)
	}

	m := parameterPattern.FindStringSubmatch(s)
	if m == nil {
		return async.Reject[token.Reference](p.adapter, fmt.Errorf("%w: %s: %q", parser.ErrNotAccepted, p.name(), s))
	}

	return async.Resolve(p.adapter, token.Reference{
		Raw:     s,
		Path:    m[1],
		Kind:    token.KindParameter,
		Grammar: p.name(),
	})
}

// Clone returns the parser itself; Parameter holds no mutable state.
func (p *Parameter) Clone() parser.Parser {
	return p
}

func (p *Parameter) name() string {
	return p.options.NameOr(ParameterGrammar)
}
