/*
Copyright 2026 Benny Powers. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

package template

import (
	"fmt"
	"regexp"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"bennypowers.dev/reftoken/async"
	"bennypowers.dev/reftoken/parser"
	"bennypowers.dev/reftoken/token"
)

// PatternGrammar is the registry name of the pattern grammar.
const PatternGrammar = "pattern"

// Settings read by NewPattern.
const (
	// SettingPattern is the regular expression source. It must define a
	// named group "path" and may define a named group "handler".
	SettingPattern = "pattern"

	// SettingGuard is an optional expr-lang expression evaluated with
	// `candidate` bound to the candidate string. The pattern is only tried
	// when it yields true.
	SettingGuard = "guard"
)

// Pattern recognizes a reference shape registered at runtime as a regular
// expression, optionally gated by a guard expression.
type Pattern struct {
	adapter async.Adapter
	options parser.Options

	source      string
	re          *regexp.Regexp
	pathIdx     int
	handlerIdx  int
	guard       *vm.Program
	guardSource string
}

var _ parser.Parser = (*Pattern)(nil)

// NewPattern compiles the pattern and guard found in opts.Settings.
// Invalid configuration fails with parser.ErrInvalidParser.
func NewPattern(adapter async.Adapter, opts parser.Options) (*Pattern, error) {
	if adapter == nil {
		adapter = async.Inline()
	}
	name := opts.NameOr(PatternGrammar)

	source := opts.String(SettingPattern)
	if source == "" {
		return nil, fmt.Errorf("%w: %s: missing %q setting", parser.ErrInvalidParser, name, SettingPattern)
	}

	if _, err := regexp.Compile(source); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", parser.ErrInvalidParser, name, err)
	}
	re := regexp.MustCompile("^(?:" + source + ")$")

	pathIdx := re.SubexpIndex("path")
	if pathIdx < 0 {
		return nil, fmt.Errorf("%w: %s: pattern %q has no (?P<path>...) group", parser.ErrInvalidParser, name, source)
	}

	p := &Pattern{
		adapter:    adapter,
		options:    opts,
		source:     source,
		re:         re,
		pathIdx:    pathIdx,
		handlerIdx: re.SubexpIndex("handler"),
	}

	if guard := opts.String(SettingGuard); guard != "" {
		program, err := expr.Compile(guard, expr.Env(guardEnv("")), expr.AsBool())
		if err != nil {
			return nil, fmt.Errorf("%w: %s: guard: %w", parser.ErrInvalidParser, name, err)
		}
		p.guard = program
		p.guardSource = guard
	}

	return p, nil
}

// Test reports whether the guard passes and the pattern matches candidate.
// A guard that fails at run time rejects the test.
func (p *Pattern) Test(candidate any) *async.Deferred[bool] {
	s, err := parser.Candidate(p.name(), candidate)
	if err != nil {
		return async.Reject[bool](p.adapter, err)
	}

	ok, err := p.allowed(s)
	if err != nil {
		return async.Reject[bool](p.adapter, err)
	}
	return async.Resolve(p.adapter, ok && p.match(s) != nil)
}

// Parse decodes the path and handler groups of candidate.
func (p *Pattern) Parse(candidate any) *async.Deferred[token.Reference] {
	s, err := parser.Candidate(p.name(), candidate)
	if err != nil {
		return async.Reject[token.Reference](p.adapter, err)
	}

	m := p.match(s)
	if m == nil {
		return async.Reject[token.Reference](p.adapter, fmt.Errorf("%w: %s: %q", parser.ErrNotAccepted, p.name(), s))
	}

	ref := token.Reference{
		Raw:     s,
		Path:    m[p.pathIdx],
		Kind:    token.KindPattern,
		Grammar: p.name(),
	}
	if p.handlerIdx >= 0 {
		ref.Handler = m[p.handlerIdx]
	}
	return async.Resolve(p.adapter, ref)
}

// Clone returns a pattern parser sharing the compiled, immutable pattern
// and guard, with its own copy of the options.
func (p *Pattern) Clone() parser.Parser {
	clone := *p
	clone.options = p.options.Clone()
	return &clone
}

// Source returns the regular expression source.
func (p *Pattern) Source() string {
	return p.source
}

// match returns the submatches of s, or nil when the path group is empty.
// The compiled pattern is anchored at both ends.
func (p *Pattern) match(s string) []string {
	m := p.re.FindStringSubmatch(s)
	if m == nil || m[p.pathIdx] == "" {
		return nil
	}
	return m
}

func (p *Pattern) allowed(s string) (bool, error) {
	if p.guard == nil {
		return true, nil
	}
	out, err := expr.Run(p.guard, guardEnv(s))
	if err != nil {
		return false, fmt.Errorf("%s: guard %q: %w", p.name(), p.guardSource, err)
	}
	ok, _ := out.(bool)
	return ok, nil
}

func (p *Pattern) name() string {
	return p.options.NameOr(PatternGrammar)
}

func guardEnv(candidate string) map[string]any {
	return map[string]any{"candidate": candidate}
}
