/*
Copyright 2026 Benny Powers. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

// Package token provides the decoded reference types produced by parsers.
package token

import (
	"fmt"
	"strings"
)

// Kind indicates which grammar produced a reference.
type Kind int

const (
	// KindResource is a #handler!path# resource reference.
	KindResource Kind = iota

	// KindParameter is a %name% parameter reference.
	KindParameter

	// KindPattern is a reference recognized by a pattern registered at runtime.
	KindPattern
)

var kindNames = []string{"resource", "parameter", "pattern"}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(text []byte) error {
	kind, err := ParseKind(string(text))
	if err != nil {
		return err
	}
	*k = kind
	return nil
}

// ParseKind returns the Kind with the given name.
func ParseKind(name string) (Kind, error) {
	for i, n := range kindNames {
		if strings.EqualFold(n, name) {
			return Kind(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownKind, name)
}

// Reference is a decoded reference token. It is created per parse call and
// owned by the caller.
type Reference struct {
	// Raw is the candidate string the reference was decoded from.
	Raw string `json:"raw" yaml:"raw"`

	// Path is the lookup key of the referenced object. Never empty.
	Path string `json:"path" yaml:"path"`

	// Handler names a post-construction hook, verbatim. Empty when absent.
	// It may start with @ and carry a :method suffix; see ParseHandler.
	Handler string `json:"handler,omitempty" yaml:"handler,omitempty"`

	// Kind is the grammar family that recognized the reference.
	Kind Kind `json:"kind" yaml:"kind"`

	// Grammar is the name of the parser that recognized the reference.
	Grammar string `json:"grammar,omitempty" yaml:"grammar,omitempty"`
}

// HasHandler reports whether the reference names a handler.
func (r Reference) HasHandler() bool {
	return r.Handler != ""
}

// String renders the reference in the canonical form of its kind:
// %path% for parameters, the raw text for pattern references, and
// #handler!path# otherwise.
func (r Reference) String() string {
	switch r.Kind {
	case KindParameter:
		return "%" + r.Path + "%"
	case KindPattern:
		if r.Raw != "" {
			return r.Raw
		}
	}
	if r.HasHandler() {
		return "#" + r.Handler + "!" + r.Path + "#"
	}
	return "#" + r.Path + "#"
}
