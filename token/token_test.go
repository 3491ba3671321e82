/*
Copyright 2026 Benny Powers. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

package token_test

import (
	"encoding/json"
	"errors"
	"testing"

	"bennypowers.dev/reftoken/token"
)

func TestReference_String(t *testing.T) {
	tests := []struct {
		name     string
		ref      token.Reference
		expected string
	}{
		{
			name:     "path only",
			ref:      token.Reference{Path: "resource"},
			expected: "#resource#",
		},
		{
			name:     "with handler",
			ref:      token.Reference{Path: "resource", Handler: "@handler:method"},
			expected: "#@handler:method!resource#",
		},
		{
			name:     "parameter",
			ref:      token.Reference{Path: "kernel.debug", Kind: token.KindParameter},
			expected: "%kernel.debug%",
		},
		{
			name:     "pattern keeps raw text",
			ref:      token.Reference{Raw: "${HOME}", Path: "HOME", Kind: token.KindPattern},
			expected: "${HOME}",
		},
		{
			name:     "pattern without raw text",
			ref:      token.Reference{Path: "HOME", Handler: "env", Kind: token.KindPattern},
			expected: "#env!HOME#",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.ref.String(); got != tt.expected {
				t.Errorf("Reference.String() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestReference_HasHandler(t *testing.T) {
	if (token.Reference{Path: "a"}).HasHandler() {
		t.Error("expected no handler")
	}
	if !(token.Reference{Path: "a", Handler: "h"}).HasHandler() {
		t.Error("expected handler")
	}
}

func TestReference_JSON(t *testing.T) {
	ref := token.Reference{Raw: "#h!p#", Path: "p", Handler: "h", Kind: token.KindResource, Grammar: "resource"}
	data, err := json.Marshal(ref)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := `{"raw":"#h!p#","path":"p","handler":"h","kind":"resource","grammar":"resource"}`
	if string(data) != want {
		t.Errorf("json = %s, want %s", data, want)
	}

	noHandler, _ := json.Marshal(token.Reference{Path: "p", Kind: token.KindParameter})
	if string(noHandler) != `{"raw":"","path":"p","kind":"parameter"}` {
		t.Errorf("unexpected json for reference without handler: %s", noHandler)
	}
}

func TestKind(t *testing.T) {
	for _, name := range []string{"resource", "parameter", "pattern"} {
		k, err := token.ParseKind(name)
		if err != nil {
			t.Fatalf("ParseKind(%q): %v", name, err)
		}
		if k.String() != name {
			t.Errorf("round trip %q = %q", name, k.String())
		}
	}

	if _, err := token.ParseKind("service"); !errors.Is(err, token.ErrUnknownKind) {
		t.Errorf("expected ErrUnknownKind, got %v", err)
	}

	if got := token.Kind(9).String(); got != "Kind(9)" {
		t.Errorf("out of range kind = %q", got)
	}
}

func TestParseHandler(t *testing.T) {
	tests := []struct {
		raw     string
		want    token.Handler
		wantErr bool
	}{
		{raw: "handler", want: token.Handler{Service: "handler"}},
		{raw: "@handler", want: token.Handler{Scoped: true, Service: "handler"}},
		{raw: "@handler:method", want: token.Handler{Scoped: true, Service: "handler", Method: "method"}},
		{raw: "handler:method", want: token.Handler{Service: "handler", Method: "method"}},
		{raw: "svc:a:b", want: token.Handler{Service: "svc", Method: "a:b"}},
		{raw: "", wantErr: true},
		{raw: "@", wantErr: true},
		{raw: "@:method", wantErr: true},
		{raw: "svc:", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := token.ParseHandler(tt.raw)
			if tt.wantErr {
				if !errors.Is(err, token.ErrInvalidHandler) {
					t.Errorf("ParseHandler(%q) error = %v, want ErrInvalidHandler", tt.raw, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("ParseHandler(%q) = %+v, want %+v", tt.raw, got, tt.want)
			}
			if got.String() != tt.raw {
				t.Errorf("Handler.String() = %q, want %q", got.String(), tt.raw)
			}
		})
	}
}
