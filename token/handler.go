/*
Copyright 2026 Benny Powers. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

package token

import (
	"fmt"
	"strings"
)

// Handler is the interpretation object factories give to a reference
// handler: an optional scope marker, a service, and an optional method.
//
//	"handler"         -> {Service: "handler"}
//	"@handler"        -> {Scoped: true, Service: "handler"}
//	"@handler:method" -> {Scoped: true, Service: "handler", Method: "method"}
type Handler struct {
	// Scoped is true when the handler starts with @.
	Scoped bool `json:"scoped"`

	// Service is the name of the handler object.
	Service string `json:"service"`

	// Method is the method to call on the service, if any.
	Method string `json:"method,omitempty"`
}

// ParseHandler splits a raw handler. Parsers never call it; the handler
// stays opaque until a consumer asks for this view.
func ParseHandler(raw string) (Handler, error) {
	var h Handler
	rest := raw
	if after, ok := strings.CutPrefix(rest, "@"); ok {
		h.Scoped = true
		rest = after
	}

	service, method, hasMethod := strings.Cut(rest, ":")
	if service == "" {
		return Handler{}, fmt.Errorf("%w: %q has no service", ErrInvalidHandler, raw)
	}
	if hasMethod && method == "" {
		return Handler{}, fmt.Errorf("%w: %q has an empty method", ErrInvalidHandler, raw)
	}

	h.Service = service
	h.Method = method
	return h, nil
}

// String renders the handler in its raw form.
func (h Handler) String() string {
	var b strings.Builder
	if h.Scoped {
		b.WriteByte('@')
	}
	b.WriteString(h.Service)
	if h.Method != "" {
		b.WriteByte(':')
		b.WriteString(h.Method)
	}
	return b.String()
}
