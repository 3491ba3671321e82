/*
Copyright 2026 Benny Powers. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

// Package validator checks the references of a scanned document.
package validator

import (
	"fmt"
	"slices"
	"strings"

	"bennypowers.dev/reftoken/resolver"
	"bennypowers.dev/reftoken/scan"
	"bennypowers.dev/reftoken/token"
)

// ValidationError represents a problem with one reference.
type ValidationError struct {
	// FilePath is the path to the file containing the error.
	FilePath string
	// Path is the dotted key of the problematic value.
	Path string
	// Message describes what's wrong.
	Message string
	// Suggestion provides an actionable fix.
	Suggestion string
	// Err is the sentinel the problem matches, if any.
	Err error
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	var sb strings.Builder
	if e.FilePath != "" {
		sb.WriteString(e.FilePath)
		sb.WriteString(": ")
	}
	if e.Path != "" {
		sb.WriteString(e.Path)
		sb.WriteString(": ")
	}
	sb.WriteString(e.Message)
	if e.Suggestion != "" {
		sb.WriteString(" (")
		sb.WriteString(e.Suggestion)
		sb.WriteString(")")
	}
	return sb.String()
}

// Unwrap returns the sentinel error, so errors.Is works on a ValidationError.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// Report holds the outcome of validating one document.
type Report struct {
	Errors   []ValidationError
	Warnings []ValidationError
}

// Valid reports whether the document has no errors.
func (r Report) Valid() bool {
	return len(r.Errors) == 0
}

// Validate checks result for:
//   - circular references
//   - handlers that do not split into a service and optional method
//   - references to keys the document does not define
//
// Unresolved references are errors when strict is set and warnings otherwise.
func Validate(result *scan.Result, strict bool) Report {
	var report Report
	filePath := result.Source

	graph := resolver.BuildDependencyGraph(result.Matches)
	if cycle := graph.FindCycle(); cycle != nil {
		report.Errors = append(report.Errors, ValidationError{
			FilePath:   filePath,
			Path:       cycle[0],
			Message:    fmt.Sprintf("%v: %s", resolver.ErrCircularReference, strings.Join(cycle, " -> ")),
			Suggestion: "point one of these keys at a value",
			Err:        resolver.ErrCircularReference,
		})
	}

	for _, m := range result.Matches {
		if !m.Reference.HasHandler() {
			continue
		}
		if _, err := token.ParseHandler(m.Reference.Handler); err != nil {
			report.Errors = append(report.Errors, ValidationError{
				FilePath:   filePath,
				Path:       m.Key,
				Message:    err.Error(),
				Suggestion: "use service or service:method",
				Err:        token.ErrInvalidHandler,
			})
		}
	}

	for _, m := range resolver.Unresolved(result) {
		ve := ValidationError{
			FilePath:   filePath,
			Path:       m.Key,
			Message:    fmt.Sprintf("%v: %q", resolver.ErrUnresolvedReference, m.Reference.Path),
			Suggestion: suggest(result, m.Reference.Path),
			Err:        resolver.ErrUnresolvedReference,
		}
		if strict {
			report.Errors = append(report.Errors, ve)
		} else {
			report.Warnings = append(report.Warnings, ve)
		}
	}

	return report
}

// suggest names a defined key sharing the last segment of missing.
func suggest(result *scan.Result, missing string) string {
	last := missing
	if i := strings.LastIndex(missing, "."); i >= 0 {
		last = missing[i+1:]
	}

	var candidates []string
	for key := range result.Values {
		if key == last || strings.HasSuffix(key, "."+last) {
			candidates = append(candidates, key)
		}
	}
	if len(candidates) == 0 {
		return ""
	}
	slices.Sort(candidates)
	return fmt.Sprintf("did you mean %q?", candidates[0])
}
