/*
Copyright 2026 Benny Powers. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

package validator_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"bennypowers.dev/reftoken/async"
	"bennypowers.dev/reftoken/resolver"
	"bennypowers.dev/reftoken/scan"
	"bennypowers.dev/reftoken/template"
	"bennypowers.dev/reftoken/testutil"
	"bennypowers.dev/reftoken/token"
	"bennypowers.dev/reftoken/validator"
)

func scanDoc(t *testing.T, doc string) *scan.Result {
	t.Helper()
	result, err := scan.Scan(context.Background(), []byte(doc), template.NewDefault(async.Inline()))
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	result.Source = "doc.yaml"
	return result
}

func TestValidate_Valid(t *testing.T) {
	data := testutil.LoadFixtureFile(t, "fixtures/documents/app/app.yaml")
	result, err := scan.Scan(context.Background(), data, template.NewDefault(async.Inline()))
	if err != nil {
		t.Fatalf("scan: %v", err)
	}

	report := validator.Validate(result, false)
	if !report.Valid() {
		t.Errorf("expected no errors, got %v", report.Errors)
	}
	if len(report.Warnings) != 2 {
		t.Errorf("expected 2 warnings for unresolved references, got %d: %v", len(report.Warnings), report.Warnings)
	}
}

func TestValidate_Strict(t *testing.T) {
	result := scanDoc(t, "log:\n  default: stdout\nhandler: '#logger!logging.default#'\n")

	report := validator.Validate(result, true)
	if len(report.Errors) != 1 {
		t.Fatalf("expected 1 error, got %d: %v", len(report.Errors), report.Errors)
	}

	err := report.Errors[0]
	if !errors.Is(&err, resolver.ErrUnresolvedReference) {
		t.Errorf("expected ErrUnresolvedReference, got %v", err.Err)
	}
	if err.Path != "handler" {
		t.Errorf("Path = %q, want handler", err.Path)
	}
	if err.Suggestion != `did you mean "log.default"?` {
		t.Errorf("Suggestion = %q", err.Suggestion)
	}
	if !strings.HasPrefix(err.Error(), "doc.yaml: handler: ") {
		t.Errorf("Error() = %q", err.Error())
	}
}

func TestValidate_Cycle(t *testing.T) {
	data := testutil.LoadFixtureFile(t, "fixtures/documents/cycle/cycle.yaml")
	result, err := scan.Scan(context.Background(), data, template.NewDefault(async.Inline()))
	if err != nil {
		t.Fatalf("scan: %v", err)
	}

	report := validator.Validate(result, true)
	if report.Valid() {
		t.Fatal("expected cycle error")
	}
	ve := report.Errors[0]
	if !errors.Is(&ve, resolver.ErrCircularReference) {
		t.Errorf("expected ErrCircularReference, got %v", ve.Err)
	}
	if !strings.Contains(ve.Message, "a -> b -> c -> a") {
		t.Errorf("Message = %q", ve.Message)
	}
}

func TestValidate_InvalidHandler(t *testing.T) {
	result := scanDoc(t, "db: x\nscoped: '#@!db#'\nmethod: '#svc:!db#'\nok: '#svc:call!db#'\n")

	report := validator.Validate(result, true)
	if len(report.Errors) != 2 {
		t.Fatalf("expected 2 errors, got %d: %v", len(report.Errors), report.Errors)
	}
	for _, ve := range report.Errors {
		if !errors.Is(&ve, token.ErrInvalidHandler) {
			t.Errorf("expected ErrInvalidHandler for %s, got %v", ve.Path, ve.Err)
		}
	}
}
