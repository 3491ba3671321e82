/*
Copyright 2026 Benny Powers. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

// Package validate provides the validate command for reftoken.
package validate

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"bennypowers.dev/reftoken/cmd/internal/cli"
	"bennypowers.dev/reftoken/internal/logger"
	"bennypowers.dev/reftoken/load"
	"bennypowers.dev/reftoken/parser"
	"bennypowers.dev/reftoken/validator"
)

// ErrValidationFailed indicates at least one document is invalid.
var ErrValidationFailed = errors.New("validation failed")

// Cmd is the validate cobra command.
var Cmd = &cobra.Command{
	Use:   "validate [files...]",
	Short: "Check the references in configuration documents",
	Long: `Validate that references in configuration documents form no cycles.
With --strict, references to missing keys are errors too.`,
	Args: cobra.ArbitraryArgs,
	RunE: run,
}

func init() {
	Cmd.Flags().Bool("strict", false, "Fail on unresolved references")
}

// report is the outcome of validating one document.
type report struct {
	Source     string
	References int
	Problems   []string
	Warnings   []string
}

func run(cmd *cobra.Command, args []string) error {
	settings, err := cli.Load(cmd.Flags())
	if err != nil {
		return err
	}
	files, err := settings.Files(args)
	if err != nil {
		return err
	}
	p, err := settings.Parser()
	if err != nil {
		return err
	}

	reports := validateFiles(cmd.Context(), settings, p, files)
	return printReports(cmd.OutOrStdout(), reports, settings.Quiet)
}

func validateFiles(ctx context.Context, settings *cli.Settings, p parser.Parser, files []string) []report {
	opts := settings.LoadOptions(p)
	reports := make([]report, 0, len(files))

	for _, file := range files {
		r := report{Source: file}

		doc, err := load.Load(ctx, file, opts)
		if err != nil {
			r.Problems = append(r.Problems, err.Error())
			reports = append(reports, r)
			continue
		}
		r.References = len(doc.Result.Matches)

		checked := validator.Validate(doc.Result, settings.Config.StrictFor(settings.Root, file))
		for _, ve := range checked.Errors {
			r.Problems = append(r.Problems, describe(ve))
		}
		for _, ve := range checked.Warnings {
			r.Warnings = append(r.Warnings, describe(ve))
		}

		reports = append(reports, r)
	}

	return reports
}

// describe renders ve without its file path, which the report carries.
func describe(ve validator.ValidationError) string {
	ve.FilePath = ""
	return ve.Error()
}

func printReports(w io.Writer, reports []report, quiet bool) error {
	hasErrors := false
	for _, r := range reports {
		if !quiet {
			fmt.Fprintf(w, "Validating %s...\n", r.Source)
		}
		for _, warning := range r.Warnings {
			logger.Warn("%s: %s", r.Source, warning)
		}
		for _, problem := range r.Problems {
			logger.Error("%s: %s", r.Source, problem)
			hasErrors = true
		}
		if !quiet && len(r.Problems) == 0 {
			fmt.Fprintf(w, "  %d references\n", r.References)
		}
	}

	if hasErrors {
		return ErrValidationFailed
	}
	if !quiet {
		fmt.Fprintln(w, "All files valid.")
	}
	return nil
}
