/*
Copyright 2026 Benny Powers. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

// Package scan provides the scan command for reftoken.
package scan

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/sourcegraph/conc/pool"
	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"bennypowers.dev/reftoken/cmd/internal/cli"
	"bennypowers.dev/reftoken/internal/logger"
	"bennypowers.dev/reftoken/load"
	"bennypowers.dev/reftoken/parser"
	refscan "bennypowers.dev/reftoken/scan"
)

// ErrScanFailed indicates at least one document could not be scanned.
var ErrScanFailed = errors.New("scan failed")

// Cmd is the scan cobra command.
var Cmd = &cobra.Command{
	Use:   "scan [files...]",
	Short: "List the references in configuration documents",
	Long: `Scan YAML and JSON documents for string values that are references.
Files default to those listed in .config/reftoken.yaml.`,
	Args: cobra.ArbitraryArgs,
	RunE: run,
}

func init() {
	Cmd.Flags().StringP("format", "f", "table", "Output format: table, json")
	Cmd.Flags().StringP("output", "o", "", "Write output to a file instead of stdout")
}

// fileResult is the outcome of scanning one document.
type fileResult struct {
	Source string          `json:"source"`
	Result *refscan.Result `json:"result,omitempty"`
	Error  string          `json:"error,omitempty"`
	err    error
}

func run(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")
	output, _ := cmd.Flags().GetString("output")

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

	results := scanFiles(cmd.Context(), settings, p, files)

	var buf strings.Builder
	switch format {
	case "json":
		err = outputJSON(&buf, results)
	default:
		outputTable(&buf, results)
	}
	if err != nil {
		return err
	}

	if output != "" {
		if err := settings.FS.WriteFile(output, []byte(buf.String()), 0644); err != nil {
			return fmt.Errorf("error writing %s: %w", output, err)
		}
		if !settings.Quiet {
			logger.Info("wrote %s", output)
		}
	} else {
		fmt.Fprint(cmd.OutOrStdout(), buf.String())
	}

	return failures(results)
}

// scanFiles loads every file with at most settings.Concurrency() documents
// in flight. Results keep the order of files.
func scanFiles(ctx context.Context, settings *cli.Settings, p parser.Parser, files []string) []fileResult {
	opts := settings.LoadOptions(p)
	tasks := pool.New().WithMaxGoroutines(settings.Concurrency())

	results := make([]fileResult, len(files))
	for i, file := range files {
		tasks.Go(func() {
			doc, err := load.Load(ctx, file, opts)
			if err != nil {
				logger.Error("%s: %v", file, err)
				results[i] = fileResult{Source: file, Error: err.Error(), err: err}
				return
			}
			results[i] = fileResult{Source: file, Result: doc.Result}
		})
	}
	tasks.Wait()

	return results
}

func outputTable(w io.Writer, results []fileResult) {
	title := cases.Title(language.English)
	for _, r := range results {
		if r.Result == nil {
			continue
		}
		fmt.Fprintf(w, "%s (%d references in %d strings)\n", r.Source, len(r.Result.Matches), r.Result.Strings)
		for _, m := range r.Result.Matches {
			handler := m.Reference.Handler
			if handler == "" {
				handler = "-"
			}
			fmt.Fprintf(w, "  %-32s %-10s %-24s %s\n", m.Key, title.String(m.Reference.Kind.String()), m.Reference.Path, handler)
		}
	}
}

func outputJSON(w io.Writer, results []fileResult) error {
	out, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return fmt.Errorf("error marshaling results: %w", err)
	}
	_, err = fmt.Fprintln(w, string(out))
	return err
}

func failures(results []fileResult) error {
	var errs []error
	for _, r := range results {
		if r.err != nil {
			errs = append(errs, r.err)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrScanFailed, errors.Join(errs...))
	}
	return nil
}
