/*
Copyright 2026 Benny Powers. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

// Package parse provides the parse command for reftoken.
package parse

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"bennypowers.dev/reftoken/cmd/internal/cli"
	"bennypowers.dev/reftoken/parser"
	"bennypowers.dev/reftoken/token"
)

// ErrUnparsed indicates at least one candidate was not a reference.
var ErrUnparsed = errors.New("some candidates could not be parsed")

// Cmd is the parse cobra command.
var Cmd = &cobra.Command{
	Use:   "parse <candidate...>",
	Short: "Decode references",
	Long:  `Decode each candidate with the first configured grammar that accepts it.`,
	Args:  cobra.MinimumNArgs(1),
	RunE:  run,
}

func init() {
	Cmd.Flags().StringP("format", "f", "text", "Output format (text, json)")
}

type result struct {
	Candidate string           `json:"candidate"`
	Reference *token.Reference `json:"reference,omitempty"`
	Service   string           `json:"service,omitempty"`
	Method    string           `json:"method,omitempty"`
	Error     string           `json:"error,omitempty"`
}

func run(cmd *cobra.Command, args []string) error {
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("error reading format flag: %w", err)
	}

	settings, err := cli.Load(cmd.Flags())
	if err != nil {
		return err
	}
	p, err := settings.Parser()
	if err != nil {
		return err
	}

	results, err := parseAll(cmd.Context(), p, args)
	if err != nil {
		return err
	}

	switch format {
	case "json":
		err = outputJSON(cmd.OutOrStdout(), results)
	default:
		outputText(cmd.OutOrStdout(), results)
	}
	if err != nil {
		return err
	}

	return failures(results)
}

// parseAll decodes every candidate. A candidate nobody accepts is recorded
// in its result; any other error aborts.
func parseAll(ctx context.Context, p parser.Parser, candidates []string) ([]result, error) {
	results := make([]result, 0, len(candidates))
	for _, candidate := range candidates {
		ref, err := p.Parse(candidate).Await(ctx)
		switch {
		case errors.Is(err, parser.ErrNoAccepter):
			results = append(results, result{Candidate: candidate, Error: err.Error()})
		case err != nil:
			return nil, fmt.Errorf("parsing %q: %w", candidate, err)
		default:
			r := result{Candidate: candidate, Reference: &ref}
			if h, err := token.ParseHandler(ref.Handler); err == nil {
				r.Service = h.Service
				r.Method = h.Method
			}
			results = append(results, r)
		}
	}
	return results, nil
}

func outputText(w io.Writer, results []result) {
	for _, r := range results {
		if r.Reference == nil {
			fmt.Fprintf(w, "%s\n  error: %s\n", r.Candidate, r.Error)
			continue
		}
		ref := r.Reference
		fmt.Fprintf(w, "%s\n", r.Candidate)
		fmt.Fprintf(w, "  kind:    %s\n", ref.Kind)
		fmt.Fprintf(w, "  grammar: %s\n", ref.Grammar)
		fmt.Fprintf(w, "  path:    %s\n", ref.Path)
		if ref.HasHandler() {
			fmt.Fprintf(w, "  handler: %s\n", ref.Handler)
			if r.Service != "" {
				fmt.Fprintf(w, "  service: %s\n", r.Service)
			}
			if r.Method != "" {
				fmt.Fprintf(w, "  method:  %s\n", r.Method)
			}
		}
	}
}

func outputJSON(w io.Writer, results []result) error {
	out, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return fmt.Errorf("error marshaling results: %w", err)
	}
	_, err = fmt.Fprintln(w, string(out))
	return err
}

func failures(results []result) error {
	failed := 0
	for _, r := range results {
		if r.Reference == nil {
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%w: %d of %d", ErrUnparsed, failed, len(results))
	}
	return nil
}
