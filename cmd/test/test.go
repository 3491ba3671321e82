/*
Copyright 2026 Benny Powers. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

// Package test provides the test command for reftoken.
package test

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"bennypowers.dev/reftoken/cmd/internal/cli"
	"bennypowers.dev/reftoken/parser"
)

// Cmd is the test cobra command.
var Cmd = &cobra.Command{
	Use:   "test <candidate...>",
	Short: "Report whether candidates are references",
	Long:  `Test each candidate against the configured grammars and print true or false.`,
	Args:  cobra.MinimumNArgs(1),
	RunE:  run,
}

func run(cmd *cobra.Command, args []string) error {
	settings, err := cli.Load(cmd.Flags())
	if err != nil {
		return err
	}
	p, err := settings.Parser()
	if err != nil {
		return err
	}
	return testCandidates(cmd.Context(), cmd.OutOrStdout(), p, args)
}

func testCandidates(ctx context.Context, w io.Writer, p parser.Parser, candidates []string) error {
	for _, candidate := range candidates {
		ok, err := p.Test(candidate).Await(ctx)
		if err != nil {
			return fmt.Errorf("testing %q: %w", candidate, err)
		}
		if len(candidates) == 1 {
			fmt.Fprintln(w, ok)
			continue
		}
		fmt.Fprintf(w, "%-40s %t\n", candidate, ok)
	}
	return nil
}
