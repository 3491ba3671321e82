/*
Copyright 2026 Benny Powers. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

// Package cmd provides CLI commands for reftoken.
package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"bennypowers.dev/reftoken/async"
	"bennypowers.dev/reftoken/cmd/parse"
	"bennypowers.dev/reftoken/cmd/scan"
	"bennypowers.dev/reftoken/cmd/test"
	"bennypowers.dev/reftoken/cmd/validate"
	"bennypowers.dev/reftoken/cmd/version"
	"bennypowers.dev/reftoken/internal/logger"
)

var rootCmd = &cobra.Command{
	Use:   "reftoken",
	Short: "Recognize and decode references in configuration values",
	Long: `reftoken recognizes reference tokens such as #handler!path# and %parameter%
in configuration values, and checks the references of YAML and JSON documents.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.String("backend", "", fmt.Sprintf("Async backend (%s)", strings.Join(async.Backends(), ", ")))
	flags.Int("concurrency", 0, "Pool size and number of documents scanned at once")
	flags.BoolP("quiet", "q", false, "Only output errors")
	flags.Bool("debug", false, "Log debug messages")

	rootCmd.AddCommand(test.Cmd)
	rootCmd.AddCommand(parse.Cmd)
	rootCmd.AddCommand(scan.Cmd)
	rootCmd.AddCommand(validate.Cmd)
	rootCmd.AddCommand(version.Cmd)
}

func setup(cmd *cobra.Command, args []string) error {
	debug, _ := cmd.Flags().GetBool("debug")
	quiet, _ := cmd.Flags().GetBool("quiet")
	if quiet && debug {
		return fmt.Errorf("--quiet and --debug are mutually exclusive")
	}
	if quiet {
		logger.SetOutput(io.Discard)
	}
	logger.SetDebug(debug)
	return nil
}
