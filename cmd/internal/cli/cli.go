/*
Copyright 2026 Benny Powers. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

// Package cli holds the settings shared by the reftoken commands.
package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"bennypowers.dev/reftoken/config"
	"bennypowers.dev/reftoken/fs"
	"bennypowers.dev/reftoken/load"
	"bennypowers.dev/reftoken/parser"
)

// EnvPrefix prefixes the environment variables that override flags,
// e.g. REFTOKEN_BACKEND.
const EnvPrefix = "REFTOKEN"

// ErrNoFiles indicates that neither arguments nor config named a document.
var ErrNoFiles = errors.New("no files specified and no files found in config")

// Settings is the resolved configuration of one command invocation.
type Settings struct {
	Root   string
	FS     fs.FileSystem
	Config *config.Config
	Quiet  bool
}

// Load reads the config file under the working directory and applies
// flags and REFTOKEN_* environment variables over it.
func Load(flags *pflag.FlagSet) (*Settings, error) {
	return LoadFS(flags, fs.NewOSFileSystem(), ".")
}

// LoadFS is Load against an explicit filesystem and root.
func LoadFS(flags *pflag.FlagSet, filesystem fs.FileSystem, root string) (*Settings, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return nil, fmt.Errorf("error binding flags: %w", err)
		}
	}

	cfg := config.LoadOrDefault(filesystem, root)
	cfg.Merge(v)

	return &Settings{
		Root:   root,
		FS:     filesystem,
		Config: cfg,
		Quiet:  v.GetBool("quiet"),
	}, nil
}

// Parser builds the composite parser for the configured grammars.
func (s *Settings) Parser() (*parser.Composite, error) {
	return load.NewParser(s.Config, nil)
}

// Files returns args, or the documents named by the config when args is empty.
func (s *Settings) Files(args []string) ([]string, error) {
	files := args
	if len(files) == 0 {
		expanded, err := s.Config.ExpandFiles(s.FS, s.Root)
		if err != nil {
			return nil, fmt.Errorf("error expanding config files: %w", err)
		}
		files = expanded
	}
	if len(files) == 0 {
		return nil, ErrNoFiles
	}
	return files, nil
}

// Concurrency returns how many documents may be scanned at once.
func (s *Settings) Concurrency() int {
	if s.Config.Concurrency > 0 {
		return s.Config.Concurrency
	}
	return config.DefaultConcurrency
}

// LoadOptions returns the load options for one document. The parser is
// shared so that every document is scanned with the same grammars.
func (s *Settings) LoadOptions(p parser.Parser) load.Options {
	return load.Options{
		Root:    s.Root,
		FS:      s.FS,
		Config:  s.Config,
		Parser:  p,
		Fetcher: load.NewHTTPFetcher(load.DefaultMaxSize),
	}
}
