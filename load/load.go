/*
Copyright 2026 Benny Powers. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

// Package load provides a high-level API for finding references in
// configuration documents.
package load

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"bennypowers.dev/reftoken/config"
	"bennypowers.dev/reftoken/fs"
	"bennypowers.dev/reftoken/parser"
	"bennypowers.dev/reftoken/resolver"
	"bennypowers.dev/reftoken/scan"
	"bennypowers.dev/reftoken/template"
)

// ErrNoFetcher indicates a remote source was requested without a Fetcher.
var ErrNoFetcher = errors.New("remote source requires a fetcher")

// Options configures how documents are loaded.
type Options struct {
	// Root is the directory relative paths and the config file are resolved from.
	Root string

	// FS is the filesystem to use. Defaults to OS filesystem if nil.
	FS fs.FileSystem

	// Config overrides the config file found under Root.
	Config *config.Config

	// Parser overrides the composite built from the config grammars.
	Parser parser.Parser

	// Registry supplies the grammars named by the config.
	// Defaults to template.DefaultRegistry().
	Registry *template.Registry

	// Fetcher enables http(s) sources. Nil means local files only.
	Fetcher Fetcher

	// FetchTimeout is the maximum time to wait for a network fetch.
	// Defaults to DefaultTimeout when zero. Has no effect if Fetcher is nil.
	FetchTimeout time.Duration
}

// Document is a loaded, scanned document.
type Document struct {
	// Source is the path or URL the document was read from.
	Source string

	// Result holds the references found in the document.
	Result *scan.Result

	// Graph links each referencing key to the path it names.
	Graph *resolver.DependencyGraph
}

// Load reads source and finds the references in its string values.
//
// The source can be:
//   - Local file path: "app.yaml" or "/path/to/app.json"
//   - http(s) URL, when Options.Fetcher is set
//
// The loading process:
//  1. Loads config from .config/reftoken.yaml unless Options.Config is set
//  2. Builds the composite parser from the config grammars unless Options.Parser is set
//  3. Reads the document from the filesystem or the network
//  4. Scans every string value
//  5. Builds the reference graph
func Load(ctx context.Context, source string, opts Options) (*Document, error) {
	filesystem := opts.FS
	if filesystem == nil {
		filesystem = fs.NewOSFileSystem()
	}

	root := opts.Root
	if root == "" {
		root = "."
	}
	if !filepath.IsAbs(root) {
		absRoot, err := filepath.Abs(root)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve root path: %w", err)
		}
		root = absRoot
	}

	cfg := opts.Config
	if cfg == nil {
		cfg = config.LoadOrDefault(filesystem, root)
	}

	p := opts.Parser
	if p == nil {
		composite, err := NewParser(cfg, opts.Registry)
		if err != nil {
			return nil, err
		}
		p = composite
	}

	content, err := readSource(ctx, source, root, filesystem, opts.Fetcher, opts.FetchTimeout)
	if err != nil {
		return nil, err
	}

	result, err := scan.Scan(ctx, content, p)
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", source, err)
	}
	result.Source = source

	return &Document{
		Source: source,
		Result: result,
		Graph:  resolver.BuildDependencyGraph(result.Matches),
	}, nil
}

// NewParser builds the composite parser described by cfg.
func NewParser(cfg *config.Config, registry *template.Registry) (*parser.Composite, error) {
	adapter, err := cfg.Adapter()
	if err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	composite, err := cfg.BuildComposite(adapter, registry)
	if err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return composite, nil
}

// readSource reads a local file or fetches a URL.
func readSource(ctx context.Context, source, root string, filesystem fs.FileSystem, fetcher Fetcher, fetchTimeout time.Duration) ([]byte, error) {
	if config.IsURL(source) {
		if fetcher == nil {
			return nil, fmt.Errorf("%w: %s", ErrNoFetcher, source)
		}
		if fetchTimeout == 0 {
			fetchTimeout = DefaultTimeout
		}
		ctx, cancel := context.WithTimeout(ctx, fetchTimeout)
		defer cancel()
		return fetcher.Fetch(ctx, source)
	}

	path := source
	if !filepath.IsAbs(path) {
		path = filepath.Join(root, path)
	}

	content, err := filesystem.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return content, nil
}
