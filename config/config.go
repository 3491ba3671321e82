/*
Copyright 2026 Benny Powers. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

// Package config provides configuration loading for reftoken.
package config

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"bennypowers.dev/reftoken/async"
	"bennypowers.dev/reftoken/parser"
	"bennypowers.dev/reftoken/template"
)

// DefaultConcurrency is the pool size used when none is configured.
const DefaultConcurrency = 4

// Config represents the reftoken configuration.
type Config struct {
	// Backend selects the async backend: inline, goroutine or pool.
	Backend string `yaml:"backend" json:"backend"`

	// Concurrency bounds the pool backend and concurrent document scans.
	Concurrency int `yaml:"concurrency" json:"concurrency"`

	// Grammars lists the grammars to register, in priority order.
	Grammars []GrammarSpec `yaml:"grammars" json:"grammars"`

	// Files specifies documents to scan (paths, globs or URLs).
	Files []FileSpec `yaml:"files" json:"files"`

	// Strict makes unresolved references fail validation.
	Strict bool `yaml:"strict" json:"strict"`
}

// GrammarSpec declares one grammar of the composite.
// It can be specified as a bare grammar name or as an object.
type GrammarSpec struct {
	// Name labels the grammar in decoded references.
	Name string `yaml:"name" json:"name"`

	// Kind is the registry name of the grammar. Defaults to Name.
	Kind string `yaml:"kind" json:"kind"`

	// Pattern is the regular expression of a pattern grammar.
	Pattern string `yaml:"pattern" json:"pattern"`

	// Guard is an optional expression gating a pattern grammar.
	Guard string `yaml:"guard" json:"guard"`

	// Prepend registers the grammar ahead of those already added.
	Prepend bool `yaml:"prepend" json:"prepend"`
}

// FileSpec represents a document to scan.
// It can be specified as a simple string path or as an object with overrides.
type FileSpec struct {
	// Path is the file path (supports globs and http(s) URLs).
	Path string `yaml:"path" json:"path"`

	// Strict overrides the global Strict setting for this file.
	Strict *bool `yaml:"strict" json:"strict"`
}

// UnmarshalYAML handles both string and object forms for GrammarSpec.
func (g *GrammarSpec) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		g.Name = node.Value
		return nil
	}

	type rawGrammarSpec GrammarSpec
	return node.Decode((*rawGrammarSpec)(g))
}

// UnmarshalJSON handles both string and object forms for GrammarSpec.
func (g *GrammarSpec) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		g.Name = s
		return nil
	}

	type rawGrammarSpec GrammarSpec
	return json.Unmarshal(data, (*rawGrammarSpec)(g))
}

// KindOrName returns the registry name used to build the grammar.
func (g GrammarSpec) KindOrName() string {
	if g.Kind != "" {
		return g.Kind
	}
	return g.Name
}

// Options returns the parser options for the grammar.
func (g GrammarSpec) Options() parser.Options {
	settings := map[string]any{}
	if g.Pattern != "" {
		settings[template.SettingPattern] = g.Pattern
	}
	if g.Guard != "" {
		settings[template.SettingGuard] = g.Guard
	}
	return parser.Options{Name: g.Name, Settings: settings}
}

// UnmarshalYAML handles both string and object forms for FileSpec.
func (f *FileSpec) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		f.Path = node.Value
		return nil
	}

	type rawFileSpec FileSpec
	return node.Decode((*rawFileSpec)(f))
}

// UnmarshalJSON handles both string and object forms for FileSpec.
func (f *FileSpec) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		f.Path = s
		return nil
	}

	type rawFileSpec FileSpec
	return json.Unmarshal(data, (*rawFileSpec)(f))
}

// Default returns a config with default values.
func Default() *Config {
	return &Config{
		Backend:     async.BackendInline,
		Concurrency: DefaultConcurrency,
		Grammars: []GrammarSpec{
			{Name: template.ResourceGrammar},
			{Name: template.ParameterGrammar},
		},
	}
}

// Adapter returns the async adapter selected by Backend.
func (c *Config) Adapter() (async.Adapter, error) {
	return async.FromName(c.Backend, c.concurrency())
}

// BuildComposite builds the composite parser declared by Grammars, in
// order. Grammars marked Prepend go ahead of those already added. With no
// grammars configured, the resource and parameter grammars are used.
func (c *Config) BuildComposite(adapter async.Adapter, registry *template.Registry) (*parser.Composite, error) {
	if registry == nil {
		registry = template.DefaultRegistry()
	}

	grammars := c.Grammars
	if len(grammars) == 0 {
		grammars = Default().Grammars
	}

	composite := parser.NewComposite(adapter, parser.Options{Name: "config"})
	for i, spec := range grammars {
		kind := spec.KindOrName()
		if kind == "" {
			return nil, fmt.Errorf("grammar %d: missing name or kind", i)
		}

		p, err := registry.Build(kind, composite.Adapter(), spec.Options())
		if err != nil {
			return nil, fmt.Errorf("grammar %q: %w", spec.Name, err)
		}
		if _, err := composite.Add(p, spec.Prepend); err != nil {
			return nil, fmt.Errorf("grammar %q: %w", spec.Name, err)
		}
	}

	return composite, nil
}

// StrictFor reports whether unresolved references in path fail validation.
// File-level overrides take precedence over global config. Relative paths
// and globs in Files are resolved against rootDir.
func (c *Config) StrictFor(rootDir, path string) bool {
	for _, spec := range c.Files {
		if spec.Strict != nil && specMatches(rootDir, spec.Path, path) {
			return *spec.Strict
		}
	}
	return c.Strict
}

// FilePaths returns the list of file paths from all FileSpecs.
func (c *Config) FilePaths() []string {
	paths := make([]string, 0, len(c.Files))
	for _, spec := range c.Files {
		paths = append(paths, spec.Path)
	}
	return paths
}

// Merge applies values set on v (flags, environment) over the config.
func (c *Config) Merge(v *viper.Viper) {
	if v == nil {
		return
	}
	if v.IsSet("backend") && v.GetString("backend") != "" {
		c.Backend = v.GetString("backend")
	}
	if v.IsSet("concurrency") && v.GetInt("concurrency") > 0 {
		c.Concurrency = v.GetInt("concurrency")
	}
	if v.IsSet("strict") && v.GetBool("strict") {
		c.Strict = true
	}
}

func (c *Config) concurrency() int {
	if c.Concurrency > 0 {
		return c.Concurrency
	}
	return DefaultConcurrency
}
