/*
Copyright 2026 Benny Powers. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

package template_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bennypowers.dev/reftoken/async"
	"bennypowers.dev/reftoken/parser"
	"bennypowers.dev/reftoken/template"
	"bennypowers.dev/reftoken/token"
)

func await[T any](t *testing.T, d *async.Deferred[T]) (T, error) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return d.Await(ctx)
}

func TestResource(t *testing.T) {
	yes := []struct {
		candidate string
		path      string
		handler   string
	}{
		{candidate: "#resource#", path: "resource"},
		{candidate: "#handler!resource#", path: "resource", handler: "handler"},
		{candidate: "#@handler!resource#", path: "resource", handler: "@handler"},
		{candidate: "#@handler:method!resource#", path: "resource", handler: "@handler:method"},
		{candidate: "#db.primary#", path: "db.primary"},
	}

	no := []string{
		"#parameter",
		"parameter#",
		"parameter",
		"#",
		"##",
		"#!resource#",
		"#handler!#",
		"#a!b!c#",
		"#a#b#",
		" #resource#",
		"",
	}

	r := template.NewResource(async.Inline(), parser.Options{})

	for _, tt := range yes {
		t.Run(tt.candidate, func(t *testing.T) {
			ok, err := await(t, r.Test(tt.candidate))
			require.NoError(t, err)
			require.True(t, ok)

			ref, err := await(t, r.Parse(tt.candidate))
			require.NoError(t, err)
			assert.Equal(t, token.Reference{
				Raw:     tt.candidate,
				Path:    tt.path,
				Handler: tt.handler,
				Kind:    token.KindResource,
				Grammar: template.ResourceGrammar,
			}, ref)
		})
	}

	for _, candidate := range no {
		t.Run("no "+candidate, func(t *testing.T) {
			ok, err := await(t, r.Test(candidate))
			require.NoError(t, err)
			assert.False(t, ok)

			_, err = await(t, r.Parse(candidate))
			assert.ErrorIs(t, err, parser.ErrNotAccepted)
		})
	}
}

func TestLeafInvalidInput(t *testing.T) {
	pattern, err := template.NewPattern(nil, parser.Options{Settings: map[string]any{
		template.SettingPattern: `\$\{(?P<path>[a-z]+)\}`,
	}})
	require.NoError(t, err)

	leaves := map[string]parser.Parser{
		"resource":  template.NewResource(nil, parser.Options{}),
		"parameter": template.NewParameter(nil, parser.Options{}),
		"pattern":   pattern,
	}

	for name, leaf := range leaves {
		t.Run(name, func(t *testing.T) {
			for _, candidate := range []any{42, nil, []byte("#resource#")} {
				_, err := await(t, leaf.Test(candidate))
				assert.ErrorIs(t, err, parser.ErrInvalidInput)

				_, err = await(t, leaf.Parse(candidate))
				assert.ErrorIs(t, err, parser.ErrInvalidInput)
			}
		})
	}
}

func TestParameter(t *testing.T) {
	p := template.NewParameter(async.Inline(), parser.Options{Name: "params"})

	ok, err := await(t, p.Test("%kernel.debug%"))
	require.NoError(t, err)
	assert.True(t, ok)

	ref, err := await(t, p.Parse("%kernel.debug%"))
	require.NoError(t, err)
	assert.Equal(t, "kernel.debug", ref.Path)
	assert.Equal(t, token.KindParameter, ref.Kind)
	assert.Equal(t, "params", ref.Grammar)
	assert.False(t, ref.HasHandler())

	for _, candidate := range []string{"%%", "%a b%", "%a", "a%", "#resource#"} {
		ok, err := await(t, p.Test(candidate))
		require.NoError(t, err)
		assert.False(t, ok, candidate)
	}
}

func TestPattern(t *testing.T) {
	p, err := template.NewPattern(async.Inline(), parser.Options{
		Name: "env",
		Settings: map[string]any{
			template.SettingPattern: `\$\{(?:(?P<handler>[a-z]+):)?(?P<path>[A-Z_]+)\}`,
			template.SettingGuard:   `len(candidate) < 20`,
		},
	})
	require.NoError(t, err)
	assert.Equal(t, `\$\{(?:(?P<handler>[a-z]+):)?(?P<path>[A-Z_]+)\}`, p.Source())

	tests := []struct {
		candidate string
		ok        bool
		path      string
		handler   string
	}{
		{candidate: "${HOME}", ok: true, path: "HOME"},
		{candidate: "${file:SECRET}", ok: true, path: "SECRET", handler: "file"},
		{candidate: "prefix ${HOME}", ok: false},
		{candidate: "${home}", ok: false},
		{candidate: "${VERY_LONG_VARIABLE_NAME}", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.candidate, func(t *testing.T) {
			ok, err := await(t, p.Test(tt.candidate))
			require.NoError(t, err)
			require.Equal(t, tt.ok, ok)
			if !ok {
				return
			}

			ref, err := await(t, p.Parse(tt.candidate))
			require.NoError(t, err)
			assert.Equal(t, tt.path, ref.Path)
			assert.Equal(t, tt.handler, ref.Handler)
			assert.Equal(t, token.KindPattern, ref.Kind)
			assert.Equal(t, "env", ref.Grammar)
		})
	}
}

func TestPatternInvalid(t *testing.T) {
	tests := []struct {
		name     string
		settings map[string]any
	}{
		{name: "missing pattern", settings: nil},
		{name: "bad regexp", settings: map[string]any{template.SettingPattern: `(?P<path>[a-z`}},
		{name: "no path group", settings: map[string]any{template.SettingPattern: `\$\{([a-z]+)\}`}},
		{name: "bad guard", settings: map[string]any{
			template.SettingPattern: `(?P<path>[a-z]+)`,
			template.SettingGuard:   `candidate +`,
		}},
		{name: "guard not bool", settings: map[string]any{
			template.SettingPattern: `(?P<path>[a-z]+)`,
			template.SettingGuard:   `len(candidate)`,
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := template.NewPattern(nil, parser.Options{Settings: tt.settings})
			assert.ErrorIs(t, err, parser.ErrInvalidParser)
		})
	}
}

func TestPatternClone(t *testing.T) {
	p, err := template.NewPattern(nil, parser.Options{Settings: map[string]any{
		template.SettingPattern: `<(?P<path>\w+)>`,
	}})
	require.NoError(t, err)

	clone, ok := p.Clone().(*template.Pattern)
	require.True(t, ok)
	assert.NotSame(t, p, clone)
	assert.Equal(t, p.Source(), clone.Source())

	ref, err := await(t, clone.Parse("<db>"))
	require.NoError(t, err)
	assert.Equal(t, "db", ref.Path)
}

func TestRegistry(t *testing.T) {
	r := template.DefaultRegistry()
	assert.Equal(t, []string{"parameter", "pattern", "resource"}, r.Names())

	p, err := r.Build("resource", async.Inline(), parser.Options{Name: "refs"})
	require.NoError(t, err)
	ref, err := await(t, p.Parse("#h!x#"))
	require.NoError(t, err)
	assert.Equal(t, "refs", ref.Grammar)

	_, err = r.Build("service", async.Inline(), parser.Options{})
	assert.ErrorIs(t, err, template.ErrUnknownGrammar)

	_, err = r.Build("pattern", async.Inline(), parser.Options{})
	assert.ErrorIs(t, err, parser.ErrInvalidParser)

	err = r.Register("resource", func(async.Adapter, parser.Options) (parser.Parser, error) { return nil, nil })
	assert.ErrorIs(t, err, template.ErrDuplicateGrammar)

	assert.ErrorIs(t, r.Register("", nil), parser.ErrInvalidParser)
}

func TestDefaultComposite(t *testing.T) {
	for name, a := range map[string]async.Adapter{
		"inline":    async.Inline(),
		"goroutine": async.Goroutine(),
		"pool":      async.Pool(2),
	} {
		t.Run(name, func(t *testing.T) {
			c := template.NewDefault(a)
			require.Equal(t, 2, c.Len())

			for candidate, want := range map[string]bool{
				"#handler!resource#": true,
				"%parameter%":        true,
				"#parameter":         false,
				"plain value":        false,
			} {
				ok, err := await(t, c.Test(candidate))
				require.NoError(t, err)
				assert.Equal(t, want, ok, candidate)
			}

			ref, err := await(t, c.Parse("#@handler:method!resource#"))
			require.NoError(t, err)
			assert.Equal(t, "resource", ref.Path)
			assert.Equal(t, "@handler:method", ref.Handler)

			ref, err = await(t, c.Parse("%parameter%"))
			require.NoError(t, err)
			assert.Equal(t, token.KindParameter, ref.Kind)

			_, err = await(t, c.Parse("parameter#"))
			assert.ErrorIs(t, err, parser.ErrNoAccepter)

			_, err = await(t, c.Test(42))
			assert.ErrorIs(t, err, parser.ErrInvalidInput)

			_, err = await(t, c.Parse(42))
			assert.ErrorIs(t, err, parser.ErrInvalidInput)
			assert.NotErrorIs(t, err, parser.ErrNoAccepter)
		})
	}
}

func TestPriorityByRegistrationOrder(t *testing.T) {
	a := async.Inline()
	catchAll, err := template.NewPattern(a, parser.Options{
		Name:     "catch-all",
		Settings: map[string]any{template.SettingPattern: `#(?P<path>.+)#`},
	})
	require.NoError(t, err)

	c := template.NewDefault(a)
	c.MustAdd(catchAll, false)

	ref, err := await(t, c.Parse("#h!x#"))
	require.NoError(t, err)
	assert.Equal(t, template.ResourceGrammar, ref.Grammar)

	c.MustAdd(catchAll, true)
	ref, err = await(t, c.Parse("#h!x#"))
	require.NoError(t, err)
	assert.Equal(t, "catch-all", ref.Grammar)
	assert.Equal(t, "h!x", ref.Path)
}
