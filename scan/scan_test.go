/*
Copyright 2026 Benny Powers. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

package scan_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bennypowers.dev/reftoken/async"
	"bennypowers.dev/reftoken/parser"
	"bennypowers.dev/reftoken/scan"
	"bennypowers.dev/reftoken/template"
	"bennypowers.dev/reftoken/testutil"
	"bennypowers.dev/reftoken/token"
)

func TestScan_YAML(t *testing.T) {
	data := testutil.LoadFixtureFile(t, "fixtures/documents/app/app.yaml")

	result, err := scan.Scan(context.Background(), data, template.NewDefault(async.Inline()))
	require.NoError(t, err)

	assert.Equal(t, 7, result.Strings)

	keys := make([]string, 0, len(result.Matches))
	for _, m := range result.Matches {
		keys = append(keys, m.Key)
	}
	assert.Equal(t, []string{"cache.backend", "cache.ttl", "handlers.0", "mailer.transport"}, keys)

	transport := result.Matches[3]
	assert.Equal(t, "#@factory:smtp!mail.transport#", transport.Value)
	assert.Equal(t, "mail.transport", transport.Reference.Path)
	assert.Equal(t, "@factory:smtp", transport.Reference.Handler)

	assert.Equal(t, token.KindParameter, result.Matches[1].Reference.Kind)

	assert.Contains(t, result.Values, "database")
	assert.Contains(t, result.Values, "database.port")
	assert.Equal(t, "plain", result.Values["handlers.1"])
}

func TestScan_JSONWithComments(t *testing.T) {
	data := testutil.LoadFixtureFile(t, "fixtures/documents/app/services/queue.json")

	result, err := scan.Scan(context.Background(), data, template.NewDefault(async.Goroutine()))
	require.NoError(t, err)

	assert.Equal(t, 3, result.Strings)
	require.Len(t, result.Matches, 2)
	assert.Equal(t, "queue.broker", result.Matches[0].Key)
	assert.Equal(t, "transport.amqp", result.Matches[0].Reference.Path)
	assert.Equal(t, "missing.key", result.Matches[1].Reference.Path)
}

func TestDecode_Invalid(t *testing.T) {
	tests := map[string]string{
		"bad json":    `{"a": `,
		"bad yaml":    "a: [b",
		"scalar root": "just a string",
		"list root":   "- a\n- b\n",
	}

	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := scan.Decode([]byte(doc))
			assert.ErrorIs(t, err, scan.ErrInvalidDocument)
		})
	}
}

func TestWalk(t *testing.T) {
	doc, err := scan.Decode([]byte("b:\n  1: x\n  list: [y, z]\na: w\n"))
	require.NoError(t, err)

	var keys []string
	for _, n := range scan.Walk(doc) {
		keys = append(keys, n.Key)
	}
	assert.Equal(t, []string{"a", "b", "b.1", "b.list", "b.list.0", "b.list.1"}, keys)
}

type failing struct{}

func (failing) Test(any) *async.Deferred[bool] {
	return async.Reject[bool](nil, errors.New("grammar exploded"))
}

func (failing) Parse(any) *async.Deferred[token.Reference] {
	return async.Reject[token.Reference](nil, errors.New("unreachable"))
}

func (f failing) Clone() parser.Parser { return f }

func TestScan_ParserError(t *testing.T) {
	c := template.NewDefault(async.Inline())
	c.MustAdd(failing{}, true)

	_, err := scan.Scan(context.Background(), []byte("svc:\n  db: '#database#'\n"), c)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "svc.db")
	assert.Contains(t, err.Error(), "grammar exploded")
}
