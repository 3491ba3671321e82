/*
Copyright 2026 Benny Powers. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

// Package scan finds reference tokens in the string values of
// configuration documents.
package scan

import (
	"context"
	"fmt"

	"bennypowers.dev/reftoken/internal/logger"
	"bennypowers.dev/reftoken/parser"
	"bennypowers.dev/reftoken/token"
)

// Match is a document value recognized as a reference.
type Match struct {
	// Key is the dotted path of the value.
	Key string `json:"key"`

	// Value is the raw string value.
	Value string `json:"value"`

	// Reference is the decoded reference.
	Reference token.Reference `json:"reference"`
}

// Result holds the references found in one document.
type Result struct {
	// Source names the scanned document.
	Source string `json:"source,omitempty"`

	// Matches lists recognized references in key order.
	Matches []Match `json:"matches"`

	// Strings counts the string values tested.
	Strings int `json:"strings"`

	// Values maps every key of the document, interior nodes included,
	// to its value.
	Values map[string]any `json:"-"`
}

// Scan decodes data and tests every string value against p.
func Scan(ctx context.Context, data []byte, p parser.Parser) (*Result, error) {
	doc, err := Decode(data)
	if err != nil {
		return nil, err
	}
	return Document(ctx, doc, p)
}

// Document tests every string value of doc against p, in key order, and
// decodes the accepted ones. A parser error aborts the scan.
func Document(ctx context.Context, doc map[string]any, p parser.Parser) (*Result, error) {
	nodes := Walk(doc)
	result := &Result{
		Matches: []Match{},
		Values:  make(map[string]any, len(nodes)),
	}

	for _, node := range nodes {
		result.Values[node.Key] = node.Value

		s, ok := node.Value.(string)
		if !node.Leaf || !ok {
			continue
		}
		result.Strings++

		accepted, err := p.Test(s).Await(ctx)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", node.Key, err)
		}
		if !accepted {
			continue
		}

		ref, err := p.Parse(s).Await(ctx)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", node.Key, err)
		}
		logger.Debug("%s: %s reference to %q", node.Key, ref.Kind, ref.Path)

		result.Matches = append(result.Matches, Match{Key: node.Key, Value: s, Reference: ref})
	}

	return result, nil
}
