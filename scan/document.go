/*
Copyright 2026 Benny Powers. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

package scan

import (
	"encoding/json"
	"fmt"
	"slices"
	"strconv"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"
)

// Node is one addressable value of a document.
type Node struct {
	// Key is the dotted path of the value; array items use their index.
	Key string

	// Value is the decoded value. Leaves hold scalars.
	Value any

	// Leaf is true for scalar values.
	Leaf bool
}

// Decode parses a JSON (comments allowed) or YAML document.
// The document root must be an object.
func Decode(data []byte) (map[string]any, error) {
	var raw any
	if isLikelyJSON(data) {
		if err := json.Unmarshal(jsonc.ToJSON(data), &raw); err != nil {
			return nil, fmt.Errorf("%w: failed to parse JSON: %w", ErrInvalidDocument, err)
		}
	} else {
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("%w: failed to parse YAML: %w", ErrInvalidDocument, err)
		}
	}

	doc, ok := normalize(raw).(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: document root must be an object", ErrInvalidDocument)
	}
	return doc, nil
}

// Walk returns every node of doc in depth-first, key-sorted order.
func Walk(doc map[string]any) []Node {
	var nodes []Node
	walk(doc, "", &nodes)
	return nodes
}

func walk(v any, key string, nodes *[]Node) {
	switch x := v.(type) {
	case map[string]any:
		if key != "" {
			*nodes = append(*nodes, Node{Key: key, Value: x})
		}
		keys := make([]string, 0, len(x))
		for k := range x {
			keys = append(keys, k)
		}
		slices.Sort(keys)
		for _, k := range keys {
			walk(x[k], join(key, k), nodes)
		}
	case []any:
		if key != "" {
			*nodes = append(*nodes, Node{Key: key, Value: x})
		}
		for i, item := range x {
			walk(item, join(key, strconv.Itoa(i)), nodes)
		}
	default:
		*nodes = append(*nodes, Node{Key: key, Value: x, Leaf: true})
	}
}

func join(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + "." + key
}

// isLikelyJSON checks if data appears to be JSON rather than YAML.
// JSON typically starts with '{' (optionally preceded by whitespace/BOM)
// or, with comments, with '/'.
func isLikelyJSON(data []byte) bool {
	for _, b := range data {
		switch b {
		case ' ', '\t', '\n', '\r':
			continue
		case 0xEF, 0xBB, 0xBF: // UTF-8 BOM
			continue
		case '{', '/':
			return true
		default:
			return false
		}
	}
	return false
}

// normalize recursively converts map[any]any to map[string]any.
// YAML with numeric keys (like "10:") creates map[any]any.
func normalize(v any) any {
	switch x := v.(type) {
	case map[string]any:
		for k, val := range x {
			x[k] = normalize(val)
		}
		return x
	case map[any]any:
		result := make(map[string]any, len(x))
		for k, val := range x {
			result[fmt.Sprintf("%v", k)] = normalize(val)
		}
		return result
	case []any:
		for i, val := range x {
			x[i] = normalize(val)
		}
		return x
	default:
		return v
	}
}
