/*
Copyright 2026 Benny Powers. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

package resolver

import (
	"fmt"

	"bennypowers.dev/reftoken/scan"
)

// Unresolved returns the matches whose reference path is not a key of the
// scanned document, in key order.
func Unresolved(result *scan.Result) []scan.Match {
	var missing []scan.Match
	for _, m := range result.Matches {
		if _, ok := result.Values[m.Reference.Path]; !ok {
			missing = append(missing, m)
		}
	}
	return missing
}

// Resolve follows every reference of result to the value it names.
// References to other references are followed transitively; interior
// nodes resolve to their decoded value as is. Handlers are not applied.
func Resolve(result *scan.Result) (map[string]any, error) {
	graph := BuildDependencyGraph(result.Matches)

	order, err := graph.TopologicalSort()
	if err != nil {
		return nil, err
	}

	if missing := Unresolved(result); len(missing) > 0 {
		m := missing[0]
		return nil, fmt.Errorf("%w: %s refers to %q", ErrUnresolvedReference, m.Key, m.Reference.Path)
	}

	byKey := make(map[string]scan.Match, len(result.Matches))
	for _, m := range result.Matches {
		byKey[m.Key] = m
	}

	resolved := make(map[string]any, len(result.Matches))
	for _, key := range order {
		m, ok := byKey[key]
		if !ok {
			continue
		}
		target := m.Reference.Path
		if v, ok := resolved[target]; ok {
			resolved[key] = v
			continue
		}
		resolved[key] = result.Values[target]
	}

	return resolved, nil
}
