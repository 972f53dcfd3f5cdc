// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package graph navigates the normalized JSON object graph embedded in
// catalog pages. The graph is a flat table of nodes keyed by opaque
// strings; a value may be a literal or a single-hop reference to
// another node. Every accessor returns an ok flag instead of failing,
// so callers can express fallback chains declaratively.
package graph

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strings"
)

const (
	refField     = "__ref"
	rootQueryKey = "ROOT_QUERY"
)

// statePath locates the node table inside the embedded document.
var statePath = []any{"props", "pageProps", "apolloState"}

// Graph wraps one decoded embedded JSON document.
type Graph struct {
	doc any
}

// Parse decodes an embedded JSON document into a Graph.
func Parse(data []byte) (*Graph, error) {
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing embedded data: %w", err)
	}
	return &Graph{doc: doc}, nil
}

// Get walks a path from v. String elements index maps, int elements
// index arrays. It reports false for any missing key, type mismatch,
// or out-of-range index and never panics.
func Get(v any, path ...any) (any, bool) {
	for _, step := range path {
		switch key := step.(type) {
		case string:
			m, ok := v.(map[string]any)
			if !ok {
				return nil, false
			}
			v, ok = m[key]
			if !ok {
				return nil, false
			}
		case int:
			a, ok := v.([]any)
			if !ok || key < 0 || key >= len(a) {
				return nil, false
			}
			v = a[key]
		default:
			return nil, false
		}
	}
	return v, true
}

// Get walks a path from the document root.
func (g *Graph) Get(path ...any) (any, bool) {
	return Get(g.doc, path...)
}

// Node returns the node stored under key in the graph's node table.
func (g *Graph) Node(key string) (map[string]any, bool) {
	v, ok := g.Get(append(append([]any{}, statePath...), key)...)
	if !ok {
		return nil, false
	}
	node, ok := v.(map[string]any)
	return node, ok
}

// RootKey returns the book node key for a catalog ID. The root query
// node stores one entry per page query; the book lookup entry carries a
// reference to the book node.
func (g *Graph) RootKey(catalogID string) (string, bool) {
	entry := fmt.Sprintf(`getBookByLegacyId({"legacyId":%q})`, catalogID)
	path := append(append([]any{}, statePath...), rootQueryKey, entry, refField)
	v, ok := g.Get(path...)
	if !ok {
		return "", false
	}
	return String(v)
}

// Resolve follows exactly one reference hop: v must be an object whose
// reference field names another node in the table. A dangling reference
// reports false, it is never an error.
func (g *Graph) Resolve(v any) (map[string]any, bool) {
	ref, ok := Get(v, refField)
	if !ok {
		return nil, false
	}
	key, ok := ref.(string)
	if !ok {
		return nil, false
	}
	return g.Node(key)
}

var spaceRuns = regexp.MustCompile(`\s{2,}`)

// String accepts only string-typed values. It trims the value,
// collapses runs of whitespace to a single space, and rejects results
// that end up empty.
func String(v any) (string, bool) {
	s, ok := v.(string)
	if !ok {
		return "", false
	}
	s = spaceRuns.ReplaceAllString(strings.TrimSpace(s), " ")
	if s == "" {
		return "", false
	}
	return s, true
}

// Int64 accepts only integral numeric values. JSON numbers decode as
// float64, so a fractional part rejects the value.
func Int64(v any) (int64, bool) {
	f, ok := v.(float64)
	if !ok || f != math.Trunc(f) {
		return 0, false
	}
	return int64(f), true
}

// Float64 accepts any numeric value.
func Float64(v any) (float64, bool) {
	f, ok := v.(float64)
	return f, ok
}
