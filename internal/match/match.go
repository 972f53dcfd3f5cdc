// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package match compares free-text titles and author names from search
// results against caller-supplied queries.
package match

import (
	"strings"
	"unicode"
)

// Normalize reduces a string to its lowercased alphanumeric characters.
// Punctuation, spaces, and separator characters all drop out, so
// "The Last Magician" and "TheLastMagician" normalize identically.
func Normalize(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Matches reports whether the normalized query occurs as a substring of
// the normalized candidate. The test is deliberately loose and
// asymmetric: the candidate is the richer search-result string, the
// query the caller's shorter target, so "The Lightning Thief: Percy
// Jackson" matches "lightning thief".
func Matches(candidate, query string) bool {
	return strings.Contains(Normalize(candidate), Normalize(query))
}
