// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package scraper

import (
	"regexp"
	"strings"
)

// isbnPattern matches a 10-digit ISBN (final check digit may be X) or
// a 13-digit ISBN, after separator stripping.
var isbnPattern = regexp.MustCompile(`^(?:\d{9}[\dXx]|\d{13})$`)

// idPattern matches a bare numeric catalog ID.
var idPattern = regexp.MustCompile(`^\d+$`)

// Classify turns a free-form identifier into a Query: an ISBN-shaped
// string (dashes and spaces allowed) resolves by ISBN, any other
// all-digit string is taken as a catalog ID, and everything else is
// searched as a title.
func Classify(input string) (Query, error) {
	input = strings.TrimSpace(input)

	stripped := strings.NewReplacer("-", "", " ", "").Replace(input)
	if isbnPattern.MatchString(stripped) {
		return ByISBN(stripped)
	}

	if idPattern.MatchString(input) {
		return ByID(input)
	}

	return ByTitle(input)
}
