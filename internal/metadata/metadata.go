// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package metadata assembles a typed book record from the normalized
// graph embedded in a catalog detail page.
//
// The extraction policy is deliberately asymmetric: the embedded data
// document and the book node key are load-bearing and their absence
// fails the whole fetch, while every individual field is best-effort.
// The source schema is undocumented and has been observed to omit,
// rename, and malform fields between releases, so a broken field only
// degrades itself and emits a diagnostic.
package metadata

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/pdiddy/bookmeta/internal/graph"
	"github.com/pdiddy/bookmeta/internal/page"
	"github.com/pdiddy/bookmeta/pkg/types"
)

var (
	// ErrNoRootKey reports a detail page whose embedded graph carries
	// no node for the requested catalog ID. Without that key no field
	// can be extracted.
	ErrNoRootKey = errors.New("catalog ID missing from embedded graph")

	// ErrNoTitle reports a book node with no readable title, the one
	// field a record cannot exist without.
	ErrNoTitle = errors.New("book node carries no title")
)

// unknownAuthor is the placeholder name the source attaches to stub
// contributor nodes. Entries resolving to it are dropped.
const unknownAuthor = "unknown author"

// Fetch retrieves the detail page for catalogID and assembles its
// metadata record. Field-level diagnostics are written to w.
func Fetch(ctx context.Context, client *http.Client, catalogID string, cfg types.ScraperConfig, w io.Writer) (*types.BookMetadata, error) {
	url := cfg.ResolvedBaseURL() + "/book/show/" + catalogID

	body, err := page.Fetch(ctx, client, url, cfg)
	if err != nil {
		return nil, err
	}

	data, err := page.EmbeddedData(body)
	if err != nil {
		return nil, err
	}

	g, err := graph.Parse(data)
	if err != nil {
		return nil, err
	}

	return Assemble(g, catalogID, w)
}

// Assemble builds the record for catalogID from an already-parsed
// graph. It resolves the book node key from the graph's root query and
// runs every field extractor against that node.
func Assemble(g *graph.Graph, catalogID string, w io.Writer) (*types.BookMetadata, error) {
	key, ok := g.RootKey(catalogID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoRootKey, catalogID)
	}

	book, ok := g.Node(key)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoRootKey, catalogID)
	}

	title, subtitle, err := extractTitle(book)
	if err != nil {
		return nil, err
	}

	return &types.BookMetadata{
		Title:           title,
		Subtitle:        subtitle,
		Description:     optionalString(book, "description"),
		Publisher:       optionalString(book, "details", "publisher"),
		PublicationDate: extractPublicationDate(book, w),
		ISBN:            extractISBN(book),
		Contributors:    extractContributors(g, book, w),
		Genres:          extractGenres(book, w),
		Series:          extractSeries(g, book, w),
		PageCount:       extractPageCount(book),
		Language:        optionalString(book, "details", "language", "name"),
		ImageURL:        optionalString(book, "imageUrl"),
	}, nil
}

// extractTitle reads the required title and splits it once on the
// first colon into title and subtitle.
func extractTitle(book map[string]any) (string, string, error) {
	v, _ := graph.Get(book, "title")
	full, ok := graph.String(v)
	if !ok {
		return "", "", ErrNoTitle
	}

	title, subtitle, found := strings.Cut(full, ":")
	if !found {
		return full, "", nil
	}
	return strings.TrimSpace(title), strings.TrimSpace(subtitle), nil
}

func optionalString(book map[string]any, path ...any) string {
	v, ok := graph.Get(book, path...)
	if !ok {
		return ""
	}
	s, _ := graph.String(v)
	return s
}

// extractISBN prefers the ISBN-10 field, then ISBN-13, then the vendor
// catalog number.
func extractISBN(book map[string]any) string {
	for _, field := range []string{"isbn", "isbn13", "asin"} {
		if s := optionalString(book, "details", field); s != "" {
			return s
		}
	}
	return ""
}

// extractPublicationDate decodes the epoch-millisecond publication
// time into a UTC instant. A present but non-numeric value degrades to
// absent; the source is known to malform this field without the rest
// of the page suffering.
func extractPublicationDate(book map[string]any, w io.Writer) *time.Time {
	v, ok := graph.Get(book, "details", "publicationTime")
	if !ok || v == nil {
		return nil
	}

	millis, ok := graph.Int64(v)
	if !ok {
		fmt.Fprintf(w, "warning: unreadable publication date %v\n", v)
		return nil
	}

	t := time.UnixMilli(millis).UTC()
	return &t
}

// extractPageCount reads the page count. The source stores 0 for
// "unknown", never for an actual zero-page book, so 0 maps to absent.
func extractPageCount(book map[string]any) *int64 {
	v, ok := graph.Get(book, "details", "numPages")
	if !ok {
		return nil
	}
	n, ok := graph.Int64(v)
	if !ok || n == 0 {
		return nil
	}
	return &n
}

// extractContributors reads the primary contributor edge and the
// secondary contributor array, resolving each edge's node reference to
// its name. Malformed entries are skipped with a diagnostic. Names
// resolving to the source's "unknown author" placeholder are dropped.
func extractContributors(g *graph.Graph, book map[string]any, w io.Writer) []types.BookContributor {
	var contributors []types.BookContributor

	if edge, ok := graph.Get(book, "primaryContributorEdge"); ok {
		if c, ok := resolveContributor(g, edge, w); ok {
			contributors = append(contributors, c)
		}
	}

	if edges, ok := graph.Get(book, "secondaryContributorEdges"); ok {
		arr, _ := edges.([]any)
		for _, edge := range arr {
			if c, ok := resolveContributor(g, edge, w); ok {
				contributors = append(contributors, c)
			}
		}
	}

	kept := contributors[:0]
	for _, c := range contributors {
		if strings.EqualFold(c.Name, unknownAuthor) {
			continue
		}
		kept = append(kept, c)
	}
	return kept
}

// resolveContributor reads one contributor edge: its role plus a
// reference to the contributor node carrying the name.
func resolveContributor(g *graph.Graph, edge any, w io.Writer) (types.BookContributor, bool) {
	roleVal, _ := graph.Get(edge, "role")
	role, ok := graph.String(roleVal)
	if !ok {
		fmt.Fprintln(w, "warning: skipping contributor with no role")
		return types.BookContributor{}, false
	}

	nodeRef, _ := graph.Get(edge, "node")
	node, ok := g.Resolve(nodeRef)
	if !ok {
		fmt.Fprintln(w, "warning: skipping contributor with unresolvable node")
		return types.BookContributor{}, false
	}

	name, ok := graph.String(node["name"])
	if !ok {
		fmt.Fprintln(w, "warning: skipping contributor with no name")
		return types.BookContributor{}, false
	}

	return types.BookContributor{Name: name, Role: role}, true
}

// extractGenres reads the genre wrapper array in source order. Entries
// with no readable name are skipped. Absent field yields an empty list.
func extractGenres(book map[string]any, w io.Writer) []string {
	v, ok := graph.Get(book, "bookGenres")
	if !ok {
		return nil
	}
	arr, _ := v.([]any)

	var genres []string
	for _, entry := range arr {
		nameVal, _ := graph.Get(entry, "genre", "name")
		name, ok := graph.String(nameVal)
		if !ok {
			fmt.Fprintln(w, "warning: skipping genre with no name")
			continue
		}
		genres = append(genres, name)
	}
	return genres
}

// extractSeries reads the first entry of the series array; books
// listed in several series keep only the first. The position string
// may encode a range ("1-2"), which collapses to its start. Position,
// series reference, and series title must all resolve or the whole
// field is absent.
func extractSeries(g *graph.Graph, book map[string]any, w io.Writer) *types.BookSeries {
	v, ok := graph.Get(book, "bookSeries")
	if !ok {
		return nil
	}
	arr, _ := v.([]any)
	if len(arr) == 0 {
		return nil
	}
	first := arr[0]

	posVal, _ := graph.Get(first, "userPosition")
	posStr, ok := posVal.(string)
	if !ok {
		fmt.Fprintln(w, "warning: series entry has no position")
		return nil
	}

	start, _, _ := strings.Cut(posStr, "-")
	position, err := strconv.ParseFloat(strings.TrimSpace(start), 64)
	if err != nil {
		fmt.Fprintf(w, "warning: unparseable series position %q\n", posStr)
		return nil
	}

	seriesRef, _ := graph.Get(first, "series")
	node, ok := g.Resolve(seriesRef)
	if !ok {
		fmt.Fprintln(w, "warning: series entry has unresolvable reference")
		return nil
	}

	title, ok := graph.String(node["title"])
	if !ok {
		fmt.Fprintln(w, "warning: series node carries no title")
		return nil
	}

	return &types.BookSeries{Title: title, Position: position}
}
