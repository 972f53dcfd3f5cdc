// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package resolve turns partial book identifiers (ISBN, title, or
// title plus author) into canonical catalog IDs by querying the
// catalog's search endpoint and fuzzy-matching the result rows.
package resolve

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/pdiddy/bookmeta/internal/graph"
	"github.com/pdiddy/bookmeta/internal/match"
	"github.com/pdiddy/bookmeta/internal/page"
	"github.com/pdiddy/bookmeta/pkg/types"
)

// ErrResultLayout reports a search results page whose row structure
// deviates from the expected shape. It signals a site layout change
// rather than a failed lookup.
var ErrResultLayout = errors.New("unexpected search result layout")

// Result row selectors. The n-th title anchor and n-th author anchor
// belong to the same row.
const (
	titleSelector  = `a.bookTitle`
	authorSelector = `a.authorName`
)

// VerifyID probes the detail page for a literal catalog ID and reports
// whether it exists. Transport errors and non-success statuses both
// count as "not found".
func VerifyID(ctx context.Context, client *http.Client, id string, cfg types.ScraperConfig) bool {
	return page.Probe(ctx, client, bookURL(cfg, id), cfg)
}

// FromISBN resolves an ISBN to a catalog ID with a single search
// query. An exact ISBN hit lands on a page whose embedded data carries
// the resolved catalog ID directly, so no result-row matching is
// needed. An empty string means the ISBN is unknown to the catalog.
func FromISBN(ctx context.Context, client *http.Client, isbn string, cfg types.ScraperConfig) (string, error) {
	body, err := page.Fetch(ctx, client, searchURL(cfg, isbn), cfg)
	if err != nil {
		return "", err
	}

	data, err := page.EmbeddedData(body)
	if errors.Is(err, page.ErrNoEmbeddedData) {
		return "", nil
	}
	if err != nil {
		return "", err
	}

	g, err := graph.Parse(data)
	if err != nil {
		return "", err
	}

	v, ok := g.Get("props", "pageProps", "params", "book_id")
	param, sok := graph.String(v)
	if !ok || !sok {
		return "", nil
	}
	return leadingDigits(param), nil
}

// FromTitle resolves a title to a catalog ID. The first result row
// whose title matches wins; an empty string means no row matched.
func FromTitle(ctx context.Context, client *http.Client, title string, cfg types.ScraperConfig) (string, error) {
	rows, err := searchRows(ctx, client, title, cfg)
	if err != nil {
		return "", err
	}

	for _, row := range rows {
		if match.Matches(row.title, title) {
			return row.id, nil
		}
	}
	return "", nil
}

// FromTitleAndAuthor resolves a title plus author in two phases: first
// a search on the title alone, then a retry with title and author
// concatenated into one query. The retry exists because the search
// endpoint ranks combined queries differently and some books only
// surface on the second shape. A row must match on both fields.
func FromTitleAndAuthor(ctx context.Context, client *http.Client, title, author string, cfg types.ScraperConfig) (string, error) {
	rows, err := searchRows(ctx, client, title, cfg)
	if err != nil {
		return "", err
	}
	if id := matchRow(rows, title, author); id != "" {
		return id, nil
	}

	rows, err = searchRows(ctx, client, title+" "+author, cfg)
	if err != nil {
		return "", err
	}
	return matchRow(rows, title, author), nil
}

func matchRow(rows []resultRow, title, author string) string {
	for _, row := range rows {
		if match.Matches(row.title, title) && match.Matches(row.author, author) {
			return row.id
		}
	}
	return ""
}

// resultRow is one parsed search result.
type resultRow struct {
	title  string
	author string
	id     string
}

// searchRows issues one search query and parses the result rows. Title
// and author anchors are zipped index-to-index; divergent counts
// truncate to the shorter sequence.
func searchRows(ctx context.Context, client *http.Client, query string, cfg types.ScraperConfig) ([]resultRow, error) {
	body, err := page.Fetch(ctx, client, searchURL(cfg, query), cfg)
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parsing search results: %w", err)
	}

	titles := doc.Find(titleSelector)
	authors := doc.Find(authorSelector)

	n := titles.Length()
	if authors.Length() < n {
		n = authors.Length()
	}

	rows := make([]resultRow, 0, n)
	for i := 0; i < n; i++ {
		anchor := titles.Eq(i)
		href, ok := anchor.Attr("href")
		if !ok {
			return nil, fmt.Errorf("%w: result row %d has no link", ErrResultLayout, i)
		}

		id, err := extractCatalogID(href)
		if err != nil {
			return nil, err
		}

		rows = append(rows, resultRow{
			title:  anchor.Text(),
			author: authors.Eq(i).Text(),
			id:     id,
		})
	}
	return rows, nil
}

// extractCatalogID derives a catalog ID from a result link: the fourth
// path segment, stripped of any query string, reduced to its leading
// run of digits. A link with fewer than four segments means the page
// layout has changed.
func extractCatalogID(href string) (string, error) {
	parts := strings.SplitN(href, "/", 4)
	if len(parts) < 4 {
		return "", fmt.Errorf("%w: link %q", ErrResultLayout, href)
	}

	segment, _, _ := strings.Cut(parts[3], "?")
	return leadingDigits(segment), nil
}

func leadingDigits(s string) string {
	for i, r := range s {
		if r < '0' || r > '9' {
			return s[:i]
		}
	}
	return s
}

func searchURL(cfg types.ScraperConfig, query string) string {
	return cfg.ResolvedBaseURL() + "/search?q=" + url.QueryEscape(query)
}

func bookURL(cfg types.ScraperConfig, id string) string {
	return cfg.ResolvedBaseURL() + "/book/show/" + id
}
