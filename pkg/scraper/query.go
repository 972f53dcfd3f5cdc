// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package scraper is the public entry point for resolving book
// metadata from the catalog site. A Query is constructed through one
// of four mutually exclusive strategies and executed with a single
// dispatch; the heavy lifting lives in internal/resolve and
// internal/metadata.
package scraper

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/pdiddy/bookmeta/internal/metadata"
	"github.com/pdiddy/bookmeta/internal/resolve"
	"github.com/pdiddy/bookmeta/pkg/types"
)

type strategy int

const (
	strategyNone strategy = iota
	strategyID
	strategyISBN
	strategyTitle
	strategyTitleAuthor
)

// Query is one validated resolution request. The zero value is
// invalid; construct through ByID, ByISBN, ByTitle, or
// ByTitleAndAuthor.
type Query struct {
	strategy strategy
	id       string
	isbn     string
	title    string
	author   string
}

// ByID requests resolution by literal catalog ID.
func ByID(id string) (Query, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Query{}, fmt.Errorf("catalog ID must not be empty")
	}
	return Query{strategy: strategyID, id: id}, nil
}

// ByISBN requests resolution by ISBN.
func ByISBN(isbn string) (Query, error) {
	isbn = strings.TrimSpace(isbn)
	if isbn == "" {
		return Query{}, fmt.Errorf("ISBN must not be empty")
	}
	return Query{strategy: strategyISBN, isbn: isbn}, nil
}

// ByTitle requests resolution by fuzzy title search.
func ByTitle(title string) (Query, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return Query{}, fmt.Errorf("title must not be empty")
	}
	return Query{strategy: strategyTitle, title: title}, nil
}

// ByTitleAndAuthor requests resolution by fuzzy title search narrowed
// by author.
func ByTitleAndAuthor(title, author string) (Query, error) {
	title = strings.TrimSpace(title)
	author = strings.TrimSpace(author)
	if title == "" || author == "" {
		return Query{}, fmt.Errorf("title and author must both be non-empty")
	}
	return Query{strategy: strategyTitleAuthor, title: title, author: author}, nil
}

func (q Query) String() string {
	switch q.strategy {
	case strategyID:
		return "id " + q.id
	case strategyISBN:
		return "isbn " + q.isbn
	case strategyTitle:
		return fmt.Sprintf("title %q", q.title)
	case strategyTitleAuthor:
		return fmt.Sprintf("title %q by %q", q.title, q.author)
	default:
		return "invalid query"
	}
}

// Execute resolves q to a fully assembled metadata record. A nil
// record with a nil error means the book was not found; errors report
// transport or page-structure problems. Field-level diagnostics are
// written to w.
func Execute(ctx context.Context, client *http.Client, q Query, cfg types.ScraperConfig, w io.Writer) (*types.BookMetadata, error) {
	_, book, err := ExecuteWithID(ctx, client, q, cfg, w)
	return book, err
}

// ExecuteWithID is Execute plus the canonical catalog ID the query
// resolved to. Callers that persist records key them by that ID.
func ExecuteWithID(ctx context.Context, client *http.Client, q Query, cfg types.ScraperConfig, w io.Writer) (string, *types.BookMetadata, error) {
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	if w == nil {
		w = io.Discard
	}

	var (
		id  string
		err error
	)

	switch q.strategy {
	case strategyID:
		if !resolve.VerifyID(ctx, client, q.id, cfg) {
			return "", nil, nil
		}
		id = q.id
	case strategyISBN:
		id, err = resolve.FromISBN(ctx, client, q.isbn, cfg)
	case strategyTitle:
		id, err = resolve.FromTitle(ctx, client, q.title, cfg)
	case strategyTitleAuthor:
		id, err = resolve.FromTitleAndAuthor(ctx, client, q.title, q.author, cfg)
	default:
		return "", nil, fmt.Errorf("query has no resolution strategy")
	}

	if err != nil {
		return "", nil, err
	}
	if id == "" {
		return "", nil, nil
	}

	book, err := metadata.Fetch(ctx, client, id, cfg, w)
	if err != nil {
		return "", nil, err
	}
	return id, book, nil
}
