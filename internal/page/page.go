// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package page fetches catalog pages and pulls the embedded data
// document out of them.
package page

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/pdiddy/bookmeta/internal/httputil"
	"github.com/pdiddy/bookmeta/pkg/types"
)

// ErrNoEmbeddedData reports a page that rendered without its embedded
// data script. It signals that the page shape has likely changed, as
// opposed to a network failure.
var ErrNoEmbeddedData = errors.New("page carries no embedded data")

// embeddedDataSelector matches the script element holding the page's
// serialized state.
const embeddedDataSelector = `script#__NEXT_DATA__`

// Fetch retrieves url and returns the page body.
func Fetch(ctx context.Context, client *http.Client, url string, cfg types.ScraperConfig) (string, error) {
	resp, err := httputil.Get(ctx, client, url, cfg.UserAgent, cfg.MaxRetries)
	if err != nil {
		return "", fmt.Errorf("fetching %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetching %s: HTTP %d", url, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", url, err)
	}
	return string(body), nil
}

// Probe reports whether url answers with a success status. Transport
// errors count as a failed probe.
func Probe(ctx context.Context, client *http.Client, url string, cfg types.ScraperConfig) bool {
	resp, err := httputil.Get(ctx, client, url, cfg.UserAgent, cfg.MaxRetries)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	return resp.StatusCode >= 200 && resp.StatusCode < 300
}

// EmbeddedData extracts the embedded JSON document from a page body.
// A page without the data script returns ErrNoEmbeddedData.
func EmbeddedData(body string) ([]byte, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parsing page: %w", err)
	}

	text := doc.Find(embeddedDataSelector).First().Text()
	if strings.TrimSpace(text) == "" {
		return nil, ErrNoEmbeddedData
	}
	return []byte(text), nil
}
