// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package resolve

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/pdiddy/bookmeta/pkg/types"
)

// searchResultsPage mimics a search results page: one title anchor and
// one author anchor per row.
const searchResultsPage = `<html><body><table class="tableList">
<tr>
  <td><a class="bookTitle" href="/book/show/30312855-the-last-magician?from_search=true"><span>The Last Magician</span></a></td>
  <td><a class="authorName" href="/author/show/5336241.Lisa_Maxwell"><span>Lisa Maxwell</span></a></td>
</tr>
<tr>
  <td><a class="bookTitle" href="/book/show/28187-the-lightning-thief?ac=1"><span>The Lightning Thief (Percy Jackson and the Olympians, #1)</span></a></td>
  <td><a class="authorName" href="/author/show/15872.Rick_Riordan"><span>Rick Riordan</span></a></td>
</tr>
</table></body></html>`

// lopsidedResultsPage has a trailing title anchor with no author
// counterpart; the extra row must be dropped, not treated as an error.
const lopsidedResultsPage = `<html><body>
<a class="bookTitle" href="/book/show/28187-the-lightning-thief"><span>The Lightning Thief</span></a>
<a class="authorName" href="/author/show/15872.Rick_Riordan"><span>Rick Riordan</span></a>
<a class="bookTitle" href="/book/show/30312855-the-last-magician"><span>The Last Magician</span></a>
</body></html>`

const linklessResultsPage = `<html><body>
<a class="bookTitle"><span>The Last Magician</span></a>
<a class="authorName"><span>Lisa Maxwell</span></a>
</body></html>`

func testCfg(baseURL string) types.ScraperConfig {
	return types.ScraperConfig{
		HTTPConfig: types.HTTPConfig{
			Timeout:   10 * time.Second,
			UserAgent: "test/0.1",
		},
		BaseURL:    baseURL,
		MaxRetries: 1,
	}
}

func searchServer(t *testing.T, pages map[string]string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		page, ok := pages[r.URL.Query().Get("q")]
		if !ok {
			t.Errorf("unexpected search query %q", r.URL.Query().Get("q"))
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		fmt.Fprint(w, page)
	}))
}

func TestFromTitle(t *testing.T) {
	ts := searchServer(t, map[string]string{
		"The Last Magician": searchResultsPage,
		"lightning thief":   searchResultsPage,
		"No Such Book":      searchResultsPage,
	})
	defer ts.Close()
	cfg := testCfg(ts.URL)
	ctx := context.Background()

	tests := []struct {
		name  string
		title string
		want  string
	}{
		{"first row matches", "The Last Magician", "30312855"},
		{"later row matches", "lightning thief", "28187"},
		{"no row matches", "No Such Book", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := FromTitle(ctx, ts.Client(), tt.title, cfg)
			if err != nil {
				t.Fatalf("FromTitle() error: %v", err)
			}
			if id != tt.want {
				t.Errorf("FromTitle(%q) = %q, want %q", tt.title, id, tt.want)
			}
		})
	}
}

func TestFromTitleLopsidedRows(t *testing.T) {
	ts := searchServer(t, map[string]string{
		"The Last Magician": lopsidedResultsPage,
	})
	defer ts.Close()

	// The matching row is the unpaired third title anchor, which the
	// zip truncates away.
	id, err := FromTitle(context.Background(), ts.Client(), "The Last Magician", testCfg(ts.URL))
	if err != nil {
		t.Fatalf("FromTitle() error: %v", err)
	}
	if id != "" {
		t.Errorf("FromTitle() = %q, want no match", id)
	}
}

func TestSearchRowsLayoutError(t *testing.T) {
	ts := searchServer(t, map[string]string{
		"anything": linklessResultsPage,
	})
	defer ts.Close()

	_, err := FromTitle(context.Background(), ts.Client(), "anything", testCfg(ts.URL))
	if !errors.Is(err, ErrResultLayout) {
		t.Errorf("FromTitle() error = %v, want ErrResultLayout", err)
	}
}

func TestFromTitleAndAuthor(t *testing.T) {
	// The title-only query returns a page where the right title is
	// paired with the wrong author; only the combined retry query
	// surfaces the wanted row.
	firstPage := `<html><body>
<a class="bookTitle" href="/book/show/111-the-last-magician-graphic-novel"><span>The Last Magician</span></a>
<a class="authorName" href="/author/show/1.Someone_Else"><span>Someone Else</span></a>
</body></html>`
	retryPage := `<html><body>
<a class="bookTitle" href="/book/show/30312855-the-last-magician"><span>The Last Magician</span></a>
<a class="authorName" href="/author/show/5336241.Lisa_Maxwell"><span>Lisa Maxwell</span></a>
</body></html>`

	ts := searchServer(t, map[string]string{
		"The Last Magician":              firstPage,
		"The Last Magician Lisa Maxwell": retryPage,
	})
	defer ts.Close()

	id, err := FromTitleAndAuthor(context.Background(), ts.Client(),
		"The Last Magician", "Lisa Maxwell", testCfg(ts.URL))
	if err != nil {
		t.Fatalf("FromTitleAndAuthor() error: %v", err)
	}
	if id != "30312855" {
		t.Errorf("FromTitleAndAuthor() = %q, want 30312855", id)
	}
}

func TestFromTitleAndAuthorFirstQueryWins(t *testing.T) {
	var calls int
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		fmt.Fprint(w, searchResultsPage)
	}))
	defer ts.Close()

	id, err := FromTitleAndAuthor(context.Background(), ts.Client(),
		"The Last Magician", "Lisa Maxwell", testCfg(ts.URL))
	if err != nil {
		t.Fatalf("FromTitleAndAuthor() error: %v", err)
	}
	if id != "30312855" {
		t.Errorf("FromTitleAndAuthor() = %q, want 30312855", id)
	}
	if calls != 1 {
		t.Errorf("search endpoint hit %d times, want 1", calls)
	}
}

func TestFromISBN(t *testing.T) {
	hitPage := `<html><body>
<script id="__NEXT_DATA__" type="application/json">{"props":{"pageProps":{"params":{"book_id":"30312855-the-last-magician"}}}}</script>
</body></html>`
	missPage := `<html><body><p>No results.</p></body></html>`
	paramlessPage := `<html><body>
<script id="__NEXT_DATA__" type="application/json">{"props":{"pageProps":{}}}</script>
</body></html>`

	ts := searchServer(t, map[string]string{
		"9781481432078": hitPage,
		"9780000000000": missPage,
		"9781111111111": paramlessPage,
	})
	defer ts.Close()
	cfg := testCfg(ts.URL)
	ctx := context.Background()

	tests := []struct {
		name string
		isbn string
		want string
	}{
		{"known ISBN", "9781481432078", "30312855"},
		{"unknown ISBN renders plain results", "9780000000000", ""},
		{"embedded data without the ID param", "9781111111111", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := FromISBN(ctx, ts.Client(), tt.isbn, cfg)
			if err != nil {
				t.Fatalf("FromISBN() error: %v", err)
			}
			if id != tt.want {
				t.Errorf("FromISBN(%q) = %q, want %q", tt.isbn, id, tt.want)
			}
		})
	}
}

func TestVerifyID(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/book/show/30312855" {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer ts.Close()
	cfg := testCfg(ts.URL)
	ctx := context.Background()

	if !VerifyID(ctx, ts.Client(), "30312855", cfg) {
		t.Error("VerifyID() = false for an existing ID")
	}
	if VerifyID(ctx, ts.Client(), "bad_id", cfg) {
		t.Error("VerifyID() = true for a missing ID")
	}
}

func TestExtractCatalogID(t *testing.T) {
	tests := []struct {
		name    string
		href    string
		want    string
		wantErr bool
	}{
		{"plain link", "/book/show/30312855-the-last-magician", "30312855", false},
		{"query string stripped", "/book/show/28187-the-lightning-thief?from_search=true", "28187", false},
		{"bare numeric segment", "/book/show/12345", "12345", false},
		{"no digits", "/book/show/the-last-magician", "", false},
		{"too few segments", "/book/show", "", true},
		{"empty", "", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := extractCatalogID(tt.href)
			if tt.wantErr {
				if !errors.Is(err, ErrResultLayout) {
					t.Fatalf("extractCatalogID(%q) error = %v, want ErrResultLayout", tt.href, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("extractCatalogID(%q) error: %v", tt.href, err)
			}
			if got != tt.want {
				t.Errorf("extractCatalogID(%q) = %q, want %q", tt.href, got, tt.want)
			}
		})
	}
}
