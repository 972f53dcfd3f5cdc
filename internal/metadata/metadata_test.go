// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package metadata

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pdiddy/bookmeta/internal/graph"
	"github.com/pdiddy/bookmeta/pkg/types"
)

// bookGraph builds a parsed graph holding one book node under catalog
// ID 42 plus any extra nodes, each given as a `"key": {...}` fragment.
func bookGraph(t *testing.T, bookFields string, extraNodes ...string) *graph.Graph {
	t.Helper()

	nodes := []string{
		`"ROOT_QUERY": {"getBookByLegacyId({\"legacyId\":\"42\"})": {"__ref": "Book:b42"}}`,
		fmt.Sprintf(`"Book:b42": %s`, bookFields),
	}
	nodes = append(nodes, extraNodes...)

	doc := fmt.Sprintf(`{"props":{"pageProps":{"apolloState":{%s}}}}`,
		strings.Join(nodes, ","))

	g, err := graph.Parse([]byte(doc))
	if err != nil {
		t.Fatalf("parsing test graph: %v", err)
	}
	return g
}

func assemble(t *testing.T, g *graph.Graph) (*types.BookMetadata, string) {
	t.Helper()
	var warnings bytes.Buffer
	m, err := Assemble(g, "42", &warnings)
	if err != nil {
		t.Fatalf("Assemble() error: %v", err)
	}
	return m, warnings.String()
}

func TestFetchFullRecord(t *testing.T) {
	fixture, err := os.ReadFile(filepath.Join("testdata", "book_30312855.html"))
	if err != nil {
		t.Fatalf("reading fixture: %v", err)
	}

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/book/show/30312855" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Write(fixture)
	}))
	defer ts.Close()

	cfg := types.ScraperConfig{
		HTTPConfig: types.HTTPConfig{Timeout: 10 * time.Second, UserAgent: "test/0.1"},
		BaseURL:    ts.URL,
		MaxRetries: 1,
	}

	m, err := Fetch(context.Background(), ts.Client(), "30312855", cfg, io.Discard)
	if err != nil {
		t.Fatalf("Fetch() error: %v", err)
	}

	if m.Title != "The Last Magician" {
		t.Errorf("Title = %q", m.Title)
	}
	if m.Subtitle != "" {
		t.Errorf("Subtitle = %q, want empty", m.Subtitle)
	}
	if !strings.HasPrefix(m.Description, "Stop the Magician.") {
		t.Errorf("Description = %q", m.Description)
	}
	if m.Publisher != "Margaret K. McElderry Books" {
		t.Errorf("Publisher = %q", m.Publisher)
	}
	if m.ISBN != "1481432079" {
		t.Errorf("ISBN = %q, want the ISBN-10", m.ISBN)
	}
	want := time.Date(2017, time.July, 18, 7, 0, 0, 0, time.UTC)
	if m.PublicationDate == nil || !m.PublicationDate.Equal(want) {
		t.Errorf("PublicationDate = %v, want %v", m.PublicationDate, want)
	}
	// The fixture's secondary contributor resolves to the unknown-author
	// placeholder and must be dropped.
	if len(m.Contributors) != 1 || m.Contributors[0] != (types.BookContributor{Name: "Lisa Maxwell", Role: "Author"}) {
		t.Errorf("Contributors = %v", m.Contributors)
	}
	wantGenres := []string{"Fantasy", "Young Adult", "Historical Fiction"}
	if len(m.Genres) != len(wantGenres) {
		t.Fatalf("Genres = %v", m.Genres)
	}
	for i, g := range wantGenres {
		if m.Genres[i] != g {
			t.Errorf("Genres[%d] = %q, want %q", i, m.Genres[i], g)
		}
	}
	if m.Series == nil || m.Series.Title != "The Last Magician" || m.Series.Position != 1 {
		t.Errorf("Series = %v", m.Series)
	}
	if m.PageCount == nil || *m.PageCount != 500 {
		t.Errorf("PageCount = %v", m.PageCount)
	}
	if m.Language != "English" {
		t.Errorf("Language = %q", m.Language)
	}
	if m.ImageURL == "" {
		t.Error("ImageURL is empty")
	}
}

func TestAssembleNoRootKey(t *testing.T) {
	g := bookGraph(t, `{"title": "A Book"}`)
	_, err := Assemble(g, "999", io.Discard)
	if !errors.Is(err, ErrNoRootKey) {
		t.Errorf("Assemble() error = %v, want ErrNoRootKey", err)
	}
}

func TestAssembleNoTitle(t *testing.T) {
	tests := []struct {
		name string
		book string
	}{
		{"absent", `{"description": "text"}`},
		{"empty", `{"title": "   "}`},
		{"wrong type", `{"title": 42}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := bookGraph(t, tt.book)
			_, err := Assemble(g, "42", io.Discard)
			if !errors.Is(err, ErrNoTitle) {
				t.Errorf("Assemble() error = %v, want ErrNoTitle", err)
			}
		})
	}
}

func TestTitleSubtitleSplit(t *testing.T) {
	tests := []struct {
		name         string
		title        string
		wantTitle    string
		wantSubtitle string
	}{
		{"no colon", "The Last Magician", "The Last Magician", ""},
		{"one colon", "Sapiens: A Brief History of Humankind", "Sapiens", "A Brief History of Humankind"},
		{"first colon wins", "A: B: C", "A", "B: C"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := bookGraph(t, fmt.Sprintf(`{"title": %q}`, tt.title))
			m, _ := assemble(t, g)
			if m.Title != tt.wantTitle || m.Subtitle != tt.wantSubtitle {
				t.Errorf("split = (%q, %q), want (%q, %q)",
					m.Title, m.Subtitle, tt.wantTitle, tt.wantSubtitle)
			}
		})
	}
}

func TestISBNPreference(t *testing.T) {
	tests := []struct {
		name    string
		details string
		want    string
	}{
		{"isbn10 first", `{"isbn": "1481432079", "isbn13": "9781481432078", "asin": "B01AAAAAAA"}`, "1481432079"},
		{"isbn13 fallback", `{"isbn13": "9781481432078", "asin": "B01AAAAAAA"}`, "9781481432078"},
		{"asin last", `{"asin": "B01AAAAAAA"}`, "B01AAAAAAA"},
		{"none", `{}`, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := bookGraph(t, fmt.Sprintf(`{"title": "T", "details": %s}`, tt.details))
			m, _ := assemble(t, g)
			if m.ISBN != tt.want {
				t.Errorf("ISBN = %q, want %q", m.ISBN, tt.want)
			}
		})
	}
}

func TestPublicationDate(t *testing.T) {
	t.Run("valid epoch millis", func(t *testing.T) {
		g := bookGraph(t, `{"title": "T", "details": {"publicationTime": 1500361200000}}`)
		m, warnings := assemble(t, g)
		want := time.Date(2017, time.July, 18, 7, 0, 0, 0, time.UTC)
		if m.PublicationDate == nil || !m.PublicationDate.Equal(want) {
			t.Errorf("PublicationDate = %v, want %v", m.PublicationDate, want)
		}
		if warnings != "" {
			t.Errorf("unexpected warnings: %q", warnings)
		}
	})

	t.Run("null stays silent", func(t *testing.T) {
		g := bookGraph(t, `{"title": "T", "details": {"publicationTime": null}}`)
		m, warnings := assemble(t, g)
		if m.PublicationDate != nil {
			t.Errorf("PublicationDate = %v, want nil", m.PublicationDate)
		}
		if warnings != "" {
			t.Errorf("unexpected warnings: %q", warnings)
		}
	})

	t.Run("malformed value degrades with a warning", func(t *testing.T) {
		g := bookGraph(t, `{"title": "T", "details": {"publicationTime": "July 2017"}}`)
		m, warnings := assemble(t, g)
		if m.PublicationDate != nil {
			t.Errorf("PublicationDate = %v, want nil", m.PublicationDate)
		}
		if !strings.Contains(warnings, "publication date") {
			t.Errorf("warnings = %q, want a publication date diagnostic", warnings)
		}
	})
}

func TestPageCount(t *testing.T) {
	tests := []struct {
		name    string
		details string
		want    *int64
	}{
		{"positive", `{"numPages": 500}`, int64Ptr(500)},
		{"zero means unknown", `{"numPages": 0}`, nil},
		{"absent", `{}`, nil},
		{"non-numeric", `{"numPages": "many"}`, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := bookGraph(t, fmt.Sprintf(`{"title": "T", "details": %s}`, tt.details))
			m, _ := assemble(t, g)
			switch {
			case tt.want == nil && m.PageCount != nil:
				t.Errorf("PageCount = %d, want nil", *m.PageCount)
			case tt.want != nil && (m.PageCount == nil || *m.PageCount != *tt.want):
				t.Errorf("PageCount = %v, want %d", m.PageCount, *tt.want)
			}
		})
	}
}

func int64Ptr(n int64) *int64 { return &n }

func TestContributors(t *testing.T) {
	author := `"Contributor:c1": {"name": "Lisa Maxwell"}`
	illustrator := `"Contributor:c2": {"name": "Some Artist"}`
	unknown := `"Contributor:c3": {"name": "UNKNOWN Author"}`

	t.Run("primary and secondary in order", func(t *testing.T) {
		g := bookGraph(t, `{
			"title": "T",
			"primaryContributorEdge": {"node": {"__ref": "Contributor:c1"}, "role": "Author"},
			"secondaryContributorEdges": [{"node": {"__ref": "Contributor:c2"}, "role": "Illustrator"}]
		}`, author, illustrator)
		m, warnings := assemble(t, g)
		want := []types.BookContributor{
			{Name: "Lisa Maxwell", Role: "Author"},
			{Name: "Some Artist", Role: "Illustrator"},
		}
		if len(m.Contributors) != 2 || m.Contributors[0] != want[0] || m.Contributors[1] != want[1] {
			t.Errorf("Contributors = %v, want %v", m.Contributors, want)
		}
		if warnings != "" {
			t.Errorf("unexpected warnings: %q", warnings)
		}
	})

	t.Run("unknown author placeholder dropped case-insensitively", func(t *testing.T) {
		g := bookGraph(t, `{
			"title": "T",
			"primaryContributorEdge": {"node": {"__ref": "Contributor:c3"}, "role": "Author"},
			"secondaryContributorEdges": [{"node": {"__ref": "Contributor:c1"}, "role": "Author"}]
		}`, author, unknown)
		m, _ := assemble(t, g)
		if len(m.Contributors) != 1 || m.Contributors[0].Name != "Lisa Maxwell" {
			t.Errorf("Contributors = %v, want only Lisa Maxwell", m.Contributors)
		}
	})

	t.Run("malformed edges skipped with diagnostics", func(t *testing.T) {
		g := bookGraph(t, `{
			"title": "T",
			"primaryContributorEdge": {"node": {"__ref": "Contributor:c1"}},
			"secondaryContributorEdges": [
				{"node": {"__ref": "Contributor:gone"}, "role": "Editor"},
				{"node": {"__ref": "Contributor:c2"}, "role": "Illustrator"}
			]
		}`, author, illustrator)
		m, warnings := assemble(t, g)
		if len(m.Contributors) != 1 || m.Contributors[0].Name != "Some Artist" {
			t.Errorf("Contributors = %v, want only Some Artist", m.Contributors)
		}
		if !strings.Contains(warnings, "no role") || !strings.Contains(warnings, "unresolvable") {
			t.Errorf("warnings = %q, want role and node diagnostics", warnings)
		}
	})

	t.Run("absent edges yield empty list", func(t *testing.T) {
		g := bookGraph(t, `{"title": "T"}`)
		m, _ := assemble(t, g)
		if len(m.Contributors) != 0 {
			t.Errorf("Contributors = %v, want none", m.Contributors)
		}
	})
}

func TestGenres(t *testing.T) {
	g := bookGraph(t, `{
		"title": "T",
		"bookGenres": [
			{"genre": {"name": "Fantasy"}},
			{"genre": {}},
			{"genre": {"name": "Young Adult"}}
		]
	}`)
	m, warnings := assemble(t, g)

	if len(m.Genres) != 2 || m.Genres[0] != "Fantasy" || m.Genres[1] != "Young Adult" {
		t.Errorf("Genres = %v", m.Genres)
	}
	if !strings.Contains(warnings, "genre") {
		t.Errorf("warnings = %q, want a genre diagnostic", warnings)
	}
}

func TestSeries(t *testing.T) {
	seriesNode := `"Series:s1": {"title": "The Last Magician"}`
	otherNode := `"Series:s2": {"title": "Some Other Series"}`

	t.Run("single entry", func(t *testing.T) {
		g := bookGraph(t, `{
			"title": "T",
			"bookSeries": [{"userPosition": "1", "series": {"__ref": "Series:s1"}}]
		}`, seriesNode)
		m, _ := assemble(t, g)
		if m.Series == nil || m.Series.Title != "The Last Magician" || m.Series.Position != 1 {
			t.Errorf("Series = %v", m.Series)
		}
	})

	t.Run("range position collapses to its start", func(t *testing.T) {
		g := bookGraph(t, `{
			"title": "T",
			"bookSeries": [{"userPosition": "1-2", "series": {"__ref": "Series:s1"}}]
		}`, seriesNode)
		m, _ := assemble(t, g)
		if m.Series == nil || m.Series.Position != 1 {
			t.Errorf("Series = %v, want position 1", m.Series)
		}
	})

	t.Run("fractional position", func(t *testing.T) {
		g := bookGraph(t, `{
			"title": "T",
			"bookSeries": [{"userPosition": "2.5", "series": {"__ref": "Series:s1"}}]
		}`, seriesNode)
		m, _ := assemble(t, g)
		if m.Series == nil || m.Series.Position != 2.5 {
			t.Errorf("Series = %v, want position 2.5", m.Series)
		}
	})

	t.Run("first of several entries wins", func(t *testing.T) {
		g := bookGraph(t, `{
			"title": "T",
			"bookSeries": [
				{"userPosition": "3", "series": {"__ref": "Series:s2"}},
				{"userPosition": "1", "series": {"__ref": "Series:s1"}}
			]
		}`, seriesNode, otherNode)
		m, _ := assemble(t, g)
		if m.Series == nil || m.Series.Title != "Some Other Series" || m.Series.Position != 3 {
			t.Errorf("Series = %v, want the first entry", m.Series)
		}
	})

	degraded := []struct {
		name string
		book string
	}{
		{"no position", `{"title": "T", "bookSeries": [{"series": {"__ref": "Series:s1"}}]}`},
		{"unparseable position", `{"title": "T", "bookSeries": [{"userPosition": "one", "series": {"__ref": "Series:s1"}}]}`},
		{"dangling series reference", `{"title": "T", "bookSeries": [{"userPosition": "1", "series": {"__ref": "Series:gone"}}]}`},
		{"empty array", `{"title": "T", "bookSeries": []}`},
	}
	for _, tt := range degraded {
		t.Run(tt.name, func(t *testing.T) {
			g := bookGraph(t, tt.book, seriesNode)
			m, _ := assemble(t, g)
			if m.Series != nil {
				t.Errorf("Series = %v, want nil", m.Series)
			}
		})
	}
}
