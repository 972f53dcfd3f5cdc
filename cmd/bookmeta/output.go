package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/pdiddy/bookmeta/internal/catalog"
	"github.com/pdiddy/bookmeta/pkg/types"
)

// printBook writes one record as a labeled field listing.
func printBook(w io.Writer, catalogID string, book *types.BookMetadata) {
	fmt.Fprintf(w, "%-18s %s\n", "Catalog ID:", catalogID)
	fmt.Fprintf(w, "%-18s %s\n", "Title:", book.Title)
	if book.Subtitle != "" {
		fmt.Fprintf(w, "%-18s %s\n", "Subtitle:", book.Subtitle)
	}
	for i, c := range book.Contributors {
		label := ""
		if i == 0 {
			label = "Contributors:"
		}
		fmt.Fprintf(w, "%-18s %s (%s)\n", label, c.Name, c.Role)
	}
	if book.Series != nil {
		fmt.Fprintf(w, "%-18s %s #%g\n", "Series:", book.Series.Title, book.Series.Position)
	}
	if book.Publisher != "" {
		fmt.Fprintf(w, "%-18s %s\n", "Publisher:", book.Publisher)
	}
	if book.PublicationDate != nil {
		fmt.Fprintf(w, "%-18s %s\n", "Published:", book.PublicationDate.Format("2006-01-02"))
	}
	if book.ISBN != "" {
		fmt.Fprintf(w, "%-18s %s\n", "ISBN:", book.ISBN)
	}
	if book.PageCount != nil {
		fmt.Fprintf(w, "%-18s %d\n", "Pages:", *book.PageCount)
	}
	if book.Language != "" {
		fmt.Fprintf(w, "%-18s %s\n", "Language:", book.Language)
	}
	if len(book.Genres) > 0 {
		fmt.Fprintf(w, "%-18s %s\n", "Genres:", strings.Join(book.Genres, ", "))
	}
	if book.ImageURL != "" {
		fmt.Fprintf(w, "%-18s %s\n", "Cover:", book.ImageURL)
	}
}

// printEntries writes saved records as a table.
func printEntries(w io.Writer, entries []catalog.Entry) {
	if len(entries) == 0 {
		fmt.Fprintln(w, "No saved records.")
		return
	}

	fmt.Fprintf(w, "%-10s  %-44s  %-24s  %-10s\n", "ID", "Title", "Contributors", "Saved")
	fmt.Fprintln(w, strings.Repeat("-", 96))

	for _, e := range entries {
		title := e.Title
		if len(title) > 44 {
			title = title[:41] + "..."
		}
		fmt.Fprintf(w, "%-10s  %-44s  %-24s  %-10s\n",
			e.CatalogID, title, formatContributors(e.Contributors), e.SavedAt.Format("2006-01-02"))
	}

	fmt.Fprintf(w, "\n%d records\n", len(entries))
}

func formatContributors(contributors []types.BookContributor) string {
	switch len(contributors) {
	case 0:
		return ""
	case 1:
		return truncate(contributors[0].Name, 24)
	default:
		return truncate(contributors[0].Name, 17) + " et al."
	}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
