// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines the shared data structures and configuration
// used across the bookmeta stages.
package types

import "time"

// BookMetadata is the assembled bibliographic record for one book.
// Records are constructed once per successful resolution and compared
// by value; two records with identical fields are equal.
type BookMetadata struct {
	// Title is the main title of the book. Always non-empty.
	Title string `json:"title" yaml:"title"`

	// Subtitle is the part of the source title after the first colon,
	// when one is present.
	Subtitle string `json:"subtitle,omitempty" yaml:"subtitle,omitempty"`

	// Description is the book summary as an HTML fragment.
	Description string `json:"description,omitempty" yaml:"description,omitempty"`

	// Publisher is the publishing house, if listed.
	Publisher string `json:"publisher,omitempty" yaml:"publisher,omitempty"`

	// PublicationDate is the publication instant in UTC.
	PublicationDate *time.Time `json:"publication_date,omitempty" yaml:"publication_date,omitempty"`

	// ISBN is the ISBN-10 when present, otherwise the ISBN-13,
	// otherwise the vendor catalog number (ASIN).
	ISBN string `json:"isbn,omitempty" yaml:"isbn,omitempty"`

	// Contributors lists the people credited on the book, primary
	// contributor first.
	Contributors []BookContributor `json:"contributors" yaml:"contributors"`

	// Genres lists the genres in source order. May be empty.
	Genres []string `json:"genres" yaml:"genres"`

	// Series holds the first series the book belongs to, if any.
	Series *BookSeries `json:"series,omitempty" yaml:"series,omitempty"`

	// PageCount is the number of pages. Nil when the source reports
	// zero or omits the field.
	PageCount *int64 `json:"page_count,omitempty" yaml:"page_count,omitempty"`

	// Language is the edition language, if listed.
	Language string `json:"language,omitempty" yaml:"language,omitempty"`

	// ImageURL points at the cover image.
	ImageURL string `json:"image_url,omitempty" yaml:"image_url,omitempty"`
}

// BookContributor is one person credited on a book.
type BookContributor struct {
	// Name is the contributor's display name.
	Name string `json:"name" yaml:"name"`

	// Role is the free-text credit, e.g. "Author" or "Illustrator".
	Role string `json:"role" yaml:"role"`
}

// BookSeries identifies a series and the book's position within it.
// Position is fractional to accommodate entries like "1.5"; a source
// range such as "1-2" collapses to its start.
type BookSeries struct {
	Title    string  `json:"title" yaml:"title"`
	Position float64 `json:"position" yaml:"position"`
}
