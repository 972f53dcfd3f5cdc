// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package scraper

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/bookmeta/pkg/types"
)

// BatchQuery is the on-disk form of one resolution request. Exactly
// one strategy must be expressed: id, isbn, or title (optionally with
// author).
type BatchQuery struct {
	ID     string `yaml:"id,omitempty"`
	ISBN   string `yaml:"isbn,omitempty"`
	Title  string `yaml:"title,omitempty"`
	Author string `yaml:"author,omitempty"`
}

// ToQuery validates the entry and converts it into a Query.
func (b BatchQuery) ToQuery() (Query, error) {
	set := 0
	for _, field := range []string{b.ID, b.ISBN, b.Title} {
		if field != "" {
			set++
		}
	}
	if set != 1 {
		return Query{}, fmt.Errorf("exactly one of id, isbn, or title must be set")
	}

	switch {
	case b.ID != "":
		if b.Author != "" {
			return Query{}, fmt.Errorf("author is only valid together with title")
		}
		return ByID(b.ID)
	case b.ISBN != "":
		if b.Author != "" {
			return Query{}, fmt.Errorf("author is only valid together with title")
		}
		return ByISBN(b.ISBN)
	case b.Author != "":
		return ByTitleAndAuthor(b.Title, b.Author)
	default:
		return ByTitle(b.Title)
	}
}

// BatchFile is the on-disk representation of a batch resolution run.
type BatchFile struct {
	Queries []BatchQuery `yaml:"queries"`
}

// BatchOutcome records what happened to one batch entry.
type BatchOutcome struct {
	Query BatchQuery          `yaml:"query"`
	Found bool                `yaml:"found"`
	Book  *types.BookMetadata `yaml:"book,omitempty"`
	Error string              `yaml:"error,omitempty"`
}

// BatchSummary holds counts from a batch resolution run.
type BatchSummary struct {
	Resolved int
	Missing  int
	Failed   int
}

// Total returns the number of queries processed.
func (s BatchSummary) Total() int {
	return s.Resolved + s.Missing + s.Failed
}

// HasFailures reports whether any query failed.
func (s BatchSummary) HasFailures() bool {
	return s.Failed > 0
}

// ReadBatchFile loads batch queries from a YAML file.
func ReadBatchFile(path string) ([]BatchQuery, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading batch file: %w", err)
	}
	var bf BatchFile
	if err := yaml.Unmarshal(data, &bf); err != nil {
		return nil, fmt.Errorf("parsing batch file: %w", err)
	}
	if len(bf.Queries) == 0 {
		return nil, fmt.Errorf("batch file lists no queries")
	}
	return bf.Queries, nil
}

// ExecuteBatch resolves the queries sequentially. A failed query is
// recorded in its outcome and does not abort the remaining queries.
// Progress lines are written to w.
func ExecuteBatch(ctx context.Context, client *http.Client, queries []BatchQuery, cfg types.ScraperConfig, w io.Writer) ([]BatchOutcome, BatchSummary) {
	outcomes := make([]BatchOutcome, 0, len(queries))
	var summary BatchSummary

	for _, bq := range queries {
		outcome := BatchOutcome{Query: bq}

		q, err := bq.ToQuery()
		if err == nil {
			outcome.Book, err = Execute(ctx, client, q, cfg, w)
		}

		switch {
		case err != nil:
			outcome.Error = err.Error()
			summary.Failed++
			fmt.Fprintf(w, "failed   %s: %v\n", describeBatchQuery(bq), err)
		case outcome.Book == nil:
			summary.Missing++
			fmt.Fprintf(w, "missing  %s\n", describeBatchQuery(bq))
		default:
			outcome.Found = true
			summary.Resolved++
			fmt.Fprintf(w, "resolved %s -> %s\n", describeBatchQuery(bq), outcome.Book.Title)
		}

		outcomes = append(outcomes, outcome)
	}

	fmt.Fprintf(w, "\nresolved: %d, missing: %d, failed: %d\n",
		summary.Resolved, summary.Missing, summary.Failed)

	return outcomes, summary
}

func describeBatchQuery(b BatchQuery) string {
	if q, err := b.ToQuery(); err == nil {
		return q.String()
	}
	return fmt.Sprintf("%+v", b)
}

// batchResultsFile is the on-disk representation of batch outcomes.
type batchResultsFile struct {
	Outcomes  []BatchOutcome `yaml:"outcomes"`
	Timestamp time.Time      `yaml:"timestamp"`
}

// WriteBatchResults saves batch outcomes to a YAML file.
func WriteBatchResults(path string, outcomes []BatchOutcome) error {
	data, err := yaml.Marshal(batchResultsFile{
		Outcomes:  outcomes,
		Timestamp: time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("marshaling batch results: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}
