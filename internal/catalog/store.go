// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package catalog persists resolved book records in a local SQLite
// database and supports listing, full-text search, and export. It is a
// keep-list of records the user chose to save, not a cache: no
// resolution path ever reads from it.
package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/bookmeta/pkg/types"
)

const dbFile = "bookmeta.db"

// Store manages the catalog SQLite database.
type Store struct {
	db         *sql.DB
	catalogDir string
	maxResults int
}

// Open opens or creates the catalog database at
// catalogDir/bookmeta.db, creating the schema if needed.
func Open(cfg types.CatalogConfig) (*Store, error) {
	if err := os.MkdirAll(cfg.CatalogDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating catalog directory: %w", err)
	}

	dbPath := filepath.Join(cfg.CatalogDir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = 20
	}

	s := &Store{
		db:         db,
		catalogDir: cfg.CatalogDir,
		maxResults: maxResults,
	}

	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS books (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			catalog_id TEXT NOT NULL UNIQUE,
			title TEXT NOT NULL,
			subtitle TEXT,
			description TEXT,
			publisher TEXT,
			publication_date TEXT,
			isbn TEXT,
			series_title TEXT,
			series_position REAL,
			page_count INTEGER,
			language TEXT,
			image_url TEXT,
			search_text TEXT NOT NULL,
			saved_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS contributors (
			book_id INTEGER NOT NULL REFERENCES books(rowid) ON DELETE CASCADE,
			position INTEGER NOT NULL,
			name TEXT NOT NULL,
			role TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS genres (
			book_id INTEGER NOT NULL REFERENCES books(rowid) ON DELETE CASCADE,
			position INTEGER NOT NULL,
			name TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_contributors_book ON contributors(book_id)`,
		`CREATE INDEX IF NOT EXISTS idx_genres_book ON genres(book_id)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}

	// FTS5 virtual table with triggers for sync.
	var ftsExists int
	if err := s.db.QueryRow(
		`SELECT count(*) FROM sqlite_master WHERE type='table' AND name='books_fts'`,
	).Scan(&ftsExists); err != nil {
		return fmt.Errorf("checking FTS table: %w", err)
	}

	if ftsExists == 0 {
		ftsStatements := []string{
			`CREATE VIRTUAL TABLE books_fts USING fts5(search_text, content=books, content_rowid=rowid)`,
			`CREATE TRIGGER books_ai AFTER INSERT ON books BEGIN
				INSERT INTO books_fts(rowid, search_text) VALUES (new.rowid, new.search_text);
			END`,
			`CREATE TRIGGER books_ad AFTER DELETE ON books BEGIN
				INSERT INTO books_fts(books_fts, rowid, search_text) VALUES('delete', old.rowid, old.search_text);
			END`,
			`CREATE TRIGGER books_au AFTER UPDATE ON books BEGIN
				INSERT INTO books_fts(books_fts, rowid, search_text) VALUES('delete', old.rowid, old.search_text);
				INSERT INTO books_fts(rowid, search_text) VALUES (new.rowid, new.search_text);
			END`,
		}
		for _, stmt := range ftsStatements {
			if _, err := s.db.Exec(stmt); err != nil {
				return fmt.Errorf("creating FTS infrastructure: %w", err)
			}
		}
	}

	return nil
}

// Entry is a saved record with its catalog identity.
type Entry struct {
	CatalogID string    `json:"catalog_id" yaml:"catalog_id"`
	SavedAt   time.Time `json:"saved_at" yaml:"saved_at"`

	types.BookMetadata `json:",inline" yaml:",inline"`
}

// Save upserts a resolved record under its catalog ID.
func (s *Store) Save(ctx context.Context, catalogID string, m *types.BookMetadata) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM books WHERE catalog_id = ?`, catalogID); err != nil {
		return fmt.Errorf("removing previous record: %w", err)
	}

	var pubDate any
	if m.PublicationDate != nil {
		pubDate = m.PublicationDate.UTC().Format(time.RFC3339)
	}
	var seriesTitle, seriesPos any
	if m.Series != nil {
		seriesTitle = m.Series.Title
		seriesPos = m.Series.Position
	}
	var pageCount any
	if m.PageCount != nil {
		pageCount = *m.PageCount
	}

	res, err := tx.ExecContext(ctx,
		`INSERT INTO books (catalog_id, title, subtitle, description, publisher,
			publication_date, isbn, series_title, series_position, page_count,
			language, image_url, search_text, saved_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		catalogID, m.Title, m.Subtitle, m.Description, m.Publisher,
		pubDate, m.ISBN, seriesTitle, seriesPos, pageCount,
		m.Language, m.ImageURL, searchText(m),
		time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("inserting record: %w", err)
	}

	bookID, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading inserted rowid: %w", err)
	}

	for i, c := range m.Contributors {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO contributors (book_id, position, name, role) VALUES (?, ?, ?, ?)`,
			bookID, i, c.Name, c.Role); err != nil {
			return fmt.Errorf("inserting contributor: %w", err)
		}
	}

	for i, g := range m.Genres {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO genres (book_id, position, name) VALUES (?, ?, ?)`,
			bookID, i, g); err != nil {
			return fmt.Errorf("inserting genre: %w", err)
		}
	}

	return tx.Commit()
}

// searchText denormalizes the fields covered by full-text search.
func searchText(m *types.BookMetadata) string {
	parts := []string{m.Title, m.Subtitle}
	for _, c := range m.Contributors {
		parts = append(parts, c.Name)
	}
	parts = append(parts, m.Genres...)
	return strings.Join(parts, " ")
}

// Get returns the saved entry for a catalog ID, or nil when none
// exists.
func (s *Store) Get(ctx context.Context, catalogID string) (*Entry, error) {
	entries, err := s.queryEntries(ctx,
		`WHERE b.catalog_id = ?`, catalogID)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, nil
	}
	return &entries[0], nil
}

// List returns saved entries, most recently saved first.
func (s *Store) List(ctx context.Context) ([]Entry, error) {
	return s.queryEntries(ctx,
		fmt.Sprintf(`ORDER BY b.saved_at DESC LIMIT %d`, s.maxResults))
}

// Search runs an FTS5 query over titles, contributors, and genres,
// ranked by relevance.
func (s *Store) Search(ctx context.Context, term string) ([]Entry, error) {
	if strings.TrimSpace(term) == "" {
		return nil, fmt.Errorf("search term is empty")
	}
	return s.queryEntries(ctx,
		fmt.Sprintf(`JOIN books_fts ON books_fts.rowid = b.rowid
			WHERE books_fts MATCH ? ORDER BY books_fts.rank LIMIT %d`, s.maxResults),
		term)
}

func (s *Store) queryEntries(ctx context.Context, clause string, args ...any) ([]Entry, error) {
	query := `SELECT b.rowid, b.catalog_id, b.title, b.subtitle, b.description,
		b.publisher, b.publication_date, b.isbn, b.series_title,
		b.series_position, b.page_count, b.language, b.image_url, b.saved_at
	FROM books b ` + clause

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying catalog: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	var rowIDs []int64
	for rows.Next() {
		var (
			e         Entry
			rowID     int64
			pubDate   sql.NullString
			seriesT   sql.NullString
			seriesP   sql.NullFloat64
			pageCount sql.NullInt64
			savedAt   string
		)
		if err := rows.Scan(&rowID, &e.CatalogID, &e.Title, &e.Subtitle,
			&e.Description, &e.Publisher, &pubDate, &e.ISBN, &seriesT,
			&seriesP, &pageCount, &e.Language, &e.ImageURL, &savedAt); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}

		if pubDate.Valid {
			if t, parseErr := time.Parse(time.RFC3339, pubDate.String); parseErr == nil {
				e.PublicationDate = &t
			}
		}
		if seriesT.Valid {
			e.Series = &types.BookSeries{Title: seriesT.String, Position: seriesP.Float64}
		}
		if pageCount.Valid {
			n := pageCount.Int64
			e.PageCount = &n
		}
		if t, parseErr := time.Parse(time.RFC3339, savedAt); parseErr == nil {
			e.SavedAt = t
		}

		entries = append(entries, e)
		rowIDs = append(rowIDs, rowID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating rows: %w", err)
	}

	for i := range entries {
		if err := s.loadLists(ctx, rowIDs[i], &entries[i]); err != nil {
			return nil, err
		}
	}
	return entries, nil
}

func (s *Store) loadLists(ctx context.Context, bookID int64, e *Entry) error {
	rows, err := s.db.QueryContext(ctx,
		`SELECT name, role FROM contributors WHERE book_id = ? ORDER BY position`, bookID)
	if err != nil {
		return fmt.Errorf("querying contributors: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var c types.BookContributor
		if err := rows.Scan(&c.Name, &c.Role); err != nil {
			return fmt.Errorf("scanning contributor: %w", err)
		}
		e.Contributors = append(e.Contributors, c)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterating contributors: %w", err)
	}

	grows, err := s.db.QueryContext(ctx,
		`SELECT name FROM genres WHERE book_id = ? ORDER BY position`, bookID)
	if err != nil {
		return fmt.Errorf("querying genres: %w", err)
	}
	defer grows.Close()
	for grows.Next() {
		var g string
		if err := grows.Scan(&g); err != nil {
			return fmt.Errorf("scanning genre: %w", err)
		}
		e.Genres = append(e.Genres, g)
	}
	return grows.Err()
}
