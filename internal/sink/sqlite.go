package sink

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"articlecrawl/internal/crawler"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS articles (
	url         TEXT PRIMARY KEY,
	run_id      TEXT NOT NULL,
	site        TEXT NOT NULL,
	title       TEXT NOT NULL,
	body        TEXT NOT NULL,
	author      TEXT NOT NULL,
	date        TEXT NOT NULL,
	status      TEXT NOT NULL,
	fetch_error TEXT NOT NULL DEFAULT '',
	fetched_at  INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS articles_site ON articles(site);
`

const upsertArticle = `
INSERT INTO articles (url, run_id, site, title, body, author, date, status, fetch_error, fetched_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(url) DO UPDATE SET
	run_id = excluded.run_id,
	site = excluded.site,
	title = excluded.title,
	body = excluded.body,
	author = excluded.author,
	date = excluded.date,
	status = excluded.status,
	fetch_error = excluded.fetch_error,
	fetched_at = excluded.fetched_at
`

// SQLite stores records in an articles table keyed by URL. Each run gets
// its own run ID so rows written by one invocation can be told apart.
type SQLite struct {
	db    *sql.DB
	runID string
	mu    sync.Mutex
}

// OpenSQLite opens (or creates) the database at dsn and applies the schema.
func OpenSQLite(ctx context.Context, dsn string) (*SQLite, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply sqlite schema: %w", err)
	}
	return &SQLite{db: db, runID: uuid.NewString()}, nil
}

// RunID identifies the rows written through this sink.
func (s *SQLite) RunID() string {
	return s.runID
}

// Accept implements crawler.Sink.
func (s *SQLite) Accept(rec crawler.Record) error {
	fetchedAt := rec.FetchedAt
	if fetchedAt.IsZero() {
		fetchedAt = time.Now()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.Exec(upsertArticle,
		rec.URL, s.runID, rec.Site, rec.Title, rec.Body, rec.Author, rec.Date,
		string(rec.Status), rec.FetchError, fetchedAt.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("store article %s: %w", rec.URL, err)
	}
	return nil
}

// Lookup returns the stored record for url.
func (s *SQLite) Lookup(ctx context.Context, url string) (crawler.Record, bool, error) {
	var (
		rec       crawler.Record
		status    string
		fetchedAt int64
	)
	row := s.db.QueryRowContext(ctx,
		`SELECT url, site, title, body, author, date, status, fetch_error, fetched_at FROM articles WHERE url = ?`, url)
	err := row.Scan(&rec.URL, &rec.Site, &rec.Title, &rec.Body, &rec.Author, &rec.Date, &status, &rec.FetchError, &fetchedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return crawler.Record{}, false, nil
	}
	if err != nil {
		return crawler.Record{}, false, fmt.Errorf("lookup article %s: %w", url, err)
	}
	rec.Status = crawler.Status(status)
	rec.FetchedAt = time.UnixMilli(fetchedAt)
	return rec, true, nil
}

// Count returns the number of stored articles for site, or all when site is empty.
func (s *SQLite) Count(ctx context.Context, site string) (int, error) {
	query := `SELECT COUNT(*) FROM articles`
	var args []any
	if site != "" {
		query += ` WHERE site = ?`
		args = append(args, site)
	}
	var n int
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count articles: %w", err)
	}
	return n, nil
}

// Close closes the database.
func (s *SQLite) Close() error {
	return s.db.Close()
}
