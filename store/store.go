// Package store caches the last-fetched show list in SQLite so
// separate CLI invocations share one stable, index-addressable listing.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mainmeister/clubtwit-cli/model"
	_ "modernc.org/sqlite"
)

// Store manages the SQLite cache.
type Store struct {
	db *sql.DB
}

// CachedShow pairs a show with its position in the cached feed order.
// The position is the index selection commands accept, so it stays
// attached through filtering and sorting.
type CachedShow struct {
	Index int `json:"index"`
	model.Show
}

// CacheMeta describes when and from where the cache was filled.
type CacheMeta struct {
	FeedURL   string    `json:"feed_url"`
	FetchedAt time.Time `json:"fetched_at"`
	ShowCount int       `json:"show_count"`
}

// QueryOptions specifies how to filter a cached listing.
type QueryOptions struct {
	Limit     int
	SinceTime *int64 // Unix timestamp
}

// New creates a Store backed by the database at dbPath.
// Use ":memory:" for an in-memory database (useful for testing).
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}

	if err := store.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// createSchema creates the cache tables and indexes.
func (s *Store) createSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS shows (
		position INTEGER PRIMARY KEY,
		title TEXT NOT NULL,
		description TEXT NOT NULL,
		description_html TEXT NOT NULL,
		link TEXT NOT NULL,
		published TEXT NOT NULL,
		published_unix INTEGER NOT NULL,
		length_bytes INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS cache_meta (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		feed_url TEXT NOT NULL,
		fetched_at INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_shows_published_unix ON shows(published_unix);
	`

	_, err := s.db.Exec(schema)
	return err
}

// ReplaceShows swaps the whole cached listing for the given one,
// preserving feed order through the position column. The swap is
// transactional: a failure leaves the previous cache intact.
func (s *Store) ReplaceShows(feedURL string, shows []model.Show) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM shows"); err != nil {
		return fmt.Errorf("failed to clear shows: %w", err)
	}

	stmt, err := tx.Prepare(
		"INSERT INTO shows (position, title, description, description_html, link, published, published_unix, length_bytes) VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
	)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, show := range shows {
		_, err := stmt.Exec(i, show.Title, show.Description, show.DescriptionHTML, show.Link, show.PublishedRaw, show.PublishedUnix, show.LengthBytes)
		if err != nil {
			return fmt.Errorf("failed to insert show %d: %w", i, err)
		}
	}

	_, err = tx.Exec(
		"INSERT INTO cache_meta (id, feed_url, fetched_at) VALUES (1, ?, ?) ON CONFLICT(id) DO UPDATE SET feed_url = excluded.feed_url, fetched_at = excluded.fetched_at",
		feedURL, time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to update cache metadata: %w", err)
	}

	return tx.Commit()
}

// Shows retrieves cached shows in feed order, with optional filtering.
func (s *Store) Shows(opts QueryOptions) ([]CachedShow, error) {
	query := "SELECT position, title, description, description_html, link, published, published_unix, length_bytes FROM shows WHERE 1=1"
	args := []interface{}{}

	if opts.SinceTime != nil {
		query += " AND published_unix >= ?"
		args = append(args, *opts.SinceTime)
	}

	query += " ORDER BY position"

	if opts.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, opts.Limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query shows: %w", err)
	}
	defer rows.Close()

	var shows []CachedShow
	for rows.Next() {
		var cs CachedShow
		err := rows.Scan(&cs.Index, &cs.Title, &cs.Description, &cs.DescriptionHTML, &cs.Link, &cs.PublishedRaw, &cs.PublishedUnix, &cs.LengthBytes)
		if err != nil {
			return nil, fmt.Errorf("failed to scan show: %w", err)
		}
		shows = append(shows, cs)
	}

	return shows, rows.Err()
}

// Show retrieves the cached show at the given position.
func (s *Store) Show(position int) (*CachedShow, error) {
	var cs CachedShow
	err := s.db.QueryRow(
		"SELECT position, title, description, description_html, link, published, published_unix, length_bytes FROM shows WHERE position = ?",
		position,
	).Scan(&cs.Index, &cs.Title, &cs.Description, &cs.DescriptionHTML, &cs.Link, &cs.PublishedRaw, &cs.PublishedUnix, &cs.LengthBytes)

	if err == sql.ErrNoRows {
		return nil, errors.New("show not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get show: %w", err)
	}

	return &cs, nil
}

// Meta reports the cache's provenance. It errors when nothing has been
// cached yet.
func (s *Store) Meta() (*CacheMeta, error) {
	meta := &CacheMeta{}
	var fetchedUnix int64

	err := s.db.QueryRow("SELECT feed_url, fetched_at FROM cache_meta WHERE id = 1").
		Scan(&meta.FeedURL, &fetchedUnix)
	if err == sql.ErrNoRows {
		return nil, errors.New("no cached feed")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get cache metadata: %w", err)
	}
	meta.FetchedAt = unixToTime(fetchedUnix)

	if err := s.db.QueryRow("SELECT COUNT(*) FROM shows").Scan(&meta.ShowCount); err != nil {
		return nil, fmt.Errorf("failed to count shows: %w", err)
	}

	return meta, nil
}

// Helper to convert Unix timestamp to time.Time
func unixToTime(unix int64) time.Time {
	return time.Unix(unix, 0)
}
