package store

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"
	"movie-finder-cli/model"
)

var collectionPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// SQLiteStore keeps one row per search term in a table named after the
// collection.
type SQLiteStore struct {
	db     *sql.DB
	table  string
	logger zerolog.Logger
	opts   options
}

func NewSQLiteStore(path string, collection string, logger zerolog.Logger, opts ...Option) (*SQLiteStore, error) {
	if collection == "" {
		collection = "metrics"
	}
	if !collectionPattern.MatchString(collection) {
		return nil, fmt.Errorf("invalid sqlite collection name %q", collection)
	}

	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open failed: %w", err)
	}
	// Single writer.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: ping failed: %w", err)
	}

	s := &SQLiteStore{db: db, table: collection, logger: logger, opts: newOptions(opts)}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}

	logger.Info().Str("path", path).Str("collection", collection).Msg("opened sqlite backend")
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	schema := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %q (
	id          TEXT PRIMARY KEY,
	search_term TEXT NOT NULL UNIQUE,
	count       INTEGER NOT NULL DEFAULT 0,
	movie_id    INTEGER NOT NULL DEFAULT 0,
	poster_url  TEXT NOT NULL DEFAULT '',
	title       TEXT NOT NULL DEFAULT '',
	created_at  TEXT NOT NULL,
	updated_at  TEXT NOT NULL
)`, s.table)
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("sqlite: create %s: %w", s.table, err)
	}
	return nil
}

func (s *SQLiteStore) IncrementSearchCount(ctx context.Context, term string, movie model.MovieSummary) error {
	term, err := normalizeTerm(term)
	if err != nil {
		return err
	}
	now := time.Now().UTC().Format(time.RFC3339)

	query := fmt.Sprintf(`INSERT INTO %q (id, search_term, count, movie_id, poster_url, title, created_at, updated_at)
VALUES (?, ?, 1, ?, ?, ?, ?, ?)
ON CONFLICT(search_term) DO UPDATE SET count = count + 1, updated_at = excluded.updated_at`, s.table)

	_, err = s.db.ExecContext(ctx, query,
		uuid.NewString(), term, movie.ID, s.opts.posterURL(movie.BackdropPath), movie.Title, now, now)
	if err != nil {
		return fmt.Errorf("increment %q: %w", term, err)
	}
	return nil
}

func (s *SQLiteStore) Trending(ctx context.Context, limit int) ([]model.TrendingEntry, error) {
	limit = normalizeLimit(limit)

	query := fmt.Sprintf(`SELECT id, search_term, count, movie_id, poster_url, title
FROM %q ORDER BY count DESC, search_term DESC LIMIT ?`, s.table)

	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list trending: %w", err)
	}
	defer rows.Close()

	entries := make([]model.TrendingEntry, 0, limit)
	for rows.Next() {
		var e model.TrendingEntry
		if err := rows.Scan(&e.ID, &e.SearchTerm, &e.Count, &e.MovieID, &e.PosterURL, &e.Title); err != nil {
			return nil, fmt.Errorf("scan trending row: %w", err)
		}
		e.Rank = len(entries) + 1
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list trending: %w", err)
	}
	return entries, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
