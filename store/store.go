// Package store keeps per-search-term counts in the hosted backend and lists
// the most searched terms.
package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"movie-finder-cli/config"
	"movie-finder-cli/logging"
	"movie-finder-cli/model"
)

const DefaultTrendingLimit = 5

var ErrNoTerm = errors.New("search term is empty")

// TrendingStore is the search count backend.
type TrendingStore interface {
	// Trending lists up to limit documents ordered by count, highest first,
	// with Rank starting at 1.
	Trending(ctx context.Context, limit int) ([]model.TrendingEntry, error)
	// IncrementSearchCount bumps the document for term, creating it with
	// count 1 and the movie's metadata when it does not exist yet.
	IncrementSearchCount(ctx context.Context, term string, movie model.MovieSummary) error
	Close() error
}

// Option configures a backend.
type Option func(*options)

type options struct {
	imageURL func(path string) string
}

// WithImageURL sets how a backdrop path expands into the stored poster URL.
// The catalog client's ImageURL fits.
func WithImageURL(fn func(path string) string) Option {
	return func(o *options) {
		if fn != nil {
			o.imageURL = fn
		}
	}
}

func newOptions(opts []Option) options {
	o := options{imageURL: imageURLFor(config.DefaultImageBaseURL)}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func (o options) posterURL(backdropPath string) string {
	if strings.TrimSpace(backdropPath) == "" {
		return ""
	}
	return o.imageURL(backdropPath)
}

func imageURLFor(base string) func(string) string {
	base = strings.TrimRight(base, "/")
	return func(path string) string { return base + path }
}

// Open builds the store selected by cfg.Driver.
func Open(cfg config.BackendConfig, logger zerolog.Logger, opts ...Option) (TrendingStore, error) {
	logger = logging.Component(logger, "store").With().Str("driver", cfg.Driver).Logger()

	switch cfg.Driver {
	case "", "memory":
		return NewMemoryStore(opts...), nil
	case "redis":
		return NewRedisStore(cfg.Redis, cfg.Collection, logger, opts...)
	case "sqlite":
		path := strings.TrimSpace(cfg.SQLite.Path)
		if path == "" {
			var err error
			path, err = configPath("movie-finder.db")
			if err != nil {
				return nil, fmt.Errorf("resolve sqlite path: %w", err)
			}
		}
		return NewSQLiteStore(path, cfg.Collection, logger, opts...)
	default:
		return nil, fmt.Errorf("unknown backend driver %q", cfg.Driver)
	}
}

func normalizeTerm(term string) (string, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return "", ErrNoTerm
	}
	return term, nil
}

func normalizeLimit(limit int) int {
	if limit < 1 {
		return DefaultTrendingLimit
	}
	return limit
}

func configPath(name string) (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	path := filepath.Join(dir, "movie-finder-cli", name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", err
	}
	return path, nil
}
