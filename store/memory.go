package store

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
	"movie-finder-cli/model"
)

// MemoryStore keeps counts for the lifetime of the process.
type MemoryStore struct {
	mu   sync.Mutex
	docs map[string]*model.TrendingEntry
	opts options
}

func NewMemoryStore(opts ...Option) *MemoryStore {
	return &MemoryStore{docs: make(map[string]*model.TrendingEntry), opts: newOptions(opts)}
}

func (s *MemoryStore) Trending(ctx context.Context, limit int) ([]model.TrendingEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	limit = normalizeLimit(limit)

	s.mu.Lock()
	entries := make([]model.TrendingEntry, 0, len(s.docs))
	for _, doc := range s.docs {
		entries = append(entries, *doc)
	}
	s.mu.Unlock()

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Count != entries[j].Count {
			return entries[i].Count > entries[j].Count
		}
		return entries[i].SearchTerm > entries[j].SearchTerm
	})
	if len(entries) > limit {
		entries = entries[:limit]
	}
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries, nil
}

func (s *MemoryStore) IncrementSearchCount(ctx context.Context, term string, movie model.MovieSummary) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	term, err := normalizeTerm(term)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if doc, ok := s.docs[term]; ok {
		doc.Count++
		return nil
	}
	s.docs[term] = &model.TrendingEntry{
		ID:         uuid.NewString(),
		SearchTerm: term,
		Title:      movie.Title,
		MovieID:    movie.ID,
		PosterURL:  s.opts.posterURL(movie.BackdropPath),
		Count:      1,
	}
	return nil
}

func (s *MemoryStore) Close() error { return nil }
