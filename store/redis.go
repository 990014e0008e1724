package store

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"movie-finder-cli/config"
	"movie-finder-cli/model"
)

// RedisStore keeps one hash per search term and a sorted set of terms scored
// by count.
type RedisStore struct {
	client     *redis.Client
	collection string
	logger     zerolog.Logger
	opts       options
}

func NewRedisStore(cfg config.RedisConfig, collection string, logger zerolog.Logger, opts ...Option) (*RedisStore, error) {
	if collection == "" {
		collection = "metrics"
	}
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}

	logger.Info().
		Str("addr", cfg.Addr).
		Int("db", cfg.DB).
		Str("collection", collection).
		Msg("connected to redis backend")

	return &RedisStore{client: client, collection: collection, logger: logger, opts: newOptions(opts)}, nil
}

func (s *RedisStore) rankKey() string {
	return s.collection + ":rank"
}

func (s *RedisStore) docKey(term string) string {
	return s.collection + ":doc:" + term
}

func (s *RedisStore) IncrementSearchCount(ctx context.Context, term string, movie model.MovieSummary) error {
	term, err := normalizeTerm(term)
	if err != nil {
		return err
	}
	key := s.docKey(term)

	// Creation fields only land on the first write for a term.
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSetNX(ctx, key, "id", uuid.NewString())
		pipe.HSetNX(ctx, key, "search_term", term)
		pipe.HSetNX(ctx, key, "movie_id", movie.ID)
		pipe.HSetNX(ctx, key, "poster_url", s.opts.posterURL(movie.BackdropPath))
		pipe.HSetNX(ctx, key, "title", movie.Title)
		pipe.HIncrBy(ctx, key, "count", 1)
		pipe.ZIncrBy(ctx, s.rankKey(), 1, term)
		return nil
	})
	if err != nil {
		return fmt.Errorf("increment %q: %w", term, err)
	}
	return nil
}

func (s *RedisStore) Trending(ctx context.Context, limit int) ([]model.TrendingEntry, error) {
	limit = normalizeLimit(limit)

	ranked, err := s.client.ZRevRangeWithScores(ctx, s.rankKey(), 0, int64(limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("list trending: %w", err)
	}
	if len(ranked) == 0 {
		return []model.TrendingEntry{}, nil
	}

	cmds := make([]*redis.MapStringStringCmd, len(ranked))
	_, err = s.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for i, z := range ranked {
			cmds[i] = pipe.HGetAll(ctx, s.docKey(fmt.Sprint(z.Member)))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("load trending documents: %w", err)
	}

	entries := make([]model.TrendingEntry, 0, len(ranked))
	for i, z := range ranked {
		fields := cmds[i].Val()
		movieID, _ := strconv.Atoi(fields["movie_id"])
		entries = append(entries, model.TrendingEntry{
			ID:         fields["id"],
			SearchTerm: fmt.Sprint(z.Member),
			Title:      fields["title"],
			MovieID:    movieID,
			PosterURL:  fields["poster_url"],
			Count:      int(z.Score),
			Rank:       i + 1,
		})
	}
	return entries, nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
