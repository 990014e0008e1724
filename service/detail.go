package service

import (
	"context"
	"fmt"
	"strconv"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
	"movie-finder-cli/logging"
	"movie-finder-cli/metrics"
	"movie-finder-cli/model"
)

// DetailSource is the subset of the catalog the aggregator needs.
type DetailSource interface {
	MovieBase(ctx context.Context, id int) (model.MovieBase, error)
	ReleaseDates(ctx context.Context, id int) (model.ReleaseDatesResponse, error)
	Videos(ctx context.Context, id int) (model.VideosResponse, error)
}

type DetailOption func(*detailOptions)

type detailOptions struct {
	cacheSize int
	logger    zerolog.Logger
	metrics   *metrics.Metrics
}

// WithCacheSize bounds the cache to n entries with LRU eviction. n <= 0 keeps
// every successful result for the aggregator's lifetime.
func WithCacheSize(n int) DetailOption {
	return func(o *detailOptions) { o.cacheSize = n }
}

func WithDetailLogger(logger zerolog.Logger) DetailOption {
	return func(o *detailOptions) { o.logger = logger }
}

func WithDetailMetrics(m *metrics.Metrics) DetailOption {
	return func(o *detailOptions) { o.metrics = m }
}

// DetailAggregator merges base detail, certification and trailers for a
// movie and memoizes successful results by id.
type DetailAggregator struct {
	source  DetailSource
	cache   detailCache
	group   singleflight.Group
	logger  zerolog.Logger
	metrics *metrics.Metrics
}

func NewDetailAggregator(source DetailSource, opts ...DetailOption) *DetailAggregator {
	o := detailOptions{logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(&o)
	}

	var cache detailCache = newSessionCache()
	if o.cacheSize > 0 {
		bounded, err := newBoundedCache(o.cacheSize)
		if err == nil {
			cache = bounded
		}
	}

	return &DetailAggregator{
		source:  source,
		cache:   cache,
		logger:  logging.Component(o.logger, "detail"),
		metrics: o.metrics,
	}
}

// Detail returns the merged detail for id. Concurrent calls for the same id
// share one fetch; failures are not cached.
func (a *DetailAggregator) Detail(ctx context.Context, id int) (*model.MovieDetail, error) {
	if id <= 0 {
		return nil, ErrInvalidMovieID
	}
	if detail, ok := a.cache.Get(id); ok {
		a.metrics.ObserveDetailCache(true)
		return detail, nil
	}

	// The shared fetch outlives any single caller: one caller cancelling
	// must not fail the others waiting on the same id.
	fetchCtx := context.WithoutCancel(ctx)
	ch := a.group.DoChan(strconv.Itoa(id), func() (any, error) {
		if detail, ok := a.cache.Get(id); ok {
			a.metrics.ObserveDetailCache(true)
			return detail, nil
		}
		a.metrics.ObserveDetailCache(false)
		detail, err := a.fetch(fetchCtx, id)
		if err != nil {
			return nil, err
		}
		a.cache.Add(id, detail)
		return detail, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			a.logger.Error().Err(res.Err).Int("movie_id", id).Msg("movie detail fetch failed")
			return nil, res.Err
		}
		return res.Val.(*model.MovieDetail), nil
	}
}

// Cached returns a memoized detail without fetching.
func (a *DetailAggregator) Cached(id int) (*model.MovieDetail, bool) {
	return a.cache.Get(id)
}

func (a *DetailAggregator) Len() int {
	return a.cache.Len()
}

func (a *DetailAggregator) fetch(ctx context.Context, id int) (*model.MovieDetail, error) {
	var (
		base     model.MovieBase
		releases model.ReleaseDatesResponse
		videos   model.VideosResponse
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		b, err := a.source.MovieBase(gctx, id)
		if err != nil {
			return fmt.Errorf("base detail: %w", err)
		}
		base = b
		return nil
	})
	g.Go(func() error {
		r, err := a.source.ReleaseDates(gctx, id)
		if err != nil {
			return fmt.Errorf("release dates: %w", err)
		}
		releases = r
		return nil
	})
	g.Go(func() error {
		v, err := a.source.Videos(gctx, id)
		if err != nil {
			return fmt.Errorf("videos: %w", err)
		}
		videos = v
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("fetch movie %d detail: %w", id, err)
	}

	cert, country := ResolveCertification(releases.Results)
	a.logger.Debug().Int("movie_id", id).Str("certification", cert).Str("country", country).Msg("movie detail merged")

	return &model.MovieDetail{
		MovieBase:     base,
		Certification: cert,
		Trailers:      ResolveTrailers(videos.Results),
	}, nil
}
