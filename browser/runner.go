package browser

import (
	"context"

	"github.com/rs/zerolog"
	"movie-finder-cli/logging"
	"movie-finder-cli/metrics"
	"movie-finder-cli/model"
)

type Catalog interface {
	SearchMovies(ctx context.Context, query string, page int) (model.MoviePage, error)
	DiscoverMovies(ctx context.Context, page int) (model.MoviePage, error)
	GenreMap(ctx context.Context) model.GenreMap
}

type Details interface {
	Detail(ctx context.Context, id int) (*model.MovieDetail, error)
}

// Backend is the trending store as seen by the browser.
type Backend interface {
	Trending(ctx context.Context, limit int) ([]model.TrendingEntry, error)
	IncrementSearchCount(ctx context.Context, term string, movie model.MovieSummary) error
}

type Result struct {
	Request
	Movies     []model.MovieSummary
	TotalPages int
	Genres     model.GenreMap
	// Logical is set when the catalog answered but reported failure.
	Logical bool
	Message string
	Err     error
}

type TrendingResult struct {
	Seq     int
	Entries []model.TrendingEntry
	Message string
	Err     error
}

type DetailResult struct {
	Seq     int
	ID      int
	Detail  *model.MovieDetail
	Message string
	Err     error
}

type RunnerOption func(*Runner)

func WithLogger(logger zerolog.Logger) RunnerOption {
	return func(r *Runner) { r.logger = logger }
}

func WithMetrics(m *metrics.Metrics) RunnerOption {
	return func(r *Runner) { r.metrics = m }
}

// Runner performs the I/O of browser cycles. It holds no cycle state and is
// safe to call from several goroutines.
type Runner struct {
	catalog Catalog
	details Details
	backend Backend
	logger  zerolog.Logger
	metrics *metrics.Metrics
}

func NewRunner(catalog Catalog, details Details, backend Backend, opts ...RunnerOption) *Runner {
	r := &Runner{
		catalog: catalog,
		details: details,
		backend: backend,
		logger:  zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = logging.Component(r.logger, "browser")
	return r
}

// Fetch runs one cycle: discover for an empty query, search otherwise.
func (r *Runner) Fetch(ctx context.Context, req Request) Result {
	res := Result{Request: req}

	var (
		page model.MoviePage
		err  error
	)
	if req.Mode() == ModeBrowse {
		page, err = r.catalog.DiscoverMovies(ctx, req.Page)
	} else {
		page, err = r.catalog.SearchMovies(ctx, req.Query, req.Page)
	}
	if err != nil {
		r.logger.Error().Err(err).
			Str("query", req.Query).
			Int("page", req.Page).
			Msg("movie fetch failed")
		res.Err = err
		res.Message = TransportFailureMessage
		return res
	}

	if page.Failed() {
		res.Logical = true
		res.Message = page.Error
		if res.Message == "" {
			res.Message = DefaultFailureMessage
		}
		return res
	}

	res.Movies = page.Results
	if res.Movies == nil {
		res.Movies = []model.MovieSummary{}
	}
	res.TotalPages = page.TotalPages
	if len(res.Movies) == 0 {
		return res
	}

	res.Genres = r.catalog.GenreMap(ctx)
	if req.Mode() == ModeSearch {
		r.recordSearch(ctx, req.Query, res.Movies[0])
	}
	return res
}

func (r *Runner) recordSearch(ctx context.Context, term string, top model.MovieSummary) {
	if r.backend == nil {
		return
	}
	err := r.backend.IncrementSearchCount(ctx, term, top)
	r.metrics.ObserveCountWrite(err)
	if err != nil {
		r.logger.Warn().Err(err).Str("query", term).Int("movie_id", top.ID).Msg("search count update failed")
	}
}

func (r *Runner) FetchTrending(ctx context.Context, req TrendingRequest) TrendingResult {
	res := TrendingResult{Seq: req.Seq}
	if r.backend == nil {
		res.Entries = []model.TrendingEntry{}
		return res
	}
	entries, err := r.backend.Trending(ctx, req.Limit)
	if err != nil {
		r.logger.Error().Err(err).Msg("trending fetch failed")
		res.Err = err
		res.Message = TrendingFailureMessage
		return res
	}
	res.Entries = entries
	return res
}

func (r *Runner) FetchDetail(ctx context.Context, req DetailRequest) DetailResult {
	res := DetailResult{Seq: req.Seq, ID: req.ID}
	detail, err := r.details.Detail(ctx, req.ID)
	if err != nil {
		r.logger.Error().Err(err).Int("movie_id", req.ID).Msg("movie detail failed")
		res.Err = err
		res.Message = DetailFailureMessage
		return res
	}
	res.Detail = detail
	return res
}
