// Package browser holds the catalog browsing state machine: raw and
// debounced query, pagination, the current fetch cycle, the trending strip
// and the detail overlay.
//
// A Browser is not safe for concurrent use. Callers mutate it from a single
// goroutine (the bubbletea update loop) and run the Runner's I/O elsewhere,
// feeding results back through the Apply methods.
package browser

import (
	"time"

	"movie-finder-cli/model"
)

const (
	DefaultMaxPages      = 8
	DefaultDebounce      = 1200 * time.Millisecond
	DefaultTrendingLimit = 5

	DefaultFailureMessage   = "Failed to fetch movies"
	TransportFailureMessage = "Failed to fetch movies. Please try again later."
	TrendingFailureMessage  = "Failed to fetch trending movies. Please try again later."
	DetailFailureMessage    = "Failed to load movie details."
)

type Mode int

const (
	ModeBrowse Mode = iota
	ModeSearch
)

func (m Mode) String() string {
	if m == ModeSearch {
		return "search"
	}
	return "browse"
}

type Config struct {
	MaxPages      int
	Debounce      time.Duration
	TrendingLimit int
}

func (c Config) withDefaults() Config {
	if c.MaxPages < 1 {
		c.MaxPages = DefaultMaxPages
	}
	if c.Debounce <= 0 {
		c.Debounce = DefaultDebounce
	}
	if c.TrendingLimit < 1 {
		c.TrendingLimit = DefaultTrendingLimit
	}
	return c
}

type TrendingState struct {
	Loading bool
	Entries []model.TrendingEntry
	Err     string
}

type DetailState struct {
	Open    bool
	Movie   model.MovieSummary
	Genres  []string
	Loading bool
	Detail  *model.MovieDetail
	Err     string
}

// State is the view model rendered by the presentation layer.
type State struct {
	Query      string
	Debounced  string
	Page       int
	TotalPages int
	Results    []model.MovieSummary
	Genres     model.GenreMap
	Loading    bool
	Err        string
	Mode       Mode

	Trending TrendingState
	Detail   DetailState
}

type Browser struct {
	cfg    Config
	runner *Runner
	state  State

	queryTag    int
	seq         int
	trendingSeq int
	detailSeq   int
}

func New(cfg Config, runner *Runner) *Browser {
	return &Browser{
		cfg:    cfg.withDefaults(),
		runner: runner,
		state: State{
			Page:       1,
			TotalPages: 1,
			Results:    []model.MovieSummary{},
			Genres:     model.GenreMap{},
			Trending:   TrendingState{Entries: []model.TrendingEntry{}},
		},
	}
}

func (b *Browser) Config() Config  { return b.cfg }
func (b *Browser) Runner() *Runner { return b.runner }

// Snapshot returns a copy of the state whose slices do not alias the browser's.
func (b *Browser) Snapshot() State {
	s := b.state
	s.Results = append([]model.MovieSummary(nil), b.state.Results...)
	s.Trending.Entries = append([]model.TrendingEntry(nil), b.state.Trending.Entries...)
	s.Detail.Genres = append([]string(nil), b.state.Detail.Genres...)
	return s
}

// SetQuery records raw input and returns the tag to settle after the
// debounce window.
func (b *Browser) SetQuery(text string) int {
	b.state.Query = text
	b.queryTag++
	return b.queryTag
}

// SettleQuery copies the raw query into the debounced one when tag is still
// the latest keystroke. It reports whether a fetch is due.
func (b *Browser) SettleQuery(tag int) bool {
	if tag != b.queryTag {
		return false
	}
	if b.state.Query == b.state.Debounced {
		return false
	}
	b.state.Debounced = b.state.Query
	b.state.Page = 1
	b.state.Mode = modeFor(b.state.Debounced)
	return true
}

func (b *Browser) CanPrev() bool { return b.state.Page > 1 }

func (b *Browser) CanNext() bool { return b.state.Page < b.state.TotalPages }

func (b *Browser) PrevPage() bool {
	if !b.CanPrev() {
		return false
	}
	b.state.Page--
	return true
}

func (b *Browser) NextPage() bool {
	if !b.CanNext() {
		return false
	}
	b.state.Page++
	return true
}

// LoadMore advances one page; the caller begins the cycle with append set.
// It refuses while a cycle is in flight: appended pages must land in order
// and the sequence guard would drop the earlier one.
func (b *Browser) LoadMore() bool {
	if b.state.Loading {
		return false
	}
	return b.NextPage()
}

// Request describes one fetch cycle.
type Request struct {
	Seq    int
	Query  string
	Page   int
	Append bool
}

func (r Request) Mode() Mode { return modeFor(r.Query) }

// Begin starts a fetch cycle for the debounced query and current page.
func (b *Browser) Begin(appendResults bool) Request {
	b.seq++
	b.state.Loading = true
	b.state.Err = ""
	b.state.Mode = modeFor(b.state.Debounced)
	return Request{
		Seq:    b.seq,
		Query:  b.state.Debounced,
		Page:   b.state.Page,
		Append: appendResults,
	}
}

// Apply folds a finished cycle into the state. Results from any cycle other
// than the latest one are dropped and Apply returns false.
func (b *Browser) Apply(res Result) bool {
	if res.Seq != b.seq {
		return false
	}
	b.state.Loading = false

	switch {
	case res.Err != nil:
		b.state.Err = res.Message
	case res.Logical:
		b.state.Results = []model.MovieSummary{}
		b.state.TotalPages = 1
		b.state.Page = 1
		b.state.Err = res.Message
	default:
		if res.Append {
			b.state.Results = append(b.state.Results, res.Movies...)
		} else {
			b.state.Results = append([]model.MovieSummary{}, res.Movies...)
		}
		if res.Genres != nil {
			b.state.Genres = res.Genres
		}
		b.state.TotalPages = clamp(res.TotalPages, 1, b.cfg.MaxPages)
		b.state.Page = clamp(b.state.Page, 1, b.state.TotalPages)
	}
	return true
}

// TrendingRequest describes one trending read.
type TrendingRequest struct {
	Seq   int
	Limit int
}

func (b *Browser) BeginTrending() TrendingRequest {
	b.trendingSeq++
	b.state.Trending.Loading = true
	b.state.Trending.Err = ""
	return TrendingRequest{Seq: b.trendingSeq, Limit: b.cfg.TrendingLimit}
}

func (b *Browser) ApplyTrending(res TrendingResult) bool {
	if res.Seq != b.trendingSeq {
		return false
	}
	b.state.Trending.Loading = false
	if res.Err != nil {
		b.state.Trending.Err = res.Message
		return true
	}
	b.state.Trending.Entries = append([]model.TrendingEntry{}, res.Entries...)
	return true
}

// DetailRequest describes one detail overlay load.
type DetailRequest struct {
	Seq int
	ID  int
}

// BeginDetail opens the overlay for movie.
func (b *Browser) BeginDetail(movie model.MovieSummary) DetailRequest {
	b.detailSeq++
	b.state.Detail = DetailState{
		Open:    true,
		Movie:   movie,
		Genres:  b.state.Genres.Names(movie.GenreIDs),
		Loading: true,
	}
	return DetailRequest{Seq: b.detailSeq, ID: movie.ID}
}

// ApplyDetail fills the overlay. Results for a closed or replaced overlay are
// dropped.
func (b *Browser) ApplyDetail(res DetailResult) bool {
	if res.Seq != b.detailSeq || !b.state.Detail.Open {
		return false
	}
	b.state.Detail.Loading = false
	if res.Err != nil {
		b.state.Detail.Err = res.Message
		b.state.Detail.Detail = nil
		return true
	}
	b.state.Detail.Detail = res.Detail
	if len(b.state.Detail.Genres) == 0 && res.Detail != nil {
		for _, g := range res.Detail.Genres {
			b.state.Detail.Genres = append(b.state.Detail.Genres, g.Name)
		}
	}
	return true
}

func (b *Browser) CloseDetail() {
	b.detailSeq++
	b.state.Detail = DetailState{}
}

func modeFor(query string) Mode {
	if query == "" {
		return ModeBrowse
	}
	return ModeSearch
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
