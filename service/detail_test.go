package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"movie-finder-cli/metrics"
	"movie-finder-cli/model"
)

type fakeSource struct {
	calls    atomic.Int32
	base     model.MovieBase
	releases model.ReleaseDatesResponse
	videos   model.VideosResponse
	videoErr error
	delay    time.Duration
	gate     chan struct{}
}

func (f *fakeSource) MovieBase(ctx context.Context, id int) (model.MovieBase, error) {
	f.calls.Add(1)
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	if f.gate != nil {
		select {
		case <-f.gate:
		case <-ctx.Done():
			return model.MovieBase{}, ctx.Err()
		}
	}
	b := f.base
	b.ID = id
	return b, nil
}

func (f *fakeSource) ReleaseDates(ctx context.Context, id int) (model.ReleaseDatesResponse, error) {
	return f.releases, nil
}

func (f *fakeSource) Videos(ctx context.Context, id int) (model.VideosResponse, error) {
	if f.videoErr != nil {
		return model.VideosResponse{}, f.videoErr
	}
	return f.videos, nil
}

func inceptionSource() *fakeSource {
	return &fakeSource{
		base: model.MovieBase{Title: "Inception", Runtime: 148, ReleaseDate: "2010-07-15"},
		releases: model.ReleaseDatesResponse{Results: []model.CountryReleases{
			{Country: "GB", ReleaseDates: []model.ReleaseDate{{Certification: "12A"}}},
		}},
		videos: model.VideosResponse{Results: []model.Video{
			{Site: "YouTube", Type: "Teaser", Key: "t1", Name: "Teaser"},
			{Site: "YouTube", Type: "Trailer", Key: "YoHD9XEInc0", Name: "Official Trailer"},
			{Site: "Vimeo", Type: "Trailer", Key: "v1", Name: "Vimeo Trailer"},
		}},
	}
}

func TestDetailMergesCertificationAndTrailers(t *testing.T) {
	agg := NewDetailAggregator(inceptionSource())

	detail, err := agg.Detail(context.Background(), 27205)
	require.NoError(t, err)

	assert.Equal(t, 27205, detail.ID)
	assert.Equal(t, "Inception", detail.Title)
	assert.Equal(t, "12A", detail.Certification)
	want := []model.Trailer{{Site: "YouTube", Key: "YoHD9XEInc0", Name: "Official Trailer"}}
	if diff := cmp.Diff(want, detail.Trailers); diff != "" {
		t.Fatalf("trailers mismatch (-want +got):\n%s", diff)
	}
}

func TestDetailIsCachedByID(t *testing.T) {
	src := inceptionSource()
	agg := NewDetailAggregator(src)

	first, err := agg.Detail(context.Background(), 27205)
	require.NoError(t, err)
	second, err := agg.Detail(context.Background(), 27205)
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.EqualValues(t, 1, src.calls.Load())
	assert.Equal(t, 1, agg.Len())

	cached, ok := agg.Cached(27205)
	assert.True(t, ok)
	assert.Same(t, first, cached)
}

func TestDetailFailureIsNotCached(t *testing.T) {
	src := inceptionSource()
	src.videoErr = errors.New("boom")
	agg := NewDetailAggregator(src)

	_, err := agg.Detail(context.Background(), 7)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fetch movie 7 detail")
	assert.Equal(t, 0, agg.Len())

	src.videoErr = nil
	detail, err := agg.Detail(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, 7, detail.ID)
	assert.Equal(t, 1, agg.Len())
}

func TestDetailRejectsInvalidID(t *testing.T) {
	agg := NewDetailAggregator(inceptionSource())
	_, err := agg.Detail(context.Background(), 0)
	assert.ErrorIs(t, err, ErrInvalidMovieID)
}

func TestDetailCollapsesConcurrentFetches(t *testing.T) {
	src := inceptionSource()
	src.delay = 50 * time.Millisecond
	agg := NewDetailAggregator(src)

	var wg sync.WaitGroup
	results := make([]*model.MovieDetail, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			d, err := agg.Detail(context.Background(), 99)
			if err == nil {
				results[i] = d
			}
		}(i)
	}
	wg.Wait()

	assert.EqualValues(t, 1, src.calls.Load())
	for _, d := range results {
		assert.Same(t, results[0], d)
	}
}

func TestDetailCancelledCallerDoesNotFailOthers(t *testing.T) {
	src := inceptionSource()
	src.gate = make(chan struct{})
	reg := prometheus.NewRegistry()
	agg := NewDetailAggregator(src, WithDetailMetrics(metrics.New(reg)))

	ctx, cancel := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := agg.Detail(ctx, 27205)
		firstErr <- err
	}()
	require.Eventually(t, func() bool { return src.calls.Load() == 1 }, time.Second, 5*time.Millisecond)

	type result struct {
		detail *model.MovieDetail
		err    error
	}
	second := make(chan result, 1)
	go func() {
		d, err := agg.Detail(context.Background(), 27205)
		second <- result{d, err}
	}()
	// Let the second caller join the shared fetch.
	time.Sleep(50 * time.Millisecond)

	cancel()
	assert.ErrorIs(t, <-firstErr, context.Canceled)

	close(src.gate)
	got := <-second
	require.NoError(t, got.err)
	assert.Equal(t, "12A", got.detail.Certification)
	assert.EqualValues(t, 1, src.calls.Load())
	cached, ok := agg.Cached(27205)
	require.True(t, ok)
	assert.Same(t, got.detail, cached)

	expected := `
# HELP moviefinder_detail_cache_total Movie detail cache lookups by result
# TYPE moviefinder_detail_cache_total counter
moviefinder_detail_cache_total{result="miss"} 1
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "moviefinder_detail_cache_total"))
}

func TestDetailBoundedCacheEvicts(t *testing.T) {
	src := inceptionSource()
	agg := NewDetailAggregator(src, WithCacheSize(2))

	for _, id := range []int{1, 2, 3} {
		_, err := agg.Detail(context.Background(), id)
		require.NoError(t, err)
	}

	assert.Equal(t, 2, agg.Len())
	_, ok := agg.Cached(1)
	assert.False(t, ok)
	_, ok = agg.Cached(3)
	assert.True(t, ok)
}

func TestDetailRecordsCacheMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	agg := NewDetailAggregator(inceptionSource(), WithDetailMetrics(metrics.New(reg)))

	_, _ = agg.Detail(context.Background(), 5)
	_, _ = agg.Detail(context.Background(), 5)
	_, _ = agg.Detail(context.Background(), 5)

	expected := `
# HELP moviefinder_detail_cache_total Movie detail cache lookups by result
# TYPE moviefinder_detail_cache_total counter
moviefinder_detail_cache_total{result="hit"} 2
moviefinder_detail_cache_total{result="miss"} 1
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "moviefinder_detail_cache_total"))
}

func TestResolveCertification(t *testing.T) {
	tests := []struct {
		name        string
		releases    []model.CountryReleases
		wantCert    string
		wantCountry string
	}{
		{
			name: "us wins over gb",
			releases: []model.CountryReleases{
				{Country: "GB", ReleaseDates: []model.ReleaseDate{{Certification: "15"}}},
				{Country: "US", ReleaseDates: []model.ReleaseDate{{Certification: ""}, {Certification: "R"}}},
			},
			wantCert:    "R",
			wantCountry: "US",
		},
		{
			name: "blank us falls back to priority list",
			releases: []model.CountryReleases{
				{Country: "US", ReleaseDates: []model.ReleaseDate{{Certification: ""}}},
				{Country: "DE", ReleaseDates: []model.ReleaseDate{{Certification: "12"}}},
				{Country: "CA", ReleaseDates: []model.ReleaseDate{{Certification: "PG"}}},
			},
			wantCert:    "PG",
			wantCountry: "CA",
		},
		{
			name: "value is kept as sent",
			releases: []model.CountryReleases{
				{Country: "US", ReleaseDates: []model.ReleaseDate{{Certification: "  "}, {Certification: " PG-13 "}}},
			},
			wantCert:    " PG-13 ",
			wantCountry: "US",
		},
		{
			name: "unlisted country is ignored",
			releases: []model.CountryReleases{
				{Country: "SE", ReleaseDates: []model.ReleaseDate{{Certification: "11"}}},
			},
			wantCert:    "N/A",
			wantCountry: "N/A",
		},
		{
			name:        "empty",
			wantCert:    "N/A",
			wantCountry: "N/A",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cert, country := ResolveCertification(tt.releases)
			assert.Equal(t, tt.wantCert, cert)
			assert.Equal(t, tt.wantCountry, country)
		})
	}
}

func TestResolveTrailersNeverNil(t *testing.T) {
	got := ResolveTrailers(nil)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}
