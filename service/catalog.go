package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"movie-finder-cli/logging"
	"movie-finder-cli/metrics"
	"movie-finder-cli/model"
)

const (
	DefaultBaseURL      = "https://api.themoviedb.org/3"
	DefaultImageBaseURL = "https://image.tmdb.org/t/p/w500"
)

// Options configures a catalog Client.
type Options struct {
	BaseURL      string
	APIKey       string
	ImageBaseURL string
	// HTTPClient defaults to a client with no timeout of its own.
	HTTPClient *http.Client
	Logger     zerolog.Logger
	Metrics    *metrics.Metrics
}

// Client wraps bearer-authenticated access to the movie catalog API.
type Client struct {
	httpClient   *http.Client
	baseURL      string
	apiKey       string
	imageBaseURL string
	logger       zerolog.Logger
	metrics      *metrics.Metrics
}

// APIError is returned when the catalog responds with a non-2xx status.
type APIError struct {
	StatusCode int
	Status     string
	Endpoint   string
	Body       string
}

func (e *APIError) Error() string {
	if e == nil {
		return "catalog api error"
	}
	return fmt.Sprintf("catalog api error: %s: %s", e.Status, e.Body)
}

// IsNotFound reports whether the error represents a 404 from the API.
func IsNotFound(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == http.StatusNotFound
	}
	return false
}

// IsUnauthorized reports whether the API rejected the bearer token.
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == http.StatusUnauthorized || apiErr.StatusCode == http.StatusForbidden
	}
	return false
}

var ErrInvalidMovieID = errors.New("movie id must be positive")

func NewClient(opts Options) (*Client, error) {
	apiKey := strings.TrimSpace(opts.APIKey)
	if apiKey == "" {
		return nil, errors.New("catalog api key is required")
	}
	baseURL := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	imageBaseURL := strings.TrimRight(strings.TrimSpace(opts.ImageBaseURL), "/")
	if imageBaseURL == "" {
		imageBaseURL = DefaultImageBaseURL
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Client{
		httpClient:   httpClient,
		baseURL:      baseURL,
		apiKey:       apiKey,
		imageBaseURL: imageBaseURL,
		logger:       logging.Component(opts.Logger, "catalog"),
		metrics:      opts.Metrics,
	}, nil
}

// SearchMovies runs a text search with adult titles excluded.
func (c *Client) SearchMovies(ctx context.Context, query string, page int) (model.MoviePage, error) {
	params := url.Values{}
	params.Set("include_adult", "false")
	params.Set("query", query)
	params.Set("page", strconv.Itoa(normalizePage(page)))

	var out model.MoviePage
	if err := c.getJSON(ctx, "search", "/search/movie", params, &out); err != nil {
		return model.MoviePage{}, err
	}
	return out, nil
}

// DiscoverMovies returns a popularity-sorted discovery page.
func (c *Client) DiscoverMovies(ctx context.Context, page int) (model.MoviePage, error) {
	params := url.Values{}
	params.Set("include_adult", "false")
	params.Set("sort_by", "popularity.desc")
	params.Set("page", strconv.Itoa(normalizePage(page)))

	var out model.MoviePage
	if err := c.getJSON(ctx, "discover", "/discover/movie", params, &out); err != nil {
		return model.MoviePage{}, err
	}
	return out, nil
}

// MovieBase fetches the base metadata of a single movie.
func (c *Client) MovieBase(ctx context.Context, id int) (model.MovieBase, error) {
	if id <= 0 {
		return model.MovieBase{}, ErrInvalidMovieID
	}
	var out model.MovieBase
	if err := c.getJSON(ctx, "movie", fmt.Sprintf("/movie/%d", id), nil, &out); err != nil {
		return model.MovieBase{}, err
	}
	return out, nil
}

// ReleaseDates fetches per-country release and certification records.
func (c *Client) ReleaseDates(ctx context.Context, id int) (model.ReleaseDatesResponse, error) {
	if id <= 0 {
		return model.ReleaseDatesResponse{}, ErrInvalidMovieID
	}
	var out model.ReleaseDatesResponse
	if err := c.getJSON(ctx, "release_dates", fmt.Sprintf("/movie/%d/release_dates", id), nil, &out); err != nil {
		return model.ReleaseDatesResponse{}, err
	}
	return out, nil
}

// Videos fetches the video references attached to a movie.
func (c *Client) Videos(ctx context.Context, id int) (model.VideosResponse, error) {
	if id <= 0 {
		return model.VideosResponse{}, ErrInvalidMovieID
	}
	var out model.VideosResponse
	if err := c.getJSON(ctx, "videos", fmt.Sprintf("/movie/%d/videos", id), nil, &out); err != nil {
		return model.VideosResponse{}, err
	}
	return out, nil
}

// ImageURL expands a catalog image path. Empty paths stay empty.
func (c *Client) ImageURL(path string) string {
	if strings.TrimSpace(path) == "" {
		return ""
	}
	return c.imageBaseURL + path
}

func (c *Client) getJSON(ctx context.Context, name string, path string, params url.Values, out any) error {
	endpoint := c.baseURL + path
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")

	res, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.ObserveCatalogRequest(name, "transport_error", time.Since(start))
		return fmt.Errorf("request failed: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode < http.StatusOK || res.StatusCode >= http.StatusMultipleChoices {
		snippet, _ := io.ReadAll(io.LimitReader(res.Body, 8<<10))
		c.metrics.ObserveCatalogRequest(name, "http_error", time.Since(start))
		return &APIError{
			StatusCode: res.StatusCode,
			Status:     res.Status,
			Endpoint:   c.baseURL + path,
			Body:       strings.TrimSpace(string(snippet)),
		}
	}

	if err := json.NewDecoder(res.Body).Decode(out); err != nil && !errors.Is(err, io.EOF) {
		c.metrics.ObserveCatalogRequest(name, "decode_error", time.Since(start))
		return fmt.Errorf("decode response from %s: %w", c.baseURL+path, err)
	}

	c.metrics.ObserveCatalogRequest(name, "ok", time.Since(start))
	c.logger.Debug().
		Str("endpoint", name).
		Dur("elapsed", time.Since(start)).
		Msg("catalog request")
	return nil
}

func normalizePage(page int) int {
	if page < 1 {
		return 1
	}
	return page
}
