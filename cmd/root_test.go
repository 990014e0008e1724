package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"movie-finder-cli/config"
	"movie-finder-cli/logging"
)

type catalogStub struct {
	searches atomic.Int32
	server   *httptest.Server
}

func newCatalogStub(t *testing.T) *catalogStub {
	t.Helper()
	stub := &catalogStub{}
	writeJSON := func(w http.ResponseWriter, body any) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(body)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/search/movie", func(w http.ResponseWriter, r *http.Request) {
		stub.searches.Add(1)
		if r.URL.Query().Get("query") == "nothing" {
			writeJSON(w, map[string]any{"page": 1, "total_pages": 0, "results": []any{}})
			return
		}
		if r.URL.Query().Get("query") == "broken" {
			writeJSON(w, map[string]any{"Response": "False", "Error": "Invalid API key"})
			return
		}
		writeJSON(w, map[string]any{
			"page":        1,
			"total_pages": 1,
			"results": []map[string]any{
				{"id": 268, "title": "Batman", "release_date": "1989-06-23", "vote_average": 7.2, "genre_ids": []int{28}, "backdrop_path": "/bat.jpg"},
				{"id": 414906, "title": "The Batman", "release_date": "2022-03-01", "vote_average": 7.7, "genre_ids": []int{80}},
			},
		})
	})
	mux.HandleFunc("/discover/movie", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{
			"page":        1,
			"total_pages": 3,
			"results": []map[string]any{
				{"id": 27205, "title": "Inception", "release_date": "2010-07-15", "vote_average": 8.369, "genre_ids": []int{28}},
			},
		})
	})
	mux.HandleFunc("/genre/movie/list", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{"genres": []map[string]any{{"id": 28, "name": "Action"}, {"id": 80, "name": "Crime"}}})
	})
	mux.HandleFunc("/movie/27205", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{
			"id": 27205, "title": "Inception", "release_date": "2010-07-15", "runtime": 148,
			"vote_average": 8.369, "vote_count": 34000, "imdb_id": "tt1375666", "status": "Released",
			"budget": 160000000, "revenue": 839030630,
		})
	})
	mux.HandleFunc("/movie/27205/release_dates", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{"id": 27205, "results": []map[string]any{
			{"iso_3166_1": "GB", "release_dates": []map[string]any{{"certification": "12A"}}},
		}})
	})
	mux.HandleFunc("/movie/27205/videos", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{"id": 27205, "results": []map[string]any{
			{"site": "YouTube", "type": "Trailer", "key": "YoHD9XEInc0", "name": "Official Trailer"},
		}})
	})

	stub.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") == "Bearer revoked" {
			w.WriteHeader(http.StatusUnauthorized)
			writeJSON(w, map[string]any{"status_message": "Invalid API key: You must be granted a valid key."})
			return
		}
		mux.ServeHTTP(w, r)
	}))
	t.Cleanup(stub.server.Close)
	return stub
}

// setupEnv points the configuration at the stub catalog and a temporary
// SQLite backend so counts survive between command invocations.
func setupEnv(t *testing.T, stub *catalogStub) {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("TMDB_BASE_URL", stub.server.URL)
	t.Setenv("TMDB_API_KEY", "test-key")
	t.Setenv("BACKEND_DRIVER", "sqlite")
	t.Setenv("BACKEND_SQLITE_PATH", filepath.Join(dir, "trending.db"))
	t.Setenv("LOGGING_LEVEL", "error")

	previous := stdoutIsTerminal
	stdoutIsTerminal = func() bool { return false }
	t.Cleanup(func() { stdoutIsTerminal = previous })
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd()
	root.SetArgs(args)
	root.SetOut(&out)
	root.SetErr(&out)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestSearchPrintsTableAndRecordsCount(t *testing.T) {
	stub := newCatalogStub(t)
	setupEnv(t, stub)

	out, err := run(t, "search", "batman")
	require.NoError(t, err)
	assert.Contains(t, out, "Batman")
	assert.Contains(t, out, "The Batman")
	assert.Contains(t, out, "Action")
	assert.Contains(t, out, "1989")
	assert.Equal(t, int32(1), stub.searches.Load())

	_, err = run(t, "search", "batman")
	require.NoError(t, err)

	out, err = run(t, "trending")
	require.NoError(t, err)
	assert.Contains(t, out, "batman")
	assert.Contains(t, out, "https://image.tmdb.org/t/p/w500/bat.jpg")
	assert.Contains(t, out, "2")
}

func TestTrendingPosterUsesConfiguredImageBase(t *testing.T) {
	stub := newCatalogStub(t)
	setupEnv(t, stub)
	t.Setenv("CATALOG_IMAGE_BASE_URL", "https://img.example.test/w300/")

	_, err := run(t, "search", "batman")
	require.NoError(t, err)

	out, err := run(t, "trending")
	require.NoError(t, err)
	assert.Contains(t, out, "https://img.example.test/w300/bat.jpg")
	assert.NotContains(t, out, "image.tmdb.org")
}

func TestSearchWithoutResultsSkipsCount(t *testing.T) {
	stub := newCatalogStub(t)
	setupEnv(t, stub)

	out, err := run(t, "search", "nothing")
	require.NoError(t, err)
	assert.Contains(t, out, "No movies found.")

	out, err = run(t, "trending")
	require.NoError(t, err)
	assert.Contains(t, out, "No movies found.")
}

func TestSearchLogicalFailure(t *testing.T) {
	stub := newCatalogStub(t)
	setupEnv(t, stub)

	_, err := run(t, "search", "broken")
	require.Error(t, err)
	assert.Equal(t, "Invalid API key", err.Error())
}

func TestSearchRejectsPageOutOfRange(t *testing.T) {
	stub := newCatalogStub(t)
	setupEnv(t, stub)

	_, err := run(t, "search", "batman", "--page", "9")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "between 1 and 8")
	assert.Equal(t, int32(0), stub.searches.Load())
}

func TestDiscoverAndRootWithoutTerminal(t *testing.T) {
	stub := newCatalogStub(t)
	setupEnv(t, stub)

	out, err := run(t, "discover")
	require.NoError(t, err)
	assert.Contains(t, out, "Inception")
	assert.Contains(t, out, "8.4")

	out, err = run(t)
	require.NoError(t, err)
	assert.Contains(t, out, "Inception")
}

func TestDetailPrintsMergedView(t *testing.T) {
	stub := newCatalogStub(t)
	setupEnv(t, stub)

	out, err := run(t, "detail", "27205")
	require.NoError(t, err)
	assert.Contains(t, out, "Inception")
	assert.Contains(t, out, "12A")
	assert.Contains(t, out, "2h 28m")
	assert.Contains(t, out, "https://www.youtube.com/watch?v=YoHD9XEInc0")
	assert.Contains(t, out, "https://www.imdb.com/title/tt1375666")
	assert.Contains(t, out, "No genres available.")
}

func TestDetailRejectsBadID(t *testing.T) {
	stub := newCatalogStub(t)
	setupEnv(t, stub)

	_, err := run(t, "detail", "abc")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `invalid movie id "abc"`)

	_, err = run(t, "detail", "1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Failed to load movie details.")
	assert.Contains(t, err.Error(), "movie not found")
}

func TestRejectedAPIKeyNamesTheSetting(t *testing.T) {
	stub := newCatalogStub(t)
	setupEnv(t, stub)
	t.Setenv("TMDB_API_KEY", "revoked")

	_, err := run(t, "discover")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Failed to fetch movies. Please try again later.")
	assert.Contains(t, err.Error(), "check catalog.api_key")

	_, err = run(t, "detail", "27205")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "check catalog.api_key")
}

func TestMissingAPIKeyFails(t *testing.T) {
	stub := newCatalogStub(t)
	setupEnv(t, stub)
	t.Setenv("TMDB_API_KEY", "")

	_, err := run(t, "discover")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "catalog.api_key must be set")
}

func TestVersionSkipsConfig(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("TMDB_API_KEY", "")

	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, appName)
}

func TestLabelSearcher(t *testing.T) {
	labels := []string{"Batman (1989)", "The Batman (2022)", "Heat (1995)"}
	search := labelSearcher(labels)

	assert.True(t, search("batman", 0))
	assert.True(t, search("BAT", 1))
	assert.False(t, search("batman", 2))
	assert.True(t, search("  heat ", 2))
}

func TestTUILogsToDefaultFile(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("HOME", dir)

	cfg := &config.Config{}
	useTUILogFile(cfg)
	require.NotEmpty(t, cfg.Logging.File)
	assert.Equal(t, "movie-finder.log", filepath.Base(cfg.Logging.File))
	assert.DirExists(t, filepath.Dir(cfg.Logging.File))

	logger, closer := logging.New(cfg.Logging)
	logger.Error().Msg("catalog unreachable")
	require.NoError(t, closer.Close())
	data, err := os.ReadFile(cfg.Logging.File)
	require.NoError(t, err)
	assert.Contains(t, string(data), "catalog unreachable")

	cfg.Logging.File = "/var/log/custom.log"
	useTUILogFile(cfg)
	assert.Equal(t, "/var/log/custom.log", cfg.Logging.File)
}
