package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"movie-finder-cli/config"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, ParseLevel("DEBUG"))
	assert.Equal(t, zerolog.WarnLevel, ParseLevel("warn"))
	assert.Equal(t, zerolog.ErrorLevel, ParseLevel("error"))
	assert.Equal(t, zerolog.InfoLevel, ParseLevel(""))
	assert.Equal(t, zerolog.InfoLevel, ParseLevel("bogus"))
}

func TestJSONOutputWithComponent(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(config.LoggingConfig{Level: "info", Format: "json"}, &buf, false)

	catalogLogger := Component(logger, "catalog")
	catalogLogger.Info().Int("movie_id", 27205).Msg("fetched")
	logger.Debug().Msg("dropped")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry))
	assert.Equal(t, "catalog", entry["component"])
	assert.Equal(t, "fetched", entry["message"])
	assert.EqualValues(t, 27205, entry["movie_id"])
}

func TestConsoleOutputWithoutColor(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(config.LoggingConfig{Level: "debug", Format: "console"}, &buf, false)

	logger.Debug().Str("query", "batman").Msg("search")

	out := buf.String()
	assert.Contains(t, out, "search")
	assert.Contains(t, out, "query=batman")
	assert.NotContains(t, out, "\x1b[")
}

func TestFileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "movie-finder.log")
	logger, closer := New(config.LoggingConfig{Level: "info", Format: "json", File: path})

	logger.Info().Msg("to file")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "to file")
}

func TestDefaultFileUnderUserConfigDir(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("HOME", dir)

	path, err := DefaultFile()
	require.NoError(t, err)
	base, err := os.UserConfigDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(base, "movie-finder-cli", "movie-finder.log"), path)
	assert.DirExists(t, filepath.Dir(path))
}
