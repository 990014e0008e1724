package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

const (
	DefaultBaseURL      = "https://api.themoviedb.org/3"
	DefaultImageBaseURL = "https://image.tmdb.org/t/p/w500"
)

// Load loads the configuration from file and environment. A missing config
// file is not an error; the API key can come from TMDB_API_KEY alone.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)
	bindEnv(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")

		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".movie-finder-cli"))
		}
		v.AddConfigPath("/etc/movie-finder-cli/")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("catalog.base_url", DefaultBaseURL)
	v.SetDefault("catalog.api_key", "")
	v.SetDefault("catalog.image_base_url", DefaultImageBaseURL)
	v.SetDefault("catalog.timeout", "0s")

	v.SetDefault("backend.driver", "memory")
	v.SetDefault("backend.collection", "metrics")
	v.SetDefault("backend.redis.addr", "localhost:6379")
	v.SetDefault("backend.redis.password", "")
	v.SetDefault("backend.redis.db", 0)
	v.SetDefault("backend.sqlite.path", "")

	v.SetDefault("browser.max_pages", 8)
	v.SetDefault("browser.debounce", "1200ms")

	v.SetDefault("detail.cache_size", 0)
	v.SetDefault("trending.limit", 5)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.color", true)
	v.SetDefault("logging.file", "")

	v.SetDefault("metrics.addr", "")
}

func bindEnv(v *viper.Viper) {
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Names the catalog and backend documentation use.
	_ = v.BindEnv("catalog.base_url", "TMDB_BASE_URL")
	_ = v.BindEnv("catalog.api_key", "TMDB_API_KEY")
	_ = v.BindEnv("backend.collection", "BACKEND_COLLECTION")
	_ = v.BindEnv("backend.redis.addr", "BACKEND_REDIS_ADDR")
	_ = v.BindEnv("backend.sqlite.path", "BACKEND_SQLITE_PATH")
}

func validate(cfg *Config) error {
	if strings.TrimSpace(cfg.Catalog.BaseURL) == "" {
		return fmt.Errorf("catalog.base_url is required")
	}
	if strings.TrimSpace(cfg.Catalog.APIKey) == "" {
		return fmt.Errorf("catalog.api_key must be set")
	}
	if cfg.Catalog.Timeout < 0 {
		return fmt.Errorf("catalog.timeout must not be negative")
	}

	switch cfg.Backend.Driver {
	case "memory", "redis", "sqlite":
	default:
		return fmt.Errorf("invalid backend.driver: %s", cfg.Backend.Driver)
	}
	if strings.TrimSpace(cfg.Backend.Collection) == "" {
		return fmt.Errorf("backend.collection is required")
	}

	if cfg.Browser.MaxPages < 1 {
		return fmt.Errorf("browser.max_pages must be >= 1")
	}
	if cfg.Browser.Debounce < 0 {
		return fmt.Errorf("browser.debounce must not be negative")
	}
	if cfg.Trending.Limit < 1 {
		return fmt.Errorf("trending.limit must be >= 1")
	}

	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[cfg.Logging.Level] {
		return fmt.Errorf("invalid logging level: %s", cfg.Logging.Level)
	}

	validFormats := map[string]bool{
		"console": true,
		"json":    true,
	}
	if !validFormats[cfg.Logging.Format] {
		return fmt.Errorf("invalid logging format: %s", cfg.Logging.Format)
	}

	return nil
}
