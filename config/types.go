package config

import "time"

// Config represents the complete configuration structure
type Config struct {
	Catalog  CatalogConfig  `mapstructure:"catalog"`
	Backend  BackendConfig  `mapstructure:"backend"`
	Browser  BrowserConfig  `mapstructure:"browser"`
	Detail   DetailConfig   `mapstructure:"detail"`
	Trending TrendingConfig `mapstructure:"trending"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
}

// CatalogConfig holds movie catalog API connection details
type CatalogConfig struct {
	BaseURL      string        `mapstructure:"base_url"`
	APIKey       string        `mapstructure:"api_key"`
	ImageBaseURL string        `mapstructure:"image_base_url"`
	Timeout      time.Duration `mapstructure:"timeout"`
}

// BackendConfig selects where search counts are kept
type BackendConfig struct {
	Driver     string       `mapstructure:"driver"`
	Collection string       `mapstructure:"collection"`
	Redis      RedisConfig  `mapstructure:"redis"`
	SQLite     SQLiteConfig `mapstructure:"sqlite"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type SQLiteConfig struct {
	Path string `mapstructure:"path"`
}

// BrowserConfig tunes pagination and query debouncing
type BrowserConfig struct {
	MaxPages int           `mapstructure:"max_pages"`
	Debounce time.Duration `mapstructure:"debounce"`
}

// DetailConfig controls the movie detail cache. CacheSize 0 keeps every entry.
type DetailConfig struct {
	CacheSize int `mapstructure:"cache_size"`
}

type TrendingConfig struct {
	Limit int `mapstructure:"limit"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Color  bool   `mapstructure:"color"`
	File   string `mapstructure:"file"`
}

type MetricsConfig struct {
	Addr string `mapstructure:"addr"`
}
