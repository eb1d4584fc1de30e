// Package config provides configuration management for cinerealm.
// It uses koanf for flexible configuration loading from YAML files with validation.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config holds the complete configuration for the cinerealm daemon.
// It represents the structure of config.yaml with validation rules for each section.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Catalog  CatalogConfig  `koanf:"catalog"`
	Playback PlaybackConfig `koanf:"playback"`
	AnimeIDs AnimeIDsConfig `koanf:"anime_ids"`
	Storage  StorageConfig  `koanf:"storage"`
	Logging  LoggingConfig  `koanf:"logging"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Port              int           `koanf:"port"`
	Host              string        `koanf:"host"`
	ReadTimeout       time.Duration `koanf:"read_timeout"`
	WriteTimeout      time.Duration `koanf:"write_timeout"`
	EnableCompression bool          `koanf:"enable_compression"`
}

// CatalogConfig describes the third-party catalog proxy that serves TMDB
// metadata. The proxy is an opaque fetch boundary; only its base URL and
// request budget are configurable.
type CatalogConfig struct {
	BaseURL       string        `koanf:"base_url"`
	PathPrefix    string        `koanf:"path_prefix"`
	ImageBaseURL  string        `koanf:"image_base_url"`
	Timeout       time.Duration `koanf:"timeout"`
	RatePerSecond float64       `koanf:"rate_per_second"`
	RateBurst     int           `koanf:"rate_burst"`
	CacheTTL      time.Duration `koanf:"cache_ttl"`
}

// PlaybackConfig holds the default embed provider plus the documented
// defaults of the provider-agnostic playback options bag.
type PlaybackConfig struct {
	DefaultProvider string `koanf:"default_provider"`
	ThemeColor      string `koanf:"theme_color"`
	Dub             bool   `koanf:"dub"`
	AutoSkipIntro   bool   `koanf:"auto_skip_intro"`
}

// AnimeIDsConfig configures the external anime cross-reference services.
type AnimeIDsConfig struct {
	ConsumetBaseURL string        `koanf:"consumet_base_url"`
	AniListEndpoint string        `koanf:"anilist_endpoint"`
	Timeout         time.Duration `koanf:"timeout"`
}

// StorageConfig defines where local per-user state (watch history,
// watchlist, preferences) is persisted.
type StorageConfig struct {
	DataDirectory string `koanf:"data_directory"`
}

// LoggingConfig defines logging behavior and output format.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// Load reads configuration from the specified YAML file and applies validation.
// Returns a validated Config struct or an error if loading/validation fails.
// A missing file is not an error: defaults cover every setting.
func Load(configPath string) (*Config, error) {
	k := koanf.New(".")

	// Boolean defaults that are on by default go in as a koanf layer
	// under the file: a zero-valued bool after unmarshal cannot tell
	// "absent" from an explicit false.
	if err := k.Load(confmap.Provider(map[string]interface{}{
		"server.enable_compression": true,
	}, "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
				return nil, fmt.Errorf("failed to load config from %s: %w", configPath, err)
			}
		}
	}

	var config Config
	if err := k.Unmarshal("", &config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Apply defaults for missing values
	applyDefaults(&config)

	// Validate configuration
	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

// applyDefaults sets sensible defaults for configuration values that weren't specified.
func applyDefaults(config *Config) {
	// Server defaults
	if config.Server.Port == 0 {
		config.Server.Port = 8080
	}
	if config.Server.Host == "" {
		config.Server.Host = "0.0.0.0"
	}
	if config.Server.ReadTimeout == 0 {
		config.Server.ReadTimeout = 15 * time.Second
	}
	if config.Server.WriteTimeout == 0 {
		config.Server.WriteTimeout = 15 * time.Second
	}

	// Catalog defaults
	if config.Catalog.BaseURL == "" {
		config.Catalog.BaseURL = "https://ez-streaming-api.vercel.app"
	}
	if config.Catalog.PathPrefix == "" {
		config.Catalog.PathPrefix = "/api/tmdb"
	}
	if config.Catalog.ImageBaseURL == "" {
		config.Catalog.ImageBaseURL = "https://image.tmdb.org/t/p/w500"
	}
	if config.Catalog.Timeout == 0 {
		config.Catalog.Timeout = 15 * time.Second
	}
	if config.Catalog.RatePerSecond == 0 {
		config.Catalog.RatePerSecond = 20
	}
	if config.Catalog.RateBurst == 0 {
		config.Catalog.RateBurst = 5
	}
	if config.Catalog.CacheTTL == 0 {
		config.Catalog.CacheTTL = 6 * time.Hour
	}

	// Playback defaults
	if config.Playback.DefaultProvider == "" {
		config.Playback.DefaultProvider = "FluxLine"
	}
	if config.Playback.ThemeColor == "" {
		config.Playback.ThemeColor = "#4E0000"
	}

	// Anime ID mapping defaults
	if config.AnimeIDs.ConsumetBaseURL == "" {
		config.AnimeIDs.ConsumetBaseURL = "https://api.consumet.org"
	}
	if config.AnimeIDs.AniListEndpoint == "" {
		config.AnimeIDs.AniListEndpoint = "https://graphql.anilist.co"
	}
	if config.AnimeIDs.Timeout == 0 {
		config.AnimeIDs.Timeout = 10 * time.Second
	}

	// Storage defaults
	if config.Storage.DataDirectory == "" {
		config.Storage.DataDirectory = "./data"
	}

	// Logging defaults
	if config.Logging.Level == "" {
		config.Logging.Level = "info"
	}
	if config.Logging.Format == "" {
		config.Logging.Format = "text"
	}
}

// GetLogLevel converts the string log level to slog.Level.
// Returns slog.LevelInfo for invalid or unknown levels.
func (c *LoggingConfig) GetLogLevel() slog.Level {
	switch c.Level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// DatabasePath returns the location of the embedded state database.
func (c *StorageConfig) DatabasePath() string {
	return filepath.Join(c.DataDirectory, "cinerealm.db")
}

// CreateDataDirectory ensures the data directory exists.
func (c *StorageConfig) CreateDataDirectory() error {
	if err := os.MkdirAll(c.DataDirectory, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", c.DataDirectory, err)
	}
	return nil
}
