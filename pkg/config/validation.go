package config

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// hexColorPattern matches a CSS hex color with optional leading '#'.
var hexColorPattern = regexp.MustCompile(`^#?[0-9a-fA-F]{6}$`)

// validate performs comprehensive validation of the configuration.
// Returns an error describing the first validation failure found.
func validate(config *Config) error {
	if err := validateServer(&config.Server); err != nil {
		return fmt.Errorf("server config: %w", err)
	}

	if err := validateCatalog(&config.Catalog); err != nil {
		return fmt.Errorf("catalog config: %w", err)
	}

	if err := validatePlayback(&config.Playback); err != nil {
		return fmt.Errorf("playback config: %w", err)
	}

	if err := validateAnimeIDs(&config.AnimeIDs); err != nil {
		return fmt.Errorf("anime_ids config: %w", err)
	}

	if err := validateLogging(&config.Logging); err != nil {
		return fmt.Errorf("logging config: %w", err)
	}

	return nil
}

// validateServer validates HTTP server configuration.
func validateServer(config *ServerConfig) error {
	if config.Port < 1 || config.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", config.Port)
	}

	if config.ReadTimeout <= 0 {
		return fmt.Errorf("read_timeout must be positive")
	}

	if config.WriteTimeout <= 0 {
		return fmt.Errorf("write_timeout must be positive")
	}

	return nil
}

// validateCatalog validates the catalog proxy boundary configuration.
func validateCatalog(config *CatalogConfig) error {
	if err := validateHTTPURL(config.BaseURL); err != nil {
		return fmt.Errorf("base_url: %w", err)
	}

	if !strings.HasPrefix(config.PathPrefix, "/") {
		return fmt.Errorf("path_prefix must start with '/', got %q", config.PathPrefix)
	}

	if err := validateHTTPURL(config.ImageBaseURL); err != nil {
		return fmt.Errorf("image_base_url: %w", err)
	}

	if config.RatePerSecond <= 0 {
		return fmt.Errorf("rate_per_second must be positive")
	}

	if config.RateBurst < 1 {
		return fmt.Errorf("rate_burst must be at least 1")
	}

	return nil
}

// validatePlayback validates playback defaults. The default provider name is
// checked against the registry by the player wiring, not here, to keep config
// free of a provider dependency.
func validatePlayback(config *PlaybackConfig) error {
	if config.DefaultProvider == "" {
		return fmt.Errorf("default_provider is required")
	}

	if !hexColorPattern.MatchString(config.ThemeColor) {
		return fmt.Errorf("theme_color must be a 6-digit hex color, got %q", config.ThemeColor)
	}

	return nil
}

// validateAnimeIDs validates the anime cross-reference service endpoints.
func validateAnimeIDs(config *AnimeIDsConfig) error {
	if err := validateHTTPURL(config.ConsumetBaseURL); err != nil {
		return fmt.Errorf("consumet_base_url: %w", err)
	}

	if err := validateHTTPURL(config.AniListEndpoint); err != nil {
		return fmt.Errorf("anilist_endpoint: %w", err)
	}

	if config.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}

	return nil
}

// validateLogging validates logging configuration.
func validateLogging(config *LoggingConfig) error {
	validLevels := []string{"debug", "info", "warn", "error"}
	levelValid := false
	for _, level := range validLevels {
		if config.Level == level {
			levelValid = true
			break
		}
	}
	if !levelValid {
		return fmt.Errorf("level must be one of %v, got %q", validLevels, config.Level)
	}

	if config.Format != "text" && config.Format != "json" {
		return fmt.Errorf("format must be 'text' or 'json', got %q", config.Format)
	}

	return nil
}

// validateHTTPURL checks that a value parses as an absolute http(s) URL.
func validateHTTPURL(value string) error {
	if value == "" {
		return fmt.Errorf("url is required")
	}

	u, err := url.Parse(value)
	if err != nil {
		return fmt.Errorf("invalid url %q: %w", value, err)
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("url must use http or https scheme, got %q", value)
	}

	if u.Host == "" {
		return fmt.Errorf("url must have a host, got %q", value)
	}

	return nil
}
