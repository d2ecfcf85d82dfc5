package config

import (
	"errors"
	"fmt"
	"strings"

	"marquee/internal/services"
)

// Validate ensures the configuration is usable. A failure here is a
// configuration error and aborts the run before any item is processed.
func (c *Config) Validate() error {
	if err := c.validateTMDB(); err != nil {
		return services.Wrap(services.ErrConfiguration, "config", "tmdb", "", err)
	}
	if err := c.validateIMDB(); err != nil {
		return services.Wrap(services.ErrConfiguration, "config", "imdb", "", err)
	}
	if err := c.validateEnrichment(); err != nil {
		return services.Wrap(services.ErrConfiguration, "config", "enrichment", "", err)
	}
	if err := c.validateLogging(); err != nil {
		return services.Wrap(services.ErrConfiguration, "config", "logging", "", err)
	}
	return nil
}

func (c *Config) validateTMDB() error {
	if c.TMDB.APIKey == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = "~/.config/marquee/config.toml"
		}
		return fmt.Errorf("tmdb.api_key is required. Set TMDB_API_KEY env var or edit %s (create with 'marquee config init')", defaultPath)
	}
	if !strings.HasPrefix(c.TMDB.BaseURL, "http") {
		return fmt.Errorf("tmdb.base_url must be an http(s) URL, got %q", c.TMDB.BaseURL)
	}
	return nil
}

func (c *Config) validateIMDB() error {
	if !c.IMDB.Enabled {
		return nil
	}
	if !strings.HasPrefix(c.IMDB.BaseURL, "http") {
		return fmt.Errorf("imdb.base_url must be an http(s) URL, got %q", c.IMDB.BaseURL)
	}
	return nil
}

func (c *Config) validateEnrichment() error {
	if c.Enrichment.Concurrency > 64 {
		return errors.New("enrichment.concurrency above 64 would hammer provider rate limits")
	}
	if c.Enrichment.MaxAttempts > 10 {
		return errors.New("enrichment.max_attempts above 10 is unreasonable")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch strings.ToLower(strings.TrimSpace(c.Logging.Format)) {
	case "console", "json":
		return nil
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
}
