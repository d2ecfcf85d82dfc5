package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeTMDB()
	c.normalizeIMDB()
	c.normalizeFallback()
	c.normalizeEnrichment()
	c.normalizeImages()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		c.Paths.DataDir = defaultDataDir
	}
	if c.Paths.DataDir, err = ExpandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = ExpandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeTMDB() {
	if strings.TrimSpace(c.TMDB.APIKey) == "" {
		if value, ok := os.LookupEnv("TMDB_API_KEY"); ok {
			c.TMDB.APIKey = strings.TrimSpace(value)
		}
	}
	c.TMDB.BaseURL = strings.TrimRight(strings.TrimSpace(c.TMDB.BaseURL), "/")
	if c.TMDB.BaseURL == "" {
		c.TMDB.BaseURL = defaultTMDBBaseURL
	}
	c.TMDB.ImageBaseURL = strings.TrimRight(strings.TrimSpace(c.TMDB.ImageBaseURL), "/")
	if c.TMDB.ImageBaseURL == "" {
		c.TMDB.ImageBaseURL = defaultTMDBImageBaseURL
	}
	if strings.TrimSpace(c.TMDB.Language) == "" {
		c.TMDB.Language = defaultTMDBLanguage
	}
	if c.TMDB.DelayMS <= 0 {
		c.TMDB.DelayMS = defaultTMDBDelayMS
	}
}

func (c *Config) normalizeIMDB() {
	c.IMDB.BaseURL = strings.TrimRight(strings.TrimSpace(c.IMDB.BaseURL), "/")
	if c.IMDB.BaseURL == "" {
		c.IMDB.BaseURL = defaultIMDBBaseURL
	}
	if c.IMDB.DelayMS <= 0 {
		c.IMDB.DelayMS = defaultIMDBDelayMS
	}
}

func (c *Config) normalizeFallback() {
	if strings.TrimSpace(c.Fallback.UserAgent) == "" {
		c.Fallback.UserAgent = defaultFallbackUserAgent
	}
	if c.Fallback.DelayMS <= 0 {
		c.Fallback.DelayMS = defaultFallbackDelayMS
	}
}

func (c *Config) normalizeEnrichment() {
	if c.Enrichment.Concurrency <= 0 {
		c.Enrichment.Concurrency = defaultConcurrency
	}
	if c.Enrichment.MaxAttempts <= 0 {
		c.Enrichment.MaxAttempts = defaultMaxAttempts
	}
	if c.Enrichment.RequestTimeoutSeconds <= 0 {
		c.Enrichment.RequestTimeoutSeconds = defaultRequestTimeoutSeconds
	}
}

func (c *Config) normalizeImages() {
	if len(c.Images.PreferredLanguages) == 0 {
		c.Images.PreferredLanguages = defaultPreferredLanguages()
	}
	if len(c.Images.AvoidLanguages) == 0 {
		c.Images.AvoidLanguages = defaultAvoidLanguages()
	}
	c.Images.PreferredLanguages = lowerAll(c.Images.PreferredLanguages)
	c.Images.AvoidLanguages = lowerAll(c.Images.AvoidLanguages)
}

func (c *Config) normalizeLogging() {
	if strings.TrimSpace(c.Logging.Format) == "" {
		c.Logging.Format = defaultLogFormat
	}
	if strings.TrimSpace(c.Logging.Level) == "" {
		c.Logging.Level = defaultLogLevel
	}
}

func lowerAll(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		out = append(out, strings.ToLower(strings.TrimSpace(v)))
	}
	return out
}
