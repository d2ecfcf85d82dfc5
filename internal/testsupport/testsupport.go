// Package testsupport provides shared helpers for package tests.
package testsupport

import (
	"path/filepath"
	"testing"

	"marquee/internal/cache"
	"marquee/internal/catalog"
	"marquee/internal/config"
)

// NewConfig returns a validated configuration rooted in a per-test temp
// directory, with politeness delays zeroed so tests run fast.
func NewConfig(t *testing.T) *config.Config {
	t.Helper()
	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.DataDir = filepath.Join(base, "data")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.TMDB.APIKey = "test-key"
	cfg.TMDB.DelayMS = 0
	cfg.IMDB.DelayMS = 0
	cfg.Fallback.DelayMS = 0
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("validate config: %v", err)
	}
	return &cfg
}

// NewStore opens a resolution cache store in the config's data directory
// and closes it when the test finishes.
func NewStore(t *testing.T, cfg *config.Config) *cache.Store {
	t.Helper()
	store, err := cache.Open(cfg)
	if err != nil {
		t.Fatalf("open cache store: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Errorf("close cache store: %v", err)
		}
	})
	return store
}

// NewItem builds a minimal scraped item.
func NewItem(title string, opts ...func(*catalog.Item)) *catalog.Item {
	item := &catalog.Item{Title: title}
	for _, opt := range opts {
		opt(item)
	}
	return item
}

// WithYear sets the item's release year.
func WithYear(year int) func(*catalog.Item) {
	return func(item *catalog.Item) { item.Year = year }
}

// WithTitleType sets the item's media-type hint.
func WithTitleType(titleType string) func(*catalog.Item) {
	return func(item *catalog.Item) { item.TitleType = titleType }
}

// WithLanguage sets the item's language hint.
func WithLanguage(lang string) func(*catalog.Item) {
	return func(item *catalog.Item) { item.Language = lang }
}
