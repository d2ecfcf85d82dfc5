package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
)

// Collection is the on-disk shape the scrapers produce: a header plus the
// content array. The engine mutates Items in place and Save writes the whole
// document back.
type Collection struct {
	SourceURL  string  `json:"source_url,omitempty"`
	ScrapedAt  string  `json:"scraped_at,omitempty"`
	EnrichedAt string  `json:"enriched_at,omitempty"`
	Items      []*Item `json:"content"`
}

// Load reads a catalog JSON file. A bare top-level array is accepted as well,
// since some of the scrape outputs omit the header object.
func Load(path string) (*Collection, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}

	var col Collection
	if err := json.Unmarshal(data, &col); err == nil && col.Items != nil {
		return &col, nil
	}

	var items []*Item
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("parse catalog %s: %w", path, err)
	}
	return &Collection{Items: items}, nil
}

// Save writes the collection to path, creating the parent directory if
// needed, rotating any existing file to <path>.bak first and stamping
// EnrichedAt. A file lock guards against two enrichment runs writing the
// same dataset concurrently.
func (c *Collection) Save(path string) error {
	if err := EnsureParent(path); err != nil {
		return err
	}
	lock := flock.New(path + ".lock")
	locked, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("lock catalog: %w", err)
	}
	if !locked {
		return fmt.Errorf("catalog %s is locked by another run", path)
	}
	defer func() { _ = lock.Unlock() }()

	c.EnrichedAt = time.Now().UTC().Format(time.RFC3339)

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("encode catalog: %w", err)
	}

	if err := rotateBackup(path); err != nil {
		return err
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write catalog: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replace catalog: %w", err)
	}
	return nil
}

func rotateBackup(path string) error {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("stat catalog: %w", err)
	}
	backup := path + ".bak"
	if err := os.Rename(path, backup); err != nil {
		return fmt.Errorf("rotate backup: %w", err)
	}
	return nil
}

// EnsureParent creates the directory holding path.
func EnsureParent(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create catalog directory: %w", err)
	}
	return nil
}
