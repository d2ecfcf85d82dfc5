package cache

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"marquee/internal/config"
)

//go:embed schema.sql
var schemaSQL string

// schemaVersion is the current schema version. Bump this when the schema
// changes; users must clear the cache database after a bump.
const schemaVersion = 1

// ErrSchemaMismatch indicates the database schema version doesn't match the
// expected version.
var ErrSchemaMismatch = errors.New("schema version mismatch")

// Entry is one cached resolution: either a normalized provider result payload
// or an explicit not-found marker.
type Entry struct {
	Key       string
	Title     string
	Year      int
	NotFound  bool
	Payload   json.RawMessage
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Store manages cache persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the cache database.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}
	return OpenPath(filepath.Join(cfg.Paths.DataDir, "resolution_cache.db"))
}

// OpenPath opens the cache database at an explicit location.
func OpenPath(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file location.
func (s *Store) Path() string { return s.path }

func (s *Store) initSchema(ctx context.Context) error {
	var tableExists int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	).Scan(&tableExists)
	if err != nil {
		return fmt.Errorf("check schema_version table: %w", err)
	}

	if tableExists == 0 {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin schema tx: %w", err)
		}
		defer func() { _ = tx.Rollback() }()
		if _, err := tx.ExecContext(ctx, schemaSQL); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
		if _, err := tx.ExecContext(ctx, "INSERT INTO schema_version (version) VALUES (?)", schemaVersion); err != nil {
			return fmt.Errorf("record schema version: %w", err)
		}
		return tx.Commit()
	}

	var version int
	if err := s.db.QueryRowContext(ctx, "SELECT version FROM schema_version LIMIT 1").Scan(&version); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if version != schemaVersion {
		return fmt.Errorf("%w: database has version %d, expected %d (run 'marquee cache clear' or delete %s)",
			ErrSchemaMismatch, version, schemaVersion, s.path)
	}
	return nil
}

// Get returns the entry for key if one exists.
func (s *Store) Get(ctx context.Context, key string) (*Entry, bool, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT key, title, year, not_found, payload, created_at, updated_at
         FROM resolution_cache WHERE key = ?`, key)

	var entry Entry
	var notFound int
	var payload sql.NullString
	var createdAt, updatedAt string
	err := row.Scan(&entry.Key, &entry.Title, &entry.Year, &notFound, &payload, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("query cache: %w", err)
	}

	entry.NotFound = notFound != 0
	if payload.Valid && payload.String != "" {
		entry.Payload = json.RawMessage(payload.String)
	}
	entry.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
	entry.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updatedAt)
	return &entry, true, nil
}

// Put inserts or replaces the entry for its key. Last write wins; a duplicate
// write from a concurrent task is benign.
func (s *Store) Put(ctx context.Context, entry Entry) error {
	if entry.Key == "" {
		return errors.New("cache entry key must not be empty")
	}
	now := time.Now().UTC().Format(time.RFC3339Nano)
	notFound := 0
	if entry.NotFound {
		notFound = 1
	}
	var payload any
	if len(entry.Payload) > 0 {
		payload = string(entry.Payload)
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO resolution_cache (key, title, year, not_found, payload, created_at, updated_at)
         VALUES (?, ?, ?, ?, ?, ?, ?)
         ON CONFLICT(key) DO UPDATE SET
             title = excluded.title,
             year = excluded.year,
             not_found = excluded.not_found,
             payload = excluded.payload,
             updated_at = excluded.updated_at`,
		entry.Key, entry.Title, entry.Year, notFound, payload, now, now)
	if err != nil {
		return fmt.Errorf("upsert cache entry: %w", err)
	}
	return nil
}

// Delete removes the entry for key. Missing keys are not an error.
func (s *Store) Delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM resolution_cache WHERE key = ?", key); err != nil {
		return fmt.Errorf("delete cache entry: %w", err)
	}
	return nil
}

// Clear removes every entry.
func (s *Store) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM resolution_cache"); err != nil {
		return fmt.Errorf("clear cache: %w", err)
	}
	return nil
}

// List returns up to limit entries ordered by most recently updated.
func (s *Store) List(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT key, title, year, not_found, payload, created_at, updated_at
         FROM resolution_cache ORDER BY updated_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list cache: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var entry Entry
		var notFound int
		var payload sql.NullString
		var createdAt, updatedAt string
		if err := rows.Scan(&entry.Key, &entry.Title, &entry.Year, &notFound, &payload, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("scan cache row: %w", err)
		}
		entry.NotFound = notFound != 0
		if payload.Valid && payload.String != "" {
			entry.Payload = json.RawMessage(payload.String)
		}
		entry.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
		entry.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updatedAt)
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// Stats reports total and negative entry counts.
func (s *Store) Stats(ctx context.Context) (total int, negative int, err error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1), COALESCE(SUM(not_found), 0) FROM resolution_cache")
	if err := row.Scan(&total, &negative); err != nil {
		return 0, 0, fmt.Errorf("cache stats: %w", err)
	}
	return total, negative, nil
}
