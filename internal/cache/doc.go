// Package cache provides the durable resolution cache shared across
// enrichment runs.
//
// Entries are keyed by a stable hash of (normalized title, year) and hold
// either a normalized provider result or an explicit not-found marker, so a
// repeated run never re-issues a query that already failed. The store is
// SQLite-backed; Memory wraps it with an in-process hot layer so concurrent
// tasks hitting the same key skip the database.
//
// Entries never expire on their own; they are cleared only by explicit
// deletion.
package cache
