// Package tmdb provides a typed client for The Movie Database API, the
// primary metadata aggregator for enrichment. Failures are classified so the
// retry layer knows which calls are worth repeating.
package tmdb
