// Package catalog defines the content record the enrichment engine works on
// and the JSON collection persistence used by the surrounding pipeline.
//
// Items arrive from external scrapers with identifying fields only (title,
// source URL, release date, platform tags) and are mutated in place by the
// engine. Save rotates a .bak copy before overwriting and takes a file lock
// so only one enrichment run touches a dataset at a time.
package catalog
