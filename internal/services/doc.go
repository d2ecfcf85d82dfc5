// Package services defines shared utilities consumed by the enrichment engine
// and the provider integrations.
//
// Key responsibilities:
//   - Context helpers that stamp item titles, provider names, and batch run
//     identifiers for logging and tracing.
//   - Structured error markers plus the Wrap helper that classify provider
//     failures into consistent outcomes (retryable vs not-found vs fatal).
//
// Use these helpers when wiring new provider logic so operational behaviour
// (error handling, observability, retries) stays uniform across the engine.
package services
