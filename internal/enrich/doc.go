// Package enrich resolves scraped content items to canonical metadata. It
// plans search query variants per item, consults the resolution cache,
// drives gated and retried provider calls, selects the best candidate among
// ambiguous results, and merges fields under trust rules that never let a
// lower-trust source clobber higher-trust data.
package enrich
