package services

import "context"

type contextKey string

const (
	itemTitleKey contextKey = "item_title"
	providerKey  contextKey = "provider"
	runIDKey     contextKey = "run_id"
)

// WithItemTitle annotates context with the catalog item currently being enriched.
func WithItemTitle(ctx context.Context, title string) context.Context {
	if title == "" {
		return ctx
	}
	return context.WithValue(ctx, itemTitleKey, title)
}

// ItemTitleFromContext extracts the catalog item title if present.
func ItemTitleFromContext(ctx context.Context) (string, bool) {
	if str, ok := ctx.Value(itemTitleKey).(string); ok && str != "" {
		return str, true
	}
	return "", false
}

// WithProvider annotates context with the metadata provider being queried.
func WithProvider(ctx context.Context, provider string) context.Context {
	if provider == "" {
		return ctx
	}
	return context.WithValue(ctx, providerKey, provider)
}

// ProviderFromContext returns the provider name if present.
func ProviderFromContext(ctx context.Context) (string, bool) {
	if str, ok := ctx.Value(providerKey).(string); ok && str != "" {
		return str, true
	}
	return "", false
}

// WithRunID annotates context with the batch run identifier.
func WithRunID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, runIDKey, id)
}

// RunIDFromContext returns the batch run identifier if present.
func RunIDFromContext(ctx context.Context) (string, bool) {
	if str, ok := ctx.Value(runIDKey).(string); ok && str != "" {
		return str, true
	}
	return "", false
}
