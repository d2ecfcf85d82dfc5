package enrich

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"marquee/internal/cache"
	"marquee/internal/catalog"
	"marquee/internal/config"
	"marquee/internal/language"
	"marquee/internal/logging"
	"marquee/internal/providers/imdb"
	"marquee/internal/providers/tmdb"
	"marquee/internal/services"
)

// Options controls one enrichment run.
type Options struct {
	// Force re-resolves every item and overwrites identifier and list
	// fields even when already populated. The poster trust ladder and the
	// description boilerplate rule still apply.
	Force bool
	// Limit caps how many items are resolved; zero means no cap.
	Limit int
}

// Enricher drives items through the strategy chain, cache, gated provider
// calls, and the merge rules. Construct with New; all collaborators are
// injected so tests run against fakes.
type Enricher struct {
	cfg    *config.Config
	logger *slog.Logger

	aggregator tmdb.API
	suggester  imdb.Suggester
	store      cache.Backend
	site       PosterSource

	tmdbGate *Gate
	imdbGate *Gate
	siteGate *Gate
	retrier  *Retrier
}

// PosterSource mirrors fallback.PosterSource without importing it, keeping
// the engine agnostic to how site artwork is scraped.
type PosterSource interface {
	PosterURL(ctx context.Context, item *catalog.Item) (string, error)
}

// New creates an enricher. suggester and site may be nil when the secondary
// lookup or the site fallback are disabled.
func New(cfg *config.Config, logger *slog.Logger, aggregator tmdb.API, suggester imdb.Suggester, store cache.Backend, site PosterSource) *Enricher {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Enricher{
		cfg:        cfg,
		logger:     logger.With(logging.String(logging.FieldComponent, "enrich")),
		aggregator: aggregator,
		suggester:  suggester,
		store:      store,
		site:       site,
		tmdbGate:   NewGate(int64(cfg.Enrichment.Concurrency), time.Duration(cfg.TMDB.DelayMS)*time.Millisecond),
		imdbGate:   NewGate(int64(cfg.Enrichment.Concurrency), time.Duration(cfg.IMDB.DelayMS)*time.Millisecond),
		siteGate:   NewGate(int64(cfg.Enrichment.Concurrency), time.Duration(cfg.Fallback.DelayMS)*time.Millisecond),
		retrier:    NewRetrier(cfg.Enrichment.MaxAttempts),
	}
}

// log derives a logger carrying the run id, item title, and provider the
// context has accumulated.
func (e *Enricher) log(ctx context.Context) *slog.Logger {
	return logging.WithContext(ctx, e.logger)
}

// Run enriches every item in the collection that still needs work, bounded
// by the configured concurrency. Items are mutated in place, so input order
// is preserved regardless of completion order. Per-item failures never
// abort the batch.
func (e *Enricher) Run(ctx context.Context, col *catalog.Collection, opts Options) (*Summary, error) {
	summary := &Summary{
		RunID:   uuid.NewString(),
		Started: time.Now(),
		Total:   len(col.Items),
	}
	ctx = services.WithRunID(ctx, summary.RunID)

	merger := &Merger{
		ImageBase: e.cfg.TMDB.ImageBaseURL,
		Preferred: e.cfg.Images.PreferredLanguages,
		Force:     opts.Force,
	}

	var pending []*catalog.Item
	for _, item := range col.Items {
		if !opts.Force && !item.NeedsEnrichment() {
			summary.Skipped++
			continue
		}
		if opts.Limit > 0 && len(pending) >= opts.Limit {
			summary.Skipped++
			continue
		}
		pending = append(pending, item)
	}

	e.log(ctx).InfoContext(ctx, "starting enrichment run",
		logging.Int("total", summary.Total),
		logging.Int("pending", len(pending)),
		logging.Bool("force", opts.Force))

	var wg sync.WaitGroup
	for _, item := range pending {
		wg.Add(1)
		go func(item *catalog.Item) {
			defer wg.Done()
			itemCtx := services.WithItemTitle(ctx, item.Title)
			outcome, cacheHit := e.resolveItem(itemCtx, item, merger, opts)
			summary.record(outcome, cacheHit, item)
			e.logOutcome(itemCtx, item, outcome)
		}(item)
	}
	wg.Wait()

	summary.Duration = time.Since(summary.Started)
	e.log(ctx).InfoContext(ctx, "enrichment run complete",
		logging.Int("enriched", summary.Enriched),
		logging.Int("not_found", summary.NotFound),
		logging.Int("transient", summary.Transient),
		logging.Int("skipped", summary.Skipped),
		logging.Int("cache_hits", summary.CacheHits),
		logging.Duration("duration", summary.Duration))
	return summary, ctx.Err()
}

// resolveItem carries one item from query planning through merge.
func (e *Enricher) resolveItem(ctx context.Context, item *catalog.Item, merger *Merger, opts Options) (Outcome, bool) {
	key := cache.Key(CleanTitle(item.Title), item.ReleaseYear())

	if cached, ok := e.lookupCache(ctx, key, opts.Force); ok {
		if cached.NotFound {
			e.applySiteFallback(ctx, item, merger)
			return NotFound(), true
		}
		var res Resolution
		if err := json.Unmarshal(cached.Payload, &res); err == nil && res.TMDBID > 0 {
			merger.ApplyIdentity(item, res)
			e.fetchDetails(ctx, item, merger, res)
			e.applySiteFallback(ctx, item, merger)
			return Found(res), true
		}
		// Unreadable payload: fall through and re-resolve the key.
	}

	outcome := e.search(ctx, item)
	if outcome.Status == OutcomeFound {
		e.storeResolution(ctx, item, key, outcome.Resolution)
		merger.ApplyIdentity(item, outcome.Resolution)
		e.fetchDetails(ctx, item, merger, outcome.Resolution)
	} else {
		// Negative entries cover exhausted-retry failures too, so a rerun
		// against the same inputs never re-issues the failed query.
		e.storeMiss(ctx, item, key)
	}
	e.applySiteFallback(ctx, item, merger)
	return outcome, false
}

func (e *Enricher) lookupCache(ctx context.Context, key string, force bool) (*cache.Entry, bool) {
	if e.store == nil {
		return nil, false
	}
	entry, found, err := e.store.Get(ctx, key)
	if err != nil {
		e.log(ctx).WarnContext(ctx, "cache read failed", logging.String(logging.FieldCacheKey, key), logging.Error(err))
		return nil, false
	}
	if !found {
		return nil, false
	}
	// Force mode retries previous misses but still reuses positive matches;
	// the detail fetches below refresh every field anyway.
	if force && entry.NotFound {
		return nil, false
	}
	return entry, true
}

// search walks the strategy chain until one query yields a usable match,
// then falls back to the secondary identifier lookup.
func (e *Enricher) search(ctx context.Context, item *catalog.Item) Outcome {
	ctx = services.WithProvider(ctx, catalog.SourceTMDB)
	hint := item.Language
	if hint == "" {
		hint = language.FromURL(item.SourceURL)
	}
	queries := PlanQueries(item.Title, language.QueryTerm(hint), item.ReleaseYear())
	var lastTransient error

	for _, query := range queries {
		var resp *tmdb.SearchResponse
		err := e.tmdbGate.Do(ctx, func(ctx context.Context) error {
			return e.retrier.Do(ctx, func(ctx context.Context) error {
				var callErr error
				resp, callErr = e.aggregator.SearchMulti(ctx, query)
				return callErr
			})
		})
		switch {
		case err == nil:
			if result, ok := SelectEntity(resp.Results, item.TitleType); ok {
				return Found(Resolution{
					TMDBID:    result.ID,
					MediaType: result.MediaType,
					Title:     result.DisplayTitle(),
					Date:      result.Date(),
				})
			}
		case services.Retryable(err):
			// Retries exhausted; treat as a miss for this query but keep
			// the cause for the summary.
			lastTransient = err
			e.log(ctx).WarnContext(ctx, "search attempt exhausted retries",
				logging.String(logging.FieldQuery, query), logging.Error(err))
		case errors.Is(err, services.ErrNotFound):
		default:
			e.log(ctx).WarnContext(ctx, "search failed",
				logging.String(logging.FieldQuery, query), logging.Error(err))
		}
		if ctx.Err() != nil {
			return Transient(ctx.Err())
		}
	}

	if outcome, ok := e.recoverViaIMDB(ctx, item); ok {
		return outcome
	}
	if lastTransient != nil {
		return Transient(lastTransient)
	}
	return NotFound()
}

// recoverViaIMDB resolves items the aggregator search missed: look the
// title up on the suggestion API, then map the IMDb id back through the
// find endpoint.
func (e *Enricher) recoverViaIMDB(ctx context.Context, item *catalog.Item) (Outcome, bool) {
	if e.suggester == nil {
		return Outcome{}, false
	}
	ctx = services.WithProvider(ctx, catalog.SourceIMDB)
	cleaned := CleanTitle(item.Title)

	var suggestions []imdb.Suggestion
	err := e.imdbGate.Do(ctx, func(ctx context.Context) error {
		return e.retrier.Do(ctx, func(ctx context.Context) error {
			var callErr error
			suggestions, callErr = e.suggester.Suggest(ctx, cleaned)
			return callErr
		})
	})
	if err != nil || len(suggestions) == 0 {
		return Outcome{}, false
	}

	suggestion := pickSuggestion(suggestions, item.ReleaseYear())
	item.IMDBID = suggestion.ID

	var found *tmdb.FindResponse
	err = e.tmdbGate.Do(ctx, func(ctx context.Context) error {
		return e.retrier.Do(ctx, func(ctx context.Context) error {
			var callErr error
			found, callErr = e.aggregator.FindByIMDBID(ctx, suggestion.ID)
			return callErr
		})
	})
	if err != nil {
		return Outcome{}, false
	}

	candidates := make([]tmdb.Result, 0, len(found.MovieResults)+len(found.TVResults))
	for _, r := range found.MovieResults {
		r.MediaType = tmdb.MediaMovie
		candidates = append(candidates, r)
	}
	for _, r := range found.TVResults {
		r.MediaType = tmdb.MediaTV
		candidates = append(candidates, r)
	}
	result, ok := SelectEntity(candidates, item.TitleType)
	if !ok {
		return Outcome{}, false
	}
	e.log(ctx).InfoContext(ctx, "recovered match via external id",
		logging.String("imdb_id", suggestion.ID),
		logging.Int64("tmdb_id", result.ID))
	return Found(Resolution{
		TMDBID:    result.ID,
		MediaType: result.MediaType,
		Title:     result.DisplayTitle(),
		Date:      result.Date(),
	}), true
}

// pickSuggestion prefers a suggestion matching the item's year, falling
// back to the first.
func pickSuggestion(suggestions []imdb.Suggestion, year int) imdb.Suggestion {
	if year > 0 {
		for _, s := range suggestions {
			if s.Year == year {
				return s
			}
		}
	}
	return suggestions[0]
}

// fetchDetails runs the detail sub-calls for a matched record. Each call is
// independently gated and retried; a failure skips that field group and the
// rest of the response path still applies.
func (e *Enricher) fetchDetails(ctx context.Context, item *catalog.Item, merger *Merger, res Resolution) {
	ctx = services.WithProvider(ctx, catalog.SourceTMDB)
	mediaType := res.MediaType

	if details, err := detailCall(ctx, e, func(ctx context.Context) (*tmdb.Details, error) {
		return e.aggregator.Details(ctx, mediaType, res.TMDBID)
	}); err == nil {
		merger.ApplyDetails(item, details)
	} else {
		e.logFieldSkip(ctx, "details", err)
	}

	if ids, err := detailCall(ctx, e, func(ctx context.Context) (*tmdb.ExternalIDs, error) {
		return e.aggregator.ExternalIDs(ctx, mediaType, res.TMDBID)
	}); err == nil {
		merger.ApplyExternalID(item, ids.IMDBID)
	} else {
		e.logFieldSkip(ctx, "external_ids", err)
	}

	if images, err := detailCall(ctx, e, func(ctx context.Context) (*tmdb.ImagesResponse, error) {
		return e.aggregator.Images(ctx, mediaType, res.TMDBID)
	}); err == nil {
		merger.ApplyImages(item, images)
	} else {
		e.logFieldSkip(ctx, "images", err)
	}

	if credits, err := detailCall(ctx, e, func(ctx context.Context) (*tmdb.CreditsResponse, error) {
		return e.aggregator.Credits(ctx, mediaType, res.TMDBID)
	}); err == nil {
		merger.ApplyCredits(item, credits)
	} else {
		e.logFieldSkip(ctx, "credits", err)
	}

	if videos, err := detailCall(ctx, e, func(ctx context.Context) (*tmdb.VideosResponse, error) {
		return e.aggregator.Videos(ctx, mediaType, res.TMDBID)
	}); err == nil {
		merger.ApplyTrailer(item, videos)
	} else {
		e.logFieldSkip(ctx, "videos", err)
	}
}

// detailCall wraps one typed sub-call with the gate and retrier.
func detailCall[T any](ctx context.Context, e *Enricher, fn func(context.Context) (*T, error)) (*T, error) {
	var out *T
	err := e.tmdbGate.Do(ctx, func(ctx context.Context) error {
		return e.retrier.Do(ctx, func(ctx context.Context) error {
			var callErr error
			out, callErr = fn(ctx)
			return callErr
		})
	})
	return out, err
}

func (e *Enricher) logFieldSkip(ctx context.Context, field string, err error) {
	e.log(ctx).WarnContext(ctx, "skipping field group",
		logging.String("field", field), logging.Error(err))
}

// applySiteFallback scrapes the item's own page for a poster when no
// provider supplied one.
func (e *Enricher) applySiteFallback(ctx context.Context, item *catalog.Item, merger *Merger) {
	if e.site == nil || !merger.mayReplacePoster(item, catalog.SourceSite) {
		return
	}
	ctx = services.WithProvider(ctx, catalog.SourceSite)
	var posterURL string
	err := e.siteGate.Do(ctx, func(ctx context.Context) error {
		return e.retrier.Do(ctx, func(ctx context.Context) error {
			var callErr error
			posterURL, callErr = e.site.PosterURL(ctx, item)
			return callErr
		})
	})
	if err != nil {
		e.logFieldSkip(ctx, "site_poster", err)
		return
	}
	merger.ApplySitePoster(item, posterURL)
}

func (e *Enricher) storeResolution(ctx context.Context, item *catalog.Item, key string, res Resolution) {
	if e.store == nil {
		return
	}
	payload, err := json.Marshal(res)
	if err != nil {
		return
	}
	entry := cache.Entry{
		Key:     key,
		Title:   CleanTitle(item.Title),
		Year:    item.ReleaseYear(),
		Payload: payload,
	}
	if err := e.store.Put(ctx, entry); err != nil {
		e.log(ctx).WarnContext(ctx, "cache write failed", logging.String(logging.FieldCacheKey, key), logging.Error(err))
	}
}

func (e *Enricher) storeMiss(ctx context.Context, item *catalog.Item, key string) {
	if e.store == nil {
		return
	}
	entry := cache.Entry{
		Key:      key,
		Title:    CleanTitle(item.Title),
		Year:     item.ReleaseYear(),
		NotFound: true,
	}
	if err := e.store.Put(ctx, entry); err != nil {
		e.log(ctx).WarnContext(ctx, "cache write failed", logging.String(logging.FieldCacheKey, key), logging.Error(err))
	}
}

func (e *Enricher) logOutcome(ctx context.Context, item *catalog.Item, outcome Outcome) {
	switch outcome.Status {
	case OutcomeFound:
		e.log(ctx).InfoContext(ctx, "item enriched",
			logging.Int64("tmdb_id", item.TMDBID),
			logging.String("media_type", item.TMDBMediaType))
	case OutcomeNotFound:
		e.log(ctx).InfoContext(ctx, "no match for item")
	case OutcomeTransient:
		e.log(ctx).WarnContext(ctx, "item deferred after transient failures", logging.Error(outcome.Cause))
	}
}
