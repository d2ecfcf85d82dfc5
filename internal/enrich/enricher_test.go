package enrich

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"marquee/internal/cache"
	"marquee/internal/catalog"
	"marquee/internal/logging"
	"marquee/internal/providers/imdb"
	"marquee/internal/providers/tmdb"
	"marquee/internal/services"
	"marquee/internal/testsupport"
)

type fakeAPI struct {
	searchFn func(query string) (*tmdb.SearchResponse, error)
	findFn   func(imdbID string) (*tmdb.FindResponse, error)

	details *tmdb.Details
	ids     *tmdb.ExternalIDs
	images  *tmdb.ImagesResponse
	credits *tmdb.CreditsResponse
	videos  *tmdb.VideosResponse

	searchCalls atomic.Int64
	inflight    atomic.Int64
	peak        atomic.Int64
	callDelay   time.Duration
}

func (f *fakeAPI) track() func() {
	n := f.inflight.Add(1)
	for {
		p := f.peak.Load()
		if n <= p || f.peak.CompareAndSwap(p, n) {
			break
		}
	}
	if f.callDelay > 0 {
		time.Sleep(f.callDelay)
	}
	return func() { f.inflight.Add(-1) }
}

func (f *fakeAPI) SearchMulti(_ context.Context, query string) (*tmdb.SearchResponse, error) {
	defer f.track()()
	f.searchCalls.Add(1)
	if f.searchFn != nil {
		return f.searchFn(query)
	}
	return &tmdb.SearchResponse{}, nil
}

func (f *fakeAPI) Details(context.Context, string, int64) (*tmdb.Details, error) {
	defer f.track()()
	return f.details, nil
}

func (f *fakeAPI) ExternalIDs(context.Context, string, int64) (*tmdb.ExternalIDs, error) {
	defer f.track()()
	if f.ids == nil {
		return &tmdb.ExternalIDs{}, nil
	}
	return f.ids, nil
}

func (f *fakeAPI) Images(context.Context, string, int64) (*tmdb.ImagesResponse, error) {
	defer f.track()()
	if f.images == nil {
		return &tmdb.ImagesResponse{}, nil
	}
	return f.images, nil
}

func (f *fakeAPI) Credits(context.Context, string, int64) (*tmdb.CreditsResponse, error) {
	defer f.track()()
	if f.credits == nil {
		return &tmdb.CreditsResponse{}, nil
	}
	return f.credits, nil
}

func (f *fakeAPI) Videos(context.Context, string, int64) (*tmdb.VideosResponse, error) {
	defer f.track()()
	if f.videos == nil {
		return &tmdb.VideosResponse{}, nil
	}
	return f.videos, nil
}

func (f *fakeAPI) FindByIMDBID(_ context.Context, imdbID string) (*tmdb.FindResponse, error) {
	defer f.track()()
	if f.findFn != nil {
		return f.findFn(imdbID)
	}
	return &tmdb.FindResponse{}, nil
}

type fakeBackend struct {
	mu      sync.Mutex
	entries map[string]cache.Entry
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{entries: make(map[string]cache.Entry)}
}

func (b *fakeBackend) Get(_ context.Context, key string) (*cache.Entry, bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	entry, ok := b.entries[key]
	if !ok {
		return nil, false, nil
	}
	return &entry, true, nil
}

func (b *fakeBackend) Put(_ context.Context, entry cache.Entry) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.entries[entry.Key] = entry
	return nil
}

func (b *fakeBackend) Delete(_ context.Context, key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.entries, key)
	return nil
}

type fakeSuggester struct {
	suggestions []imdb.Suggestion
	calls       atomic.Int64
}

func (s *fakeSuggester) Suggest(context.Context, string) ([]imdb.Suggestion, error) {
	s.calls.Add(1)
	return s.suggestions, nil
}

func matchAPI(id int64, mediaType, title string) *fakeAPI {
	return &fakeAPI{
		searchFn: func(string) (*tmdb.SearchResponse, error) {
			return &tmdb.SearchResponse{Results: []tmdb.Result{
				{ID: id, MediaType: mediaType, Title: title},
			}}, nil
		},
		details: &tmdb.Details{ID: id, Title: title, Overview: "A synopsis.", Genres: []tmdb.Genre{{Name: "Drama"}}},
		ids:     &tmdb.ExternalIDs{IMDBID: "tt0000001"},
		images: &tmdb.ImagesResponse{
			Posters: []tmdb.Image{{FilePath: "/p.jpg", Language: "en", VoteAverage: 7.0}},
		},
		videos: &tmdb.VideosResponse{Results: []tmdb.Video{
			{Key: "trailer", Site: "YouTube", Type: "Trailer", Official: true, Name: "Trailer"},
		}},
	}
}

func TestRunEnrichesItem(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	api := matchAPI(27205, "movie", "Inception")
	backend := newFakeBackend()
	enricher := New(cfg, nil, api, nil, backend, nil)

	col := &catalog.Collection{Items: []*catalog.Item{
		testsupport.NewItem("Inception (2010)", testsupport.WithTitleType(catalog.MediaTypeMovie)),
	}}
	summary, err := enricher.Run(context.Background(), col, Options{})
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if summary.Enriched != 1 {
		t.Fatalf("summary = %+v, want 1 enriched", summary)
	}
	if summary.ProviderIDs != 1 || summary.ExternalIDs != 1 || summary.Posters != 1 {
		t.Errorf("field counters = %d/%d/%d, want 1/1/1",
			summary.ProviderIDs, summary.ExternalIDs, summary.Posters)
	}

	item := col.Items[0]
	if item.TMDBID != 27205 || item.TMDBMediaType != "movie" {
		t.Errorf("identity = %d/%s", item.TMDBID, item.TMDBMediaType)
	}
	if item.IMDBID != "tt0000001" {
		t.Errorf("external id = %q", item.IMDBID)
	}
	if item.Description != "A synopsis." {
		t.Errorf("description = %q", item.Description)
	}
	if item.PosterSource != catalog.SourceTMDB {
		t.Errorf("poster source = %q", item.PosterSource)
	}
	if item.TrailerID != "trailer" {
		t.Errorf("trailer = %q", item.TrailerID)
	}

	key := cache.Key(CleanTitle(item.Title), item.ReleaseYear())
	entry, found, _ := backend.Get(context.Background(), key)
	if !found || entry.NotFound {
		t.Fatalf("expected positive cache entry, got %+v found=%v", entry, found)
	}
	var res Resolution
	if err := json.Unmarshal(entry.Payload, &res); err != nil || res.TMDBID != 27205 {
		t.Errorf("cached resolution = %+v (err %v)", res, err)
	}
}

func TestNegativeCachingSkipsNetwork(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	api := &fakeAPI{}
	backend := newFakeBackend()

	title := "Unknown Film"
	key := cache.Key(CleanTitle(title), 0)
	backend.Put(context.Background(), cache.Entry{Key: key, Title: title, NotFound: true})

	enricher := New(cfg, nil, api, nil, backend, nil)
	col := &catalog.Collection{Items: []*catalog.Item{testsupport.NewItem(title)}}
	summary, err := enricher.Run(context.Background(), col, Options{})
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if got := api.searchCalls.Load(); got != 0 {
		t.Errorf("search calls = %d, want 0 for a negative cache hit", got)
	}
	if summary.NotFound != 1 || summary.CacheHits != 1 {
		t.Errorf("summary = %+v", summary)
	}
}

func TestMissesAreCachedAcrossRuns(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	api := &fakeAPI{}
	backend := newFakeBackend()
	enricher := New(cfg, nil, api, nil, backend, nil)

	col := &catalog.Collection{Items: []*catalog.Item{testsupport.NewItem("Nothing Matches")}}
	if _, err := enricher.Run(context.Background(), col, Options{}); err != nil {
		t.Fatalf("first run: %v", err)
	}
	firstCalls := api.searchCalls.Load()
	if firstCalls == 0 {
		t.Fatal("first run must hit the network")
	}

	if _, err := enricher.Run(context.Background(), col, Options{}); err != nil {
		t.Fatalf("second run: %v", err)
	}
	if got := api.searchCalls.Load(); got != firstCalls {
		t.Errorf("second run issued %d extra calls, want 0", got-firstCalls)
	}
}

func TestConcurrencyBound(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Enrichment.Concurrency = 5
	api := &fakeAPI{callDelay: 5 * time.Millisecond}
	enricher := New(cfg, nil, api, nil, newFakeBackend(), nil)

	items := make([]*catalog.Item, 20)
	for i := range items {
		items[i] = testsupport.NewItem("Title " + string(rune('A'+i)))
	}
	col := &catalog.Collection{Items: items}
	if _, err := enricher.Run(context.Background(), col, Options{}); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if got := api.peak.Load(); got > 5 {
		t.Errorf("peak outstanding calls = %d, want at most 5", got)
	}
}

func TestForceMode(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	api := matchAPI(500, "movie", "Replacement")
	backend := newFakeBackend()
	enricher := New(cfg, nil, api, nil, backend, nil)

	enriched := func() *catalog.Item {
		set := catalog.PosterSet{Original: "https://old/poster.jpg"}
		return &catalog.Item{
			Title:         "Old Film",
			TMDBID:        1,
			TMDBMediaType: "movie",
			Genres:        []string{"Comedy"},
			Posters:       &set,
			PosterSource:  catalog.SourceTMDB,
		}
	}

	// Without force a fully-enriched item is skipped outright.
	col := &catalog.Collection{Items: []*catalog.Item{enriched()}}
	summary, err := enricher.Run(context.Background(), col, Options{})
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if summary.Skipped != 1 || api.searchCalls.Load() != 0 {
		t.Fatalf("summary = %+v, search calls = %d", summary, api.searchCalls.Load())
	}
	if col.Items[0].TMDBID != 1 || col.Items[0].Genres[0] != "Comedy" {
		t.Fatal("non-force run must leave fields untouched")
	}

	// Force re-resolves and overwrites identifiers and list fields.
	col = &catalog.Collection{Items: []*catalog.Item{enriched()}}
	summary, err = enricher.Run(context.Background(), col, Options{Force: true})
	if err != nil {
		t.Fatalf("forced run returned error: %v", err)
	}
	if summary.Enriched != 1 {
		t.Fatalf("forced summary = %+v", summary)
	}
	item := col.Items[0]
	if item.TMDBID != 500 {
		t.Errorf("identifier = %d, want overwritten", item.TMDBID)
	}
	if len(item.Genres) != 1 || item.Genres[0] != "Drama" {
		t.Errorf("genres = %v, want replaced", item.Genres)
	}
}

func TestRecoveryViaExternalID(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	api := &fakeAPI{
		findFn: func(imdbID string) (*tmdb.FindResponse, error) {
			if imdbID != "tt7466810" {
				t.Errorf("find called with %q", imdbID)
			}
			return &tmdb.FindResponse{MovieResults: []tmdb.Result{{ID: 530915, Title: "1917"}}}, nil
		},
		details: &tmdb.Details{ID: 530915, Title: "1917"},
	}
	suggester := &fakeSuggester{suggestions: []imdb.Suggestion{
		{ID: "tt7466810", Title: "1917", Year: 2019},
	}}
	enricher := New(cfg, nil, api, suggester, newFakeBackend(), nil)

	col := &catalog.Collection{Items: []*catalog.Item{
		testsupport.NewItem("1917", testsupport.WithYear(2019)),
	}}
	summary, err := enricher.Run(context.Background(), col, Options{})
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if summary.Enriched != 1 {
		t.Fatalf("summary = %+v", summary)
	}
	item := col.Items[0]
	if item.TMDBID != 530915 || item.TMDBMediaType != "movie" {
		t.Errorf("identity = %d/%s", item.TMDBID, item.TMDBMediaType)
	}
	if item.IMDBID != "tt7466810" {
		t.Errorf("external id = %q", item.IMDBID)
	}
}

func TestTransientFailuresDeferItem(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Enrichment.MaxAttempts = 1
	api := &fakeAPI{
		searchFn: func(string) (*tmdb.SearchResponse, error) {
			return nil, services.Wrap(services.ErrTransient, "tmdb", "search", "timeout", nil)
		},
	}
	enricher := New(cfg, nil, api, nil, newFakeBackend(), nil)

	col := &catalog.Collection{Items: []*catalog.Item{testsupport.NewItem("Flaky Title")}}
	summary, err := enricher.Run(context.Background(), col, Options{})
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if summary.Transient != 1 {
		t.Errorf("summary = %+v, want 1 transient", summary)
	}
	if col.Items[0].HasProviderID() {
		t.Error("item must stay unresolved after transient failures")
	}
}

func TestSiteFallbackFillsMissingPoster(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	api := &fakeAPI{
		searchFn: func(string) (*tmdb.SearchResponse, error) {
			return &tmdb.SearchResponse{Results: []tmdb.Result{{ID: 7, MediaType: "movie", Title: "Obscure"}}}, nil
		},
	}
	site := sitePosterFunc(func(context.Context, *catalog.Item) (string, error) {
		return "https://site.example/obscure.jpg", nil
	})
	enricher := New(cfg, nil, api, nil, newFakeBackend(), site)

	col := &catalog.Collection{Items: []*catalog.Item{testsupport.NewItem("Obscure")}}
	if _, err := enricher.Run(context.Background(), col, Options{}); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	item := col.Items[0]
	if item.PosterSource != catalog.SourceSite {
		t.Fatalf("poster source = %q", item.PosterSource)
	}
	if item.Posters == nil || item.Posters.Original != "https://site.example/obscure.jpg" {
		t.Errorf("poster = %+v", item.Posters)
	}
}

func TestLogLinesCarryContextFields(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	api := &fakeAPI{
		searchFn: func(string) (*tmdb.SearchResponse, error) {
			return nil, services.Wrap(services.ErrPermanent, "tmdb", "search", "rejected", nil)
		},
	}
	enricher := New(cfg, logger, api, nil, newFakeBackend(), nil)

	col := &catalog.Collection{Items: []*catalog.Item{testsupport.NewItem("Inception (2010)")}}
	if _, err := enricher.Run(context.Background(), col, Options{}); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	var sawSearchWarn bool
	for _, line := range bytes.Split(buf.Bytes(), []byte("\n")) {
		if len(line) == 0 {
			continue
		}
		var record map[string]any
		if err := json.Unmarshal(line, &record); err != nil {
			t.Fatalf("unreadable log line %q: %v", line, err)
		}
		if record[logging.FieldRunID] == "" || record[logging.FieldRunID] == nil {
			t.Errorf("log line missing run id: %s", line)
		}
		if record["msg"] == "search failed" {
			sawSearchWarn = true
			if record[logging.FieldItemTitle] != "Inception (2010)" {
				t.Errorf("item title = %v", record[logging.FieldItemTitle])
			}
			if record[logging.FieldProvider] != catalog.SourceTMDB {
				t.Errorf("provider = %v", record[logging.FieldProvider])
			}
		}
	}
	if !sawSearchWarn {
		t.Fatal("expected a search failure log line")
	}
}

type sitePosterFunc func(context.Context, *catalog.Item) (string, error)

func (f sitePosterFunc) PosterURL(ctx context.Context, item *catalog.Item) (string, error) {
	return f(ctx, item)
}

func TestLimitCapsWork(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	api := matchAPI(1, "movie", "Any")
	enricher := New(cfg, nil, api, nil, newFakeBackend(), nil)

	col := &catalog.Collection{Items: []*catalog.Item{
		testsupport.NewItem("One"),
		testsupport.NewItem("Two"),
		testsupport.NewItem("Three"),
	}}
	summary, err := enricher.Run(context.Background(), col, Options{Limit: 1})
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if summary.Enriched != 1 || summary.Skipped != 2 {
		t.Errorf("summary = %+v, want 1 processed and 2 skipped", summary)
	}
}
