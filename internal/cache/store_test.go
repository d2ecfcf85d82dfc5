package cache_test

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"marquee/internal/cache"
)

func newStore(t *testing.T) *cache.Store {
	t.Helper()
	store, err := cache.OpenPath(filepath.Join(t.TempDir(), "cache.db"))
	if err != nil {
		t.Fatalf("OpenPath returned error: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestKeyStability(t *testing.T) {
	a := cache.Key("Stranger Things", 2016)
	b := cache.Key("  stranger   THINGS ", 2016)
	if a != b {
		t.Fatalf("normalized titles must share a key: %q vs %q", a, b)
	}
	if cache.Key("Stranger Things", 2016) == cache.Key("Stranger Things", 0) {
		t.Fatal("year must participate in the key")
	}
}

func TestPutGetRoundTrip(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	payload := json.RawMessage(`{"id":27205,"media_type":"movie"}`)
	entry := cache.Entry{
		Key:     cache.Key("Inception", 2010),
		Title:   "Inception",
		Year:    2010,
		Payload: payload,
	}
	if err := store.Put(ctx, entry); err != nil {
		t.Fatalf("Put returned error: %v", err)
	}

	got, found, err := store.Get(ctx, entry.Key)
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if !found {
		t.Fatal("expected cache hit")
	}
	if got.NotFound {
		t.Fatal("positive entry flagged not-found")
	}
	if string(got.Payload) != string(payload) {
		t.Fatalf("payload mismatch: %s", got.Payload)
	}
	if got.UpdatedAt.IsZero() {
		t.Fatal("expected updated_at to be set")
	}
}

func TestNegativeEntry(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	entry := cache.Entry{Key: cache.Key("Nonexistent Film", 0), Title: "Nonexistent Film", NotFound: true}
	if err := store.Put(ctx, entry); err != nil {
		t.Fatalf("Put returned error: %v", err)
	}

	got, found, err := store.Get(ctx, entry.Key)
	if err != nil || !found {
		t.Fatalf("expected hit, got found=%v err=%v", found, err)
	}
	if !got.NotFound {
		t.Fatal("expected not-found marker to survive the round trip")
	}
	if len(got.Payload) != 0 {
		t.Fatalf("negative entry must carry no payload, got %s", got.Payload)
	}
}

func TestPutOverwritesLastWriteWins(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()
	key := cache.Key("Example", 2024)

	if err := store.Put(ctx, cache.Entry{Key: key, Title: "Example", NotFound: true}); err != nil {
		t.Fatalf("first Put: %v", err)
	}
	if err := store.Put(ctx, cache.Entry{Key: key, Title: "Example", Payload: json.RawMessage(`{"id":1}`)}); err != nil {
		t.Fatalf("second Put: %v", err)
	}

	got, _, err := store.Get(ctx, key)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.NotFound || len(got.Payload) == 0 {
		t.Fatalf("expected second write to win, got %+v", got)
	}
}

func TestGetMissing(t *testing.T) {
	store := newStore(t)
	_, found, err := store.Get(context.Background(), cache.Key("never seen", 0))
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if found {
		t.Fatal("expected miss for unknown key")
	}
}

func TestClearAndStats(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	for i, title := range []string{"A", "B", "C"} {
		entry := cache.Entry{Key: cache.Key(title, 0), Title: title, NotFound: i == 2}
		if err := store.Put(ctx, entry); err != nil {
			t.Fatalf("Put %s: %v", title, err)
		}
	}

	total, negative, err := store.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if total != 3 || negative != 1 {
		t.Fatalf("Stats = (%d, %d), want (3, 1)", total, negative)
	}

	if err := store.Clear(ctx); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	total, _, err = store.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats after clear: %v", err)
	}
	if total != 0 {
		t.Fatalf("expected empty cache after clear, got %d", total)
	}
}

func TestPersistenceAcrossOpens(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cache.db")
	ctx := context.Background()

	store, err := cache.OpenPath(path)
	if err != nil {
		t.Fatalf("OpenPath: %v", err)
	}
	key := cache.Key("Persistent", 2020)
	if err := store.Put(ctx, cache.Entry{Key: key, Title: "Persistent", NotFound: true}); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened, err := cache.OpenPath(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()
	_, found, err := reopened.Get(ctx, key)
	if err != nil || !found {
		t.Fatalf("expected entry to survive reopen, found=%v err=%v", found, err)
	}
}

func TestMemoryLayerServesBackendMisses(t *testing.T) {
	store := newStore(t)
	mem := cache.NewMemory(store)
	ctx := context.Background()

	key := cache.Key("Hot", 2025)
	if err := mem.Put(ctx, cache.Entry{Key: key, Title: "Hot", Payload: json.RawMessage(`{"id":9}`)}); err != nil {
		t.Fatalf("Put: %v", err)
	}

	// Remove from the backend only; the hot layer should still serve it.
	if err := store.Delete(ctx, key); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	entry, found, err := mem.Get(ctx, key)
	if err != nil || !found {
		t.Fatalf("expected hot layer hit, found=%v err=%v", found, err)
	}
	if string(entry.Payload) != `{"id":9}` {
		t.Fatalf("unexpected payload %s", entry.Payload)
	}
}
