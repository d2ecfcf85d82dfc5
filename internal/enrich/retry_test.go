package enrich

import (
	"context"
	"errors"
	"testing"
	"time"

	"marquee/internal/services"
)

func newTestRetrier(attempts int) (*Retrier, *[]time.Duration) {
	r := NewRetrier(attempts)
	var waits []time.Duration
	r.sleep = func(_ context.Context, d time.Duration) {
		waits = append(waits, d)
	}
	return r, &waits
}

func TestRetrySucceedsOnThirdAttempt(t *testing.T) {
	r, waits := newTestRetrier(3)
	calls := 0
	err := r.Do(context.Background(), func(context.Context) error {
		calls++
		if calls < 3 {
			return services.Wrap(services.ErrTransient, "tmdb", "search", "timeout", nil)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Do returned error: %v", err)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
	wantWaits := []time.Duration{2 * time.Second, 4 * time.Second}
	if len(*waits) != 2 || (*waits)[0] != wantWaits[0] || (*waits)[1] != wantWaits[1] {
		t.Errorf("backoff waits = %v, want %v", *waits, wantWaits)
	}
}

func TestRetryStopsAtAttemptBudget(t *testing.T) {
	r, _ := newTestRetrier(3)
	calls := 0
	cause := services.Wrap(services.ErrTransient, "tmdb", "search", "connection refused", nil)
	err := r.Do(context.Background(), func(context.Context) error {
		calls++
		return cause
	})
	if calls != 3 {
		t.Errorf("calls = %d, want exactly 3", calls)
	}
	if !errors.Is(err, services.ErrTransient) {
		t.Errorf("cause must be preserved, got %v", err)
	}
}

func TestRetryNeverRepeatsNotFound(t *testing.T) {
	r, waits := newTestRetrier(3)
	calls := 0
	err := r.Do(context.Background(), func(context.Context) error {
		calls++
		return services.Wrap(services.ErrNotFound, "tmdb", "search", "no match", nil)
	})
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
	if !errors.Is(err, services.ErrNotFound) {
		t.Errorf("unexpected error: %v", err)
	}
	if len(*waits) != 0 {
		t.Errorf("no backoff expected, got %v", *waits)
	}
}

func TestRetryNeverRepeatsPermanent(t *testing.T) {
	r, _ := newTestRetrier(3)
	calls := 0
	r.Do(context.Background(), func(context.Context) error {
		calls++
		return services.Wrap(services.ErrPermanent, "tmdb", "search", "401", nil)
	})
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestRetryHonorsContext(t *testing.T) {
	r, _ := newTestRetrier(3)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := r.Do(ctx, func(context.Context) error {
		t.Error("call must not run after cancellation")
		return nil
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context error, got %v", err)
	}
}
