package enrich

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestGateBoundsConcurrency(t *testing.T) {
	gate := NewGate(5, 0)

	var current, peak atomic.Int64
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := gate.Do(context.Background(), func(context.Context) error {
				n := current.Add(1)
				for {
					p := peak.Load()
					if n <= p || peak.CompareAndSwap(p, n) {
						break
					}
				}
				time.Sleep(5 * time.Millisecond)
				current.Add(-1)
				return nil
			})
			if err != nil {
				t.Errorf("gate.Do returned error: %v", err)
			}
		}()
	}
	wg.Wait()

	if got := peak.Load(); got > 5 {
		t.Errorf("peak concurrency = %d, want at most 5", got)
	}
}

func TestGateDelaysBeforeRelease(t *testing.T) {
	gate := NewGate(1, 250*time.Millisecond)
	var slept []time.Duration
	gate.sleep = func(_ context.Context, d time.Duration) {
		slept = append(slept, d)
	}

	// The delay is served even when the call fails.
	failure := context.DeadlineExceeded
	if err := gate.Do(context.Background(), func(context.Context) error { return failure }); err != failure {
		t.Fatalf("gate.Do = %v, want the call's error", err)
	}
	if len(slept) != 1 || slept[0] != 250*time.Millisecond {
		t.Errorf("politeness delays = %v", slept)
	}
}

func TestGateRespectsCancelledContext(t *testing.T) {
	gate := NewGate(1, 0)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := gate.Do(ctx, func(context.Context) error {
		t.Error("call must not run after cancellation")
		return nil
	})
	if err == nil {
		t.Fatal("expected acquire error on cancelled context")
	}
}
