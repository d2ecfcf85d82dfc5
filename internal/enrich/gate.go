package enrich

import (
	"context"
	"time"

	"golang.org/x/sync/semaphore"
)

// Gate bounds simultaneous outstanding provider calls and enforces a
// per-provider politeness delay before a slot is released, so call rate
// stays bounded even when individual calls return quickly.
type Gate struct {
	sem   *semaphore.Weighted
	delay time.Duration
	sleep func(context.Context, time.Duration)
}

// NewGate creates a gate admitting at most limit concurrent calls, holding
// each slot for delay after the call completes.
func NewGate(limit int64, delay time.Duration) *Gate {
	if limit < 1 {
		limit = 1
	}
	return &Gate{
		sem:   semaphore.NewWeighted(limit),
		delay: delay,
		sleep: sleepContext,
	}
}

// Do runs fn while holding a slot. The politeness delay is served before the
// slot is released, whether or not fn succeeded.
func (g *Gate) Do(ctx context.Context, fn func(context.Context) error) error {
	if err := g.sem.Acquire(ctx, 1); err != nil {
		return err
	}
	defer g.sem.Release(1)

	err := fn(ctx)
	if g.delay > 0 {
		g.sleep(ctx, g.delay)
	}
	return err
}

func sleepContext(ctx context.Context, d time.Duration) {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
