package enrich

import (
	"sync"
	"time"

	"marquee/internal/catalog"
)

// Summary aggregates the outcome of one enrichment run.
type Summary struct {
	RunID    string
	Started  time.Time
	Duration time.Duration

	Total     int
	Skipped   int
	Enriched  int
	NotFound  int
	Transient int
	CacheHits int

	ProviderIDs int
	ExternalIDs int
	Posters     int

	mu sync.Mutex
}

func (s *Summary) record(outcome Outcome, cacheHit bool, item *catalog.Item) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cacheHit {
		s.CacheHits++
	}
	switch outcome.Status {
	case OutcomeFound:
		s.Enriched++
	case OutcomeNotFound:
		s.NotFound++
	case OutcomeTransient:
		s.Transient++
	}
	if item.HasProviderID() {
		s.ProviderIDs++
	}
	if item.HasExternalID() {
		s.ExternalIDs++
	}
	if item.HasPoster() {
		s.Posters++
	}
}

// Processed returns how many items were actually resolved this run.
func (s *Summary) Processed() int {
	return s.Enriched + s.NotFound + s.Transient
}
