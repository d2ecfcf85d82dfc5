package catalog_test

import (
	"testing"

	"marquee/internal/catalog"
)

func TestReleaseYear(t *testing.T) {
	cases := []struct {
		name string
		item catalog.Item
		want int
	}{
		{"explicit year wins", catalog.Item{Year: 2010, ReleaseDate: "05 Nov 2025"}, 2010},
		{"from free-form date", catalog.Item{ReleaseDate: "05 Nov 2025"}, 2025},
		{"iso date", catalog.Item{ReleaseDate: "2024-07-01"}, 2024},
		{"no year", catalog.Item{ReleaseDate: "coming soon"}, 0},
		{"empty", catalog.Item{}, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.item.ReleaseYear(); got != tc.want {
				t.Fatalf("ReleaseYear() = %d, want %d", got, tc.want)
			}
		})
	}
}

func TestNeedsEnrichment(t *testing.T) {
	item := catalog.Item{Title: "Example"}
	if !item.NeedsEnrichment() {
		t.Fatal("bare item needs enrichment")
	}
	item.TMDBID = 42
	if !item.NeedsEnrichment() {
		t.Fatal("item without poster still needs enrichment")
	}
	item.Posters = &catalog.PosterSet{Original: "https://example.com/p.jpg"}
	if item.NeedsEnrichment() {
		t.Fatal("item with id and poster is complete")
	}
}

func TestTrustRankOrdering(t *testing.T) {
	order := []string{
		catalog.SourceTMDB,
		catalog.SourceIMDB,
		catalog.SourceSite,
		catalog.SourcePlaceholder,
	}
	for i := 0; i < len(order)-1; i++ {
		if catalog.TrustRank(order[i]) <= catalog.TrustRank(order[i+1]) {
			t.Fatalf("expected %s to outrank %s", order[i], order[i+1])
		}
	}
	if catalog.TrustRank("mystery") >= catalog.TrustRank(catalog.SourcePlaceholder) {
		t.Fatal("unknown provenance must rank below placeholder")
	}
}
