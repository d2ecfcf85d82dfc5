package catalog

import (
	"regexp"
	"strings"
)

// Media types understood by the enrichment engine.
const (
	MediaTypeMovie = "movie"
	MediaTypeShow  = "show"
)

// Provenance tags attached to merged poster data, ordered by trust. A tag
// earlier in this ranking never gets overwritten by a later one.
const (
	SourceTMDB        = "tmdb"
	SourceIMDB        = "imdb"
	SourceSite        = "site"
	SourcePlaceholder = "placeholder"
)

// PosterSet holds one poster rendered at the named sizes.
type PosterSet struct {
	Thumbnail string `json:"thumbnail"`
	Small     string `json:"small"`
	Medium    string `json:"medium"`
	Large     string `json:"large"`
	XLarge    string `json:"xlarge"`
	Original  string `json:"original"`
	Language  string `json:"language,omitempty"`
}

// BackdropSet holds one backdrop rendered at the named sizes.
type BackdropSet struct {
	Small    string `json:"small"`
	Medium   string `json:"medium"`
	Large    string `json:"large"`
	Original string `json:"original"`
	Language string `json:"language,omitempty"`
}

// CastMember is one credited performer.
type CastMember struct {
	Name      string `json:"name"`
	Character string `json:"character,omitempty"`
	Image     string `json:"image,omitempty"`
}

// Item is the unit of work: a scraped content record enriched in place, once
// per pass, by the enrichment engine. The identifying fields come from the
// scraper; everything below the identifiers block is filled in by providers.
type Item struct {
	Title       string   `json:"title"`
	SourceURL   string   `json:"source_url,omitempty"`
	ReleaseDate string   `json:"release_date,omitempty"`
	Platforms   []string `json:"platforms,omitempty"`
	TitleType   string   `json:"title_type,omitempty"`
	Language    string   `json:"language,omitempty"`
	Year        int      `json:"year,omitempty"`

	TMDBID        int64  `json:"tmdb_id,omitempty"`
	TMDBMediaType string `json:"tmdb_media_type,omitempty"`
	IMDBID        string `json:"imdb_id,omitempty"`

	Description      string   `json:"description,omitempty"`
	Genres           []string `json:"genres,omitempty"`
	Runtime          int      `json:"runtime,omitempty"`
	EpisodeRuntime   []int    `json:"episode_runtime,omitempty"`
	SeasonCount      int      `json:"number_of_seasons,omitempty"`
	EpisodeCount     int      `json:"number_of_episodes,omitempty"`
	TMDBReleaseDate  string   `json:"tmdb_release_date,omitempty"`
	TMDBRating       float64  `json:"tmdb_rating,omitempty"`
	TMDBVoteCount    int64    `json:"tmdb_vote_count,omitempty"`
	Status           string   `json:"status,omitempty"`
	OriginalTitle    string   `json:"original_title,omitempty"`
	OriginalLanguage string   `json:"original_language,omitempty"`

	Posters        *PosterSet    `json:"posters,omitempty"`
	AllPosters     []PosterSet   `json:"all_posters,omitempty"`
	PosterLanguage string        `json:"poster_language,omitempty"`
	PosterSource   string        `json:"poster_source,omitempty"`
	Backdrops      *BackdropSet  `json:"backdrops,omitempty"`
	AllBackdrops   []BackdropSet `json:"all_backdrops,omitempty"`

	Cast      []CastMember `json:"cast,omitempty"`
	Directors []string     `json:"directors,omitempty"`
	Writers   []string     `json:"writers,omitempty"`

	TrailerID    string `json:"youtube_id,omitempty"`
	TrailerURL   string `json:"youtube_url,omitempty"`
	TrailerTitle string `json:"youtube_title,omitempty"`
}

// HasProviderID reports whether the item already carries a primary provider id.
func (i *Item) HasProviderID() bool { return i.TMDBID != 0 }

// HasExternalID reports whether the item already carries a cross-reference id.
func (i *Item) HasExternalID() bool { return strings.TrimSpace(i.IMDBID) != "" }

// HasPoster reports whether the item already carries poster renders.
func (i *Item) HasPoster() bool { return i.Posters != nil }

// HasDescription reports whether the item carries a non-empty description.
func (i *Item) HasDescription() bool { return strings.TrimSpace(i.Description) != "" }

// HasTrailer reports whether the item already carries a trailer reference.
func (i *Item) HasTrailer() bool { return strings.TrimSpace(i.TrailerID) != "" }

// NeedsEnrichment reports whether a non-force pass should touch the item at
// all: anything missing its provider id or poster qualifies.
func (i *Item) NeedsEnrichment() bool {
	return !i.HasProviderID() || !i.HasPoster()
}

var yearPattern = regexp.MustCompile(`\d{4}`)

// ReleaseYear returns the item's year hint, falling back to the first
// four-digit run in the free-form release date ("05 Nov 2025" yields 2025).
func (i *Item) ReleaseYear() int {
	if i.Year > 0 {
		return i.Year
	}
	match := yearPattern.FindString(i.ReleaseDate)
	if match == "" {
		return 0
	}
	year := 0
	for _, r := range match {
		year = year*10 + int(r-'0')
	}
	return year
}

// TrustRank maps a provenance tag to its position in the trust order. Higher
// is more trusted; unknown tags rank below everything so any recognized
// provider may replace them.
func TrustRank(source string) int {
	switch source {
	case SourceTMDB:
		return 3
	case SourceIMDB:
		return 2
	case SourceSite:
		return 1
	case SourcePlaceholder:
		return 0
	default:
		return -1
	}
}
