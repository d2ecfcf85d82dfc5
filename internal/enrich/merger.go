package enrich

import (
	"fmt"
	"strings"

	"marquee/internal/catalog"
	"marquee/internal/providers/tmdb"
)

// boilerplateMarkers identify SEO filler that listing sites stamp into
// description fields. A description containing every marker carries no real
// information and may be replaced.
var boilerplateMarkers = []string{"Watch", "full movie online in HD on OTTplay"}

func isBoilerplate(description string) bool {
	for _, marker := range boilerplateMarkers {
		if !strings.Contains(description, marker) {
			return false
		}
	}
	return true
}

// Merger applies provider output onto items under the trust rules. A single
// Merger is safe to share across items; it holds no per-item state.
type Merger struct {
	ImageBase string
	Preferred []string
	Force     bool
}

// ApplyIdentity records the matched provider id and media type. Identifiers
// are write-once unless force mode is on.
func (m *Merger) ApplyIdentity(item *catalog.Item, res Resolution) {
	if item.HasProviderID() && !m.Force {
		return
	}
	item.TMDBID = res.TMDBID
	item.TMDBMediaType = res.MediaType
}

// ApplyExternalID records the IMDb cross-reference id.
func (m *Merger) ApplyExternalID(item *catalog.Item, imdbID string) {
	imdbID = strings.TrimSpace(imdbID)
	if imdbID == "" {
		return
	}
	if item.HasExternalID() && !m.Force {
		return
	}
	item.IMDBID = imdbID
}

// ApplyDetails merges the full metadata record. The description is replaced
// only when the current one is empty or boilerplate, regardless of force
// mode; list-valued and count fields are first-write-wins unless forced.
func (m *Merger) ApplyDetails(item *catalog.Item, details *tmdb.Details) {
	if details == nil {
		return
	}

	if overview := strings.TrimSpace(details.Overview); overview != "" {
		if !item.HasDescription() || isBoilerplate(item.Description) {
			item.Description = overview
		}
	}

	if len(details.Genres) > 0 && (len(item.Genres) == 0 || m.Force) {
		genres := make([]string, 0, len(details.Genres))
		for _, g := range details.Genres {
			if g.Name != "" {
				genres = append(genres, g.Name)
			}
		}
		item.Genres = genres
	}

	if details.Runtime > 0 && (item.Runtime == 0 || m.Force) {
		item.Runtime = details.Runtime
	}
	if len(details.EpisodeRunTime) > 0 && (len(item.EpisodeRuntime) == 0 || m.Force) {
		item.EpisodeRuntime = append([]int(nil), details.EpisodeRunTime...)
	}
	if details.NumberOfSeasons > 0 && (item.SeasonCount == 0 || m.Force) {
		item.SeasonCount = details.NumberOfSeasons
	}
	if details.NumberOfEpisodes > 0 && (item.EpisodeCount == 0 || m.Force) {
		item.EpisodeCount = details.NumberOfEpisodes
	}

	if date := details.Date(); date != "" && (item.TMDBReleaseDate == "" || m.Force) {
		item.TMDBReleaseDate = date
	}
	if details.VoteAverage > 0 && (item.TMDBRating == 0 || m.Force) {
		item.TMDBRating = details.VoteAverage
		item.TMDBVoteCount = details.VoteCount
	}
	if details.Status != "" && (item.Status == "" || m.Force) {
		item.Status = details.Status
	}
	if original := details.Original(); original != "" && (item.OriginalTitle == "" || m.Force) {
		item.OriginalTitle = original
	}
	if details.OriginalLanguage != "" && (item.OriginalLanguage == "" || m.Force) {
		item.OriginalLanguage = details.OriginalLanguage
	}
}

// ApplyImages ranks the artwork candidates and merges the winners. An
// existing poster survives unless its provenance ranks strictly below the
// aggregator; force mode does not bypass the trust ladder.
func (m *Merger) ApplyImages(item *catalog.Item, images *tmdb.ImagesResponse) {
	if images == nil {
		return
	}

	if posters := RankImages(images.Posters, m.Preferred); len(posters) > 0 {
		if m.mayReplacePoster(item, catalog.SourceTMDB) {
			primary := PosterSet(m.ImageBase, posters[0])
			item.Posters = &primary
			item.PosterLanguage = primary.Language
			item.PosterSource = catalog.SourceTMDB

			retained := posters
			if len(retained) > maxRetainedImages {
				retained = retained[:maxRetainedImages]
			}
			all := make([]catalog.PosterSet, 0, len(retained))
			for _, img := range retained {
				all = append(all, PosterSet(m.ImageBase, img))
			}
			item.AllPosters = all
		}
	}

	if backdrops := RankImages(images.Backdrops, m.Preferred); len(backdrops) > 0 {
		if item.Backdrops == nil || m.Force {
			primary := BackdropSet(m.ImageBase, backdrops[0])
			item.Backdrops = &primary

			retained := backdrops
			if len(retained) > maxRetainedImages {
				retained = retained[:maxRetainedImages]
			}
			all := make([]catalog.BackdropSet, 0, len(retained))
			for _, img := range retained {
				all = append(all, BackdropSet(m.ImageBase, img))
			}
			item.AllBackdrops = all
		}
	}
}

// ApplySitePoster merges a poster scraped from the item's own source page.
// Site artwork sits near the bottom of the trust ladder, so it only ever
// fills an empty slot or replaces a generated placeholder.
func (m *Merger) ApplySitePoster(item *catalog.Item, imageURL string) {
	imageURL = strings.TrimSpace(imageURL)
	if imageURL == "" {
		return
	}
	if !m.mayReplacePoster(item, catalog.SourceSite) {
		return
	}
	set := catalog.PosterSet{
		Thumbnail: imageURL,
		Small:     imageURL,
		Medium:    imageURL,
		Large:     imageURL,
		XLarge:    imageURL,
		Original:  imageURL,
	}
	item.Posters = &set
	item.PosterLanguage = ""
	item.PosterSource = catalog.SourceSite
}

// mayReplacePoster reports whether a poster from the given source may land
// on the item: the slot is empty, or the incumbent came from a strictly
// lower-trust source.
func (m *Merger) mayReplacePoster(item *catalog.Item, source string) bool {
	if !item.HasPoster() {
		return true
	}
	return catalog.TrustRank(item.PosterSource) < catalog.TrustRank(source)
}

// ApplyCredits merges cast and crew. Cast is capped at ten billed members,
// writers at five.
func (m *Merger) ApplyCredits(item *catalog.Item, credits *tmdb.CreditsResponse) {
	if credits == nil {
		return
	}

	if len(credits.Cast) > 0 && (len(item.Cast) == 0 || m.Force) {
		limit := len(credits.Cast)
		if limit > 10 {
			limit = 10
		}
		cast := make([]catalog.CastMember, 0, limit)
		for _, c := range credits.Cast[:limit] {
			cast = append(cast, catalog.CastMember{
				Name:      c.Name,
				Character: c.Character,
				Image:     ProfileURL(m.ImageBase, c.ProfilePath),
			})
		}
		item.Cast = cast
	}

	directors, writers := splitCrew(credits.Crew)
	if len(directors) > 0 && (len(item.Directors) == 0 || m.Force) {
		item.Directors = directors
	}
	if len(writers) > 0 && (len(item.Writers) == 0 || m.Force) {
		if len(writers) > 5 {
			writers = writers[:5]
		}
		item.Writers = writers
	}
}

func splitCrew(crew []tmdb.CrewCredit) (directors, writers []string) {
	seenDirector := make(map[string]struct{})
	seenWriter := make(map[string]struct{})
	for _, member := range crew {
		switch member.Job {
		case "Director":
			if _, ok := seenDirector[member.Name]; !ok {
				seenDirector[member.Name] = struct{}{}
				directors = append(directors, member.Name)
			}
		case "Writer", "Screenplay", "Story":
			if _, ok := seenWriter[member.Name]; !ok {
				seenWriter[member.Name] = struct{}{}
				writers = append(writers, member.Name)
			}
		}
	}
	return directors, writers
}

// ApplyTrailer merges the best trailer candidate. Trailers are write-once;
// force mode does not replace an existing one.
func (m *Merger) ApplyTrailer(item *catalog.Item, videos *tmdb.VideosResponse) {
	if videos == nil || item.HasTrailer() {
		return
	}
	trailer, ok := SelectTrailer(videos.Results)
	if !ok {
		return
	}
	item.TrailerID = trailer.Key
	item.TrailerURL = fmt.Sprintf("https://www.youtube.com/watch?v=%s", trailer.Key)
	item.TrailerTitle = trailer.Name
}
