package enrich

import (
	"sort"
	"strings"

	"marquee/internal/catalog"
	"marquee/internal/providers/tmdb"
)

// maxRetainedImages caps the "all candidates" lists kept on an item.
const maxRetainedImages = 5

// SelectEntity picks the best search result for an item. When the item
// carries a media-type hint, candidates of other types are filtered out; if
// nothing survives the filter, the first unfiltered candidate wins.
func SelectEntity(results []tmdb.Result, titleType string) (tmdb.Result, bool) {
	candidates := make([]tmdb.Result, 0, len(results))
	for _, r := range results {
		if r.MediaType == tmdb.MediaMovie || r.MediaType == tmdb.MediaTV {
			candidates = append(candidates, r)
		}
	}
	if len(candidates) == 0 {
		return tmdb.Result{}, false
	}

	want := ""
	switch titleType {
	case catalog.MediaTypeMovie:
		want = tmdb.MediaMovie
	case catalog.MediaTypeShow:
		want = tmdb.MediaTV
	}
	if want != "" {
		for _, r := range candidates {
			if r.MediaType == want {
				return r, true
			}
		}
	}
	return candidates[0], true
}

// RankImages orders artwork candidates by language preference and quality.
// Candidates whose language is preferred or untagged form the front bucket,
// ordered by preference index then score; everything else (avoided or
// unrecognized languages) trails, ordered by score alone. Ties keep input
// order.
func RankImages(images []tmdb.Image, preferred []string) []tmdb.Image {
	priority := make(map[string]int, len(preferred)+1)
	for i, lang := range preferred {
		priority[strings.ToLower(lang)] = i
	}
	// Untagged artwork ranks after every named preference.
	if _, ok := priority[""]; !ok {
		priority[""] = len(preferred)
	}

	var front, back []tmdb.Image
	for _, img := range images {
		if _, ok := priority[strings.ToLower(img.Language)]; ok {
			front = append(front, img)
		} else {
			back = append(back, img)
		}
	}

	sort.SliceStable(front, func(i, j int) bool {
		pi := priority[strings.ToLower(front[i].Language)]
		pj := priority[strings.ToLower(front[j].Language)]
		if pi != pj {
			return pi < pj
		}
		return front[i].VoteAverage > front[j].VoteAverage
	})
	sort.SliceStable(back, func(i, j int) bool {
		return back[i].VoteAverage > back[j].VoteAverage
	})

	return append(front, back...)
}

// SelectTrailer picks the best trailer from a video list: YouTube trailers
// only, preferring one flagged official, otherwise the first.
func SelectTrailer(videos []tmdb.Video) (tmdb.Video, bool) {
	var first tmdb.Video
	haveFirst := false
	for _, v := range videos {
		if !strings.EqualFold(v.Site, "YouTube") || !strings.EqualFold(v.Type, "Trailer") {
			continue
		}
		if v.Official {
			return v, true
		}
		if !haveFirst {
			first = v
			haveFirst = true
		}
	}
	return first, haveFirst
}
