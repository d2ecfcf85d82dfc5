package enrich

import (
	"strings"

	"marquee/internal/catalog"
	"marquee/internal/providers/tmdb"
)

// TMDB render sizes. Posters top out at w500 even for the xlarge and
// original slots; anything larger is wasteful for card layouts. Backdrops
// keep the raw file for their original slot.
const (
	posterThumb  = "w92"
	posterSmall  = "w185"
	posterMedium = "w342"
	posterLarge  = "w500"

	backdropSmall  = "w300"
	backdropMedium = "w780"
	backdropLarge  = "w1280"

	profileSize  = "w185"
	sizeOriginal = "original"
)

func imageURL(base, size, filePath string) string {
	if filePath == "" {
		return ""
	}
	return strings.TrimRight(base, "/") + "/" + size + filePath
}

// PosterSet renders one poster candidate at every named size.
func PosterSet(base string, img tmdb.Image) catalog.PosterSet {
	return catalog.PosterSet{
		Thumbnail: imageURL(base, posterThumb, img.FilePath),
		Small:     imageURL(base, posterSmall, img.FilePath),
		Medium:    imageURL(base, posterMedium, img.FilePath),
		Large:     imageURL(base, posterLarge, img.FilePath),
		XLarge:    imageURL(base, posterLarge, img.FilePath),
		Original:  imageURL(base, posterLarge, img.FilePath),
		Language:  strings.ToLower(img.Language),
	}
}

// BackdropSet renders one backdrop candidate at every named size.
func BackdropSet(base string, img tmdb.Image) catalog.BackdropSet {
	return catalog.BackdropSet{
		Small:    imageURL(base, backdropSmall, img.FilePath),
		Medium:   imageURL(base, backdropMedium, img.FilePath),
		Large:    imageURL(base, backdropLarge, img.FilePath),
		Original: imageURL(base, sizeOriginal, img.FilePath),
		Language: strings.ToLower(img.Language),
	}
}

// ProfileURL renders a cast member headshot.
func ProfileURL(base, filePath string) string {
	return imageURL(base, profileSize, filePath)
}
