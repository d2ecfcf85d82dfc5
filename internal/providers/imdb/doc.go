// Package imdb queries the IMDb suggestion API as a secondary identifier
// source. Suggestions carry title ids that the TMDB find endpoint can map
// back to full records.
package imdb
