package enrich

import (
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	parentheticalPattern = regexp.MustCompile(`\([^)]*\)`)
	seasonPattern        = regexp.MustCompile(`(?i)\s+season\s+\d+\s*$`)
	whitespacePattern    = regexp.MustCompile(`\s+`)
)

var titleCaser = cases.Title(language.English)

// CleanTitle strips parenthetical content, trailing season markers, and
// stray separators from a scraped title. Titles that clean down to nothing
// fall back to the raw input.
func CleanTitle(raw string) string {
	cleaned := parentheticalPattern.ReplaceAllString(raw, " ")
	cleaned = seasonPattern.ReplaceAllString(cleaned, "")
	cleaned = whitespacePattern.ReplaceAllString(cleaned, " ")
	cleaned = strings.Trim(cleaned, " -:")
	if cleaned == "" {
		return strings.TrimSpace(raw)
	}
	return cleaned
}

// stripSeason removes a trailing season marker, reporting whether one was
// present.
func stripSeason(title string) (string, bool) {
	stripped := seasonPattern.ReplaceAllString(title, "")
	return strings.TrimSpace(stripped), stripped != title
}

// PlanQueries builds the ordered strategy chain for one item: most specific
// variants first, duplicates removed keeping the first occurrence. The
// result is never empty when the raw title is non-empty.
func PlanQueries(rawTitle, languageHint string, year int) []string {
	rawTitle = strings.TrimSpace(rawTitle)
	if rawTitle == "" {
		return nil
	}

	cleaned := CleanTitle(rawTitle)
	baseTitle, hadSeason := stripSeason(strings.TrimSpace(parentheticalPattern.ReplaceAllString(rawTitle, " ")))
	languageHint = strings.TrimSpace(languageHint)
	yearToken := ""
	if year > 0 {
		yearToken = strconv.Itoa(year)
	}

	var queries []string
	if languageHint != "" && yearToken != "" {
		queries = append(queries, cleaned+" "+languageHint+" "+yearToken)
	}
	if languageHint != "" {
		queries = append(queries, cleaned+" "+languageHint)
	}
	if yearToken != "" {
		queries = append(queries, cleaned+" "+yearToken)
	}
	queries = append(queries, cleaned)
	if rawTitle != cleaned {
		queries = append(queries, rawTitle)
	}
	if hadSeason && baseTitle != "" {
		queries = append(queries, CleanTitle(baseTitle))
	}
	// Listing sites sometimes shout titles in full caps, which hurts match
	// quality on providers that weight exact casing.
	if cleaned == strings.ToUpper(cleaned) && cleaned != strings.ToLower(cleaned) {
		queries = append(queries, titleCaser.String(strings.ToLower(cleaned)))
	}

	return dedupeQueries(queries)
}

func dedupeQueries(queries []string) []string {
	seen := make(map[string]struct{}, len(queries))
	out := make([]string, 0, len(queries))
	for _, q := range queries {
		q = strings.TrimSpace(q)
		if q == "" {
			continue
		}
		if _, ok := seen[q]; ok {
			continue
		}
		seen[q] = struct{}{}
		out = append(out, q)
	}
	return out
}
