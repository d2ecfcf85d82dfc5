// Package language normalizes the language hints that ride along with
// scraped items. Hints arrive in mixed forms (ISO codes, full words, URL
// path segments like "/hindi-movies/") and are consolidated here so the
// planner and image selector agree on one spelling.
package language

import "strings"

type entry struct {
	code2   string   // ISO 639-1
	display string   // Human-readable name, used in search queries
	words   []string // Word forms seen on listing sites
}

var languages = []entry{
	{"en", "English", []string{"english"}},
	{"hi", "Hindi", []string{"hindi"}},
	{"ta", "Tamil", []string{"tamil"}},
	{"te", "Telugu", []string{"telugu"}},
	{"ml", "Malayalam", []string{"malayalam"}},
	{"kn", "Kannada", []string{"kannada"}},
	{"bn", "Bengali", []string{"bengali", "bangla"}},
	{"mr", "Marathi", []string{"marathi"}},
	{"pa", "Punjabi", []string{"punjabi", "panjabi"}},
	{"gu", "Gujarati", []string{"gujarati"}},
	{"ko", "Korean", []string{"korean"}},
	{"ja", "Japanese", []string{"japanese"}},
	{"zh", "Chinese", []string{"chinese", "mandarin"}},
	{"es", "Spanish", []string{"spanish"}},
	{"fr", "French", []string{"french"}},
	{"de", "German", []string{"german"}},
	{"ru", "Russian", []string{"russian"}},
}

var (
	byCode2 map[string]*entry
	byWord  map[string]*entry
)

func init() {
	byCode2 = make(map[string]*entry, len(languages))
	byWord = make(map[string]*entry, len(languages)*2)
	for i := range languages {
		e := &languages[i]
		byCode2[e.code2] = e
		for _, w := range e.words {
			byWord[w] = e
		}
	}
}

func lookup(hint string) *entry {
	hint = strings.ToLower(strings.TrimSpace(hint))
	if hint == "" {
		return nil
	}
	if e, ok := byCode2[hint]; ok {
		return e
	}
	if e, ok := byWord[hint]; ok {
		return e
	}
	return nil
}

// ToISO2 maps a hint to its ISO 639-1 code, or "" when unrecognized.
func ToISO2(hint string) string {
	if e := lookup(hint); e != nil {
		return e.code2
	}
	return ""
}

// Display returns the human-readable name for a hint, or "" when
// unrecognized.
func Display(hint string) string {
	if e := lookup(hint); e != nil {
		return e.display
	}
	return ""
}

// QueryTerm returns the word to append to a provider search query for a
// hint. Unrecognized hints pass through trimmed, so a site-specific spelling
// still narrows the search.
func QueryTerm(hint string) string {
	if e := lookup(hint); e != nil {
		return strings.ToLower(e.display)
	}
	return strings.ToLower(strings.TrimSpace(hint))
}

// FromURL extracts a language hint from a listing URL, matching path
// segments like "hindi-movies" or "tamil". Returns the ISO 639-1 code or
// "".
func FromURL(rawURL string) string {
	for _, segment := range strings.FieldsFunc(strings.ToLower(rawURL), func(r rune) bool {
		return r == '/' || r == '?' || r == '#'
	}) {
		for _, part := range strings.Split(segment, "-") {
			if e := lookup(part); e != nil {
				return e.code2
			}
		}
	}
	return ""
}
