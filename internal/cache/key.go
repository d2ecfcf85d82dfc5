package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"
)

// Key derives the stable cache key for a (title, year) pair. Titles are
// case-folded and whitespace-collapsed first so the same content record
// always hits the same entry across passes.
func Key(title string, year int) string {
	normalized := strings.ToLower(strings.Join(strings.Fields(title), " "))
	yearPart := ""
	if year > 0 {
		yearPart = strconv.Itoa(year)
	}
	sum := sha256.Sum256([]byte(normalized + ":" + yearPart))
	return hex.EncodeToString(sum[:])
}
