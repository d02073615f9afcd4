package tabular

import "strings"

// invisibleRunes are dropped outright; they carry no width and usually come
// from copy/paste out of browsers or word processors.
var invisibleRunes = strings.NewReplacer(
	"\ufeff", "",
	"\u200b", "",
	"\u200c", "",
	"\u200d", "",
	"\u2060", "",
)

// NormalizeHeader canonicalizes a raw column name. It trims, replaces the
// non-breaking space with a regular space and collapses every whitespace run
// to a single ASCII space. It is idempotent and total.
func NormalizeHeader(raw string) string {
	if raw == "" {
		return ""
	}
	s := invisibleRunes.Replace(raw)
	s = strings.ReplaceAll(s, "\u00a0", " ")
	return strings.Join(strings.Fields(s), " ")
}

// NormalizeCategory returns the display form and the grouping key of a
// categorical cell. Values differing only by case or whitespace share a key.
func NormalizeCategory(raw string) (display, key string) {
	display = NormalizeHeader(raw)
	return display, strings.ToLower(display)
}
