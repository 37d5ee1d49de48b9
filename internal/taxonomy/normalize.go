package taxonomy

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// Normalize trims surrounding whitespace and upper-cases the first character,
// leaving the rest untouched. An empty result means there is nothing to add.
func Normalize(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ""
	}
	r, size := utf8.DecodeRuneInString(s)
	upper := unicode.ToUpper(r)
	if upper == r {
		return s
	}
	return string(upper) + s[size:]
}

// foldKey is the comparison form used by every case-insensitive check.
func foldKey(s string) string {
	return strings.ToLower(norm.NFC.String(s))
}

// indexFold returns the position of the first item equal to name under case
// folding, or -1.
func indexFold(items []string, name string) int {
	key := foldKey(name)
	for i, item := range items {
		if foldKey(item) == key {
			return i
		}
	}
	return -1
}
