package taxonomy

import (
	"strings"
	"unicode/utf8"
)

const (
	// MaxEditDistance is the largest edit distance still treated as a typo.
	MaxEditDistance = 2
	// minNearMatchLen guards short tags ("Go", "C") against spurious near matches.
	minNearMatchLen = 3
)

// FindSimilar returns the existing item that candidate most likely duplicates.
//
// An exact case-insensitive match anywhere in existing wins first. Otherwise
// items are scanned in stored order and the first one that contains or is
// contained in candidate, or that lies within MaxEditDistance of it while
// both strings are at least three runes long, is returned. With several
// plausible matches the earliest-inserted item wins, not the closest.
func FindSimilar(candidate string, existing []string) (string, bool) {
	key := foldKey(candidate)
	if key == "" {
		return "", false
	}
	keys := make([]string, len(existing))
	for i, item := range existing {
		keys[i] = foldKey(item)
		if keys[i] == key {
			return item, true
		}
	}
	keyLen := utf8.RuneCountInString(key)
	for i, itemKey := range keys {
		if itemKey == "" {
			continue
		}
		if strings.Contains(itemKey, key) || strings.Contains(key, itemKey) {
			return existing[i], true
		}
		if nearMatch(key, keyLen, itemKey) {
			return existing[i], true
		}
	}
	return "", false
}

func nearMatch(key string, keyLen int, itemKey string) bool {
	itemLen := utf8.RuneCountInString(itemKey)
	if min(keyLen, itemLen) < minNearMatchLen {
		return false
	}
	diff := keyLen - itemLen
	if diff < 0 {
		diff = -diff
	}
	if diff > MaxEditDistance {
		return false
	}
	return Levenshtein(key, itemKey) <= MaxEditDistance
}
