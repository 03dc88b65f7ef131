package rules

import "strings"

// CanonicalPair orders two user ids so the lexicographically smaller one
// comes first. Matches and compatibility scores are keyed this way, which is
// what makes the unordered pair unique.
func CanonicalPair(a, b string) (string, string) {
	if strings.Compare(a, b) > 0 {
		return b, a
	}
	return a, b
}

// PairKey renders the canonical pair as a single stable identifier.
func PairKey(a, b string) string {
	first, second := CanonicalPair(a, b)
	return first + ":" + second
}
