package service

import (
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

const matchThreshold = 0.6

// bestMatch returns the index of the name closest to query, or -1. A name
// containing every query character in order wins outright; otherwise the
// Levenshtein similarity must beat the threshold.
func bestMatch(query string, names []string) int {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return -1
	}

	best := -1
	bestScore := 0.0
	for i, name := range names {
		candidate := strings.ToLower(name)
		if candidate == query {
			return i
		}

		var similarity float64
		if fuzzy.MatchFold(query, candidate) {
			// closer in length means fewer skipped characters
			similarity = 1 + float64(len(query))/float64(max(len(candidate), 1))
		} else {
			distance := fuzzy.LevenshteinDistance(query, candidate)
			maxLen := float64(max(len(query), len(candidate)))
			similarity = 1 - float64(distance)/maxLen
		}

		if similarity > matchThreshold && (best == -1 || similarity > bestScore) {
			best = i
			bestScore = similarity
		}
	}
	return best
}
