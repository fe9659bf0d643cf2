package reconciler

import (
	"strings"

	"github.com/agnivade/levenshtein"
)

const (
	// DefaultThreshold is the acceptance threshold used by the matcher
	// when the caller does not supply one. Scores in the candidate band
	// [0.7, DefaultThreshold) are never merged: a false merge corrupts
	// prices, a missed merge only delays an update.
	DefaultThreshold = 0.85

	// CandidateFloor is the lowest score still considered a candidate.
	CandidateFloor = 0.70
)

// Score computes a confidence in [0,1] that two display names refer to
// the same medication. Tiers are evaluated in order, first match wins:
//
//  1. identical normalized names, or equal base names where one full
//     name contains the other -> 1.0
//  2. equal base names                      -> 0.9
//  3. one base name contains the other     -> 0.7
//  4. normalized Levenshtein ratio          -> [0,1)
//
// Deterministic; close to symmetric but not guaranteed symmetric.
func Score(a, b string) float64 {
	normA, normB := Normalize(a), Normalize(b)
	if normA == "" || normB == "" {
		return 0
	}
	if normA == normB {
		return 1.0
	}

	baseA, baseB := BaseName(a), BaseName(b)
	switch {
	case baseA != "" && baseA == baseB &&
		(strings.Contains(normA, normB) || strings.Contains(normB, normA)):
		return 1.0
	case baseA != "" && baseA == baseB:
		return 0.9
	case baseA != "" && baseB != "" &&
		(strings.Contains(baseA, baseB) || strings.Contains(baseB, baseA)):
		return 0.7
	}

	return similarityRatio(normA, normB)
}

// similarityRatio is the character-level fallback: 1 - dist/longest over
// the normalized names. The inputs differ by at least one rune here, so
// the result is strictly below 1.
func similarityRatio(a, b string) float64 {
	longest := len([]rune(a))
	if lb := len([]rune(b)); lb > longest {
		longest = lb
	}
	if longest == 0 {
		return 0
	}
	r := 1 - float64(levenshtein.ComputeDistance(a, b))/float64(longest)
	if r < 0 {
		return 0
	}
	return r
}
