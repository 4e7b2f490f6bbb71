package utils

import (
	"strings"
)

const (
	// minFuzzyLength is the shortest word eligible for edit-distance matching.
	// Anything shorter must match exactly.
	minFuzzyLength = 4

	// longWordLength is the length from which two edits are tolerated.
	longWordLength = 7
)

// Tokenize lowercases text and splits it into alphanumeric tokens.
// Every character outside [a-z0-9] acts as a separator and tokens of a
// single character are dropped. Empty input yields an empty slice.
func Tokenize(text string) []string {
	if text == "" {
		return []string{}
	}

	lowered := strings.ToLower(text)
	tokens := strings.FieldsFunc(lowered, func(r rune) bool {
		return !isTokenRune(r)
	})

	result := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if len(t) > 1 {
			result = append(result, t)
		}
	}
	return result
}

func isTokenRune(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
}

// EditDistance returns the Levenshtein distance between a and b where
// insertion, deletion and substitution each cost 1.
func EditDistance(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	matrix := make([][]int, len(rb)+1)
	for i := range matrix {
		matrix[i] = make([]int, len(ra)+1)
		matrix[i][0] = i
	}
	for j := 0; j <= len(ra); j++ {
		matrix[0][j] = j
	}

	for i := 1; i <= len(rb); i++ {
		for j := 1; j <= len(ra); j++ {
			cost := 1
			if rb[i-1] == ra[j-1] {
				cost = 0
			}
			matrix[i][j] = min(
				matrix[i-1][j]+1,      // deletion
				matrix[i][j-1]+1,      // insertion
				matrix[i-1][j-1]+cost, // substitution
			)
		}
	}

	return matrix[len(rb)][len(ra)]
}

// MaxEditsFor returns how many edits a word of the given length tolerates.
func MaxEditsFor(length int) int {
	switch {
	case length < minFuzzyLength:
		return 0
	case length < longWordLength:
		return 1
	default:
		return 2
	}
}

// IsFuzzyMatch reports whether target is within the typo tolerance of word.
// The tolerance is driven by the length of word: words shorter than four
// characters only match themselves, up to six characters allow one edit and
// longer words allow two.
func IsFuzzyMatch(word, target string) bool {
	if word == target {
		return true
	}
	if len(word) < minFuzzyLength || len(target) < minFuzzyLength {
		return false
	}
	return EditDistance(word, target) <= MaxEditsFor(len(word))
}
