package classifier

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// DefaultThreshold is the minimum similarity accepted as a match.
const DefaultThreshold = 0.4

// minTokenLength drops short noise words such as "a", "is" or "my".
const minTokenLength = 3

// Similarity returns the Sørensen–Dice coefficient of the character bigrams of a and b,
// ignoring whitespace. Comparison is case-sensitive.
func Similarity(a, b string) float64 {
	a = stripSpace(a)
	b = stripSpace(b)
	if a == b {
		return 1
	}
	ra, rb := []rune(a), []rune(b)
	if len(ra) < 2 || len(rb) < 2 {
		return 0
	}

	bigrams := make(map[[2]rune]int, len(ra)-1)
	for i := 0; i < len(ra)-1; i++ {
		bigrams[[2]rune{ra[i], ra[i+1]}]++
	}
	common := 0
	for i := 0; i < len(rb)-1; i++ {
		key := [2]rune{rb[i], rb[i+1]}
		if bigrams[key] > 0 {
			bigrams[key]--
			common++
		}
	}
	return 2 * float64(common) / float64(len(ra)+len(rb)-2)
}

func stripSpace(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}

// Matcher picks the candidate name closest to a free-text description.
type Matcher struct {
	Threshold float64
}

// NewMatcher returns a matcher. Thresholds outside (0,1] fall back to DefaultThreshold.
func NewMatcher(threshold float64) Matcher {
	if threshold <= 0 || threshold > 1 {
		threshold = DefaultThreshold
	}
	return Matcher{Threshold: threshold}
}

// BestMatch returns the index of the best candidate for text, or false when nothing
// clears the threshold.
//
// The first pass compares every description token longer than two characters with
// every token of every candidate and keeps the single best pair. Only when no pair
// qualifies is the whole lower-cased text compared with each whole candidate name.
// Ties keep the earlier candidate.
func (m Matcher) BestMatch(text string, candidates []string) (int, bool) {
	if len(candidates) == 0 {
		return -1, false
	}
	text = strings.ToLower(text)

	var tokens []string
	for _, tok := range strings.Fields(text) {
		if utf8.RuneCountInString(tok) >= minTokenLength {
			tokens = append(tokens, tok)
		}
	}

	best, bestScore := -1, 0.0
	for i, candidate := range candidates {
		for _, candTok := range strings.Fields(strings.ToLower(candidate)) {
			for _, tok := range tokens {
				score := Similarity(tok, candTok)
				if score > bestScore && score >= m.Threshold {
					best, bestScore = i, score
				}
			}
		}
	}
	if best >= 0 {
		return best, true
	}

	bestScore = -1
	for i, candidate := range candidates {
		if score := Similarity(text, strings.ToLower(candidate)); score > bestScore {
			best, bestScore = i, score
		}
	}
	if bestScore >= m.Threshold {
		return best, true
	}
	return -1, false
}
