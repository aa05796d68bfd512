package textutil

import (
	"math"
	"regexp"
	"strings"
)

// tokenSplitPattern matches non-alphanumeric character sequences for tokenization.
var tokenSplitPattern = regexp.MustCompile(`[^a-z0-9]+`)

// Fingerprint represents a term-frequency vector for text similarity comparison.
type Fingerprint struct {
	tokens map[string]float64
	norm   float64
}

// NewFingerprint creates a word fingerprint from the provided text.
// Returns nil if the text produces no valid tokens.
func NewFingerprint(text string) *Fingerprint {
	return fromTerms(Tokenize(text))
}

// NewTrigramFingerprint creates a fingerprint from the character trigrams of
// the alphanumeric characters in text. Inputs shorter than three characters
// contribute themselves as a single term.
func NewTrigramFingerprint(text string) *Fingerprint {
	return fromTerms(Trigrams(text))
}

// Tokenize splits text into lowercase tokens, filtering short tokens.
func Tokenize(text string) []string {
	lowered := strings.ToLower(text)
	raw := tokenSplitPattern.Split(lowered, -1)
	terms := make([]string, 0, len(raw))
	for _, token := range raw {
		if len(token) < 3 {
			continue
		}
		terms = append(terms, token)
	}
	return terms
}

// Trigrams returns the overlapping three-character windows of the lowercase
// alphanumeric characters in text.
func Trigrams(text string) []string {
	compact := tokenSplitPattern.ReplaceAllString(strings.ToLower(text), "")
	if compact == "" {
		return nil
	}
	if len(compact) < 3 {
		return []string{compact}
	}
	terms := make([]string, 0, len(compact)-2)
	for i := 0; i+3 <= len(compact); i++ {
		terms = append(terms, compact[i:i+3])
	}
	return terms
}

func fromTerms(terms []string) *Fingerprint {
	if len(terms) == 0 {
		return nil
	}
	counts := make(map[string]float64, len(terms))
	for _, term := range terms {
		counts[term]++
	}
	var norm float64
	for _, count := range counts {
		norm += count * count
	}
	return &Fingerprint{
		tokens: counts,
		norm:   math.Sqrt(norm),
	}
}

// TokenCount returns the number of unique tokens in the fingerprint.
func (f *Fingerprint) TokenCount() int {
	if f == nil {
		return 0
	}
	return len(f.tokens)
}
