package textutil

// CosineSimilarity computes the cosine similarity between two fingerprints.
// Returns 0 if either fingerprint is nil or has zero norm.
func CosineSimilarity(a, b *Fingerprint) float64 {
	if a == nil || b == nil || a.norm == 0 || b.norm == 0 {
		return 0
	}
	var dot float64
	for token, count := range a.tokens {
		if other, ok := b.tokens[token]; ok {
			dot += count * other
		}
	}
	if dot == 0 {
		return 0
	}
	return dot / (a.norm * b.norm)
}

// Nearest returns the candidate whose trigram fingerprint is most similar to
// query. Ties keep the earlier candidate. The score is 0 when nothing overlaps.
func Nearest(query string, candidates []string) (string, float64) {
	q := NewTrigramFingerprint(query)
	best, bestScore := "", 0.0
	for _, candidate := range candidates {
		score := CosineSimilarity(q, NewTrigramFingerprint(candidate))
		if score > bestScore {
			best, bestScore = candidate, score
		}
	}
	return best, bestScore
}
