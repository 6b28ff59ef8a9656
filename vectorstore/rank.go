package vectorstore

import (
	"math"
	"sort"
)

// scored pairs a stored-vector index with its similarity for ranking.
type scored struct {
	idx   int
	score float64
}

// cosineSimilarity computes the cosine similarity between two vectors using
// float64 accumulation to limit rounding error. Mismatched or zero-magnitude
// vectors score 0.
func cosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// rankBySimilarity scores every stored vector against the query and returns
// the top k, highest similarity first. Empty vectors are skipped so callers
// can mark unusable entries with nil.
func rankBySimilarity(query []float32, stored [][]float32, k int) []scored {
	candidates := make([]scored, 0, len(stored))
	for i, vec := range stored {
		if len(vec) == 0 {
			continue
		}
		candidates = append(candidates, scored{idx: i, score: cosineSimilarity(query, vec)})
	}
	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})
	if k > 0 && len(candidates) > k {
		candidates = candidates[:k]
	}
	return candidates
}
