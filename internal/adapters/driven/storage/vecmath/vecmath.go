// Package vecmath holds the brute-force similarity search shared by the
// embedded vector stores.
package vecmath

import (
	"math"
	"sort"

	"github.com/custodia-labs/docent/internal/core/domain"
)

// Cosine returns the cosine similarity of a and b. Vectors of different
// length or with zero magnitude score 0.
func Cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

// TopK scores every candidate against query and returns the k best, most
// similar first, with ranks 0..n-1. Ties keep candidate order.
func TopK(query []float32, candidates []domain.Chunk, k int) []domain.RetrievedChunk {
	if k <= 0 || len(candidates) == 0 {
		return nil
	}

	scored := make([]domain.RetrievedChunk, len(candidates))
	for i, c := range candidates {
		scored[i] = domain.RetrievedChunk{Chunk: c, Similarity: Cosine(query, c.Embedding)}
	}
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Similarity > scored[j].Similarity
	})

	if len(scored) > k {
		scored = scored[:k]
	}
	for i := range scored {
		scored[i].Rank = i
	}
	return scored
}
