// Package vector holds the similarity helpers shared by the brute-force
// vector indexes. Server-backed indexes live in subpackages.
package vector

import (
	"fmt"
	"math"
	"sort"

	"github.com/custodia-labs/clause/internal/core/domain"
	"github.com/custodia-labs/clause/internal/core/ports/driven"
)

// Cosine returns the cosine similarity of a and b. Vectors of different
// length or with zero magnitude score 0.
func Cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		normA += x * x
		normB += y * y
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// Ranker accumulates scored chunks and returns the best k.
type Ranker struct {
	query []float32
	hits  []driven.VectorHit
}

// NewRanker scores candidates against query.
func NewRanker(query []float32) *Ranker {
	return &Ranker{query: query}
}

// Offer scores one stored vector.
func (r *Ranker) Offer(chunkID string, embedding []float32) {
	if len(embedding) != len(r.query) {
		return
	}
	r.hits = append(r.hits, driven.VectorHit{
		ChunkID:    chunkID,
		Similarity: Cosine(r.query, embedding),
	})
}

// Top returns at most k hits ordered by descending similarity, ties broken
// by chunk ID.
func (r *Ranker) Top(k int) []driven.VectorHit {
	sort.Slice(r.hits, func(i, j int) bool {
		if r.hits[i].Similarity != r.hits[j].Similarity {
			return r.hits[i].Similarity > r.hits[j].Similarity
		}
		return r.hits[i].ChunkID < r.hits[j].ChunkID
	})
	if k < len(r.hits) {
		return r.hits[:k]
	}
	return r.hits
}

// CheckQuery rejects empty query vectors and non-positive k.
func CheckQuery(query []float32, k int) error {
	if len(query) == 0 {
		return fmt.Errorf("%w: empty query vector", domain.ErrInvalidInput)
	}
	if k <= 0 {
		return fmt.Errorf("%w: k must be positive", domain.ErrInvalidInput)
	}
	return nil
}
