package memory

import (
	"context"
	"sync"

	"github.com/custodia-labs/clause/internal/adapters/driven/vector"
	"github.com/custodia-labs/clause/internal/core/ports/driven"
)

var _ driven.VectorIndex = (*VectorIndex)(nil)

// VectorIndex is a brute-force cosine index held in process.
type VectorIndex struct {
	mu      sync.RWMutex
	vectors map[string][]float32
}

// NewVectorIndex creates an empty in-memory vector index.
func NewVectorIndex() *VectorIndex {
	return &VectorIndex{vectors: make(map[string][]float32)}
}

// Add inserts or replaces the vector for chunkID.
func (v *VectorIndex) Add(_ context.Context, chunkID string, embedding []float32) error {
	stored := make([]float32, len(embedding))
	copy(stored, embedding)

	v.mu.Lock()
	v.vectors[chunkID] = stored
	v.mu.Unlock()
	return nil
}

// Delete removes a vector; unknown IDs are ignored.
func (v *VectorIndex) Delete(_ context.Context, chunkID string) error {
	v.mu.Lock()
	delete(v.vectors, chunkID)
	v.mu.Unlock()
	return nil
}

// Search returns the k most similar vectors.
func (v *VectorIndex) Search(ctx context.Context, query []float32, k int) ([]driven.VectorHit, error) {
	if err := vector.CheckQuery(query, k); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ranker := vector.NewRanker(query)
	v.mu.RLock()
	for id, emb := range v.vectors {
		ranker.Offer(id, emb)
	}
	v.mu.RUnlock()

	return ranker.Top(k), nil
}

// Len returns the number of stored vectors.
func (v *VectorIndex) Len() int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return len(v.vectors)
}

// Close releases resources.
func (v *VectorIndex) Close() error {
	return nil
}
