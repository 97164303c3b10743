package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/custodia-labs/clause/internal/core/domain"
	"github.com/custodia-labs/clause/internal/core/ports/driven"
	"github.com/custodia-labs/clause/internal/logger"
)

// Retriever turns a query into scored candidate fragments by embedding the
// query, searching the vector index and hydrating hits from the document store.
type Retriever struct {
	embedder    driven.EmbeddingService
	vectorIndex driven.VectorIndex
	docStore    driven.DocumentStore
	topK        int
}

// NewRetriever creates a retriever returning up to topK candidates.
func NewRetriever(
	embedder driven.EmbeddingService,
	vectorIndex driven.VectorIndex,
	docStore driven.DocumentStore,
	topK int,
) *Retriever {
	return &Retriever{
		embedder:    embedder,
		vectorIndex: vectorIndex,
		docStore:    docStore,
		topK:        topK,
	}
}

// Retrieve returns candidate fragments for query in index order.
// All failures wrap domain.ErrRetrievalFailed.
func (r *Retriever) Retrieve(ctx context.Context, query string) ([]domain.Fragment, error) {
	switch {
	case r.embedder == nil:
		return nil, fmt.Errorf("%w: %w", domain.ErrRetrievalFailed, domain.ErrEmbeddingUnavailable)
	case r.vectorIndex == nil || r.docStore == nil:
		return nil, fmt.Errorf("%w: %w", domain.ErrRetrievalFailed, domain.ErrVectorIndexUnavailable)
	}

	embedding, err := r.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: embed query: %w", domain.ErrRetrievalFailed, err)
	}
	logger.Debug("retrieval: embedded query (%d dims)", len(embedding))

	hits, err := r.vectorIndex.Search(ctx, embedding, r.topK)
	if err != nil {
		return nil, fmt.Errorf("%w: vector search: %w", domain.ErrRetrievalFailed, err)
	}
	logger.Debug("retrieval: %d vector hits (top_k=%d)", len(hits), r.topK)

	fragments := make([]domain.Fragment, 0, len(hits))
	for _, hit := range hits {
		chunk, err := r.docStore.GetChunk(ctx, hit.ChunkID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				// index and store can drift after a document is deleted
				logger.Warn("retrieval: chunk %s in index but not in store", hit.ChunkID)
				continue
			}
			return nil, fmt.Errorf("%w: load chunk %s: %w", domain.ErrRetrievalFailed, hit.ChunkID, err)
		}
		fragments = append(fragments, domain.Fragment{
			SourceDocumentID: chunk.DocumentID,
			ChunkID:          chunk.ID,
			Offset:           chunk.Range(),
			Text:             chunk.Content,
			Score:            clampScore(hit.Similarity),
			Embedding:        chunk.Embedding,
		})
	}

	return fragments, nil
}

// clampScore maps a cosine similarity into [0, 1].
func clampScore(s float64) float64 {
	return min(max(s, 0), 1)
}
