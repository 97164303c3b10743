package driven

import (
	"context"

	"github.com/custodia-labs/clause/internal/core/domain"
)

// DocumentStore persists ingested documents and their chunks. Lookups of
// unknown IDs return domain.ErrNotFound.
type DocumentStore interface {
	// SaveDocument inserts or replaces a document.
	SaveDocument(ctx context.Context, doc *domain.Document) error

	// SaveChunks inserts or replaces chunks, embeddings included.
	SaveChunks(ctx context.Context, chunks []domain.Chunk) error

	GetDocument(ctx context.Context, id string) (*domain.Document, error)

	// GetChunks returns a document's chunks ordered by position.
	GetChunks(ctx context.Context, documentID string) ([]domain.Chunk, error)

	// GetChunk resolves a vector hit back to its text and offsets.
	GetChunk(ctx context.Context, id string) (*domain.Chunk, error)

	// DeleteDocument removes a document together with its chunks.
	DeleteDocument(ctx context.Context, id string) error

	ListDocuments(ctx context.Context) ([]domain.Document, error)
}
