package driving

import (
	"context"
	"time"

	"github.com/custodia-labs/clause/internal/core/domain"
)

// DocumentService inspects and removes ingested documents.
type DocumentService interface {
	// List returns every ingested document.
	List(ctx context.Context) ([]domain.Document, error)

	// GetDetails returns display metadata for one document.
	GetDetails(ctx context.Context, documentID string) (*DocumentDetails, error)

	// Remove deletes a document together with its chunks and vectors.
	Remove(ctx context.Context, documentID string) error
}

// DocumentDetails is a flattened view of a document for display.
type DocumentDetails struct {
	ID         string
	Title      string
	URI        string
	ChunkCount int
	RuneCount  int
	CreatedAt  time.Time
	UpdatedAt  time.Time
	Metadata   map[string]string
}
