package driving

import (
	"context"

	"github.com/custodia-labs/clause/internal/core/domain"
)

// IngestService turns source files into retrievable chunks.
type IngestService interface {
	// IngestFile reads, normalises, chunks and indexes a file.
	IngestFile(ctx context.Context, path string) (*IngestResult, error)

	// IngestText indexes caller-supplied content under the given URI.
	IngestText(ctx context.Context, uri, mimeType string, content []byte) (*IngestResult, error)
}

// IngestResult summarises an ingested document.
type IngestResult struct {
	Document   domain.Document
	ChunkCount int
}
