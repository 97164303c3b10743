package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/custodia-labs/clause/internal/core/domain"
	"github.com/custodia-labs/clause/internal/core/ports/driven"
	"github.com/custodia-labs/clause/internal/core/ports/driving"
	"github.com/custodia-labs/clause/internal/logger"
)

// Ensure IngestService implements the interface.
var _ driving.IngestService = (*IngestService)(nil)

// embedBatchSize bounds the number of texts sent per embedding request.
const embedBatchSize = 32

// MIMEResolver maps a file path to the MIME type used for normaliser dispatch.
type MIMEResolver func(path string) (string, bool)

// IngestService normalises, chunks, embeds and stores documents.
type IngestService struct {
	registry    driven.NormaliserRegistry
	pipeline    driven.PostProcessorPipeline
	embedder    driven.EmbeddingService
	docStore    driven.DocumentStore
	vectorIndex driven.VectorIndex
	resolveMIME MIMEResolver
}

// NewIngestService creates an ingest service.
func NewIngestService(
	registry driven.NormaliserRegistry,
	pipeline driven.PostProcessorPipeline,
	embedder driven.EmbeddingService,
	docStore driven.DocumentStore,
	vectorIndex driven.VectorIndex,
	resolveMIME MIMEResolver,
) *IngestService {
	return &IngestService{
		registry:    registry,
		pipeline:    pipeline,
		embedder:    embedder,
		docStore:    docStore,
		vectorIndex: vectorIndex,
		resolveMIME: resolveMIME,
	}
}

// IngestFile reads the file at path and indexes it under its absolute,
// cleaned path.
func (s *IngestService) IngestFile(ctx context.Context, path string) (*driving.IngestResult, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: empty path", domain.ErrInvalidInput)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", path, err)
	}
	path = filepath.Clean(abs)
	var (
		mimeType string
		ok       bool
	)
	if s.resolveMIME != nil {
		mimeType, ok = s.resolveMIME(path)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedFormat, path)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return s.IngestText(ctx, path, mimeType, content)
}

// IngestText indexes content under uri. Existing chunks for the same
// document are replaced.
func (s *IngestService) IngestText(
	ctx context.Context,
	uri, mimeType string,
	content []byte,
) (*driving.IngestResult, error) {
	if s.embedder == nil {
		return nil, domain.ErrEmbeddingUnavailable
	}
	if s.vectorIndex == nil {
		return nil, domain.ErrVectorIndexUnavailable
	}

	logger.Section("Ingest")
	logger.Debug("uri=%s mime=%s bytes=%d", uri, mimeType, len(content))

	result, err := s.registry.Normalise(ctx, &domain.RawDocument{
		URI:      uri,
		MIMEType: mimeType,
		Content:  content,
	})
	if err != nil {
		return nil, fmt.Errorf("normalise: %w", err)
	}
	doc := result.Document

	chunks, err := s.pipeline.Process(ctx, &doc)
	if err != nil {
		return nil, fmt.Errorf("post-process: %w", err)
	}
	if len(chunks) == 0 {
		return nil, fmt.Errorf("%w: %s has no content", domain.ErrInvalidInput, uri)
	}

	if err := s.embed(ctx, chunks); err != nil {
		return nil, err
	}

	if err := s.removeExisting(ctx, doc.ID); err != nil {
		return nil, err
	}
	if err := s.docStore.SaveDocument(ctx, &doc); err != nil {
		return nil, fmt.Errorf("save document: %w", err)
	}
	if err := s.docStore.SaveChunks(ctx, chunks); err != nil {
		return nil, fmt.Errorf("save chunks: %w", err)
	}
	for _, chunk := range chunks {
		if err := s.vectorIndex.Add(ctx, chunk.ID, chunk.Embedding); err != nil {
			return nil, fmt.Errorf("add vector: %w", err)
		}
	}

	logger.Debug("ingested %s: %d chunks", doc.ID, len(chunks))
	return &driving.IngestResult{Document: doc, ChunkCount: len(chunks)}, nil
}

// embed fills chunk embeddings in batches.
func (s *IngestService) embed(ctx context.Context, chunks []domain.Chunk) error {
	for start := 0; start < len(chunks); start += embedBatchSize {
		end := min(start+embedBatchSize, len(chunks))
		texts := make([]string, 0, end-start)
		for _, c := range chunks[start:end] {
			texts = append(texts, c.Content)
		}

		vectors, err := s.embedder.EmbedBatch(ctx, texts)
		if err != nil {
			return fmt.Errorf("embed chunks: %w", err)
		}
		if len(vectors) != len(texts) {
			return fmt.Errorf("embed chunks: got %d vectors for %d texts", len(vectors), len(texts))
		}
		for i, v := range vectors {
			chunks[start+i].Embedding = v
		}
	}
	return nil
}

// removeExisting drops a previously ingested copy of the document and its vectors.
func (s *IngestService) removeExisting(ctx context.Context, docID string) error {
	return deleteDocument(ctx, s.docStore, s.vectorIndex, docID)
}

// deleteDocument removes a document, its chunks and their vectors. A missing
// document is not an error; vector deletion failures are logged and skipped.
func deleteDocument(ctx context.Context, docs driven.DocumentStore, index driven.VectorIndex, docID string) error {
	old, err := docs.GetChunks(ctx, docID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("get chunks: %w", err)
	}
	if index != nil {
		for _, chunk := range old {
			if err := index.Delete(ctx, chunk.ID); err != nil {
				logger.Debug("Failed to delete vector %s: %v", chunk.ID, err)
			}
		}
	}
	if err := docs.DeleteDocument(ctx, docID); err != nil && !errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("delete document: %w", err)
	}
	return nil
}
