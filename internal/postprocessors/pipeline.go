// Package postprocessors turns normalised documents into chunks.
package postprocessors

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/custodia-labs/clause/internal/core/domain"
	"github.com/custodia-labs/clause/internal/core/ports/driven"
	"github.com/custodia-labs/clause/internal/postprocessors/chunker"
)

var _ driven.PostProcessorPipeline = (*Pipeline)(nil)

// Pipeline runs stages in order. The first stage receives nil chunks.
type Pipeline struct {
	stages []driven.PostProcessor
}

// NewPipeline creates a pipeline over stages.
func NewPipeline(stages ...driven.PostProcessor) *Pipeline {
	return &Pipeline{stages: stages}
}

// NewIngestPipeline builds the chunking pipeline used by ingestion.
func NewIngestPipeline(cfg domain.IngestConfig) (*Pipeline, error) {
	var opts []chunker.Option
	if cfg.ChunkSize > 0 {
		opts = append(opts, chunker.WithChunkSize(cfg.ChunkSize))
	}
	if cfg.ChunkSize > 0 && cfg.ChunkOverlap >= cfg.ChunkSize {
		return nil, fmt.Errorf("%w: ingest.chunk_overlap must be below ingest.chunk_size", domain.ErrInvalidConfig)
	}
	opts = append(opts, chunker.WithOverlap(cfg.ChunkOverlap))
	return NewPipeline(chunker.New(opts...)), nil
}

// Process chunks doc. Blank chunks are dropped and the rest are stamped
// with the document ID.
func (p *Pipeline) Process(ctx context.Context, doc *domain.Document) ([]domain.Chunk, error) {
	if doc == nil {
		return nil, errors.New("nil document")
	}

	var chunks []domain.Chunk
	for _, stage := range p.stages {
		out, err := stage.Process(ctx, doc, chunks)
		if err != nil {
			return nil, fmt.Errorf("processor %s: %w", stage.Name(), err)
		}
		chunks = out
	}

	kept := make([]domain.Chunk, 0, len(chunks))
	for _, c := range chunks {
		if strings.TrimSpace(c.Content) != "" {
			c.DocumentID = doc.ID
			kept = append(kept, c)
		}
	}
	return kept, nil
}

// Add appends a stage.
func (p *Pipeline) Add(stage driven.PostProcessor) {
	p.stages = append(p.stages, stage)
}

// Len returns the number of stages.
func (p *Pipeline) Len() int {
	return len(p.stages)
}
