package driven

import (
	"context"

	"github.com/custodia-labs/clause/internal/core/domain"
)

// PostProcessor turns a normalised document into retrievable chunks, or
// refines chunks produced by an earlier stage.
type PostProcessor interface {
	// Name identifies the stage in logs and pipeline configuration.
	Name() string

	// Process receives the chunks of the previous stage (nil for the first)
	// and returns the chunks for the next. Chunk offsets are rune offsets
	// into doc.Content.
	Process(ctx context.Context, doc *domain.Document, chunks []domain.Chunk) ([]domain.Chunk, error)
}

// PostProcessorPipeline runs the configured stages in order.
type PostProcessorPipeline interface {
	Process(ctx context.Context, doc *domain.Document) ([]domain.Chunk, error)
}
