// Package chunker splits documents into overlapping rune windows.
package chunker

import (
	"context"
	"unicode"

	"github.com/google/uuid"

	"github.com/custodia-labs/clause/internal/core/domain"
)

// DefaultChunkSize is the window length in runes.
const DefaultChunkSize = 1000

// DefaultChunkOverlap is the number of runes shared by neighbouring windows.
const DefaultChunkOverlap = 200

// Processor splits document content into fixed-size chunks measured in runes.
// Each chunk records its rune offset range within the document so retrieved
// fragments can be compared for overlap.
type Processor struct {
	chunkSize int
	overlap   int
}

// Option configures a Processor.
type Option func(*Processor)

// WithChunkSize sets the window length. Non-positive values are ignored.
func WithChunkSize(size int) Option {
	return func(p *Processor) {
		if size > 0 {
			p.chunkSize = size
		}
	}
}

// WithOverlap sets the shared run. Negative values are ignored.
func WithOverlap(overlap int) Option {
	return func(p *Processor) {
		if overlap >= 0 {
			p.overlap = overlap
		}
	}
}

// New creates a chunker. An overlap not below the size falls back to a quarter of it.
func New(opts ...Option) *Processor {
	p := &Processor{
		chunkSize: DefaultChunkSize,
		overlap:   DefaultChunkOverlap,
	}

	for _, opt := range opts {
		opt(p)
	}

	if p.overlap >= p.chunkSize {
		p.overlap = p.chunkSize / 4
	}

	return p
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "chunker"
}

// Process replaces any input chunks with windows over doc.Content.
// Chunk ends are pulled back to the nearest whitespace in the second half of
// the window so words are not split.
func (p *Processor) Process(_ context.Context, doc *domain.Document, _ []domain.Chunk) ([]domain.Chunk, error) {
	if doc.Content == "" {
		return nil, nil
	}

	runes := []rune(doc.Content)
	total := len(runes)
	chunks := make([]domain.Chunk, 0, total/(p.chunkSize-p.overlap)+1)

	for start, position := 0, 0; start < total; position++ {
		end := min(start+p.chunkSize, total)
		if end < total {
			end = p.breakPoint(runes, start, end)
		}

		chunks = append(chunks, domain.Chunk{
			ID:          uuid.New().String(),
			DocumentID:  doc.ID,
			Content:     string(runes[start:end]),
			Position:    position,
			StartOffset: start,
			EndOffset:   end,
			Metadata:    make(map[string]any),
		})

		if end == total {
			break
		}

		next := end - p.overlap
		if next <= start {
			next = start + 1
		}
		start = next
	}

	return chunks, nil
}

// breakPoint returns the offset just after the last whitespace in the second
// half of [start, end), or end when there is none.
func (p *Processor) breakPoint(runes []rune, start, end int) int {
	floor := start + p.chunkSize/2
	for i := end - 1; i > floor; i-- {
		if unicode.IsSpace(runes[i]) {
			return i + 1
		}
	}
	return end
}
