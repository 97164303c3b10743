package driving

import (
	"context"

	"github.com/custodia-labs/clause/internal/core/domain"
)

// AnswerService answers decision queries from ingested documents.
type AnswerService interface {
	// Process runs one query through retrieval, selection, assembly,
	// generation and validation. Pipeline failures are returned as typed
	// outcomes; the error is non-nil only for caller errors such as
	// domain.ErrMalformedQuery.
	Process(ctx context.Context, query string) (domain.ValidationOutcome, error)

	// ProcessBatch processes queries concurrently and returns one result per
	// query in input order.
	ProcessBatch(ctx context.Context, queries []string) []domain.BatchResult
}
