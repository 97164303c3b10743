package driving

import (
	"context"

	"github.com/custodia-labs/clause/internal/core/domain"
)

// HistoryService exposes previously processed queries.
type HistoryService interface {
	// Recent returns up to limit outcome records, newest first.
	Recent(ctx context.Context, limit int) ([]domain.OutcomeRecord, error)
}
