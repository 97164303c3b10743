package driven

import (
	"context"

	"github.com/custodia-labs/clause/internal/core/domain"
)

// OutcomeStore records processed queries for later inspection.
type OutcomeStore interface {
	// Record appends an outcome record.
	Record(ctx context.Context, rec domain.OutcomeRecord) error

	// Recent returns up to limit records, newest first.
	Recent(ctx context.Context, limit int) ([]domain.OutcomeRecord, error)
}
