package services

import (
	"context"

	"github.com/custodia-labs/clause/internal/core/domain"
	"github.com/custodia-labs/clause/internal/core/ports/driven"
	"github.com/custodia-labs/clause/internal/core/ports/driving"
)

// Ensure HistoryService implements the interface.
var _ driving.HistoryService = (*HistoryService)(nil)

// defaultHistoryLimit applies when callers pass a non-positive limit.
const defaultHistoryLimit = 20

// HistoryService reads recorded outcomes.
type HistoryService struct {
	store driven.OutcomeStore
}

// NewHistoryService creates a history service over store.
func NewHistoryService(store driven.OutcomeStore) *HistoryService {
	return &HistoryService{store: store}
}

// Recent returns up to limit records, newest first.
func (s *HistoryService) Recent(ctx context.Context, limit int) ([]domain.OutcomeRecord, error) {
	if s.store == nil {
		return nil, nil
	}
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	return s.store.Recent(ctx, limit)
}
