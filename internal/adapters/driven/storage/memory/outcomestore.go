package memory

import (
	"context"
	"sync"

	"github.com/custodia-labs/clause/internal/core/domain"
	"github.com/custodia-labs/clause/internal/core/ports/driven"
)

var _ driven.OutcomeStore = (*OutcomeStore)(nil)

// OutcomeStore keeps processed query records in process.
type OutcomeStore struct {
	mu      sync.RWMutex
	records []domain.OutcomeRecord
}

// NewOutcomeStore creates an empty outcome store.
func NewOutcomeStore() *OutcomeStore {
	return &OutcomeStore{}
}

// Record appends an outcome record.
func (s *OutcomeStore) Record(_ context.Context, rec domain.OutcomeRecord) error {
	s.mu.Lock()
	s.records = append(s.records, rec)
	s.mu.Unlock()
	return nil
}

// Recent returns up to limit records, newest first.
func (s *OutcomeStore) Recent(_ context.Context, limit int) ([]domain.OutcomeRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := len(s.records)
	if limit <= 0 || limit > n {
		limit = n
	}
	out := make([]domain.OutcomeRecord, 0, limit)
	for i := n - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, s.records[i])
	}
	return out, nil
}
