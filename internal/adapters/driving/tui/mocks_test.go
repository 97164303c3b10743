package tui

import (
	"context"
	"fmt"

	"github.com/custodia-labs/clause/internal/core/domain"
	"github.com/custodia-labs/clause/internal/core/ports/driving"
)

// mockAnswerService implements driving.AnswerService.
type mockAnswerService struct {
	outcome domain.ValidationOutcome
	err     error
	queries []string
}

func (m *mockAnswerService) Process(_ context.Context, query string) (domain.ValidationOutcome, error) {
	m.queries = append(m.queries, query)
	return m.outcome, m.err
}

func (m *mockAnswerService) ProcessBatch(ctx context.Context, queries []string) []domain.BatchResult {
	results := make([]domain.BatchResult, len(queries))
	for i, q := range queries {
		outcome, err := m.Process(ctx, q)
		results[i] = domain.BatchResult{Query: q, Outcome: outcome, Err: err}
	}
	return results
}

// mockHistoryService implements driving.HistoryService.
type mockHistoryService struct {
	records []domain.OutcomeRecord
	err     error
}

func (m *mockHistoryService) Recent(_ context.Context, limit int) ([]domain.OutcomeRecord, error) {
	if limit < len(m.records) {
		return m.records[:limit], m.err
	}
	return m.records, m.err
}

// mockDocumentService implements driving.DocumentService.
type mockDocumentService struct {
	docs []domain.Document
}

func (m *mockDocumentService) List(_ context.Context) ([]domain.Document, error) {
	return m.docs, nil
}

func (m *mockDocumentService) GetDetails(_ context.Context, id string) (*driving.DocumentDetails, error) {
	for _, d := range m.docs {
		if d.ID == id {
			return &driving.DocumentDetails{ID: d.ID, Title: d.Title, URI: d.URI}, nil
		}
	}
	return nil, fmt.Errorf("document %s: %w", id, domain.ErrNotFound)
}

func (m *mockDocumentService) Remove(_ context.Context, _ string) error {
	return nil
}
