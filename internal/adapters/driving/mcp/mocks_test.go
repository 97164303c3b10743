package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/clause/internal/core/domain"
	"github.com/custodia-labs/clause/internal/core/ports/driving"
)

// mockAnswerService is a mock implementation of driving.AnswerService.
type mockAnswerService struct {
	outcome domain.ValidationOutcome
	err     error
	batch   []string
}

func (m *mockAnswerService) Process(_ context.Context, _ string) (domain.ValidationOutcome, error) {
	return m.outcome, m.err
}

func (m *mockAnswerService) ProcessBatch(_ context.Context, queries []string) []domain.BatchResult {
	m.batch = queries
	results := make([]domain.BatchResult, len(queries))
	for i, q := range queries {
		results[i] = domain.BatchResult{Query: q, Outcome: m.outcome}
		if strings.TrimSpace(q) == "" {
			results[i] = domain.BatchResult{Query: q, Err: fmt.Errorf("%w: query is empty", domain.ErrMalformedQuery)}
		}
	}
	return results
}

// mockHistoryService is a mock implementation of driving.HistoryService.
type mockHistoryService struct {
	records []domain.OutcomeRecord
	err     error
	limit   int
}

func (m *mockHistoryService) Recent(_ context.Context, limit int) ([]domain.OutcomeRecord, error) {
	m.limit = limit
	return m.records, m.err
}

// mockDocumentService is a mock implementation of driving.DocumentService.
type mockDocumentService struct {
	documents []domain.Document
	details   *driving.DocumentDetails
	err       error
}

func (m *mockDocumentService) List(_ context.Context) ([]domain.Document, error) {
	return m.documents, m.err
}

func (m *mockDocumentService) GetDetails(_ context.Context, _ string) (*driving.DocumentDetails, error) {
	return m.details, m.err
}

func (m *mockDocumentService) Remove(_ context.Context, _ string) error {
	return m.err
}
