package mcp

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/clause/internal/core/domain"
)

func answered() domain.ValidationOutcome {
	return domain.ValidationOutcome{
		Answer: &domain.StructuredAnswer{
			Decision:      domain.DecisionRejected,
			Justification: "Cosmetic procedures are excluded.",
			CitedClauses:  []domain.CitedClause{{FragmentRef: "E2"}},
			Confidence:    0.8,
		},
		Attempts:      2,
		EvidenceCount: 3,
	}
}

func TestServer_handleAsk(t *testing.T) {
	ctx := context.Background()

	t.Run("returns answer", func(t *testing.T) {
		server, err := NewServer(&Ports{Answer: &mockAnswerService{outcome: answered()}})
		require.NoError(t, err)

		_, output, err := server.handleAsk(ctx, nil, AskInput{Query: "Is rhinoplasty covered?"})

		require.NoError(t, err)
		assert.Equal(t, "answered", output.Status)
		require.NotNil(t, output.Answer)
		assert.Equal(t, domain.DecisionRejected, output.Answer.Decision)
		assert.Nil(t, output.Failure)
		assert.Equal(t, 2, output.Attempts)
		assert.Equal(t, 3, output.EvidenceCount)
	})

	t.Run("returns failure outcome", func(t *testing.T) {
		outcome := domain.Failed(domain.FailureGeneratorError, "", "generator timeout")
		outcome.Attempts = 3
		server, err := NewServer(&Ports{Answer: &mockAnswerService{outcome: outcome}})
		require.NoError(t, err)

		_, output, err := server.handleAsk(ctx, nil, AskInput{Query: "q"})

		require.NoError(t, err)
		assert.Equal(t, "generator_error", output.Status)
		assert.Nil(t, output.Answer)
		require.NotNil(t, output.Failure)
		assert.Equal(t, 3, output.Attempts)
	})

	t.Run("malformed query is a tool error", func(t *testing.T) {
		server, err := NewServer(&Ports{Answer: &mockAnswerService{err: domain.ErrMalformedQuery}})
		require.NoError(t, err)

		_, _, err = server.handleAsk(ctx, nil, AskInput{Query: ""})

		assert.ErrorIs(t, err, domain.ErrMalformedQuery)
	})
}

func TestServer_handleAskBatch(t *testing.T) {
	ctx := context.Background()

	t.Run("keeps order and reports caller errors per item", func(t *testing.T) {
		mock := &mockAnswerService{outcome: answered()}
		server, err := NewServer(&Ports{Answer: mock})
		require.NoError(t, err)

		_, output, err := server.handleAskBatch(ctx, nil, AskBatchInput{Queries: []string{"first", " ", "third"}})

		require.NoError(t, err)
		require.Equal(t, 3, output.Count)
		assert.Equal(t, "first", output.Results[0].Query)
		assert.Equal(t, "answered", output.Results[0].Status)
		assert.Equal(t, "error", output.Results[1].Status)
		assert.Contains(t, output.Results[1].Error, "malformed query")
		assert.Nil(t, output.Results[1].Answer)
		assert.Equal(t, "third", output.Results[2].Query)
		assert.Equal(t, []string{"first", " ", "third"}, mock.batch)
	})

	t.Run("empty batch", func(t *testing.T) {
		server, err := NewServer(&Ports{Answer: &mockAnswerService{}})
		require.NoError(t, err)

		_, _, err = server.handleAskBatch(ctx, nil, AskBatchInput{})

		assert.ErrorIs(t, err, ErrEmptyBatch)
	})

	t.Run("oversized batch", func(t *testing.T) {
		mock := &mockAnswerService{}
		server, err := NewServer(&Ports{Answer: mock})
		require.NoError(t, err)

		_, _, err = server.handleAskBatch(ctx, nil, AskBatchInput{Queries: make([]string, maxBatchQueries+1)})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "at most 100 queries")
		assert.Nil(t, mock.batch)
	})
}

func TestServer_handleListDocuments(t *testing.T) {
	ctx := context.Background()

	t.Run("nil document service returns empty list", func(t *testing.T) {
		server, err := NewServer(&Ports{Answer: &mockAnswerService{}})
		require.NoError(t, err)

		_, output, err := server.handleListDocuments(ctx, nil, ListDocumentsInput{})

		require.NoError(t, err)
		assert.Equal(t, 0, output.Count)
		assert.NotNil(t, output.Documents)
	})

	t.Run("lists documents", func(t *testing.T) {
		docs := &mockDocumentService{documents: []domain.Document{
			{ID: "doc-1", Title: "Policy", URI: "/docs/policy.md"},
		}}
		server, err := NewServer(&Ports{Answer: &mockAnswerService{}, Document: docs})
		require.NoError(t, err)

		_, output, err := server.handleListDocuments(ctx, nil, ListDocumentsInput{})

		require.NoError(t, err)
		require.Equal(t, 1, output.Count)
		assert.Equal(t, DocumentInfo{ID: "doc-1", Title: "Policy", URI: "/docs/policy.md"}, output.Documents[0])
	})

	t.Run("propagates errors", func(t *testing.T) {
		docs := &mockDocumentService{err: errors.New("database error")}
		server, err := NewServer(&Ports{Answer: &mockAnswerService{}, Document: docs})
		require.NoError(t, err)

		_, _, err = server.handleListDocuments(ctx, nil, ListDocumentsInput{})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "database error")
	})
}
