package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/clause/internal/core/domain"
	"github.com/custodia-labs/clause/internal/core/ports/driving"
)

func makeReadResourceRequest(uri string) *mcp.ReadResourceRequest {
	return &mcp.ReadResourceRequest{
		Params: &mcp.ReadResourceParams{
			URI: uri,
		},
	}
}

func TestExtractDocumentID(t *testing.T) {
	tests := []struct {
		uri  string
		want string
	}{
		{"clause://documents/doc-123", "doc-123"},
		{"clause://documents/", ""},
		{"clause://documents/a/b", ""},
		{"clause://history", ""},
		{"file://documents/doc-123", ""},
	}
	for _, tt := range tests {
		t.Run(tt.uri, func(t *testing.T) {
			assert.Equal(t, tt.want, extractDocumentID(tt.uri))
		})
	}
}

func TestServer_handleHistoryResource(t *testing.T) {
	ctx := context.Background()

	t.Run("nil history service returns empty list", func(t *testing.T) {
		server, err := NewServer(&Ports{Answer: &mockAnswerService{}})
		require.NoError(t, err)

		result, err := server.handleHistoryResource(ctx, makeReadResourceRequest("clause://history"))

		require.NoError(t, err)
		require.Len(t, result.Contents, 1)
		assert.Equal(t, "[]", result.Contents[0].Text)
	})

	t.Run("returns records", func(t *testing.T) {
		confidence := 0.75
		history := &mockHistoryService{records: []domain.OutcomeRecord{{
			ID:         "run-1",
			Query:      "Is surgery covered?",
			Status:     "answered",
			Decision:   domain.DecisionApproved,
			Confidence: &confidence,
			Attempts:   1,
			CreatedAt:  time.Date(2026, 5, 4, 12, 0, 0, 0, time.UTC),
		}}}
		server, err := NewServer(&Ports{Answer: &mockAnswerService{}, History: history})
		require.NoError(t, err)

		result, err := server.handleHistoryResource(ctx, makeReadResourceRequest("clause://history"))
		require.NoError(t, err)
		assert.Equal(t, historyLimit, history.limit)

		var entries []historyEntry
		require.NoError(t, json.Unmarshal([]byte(result.Contents[0].Text), &entries))
		require.Len(t, entries, 1)
		assert.Equal(t, "approved", entries[0].Decision)
		assert.Equal(t, "2026-05-04T12:00:00Z", entries[0].CreatedAt)
		require.NotNil(t, entries[0].Confidence)
		assert.InDelta(t, 0.75, *entries[0].Confidence, 1e-9)
	})

	t.Run("returns error on failure", func(t *testing.T) {
		history := &mockHistoryService{err: errors.New("database error")}
		server, err := NewServer(&Ports{Answer: &mockAnswerService{}, History: history})
		require.NoError(t, err)

		_, err = server.handleHistoryResource(ctx, makeReadResourceRequest("clause://history"))

		require.Error(t, err)
		assert.Contains(t, err.Error(), "loading history")
	})
}

func TestServer_handleDocumentResource(t *testing.T) {
	ctx := context.Background()

	t.Run("nil document service returns not found", func(t *testing.T) {
		server, err := NewServer(&Ports{Answer: &mockAnswerService{}})
		require.NoError(t, err)

		_, err = server.handleDocumentResource(ctx, makeReadResourceRequest("clause://documents/doc-1"))

		require.Error(t, err)
	})

	t.Run("invalid URI returns not found", func(t *testing.T) {
		server, err := NewServer(&Ports{Answer: &mockAnswerService{}, Document: &mockDocumentService{}})
		require.NoError(t, err)

		_, err = server.handleDocumentResource(ctx, makeReadResourceRequest("clause://invalid/uri"))

		require.Error(t, err)
	})

	t.Run("unknown document returns not found", func(t *testing.T) {
		docs := &mockDocumentService{err: domain.ErrNotFound}
		server, err := NewServer(&Ports{Answer: &mockAnswerService{}, Document: docs})
		require.NoError(t, err)

		_, err = server.handleDocumentResource(ctx, makeReadResourceRequest("clause://documents/missing"))

		require.Error(t, err)
	})

	t.Run("returns details", func(t *testing.T) {
		docs := &mockDocumentService{details: &driving.DocumentDetails{
			ID:         "doc-1",
			Title:      "Policy",
			URI:        "/docs/policy.md",
			ChunkCount: 5,
			RuneCount:  4200,
			Metadata:   map[string]string{"mime_type": "text/markdown"},
		}}
		server, err := NewServer(&Ports{Answer: &mockAnswerService{}, Document: docs})
		require.NoError(t, err)

		result, err := server.handleDocumentResource(ctx, makeReadResourceRequest("clause://documents/doc-1"))
		require.NoError(t, err)
		require.Len(t, result.Contents, 1)
		assert.Equal(t, "application/json", result.Contents[0].MIMEType)

		var decoded map[string]any
		require.NoError(t, json.Unmarshal([]byte(result.Contents[0].Text), &decoded))
		assert.Equal(t, "doc-1", decoded["id"])
		assert.InDelta(t, 5, decoded["chunk_count"], 0)
		assert.Equal(t, map[string]any{"mime_type": "text/markdown"}, decoded["metadata"])
	})
}
