package mcp

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/clause/internal/core/domain"
)

// maxBatchQueries caps a single ask_batch call.
const maxBatchQueries = 100

// AskInput is the input schema for the ask tool.
type AskInput struct {
	Query string `json:"query" jsonschema:"the decision question to answer from ingested documents"`
}

// AskOutput is the output schema for the ask tool.
type AskOutput struct {
	Status        string                   `json:"status"`
	Answer        *domain.StructuredAnswer `json:"answer,omitempty"`
	Failure       *domain.FailureRecord    `json:"failure,omitempty"`
	Attempts      int                      `json:"attempts"`
	EvidenceCount int                      `json:"evidence_count"`
}

// AskBatchInput is the input schema for the ask_batch tool.
type AskBatchInput struct {
	Queries []string `json:"queries" jsonschema:"questions to answer; results keep this order"`
}

// AskBatchOutput is the output schema for the ask_batch tool.
type AskBatchOutput struct {
	Results []BatchItem `json:"results"`
	Count   int         `json:"count"`
}

// BatchItem is one ask_batch result.
type BatchItem struct {
	Query         string                   `json:"query"`
	Status        string                   `json:"status"`
	Answer        *domain.StructuredAnswer `json:"answer,omitempty"`
	Failure       *domain.FailureRecord    `json:"failure,omitempty"`
	Attempts      int                      `json:"attempts"`
	EvidenceCount int                      `json:"evidence_count"`
	Error         string                   `json:"error,omitempty"`
}

// ListDocumentsInput is the input schema for the list_documents tool.
type ListDocumentsInput struct{}

// ListDocumentsOutput is the output schema for the list_documents tool.
type ListDocumentsOutput struct {
	Documents []DocumentInfo `json:"documents"`
	Count     int            `json:"count"`
}

// DocumentInfo summarises an ingested document.
type DocumentInfo struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	URI   string `json:"uri"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ask",
		Description: "Answer a decision question with a cited, schema-validated verdict",
	}, s.handleAsk)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ask_batch",
		Description: "Answer several decision questions concurrently; results keep input order",
	}, s.handleAskBatch)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_documents",
		Description: "List the documents answers can be drawn from",
	}, s.handleListDocuments)
}

func (s *Server) handleAsk(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AskInput,
) (*mcp.CallToolResult, AskOutput, error) {
	outcome, err := s.ports.Answer.Process(ctx, input.Query)
	if err != nil {
		return nil, AskOutput{}, err
	}
	return nil, toAskOutput(outcome), nil
}

func (s *Server) handleAskBatch(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AskBatchInput,
) (*mcp.CallToolResult, AskBatchOutput, error) {
	if len(input.Queries) == 0 {
		return nil, AskBatchOutput{}, ErrEmptyBatch
	}
	if len(input.Queries) > maxBatchQueries {
		return nil, AskBatchOutput{}, fmt.Errorf("mcp: ask_batch accepts at most %d queries, got %d",
			maxBatchQueries, len(input.Queries))
	}

	results := s.ports.Answer.ProcessBatch(ctx, input.Queries)

	output := AskBatchOutput{
		Results: make([]BatchItem, len(results)),
		Count:   len(results),
	}
	for i, r := range results {
		if r.Err != nil {
			output.Results[i] = BatchItem{Query: r.Query, Status: "error", Error: r.Err.Error()}
			continue
		}
		out := toAskOutput(r.Outcome)
		output.Results[i] = BatchItem{
			Query:         r.Query,
			Status:        out.Status,
			Answer:        out.Answer,
			Failure:       out.Failure,
			Attempts:      out.Attempts,
			EvidenceCount: out.EvidenceCount,
		}
	}
	return nil, output, nil
}

func (s *Server) handleListDocuments(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ ListDocumentsInput,
) (*mcp.CallToolResult, ListDocumentsOutput, error) {
	output := ListDocumentsOutput{Documents: []DocumentInfo{}}
	if s.ports.Document == nil {
		return nil, output, nil
	}

	docs, err := s.ports.Document.List(ctx)
	if err != nil {
		return nil, ListDocumentsOutput{}, fmt.Errorf("listing documents: %w", err)
	}

	for i := range docs {
		output.Documents = append(output.Documents, DocumentInfo{
			ID:    docs[i].ID,
			Title: docs[i].Title,
			URI:   docs[i].URI,
		})
	}
	output.Count = len(output.Documents)
	return nil, output, nil
}

func toAskOutput(outcome domain.ValidationOutcome) AskOutput {
	return AskOutput{
		Status:        outcome.Status(),
		Answer:        outcome.Answer,
		Failure:       outcome.Failure,
		Attempts:      outcome.Attempts,
		EvidenceCount: outcome.EvidenceCount,
	}
}
