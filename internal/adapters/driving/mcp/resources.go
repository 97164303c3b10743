package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/clause/internal/core/domain"
)

const (
	uriScheme = "clause://"

	// historyLimit is the number of records returned by the history resource.
	historyLimit = 50
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "history",
		Name:        "history",
		Description: "Recently processed questions and their outcomes, newest first",
		MIMEType:    "application/json",
	}, s.handleHistoryResource)

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "documents/{documentId}",
		Name:        "document",
		Description: "Details of an ingested document",
		MIMEType:    "application/json",
	}, s.handleDocumentResource)
}

// historyEntry is the JSON shape of one history record.
type historyEntry struct {
	ID            string   `json:"id"`
	Query         string   `json:"query"`
	Status        string   `json:"status"`
	Decision      string   `json:"decision,omitempty"`
	Confidence    *float64 `json:"confidence,omitempty"`
	Detail        string   `json:"detail,omitempty"`
	Attempts      int      `json:"attempts"`
	EvidenceCount int      `json:"evidence_count"`
	CreatedAt     string   `json:"created_at"`
}

func (s *Server) handleHistoryResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.History == nil {
		return jsonResult(req.Params.URI, []historyEntry{})
	}

	records, err := s.ports.History.Recent(ctx, historyLimit)
	if err != nil {
		return nil, fmt.Errorf("loading history: %w", err)
	}

	entries := make([]historyEntry, len(records))
	for i := range records {
		r := &records[i]
		entries[i] = historyEntry{
			ID:            r.ID,
			Query:         r.Query,
			Status:        r.Status,
			Decision:      string(r.Decision),
			Confidence:    r.Confidence,
			Detail:        r.Detail,
			Attempts:      r.Attempts,
			EvidenceCount: r.EvidenceCount,
			CreatedAt:     r.CreatedAt.UTC().Format(time.RFC3339),
		}
	}
	return jsonResult(req.Params.URI, entries)
}

func (s *Server) handleDocumentResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.Document == nil {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	docID := extractDocumentID(req.Params.URI)
	if docID == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	details, err := s.ports.Document.GetDetails(ctx, docID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}
	if err != nil {
		return nil, fmt.Errorf("getting document details: %w", err)
	}

	return jsonResult(req.Params.URI, map[string]any{
		"id":          details.ID,
		"title":       details.Title,
		"uri":         details.URI,
		"chunk_count": details.ChunkCount,
		"length":      details.RuneCount,
		"created_at":  details.CreatedAt.UTC().Format(time.RFC3339),
		"updated_at":  details.UpdatedAt.UTC().Format(time.RFC3339),
		"metadata":    details.Metadata,
	})
}

func jsonResult(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling resource: %w", err)
	}
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// extractDocumentID extracts the document ID from clause://documents/{documentId}.
func extractDocumentID(uri string) string {
	const prefix = uriScheme + "documents/"

	id, ok := strings.CutPrefix(uri, prefix)
	if !ok || strings.Contains(id, "/") {
		return ""
	}
	return id
}
