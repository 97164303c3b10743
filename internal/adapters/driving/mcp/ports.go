package mcp

import (
	"github.com/custodia-labs/clause/internal/core/ports/driving"
)

// Ports aggregates the driving ports exposed to MCP clients.
type Ports struct {
	// Answer runs queries through the pipeline. Required.
	Answer driving.AnswerService

	// History backs the history resource. Optional.
	History driving.HistoryService

	// Document backs list_documents and the document resource. Optional.
	Document driving.DocumentService
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Answer == nil {
		return ErrMissingAnswerService
	}
	return nil
}
