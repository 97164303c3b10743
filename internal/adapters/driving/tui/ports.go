// Package tui provides the interactive terminal console for clause.
// It is a driving adapter over the core services.
package tui

import (
	"github.com/custodia-labs/clause/internal/core/ports/driving"
)

// Ports aggregates the driving ports the console uses.
type Ports struct {
	// Answer runs questions through the pipeline. Required.
	Answer driving.AnswerService

	// History lists previous outcomes. Optional; the view reports its absence.
	History driving.HistoryService

	// Document lists, inspects and removes ingested documents. Optional.
	Document driving.DocumentService
}

// Validate ensures the required ports are set.
func (p *Ports) Validate() error {
	if p == nil {
		return ErrInvalidPorts
	}
	if p.Answer == nil {
		return ErrMissingAnswerService
	}
	return nil
}
