// Package messages defines the Bubbletea messages exchanged between TUI views.
package messages

import (
	"github.com/custodia-labs/clause/internal/core/domain"
	"github.com/custodia-labs/clause/internal/core/ports/driving"
)

// ViewType identifies a screen.
type ViewType int

const (
	// ViewMenu is the start screen.
	ViewMenu ViewType = iota
	// ViewAsk takes a question and shows its outcome.
	ViewAsk
	// ViewHistory lists previously processed questions.
	ViewHistory
	// ViewDocuments lists ingested documents.
	ViewDocuments
	// ViewDocDetails shows one document's metadata.
	ViewDocDetails
	// ViewHelp lists key bindings.
	ViewHelp
)

// String returns the view name.
func (v ViewType) String() string {
	switch v {
	case ViewMenu:
		return "menu"
	case ViewAsk:
		return "ask"
	case ViewHistory:
		return "history"
	case ViewDocuments:
		return "documents"
	case ViewDocDetails:
		return "doc_details"
	case ViewHelp:
		return "help"
	default:
		return "unknown"
	}
}

// ViewChanged switches the active view.
type ViewChanged struct {
	View ViewType
}

// AnswerCompleted carries the outcome of one question.
// Err is set only for caller errors such as a malformed query.
type AnswerCompleted struct {
	Query   string
	Outcome domain.ValidationOutcome
	Err     error
}

// HistoryLoaded carries recent outcome records, newest first.
type HistoryLoaded struct {
	Records []domain.OutcomeRecord
	Err     error
}

// DocumentsLoaded carries the ingested documents.
type DocumentsLoaded struct {
	Documents []domain.Document
	Err       error
}

// DocumentDetailsLoaded carries one document's metadata.
type DocumentDetailsLoaded struct {
	DocumentID string
	Details    *driving.DocumentDetails
	Err        error
}

// DocumentRemoved reports the result of a remove action.
type DocumentRemoved struct {
	DocumentID string
	Err        error
}

// ErrorOccurred reports a failure to the active view.
type ErrorOccurred struct {
	Err error
}

// Quit asks the program to exit.
type Quit struct{}
