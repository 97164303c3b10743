package domain

import "time"

// OutcomeRecord is the persisted summary of one processed query.
type OutcomeRecord struct {
	ID            string
	Query         string
	Status        string
	Decision      Decision
	Confidence    *float64
	FailureReason FailureReason
	RawOutput     string
	Detail        string
	Attempts      int
	EvidenceCount int
	CreatedAt     time.Time
}

// NewOutcomeRecord summarises an outcome for the history log.
func NewOutcomeRecord(id, query string, outcome ValidationOutcome, at time.Time) OutcomeRecord {
	rec := OutcomeRecord{
		ID:            id,
		Query:         query,
		Status:        outcome.Status(),
		Attempts:      outcome.Attempts,
		EvidenceCount: outcome.EvidenceCount,
		CreatedAt:     at,
	}
	if outcome.Answer != nil {
		rec.Decision = outcome.Answer.Decision
		c := outcome.Answer.Confidence
		rec.Confidence = &c
		rec.Detail = outcome.Answer.Justification
	}
	if outcome.Failure != nil {
		rec.FailureReason = outcome.Failure.Reason
		rec.RawOutput = outcome.Failure.RawOutput
		rec.Detail = outcome.Failure.Detail
	}
	return rec
}
