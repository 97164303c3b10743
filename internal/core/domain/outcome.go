package domain

// FailureReason classifies why no StructuredAnswer was produced.
type FailureReason string

const (
	// FailureSchemaViolation indicates the generator output did not satisfy the schema.
	FailureSchemaViolation FailureReason = "schema_violation"

	// FailureGeneratorError indicates generation failed after all retries.
	FailureGeneratorError FailureReason = "generator_error"

	// FailureEmptyEvidence indicates retrieval produced nothing usable.
	FailureEmptyEvidence FailureReason = "empty_evidence"
)

// String returns the string representation of the reason.
func (r FailureReason) String() string {
	return string(r)
}

// FailureRecord describes a query that ended without an answer.
type FailureRecord struct {
	Reason FailureReason `json:"reason"`

	// RawOutput is the generator output, kept for diagnostics. Empty when
	// the generator was never called or never answered.
	RawOutput string `json:"raw_output,omitempty"`

	// Detail is a human-readable explanation.
	Detail string `json:"detail,omitempty"`
}

// ValidationOutcome is either an answer or a failure, never both.
type ValidationOutcome struct {
	Answer  *StructuredAnswer `json:"answer,omitempty"`
	Failure *FailureRecord    `json:"failure,omitempty"`

	// Attempts is the number of generation calls made.
	Attempts int `json:"attempts"`

	// EvidenceCount is the number of fragments handed to the generator.
	EvidenceCount int `json:"evidence_count"`
}

// Answered wraps a validated answer.
func Answered(answer *StructuredAnswer) ValidationOutcome {
	return ValidationOutcome{Answer: answer}
}

// Failed builds a failure outcome.
func Failed(reason FailureReason, rawOutput, detail string) ValidationOutcome {
	return ValidationOutcome{Failure: &FailureRecord{
		Reason:    reason,
		RawOutput: rawOutput,
		Detail:    detail,
	}}
}

// IsAnswer reports whether the outcome carries a StructuredAnswer.
func (o ValidationOutcome) IsAnswer() bool {
	return o.Answer != nil && o.Failure == nil
}

// Status returns "answered" or the failure reason.
func (o ValidationOutcome) Status() string {
	if o.IsAnswer() {
		return "answered"
	}
	if o.Failure != nil {
		return o.Failure.Reason.String()
	}
	return "unknown"
}

// BatchResult pairs a batch query with its outcome.
// Err is set only for caller errors such as ErrMalformedQuery.
type BatchResult struct {
	Query   string
	Outcome ValidationOutcome
	Err     error
}
