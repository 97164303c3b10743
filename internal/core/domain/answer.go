package domain

import "strings"

// Decision is the verdict carried by a StructuredAnswer.
type Decision string

const (
	// DecisionApproved indicates the request is granted.
	DecisionApproved Decision = "approved"

	// DecisionRejected indicates the request is refused.
	DecisionRejected Decision = "rejected"

	// DecisionNeedsReview indicates the evidence is not conclusive.
	DecisionNeedsReview Decision = "needs_review"
)

// Decisions lists every valid decision in schema order.
func Decisions() []Decision {
	return []Decision{DecisionApproved, DecisionRejected, DecisionNeedsReview}
}

// IsValid returns true if the decision is a known value.
func (d Decision) IsValid() bool {
	switch d {
	case DecisionApproved, DecisionRejected, DecisionNeedsReview:
		return true
	default:
		return false
	}
}

// String returns the string representation of the decision.
func (d Decision) String() string {
	return string(d)
}

// ParseDecision normalises s and matches it against the known decisions.
// Matching ignores case and surrounding whitespace, and treats spaces and
// hyphens as underscores ("Needs Review" parses as needs_review).
func ParseDecision(s string) (Decision, bool) {
	norm := strings.ToLower(strings.TrimSpace(s))
	norm = strings.NewReplacer(" ", "_", "-", "_").Replace(norm)
	d := Decision(norm)
	if !d.IsValid() {
		return "", false
	}
	return d, true
}

// DiagnosticCode classifies a repair applied while validating generator output.
type DiagnosticCode string

const (
	// DiagnosticConfidenceClamped indicates confidence was forced into [0, 1].
	DiagnosticConfidenceClamped DiagnosticCode = "confidence_clamped"

	// DiagnosticConfidenceOutOfRange indicates confidence was kept outside [0, 1].
	DiagnosticConfidenceOutOfRange DiagnosticCode = "confidence_out_of_range"

	// DiagnosticCitationUnresolved indicates a citation referenced an unknown fragment.
	DiagnosticCitationUnresolved DiagnosticCode = "citation_unresolved"

	// DiagnosticCitationMalformed indicates a citation entry had the wrong shape.
	DiagnosticCitationMalformed DiagnosticCode = "citation_malformed"

	// DiagnosticCitationDuplicate indicates a fragment was cited more than once.
	DiagnosticCitationDuplicate DiagnosticCode = "citation_duplicate"

	// DiagnosticOutputRepaired indicates the structured record was extracted
	// from surrounding text or a code fence.
	DiagnosticOutputRepaired DiagnosticCode = "output_repaired"
)

// Diagnostic records a recoverable issue repaired in place.
type Diagnostic struct {
	Code    DiagnosticCode `json:"code"`
	Message string         `json:"message"`
}

// CitedClause links the answer to a fragment of the evidence set.
type CitedClause struct {
	// FragmentRef is the evidence reference (E1, E2, ...).
	FragmentRef string `json:"fragment_ref"`

	// RelevanceNote explains why the fragment supports the decision.
	RelevanceNote string `json:"relevance_note,omitempty"`
}

// StructuredAnswer is the schema-validated output of the pipeline.
// Citations only ever reference fragments of the evidence set it was validated against.
type StructuredAnswer struct {
	Decision      Decision      `json:"decision"`
	Amount        *float64      `json:"amount,omitempty"`
	Justification string        `json:"justification"`
	CitedClauses  []CitedClause `json:"cited_clauses"`
	Confidence    float64       `json:"confidence"`

	// ConfidenceAdjusted is set when the reported confidence was outside [0, 1].
	ConfidenceAdjusted bool `json:"confidence_adjusted,omitempty"`

	// Diagnostics lists every repair applied during validation.
	Diagnostics []Diagnostic `json:"diagnostics,omitempty"`
}

// HasDiagnostic reports whether a diagnostic with the given code was recorded.
func (a *StructuredAnswer) HasDiagnostic(code DiagnosticCode) bool {
	for _, d := range a.Diagnostics {
		if d.Code == code {
			return true
		}
	}
	return false
}
