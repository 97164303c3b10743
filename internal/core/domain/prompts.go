package domain

import "strings"

// Default prompt templates for structured answers. The prompt store writes
// these to disk on first use so users can customise them.
const (
	// DefaultAnswerSystemPrompt instructs the generator to answer in JSON.
	DefaultAnswerSystemPrompt = `You are a careful claims and policy analyst. You decide questions strictly from the evidence provided.

Rules:
- Use only the numbered evidence fragments. Never rely on outside knowledge.
- Cite every fragment you rely on by its reference (for example E1).
- If the evidence is insufficient or contradictory, answer needs_review.
- Respond with a single JSON object and nothing else.`

	// DefaultAnswerUserPrompt frames query, evidence and schema.
	DefaultAnswerUserPrompt = `Question:
{{query}}

Evidence:
{{evidence}}
Respond with one JSON object matching this schema:
{{schema}}`
)

// Named placeholders in the answer_user template. Text outside them,
// including any percent signs, is kept verbatim.
const (
	PlaceholderQuery    = "{{query}}"
	PlaceholderEvidence = "{{evidence}}"
	PlaceholderSchema   = "{{schema}}"
)

// AnswerUserPlaceholders lists the placeholders the answer_user template must keep.
var AnswerUserPlaceholders = []string{PlaceholderQuery, PlaceholderEvidence, PlaceholderSchema}

// MissingPlaceholders returns the entries of want that template does not contain.
func MissingPlaceholders(template string, want []string) []string {
	var missing []string
	for _, p := range want {
		if !strings.Contains(template, p) {
			missing = append(missing, p)
		}
	}
	return missing
}
