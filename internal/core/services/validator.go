package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"sort"
	"strings"

	"github.com/custodia-labs/clause/internal/core/domain"
	"github.com/custodia-labs/clause/internal/logger"
)

// Validator checks raw generator output against the answer schema.
// It is total: every input string yields either an answer or a
// schema_violation failure.
type Validator struct {
	policy domain.ConfidencePolicy
}

// NewValidator creates a validator applying the given confidence policy.
// An empty policy defaults to clamping.
func NewValidator(policy domain.ConfidencePolicy) *Validator {
	if policy == "" {
		policy = domain.ConfidenceClamp
	}
	return &Validator{policy: policy}
}

// schemaError marks a field-check failure.
type schemaError struct {
	msg string
}

func (e *schemaError) Error() string { return e.msg }

func violation(format string, args ...any) error {
	return &schemaError{msg: fmt.Sprintf(format, args...)}
}

// Validate parses raw, checks every field and cross-checks citations
// against evidence. Citations that do not resolve are dropped with a
// diagnostic rather than failing the answer.
func (v *Validator) Validate(raw string, evidence domain.EvidenceSet) domain.ValidationOutcome {
	record, repaired, err := parseRecord(raw)
	if err != nil {
		logger.Debug("validator: parse failed: %v", err)
		return domain.Failed(domain.FailureSchemaViolation, raw, err.Error())
	}

	answer := &domain.StructuredAnswer{}
	if repaired {
		answer.Diagnostics = append(answer.Diagnostics, domain.Diagnostic{
			Code:    domain.DiagnosticOutputRepaired,
			Message: "structured record extracted from surrounding text",
		})
	}

	if err := v.checkFields(record, answer); err != nil {
		logger.Debug("validator: field check failed: %v", err)
		return domain.Failed(domain.FailureSchemaViolation, raw, err.Error())
	}

	crossCheckCitations(record["cited_clauses"], evidence, answer)

	logger.Debug("validator: decision=%s confidence=%.2f citations=%d diagnostics=%d",
		answer.Decision, answer.Confidence, len(answer.CitedClauses), len(answer.Diagnostics))
	return domain.Answered(answer)
}

func (v *Validator) checkFields(record map[string]any, answer *domain.StructuredAnswer) error {
	rawDecision, ok := record["decision"]
	if !ok || rawDecision == nil {
		return violation("missing required field decision")
	}
	decisionStr, ok := rawDecision.(string)
	if !ok {
		return violation("decision must be a string")
	}
	decision, ok := domain.ParseDecision(decisionStr)
	if !ok {
		return violation("decision %q is not one of approved, rejected, needs_review", decisionStr)
	}
	answer.Decision = decision

	justification, ok := record["justification"].(string)
	if !ok || strings.TrimSpace(justification) == "" {
		return violation("missing required field justification")
	}
	answer.Justification = strings.TrimSpace(justification)

	if rawAmount, ok := record["amount"]; ok && rawAmount != nil {
		amount, err := toFloat(rawAmount)
		if err != nil {
			return violation("amount must be numeric: %v", err)
		}
		if amount < 0 {
			return violation("amount must not be negative, got %v", amount)
		}
		answer.Amount = &amount
	}

	rawConfidence, ok := record["confidence"]
	if !ok || rawConfidence == nil {
		return violation("missing required field confidence")
	}
	confidence, err := toFloat(rawConfidence)
	if err != nil && !math.IsInf(confidence, 0) {
		return violation("confidence must be numeric: %v", err)
	}
	return v.applyConfidence(confidence, answer)
}

func (v *Validator) applyConfidence(confidence float64, answer *domain.StructuredAnswer) error {
	if confidence >= 0 && confidence <= 1 {
		answer.Confidence = confidence
		return nil
	}

	policy := v.policy
	if policy == domain.ConfidencePassthrough && math.IsInf(confidence, 0) {
		// infinity cannot be encoded as JSON
		policy = domain.ConfidenceClamp
	}

	switch policy {
	case domain.ConfidenceReject:
		return violation("confidence %v is outside [0, 1]", confidence)
	case domain.ConfidencePassthrough:
		answer.Confidence = confidence
		answer.ConfidenceAdjusted = true
		answer.Diagnostics = append(answer.Diagnostics, domain.Diagnostic{
			Code:    domain.DiagnosticConfidenceOutOfRange,
			Message: fmt.Sprintf("confidence %v is outside [0, 1]", confidence),
		})
	default:
		clamped := min(max(confidence, 0), 1)
		answer.Confidence = clamped
		answer.ConfidenceAdjusted = true
		answer.Diagnostics = append(answer.Diagnostics, domain.Diagnostic{
			Code:    domain.DiagnosticConfidenceClamped,
			Message: fmt.Sprintf("confidence %v clamped to %v", confidence, clamped),
		})
	}
	return nil
}

// crossCheckCitations keeps only citations resolving into evidence.
func crossCheckCitations(raw any, evidence domain.EvidenceSet, answer *domain.StructuredAnswer) {
	answer.CitedClauses = []domain.CitedClause{}
	if raw == nil {
		return
	}

	entries, ok := raw.([]any)
	if !ok {
		answer.Diagnostics = append(answer.Diagnostics, domain.Diagnostic{
			Code:    domain.DiagnosticCitationMalformed,
			Message: "cited_clauses is not an array, all citations dropped",
		})
		return
	}

	seen := make(map[string]bool, len(entries))
	for i, entry := range entries {
		ref, note, ok := citationFields(entry)
		if !ok {
			answer.Diagnostics = append(answer.Diagnostics, domain.Diagnostic{
				Code:    domain.DiagnosticCitationMalformed,
				Message: fmt.Sprintf("cited_clauses[%d] has no fragment_ref, dropped", i),
			})
			continue
		}

		idx, ok := evidence.Lookup(ref)
		if !ok {
			answer.Diagnostics = append(answer.Diagnostics, domain.Diagnostic{
				Code:    domain.DiagnosticCitationUnresolved,
				Message: fmt.Sprintf("cited_clauses[%d] references unknown fragment %q, dropped", i, ref),
			})
			continue
		}

		canonical := evidence.Ref(idx)
		if seen[canonical] {
			answer.Diagnostics = append(answer.Diagnostics, domain.Diagnostic{
				Code:    domain.DiagnosticCitationDuplicate,
				Message: fmt.Sprintf("cited_clauses[%d] repeats fragment %s, dropped", i, canonical),
			})
			continue
		}
		seen[canonical] = true

		answer.CitedClauses = append(answer.CitedClauses, domain.CitedClause{
			FragmentRef:   canonical,
			RelevanceNote: note,
		})
	}
}

// citationFields accepts {"fragment_ref": "E1", "relevance_note": "..."} or a bare "E1".
func citationFields(entry any) (ref, note string, ok bool) {
	switch e := entry.(type) {
	case string:
		ref = strings.TrimSpace(e)
	case map[string]any:
		ref, _ = e["fragment_ref"].(string)
		ref = strings.TrimSpace(ref)
		note, _ = e["relevance_note"].(string)
		note = strings.TrimSpace(note)
	}
	return ref, note, ref != ""
}

// toFloat converts a decoded JSON number. A number too large for float64
// returns ±Inf together with a range error.
func toFloat(v any) (float64, error) {
	n, ok := v.(json.Number)
	if !ok {
		return 0, fmt.Errorf("got %T", v)
	}
	return n.Float64()
}

// parseRecord decodes raw as a JSON object. When the whole string is not an
// object it falls back to a fenced code block, then to the first balanced
// object embedded in the text; repaired reports that a fallback was used.
func parseRecord(raw string) (record map[string]any, repaired bool, err error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil, false, violation("generator output is empty")
	}

	if record, err := decodeObject(s); err == nil {
		return record, false, nil
	}

	if fenced, ok := stripFence(s); ok {
		if record, err := decodeObject(fenced); err == nil {
			return record, true, nil
		}
	}

	for _, span := range objectSpans(s) {
		if record, err := decodeObject(s[span[0] : span[1]+1]); err == nil {
			return record, true, nil
		}
	}

	return nil, false, violation("generator output is not a JSON object")
}

func decodeObject(s string) (map[string]any, error) {
	dec := json.NewDecoder(strings.NewReader(s))
	dec.UseNumber()

	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, errors.New("null record")
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("trailing data after record")
	}

	// lower-case keys; an exact lower-case key wins over a differently cased duplicate
	record := make(map[string]any, len(raw))
	for k, v := range raw {
		lk := strings.ToLower(k)
		if _, exists := record[lk]; exists && k != lk {
			continue
		}
		record[lk] = v
	}
	return record, nil
}

// stripFence returns the body of the first Markdown code fence in s.
func stripFence(s string) (string, bool) {
	open := strings.Index(s, "```")
	if open < 0 {
		return "", false
	}
	body := s[open+3:]
	// drop the info string (e.g. json) on the opening line
	if nl := strings.IndexByte(body, '\n'); nl >= 0 {
		body = body[nl+1:]
	} else {
		return "", false
	}
	closeIdx := strings.Index(body, "```")
	if closeIdx < 0 {
		return strings.TrimSpace(body), true
	}
	return strings.TrimSpace(body[:closeIdx]), true
}

// objectSpans returns the [start, end] byte ranges of every balanced brace
// pair in s, ordered by start. Quotes open strings only inside a brace, so
// prose before an object cannot hide it.
func objectSpans(s string) [][2]int {
	var (
		open     []int
		spans    [][2]int
		inString bool
		escaped  bool
	)
	for i := 0; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = len(open) > 0
		case '{':
			open = append(open, i)
		case '}':
			if n := len(open); n > 0 {
				spans = append(spans, [2]int{open[n-1], i})
				open = open[:n-1]
			}
		}
	}
	sort.Slice(spans, func(a, b int) bool { return spans[a][0] < spans[b][0] })
	return spans
}
