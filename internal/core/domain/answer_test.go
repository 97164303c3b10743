package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseDecision(t *testing.T) {
	tests := []struct {
		input    string
		expected Decision
		ok       bool
	}{
		{"approved", DecisionApproved, true},
		{"Approved", DecisionApproved, true},
		{"  REJECTED ", DecisionRejected, true},
		{"needs_review", DecisionNeedsReview, true},
		{"Needs Review", DecisionNeedsReview, true},
		{"needs-review", DecisionNeedsReview, true},
		{"maybe", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			d, ok := ParseDecision(tt.input)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.expected, d)
		})
	}
}

func TestStructuredAnswer_HasDiagnostic(t *testing.T) {
	a := &StructuredAnswer{Diagnostics: []Diagnostic{{Code: DiagnosticConfidenceClamped}}}
	assert.True(t, a.HasDiagnostic(DiagnosticConfidenceClamped))
	assert.False(t, a.HasDiagnostic(DiagnosticCitationUnresolved))
}

func TestAnswerSchema_DecisionEnum(t *testing.T) {
	schema := AnswerSchema()
	assert.Equal(t, "decision", schema.Fields[0].Name)
	assert.Equal(t, []string{"approved", "rejected", "needs_review"}, schema.Fields[0].Enum)
}
