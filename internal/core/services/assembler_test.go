package services

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/clause/internal/core/domain"
	"github.com/custodia-labs/clause/internal/core/ports/driven"
)

func testEvidence() domain.EvidenceSet {
	return domain.NewEvidenceSet(
		domain.Fragment{
			SourceDocumentID: "policy",
			ChunkID:          "chunk-1",
			Offset:           domain.OffsetRange{Start: 0, End: 38},
			Text:             "Knee surgery is covered up to 50000.",
			Score:            0.91,
		},
		domain.Fragment{
			SourceDocumentID: "policy",
			ChunkID:          "chunk-2",
			Offset:           domain.OffsetRange{Start: 400, End: 440},
			Text:             "  Waiting period is 24 months.  ",
			Score:            0.8,
		},
	)
}

func TestAssembler_Assemble(t *testing.T) {
	a := NewAssembler(domain.DefaultConfig(), nil)

	req, err := a.Assemble("  Is knee surgery covered?  ", testEvidence(), domain.AnswerSchema())
	require.NoError(t, err)

	assert.Equal(t, "Is knee surgery covered?", req.Query)
	assert.Equal(t, domain.DefaultAnswerSystemPrompt, req.System)
	assert.Equal(t, 2, req.Evidence.Len())
	assert.Equal(t, 1024, req.Params.MaxTokens)

	assert.Contains(t, req.Prompt, "Question:\nIs knee surgery covered?\n")
	assert.Contains(t, req.Prompt, "[E1] document=policy offset=0-38 score=0.910\nKnee surgery is covered up to 50000.")
	assert.Contains(t, req.Prompt, "[E2] document=policy offset=400-440 score=0.800\nWaiting period is 24 months.\n")
	assert.Contains(t, req.Prompt, "- decision: string, required, one of [\"approved\", \"rejected\", \"needs_review\"]")
	assert.Contains(t, req.Prompt, "- amount: number, optional")
	assert.Contains(t, req.Prompt, "- confidence: number, required")
	assert.Contains(t, req.Prompt, "fragment_ref")
}

func TestAssembler_AssembleIsDeterministic(t *testing.T) {
	a := NewAssembler(domain.DefaultConfig(), nil)

	first, err := a.Assemble("question", testEvidence(), domain.AnswerSchema())
	require.NoError(t, err)
	second, err := a.Assemble("question", testEvidence(), domain.AnswerSchema())
	require.NoError(t, err)

	assert.Equal(t, first.Prompt, second.Prompt)
	assert.Equal(t, first.System, second.System)
}

func TestAssembler_MalformedQuery(t *testing.T) {
	cfg := domain.DefaultConfig()
	cfg.Assembler.MaxQueryLength = 10
	a := NewAssembler(cfg, nil)

	tests := []struct {
		name  string
		query string
	}{
		{"empty", ""},
		{"whitespace", " \t\n "},
		{"too long", strings.Repeat("q", 11)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := a.Assemble(tt.query, testEvidence(), domain.AnswerSchema())
			assert.ErrorIs(t, err, domain.ErrMalformedQuery)
			assert.ErrorIs(t, a.CheckQuery(tt.query), domain.ErrMalformedQuery)
		})
	}

	// length is measured in runes, after trimming
	assert.NoError(t, a.CheckQuery("  éééééééééé  "))
}

func TestAssembler_EmptyEvidence(t *testing.T) {
	a := NewAssembler(domain.DefaultConfig(), nil)

	req, err := a.Assemble("question", domain.EvidenceSet{}, domain.AnswerSchema())
	require.NoError(t, err)
	assert.Contains(t, req.Prompt, "Evidence:\n\n")
}

func TestAssembler_PromptStoreOverrides(t *testing.T) {
	store := &stubPromptStore{prompts: map[string]string{
		driven.PromptAnswerSystem: "custom system",
		driven.PromptAnswerUser:   "Q={{query}}\nE={{evidence}}\nS={{schema}}",
	}}
	a := NewAssembler(domain.DefaultConfig(), store)

	req, err := a.Assemble("question", testEvidence(), domain.AnswerSchema())
	require.NoError(t, err)
	assert.Equal(t, "custom system", req.System)
	assert.True(t, strings.HasPrefix(req.Prompt, "Q=question\nE=[E1]"))
}

func TestAssembler_TemplateKeepsPercentSigns(t *testing.T) {
	store := &stubPromptStore{prompts: map[string]string{
		driven.PromptAnswerUser: "Be 100% sure, %d %s %!\nS={{schema}}\nQ={{query}}\nE={{evidence}}",
	}}
	a := NewAssembler(domain.DefaultConfig(), store)

	req, err := a.Assemble("is %s covered?", testEvidence(), domain.AnswerSchema())
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(req.Prompt, "Be 100% sure, %d %s %!\nS=structured_answer (JSON object)"))
	assert.Contains(t, req.Prompt, "\nQ=is %s covered?\nE=[E1]")
	assert.NotContains(t, req.Prompt, "%!(")
	assert.NotContains(t, req.Prompt, "MISSING")
}

func TestAssembler_TemplateMissingPlaceholderFallsBack(t *testing.T) {
	store := &stubPromptStore{prompts: map[string]string{
		driven.PromptAnswerUser: "Q={{query}} only",
	}}
	a := NewAssembler(domain.DefaultConfig(), store)

	req, err := a.Assemble("question", testEvidence(), domain.AnswerSchema())
	require.NoError(t, err)
	assert.Contains(t, req.Prompt, "Question:\nquestion")
	assert.Contains(t, req.Prompt, "[E1]")
}

func TestAssembler_PromptStoreFallback(t *testing.T) {
	store := &stubPromptStore{prompts: map[string]string{driven.PromptAnswerSystem: "   "}}
	a := NewAssembler(domain.DefaultConfig(), store)

	req, err := a.Assemble("question", testEvidence(), domain.AnswerSchema())
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultAnswerSystemPrompt, req.System)
	assert.Contains(t, req.Prompt, "Question:\nquestion")
}

func TestRenderSchema_NestedFields(t *testing.T) {
	out := RenderSchema(domain.AnswerSchema())
	assert.Contains(t, out, "each element is an object with:")
	assert.Contains(t, out, "    - fragment_ref: string, required")
}
