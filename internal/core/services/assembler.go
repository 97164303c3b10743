package services

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/custodia-labs/clause/internal/core/domain"
	"github.com/custodia-labs/clause/internal/core/ports/driven"
	"github.com/custodia-labs/clause/internal/logger"
)

// Assembler renders queries and evidence into generation requests.
// Templates are resolved once at construction, so Assemble is a pure function
// of its arguments.
type Assembler struct {
	system         string
	userTemplate   string
	maxQueryLength int
	params         domain.GenerationParams
}

// NewAssembler creates an assembler. promptStore is optional; when nil or when
// a template cannot be loaded the built-in templates are used.
func NewAssembler(cfg domain.Config, promptStore driven.PromptStore) *Assembler {
	return &Assembler{
		system:         loadPrompt(promptStore, driven.PromptAnswerSystem, domain.DefaultAnswerSystemPrompt),
		userTemplate:   loadUserTemplate(promptStore),
		maxQueryLength: cfg.Assembler.MaxQueryLength,
		params: domain.GenerationParams{
			Temperature: cfg.Generation.Temperature,
			MaxTokens:   cfg.Generation.MaxTokens,
		},
	}
}

func loadPrompt(store driven.PromptStore, name, fallback string) string {
	if store == nil {
		return fallback
	}
	prompt, err := store.Load(name)
	if err != nil || strings.TrimSpace(prompt) == "" {
		logger.Warn("prompt %q unavailable, using built-in default: %v", name, err)
		return fallback
	}
	return prompt
}

// loadUserTemplate falls back to the built-in template when a placeholder is missing.
func loadUserTemplate(store driven.PromptStore) string {
	tmpl := loadPrompt(store, driven.PromptAnswerUser, domain.DefaultAnswerUserPrompt)
	if missing := domain.MissingPlaceholders(tmpl, domain.AnswerUserPlaceholders); len(missing) > 0 {
		logger.Warn("prompt %q lacks %s, using built-in default",
			driven.PromptAnswerUser, strings.Join(missing, ", "))
		return domain.DefaultAnswerUserPrompt
	}
	return tmpl
}

// CheckQuery returns domain.ErrMalformedQuery if the query is empty or too long.
func (a *Assembler) CheckQuery(query string) error {
	q := strings.TrimSpace(query)
	if q == "" {
		return fmt.Errorf("%w: query is empty", domain.ErrMalformedQuery)
	}
	if n := utf8.RuneCountInString(q); a.maxQueryLength > 0 && n > a.maxQueryLength {
		return fmt.Errorf("%w: query is %d characters, maximum is %d",
			domain.ErrMalformedQuery, n, a.maxQueryLength)
	}
	return nil
}

// Assemble renders the generation request for query over evidence.
// Identical inputs always produce an identical request.
func (a *Assembler) Assemble(
	query string,
	evidence domain.EvidenceSet,
	schema domain.SchemaDescriptor,
) (domain.GenerationRequest, error) {
	if err := a.CheckQuery(query); err != nil {
		return domain.GenerationRequest{}, err
	}
	q := strings.TrimSpace(query)

	prompt := strings.NewReplacer(
		domain.PlaceholderQuery, q,
		domain.PlaceholderEvidence, renderEvidence(evidence),
		domain.PlaceholderSchema, RenderSchema(schema),
	).Replace(a.userTemplate)

	return domain.GenerationRequest{
		Query:    q,
		Evidence: evidence,
		Schema:   schema,
		Params:   a.params,
		System:   a.system,
		Prompt:   prompt,
	}, nil
}

// renderEvidence lists fragments under their reference labels.
func renderEvidence(evidence domain.EvidenceSet) string {
	var b strings.Builder
	for i := 0; i < evidence.Len(); i++ {
		f := evidence.At(i)
		fmt.Fprintf(&b, "[%s] document=%s offset=%d-%d score=%s\n",
			evidence.Ref(i), f.SourceDocumentID, f.Offset.Start, f.Offset.End,
			strconv.FormatFloat(f.Score, 'f', 3, 64))
		b.WriteString(strings.TrimSpace(f.Text))
		b.WriteString("\n\n")
	}
	return b.String()
}

// RenderSchema describes the schema's fields, types, required flags and enum values.
func RenderSchema(schema domain.SchemaDescriptor) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s (JSON object)\n", schema.Name)
	writeFields(&b, schema.Fields, "")
	return b.String()
}

func writeFields(b *strings.Builder, fields []domain.SchemaField, indent string) {
	for _, f := range fields {
		fmt.Fprintf(b, "%s- %s: %s", indent, f.Name, f.Type)
		if f.Required {
			b.WriteString(", required")
		} else {
			b.WriteString(", optional")
		}
		if len(f.Enum) > 0 {
			quoted := make([]string, len(f.Enum))
			for i, v := range f.Enum {
				quoted[i] = strconv.Quote(v)
			}
			fmt.Fprintf(b, ", one of [%s]", strings.Join(quoted, ", "))
		}
		if f.Description != "" {
			fmt.Fprintf(b, " - %s", f.Description)
		}
		b.WriteString("\n")
		if len(f.Fields) > 0 {
			fmt.Fprintf(b, "%s  each element is an object with:\n", indent)
			writeFields(b, f.Fields, indent+"    ")
		}
	}
}
