package markdown

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/clause/internal/core/domain"
)

func TestSupportedMIMETypes(t *testing.T) {
	assert.Equal(t, []string{"text/markdown", "text/x-markdown"}, New().SupportedMIMETypes())
}

func TestPriority(t *testing.T) {
	assert.Equal(t, 50, New().Priority())
}

func TestNormalise_TitleFromHeading(t *testing.T) {
	raw := &domain.RawDocument{
		URI:      "/docs/policy.md",
		MIMEType: "text/markdown",
		Content:  []byte("# Home Insurance Policy\n\nSome text."),
	}

	result, err := New().Normalise(context.Background(), raw)
	require.NoError(t, err)
	assert.Equal(t, "Home Insurance Policy", result.Document.Title)
	assert.Equal(t, "markdown", result.Document.Metadata["format"])
}

func TestNormalise_TitleFallsBackToFilename(t *testing.T) {
	raw := &domain.RawDocument{
		URI:      "/docs/claims_handbook.md",
		MIMEType: "text/markdown",
		Content:  []byte("No heading here."),
	}

	result, err := New().Normalise(context.Background(), raw)
	require.NoError(t, err)
	assert.Equal(t, "claims handbook", result.Document.Title)
}

func TestStripMarkdown(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"heading", "## Exclusions", "Exclusions"},
		{"bold", "This is **not** covered", "This is not covered"},
		{"link", "See [clause 4](http://x/4)", "See clause 4"},
		{"image removed", "![logo](logo.png)Text", "Text"},
		{"inline code kept as text", "Use `EXCESS` value", "Use EXCESS value"},
		{"bullet", "- flood\n- fire", "flood\nfire"},
		{"numbered clauses kept", "1. Flood is excluded.\n2. Fire is covered.", "1. Flood is excluded.\n2. Fire is covered."},
		{"blockquote", "> quoted", "quoted"},
		{"horizontal rule", "above\n---\nbelow", "above\n\nbelow"},
		{"collapses blank lines", "a\n\n\n\nb", "a\n\nb"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, stripMarkdown(tt.input))
		})
	}
}

func TestNormalise_NilDocument(t *testing.T) {
	_, err := New().Normalise(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
