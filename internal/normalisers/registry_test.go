package normalisers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/clause/internal/core/domain"
	"github.com/custodia-labs/clause/internal/core/ports/driven"
)

type stubNormaliser struct {
	name     string
	types    []string
	priority int
}

func (s *stubNormaliser) SupportedMIMETypes() []string { return s.types }
func (s *stubNormaliser) Priority() int                { return s.priority }
func (s *stubNormaliser) Normalise(_ context.Context, raw *domain.RawDocument) (*driven.NormaliseResult, error) {
	return &driven.NormaliseResult{Document: domain.Document{URI: raw.URI, Title: s.name}}, nil
}

func TestRegistry_PicksHighestPriority(t *testing.T) {
	r := NewRegistry(
		&stubNormaliser{name: "fallback", types: []string{"text/markdown", "text/plain"}, priority: 5},
		&stubNormaliser{name: "markdown", types: []string{"text/markdown"}, priority: 50},
	)

	result, err := r.Normalise(context.Background(), &domain.RawDocument{URI: "a.md", MIMEType: "text/markdown"})
	require.NoError(t, err)
	assert.Equal(t, "markdown", result.Document.Title)

	result, err = r.Normalise(context.Background(), &domain.RawDocument{URI: "a.txt", MIMEType: "text/plain"})
	require.NoError(t, err)
	assert.Equal(t, "fallback", result.Document.Title)
}

func TestRegistry_Unsupported(t *testing.T) {
	r := NewRegistry(&stubNormaliser{types: []string{"text/plain"}, priority: 5})

	_, err := r.Normalise(context.Background(), &domain.RawDocument{MIMEType: "application/pdf"})
	assert.ErrorIs(t, err, domain.ErrUnsupportedFormat)

	_, err = r.Normalise(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestRegistry_SupportedMIMETypes(t *testing.T) {
	r := NewRegistry(
		&stubNormaliser{types: []string{"text/plain", "text/csv"}, priority: 5},
		&stubNormaliser{types: []string{"text/plain"}, priority: 50},
	)
	assert.Equal(t, []string{"text/csv", "text/plain"}, r.SupportedMIMETypes())
}

func TestMIMETypeForPath(t *testing.T) {
	tests := []struct {
		path     string
		expected string
		ok       bool
	}{
		{"/docs/policy.md", "text/markdown", true},
		{"/docs/POLICY.MD", "text/markdown", true},
		{"schedule.yml", "application/yaml", true},
		{"notes.txt", "text/plain", true},
		{"scan.pdf", "", false},
		{"README", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			mime, ok := MIMETypeForPath(tt.path)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.expected, mime)
		})
	}
}

func TestTitleFromURI(t *testing.T) {
	assert.Equal(t, "home policy v2", TitleFromURI("/a/b/home_policy-v2.txt"))
}

func TestDocumentID_Stable(t *testing.T) {
	assert.Equal(t, DocumentID("/a.txt"), DocumentID("/a.txt"))
	assert.NotEqual(t, DocumentID("/a.txt"), DocumentID("/b.txt"))
}
