package styles

import (
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/clause/internal/core/domain"
)

func TestDefaultTheme_DecisionColoursDistinct(t *testing.T) {
	theme := DefaultTheme()
	require.NotNil(t, theme)

	seen := map[lipgloss.Color]bool{}
	for _, c := range []lipgloss.Color{theme.Approved, theme.Review, theme.Rejected, theme.Accent} {
		assert.NotEmpty(t, string(c))
		assert.False(t, seen[c], "duplicate colour %s", c)
		seen[c] = true
	}
}

func TestNewStyles_NilThemeUsesDefault(t *testing.T) {
	s := NewStyles(nil)

	require.NotNil(t, s.Theme())
	assert.Equal(t, DefaultTheme(), s.Theme())
}

func TestNewStyles_KeepsTheme(t *testing.T) {
	theme := DefaultTheme()
	theme.Accent = lipgloss.Color("#FFFFFF")

	s := NewStyles(theme)
	assert.Same(t, theme, s.Theme())
}

func TestStyles_DecisionBadges(t *testing.T) {
	s := DefaultStyles()

	for _, d := range domain.Decisions() {
		out := s.Decision(d).Render(string(d))
		assert.Contains(t, out, string(d))
	}

	assert.Equal(t, s.Theme().Approved, s.Decision(domain.DecisionApproved).GetBackground())
	assert.Equal(t, s.Theme().Rejected, s.Decision(domain.DecisionRejected).GetBackground())
	assert.Equal(t, s.Theme().Review, s.Decision(domain.DecisionNeedsReview).GetBackground())
}

func TestStyles_UnknownDecisionIsMuted(t *testing.T) {
	s := DefaultStyles()

	assert.Equal(t, s.Muted.GetForeground(), s.Decision("maybe").GetForeground())
}
