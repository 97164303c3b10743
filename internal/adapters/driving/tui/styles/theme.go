// Package styles provides the colour palette and lipgloss styles for the TUI.
package styles

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/clause/internal/core/domain"
)

// Theme is the colour palette.
type Theme struct {
	Accent     lipgloss.Color
	Highlight  lipgloss.Color
	Text       lipgloss.Color
	Dim        lipgloss.Color
	Panel      lipgloss.Color
	Frame      lipgloss.Color
	Approved   lipgloss.Color
	Review     lipgloss.Color
	Rejected   lipgloss.Color
	StatusFill lipgloss.Color
}

// DefaultTheme returns the built-in dark palette.
func DefaultTheme() *Theme {
	return &Theme{
		Accent:     lipgloss.Color("#5B8DEF"),
		Highlight:  lipgloss.Color("#E0AF68"),
		Text:       lipgloss.Color("#D8DEE9"),
		Dim:        lipgloss.Color("#7A8194"),
		Panel:      lipgloss.Color("#1F2330"),
		Frame:      lipgloss.Color("#3B4252"),
		Approved:   lipgloss.Color("#8FBC6B"),
		Review:     lipgloss.Color("#EBCB8B"),
		Rejected:   lipgloss.Color("#E06C75"),
		StatusFill: lipgloss.Color("#161922"),
	}
}

// Styles holds the rendered styles derived from a Theme.
type Styles struct {
	theme *Theme

	Title    lipgloss.Style
	Heading  lipgloss.Style
	Normal   lipgloss.Style
	Muted    lipgloss.Style
	Selected lipgloss.Style
	Error    lipgloss.Style
	Help     lipgloss.Style

	// Input frames the question field.
	Input lipgloss.Style

	// Panel frames an answer or a details block.
	Panel lipgloss.Style

	StatusBar lipgloss.Style

	// Citation renders evidence references such as [E2].
	Citation lipgloss.Style

	approved    lipgloss.Style
	needsReview lipgloss.Style
	rejected    lipgloss.Style
}

// NewStyles derives styles from theme; nil means DefaultTheme.
func NewStyles(theme *Theme) *Styles {
	if theme == nil {
		theme = DefaultTheme()
	}

	badge := lipgloss.NewStyle().Bold(true).Padding(0, 1).Foreground(theme.Panel)

	return &Styles{
		theme:    theme,
		Title:    lipgloss.NewStyle().Bold(true).Foreground(theme.Accent),
		Heading:  lipgloss.NewStyle().Bold(true).Foreground(theme.Highlight),
		Normal:   lipgloss.NewStyle().Foreground(theme.Text),
		Muted:    lipgloss.NewStyle().Foreground(theme.Dim),
		Selected: lipgloss.NewStyle().Bold(true).Foreground(theme.Text).Background(theme.Accent),
		Error:    lipgloss.NewStyle().Foreground(theme.Rejected),
		Help:     lipgloss.NewStyle().Foreground(theme.Dim).Italic(true),
		Input: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(theme.Frame).
			Padding(0, 1),
		Panel: lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(theme.Frame).
			Padding(0, 1),
		StatusBar: lipgloss.NewStyle().
			Foreground(theme.Dim).
			Background(theme.StatusFill).
			Padding(0, 1),
		Citation:    lipgloss.NewStyle().Foreground(theme.Accent),
		approved:    badge.Background(theme.Approved),
		needsReview: badge.Background(theme.Review),
		rejected:    badge.Background(theme.Rejected),
	}
}

// DefaultStyles returns styles for the default theme.
func DefaultStyles() *Styles {
	return NewStyles(DefaultTheme())
}

// Theme returns the palette the styles were built from.
func (s *Styles) Theme() *Theme {
	return s.theme
}

// Decision returns the badge style for d. Unknown decisions render muted.
func (s *Styles) Decision(d domain.Decision) lipgloss.Style {
	switch d {
	case domain.DecisionApproved:
		return s.approved
	case domain.DecisionNeedsReview:
		return s.needsReview
	case domain.DecisionRejected:
		return s.rejected
	default:
		return s.Muted
	}
}
