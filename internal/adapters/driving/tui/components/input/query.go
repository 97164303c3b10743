// Package input provides the question input component.
package input

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/clause/internal/adapters/driving/tui/styles"
)

const (
	label    = "Question "
	minWidth = 20
)

// QueryInput is a single-line question field.
type QueryInput struct {
	model  textinput.Model
	styles *styles.Styles
}

// NewQueryInput creates a focused input accepting up to limit runes.
// A non-positive limit leaves the length unbounded.
func NewQueryInput(s *styles.Styles, limit int) *QueryInput {
	if s == nil {
		s = styles.DefaultStyles()
	}

	ti := textinput.New()
	ti.Placeholder = "Is physiotherapy covered after a knee injury?"
	ti.Prompt = "› "
	ti.Width = 60
	if limit > 0 {
		ti.CharLimit = limit
	}
	ti.Focus()

	return &QueryInput{model: ti, styles: s}
}

// Init starts the cursor blinking.
func (q *QueryInput) Init() tea.Cmd {
	return textinput.Blink
}

// Update forwards msg to the underlying text input.
func (q *QueryInput) Update(msg tea.Msg) (*QueryInput, tea.Cmd) {
	var cmd tea.Cmd
	q.model, cmd = q.model.Update(msg)
	return q, cmd
}

// View renders the label and the framed field.
func (q *QueryInput) View() string {
	return lipgloss.JoinHorizontal(lipgloss.Center,
		q.styles.Title.Render(label),
		q.styles.Input.Render(q.model.View()),
	)
}

// Value returns the typed question.
func (q *QueryInput) Value() string { return q.model.Value() }

// SetValue replaces the typed question.
func (q *QueryInput) SetValue(v string) { q.model.SetValue(v) }

// Focus gives the field keyboard focus.
func (q *QueryInput) Focus() tea.Cmd { return q.model.Focus() }

// Blur removes keyboard focus.
func (q *QueryInput) Blur() { q.model.Blur() }

// Focused reports whether the field has focus.
func (q *QueryInput) Focused() bool { return q.model.Focused() }

// SetWidth fits the field into width columns.
func (q *QueryInput) SetWidth(width int) {
	w := width - lipgloss.Width(label) - 6
	if w < minWidth {
		w = minWidth
	}
	q.model.Width = w
}

// Reset clears the field.
func (q *QueryInput) Reset() { q.model.Reset() }
