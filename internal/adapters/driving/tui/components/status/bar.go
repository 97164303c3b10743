// Package status provides the bottom status bar.
package status

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/clause/internal/adapters/driving/tui/styles"
)

// State is what the bar reports on its left side.
type State string

const (
	StateReady    State = "ready"
	StateThinking State = "thinking"
	StateAnswered State = "answered"
	StateLoading  State = "loading"
	StateError    State = "error"
)

// Bar shows the current state on the left and key hints on the right.
type Bar struct {
	styles  *styles.Styles
	state   State
	message string
	hints   []key.Binding
	width   int
}

// NewBar creates a bar in the ready state.
func NewBar(s *styles.Styles) *Bar {
	if s == nil {
		s = styles.DefaultStyles()
	}
	return &Bar{styles: s, state: StateReady, width: 80}
}

// View renders the bar across its full width.
func (b *Bar) View() string {
	left := b.renderLeft()
	right := b.renderHints()

	gap := b.width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if gap < 1 {
		gap = 1
	}
	return b.styles.StatusBar.Width(b.width).Render(left + strings.Repeat(" ", gap) + right)
}

func (b *Bar) renderLeft() string {
	switch b.state {
	case StateThinking:
		return b.styles.Normal.Render(b.withMessage("Thinking"))
	case StateLoading:
		return b.styles.Muted.Render(b.withMessage("Loading"))
	case StateAnswered:
		return b.styles.Normal.Render(b.withMessage("Done"))
	case StateError:
		return b.styles.Error.Render(b.withMessage("Error"))
	case StateReady:
	}
	return b.styles.Muted.Render(b.withMessage("Ready"))
}

func (b *Bar) withMessage(prefix string) string {
	if b.message == "" {
		return prefix
	}
	return fmt.Sprintf("%s: %s", prefix, b.message)
}

func (b *Bar) renderHints() string {
	parts := make([]string, 0, len(b.hints))
	for _, h := range b.hints {
		help := h.Help()
		parts = append(parts, help.Key+" "+help.Desc)
	}
	return b.styles.Muted.Render(strings.Join(parts, " · "))
}

// Set changes the state and message together.
func (b *Bar) Set(state State, message string) {
	b.state = state
	b.message = message
}

// State returns the current state.
func (b *Bar) State() State { return b.state }

// Message returns the current message.
func (b *Bar) Message() string { return b.message }

// SetHints replaces the key hints.
func (b *Bar) SetHints(hints []key.Binding) { b.hints = hints }

// SetWidth sets the rendered width.
func (b *Bar) SetWidth(width int) { b.width = width }
