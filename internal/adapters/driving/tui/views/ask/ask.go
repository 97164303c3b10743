// Package ask provides the question and answer view.
package ask

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/clause/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/clause/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/clause/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/clause/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/clause/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/clause/internal/core/domain"
	"github.com/custodia-labs/clause/internal/core/ports/driving"
)

// View takes one question at a time and shows its outcome.
type View struct {
	styles  *styles.Styles
	keys    *keymap.KeyMap
	input   *input.QueryInput
	spinner spinner.Model
	bar     *status.Bar

	answers driving.AnswerService
	ctx     context.Context

	query    string
	outcome  *domain.ValidationOutcome
	err      error
	thinking bool

	width  int
	height int
	ready  bool
}

// NewView creates the view. maxQuery bounds the input length in runes.
func NewView(s *styles.Styles, km *keymap.KeyMap, answers driving.AnswerService, maxQuery int) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	bar := status.NewBar(s)
	bar.SetHints(km.AskHelp())

	return &View{
		styles:  s,
		keys:    km,
		input:   input.NewQueryInput(s, maxQuery),
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(s.Title)),
		bar:     bar,
		answers: answers,
		ctx:     context.Background(),
		width:   80,
		height:  24,
	}
}

// WithContext sets the context passed to the answer service.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init starts the cursor blinking.
func (v *View) Init() tea.Cmd {
	return v.input.Init()
}

// Update handles keys, spinner ticks and completed answers.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKey(msg)

	case spinner.TickMsg:
		if !v.thinking {
			return v, nil
		}
		var cmd tea.Cmd
		v.spinner, cmd = v.spinner.Update(msg)
		return v, cmd

	case messages.AnswerCompleted:
		v.handleAnswer(msg)
		return v, nil

	case messages.ErrorOccurred:
		v.thinking = false
		v.err = msg.Err
		v.bar.Set(status.StateError, msg.Err.Error())
		return v, nil
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

func (v *View) handleKey(msg tea.KeyMsg) (*View, tea.Cmd) {
	if key.Matches(msg, v.keys.Back) {
		return v, func() tea.Msg { return messages.ViewChanged{View: messages.ViewMenu} }
	}
	if v.thinking {
		return v, nil
	}

	if !v.input.Focused() {
		if key.Matches(msg, v.keys.NewQuestion) {
			return v, v.Reset()
		}
		return v, nil
	}

	if key.Matches(msg, v.keys.Submit) {
		query := strings.TrimSpace(v.input.Value())
		if query == "" {
			return v, nil
		}
		v.query = query
		v.outcome = nil
		v.err = nil
		v.thinking = true
		v.input.Blur()
		v.bar.Set(status.StateThinking, "")
		v.bar.SetHints([]key.Binding{v.keys.Back})
		return v, tea.Batch(v.spinner.Tick, v.ask(query))
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

// ask runs the pipeline off the UI goroutine.
func (v *View) ask(query string) tea.Cmd {
	answers, ctx := v.answers, v.ctx
	return func() tea.Msg {
		if answers == nil {
			return messages.ErrorOccurred{Err: ErrNoAnswerService}
		}
		outcome, err := answers.Process(ctx, query)
		return messages.AnswerCompleted{Query: query, Outcome: outcome, Err: err}
	}
}

func (v *View) handleAnswer(msg messages.AnswerCompleted) {
	v.thinking = false
	if msg.Err != nil {
		// let the user edit the rejected question
		v.err = msg.Err
		v.bar.Set(status.StateError, msg.Err.Error())
		v.bar.SetHints(v.keys.AskHelp())
		v.input.SetValue(msg.Query)
		v.input.Focus()
		return
	}

	outcome := msg.Outcome
	v.outcome = &outcome
	v.err = nil
	v.bar.Set(status.StateAnswered, outcome.Status())
	v.bar.SetHints(v.keys.AnswerHelp())
}

// View renders the screen.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	sections := []string{v.styles.Title.Render("Ask"), ""}

	if v.input.Focused() {
		sections = append(sections, v.input.View(), "")
	} else {
		sections = append(sections, v.styles.Heading.Render("Q: ")+v.styles.Normal.Render(v.query), "")
	}

	switch {
	case v.thinking:
		sections = append(sections, v.spinner.View()+" "+v.styles.Muted.Render("retrieving evidence and generating..."))
	case v.err != nil:
		sections = append(sections, v.styles.Error.Render("Error: "+v.err.Error()))
	case v.outcome != nil:
		sections = append(sections, RenderOutcome(v.styles, *v.outcome, v.width))
	}

	sections = append(sections, "", v.bar.View())
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// SetDimensions fits the view to the terminal.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
	v.input.SetWidth(width)
	v.bar.SetWidth(width)
}

// Reset returns to an empty, focused question field.
func (v *View) Reset() tea.Cmd {
	v.query = ""
	v.outcome = nil
	v.err = nil
	v.thinking = false
	v.input.Reset()
	v.bar.Set(status.StateReady, "")
	v.bar.SetHints(v.keys.AskHelp())
	return v.input.Focus()
}

// Query returns the last submitted question.
func (v *View) Query() string { return v.query }

// Outcome returns the last outcome, or nil.
func (v *View) Outcome() *domain.ValidationOutcome { return v.outcome }

// Err returns the last error.
func (v *View) Err() error { return v.err }

// Thinking reports whether a question is in flight.
func (v *View) Thinking() bool { return v.thinking }

// InputFocused reports whether the question field has focus.
func (v *View) InputFocused() bool { return v.input.Focused() }
