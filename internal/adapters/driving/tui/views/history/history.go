// Package history provides the outcome history view.
package history

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/clause/internal/adapters/driving/tui/components/list"
	"github.com/custodia-labs/clause/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/clause/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/clause/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/clause/internal/core/domain"
	"github.com/custodia-labs/clause/internal/core/ports/driving"
)

// Limit is the number of records loaded.
const Limit = 100

// ErrNoHistoryService is reported when no history service is wired.
var ErrNoHistoryService = errors.New("history service is required")

// View lists recent outcomes with the selected record expanded below.
type View struct {
	styles  *styles.Styles
	keys    *keymap.KeyMap
	list    *list.RecordList
	history driving.HistoryService
	ctx     context.Context

	loading bool
	err     error
	width   int
	height  int
}

// NewView creates the view.
func NewView(s *styles.Styles, km *keymap.KeyMap, history driving.HistoryService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}
	return &View{
		styles:  s,
		keys:    km,
		list:    list.NewRecordList(s),
		history: history,
		ctx:     context.Background(),
		width:   80,
		height:  24,
	}
}

// WithContext sets the context passed to the history service.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init loads the records.
func (v *View) Init() tea.Cmd {
	v.loading = true
	v.err = nil
	return v.load()
}

func (v *View) load() tea.Cmd {
	history, ctx := v.history, v.ctx
	return func() tea.Msg {
		if history == nil {
			return messages.HistoryLoaded{Err: ErrNoHistoryService}
		}
		records, err := history.Recent(ctx, Limit)
		return messages.HistoryLoaded{Records: records, Err: err}
	}
}

// Update handles navigation and loaded records.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)

	case messages.HistoryLoaded:
		v.loading = false
		v.err = msg.Err
		if msg.Err == nil {
			v.list.SetRecords(msg.Records)
		}

	case messages.ErrorOccurred:
		v.loading = false
		v.err = msg.Err

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, v.keys.Back):
			return v, func() tea.Msg { return messages.ViewChanged{View: messages.ViewMenu} }
		case key.Matches(msg, v.keys.Up):
			v.list.MoveUp()
		case key.Matches(msg, v.keys.Down):
			v.list.MoveDown()
		case key.Matches(msg, v.keys.Reload):
			return v, v.Init()
		}
	}
	return v, nil
}

// View renders the list and the selected record.
func (v *View) View() string {
	var b strings.Builder
	b.WriteString(v.styles.Title.Render(fmt.Sprintf("History (%d)", len(v.list.Records()))))
	b.WriteString("\n\n")

	switch {
	case v.loading:
		b.WriteString(v.styles.Muted.Render("Loading history..."))
	case v.err != nil:
		b.WriteString(v.styles.Error.Render("Error: " + v.err.Error()))
	default:
		b.WriteString(v.list.View())
		if r := v.list.SelectedRecord(); r != nil {
			b.WriteString("\n\n")
			b.WriteString(v.renderRecord(r))
		}
	}

	b.WriteString("\n\n")
	b.WriteString(v.styles.Help.Render("[↑/↓] move  [r] reload  [esc] back"))
	return b.String()
}

func (v *View) renderRecord(r *domain.OutcomeRecord) string {
	lines := []string{
		v.styles.Heading.Render("Q: ") + v.styles.Normal.Render(r.Query),
		v.styles.Muted.Render(fmt.Sprintf("%s · %d evidence · %d attempt(s) · %s",
			r.Status, r.EvidenceCount, r.Attempts, r.CreatedAt.Local().Format("2006-01-02 15:04:05"))),
	}
	if r.Confidence != nil {
		lines = append(lines, v.styles.Muted.Render(fmt.Sprintf("confidence %.2f", *r.Confidence)))
	}
	if r.Detail != "" {
		lines = append(lines, v.styles.Normal.Width(max(v.width-4, 20)).Render(r.Detail))
	}
	return v.styles.Panel.Render(strings.Join(lines, "\n"))
}

// SetDimensions fits the list into the space left by the header and detail panel.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.list.SetDimensions(width, max(height-14, 3))
}

// Records returns the loaded records.
func (v *View) Records() []domain.OutcomeRecord { return v.list.Records() }

// Err returns the last load error.
func (v *View) Err() error { return v.err }

// Loading reports whether a load is in flight.
func (v *View) Loading() bool { return v.loading }
