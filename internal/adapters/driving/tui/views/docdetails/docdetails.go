// Package docdetails provides the document details view.
package docdetails

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/clause/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/clause/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/clause/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/clause/internal/core/ports/driving"
)

const (
	timeLayout  = "2006-01-02 15:04:05"
	maxValueLen = 60
)

// View shows one document's metadata.
type View struct {
	styles *styles.Styles
	keys   *keymap.KeyMap

	details *driving.DocumentDetails
	err     error
	offset  int
	width   int
	height  int
}

// NewView creates the view.
func NewView(s *styles.Styles, km *keymap.KeyMap) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}
	return &View{styles: s, keys: km, width: 80, height: 24}
}

// SetDetails replaces the displayed document.
func (v *View) SetDetails(details *driving.DocumentDetails) {
	v.details = details
	v.err = nil
	v.offset = 0
}

// SetError shows err instead of details.
func (v *View) SetError(err error) {
	v.err = err
}

// Init implements tea.Model.
func (v *View) Init() tea.Cmd {
	return nil
}

// Update handles scrolling and navigation.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
	case messages.DocumentDetailsLoaded:
		if msg.Err != nil {
			v.SetError(msg.Err)
		} else {
			v.SetDetails(msg.Details)
		}
	case messages.ErrorOccurred:
		v.err = msg.Err
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, v.keys.Back):
			return v, func() tea.Msg { return messages.ViewChanged{View: messages.ViewDocuments} }
		case key.Matches(msg, v.keys.Up):
			if v.offset > 0 {
				v.offset--
			}
		case key.Matches(msg, v.keys.Down):
			if v.offset < v.maxOffset() {
				v.offset++
			}
		}
	}
	return v, nil
}

func (v *View) rows() int {
	return max(v.height-6, 1)
}

func (v *View) maxOffset() int {
	return max(len(v.lines())-v.rows(), 0)
}

func (v *View) lines() []string {
	d := v.details
	if d == nil {
		return nil
	}

	lines := []string{
		field("ID", d.ID),
		field("Title", d.Title),
		field("URI", d.URI),
		field("Chunks", fmt.Sprintf("%d", d.ChunkCount)),
		field("Length", fmt.Sprintf("%d characters", d.RuneCount)),
	}
	if !d.CreatedAt.IsZero() {
		lines = append(lines, field("Created", d.CreatedAt.Format(timeLayout)))
	}
	if !d.UpdatedAt.IsZero() {
		lines = append(lines, field("Updated", d.UpdatedAt.Format(timeLayout)))
	}

	if len(d.Metadata) > 0 {
		keys := make([]string, 0, len(d.Metadata))
		for k := range d.Metadata {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		lines = append(lines, "", "Metadata")
		for _, k := range keys {
			val := d.Metadata[k]
			if r := []rune(val); len(r) > maxValueLen {
				val = string(r[:maxValueLen-1]) + "…"
			}
			lines = append(lines, fmt.Sprintf("  %s: %s", k, val))
		}
	}
	return lines
}

func field(label, value string) string {
	return fmt.Sprintf("%-9s %s", label+":", value)
}

// View renders the details.
func (v *View) View() string {
	var b strings.Builder
	b.WriteString(v.styles.Title.Render("Document"))
	b.WriteString("\n\n")

	switch {
	case v.err != nil:
		b.WriteString(v.styles.Error.Render("Error: " + v.err.Error()))
	case v.details == nil:
		b.WriteString(v.styles.Muted.Render("No document selected."))
	default:
		lines := v.lines()
		end := min(v.offset+v.rows(), len(lines))
		for _, line := range lines[v.offset:end] {
			if line == "Metadata" {
				b.WriteString(v.styles.Heading.Render(line))
			} else {
				b.WriteString(v.styles.Normal.Render(line))
			}
			b.WriteString("\n")
		}
		if len(lines) > v.rows() {
			b.WriteString(v.styles.Muted.Render(fmt.Sprintf("  [line %d-%d of %d]", v.offset+1, end, len(lines))))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(v.styles.Help.Render("[↑/↓] scroll  [esc] back"))
	return b.String()
}

// SetDimensions records the terminal size.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.offset = min(v.offset, v.maxOffset())
}

// Details returns the displayed document.
func (v *View) Details() *driving.DocumentDetails { return v.details }

// Err returns the last error.
func (v *View) Err() error { return v.err }
