// Package documents provides the ingested documents view.
package documents

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/clause/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/clause/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/clause/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/clause/internal/core/domain"
	"github.com/custodia-labs/clause/internal/core/ports/driving"
)

// ErrNoDocumentService is reported when no document service is wired.
var ErrNoDocumentService = errors.New("document service is required")

// View lists documents. Enter loads details; x asks to remove, y confirms.
type View struct {
	styles    *styles.Styles
	keys      *keymap.KeyMap
	documents driving.DocumentService
	ctx       context.Context

	docs       []domain.Document
	selected   int
	offset     int
	confirming bool
	loading    bool
	err        error
	notice     string
	width      int
	height     int
}

// NewView creates the view.
func NewView(s *styles.Styles, km *keymap.KeyMap, documents driving.DocumentService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}
	return &View{
		styles:    s,
		keys:      km,
		documents: documents,
		ctx:       context.Background(),
		width:     80,
		height:    24,
	}
}

// WithContext sets the context passed to the document service.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init loads the document list.
func (v *View) Init() tea.Cmd {
	v.loading = true
	v.err = nil
	v.confirming = false
	return v.load()
}

func (v *View) load() tea.Cmd {
	svc, ctx := v.documents, v.ctx
	return func() tea.Msg {
		if svc == nil {
			return messages.DocumentsLoaded{Err: ErrNoDocumentService}
		}
		docs, err := svc.List(ctx)
		return messages.DocumentsLoaded{Documents: docs, Err: err}
	}
}

func (v *View) loadDetails(id string) tea.Cmd {
	svc, ctx := v.documents, v.ctx
	return func() tea.Msg {
		if svc == nil {
			return messages.DocumentDetailsLoaded{DocumentID: id, Err: ErrNoDocumentService}
		}
		details, err := svc.GetDetails(ctx, id)
		return messages.DocumentDetailsLoaded{DocumentID: id, Details: details, Err: err}
	}
}

func (v *View) remove(id string) tea.Cmd {
	svc, ctx := v.documents, v.ctx
	return func() tea.Msg {
		if svc == nil {
			return messages.DocumentRemoved{DocumentID: id, Err: ErrNoDocumentService}
		}
		return messages.DocumentRemoved{DocumentID: id, Err: svc.Remove(ctx, id)}
	}
}

// Update handles keys and service results.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)

	case messages.DocumentsLoaded:
		v.loading = false
		v.err = msg.Err
		if msg.Err == nil {
			v.docs = msg.Documents
			v.selected = min(v.selected, max(len(v.docs)-1, 0))
			v.offset = 0
			v.adjustScroll()
		}

	case messages.DocumentRemoved:
		if msg.Err != nil {
			v.err = msg.Err
			return v, nil
		}
		v.notice = "Removed " + msg.DocumentID
		return v, v.Init()

	case messages.DocumentDetailsLoaded:
		if msg.Err != nil {
			v.err = msg.Err
		}

	case messages.ErrorOccurred:
		v.err = msg.Err

	case tea.KeyMsg:
		return v.handleKey(msg)
	}
	return v, nil
}

func (v *View) handleKey(msg tea.KeyMsg) (*View, tea.Cmd) {
	if v.confirming {
		v.confirming = false
		if msg.String() == "y" {
			if doc := v.SelectedDocument(); doc != nil {
				return v, v.remove(doc.ID)
			}
		}
		return v, nil
	}

	switch {
	case key.Matches(msg, v.keys.Back):
		return v, func() tea.Msg { return messages.ViewChanged{View: messages.ViewMenu} }
	case key.Matches(msg, v.keys.Up):
		if v.selected > 0 {
			v.selected--
			v.adjustScroll()
		}
	case key.Matches(msg, v.keys.Down):
		if v.selected < len(v.docs)-1 {
			v.selected++
			v.adjustScroll()
		}
	case key.Matches(msg, v.keys.Select):
		if doc := v.SelectedDocument(); doc != nil {
			return v, v.loadDetails(doc.ID)
		}
	case key.Matches(msg, v.keys.Remove):
		if v.SelectedDocument() != nil {
			v.confirming = true
			v.notice = ""
		}
	case key.Matches(msg, v.keys.Reload):
		v.notice = ""
		return v, v.Init()
	}
	return v, nil
}

func (v *View) rows() int {
	return max(v.height-8, 1)
}

func (v *View) adjustScroll() {
	rows := v.rows()
	if v.selected < v.offset {
		v.offset = v.selected
	} else if v.selected >= v.offset+rows {
		v.offset = v.selected - rows + 1
	}
}

// View renders the list.
func (v *View) View() string {
	var b strings.Builder
	b.WriteString(v.styles.Title.Render(fmt.Sprintf("Documents (%d)", len(v.docs))))
	b.WriteString("\n\n")

	switch {
	case v.loading:
		b.WriteString(v.styles.Muted.Render("Loading documents..."))
	case v.err != nil:
		b.WriteString(v.styles.Error.Render("Error: " + v.err.Error()))
	case len(v.docs) == 0:
		b.WriteString(v.styles.Muted.Render("No documents ingested. Run 'clause ingest <path>' to add some."))
	default:
		end := min(v.offset+v.rows(), len(v.docs))
		for i := v.offset; i < end; i++ {
			b.WriteString(v.renderRow(i))
			b.WriteString("\n")
		}
		if len(v.docs) > v.rows() {
			b.WriteString(v.styles.Muted.Render(fmt.Sprintf("  [%d-%d of %d]", v.offset+1, end, len(v.docs))))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	switch {
	case v.confirming:
		doc := v.SelectedDocument()
		b.WriteString(v.styles.Error.Render(fmt.Sprintf("Remove %s with its chunks and vectors? [y/N]", displayTitle(doc))))
	case v.notice != "":
		b.WriteString(v.styles.Muted.Render(v.notice))
	default:
		b.WriteString(v.styles.Help.Render("[↑/↓] move  [enter] details  [x] remove  [r] reload  [esc] back"))
	}
	return b.String()
}

func (v *View) renderRow(i int) string {
	doc := &v.docs[i]
	titleWidth := max(v.width/2-4, 10)
	title := clip(displayTitle(doc), titleWidth)
	uri := doc.URI
	if n := len([]rune(uri)); n > titleWidth {
		uri = "…" + string([]rune(uri)[n-titleWidth+1:])
	}

	if i == v.selected {
		return v.styles.Selected.Render(fmt.Sprintf("> %-*s  %s", titleWidth, title, uri))
	}
	return "  " + v.styles.Normal.Render(fmt.Sprintf("%-*s  ", titleWidth, title)) + v.styles.Muted.Render(uri)
}

func displayTitle(doc *domain.Document) string {
	if doc == nil {
		return ""
	}
	if doc.Title != "" {
		return doc.Title
	}
	return doc.ID
}

func clip(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-1]) + "…"
}

// SetDimensions records the terminal size.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.adjustScroll()
}

// Documents returns the loaded documents.
func (v *View) Documents() []domain.Document { return v.docs }

// SelectedDocument returns the document under the cursor, or nil.
func (v *View) SelectedDocument() *domain.Document {
	if v.selected < 0 || v.selected >= len(v.docs) {
		return nil
	}
	return &v.docs[v.selected]
}

// Confirming reports whether a remove confirmation is pending.
func (v *View) Confirming() bool { return v.confirming }

// Err returns the last error.
func (v *View) Err() error { return v.err }
