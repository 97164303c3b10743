package tui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/clause/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/clause/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/clause/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/clause/internal/adapters/driving/tui/views/ask"
	"github.com/custodia-labs/clause/internal/adapters/driving/tui/views/docdetails"
	"github.com/custodia-labs/clause/internal/adapters/driving/tui/views/documents"
	"github.com/custodia-labs/clause/internal/adapters/driving/tui/views/history"
	"github.com/custodia-labs/clause/internal/adapters/driving/tui/views/menu"
)

// DefaultMaxQueryLength bounds the question input when no limit is given.
const DefaultMaxQueryLength = 2000

// Option configures an App.
type Option func(*options)

type options struct {
	maxQuery int
	theme    *styles.Theme
}

// WithMaxQueryLength bounds the question input in runes.
func WithMaxQueryLength(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.maxQuery = n
		}
	}
}

// WithTheme replaces the default palette.
func WithTheme(t *styles.Theme) Option {
	return func(o *options) { o.theme = t }
}

// App is the root Bubbletea model. It owns every view and routes messages.
type App struct {
	ports  *Ports
	ctx    context.Context
	styles *styles.Styles
	keys   *keymap.KeyMap

	menuView       *menu.View
	askView        *ask.View
	historyView    *history.View
	documentsView  *documents.View
	docDetailsView *docdetails.View

	currentView messages.ViewType
	width       int
	height      int
	ready       bool
}

var _ tea.Model = (*App)(nil)

// NewApp creates the console over ports.
func NewApp(ports *Ports, opts ...Option) (*App, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}

	o := options{maxQuery: DefaultMaxQueryLength}
	for _, opt := range opts {
		opt(&o)
	}

	s := styles.NewStyles(o.theme)
	km := keymap.DefaultKeyMap()

	return &App{
		ports:          ports,
		ctx:            context.Background(),
		styles:         s,
		keys:           km,
		menuView:       menu.NewView(s, km),
		askView:        ask.NewView(s, km, ports.Answer, o.maxQuery),
		historyView:    history.NewView(s, km, ports.History),
		documentsView:  documents.NewView(s, km, ports.Document),
		docDetailsView: docdetails.NewView(s, km),
		currentView:    messages.ViewMenu,
	}, nil
}

// WithContext sets the context passed to every service call.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	a.askView.WithContext(ctx)
	a.historyView.WithContext(ctx)
	a.documentsView.WithContext(ctx)
	return a
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	return tea.SetWindowTitle("clause")
}

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.SetDimensions(msg.Width, msg.Height)
		return a, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
		return a, a.routeKey(msg)

	case messages.ViewChanged:
		return a, a.switchTo(msg.View)

	case messages.Quit:
		return a, tea.Quit

	// Results are delivered to their owning view whatever is on screen.
	case messages.AnswerCompleted, spinner.TickMsg:
		a.askView, cmd = a.askView.Update(msg)
		return a, cmd

	case messages.HistoryLoaded:
		a.historyView, cmd = a.historyView.Update(msg)
		return a, cmd

	case messages.DocumentsLoaded, messages.DocumentRemoved:
		a.documentsView, cmd = a.documentsView.Update(msg)
		return a, cmd

	case messages.DocumentDetailsLoaded:
		a.docDetailsView, _ = a.docDetailsView.Update(msg)
		if msg.Err != nil {
			a.documentsView, cmd = a.documentsView.Update(msg)
			return a, cmd
		}
		a.currentView = messages.ViewDocDetails
		return a, nil
	}

	return a, a.routeToCurrent(msg)
}

func (a *App) routeKey(msg tea.KeyMsg) tea.Cmd {
	if a.currentView == messages.ViewHelp {
		if key.Matches(msg, a.keys.Back) || key.Matches(msg, a.keys.Quit) {
			a.currentView = messages.ViewMenu
		}
		return nil
	}
	return a.routeToCurrent(msg)
}

func (a *App) routeToCurrent(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch a.currentView {
	case messages.ViewMenu:
		a.menuView, cmd = a.menuView.Update(msg)
	case messages.ViewAsk:
		a.askView, cmd = a.askView.Update(msg)
	case messages.ViewHistory:
		a.historyView, cmd = a.historyView.Update(msg)
	case messages.ViewDocuments:
		a.documentsView, cmd = a.documentsView.Update(msg)
	case messages.ViewDocDetails:
		a.docDetailsView, cmd = a.docDetailsView.Update(msg)
	}
	return cmd
}

// switchTo activates view and returns the command that loads its data.
func (a *App) switchTo(view messages.ViewType) tea.Cmd {
	a.currentView = view
	switch view {
	case messages.ViewAsk:
		return a.askView.Init()
	case messages.ViewHistory:
		return a.historyView.Init()
	case messages.ViewDocuments:
		return a.documentsView.Init()
	default:
		return nil
	}
}

// View implements tea.Model.
func (a *App) View() string {
	if !a.ready {
		return "Initialising..."
	}

	switch a.currentView {
	case messages.ViewAsk:
		return a.askView.View()
	case messages.ViewHistory:
		return a.historyView.View()
	case messages.ViewDocuments:
		return a.documentsView.View()
	case messages.ViewDocDetails:
		return a.docDetailsView.View()
	case messages.ViewHelp:
		return a.viewHelp()
	default:
		return a.menuView.View()
	}
}

func (a *App) viewHelp() string {
	return a.styles.Title.Render("Help") + `

Everywhere:
  esc         back
  ctrl+c      quit

Menu:
  j/k, ↑/↓    move
  enter       select
  q           quit

Ask:
  (type)      question, up to the configured length
  enter       ask
  n           new question once an answer is shown

History and Documents:
  j/k, ↑/↓    move
  enter       document details
  x then y    remove document with its chunks and vectors
  r           reload

` + a.styles.Help.Render("[esc] back to menu")
}

// Run starts the program on the alternate screen and blocks until it exits.
func (a *App) Run() error {
	p := tea.NewProgram(a, tea.WithAltScreen(), tea.WithContext(a.ctx))
	_, err := p.Run()
	return err
}

// CurrentView returns the active view.
func (a *App) CurrentView() messages.ViewType {
	return a.currentView
}

// Ready reports whether the terminal size is known.
func (a *App) Ready() bool {
	return a.ready
}

// SetDimensions forwards the terminal size to every view.
func (a *App) SetDimensions(width, height int) {
	a.width = width
	a.height = height
	a.ready = true
	a.menuView.SetDimensions(width, height)
	a.askView.SetDimensions(width, height)
	a.historyView.SetDimensions(width, height)
	a.documentsView.SetDimensions(width, height)
	a.docDetailsView.SetDimensions(width, height)
}
