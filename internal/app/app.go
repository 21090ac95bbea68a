package app

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/mailbrowse/internal/browser"
	"github.com/nhle/mailbrowse/internal/keys"
	"github.com/nhle/mailbrowse/internal/logging"
	"github.com/nhle/mailbrowse/internal/theme"
	"github.com/nhle/mailbrowse/internal/ui"
	"github.com/nhle/mailbrowse/internal/ui/command"
	"github.com/nhle/mailbrowse/internal/ui/folders"
	helpview "github.com/nhle/mailbrowse/internal/ui/help"
	"github.com/nhle/mailbrowse/internal/ui/messagelist"
	"github.com/nhle/mailbrowse/internal/ui/preview"
)

// DefaultTick is the input poll interval.
const DefaultTick = 100 * time.Millisecond

// tickMsg paces the loop: a confirmed search runs on the first tick after
// the frame announcing it.
type tickMsg time.Time

// Overlay is a view drawn over the panes.
type Overlay int

const (
	OverlayNone Overlay = iota
	OverlayHelp
	OverlayCommand
)

// Options configures the root model.
type Options struct {
	// Source names the archive in the header.
	Source string

	// Columns are the visible message list columns.
	Columns []string

	// ListPercent is the share of the content height given to the list.
	ListPercent int

	// Tick is the poll interval. Defaults to DefaultTick.
	Tick time.Duration

	// KeyLog, when set, records every key press.
	KeyLog *logging.KeyLog
}

// Model is the root Bubble Tea model. It routes input to the browser
// state and lays out the panes around it.
type Model struct {
	ctx         context.Context
	state       *browser.State
	keys        *keys.KeyMap
	layout      ui.Layout
	list        messagelist.Model
	preview     preview.Model
	folders     folders.Model
	helpView    helpview.Model
	commandView command.Model
	overlay     Overlay
	keylog      *logging.KeyLog
	source      string
	listPercent int
	tick        time.Duration
	ready       bool
}

// New creates the root model over an indexed browser state. ctx carries
// the logger and is used for every store access.
func New(ctx context.Context, st *browser.State, opts Options) Model {
	k := keys.DefaultKeyMap()
	tick := opts.Tick
	if tick <= 0 {
		tick = DefaultTick
	}

	return Model{
		ctx:         ctx,
		state:       st,
		keys:        k,
		list:        messagelist.New(opts.Columns),
		preview:     preview.New(),
		folders:     folders.New(),
		helpView:    helpview.New(k),
		commandView: command.New(),
		keylog:      opts.KeyLog,
		source:      opts.Source,
		listPercent: opts.ListPercent,
		tick:        tick,
	}
}

// State returns the browser state.
func (m Model) State() *browser.State {
	return m.state
}

// Overlay returns the active overlay.
func (m Model) Overlay() Overlay {
	return m.overlay
}

// ColumnKeys returns the visible message list columns.
func (m Model) ColumnKeys() []string {
	return m.list.ColumnKeys()
}

// Init starts the poll ticker.
func (m Model) Init() tea.Cmd {
	return m.tickCmd()
}

func (m Model) tickCmd() tea.Cmd {
	return tea.Tick(m.tick, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Update handles messages and drives the browser state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.layout = ui.NewLayout(msg.Width, msg.Height, m.listPercent)
		m.ready = true
		m.resize()
		return m, nil

	case tickMsg:
		if m.state.HasPendingSearch() {
			m.runSearch()
		}
		return m, m.tickCmd()

	case command.CommandMsg:
		m.overlay = OverlayNone
		m.commandView.Blur()
		return m.executeCommand(string(msg))

	case command.CloseMsg:
		m.overlay = OverlayNone
		m.commandView.Blur()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

// resize propagates the layout to every pane and to the browser state.
func (m *Model) resize() {
	m.layout.ShowFolders = m.state.ShowFolders()
	width := m.layout.ContentWidth()

	m.list.SetSize(width, m.layout.ListHeight())
	m.preview.SetSize(width, m.layout.PreviewHeight())
	m.folders.SetSize(m.layout.FolderWidth(), m.layout.ContentHeight())
	m.helpView.SetSize(m.layout.Width, m.layout.ContentHeight())
	m.commandView.SetSize(m.layout.Width, m.layout.ContentHeight())

	m.state.Resize(m.list.VisibleRows(), m.preview.BodyHeight(), m.preview.BodyWidth())
	m.state.EnsureLoaded(m.ctx)
}

func (m *Model) runSearch() {
	if p, ok := m.state.Mode().(browser.SearchPending); ok {
		m.keylog.Event("[SEARCH] start query=%q", p.Query)
	}
	m.state.RunPendingSearch(m.ctx)
	m.keylog.Event("[SEARCH] done %s", m.state.Status())
	m.state.EnsureLoaded(m.ctx)
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.state.ClearStatus()
	m.logKey(msg)

	if key.Matches(msg, m.keys.ForceQuit) {
		return m, tea.Quit
	}

	switch m.overlay {
	case OverlayHelp:
		if key.Matches(msg, m.keys.Help, m.keys.Back, m.keys.Quit) {
			m.overlay = OverlayNone
		}
		return m, nil
	case OverlayCommand:
		var cmd tea.Cmd
		m.commandView, cmd = m.commandView.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	switch m.state.Mode().(type) {
	case browser.Searching:
		m.handleSearchKey(msg)
	case browser.SearchPending:
		// Input waits until the search has run.
	default:
		cmd = m.handleBrowseKey(msg)
	}

	m.state.EnsureLoaded(m.ctx)
	return m, cmd
}

// handleSearchKey edits the search bar.
func (m *Model) handleSearchKey(msg tea.KeyMsg) {
	switch msg.Type {
	case tea.KeyEsc:
		m.state.CancelSearch()
	case tea.KeyEnter:
		m.state.ConfirmSearch()
	case tea.KeyBackspace:
		m.state.Backspace()
	case tea.KeySpace:
		m.state.AppendSearch(' ')
	case tea.KeyRunes:
		for _, r := range msg.Runes {
			m.state.AppendSearch(r)
		}
	}
}

// handleBrowseKey routes navigation keys to the focused pane.
func (m *Model) handleBrowseKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return tea.Quit
	case key.Matches(msg, m.keys.Back):
		if !m.state.ClearSearch() {
			return tea.Quit
		}
	case key.Matches(msg, m.keys.Search):
		m.state.BeginSearch()
	case key.Matches(msg, m.keys.TogglePane):
		m.state.TogglePane()
	case key.Matches(msg, m.keys.Down):
		m.state.MoveDown(m.ctx)
	case key.Matches(msg, m.keys.Up):
		m.state.MoveUp(m.ctx)
	case key.Matches(msg, m.keys.Open):
		m.state.Open(m.ctx)
	case key.Matches(msg, m.keys.Help):
		m.overlay = OverlayHelp
	case key.Matches(msg, m.keys.Command):
		m.overlay = OverlayCommand
		return m.commandView.Focus()
	}
	return nil
}

// executeCommand handles a command string from the command palette.
func (m Model) executeCommand(cmd string) (tea.Model, tea.Cmd) {
	switch cmd {
	case command.Quit:
		return m, tea.Quit
	case command.ClearSearch:
		if !m.state.ClearSearch() {
			m.state.SetStatus("No search results to clear")
		}
	case command.ToggleCC:
		m.list.ToggleColumn("cc")
	case command.ToggleFolders:
		m.state.SetShowFolders(m.ctx, !m.state.ShowFolders())
		if m.ready {
			m.resize()
		}
	case command.Help:
		m.overlay = OverlayHelp
	default:
		m.state.SetStatus(fmt.Sprintf("Unknown command: %s", cmd))
	}
	m.state.EnsureLoaded(m.ctx)
	return m, nil
}

func (m Model) logKey(msg tea.KeyMsg) {
	sel, ok := m.state.Selected()
	m.keylog.Key(keyLabel(msg), m.state.Pane().String(), sel, ok, m.state.PreviewScroll())
}

// keyLabel names a key the way the debug log prints it.
func keyLabel(msg tea.KeyMsg) string {
	switch msg.Type {
	case tea.KeyRunes:
		if len(msg.Runes) == 1 {
			return fmt.Sprintf("'%c'", msg.Runes[0])
		}
		return fmt.Sprintf("%q", string(msg.Runes))
	case tea.KeySpace:
		return "' '"
	case tea.KeyEnter:
		return "Enter"
	case tea.KeyTab:
		return "Tab"
	case tea.KeyEsc:
		return "Esc"
	case tea.KeyUp:
		return "Up"
	case tea.KeyDown:
		return "Down"
	case tea.KeyBackspace:
		return "Backspace"
	default:
		return msg.String()
	}
}

// View renders the full terminal UI using the layout manager.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	header := m.layout.RenderHeader("mailbrowse", m.position())
	statusBar := m.layout.RenderStatusBar(m.keyHints(), m.state.Status())

	return m.layout.RenderWithFrame(header, m.searchBar(), m.renderContent(), statusBar)
}

func (m Model) renderContent() string {
	switch m.overlay {
	case OverlayHelp:
		return m.helpView.View()
	case OverlayCommand:
		return m.commandView.View()
	}

	pane := m.state.Pane()
	right := lipgloss.JoinVertical(lipgloss.Left,
		m.list.View(m.state, pane == browser.PaneMessages),
		m.preview.View(m.state, pane == browser.PanePreview),
	)
	if !m.state.ShowFolders() {
		return right
	}
	return lipgloss.JoinHorizontal(lipgloss.Top,
		m.folders.View(m.state, pane == browser.PaneFolders),
		right,
	)
}

// position describes the row source and selection for the header.
func (m Model) position() string {
	label := "All messages"
	if m.state.InSearchResults() {
		label = "Search results"
	}
	pos := fmt.Sprintf("%s %d", label, m.state.Count())
	if sel, ok := m.state.Selected(); ok {
		pos = fmt.Sprintf("%s %d/%d", label, sel+1, m.state.Count())
	}
	if m.source != "" {
		return m.source + " | " + pos
	}
	return pos
}

func (m Model) searchBar() string {
	switch mode := m.state.Mode().(type) {
	case browser.Searching:
		return theme.SearchBarStyle.Render(" Search: " + mode.Buffer + "█")
	case browser.SearchPending:
		return theme.SearchBarStyle.Render(fmt.Sprintf(" Search: %s (searching...)", mode.Query))
	}
	if m.state.InSearchResults() {
		return theme.DimmedStyle.Render(fmt.Sprintf(" Search: %s (Esc to clear)", m.state.SearchBuffer()))
	}
	return theme.DimmedStyle.Render(" Press / to search")
}

// keyHints returns keyboard shortcut hints for the status bar.
func (m Model) keyHints() string {
	switch m.overlay {
	case OverlayHelp:
		return "? close help | esc back"
	case OverlayCommand:
		return "enter execute | esc close"
	}

	if m.state.SearchActive() {
		return "[Search] type to search  Enter: run  Esc: cancel"
	}
	switch m.state.Pane() {
	case browser.PanePreview:
		return "[Preview] j/k: scroll  Tab: → messages  /: search  Esc: clear search  q: quit"
	case browser.PaneFolders:
		return "[Folders] j/k: navigate  Enter: jump  Tab: → messages  q: quit"
	default:
		return "[Messages] j/k: navigate  Enter/Tab: preview  /: search  Esc: clear search  q: quit"
	}
}
