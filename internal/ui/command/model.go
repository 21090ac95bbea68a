package command

import (
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/nhle/mailbrowse/internal/theme"
)

// Palette commands.
const (
	Quit          = "quit"
	ClearSearch   = "clear search"
	ToggleCC      = "toggle cc"
	ToggleFolders = "toggle folders"
	Help          = "help"
)

// Commands lists every palette command.
var Commands = []string{Quit, ClearSearch, ToggleCC, ToggleFolders, Help}

// CommandMsg is emitted when the user executes a command. It holds the
// best matching command, or the raw input when nothing matched.
type CommandMsg string

// CloseMsg is emitted when the palette is dismissed.
type CloseMsg struct{}

// Match returns the commands matching input, best first. Empty input
// matches everything.
func Match(input string) []string {
	input = strings.TrimSpace(input)
	if input == "" {
		return append([]string(nil), Commands...)
	}

	ranks := fuzzy.RankFindFold(input, Commands)
	sort.Sort(ranks)
	out := make([]string, 0, len(ranks))
	for _, r := range ranks {
		out = append(out, r.Target)
	}
	return out
}

// Model is the command palette view.
type Model struct {
	input  textinput.Model
	width  int
	height int
}

// New creates a new command palette model.
func New() Model {
	ti := textinput.New()
	ti.Placeholder = "type a command..."
	ti.Prompt = ": "

	return Model{input: ti}
}

// Update handles messages for the command palette.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "enter":
			raw := strings.TrimSpace(m.input.Value())
			m.input.Reset()
			chosen := raw
			if matches := Match(raw); raw != "" && len(matches) > 0 {
				chosen = matches[0]
			}
			if chosen == "" {
				return m, nil
			}
			return m, func() tea.Msg {
				return CommandMsg(chosen)
			}

		case "esc":
			m.input.Reset()
			return m, func() tea.Msg {
				return CloseMsg{}
			}
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View renders the command palette with the current matches.
func (m Model) View() string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1)

	lines := []string{titleStyle.Render("Command Palette"), m.input.View(), ""}
	for i, c := range Match(m.input.Value()) {
		if i == 0 {
			lines = append(lines, theme.SelectedRowStyle.Render("> "+c))
			continue
		}
		lines = append(lines, theme.HelpStyle.Render("  "+c))
	}

	return theme.OverlayStyle.
		Width(max(m.width-4, 0)).
		Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

// SetSize updates the command palette dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.input.Width = width - 6
}

// Focus gives keyboard focus to the text input.
func (m *Model) Focus() tea.Cmd {
	return m.input.Focus()
}

// Blur releases keyboard focus.
func (m *Model) Blur() {
	m.input.Blur()
}
