package help

import (
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/mailbrowse/internal/keys"
	"github.com/nhle/mailbrowse/internal/theme"
)

// paneNotes explains what the navigation keys do in each pane.
var paneNotes = []string{
	"Messages  j/k select a message, enter opens it in the preview",
	"Preview   j/k scroll the message body",
	"Folders   j/k pick a folder, enter jumps to its first message",
	"Search    matches sender, recipients, CC and body text",
}

// Model is the help overlay view.
type Model struct {
	keys   *keys.KeyMap
	help   help.Model
	width  int
	height int
}

// New creates a new help view model.
func New(keys *keys.KeyMap) Model {
	return Model{
		keys: keys,
		help: help.New(),
	}
}

// View renders the help overlay.
func (m Model) View() string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1)

	title := titleStyle.Render("Keyboard Shortcuts")

	m.help.Width = m.width - 4
	m.help.ShowAll = true
	helpText := m.help.View(m.keys)

	notes := theme.HelpStyle.MarginTop(1).Render(lipgloss.JoinVertical(lipgloss.Left, paneNotes...))

	content := lipgloss.JoinVertical(lipgloss.Left, title, helpText, notes)

	return theme.OverlayStyle.
		Width(max(m.width-4, 0)).
		Height(max(m.height-4, 0)).
		Render(content)
}

// SetSize updates the help view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.help.Width = width - 4
}
