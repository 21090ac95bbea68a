package theme

import "github.com/charmbracelet/lipgloss"

// Adaptive color pairs (dark terminal value, light terminal value).
var (
	ColorBlue   = lipgloss.AdaptiveColor{Dark: "#5B9BD5", Light: "#2B6CB0"}
	ColorGreen  = lipgloss.AdaptiveColor{Dark: "#6BCB77", Light: "#2F855A"}
	ColorYellow = lipgloss.AdaptiveColor{Dark: "#FFD93D", Light: "#B7791F"}
	ColorGray   = lipgloss.AdaptiveColor{Dark: "#868E96", Light: "#718096"}
	ColorWhite  = lipgloss.AdaptiveColor{Dark: "#F8F9FA", Light: "#1A202C"}
	ColorSubtle = lipgloss.AdaptiveColor{Dark: "#495057", Light: "#CBD5E0"}
	ColorBorder = lipgloss.AdaptiveColor{Dark: "#495057", Light: "#E2E8F0"}
)

// HeaderStyle is used for the application title bar.
var HeaderStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(ColorWhite).
	Background(ColorBlue).
	Padding(0, 1)

// StatusBarStyle is used for the bottom status bar.
var StatusBarStyle = lipgloss.NewStyle().
	Foreground(ColorWhite).
	Background(ColorSubtle).
	Padding(0, 1)

// StatusMessageStyle highlights a transient status message.
var StatusMessageStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(ColorYellow).
	Background(ColorSubtle).
	Padding(0, 1)

// OverlayStyle wraps the help overlay and command palette.
var OverlayStyle = lipgloss.NewStyle().
	Padding(1, 2).
	Border(lipgloss.RoundedBorder()).
	BorderForeground(ColorBorder)

// ColumnHeaderStyle renders the message list column titles.
var ColumnHeaderStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(ColorYellow)

// SelectedRowStyle highlights the selected message or folder.
var SelectedRowStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(ColorWhite).
	Background(ColorSubtle)

// DimmedStyle is used for rows that are not hydrated yet and for
// placeholder text.
var DimmedStyle = lipgloss.NewStyle().
	Foreground(ColorGray)

// HeaderLabelStyle renders the labels of the preview header block.
var HeaderLabelStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(ColorGreen)

// SearchBarStyle renders the search input line.
var SearchBarStyle = lipgloss.NewStyle().
	Foreground(ColorYellow)

// HelpStyle is used for keyboard shortcut hints and help text.
var HelpStyle = lipgloss.NewStyle().
	Foreground(ColorGray).
	Italic(true)

// PaneStyle returns the bordered style of a pane, highlighted when it has
// focus.
func PaneStyle(focused bool) lipgloss.Style {
	base := lipgloss.NewStyle().Border(lipgloss.RoundedBorder())
	if focused {
		return base.BorderForeground(ColorYellow)
	}
	return base.BorderForeground(ColorBorder)
}

// PaneTitleStyle returns the style of a pane title.
func PaneTitleStyle(focused bool) lipgloss.Style {
	base := lipgloss.NewStyle().Bold(true).Padding(0, 1)
	if focused {
		return base.Foreground(ColorYellow)
	}
	return base.Foreground(ColorGray)
}
