package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/mailbrowse/internal/theme"
)

// Layout manages the multi-panel terminal layout dimensions.
type Layout struct {
	Width           int
	Height          int
	HeaderHeight    int
	SearchBarHeight int
	StatusBarHeight int

	// ListPercent is the share of the content height given to the
	// message list pane.
	ListPercent int

	// ShowFolders reserves a left column for the folder pane.
	ShowFolders bool
}

// NewLayout creates a Layout with the given terminal dimensions.
// The header, search bar and status bar are one line each.
func NewLayout(width, height, listPercent int) Layout {
	if listPercent <= 0 || listPercent >= 100 {
		listPercent = 35
	}
	return Layout{
		Width:           width,
		Height:          height,
		HeaderHeight:    1,
		SearchBarHeight: 1,
		StatusBarHeight: 1,
		ListPercent:     listPercent,
	}
}

// FolderWidth returns the width of the folder pane, 0 when hidden.
func (l Layout) FolderWidth() int {
	if !l.ShowFolders {
		return 0
	}
	return min(32, l.Width/4)
}

// ContentWidth returns the width left for the message list and preview.
func (l Layout) ContentWidth() int {
	return max(l.Width-l.FolderWidth(), 0)
}

// ContentHeight returns the height available for the panes, accounting
// for the header, search bar and status bar.
func (l Layout) ContentHeight() int {
	return max(l.Height-l.HeaderHeight-l.SearchBarHeight-l.StatusBarHeight, 0)
}

// ListHeight returns the outer height of the message list pane.
func (l Layout) ListHeight() int {
	return l.ContentHeight() * l.ListPercent / 100
}

// PreviewHeight returns the outer height of the preview pane.
func (l Layout) PreviewHeight() int {
	return l.ContentHeight() - l.ListHeight()
}

// RenderHeader renders the top header bar with a title and the row
// position.
func (l Layout) RenderHeader(title string, info string) string {
	titleRendered := theme.HeaderStyle.Render(title)

	infoRendered := theme.HeaderStyle.
		Align(lipgloss.Right).
		Render(info)

	gap := l.Width -
		lipgloss.Width(titleRendered) -
		lipgloss.Width(infoRendered)
	if gap < 0 {
		gap = 0
	}

	filler := lipgloss.NewStyle().
		Background(theme.HeaderStyle.GetBackground()).
		Render(strings.Repeat(" ", gap))

	return lipgloss.JoinHorizontal(
		lipgloss.Top,
		titleRendered,
		filler,
		infoRendered,
	)
}

// RenderStatusBar renders the bottom status bar. A transient status
// message replaces the key hints.
func (l Layout) RenderStatusBar(hints, status string) string {
	style := theme.StatusBarStyle
	text := hints
	if status != "" {
		style = theme.StatusMessageStyle
		text = status
	}
	rendered := style.Render(text)

	gap := l.Width - lipgloss.Width(rendered)
	if gap < 0 {
		gap = 0
	}

	filler := lipgloss.NewStyle().
		Background(style.GetBackground()).
		Render(strings.Repeat(" ", gap))

	return lipgloss.JoinHorizontal(lipgloss.Top, rendered, filler)
}

// RenderWithFrame composes a full terminal view by vertically joining
// the header, search bar, content area and status bar.
func (l Layout) RenderWithFrame(
	header string,
	searchBar string,
	content string,
	statusBar string,
) string {
	return lipgloss.JoinVertical(
		lipgloss.Left,
		header,
		searchBar,
		content,
		statusBar,
	)
}
