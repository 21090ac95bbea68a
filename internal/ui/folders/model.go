package folders

import (
	"fmt"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/nhle/mailbrowse/internal/index"
	"github.com/nhle/mailbrowse/internal/theme"
)

// Outline is the folder data the pane draws.
type Outline interface {
	Folders() []index.FolderEntry
	FolderCursor() int
}

// Model is the folder outline pane.
type Model struct {
	width  int
	height int
}

// New creates a folder pane.
func New() Model {
	return Model{}
}

// SetSize sets the outer pane dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// View renders the outline, scrolled so the cursor stays visible.
func (m Model) View(o Outline, focused bool) string {
	inner := max(m.width-2, 0)
	visible := max(m.height-3, 0)
	entries := o.Folders()
	cursor := o.FolderCursor()

	start := 0
	if cursor >= visible && visible > 0 {
		start = cursor - visible + 1
	}
	end := min(start+visible, len(entries))

	lines := []string{theme.PaneTitleStyle(focused).Render("Folders")}
	for i := start; i < end; i++ {
		line := runewidth.FillRight(runewidth.Truncate(Label(entries[i]), inner, "…"), inner)
		if i == cursor {
			line = theme.SelectedRowStyle.Render(line)
		}
		lines = append(lines, line)
	}

	return theme.PaneStyle(focused).
		Width(inner).
		Height(max(m.height-2, 0)).
		Render(strings.Join(lines, "\n"))
}

// Label is the indented "name (count)" line of one folder.
func Label(e index.FolderEntry) string {
	return fmt.Sprintf("%s%s (%d)", strings.Repeat("  ", e.Depth), e.Name, e.Count)
}
