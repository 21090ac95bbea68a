package messagelist

import (
	"fmt"
	"slices"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/nhle/mailbrowse/internal/model"
	"github.com/nhle/mailbrowse/internal/theme"
)

// Unloaded is shown in the subject column of rows not hydrated yet.
const Unloaded = "…"

// Rows is the list data the view draws.
type Rows interface {
	Count() int
	Offset() int
	Row(i int) (model.MessageSummary, bool)
	Selected() (int, bool)
	InSearchResults() bool
}

// Model is the message list pane. It keeps only presentation state; the
// rows and the selection live in the browser state.
type Model struct {
	columns []Column
	width   int
	height  int
}

// New creates a message list showing the named columns.
func New(columns []string) Model {
	return Model{columns: Columns(columns)}
}

// SetSize sets the outer pane dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// VisibleRows is the number of message rows the pane shows: the outer
// height minus the border, title and column header lines.
func (m Model) VisibleRows() int {
	return max(m.height-4, 0)
}

// ColumnKeys returns the keys of the visible columns.
func (m Model) ColumnKeys() []string {
	keys := make([]string, len(m.columns))
	for i, c := range m.columns {
		keys[i] = c.Key
	}
	return keys
}

// ToggleColumn shows or hides the column named key. The last visible
// column cannot be hidden.
func (m *Model) ToggleColumn(key string) {
	keys := m.ColumnKeys()
	if i := slices.Index(keys, key); i >= 0 {
		if len(keys) == 1 {
			return
		}
		keys = slices.Delete(keys, i, i+1)
	} else {
		keys = append(keys, key)
	}
	m.columns = Columns(keys)
}

// View renders the pane.
func (m Model) View(rows Rows, focused bool) string {
	inner := max(m.width-2, 0)
	widths := Widths(m.columns, inner)

	lines := make([]string, 0, m.VisibleRows()+2)
	lines = append(lines, theme.PaneTitleStyle(focused).Render(m.title(rows)))

	titles := make([]string, len(m.columns))
	for i, c := range m.columns {
		titles[i] = c.Title
	}
	lines = append(lines, theme.ColumnHeaderStyle.Render(formatCells(titles, widths)))

	selected, hasSel := rows.Selected()
	end := min(rows.Offset()+m.VisibleRows(), rows.Count())
	for i := rows.Offset(); i < end; i++ {
		line := formatCells(m.cells(rows, i), widths)
		switch _, loaded := rows.Row(i); {
		case hasSel && i == selected:
			line = theme.SelectedRowStyle.Render(line)
		case !loaded:
			line = theme.DimmedStyle.Render(line)
		}
		lines = append(lines, line)
	}

	return theme.PaneStyle(focused).
		Width(inner).
		Height(max(m.height-2, 0)).
		Render(strings.Join(lines, "\n"))
}

func (m Model) title(rows Rows) string {
	name := "Messages"
	if rows.InSearchResults() {
		name = "Search Results"
	}
	if sel, ok := rows.Selected(); ok {
		return fmt.Sprintf("%s (%d/%d)", name, sel+1, rows.Count())
	}
	return fmt.Sprintf("%s (%d)", name, rows.Count())
}

func (m Model) cells(rows Rows, i int) []string {
	summary, loaded := rows.Row(i)
	cells := make([]string, len(m.columns))
	for j, c := range m.columns {
		if !loaded {
			if c.Key == "subject" {
				cells[j] = Unloaded
			}
			continue
		}
		cells[j] = c.Value(summary)
	}
	return cells
}

// formatCells truncates and pads each cell to its width, leaving one
// space between columns.
func formatCells(cells []string, widths []int) string {
	var b strings.Builder
	for i, cell := range cells {
		w := widths[i]
		if w <= 0 {
			continue
		}
		cell = strings.Join(strings.Fields(cell), " ")
		cell = runewidth.Truncate(cell, w-1, "…")
		b.WriteString(runewidth.FillRight(cell, w))
	}
	return b.String()
}
