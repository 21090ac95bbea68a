package preview

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/mailbrowse/internal/model"
	"github.com/nhle/mailbrowse/internal/theme"
)

// headerLines is the height of the header block plus its rule.
const headerLines = 6

// Content is what the preview pane draws.
type Content interface {
	Headers() model.Headers
	PreviewLines() []string
	PreviewScroll() int
}

// Model is the message preview pane: a fixed header block above a
// scrolling body.
type Model struct {
	viewport viewport.Model
	width    int
	height   int
}

// New creates a preview pane.
func New() Model {
	vp := viewport.New(0, 0)
	vp.Style = lipgloss.NewStyle()
	return Model{viewport: vp}
}

// SetSize sets the outer pane dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = m.BodyWidth()
	m.viewport.Height = m.BodyHeight()
}

// BodyWidth is the width of the body text in cells.
func (m Model) BodyWidth() int {
	return max(m.width-2, 0)
}

// BodyHeight is the number of visible body lines.
func (m Model) BodyHeight() int {
	return max(m.height-2-headerLines, 0)
}

// View renders the pane. Scrolling is owned by the browser state; the
// viewport only clips to it.
func (m Model) View(c Content, focused bool) string {
	vp := m.viewport
	vp.SetContent(strings.Join(c.PreviewLines(), "\n"))
	vp.SetYOffset(c.PreviewScroll())

	block := lipgloss.JoinVertical(lipgloss.Left,
		renderHeaders(c.Headers()),
		theme.DimmedStyle.Render(strings.Repeat("─", m.BodyWidth())),
		vp.View(),
	)

	return theme.PaneStyle(focused).
		Width(m.BodyWidth()).
		Height(max(m.height-2, 0)).
		Render(block)
}

func renderHeaders(h model.Headers) string {
	field := func(label, value string) string {
		return fmt.Sprintf("%s %s", theme.HeaderLabelStyle.Render(label), value)
	}
	return strings.Join([]string{
		field("From:   ", h.From),
		field("To:     ", h.To),
		field("CC:     ", h.CC),
		field("Subject:", h.Subject),
		field("Date:   ", h.Date),
	}, "\n")
}
