package messagelist

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"

	"github.com/nhle/mailbrowse/internal/model"
)

type stubRows struct {
	rows     []*model.MessageSummary
	offset   int
	selected int
	search   bool
}

func (s stubRows) Count() int { return len(s.rows) }
func (s stubRows) Offset() int { return s.offset }
func (s stubRows) Row(i int) (model.MessageSummary, bool) {
	if s.rows[i] == nil {
		return model.MessageSummary{}, false
	}
	return *s.rows[i], true
}
func (s stubRows) Selected() (int, bool) { return s.selected, s.selected >= 0 }
func (s stubRows) InSearchResults() bool { return s.search }

func TestColumns(t *testing.T) {
	keys := func(cols []Column) []string {
		out := make([]string, len(cols))
		for i, c := range cols {
			out[i] = c.Key
		}
		return out
	}

	assert.Equal(t, []string{"from", "to", "subject", "date"}, keys(Columns(nil)))
	assert.Equal(t, []string{"from", "cc", "date"}, keys(Columns([]string{"date", " CC ", "from"})))
	assert.Equal(t, []string{"from", "to", "subject", "date"}, keys(Columns([]string{"bogus"})))
}

func TestWidths(t *testing.T) {
	all := Widths(AllColumns, 115)
	assert.Equal(t, []int{20, 20, 15, 40, 20}, all)

	w := Widths(Columns(nil), 101)
	sum := 0
	for _, n := range w {
		sum += n
	}
	assert.Equal(t, 101, sum)

	assert.Equal(t, []int{0, 0}, Widths(AllColumns[:2], 0))
}

func TestToggleColumn(t *testing.T) {
	m := New(nil)

	m.ToggleColumn("cc")
	assert.Equal(t, []string{"from", "to", "cc", "subject", "date"}, m.ColumnKeys())

	m.ToggleColumn("cc")
	assert.Equal(t, []string{"from", "to", "subject", "date"}, m.ColumnKeys())

	single := New([]string{"subject"})
	single.ToggleColumn("subject")
	assert.Equal(t, []string{"subject"}, single.ColumnKeys())
}

func TestViewRendersWindow(t *testing.T) {
	rows := stubRows{selected: 1, offset: 1}
	for i := range 10 {
		if i == 3 {
			rows.rows = append(rows.rows, nil)
			continue
		}
		rows.rows = append(rows.rows, &model.MessageSummary{
			From:    "Sender " + string(rune('A'+i)),
			Subject: "Subject " + string(rune('A'+i)),
			Date:    "2024-01-01 09:00:00 UTC",
		})
	}

	m := New([]string{"from", "subject"})
	m.SetSize(60, 7)
	assert.Equal(t, 3, m.VisibleRows())

	out := m.View(rows, true)

	assert.Contains(t, out, "Messages (2/10)")
	assert.Contains(t, out, "From")
	assert.Contains(t, out, "Sender B")
	assert.Contains(t, out, "Subject C")
	assert.Contains(t, out, Unloaded)
	assert.NotContains(t, out, "Sender A")
	assert.NotContains(t, out, "Sender E")
	assert.Equal(t, 7, lipgloss.Height(out))
}

func TestViewSearchTitle(t *testing.T) {
	m := New(nil)
	m.SetSize(60, 6)

	out := m.View(stubRows{selected: -1, search: true}, false)
	assert.Contains(t, out, "Search Results (0)")
}

func TestFormatCellsTruncates(t *testing.T) {
	got := formatCells([]string{"a very long sender name", "x\ty"}, []int{8, 5})
	assert.Equal(t, "a very… x y  ", got)
	assert.Equal(t, 13, len([]rune(got)))
	assert.False(t, strings.Contains(got, "\t"))
}
