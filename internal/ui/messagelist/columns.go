package messagelist

import (
	"strings"

	"github.com/nhle/mailbrowse/internal/model"
)

// Column is one message list column.
type Column struct {
	Key     string
	Title   string
	Percent int
	Value   func(model.MessageSummary) string
}

// AllColumns lists every column in display order.
var AllColumns = []Column{
	{Key: "from", Title: "From", Percent: 20, Value: func(s model.MessageSummary) string { return s.From }},
	{Key: "to", Title: "To", Percent: 20, Value: func(s model.MessageSummary) string { return s.To }},
	{Key: "cc", Title: "CC", Percent: 15, Value: func(s model.MessageSummary) string { return s.CC }},
	{Key: "subject", Title: "Subject", Percent: 40, Value: func(s model.MessageSummary) string { return s.Subject }},
	{Key: "date", Title: "Date", Percent: 20, Value: func(s model.MessageSummary) string { return s.Date }},
}

// Columns returns the named columns in display order. Unknown names are
// ignored; when nothing valid remains the defaults are used.
func Columns(keys []string) []Column {
	if cols := pick(keys); len(cols) > 0 {
		return cols
	}
	return pick(model.DefaultColumns)
}

func pick(keys []string) []Column {
	want := make(map[string]bool, len(keys))
	for _, k := range keys {
		want[strings.ToLower(strings.TrimSpace(k))] = true
	}

	var cols []Column
	for _, c := range AllColumns {
		if want[c.Key] {
			cols = append(cols, c)
		}
	}
	return cols
}

// Widths splits total cells between cols by their percentages. The last
// column absorbs rounding.
func Widths(cols []Column, total int) []int {
	widths := make([]int, len(cols))
	if len(cols) == 0 || total <= 0 {
		return widths
	}

	sum := 0
	for _, c := range cols {
		sum += c.Percent
	}
	used := 0
	for i, c := range cols {
		widths[i] = total * c.Percent / sum
		used += widths[i]
	}
	widths[len(widths)-1] += total - used
	return widths
}
