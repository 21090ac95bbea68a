package browser

import (
	"strings"
	"unicode/utf8"

	"github.com/mattn/go-runewidth"
)

// Wrap splits text into display lines no wider than width cells, breaking
// at spaces where possible. A width below 1 only splits on newlines.
func Wrap(text string, width int) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\t", "    ")
	raw := strings.Split(strings.TrimRight(text, "\n"), "\n")
	if width < 1 {
		return raw
	}

	lines := make([]string, 0, len(raw))
	for _, line := range raw {
		lines = append(lines, wrapLine(line, width)...)
	}
	return lines
}

func wrapLine(line string, width int) []string {
	if runewidth.StringWidth(line) <= width {
		return []string{line}
	}

	var (
		out     []string
		current strings.Builder
		curW    int
	)
	flush := func() {
		out = append(out, strings.TrimRight(current.String(), " "))
		current.Reset()
		curW = 0
	}

	for _, word := range strings.SplitAfter(line, " ") {
		if curW > 0 && curW+runewidth.StringWidth(strings.TrimRight(word, " ")) > width {
			flush()
		}
		for runewidth.StringWidth(strings.TrimRight(word, " ")) > width {
			// Hard-break words longer than a whole line.
			head := runewidth.Truncate(word, width, "")
			if head == "" {
				_, size := utf8.DecodeRuneInString(word)
				head = word[:size]
			}
			current.WriteString(head)
			word = word[len(head):]
			flush()
		}
		current.WriteString(word)
		curW += runewidth.StringWidth(word)
	}
	if current.Len() > 0 || len(out) == 0 {
		flush()
	}
	return out
}
