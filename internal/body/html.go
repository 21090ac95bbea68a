package body

import (
	"strconv"
	"strings"
	"unicode/utf8"
)

// blockTags are the tags that end the current output line.
var blockTags = map[string]bool{
	"br": true, "br/": true,
	"p": true, "/p": true,
	"div": true, "/div": true,
	"tr": true, "/tr": true,
	"li": true, "/li": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"/h1": true, "/h2": true, "/h3": true, "/h4": true, "/h5": true, "/h6": true,
}

// maxEntityLen bounds how far an ampersand sequence is scanned for its
// terminating semicolon.
const maxEntityLen = 32

var namedEntities = map[string]string{
	"amp":  "&",
	"lt":   "<",
	"gt":   ">",
	"quot": `"`,
	"apos": "'",
	"nbsp": " ",
}

// HTMLToText strips markup from an HTML body.
//
// Tags are dropped; block tags end the current line; style and script
// contents are suppressed; the common named entities and numeric
// references are decoded. Line breaks inside text collapse to a single
// space. A second pass trims every line, drops leading blank lines and
// collapses runs of blank lines to one, so "<p>A&amp;B</p><p>C</p>"
// becomes "A&B\nC\n".
func HTMLToText(html string) string {
	var out strings.Builder
	out.Grow(len(html))

	var (
		inTag, inStyle, inScript bool
		tag                      strings.Builder
	)

	for i := 0; i < len(html); {
		r, size := utf8.DecodeRuneInString(html[i:])

		switch {
		case inTag:
			i += size
			if r != '>' {
				tag.WriteRune(r)
				continue
			}
			inTag = false
			name := strings.ToLower(strings.TrimSpace(tag.String()))
			switch {
			case strings.HasPrefix(name, "style"):
				inStyle = true
			case strings.HasPrefix(name, "/style"):
				inStyle = false
			case strings.HasPrefix(name, "script"):
				inScript = true
			case strings.HasPrefix(name, "/script"):
				inScript = false
			case !inStyle && !inScript:
				fields := strings.Fields(name)
				if len(fields) > 0 && blockTags[fields[0]] {
					endLine(&out, fields[0] == "br" || fields[0] == "br/")
				}
			}

		case r == '<':
			i += size
			inTag = true
			tag.Reset()

		case inStyle || inScript:
			i += size

		case r == '&':
			text, n := decodeEntity(html[i:])
			out.WriteString(text)
			i += n

		case r == '\n' || r == '\r' || r == '\t':
			i += size
			if last := lastByte(&out); last != 0 && last != ' ' && last != '\n' {
				out.WriteByte(' ')
			}

		default:
			i += size
			out.WriteRune(r)
		}
	}

	return normalizeLines(out.String())
}

// endLine terminates the current output line. Only br forces a newline
// on an empty line; other block tags never open a blank one.
func endLine(out *strings.Builder, force bool) {
	if force {
		out.WriteByte('\n')
		return
	}

	s := out.String()
	trimmed := strings.TrimRight(s, " ")
	if trimmed == "" || strings.HasSuffix(trimmed, "\n") {
		return
	}
	if len(trimmed) != len(s) {
		out.Reset()
		out.WriteString(trimmed)
	}
	out.WriteByte('\n')
}

func lastByte(out *strings.Builder) byte {
	s := out.String()
	if s == "" {
		return 0
	}
	return s[len(s)-1]
}

// decodeEntity decodes the ampersand sequence at the start of s and
// returns the text to emit plus the number of bytes consumed. Sequences
// it does not recognise are emitted unchanged. The name ends at the first
// semicolon; whitespace, markup or another ampersand before it means s
// holds no entity.
func decodeEntity(s string) (string, int) {
	end := -1
	for i := 1; i < len(s) && i <= maxEntityLen; i++ {
		if s[i] == ';' {
			end = i
			break
		}
		if strings.IndexByte(" \t\r\n<>&", s[i]) >= 0 {
			break
		}
	}
	if end < 0 {
		return "&", 1
	}
	raw := s[:end+1]
	name := s[1:end]

	if text, ok := namedEntities[name]; ok {
		return text, len(raw)
	}

	if strings.HasPrefix(name, "#") {
		var (
			n   uint64
			err error
		)
		if strings.HasPrefix(name, "#x") || strings.HasPrefix(name, "#X") {
			n, err = strconv.ParseUint(name[2:], 16, 32)
		} else {
			n, err = strconv.ParseUint(name[1:], 10, 32)
		}
		if err == nil && utf8.ValidRune(rune(n)) {
			return string(rune(n)), len(raw)
		}
	}

	return raw, len(raw)
}

// normalizeLines trims each line, drops leading blank lines and keeps at
// most one blank line between paragraphs.
func normalizeLines(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	blank := 0
	started := false
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			blank++
			continue
		}
		if started && blank > 0 {
			b.WriteByte('\n')
		}
		started = true
		blank = 0
		b.WriteString(line)
		b.WriteByte('\n')
	}
	return b.String()
}
