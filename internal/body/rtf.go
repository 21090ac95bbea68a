package body

import (
	"bytes"
	"errors"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// ErrNotRTF is returned by RTFToText for input without an RTF header.
var ErrNotRTF = errors.New("not an rtf document")

// skippedDestinations are groups whose text is never part of the body.
var skippedDestinations = map[string]bool{
	"fonttbl":            true,
	"colortbl":           true,
	"stylesheet":         true,
	"info":               true,
	"pict":               true,
	"object":             true,
	"header":             true,
	"headerl":            true,
	"headerr":            true,
	"headerf":            true,
	"footer":             true,
	"footerl":            true,
	"footerr":            true,
	"footerf":            true,
	"fldinst":            true,
	"listtable":          true,
	"listoverridetable":  true,
	"rsidtbl":            true,
	"generator":          true,
	"themedata":          true,
	"colorschememapping": true,
	"datastore":          true,
	"latentstyles":       true,
	"xmlnstbl":           true,
}

// codePages maps \ansicpg values to single-byte decoders.
var codePages = map[int]*charmap.Charmap{
	437:   charmap.CodePage437,
	850:   charmap.CodePage850,
	852:   charmap.CodePage852,
	855:   charmap.CodePage855,
	860:   charmap.CodePage860,
	862:   charmap.CodePage862,
	863:   charmap.CodePage863,
	865:   charmap.CodePage865,
	866:   charmap.CodePage866,
	874:   charmap.Windows874,
	1250:  charmap.Windows1250,
	1251:  charmap.Windows1251,
	1252:  charmap.Windows1252,
	1253:  charmap.Windows1253,
	1254:  charmap.Windows1254,
	1255:  charmap.Windows1255,
	1256:  charmap.Windows1256,
	1257:  charmap.Windows1257,
	1258:  charmap.Windows1258,
	10000: charmap.Macintosh,
}

// rtfGroup is the parser state saved on '{' and restored on '}'.
type rtfGroup struct {
	skip    bool
	htmlrtf bool
	uc      int
}

type rtfParser struct {
	src     []byte
	pos     int
	out     strings.Builder
	cp      *charmap.Charmap
	state   rtfGroup
	stack   []rtfGroup
	pending int // fallback characters still to skip after \u
}

// RTFToText extracts the plain text of an RTF document.
//
// Destinations that carry no body text (font and colour tables, document
// info, pictures, headers and footers, unknown \* groups) are skipped.
// Paragraph and line breaks become newlines and \tab a tab. Hex escapes
// are decoded with the document's \ansicpg code page, Windows-1252 when
// absent or unsupported. \uN emits the code point and skips \ucN fallback
// characters. Text suppressed with \htmlrtf in HTML-encapsulated
// documents is dropped.
func RTFToText(rtf []byte) (string, error) {
	trimmed := bytes.TrimLeft(rtf, " \t\r\n")
	if !bytes.HasPrefix(trimmed, []byte(`{\rtf`)) {
		return "", ErrNotRTF
	}

	p := &rtfParser{
		src:   trimmed,
		cp:    charmap.Windows1252,
		state: rtfGroup{uc: 1},
	}
	p.run()
	return p.out.String(), nil
}

func (p *rtfParser) emitting() bool {
	return !p.state.skip && !p.state.htmlrtf
}

func (p *rtfParser) emitRune(r rune) {
	if p.pending > 0 {
		p.pending--
		return
	}
	if p.emitting() {
		p.out.WriteRune(r)
	}
}

func (p *rtfParser) emitByte(b byte) {
	if b < utf8.RuneSelf {
		p.emitRune(rune(b))
		return
	}
	p.emitRune(p.cp.DecodeByte(b))
}

func (p *rtfParser) run() {
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		p.pos++

		switch c {
		case '{':
			p.stack = append(p.stack, p.state)
			p.pending = 0
		case '}':
			if len(p.stack) == 0 {
				return
			}
			p.state = p.stack[len(p.stack)-1]
			p.stack = p.stack[:len(p.stack)-1]
			p.pending = 0
			if len(p.stack) == 0 {
				return
			}
		case '\\':
			p.control()
		case '\r', '\n':
		default:
			p.emitByte(c)
		}
	}
}

// control handles the text after a backslash.
func (p *rtfParser) control() {
	if p.pos >= len(p.src) {
		return
	}
	c := p.src[p.pos]

	if !isLetter(c) {
		p.pos++
		switch c {
		case '\\', '{', '}':
			p.emitRune(rune(c))
		case '\'':
			if p.pos+2 <= len(p.src) {
				if b, ok := parseHex(p.src[p.pos : p.pos+2]); ok {
					p.emitByte(b)
				}
				p.pos += 2
			}
		case '*':
			p.state.skip = true
		case '~':
			p.emitRune(' ')
		case '_':
			p.emitRune('-')
		case '\r', '\n':
			p.emitRune('\n')
		}
		return
	}

	start := p.pos
	for p.pos < len(p.src) && isLetter(p.src[p.pos]) {
		p.pos++
	}
	word := string(p.src[start:p.pos])

	param, hasParam := 0, false
	neg := false
	if p.pos < len(p.src) && p.src[p.pos] == '-' {
		neg = true
		p.pos++
	}
	for p.pos < len(p.src) && p.src[p.pos] >= '0' && p.src[p.pos] <= '9' {
		param = param*10 + int(p.src[p.pos]-'0')
		hasParam = true
		p.pos++
	}
	if neg {
		param = -param
	}
	if p.pos < len(p.src) && p.src[p.pos] == ' ' {
		p.pos++
	}

	p.word(word, param, hasParam)
}

func (p *rtfParser) word(word string, param int, hasParam bool) {
	if skippedDestinations[word] {
		p.state.skip = true
		return
	}

	switch word {
	case "par", "line", "sect", "page", "row":
		p.emitRune('\n')
	case "tab", "cell":
		p.emitRune('\t')
	case "emdash":
		p.emitRune('—')
	case "endash":
		p.emitRune('–')
	case "lquote":
		p.emitRune('‘')
	case "rquote":
		p.emitRune('’')
	case "ldblquote":
		p.emitRune('“')
	case "rdblquote":
		p.emitRune('”')
	case "bullet":
		p.emitRune('•')
	case "ansicpg":
		if cp, ok := codePages[param]; ok {
			p.cp = cp
		}
	case "uc":
		if hasParam && param >= 0 {
			p.state.uc = param
		}
	case "u":
		if !hasParam {
			return
		}
		if param < 0 {
			param += 0x10000
		}
		p.pending = 0
		p.emitRune(rune(param))
		p.pending = p.state.uc
	case "htmlrtf":
		p.state.htmlrtf = !hasParam || param != 0
	}
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func parseHex(h []byte) (byte, bool) {
	var v byte
	for _, c := range h {
		v <<= 4
		switch {
		case c >= '0' && c <= '9':
			v |= c - '0'
		case c >= 'a' && c <= 'f':
			v |= c - 'a' + 10
		case c >= 'A' && c <= 'F':
			v |= c - 'A' + 10
		default:
			return 0, false
		}
	}
	return v, true
}
