// Package body turns a message's body properties into display text.
package body

import (
	"bytes"

	"github.com/nhle/mailbrowse/internal/model"
)

// Props are the body properties Text consults, in priority order.
var Props = []model.PropertyID{
	model.PropBody,
	model.PropBodyHTML,
	model.PropRTFCompressed,
}

// Text returns the first body that decodes: the plain text body verbatim,
// then the HTML body converted to text, then the compressed RTF body.
// It reports false when none of them is usable.
func Text(msg model.PropertySet) (string, bool) {
	if v, ok := msg.Property(model.PropBody); ok {
		if s, ok := v.AsString(); ok {
			return s, true
		}
	}

	if v, ok := msg.Property(model.PropBodyHTML); ok {
		if s, ok := v.AsString(); ok {
			return HTMLToText(s), true
		}
		// Some archives store compressed or binary data under the HTML
		// property; only bytes that look like markup are converted.
		if b, ok := v.Bytes(); ok && bytes.HasPrefix(bytes.TrimLeft(b, " \t\r\n\ufeff"), []byte("<")) {
			return HTMLToText(string(b)), true
		}
	}

	if v, ok := msg.Property(model.PropRTFCompressed); ok {
		if b, ok := v.Bytes(); ok {
			if text, ok := rtfText(b); ok {
				return text, true
			}
		}
	}

	return "", false
}

// Resolve returns Text or the no-content placeholder.
func Resolve(msg model.PropertySet) string {
	if text, ok := Text(msg); ok {
		return text
	}
	return model.NoContent
}

func rtfText(compressed []byte) (string, bool) {
	raw, err := Decompress(compressed)
	if err != nil {
		return "", false
	}
	text, err := RTFToText(raw)
	if err != nil {
		return "", false
	}
	return text, true
}
