package body

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRTFToText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", `{\rtf1\ansi\ansicpg1252\pard hello world}`, "hello world"},
		{"paragraphs", `{\rtf1 first\par second\line third}`, "first\nsecond\nthird"},
		{"tab", `{\rtf1 a\tab b}`, "a\tb"},
		{"font table skipped", `{\rtf1{\fonttbl{\f0 Arial;}}{\colortbl;\red0\green0\blue0;}body}`, "body"},
		{"ignorable destination", `{\rtf1{\*\generator Riched20;}text}`, "text"},
		{"escapes", `{\rtf1 \{braces\} and \\slash}`, "{braces} and \\slash"},
		{"hex windows-1252", `{\rtf1\ansi\ansicpg1252 caf\'e9}`, "café"},
		{"hex windows-1251", `{\rtf1\ansi\ansicpg1251 \'cf\'f0\'e8}`, "При"},
		{"unicode with fallback", `{\rtf1\uc1\u8364?uro}`, "€uro"},
		{"negative unicode", `{\rtf1\u-3913?}`, "\uf0b7"},
		{"uc0", `{\rtf1\uc0\u955 x}`, "λx"},
		{"html encapsulated", `{\rtf1\fromhtml1{\*\htmltag64 <p>}\htmlrtf {\htmlrtf0 shown}hidden\htmlrtf0 after}`, "shownafter"},
		{"quotes", `{\rtf1\ldblquote hi\rdblquote}`, "“hi”"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := RTFToText([]byte(tt.in))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRTFToTextRejectsNonRTF(t *testing.T) {
	_, err := RTFToText([]byte("plain text"))
	assert.ErrorIs(t, err, ErrNotRTF)
}
