package body

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nhle/mailbrowse/internal/model"
)

func TestTextPriority(t *testing.T) {
	rtf := compressLiterals([]byte(`{\rtf1\ansi from rtf}`))

	tests := []struct {
		name   string
		msg    model.PropertySet
		want   string
		wantOK bool
	}{
		{
			name: "plain text wins over html",
			msg: model.PropertySet{
				model.PropBody:     model.StringValue("plain"),
				model.PropBodyHTML: model.StringValue("<p>html</p>"),
			},
			want: "plain", wantOK: true,
		},
		{
			name:   "plain text verbatim",
			msg:    model.PropertySet{model.PropBody: model.StringValue("  keep <b>this</b>\n")},
			want:   "  keep <b>this</b>\n",
			wantOK: true,
		},
		{
			name:   "html string",
			msg:    model.PropertySet{model.PropBodyHTML: model.StringValue("<p>A&amp;B</p><p>C</p>")},
			want:   "A&B\nC\n",
			wantOK: true,
		},
		{
			name:   "html bytes after whitespace",
			msg:    model.PropertySet{model.PropBodyHTML: model.BinaryValue([]byte("\r\n  <div>hi</div>"))},
			want:   "hi\n",
			wantOK: true,
		},
		{
			name: "binary html without markup falls through to rtf",
			msg: model.PropertySet{
				model.PropBodyHTML:      model.BinaryValue([]byte{0x1f, 0x8b, 0x08}),
				model.PropRTFCompressed: model.BinaryValue(rtf),
			},
			want: "from rtf", wantOK: true,
		},
		{
			name:   "binary html without markup and nothing else",
			msg:    model.PropertySet{model.PropBodyHTML: model.BinaryValue([]byte("not html"))},
			wantOK: false,
		},
		{
			name:   "rtf only",
			msg:    model.PropertySet{model.PropRTFCompressed: model.BinaryValue(rtf)},
			want:   "from rtf",
			wantOK: true,
		},
		{
			name:   "corrupt rtf",
			msg:    model.PropertySet{model.PropRTFCompressed: model.BinaryValue([]byte("garbage"))},
			wantOK: false,
		},
		{
			name:   "body with wrong kind is ignored",
			msg:    model.PropertySet{model.PropBody: model.IntegerValue(7)},
			wantOK: false,
		},
		{
			name:   "no body properties",
			msg:    model.PropertySet{model.PropSubject: model.StringValue("s")},
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Text(tt.msg)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolvePlaceholder(t *testing.T) {
	assert.Equal(t, model.NoContent, Resolve(model.PropertySet{}))
	assert.Equal(t, "x", Resolve(model.PropertySet{model.PropBody: model.StringValue("x")}))
}
