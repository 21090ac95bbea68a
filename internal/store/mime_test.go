package store_test

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/mailbrowse/internal/model"
	"github.com/nhle/mailbrowse/internal/store"
	"github.com/nhle/mailbrowse/tests/testutil"
)

func TestParseMessageHeaders(t *testing.T) {
	m := testutil.Mail{
		From:    "Alice Example <alice@example.com>",
		To:      "Bob <bob@example.com>, carol@example.com",
		Cc:      "Dave <dave@example.com>",
		Subject: "Quarterly report",
		Date:    time.Date(2024, 3, 4, 10, 30, 0, 0, time.UTC),
		Text:    "numbers attached",
	}

	props, err := store.ParseMessage(bytes.NewReader(m.Raw()), []model.PropertyID{
		model.PropSenderName, model.PropDisplayTo, model.PropDisplayCc,
		model.PropSubject, model.PropClientSubmitTime,
	})
	require.NoError(t, err)

	assert.Equal(t, "Alice Example", props.String(model.PropSenderName))
	assert.Equal(t, "Bob; carol@example.com", props.String(model.PropDisplayTo))
	assert.Equal(t, "Dave", props.String(model.PropDisplayCc))
	assert.Equal(t, "Quarterly report", props.String(model.PropSubject))

	date, ok := props.Time(model.PropClientSubmitTime)
	require.True(t, ok)
	assert.Equal(t, "2024-03-04 10:30:00 UTC", model.FormatDate(date))

	_, hasBody := props.Property(model.PropBody)
	assert.False(t, hasBody)
}

func TestParseMessageBodies(t *testing.T) {
	m := testutil.Mail{
		From:        "alice@example.com",
		Subject:     "Both",
		Text:        "plain version",
		HTML:        "<p>html version</p>",
		Attachments: 2,
	}

	props, err := store.ParseMessage(bytes.NewReader(m.Raw()), nil)
	require.NoError(t, err)

	assert.Equal(t, "plain version", strings.TrimSpace(props.String(model.PropBody)))
	html, ok := props[model.PropBodyHTML].Bytes()
	require.True(t, ok)
	assert.Contains(t, string(html), "<p>html version</p>")

	n, ok := props[model.PropAttachCount].Int()
	require.True(t, ok)
	assert.Equal(t, int64(2), n)
}

func TestParseMessageDecodesLegacyCharset(t *testing.T) {
	raw := "From: a@example.com\r\n" +
		"Subject: =?iso-8859-1?q?caf=E9?=\r\n" +
		"Content-Type: text/plain; charset=iso-8859-1\r\n" +
		"\r\n" +
		"d\xe9j\xe0 vu\r\n"

	props, err := store.ParseMessage(strings.NewReader(raw), nil)
	require.NoError(t, err)
	assert.Equal(t, "café", props.String(model.PropSubject))
	assert.Equal(t, "déjà vu", strings.TrimSpace(props.String(model.PropBody)))
}
