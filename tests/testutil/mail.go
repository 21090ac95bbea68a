package testutil

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/emersion/go-maildir"
	"github.com/emersion/go-mbox"
)

// Mail describes an RFC 5322 message used as a fixture.
type Mail struct {
	From    string
	To      string
	Cc      string
	Subject string
	Date    time.Time
	Text    string
	HTML    string

	// Attachments adds that many small attachments.
	Attachments int
}

// Raw renders the message. Messages with more than one part are sent as
// multipart/mixed.
func (m Mail) Raw() []byte {
	var b bytes.Buffer
	header := func(k, v string) {
		if v != "" {
			fmt.Fprintf(&b, "%s: %s\r\n", k, v)
		}
	}
	header("From", m.From)
	header("To", m.To)
	header("Cc", m.Cc)
	header("Subject", m.Subject)
	if !m.Date.IsZero() {
		header("Date", m.Date.Format(time.RFC1123Z))
	}
	header("MIME-Version", "1.0")

	var parts []string
	if m.Text != "" {
		parts = append(parts, "Content-Type: text/plain; charset=utf-8\r\n\r\n"+m.Text)
	}
	if m.HTML != "" {
		parts = append(parts, "Content-Type: text/html; charset=utf-8\r\n\r\n"+m.HTML)
	}
	for i := range m.Attachments {
		parts = append(parts, fmt.Sprintf(
			"Content-Type: application/octet-stream\r\n"+
				"Content-Disposition: attachment; filename=\"file%d.bin\"\r\n\r\nDATA", i))
	}

	switch len(parts) {
	case 0:
		b.WriteString("Content-Type: text/plain\r\n\r\n")
	case 1:
		b.WriteString(parts[0])
		b.WriteString("\r\n")
	default:
		const boundary = "fixture-boundary"
		fmt.Fprintf(&b, "Content-Type: multipart/mixed; boundary=%q\r\n\r\n", boundary)
		for _, p := range parts {
			fmt.Fprintf(&b, "--%s\r\n%s\r\n", boundary, p)
		}
		fmt.Fprintf(&b, "--%s--\r\n", boundary)
	}
	return b.Bytes()
}

// WriteMaildir creates a maildir at dir and delivers msgs into cur/.
func WriteMaildir(t *testing.T, dir string, msgs ...Mail) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(dir), 0o755); err != nil {
		t.Fatalf("creating %s: %v", filepath.Dir(dir), err)
	}
	md := maildir.Dir(dir)
	if err := md.Init(); err != nil {
		t.Fatalf("creating maildir %s: %v", dir, err)
	}
	for _, m := range msgs {
		_, w, err := md.Create([]maildir.Flag{maildir.FlagSeen})
		if err != nil {
			t.Fatalf("creating message in %s: %v", dir, err)
		}
		if _, err := w.Write(m.Raw()); err != nil {
			t.Fatalf("writing message in %s: %v", dir, err)
		}
		if err := w.Close(); err != nil {
			t.Fatalf("closing message in %s: %v", dir, err)
		}
	}
}

// WriteMbox writes msgs to an mbox file at path, creating parent
// directories as needed.
func WriteMbox(t *testing.T, path string, msgs ...Mail) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("creating %s: %v", filepath.Dir(path), err)
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("creating mbox %s: %v", path, err)
	}
	defer f.Close()

	mw := mbox.NewWriter(f)
	for _, m := range msgs {
		from := m.From
		if i := strings.LastIndex(from, "<"); i >= 0 {
			from = strings.Trim(from[i:], "<>")
		}
		if from == "" {
			from = "nobody@example.com"
		}
		w, err := mw.CreateMessage(from, m.Date)
		if err != nil {
			t.Fatalf("creating mbox message: %v", err)
		}
		if _, err := w.Write(m.Raw()); err != nil {
			t.Fatalf("writing mbox message: %v", err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("closing mbox %s: %v", path, err)
	}
}
