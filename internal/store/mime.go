package store

import (
	"fmt"
	"io"
	"strings"

	"github.com/emersion/go-message"
	"github.com/emersion/go-message/mail"
	"golang.org/x/net/html/charset"

	"github.com/nhle/mailbrowse/internal/model"
)

func init() {
	// Decode legacy charsets (ISO-8859-x, windows-125x, GBK, ...) instead of
	// failing on them.
	message.CharsetReader = charset.NewReaderLabel
}

// bodyProps are the properties that require reading past the header.
var bodyProps = []model.PropertyID{
	model.PropBody,
	model.PropBodyHTML,
	model.PropAttachCount,
}

// needsBody reports whether any requested property lives in the body.
func needsBody(props []model.PropertyID) bool {
	for _, p := range bodyProps {
		if model.Wants(props, p) {
			return true
		}
	}
	return false
}

// ParseMessage converts an RFC 5322 message into archive properties.
// When props names no body property only the header is read.
func ParseMessage(r io.Reader, props []model.PropertyID) (model.PropertySet, error) {
	if !needsBody(props) {
		e, err := message.Read(r)
		if err != nil && !message.IsUnknownCharset(err) {
			return nil, fmt.Errorf("reading message header: %w", err)
		}
		set := headerProperties(mail.Header{Header: e.Header})
		return set.Restrict(props), nil
	}

	mr, err := mail.CreateReader(r)
	if err != nil && !message.IsUnknownCharset(err) {
		return nil, fmt.Errorf("reading message: %w", err)
	}
	defer mr.Close()

	set := headerProperties(mr.Header)
	textBody, htmlBody, attachments := readParts(mr)
	if textBody != "" {
		set[model.PropBody] = model.StringValue(textBody)
	}
	if htmlBody != nil {
		set[model.PropBodyHTML] = model.BinaryValue(htmlBody)
	}
	set[model.PropAttachCount] = model.IntegerValue(int64(attachments))

	return set.Restrict(props), nil
}

// headerProperties maps the summary header fields onto properties.
func headerProperties(h mail.Header) model.PropertySet {
	set := model.PropertySet{
		model.PropMessageClass: model.StringValue(model.DefaultMessageClass),
	}

	if subject, err := h.Subject(); err == nil && subject != "" {
		set[model.PropSubject] = model.StringValue(subject)
	}
	if from := displayList(h, "From"); from != "" {
		set[model.PropSenderName] = model.StringValue(from)
	}
	if to := displayList(h, "To"); to != "" {
		set[model.PropDisplayTo] = model.StringValue(to)
	}
	if cc := displayList(h, "Cc"); cc != "" {
		set[model.PropDisplayCc] = model.StringValue(cc)
	}
	if date, err := h.Date(); err == nil && !date.IsZero() {
		set[model.PropClientSubmitTime] = model.TimestampValue(date.UTC())
	}

	return set
}

// displayList renders an address header as "; "-separated display names,
// falling back to the bare address when a name is missing.
func displayList(h mail.Header, key string) string {
	addrs, err := h.AddressList(key)
	if err != nil || len(addrs) == 0 {
		raw, _ := h.Text(key)
		return strings.TrimSpace(raw)
	}

	names := make([]string, 0, len(addrs))
	for _, a := range addrs {
		if a.Name != "" {
			names = append(names, a.Name)
		} else {
			names = append(names, a.Address)
		}
	}
	return strings.Join(names, "; ")
}

// readParts walks the MIME tree and returns the first text/plain body, the
// first text/html body and the number of attachments.
func readParts(mr *mail.Reader) (textBody string, htmlBody []byte, attachments int) {
	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			if message.IsUnknownCharset(err) || message.IsUnknownEncoding(err) {
				continue
			}
			break
		}

		switch h := part.Header.(type) {
		case *mail.InlineHeader:
			contentType, _, _ := h.ContentType()
			switch {
			case strings.HasPrefix(contentType, "text/plain") && textBody == "":
				body, readErr := io.ReadAll(part.Body)
				if readErr == nil {
					textBody = string(body)
				}
			case strings.HasPrefix(contentType, "text/html") && htmlBody == nil:
				body, readErr := io.ReadAll(part.Body)
				if readErr == nil {
					htmlBody = body
				}
			}

		case *mail.AttachmentHeader:
			attachments++
		}
	}

	return textBody, htmlBody, attachments
}
