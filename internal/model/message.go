package model

import "time"

// Placeholder texts shown when a message or its content cannot be read.
const (
	NoSubject       = "(no subject)"
	UnknownDate     = "unknown"
	UnknownFolder   = "Unknown"
	NoContent       = "No message content available"
	CannotDisplay   = "(This item type cannot be displayed — not a standard email message)"
	SelectPrompt    = "Select a message to view its content"
	NoMessages      = "No messages found"
	NoSearchMatches = "No messages match the search query"
)

// DateLayout is the display format of message dates.
const DateLayout = "2006-01-02 15:04:05 UTC"

// DefaultMessageClass is assigned to messages read from RFC 5322 sources.
const DefaultMessageClass = "IPM.Note"

// MessageRef identifies one message without holding its content.
type MessageRef struct {
	// ID is the store-assigned message identifier.
	ID uint32

	// Folder is the display name of the owning folder.
	Folder string
}

// MessageSummary is the denormalized row shown in the message list.
type MessageSummary struct {
	From    string
	To      string
	CC      string
	Subject string
	Date    string
}

// Placeholder returns the summary used for rows whose message could not be
// opened.
func Placeholder() MessageSummary {
	return MessageSummary{Subject: NoSubject}
}

// Headers is the header block of the preview pane.
type Headers = MessageSummary

// FormatDate renders t the way message rows and headers display dates.
func FormatDate(t time.Time) string {
	return t.UTC().Format(DateLayout)
}
