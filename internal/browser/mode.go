package browser

import "time"

// Pane identifies the focused pane.
type Pane int

const (
	PaneMessages Pane = iota
	PanePreview
	PaneFolders
)

func (p Pane) String() string {
	switch p {
	case PaneMessages:
		return "Messages"
	case PanePreview:
		return "Preview"
	case PaneFolders:
		return "Folders"
	default:
		return "Unknown"
	}
}

// RowSource identifies the rows shown in the message list.
type RowSource int

const (
	AllMessages RowSource = iota
	SearchResults
)

func (r RowSource) String() string {
	if r == SearchResults {
		return "SearchResults"
	}
	return "AllMessages"
}

// Mode is the input state. It is always one of Browsing, Searching or
// SearchPending.
type Mode interface {
	// Focus is the pane that owns navigation once the mode ends.
	Focus() Pane
}

// Browsing routes navigation keys to Pane.
type Browsing struct {
	Pane Pane
}

// Searching routes every key to the search bar.
type Searching struct {
	Buffer string
	Return Pane
}

// SearchPending holds a confirmed query that runs after the next redraw.
type SearchPending struct {
	Query  string
	Since  time.Time
	Return Pane
}

func (m Browsing) Focus() Pane      { return m.Pane }
func (m Searching) Focus() Pane     { return m.Return }
func (m SearchPending) Focus() Pane { return m.Return }
