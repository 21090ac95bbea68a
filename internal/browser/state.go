// Package browser holds the view state of the message browser: row
// source, selection, pane focus and the search state machine. It has no
// terminal dependency; the renderer drives it and draws what it exposes.
package browser

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/nhle/mailbrowse/internal/body"
	"github.com/nhle/mailbrowse/internal/index"
	"github.com/nhle/mailbrowse/internal/model"
	"github.com/nhle/mailbrowse/internal/rowcache"
	"github.com/nhle/mailbrowse/internal/search"
	"github.com/nhle/mailbrowse/internal/store"
)

// DefaultListHeight is used until the first Resize.
const DefaultListHeight = 20

// Options configures a State.
type Options struct {
	// ShowFolders enables the Folders pane and builds the folder outline.
	ShowFolders bool

	// Clock returns the current time. Defaults to time.Now.
	Clock func() time.Time
}

// State is the browser view state.
type State struct {
	store  store.MessageStore
	rootID uint32
	engine *search.Engine
	clock  func() time.Time

	all          []model.MessageRef
	folders      []index.FolderEntry
	showFolders  bool
	folderCursor int

	source   RowSource
	rows     *rowcache.Cache
	selected int
	offset   int

	listHeight    int
	previewHeight int
	previewWidth  int

	mode  Mode
	query string

	headers model.Headers
	body    string
	lines   []string
	scroll  int
	status  string
}

// New indexes the archive under the store's root folder and returns the
// initial state: AllMessages, Messages pane, first row selected.
func New(ctx context.Context, s store.MessageStore, opts Options) *State {
	clock := opts.Clock
	if clock == nil {
		clock = time.Now
	}

	root := s.RootFolderID()
	st := &State{
		store:       s,
		rootID:      root,
		engine:      search.New(s),
		clock:       clock,
		all:         index.Build(ctx, s, root),
		showFolders: opts.ShowFolders,
		listHeight:  DefaultListHeight,
		mode:        Browsing{Pane: PaneMessages},
	}
	if opts.ShowFolders {
		st.folders = index.Outline(ctx, s, root)
	}
	st.resetRows()

	zerolog.Ctx(ctx).Debug().
		Int("messages", len(st.all)).
		Int("folders", len(st.folders)).
		Msg("archive indexed")
	return st
}

// resetRows switches to AllMessages with a fresh cache.
func (s *State) resetRows() {
	s.source = AllMessages
	s.rows = rowcache.New(s.store, s.all)
	s.offset = 0
	s.selected = -1
	if len(s.all) > 0 {
		s.selected = 0
	}
	s.headers = model.Headers{}
	if len(s.all) == 0 {
		s.setBody(model.NoMessages)
	} else {
		s.setBody(model.SelectPrompt)
	}
}

func (s *State) setBody(text string) {
	s.body = text
	s.scroll = 0
	s.lines = Wrap(text, s.previewWidth)
}

// EnsureLoaded hydrates the rows around the list offset.
func (s *State) EnsureLoaded(ctx context.Context) {
	s.rows.EnsureLoaded(ctx, s.offset, s.listHeight)
}

// Resize records the pane sizes. Heights count visible rows or lines;
// width is the preview text width in cells.
func (s *State) Resize(listHeight, previewHeight, previewWidth int) {
	s.listHeight = max(listHeight, 0)
	s.previewHeight = max(previewHeight, 0)
	if previewWidth != s.previewWidth {
		s.previewWidth = previewWidth
		s.lines = Wrap(s.body, previewWidth)
	}
	s.follow()
	s.scroll = min(s.scroll, s.maxScroll())
}

// follow moves the list offset so the selection stays visible.
func (s *State) follow() {
	if s.selected < 0 {
		s.offset = 0
		return
	}
	height := max(s.listHeight, 1)
	if s.selected < s.offset {
		s.offset = s.selected
	}
	if s.selected >= s.offset+height {
		s.offset = s.selected - height + 1
	}
}

func (s *State) maxScroll() int {
	return max(0, len(s.lines)-s.previewHeight)
}

// MoveDown moves the selection, preview scroll or folder cursor by one.
func (s *State) MoveDown(ctx context.Context) {
	if _, ok := s.mode.(Browsing); !ok {
		return
	}
	switch s.Pane() {
	case PaneMessages:
		n := s.rows.Len()
		if n == 0 {
			return
		}
		next := 0
		if s.selected >= 0 {
			next = min(s.selected+1, n-1)
		}
		s.SelectMessage(ctx, next)
	case PanePreview:
		s.scroll = min(s.scroll+1, s.maxScroll())
	case PaneFolders:
		if len(s.folders) > 0 {
			s.folderCursor = min(s.folderCursor+1, len(s.folders)-1)
		}
	}
}

// MoveUp moves the selection, preview scroll or folder cursor back by one.
func (s *State) MoveUp(ctx context.Context) {
	if _, ok := s.mode.(Browsing); !ok {
		return
	}
	switch s.Pane() {
	case PaneMessages:
		if s.selected > 0 {
			s.SelectMessage(ctx, s.selected-1)
		}
	case PanePreview:
		s.scroll = max(s.scroll-1, 0)
	case PaneFolders:
		s.folderCursor = max(s.folderCursor-1, 0)
	}
}

// TogglePane cycles focus Messages, Preview, Folders (when enabled).
func (s *State) TogglePane() {
	b, ok := s.mode.(Browsing)
	if !ok {
		return
	}
	switch b.Pane {
	case PaneMessages:
		b.Pane = PanePreview
	case PanePreview:
		if s.showFolders {
			b.Pane = PaneFolders
		} else {
			b.Pane = PaneMessages
		}
	default:
		b.Pane = PaneMessages
	}
	s.mode = b
}

// Open acts on the focused pane. In Messages it previews the selected row
// and focuses Preview; in Folders it jumps to the folder's first message.
func (s *State) Open(ctx context.Context) {
	b, ok := s.mode.(Browsing)
	if !ok {
		return
	}
	switch b.Pane {
	case PaneMessages:
		if s.selected < 0 {
			return
		}
		s.SelectMessage(ctx, s.selected)
		s.mode = Browsing{Pane: PanePreview}
	case PaneFolders:
		s.openFolder(ctx)
	}
}

func (s *State) openFolder(ctx context.Context) {
	if s.folderCursor >= len(s.folders) {
		return
	}
	f := s.folders[s.folderCursor]
	if f.Count == 0 {
		s.status = fmt.Sprintf("Folder %s is empty", f.Path)
		return
	}
	if s.source == SearchResults {
		s.resetRows()
		s.query = ""
	}
	s.SelectMessage(ctx, f.Start)
	s.mode = Browsing{Pane: PaneMessages}
}

// BeginSearch activates the search bar, keeping the last query text.
func (s *State) BeginSearch() {
	b, ok := s.mode.(Browsing)
	if !ok {
		return
	}
	s.mode = Searching{Buffer: s.query, Return: b.Pane}
}

// AppendSearch adds r to the search buffer.
func (s *State) AppendSearch(r rune) {
	m, ok := s.mode.(Searching)
	if !ok {
		return
	}
	m.Buffer += string(r)
	s.mode = m
}

// Backspace removes the last character of the search buffer.
func (s *State) Backspace() {
	m, ok := s.mode.(Searching)
	if !ok || m.Buffer == "" {
		return
	}
	runes := []rune(m.Buffer)
	m.Buffer = string(runes[:len(runes)-1])
	s.mode = m
}

// ConfirmSearch closes the search bar. A non-empty query is scheduled to
// run after the next redraw; an empty one restores AllMessages.
func (s *State) ConfirmSearch() {
	m, ok := s.mode.(Searching)
	if !ok {
		return
	}
	s.query = m.Buffer
	q := strings.TrimSpace(m.Buffer)
	if q == "" {
		s.restore()
		s.mode = Browsing{Pane: m.Return}
		return
	}
	s.mode = SearchPending{Query: q, Since: s.clock(), Return: m.Return}
	s.status = fmt.Sprintf("Searching for %q...", q)
}

// CancelSearch closes the search bar without running a query. An empty
// buffer restores AllMessages, the same as confirming it.
func (s *State) CancelSearch() {
	m, ok := s.mode.(Searching)
	if !ok {
		return
	}
	s.query = m.Buffer
	s.mode = Browsing{Pane: m.Return}
	if strings.TrimSpace(m.Buffer) == "" {
		s.restore()
	}
}

// ClearSearch restores AllMessages when search results are shown and
// reports whether it did. Browsing callers treat false as quit.
func (s *State) ClearSearch() bool {
	if s.source != SearchResults {
		return false
	}
	s.restore()
	return true
}

func (s *State) restore() {
	s.resetRows()
	s.query = ""
}

// HasPendingSearch reports whether a confirmed query is waiting to run.
func (s *State) HasPendingSearch() bool {
	_, ok := s.mode.(SearchPending)
	return ok
}

// RunPendingSearch runs the pending query to completion and shows its
// results. It does nothing when no query is pending.
func (s *State) RunPendingSearch(ctx context.Context) {
	p, ok := s.mode.(SearchPending)
	if !ok {
		return
	}
	logger := zerolog.Ctx(ctx)
	logger.Debug().Str("query", p.Query).Msg("search started")

	res, err := s.engine.Search(ctx, s.rootID, p.Query)
	if err != nil {
		logger.Warn().Err(err).Str("query", p.Query).Msg("search aborted")
		s.mode = Browsing{Pane: p.Return}
		s.status = fmt.Sprintf("Search failed: %v", err)
		return
	}
	elapsed := int(s.clock().Sub(p.Since).Seconds())

	s.source = SearchResults
	s.rows = rowcache.NewHydrated(s.store, res.Refs, res.Rows)
	s.offset = 0
	s.mode = Browsing{Pane: PaneMessages}
	if res.Len() > 0 {
		s.SelectMessage(ctx, 0)
	} else {
		s.selected = -1
		s.headers = model.Headers{}
		s.setBody(model.NoSearchMatches)
	}

	suffix := "s"
	if res.Len() == 1 {
		suffix = ""
	}
	s.status = fmt.Sprintf("Found %d result%s (%ds)", res.Len(), suffix, elapsed)
	logger.Debug().Str("query", p.Query).Int("results", res.Len()).Msg("search finished")
}

// selectProps are opened for the preview pane.
var selectProps = append(append([]model.PropertyID{}, rowcache.SummaryProps...), body.Props...)

// SelectMessage selects row i and loads its preview.
func (s *State) SelectMessage(ctx context.Context, i int) {
	if i < 0 || i >= s.rows.Len() {
		return
	}
	s.selected = i
	s.follow()

	ref := s.rows.Ref(i)
	msg, err := s.store.OpenMessage(ctx, ref.ID, selectProps)
	if err != nil {
		zerolog.Ctx(ctx).Debug().Err(err).Uint32("message_id", ref.ID).Msg("preview unavailable")
		s.headers = model.Headers{}
		s.setBody(model.CannotDisplay)
		return
	}
	s.headers = rowcache.DecodeSummary(msg)
	s.setBody(body.Resolve(msg))
}

// SetStatus shows a transient message in the status bar.
func (s *State) SetStatus(msg string) {
	s.status = msg
}

// ClearStatus removes the transient message.
func (s *State) ClearStatus() {
	s.status = ""
}

// Mode returns the input mode.
func (s *State) Mode() Mode {
	return s.mode
}

// Pane returns the focused pane.
func (s *State) Pane() Pane {
	return s.mode.Focus()
}

// RowSource returns the source of the message list.
func (s *State) RowSource() RowSource {
	return s.source
}

// InSearchResults reports whether the list shows search results.
func (s *State) InSearchResults() bool {
	return s.source == SearchResults
}

// SearchActive reports whether the search bar owns the keyboard.
func (s *State) SearchActive() bool {
	_, ok := s.mode.(Searching)
	return ok
}

// SearchBuffer returns the search bar text.
func (s *State) SearchBuffer() string {
	if m, ok := s.mode.(Searching); ok {
		return m.Buffer
	}
	return s.query
}

// Count returns the number of rows in the list.
func (s *State) Count() int {
	return s.rows.Len()
}

// Total returns the number of messages in the archive.
func (s *State) Total() int {
	return len(s.all)
}

// Row returns row i and whether it is hydrated.
func (s *State) Row(i int) (model.MessageSummary, bool) {
	return s.rows.Row(i)
}

// Ref returns the reference of row i.
func (s *State) Ref(i int) model.MessageRef {
	return s.rows.Ref(i)
}

// Selected returns the selected row, if any.
func (s *State) Selected() (int, bool) {
	return s.selected, s.selected >= 0
}

// Offset returns the first visible row.
func (s *State) Offset() int {
	return s.offset
}

// ListHeight returns the number of visible list rows.
func (s *State) ListHeight() int {
	return s.listHeight
}

// Headers returns the preview header block.
func (s *State) Headers() model.Headers {
	return s.headers
}

// Body returns the preview text.
func (s *State) Body() string {
	return s.body
}

// PreviewLines returns the preview text wrapped to the preview width.
func (s *State) PreviewLines() []string {
	return s.lines
}

// PreviewScroll returns the first visible preview line.
func (s *State) PreviewScroll() int {
	return s.scroll
}

// Status returns the transient status message.
func (s *State) Status() string {
	return s.status
}

// ShowFolders reports whether the Folders pane is enabled.
func (s *State) ShowFolders() bool {
	return s.showFolders
}

// SetShowFolders enables or disables the Folders pane. The outline is
// built on first enable.
func (s *State) SetShowFolders(ctx context.Context, show bool) {
	s.showFolders = show
	if show && s.folders == nil {
		s.folders = index.Outline(ctx, s.store, s.rootID)
	}
	if !show && s.Pane() == PaneFolders {
		s.mode = Browsing{Pane: PaneMessages}
	}
}

// Folders returns the folder outline, empty unless the pane is enabled.
func (s *State) Folders() []index.FolderEntry {
	return s.folders
}

// FolderCursor returns the highlighted folder in the Folders pane.
func (s *State) FolderCursor() int {
	return s.folderCursor
}
