package app

import (
	"bytes"
	"context"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/mailbrowse/internal/browser"
	"github.com/nhle/mailbrowse/internal/logging"
	"github.com/nhle/mailbrowse/internal/model"
	"github.com/nhle/mailbrowse/internal/store"
	"github.com/nhle/mailbrowse/internal/ui/command"
	"github.com/nhle/mailbrowse/tests/testutil"
)

func newModel(t *testing.T, opts Options) (Model, *store.MemoryStore) {
	t.Helper()
	s := store.NewMemoryStore("Root")
	inbox := s.AddFolder(s.RootFolderID(), "Inbox")
	testutil.Fill(s, inbox, 30)
	date := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
	s.AddMessage(inbox, testutil.WithBody(testutil.Summary("Zed", "Team", "Plan", date), "quarterly budget"))

	st := browser.New(context.Background(), s, browser.Options{})
	m := New(context.Background(), st, opts)
	m, _ = sendMsg(t, m, tea.WindowSizeMsg{Width: 120, Height: 40})
	return m, s
}

func sendMsg(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	out, ok := next.(Model)
	require.True(t, ok, "Update must return app.Model")
	return out, cmd
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func typeKeys(t *testing.T, m Model, keys ...tea.KeyMsg) Model {
	t.Helper()
	for _, k := range keys {
		m, _ = sendMsg(t, m, k)
	}
	return m
}

func assertQuit(t *testing.T, cmd tea.Cmd) {
	t.Helper()
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestViewBeforeSizeIsLoading(t *testing.T) {
	s := store.NewMemoryStore("Root")
	m := New(context.Background(), browser.New(context.Background(), s, browser.Options{}), Options{})
	assert.Equal(t, "Loading...", m.View())
}

func TestResizeHydratesVisibleRows(t *testing.T) {
	m, s := newModel(t, Options{})

	rows := m.State().ListHeight()
	assert.Equal(t, 8, rows)
	assert.Equal(t, rows+5, s.TotalOpened())

	view := m.View()
	assert.Contains(t, view, "Message 0")
	assert.Contains(t, view, "[Messages] j/k: navigate")
	assert.Contains(t, view, "All messages 1/31")
}

func TestNavigationKeys(t *testing.T) {
	m, _ := newModel(t, Options{})

	m = typeKeys(t, m, runes("j"), tea.KeyMsg{Type: tea.KeyDown}, runes("k"))
	sel, _ := m.State().Selected()
	assert.Equal(t, 1, sel)
	assert.Equal(t, "Message 1", m.State().Headers().Subject)

	m = typeKeys(t, m, tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, browser.PanePreview, m.State().Pane())
	assert.Contains(t, m.View(), "[Preview] j/k: scroll")

	m = typeKeys(t, m, tea.KeyMsg{Type: tea.KeyTab}, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, browser.PanePreview, m.State().Pane())
}

func TestScrollingLoadsMoreRows(t *testing.T) {
	m, s := newModel(t, Options{})
	before := s.TotalOpened()

	for range 20 {
		m, _ = sendMsg(t, m, runes("j"))
	}

	assert.Greater(t, s.TotalOpened(), before)
	assert.Equal(t, 13, m.State().Offset())
	_, ok := m.State().Row(25)
	assert.True(t, ok)
	_, ok = m.State().Row(26)
	assert.False(t, ok)
	assert.Contains(t, m.View(), "Message 20")
}

func TestSearchRunsOnNextTick(t *testing.T) {
	m, _ := newModel(t, Options{})

	m = typeKeys(t, m, runes("/"), runes("budget"))
	assert.Contains(t, m.View(), "Search: budget")
	assert.Contains(t, m.View(), "[Search] type to search")

	m, _ = sendMsg(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.True(t, m.State().HasPendingSearch())
	assert.Contains(t, m.View(), `Searching for "budget"...`)

	m, cmd := sendMsg(t, m, tickMsg(time.Now()))
	assert.NotNil(t, cmd, "ticker keeps running")
	assert.False(t, m.State().HasPendingSearch())
	assert.Equal(t, 1, m.State().Count())
	assert.Equal(t, "Zed", m.State().Headers().From)
	assert.Contains(t, m.View(), "Found 1 result")
	assert.Contains(t, m.View(), "Search results 1/1")

	// The status message is cleared on the next key press.
	m, _ = sendMsg(t, m, runes("j"))
	assert.Empty(t, m.State().Status())
}

func TestKeysIgnoredWhileSearchPending(t *testing.T) {
	m, _ := newModel(t, Options{})
	m = typeKeys(t, m, runes("/"), runes("zed"), tea.KeyMsg{Type: tea.KeyEnter})

	m, cmd := sendMsg(t, m, runes("q"))

	assert.Nil(t, cmd)
	assert.True(t, m.State().HasPendingSearch())
}

func TestTypingQInSearchDoesNotQuit(t *testing.T) {
	m, _ := newModel(t, Options{})
	m = typeKeys(t, m, runes("/"))

	m, cmd := sendMsg(t, m, runes("q"))
	assert.Nil(t, cmd)
	m, _ = sendMsg(t, m, tea.KeyMsg{Type: tea.KeySpace})
	m, _ = sendMsg(t, m, tea.KeyMsg{Type: tea.KeyBackspace})
	assert.Equal(t, "q", m.State().SearchBuffer())
}

func TestEscClearsSearchThenQuits(t *testing.T) {
	m, _ := newModel(t, Options{})
	m = typeKeys(t, m, runes("/"), runes("budget"), tea.KeyMsg{Type: tea.KeyEnter})
	m, _ = sendMsg(t, m, tickMsg(time.Now()))
	require.True(t, m.State().InSearchResults())

	m, cmd := sendMsg(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Nil(t, cmd)
	assert.False(t, m.State().InSearchResults())
	assert.Equal(t, model.SelectPrompt, m.State().Body())

	_, cmd = sendMsg(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assertQuit(t, cmd)
}

func TestQuitKeys(t *testing.T) {
	m, _ := newModel(t, Options{})

	_, cmd := sendMsg(t, m, runes("q"))
	assertQuit(t, cmd)

	m = typeKeys(t, m, runes("/"))
	_, cmd = sendMsg(t, m, tea.KeyMsg{Type: tea.KeyCtrlC})
	assertQuit(t, cmd)
}

func TestHelpOverlay(t *testing.T) {
	m, _ := newModel(t, Options{})

	m, _ = sendMsg(t, m, runes("?"))
	assert.Equal(t, OverlayHelp, m.Overlay())
	assert.Contains(t, m.View(), "Keyboard Shortcuts")

	m, cmd := sendMsg(t, m, runes("q"))
	assert.Nil(t, cmd, "q closes the overlay instead of quitting")
	assert.Equal(t, OverlayNone, m.Overlay())
}

func TestCommandPalette(t *testing.T) {
	m, _ := newModel(t, Options{})

	m, _ = sendMsg(t, m, runes(":"))
	require.Equal(t, OverlayCommand, m.Overlay())
	assert.Contains(t, m.View(), "Command Palette")

	m = typeKeys(t, m, runes("t"), runes("c"), runes("c"))
	m, cmd := sendMsg(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)

	m, _ = sendMsg(t, m, cmd())
	assert.Equal(t, OverlayNone, m.Overlay())
	assert.Contains(t, m.ColumnKeys(), "cc")
	assert.Contains(t, m.View(), "CC")
}

func TestExecuteCommands(t *testing.T) {
	m, _ := newModel(t, Options{})

	m, _ = sendMsg(t, m, command.CommandMsg(command.ToggleFolders))
	assert.True(t, m.State().ShowFolders())
	assert.Contains(t, m.View(), "Folders")
	assert.Contains(t, m.View(), "Inbox (31)")

	m, _ = sendMsg(t, m, command.CommandMsg(command.ClearSearch))
	assert.Equal(t, "No search results to clear", m.State().Status())

	m, _ = sendMsg(t, m, command.CommandMsg("launch rockets"))
	assert.Equal(t, "Unknown command: launch rockets", m.State().Status())

	m, _ = sendMsg(t, m, command.CommandMsg(command.Help))
	assert.Equal(t, OverlayHelp, m.Overlay())

	_, cmd := sendMsg(t, m, command.CommandMsg(command.Quit))
	assertQuit(t, cmd)
}

func TestCommandPaletteEscCloses(t *testing.T) {
	m, _ := newModel(t, Options{})
	m, _ = sendMsg(t, m, runes(":"))

	m, cmd := sendMsg(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, cmd)
	m, _ = sendMsg(t, m, cmd())

	assert.Equal(t, OverlayNone, m.Overlay())
}

func TestKeyLogRecordsKeys(t *testing.T) {
	var buf bytes.Buffer
	m, _ := newModel(t, Options{KeyLog: logging.NewKeyLog(&buf, "test")})

	m = typeKeys(t, m, runes("j"), tea.KeyMsg{Type: tea.KeyTab}, runes("/"), runes("x"), tea.KeyMsg{Type: tea.KeyEnter})
	_, _ = sendMsg(t, m, tickMsg(time.Now()))

	out := buf.String()
	assert.Contains(t, out, "[KEY] 'j' | pane=Messages msg_idx=0 scroll=0")
	assert.Contains(t, out, "[KEY] Tab | pane=Messages msg_idx=1 scroll=0")
	assert.Contains(t, out, "[KEY] Enter | pane=Preview")
	assert.Contains(t, out, `[SEARCH] start query="x"`)
	assert.Contains(t, out, "[SEARCH] done Found")
}

func TestKeyLabel(t *testing.T) {
	tests := []struct {
		msg  tea.KeyMsg
		want string
	}{
		{runes("a"), "'a'"},
		{tea.KeyMsg{Type: tea.KeySpace}, "' '"},
		{tea.KeyMsg{Type: tea.KeyEnter}, "Enter"},
		{tea.KeyMsg{Type: tea.KeyTab}, "Tab"},
		{tea.KeyMsg{Type: tea.KeyEsc}, "Esc"},
		{tea.KeyMsg{Type: tea.KeyUp}, "Up"},
		{tea.KeyMsg{Type: tea.KeyDown}, "Down"},
		{tea.KeyMsg{Type: tea.KeyCtrlC}, "ctrl+c"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, keyLabel(tt.msg))
		})
	}
}
