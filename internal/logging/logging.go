// Package logging sets up the file-backed loggers. Nothing is written to
// the terminal: the TUI owns it for the whole session.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// DefaultFile returns ~/.config/mailbrowse/mailbrowse.log.
func DefaultFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "mailbrowse.log"
	}
	return filepath.Join(home, ".config", "mailbrowse", "mailbrowse.log")
}

// ParseLevel accepts trace, debug, info, warn and error. An empty level
// means info.
func ParseLevel(level string) (zerolog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace":
		return zerolog.TraceLevel, nil
	case "debug":
		return zerolog.DebugLevel, nil
	case "", "info":
		return zerolog.InfoLevel, nil
	case "warn", "warning":
		return zerolog.WarnLevel, nil
	case "error":
		return zerolog.ErrorLevel, nil
	default:
		return zerolog.InfoLevel, fmt.Errorf("unknown log level %q", level)
	}
}

// Session is the set of loggers of one run.
type Session struct {
	ID     string
	Logger zerolog.Logger

	files []io.Closer
}

// New opens path for appending and returns a session logging JSON lines
// at level, each tagged with a fresh session id. An empty path discards
// everything.
func New(path, level string) (*Session, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return nil, err
	}

	s := &Session{ID: uuid.NewString()}
	if path == "" {
		s.Logger = zerolog.Nop()
		return s, nil
	}

	f, err := openAppend(path)
	if err != nil {
		return nil, err
	}
	s.files = append(s.files, f)
	s.Logger = zerolog.New(f).Level(lvl).With().
		Timestamp().
		Str("session", s.ID).
		Logger()
	return s, nil
}

// Nop returns a session that discards everything.
func Nop() *Session {
	return &Session{ID: uuid.NewString(), Logger: zerolog.Nop()}
}

func openAppend(path string) (*os.File, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating log directory %s: %w", dir, err)
		}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("opening log file %s: %w", path, err)
	}
	return f, nil
}

// Close closes every file opened by the session.
func (s *Session) Close() error {
	var first error
	for _, f := range s.files {
		if err := f.Close(); err != nil && first == nil {
			first = err
		}
	}
	s.files = nil
	return first
}

// KeyLog records key presses and search events in a human-readable file
// for reproducing navigation bugs.
type KeyLog struct {
	logger zerolog.Logger
}

// OpenKeyLog opens the debug event log at path and attaches it to the
// session so Close releases it.
func (s *Session) OpenKeyLog(path string) (*KeyLog, error) {
	f, err := openAppend(path)
	if err != nil {
		return nil, err
	}
	s.files = append(s.files, f)
	return NewKeyLog(f, s.ID), nil
}

// NewKeyLog writes plain text lines to w.
func NewKeyLog(w io.Writer, session string) *KeyLog {
	out := zerolog.ConsoleWriter{
		Out:        w,
		NoColor:    true,
		TimeFormat: time.RFC3339,
		PartsOrder: []string{zerolog.TimestampFieldName, zerolog.MessageFieldName},
	}
	return &KeyLog{
		logger: zerolog.New(out).With().Timestamp().Str("session", session).Logger(),
	}
}

// Key records one key press together with the view state it was applied
// to.
func (k *KeyLog) Key(key, pane string, selected int, hasSelection bool, scroll int) {
	if k == nil {
		return
	}
	k.logger.Log().Msg(KeyLine(key, pane, selected, hasSelection, scroll))
}

// Event records a free-form line such as a search starting or finishing.
func (k *KeyLog) Event(format string, args ...any) {
	if k == nil {
		return
	}
	k.logger.Log().Msgf(format, args...)
}

// KeyLine formats a key press as
// "[KEY] <key> | pane=<pane> msg_idx=<n|none> scroll=<n>".
func KeyLine(key, pane string, selected int, hasSelection bool, scroll int) string {
	idx := "none"
	if hasSelection {
		idx = fmt.Sprint(selected)
	}
	return fmt.Sprintf("[KEY] %s | pane=%s msg_idx=%s scroll=%d", key, pane, idx, scroll)
}
