package store

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/nhle/mailbrowse/internal/credential"
	"github.com/nhle/mailbrowse/internal/model"
)

// Open opens the archive described by cfg. An empty kind is detected from
// the archive path.
func Open(ctx context.Context, cfg *model.AppConfig) (MessageStore, error) {
	kind := cfg.Archive.Kind
	if kind == "" {
		detected, err := DetectKind(cfg.Archive.Path)
		if err != nil {
			return nil, err
		}
		kind = detected
	}

	switch kind {
	case model.KindSQLite:
		return OpenSQLiteArchive(cfg.Archive.Path)
	case model.KindMaildir:
		return NewMaildirStore(cfg.Archive.Path)
	case model.KindMbox:
		return NewMboxStore(cfg.Archive.Path)
	case model.KindIMAP:
		password, err := credential.IMAPPassword(cfg.IMAP.Username, cfg.IMAP.Host)
		if err != nil {
			return nil, fmt.Errorf("loading IMAP password: %w", err)
		}
		return NewIMAPStore(ctx, cfg.IMAP, password)
	default:
		return nil, fmt.Errorf("unknown archive kind %q", kind)
	}
}

// DetectKind guesses the archive kind from what lives at path.
func DetectKind(path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("no archive path given")
	}

	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("opening archive %s: %w", path, err)
	}

	if info.IsDir() {
		if isMaildir(path) {
			return model.KindMaildir, nil
		}
		entries, err := os.ReadDir(path)
		if err != nil {
			return "", fmt.Errorf("reading archive %s: %w", path, err)
		}
		for _, e := range entries {
			if e.IsDir() && isMaildir(filepath.Join(path, e.Name())) {
				return model.KindMaildir, nil
			}
		}
		return model.KindMbox, nil
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".db", ".sqlite", ".sqlite3":
		return model.KindSQLite, nil
	case ".mbox", ".mbx":
		return model.KindMbox, nil
	}

	return sniffFile(path)
}

// sniffFile tells SQLite databases from mbox files by their first bytes.
func sniffFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening archive %s: %w", path, err)
	}
	defer f.Close()

	head, _ := bufio.NewReader(f).Peek(16)
	switch {
	case strings.HasPrefix(string(head), "SQLite format 3"):
		return model.KindSQLite, nil
	case strings.HasPrefix(string(head), "From "):
		return model.KindMbox, nil
	}
	return "", fmt.Errorf("cannot tell the archive format of %s", path)
}
