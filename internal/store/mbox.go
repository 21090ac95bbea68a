package store

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/emersion/go-mbox"

	"github.com/nhle/mailbrowse/internal/model"
)

// mboxFolder is a folder node plus the mbox file backing it, if any.
type mboxFolder struct {
	Folder
	path   string
	loaded bool
}

// mboxMessage locates a message by folder and position in its file.
type mboxMessage struct {
	folder uint32
	index  int
}

// MboxStore implements MessageStore over an mbox file or a directory of
// mbox files laid out the way Thunderbird stores local folders
// ("Inbox" plus "Inbox.sbd/" for its subfolders).
//
// Raw messages of one folder are kept in memory at a time; browsing and
// search both walk folder by folder, so a single cached folder keeps reads
// linear.
type MboxStore struct {
	mu       sync.Mutex
	root     uint32
	folders  map[uint32]*mboxFolder
	messages map[uint32]mboxMessage
	nextDir  uint32
	nextMsg  uint32

	cachedFolder uint32
	cached       [][]byte
}

// NewMboxStore opens path, which is either a single mbox file or a
// directory tree of mbox files.
func NewMboxStore(path string) (*MboxStore, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("opening mbox %s: %w", path, err)
	}

	s := &MboxStore{
		folders:  make(map[uint32]*mboxFolder),
		messages: make(map[uint32]mboxMessage),
		nextDir:  1,
		nextMsg:  1,
	}

	if info.IsDir() {
		s.root = s.scanDir(path, filepath.Base(path), "").ID
	} else {
		s.root = s.addFolder(mboxName(path), path).ID
	}
	return s, nil
}

// mboxName strips the conventional extension from a mailbox file name.
func mboxName(path string) string {
	return strings.TrimSuffix(filepath.Base(path), ".mbox")
}

// isMboxFile filters out index and metadata files next to mailboxes.
func isMboxFile(name string) bool {
	ext := filepath.Ext(name)
	return !strings.HasPrefix(name, ".") && (ext == "" || ext == ".mbox")
}

func (s *MboxStore) addFolder(name, path string) *mboxFolder {
	id := s.nextDir
	s.nextDir++
	f := &mboxFolder{Folder: Folder{ID: id, Name: name}, path: path}
	s.folders[id] = f
	return f
}

// scanDir creates a folder for dir whose children are its mailboxes and
// subdirectories. file, when set, is the mailbox that owns dir as its
// ".sbd" subfolder directory.
func (s *MboxStore) scanDir(dir, name, file string) *mboxFolder {
	f := s.addFolder(name, file)

	entries, err := os.ReadDir(dir)
	if err != nil {
		return f
	}

	sbd := make(map[string]string)
	for _, e := range entries {
		if e.IsDir() && strings.HasSuffix(e.Name(), ".sbd") {
			sbd[strings.TrimSuffix(e.Name(), ".sbd")] = filepath.Join(dir, e.Name())
		}
	}

	for _, e := range entries {
		n := e.Name()
		full := filepath.Join(dir, n)
		switch {
		case e.IsDir() && strings.HasSuffix(n, ".sbd"):
			base := strings.TrimSuffix(n, ".sbd")
			if _, err := os.Stat(filepath.Join(dir, base)); err == nil {
				continue // scanned with its mailbox file
			}
			f.Children = append(f.Children, s.scanDir(full, base, "").ID)
		case e.IsDir():
			if strings.HasPrefix(n, ".") || strings.HasSuffix(n, ".mozmsgs") {
				continue
			}
			f.Children = append(f.Children, s.scanDir(full, n, "").ID)
		case isMboxFile(n):
			if sub, ok := sbd[n]; ok {
				f.Children = append(f.Children, s.scanDir(sub, mboxName(n), full).ID)
				continue
			}
			f.Children = append(f.Children, s.addFolder(mboxName(n), full).ID)
		}
	}
	return f
}

// RootFolderID returns the root folder identifier.
func (s *MboxStore) RootFolderID() uint32 {
	return s.root
}

// OpenFolder reads the folder's mailbox once to number its messages.
func (s *MboxStore) OpenFolder(_ context.Context, id uint32) (*Folder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, ok := s.folders[id]
	if !ok {
		return nil, fmt.Errorf("opening folder %d: %w", id, ErrFolderNotFound)
	}

	if !f.loaded && f.path != "" {
		raw, err := readMbox(f.path)
		if err != nil {
			return nil, err
		}
		for i := range raw {
			msgID := s.nextMsg
			s.nextMsg++
			s.messages[msgID] = mboxMessage{folder: id, index: i}
			f.Contents = append(f.Contents, msgID)
		}
		s.cachedFolder, s.cached = id, raw
	}
	f.loaded = true

	cp := f.Folder
	cp.Contents = append([]uint32(nil), f.Contents...)
	cp.Children = append([]uint32(nil), f.Children...)
	return &cp, nil
}

// OpenMessage parses one message of a previously opened folder.
func (s *MboxStore) OpenMessage(
	_ context.Context, id uint32, props []model.PropertyID,
) (model.PropertySet, error) {
	s.mu.Lock()
	loc, ok := s.messages[id]
	if !ok {
		s.mu.Unlock()
		return nil, fmt.Errorf("opening message %d: %w", id, ErrMessageNotFound)
	}

	if s.cachedFolder != loc.folder || s.cached == nil {
		raw, err := readMbox(s.folders[loc.folder].path)
		if err != nil {
			s.mu.Unlock()
			return nil, err
		}
		s.cachedFolder, s.cached = loc.folder, raw
	}
	if loc.index >= len(s.cached) {
		s.mu.Unlock()
		return nil, fmt.Errorf("opening message %d: %w", id, ErrMessageNotFound)
	}
	raw := s.cached[loc.index]
	s.mu.Unlock()

	return ParseMessage(bytes.NewReader(raw), props)
}

// Close drops the cached folder.
func (s *MboxStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cached = nil
	return nil
}

// readMbox returns the raw bytes of every message in the mailbox file.
func readMbox(path string) ([][]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening mailbox %s: %w", path, err)
	}
	defer f.Close()

	var messages [][]byte
	mr := mbox.NewReader(f)
	for {
		msg, err := mr.NextMessage()
		if errors.Is(err, io.EOF) {
			break
		} else if err != nil {
			return nil, fmt.Errorf("reading mailbox %s: %w", path, err)
		}

		content, err := io.ReadAll(msg)
		if err != nil {
			return nil, fmt.Errorf("reading mailbox %s: %w", path, err)
		}
		messages = append(messages, content)
	}
	return messages, nil
}
