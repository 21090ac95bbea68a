package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/emersion/go-maildir"

	"github.com/nhle/mailbrowse/internal/model"
)

// maildirFolder is a folder node plus the maildir backing it, if any.
type maildirFolder struct {
	Folder
	dir    maildir.Dir
	hasDir bool
	loaded bool
}

// maildirMessage locates one message file.
type maildirMessage struct {
	dir maildir.Dir
	key string
}

// MaildirStore implements MessageStore over a Maildir or Maildir++ tree.
// Message identifiers are assigned the first time a folder is opened.
type MaildirStore struct {
	mu       sync.Mutex
	root     uint32
	folders  map[uint32]*maildirFolder
	messages map[uint32]maildirMessage
	nextDir  uint32
	nextMsg  uint32
}

// NewMaildirStore scans the folder layout under root. Message files are
// not read until their folder is opened.
func NewMaildirStore(root string) (*MaildirStore, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("opening maildir %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("opening maildir %s: not a directory", root)
	}

	s := &MaildirStore{
		folders:  make(map[uint32]*maildirFolder),
		messages: make(map[uint32]maildirMessage),
		nextDir:  1,
		nextMsg:  1,
	}

	if isMaildir(root) && hasDotFolders(root) {
		s.root = s.scanMaildirPlusPlus(root)
	} else {
		id, ok := s.scanNested(root, filepath.Base(root))
		if !ok {
			return nil, fmt.Errorf("opening maildir %s: no maildir folders found", root)
		}
		s.root = id
	}

	return s, nil
}

// isMaildir reports whether path holds the cur/new/tmp triple.
func isMaildir(path string) bool {
	for _, sub := range []string{"cur", "new", "tmp"} {
		info, err := os.Stat(filepath.Join(path, sub))
		if err != nil || !info.IsDir() {
			return false
		}
	}
	return true
}

func hasDotFolders(path string) bool {
	entries, err := os.ReadDir(path)
	if err != nil {
		return false
	}
	for _, e := range entries {
		if e.IsDir() && strings.HasPrefix(e.Name(), ".") && isMaildir(filepath.Join(path, e.Name())) {
			return true
		}
	}
	return false
}

func (s *MaildirStore) addFolder(name, path string, hasDir bool) *maildirFolder {
	id := s.nextDir
	s.nextDir++
	f := &maildirFolder{
		Folder: Folder{ID: id, Name: name},
		dir:    maildir.Dir(path),
		hasDir: hasDir,
	}
	s.folders[id] = f
	return f
}

// scanMaildirPlusPlus builds the tree of a Maildir++ root, where ".A.B"
// is folder B inside folder A and the root itself is the inbox.
func (s *MaildirStore) scanMaildirPlusPlus(root string) uint32 {
	inbox := s.addFolder("INBOX", root, true)

	entries, _ := os.ReadDir(root)
	var names []string
	for _, e := range entries {
		if e.IsDir() && strings.HasPrefix(e.Name(), ".") && isMaildir(filepath.Join(root, e.Name())) {
			names = append(names, strings.TrimPrefix(e.Name(), "."))
		}
	}
	sort.Strings(names)

	byPath := map[string]*maildirFolder{"": inbox}
	var ensure func(path string) *maildirFolder
	ensure = func(path string) *maildirFolder {
		if f, ok := byPath[path]; ok {
			return f
		}
		parentPath, name := "", path
		if i := strings.LastIndex(path, "."); i >= 0 {
			parentPath, name = path[:i], path[i+1:]
		}
		parent := ensure(parentPath)
		dirPath := filepath.Join(root, "."+path)
		f := s.addFolder(name, dirPath, isMaildir(dirPath))
		parent.Children = append(parent.Children, f.ID)
		byPath[path] = f
		return f
	}
	for _, name := range names {
		ensure(name)
	}

	return inbox.ID
}

// scanNested builds the tree of a directory hierarchy where each maildir
// may contain further maildirs. It reports false when path holds no
// maildir at any depth.
func (s *MaildirStore) scanNested(path, name string) (uint32, bool) {
	hasDir := isMaildir(path)
	f := s.addFolder(name, path, hasDir)

	entries, err := os.ReadDir(path)
	if err == nil {
		for _, e := range entries {
			n := e.Name()
			if !e.IsDir() || n == "cur" || n == "new" || n == "tmp" {
				continue
			}
			if child, ok := s.scanNested(filepath.Join(path, n), n); ok {
				f.Children = append(f.Children, child)
			}
		}
	}

	if !hasDir && len(f.Children) == 0 {
		delete(s.folders, f.ID)
		return 0, false
	}
	return f.ID, true
}

// RootFolderID returns the root folder identifier.
func (s *MaildirStore) RootFolderID() uint32 {
	return s.root
}

// OpenFolder lists the folder's message keys in sorted order, assigning
// identifiers on first open.
func (s *MaildirStore) OpenFolder(_ context.Context, id uint32) (*Folder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, ok := s.folders[id]
	if !ok {
		return nil, fmt.Errorf("opening folder %d: %w", id, ErrFolderNotFound)
	}

	if !f.loaded && f.hasDir {
		keys, err := f.dir.Keys()
		if err != nil {
			return nil, fmt.Errorf("listing maildir %s: %w", f.dir, err)
		}
		sort.Strings(keys)
		for _, key := range keys {
			msgID := s.nextMsg
			s.nextMsg++
			s.messages[msgID] = maildirMessage{dir: f.dir, key: key}
			f.Contents = append(f.Contents, msgID)
		}
	}
	f.loaded = true

	cp := f.Folder
	cp.Contents = append([]uint32(nil), f.Contents...)
	cp.Children = append([]uint32(nil), f.Children...)
	return &cp, nil
}

// OpenMessage parses the message file, reading only the header when no
// body property is requested.
func (s *MaildirStore) OpenMessage(
	_ context.Context, id uint32, props []model.PropertyID,
) (model.PropertySet, error) {
	s.mu.Lock()
	loc, ok := s.messages[id]
	s.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("opening message %d: %w", id, ErrMessageNotFound)
	}

	rc, err := loc.dir.Open(loc.key)
	if err != nil {
		return nil, fmt.Errorf("opening message %s: %w", loc.key, err)
	}
	defer rc.Close()

	return ParseMessage(rc, props)
}

// Close is a no-op; files are opened per message.
func (s *MaildirStore) Close() error {
	return nil
}
