package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/nhle/mailbrowse/internal/model"
)

// MemoryStore is an arena-backed MessageStore. Folders and messages are
// addressed by identifier, so the tree never holds references to itself.
type MemoryStore struct {
	mu       sync.Mutex
	root     uint32
	folders  map[uint32]*Folder
	messages map[uint32]model.PropertySet
	broken   map[uint32]bool
	opened   map[uint32]int
	nextID   uint32
}

// NewMemoryStore creates a store holding a single empty root folder.
func NewMemoryStore(rootName string) *MemoryStore {
	s := &MemoryStore{
		folders:  make(map[uint32]*Folder),
		messages: make(map[uint32]model.PropertySet),
		broken:   make(map[uint32]bool),
		opened:   make(map[uint32]int),
		nextID:   1,
	}
	s.root = s.alloc()
	s.folders[s.root] = &Folder{ID: s.root, Name: rootName}
	return s
}

func (s *MemoryStore) alloc() uint32 {
	id := s.nextID
	s.nextID++
	return id
}

// AddFolder creates a child folder under parent and returns its identifier.
func (s *MemoryStore) AddFolder(parent uint32, name string) uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.alloc()
	s.folders[id] = &Folder{ID: id, Name: name}
	if p, ok := s.folders[parent]; ok {
		p.Children = append(p.Children, id)
	}
	return id
}

// AddMessage appends a message to folder and returns its identifier.
func (s *MemoryStore) AddMessage(folder uint32, props model.PropertySet) uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.alloc()
	s.messages[id] = props
	if f, ok := s.folders[folder]; ok {
		f.Contents = append(f.Contents, id)
	}
	return id
}

// Break makes every subsequent open of id fail, whether id names a folder
// or a message.
func (s *MemoryStore) Break(id uint32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.broken[id] = true
}

// Opened reports how many times message id has been opened.
func (s *MemoryStore) Opened(id uint32) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.opened[id]
}

// TotalOpened reports the number of message opens across all messages.
func (s *MemoryStore) TotalOpened() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := 0
	for _, n := range s.opened {
		total += n
	}
	return total
}

// RootFolderID returns the root folder identifier.
func (s *MemoryStore) RootFolderID() uint32 {
	return s.root
}

// OpenFolder returns a copy of the folder node.
func (s *MemoryStore) OpenFolder(_ context.Context, id uint32) (*Folder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, ok := s.folders[id]
	if !ok || s.broken[id] {
		return nil, fmt.Errorf("opening folder %d: %w", id, ErrFolderNotFound)
	}
	cp := *f
	cp.Contents = append([]uint32(nil), f.Contents...)
	cp.Children = append([]uint32(nil), f.Children...)
	return &cp, nil
}

// OpenMessage returns the requested subset of a message's properties.
func (s *MemoryStore) OpenMessage(
	_ context.Context, id uint32, props []model.PropertyID,
) (model.PropertySet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.opened[id]++
	msg, ok := s.messages[id]
	if !ok || s.broken[id] {
		return nil, fmt.Errorf("opening message %d: %w", id, ErrMessageNotFound)
	}
	return msg.Restrict(props), nil
}

// Close is a no-op.
func (s *MemoryStore) Close() error {
	return nil
}
