package store

import (
	"context"
	"errors"

	"github.com/nhle/mailbrowse/internal/model"
)

// Sentinel errors returned (wrapped) by every MessageStore implementation.
var (
	ErrFolderNotFound  = errors.New("folder not found")
	ErrMessageNotFound = errors.New("message not found")
)

// Folder is one node of an archive's folder tree.
type Folder struct {
	ID   uint32
	Name string

	// Contents lists the folder's message identifiers in store order.
	Contents []uint32

	// Children lists the child folder identifiers in store order.
	Children []uint32
}

// MessageStore is read-only access to a hierarchical mail archive.
// Identifiers are stable for the lifetime of the store.
type MessageStore interface {
	// RootFolderID returns the identifier of the top of the folder tree.
	RootFolderID() uint32

	// OpenFolder resolves a folder by identifier.
	OpenFolder(ctx context.Context, id uint32) (*Folder, error)

	// OpenMessage reads the requested properties of a message. A nil
	// props slice requests every property; implementations must avoid
	// reading data that was not asked for where the format allows it.
	OpenMessage(ctx context.Context, id uint32, props []model.PropertyID) (model.PropertySet, error)

	// Close releases the underlying archive.
	Close() error
}
