// Package index flattens an archive's folder tree into message rows.
package index

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/nhle/mailbrowse/internal/model"
	"github.com/nhle/mailbrowse/internal/store"
)

// Visited describes one folder reached by Walk.
type Visited struct {
	Folder *store.Folder

	// Name is the folder's display name, "Unknown" when the store has none.
	Name string

	// Path joins the display names from the root down, separated by "/".
	Path string

	// Depth is 0 for the root folder.
	Depth int
}

// FolderEntry is one line of the folder outline.
type FolderEntry struct {
	ID    uint32
	Name  string
	Path  string
	Depth int

	// Start is the position of the folder's first message in Build output.
	Start int

	// Count is the number of messages directly in the folder.
	Count int
}

// Walk visits every folder reachable from rootID depth first, in pre-order,
// with children in store order. Folders that fail to open are skipped
// together with their subtrees; the failure is logged, never returned.
// An error returned by visit stops the walk and is returned.
func Walk(
	ctx context.Context, s store.MessageStore, rootID uint32, visit func(Visited) error,
) error {
	return walk(ctx, s, rootID, "", 0, visit)
}

func walk(
	ctx context.Context, s store.MessageStore, id uint32, parent string, depth int,
	visit func(Visited) error,
) error {
	f, err := s.OpenFolder(ctx, id)
	if err != nil {
		zerolog.Ctx(ctx).Debug().Err(err).Uint32("folder_id", id).Msg("skipping unreadable folder")
		return nil
	}

	name := f.Name
	if name == "" {
		name = model.UnknownFolder
	}
	path := name
	if parent != "" {
		path = parent + "/" + name
	}

	if err := visit(Visited{Folder: f, Name: name, Path: path, Depth: depth}); err != nil {
		return err
	}

	for _, child := range f.Children {
		if err := walk(ctx, s, child, path, depth+1, visit); err != nil {
			return err
		}
	}
	return nil
}

// Build returns a reference for every message in the tree: each folder's
// contents in store order, followed by its children's.
func Build(ctx context.Context, s store.MessageStore, rootID uint32) []model.MessageRef {
	var refs []model.MessageRef
	_ = Walk(ctx, s, rootID, func(v Visited) error {
		refs = appendRefs(refs, v.Folder, v.Name)
		return nil
	})
	return refs
}

// FolderRefs returns references for the messages directly in one folder.
func FolderRefs(ctx context.Context, s store.MessageStore, folderID uint32) ([]model.MessageRef, error) {
	f, err := s.OpenFolder(ctx, folderID)
	if err != nil {
		return nil, fmt.Errorf("listing folder %d: %w", folderID, err)
	}
	name := f.Name
	if name == "" {
		name = model.UnknownFolder
	}
	return appendRefs(nil, f, name), nil
}

// Outline lists every folder in Build order with the row range its
// messages occupy.
func Outline(ctx context.Context, s store.MessageStore, rootID uint32) []FolderEntry {
	var (
		entries []FolderEntry
		start   int
	)
	_ = Walk(ctx, s, rootID, func(v Visited) error {
		entries = append(entries, FolderEntry{
			ID:    v.Folder.ID,
			Name:  v.Name,
			Path:  v.Path,
			Depth: v.Depth,
			Start: start,
			Count: len(v.Folder.Contents),
		})
		start += len(v.Folder.Contents)
		return nil
	})
	return entries
}

// FindFolder returns the first folder whose path or name equals name.
func FindFolder(ctx context.Context, s store.MessageStore, rootID uint32, name string) (FolderEntry, bool) {
	for _, e := range Outline(ctx, s, rootID) {
		if e.Path == name || e.Name == name {
			return e, true
		}
	}
	return FolderEntry{}, false
}

func appendRefs(refs []model.MessageRef, f *store.Folder, name string) []model.MessageRef {
	for _, id := range f.Contents {
		refs = append(refs, model.MessageRef{ID: id, Folder: name})
	}
	return refs
}
