package index

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/mailbrowse/internal/model"
	"github.com/nhle/mailbrowse/internal/store"
	"github.com/nhle/mailbrowse/tests/testutil"
)

// sampleTree builds:
//
//	Root (1 message)
//	├── Inbox (3)
//	│   └── Receipts (2)
//	└── Sent (1)
func sampleTree() (*store.MemoryStore, map[string]uint32) {
	s := store.NewMemoryStore("Root")
	ids := map[string]uint32{"Root": s.RootFolderID()}
	ids["Inbox"] = s.AddFolder(ids["Root"], "Inbox")
	ids["Receipts"] = s.AddFolder(ids["Inbox"], "Receipts")
	ids["Sent"] = s.AddFolder(ids["Root"], "Sent")

	testutil.Fill(s, ids["Root"], 1)
	testutil.Fill(s, ids["Inbox"], 3)
	testutil.Fill(s, ids["Receipts"], 2)
	testutil.Fill(s, ids["Sent"], 1)
	return s, ids
}

func folderNames(refs []model.MessageRef) []string {
	names := make([]string, len(refs))
	for i, r := range refs {
		names[i] = r.Folder
	}
	return names
}

func TestBuildPreOrder(t *testing.T) {
	s, _ := sampleTree()

	refs := Build(context.Background(), s, s.RootFolderID())

	assert.Equal(t, []string{
		"Root",
		"Inbox", "Inbox", "Inbox",
		"Receipts", "Receipts",
		"Sent",
	}, folderNames(refs))
}

func TestBuildKeepsStoreOrder(t *testing.T) {
	s := store.NewMemoryStore("Root")
	ids := testutil.Fill(s, s.RootFolderID(), 4)

	refs := Build(context.Background(), s, s.RootFolderID())

	require.Len(t, refs, 4)
	for i, r := range refs {
		assert.Equal(t, ids[i], r.ID)
	}
}

func TestBuildCountsEveryReachableMessage(t *testing.T) {
	s, ids := sampleTree()
	ctx := context.Background()

	total := 0
	for _, id := range ids {
		f, err := s.OpenFolder(ctx, id)
		require.NoError(t, err)
		total += len(f.Contents)
	}

	assert.Len(t, Build(ctx, s, s.RootFolderID()), total)
}

func TestBuildSkipsUnreadableSubtree(t *testing.T) {
	s, ids := sampleTree()
	s.Break(ids["Inbox"])

	refs := Build(context.Background(), s, s.RootFolderID())

	assert.Equal(t, []string{"Root", "Sent"}, folderNames(refs))
}

func TestBuildUnreadableRoot(t *testing.T) {
	s, ids := sampleTree()
	s.Break(ids["Root"])

	assert.Empty(t, Build(context.Background(), s, s.RootFolderID()))
}

func TestBuildDoesNotOpenMessages(t *testing.T) {
	s, _ := sampleTree()
	Build(context.Background(), s, s.RootFolderID())
	assert.Zero(t, s.TotalOpened())
}

func TestUnnamedFolderFallsBackToUnknown(t *testing.T) {
	s := store.NewMemoryStore("Root")
	anon := s.AddFolder(s.RootFolderID(), "")
	testutil.Fill(s, anon, 1)

	refs := Build(context.Background(), s, s.RootFolderID())
	require.Len(t, refs, 1)
	assert.Equal(t, model.UnknownFolder, refs[0].Folder)
}

func TestFolderRefs(t *testing.T) {
	s, ids := sampleTree()
	ctx := context.Background()

	refs, err := FolderRefs(ctx, s, ids["Inbox"])
	require.NoError(t, err)
	assert.Equal(t, []string{"Inbox", "Inbox", "Inbox"}, folderNames(refs))

	_, err = FolderRefs(ctx, s, 999)
	assert.ErrorIs(t, err, store.ErrFolderNotFound)
}

func TestOutline(t *testing.T) {
	s, ids := sampleTree()

	got := Outline(context.Background(), s, s.RootFolderID())

	assert.Equal(t, []FolderEntry{
		{ID: ids["Root"], Name: "Root", Path: "Root", Depth: 0, Start: 0, Count: 1},
		{ID: ids["Inbox"], Name: "Inbox", Path: "Root/Inbox", Depth: 1, Start: 1, Count: 3},
		{ID: ids["Receipts"], Name: "Receipts", Path: "Root/Inbox/Receipts", Depth: 2, Start: 4, Count: 2},
		{ID: ids["Sent"], Name: "Sent", Path: "Root/Sent", Depth: 1, Start: 6, Count: 1},
	}, got)
}

func TestFindFolder(t *testing.T) {
	s, ids := sampleTree()
	ctx := context.Background()

	e, ok := FindFolder(ctx, s, s.RootFolderID(), "Receipts")
	require.True(t, ok)
	assert.Equal(t, ids["Receipts"], e.ID)

	e, ok = FindFolder(ctx, s, s.RootFolderID(), "Root/Sent")
	require.True(t, ok)
	assert.Equal(t, ids["Sent"], e.ID)

	_, ok = FindFolder(ctx, s, s.RootFolderID(), "Drafts")
	assert.False(t, ok)
}

func TestWalkStopsOnVisitError(t *testing.T) {
	s, _ := sampleTree()
	stop := errors.New("stop")

	var seen []string
	err := Walk(context.Background(), s, s.RootFolderID(), func(v Visited) error {
		seen = append(seen, v.Name)
		if v.Name == "Inbox" {
			return stop
		}
		return nil
	})

	assert.ErrorIs(t, err, stop)
	assert.Equal(t, []string{"Root", "Inbox"}, seen)
}
