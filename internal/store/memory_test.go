package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/mailbrowse/internal/model"
	"github.com/nhle/mailbrowse/internal/store"
	"github.com/nhle/mailbrowse/tests/testutil"
)

func TestMemoryStoreTree(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore("Root")
	inbox := s.AddFolder(s.RootFolderID(), "Inbox")
	sent := s.AddFolder(s.RootFolderID(), "Sent")
	msgs := testutil.Fill(s, inbox, 2)

	root, err := s.OpenFolder(ctx, s.RootFolderID())
	require.NoError(t, err)
	assert.Equal(t, "Root", root.Name)
	assert.Equal(t, []uint32{inbox, sent}, root.Children)
	assert.Empty(t, root.Contents)

	f, err := s.OpenFolder(ctx, inbox)
	require.NoError(t, err)
	assert.Equal(t, msgs, f.Contents)
}

func TestMemoryStoreOpenFolderReturnsCopy(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore("Root")
	testutil.Fill(s, s.RootFolderID(), 1)

	f, err := s.OpenFolder(ctx, s.RootFolderID())
	require.NoError(t, err)
	f.Contents[0] = 999

	again, err := s.OpenFolder(ctx, s.RootFolderID())
	require.NoError(t, err)
	assert.NotEqual(t, uint32(999), again.Contents[0])
}

func TestMemoryStoreOpenMessageRestrictsProperties(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore("Root")
	id := s.AddMessage(s.RootFolderID(), testutil.WithBody(
		testutil.Summary("Alice", "Bob", "Hi", time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)),
		"hello",
	))

	props, err := s.OpenMessage(ctx, id, []model.PropertyID{model.PropSubject})
	require.NoError(t, err)
	assert.Equal(t, "Hi", props.String(model.PropSubject))
	_, hasBody := props.Property(model.PropBody)
	assert.False(t, hasBody)

	all, err := s.OpenMessage(ctx, id, nil)
	require.NoError(t, err)
	assert.Equal(t, "hello", all.String(model.PropBody))
	assert.Equal(t, 2, s.Opened(id))
}

func TestMemoryStoreBreak(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore("Root")
	folder := s.AddFolder(s.RootFolderID(), "Broken")
	msg := s.AddMessage(s.RootFolderID(), testutil.Summary("A", "B", "C", time.Time{}))
	s.Break(folder)
	s.Break(msg)

	_, err := s.OpenFolder(ctx, folder)
	assert.ErrorIs(t, err, store.ErrFolderNotFound)

	_, err = s.OpenMessage(ctx, msg, nil)
	assert.ErrorIs(t, err, store.ErrMessageNotFound)
	assert.Equal(t, 1, s.TotalOpened())
}
