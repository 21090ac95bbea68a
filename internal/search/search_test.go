package search

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

func mail(from, to, subject, text string) model.PropertySet {
	props := testutil.Summary(from, to, subject, time.Date(2024, 2, 3, 4, 5, 6, 0, time.UTC))
	if text != "" {
		props = testutil.WithBody(props, text)
	}
	return props
}

func TestSearchMatchesFieldsCaseInsensitively(t *testing.T) {
	s := store.NewMemoryStore("Root")
	inbox := s.AddFolder(s.RootFolderID(), "Inbox")
	a := s.AddMessage(inbox, mail("Alice@Example.com", "bob", "hello", ""))
	s.AddMessage(inbox, mail("carol", "dave", "alice in subject only", ""))
	c := s.AddMessage(inbox, mail("erin", "frank", "re", "Lunch with ALICE?"))
	cc := mail("gina", "hank", "cc", "")
	cc[model.PropDisplayCc] = model.StringValue("Alice Smith")
	d := s.AddMessage(inbox, cc)

	res, err := New(s).Search(context.Background(), s.RootFolderID(), "alice")
	require.NoError(t, err)

	require.Equal(t, 3, res.Len())
	assert.Equal(t, []model.MessageRef{
		{ID: a, Folder: "Inbox"},
		{ID: c, Folder: "Inbox"},
		{ID: d, Folder: "Inbox"},
	}, res.Refs)
	assert.Equal(t, "Alice@Example.com", res.Rows[0].From)
	assert.Equal(t, "2024-02-03 04:05:06 UTC", res.Rows[0].Date)
}

func TestSearchMatchesDecodedHTMLBody(t *testing.T) {
	s := store.NewMemoryStore("Root")
	props := mail("x", "y", "z", "")
	props[model.PropBodyHTML] = model.StringValue("<p>Invoice&nbsp;<b>#42</b></p>")
	id := s.AddMessage(s.RootFolderID(), props)

	res, err := New(s).Search(context.Background(), s.RootFolderID(), "invoice #42")
	require.NoError(t, err)
	require.Equal(t, 1, res.Len())
	assert.Equal(t, id, res.Refs[0].ID)
}

func TestSearchSkipsUnreadableMessagesAndFolders(t *testing.T) {
	s := store.NewMemoryStore("Root")
	good := s.AddMessage(s.RootFolderID(), mail("match", "", "", ""))
	bad := s.AddMessage(s.RootFolderID(), mail("match", "", "", ""))
	hidden := s.AddFolder(s.RootFolderID(), "Hidden")
	s.AddMessage(hidden, mail("match", "", "", ""))
	s.Break(bad)
	s.Break(hidden)

	res, err := New(s).Search(context.Background(), s.RootFolderID(), "match")
	require.NoError(t, err)
	require.Equal(t, 1, res.Len())
	assert.Equal(t, good, res.Refs[0].ID)
}

func TestSearchTraversalOrder(t *testing.T) {
	s := store.NewMemoryStore("Root")
	a := s.AddFolder(s.RootFolderID(), "A")
	b := s.AddFolder(a, "B")
	c := s.AddFolder(s.RootFolderID(), "C")
	s.AddMessage(c, mail("hit", "", "", ""))
	s.AddMessage(b, mail("hit", "", "", ""))
	s.AddMessage(a, mail("hit", "", "", ""))
	s.AddMessage(s.RootFolderID(), mail("hit", "", "", ""))

	res, err := New(s).Search(context.Background(), s.RootFolderID(), "hit")
	require.NoError(t, err)

	var folders []string
	for _, r := range res.Refs {
		folders = append(folders, r.Folder)
	}
	assert.Equal(t, []string{"Root", "A", "B", "C"}, folders)
}

func TestSearchNoMatches(t *testing.T) {
	s := store.NewMemoryStore("Root")
	testutil.Fill(s, s.RootFolderID(), 5)

	res, err := New(s).Search(context.Background(), s.RootFolderID(), "zzz")
	require.NoError(t, err)
	assert.Zero(t, res.Len())
	assert.Equal(t, 5, s.TotalOpened())
}

func TestSearchHonorsCancellation(t *testing.T) {
	s := store.NewMemoryStore("Root")
	testutil.Fill(s, s.RootFolderID(), 5)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(s).Search(ctx, s.RootFolderID(), "sender")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, s.TotalOpened())
}

func TestSearchOpensBodyProperties(t *testing.T) {
	for _, p := range []model.PropertyID{model.PropBody, model.PropBodyHTML, model.PropRTFCompressed} {
		assert.True(t, model.Wants(SearchProps, p))
	}
	assert.False(t, model.Wants(SearchProps, model.PropAttachCount))
}
