package rowcache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/mailbrowse/internal/index"
	"github.com/nhle/mailbrowse/internal/model"
	"github.com/nhle/mailbrowse/internal/store"
	"github.com/nhle/mailbrowse/tests/testutil"
)

func newCache(t *testing.T, n int) (*Cache, *store.MemoryStore, []uint32) {
	t.Helper()
	s := store.NewMemoryStore("Root")
	ids := testutil.Fill(s, s.RootFolderID(), n)
	refs := index.Build(context.Background(), s, s.RootFolderID())
	require.Len(t, refs, n)
	return New(s, refs), s, ids
}

func TestEnsureLoadedWindow(t *testing.T) {
	c, s, ids := newCache(t, 100)

	c.EnsureLoaded(context.Background(), 10, 20)

	for i := 0; i < c.Len(); i++ {
		_, ok := c.Row(i)
		inWindow := i >= 10 && i < 10+20+Margin
		assert.Equal(t, inWindow, ok, "row %d", i)
		want := 0
		if inWindow {
			want = 1
		}
		assert.Equal(t, want, s.Opened(ids[i]), "row %d", i)
	}
	assert.Equal(t, 25, c.Loaded())
}

func TestEnsureLoadedClampsToRowCount(t *testing.T) {
	c, _, _ := newCache(t, 8)

	c.EnsureLoaded(context.Background(), 4, 20)

	assert.Equal(t, 4, c.Loaded())
	_, ok := c.Row(3)
	assert.False(t, ok)
	_, ok = c.Row(7)
	assert.True(t, ok)
}

func TestEnsureLoadedIsIdempotent(t *testing.T) {
	c, s, _ := newCache(t, 30)
	ctx := context.Background()

	c.EnsureLoaded(ctx, 0, 10)
	opened := s.TotalOpened()
	c.EnsureLoaded(ctx, 0, 10)
	c.EnsureLoaded(ctx, 2, 5)

	assert.Equal(t, opened, s.TotalOpened())
}

func TestEnsureLoadedOnEmptyCache(t *testing.T) {
	c := New(store.NewMemoryStore("Root"), nil)
	c.EnsureLoaded(context.Background(), 0, 10)
	assert.Zero(t, c.Len())
	assert.Zero(t, c.Loaded())
}

func TestFailedOpenBecomesPlaceholderAndIsNotRetried(t *testing.T) {
	c, s, ids := newCache(t, 3)
	ctx := context.Background()
	s.Break(ids[1])

	c.EnsureLoaded(ctx, 0, 3)
	c.EnsureLoaded(ctx, 0, 3)

	row, ok := c.Row(1)
	require.True(t, ok)
	assert.Equal(t, model.Placeholder(), row)
	assert.Equal(t, 1, s.Opened(ids[1]))
}

func TestDecodeSummary(t *testing.T) {
	submit := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	delivery := time.Date(2024, 6, 2, 8, 30, 0, 0, time.UTC)

	tests := []struct {
		name string
		msg  model.PropertySet
		want model.MessageSummary
	}{
		{
			name: "submit time preferred",
			msg: model.PropertySet{
				model.PropSenderName:          model.StringValue("Alice"),
				model.PropDisplayTo:           model.StringValue("Bob"),
				model.PropDisplayCc:           model.StringValue("Carol"),
				model.PropSubject:             model.StringValue("Hello"),
				model.PropClientSubmitTime:    model.TimestampValue(submit),
				model.PropMessageDeliveryTime: model.TimestampValue(delivery),
			},
			want: model.MessageSummary{
				From: "Alice", To: "Bob", CC: "Carol", Subject: "Hello",
				Date: "2024-06-01 12:00:00 UTC",
			},
		},
		{
			name: "delivery time fallback",
			msg:  model.PropertySet{model.PropMessageDeliveryTime: model.TimestampValue(delivery)},
			want: model.MessageSummary{Date: "2024-06-02 08:30:00 UTC"},
		},
		{
			name: "no dates",
			msg:  model.PropertySet{model.PropSubject: model.StringValue("x")},
			want: model.MessageSummary{Subject: "x", Date: model.UnknownDate},
		},
		{
			name: "wrong kinds ignored",
			msg: model.PropertySet{
				model.PropSubject:          model.IntegerValue(3),
				model.PropClientSubmitTime: model.StringValue("yesterday"),
			},
			want: model.MessageSummary{Date: model.UnknownDate},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DecodeSummary(tt.msg))
		})
	}
}

func TestNewHydrated(t *testing.T) {
	refs := []model.MessageRef{{ID: 1, Folder: "A"}, {ID: 2, Folder: "A"}}
	rows := []model.MessageSummary{{Subject: "one"}, {Subject: "two"}}
	s := store.NewMemoryStore("Root")

	c := NewHydrated(s, refs, rows)
	c.EnsureLoaded(context.Background(), 0, 10)

	assert.Equal(t, 2, c.Loaded())
	row, ok := c.Row(1)
	require.True(t, ok)
	assert.Equal(t, "two", row.Subject)
	assert.Equal(t, refs[1], c.Ref(1))
	assert.Zero(t, s.TotalOpened())
}
