package testutil

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/nhle/mailbrowse/internal/model"
	"github.com/nhle/mailbrowse/internal/store"
)

// NewTestStore creates an in-memory SQLiteStore with all migrations applied.
// It automatically closes the store when the test completes.
func NewTestStore(t *testing.T) *store.SQLiteStore {
	t.Helper()

	s, err := store.NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("creating test store: %v", err)
	}

	t.Cleanup(func() {
		if err := s.Close(); err != nil {
			t.Errorf("closing test store: %v", err)
		}
	})

	return s
}

// Summary builds the property set of a plain e-mail with the given header
// fields. A zero date leaves the timestamps unset.
func Summary(from, to, subject string, date time.Time) model.PropertySet {
	set := model.PropertySet{
		model.PropMessageClass: model.StringValue(model.DefaultMessageClass),
	}
	if from != "" {
		set[model.PropSenderName] = model.StringValue(from)
	}
	if to != "" {
		set[model.PropDisplayTo] = model.StringValue(to)
	}
	if subject != "" {
		set[model.PropSubject] = model.StringValue(subject)
	}
	if !date.IsZero() {
		set[model.PropClientSubmitTime] = model.TimestampValue(date)
	}
	return set
}

// WithBody returns set with a plain text body added.
func WithBody(set model.PropertySet, body string) model.PropertySet {
	set[model.PropBody] = model.StringValue(body)
	return set
}

// Fill inserts count numbered messages into folder of a memory store and
// returns their identifiers in order.
func Fill(s *store.MemoryStore, folder uint32, count int) []uint32 {
	ids := make([]uint32, 0, count)
	base := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	for i := range count {
		props := Summary(
			fmt.Sprintf("Sender %d", i),
			"Recipient",
			fmt.Sprintf("Message %d", i),
			base.Add(time.Duration(i)*time.Hour),
		)
		ids = append(ids, s.AddMessage(folder, props))
	}
	return ids
}

// SeedSQLite inserts a folder with the given messages into a writable
// archive and returns the folder identifier.
func SeedSQLite(
	t *testing.T, s *store.SQLiteStore, parent uint32, name string, msgs ...model.PropertySet,
) uint32 {
	t.Helper()

	ctx := context.Background()
	folder, err := s.InsertFolder(ctx, parent, name, name)
	if err != nil {
		t.Fatalf("inserting folder %q: %v", name, err)
	}
	for _, m := range msgs {
		if _, err := s.InsertMessage(ctx, folder, m); err != nil {
			t.Fatalf("inserting message into %q: %v", name, err)
		}
	}
	return folder
}
