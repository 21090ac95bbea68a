// Package rowcache hydrates message list rows lazily around the visible
// window.
package rowcache

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/nhle/mailbrowse/internal/model"
	"github.com/nhle/mailbrowse/internal/store"
)

// Margin is the number of rows hydrated past the bottom of the visible
// window, covering scroll between input and the next draw.
const Margin = 5

// SummaryProps are the properties a list row is decoded from.
var SummaryProps = []model.PropertyID{
	model.PropSubject,
	model.PropSenderName,
	model.PropDisplayTo,
	model.PropDisplayCc,
	model.PropClientSubmitTime,
	model.PropMessageDeliveryTime,
}

// Cache holds one optional summary per row of the active row source.
// Rows are filled at most once; a row whose message cannot be opened
// keeps the placeholder and is never retried.
type Cache struct {
	store store.MessageStore
	refs  []model.MessageRef
	rows  []*model.MessageSummary
}

// New creates a cache with every row absent.
func New(s store.MessageStore, refs []model.MessageRef) *Cache {
	return &Cache{
		store: s,
		refs:  refs,
		rows:  make([]*model.MessageSummary, len(refs)),
	}
}

// NewHydrated creates a cache whose rows are already decoded, as search
// results are. rows must be parallel to refs.
func NewHydrated(s store.MessageStore, refs []model.MessageRef, rows []model.MessageSummary) *Cache {
	c := New(s, refs)
	for i := range rows {
		if i >= len(c.rows) {
			break
		}
		row := rows[i]
		c.rows[i] = &row
	}
	return c
}

// EnsureLoaded hydrates every absent row in
// [offset, min(offset+height+Margin, Len())). Rows outside that window are
// never touched.
func (c *Cache) EnsureLoaded(ctx context.Context, offset, height int) {
	if offset < 0 {
		offset = 0
	}
	if height < 0 {
		height = 0
	}
	end := min(offset+height+Margin, len(c.rows))

	for i := offset; i < end; i++ {
		if c.rows[i] != nil {
			continue
		}
		row := c.load(ctx, c.refs[i].ID)
		c.rows[i] = &row
	}
}

func (c *Cache) load(ctx context.Context, id uint32) model.MessageSummary {
	msg, err := c.store.OpenMessage(ctx, id, SummaryProps)
	if err != nil {
		zerolog.Ctx(ctx).Debug().Err(err).Uint32("message_id", id).Msg("row placeholder")
		return model.Placeholder()
	}
	return DecodeSummary(msg)
}

// Len returns the number of rows.
func (c *Cache) Len() int {
	return len(c.rows)
}

// Ref returns the reference of row i.
func (c *Cache) Ref(i int) model.MessageRef {
	return c.refs[i]
}

// Refs returns the row references.
func (c *Cache) Refs() []model.MessageRef {
	return c.refs
}

// Row returns the summary of row i and whether it has been hydrated.
func (c *Cache) Row(i int) (model.MessageSummary, bool) {
	if i < 0 || i >= len(c.rows) || c.rows[i] == nil {
		return model.MessageSummary{}, false
	}
	return *c.rows[i], true
}

// Loaded returns the number of hydrated rows.
func (c *Cache) Loaded() int {
	n := 0
	for _, r := range c.rows {
		if r != nil {
			n++
		}
	}
	return n
}

// DecodeSummary builds a list row from a message's properties.
func DecodeSummary(msg model.PropertySet) model.MessageSummary {
	return model.MessageSummary{
		From:    msg.String(model.PropSenderName),
		To:      msg.String(model.PropDisplayTo),
		CC:      msg.String(model.PropDisplayCc),
		Subject: msg.String(model.PropSubject),
		Date:    FormatDate(msg),
	}
}

// FormatDate renders the submit time, else the delivery time, else
// "unknown".
func FormatDate(msg model.PropertySet) string {
	t, ok := msg.Time(model.PropClientSubmitTime, model.PropMessageDeliveryTime)
	if !ok {
		return model.UnknownDate
	}
	return model.FormatDate(t)
}
