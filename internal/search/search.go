// Package search scans an archive for messages matching a query.
package search

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/nhle/mailbrowse/internal/body"
	"github.com/nhle/mailbrowse/internal/index"
	"github.com/nhle/mailbrowse/internal/model"
	"github.com/nhle/mailbrowse/internal/rowcache"
	"github.com/nhle/mailbrowse/internal/store"
)

// SearchProps are the properties opened for every scanned message.
var SearchProps = append(append([]model.PropertyID{}, rowcache.SummaryProps...), body.Props...)

// Result holds the matching messages in traversal order. Rows are parallel
// to Refs and already decoded.
type Result struct {
	Refs []model.MessageRef
	Rows []model.MessageSummary
}

// Len returns the number of matches.
func (r Result) Len() int {
	return len(r.Refs)
}

// Engine runs full-tree scans against one store.
type Engine struct {
	store store.MessageStore
}

// New creates an Engine.
func New(s store.MessageStore) *Engine {
	return &Engine{store: s}
}

// Search walks the whole tree under rootID and returns every message whose
// sender, recipients, CC or body text contains query, ignoring case.
// Messages that cannot be opened are skipped. The scan runs to completion
// unless ctx is cancelled, which is checked between messages.
func (e *Engine) Search(ctx context.Context, rootID uint32, query string) (Result, error) {
	needle := strings.ToLower(query)
	logger := zerolog.Ctx(ctx)

	var res Result
	err := index.Walk(ctx, e.store, rootID, func(v index.Visited) error {
		for _, id := range v.Folder.Contents {
			if err := ctx.Err(); err != nil {
				return err
			}

			msg, err := e.store.OpenMessage(ctx, id, SearchProps)
			if err != nil {
				logger.Debug().Err(err).Uint32("message_id", id).Msg("search skipping message")
				continue
			}
			if !Matches(msg, needle) {
				continue
			}
			res.Refs = append(res.Refs, model.MessageRef{ID: id, Folder: v.Name})
			res.Rows = append(res.Rows, rowcache.DecodeSummary(msg))
		}
		return nil
	})
	return res, err
}

// Matches reports whether needle, already lowercased, occurs in the
// message's From, To, CC or decoded body.
func Matches(msg model.PropertySet, needle string) bool {
	for _, id := range []model.PropertyID{
		model.PropSenderName,
		model.PropDisplayTo,
		model.PropDisplayCc,
	} {
		if strings.Contains(strings.ToLower(msg.String(id)), needle) {
			return true
		}
	}

	text, _ := body.Text(msg)
	return strings.Contains(strings.ToLower(text), needle)
}
