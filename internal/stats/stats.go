// Package stats summarizes the contents of an archive.
package stats

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/nhle/mailbrowse/internal/index"
	"github.com/nhle/mailbrowse/internal/model"
	"github.com/nhle/mailbrowse/internal/store"
)

// props are the properties opened for every message.
var props = []model.PropertyID{
	model.PropSubject,
	model.PropMessageClass,
	model.PropMessageDeliveryTime,
	model.PropClientSubmitTime,
	model.PropAttachCount,
}

// Report holds item counts and the date range of an archive.
type Report struct {
	Folders     int
	Emails      int
	Calendar    int
	Contacts    int
	Tasks       int
	Notes       int
	Attachments int64

	Earliest time.Time
	Latest   time.Time
	HasDates bool
}

// Total returns the number of items of every kind.
func (r Report) Total() int {
	return r.Emails + r.Calendar + r.Contacts + r.Tasks + r.Notes
}

// Collect walks the tree under rootID and counts its items. Messages that
// cannot be opened are not counted.
func Collect(ctx context.Context, s store.MessageStore, rootID uint32) (Report, error) {
	var r Report
	err := index.Walk(ctx, s, rootID, func(v index.Visited) error {
		r.Folders++
		for _, id := range v.Folder.Contents {
			if err := ctx.Err(); err != nil {
				return err
			}
			msg, err := s.OpenMessage(ctx, id, props)
			if err != nil {
				zerolog.Ctx(ctx).Debug().Err(err).Uint32("message_id", id).Msg("stats skipping message")
				continue
			}
			r.add(msg)
		}
		return nil
	})
	return r, err
}

func (r *Report) add(msg model.PropertySet) {
	class := strings.ToUpper(msg.String(model.PropMessageClass))
	switch {
	case class == "" || class == "IPM" || strings.HasPrefix(class, "IPM.NOTE"):
		r.Emails++
	case strings.HasPrefix(class, "IPM.APPOINTMENT"), strings.HasPrefix(class, "IPM.SCHEDULE"):
		r.Calendar++
	case strings.HasPrefix(class, "IPM.CONTACT"):
		r.Contacts++
	case strings.HasPrefix(class, "IPM.TASK"):
		r.Tasks++
	case strings.HasPrefix(class, "IPM.STICKYNOTE"):
		r.Notes++
	default:
		r.Emails++
	}

	if v, ok := msg.Property(model.PropAttachCount); ok {
		if n, ok := v.Int(); ok && n > 0 {
			r.Attachments += n
		}
	}

	if t, ok := msg.Time(model.PropClientSubmitTime, model.PropMessageDeliveryTime); ok {
		if !r.HasDates || t.Before(r.Earliest) {
			r.Earliest = t
		}
		if !r.HasDates || t.After(r.Latest) {
			r.Latest = t
		}
		r.HasDates = true
	}
}

// Write prints the report. Item kinds other than e-mail are listed only
// when present.
func (r Report) Write(w io.Writer, source string) error {
	var b strings.Builder
	fmt.Fprintf(&b, "Archive Statistics: %q\n", source)
	fmt.Fprintf(&b, "  Folders:          %d\n", r.Folders)
	fmt.Fprintf(&b, "  Total items:      %d\n", r.Total())
	fmt.Fprintf(&b, "  Emails:           %d\n", r.Emails)
	if r.Calendar > 0 {
		fmt.Fprintf(&b, "  Calendar items:   %d\n", r.Calendar)
	}
	if r.Contacts > 0 {
		fmt.Fprintf(&b, "  Contacts:         %d\n", r.Contacts)
	}
	if r.Tasks > 0 {
		fmt.Fprintf(&b, "  Tasks:            %d\n", r.Tasks)
	}
	if r.Notes > 0 {
		fmt.Fprintf(&b, "  Notes:            %d\n", r.Notes)
	}
	fmt.Fprintf(&b, "  Attachments:      %d\n", r.Attachments)
	if r.HasDates {
		fmt.Fprintf(&b, "  Earliest message: %s\n", model.FormatDate(r.Earliest))
		fmt.Fprintf(&b, "  Latest message:   %s\n", model.FormatDate(r.Latest))
	} else {
		b.WriteString("  Date range:       (no timestamps found)\n")
	}

	_, err := io.WriteString(w, b.String())
	return err
}
