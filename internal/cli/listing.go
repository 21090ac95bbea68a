package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog"

	"github.com/nhle/mailbrowse/internal/index"
	"github.com/nhle/mailbrowse/internal/model"
	"github.com/nhle/mailbrowse/internal/rowcache"
	"github.com/nhle/mailbrowse/internal/search"
	"github.com/nhle/mailbrowse/internal/store"
)

// ListOptions narrows the list output.
type ListOptions struct {
	// Folder restricts the listing to one folder, matched by path or name.
	Folder string

	// Limit caps the number of printed messages; 0 prints all.
	Limit int
}

// List prints one line per message: folder | date | from | subject.
func List(ctx context.Context, w io.Writer, s store.MessageStore, opts ListOptions) error {
	var refs []model.MessageRef
	if opts.Folder != "" {
		entry, ok := index.FindFolder(ctx, s, s.RootFolderID(), opts.Folder)
		if !ok {
			return fmt.Errorf("%w: no folder named %q", errUsage, opts.Folder)
		}
		folderRefs, err := index.FolderRefs(ctx, s, entry.ID)
		if err != nil {
			return err
		}
		refs = folderRefs
	} else {
		refs = index.Build(ctx, s, s.RootFolderID())
	}

	total := len(refs)
	refs = limit(refs, opts.Limit)

	logger := zerolog.Ctx(ctx)
	rows := make([]model.MessageSummary, len(refs))
	for i, ref := range refs {
		if err := ctx.Err(); err != nil {
			return err
		}
		msg, err := s.OpenMessage(ctx, ref.ID, rowcache.SummaryProps)
		if err != nil {
			logger.Debug().Err(err).Uint32("message_id", ref.ID).Msg("list placeholder")
			rows[i] = model.Placeholder()
			continue
		}
		rows[i] = rowcache.DecodeSummary(msg)
	}

	if err := WriteRows(w, refs, rows); err != nil {
		return err
	}
	return writeFooter(w, len(refs), total, "message")
}

// Search prints the messages matching query in the list format.
func Search(ctx context.Context, w io.Writer, s store.MessageStore, query string, n int) error {
	query = strings.TrimSpace(query)
	if query == "" {
		return fmt.Errorf("%w: search needs a query", errUsage)
	}

	res, err := search.New(s).Search(ctx, s.RootFolderID(), query)
	if err != nil {
		return fmt.Errorf("searching for %q: %w", query, err)
	}

	refs := limit(res.Refs, n)
	if err := WriteRows(w, refs, res.Rows[:len(refs)]); err != nil {
		return err
	}
	return writeFooter(w, len(refs), res.Len(), "result")
}

// WriteRows prints refs and their rows side by side.
func WriteRows(w io.Writer, refs []model.MessageRef, rows []model.MessageSummary) error {
	for i, ref := range refs {
		if _, err := fmt.Fprintln(w, FormatRow(ref, rows[i])); err != nil {
			return err
		}
	}
	return nil
}

// FormatRow renders a single listing line.
func FormatRow(ref model.MessageRef, row model.MessageSummary) string {
	subject := row.Subject
	if subject == "" {
		subject = model.NoSubject
	}
	return strings.Join([]string{ref.Folder, row.Date, row.From, subject}, " | ")
}

func writeFooter(w io.Writer, shown, total int, noun string) error {
	suffix := "s"
	if total == 1 {
		suffix = ""
	}
	var err error
	if shown < total {
		_, err = fmt.Fprintf(w, "%d of %d %s%s\n", shown, total, noun, suffix)
	} else {
		_, err = fmt.Fprintf(w, "%d %s%s\n", total, noun, suffix)
	}
	return err
}

func limit(refs []model.MessageRef, n int) []model.MessageRef {
	if n > 0 && n < len(refs) {
		return refs[:n]
	}
	return refs
}
