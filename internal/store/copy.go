package store

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/nhle/mailbrowse/internal/model"
)

// CopyResult counts what Copy wrote.
type CopyResult struct {
	Folders  int
	Messages int

	// Skipped counts folders and messages that could not be read.
	Skipped int
}

// Copy writes the folder tree of src, starting at its root, into dst as a
// new top-level folder. Unreadable folders and messages are skipped and
// counted; write failures abort the copy.
func Copy(ctx context.Context, dst *SQLiteStore, src MessageStore) (CopyResult, error) {
	var res CopyResult
	err := copyFolder(ctx, dst, src, src.RootFolderID(), syntheticRoot, "", &res)
	return res, err
}

func copyFolder(
	ctx context.Context, dst *SQLiteStore, src MessageStore, id, parent uint32, parentPath string,
	res *CopyResult,
) error {
	logger := zerolog.Ctx(ctx)

	f, err := src.OpenFolder(ctx, id)
	if err != nil {
		logger.Warn().Err(err).Uint32("folder_id", id).Msg("copy skipping folder")
		res.Skipped++
		return nil
	}

	name := f.Name
	if name == "" {
		name = model.UnknownFolder
	}
	path := name
	if parentPath != "" {
		path = parentPath + "/" + name
	}

	newID, err := dst.InsertFolder(ctx, parent, name, path)
	if err != nil {
		return err
	}
	res.Folders++

	for _, msgID := range f.Contents {
		if err := ctx.Err(); err != nil {
			return err
		}
		props, err := src.OpenMessage(ctx, msgID, nil)
		if err != nil {
			logger.Warn().Err(err).Uint32("message_id", msgID).Msg("copy skipping message")
			res.Skipped++
			continue
		}
		if _, err := dst.InsertMessage(ctx, newID, props); err != nil {
			return fmt.Errorf("copying %s: %w", path, err)
		}
		res.Messages++
	}

	for _, child := range f.Children {
		if err := copyFolder(ctx, dst, src, child, newID, path, res); err != nil {
			return err
		}
	}
	return nil
}
