package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/nhle/mailbrowse/internal/model"
)

// syntheticRoot is the folder identifier used when an archive has several
// top-level folders. SQLite never assigns rowid 0.
const syntheticRoot = 0

// timeLayout is how timestamps are stored in the archive.
const timeLayout = "2006-01-02T15:04:05Z"

// columnKind tells OpenMessage how to scan and wrap a column.
type columnKind int

const (
	columnText columnKind = iota
	columnBlob
	columnInt
	columnTime
)

// column maps a message property onto the messages table.
type column struct {
	name string
	kind columnKind
}

// messageColumns maps every property the archive can hold to its column.
var messageColumns = map[model.PropertyID]column{
	model.PropMessageClass:        {"message_class", columnText},
	model.PropSubject:             {"subject", columnText},
	model.PropSenderName:          {"sender", columnText},
	model.PropDisplayTo:           {"to_recipients", columnText},
	model.PropDisplayCc:           {"cc_recipients", columnText},
	model.PropClientSubmitTime:    {"submit_time", columnTime},
	model.PropMessageDeliveryTime: {"delivery_time", columnTime},
	model.PropBody:                {"body_text", columnText},
	model.PropBodyHTML:            {"body_html", columnBlob},
	model.PropRTFCompressed:       {"body_rtf", columnBlob},
	model.PropAttachCount:         {"attachment_count", columnInt},
}

// propertyOrder fixes the column order used when every property is requested.
var propertyOrder = []model.PropertyID{
	model.PropMessageClass,
	model.PropSubject,
	model.PropSenderName,
	model.PropDisplayTo,
	model.PropDisplayCc,
	model.PropClientSubmitTime,
	model.PropMessageDeliveryTime,
	model.PropBody,
	model.PropBodyHTML,
	model.PropRTFCompressed,
	model.PropAttachCount,
}

// SQLiteStore implements MessageStore over a SQLite archive database.
type SQLiteStore struct {
	db       *sqlx.DB
	root     uint32
	topLevel []uint32
}

// NewSQLiteStore opens (or creates) a writable SQLite archive at dbPath,
// enables WAL mode, and runs any pending schema migrations.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := openDB(dbPath)
	if err != nil {
		return nil, err
	}

	// Enable WAL mode for better concurrent read performance.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	// Enable foreign keys.
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.runMigrations(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	if err := s.resolveRoot(); err != nil {
		db.Close()
		return nil, err
	}

	return s, nil
}

// OpenSQLiteArchive opens an existing archive database for browsing.
// The connection is query-only; no migrations are applied.
func OpenSQLiteArchive(dbPath string) (*SQLiteStore, error) {
	db, err := openDB(dbPath)
	if err != nil {
		return nil, err
	}

	var tableCount int
	err = db.Get(&tableCount,
		"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name IN ('folders', 'messages')")
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("inspecting archive %s: %w", dbPath, err)
	}
	if tableCount != 2 {
		db.Close()
		return nil, fmt.Errorf("%s is not a mail archive: missing folders/messages tables", dbPath)
	}

	if _, err := db.Exec("PRAGMA query_only=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling query-only mode: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.resolveRoot(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func openDB(dbPath string) (*sqlx.DB, error) {
	db, err := sqlx.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}
	// One connection keeps ":memory:" databases and pragmas consistent.
	db.SetMaxOpenConns(1)
	return db, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// runMigrations checks the current schema version and applies any
// outstanding migrations in order.
func (s *SQLiteStore) runMigrations() error {
	currentVersion := 0

	// Check if schema_version table exists.
	var tableCount int
	err := s.db.Get(
		&tableCount,
		"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	)
	if err != nil {
		return fmt.Errorf("checking schema_version table: %w", err)
	}

	if tableCount > 0 {
		err = s.db.Get(&currentVersion, "SELECT COALESCE(MAX(version), 0) FROM schema_version")
		if err != nil {
			return fmt.Errorf("reading schema version: %w", err)
		}
	}

	for _, m := range migrations {
		if m.version <= currentVersion {
			continue
		}
		if _, err := s.db.Exec(m.sql); err != nil {
			return fmt.Errorf("applying migration v%d: %w", m.version, err)
		}
	}

	return nil
}

// resolveRoot picks the single top-level folder as root, or a synthetic
// root over all top-level folders.
func (s *SQLiteStore) resolveRoot() error {
	var top []uint32
	err := s.db.Select(&top, "SELECT id FROM folders WHERE parent_id IS NULL ORDER BY id")
	if err != nil {
		return fmt.Errorf("listing top-level folders: %w", err)
	}
	if len(top) == 1 {
		s.root = top[0]
		return nil
	}
	s.root = syntheticRoot
	s.topLevel = top
	return nil
}

// RootFolderID returns the archive's root folder identifier.
func (s *SQLiteStore) RootFolderID() uint32 {
	return s.root
}

// OpenFolder loads a folder row with its message and child identifiers.
func (s *SQLiteStore) OpenFolder(ctx context.Context, id uint32) (*Folder, error) {
	if id == syntheticRoot && s.root == syntheticRoot {
		return &Folder{
			ID:       syntheticRoot,
			Name:     "Archive",
			Children: append([]uint32(nil), s.topLevel...),
		}, nil
	}

	f := &Folder{ID: id}
	err := s.db.GetContext(ctx, &f.Name, "SELECT name FROM folders WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("opening folder %d: %w", id, ErrFolderNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("opening folder %d: %w", id, err)
	}

	err = s.db.SelectContext(ctx, &f.Contents,
		"SELECT id FROM messages WHERE folder_id = ? ORDER BY id", id)
	if err != nil {
		return nil, fmt.Errorf("listing messages of folder %d: %w", id, err)
	}

	err = s.db.SelectContext(ctx, &f.Children,
		"SELECT id FROM folders WHERE parent_id = ? ORDER BY id", id)
	if err != nil {
		return nil, fmt.Errorf("listing children of folder %d: %w", id, err)
	}

	return f, nil
}

// OpenMessage selects only the columns backing the requested properties.
func (s *SQLiteStore) OpenMessage(
	ctx context.Context, id uint32, props []model.PropertyID,
) (model.PropertySet, error) {
	if props == nil {
		props = propertyOrder
	}

	var wanted []model.PropertyID
	names := []string{"id"}
	for _, p := range props {
		col, ok := messageColumns[p]
		if !ok {
			continue
		}
		wanted = append(wanted, p)
		names = append(names, col.name)
	}

	var rowID int64
	dests := []any{&rowID}
	for _, p := range wanted {
		switch messageColumns[p].kind {
		case columnBlob:
			dests = append(dests, new([]byte))
		case columnInt:
			dests = append(dests, new(sql.NullInt64))
		default:
			dests = append(dests, new(sql.NullString))
		}
	}

	query := "SELECT " + strings.Join(names, ", ") + " FROM messages WHERE id = ?"
	err := s.db.QueryRowxContext(ctx, query, id).Scan(dests...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("opening message %d: %w", id, ErrMessageNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("opening message %d: %w", id, err)
	}

	set := make(model.PropertySet, len(wanted))
	for i, p := range wanted {
		switch d := dests[i+1].(type) {
		case *[]byte:
			if *d != nil {
				set[p] = model.BinaryValue(*d)
			}
		case *sql.NullInt64:
			if d.Valid {
				set[p] = model.IntegerValue(d.Int64)
			}
		case *sql.NullString:
			if !d.Valid {
				continue
			}
			if messageColumns[p].kind == columnTime {
				if t, err := time.Parse(timeLayout, d.String); err == nil {
					set[p] = model.TimestampValue(t)
				}
				continue
			}
			set[p] = model.StringValue(d.String)
		}
	}

	return set, nil
}

// InsertFolder adds a folder. A parent of 0 creates a top-level folder.
func (s *SQLiteStore) InsertFolder(
	ctx context.Context, parent uint32, name, path string,
) (uint32, error) {
	var parentID any
	if parent != syntheticRoot {
		parentID = parent
	}

	result, err := s.db.ExecContext(ctx,
		"INSERT INTO folders (parent_id, name, path) VALUES (?, ?, ?)",
		parentID, name, path,
	)
	if err != nil {
		return 0, fmt.Errorf("inserting folder %q: %w", path, err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reading folder id for %q: %w", path, err)
	}
	if parent == syntheticRoot {
		if err := s.resolveRoot(); err != nil {
			return 0, err
		}
	}
	return uint32(id), nil
}

// InsertMessage stores a message's properties under folder.
func (s *SQLiteStore) InsertMessage(
	ctx context.Context, folder uint32, props model.PropertySet,
) (uint32, error) {
	class := props.String(model.PropMessageClass)
	if class == "" {
		class = model.DefaultMessageClass
	}

	var attachments int64
	if v, ok := props.Property(model.PropAttachCount); ok {
		attachments, _ = v.Int()
	}

	const query = `
		INSERT INTO messages (
			folder_id, message_class, subject, sender,
			to_recipients, cc_recipients, submit_time, delivery_time,
			body_text, body_html, body_rtf, attachment_count
		) VALUES (
			?, ?, ?, ?,
			?, ?, ?, ?,
			?, ?, ?, ?
		)`

	result, err := s.db.ExecContext(ctx, query,
		folder, class,
		nullString(props, model.PropSubject),
		nullString(props, model.PropSenderName),
		nullString(props, model.PropDisplayTo),
		nullString(props, model.PropDisplayCc),
		nullTime(props, model.PropClientSubmitTime),
		nullTime(props, model.PropMessageDeliveryTime),
		nullString(props, model.PropBody),
		nullBytes(props, model.PropBodyHTML),
		nullBytes(props, model.PropRTFCompressed),
		attachments,
	)
	if err != nil {
		return 0, fmt.Errorf("inserting message into folder %d: %w", folder, err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reading message id: %w", err)
	}
	return uint32(id), nil
}

func nullString(props model.PropertySet, id model.PropertyID) any {
	v, ok := props.Property(id)
	if !ok {
		return nil
	}
	if s, ok := v.AsString(); ok {
		return s
	}
	return nil
}

func nullTime(props model.PropertySet, id model.PropertyID) any {
	if t, ok := props.Time(id); ok {
		return t.UTC().Format(timeLayout)
	}
	return nil
}

// nullBytes accepts both string and binary values; HTML bodies arrive as
// either depending on the source.
func nullBytes(props model.PropertySet, id model.PropertyID) any {
	v, ok := props.Property(id)
	if !ok {
		return nil
	}
	if b, ok := v.Bytes(); ok {
		return b
	}
	if s, ok := v.AsString(); ok {
		return []byte(s)
	}
	return nil
}
