package store

// migration holds a single schema migration with its target version and SQL.
type migration struct {
	version int
	sql     string
}

// migrations is the ordered list of archive schema migrations.
// Each migration's version must be sequential starting from 1.
// The tables match the layout written by PST exporters, so exported
// databases open without conversion.
var migrations = []migration{
	{
		version: 1,
		sql: `
CREATE TABLE IF NOT EXISTS schema_version (
	version INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS folders (
	id        INTEGER PRIMARY KEY,
	parent_id INTEGER REFERENCES folders(id),
	name      TEXT NOT NULL,
	path      TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS messages (
	id               INTEGER PRIMARY KEY,
	folder_id        INTEGER NOT NULL REFERENCES folders(id),
	message_class    TEXT NOT NULL,
	subject          TEXT,
	sender           TEXT,
	to_recipients    TEXT,
	cc_recipients    TEXT,
	submit_time      TEXT,
	delivery_time    TEXT,
	body_text        TEXT,
	body_html        TEXT,
	body_rtf         BLOB,
	attachment_count INTEGER DEFAULT 0
);

CREATE TABLE IF NOT EXISTS attachments (
	id           INTEGER PRIMARY KEY,
	message_id   INTEGER NOT NULL REFERENCES messages(id),
	filename     TEXT,
	content_type TEXT,
	size         INTEGER,
	data         BLOB
);

INSERT INTO schema_version (version) VALUES (1);
`,
	},
	{
		version: 2,
		sql: `
CREATE INDEX IF NOT EXISTS idx_messages_folder ON messages(folder_id);
CREATE INDEX IF NOT EXISTS idx_messages_class  ON messages(message_class);
CREATE INDEX IF NOT EXISTS idx_messages_sender ON messages(sender);
CREATE INDEX IF NOT EXISTS idx_messages_submit ON messages(submit_time);
CREATE INDEX IF NOT EXISTS idx_folders_parent  ON folders(parent_id);
CREATE INDEX IF NOT EXISTS idx_attachments_msg ON attachments(message_id);

INSERT INTO schema_version (version) VALUES (2);
`,
	},
}
