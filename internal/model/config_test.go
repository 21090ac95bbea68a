package model

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, DefaultColumns, cfg.Display.Columns)
	assert.Equal(t, 35, cfg.Display.ListPercent)
	assert.Equal(t, 100, cfg.Display.TickMS)
	assert.Equal(t, "mailbrowse-debug.log", cfg.Log.DebugFile)
	assert.Equal(t, "993", cfg.IMAP.Port)
}

func TestLoadConfigReadsYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := `archive:
  kind: maildir
  path: /srv/mail
display:
  show_folders: true
  columns: [from, cc, subject]
  list_percent: 150
log:
  level: debug
  debug: true
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, KindMaildir, cfg.Archive.Kind)
	assert.Equal(t, "/srv/mail", cfg.Archive.Path)
	assert.True(t, cfg.Display.ShowFolders)
	assert.Equal(t, []string{"from", "cc", "subject"}, cfg.Display.Columns)
	assert.Equal(t, 35, cfg.Display.ListPercent, "out of range percent falls back")
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.True(t, cfg.Log.Debug)
	assert.Equal(t, "mailbrowse-debug.log", cfg.Log.DebugFile)
}

func TestLoadConfigRejectsMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("archive: [unclosed"), 0o644))

	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestSaveConfigRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := defaultAppConfig()
	cfg.Archive = ArchiveConfig{Kind: KindMbox, Path: "/tmp/archive.mbox"}

	require.NoError(t, SaveConfig(path, cfg))

	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, cfg.Archive, loaded.Archive)
	assert.Equal(t, cfg.Display.Columns, loaded.Display.Columns)
}
