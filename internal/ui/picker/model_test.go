package picker

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/mailbrowse/internal/model"
)

func TestNewChoiceDefaults(t *testing.T) {
	c := NewChoice(&model.AppConfig{})

	assert.Equal(t, model.KindMaildir, c.Kind)
	assert.Equal(t, "993", c.Port)
	assert.True(t, c.Remember)
	assert.NotNil(t, NewForm(c))
}

func TestApplyPath(t *testing.T) {
	cfg := &model.AppConfig{IMAP: model.IMAPConfig{Host: "keep"}}
	c := &Choice{Kind: model.KindMbox, Path: " /tmp/archive.mbox "}

	c.Apply(cfg)

	assert.Equal(t, model.KindMbox, cfg.Archive.Kind)
	assert.Equal(t, "/tmp/archive.mbox", cfg.Archive.Path)
	assert.Equal(t, "keep", cfg.IMAP.Host)
}

func TestApplyIMAP(t *testing.T) {
	cfg := &model.AppConfig{Archive: model.ArchiveConfig{Path: "/old"}}
	c := &Choice{Kind: model.KindIMAP, Host: "mail.example.com", Port: "143", Username: "alice", TLS: false}

	c.Apply(cfg)

	assert.Equal(t, model.KindIMAP, cfg.Archive.Kind)
	assert.Empty(t, cfg.Archive.Path)
	assert.Equal(t, model.IMAPConfig{Host: "mail.example.com", Port: "143", Username: "alice"}, cfg.IMAP)
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(home, "Mail"), ExpandHome("~/Mail"))
	assert.Equal(t, "/abs", ExpandHome("/abs"))
}

func TestValidators(t *testing.T) {
	dir := t.TempDir()

	assert.NoError(t, validatePath(dir))
	assert.Error(t, validatePath(""))
	assert.Error(t, validatePath(filepath.Join(dir, "missing")))

	assert.NoError(t, validatePort("993"))
	assert.Error(t, validatePort("99a"))
	assert.Error(t, validatePort(" "))

	assert.Error(t, validateRequired("Host")(""))
}
