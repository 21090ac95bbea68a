// Package picker asks for the archive to open when none is configured.
package picker

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/nhle/mailbrowse/internal/model"
)

// Choice holds the answers of the picker form.
type Choice struct {
	Kind     string
	Path     string
	Host     string
	Port     string
	Username string
	Password string
	TLS      bool

	// Remember saves the choice to the config file and the password to
	// the keyring.
	Remember bool
}

// NewChoice seeds the answers from cfg.
func NewChoice(cfg *model.AppConfig) *Choice {
	kind := cfg.Archive.Kind
	if kind == "" {
		kind = model.KindMaildir
	}
	port := cfg.IMAP.Port
	if port == "" {
		port = "993"
	}
	return &Choice{
		Kind:     kind,
		Path:     cfg.Archive.Path,
		Host:     cfg.IMAP.Host,
		Port:     port,
		Username: cfg.IMAP.Username,
		TLS:      cfg.IMAP.TLS,
		Remember: true,
	}
}

// IsIMAP reports whether the chosen archive is an IMAP account.
func (c *Choice) IsIMAP() bool {
	return c.Kind == model.KindIMAP
}

// NewForm builds the picker form writing into c.
func NewForm(c *Choice) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Archive type").
				Options(
					huh.NewOption("Maildir - directory with cur/new/tmp", model.KindMaildir),
					huh.NewOption("mbox - single file or Thunderbird folder tree", model.KindMbox),
					huh.NewOption("SQLite archive - database written by mailbrowse import", model.KindSQLite),
					huh.NewOption("IMAP - remote account, read-only", model.KindIMAP),
				).
				Value(&c.Kind),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Archive path").
				Description("File or directory to browse").
				Placeholder("~/Mail").
				Value(&c.Path).
				Validate(validatePath),
		).WithHideFunc(c.IsIMAP),
		huh.NewGroup(
			huh.NewInput().
				Title("IMAP Host").
				Placeholder("imap.example.com").
				Value(&c.Host).
				Validate(validateRequired("IMAP Host")),
			huh.NewInput().
				Title("IMAP Port").
				Placeholder("993").
				Value(&c.Port).
				Validate(validatePort),
			huh.NewInput().
				Title("Username").
				Placeholder("user@example.com").
				Value(&c.Username).
				Validate(validateRequired("Username")),
			huh.NewInput().
				Title("Password").
				Description("Stored in the system keyring when remembered").
				EchoMode(huh.EchoModePassword).
				Value(&c.Password).
				Validate(validateRequired("Password")),
			huh.NewConfirm().
				Title("Use TLS").
				Affirmative("Yes").
				Negative("No").
				Value(&c.TLS),
		).WithHideFunc(func() bool { return !c.IsIMAP() }),
		huh.NewGroup(
			huh.NewConfirm().
				Title("Remember this archive").
				Description("Save to the config file for next time").
				Affirmative("Yes").
				Negative("No").
				Value(&c.Remember),
		),
	)
}

// Apply copies the answers into cfg.
func (c *Choice) Apply(cfg *model.AppConfig) {
	cfg.Archive.Kind = c.Kind
	if c.IsIMAP() {
		cfg.Archive.Path = ""
		cfg.IMAP = model.IMAPConfig{
			Host:     strings.TrimSpace(c.Host),
			Port:     strings.TrimSpace(c.Port),
			Username: strings.TrimSpace(c.Username),
			TLS:      c.TLS,
		}
		return
	}
	cfg.Archive.Path = ExpandHome(strings.TrimSpace(c.Path))
}

// ExpandHome replaces a leading "~/" with the user's home directory.
func ExpandHome(path string) string {
	if !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return home + path[1:]
}

func validateRequired(fieldName string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", fieldName)
		}
		return nil
	}
}

func validatePath(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return fmt.Errorf("path is required")
	}
	if _, err := os.Stat(ExpandHome(s)); err != nil {
		return fmt.Errorf("cannot open %s", s)
	}
	return nil
}

func validatePort(s string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("port is required")
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return fmt.Errorf("port must be a number")
		}
	}
	return nil
}
