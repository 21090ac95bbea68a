// Package cli implements the mailbrowse command line.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/spf13/pflag"

	"github.com/nhle/mailbrowse/internal/app"
	"github.com/nhle/mailbrowse/internal/browser"
	"github.com/nhle/mailbrowse/internal/credential"
	"github.com/nhle/mailbrowse/internal/logging"
	"github.com/nhle/mailbrowse/internal/model"
	"github.com/nhle/mailbrowse/internal/stats"
	"github.com/nhle/mailbrowse/internal/store"
	"github.com/nhle/mailbrowse/internal/ui/picker"
)

// Subcommands.
const (
	CmdBrowse = "browse"
	CmdList   = "list"
	CmdSearch = "search"
	CmdStats  = "stats"
	CmdImport = "import"
)

var commands = map[string]bool{
	CmdBrowse: true,
	CmdList:   true,
	CmdSearch: true,
	CmdStats:  true,
	CmdImport: true,
}

// errUsage marks errors caused by bad arguments.
var errUsage = errors.New("usage")

// stdoutIsTerminal reports whether the TUI can take over stdout.
var stdoutIsTerminal = func() bool {
	fd := os.Stdout.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

type options struct {
	command    string
	args       []string
	configPath string
	kind       string
	debug      bool
	logLevel   string
	limit      int
	folder     string
	out        string
}

// Run executes the command line args (without the program name) and
// returns the process exit status.
func Run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	opts, err := parseArgs(args, stderr)
	if errors.Is(err, pflag.ErrHelp) {
		return 0
	}
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 2
	}

	cfg, err := model.LoadConfig(opts.configPath)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	if err := opts.apply(cfg); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 2
	}

	session := openSession(cfg, stderr)
	defer session.Close()
	ctx = session.Logger.WithContext(ctx)

	if err := run(ctx, opts, cfg, session, stdout); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Str("command", opts.command).Msg("command failed")
		fmt.Fprintf(stderr, "Error: %v\n", err)
		if errors.Is(err, errUsage) {
			return 2
		}
		return 1
	}
	return 0
}

func parseArgs(args []string, stderr io.Writer) (*options, error) {
	opts := &options{}

	fs := pflag.NewFlagSet("mailbrowse", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVarP(&opts.configPath, "config", "c", model.DefaultConfigPath(), "configuration file")
	fs.StringVarP(&opts.kind, "kind", "k", "", "archive kind: sqlite, maildir, mbox or imap (default: detect)")
	fs.BoolVarP(&opts.debug, "debug", "d", false, "write key presses to the debug event log")
	fs.StringVar(&opts.logLevel, "log-level", "", "log level: trace, debug, info, warn or error")
	fs.IntVarP(&opts.limit, "limit", "n", 0, "print at most this many messages (0 means all)")
	fs.StringVarP(&opts.folder, "folder", "f", "", "list only this folder, by name or path")
	fs.StringVarP(&opts.out, "out", "o", "", "destination SQLite archive for import")
	fs.Usage = func() {
		fmt.Fprintln(stderr, "Usage: mailbrowse [browse|list|search|stats|import] [flags] [archive]")
		fmt.Fprintln(stderr, "       mailbrowse search [flags] <query> [archive]")
		fmt.Fprintln(stderr)
		fmt.Fprintln(stderr, "Flags:")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	rest := fs.Args()
	opts.command = CmdBrowse
	if len(rest) > 0 && commands[rest[0]] {
		opts.command = rest[0]
		rest = rest[1:]
	}
	opts.args = rest

	if opts.limit < 0 {
		return nil, fmt.Errorf("--limit must not be negative")
	}
	return opts, nil
}

// apply lays the command line over the loaded configuration.
func (o *options) apply(cfg *model.AppConfig) error {
	archive := o.args
	if o.command == CmdSearch {
		if len(archive) == 0 {
			return fmt.Errorf("search needs a query")
		}
		archive = archive[1:]
	}
	switch len(archive) {
	case 0:
	case 1:
		cfg.Archive.Path = picker.ExpandHome(archive[0])
		if o.kind == "" && cfg.Archive.Kind == model.KindIMAP {
			cfg.Archive.Kind = ""
		}
	default:
		return fmt.Errorf("unexpected arguments: %s", strings.Join(archive[1:], " "))
	}

	if o.kind != "" {
		switch o.kind {
		case model.KindSQLite, model.KindMaildir, model.KindMbox, model.KindIMAP:
			cfg.Archive.Kind = o.kind
		default:
			return fmt.Errorf("unknown archive kind %q", o.kind)
		}
	}
	if o.logLevel != "" {
		cfg.Log.Level = o.logLevel
	}
	if o.debug {
		cfg.Log.Debug = true
	}
	return nil
}

// query returns the search query of a search command.
func (o *options) query() string {
	if len(o.args) == 0 {
		return ""
	}
	return o.args[0]
}

// openSession opens the diagnostic log. A log that cannot be opened is
// reported and replaced by a discarding one.
func openSession(cfg *model.AppConfig, stderr io.Writer) *logging.Session {
	path := cfg.Log.File
	if path == "" {
		path = logging.DefaultFile()
	}
	session, err := logging.New(path, cfg.Log.Level)
	if err != nil {
		fmt.Fprintf(stderr, "Warning: logging disabled: %v\n", err)
		return logging.Nop()
	}
	return session
}

func hasArchive(cfg *model.AppConfig) bool {
	if cfg.Archive.Kind == model.KindIMAP {
		return cfg.IMAP.Host != ""
	}
	return cfg.Archive.Path != ""
}

// sourceName labels the archive in headers and reports.
func sourceName(cfg *model.AppConfig) string {
	if cfg.Archive.Kind == model.KindIMAP {
		return fmt.Sprintf("%s@%s", cfg.IMAP.Username, cfg.IMAP.Host)
	}
	return cfg.Archive.Path
}

func run(
	ctx context.Context, opts *options, cfg *model.AppConfig, session *logging.Session, stdout io.Writer,
) error {
	interactive := opts.command == CmdBrowse && stdoutIsTerminal()

	if !hasArchive(cfg) {
		if !interactive {
			return fmt.Errorf("%w: no archive given", errUsage)
		}
		if err := pickArchive(ctx, cfg, opts.configPath); err != nil {
			return err
		}
	}

	s, err := openArchive(ctx, cfg)
	if err != nil {
		return err
	}
	defer s.Close()

	switch opts.command {
	case CmdBrowse:
		if !interactive {
			return List(ctx, stdout, s, ListOptions{Folder: opts.folder, Limit: opts.limit})
		}
		return browse(ctx, s, cfg, session)
	case CmdList:
		return List(ctx, stdout, s, ListOptions{Folder: opts.folder, Limit: opts.limit})
	case CmdSearch:
		return Search(ctx, stdout, s, opts.query(), opts.limit)
	case CmdStats:
		report, err := stats.Collect(ctx, s, s.RootFolderID())
		if err != nil {
			return fmt.Errorf("collecting stats: %w", err)
		}
		return report.Write(stdout, sourceName(cfg))
	case CmdImport:
		return importArchive(ctx, stdout, s, opts.out)
	}
	return fmt.Errorf("%w: unknown command %q", errUsage, opts.command)
}

// openArchive opens the store and its root folder. Either failing ends the
// session.
func openArchive(ctx context.Context, cfg *model.AppConfig) (store.MessageStore, error) {
	s, err := store.Open(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("cannot open archive: %w", err)
	}
	if _, err := s.OpenFolder(ctx, s.RootFolderID()); err != nil {
		s.Close()
		return nil, fmt.Errorf("cannot open root folder: %w", err)
	}
	zerolog.Ctx(ctx).Info().
		Str("kind", cfg.Archive.Kind).
		Str("source", sourceName(cfg)).
		Msg("archive opened")
	return s, nil
}

// pickArchive asks for the archive and optionally remembers the answer.
func pickArchive(ctx context.Context, cfg *model.AppConfig, configPath string) error {
	choice := picker.NewChoice(cfg)
	if err := picker.NewForm(choice).Run(); err != nil {
		return fmt.Errorf("choosing archive: %w", err)
	}
	choice.Apply(cfg)

	logger := zerolog.Ctx(ctx)
	if choice.IsIMAP() && choice.Password != "" {
		if choice.Remember {
			key := credential.IMAPKey(cfg.IMAP.Username, cfg.IMAP.Host)
			if err := credential.Set(key, choice.Password); err != nil {
				logger.Warn().Err(err).Msg("storing IMAP password")
			}
		}
		// store.Open reads the password from the environment first.
		_ = os.Setenv(credential.PasswordEnv, choice.Password)
	}

	if choice.Remember {
		if err := model.SaveConfig(configPath, cfg); err != nil {
			logger.Warn().Err(err).Str("path", configPath).Msg("saving config")
		}
	}
	return nil
}

func browse(ctx context.Context, s store.MessageStore, cfg *model.AppConfig, session *logging.Session) error {
	st := browser.New(ctx, s, browser.Options{ShowFolders: cfg.Display.ShowFolders})

	var keylog *logging.KeyLog
	if cfg.Log.Debug {
		kl, err := session.OpenKeyLog(cfg.Log.DebugFile)
		if err != nil {
			st.SetStatus(fmt.Sprintf("Could not open debug log: %v", err))
		} else {
			keylog = kl
			keylog.Event("[START] %d messages", st.Total())
		}
	}

	m := app.New(ctx, st, app.Options{
		Source:      sourceName(cfg),
		Columns:     cfg.Display.Columns,
		ListPercent: cfg.Display.ListPercent,
		Tick:        time.Duration(cfg.Display.TickMS) * time.Millisecond,
		KeyLog:      keylog,
	})

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running UI: %w", err)
	}
	keylog.Event("[EXIT]")
	return nil
}

func importArchive(ctx context.Context, stdout io.Writer, src store.MessageStore, out string) error {
	if out == "" {
		return fmt.Errorf("%w: import needs --out", errUsage)
	}
	dst, err := store.NewSQLiteStore(out)
	if err != nil {
		return fmt.Errorf("creating %s: %w", out, err)
	}
	defer dst.Close()

	res, err := store.Copy(ctx, dst, src)
	if err != nil {
		return fmt.Errorf("importing into %s: %w", out, err)
	}
	fmt.Fprintf(stdout, "Imported %d messages in %d folders into %s", res.Messages, res.Folders, out)
	if res.Skipped > 0 {
		fmt.Fprintf(stdout, " (%d unreadable items skipped)", res.Skipped)
	}
	fmt.Fprintln(stdout)
	return nil
}
