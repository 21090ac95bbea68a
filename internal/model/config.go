package model

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Archive kinds understood by store.Open.
const (
	KindSQLite  = "sqlite"
	KindMaildir = "maildir"
	KindMbox    = "mbox"
	KindIMAP    = "imap"
)

// ArchiveConfig selects the archive to browse.
type ArchiveConfig struct {
	// Kind is one of "sqlite", "maildir", "mbox" or "imap". Empty means
	// detect from Path.
	Kind string `mapstructure:"kind" yaml:"kind"`

	// Path is the archive file or directory. Unused for IMAP.
	Path string `mapstructure:"path" yaml:"path"`
}

// IMAPConfig holds the account used when Kind is "imap".
type IMAPConfig struct {
	Host     string `mapstructure:"host" yaml:"host"`
	Port     string `mapstructure:"port" yaml:"port"`
	Username string `mapstructure:"username" yaml:"username"`
	TLS      bool   `mapstructure:"tls" yaml:"tls"`
}

// DisplayConfig holds UI/rendering preferences.
type DisplayConfig struct {
	// ShowFolders enables the folder pane.
	ShowFolders bool `mapstructure:"show_folders" yaml:"show_folders"`

	// Columns lists the visible message list columns in order
	// (from, to, cc, subject, date).
	Columns []string `mapstructure:"columns" yaml:"columns"`

	// ListPercent is the share of the content height given to the
	// message list.
	ListPercent int `mapstructure:"list_percent" yaml:"list_percent"`

	// TickMS is the input poll interval in milliseconds.
	TickMS int `mapstructure:"tick_ms" yaml:"tick_ms"`
}

// LogConfig controls the diagnostic log files.
type LogConfig struct {
	Level     string `mapstructure:"level" yaml:"level"`
	File      string `mapstructure:"file" yaml:"file"`
	Debug     bool   `mapstructure:"debug" yaml:"debug"`
	DebugFile string `mapstructure:"debug_file" yaml:"debug_file"`
}

// AppConfig is the top-level application configuration.
type AppConfig struct {
	Archive ArchiveConfig `mapstructure:"archive" yaml:"archive"`
	IMAP    IMAPConfig    `mapstructure:"imap" yaml:"imap"`
	Display DisplayConfig `mapstructure:"display" yaml:"display"`
	Log     LogConfig     `mapstructure:"log" yaml:"log"`
}

// DefaultColumns is the column set shown when none is configured.
var DefaultColumns = []string{"from", "to", "subject", "date"}

// DefaultConfigPath returns the default path for the configuration file,
// located at ~/.config/mailbrowse/config.yaml.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "config.yaml")
	}
	return filepath.Join(home, ".config", "mailbrowse", "config.yaml")
}

// defaultAppConfig returns a sensible default configuration.
func defaultAppConfig() *AppConfig {
	return &AppConfig{
		IMAP: IMAPConfig{
			Port: "993",
			TLS:  true,
		},
		Display: DisplayConfig{
			Columns:     append([]string(nil), DefaultColumns...),
			ListPercent: 35,
			TickMS:      100,
		},
		Log: LogConfig{
			Level:     "info",
			DebugFile: "mailbrowse-debug.log",
		},
	}
}

// LoadConfig reads configuration from the given YAML file path using Viper.
// If the file does not exist, it returns a default configuration.
func LoadConfig(path string) (*AppConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	// Set defaults so missing keys resolve to sensible values.
	v.SetDefault("imap.port", "993")
	v.SetDefault("imap.tls", true)
	v.SetDefault("display.columns", DefaultColumns)
	v.SetDefault("display.list_percent", 35)
	v.SetDefault("display.tick_ms", 100)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.debug_file", "mailbrowse-debug.log")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(*os.PathError); ok {
			return defaultAppConfig(), nil
		}
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return defaultAppConfig(), nil
		}
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	cfg := defaultAppConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if cfg.Display.ListPercent <= 0 || cfg.Display.ListPercent >= 100 {
		cfg.Display.ListPercent = 35
	}
	if cfg.Display.TickMS <= 0 {
		cfg.Display.TickMS = 100
	}

	return cfg, nil
}

// SaveConfig writes the given configuration to a YAML file at path,
// creating parent directories if needed.
func SaveConfig(path string, cfg *AppConfig) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.Set("archive", cfg.Archive)
	v.Set("imap", cfg.IMAP)
	v.Set("display", cfg.Display)
	v.Set("log", cfg.Log)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}

	return nil
}
