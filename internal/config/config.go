package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	yaml "go.yaml.in/yaml/v3"
)

// Config is the full runtime configuration.
//
// Resolution order: built-in defaults, then the optional YAML config file,
// then environment variables. Env always wins so container deployments can
// override a baked-in file.
type Config struct {
	Telegram TelegramConfig `yaml:"telegram"`
	Feeds    FeedsConfig    `yaml:"feeds"`
	Logging  LoggingConfig  `yaml:"logging"`
}

type TelegramConfig struct {
	Token  string `yaml:"token"`
	ChatID int64  `yaml:"chat_id"`

	// DisableNotification sends messages silently (no client-side sound).
	DisableNotification bool `yaml:"disable_notification"`
}

type FeedsConfig struct {
	// ListFile is the newline-delimited feed URL file.
	ListFile string `yaml:"list_file"`

	// HistoryFile persists the per-feed seen-item sets between runs.
	HistoryFile string `yaml:"history_file"`

	// CheckInterval is a Go duration string (e.g. "30m", "1h").
	CheckInterval string `yaml:"check_interval"`

	// FetchTimeout bounds a single feed fetch. Go duration string.
	FetchTimeout string `yaml:"fetch_timeout"`

	IncludeDescription bool `yaml:"include_description"`
}

type LoggingConfig struct {
	Level   string      `yaml:"level"`
	Console bool        `yaml:"console"`
	File    LoggingFile `yaml:"file"`
}

type LoggingFile struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

const (
	defaultListFile      = "./data/feeds.txt"
	defaultHistoryFile   = "./data/sent_items.json"
	defaultCheckInterval = time.Hour
	defaultFetchTimeout  = 30 * time.Second
)

func Default() Config {
	return Config{
		Feeds: FeedsConfig{
			ListFile:    defaultListFile,
			HistoryFile: defaultHistoryFile,
		},
		Logging: LoggingConfig{Level: "info", Console: true},
	}
}

// Load builds the effective config. path may be empty (no config file);
// a named file that is missing is an error, so typos don't silently fall
// back to defaults.
func Load(path string) (Config, error) {
	cfg := Default()

	if strings.TrimSpace(path) != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
		dec := yaml.NewDecoder(bytes.NewReader(b))
		dec.KnownFields(true)
		if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// applyEnv overlays the environment variable contract onto cfg.
// CHECK_INTERVAL is plain seconds for compatibility with existing
// deployments, but also accepts Go duration strings.
func (c *Config) applyEnv() error {
	if v, ok := os.LookupEnv("TELEGRAM_BOT_TOKEN"); ok {
		c.Telegram.Token = strings.TrimSpace(v)
	}
	if v, ok := os.LookupEnv("TELEGRAM_CHAT_ID"); ok {
		id, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return fmt.Errorf("TELEGRAM_CHAT_ID: invalid chat id %q: %w", v, err)
		}
		c.Telegram.ChatID = id
	}
	if v, ok := os.LookupEnv("CHECK_INTERVAL"); ok {
		c.Feeds.CheckInterval = strings.TrimSpace(v)
	}
	if v, ok := os.LookupEnv("FEEDS_FILE"); ok {
		c.Feeds.ListFile = strings.TrimSpace(v)
	}
	if v, ok := os.LookupEnv("HISTORY_FILE"); ok {
		c.Feeds.HistoryFile = strings.TrimSpace(v)
	}
	if v, ok := os.LookupEnv("INCLUDE_DESCRIPTION"); ok {
		c.Feeds.IncludeDescription = parseBool(v)
	}
	if v, ok := os.LookupEnv("DISABLE_NOTIFICATION"); ok {
		c.Telegram.DisableNotification = parseBool(v)
	}
	if v, ok := os.LookupEnv("LOG_LEVEL"); ok {
		c.Logging.Level = strings.TrimSpace(v)
	}
	return nil
}

func parseBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}

// Validate checks the startup-fatal conditions. Missing Telegram credentials
// is the only error that stops the process before the poll loop.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Telegram.Token) == "" {
		return errors.New("telegram.token is required (set TELEGRAM_BOT_TOKEN)")
	}
	if c.Telegram.ChatID == 0 {
		return errors.New("telegram.chat_id is required (set TELEGRAM_CHAT_ID)")
	}
	if strings.TrimSpace(c.Feeds.ListFile) == "" {
		return errors.New("feeds.list_file must not be empty")
	}
	if strings.TrimSpace(c.Feeds.HistoryFile) == "" {
		return errors.New("feeds.history_file must not be empty")
	}
	return nil
}

// CheckInterval resolves the configured poll interval.
func (c Config) CheckInterval() (time.Duration, error) {
	return parseIntervalOrDefault("feeds.check_interval", c.Feeds.CheckInterval, defaultCheckInterval)
}

// FetchTimeout resolves the per-feed fetch timeout.
func (c Config) FetchTimeout() (time.Duration, error) {
	return ParseDurationOrDefault("feeds.fetch_timeout", c.Feeds.FetchTimeout, defaultFetchTimeout)
}
