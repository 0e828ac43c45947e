// Package config loads editor settings from ~/.mockuprc and MOCKUP_*
// environment variables, in that order.
package config

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

const FileName = ".mockuprc"

type Config struct {
	SaveDirectory   string        `env:"MOCKUP_SAVE_DIRECTORY"`
	Store           string        `env:"MOCKUP_STORE"`
	Database        string        `env:"MOCKUP_DATABASE"`
	HistoryLimit    int           `env:"MOCKUP_HISTORY_LIMIT"`
	CoalesceWindow  time.Duration `env:"MOCKUP_COALESCE_WINDOW"`
	SaveDelay       time.Duration `env:"MOCKUP_SAVE_DELAY"`
	SaveRetry       time.Duration `env:"MOCKUP_SAVE_RETRY"`
	SaveTimeout     time.Duration `env:"MOCKUP_SAVE_TIMEOUT"`
	PasteOffset     float64       `env:"MOCKUP_PASTE_OFFSET"`
	PanStep         float64       `env:"MOCKUP_PAN_STEP"`
	SystemClipboard bool          `env:"MOCKUP_SYSTEM_CLIPBOARD"`
	LogFile         string        `env:"MOCKUP_LOG_FILE"`
}

func Default() Config {
	return Config{
		Store:           "sqlite",
		Database:        "mockup.db",
		HistoryLimit:    100,
		CoalesceWindow:  500 * time.Millisecond,
		SaveDelay:       2 * time.Second,
		SaveRetry:       5 * time.Second,
		SaveTimeout:     10 * time.Second,
		PasteOffset:     2,
		PanStep:         1,
		SystemClipboard: true,
	}
}

// Load reads ~/.mockuprc when it exists and applies environment overrides.
func Load() (Config, error) {
	cfg := Default()
	home, err := os.UserHomeDir()
	if err == nil {
		file, err := os.Open(filepath.Join(home, FileName))
		if err == nil {
			defer file.Close()
			if err := cfg.parse(file, home); err != nil {
				return cfg, fmt.Errorf("read %s: %w", FileName, err)
			}
		}
	}
	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("parse env: %w", err)
	}
	cfg.SaveDirectory = expandPath(cfg.SaveDirectory, home)
	cfg.LogFile = expandPath(cfg.LogFile, home)
	return cfg, cfg.Validate()
}

// parse applies key=value lines. Blank lines and # comments are skipped,
// unknown keys ignored.
func (c *Config) parse(r io.Reader, home string) error {
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.ToLower(strings.TrimSpace(key))
		value = strings.TrimSpace(value)

		if err := c.set(key, value, home); err != nil {
			return fmt.Errorf("line %d: %s: %w", lineNo, key, err)
		}
	}
	return scanner.Err()
}

func (c *Config) set(key, value, home string) error {
	var err error
	switch key {
	case "savedirectory", "save_directory", "savedir":
		c.SaveDirectory = expandPath(value, home)
	case "store":
		c.Store = strings.ToLower(value)
	case "database", "db":
		c.Database = expandPath(value, home)
	case "history_limit", "historylimit":
		c.HistoryLimit, err = strconv.Atoi(value)
	case "coalesce_window":
		c.CoalesceWindow, err = time.ParseDuration(value)
	case "save_delay":
		c.SaveDelay, err = time.ParseDuration(value)
	case "save_retry":
		c.SaveRetry, err = time.ParseDuration(value)
	case "save_timeout":
		c.SaveTimeout, err = time.ParseDuration(value)
	case "paste_offset":
		c.PasteOffset, err = strconv.ParseFloat(value, 64)
	case "pan_step":
		c.PanStep, err = strconv.ParseFloat(value, 64)
	case "system_clipboard", "clipboard":
		c.SystemClipboard, err = strconv.ParseBool(value)
	case "log_file", "logfile":
		c.LogFile = expandPath(value, home)
	}
	return err
}

func (c Config) Validate() error {
	switch c.Store {
	case "sqlite", "file":
	default:
		return fmt.Errorf("store must be sqlite or file, got %q", c.Store)
	}
	if c.HistoryLimit < 0 {
		return fmt.Errorf("history_limit must not be negative")
	}
	if c.SaveDelay < 0 || c.SaveRetry < 0 || c.SaveTimeout < 0 || c.CoalesceWindow < 0 {
		return fmt.Errorf("durations must not be negative")
	}
	if c.PanStep <= 0 {
		return fmt.Errorf("pan_step must be positive")
	}
	return nil
}

// StoreLocation is the database path for sqlite and the save directory
// for the file store. A relative database lives in the save directory.
func (c Config) StoreLocation() string {
	if c.Store == "file" {
		return c.SaveDirectory
	}
	if c.SaveDirectory == "" || filepath.IsAbs(c.Database) {
		return c.Database
	}
	return filepath.Join(c.SaveDirectory, c.Database)
}

// SavePath places an exported file in the save directory, creating it.
func (c Config) SavePath(filename string) string {
	if c.SaveDirectory == "" {
		return filename
	}
	os.MkdirAll(c.SaveDirectory, 0755)
	return filepath.Join(c.SaveDirectory, filename)
}

func expandPath(value, home string) string {
	if value == "" {
		return ""
	}
	if strings.HasPrefix(value, "~") && home != "" {
		value = filepath.Join(home, strings.TrimPrefix(value, "~"))
	}
	if !filepath.IsAbs(value) {
		if absPath, err := filepath.Abs(value); err == nil {
			value = absPath
		}
	}
	return value
}
