// Package config handles runtime defaults and configuration file loading.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/LucaLeukert/toastd/internal/model"
)

// Duration is a time.Duration that can be unmarshaled from human-readable
// strings. Supports formats like "5s", "1m30s", or integer milliseconds.
// A value of "0" or 0 means never expire.
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler for TOML parsing.
func (d *Duration) UnmarshalText(text []byte) error {
	s := string(text)

	// Integer milliseconds for compatibility with the wire convention
	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		*d = Duration(time.Duration(ms) * time.Millisecond)
		return nil
	}

	dur, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: must be like '5s', '1m30s' or milliseconds: %w", s, err)
	}
	*d = Duration(dur)
	return nil
}

// MarshalText implements encoding.TextMarshaler for TOML output.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Duration returns the underlying time.Duration.
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// Default values applied when neither the caller nor the config file provides
// a field.
const (
	DefaultDuration     = 4 * time.Second
	DefaultDedupeWindow = 0 // dedupe disabled unless configured
	DefaultMaxVisible   = 3
	DefaultMaxQueue     = 16
)

// Config holds the global defaults for every optional toast field plus the
// queue capacity knobs.
type Config struct {
	Duration     Duration         `toml:"duration"`      // default auto-dismiss, 0 = never
	Edge         model.Edge       `toml:"edge"`          // default lane
	Size         model.Size       `toml:"size"`          // default size mode
	Haptics      bool             `toml:"haptics"`       // default haptics flag
	Announce     bool             `toml:"announce"`      // default accessibility announce flag
	Importance   model.Importance `toml:"importance"`    // default announcement importance
	Motion       model.Motion     `toml:"motion"`        // default motion preference
	DedupeWindow Duration         `toml:"dedupe_window"` // 0 disables deduplication
	MaxVisible   int              `toml:"max_visible"`   // simultaneous toasts per edge
	MaxQueue     int              `toml:"max_queue"`     // pending toasts per edge, 0 disables queuing
	DropPolicy   model.DropPolicy `toml:"drop_policy"`   // "oldest" or "newest"
}

// Default returns a Config with default values.
func Default() *Config {
	return &Config{
		Duration:     Duration(DefaultDuration),
		Edge:         model.EdgeBottom,
		Size:         model.SizeAuto,
		Haptics:      false,
		Announce:     true,
		Importance:   model.ImportanceNormal,
		Motion:       model.MotionAuto,
		DedupeWindow: Duration(DefaultDedupeWindow),
		MaxVisible:   DefaultMaxVisible,
		MaxQueue:     DefaultMaxQueue,
		DropPolicy:   model.DropOldest,
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Edge != model.EdgeTop && c.Edge != model.EdgeBottom {
		return fmt.Errorf("invalid edge %q, must be %q or %q", c.Edge, model.EdgeTop, model.EdgeBottom)
	}
	if c.DropPolicy != model.DropOldest && c.DropPolicy != model.DropNewest {
		return fmt.Errorf("invalid drop_policy %q, must be %q or %q", c.DropPolicy, model.DropOldest, model.DropNewest)
	}
	if c.MaxVisible < 1 {
		return fmt.Errorf("max_visible must be at least 1, got %d", c.MaxVisible)
	}
	if c.MaxQueue < 0 {
		return fmt.Errorf("max_queue must not be negative, got %d", c.MaxQueue)
	}
	if c.DedupeWindow < 0 {
		return fmt.Errorf("dedupe_window must not be negative, got %s", c.DedupeWindow.Duration())
	}
	return nil
}

// ConfigPath returns the path to the config file.
// Uses XDG_CONFIG_HOME if set, otherwise ~/.config.
func ConfigPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, "toastd", "config.toml")
}

// Load loads configuration from the specified path.
// If path is empty, uses the default config path.
// Returns default config if the file doesn't exist.
func Load(path string) (*Config, error) {
	if path == "" {
		path = ConfigPath()
	}

	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, err
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Save writes the configuration to the specified path.
// Creates parent directories if needed.
func (c *Config) Save(path string) error {
	if path == "" {
		path = ConfigPath()
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := toml.Marshal(c)
	if err != nil {
		return err
	}

	// Write atomically via temp file
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmpPath, path)
}
