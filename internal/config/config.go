// Package config handles bfi.toml run configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// FileName is the configuration file looked up by FindAndLoad.
const FileName = "bfi.toml"

// Config is a bfi.toml file.
type Config struct {
	Run     Run     `toml:"run"`
	Journal Journal `toml:"journal"`
	Log     Log     `toml:"log"`

	// Path is the file the config was read from (set at load time).
	Path string `toml:"-"`
}

// Run configures how programs are prepared and driven.
type Run struct {
	Minify            bool `toml:"minify"`
	DirectStart       bool `toml:"direct_start"`
	StartSuperSpeed   bool `toml:"start_super_speed"`
	EnableBreakpoints bool `toml:"enable_breakpoints"`
	ASCIIView         bool `toml:"ascii_view"`
	Speed             int  `toml:"speed"`
	TapeSize          int  `toml:"tape_size"`
}

// Journal configures the run journal.
type Journal struct {
	Path string `toml:"path"`
}

// Log configures logging.
type Log struct {
	Level string `toml:"level"`
	File  string `toml:"file"`
}

// Default returns the configuration used when no file is found.
func Default() *Config {
	return &Config{
		Run: Run{
			Speed:    10,
			TapeSize: 32000,
		},
		Log: Log{
			Level: "warn",
		},
	}
}

// Load parses the file at path on top of the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	c := Default()
	if _, err := toml.Decode(string(data), c); err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	c.Path = path
	return c, nil
}

// FindAndLoad walks up from startDir looking for bfi.toml. It returns the
// defaults if none is found.
func FindAndLoad(startDir string) (*Config, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return nil, err
	}

	for {
		path := filepath.Join(dir, FileName)
		if _, err := os.Stat(path); err == nil {
			return Load(path)
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return Default(), nil
		}
		dir = parent
	}
}

// Validate rejects values no run can use.
func (c *Config) Validate() error {
	if c.Run.TapeSize <= 0 {
		return fmt.Errorf("tape_size must be positive, got %d", c.Run.TapeSize)
	}
	if c.Run.Speed < 0 {
		return fmt.Errorf("speed must not be negative, got %d", c.Run.Speed)
	}
	switch c.Log.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log level %q", c.Log.Level)
	}
	return nil
}

// StartSpeed returns the speed a run should start at: 0 for paused, or a
// timed speed. super reports blocking mode, which outranks any speed.
func (r Run) StartSpeed() (speed int, super bool) {
	switch {
	case r.StartSuperSpeed:
		return 0, true
	case r.DirectStart:
		return 100, false
	default:
		return r.Speed, false
	}
}
