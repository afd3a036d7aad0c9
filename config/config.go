// Copyright © 2026 Icebox contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: config/config.go
// Summary: TOML configuration for the icebox commands. Defaults live
//          in code; the file only overrides them.
// Usage: Loaded once at command startup.

package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config is the root of the icebox.toml file.
type Config struct {
	Screen  ScreenConfig  `toml:"screen"`
	Capture CaptureConfig `toml:"capture"`
	Log     LogConfig     `toml:"log"`
}

// ScreenConfig sets the default terminal dimensions and color mode.
type ScreenConfig struct {
	Width     int  `toml:"width"`
	Height    int  `toml:"height"`
	IceColors bool `toml:"ice_colors"`
}

// CaptureConfig controls session recording.
type CaptureConfig struct {
	Enabled bool   `toml:"enabled"`
	DBPath  string `toml:"db_path"`
}

// LogConfig sets the console log level.
type LogConfig struct {
	Level string `toml:"level"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Screen:  ScreenConfig{Width: 80, Height: 25},
		Capture: CaptureConfig{DBPath: defaultCapturePath()},
		Log:     LogConfig{Level: "info"},
	}
}

// DefaultPath returns the expected location of icebox.toml.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "icebox.toml"
	}
	return filepath.Join(dir, "icebox", "icebox.toml")
}

func defaultCapturePath() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return "icebox-capture.db"
	}
	return filepath.Join(dir, "icebox", "capture.db")
}

// Load reads path over the defaults. A missing file is an error;
// use LoadOrDefault for the optional lookup.
func Load(path string) (Config, error) {
	cfg := Default()
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Config{}, fmt.Errorf("config load failed (%s): %w", path, err)
	}
	if err := Validate(cfg); err != nil {
		return Config{}, fmt.Errorf("config invalid (%s): %w", path, err)
	}
	return cfg, nil
}

// LoadOrDefault loads DefaultPath when present and falls back to the
// defaults when it is not.
func LoadOrDefault() (Config, error) {
	path := DefaultPath()
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return Config{}, fmt.Errorf("config stat failed (%s): %w", path, err)
	}
	return Load(path)
}

// Validate rejects settings the commands cannot run with.
func Validate(cfg Config) error {
	if cfg.Screen.Width < 1 || cfg.Screen.Width > 4096 {
		return fmt.Errorf("screen width %d out of range 1..4096", cfg.Screen.Width)
	}
	if cfg.Screen.Height < 1 || cfg.Screen.Height > 4096 {
		return fmt.Errorf("screen height %d out of range 1..4096", cfg.Screen.Height)
	}
	switch cfg.Log.Level {
	case "trace", "debug", "info", "warn", "error", "fatal", "panic", "disabled", "":
	default:
		return fmt.Errorf("unknown log level %q", cfg.Log.Level)
	}
	if cfg.Capture.Enabled && cfg.Capture.DBPath == "" {
		return fmt.Errorf("capture enabled without a db_path")
	}
	return nil
}
