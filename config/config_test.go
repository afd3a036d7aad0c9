// Copyright © 2026 Icebox contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: config/config_test.go
// Summary: Default merge and validation behavior of the TOML config.
// Usage: Executed during `go test`.

package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "icebox.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadMergesOverDefaults(t *testing.T) {
	path := writeConfig(t, `
[screen]
width = 132
ice_colors = true

[log]
level = "debug"
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Screen.Width != 132 {
		t.Fatalf("width: %d", cfg.Screen.Width)
	}
	if cfg.Screen.Height != 25 {
		t.Fatalf("default height lost: %d", cfg.Screen.Height)
	}
	if !cfg.Screen.IceColors {
		t.Fatalf("ice_colors not applied")
	}
	if cfg.Log.Level != "debug" {
		t.Fatalf("level: %q", cfg.Log.Level)
	}
	if cfg.Capture.DBPath == "" {
		t.Fatalf("default capture path lost")
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	cases := []string{
		"[screen]\nwidth = 0\n",
		"[screen]\nheight = 5000\n",
		"[log]\nlevel = \"loud\"\n",
		"[capture]\nenabled = true\ndb_path = \"\"\n",
	}
	for _, body := range cases {
		if _, err := Load(writeConfig(t, body)); err == nil {
			t.Fatalf("accepted %q", body)
		}
	}
}

func TestLoadRejectsBadSyntax(t *testing.T) {
	if _, err := Load(writeConfig(t, "[screen\nwidth = 1")); err == nil {
		t.Fatalf("accepted broken TOML")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.toml")); err == nil {
		t.Fatalf("missing file accepted")
	}
}

func TestDefaultsValidate(t *testing.T) {
	if err := Validate(Default()); err != nil {
		t.Fatalf("defaults invalid: %v", err)
	}
}
