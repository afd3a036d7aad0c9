// Copyright © 2026 Icebox contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: internal/logging/logging.go
// Summary: Shared zerolog console logger for the icebox commands.
// Usage: Called once from each cmd's main.

package logging

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// New builds a console logger writing to stderr. level takes the
// config file's string form; unknown levels fall back to info.
func New(app, level string) zerolog.Logger {
	return NewWriter(os.Stderr, app, level)
}

// NewWriter is New with an explicit output, used by tests and by the
// viewer while tcell owns the terminal.
func NewWriter(out io.Writer, app, level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	console := zerolog.ConsoleWriter{
		Out:        out,
		TimeFormat: time.RFC3339,
	}
	return zerolog.New(console).With().Timestamp().Str("app", app).Logger().Level(lvl)
}
