// Copyright © 2026 Icebox contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: format/format.go
// Summary: Shared save options and sentinel errors for the file codecs.
// Usage: Fill a SaveOptions and pass it to EncodeANSI or EncodeXBin.

package format

import "errors"

var (
	// ErrTooShort is returned when a file is smaller than its header.
	ErrTooShort = errors.New("format: file too short")
	// ErrBadMagic is returned when a file does not start with the
	// expected magic bytes.
	ErrBadMagic = errors.New("format: magic bytes mismatch")
)

// ScreenPrep selects the escape sequence emitted before the first cell.
type ScreenPrep uint8

const (
	PrepNone ScreenPrep = iota
	PrepClearScreen
	PrepHome
)

// ControlCharHandling decides what happens to cells whose character is
// itself a control byte (ESC, BEL, CR, ...).
type ControlCharHandling uint8

const (
	// ControlIgnore writes the byte as-is.
	ControlIgnore ControlCharHandling = iota
	// ControlEscapePrefix writes ESC before the byte so terminals
	// treat it as a literal glyph.
	ControlEscapePrefix
	// ControlFilterOut replaces the byte with a dot.
	ControlFilterOut
)

// SaveOptions steers both codecs. The zero value produces a plain,
// uncompressed, classic-terminal file.
type SaveOptions struct {
	ScreenPreparation ScreenPrep

	// Compress enables trailing-blank trimming and run-length output
	// for ANSI, and the adaptive RLE stream for XBin.
	Compress bool

	// PreserveLineLength disables trailing-blank trimming even when
	// Compress is set.
	PreserveLineLength bool

	// UseCursorForward allows blank runs to be encoded as ESC[nC.
	UseCursorForward bool

	// UseRepeatSequences allows character runs to be encoded as ESC[nb.
	UseRepeatSequences bool

	// ModernTerminal emits a UTF-8 BOM, converts CP437 glyphs to
	// Unicode and terminates lines with plain LF.
	ModernTerminal bool

	// UseExtendedColors maps palette colors through the xterm 256
	// table (SGR 38;5/48;5) before falling back to 24-bit sequences.
	UseExtendedColors bool

	// OutputLineLength chunks output lines to at most this many bytes,
	// 0 means unlimited.
	OutputLineLength int

	ControlChars ControlCharHandling

	// Sauce, when set, is appended as the trailing metadata record.
	Sauce *Sauce
}

// DefaultSaveOptions matches what BBS-era tooling expects: classic
// terminal output with cursor-forward runs allowed.
func DefaultSaveOptions() SaveOptions {
	return SaveOptions{UseCursorForward: true}
}
