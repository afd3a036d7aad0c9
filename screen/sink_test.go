// Copyright © 2026 Icebox contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: screen/sink_test.go
// Summary: Drives the sink through the ANSI parser and checks the
//          resulting screen state: printing, SGR, modes and reports.
// Usage: Executed during `go test`.

package screen

import (
	"testing"

	"github.com/icebox-art/icebox/buffer"
	"github.com/icebox-art/icebox/parser"
)

func newAnsiScreen() (*TextScreen, *ScreenSink, *parser.AnsiParser) {
	scr := NewTextScreen(buffer.Size{Width: 80, Height: 25})
	return scr, NewSink(scr), parser.NewAnsiParser()
}

func TestSinkPrintsAtCursorPosition(t *testing.T) {
	scr, sink, p := newAnsiScreen()

	p.Parse([]byte("\x1b[3;10HAB"), sink)

	if ch := scr.CharAt(buffer.Pos(9, 2)); ch.Ch != 'A' {
		t.Fatalf("cell (9,2): %#v", ch)
	}
	if ch := scr.CharAt(buffer.Pos(10, 2)); ch.Ch != 'B' {
		t.Fatalf("cell (10,2): %#v", ch)
	}
	if pos := scr.Caret().Position; pos != buffer.Pos(11, 2) {
		t.Fatalf("caret after printing: %v", pos)
	}
}

func TestSinkSgrBoldAndColors(t *testing.T) {
	scr, sink, p := newAnsiScreen()

	p.Parse([]byte("\x1b[1;34;42mX"), sink)

	ch := scr.CharAt(buffer.Pos(0, 0))
	if !ch.Attribute.IsBold() {
		t.Fatalf("bold not set: %#v", ch.Attribute)
	}
	if ch.Attribute.ForegroundIndex() != 4 || ch.Attribute.BackgroundIndex() != 2 {
		t.Fatalf("colors: fg %d bg %d", ch.Attribute.ForegroundIndex(), ch.Attribute.BackgroundIndex())
	}

	p.Parse([]byte("\x1b[0mY"), sink)
	ch = scr.CharAt(buffer.Pos(1, 0))
	if ch.Attribute.IsBold() || ch.Attribute.ForegroundIndex() != 7 {
		t.Fatalf("reset attribute: %#v", ch.Attribute)
	}
}

func TestSinkIceColorsPromoteBlinkingBackground(t *testing.T) {
	scr, sink, p := newAnsiScreen()

	p.Parse([]byte("\x1b[?33h\x1b[5;44mX"), sink)

	ch := scr.CharAt(buffer.Pos(0, 0))
	if ch.Attribute.IsBlinking() {
		t.Fatalf("blink should convert to bright background")
	}
	if ch.Attribute.BackgroundIndex() != 12 {
		t.Fatalf("background: %d", ch.Attribute.BackgroundIndex())
	}
	// Without ice colors the blink flag is stored as-is.
	p.Parse([]byte("\x1b[?33l\x1b[5;44mY"), sink)
	ch = scr.CharAt(buffer.Pos(1, 0))
	if !ch.Attribute.IsBlinking() || ch.Attribute.BackgroundIndex() != 4 {
		t.Fatalf("non-ice attribute: %#v", ch.Attribute)
	}
}

func TestSinkInverseVideoSwapsAtPrintTime(t *testing.T) {
	scr, sink, p := newAnsiScreen()

	p.Parse([]byte("\x1b[31;42m\x1b[7mX"), sink)

	ch := scr.CharAt(buffer.Pos(0, 0))
	if ch.Attribute.ForegroundIndex() != 2 || ch.Attribute.BackgroundIndex() != 1 {
		t.Fatalf("inverse: fg %d bg %d", ch.Attribute.ForegroundIndex(), ch.Attribute.BackgroundIndex())
	}
	// The caret attribute itself stays unswapped.
	if scr.Caret().Attribute.ForegroundIndex() != 1 {
		t.Fatalf("caret attribute mutated: %#v", scr.Caret().Attribute)
	}
}

func TestSinkEraseDisplayHomesCaret(t *testing.T) {
	scr, sink, p := newAnsiScreen()

	p.Parse([]byte("hello\x1b[2J"), sink)

	if ch := scr.CharAt(buffer.Pos(0, 0)); ch.Ch != ' ' {
		t.Fatalf("screen not cleared: %#v", ch)
	}
	if pos := scr.Caret().Position; pos != buffer.Pos(0, 0) {
		t.Fatalf("caret after ED 2: %v", pos)
	}
	if !scr.TerminalState().ClearedScreen {
		t.Fatalf("ClearedScreen flag not set")
	}
}

func TestSinkEraseLineEnd(t *testing.T) {
	scr, sink, p := newAnsiScreen()

	p.Parse([]byte("abcdef\x1b[4G\x1b[K"), sink)

	if ch := scr.CharAt(buffer.Pos(2, 0)); ch.Ch != 'c' {
		t.Fatalf("cell before erase start: %#v", ch)
	}
	if ch := scr.CharAt(buffer.Pos(4, 0)); ch.Ch != ' ' {
		t.Fatalf("cell after erase start: %#v", ch)
	}
}

func TestSinkScrollRegion(t *testing.T) {
	scr, sink, p := newAnsiScreen()

	p.Parse([]byte("\x1b[5;10r"), sink)

	top, bottom, ok := scr.TerminalState().MarginsTopBottom()
	if !ok || top != 4 || bottom != 9 {
		t.Fatalf("margins: %d..%d ok=%v", top, bottom, ok)
	}
	if pos := scr.Caret().Position; pos != buffer.Pos(0, 0) {
		t.Fatalf("caret after DECSTBM: %v", pos)
	}
}

func TestSinkAutoWrap(t *testing.T) {
	scr, sink, p := newAnsiScreen()

	line := make([]byte, 85)
	for i := range line {
		line[i] = 'A'
	}
	p.Parse(line, sink)

	if ch := scr.CharAt(buffer.Pos(0, 1)); ch.Ch != 'A' {
		t.Fatalf("wrapped cell: %#v", ch)
	}
	if y := scr.Caret().Position.Y; y != 1 {
		t.Fatalf("caret row after wrap: %d", y)
	}
}

func TestSinkSaveRestoreCursor(t *testing.T) {
	scr, sink, _ := newAnsiScreen()

	scr.Caret().SetPosition(buffer.Pos(12, 7))
	sink.Emit(parser.TerminalCommand{Kind: parser.CmdSaveCursorPosition})
	scr.Caret().SetPosition(buffer.Pos(0, 0))
	sink.Emit(parser.TerminalCommand{Kind: parser.CmdRestoreCursorPosition})

	if pos := scr.Caret().Position; pos != buffer.Pos(12, 7) {
		t.Fatalf("restored position: %v", pos)
	}
}

func TestSinkCursorPositionReport(t *testing.T) {
	scr, sink, p := newAnsiScreen()

	var reply []byte
	sink.Respond = func(data []byte) { reply = append(reply, data...) }
	scr.Caret().SetPosition(buffer.Pos(4, 2))

	p.Parse([]byte("\x1b[6n"), sink)

	if string(reply) != "\x1b[3;5R" {
		t.Fatalf("DSR reply: %q", reply)
	}
}

func TestSinkRepeatPrecedingCharacter(t *testing.T) {
	scr, sink, _ := newAnsiScreen()

	ansi := parser.NewAnsiParser()
	ansi.Parse([]byte("Q"), sink)
	sink.Emit(parser.TerminalCommand{Kind: parser.CmdRepeatPrecedingCharacter, N: 3})

	for x := 0; x < 4; x++ {
		if ch := scr.CharAt(buffer.Pos(x, 0)); ch.Ch != 'Q' {
			t.Fatalf("cell %d: %#v", x, ch)
		}
	}
}

func TestSinkResizeTerminal(t *testing.T) {
	scr, sink, _ := newAnsiScreen()

	sink.Emit(parser.TerminalCommand{Kind: parser.CmdResizeTerminal, M: 132, N: 50})

	if scr.Width() != 132 || scr.Height() != 50 {
		t.Fatalf("size after resize: %dx%d", scr.Width(), scr.Height())
	}
	if ts := scr.TerminalState(); ts.Width() != 132 {
		t.Fatalf("terminal state width: %d", ts.Width())
	}
}

func TestSinkUTF8Reassembly(t *testing.T) {
	scr, sink, _ := newAnsiScreen()
	sink.ParseUTF8 = true

	// Multibyte rune split across Print calls.
	sink.Print([]byte{0xC3})
	sink.Print([]byte{0xA9})

	if ch := scr.CharAt(buffer.Pos(0, 0)); ch.Ch != 'é' {
		t.Fatalf("reassembled rune: %#v", ch)
	}
}

func TestSinkHyperlinkRecording(t *testing.T) {
	scr, sink, _ := newAnsiScreen()

	sink.OperatingSystemCommand(parser.OsCommand{Kind: parser.OscHyperlink, URI: []byte("https://example.com")})
	sink.Print([]byte("link"))
	sink.OperatingSystemCommand(parser.OsCommand{Kind: parser.OscHyperlink})

	links := scr.Hyperlinks()
	if len(links) != 1 {
		t.Fatalf("hyperlinks: %#v", links)
	}
	if links[0].URL != "https://example.com" || links[0].Length != 4 {
		t.Fatalf("link record: %#v", links[0])
	}
}

func TestSinkWindowTitle(t *testing.T) {
	_, sink, _ := newAnsiScreen()

	sink.OperatingSystemCommand(parser.OsCommand{Kind: parser.OscSetTitle, Text: []byte("icebox")})

	if sink.Title != "icebox" {
		t.Fatalf("title: %q", sink.Title)
	}
}

func TestSinkOscPaletteSet(t *testing.T) {
	scr, sink, p := newAnsiScreen()

	p.Parse([]byte("\x1b]4;1;rgb:12/34/56\x07"), sink)

	if r, g, b := scr.Palette().RGBAt(1); r != 0x12 || g != 0x34 || b != 0x56 {
		t.Fatalf("palette entry 1: %02x/%02x/%02x", r, g, b)
	}
}

func TestSinkCollectsParseErrors(t *testing.T) {
	_, sink, _ := newAnsiScreen()

	sink.ReportError(parser.ParseError{Kind: parser.ErrInvalidParameter}, parser.ErrorLevelWarning)

	if len(sink.Errors) != 1 {
		t.Fatalf("errors: %#v", sink.Errors)
	}
}
