// Copyright © 2026 Icebox contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: parser/ansi_test.go
// Summary: Exercises the ANSI parser including split input, SGR decoding
//          and DCS handling.
// Usage: Executed during `go test` to guard against regressions.

package parser

import (
	"bytes"
	"testing"
)

func TestAnsiPrintAndSgr(t *testing.T) {
	p := NewAnsiParser()
	sink := &recordSink{}
	p.Parse([]byte("\x1b[1;32mHI\x1b[0m"), sink)

	if string(sink.text) != "HI" {
		t.Fatalf("printed %q, want %q", sink.text, "HI")
	}
	if len(sink.cmds) != 3 {
		t.Fatalf("got %d commands, want 3: %#v", len(sink.cmds), sink.cmds)
	}
	if sink.cmds[0].Sgr.Kind != SgrIntensity || sink.cmds[0].Sgr.Intensity != IntensityBold {
		t.Fatalf("first attribute should be bold: %#v", sink.cmds[0].Sgr)
	}
	want := BaseColor(AnsiColorOffsets[2])
	if sink.cmds[1].Sgr.Kind != SgrForeground || sink.cmds[1].Sgr.Color != want {
		t.Fatalf("second attribute should be green foreground: %#v", sink.cmds[1].Sgr)
	}
	if sink.cmds[2].Sgr.Kind != SgrReset {
		t.Fatalf("third attribute should be reset: %#v", sink.cmds[2].Sgr)
	}
}

func TestAnsiSplitAcrossCalls(t *testing.T) {
	p := NewAnsiParser()
	sink := &recordSink{}
	p.Parse([]byte("A\x1b[1;3"), sink)
	p.Parse([]byte("1mB"), sink)

	if string(sink.text) != "AB" {
		t.Fatalf("printed %q, want %q", sink.text, "AB")
	}
	if len(sink.cmds) != 2 {
		t.Fatalf("got %d commands, want 2: %#v", len(sink.cmds), sink.cmds)
	}
	if sink.cmds[1].Sgr.Color != BaseColor(AnsiColorOffsets[1]) {
		t.Fatalf("expected red foreground, got %#v", sink.cmds[1].Sgr)
	}
}

func TestAnsiCursorPosition(t *testing.T) {
	p := NewAnsiParser()
	sink := &recordSink{}
	p.Parse([]byte("\x1b[10;20H\x1b[H"), sink)

	if len(sink.cmds) != 2 {
		t.Fatalf("got %d commands, want 2", len(sink.cmds))
	}
	if sink.cmds[0].Kind != CmdCursorPosition || sink.cmds[0].N != 10 || sink.cmds[0].M != 20 {
		t.Fatalf("unexpected CUP: %#v", sink.cmds[0])
	}
	if sink.cmds[1].N != 1 || sink.cmds[1].M != 1 {
		t.Fatalf("CUP without parameters should default to 1;1: %#v", sink.cmds[1])
	}
}

func TestAnsiExtendedColors(t *testing.T) {
	p := NewAnsiParser()
	sink := &recordSink{}
	p.Parse([]byte("\x1b[38;5;120m\x1b[48;2;10;20;30m"), sink)

	if len(sink.cmds) != 2 {
		t.Fatalf("got %d commands, want 2: %#v", len(sink.cmds), sink.cmds)
	}
	if sink.cmds[0].Sgr.Kind != SgrForeground || sink.cmds[0].Sgr.Color != ExtendedColor(120) {
		t.Fatalf("expected 256-color foreground: %#v", sink.cmds[0].Sgr)
	}
	if sink.cmds[1].Sgr.Kind != SgrBackground || sink.cmds[1].Sgr.Color != RGBColor(10, 20, 30) {
		t.Fatalf("expected RGB background: %#v", sink.cmds[1].Sgr)
	}
}

func TestAnsiEraseModes(t *testing.T) {
	p := NewAnsiParser()
	sink := &recordSink{}
	p.Parse([]byte("\x1b[2J\x1b[K"), sink)

	if len(sink.cmds) != 2 {
		t.Fatalf("got %d commands, want 2", len(sink.cmds))
	}
	if sink.cmds[0].Kind != CmdEraseInDisplay || sink.cmds[0].EraseDisplay != EraseDisplayAll {
		t.Fatalf("unexpected ED: %#v", sink.cmds[0])
	}
	if sink.cmds[1].Kind != CmdEraseInLine || sink.cmds[1].EraseLine != EraseLineCursorToEnd {
		t.Fatalf("unexpected EL: %#v", sink.cmds[1])
	}
}

func TestAnsiEraseOutOfRangeReportsError(t *testing.T) {
	p := NewAnsiParser()
	sink := &recordSink{}
	p.Parse([]byte("\x1b[7J"), sink)

	if len(sink.errors) != 1 {
		t.Fatalf("got %d errors, want 1", len(sink.errors))
	}
	if len(sink.cmds) != 1 || sink.cmds[0].EraseDisplay != EraseDisplayCursorToEnd {
		t.Fatalf("bad parameter should fall back to mode 0: %#v", sink.cmds)
	}
}

func TestAnsiDecPrivateModes(t *testing.T) {
	p := NewAnsiParser()
	sink := &recordSink{}
	p.Parse([]byte("\x1b[?25h\x1b[?7l"), sink)

	if len(sink.cmds) != 2 {
		t.Fatalf("got %d commands, want 2", len(sink.cmds))
	}
	if sink.cmds[0].Kind != CmdDecModeSet || sink.cmds[0].Dec != DecCursorVisible {
		t.Fatalf("unexpected DECSET: %#v", sink.cmds[0])
	}
	if sink.cmds[1].Kind != CmdDecModeReset || sink.cmds[1].Dec != DecAutoWrap {
		t.Fatalf("unexpected DECRST: %#v", sink.cmds[1])
	}
}

func TestAnsiControlCharacters(t *testing.T) {
	p := NewAnsiParser()
	sink := &recordSink{}
	p.Parse([]byte("a\rb\nc"), sink)

	if string(sink.text) != "abc" {
		t.Fatalf("printed %q, want %q", sink.text, "abc")
	}
	if len(sink.cmds) != 2 || sink.cmds[0].Kind != CmdCarriageReturn || sink.cmds[1].Kind != CmdLineFeed {
		t.Fatalf("unexpected control commands: %#v", sink.cmds)
	}
}

func TestAnsiOscWindowTitle(t *testing.T) {
	p := NewAnsiParser()
	sink := &recordSink{}
	p.Parse([]byte("\x1b]2;hello\x07"), sink)

	if len(sink.oscs) != 1 {
		t.Fatalf("got %d OSC commands, want 1", len(sink.oscs))
	}
	if sink.oscs[0].Kind != OscSetWindowTitle || string(sink.oscs[0].Text) != "hello" {
		t.Fatalf("unexpected OSC: %#v", sink.oscs[0])
	}
}

func TestAnsiOscHyperlink(t *testing.T) {
	p := NewAnsiParser()
	sink := &recordSink{}
	p.Parse([]byte("\x1b]8;;http://example.com\x1b\\"), sink)

	if len(sink.oscs) != 1 {
		t.Fatalf("got %d OSC commands, want 1", len(sink.oscs))
	}
	if sink.oscs[0].Kind != OscHyperlink || string(sink.oscs[0].URI) != "http://example.com" {
		t.Fatalf("unexpected hyperlink: %#v", sink.oscs[0])
	}
}

func TestAnsiOscSetPaletteColor(t *testing.T) {
	p := NewAnsiParser()
	sink := &recordSink{}
	p.Parse([]byte("\x1b]4;0;rgb:ff/00/00\x07"), sink)

	if len(sink.errors) != 0 {
		t.Fatalf("unexpected parse errors: %v", sink.errors)
	}
	if len(sink.oscs) != 1 {
		t.Fatalf("got %d OSC commands, want 1", len(sink.oscs))
	}
	osc := sink.oscs[0]
	if osc.Kind != OscSetPaletteColor || osc.Index != 0 || osc.RGB != [3]uint8{0xFF, 0, 0} {
		t.Fatalf("unexpected palette set: %#v", osc)
	}

	// ST terminator and multiple entries in one sequence.
	sink = &recordSink{}
	p.Parse([]byte("\x1b]4;1;rgb:00/80/00;15;rgb:ff/ff/ff\x1b\\"), sink)

	if len(sink.oscs) != 2 {
		t.Fatalf("got %d OSC commands, want 2", len(sink.oscs))
	}
	if sink.oscs[0].Index != 1 || sink.oscs[0].RGB != [3]uint8{0, 0x80, 0} {
		t.Fatalf("unexpected first entry: %#v", sink.oscs[0])
	}
	if sink.oscs[1].Index != 15 || sink.oscs[1].RGB != [3]uint8{0xFF, 0xFF, 0xFF} {
		t.Fatalf("unexpected second entry: %#v", sink.oscs[1])
	}
}

func TestAnsiOscSetPaletteColorMalformed(t *testing.T) {
	p := NewAnsiParser()
	sink := &recordSink{}
	p.Parse([]byte("\x1b]4;0;#ff0000\x07"), sink)

	if len(sink.oscs) != 0 {
		t.Fatalf("malformed color spec must not emit: %#v", sink.oscs)
	}
	if len(sink.errors) != 1 {
		t.Fatalf("got %d errors, want 1", len(sink.errors))
	}
}

func TestAnsiDcsMacroDefineAndInvoke(t *testing.T) {
	p := NewAnsiParser()
	sink := &recordSink{}
	p.Parse([]byte("\x1bP1;0;0!zhi there\x1b\\"), sink)
	if len(sink.text) != 0 {
		t.Fatalf("macro definition must not print: %q", sink.text)
	}

	p.Parse([]byte("\x1b[1*z"), sink)
	if string(sink.text) != "hi there" {
		t.Fatalf("macro replay printed %q, want %q", sink.text, "hi there")
	}
}

func TestAnsiDcsHexMacro(t *testing.T) {
	p := NewAnsiParser()
	sink := &recordSink{}
	// Hex encoded "AB" repeated three times.
	p.Parse([]byte("\x1bP2;0;1!z!3;4142;\x1b\\"), sink)
	p.Parse([]byte("\x1b[2*z"), sink)

	if string(sink.text) != "ABABAB" {
		t.Fatalf("macro replay printed %q, want %q", sink.text, "ABABAB")
	}
}

func TestAnsiDcsFontUpload(t *testing.T) {
	p := NewAnsiParser()
	sink := &recordSink{}
	// base64 of the bytes 1 2 3.
	p.Parse([]byte("\x1bPCTerm:Font:2:AQID\x1b\\"), sink)

	if len(sink.dcs) != 1 {
		t.Fatalf("got %d DCS commands, want 1", len(sink.dcs))
	}
	d := sink.dcs[0]
	if d.Kind != DeviceControlLoadFont || d.FontSlot != 2 || !bytes.Equal(d.FontData, []byte{1, 2, 3}) {
		t.Fatalf("unexpected font upload: %#v", d)
	}
}

func TestAnsiDcsSixel(t *testing.T) {
	p := NewAnsiParser()
	sink := &recordSink{}
	p.Parse([]byte("\x1bP0;0;0q#0;2;0;0;0~~\x1b\\"), sink)

	if len(sink.dcs) != 1 {
		t.Fatalf("got %d DCS commands, want 1", len(sink.dcs))
	}
	d := sink.dcs[0]
	if d.Kind != DeviceControlSixel || d.VerticalScale != 2 {
		t.Fatalf("unexpected sixel: %#v", d)
	}
	if string(d.Data) != "#0;2;0;0;0~~" {
		t.Fatalf("sixel payload %q", d.Data)
	}
}

func TestAnsiScrollAndCaretStyle(t *testing.T) {
	p := NewAnsiParser()
	sink := &recordSink{}
	p.Parse([]byte("\x1b[2S\x1b[4 q"), sink)

	if len(sink.cmds) != 2 {
		t.Fatalf("got %d commands, want 2", len(sink.cmds))
	}
	if sink.cmds[0].Kind != CmdScroll || sink.cmds[0].Dir != Up || sink.cmds[0].N != 2 {
		t.Fatalf("unexpected scroll: %#v", sink.cmds[0])
	}
	c := sink.cmds[1]
	if c.Kind != CmdSetCaretStyle || c.Caret != CaretUnderline || c.CaretBlinking {
		t.Fatalf("unexpected caret style: %#v", c)
	}
}

func TestAnsiDeviceStatusReport(t *testing.T) {
	p := NewAnsiParser()
	sink := &recordSink{}
	p.Parse([]byte("\x1b[6n"), sink)

	if len(sink.cmds) != 1 || sink.cmds[0].Kind != CmdDeviceStatusReport ||
		sink.cmds[0].Status != StatusReportCursorPosition {
		t.Fatalf("unexpected DSR: %#v", sink.cmds)
	}
}

func TestAnsiAps(t *testing.T) {
	p := NewAnsiParser()
	sink := &recordSink{}
	p.Parse([]byte("\x1b_payload\x1b\\"), sink)

	if len(sink.aps) != 1 || string(sink.aps[0]) != "payload" {
		t.Fatalf("unexpected APS: %#v", sink.aps)
	}
}

func TestAnsiResizeTerminal(t *testing.T) {
	p := NewAnsiParser()
	sink := &recordSink{}
	p.Parse([]byte("\x1b[8;50;100t"), sink)

	if len(sink.cmds) != 1 || sink.cmds[0].Kind != CmdResizeTerminal ||
		sink.cmds[0].N != 50 || sink.cmds[0].M != 100 {
		t.Fatalf("unexpected resize: %#v", sink.cmds)
	}
}
