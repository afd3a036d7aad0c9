// Copyright © 2026 Icebox contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: parser/skypix_test.go
// Summary: Exercises SkyPix numeric commands, string-carrying commands
//          and the embedded ANSI subset.
// Usage: Executed during `go test` to guard against regressions.

package parser

import "testing"

func TestSkypixSetPixel(t *testing.T) {
	p := NewSkypixParser()
	sink := &recordSink{}
	p.Parse([]byte("\x1b[1;100;50!"), sink)

	if len(sink.skypix) != 1 {
		t.Fatalf("got %d commands, want 1: %#v", len(sink.skypix), sink.skypix)
	}
	c := sink.skypix[0]
	if c.Kind != SkypixSetPixel || c.X != 100 || c.Y != 50 {
		t.Fatalf("unexpected pixel: %#v", c)
	}
}

func TestSkypixComment(t *testing.T) {
	p := NewSkypixParser()
	sink := &recordSink{}
	p.Parse([]byte("\x1b[0!hello world!"), sink)

	if len(sink.skypix) != 1 {
		t.Fatalf("got %d commands, want 1", len(sink.skypix))
	}
	c := sink.skypix[0]
	if c.Kind != SkypixComment || c.Text != "hello world" {
		t.Fatalf("unexpected comment: %#v", c)
	}
}

func TestSkypixSetFont(t *testing.T) {
	p := NewSkypixParser()
	sink := &recordSink{}
	p.Parse([]byte("\x1b[10;8!topaz.font!"), sink)

	if len(sink.skypix) != 1 {
		t.Fatalf("got %d commands, want 1", len(sink.skypix))
	}
	c := sink.skypix[0]
	if c.Kind != SkypixSetFont || c.Size != 8 || c.Text != "topaz.font" {
		t.Fatalf("unexpected font: %#v", c)
	}
}

func TestSkypixResetFontCarriesNoName(t *testing.T) {
	p := NewSkypixParser()
	sink := &recordSink{}
	p.Parse([]byte("\x1b[10;0!after"), sink)

	if len(sink.skypix) != 1 || sink.skypix[0].Kind != SkypixResetFont {
		t.Fatalf("size 0 should reset the font: %#v", sink.skypix)
	}
	if string(sink.text) != "after" {
		t.Fatalf("trailing text should print, got %q", sink.text)
	}
}

func TestSkypixPenDefaults(t *testing.T) {
	p := NewSkypixParser()
	sink := &recordSink{}
	p.Parse([]byte("\x1b[15!\x1b[18!"), sink)

	if len(sink.skypix) != 2 {
		t.Fatalf("got %d commands, want 2: %#v", len(sink.skypix), sink.skypix)
	}
	if sink.skypix[0].Kind != SkypixSetPenA || sink.skypix[0].Color != 2 {
		t.Fatalf("pen A should default to color 2: %#v", sink.skypix[0])
	}
	if sink.skypix[1].Kind != SkypixSetPenB || sink.skypix[1].Color != 0 {
		t.Fatalf("pen B should default to color 0: %#v", sink.skypix[1])
	}
}

func TestSkypixNegativeParameters(t *testing.T) {
	p := NewSkypixParser()
	sink := &recordSink{}
	p.Parse([]byte("\x1b[8;-5;10!"), sink)

	if len(sink.skypix) != 1 {
		t.Fatalf("got %d commands, want 1", len(sink.skypix))
	}
	c := sink.skypix[0]
	if c.Kind != SkypixMovePen || c.X != -5 || c.Y != 10 {
		t.Fatalf("unexpected pen move: %#v", c)
	}
}

func TestSkypixInvalidFillMode(t *testing.T) {
	p := NewSkypixParser()
	sink := &recordSink{}
	p.Parse([]byte("\x1b[3;7;1;2!"), sink)

	if len(sink.skypix) != 0 {
		t.Fatalf("invalid fill mode must not emit: %#v", sink.skypix)
	}
	if len(sink.errors) != 1 {
		t.Fatalf("got %d errors, want 1", len(sink.errors))
	}
}

func TestSkypixCrcTransfer(t *testing.T) {
	p := NewSkypixParser()
	sink := &recordSink{}
	p.Parse([]byte("\x1b[16;1;320;100!brush.iff!"), sink)

	if len(sink.skypix) != 1 {
		t.Fatalf("got %d commands, want 1", len(sink.skypix))
	}
	c := sink.skypix[0]
	if c.Kind != SkypixCrcTransfer || c.Crc != CrcIffBrush ||
		c.Width != 320 || c.Height != 100 || c.Text != "brush.iff" {
		t.Fatalf("unexpected transfer: %#v", c)
	}
}

func TestSkypixAnsiSubset(t *testing.T) {
	p := NewSkypixParser()
	sink := &recordSink{}
	p.Parse([]byte("\x1b[2;3H\x1b[31m"), sink)

	if len(sink.cmds) != 2 {
		t.Fatalf("got %d commands, want 2: %#v", len(sink.cmds), sink.cmds)
	}
	if sink.cmds[0].Kind != CmdCursorPosition || sink.cmds[0].N != 2 || sink.cmds[0].M != 3 {
		t.Fatalf("unexpected CUP: %#v", sink.cmds[0])
	}
	want := BaseColor(amigaColorOffsets[1])
	if sink.cmds[1].Sgr.Kind != SgrForeground || sink.cmds[1].Sgr.Color != want {
		t.Fatalf("red should remap through the Amiga palette: %#v", sink.cmds[1].Sgr)
	}
}

func TestSkypixSgrResetSelectsFontPageZero(t *testing.T) {
	p := NewSkypixParser()
	sink := &recordSink{}
	p.Parse([]byte("\x1b[0m"), sink)

	if len(sink.cmds) != 2 {
		t.Fatalf("got %d commands, want 2: %#v", len(sink.cmds), sink.cmds)
	}
	if sink.cmds[0].Sgr.Kind != SgrReset {
		t.Fatalf("expected reset first: %#v", sink.cmds[0])
	}
	if sink.cmds[1].Kind != CmdSetFontPage || sink.cmds[1].N != 0 {
		t.Fatalf("reset should restore font page 0: %#v", sink.cmds[1])
	}
}

func TestSkypixVerticalTabMovesUp(t *testing.T) {
	p := NewSkypixParser()
	sink := &recordSink{}
	p.Parse([]byte{0x0B}, sink)

	if len(sink.cmds) != 1 || sink.cmds[0].Kind != CmdMoveCursor || sink.cmds[0].Dir != Up {
		t.Fatalf("VT should move the cursor up: %#v", sink.cmds)
	}
}

func TestSkypixSplitAcrossCalls(t *testing.T) {
	p := NewSkypixParser()
	sink := &recordSink{}
	p.Parse([]byte("\x1b[4;1;2;"), sink)
	p.Parse([]byte("30;40!"), sink)

	if len(sink.skypix) != 1 {
		t.Fatalf("got %d commands, want 1: %#v", len(sink.skypix), sink.skypix)
	}
	c := sink.skypix[0]
	if c.Kind != SkypixRectangleFill || c.X != 1 || c.Y != 2 || c.X2 != 30 || c.Y2 != 40 {
		t.Fatalf("unexpected rectangle: %#v", c)
	}
}

func TestSkypixPlainTextPrints(t *testing.T) {
	p := NewSkypixParser()
	sink := &recordSink{}
	p.Parse([]byte("hello"), sink)

	if string(sink.text) != "hello" {
		t.Fatalf("printed %q, want %q", sink.text, "hello")
	}
}
