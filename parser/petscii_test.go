// Copyright © 2026 Icebox contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: parser/petscii_test.go
// Summary: Exercises PETSCII screen-code mapping, reverse video and the
//          C128 escape prefix.
// Usage: Executed during `go test` to guard against regressions.

package parser

import (
	"bytes"
	"testing"
)

func TestPetsciiClearAndHome(t *testing.T) {
	p := NewPetsciiParser()
	sink := &recordSink{}
	p.Parse([]byte{0x93}, sink)

	if len(sink.cmds) != 2 {
		t.Fatalf("got %d commands, want 2: %#v", len(sink.cmds), sink.cmds)
	}
	if sink.cmds[0].Kind != CmdEraseInDisplay || sink.cmds[0].EraseDisplay != EraseDisplayAll {
		t.Fatalf("expected full clear: %#v", sink.cmds[0])
	}
	if sink.cmds[1].Kind != CmdCursorPosition || sink.cmds[1].N != 1 || sink.cmds[1].M != 1 {
		t.Fatalf("expected home: %#v", sink.cmds[1])
	}
}

func TestPetsciiScreenCodeMapping(t *testing.T) {
	p := NewPetsciiParser()
	sink := &recordSink{}
	// 'A' (0x41) maps to screen code 0x01, '!' (0x21) stays put.
	p.Parse([]byte{'A', '!'}, sink)

	if !bytes.Equal(sink.text, []byte{0x01, 0x21}) {
		t.Fatalf("screen codes %v, want [1 33]", sink.text)
	}
}

func TestPetsciiReverseVideoHighBit(t *testing.T) {
	p := NewPetsciiParser()
	sink := &recordSink{}
	p.Parse([]byte{0x12, 'A', 0x92, 'A'}, sink)

	if !bytes.Equal(sink.text, []byte{0x81, 0x01}) {
		t.Fatalf("screen codes %v, want [129 1]", sink.text)
	}
}

func TestPetsciiLineFeedResetsReverse(t *testing.T) {
	p := NewPetsciiParser()
	sink := &recordSink{}
	p.Parse([]byte{0x12, 0x0D, 'A'}, sink)

	if !bytes.Equal(sink.text, []byte{0x01}) {
		t.Fatalf("reverse mode should not survive a line feed: %v", sink.text)
	}
}

func TestPetsciiColorCode(t *testing.T) {
	p := NewPetsciiParser()
	sink := &recordSink{}
	p.Parse([]byte{0x05}, sink)

	if len(sink.cmds) != 1 || sink.cmds[0].Sgr.Kind != SgrForeground ||
		sink.cmds[0].Sgr.Color != BaseColor(petsciiWhite) {
		t.Fatalf("expected white foreground: %#v", sink.cmds)
	}
}

func TestPetsciiCursorMoves(t *testing.T) {
	p := NewPetsciiParser()
	sink := &recordSink{}
	p.Parse([]byte{0x11, 0x91, 0x1D, 0x9D}, sink)

	wantDirs := []Direction{Down, Up, Right, Left}
	if len(sink.cmds) != 4 {
		t.Fatalf("got %d commands, want 4", len(sink.cmds))
	}
	for i, want := range wantDirs {
		if sink.cmds[i].Kind != CmdMoveCursor || sink.cmds[i].Dir != want {
			t.Fatalf("move %d: %#v, want direction %d", i, sink.cmds[i], want)
		}
	}
}

func TestPetsciiFontPageSwitch(t *testing.T) {
	p := NewPetsciiParser()
	sink := &recordSink{}
	p.Parse([]byte{0x0E, 0x0F}, sink)

	if len(sink.cmds) != 2 {
		t.Fatalf("got %d commands, want 2", len(sink.cmds))
	}
	if sink.cmds[0].Kind != CmdSetFontPage || sink.cmds[0].N != 0 {
		t.Fatalf("unshifted set should select page 0: %#v", sink.cmds[0])
	}
	if sink.cmds[1].Kind != CmdSetFontPage || sink.cmds[1].N != 1 {
		t.Fatalf("shifted set should select page 1: %#v", sink.cmds[1])
	}
}

func TestPetsciiC128EscapeSplit(t *testing.T) {
	p := NewPetsciiParser()
	sink := &recordSink{}
	p.Parse([]byte{0x1B}, sink)
	p.Parse([]byte{'Q'}, sink)

	if len(sink.cmds) != 1 || sink.cmds[0].Kind != CmdEraseInLine ||
		sink.cmds[0].EraseLine != EraseLineCursorToEnd {
		t.Fatalf("expected erase to end of line: %#v", sink.cmds)
	}
}

func TestPetsciiNonPrintableIgnored(t *testing.T) {
	p := NewPetsciiParser()
	sink := &recordSink{}
	// 0x10 is not printable and not a control code PETSCII knows.
	p.Parse([]byte{0x10}, sink)

	if len(sink.text) != 0 || len(sink.cmds) != 0 {
		t.Fatalf("expected nothing, got text=%v cmds=%#v", sink.text, sink.cmds)
	}
}
