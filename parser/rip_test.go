// Copyright © 2026 Icebox contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: parser/rip_test.go
// Summary: Exercises RIPscrip command decoding, base-36 parameters,
//          fail-fast aborts and the enable/disable escapes.
// Usage: Executed during `go test` to guard against regressions.

package parser

import "testing"

func TestRipLine(t *testing.T) {
	p := NewRipParser()
	sink := &recordSink{}
	p.Parse([]byte("!|L00010203"), sink)

	if len(sink.rips) != 1 {
		t.Fatalf("got %d RIP commands, want 1: %#v", len(sink.rips), sink.rips)
	}
	c := sink.rips[0]
	if c.Kind != RipLine || c.X0 != 0 || c.Y0 != 1 || c.X1 != 2 || c.Y1 != 3 {
		t.Fatalf("unexpected line: %#v", c)
	}
}

func TestRipBase36Parameters(t *testing.T) {
	p := NewRipParser()
	sink := &recordSink{}
	// 'Z' is 35, so "1Z" is 36+35 = 71.
	p.Parse([]byte("!|X1Z0A"), sink)

	if len(sink.rips) != 1 {
		t.Fatalf("got %d RIP commands, want 1", len(sink.rips))
	}
	c := sink.rips[0]
	if c.Kind != RipPixel || c.X != 71 || c.Y != 10 {
		t.Fatalf("unexpected pixel: %#v", c)
	}
}

func TestRipChainedCommands(t *testing.T) {
	p := NewRipParser()
	sink := &recordSink{}
	p.Parse([]byte("!|c04|m0105"), sink)

	if len(sink.rips) != 2 {
		t.Fatalf("got %d RIP commands, want 2: %#v", len(sink.rips), sink.rips)
	}
	if sink.rips[0].Kind != RipColor || sink.rips[0].Color != 4 {
		t.Fatalf("unexpected color: %#v", sink.rips[0])
	}
	if sink.rips[1].Kind != RipMove || sink.rips[1].X != 1 || sink.rips[1].Y != 5 {
		t.Fatalf("unexpected move: %#v", sink.rips[1])
	}
}

func TestRipTextXY(t *testing.T) {
	p := NewRipParser()
	sink := &recordSink{}
	p.Parse([]byte("!|@0102hello\n"), sink)

	if len(sink.rips) != 1 {
		t.Fatalf("got %d RIP commands, want 1", len(sink.rips))
	}
	c := sink.rips[0]
	if c.Kind != RipTextXY || c.X != 1 || c.Y != 2 || c.Text != "hello" {
		t.Fatalf("unexpected text: %#v", c)
	}
}

func TestRipSplitAcrossCalls(t *testing.T) {
	p := NewRipParser()
	sink := &recordSink{}
	p.Parse([]byte("!|L00"), sink)
	p.Parse([]byte("01"), sink)
	p.Parse([]byte("0203"), sink)

	if len(sink.rips) != 1 || sink.rips[0].Kind != RipLine {
		t.Fatalf("split input should still decode one line: %#v", sink.rips)
	}
}

func TestRipLineContinuation(t *testing.T) {
	p := NewRipParser()
	sink := &recordSink{}
	p.Parse([]byte("!|L00\\\r\n010203"), sink)

	if len(sink.rips) != 1 {
		t.Fatalf("got %d RIP commands, want 1: %#v", len(sink.rips), sink.rips)
	}
	c := sink.rips[0]
	if c.X0 != 0 || c.Y0 != 1 || c.X1 != 2 || c.Y1 != 3 {
		t.Fatalf("unexpected line after continuation: %#v", c)
	}
}

func TestRipBadDigitAborts(t *testing.T) {
	p := NewRipParser()
	sink := &recordSink{}
	p.Parse([]byte("!|L00%%hi"), sink)

	if len(sink.rips) != 0 {
		t.Fatalf("aborted command must not emit: %#v", sink.rips)
	}
	// After the abort everything passes through to ANSI.
	if string(sink.text) != "%hi" {
		t.Fatalf("passthrough text %q, want %q", sink.text, "%hi")
	}
}

func TestRipNonCommandBangPassesThrough(t *testing.T) {
	p := NewRipParser()
	sink := &recordSink{}
	p.Parse([]byte("!hello"), sink)

	if len(sink.rips) != 0 {
		t.Fatalf("expected no RIP commands: %#v", sink.rips)
	}
	if string(sink.text) != "!hello" {
		t.Fatalf("passthrough text %q, want %q", sink.text, "!hello")
	}
}

func TestRipPolygon(t *testing.T) {
	p := NewRipParser()
	sink := &recordSink{}
	// Three points: (1,2) (3,4) (5,6).
	p.Parse([]byte("!|P03010203040506"), sink)

	if len(sink.rips) != 1 {
		t.Fatalf("got %d RIP commands, want 1: %#v", len(sink.rips), sink.rips)
	}
	c := sink.rips[0]
	want := []int{1, 2, 3, 4, 5, 6}
	if c.Kind != RipPolygon || len(c.Points) != len(want) {
		t.Fatalf("unexpected polygon: %#v", c)
	}
	for i, v := range want {
		if c.Points[i] != v {
			t.Fatalf("point %d = %d, want %d", i, c.Points[i], v)
		}
	}
}

func TestRipNoMore(t *testing.T) {
	p := NewRipParser()
	sink := &recordSink{}
	p.Parse([]byte("!|#"), sink)

	if len(sink.rips) != 1 || sink.rips[0].Kind != RipNoMore {
		t.Fatalf("expected RipNoMore: %#v", sink.rips)
	}
}

func TestRipTerminalIDQuery(t *testing.T) {
	p := NewRipParser()
	sink := &recordSink{}
	p.Parse([]byte("\x1b[!"), sink)
	p.Parse([]byte("\x1b[0!"), sink)

	if len(sink.requests) != 2 {
		t.Fatalf("got %d requests, want 2", len(sink.requests))
	}
	for _, req := range sink.requests {
		if req != RequestRipTerminalID {
			t.Fatalf("unexpected request %v", req)
		}
	}
}

func TestRipDisableEnable(t *testing.T) {
	p := NewRipParser()
	sink := &recordSink{}
	p.Parse([]byte("\x1b[1!"), sink)
	p.Parse([]byte("!|L00010203"), sink)
	if len(sink.rips) != 0 {
		t.Fatalf("disabled parser must not decode RIP: %#v", sink.rips)
	}

	p.Parse([]byte("\x1b[2!"), sink)
	p.Parse([]byte("!|L00010203"), sink)
	if len(sink.rips) != 1 || sink.rips[0].Kind != RipLine {
		t.Fatalf("re-enabled parser should decode RIP: %#v", sink.rips)
	}
}

func TestRipButton(t *testing.T) {
	p := NewRipParser()
	sink := &recordSink{}
	// x0 y0 x1 y1 hotkey flags res, then "icon<>label<>host" text.
	p.Parse([]byte("!|1U01020304050000icon<>label<>host\n"), sink)

	if len(sink.rips) != 1 {
		t.Fatalf("got %d RIP commands, want 1: %#v", len(sink.rips), sink.rips)
	}
	c := sink.rips[0]
	if c.Kind != RipButton || c.X0 != 1 || c.Y0 != 2 || c.X1 != 3 || c.Y1 != 4 {
		t.Fatalf("unexpected button bounds: %#v", c)
	}
	if c.Hotkey != 5 || c.Text != "icon<>label<>host" {
		t.Fatalf("unexpected button payload: %#v", c)
	}
}

func TestRipAnsiPassthrough(t *testing.T) {
	p := NewRipParser()
	sink := &recordSink{}
	p.Parse([]byte("plain \x1b[1mtext"), sink)

	if string(sink.text) != "plain text" {
		t.Fatalf("printed %q, want %q", sink.text, "plain text")
	}
	if len(sink.cmds) != 1 || sink.cmds[0].Sgr.Kind != SgrIntensity {
		t.Fatalf("embedded ANSI should decode: %#v", sink.cmds)
	}
}
