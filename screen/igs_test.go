// Copyright © 2026 Icebox contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: screen/igs_test.go
// Summary: Exercises the IGS handler: pen color mapping, VDI fills and
//          the chained line cursor.
// Usage: Executed during `go test`.

package screen

import (
	"testing"

	"github.com/icebox-art/icebox/buffer"
	"github.com/icebox-art/icebox/parser"
)

func newIgsScreen() *PaletteScreen {
	return NewPaletteScreen(GraphicsType{Kind: GraphicsIgs, Resolution: ResolutionLow})
}

func TestIgsScreenDefaults(t *testing.T) {
	s := newIgsScreen()

	if s.Resolution() != (buffer.Size{Width: 320, Height: 200}) {
		t.Fatalf("resolution: %v", s.Resolution())
	}
	// ST low starts on the GEM desktop palette: register 0 is white.
	if r, g, b := s.pal.RGBAt(0); r != 0xEE || g != 0xEE || b != 0xEE {
		t.Fatalf("register 0: %02x%02x%02x", r, g, b)
	}
}

func TestIgsColorSetMapsWireColors(t *testing.T) {
	s := newIgsScreen()

	// IG color 1 is black, which sits in register 15 in low res.
	s.HandleIgs(parser.IgsCommand{Kind: parser.IgsColorSet, Pen: igsPenFill, Color: 1})

	if s.paint.FillColor != 15 {
		t.Fatalf("fill color: %d", s.paint.FillColor)
	}
}

func TestIgsFilledRectanglePaintsRaster(t *testing.T) {
	s := newIgsScreen()

	s.HandleIgs(parser.IgsCommand{Kind: parser.IgsColorSet, Pen: igsPenFill, Color: 4})
	s.HandleIgs(parser.IgsCommand{Kind: parser.IgsFilledRectangle, X: 10, Y: 10, X2: 20, Y2: 20})

	if got := s.Pixel(15, 15); got != 4 {
		t.Fatalf("fill pixel: %d", got)
	}
	if got := s.Pixel(21, 15); got != 0 {
		t.Fatalf("outside rect: %d", got)
	}
}

func TestIgsRandomRangeResolvesPlaceholders(t *testing.T) {
	s := newIgsScreen()

	// Single-value ranges make r and R deterministic.
	s.HandleIgs(parser.IgsCommand{Kind: parser.IgsSetRandomRange, Params: []int{100, 100}})
	s.HandleIgs(parser.IgsCommand{Kind: parser.IgsSetRandomRange, Params: []int{40, 40, 40}})
	s.HandleIgs(parser.IgsCommand{
		Kind: parser.IgsLine,
		X:    parser.IgsRandomSmall, Y: parser.IgsRandomBig,
		X2: parser.IgsRandomSmall, Y2: parser.IgsRandomBig,
	})

	if got := s.Pixel(100, 40); got != 1 {
		t.Fatalf("line pixel: %d", got)
	}
	if pos := s.paint.DrawToPos(); pos.X != 100 || pos.Y != 40 {
		t.Fatalf("draw-to position: %v", pos)
	}
}

func TestIgsRandomValuesStayWithinBounds(t *testing.T) {
	s := newIgsScreen()

	s.HandleIgs(parser.IgsCommand{Kind: parser.IgsSetRandomRange, Params: []int{10, 20}})
	s.HandleIgs(parser.IgsCommand{Kind: parser.IgsSetRandomRange, Params: []int{30, 30, 60}})
	p := &s.paint

	for i := 0; i < 200; i++ {
		if v := p.randomValue(parser.IgsRandomSmall); v < 10 || v > 20 {
			t.Fatalf("r out of range: %d", v)
		}
		if v := p.randomValue(parser.IgsRandomBig); v < 30 || v > 60 {
			t.Fatalf("R out of range: %d", v)
		}
	}
	// Ordinary values pass through untouched.
	if v := p.randomValue(123); v != 123 {
		t.Fatalf("plain value: %d", v)
	}
}

func TestIgsLineDrawToChains(t *testing.T) {
	s := newIgsScreen()

	s.HandleIgs(parser.IgsCommand{Kind: parser.IgsLine, X: 0, Y: 0, X2: 10, Y2: 0})
	s.HandleIgs(parser.IgsCommand{Kind: parser.IgsLineDrawTo, X: 10, Y: 10})

	if got := s.Pixel(5, 0); got != 1 {
		t.Fatalf("first segment: %d", got)
	}
	if got := s.Pixel(10, 5); got != 1 {
		t.Fatalf("chained segment: %d", got)
	}
	if pos := s.paint.DrawToPos(); pos != buffer.Pos(10, 10) {
		t.Fatalf("draw-to position: %v", pos)
	}
}

func TestIgsSetPenColorUpdatesPalette(t *testing.T) {
	s := newIgsScreen()

	// Pen 2 maps to register 1; components are 0..7 ST nibbles.
	s.HandleIgs(parser.IgsCommand{Kind: parser.IgsSetPenColor, Pen: 2, Red: 7, Green: 0, Blue: 0})

	if r, g, b := s.pal.RGBAt(1); r != 238 || g != 0 || b != 0 {
		t.Fatalf("register 1: %d %d %d", r, g, b)
	}
}

func TestIgsFloodFillReplacesRegion(t *testing.T) {
	s := newIgsScreen()

	s.HandleIgs(parser.IgsCommand{Kind: parser.IgsColorSet, Pen: igsPenFill, Color: 4})
	s.HandleIgs(parser.IgsCommand{Kind: parser.IgsFloodFill, X: 50, Y: 50})

	if got := s.Pixel(0, 0); got != 4 {
		t.Fatalf("flooded pixel: %d", got)
	}
}

func TestIgsCursorVisibility(t *testing.T) {
	s := newIgsScreen()

	s.HandleIgs(parser.IgsCommand{Kind: parser.IgsCursor, Mode: 0})
	if s.caret.Visible {
		t.Fatalf("caret should hide")
	}
	s.HandleIgs(parser.IgsCommand{Kind: parser.IgsCursor, Mode: 1})
	if !s.caret.Visible {
		t.Fatalf("caret should show")
	}
}
