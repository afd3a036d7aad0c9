// Copyright © 2026 Icebox contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: screen/rip_test.go
// Summary: Exercises the RIP/BGI engine through HandleRip: pens,
//          fills, viewport clipping, palette writes and mouse fields.
// Usage: Executed during `go test`.

package screen

import (
	"testing"

	"github.com/icebox-art/icebox/buffer"
	"github.com/icebox-art/icebox/parser"
)

func newRipScreen() *PaletteScreen {
	return NewPaletteScreen(GraphicsType{Kind: GraphicsRip})
}

func TestRipScreenDefaults(t *testing.T) {
	s := newRipScreen()

	if s.Resolution() != (buffer.Size{Width: 640, Height: 350}) {
		t.Fatalf("resolution: %v", s.Resolution())
	}
	if s.bgi.color != 7 || s.bgi.bkcolor != 0 {
		t.Fatalf("pen defaults: color %d bk %d", s.bgi.color, s.bgi.bkcolor)
	}
	if s.bgi.viewport != buffer.Rect(0, 0, 640, 350) {
		t.Fatalf("viewport: %v", s.bgi.viewport)
	}
}

func TestRipPixelAndColor(t *testing.T) {
	s := newRipScreen()

	s.HandleRip(parser.RipCommand{Kind: parser.RipColor, Color: 5})
	s.HandleRip(parser.RipCommand{Kind: parser.RipPixel, X: 10, Y: 20})

	if got := s.Pixel(10, 20); got != 5 {
		t.Fatalf("pixel: %d", got)
	}
}

func TestRipLineDrawsWithCurrentColor(t *testing.T) {
	s := newRipScreen()

	s.HandleRip(parser.RipCommand{Kind: parser.RipColor, Color: 9})
	s.HandleRip(parser.RipCommand{Kind: parser.RipLine, X0: 0, Y0: 5, X1: 20, Y1: 5})

	for x := 0; x <= 20; x++ {
		if got := s.Pixel(x, 5); got != 9 {
			t.Fatalf("line pixel %d: %d", x, got)
		}
	}
	if got := s.Pixel(21, 5); got != 0 {
		t.Fatalf("pixel past line end: %d", got)
	}
}

func TestRipBarUsesFillColor(t *testing.T) {
	s := newRipScreen()

	s.HandleRip(parser.RipCommand{Kind: parser.RipFillStyle, Pattern: 1, Color: 4})
	s.HandleRip(parser.RipCommand{Kind: parser.RipBar, X0: 10, Y0: 10, X1: 20, Y1: 15})

	if got := s.Pixel(10, 10); got != 4 {
		t.Fatalf("bar corner: %d", got)
	}
	if got := s.Pixel(20, 15); got != 4 {
		t.Fatalf("bar is inclusive of the far corner: %d", got)
	}
	if got := s.Pixel(21, 15); got != 0 {
		t.Fatalf("pixel outside bar: %d", got)
	}
}

func TestRipViewportClipsDrawing(t *testing.T) {
	s := newRipScreen()

	s.HandleRip(parser.RipCommand{Kind: parser.RipViewPort, X0: 0, Y0: 0, X1: 100, Y1: 100})
	s.HandleRip(parser.RipCommand{Kind: parser.RipColor, Color: 3})
	s.HandleRip(parser.RipCommand{Kind: parser.RipLine, X0: 90, Y0: 50, X1: 150, Y1: 50})

	if got := s.Pixel(95, 50); got != 3 {
		t.Fatalf("pixel inside viewport: %d", got)
	}
	if got := s.Pixel(120, 50); got != 0 {
		t.Fatalf("pixel outside viewport: %d", got)
	}
}

func TestRipXorWriteMode(t *testing.T) {
	s := newRipScreen()

	s.HandleRip(parser.RipCommand{Kind: parser.RipColor, Color: 15})
	s.HandleRip(parser.RipCommand{Kind: parser.RipPixel, X: 5, Y: 5})
	s.HandleRip(parser.RipCommand{Kind: parser.RipWriteMode, Mode: 1})
	s.HandleRip(parser.RipCommand{Kind: parser.RipColor, Color: 9})
	s.HandleRip(parser.RipCommand{Kind: parser.RipPixel, X: 5, Y: 5})

	if got := s.Pixel(5, 5); got != 15^9 {
		t.Fatalf("xor pixel: %d", got)
	}
}

func TestRipFloodFillStopsAtBorder(t *testing.T) {
	s := newRipScreen()

	s.HandleRip(parser.RipCommand{Kind: parser.RipColor, Color: 5})
	s.HandleRip(parser.RipCommand{Kind: parser.RipRectangle, X0: 10, Y0: 10, X1: 40, Y1: 40})
	s.HandleRip(parser.RipCommand{Kind: parser.RipFillStyle, Pattern: 1, Color: 3})
	s.HandleRip(parser.RipCommand{Kind: parser.RipFill, X: 25, Y: 25, Border: 5})

	if got := s.Pixel(25, 25); got != 3 {
		t.Fatalf("fill interior: %d", got)
	}
	if got := s.Pixel(5, 5); got != 0 {
		t.Fatalf("fill leaked past border: %d", got)
	}
	if got := s.Pixel(10, 25); got != 5 {
		t.Fatalf("border overwritten: %d", got)
	}
}

func TestRipOnePaletteLoadsEGAColor(t *testing.T) {
	s := newRipScreen()

	// EGA register 4 is full red.
	s.HandleRip(parser.RipCommand{Kind: parser.RipOnePalette, Color: 1, Value: 4})

	r, g, b := s.pal.RGBAt(1)
	if r != 0xAA || g != 0 || b != 0 {
		t.Fatalf("palette slot 1: %02x%02x%02x", r, g, b)
	}
}

func TestRipGetPutImage(t *testing.T) {
	s := newRipScreen()

	s.HandleRip(parser.RipCommand{Kind: parser.RipFillStyle, Pattern: 1, Color: 6})
	s.HandleRip(parser.RipCommand{Kind: parser.RipBar, X0: 0, Y0: 0, X1: 7, Y1: 7})
	s.HandleRip(parser.RipCommand{Kind: parser.RipGetImage, X0: 0, Y0: 0, X1: 7, Y1: 7})
	s.HandleRip(parser.RipCommand{Kind: parser.RipPutImage, X: 100, Y: 100, Mode: 0})

	if got := s.Pixel(103, 103); got != 6 {
		t.Fatalf("blitted pixel: %d", got)
	}
}

func TestRipMouseFieldRegistered(t *testing.T) {
	s := newRipScreen()

	s.HandleRip(parser.RipCommand{Kind: parser.RipMouse, Num: 2, X0: 10, Y0: 10, X1: 60, Y1: 30, Text: "DOOR"})

	fields := s.MouseFields()
	if len(fields) != 1 {
		t.Fatalf("mouse fields: %#v", fields)
	}
	if fields[0].HostCommand != "DOOR" {
		t.Fatalf("host command: %q", fields[0].HostCommand)
	}
	if !fields[0].Rect.IsInside(buffer.Pos(30, 20)) {
		t.Fatalf("field rect: %v", fields[0].Rect)
	}

	s.HandleRip(parser.RipCommand{Kind: parser.RipMouseFields})
	if len(s.MouseFields()) != 0 {
		t.Fatalf("fields should clear")
	}
}

func TestRipButtonParsesLabelAndCommand(t *testing.T) {
	s := newRipScreen()

	s.HandleRip(parser.RipCommand{
		Kind: parser.RipButton,
		X0:   10, Y0: 10, X1: 80, Y1: 26,
		Text: "icon<>Login<>LOGIN\r<>",
	})

	fields := s.MouseFields()
	if len(fields) != 1 {
		t.Fatalf("mouse fields: %#v", fields)
	}
	if fields[0].HostCommand != "LOGIN\r" {
		t.Fatalf("host command: %q", fields[0].HostCommand)
	}
}

func TestRipResetWindowsRestoresDefaults(t *testing.T) {
	s := newRipScreen()

	s.HandleRip(parser.RipCommand{Kind: parser.RipColor, Color: 12})
	s.HandleRip(parser.RipCommand{Kind: parser.RipPixel, X: 50, Y: 50})
	s.HandleRip(parser.RipCommand{Kind: parser.RipViewPort, X0: 0, Y0: 0, X1: 100, Y1: 100})
	s.HandleRip(parser.RipCommand{Kind: parser.RipResetWindows})

	if got := s.Pixel(50, 50); got != 0 {
		t.Fatalf("raster not cleared: %d", got)
	}
	if s.bgi.color != 7 {
		t.Fatalf("pen color after reset: %d", s.bgi.color)
	}
	if s.bgi.viewport != buffer.Rect(0, 0, 640, 350) {
		t.Fatalf("viewport after reset: %v", s.bgi.viewport)
	}
}

func TestRipCircleDrawsAspectCorrected(t *testing.T) {
	s := newRipScreen()

	s.HandleRip(parser.RipCommand{Kind: parser.RipColor, Color: 14})
	s.HandleRip(parser.RipCommand{Kind: parser.RipCircle, X: 100, Y: 100, Radius: 40})

	// Horizontal extremes are at the full radius.
	if got := s.Pixel(140, 100); got != 14 {
		t.Fatalf("right extreme: %d", got)
	}
	if got := s.Pixel(60, 100); got != 14 {
		t.Fatalf("left extreme: %d", got)
	}
	// The vertical radius is shrunk by the 640x350 aspect ratio.
	if got := s.Pixel(100, 140); got != 0 {
		t.Fatalf("aspect: pixel at uncorrected radius should be clear")
	}
}

func TestRipFilledPolygonFillsInterior(t *testing.T) {
	s := newRipScreen()

	s.HandleRip(parser.RipCommand{Kind: parser.RipFillStyle, Pattern: 1, Color: 2})
	s.HandleRip(parser.RipCommand{
		Kind:   parser.RipFilledPolygon,
		Points: []int{20, 20, 120, 20, 120, 80, 20, 80},
	})

	if got := s.Pixel(70, 50); got != 2 {
		t.Fatalf("polygon interior: %d", got)
	}
	if got := s.Pixel(10, 50); got != 0 {
		t.Fatalf("outside polygon: %d", got)
	}
}

func TestRipTextWindowSetsMargins(t *testing.T) {
	s := newRipScreen()

	s.HandleRip(parser.RipCommand{Kind: parser.RipTextWindow, X0: 2, Y0: 3, X1: 70, Y1: 20, Size: 1, Wrap: true})

	top, bottom, ok := s.ts.MarginsTopBottom()
	if !ok || top != 3 || bottom != 20 {
		t.Fatalf("margins: %d..%d ok=%v", top, bottom, ok)
	}
	if s.caret.FontPage() != 1 {
		t.Fatalf("font page: %d", s.caret.FontPage())
	}
	if s.caret.Position != buffer.Pos(2, 3) {
		t.Fatalf("caret: %v", s.caret.Position)
	}
}
