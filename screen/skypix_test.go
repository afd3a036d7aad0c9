// Copyright © 2026 Icebox contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: screen/skypix_test.go
// Summary: Exercises the SkyPix paint engine through HandleSkypix:
//          pens, fills, brush blits, palettes and gadgets.
// Usage: Executed during `go test`.

package screen

import (
	"testing"

	"github.com/icebox-art/icebox/buffer"
	"github.com/icebox-art/icebox/parser"
)

func newSkypixScreen() *PaletteScreen {
	return NewPaletteScreen(GraphicsType{Kind: GraphicsSkypix})
}

func TestSkypixScreenDefaults(t *testing.T) {
	s := newSkypixScreen()

	if s.Resolution() != (buffer.Size{Width: 640, Height: 200}) {
		t.Fatalf("resolution: %v", s.Resolution())
	}
	if s.sky.penA != 2 || s.sky.penB != 0 {
		t.Fatalf("pen defaults: a %d b %d", s.sky.penA, s.sky.penB)
	}
}

func TestSkypixSetPixelMovesPen(t *testing.T) {
	s := newSkypixScreen()

	s.HandleSkypix(parser.SkypixCommand{Kind: parser.SkypixSetPenA, Color: 5})
	s.HandleSkypix(parser.SkypixCommand{Kind: parser.SkypixSetPixel, X: 12, Y: 34})

	if got := s.Pixel(12, 34); got != 5 {
		t.Fatalf("pixel: %d", got)
	}
	if s.sky.penPos != buffer.Pos(12, 34) {
		t.Fatalf("pen position: %v", s.sky.penPos)
	}
}

func TestSkypixDrawLineFromPen(t *testing.T) {
	s := newSkypixScreen()

	s.HandleSkypix(parser.SkypixCommand{Kind: parser.SkypixSetPenA, Color: 3})
	s.HandleSkypix(parser.SkypixCommand{Kind: parser.SkypixMovePen, X: 0, Y: 10})
	s.HandleSkypix(parser.SkypixCommand{Kind: parser.SkypixDrawLine, X: 20, Y: 10})

	for x := 0; x <= 20; x++ {
		if got := s.Pixel(x, 10); got != 3 {
			t.Fatalf("line pixel %d: %d", x, got)
		}
	}
	if s.sky.penPos != buffer.Pos(20, 10) {
		t.Fatalf("pen position after line: %v", s.sky.penPos)
	}
}

func TestSkypixRectangleFillIsInclusive(t *testing.T) {
	s := newSkypixScreen()

	s.HandleSkypix(parser.SkypixCommand{Kind: parser.SkypixSetPenA, Color: 4})
	s.HandleSkypix(parser.SkypixCommand{Kind: parser.SkypixRectangleFill, X: 5, Y: 5, X2: 9, Y2: 9})

	if got := s.Pixel(9, 9); got != 4 {
		t.Fatalf("far corner: %d", got)
	}
	if got := s.Pixel(10, 9); got != 0 {
		t.Fatalf("outside rect: %d", got)
	}
}

func TestSkypixFloodFillOutlineMode(t *testing.T) {
	s := newSkypixScreen()

	// A hollow frame drawn with pen 6; outline fill from the center
	// stays inside it.
	s.HandleSkypix(parser.SkypixCommand{Kind: parser.SkypixSetPenA, Color: 6})
	s.HandleSkypix(parser.SkypixCommand{Kind: parser.SkypixRectangleFill, X: 10, Y: 10, X2: 30, Y2: 10})
	s.HandleSkypix(parser.SkypixCommand{Kind: parser.SkypixRectangleFill, X: 10, Y: 30, X2: 30, Y2: 30})
	s.HandleSkypix(parser.SkypixCommand{Kind: parser.SkypixRectangleFill, X: 10, Y: 10, X2: 10, Y2: 30})
	s.HandleSkypix(parser.SkypixCommand{Kind: parser.SkypixRectangleFill, X: 30, Y: 10, X2: 30, Y2: 30})

	s.HandleSkypix(parser.SkypixCommand{Kind: parser.SkypixAreaFill, Fill: parser.FillOutline, X: 20, Y: 20})

	if got := s.Pixel(20, 20); got != 6 {
		t.Fatalf("interior: %d", got)
	}
	if got := s.Pixel(5, 5); got != 0 {
		t.Fatalf("fill escaped the frame: %d", got)
	}
}

func TestSkypixFloodFillColorMode(t *testing.T) {
	s := newSkypixScreen()

	s.HandleSkypix(parser.SkypixCommand{Kind: parser.SkypixSetPenA, Color: 4})
	s.HandleSkypix(parser.SkypixCommand{Kind: parser.SkypixRectangleFill, X: 10, Y: 10, X2: 20, Y2: 20})
	s.HandleSkypix(parser.SkypixCommand{Kind: parser.SkypixSetPenA, Color: 7})
	s.HandleSkypix(parser.SkypixCommand{Kind: parser.SkypixAreaFill, Fill: parser.FillColor, X: 15, Y: 15})

	if got := s.Pixel(15, 15); got != 7 {
		t.Fatalf("recolored region: %d", got)
	}
	if got := s.Pixel(9, 15); got != 0 {
		t.Fatalf("pixel outside the region: %d", got)
	}
}

func TestSkypixEllipseAndFilledEllipse(t *testing.T) {
	s := newSkypixScreen()

	s.HandleSkypix(parser.SkypixCommand{Kind: parser.SkypixEllipse, X: 100, Y: 100, A: 20, B: 10})

	if got := s.Pixel(120, 100); got != 2 {
		t.Fatalf("outline right extreme: %d", got)
	}
	if got := s.Pixel(100, 100); got != 0 {
		t.Fatalf("outline center should stay clear: %d", got)
	}

	s.HandleSkypix(parser.SkypixCommand{Kind: parser.SkypixFilledEllipse, X: 300, Y: 100, A: 20, B: 10})
	if got := s.Pixel(300, 100); got != 2 {
		t.Fatalf("filled center: %d", got)
	}
}

func TestSkypixBrushGrabAndBlit(t *testing.T) {
	s := newSkypixScreen()

	s.HandleSkypix(parser.SkypixCommand{Kind: parser.SkypixSetPenA, Color: 9})
	s.HandleSkypix(parser.SkypixCommand{Kind: parser.SkypixRectangleFill, X: 0, Y: 0, X2: 3, Y2: 3})
	s.HandleSkypix(parser.SkypixCommand{Kind: parser.SkypixGrabBrush, X: 0, Y: 0, Width: 4, Height: 4})
	s.HandleSkypix(parser.SkypixCommand{
		Kind: parser.SkypixUseBrush,
		SrcX: 0, SrcY: 0, Width: 4, Height: 4,
		X: 100, Y: 100,
	})

	for dy := 0; dy < 4; dy++ {
		for dx := 0; dx < 4; dx++ {
			if got := s.Pixel(100+dx, 100+dy); got != 9 {
				t.Fatalf("blit pixel (%d,%d): %d", dx, dy, got)
			}
		}
	}
	if got := s.Pixel(104, 100); got != 0 {
		t.Fatalf("pixel past blit: %d", got)
	}
}

func TestSkypixNewPaletteDecodesAmigaColors(t *testing.T) {
	s := newSkypixScreen()

	colors := make([]int, 16)
	colors[0] = 0xF00
	colors[1] = 0x0F0
	colors[2] = 0x00F
	colors[3] = 0x842
	s.HandleSkypix(parser.SkypixCommand{Kind: parser.SkypixNewPalette, Colors: colors})

	if r, g, b := s.pal.RGBAt(0); r != 0xFF || g != 0 || b != 0 {
		t.Fatalf("slot 0: %02x%02x%02x", r, g, b)
	}
	if r, g, b := s.pal.RGBAt(3); r != 0x88 || g != 0x44 || b != 0x22 {
		t.Fatalf("slot 3: %02x%02x%02x", r, g, b)
	}

	s.HandleSkypix(parser.SkypixCommand{Kind: parser.SkypixResetPalette})
	if r, g, b := s.pal.RGBAt(0); r != 0 || g != 0 || b != 0 {
		t.Fatalf("reset slot 0: %02x%02x%02x", r, g, b)
	}
}

func TestSkypixDisplayModeMasksPens(t *testing.T) {
	s := newSkypixScreen()

	s.HandleSkypix(parser.SkypixCommand{Kind: parser.SkypixSetDisplayMode, Display: parser.DisplayEightColors})
	s.HandleSkypix(parser.SkypixCommand{Kind: parser.SkypixSetPenA, Color: 12})

	if s.sky.penA != 4 {
		t.Fatalf("masked pen: %d", s.sky.penA)
	}

	s.HandleSkypix(parser.SkypixCommand{Kind: parser.SkypixSetDisplayMode, Display: parser.DisplaySixteenColors})
	s.HandleSkypix(parser.SkypixCommand{Kind: parser.SkypixSetPenA, Color: 12})
	if s.sky.penA != 12 {
		t.Fatalf("unmasked pen: %d", s.sky.penA)
	}
}

func TestSkypixDefineGadgetAddsMouseField(t *testing.T) {
	s := newSkypixScreen()

	s.HandleSkypix(parser.SkypixCommand{
		Kind: parser.SkypixDefineGadget,
		Num:  3, Cmd: 7,
		X: 10, Y: 10, X2: 60, Y2: 30,
	})

	fields := s.MouseFields()
	if len(fields) != 1 {
		t.Fatalf("mouse fields: %#v", fields)
	}
	if fields[0].HostCommand != "7" || fields[0].Style != 3 {
		t.Fatalf("gadget field: %#v", fields[0])
	}
}

func TestSkypixAudioCommandsAreNoOps(t *testing.T) {
	s := newSkypixScreen()
	before := s.Version()

	s.HandleSkypix(parser.SkypixCommand{Kind: parser.SkypixPlaySample})
	s.HandleSkypix(parser.SkypixCommand{Kind: parser.SkypixDelay, Jiffies: 50})

	for _, px := range s.Raster() {
		if px != 0 {
			t.Fatalf("raster modified by audio command")
		}
	}
	if s.Version() == before {
		t.Fatalf("version should still advance for redraw polling")
	}
}
