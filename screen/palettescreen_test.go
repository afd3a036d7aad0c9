// Copyright © 2026 Icebox contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: screen/palettescreen_test.go
// Summary: Exercises the indexed raster screen: glyph rendering, text
//          scrolling over the pixel store and RGBA expansion.
// Usage: Executed during `go test`.

package screen

import (
	"testing"

	"github.com/icebox-art/icebox/buffer"
)

func TestPaletteScreenRendersGlyphs(t *testing.T) {
	s := newRipScreen()

	s.SetChar(buffer.Pos(0, 0), buffer.NewChar('#', buffer.NewAttribute(7, 0)))

	set := 0
	for y := 0; y < s.fontDims.Height; y++ {
		for x := 0; x < s.fontDims.Width; x++ {
			if s.Pixel(x, y) == 7 {
				set++
			}
		}
	}
	if set == 0 {
		t.Fatalf("glyph left no foreground pixels")
	}
	if ch := s.CharAt(buffer.Pos(0, 0)); ch.Ch != '#' {
		t.Fatalf("cell model: %#v", ch)
	}
}

func TestPaletteScreenBoldPromotesForeground(t *testing.T) {
	s := newRipScreen()

	attr := buffer.NewAttribute(1, 0)
	attr.SetBold(true)
	s.SetChar(buffer.Pos(0, 0), buffer.NewChar('#', attr))

	found := false
	for _, px := range s.raster[:s.fontDims.Height*s.pixelSize.Width] {
		if px == 9 {
			found = true
			break
		}
	}
	if !found {
		t.Fatalf("bold low color should render bright")
	}
}

func TestPaletteScreenScrollUpShiftsRaster(t *testing.T) {
	s := newRipScreen()

	rowPx := s.fontDims.Height
	s.SetPixel(5, rowPx, 9)
	s.ScrollUp()

	if got := s.Pixel(5, 0); got != 9 {
		t.Fatalf("pixel after scroll: %d", got)
	}
	if got := s.Pixel(5, rowPx); got != 0 {
		t.Fatalf("source row should clear: %d", got)
	}
}

func TestPaletteScreenInsertTerminalLine(t *testing.T) {
	s := newRipScreen()

	rowPx := s.fontDims.Height
	s.SetPixel(3, 0, 5)
	s.InsertTerminalLine(0)

	if got := s.Pixel(3, rowPx); got != 5 {
		t.Fatalf("shifted pixel: %d", got)
	}
	if got := s.Pixel(3, 0); got != 0 {
		t.Fatalf("inserted row should be blank: %d", got)
	}
}

func TestPaletteScreenClearScreen(t *testing.T) {
	s := newRipScreen()

	s.SetPixel(10, 10, 3)
	s.caret.SetPosition(buffer.Pos(4, 4))
	s.ClearScreen()

	if got := s.Pixel(10, 10); got != 0 {
		t.Fatalf("raster after clear: %d", got)
	}
	if s.caret.Position != (buffer.Position{}) {
		t.Fatalf("caret after clear: %v", s.caret.Position)
	}
}

func TestPaletteScreenRenderToRGBA(t *testing.T) {
	s := newRipScreen()

	s.SetPixel(0, 0, 1)
	size, pixels := s.RenderToRGBA(RenderOptions{})

	if size != s.pixelSize {
		t.Fatalf("render size: %v", size)
	}
	if len(pixels) != size.Width*size.Height*4 {
		t.Fatalf("pixel buffer length: %d", len(pixels))
	}
	r, g, b := s.pal.RGBAt(1)
	if pixels[0] != r || pixels[1] != g || pixels[2] != b || pixels[3] != 0xFF {
		t.Fatalf("first pixel: % x", pixels[:4])
	}
}

func TestPaletteScreenDirtyTracking(t *testing.T) {
	s := newRipScreen()
	s.TakeDirty()

	before := s.Version()
	s.SetChar(buffer.Pos(0, 0), buffer.NewChar('A', buffer.DefaultAttribute()))

	if !s.TakeDirty() {
		t.Fatalf("write should mark dirty")
	}
	if s.TakeDirty() {
		t.Fatalf("dirty flag should clear on take")
	}
	if s.Version() == before {
		t.Fatalf("version should advance")
	}
}

func TestPaletteScreenSetGraphicsSwitchesMode(t *testing.T) {
	s := newRipScreen()

	s.SetGraphics(GraphicsType{Kind: GraphicsIgs, Resolution: ResolutionHigh})

	if s.Resolution() != (buffer.Size{Width: 640, Height: 400}) {
		t.Fatalf("resolution: %v", s.Resolution())
	}
	if s.pal.Len() != 2 {
		t.Fatalf("monochrome palette: %d", s.pal.Len())
	}
}
