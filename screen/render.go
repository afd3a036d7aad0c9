// Copyright © 2026 Icebox contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: screen/render.go
// Summary: Software rasterizer turning text screens into RGBA frames.
// Usage: Viewers call RenderToRGBA each time Version changes; the
//        region variant serves partial redraws.
// Notes: Bold promotes low foreground indices to their bright pair,
//        matching the raster screens and DOS display hardware.

package screen

import (
	"github.com/icebox-art/icebox/buffer"
	"github.com/icebox-art/icebox/palette"
)

// RenderOptions selects the dynamic parts of a frame.
type RenderOptions struct {
	// BlinkOn is the current phase; blinking glyphs are hidden while
	// false. Ice-color screens have no blink phase.
	BlinkOn bool
	// ShowCaret inverts the caret cell.
	ShowCaret bool
}

// RenderToRGBA draws the visible screen, 4 bytes per pixel.
func (s *TextScreen) RenderToRGBA(opts RenderOptions) (buffer.Size, []byte) {
	dims := s.FontDimensions()
	cells := buffer.Rect(0, s.FirstVisibleLine(), s.ts.Width(), s.ts.Height())
	return s.renderCells(cells, dims, opts)
}

// RenderRegionToRGBA draws the given pixel region of the visible
// screen.
func (s *TextScreen) RenderRegionToRGBA(region buffer.Rectangle, opts RenderOptions) (buffer.Size, []byte) {
	full, pixels := s.RenderToRGBA(opts)
	return cropRGBA(full, pixels, region)
}

func (s *TextScreen) renderCells(cells buffer.Rectangle, dims buffer.Size, opts RenderOptions) (buffer.Size, []byte) {
	size := buffer.Size{
		Width:  cells.Size.Width * dims.Width,
		Height: cells.Size.Height * dims.Height,
	}
	pixels := make([]byte, size.Width*size.Height*4)

	for cy := 0; cy < cells.Size.Height; cy++ {
		for cx := 0; cx < cells.Size.Width; cx++ {
			pos := buffer.Pos(cells.Start.X+cx, cells.Start.Y+cy)
			s.renderCell(pos, cx*dims.Width, cy*dims.Height, dims, size, pixels, opts)
		}
	}

	s.renderSixels(cells, dims, size, pixels)
	return size, pixels
}

func (s *TextScreen) renderCell(pos buffer.Position, px, py int, dims, size buffer.Size, pixels []byte, opts RenderOptions) {
	ch := s.buf.CharAt(pos)
	attr := ch.Attribute

	fr, fg, fb := resolveRGB(s.buf.Palette, attr.Foreground, attr.IsBold())
	br, bg, bb := resolveRGB(s.buf.Palette, attr.Background, false)

	hidden := attr.IsConcealed()
	if attr.IsBlinking() && s.buf.IceMode.HasBlink() && !opts.BlinkOn {
		hidden = true
	}
	if opts.ShowCaret && s.caret.Visible && pos == s.caret.Position {
		fr, fg, fb, br, bg, bb = br, bg, bb, fr, fg, fb
	}

	glyph := s.buf.Glyph(ch)
	for y := 0; y < dims.Height; y++ {
		row := (py + y) * size.Width
		for x := 0; x < dims.Width; x++ {
			off := (row + px + x) * 4
			set := !hidden && glyph != nil && glyph.Pixel(x, y)
			if attr.IsUnderlined() && y == dims.Height-1 {
				set = !hidden
			}
			if set {
				pixels[off], pixels[off+1], pixels[off+2] = fr, fg, fb
			} else {
				pixels[off], pixels[off+1], pixels[off+2] = br, bg, bb
			}
			pixels[off+3] = 0xFF
		}
	}
}

func (s *TextScreen) renderSixels(cells buffer.Rectangle, dims, size buffer.Size, pixels []byte) {
	for _, layer := range s.buf.Layers {
		for i := range layer.Sixels {
			sixel := &layer.Sixels[i]
			originX := (sixel.Position.X - cells.Start.X) * dims.Width
			originY := (sixel.Position.Y - cells.Start.Y) * dims.Height
			sx := max(sixel.HorizontalScale, 1)
			sy := max(sixel.VerticalScale, 1)
			for y := 0; y < sixel.Height*sy; y++ {
				ty := originY + y
				if ty < 0 || ty >= size.Height {
					continue
				}
				srcRow := (y / sy) * sixel.Width
				for x := 0; x < sixel.Width*sx; x++ {
					tx := originX + x
					if tx < 0 || tx >= size.Width {
						continue
					}
					src := (srcRow + x/sx) * 4
					dst := (ty*size.Width + tx) * 4
					copy(pixels[dst:dst+4], sixel.Data[src:src+4])
				}
			}
		}
	}
}

// resolveRGB maps an attribute color to RGB. Bold foregrounds in the
// low palette half use the bright pair.
func resolveRGB(pal *palette.Palette, c buffer.AttributeColor, bold bool) (r, g, b uint8) {
	switch {
	case c.IsTransparent():
		return 0, 0, 0
	case c.IsRGB():
		return c.RGB()
	case c.IsExtended():
		xc := palette.XTerm256Palette[c.Index()]
		return xc.R, xc.G, xc.B
	default:
		idx := c.Index()
		if bold && idx < 8 {
			idx += 8
		}
		return pal.RGBAt(int(idx))
	}
}

func cropRGBA(full buffer.Size, pixels []byte, region buffer.Rectangle) (buffer.Size, []byte) {
	x0 := clamp(region.Start.X, 0, full.Width)
	y0 := clamp(region.Start.Y, 0, full.Height)
	x1 := clamp(region.Start.X+region.Size.Width, x0, full.Width)
	y1 := clamp(region.Start.Y+region.Size.Height, y0, full.Height)

	size := buffer.Size{Width: x1 - x0, Height: y1 - y0}
	out := make([]byte, size.Width*size.Height*4)
	for y := 0; y < size.Height; y++ {
		src := ((y0+y)*full.Width + x0) * 4
		dst := y * size.Width * 4
		copy(out[dst:dst+size.Width*4], pixels[src:src+size.Width*4])
	}
	return size, out
}
