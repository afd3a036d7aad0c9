// Copyright © 2026 Icebox contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: font/glyph.go
// Summary: Packed bitmap glyph, one byte per row, MSB is the leftmost
//          pixel. Covers fonts up to 8 pixels wide and 32 tall.

package font

// MaxGlyphHeight is the tallest glyph the packed layout can hold.
const MaxGlyphHeight = 32

// Glyph is one character bitmap. Rows are stored MSB-first: bit 7 is
// x=0, bit 0 is x=7.
type Glyph struct {
	Data   [MaxGlyphHeight]byte
	Width  uint8
	Height uint8
}

// EmptyGlyph returns a blank 8x16 glyph.
func EmptyGlyph() Glyph { return Glyph{Width: 8, Height: 16} }

// NewGlyph returns a blank glyph of the given size.
func NewGlyph(width, height uint8) Glyph { return Glyph{Width: width, Height: height} }

// GlyphFromRows builds a glyph from raw row bytes, clamped to the
// glyph height.
func GlyphFromRows(width, height uint8, rows []byte) Glyph {
	g := NewGlyph(width, height)
	n := min(len(rows), min(MaxGlyphHeight, int(height)))
	copy(g.Data[:n], rows[:n])
	return g
}

// Pixel reports the pixel at (x, y), false outside the glyph.
func (g *Glyph) Pixel(x, y int) bool {
	if x < 0 || y < 0 || x >= int(g.Width) || y >= int(g.Height) {
		return false
	}
	return g.Data[y]&(0x80>>x) != 0
}

// SetPixel stores a pixel, ignoring out-of-bounds coordinates.
func (g *Glyph) SetPixel(x, y int, value bool) {
	if x < 0 || y < 0 || x >= int(g.Width) || y >= int(g.Height) {
		return
	}
	mask := byte(0x80) >> x
	if value {
		g.Data[y] |= mask
	} else {
		g.Data[y] &^= mask
	}
}

// Row returns one row byte, zero outside the glyph.
func (g *Glyph) Row(y int) byte {
	if y < 0 || y >= int(g.Height) {
		return 0
	}
	return g.Data[y]
}

// SetRow stores one row byte, ignoring out-of-bounds rows.
func (g *Glyph) SetRow(y int, value byte) {
	if y >= 0 && y < int(g.Height) {
		g.Data[y] = value
	}
}

// IsEmpty reports whether every pixel is off.
func (g *Glyph) IsEmpty() bool {
	for _, b := range g.Data[:g.Height] {
		if b != 0 {
			return false
		}
	}
	return true
}

// FlipX mirrors the glyph left to right.
func (g *Glyph) FlipX() {
	for y := 0; y < int(g.Height); y++ {
		g.Data[y] = reverseBits(g.Data[y], g.Width)
	}
}

// FlipY mirrors the glyph top to bottom.
func (g *Glyph) FlipY() {
	h := int(g.Height)
	for y := 0; y < h/2; y++ {
		g.Data[y], g.Data[h-1-y] = g.Data[h-1-y], g.Data[y]
	}
}

// ExtendTo9px widens the rows to 9 pixels for VGA letter-spacing mode.
// When extendEighth is set the 8th column is copied into the 9th, which
// is what VGA hardware does for the box-drawing range.
func (g *Glyph) ExtendTo9px(extendEighth bool) [MaxGlyphHeight]uint16 {
	var result [MaxGlyphHeight]uint16
	for y := 0; y < int(g.Height); y++ {
		b := g.Data[y]
		word := uint16(b) << 1
		if extendEighth && b&0x01 != 0 {
			word |= 0x01
		}
		result[y] = word
	}
	return result
}

// reverseBits mirrors the width leftmost bits of a row byte.
func reverseBits(b byte, width uint8) byte {
	var result byte
	for i := uint8(0); i < width; i++ {
		if b&(0x80>>i) != 0 {
			result |= 0x80 >> (width - 1 - i)
		}
	}
	return result
}
