// Copyright © 2026 Icebox contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: palette/palette.go
// Summary: Ordered RGB color table with a packed-RGBA render cache,
//          used by the character-cell and raster screen models.
// Notes: InsertColor is idempotent by value so repeated RGB SGR
//        sequences never grow the palette without bound.

package palette

import (
	"fmt"

	"github.com/lucasb-eyer/go-colorful"
)

// Color is one palette entry.
type Color struct {
	Name    string
	R, G, B uint8
}

func RGB(r, g, b uint8) Color { return Color{R: r, G: g, B: b} }

func (c Color) Values() (r, g, b uint8) { return c.R, c.G, c.B }

func (c Color) Hex() string { return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B) }

// Equal compares by value, ignoring the name.
func (c Color) Equal(o Color) bool { return c.R == o.R && c.G == o.G && c.B == o.B }

// RGBToRGBA packs a color into the little-endian RGBA layout used for
// fast pixel writes (R in the low byte, alpha 255 in the high byte).
func RGBToRGBA(r, g, b uint8) uint32 {
	return uint32(r) | uint32(g)<<8 | uint32(b)<<16 | 0xFF000000
}

// Palette is an ordered list of colors. The packed-RGBA cache mirrors
// the color list at all times.
type Palette struct {
	Title       string
	Description string
	Author      string

	colors    []Color
	cacheRGBA []uint32
}

// New returns an empty palette.
func New() *Palette { return &Palette{} }

// FromColors builds a palette from a color slice.
func FromColors(colors []Color) *Palette {
	p := &Palette{colors: append([]Color(nil), colors...)}
	p.rebuildCache()
	return p
}

// DOSDefault returns the 16-color VGA text-mode palette.
func DOSDefault() *Palette {
	p := FromColors(DOSDefaultPalette[:])
	p.Title = "Dos default"
	return p
}

func (p *Palette) rebuildCache() {
	p.cacheRGBA = p.cacheRGBA[:0]
	for _, c := range p.colors {
		p.cacheRGBA = append(p.cacheRGBA, RGBToRGBA(c.R, c.G, c.B))
	}
}

func (p *Palette) Len() int      { return len(p.colors) }
func (p *Palette) IsEmpty() bool { return len(p.colors) == 0 }

func (p *Palette) Clear() {
	p.colors = p.colors[:0]
	p.cacheRGBA = p.cacheRGBA[:0]
}

// Color returns the entry at index, black when out of range.
func (p *Palette) Color(index int) Color {
	if index < 0 || index >= len(p.colors) {
		return Color{}
	}
	return p.colors[index]
}

// RGBAt returns the channels at index, black when out of range.
func (p *Palette) RGBAt(index int) (r, g, b uint8) {
	c := p.Color(index)
	return c.R, c.G, c.B
}

// Colors returns the backing slice; callers must not mutate it.
func (p *Palette) Colors() []Color { return p.colors }

// CacheRGBA exposes the packed-RGBA mirror for fast pixel writes.
func (p *Palette) CacheRGBA() []uint32 { return p.cacheRGBA }

// Push appends a color unconditionally.
func (p *Palette) Push(c Color) {
	p.colors = append(p.colors, c)
	p.cacheRGBA = append(p.cacheRGBA, RGBToRGBA(c.R, c.G, c.B))
}

// SetColor stores a color at index, growing the palette with black
// entries when needed.
func (p *Palette) SetColor(index int, c Color) {
	if index < 0 {
		return
	}
	for len(p.colors) <= index {
		p.colors = append(p.colors, Color{})
		p.cacheRGBA = append(p.cacheRGBA, RGBToRGBA(0, 0, 0))
	}
	p.colors[index] = c
	p.cacheRGBA[index] = RGBToRGBA(c.R, c.G, c.B)
}

// SetRGB stores raw channels at index.
func (p *Palette) SetRGB(index int, r, g, b uint8) { p.SetColor(index, RGB(r, g, b)) }

// Resize grows (filling with the DOS defaults up to 16, then black) or
// shrinks the palette to size.
func (p *Palette) Resize(size int) {
	if size > len(p.colors) {
		p.FillTo16()
	}
	for len(p.colors) < size {
		p.colors = append(p.colors, Color{})
		p.cacheRGBA = append(p.cacheRGBA, RGBToRGBA(0, 0, 0))
	}
	if size < len(p.colors) {
		p.colors = p.colors[:size]
		p.cacheRGBA = p.cacheRGBA[:size]
	}
}

// FillTo16 pads a short palette with the missing DOS default entries.
func (p *Palette) FillTo16() {
	for i := len(p.colors); i < len(DOSDefaultPalette); i++ {
		p.Push(DOSDefaultPalette[i])
	}
}

// IsDefault reports whether the palette matches the DOS default exactly.
func (p *Palette) IsDefault() bool {
	if len(p.colors) != len(DOSDefaultPalette) {
		return false
	}
	for i := range DOSDefaultPalette {
		if !p.colors[i].Equal(DOSDefaultPalette[i]) {
			return false
		}
	}
	return true
}

// ColorsEqual compares the color lists of two palettes by value.
func (p *Palette) ColorsEqual(other *Palette) bool {
	if len(p.colors) != len(other.colors) {
		return false
	}
	for i := range p.colors {
		if !p.colors[i].Equal(other.colors[i]) {
			return false
		}
	}
	return true
}

// Clone returns an independent copy.
func (p *Palette) Clone() *Palette {
	c := &Palette{Title: p.Title, Description: p.Description, Author: p.Author}
	c.colors = append([]Color(nil), p.colors...)
	c.cacheRGBA = append([]uint32(nil), p.cacheRGBA...)
	return c
}

// InsertColor returns the index of an existing entry with the same
// value, or appends the color and returns the new index. Same RGB in,
// same index out.
func (p *Palette) InsertColor(c Color) int {
	for i := range p.colors {
		if p.colors[i].Equal(c) {
			return i
		}
	}
	p.Push(c)
	return len(p.colors) - 1
}

// InsertRGB is InsertColor for raw channels.
func (p *Palette) InsertRGB(r, g, b uint8) int { return p.InsertColor(RGB(r, g, b)) }

// Nearest returns the index of the perceptually closest entry (CIE76
// distance in Lab space), or -1 for an empty palette.
func (p *Palette) Nearest(r, g, b uint8) int {
	want := colorful.Color{R: float64(r) / 255, G: float64(g) / 255, B: float64(b) / 255}
	best, bestDist := -1, 0.0
	for i, c := range p.colors {
		have := colorful.Color{R: float64(c.R) / 255, G: float64(c.G) / 255, B: float64(c.B) / 255}
		d := want.DistanceLab(have)
		if best < 0 || d < bestDist {
			best, bestDist = i, d
		}
	}
	return best
}

// FromBytes decodes packed 8-bit RGB triples.
func FromBytes(pal []byte) *Palette {
	p := New()
	for o := 0; o+2 < len(pal); o += 3 {
		p.Push(RGB(pal[o], pal[o+1], pal[o+2]))
	}
	return p
}

// Bytes encodes the palette as packed 8-bit RGB triples.
func (p *Palette) Bytes() []byte {
	res := make([]byte, 0, 3*len(p.colors))
	for _, c := range p.colors {
		res = append(res, c.R, c.G, c.B)
	}
	return res
}

// From63 decodes packed 6-bit VGA triples (XBin palette block),
// expanding each channel so full scale maps to 255.
func From63(pal []byte) *Palette {
	p := New()
	for o := 0; o+2 < len(pal); o += 3 {
		p.Push(RGB(expand63(pal[o]), expand63(pal[o+1]), expand63(pal[o+2])))
	}
	return p
}

// Bytes63 encodes the palette as packed 6-bit VGA triples.
func (p *Palette) Bytes63() []byte {
	res := make([]byte, 0, 3*len(p.colors))
	for _, c := range p.colors {
		res = append(res, c.R>>2, c.G>>2, c.B>>2)
	}
	return res
}

func expand63(v uint8) uint8 { return v<<2 | v>>4 }
