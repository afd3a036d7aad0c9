// Copyright © 2026 Icebox contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: palette/palette_test.go
// Summary: Exercises the color table, the packed-RGBA mirror cache,
//          the 6-bit VGA codec and nearest-color matching.
// Usage: Executed during `go test` to guard against regressions.

package palette

import "testing"

func TestDOSDefault(t *testing.T) {
	p := DOSDefault()
	if p.Len() != 16 || !p.IsDefault() {
		t.Fatalf("dos default: len %d default %v", p.Len(), p.IsDefault())
	}
	if r, g, b := p.RGBAt(1); r != 0 || g != 0 || b != 0xAA {
		t.Fatalf("blue entry: %d %d %d", r, g, b)
	}

	p.SetRGB(1, 1, 2, 3)
	if p.IsDefault() {
		t.Fatalf("modified palette must not report default")
	}
}

func TestCacheMirrorsColors(t *testing.T) {
	p := New()
	p.Push(RGB(0x11, 0x22, 0x33))
	cache := p.CacheRGBA()
	if len(cache) != 1 || cache[0] != RGBToRGBA(0x11, 0x22, 0x33) {
		t.Fatalf("cache after push: %#x", cache)
	}

	p.SetColor(3, RGB(9, 9, 9))
	if p.Len() != 4 {
		t.Fatalf("grow on set: %d", p.Len())
	}
	cache = p.CacheRGBA()
	if len(cache) != 4 || cache[3] != RGBToRGBA(9, 9, 9) || cache[1] != RGBToRGBA(0, 0, 0) {
		t.Fatalf("cache after grow: %#x", cache)
	}
}

func TestInsertColorIsIdempotent(t *testing.T) {
	p := DOSDefault()
	// Same RGB in, same index out.
	first := p.InsertRGB(0x10, 0x20, 0x30)
	second := p.InsertRGB(0x10, 0x20, 0x30)
	if first != second || first != 16 {
		t.Fatalf("insert indices: %d %d", first, second)
	}
	if p.Len() != 17 {
		t.Fatalf("palette grew twice: %d", p.Len())
	}
	// Existing entries are found by value.
	if idx := p.InsertColor(RGB(0xAA, 0xAA, 0xAA)); idx != 7 {
		t.Fatalf("existing entry index: %d", idx)
	}
}

func TestResizeFillsWithDefaults(t *testing.T) {
	p := FromColors([]Color{{R: 1}, {R: 2}})
	p.Resize(18)
	if p.Len() != 18 {
		t.Fatalf("resize length: %d", p.Len())
	}
	// Entries 2-15 are filled from the DOS defaults, the rest black.
	if !p.Color(2).Equal(DOSDefaultPalette[2]) {
		t.Fatalf("fill entry 2: %#v", p.Color(2))
	}
	if !p.Color(17).Equal(Color{}) {
		t.Fatalf("pad entry 17: %#v", p.Color(17))
	}

	p.Resize(4)
	if p.Len() != 4 || len(p.CacheRGBA()) != 4 {
		t.Fatalf("shrink: len %d cache %d", p.Len(), len(p.CacheRGBA()))
	}
}

func TestSixBitCodec(t *testing.T) {
	p := DOSDefault()
	packed := p.Bytes63()
	if len(packed) != 48 {
		t.Fatalf("packed length: %d", len(packed))
	}
	loaded := From63(packed)
	if !loaded.ColorsEqual(p) {
		t.Fatalf("6-bit round trip changed colors")
	}
	// Full scale maps to 255.
	if got := expand63(0x3F); got != 0xFF {
		t.Fatalf("expand full scale: %#x", got)
	}
	if got := expand63(0); got != 0 {
		t.Fatalf("expand zero: %#x", got)
	}
}

func TestBytesRoundTrip(t *testing.T) {
	p := DOSDefault()
	loaded := FromBytes(p.Bytes())
	if !loaded.ColorsEqual(p) {
		t.Fatalf("8-bit round trip changed colors")
	}
}

func TestNearest(t *testing.T) {
	p := DOSDefault()
	if idx := p.Nearest(0xFF, 0xFF, 0xFF); idx != 15 {
		t.Fatalf("white nearest: %d", idx)
	}
	if idx := p.Nearest(0x02, 0x01, 0x00); idx != 0 {
		t.Fatalf("near-black nearest: %d", idx)
	}
	if idx := New().Nearest(1, 2, 3); idx != -1 {
		t.Fatalf("empty palette nearest: %d", idx)
	}
}

func TestCloneIndependence(t *testing.T) {
	p := DOSDefault()
	c := p.Clone()
	c.SetRGB(0, 9, 9, 9)
	if r, _, _ := p.RGBAt(0); r == 9 {
		t.Fatalf("clone write leaked into original")
	}
}

func TestXTermTable(t *testing.T) {
	// Color cube entry 16 is black, 231 is white.
	if !XTerm256Palette[16].Equal(Color{}) {
		t.Fatalf("cube start: %#v", XTerm256Palette[16])
	}
	if !XTerm256Palette[231].Equal(Color{R: 0xFF, G: 0xFF, B: 0xFF}) {
		t.Fatalf("cube end: %#v", XTerm256Palette[231])
	}
	// Gray ramp runs from 8 to 238 in steps of 10.
	if XTerm256Palette[232].R != 8 || XTerm256Palette[255].R != 238 {
		t.Fatalf("gray ramp: %#v %#v", XTerm256Palette[232], XTerm256Palette[255])
	}
}
