// Copyright © 2026 Icebox contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: font/font_test.go
// Summary: Exercises glyph bit packing, font loading, height scaling
//          and the COM loader's format sniffing.
// Usage: Executed during `go test` to guard against regressions.

package font

import (
	"encoding/binary"
	"strings"
	"testing"
)

func TestGlyphPixelPacking(t *testing.T) {
	g := NewGlyph(8, 16)

	g.SetPixel(0, 0, true)
	if !g.Pixel(0, 0) || g.Data[0] != 0x80 {
		t.Fatalf("leftmost pixel should be bit 7: %#v", g.Data[0])
	}
	g.SetPixel(7, 0, true)
	if g.Data[0] != 0x81 {
		t.Fatalf("rightmost pixel should be bit 0: %#v", g.Data[0])
	}
	g.SetPixel(0, 0, false)
	if g.Pixel(0, 0) || g.Data[0] != 0x01 {
		t.Fatalf("clearing left pixel: %#v", g.Data[0])
	}
}

func TestGlyphFlip(t *testing.T) {
	g := GlyphFromRows(8, 2, []byte{0x80, 0x0F})
	g.FlipX()
	if g.Data[0] != 0x01 || g.Data[1] != 0xF0 {
		t.Fatalf("flip x: %#v", g.Data[:2])
	}
	g.FlipY()
	if g.Data[0] != 0xF0 || g.Data[1] != 0x01 {
		t.Fatalf("flip y: %#v", g.Data[:2])
	}
}

func TestGlyphExtendTo9px(t *testing.T) {
	g := GlyphFromRows(8, 1, []byte{0xC1})
	plain := g.ExtendTo9px(false)
	if plain[0] != 0x182 {
		t.Fatalf("plain extension: %#x", plain[0])
	}
	extended := g.ExtendTo9px(true)
	if extended[0] != 0x183 {
		t.Fatalf("box-drawing extension should copy bit 0: %#x", extended[0])
	}
}

func TestDefaultFont(t *testing.T) {
	f := Default()
	if !f.IsDefault() {
		t.Fatalf("built-in font must report default: %q", f.Name)
	}
	if f.Width != 8 || f.Height != 16 {
		t.Fatalf("unexpected cell size: %dx%d", f.Width, f.Height)
	}
	// Full block fills every row.
	for y := 0; y < 16; y++ {
		if f.Glyphs[219].Row(y) != 0xFF {
			t.Fatalf("full block row %d: %#x", y, f.Glyphs[219].Row(y))
		}
	}
	// Space is blank.
	if !f.Glyphs[' '].IsEmpty() {
		t.Fatalf("space glyph should be empty")
	}
}

func TestFromBytesRawFont(t *testing.T) {
	data := make([]byte, 256*8)
	for i := range data {
		data[i] = 0xAA
	}
	f, err := FromBytes("raw", data)
	if err != nil {
		t.Fatalf("raw load: %v", err)
	}
	if f.Height != 8 || f.Glyphs[0].Row(0) != 0xAA {
		t.Fatalf("raw font: height %d row %#x", f.Height, f.Glyphs[0].Row(0))
	}

	if _, err := FromBytes("odd", make([]byte, 100)); err == nil {
		t.Fatalf("length not a multiple of 256 must be rejected")
	}
}

func TestFontDataRoundTrip(t *testing.T) {
	f := Default()
	clone := New8(f.Name, f.Width, f.Height, f.Data())
	for i := range f.Glyphs {
		if f.Glyphs[i] != clone.Glyphs[i] {
			t.Fatalf("glyph %d differs after data round trip", i)
		}
	}
	if f.Checksum() != clone.Checksum() {
		t.Fatalf("checksum changed across round trip")
	}
}

func TestEncodeAsAnsi(t *testing.T) {
	f := Default()
	s := f.EncodeAsAnsi(3)
	if !strings.HasPrefix(s, "\x1bPCTerm:Font:3:") || !strings.HasSuffix(s, "\x1b\\") {
		t.Fatalf("bad font upload framing: %q", s[:20])
	}
}

func TestScaleToHeight(t *testing.T) {
	f := Default()
	taller := f.ScaleToHeight(19)
	if taller.Height != 19 {
		t.Fatalf("scaled height: %d", taller.Height)
	}
	// Scaling to the same height is an identity copy.
	same := f.ScaleToHeight(16)
	if !same.Equal(f) {
		t.Fatalf("identity scale changed the font")
	}
	// A doubled font repeats every source row twice.
	doubled := New8("x", 8, 2, nil)
	doubled.Glyphs[0] = GlyphFromRows(8, 2, []byte{0xF0, 0x0F})
	big := doubled.ScaleToHeight(4)
	want := []byte{0xF0, 0xF0, 0x0F, 0x0F}
	for y, w := range want {
		if big.Glyphs[0].Row(y) != w {
			t.Fatalf("row %d: got %#x want %#x", y, big.Glyphs[0].Row(y), w)
		}
	}
}

func TestPSF1Parse(t *testing.T) {
	var data []byte
	data = binary.LittleEndian.AppendUint16(data, PSF1Magic)
	data = append(data, 0, 8) // mode, charsize
	data = append(data, make([]byte, 256*8)...)

	f, err := PSFFromBytes(data)
	if err != nil {
		t.Fatalf("psf1 parse: %v", err)
	}
	if f.Width != 8 || f.Height != 8 || len(f.Glyphs) != 256 {
		t.Fatalf("psf1 shape: %dx%d, %d glyphs", f.Width, f.Height, len(f.Glyphs))
	}
}

func TestPSF1UnicodeTable(t *testing.T) {
	var data []byte
	data = binary.LittleEndian.AppendUint16(data, PSF1Magic)
	data = append(data, psf1ModeHasTab, 1)
	data = append(data, make([]byte, 256)...)
	// Glyph 0 maps to 'A' plus the sequence "e" + combining acute.
	data = binary.LittleEndian.AppendUint16(data, 'A')
	data = binary.LittleEndian.AppendUint16(data, 0xFFFE)
	data = binary.LittleEndian.AppendUint16(data, 'e')
	data = binary.LittleEndian.AppendUint16(data, 0x0301)
	data = binary.LittleEndian.AppendUint16(data, 0xFFFF)
	for i := 1; i < 256; i++ {
		data = binary.LittleEndian.AppendUint16(data, 0xFFFF)
	}

	f, err := PSFFromBytes(data)
	if err != nil {
		t.Fatalf("psf1 parse: %v", err)
	}
	e := f.Unicode[0]
	if len(e.Chars) != 1 || e.Chars[0] != 'A' {
		t.Fatalf("chars: %#v", e.Chars)
	}
	if len(e.Sequences) != 1 || len(e.Sequences[0]) != 2 || e.Sequences[0][1] != 0x0301 {
		t.Fatalf("sequences: %#v", e.Sequences)
	}
}

func TestPSF2RoundTrip(t *testing.T) {
	for _, glyphCount := range []int{256, 400, 512} {
		f := &PSFFont{Width: 8, Height: 16, Glyphs: make([]Glyph, glyphCount)}
		for i := range f.Glyphs {
			f.Glyphs[i] = NewGlyph(8, 16)
			f.Glyphs[i].SetPixel(i%8, i%16, true)
		}
		f.Unicode = make([]UnicodeMapping, glyphCount)
		f.Unicode[65] = UnicodeMapping{Chars: []rune{'A', 'Ä'}}
		f.Unicode[66] = UnicodeMapping{Sequences: [][]rune{{'e', 0x0301}}}

		loaded, err := PSFFromBytes(f.ToPSF2Bytes())
		if err != nil {
			t.Fatalf("%d glyphs: reload: %v", glyphCount, err)
		}
		if loaded.Width != 8 || loaded.Height != 16 || len(loaded.Glyphs) != glyphCount {
			t.Fatalf("%d glyphs: shape %dx%d, %d glyphs", glyphCount, loaded.Width, loaded.Height, len(loaded.Glyphs))
		}
		for i := range f.Glyphs {
			if f.Glyphs[i] != loaded.Glyphs[i] {
				t.Fatalf("%d glyphs: glyph %d differs", glyphCount, i)
			}
		}
		a := loaded.Unicode[65]
		if len(a.Chars) != 2 || a.Chars[0] != 'A' || a.Chars[1] != 'Ä' {
			t.Fatalf("%d glyphs: chars: %#v", glyphCount, a.Chars)
		}
		b := loaded.Unicode[66]
		if len(b.Sequences) != 1 || len(b.Sequences[0]) != 2 || b.Sequences[0][1] != 0x0301 {
			t.Fatalf("%d glyphs: sequences: %#v", glyphCount, b.Sequences)
		}
	}
}

func TestPSF2RejectsBadHeaders(t *testing.T) {
	good := (&PSFFont{Width: 8, Height: 16, Glyphs: make([]Glyph, 256)}).ToPSF2Bytes()

	wide := append([]byte(nil), good...)
	binary.LittleEndian.PutUint32(wide[28:], 9)
	if _, err := PSFFromBytes(wide); err == nil {
		t.Fatalf("width over 8 must be rejected")
	}

	truncated := good[:len(good)-1]
	if _, err := PSFFromBytes(truncated); err == nil {
		t.Fatalf("truncated bitmap must be rejected")
	}

	if _, err := PSFFromBytes([]byte{1, 2, 3, 4}); err == nil {
		t.Fatalf("bad magic must be rejected")
	}
}

func TestCOMFontLoader(t *testing.T) {
	// Below the minimum stub size.
	if _, err := FromCOM("small", make([]byte, 0x63)); err == nil {
		t.Fatalf("undersized COM file must be rejected")
	}

	// Unknown stub.
	if _, err := FromCOM("junk", make([]byte, 0x200)); err == nil {
		t.Fatalf("unrecognized stub must be rejected")
	}

	// Fontraption TSR layout with the VILE signature.
	data := make([]byte, 0x63+256*16)
	copy(data[0x28:], "VILE")
	data[0x5D] = 16
	data[0x63] = 0x7E // first row of glyph 0
	f, err := FromCOM("tsr", data)
	if err != nil {
		t.Fatalf("tsr load: %v", err)
	}
	if f.Height != 16 || f.Glyphs[0].Row(0) != 0x7E {
		t.Fatalf("tsr font: height %d row %#x", f.Height, f.Glyphs[0].Row(0))
	}

	// Same signature but truncated glyph data.
	copy(data[0x28:], "VILE")
	if _, err := FromCOM("short", data[:0x63+100]); err == nil {
		t.Fatalf("truncated glyph data must be rejected")
	}
}

func TestSlotLookups(t *testing.T) {
	if got := SlotFontName(0); got != "Codepage 437 English" {
		t.Fatalf("slot 0 name: %q", got)
	}
	if got := SlotFontName(43); got != "" {
		t.Fatalf("out-of-range slot should be empty: %q", got)
	}
	if slot := FindSlotByName("topaz plus"); slot != 40 {
		t.Fatalf("topaz plus slot: %d", slot)
	}
	if slot := FindSlotByName("no such font"); slot != -1 {
		t.Fatalf("missing name should be -1: %d", slot)
	}

	f := FromAnsiFontPage(0, 14)
	if f == nil || f.Height != 14 {
		t.Fatalf("slot 0 at height 14: %#v", f)
	}
	if FromAnsiFontPage(7, 16) != nil {
		t.Fatalf("slots without glyph data must return nil")
	}
}

func TestFontHeightForLines(t *testing.T) {
	cases := map[int]int{50: 8, 43: 14, 28: 14, 25: 16, 66: 16}
	for lines, want := range cases {
		if got := FontHeightForLines(lines); got != want {
			t.Fatalf("lines %d: got %d want %d", lines, got, want)
		}
	}
}
