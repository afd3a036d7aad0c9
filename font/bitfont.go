// Copyright © 2026 Icebox contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: font/bitfont.go
// Summary: Fixed-cell bitmap font: 256 packed glyphs plus loaders for
//          PSF and raw formats, ANSI font upload encoding, Atari-style
//          height scaling and a content checksum.
// Notes: The checksum covers glyph rows only, so renaming a font never
//        changes its identity during format detection.

package font

import (
	"encoding/base64"
	"fmt"
	"hash/crc32"
)

// Canonical names of the built-in default font. Both are accepted when
// deciding whether a font page needs to be embedded on save.
const (
	DefaultFontName    = "Codepage 437 English"
	AltDefaultFontName = "IBM VGA"
)

// BitFontType records where a font came from.
type BitFontType uint8

const (
	TypeBuiltIn BitFontType = iota
	TypeLibrary
	TypeCustom
)

// BitFont is a fixed-size bitmap font indexed by character code.
type BitFont struct {
	Name   string
	Width  uint8
	Height uint8
	Glyphs [256]Glyph
	Type   BitFontType
}

// New8 builds a font from raw glyph data, height bytes per glyph in
// character-code order. Short data leaves the remaining glyphs blank.
func New8(name string, width, height uint8, data []byte) *BitFont {
	if height > MaxGlyphHeight {
		height = MaxGlyphHeight
	}
	if width > 8 {
		width = 8
	}
	f := &BitFont{Name: name, Width: width, Height: height, Type: TypeCustom}
	bytesPerGlyph := int(height)
	for i := range f.Glyphs {
		offset := i * bytesPerGlyph
		if offset+bytesPerGlyph <= len(data) {
			f.Glyphs[i] = GlyphFromRows(width, height, data[offset:offset+bytesPerGlyph])
		} else {
			f.Glyphs[i] = NewGlyph(width, height)
		}
	}
	return f
}

// Default returns the built-in 8x16 VGA font.
func Default() *BitFont {
	f := &BitFont{Name: AltDefaultFontName, Width: 8, Height: 16, Type: TypeBuiltIn}
	for i := range f.Glyphs {
		f.Glyphs[i] = GlyphFromRows(8, 16, vgaGlyphRows[i][:])
	}
	return f
}

// FromBytes loads a font from PSF1/PSF2 data, falling back to raw
// glyph data when the length is a whole number of 256 glyph slots.
func FromBytes(name string, data []byte) (*BitFont, error) {
	if psf, err := PSFFromBytes(data); err == nil {
		f := &BitFont{Name: name, Width: psf.Width, Height: psf.Height, Type: TypeBuiltIn}
		for i := range f.Glyphs {
			f.Glyphs[i] = NewGlyph(psf.Width, psf.Height)
		}
		for i, g := range psf.Glyphs {
			if i >= 256 {
				break
			}
			f.Glyphs[i] = g
		}
		return f, nil
	}
	if len(data) > 0 && len(data)%256 == 0 {
		return New8(name, 8, uint8(len(data)/256), data), nil
	}
	return nil, fmt.Errorf("unknown font format (%d bytes)", len(data))
}

// CellSize is the glyph cell size in pixels.
func (f *BitFont) CellSize() (width, height int) {
	return int(f.Width), int(f.Height)
}

// IsDefault reports whether this font is one of the built-in defaults
// that never needs to be embedded in saved files.
func (f *BitFont) IsDefault() bool {
	return f.Name == DefaultFontName || f.Name == AltDefaultFontName
}

// Glyph returns the bitmap for a character code, the code-0 glyph for
// out-of-range runes.
func (f *BitFont) Glyph(ch rune) *Glyph {
	if ch >= 0 && ch < 256 {
		return &f.Glyphs[ch]
	}
	return &f.Glyphs[0]
}

// SetGlyph replaces the bitmap for a character code.
func (f *BitFont) SetGlyph(ch rune, g Glyph) {
	if ch >= 0 && ch < 256 {
		f.Glyphs[ch] = g
	}
}

// Data flattens the font to raw glyph data, height bytes per glyph.
func (f *BitFont) Data() []byte {
	height := int(f.Height)
	result := make([]byte, 0, 256*height)
	for i := range f.Glyphs {
		for y := 0; y < height; y++ {
			result = append(result, f.Glyphs[i].Data[y])
		}
	}
	return result
}

// EncodeAsAnsi wraps the font in a CTerm DCS font-upload sequence for
// the given slot.
func (f *BitFont) EncodeAsAnsi(fontSlot int) string {
	data := base64.StdEncoding.EncodeToString(f.Data())
	return fmt.Sprintf("\x1BPCTerm:Font:%d:%s\x1B\\", fontSlot, data)
}

// ToPSF2 converts the font to a PSF2 byte stream without a Unicode
// table.
func (f *BitFont) ToPSF2() []byte {
	psf := &PSFFont{Width: f.Width, Height: f.Height, Glyphs: f.Glyphs[:]}
	return psf.ToPSF2Bytes()
}

// Checksum is a CRC-32 over the glyph rows, used to recognize
// well-known font pages during format detection.
func (f *BitFont) Checksum() uint32 {
	return crc32.ChecksumIEEE(f.Data())
}

// Equal compares name, cell size and every glyph row.
func (f *BitFont) Equal(other *BitFont) bool {
	if f.Name != other.Name || f.Width != other.Width || f.Height != other.Height {
		return false
	}
	for i := range f.Glyphs {
		if f.Glyphs[i] != other.Glyphs[i] {
			return false
		}
	}
	return true
}

// Clone returns an independent copy.
func (f *BitFont) Clone() *BitFont {
	c := *f
	return &c
}

// ScaleToHeight clones the font at a different line height using
// Atari-style row replication. A Bresenham error accumulator picks the
// source row so small changes (8 to 9 pixels) keep the baseline and
// stroke thickness stable.
func (f *BitFont) ScaleToHeight(newHeight int) *BitFont {
	if newHeight == int(f.Height) {
		return f.Clone()
	}
	oldHeight := max(1, int(f.Height))
	targetHeight := min(MaxGlyphHeight, max(1, newHeight))

	scaled := &BitFont{Name: f.Name, Width: f.Width, Height: uint8(targetHeight), Type: f.Type}
	for i := range f.Glyphs {
		src := &f.Glyphs[i]
		dst := NewGlyph(f.Width, uint8(targetHeight))
		err, srcRow := 0, 0
		for y := 0; y < targetHeight; y++ {
			if srcRow < oldHeight {
				dst.Data[y] = src.Data[srcRow]
			}
			err += oldHeight
			if err >= targetHeight {
				err -= targetHeight
				srcRow = min(srcRow+1, oldHeight-1)
			}
		}
		scaled.Glyphs[i] = dst
	}
	return scaled
}
