// Copyright © 2026 Icebox contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: font/psf.go
// Summary: PC Screen Font codec. Loads PSF1 and PSF2 including their
//          Unicode mapping tables, saves PSF2.
// Notes: Glyph counts other than 256 are preserved; BitFont conversion
//        is where the table is cut down to 256 slots.

package font

import (
	"encoding/binary"
	"fmt"
	"unicode/utf8"
)

// PSF magic numbers (little-endian).
const (
	PSF1Magic uint16 = 0x0436
	PSF2Magic uint32 = 0x864A_B572
)

// PSF1 mode flags.
const (
	psf1Mode512    = 0x01
	psf1ModeHasTab = 0x02
)

// PSF2 header flags.
const psf2HasUnicodeTable = 0x01

// UnicodeMapping is the Unicode table entry of one glyph: the single
// code points rendered by the glyph plus any combining sequences.
type UnicodeMapping struct {
	Chars     []rune
	Sequences [][]rune
}

func (m *UnicodeMapping) isEmpty() bool { return len(m.Chars) == 0 && len(m.Sequences) == 0 }

// PSFFont is a parsed PSF font. Unicode is either empty or has one
// entry per glyph.
type PSFFont struct {
	Name    string
	Width   uint8
	Height  uint8
	Glyphs  []Glyph
	Unicode []UnicodeMapping
}

// PSFFromBytes parses PSF data, auto-detecting PSF1 or PSF2.
func PSFFromBytes(data []byte) (*PSFFont, error) {
	if len(data) < 4 {
		return nil, fmt.Errorf("psf: data too short (%d bytes)", len(data))
	}
	if binary.LittleEndian.Uint16(data) == PSF1Magic {
		return parsePSF1(data)
	}
	if binary.LittleEndian.Uint32(data) == PSF2Magic {
		return parsePSF2(data)
	}
	return nil, fmt.Errorf("psf: bad magic")
}

func parsePSF1(data []byte) (*PSFFont, error) {
	mode := data[2]
	charSize := int(data[3])
	if charSize == 0 {
		return nil, fmt.Errorf("psf1: zero charsize")
	}
	glyphCount := 256
	if mode&psf1Mode512 != 0 {
		glyphCount = 512
	}
	bitmapStart := 4
	bitmapLen := glyphCount * charSize
	if len(data) < bitmapStart+bitmapLen {
		return nil, fmt.Errorf("psf1: bitmap data truncated")
	}

	height := uint8(min(charSize, MaxGlyphHeight))
	font := &PSFFont{Width: 8, Height: height, Glyphs: make([]Glyph, glyphCount)}
	for i := range font.Glyphs {
		offset := bitmapStart + i*charSize
		font.Glyphs[i] = GlyphFromRows(8, height, data[offset:offset+charSize])
	}

	if mode&psf1ModeHasTab != 0 {
		font.Unicode = parsePSF1Unicode(data[bitmapStart+bitmapLen:], glyphCount)
	}
	return font, nil
}

// parsePSF1Unicode reads the PSF1 table: little-endian u16 values per
// glyph, 0xFFFE starting a combining sequence, 0xFFFF ending the entry.
func parsePSF1Unicode(data []byte, glyphCount int) []UnicodeMapping {
	table := make([]UnicodeMapping, glyphCount)
	offset := 0
	for i := 0; i < glyphCount && offset+1 < len(data); i++ {
		entry := &table[i]
		var seq []rune
		inSequence := false
		for offset+1 < len(data) {
			v := binary.LittleEndian.Uint16(data[offset:])
			offset += 2
			if v == 0xFFFF {
				break
			}
			if v == 0xFFFE {
				if inSequence && len(seq) > 0 {
					entry.Sequences = append(entry.Sequences, seq)
				}
				inSequence = true
				seq = nil
				continue
			}
			if inSequence {
				seq = append(seq, rune(v))
			} else {
				entry.Chars = append(entry.Chars, rune(v))
			}
		}
		if inSequence && len(seq) > 0 {
			entry.Sequences = append(entry.Sequences, seq)
		}
	}
	return table
}

func parsePSF2(data []byte) (*PSFFont, error) {
	if len(data) < 32 {
		return nil, fmt.Errorf("psf2: header too short")
	}
	version := binary.LittleEndian.Uint32(data[4:])
	if version > 0 {
		return nil, fmt.Errorf("psf2: unsupported version %d", version)
	}
	headerSize := int(binary.LittleEndian.Uint32(data[8:]))
	flags := binary.LittleEndian.Uint32(data[12:])
	glyphCount := int(binary.LittleEndian.Uint32(data[16:]))
	charSize := int(binary.LittleEndian.Uint32(data[20:]))
	height := int(binary.LittleEndian.Uint32(data[24:]))
	width := int(binary.LittleEndian.Uint32(data[28:]))

	if width == 0 || height == 0 || charSize == 0 {
		return nil, fmt.Errorf("psf2: invalid dimensions %dx%d", width, height)
	}
	bytesPerRow := (width + 7) / 8
	if expected := height * bytesPerRow; expected != charSize {
		return nil, fmt.Errorf("psf2: charsize mismatch, header %d, computed %d", charSize, expected)
	}
	if width > 8 {
		return nil, fmt.Errorf("psf2: font width %d exceeds maximum of 8 pixels", width)
	}
	bitmapStart := headerSize
	bitmapLen := glyphCount * charSize
	if bitmapStart < 0 || len(data) < bitmapStart+bitmapLen {
		return nil, fmt.Errorf("psf2: bitmap data truncated")
	}

	w, h := uint8(width), uint8(min(height, MaxGlyphHeight))
	font := &PSFFont{Width: w, Height: h, Glyphs: make([]Glyph, glyphCount)}
	for i := range font.Glyphs {
		offset := bitmapStart + i*charSize
		var rows [MaxGlyphHeight]byte
		for y := 0; y < int(h); y++ {
			rows[y] = data[offset+y*bytesPerRow]
		}
		font.Glyphs[i] = GlyphFromRows(w, h, rows[:h])
	}

	if flags&psf2HasUnicodeTable != 0 {
		font.Unicode = parsePSF2Unicode(data[bitmapStart+bitmapLen:], glyphCount)
	}
	return font, nil
}

// parsePSF2Unicode reads the PSF2 table: UTF-8 code points per glyph,
// 0xFE starting a combining sequence, 0xFF ending the entry.
func parsePSF2Unicode(data []byte, glyphCount int) []UnicodeMapping {
	table := make([]UnicodeMapping, glyphCount)
	offset := 0
	for i := 0; i < glyphCount && offset < len(data); i++ {
		entry := &table[i]
		var seq []rune
		inSequence := false
		for offset < len(data) {
			if data[offset] == 0xFF {
				offset++
				break
			}
			if data[offset] == 0xFE {
				if inSequence && len(seq) > 0 {
					entry.Sequences = append(entry.Sequences, seq)
				}
				inSequence = true
				seq = nil
				offset++
				continue
			}
			r, size := utf8.DecodeRune(data[offset:])
			if size == 0 {
				break
			}
			offset += size
			if r == utf8.RuneError && size == 1 {
				continue
			}
			if inSequence {
				seq = append(seq, r)
			} else {
				entry.Chars = append(entry.Chars, r)
			}
		}
		if inSequence && len(seq) > 0 {
			entry.Sequences = append(entry.Sequences, seq)
		}
	}
	return table
}

// ToPSF2Bytes encodes the font as PSF2, including the Unicode table
// when any glyph has a mapping.
func (f *PSFFont) ToPSF2Bytes() []byte {
	width := int(f.Width)
	height := int(f.Height)
	bytesPerRow := (width + 7) / 8
	charSize := height * bytesPerRow

	hasUnicode := false
	for i := range f.Unicode {
		if !f.Unicode[i].isEmpty() {
			hasUnicode = true
			break
		}
	}

	data := make([]byte, 0, 32+len(f.Glyphs)*charSize)
	data = binary.LittleEndian.AppendUint32(data, PSF2Magic)
	data = binary.LittleEndian.AppendUint32(data, 0) // version
	data = binary.LittleEndian.AppendUint32(data, 32)
	var flags uint32
	if hasUnicode {
		flags = psf2HasUnicodeTable
	}
	data = binary.LittleEndian.AppendUint32(data, flags)
	data = binary.LittleEndian.AppendUint32(data, uint32(len(f.Glyphs)))
	data = binary.LittleEndian.AppendUint32(data, uint32(charSize))
	data = binary.LittleEndian.AppendUint32(data, uint32(height))
	data = binary.LittleEndian.AppendUint32(data, uint32(width))

	for i := range f.Glyphs {
		for y := 0; y < height; y++ {
			data = append(data, f.Glyphs[i].Row(y))
		}
	}

	if hasUnicode {
		for i := range f.Glyphs {
			if i < len(f.Unicode) {
				entry := &f.Unicode[i]
				for _, r := range entry.Chars {
					data = utf8.AppendRune(data, r)
				}
				for _, seq := range entry.Sequences {
					data = append(data, 0xFE)
					for _, r := range seq {
						data = utf8.AppendRune(data, r)
					}
				}
			}
			data = append(data, 0xFF)
		}
	}
	return data
}
