// Copyright © 2026 Icebox contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: format/xbin.go
// Summary: XBin codec: the 11-byte header with palette, font and
//          compression flags, and the adaptive four-mode RLE stream
//          with a backtracking encoder.
// Notes: Truncated cell data yields the partially decoded buffer, a
//        declared palette or font block past EOF is a hard error.

package format

import (
	"fmt"

	"github.com/icebox-art/icebox/buffer"
	"github.com/icebox-art/icebox/font"
	"github.com/icebox-art/icebox/palette"
)

const (
	xbinHeaderSize    = 11
	xbinPaletteLength = 3 * 16
	xbinMaxDimension  = 4096
)

const (
	xbinFlagPalette  uint8 = 0b0000_0001
	xbinFlagFont     uint8 = 0b0000_0010
	xbinFlagCompress uint8 = 0b0000_0100
	xbinFlagNonBlink uint8 = 0b0000_1000
	xbinFlag512Chars uint8 = 0b0001_0000
)

// compressionKind is the run kind carried in the top two bits of a
// count byte. The low six bits hold the run length minus one.
type compressionKind uint8

const (
	compressOff  compressionKind = 0b0000_0000
	compressChar compressionKind = 0b0100_0000
	compressAttr compressionKind = 0b1000_0000
	compressFull compressionKind = 0b1100_0000
)

const (
	compressKindMask  = 0b1100_0000
	compressCountMask = 0b0011_1111
)

// EncodeXBin encodes the buffer, appending the SAUCE record from the
// options when one is set.
func EncodeXBin(buf *buffer.TextBuffer, opts SaveOptions) ([]byte, error) {
	width, height := buf.Width(), buf.Height()
	if width < 1 || width > xbinMaxDimension {
		return nil, fmt.Errorf("format: xbin width out of range: %d (1-%d)", width, xbinMaxDimension)
	}
	if height < 1 || height > xbinMaxDimension {
		return nil, fmt.Errorf("format: xbin height out of range: %d (1-%d)", height, xbinMaxDimension)
	}

	result := make([]byte, 0, xbinHeaderSize+width*height*2)
	result = append(result, "XBIN"...)
	result = append(result, 0x1A)
	result = append(result, uint8(width), uint8(width>>8))
	result = append(result, uint8(height), uint8(height>>8))

	fonts := buffer.AnalyzeFontUsage(buf)
	if len(fonts) == 0 {
		fonts = []uint8{0}
	}
	if len(fonts) > 2 {
		return nil, fmt.Errorf("format: xbin supports at most 2 fonts, buffer uses %d", len(fonts))
	}
	first := buf.Font(fonts[0])
	if first == nil {
		return nil, fmt.Errorf("format: no font in slot %d", fonts[0])
	}
	if first.Width != 8 || first.Height < 1 || first.Height > 32 {
		return nil, fmt.Errorf("format: xbin needs an 8xN font with N in 1-32, have %dx%d", first.Width, first.Height)
	}
	result = append(result, first.Height)

	var flags uint8
	if !first.IsDefault() || len(fonts) > 1 {
		flags |= xbinFlagFont
	}
	if !buf.Palette.IsDefault() {
		flags |= xbinFlagPalette
	}
	if opts.Compress {
		flags |= xbinFlagCompress
	}
	if buf.IceMode == buffer.IceColors {
		flags |= xbinFlagNonBlink
	}
	if len(fonts) == 2 {
		flags |= xbinFlag512Chars
	}
	result = append(result, flags)

	if flags&xbinFlagPalette != 0 {
		pal := buf.Palette.Clone()
		pal.FillTo16()
		data := pal.Bytes63()
		if len(data) != xbinPaletteLength {
			return nil, fmt.Errorf("format: palette data length %d, want %d", len(data), xbinPaletteLength)
		}
		result = append(result, data...)
	}
	if flags&xbinFlagFont != 0 {
		fontData := first.Data()
		if len(fontData) != 256*int(first.Height) {
			return nil, fmt.Errorf("format: font data length %d, want %d", len(fontData), 256*int(first.Height))
		}
		result = append(result, fontData...)
		if flags&xbinFlag512Chars != 0 {
			second := buf.Font(fonts[1])
			if second == nil {
				return nil, fmt.Errorf("format: no font in slot %d", fonts[1])
			}
			extData := second.Data()
			if len(extData) != len(fontData) {
				return nil, fmt.Errorf("format: second font must match the first font's height")
			}
			result = append(result, extData...)
		}
	}

	if opts.Compress {
		var err error
		result, err = compressBacktrack(result, buf, fonts)
		if err != nil {
			return nil, err
		}
	} else {
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				ch := buf.CharAt(buffer.Pos(x, y))
				if ch.Ch > 255 {
					return nil, fmt.Errorf("format: xbin stores 8-bit characters only, have %q", ch.Ch)
				}
				result = append(result, uint8(ch.Ch), encodeXBinAttr(buf, ch, fonts))
			}
		}
	}

	if opts.Sauce != nil {
		s := opts.Sauce
		if s.DataType == 0 {
			s.DataType = SauceDataXBin
		}
		if s.TInfo1 == 0 {
			s.TInfo1 = uint16(width)
		}
		if s.TInfo2 == 0 {
			s.TInfo2 = uint16(height)
		}
		result = s.Append(result)
	}
	return result, nil
}

// DecodeXBin decodes an XBin file, stripping a trailing SAUCE record
// first. Truncated cell data returns the partial buffer.
func DecodeXBin(data []byte) (*buffer.TextBuffer, *Sauce, error) {
	sauce, trailer := ReadSauce(data)
	data = data[:len(data)-trailer]

	if len(data) < xbinHeaderSize {
		return nil, nil, ErrTooShort
	}
	if string(data[0:4]) != "XBIN" {
		return nil, nil, ErrBadMagic
	}
	// data[4] is the 0x1A EOF byte, unchecked like everyone else does.

	width := int(data[5]) | int(data[6])<<8
	if width < 1 || width > xbinMaxDimension {
		return nil, nil, fmt.Errorf("format: xbin width out of range: %d (1-%d)", width, xbinMaxDimension)
	}
	height := int(data[7]) | int(data[8])<<8
	if height < 1 || height > xbinMaxDimension {
		return nil, nil, fmt.Errorf("format: xbin height out of range: %d (1-%d)", height, xbinMaxDimension)
	}
	fontSize := data[9]
	if fontSize == 0 {
		fontSize = 16
	}
	if fontSize > 32 {
		return nil, nil, fmt.Errorf("format: xbin font height too large: %d (32 max)", fontSize)
	}
	flags := data[10]

	hasPalette := flags&xbinFlagPalette != 0
	hasFont := flags&xbinFlagFont != 0
	compressed := flags&xbinFlagCompress != 0
	useIce := flags&xbinFlagNonBlink != 0
	extendedChars := flags&xbinFlag512Chars != 0

	buf := buffer.New(buffer.Size{Width: width, Height: height})
	if extendedChars {
		buf.FontMode = buffer.FontFixedSize
		buf.PaletteMode = buffer.PaletteFree8
	} else {
		buf.FontMode = buffer.FontSingle
		buf.PaletteMode = buffer.PaletteFree16
	}
	if useIce {
		buf.IceMode = buffer.IceColors
	} else {
		buf.IceMode = buffer.IceBlink
	}

	o := xbinHeaderSize
	if hasPalette {
		if o+xbinPaletteLength > len(data) {
			return nil, nil, fmt.Errorf("format: xbin palette block past end of file")
		}
		buf.Palette = palette.From63(data[o : o+xbinPaletteLength])
		o += xbinPaletteLength
	}
	if hasFont {
		fontLength := int(fontSize) * 256
		if o+fontLength > len(data) {
			return nil, nil, fmt.Errorf("format: xbin font block past end of file")
		}
		buf.ClearFontTable()
		buf.SetFont(0, font.New8("", 8, fontSize, data[o:o+fontLength]))
		o += fontLength
		if extendedChars {
			if o+fontLength > len(data) {
				return nil, nil, fmt.Errorf("format: xbin extended font block past end of file")
			}
			buf.SetFont(1, font.New8("", 8, fontSize, data[o:o+fontLength]))
			o += fontLength
		}
	}

	if compressed {
		readXBinCompressed(buf, data[o:])
	} else {
		readXBinUncompressed(buf, data[o:])
	}
	return buf, sauce, nil
}

// encodeXBinAttr packs a cell attribute. In 512-char mode bit 3 of the
// background nibble selects the second font page instead of a bright
// background.
func encodeXBinAttr(buf *buffer.TextBuffer, ch buffer.AttributedChar, fonts []uint8) uint8 {
	attr := ch.Attribute.AsDOS(buf.IceMode)
	if len(fonts) == 2 {
		attr &= 0b1111_0111
		if ch.FontPage() == fonts[1] {
			attr |= 0b1000
		}
	}
	return attr
}

// decodeXBinChar unpacks one cell. Under FixedSize font mode a bright
// foreground means "font page 1" instead.
func decodeXBinChar(buf *buffer.TextBuffer, charCode, attr uint8) buffer.AttributedChar {
	a := buffer.AttributeFromDOS(attr, buf.IceMode)
	if buf.FontMode == buffer.FontFixedSize && a.Foreground.Index() > 7 {
		a.FontPage = 1
		a.Foreground = buffer.PaletteColor(a.Foreground.Index() - 8)
	}
	return buffer.NewChar(rune(charCode), a)
}

func advanceXBinPos(buf *buffer.TextBuffer, pos *buffer.Position) bool {
	pos.X++
	if pos.X >= buf.Width() {
		pos.X = 0
		pos.Y++
		if pos.Y >= buf.Height() {
			return false
		}
	}
	return true
}

func readXBinUncompressed(buf *buffer.TextBuffer, data []byte) {
	var pos buffer.Position
	layer := buf.Layers[0]
	for o := 0; o < len(data); o += 2 {
		if o+1 >= len(data) {
			// A dangling last byte exists in the wild, ignore it.
			return
		}
		layer.SetChar(pos, decodeXBinChar(buf, data[o], data[o+1]))
		if !advanceXBinPos(buf, &pos) {
			return
		}
	}
}

func readXBinCompressed(buf *buffer.TextBuffer, data []byte) {
	var pos buffer.Position
	layer := buf.Layers[0]
	o := 0
	for o < len(data) {
		countByte := data[o]
		o++
		kind := compressionKind(countByte & compressKindMask)
		repeat := int(countByte&compressCountMask) + 1

		switch kind {
		case compressOff:
			for i := 0; i < repeat; i++ {
				if o+2 > len(data) {
					return
				}
				layer.SetChar(pos, decodeXBinChar(buf, data[o], data[o+1]))
				o += 2
				if !advanceXBinPos(buf, &pos) {
					return
				}
			}
		case compressChar:
			if o >= len(data) {
				return
			}
			charCode := data[o]
			o++
			for i := 0; i < repeat; i++ {
				if o+1 > len(data) {
					return
				}
				layer.SetChar(pos, decodeXBinChar(buf, charCode, data[o]))
				o++
				if !advanceXBinPos(buf, &pos) {
					return
				}
			}
		case compressAttr:
			if o >= len(data) {
				return
			}
			attr := data[o]
			o++
			for i := 0; i < repeat; i++ {
				if o+1 > len(data) {
					return
				}
				layer.SetChar(pos, decodeXBinChar(buf, data[o], attr))
				o++
				if !advanceXBinPos(buf, &pos) {
					return
				}
			}
		case compressFull:
			if o+2 > len(data) {
				return
			}
			ch := decodeXBinChar(buf, data[o], data[o+1])
			o += 2
			for i := 0; i < repeat; i++ {
				layer.SetChar(pos, ch)
				if !advanceXBinPos(buf, &pos) {
					return
				}
			}
		}
	}
}

// countLength simulates encoding the rest of the row for one of the two
// choices at a decision point (end the current run or extend it) and
// returns the total byte count. The caller compares both to decide.
func countLength(runMode compressionKind, runCh buffer.AttributedChar, endRun *bool, runCount int, buf *buffer.TextBuffer, y, x int) int {
	count := 0
	width := buf.Width()
	for x < width {
		cur := buf.CharAt(buffer.Pos(x, y))
		next := buf.CharAt(buffer.Pos(x+1, y))

		if runCount > 0 {
			if endRun == nil {
				if runCount >= 64 {
					endRun = boolPtr(true)
				} else {
					switch runMode {
					case compressOff:
						if x+2 < width && cur == next {
							endRun = boolPtr(true)
						} else if x+2 < width {
							next2 := buf.CharAt(buffer.Pos(x+2, y))
							endRun = boolPtr(cur.Ch == next.Ch && cur.Ch == next2.Ch ||
								cur.Attribute == next.Attribute && cur.Attribute == next2.Attribute)
						}
					case compressChar:
						if cur.Ch != runCh.Ch {
							endRun = boolPtr(true)
						} else if x+3 < width {
							next2 := buf.CharAt(buffer.Pos(x+2, y))
							next3 := buf.CharAt(buffer.Pos(x+3, y))
							endRun = boolPtr(cur == next && cur == next2 && cur == next3)
						}
					case compressAttr:
						if cur.Attribute != runCh.Attribute {
							endRun = boolPtr(true)
						} else if x+3 < width {
							next2 := buf.CharAt(buffer.Pos(x+2, y))
							next3 := buf.CharAt(buffer.Pos(x+3, y))
							endRun = boolPtr(cur == next && cur == next2 && cur == next3)
						}
					case compressFull:
						endRun = boolPtr(cur != runCh)
					}
				}
			}

			if endRun != nil && *endRun {
				count++
				runCount = 0
			}
		}
		endRun = nil

		if runCount > 0 {
			switch runMode {
			case compressOff:
				count += 2
			case compressChar, compressAttr:
				count++
			case compressFull:
			}
		} else {
			if x+1 < width {
				switch {
				case cur == next:
					runMode = compressFull
				case cur.Ch == next.Ch:
					runMode = compressChar
				case cur.Attribute == next.Attribute:
					runMode = compressAttr
				default:
					runMode = compressOff
				}
			} else {
				runMode = compressOff
			}
			count += 2
			runCh = cur
		}
		runCount++
		x++
	}
	return count
}

func boolPtr(v bool) *bool { return &v }

// compressBacktrack encodes the cell grid row by row. At each point
// where a run could either end or absorb the next cell it compares the
// eventual encoded length of both choices instead of deciding greedily.
func compressBacktrack(out []byte, buf *buffer.TextBuffer, fonts []uint8) ([]byte, error) {
	width, height := buf.Width(), buf.Height()
	for y := 0; y < height; y++ {
		var runBuf []byte
		runMode := compressOff
		runCount := 0
		var runCh buffer.AttributedChar

		for x := 0; x < width; x++ {
			cur := buf.CharAt(buffer.Pos(x, y))

			var next buffer.AttributedChar
			if x+1 < width {
				next = buf.CharAt(buffer.Pos(x+1, y))
			}

			if runCount > 0 {
				endRun := false
				if runCount >= 64 {
					endRun = true
				} else {
					switch runMode {
					case compressOff:
						if x+2 < width && (cur.Ch == next.Ch || cur.Attribute == next.Attribute) {
							l1 := countLength(runMode, runCh, boolPtr(true), runCount, buf, y, x)
							l2 := countLength(runMode, runCh, boolPtr(false), runCount, buf, y, x)
							endRun = l1 < l2
						}
					case compressChar:
						if cur.Ch != runCh.Ch || cur.FontPage() != runCh.FontPage() {
							endRun = true
						} else if x+4 < width {
							next2 := buf.CharAt(buffer.Pos(x+2, y))
							if cur.Attribute == next.Attribute && cur.Attribute == next2.Attribute {
								l1 := countLength(runMode, runCh, boolPtr(true), runCount, buf, y, x)
								l2 := countLength(runMode, runCh, boolPtr(false), runCount, buf, y, x)
								endRun = l1 < l2
							}
						}
					case compressAttr:
						if cur.Attribute != runCh.Attribute || cur.FontPage() != runCh.FontPage() {
							endRun = true
						} else if x+3 < width {
							next2 := buf.CharAt(buffer.Pos(x+2, y))
							if cur.Ch == next.Ch && cur.Ch == next2.Ch {
								l1 := countLength(runMode, runCh, boolPtr(true), runCount, buf, y, x)
								l2 := countLength(runMode, runCh, boolPtr(false), runCount, buf, y, x)
								endRun = l1 < l2
							}
						}
					case compressFull:
						endRun = cur != runCh
					}
				}

				if endRun {
					out = append(out, uint8(runMode)|uint8(runCount-1))
					out = append(out, runBuf...)
					runCount = 0
				}
			}

			if cur.Ch > 255 {
				return nil, fmt.Errorf("format: xbin stores 8-bit characters only, have %q", cur.Ch)
			}
			chCode := uint8(cur.Ch)
			if runCount > 0 {
				switch runMode {
				case compressOff:
					runBuf = append(runBuf, chCode, encodeXBinAttr(buf, cur, fonts))
				case compressChar:
					runBuf = append(runBuf, encodeXBinAttr(buf, cur, fonts))
				case compressAttr:
					runBuf = append(runBuf, chCode)
				case compressFull:
				}
			} else {
				runBuf = runBuf[:0]
				if x+1 < width {
					switch {
					case cur == next:
						runMode = compressFull
					case cur.Ch == next.Ch:
						runMode = compressChar
					case cur.Attribute == next.Attribute:
						runMode = compressAttr
					default:
						runMode = compressOff
					}
				} else {
					runMode = compressOff
				}
				if runMode == compressAttr {
					runBuf = append(runBuf, encodeXBinAttr(buf, cur, fonts), chCode)
				} else {
					runBuf = append(runBuf, chCode, encodeXBinAttr(buf, cur, fonts))
				}
				runCh = cur
			}
			runCount++
		}

		if runCount > 0 {
			out = append(out, uint8(runMode)|uint8(runCount-1))
			out = append(out, runBuf...)
		}
	}
	return out, nil
}
