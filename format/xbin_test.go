// Copyright © 2026 Icebox contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: format/xbin_test.go
// Summary: XBin round trips across the compression, palette, ice and
//          font-count matrix, plus header boundary rejections.
// Usage: Executed during `go test`.

package format

import (
	"errors"
	"testing"

	"github.com/icebox-art/icebox/buffer"
	"github.com/icebox-art/icebox/font"
)

// fillTestCells writes a deterministic mix of characters, colors and
// blink flags.
func fillTestCells(buf *buffer.TextBuffer) {
	layer := buf.Layers[0]
	for y := 0; y < buf.Height(); y++ {
		for x := 0; x < buf.Width(); x++ {
			attr := buffer.NewAttribute(uint8((x+y)%16), uint8(x%8))
			if buf.IceMode == buffer.IceColors {
				attr = buffer.NewAttribute(uint8((x+y)%16), uint8(x%16))
			} else if (x+y)%5 == 0 {
				attr.SetBlinking(true)
			}
			layer.SetChar(buffer.Pos(x, y), buffer.NewChar(rune('A'+(x+y)%26), attr))
		}
	}
}

func xbinRoundTrip(t *testing.T, buf *buffer.TextBuffer, opts SaveOptions) *buffer.TextBuffer {
	t.Helper()
	data, err := EncodeXBin(buf, opts)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	got, _, err := DecodeXBin(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Width() != buf.Width() || got.Height() != buf.Height() {
		t.Fatalf("size: %dx%d, want %dx%d", got.Width(), got.Height(), buf.Width(), buf.Height())
	}
	for y := 0; y < buf.Height(); y++ {
		for x := 0; x < buf.Width(); x++ {
			want := buf.CharAt(buffer.Pos(x, y))
			have := got.CharAt(buffer.Pos(x, y))
			if have.Ch != want.Ch {
				t.Fatalf("(%d,%d) char %q, want %q", x, y, have.Ch, want.Ch)
			}
			if have.Attribute.Foreground != want.Attribute.Foreground {
				t.Fatalf("(%d,%d) foreground %v, want %v", x, y, have.Attribute.Foreground, want.Attribute.Foreground)
			}
			if have.Attribute.Background != want.Attribute.Background {
				t.Fatalf("(%d,%d) background %v, want %v", x, y, have.Attribute.Background, want.Attribute.Background)
			}
			if have.Attribute.IsBlinking() != want.Attribute.IsBlinking() {
				t.Fatalf("(%d,%d) blink %v, want %v", x, y, have.Attribute.IsBlinking(), want.Attribute.IsBlinking())
			}
			if have.FontPage() != want.FontPage() {
				t.Fatalf("(%d,%d) font page %d, want %d", x, y, have.FontPage(), want.FontPage())
			}
		}
	}
	return got
}

func TestXBinRoundTripBlink(t *testing.T) {
	for _, compress := range []bool{false, true} {
		buf := buffer.New(buffer.Size{Width: 16, Height: 4})
		buf.IceMode = buffer.IceBlink
		fillTestCells(buf)
		got := xbinRoundTrip(t, buf, SaveOptions{Compress: compress})
		if got.IceMode != buffer.IceBlink {
			t.Fatalf("compress=%v: ice mode %v", compress, got.IceMode)
		}
	}
}

func TestXBinRoundTripIce(t *testing.T) {
	for _, compress := range []bool{false, true} {
		buf := buffer.New(buffer.Size{Width: 16, Height: 4})
		buf.IceMode = buffer.IceColors
		fillTestCells(buf)
		got := xbinRoundTrip(t, buf, SaveOptions{Compress: compress})
		if got.IceMode != buffer.IceColors {
			t.Fatalf("compress=%v: ice mode %v", compress, got.IceMode)
		}
	}
}

func TestXBinRoundTripCustomPalette(t *testing.T) {
	buf := buffer.New(buffer.Size{Width: 8, Height: 2})
	buf.IceMode = buffer.IceBlink
	// Components that survive the 6-bit palette encoding.
	buf.Palette.SetRGB(1, 40, 81, 121)
	fillTestCells(buf)

	got := xbinRoundTrip(t, buf, SaveOptions{Compress: true})
	if r, g, b := got.Palette.RGBAt(1); r != 40 || g != 81 || b != 121 {
		t.Fatalf("palette slot 1: %d %d %d", r, g, b)
	}
}

func TestXBinRoundTripCustomFont(t *testing.T) {
	glyphs := make([]byte, 256*16)
	for i := range glyphs {
		glyphs[i] = byte(i * 7)
	}
	custom := font.New8("custom", 8, 16, glyphs)

	buf := buffer.New(buffer.Size{Width: 8, Height: 2})
	buf.IceMode = buffer.IceBlink
	buf.SetFont(0, custom)
	fillTestCells(buf)

	got := xbinRoundTrip(t, buf, SaveOptions{})
	loaded := got.Font(0)
	if loaded == nil || loaded.Checksum() != custom.Checksum() {
		t.Fatalf("custom font not restored")
	}
}

func TestXBinRoundTripExtendedFont(t *testing.T) {
	glyphs := make([]byte, 256*16)
	for i := range glyphs {
		glyphs[i] = byte(255 - i%251)
	}
	second := font.New8("second", 8, 16, glyphs)

	buf := buffer.New(buffer.Size{Width: 8, Height: 2})
	buf.IceMode = buffer.IceBlink
	buf.SetFont(1, second)

	layer := buf.Layers[0]
	for x := 0; x < buf.Width(); x++ {
		// 512-char mode reserves the bright-foreground bit for the
		// page, so pages above 0 keep foregrounds below 8.
		ch := buffer.NewChar(rune('a'+x), buffer.NewAttribute(uint8(x%8), 0))
		if x%2 == 1 {
			ch = ch.WithFontPage(1)
		}
		layer.SetChar(buffer.Pos(x, 0), ch)
		layer.SetChar(buffer.Pos(x, 1), buffer.NewChar('.', buffer.DefaultAttribute()))
	}

	for _, compress := range []bool{false, true} {
		got := xbinRoundTrip(t, buf, SaveOptions{Compress: compress})
		if got.FontMode != buffer.FontFixedSize {
			t.Fatalf("font mode: %v", got.FontMode)
		}
		if got.FontCount() != 2 {
			t.Fatalf("font count: %d", got.FontCount())
		}
		if got.Font(1).Checksum() != second.Checksum() {
			t.Fatalf("second font not restored")
		}
	}
}

func TestXBinCompressionShrinksRuns(t *testing.T) {
	buf := buffer.New(buffer.Size{Width: 80, Height: 4})
	buf.IceMode = buffer.IceBlink
	layer := buf.Layers[0]
	for y := 0; y < 4; y++ {
		for x := 0; x < 80; x++ {
			layer.SetChar(buffer.Pos(x, y), buffer.NewChar('#', buffer.NewAttribute(7, 1)))
		}
	}

	plain, err := EncodeXBin(buf, SaveOptions{})
	if err != nil {
		t.Fatalf("encode plain: %v", err)
	}
	packed, err := EncodeXBin(buf, SaveOptions{Compress: true})
	if err != nil {
		t.Fatalf("encode packed: %v", err)
	}
	if len(packed) >= len(plain) {
		t.Fatalf("compression did not help: %d >= %d", len(packed), len(plain))
	}
	xbinRoundTrip(t, buf, SaveOptions{Compress: true})
}

func TestXBinTruncatedDataYieldsPartialBuffer(t *testing.T) {
	buf := buffer.New(buffer.Size{Width: 4, Height: 2})
	buf.IceMode = buffer.IceBlink
	layer := buf.Layers[0]
	for i := 0; i < 8; i++ {
		layer.SetChar(buffer.Pos(i%4, i/4), buffer.NewChar(rune('A'+i), buffer.DefaultAttribute()))
	}

	data, err := EncodeXBin(buf, SaveOptions{})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	got, _, err := DecodeXBin(data[:xbinHeaderSize+5])
	if err != nil {
		t.Fatalf("truncated decode should not fail: %v", err)
	}
	if got.CharAt(buffer.Pos(0, 0)).Ch != 'A' || got.CharAt(buffer.Pos(1, 0)).Ch != 'B' {
		t.Fatalf("leading cells lost")
	}
	if got.CharAt(buffer.Pos(2, 0)).Ch == 'C' {
		t.Fatalf("cell decoded from a half pair")
	}
}

func TestXBinRejectsBadHeaders(t *testing.T) {
	if _, _, err := DecodeXBin([]byte("XB")); !errors.Is(err, ErrTooShort) {
		t.Fatalf("short file: %v", err)
	}
	if _, _, err := DecodeXBin([]byte("NOPE\x1a\x00\x00\x00\x00\x10\x00")); !errors.Is(err, ErrBadMagic) {
		t.Fatalf("bad magic: %v", err)
	}

	zeroWidth := []byte{'X', 'B', 'I', 'N', 0x1A, 0, 0, 3, 0, 16, 0}
	if _, _, err := DecodeXBin(zeroWidth); err == nil {
		t.Fatalf("zero width accepted")
	}
	hugeWidth := []byte{'X', 'B', 'I', 'N', 0x1A, 0x01, 0x10, 3, 0, 16, 0}
	if _, _, err := DecodeXBin(hugeWidth); err == nil {
		t.Fatalf("width beyond 4096 accepted")
	}

	buf := buffer.New(buffer.Size{Width: 4200, Height: 2})
	if _, err := EncodeXBin(buf, SaveOptions{}); err == nil {
		t.Fatalf("oversized buffer accepted")
	}
}

func TestXBinSauceRecord(t *testing.T) {
	buf := buffer.New(buffer.Size{Width: 4, Height: 2})
	buf.IceMode = buffer.IceBlink
	fillTestCells(buf)

	data, err := EncodeXBin(buf, SaveOptions{Sauce: &Sauce{Title: "tiny"}})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	got, sauce, err := DecodeXBin(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if sauce == nil || sauce.Title != "tiny" || sauce.DataType != SauceDataXBin {
		t.Fatalf("sauce: %#v", sauce)
	}
	if sauce.TInfo1 != 4 || sauce.TInfo2 != 2 {
		t.Fatalf("sauce dimensions: %d x %d", sauce.TInfo1, sauce.TInfo2)
	}
	if got.CharAt(buffer.Pos(0, 0)).Ch != buf.CharAt(buffer.Pos(0, 0)).Ch {
		t.Fatalf("cells lost under sauce trailer")
	}
}
