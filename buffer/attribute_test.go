// Copyright © 2026 Icebox contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: buffer/attribute_test.go
// Summary: Exercises the packed color encoding, DOS attribute byte
//          conversion and the ice/blink mode split.
// Usage: Executed during `go test` to guard against regressions.

package buffer

import "testing"

func TestAttributeColorPacking(t *testing.T) {
	if c := PaletteColor(7); c.ToU32() != 7 || !c.IsPalette() || c.Index() != 7 {
		t.Fatalf("palette color: %#v", c)
	}
	if c := ExtendedColor(200); !c.IsExtended() || c.Index() != 200 {
		t.Fatalf("extended color: %#v", c)
	}
	c := RGBColor(0x12, 0x34, 0x56)
	if !c.IsRGB() || c.Index() != 0 {
		t.Fatalf("rgb color: %#v", c)
	}
	r, g, b := c.RGB()
	if r != 0x12 || g != 0x34 || b != 0x56 {
		t.Fatalf("rgb channels: %d %d %d", r, g, b)
	}
	if !Transparent.IsTransparent() || Transparent.Index() != 0 {
		t.Fatalf("transparent sentinel: %#v", Transparent)
	}
}

func TestAttributeColorU32RoundTrip(t *testing.T) {
	colors := []AttributeColor{
		PaletteColor(0), PaletteColor(15),
		ExtendedColor(128),
		RGBColor(255, 0, 128),
		Transparent,
	}
	for _, c := range colors {
		if got := AttributeColorFromU32(c.ToU32()); got != c {
			t.Fatalf("round trip %#x: got %#x", c.ToU32(), got.ToU32())
		}
	}
}

func TestDOSAttributeBlinkVsIce(t *testing.T) {
	// Top bit means blink under IceBlink mode.
	a := AttributeFromDOS(0b1001_0100, IceBlink)
	if a.ForegroundIndex() != 4 || a.BackgroundIndex() != 1 || !a.IsBlinking() {
		t.Fatalf("blink decode: %#v", a)
	}
	if got := a.AsDOS(IceBlink); got != 0b1001_0100 {
		t.Fatalf("blink encode: %#b", got)
	}

	// The same byte is a bright background under IceColors.
	a = AttributeFromDOS(0b1001_0100, IceColors)
	if a.BackgroundIndex() != 9 || a.IsBlinking() {
		t.Fatalf("ice decode: %#v", a)
	}
	if got := a.AsDOS(IceColors); got != 0b1001_0100 {
		t.Fatalf("ice encode: %#b", got)
	}
}

func TestAsDOSBoldMapsToHighForeground(t *testing.T) {
	a := NewAttribute(4, 1)
	a.SetBold(true)
	if got := a.AsDOS(IceBlink); got != 0b0001_1100 {
		t.Fatalf("bold encode: %#b", got)
	}
}

func TestAttributeFromColorBytes(t *testing.T) {
	a := AttributeFromColorBytes(0b1100, 0b1010)
	if a.ForegroundIndex() != 4 || !a.IsBold() {
		t.Fatalf("foreground decode: %#v", a)
	}
	if a.BackgroundIndex() != 2 || !a.IsBlinking() {
		t.Fatalf("background decode: %#v", a)
	}
}

func TestIceModeWireBytes(t *testing.T) {
	for _, m := range []IceMode{IceBlink, IceColors, IceUnlimited} {
		if got := IceModeFromByte(m.ToByte()); got != m {
			t.Fatalf("ice mode %v round trip: %v", m, got)
		}
	}
	if IceColors.HasBlink() || !IceBlink.HasBlink() {
		t.Fatalf("blink capability wrong")
	}
	if IceBlink.HasHighBackgrounds() || !IceColors.HasHighBackgrounds() {
		t.Fatalf("high background capability wrong")
	}
}

func TestFontModeWireBytes(t *testing.T) {
	for _, m := range []FontMode{FontUnlimited, FontSauce, FontSingle, FontFixedSize} {
		if got := FontModeFromByte(m.ToByte()); got != m {
			t.Fatalf("font mode %v round trip: %v", m, got)
		}
	}
	// FixedSize steals foreground bit 3 for the font page.
	if FontFixedSize.HasHighForegrounds() || !FontSauce.HasHighForegrounds() {
		t.Fatalf("high foreground capability wrong")
	}
}

func TestInvisibleChar(t *testing.T) {
	ch := InvisibleChar()
	if ch.IsVisible() || !ch.IsTransparent() {
		t.Fatalf("invisible char: %#v", ch)
	}
	if !ch.Attribute.IsForegroundTransparent() || !ch.Attribute.IsBackgroundTransparent() {
		t.Fatalf("invisible colors: %#v", ch.Attribute)
	}

	visible := NewChar('a', DefaultAttribute())
	if !visible.IsVisible() || visible.IsTransparent() {
		t.Fatalf("plain char: %#v", visible)
	}
}
