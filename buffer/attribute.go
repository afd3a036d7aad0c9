// Copyright © 2026 Icebox contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: buffer/attribute.go
// Summary: Per-cell text attributes: style flags, foreground/background
//          colors and the font page, plus the ice/font color-depth modes.
// Notes: Transparency is a color value, not a style flag. AttributeColor
//        packs into a tagged uint32 so cells stay small and comparable.

package buffer

// Style flags stored in TextAttribute.Attr.
const (
	AttrNone            uint16 = 0
	AttrBold            uint16 = 0b0000_0000_0000_0001
	AttrFaint           uint16 = 0b0000_0000_0000_0010
	AttrItalic          uint16 = 0b0000_0000_0000_0100
	AttrBlink           uint16 = 0b0000_0000_0000_1000
	AttrUnderline       uint16 = 0b0000_0000_0001_0000
	AttrDoubleUnderline uint16 = 0b0000_0000_0010_0000
	AttrConceal         uint16 = 0b0000_0000_0100_0000
	AttrCrossedOut      uint16 = 0b0000_0000_1000_0000
	AttrDoubleHeight    uint16 = 0b0000_0001_0000_0000
	AttrOverline        uint16 = 0b0000_0010_0000_0000

	// Marker for I/O: invisible cell / end-of-visible-line.
	AttrInvisible uint16 = 0b1000_0000_0000_0000
	// Short marker for skipping the rest of a line in wire formats.
	AttrInvisibleShort uint16 = 0b1100_0000_0000_0000
)

// AttributeColor is a cell color: a palette index, an extended (xterm 256)
// index, a direct RGB value, or fully transparent. The tag lives in the
// top byte:
//
//	Transparent        0xFF_00_00_00
//	Palette(n)         0x00_00_00_nn
//	ExtendedPalette(n) 0x01_00_00_nn
//	Rgb(r,g,b)         0x02_rr_gg_bb
type AttributeColor uint32

// Transparent marks "no color painted here" for layer compositing.
const Transparent AttributeColor = 0xFF_00_00_00

const (
	tagExtended uint32 = 0x01_00_00_00
	tagRGB      uint32 = 0x02_00_00_00
)

// PaletteColor returns a standard palette index color (0-15 typically,
// higher for custom palettes).
func PaletteColor(n uint8) AttributeColor { return AttributeColor(n) }

// ExtendedColor returns an xterm-256 palette index color.
func ExtendedColor(n uint8) AttributeColor { return AttributeColor(tagExtended | uint32(n)) }

// RGBColor returns a direct RGB color.
func RGBColor(r, g, b uint8) AttributeColor {
	return AttributeColor(tagRGB | uint32(r)<<16 | uint32(g)<<8 | uint32(b))
}

// AttributeColorFromU32 decodes the storage representation. Unknown tags
// decode as a palette index of the low byte.
func AttributeColorFromU32(val uint32) AttributeColor {
	switch val >> 24 {
	case 0xFF:
		return Transparent
	case 0x02, 0x01:
		return AttributeColor(val)
	default:
		return AttributeColor(val & 0xFF)
	}
}

func (c AttributeColor) ToU32() uint32 { return uint32(c) }

func (c AttributeColor) IsTransparent() bool { return c == Transparent }
func (c AttributeColor) IsPalette() bool     { return uint32(c)>>24 == 0 }
func (c AttributeColor) IsExtended() bool    { return uint32(c)>>24 == 0x01 }
func (c AttributeColor) IsRGB() bool         { return uint32(c)>>24 == 0x02 }

// Index returns the palette or extended-palette index, 0 for RGB and
// transparent colors.
func (c AttributeColor) Index() uint8 {
	if c.IsPalette() || c.IsExtended() {
		return uint8(c)
	}
	return 0
}

// RGB returns the direct color channels, (0,0,0) for non-RGB colors.
func (c AttributeColor) RGB() (r, g, b uint8) {
	if !c.IsRGB() {
		return 0, 0, 0
	}
	return uint8(c >> 16), uint8(c >> 8), uint8(c)
}

// IceMode controls whether background attribute bit 3 means "blink" or a
// 16-color bright background.
type IceMode uint8

const (
	IceBlink IceMode = iota
	IceColors
	IceUnlimited
)

// IceModeFromByte decodes the wire byte used by file formats.
func IceModeFromByte(b uint8) IceMode {
	switch b {
	case 0:
		return IceUnlimited
	case 1:
		return IceBlink
	default:
		return IceColors
	}
}

func (m IceMode) ToByte() uint8 {
	switch m {
	case IceUnlimited:
		return 0
	case IceBlink:
		return 1
	default:
		return 2
	}
}

func (m IceMode) HasBlink() bool           { return m != IceColors }
func (m IceMode) HasHighBackgrounds() bool { return m != IceBlink }

// FontMode caps how many font slots a document may address.
type FontMode uint8

const (
	// FontUnlimited allows any number of fonts in the same document.
	FontUnlimited FontMode = iota
	// FontSauce restricts to a single SAUCE-named font.
	FontSauce
	// FontSingle restricts to a single font of any kind.
	FontSingle
	// FontFixedSize limits the page count, e.g. 2 for XBin 512-char mode.
	FontFixedSize
)

func FontModeFromByte(b uint8) FontMode {
	switch b {
	case 1:
		return FontSauce
	case 2:
		return FontSingle
	case 3:
		return FontFixedSize
	default:
		return FontUnlimited
	}
}

func (m FontMode) ToByte() uint8 { return uint8(m) }

// HasHighForegrounds reports whether foreground indices >= 8 address
// bright colors. In FixedSize mode bit 3 selects the font page instead.
func (m FontMode) HasHighForegrounds() bool { return m != FontFixedSize }

// PaletteMode describes how many palette slots a document may redefine.
type PaletteMode uint8

const (
	PaletteRGB PaletteMode = iota
	PaletteFixed16
	PaletteFree8
	PaletteFree16
)

// TextAttribute carries the complete display state of one cell.
type TextAttribute struct {
	FontPage   uint8
	Foreground AttributeColor
	Background AttributeColor
	Attr       uint16
}

// DefaultAttribute is light gray on black, no flags, font page 0.
func DefaultAttribute() TextAttribute {
	return TextAttribute{Foreground: PaletteColor(7), Background: PaletteColor(0)}
}

// NewAttribute builds an attribute from two palette indices.
func NewAttribute(foreground, background uint8) TextAttribute {
	a := DefaultAttribute()
	a.Foreground = PaletteColor(foreground)
	a.Background = PaletteColor(background)
	return a
}

// AttributeFromColors builds an attribute from two colors.
func AttributeFromColors(foreground, background AttributeColor) TextAttribute {
	a := DefaultAttribute()
	a.Foreground = foreground
	a.Background = background
	return a
}

// AttributeFromDOS decodes a legacy DOS attribute byte. Under IceBlink
// (and IceUnlimited) the top bit means blink; under IceColors it is the
// high background bit.
func AttributeFromDOS(attr uint8, iceMode IceMode) TextAttribute {
	var background uint8
	blink := false
	if iceMode == IceColors {
		background = attr >> 4
	} else {
		blink = attr&0b1000_0000 != 0
		background = (attr >> 4) & 0b0111
	}
	a := NewAttribute(attr&0b1111, background)
	a.SetBlinking(blink)
	return a
}

// AttributeFromColorBytes decodes the bold/blink encoding used by some
// legacy formats: fg bit 3 is bold, bg bit 3 is blink.
func AttributeFromColorBytes(fg, bg uint8) TextAttribute {
	a := NewAttribute(fg&0x7, bg&0x7)
	a.SetBold(fg&0b1000 != 0)
	a.SetBlinking(bg&0b1000 != 0)
	return a
}

// AsDOS packs the attribute into a legacy DOS attribute byte. RGB colors
// fall back to gray on black.
func (a TextAttribute) AsDOS(iceMode IceMode) uint8 {
	fgIdx := uint8(7)
	if a.Foreground.IsPalette() || a.Foreground.IsExtended() {
		fgIdx = a.Foreground.Index()
	} else if a.Foreground.IsTransparent() {
		fgIdx = 0
	}
	bgIdx := uint8(0)
	if a.Background.IsPalette() || a.Background.IsExtended() {
		bgIdx = a.Background.Index()
	}

	fg := fgIdx & 0b1111
	if a.IsBold() {
		fg |= 0b1000
	}
	var bg uint8
	if iceMode == IceBlink {
		bg = bgIdx & 0b0111
		if a.IsBlinking() {
			bg |= 0b1000
		}
	} else {
		bg = bgIdx & 0b1111
	}
	return fg | bg<<4
}

func (a TextAttribute) IsForegroundTransparent() bool { return a.Foreground.IsTransparent() }
func (a TextAttribute) IsBackgroundTransparent() bool { return a.Background.IsTransparent() }

// ForegroundIndex returns the legacy palette index, 0 for RGB/transparent.
func (a TextAttribute) ForegroundIndex() uint8 { return a.Foreground.Index() }

// BackgroundIndex returns the legacy palette index, 0 for RGB/transparent.
func (a TextAttribute) BackgroundIndex() uint8 { return a.Background.Index() }

func (a TextAttribute) IsBold() bool     { return a.Attr&AttrBold != 0 }
func (a TextAttribute) IsFaint() bool    { return a.Attr&AttrFaint != 0 }
func (a TextAttribute) IsItalic() bool   { return a.Attr&AttrItalic != 0 }
func (a TextAttribute) IsBlinking() bool { return a.Attr&AttrBlink != 0 }
func (a TextAttribute) IsUnderlined() bool       { return a.Attr&AttrUnderline != 0 }
func (a TextAttribute) IsDoubleUnderlined() bool { return a.Attr&AttrDoubleUnderline != 0 }
func (a TextAttribute) IsConcealed() bool        { return a.Attr&AttrConceal != 0 }
func (a TextAttribute) IsCrossedOut() bool       { return a.Attr&AttrCrossedOut != 0 }
func (a TextAttribute) IsDoubleHeight() bool     { return a.Attr&AttrDoubleHeight != 0 }
func (a TextAttribute) IsOverlined() bool        { return a.Attr&AttrOverline != 0 }

func (a *TextAttribute) setFlag(flag uint16, on bool) {
	if on {
		a.Attr |= flag
	} else {
		a.Attr &^= flag
	}
}

func (a *TextAttribute) SetBold(on bool)             { a.setFlag(AttrBold, on) }
func (a *TextAttribute) SetFaint(on bool)            { a.setFlag(AttrFaint, on) }
func (a *TextAttribute) SetItalic(on bool)           { a.setFlag(AttrItalic, on) }
func (a *TextAttribute) SetBlinking(on bool)         { a.setFlag(AttrBlink, on) }
func (a *TextAttribute) SetUnderlined(on bool)       { a.setFlag(AttrUnderline, on) }
func (a *TextAttribute) SetDoubleUnderlined(on bool) { a.setFlag(AttrDoubleUnderline, on) }
func (a *TextAttribute) SetConcealed(on bool)        { a.setFlag(AttrConceal, on) }
func (a *TextAttribute) SetCrossedOut(on bool)       { a.setFlag(AttrCrossedOut, on) }
func (a *TextAttribute) SetDoubleHeight(on bool)     { a.setFlag(AttrDoubleHeight, on) }
func (a *TextAttribute) SetOverlined(on bool)        { a.setFlag(AttrOverline, on) }

// ResetFlags clears every style flag, keeping colors and font page.
func (a *TextAttribute) ResetFlags() { a.Attr = 0 }

// WithFontPage returns a copy addressing a different font page.
func (a TextAttribute) WithFontPage(page uint8) TextAttribute {
	a.FontPage = page
	return a
}
