// Copyright © 2026 Icebox contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: parser/sgr.go
// Summary: SGR (ESC[...m) parameter decoding via a lookup table.
// Notes: Covers the 16-color block, 38/48 extended colors (256 and RGB)
//        and the style toggles. Parameter order is preserved.

package parser

import "fmt"

// AnsiColorOffsets maps the ANSI SGR color order (black, red, green,
// yellow, blue, magenta, cyan, white) to DOS palette indices.
var AnsiColorOffsets = [8]uint8{0, 4, 2, 6, 1, 5, 3, 7}

type sgrEntryKind uint8

const (
	sgrSet sgrEntryKind = iota
	sgrExtForeground
	sgrExtBackground
	sgrUndefined
)

type sgrEntry struct {
	kind sgrEntryKind
	attr SgrAttribute
}

func set(attr SgrAttribute) sgrEntry { return sgrEntry{kind: sgrSet, attr: attr} }

func intensity(i Intensity) SgrAttribute { return SgrAttribute{Kind: SgrIntensity, Intensity: i} }
func underline(u Underline) SgrAttribute { return SgrAttribute{Kind: SgrUnderline, Underline: u} }
func blink(b BlinkRate) SgrAttribute     { return SgrAttribute{Kind: SgrBlink, Blink: b} }
func onOff(kind SgrKind, on bool) SgrAttribute {
	return SgrAttribute{Kind: kind, On: on}
}
func font(n uint8) SgrAttribute { return SgrAttribute{Kind: SgrFont, Font: n} }
func foreground(c Color) SgrAttribute {
	return SgrAttribute{Kind: SgrForeground, Color: c}
}
func background(c Color) SgrAttribute {
	return SgrAttribute{Kind: SgrBackground, Color: c}
}

var sgrLUT = buildSgrLUT()

func buildSgrLUT() [108]sgrEntry {
	var lut [108]sgrEntry
	for i := range lut {
		lut[i] = sgrEntry{kind: sgrUndefined}
	}
	lut[0] = set(SgrAttribute{Kind: SgrReset})
	lut[1] = set(intensity(IntensityBold))
	lut[2] = set(intensity(IntensityFaint))
	lut[3] = set(onOff(SgrItalic, true))
	lut[4] = set(underline(UnderlineSingle))
	lut[5] = set(blink(BlinkSlow))
	lut[6] = set(blink(BlinkRapid))
	lut[7] = set(onOff(SgrInverse, true))
	lut[8] = set(onOff(SgrConcealed, true))
	lut[9] = set(onOff(SgrCrossedOut, true))
	for n := 0; n <= 9; n++ {
		lut[10+n] = set(font(uint8(n)))
	}
	lut[20] = set(SgrAttribute{Kind: SgrFraktur})
	lut[21] = set(underline(UnderlineDouble))
	lut[22] = set(intensity(IntensityNormal))
	lut[23] = set(onOff(SgrItalic, false))
	lut[24] = set(underline(UnderlineOff))
	lut[25] = set(blink(BlinkOff))
	lut[27] = set(onOff(SgrInverse, false))
	lut[28] = set(onOff(SgrConcealed, false))
	lut[29] = set(onOff(SgrCrossedOut, false))
	for n := 0; n < 8; n++ {
		lut[30+n] = set(foreground(BaseColor(AnsiColorOffsets[n])))
		lut[40+n] = set(background(BaseColor(AnsiColorOffsets[n])))
		lut[90+n] = set(foreground(BaseColor(8 + AnsiColorOffsets[n])))
		lut[100+n] = set(background(BaseColor(8 + AnsiColorOffsets[n])))
	}
	lut[38] = sgrEntry{kind: sgrExtForeground}
	lut[39] = set(foreground(Color{Kind: ColorDefault}))
	lut[48] = sgrEntry{kind: sgrExtBackground}
	lut[49] = set(background(Color{Kind: ColorDefault}))
	lut[53] = set(onOff(SgrOverlined, true))
	lut[55] = set(onOff(SgrOverlined, false))
	for n := 60; n <= 65; n++ {
		lut[n] = set(SgrAttribute{Kind: SgrIdeogram, Font: uint8(n - 60)})
	}
	return lut
}

// parseSgr decodes the parameter list of an SGR sequence and emits one
// command per attribute.
func parseSgr(params []uint16, sink CommandSink) {
	i := 0
	for i < len(params) {
		code := int(params[i])
		entry := sgrEntry{kind: sgrUndefined}
		if code < len(sgrLUT) {
			entry = sgrLUT[code]
		}

		switch entry.kind {
		case sgrSet:
			sink.Emit(Sgr(entry.attr))
			i++

		case sgrExtForeground, sgrExtBackground:
			kind := SgrForeground
			if entry.kind == sgrExtBackground {
				kind = SgrBackground
			}
			if i+2 < len(params) && params[i+1] == 5 {
				// 256-color mode: 38;5;n / 48;5;n
				sink.Emit(Sgr(SgrAttribute{Kind: kind, Color: ExtendedColor(uint8(params[i+2]))}))
				i += 3
			} else if i+4 < len(params) && params[i+1] == 2 {
				// RGB mode: 38;2;r;g;b / 48;2;r;g;b
				c := RGBColor(uint8(params[i+2]), uint8(params[i+3]), uint8(params[i+4]))
				sink.Emit(Sgr(SgrAttribute{Kind: kind, Color: c}))
				i += 5
			} else if i+1 < len(params) {
				sink.ReportError(ParseError{
					Kind:    ErrInvalidParameter,
					Command: "SelectGraphicRendition",
					Value:   fmt.Sprint(params[i+1]),
				}, ErrorLevelError)
				i++
			} else {
				sink.ReportError(ParseError{
					Kind:        ErrIncompleteSequence,
					Description: "extended color requires sub-parameters (5;n or 2;r;g;b)",
				}, ErrorLevelError)
				i++
			}

		default:
			sink.ReportError(invalidParameter("SelectGraphicRendition", params[i]), ErrorLevelError)
			i++
		}
	}
}
