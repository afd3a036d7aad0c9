// Copyright © 2026 Icebox contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: palette/tables.go
// Summary: Fixed hardware palettes: DOS/VGA, C64, Atari ST, Amiga,
//          SkyPix and the xterm 256-color table.
// Notes: The C64 values follow the Petmate 9 palette. Amiga and SkyPix
//        entries come from 4-bit hardware registers scaled to 8 bits.

package palette

// DOSDefaultPalette is the 16-color VGA text-mode palette.
var DOSDefaultPalette = [16]Color{
	{Name: "black", R: 0x00, G: 0x00, B: 0x00},
	{Name: "blue", R: 0x00, G: 0x00, B: 0xAA},
	{Name: "green", R: 0x00, G: 0xAA, B: 0x00},
	{Name: "cyan", R: 0x00, G: 0xAA, B: 0xAA},
	{Name: "red", R: 0xAA, G: 0x00, B: 0x00},
	{Name: "magenta", R: 0xAA, G: 0x00, B: 0xAA},
	{Name: "brown", R: 0xAA, G: 0x55, B: 0x00},
	{Name: "light gray", R: 0xAA, G: 0xAA, B: 0xAA},
	{Name: "dark gray", R: 0x55, G: 0x55, B: 0x55},
	{Name: "light blue", R: 0x55, G: 0x55, B: 0xFF},
	{Name: "light green", R: 0x55, G: 0xFF, B: 0x55},
	{Name: "light cyan", R: 0x55, G: 0xFF, B: 0xFF},
	{Name: "light red", R: 0xFF, G: 0x55, B: 0x55},
	{Name: "light magenta", R: 0xFF, G: 0x55, B: 0xFF},
	{Name: "yellow", R: 0xFF, G: 0xFF, B: 0x55},
	{Name: "white", R: 0xFF, G: 0xFF, B: 0xFF},
}

// C64DefaultPalette is the Commodore 64 palette (Petmate 9 values).
var C64DefaultPalette = [16]Color{
	{Name: "black", R: 0x00, G: 0x00, B: 0x00},
	{Name: "white", R: 0xFF, G: 0xFF, B: 0xFF},
	{Name: "red", R: 0x92, G: 0x4A, B: 0x40},
	{Name: "cyan", R: 0x84, G: 0xC5, B: 0xCC},
	{Name: "violet", R: 0x93, G: 0x51, B: 0xB6},
	{Name: "green", R: 0x72, G: 0xB1, B: 0x4B},
	{Name: "blue", R: 0x48, G: 0x3A, B: 0xA4},
	{Name: "yellow", R: 0xD5, G: 0xDF, B: 0x7C},
	{Name: "orange", R: 0x99, G: 0x69, B: 0x2D},
	{Name: "brown", R: 0x67, G: 0x52, B: 0x01},
	{Name: "light red", R: 0xC0, G: 0x81, B: 0x78},
	{Name: "gray 1", R: 0x60, G: 0x60, B: 0x60},
	{Name: "gray 2", R: 0x8A, G: 0x8A, B: 0x8A},
	{Name: "light green", R: 0xB2, G: 0xEC, B: 0x91},
	{Name: "light blue", R: 0x86, G: 0x7A, B: 0xDE},
	{Name: "gray 3", R: 0xAE, G: 0xAE, B: 0xAE},
}

// AtariDefaultPalette is the Atari ST default: blue background, light
// blue foreground, DOS filler for the unused slots.
var AtariDefaultPalette = [16]Color{
	{Name: "background", R: 0x09, G: 0x51, B: 0x83},
	{R: 0x00, G: 0x00, B: 0xAA},
	{R: 0x00, G: 0xAA, B: 0x00},
	{R: 0x00, G: 0xAA, B: 0xAA},
	{R: 0xAA, G: 0x00, B: 0x00},
	{R: 0xAA, G: 0x00, B: 0xAA},
	{R: 0xAA, G: 0x55, B: 0x00},
	{Name: "foreground", R: 0x65, G: 0xB7, B: 0xE9},
	{R: 0x55, G: 0x55, B: 0x55},
	{R: 0x55, G: 0x55, B: 0xFF},
	{R: 0x55, G: 0xFF, B: 0x55},
	{R: 0x55, G: 0xFF, B: 0xFF},
	{R: 0xFF, G: 0x55, B: 0x55},
	{R: 0xFF, G: 0x55, B: 0xFF},
	{R: 0xFF, G: 0xFF, B: 0x55},
	{R: 0xFF, G: 0xFF, B: 0xFF},
}

// amigaColor scales a 4-bit-per-channel hardware register to 8 bits.
func amigaColor(r, g, b int) Color {
	return Color{R: uint8(r * 255 / 15), G: uint8(g * 255 / 15), B: uint8(b * 255 / 15)}
}

// AmigaPalette is the Workbench-style 16-color Amiga palette.
var AmigaPalette = [16]Color{
	amigaColor(0, 0, 0),    // black
	amigaColor(10, 0, 0),   // red
	amigaColor(0, 10, 0),   // green
	amigaColor(10, 6, 0),   // orange
	amigaColor(0, 0, 10),   // dark blue
	amigaColor(10, 0, 10),  // violet
	amigaColor(0, 10, 10),  // cyan
	amigaColor(11, 11, 11), // light gray
	amigaColor(6, 6, 6),    // dark gray
	amigaColor(15, 0, 0),   // bright red
	amigaColor(0, 15, 0),   // bright green
	amigaColor(15, 15, 0),  // yellow
	amigaColor(0, 0, 15),   // bright blue
	amigaColor(15, 0, 15),  // bright violet
	amigaColor(0, 15, 0),   // bright cyan
	amigaColor(15, 15, 15), // white
}

// SkypixPalette is the default SkyPix drawing palette.
var SkypixPalette = [16]Color{
	amigaColor(0, 0, 0),
	amigaColor(1, 1, 15),
	amigaColor(13, 13, 13),
	amigaColor(15, 0, 0),
	amigaColor(0, 15, 1),
	amigaColor(3, 10, 15),
	amigaColor(15, 15, 2),
	amigaColor(12, 0, 14),
	amigaColor(0, 11, 6),
	amigaColor(0, 13, 13),
	amigaColor(0, 10, 15),
	amigaColor(0, 7, 12),
	amigaColor(0, 0, 15),
	amigaColor(7, 0, 15),
	amigaColor(12, 0, 14),
	amigaColor(12, 0, 8),
}

// XTerm256Palette is the xterm 256-color table: 16 system colors, a
// 6x6x6 color cube and a 24-step gray ramp.
var XTerm256Palette = buildXTerm256()

func buildXTerm256() [256]Color {
	var pal [256]Color
	system := [16]Color{
		{R: 0x00, G: 0x00, B: 0x00}, {R: 0x80, G: 0x00, B: 0x00},
		{R: 0x00, G: 0x80, B: 0x00}, {R: 0x80, G: 0x80, B: 0x00},
		{R: 0x00, G: 0x00, B: 0x80}, {R: 0x80, G: 0x00, B: 0x80},
		{R: 0x00, G: 0x80, B: 0x80}, {R: 0xC0, G: 0xC0, B: 0xC0},
		{R: 0x80, G: 0x80, B: 0x80}, {R: 0xFF, G: 0x00, B: 0x00},
		{R: 0x00, G: 0xFF, B: 0x00}, {R: 0xFF, G: 0xFF, B: 0x00},
		{R: 0x00, G: 0x00, B: 0xFF}, {R: 0xFF, G: 0x00, B: 0xFF},
		{R: 0x00, G: 0xFF, B: 0xFF}, {R: 0xFF, G: 0xFF, B: 0xFF},
	}
	copy(pal[:16], system[:])

	ramp := [6]uint8{0x00, 0x5F, 0x87, 0xAF, 0xD7, 0xFF}
	i := 16
	for r := 0; r < 6; r++ {
		for g := 0; g < 6; g++ {
			for b := 0; b < 6; b++ {
				pal[i] = Color{R: ramp[r], G: ramp[g], B: ramp[b]}
				i++
			}
		}
	}
	for n := 0; n < 24; n++ {
		v := uint8(8 + n*10)
		pal[i] = Color{R: v, G: v, B: v}
		i++
	}
	return pal
}
