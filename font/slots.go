// Copyright © 2026 Icebox contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: font/slots.go
// Summary: The 43 CTerm ANSI font slots: name table, name lookup and
//          the line-count to font-height mapping.
// Notes: Only slot 0 has embedded glyph data; the other slots exist so
//        SAUCE records and font-switch sequences can be recognized and
//        round-tripped by name.

package font

import "strings"

// ANSISlotCount is the number of CTerm font slots (0-42).
const ANSISlotCount = 43

// ansiSlotNames maps slot number to font name.
var ansiSlotNames = [ANSISlotCount]string{
	"Codepage 437 English",
	"Codepage 1251 Cyrillic (swiss)",
	"Russian koi8-r",
	"ISO-8859-2 Central European",
	"ISO-8859-4 Baltic wide (VGA 9bit mapped)",
	"Codepage 866 (c) Russian",
	"ISO-8859-9 Turkish",
	"haik8 codepage",
	"ISO-8859-8 Hebrew",
	"Ukrainian font koi8-u",
	"ISO-8859-15 West European (thin)",
	"ISO-8859-4 Baltic (VGA 9bit mapped)",
	"Russian koi8-r (b)",
	"ISO-8859-4 Baltic wide",
	"ISO-8859-5 Cyrillic",
	"ARMSCII-8 Character set",
	"ISO-8859-15 West European",
	"Codepage 850 Multilingual Latin I (thin)",
	"Codepage 850 Multilingual Latin I",
	"Codepage 865 Norwegian (thin)",
	"Codepage 1251 Cyrillic",
	"ISO-8859-7 Greek",
	"Russian koi8-r (c)",
	"ISO-8859-4 Baltic",
	"ISO-8859-1 West European",
	"Codepage 866 Russian",
	"Codepage 437 English (thin)",
	"Codepage 866 (b) Russian",
	"Codepage 865 Norwegian",
	"Ukrainian font cp866u",
	"ISO-8859-1 West European (thin)",
	"Codepage 1131 Belarusian (swiss)",
	"Commodore 64 (UPPER)",
	"Commodore 64 (Lower)",
	"Commodore 128 (UPPER)",
	"Commodore 128 (Lower)",
	"Atari",
	"P0T NOoDLE (Amiga)",
	"mOsOul (Amiga)",
	"MicroKnight Plus (Amiga)",
	"Topaz Plus (Amiga)",
	"MicroKnight (Amiga)",
	"Topaz (Amiga)",
}

// SlotFontNames returns the names of all ANSI font slots in order.
func SlotFontNames() []string {
	names := make([]string, ANSISlotCount)
	copy(names, ansiSlotNames[:])
	return names
}

// SlotFontName returns the name of a slot, empty when out of range.
func SlotFontName(slot int) string {
	if slot < 0 || slot >= ANSISlotCount {
		return ""
	}
	return ansiSlotNames[slot]
}

// FindSlotByName locates the first slot whose name contains the given
// string, case-insensitive. Returns -1 when nothing matches.
func FindSlotByName(name string) int {
	want := strings.ToLower(name)
	for slot, n := range ansiSlotNames {
		if strings.Contains(strings.ToLower(n), want) {
			return slot
		}
	}
	return -1
}

// FromAnsiFontPage returns the font for a CTerm slot, or nil when no
// glyph data is available for it. Slot 0 is the built-in VGA font; the
// scaled variant is picked by font height.
func FromAnsiFontPage(fontPage int, fontHeight int) *BitFont {
	if fontPage != 0 {
		return nil
	}
	base := Default()
	base.Name = ansiSlotNames[0]
	if fontHeight == int(base.Height) || fontHeight <= 0 {
		return base
	}
	return base.ScaleToHeight(fontHeight)
}

// FontHeightForLines maps a terminal line count to the classic VGA/EGA
// font height for that mode.
func FontHeightForLines(lines int) int {
	switch lines {
	case 50:
		return 8
	case 28, 43:
		return 14
	default:
		return 16
	}
}
