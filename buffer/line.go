// Copyright © 2026 Icebox contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: buffer/line.go
// Summary: One row of attributed cells inside a layer.

package buffer

// Line is a row of cells. Rows grow on demand; cells past the end of
// Chars read as invisible.
type Line struct {
	Chars []AttributedChar
}

// NewLine creates a row of the given width filled with invisible cells.
func NewLine(width int) Line {
	chars := make([]AttributedChar, width)
	inv := InvisibleChar()
	for i := range chars {
		chars[i] = inv
	}
	return Line{Chars: chars}
}

// Char returns the cell at column x, invisible when out of range.
func (l *Line) Char(x int) AttributedChar {
	if x < 0 || x >= len(l.Chars) {
		return InvisibleChar()
	}
	return l.Chars[x]
}

// SetChar stores a cell at column x, growing the row when needed.
func (l *Line) SetChar(x int, ch AttributedChar) {
	if x < 0 {
		return
	}
	for len(l.Chars) <= x {
		l.Chars = append(l.Chars, InvisibleChar())
	}
	l.Chars[x] = ch
}

// Length is the column past the last non-transparent cell.
func (l *Line) Length() int {
	for i := len(l.Chars) - 1; i >= 0; i-- {
		if !l.Chars[i].IsTransparent() {
			return i + 1
		}
	}
	return 0
}

// IsEffectiveEmpty reports whether the row shows nothing.
func (l *Line) IsEffectiveEmpty() bool { return l.Length() == 0 }
