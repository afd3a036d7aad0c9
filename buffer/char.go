// Copyright © 2026 Icebox contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: buffer/char.go
// Summary: AttributedChar, the unit of storage of the character-cell
//          buffer model.
// Notes: An invisible char carries transparent colors and the invisible
//        flag, so compositing falls through it to the layer beneath.

package buffer

// AttributedChar is one cell: a character code plus its attribute.
type AttributedChar struct {
	Ch        rune
	Attribute TextAttribute
}

// NewChar builds a cell from a character and an attribute.
func NewChar(ch rune, attribute TextAttribute) AttributedChar {
	return AttributedChar{Ch: ch, Attribute: attribute}
}

// InvisibleChar is the empty cell: nothing painted, all colors
// transparent.
func InvisibleChar() AttributedChar {
	return AttributedChar{
		Ch: ' ',
		Attribute: TextAttribute{
			Foreground: Transparent,
			Background: Transparent,
			Attr:       AttrInvisible,
		},
	}
}

// IsVisible reports whether the cell holds painted content.
func (c AttributedChar) IsVisible() bool {
	return c.Attribute.Attr&AttrInvisible == 0
}

// IsTransparent reports whether the cell shows nothing at all: a blank
// character over a transparent background.
func (c AttributedChar) IsTransparent() bool {
	return (c.Ch == 0 || c.Ch == ' ') && c.Attribute.Background.IsTransparent()
}

// FontPage returns the font page the character is drawn with.
func (c AttributedChar) FontPage() uint8 { return c.Attribute.FontPage }

// SetFontPage changes the font page in place.
func (c *AttributedChar) SetFontPage(page uint8) { c.Attribute.FontPage = page }

// WithFontPage returns a copy drawn with a different font page.
func (c AttributedChar) WithFontPage(page uint8) AttributedChar {
	c.Attribute.FontPage = page
	return c
}
