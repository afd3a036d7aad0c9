// Copyright © 2026 Icebox contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: buffer/halfblock.go
// Summary: Half-block glyph analysis used by compositing and block
//          painting. Classifies a CP437 cell into block regions and
//          synthesizes the replacement cell when one half is repainted.
// Notes: The TOP/BOTTOM color assignment asymmetry is a compatibility
//        contract; keep it exactly as is.

package buffer

// CP437 block glyphs.
const (
	FullBlock       = rune(219)
	HalfBlockTop    = rune(223)
	HalfBlockBottom = rune(220)
	EmptyBlock1     = rune(0)
	EmptyBlock2     = rune(255)
	LeftBlock       = rune(221)
	RightBlock      = rune(222)
)

func flipColors(attribute TextAttribute) TextAttribute {
	result := attribute
	result.Foreground = attribute.Background
	result.Background = attribute.Foreground
	return result
}

// HalfBlockType classifies which regions of a cell a block glyph paints.
type HalfBlockType uint8

const (
	HalfBlockNone HalfBlockType = iota
	HalfBlockUpper
	HalfBlockLower
	HalfBlockFull
	HalfBlockEmpty
	HalfBlockLeft
	HalfBlockRight
)

// HalfBlock is the decomposition of one cell into block-region colors.
// IsTop records whether the addressed half-row is the upper half.
type HalfBlock struct {
	Ch              AttributedChar
	UpperBlockColor AttributeColor
	LowerBlockColor AttributeColor
	LeftBlockColor  AttributeColor
	RightBlockColor AttributeColor
	IsTop           bool
	Type            HalfBlockType
}

// HalfBlockFromChar analyzes the cell at a half-row position. pos.Y is
// in half-row units; even rows address the upper half.
func HalfBlockFromChar(ch AttributedChar, pos Position) HalfBlock {
	hb := HalfBlock{
		Ch:              ch,
		UpperBlockColor: PaletteColor(0),
		LowerBlockColor: PaletteColor(0),
		LeftBlockColor:  PaletteColor(0),
		RightBlockColor: PaletteColor(0),
		IsTop:           pos.Y%2 == 0,
	}
	switch ch.Ch {
	case EmptyBlock1, ' ', EmptyBlock2:
		hb.UpperBlockColor = ch.Attribute.Background
		hb.LowerBlockColor = ch.Attribute.Background
		hb.Type = HalfBlockEmpty
	case HalfBlockBottom:
		hb.UpperBlockColor = ch.Attribute.Background
		hb.LowerBlockColor = ch.Attribute.Foreground
		hb.Type = HalfBlockLower
	case HalfBlockTop:
		hb.UpperBlockColor = ch.Attribute.Foreground
		hb.LowerBlockColor = ch.Attribute.Background
		hb.Type = HalfBlockUpper
	case FullBlock:
		hb.UpperBlockColor = ch.Attribute.Foreground
		hb.LowerBlockColor = ch.Attribute.Foreground
		hb.Type = HalfBlockFull
	case LeftBlock:
		hb.LeftBlockColor = ch.Attribute.Foreground
		hb.RightBlockColor = ch.Attribute.Background
		hb.Type = HalfBlockLeft
	case RightBlock:
		hb.LeftBlockColor = ch.Attribute.Background
		hb.RightBlockColor = ch.Attribute.Foreground
		hb.Type = HalfBlockRight
	default:
		if ch.Attribute.Background == ch.Attribute.Foreground {
			hb.UpperBlockColor = ch.Attribute.Foreground
			hb.LowerBlockColor = ch.Attribute.Foreground
			hb.Type = HalfBlockFull
		} else {
			hb.Type = HalfBlockNone
		}
	}
	return hb
}

// IsBlocky reports whether the glyph paints whole horizontal halves.
func (hb *HalfBlock) IsBlocky() bool {
	switch hb.Type {
	case HalfBlockUpper, HalfBlockLower, HalfBlockFull, HalfBlockEmpty:
		return true
	default:
		return false
	}
}

// IsVerticallyBlocky reports whether the glyph paints vertical halves.
func (hb *HalfBlock) IsVerticallyBlocky() bool {
	return hb.Type == HalfBlockLeft || hb.Type == HalfBlockRight
}

// CharWithColor returns the cell that results from painting the
// addressed half with col, keeping the other half's color. When
// transparentColor is set and the source cell is transparent, the
// unpainted half stays transparent.
func (hb *HalfBlock) CharWithColor(col AttributeColor, transparentColor bool) AttributedChar {
	transparentColor = hb.Ch.IsTransparent() && transparentColor

	otherHalf := func(keep AttributeColor) AttributeColor {
		if transparentColor {
			return Transparent
		}
		return keep
	}

	var block AttributedChar
	if hb.IsBlocky() {
		if hb.IsTop && hb.LowerBlockColor == col || !hb.IsTop && hb.UpperBlockColor == col {
			block = NewChar(FullBlock, AttributeFromColors(col, PaletteColor(0)))
		} else if hb.IsTop {
			block = NewChar(HalfBlockTop, AttributeFromColors(col, otherHalf(hb.LowerBlockColor)))
		} else {
			block = NewChar(HalfBlockBottom, AttributeFromColors(col, otherHalf(hb.UpperBlockColor)))
		}
	} else {
		if hb.IsTop {
			block = NewChar(HalfBlockTop, AttributeFromColors(col, otherHalf(hb.Ch.Attribute.Background)))
		} else {
			block = NewChar(HalfBlockBottom, AttributeFromColors(col, otherHalf(hb.Ch.Attribute.Background)))
		}
	}
	return hb.optimizeBlock(block)
}

// optimizeBlock rewrites the synthesized cell into the cheaper DOS
// representation when black or a bright background is involved.
func (hb *HalfBlock) optimizeBlock(block AttributedChar) AttributedChar {
	if block.Attribute.ForegroundIndex() == 0 {
		if block.Attribute.BackgroundIndex() == 0 || block.Ch == FullBlock {
			block.Ch = ' '
			block.Attribute = DefaultAttribute()
			return block
		}
		switch block.Ch {
		case HalfBlockBottom:
			return NewChar(HalfBlockTop, flipColors(block.Attribute))
		case HalfBlockTop:
			return NewChar(HalfBlockBottom, flipColors(block.Attribute))
		}
	} else if block.Attribute.ForegroundIndex() < 8 && block.Attribute.BackgroundIndex() >= 8 {
		if hb.IsBlocky() {
			switch block.Ch {
			case HalfBlockBottom:
				return NewChar(HalfBlockTop, flipColors(block.Attribute))
			case HalfBlockTop:
				return NewChar(HalfBlockBottom, flipColors(block.Attribute))
			}
		} else if hb.IsVerticallyBlocky() {
			switch block.Ch {
			case LeftBlock:
				return NewChar(RightBlock, flipColors(block.Attribute))
			case RightBlock:
				return NewChar(LeftBlock, flipColors(block.Attribute))
			}
		}
	}
	return block
}
