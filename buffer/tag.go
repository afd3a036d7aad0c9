// Copyright © 2026 Icebox contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: buffer/tag.go
// Summary: Positional text overlays (display codes, hyperlink previews)
//          that override underlying cells while enabled.

package buffer

// TagPlacement says how a tag is written back when generating output.
type TagPlacement uint8

const (
	// PlaceInText writes the tag inline at its position in the stream.
	PlaceInText TagPlacement = iota
	// PlaceWithGotoXY positions the tag with an explicit cursor move.
	PlaceWithGotoXY
)

// TagRole distinguishes display codes from hyperlinks.
type TagRole uint8

const (
	RoleDisplayCode TagRole = iota
	RoleHyperlink
)

// TagAlignment aligns the preview text within the tag span.
type TagAlignment uint8

const (
	AlignLeft TagAlignment = iota
	AlignRight
	AlignCenter
)

// Tag overlays a run of cells. While enabled, reads through the buffer
// return the tag's preview characters instead of the stored cells.
type Tag struct {
	IsEnabled        bool
	Preview          string
	ReplacementValue string

	Position  Position
	Length    int
	Alignment TagAlignment
	Placement TagPlacement
	Role      TagRole

	Attribute TextAttribute
}

// Len is the display length of the tag, which is always the preview
// length; the Length field is reserved.
func (t *Tag) Len() int { return len([]rune(t.Preview)) }

// Contains reports whether the cell position falls inside the tag span.
func (t *Tag) Contains(pos Position) bool {
	return t.Position.Y == pos.Y && t.Position.X <= pos.X && pos.X < t.Position.X+t.Len()
}

// CharAt returns the overlay cell for column x relative to the tag
// start. Hyperlink tags render underlined.
func (t *Tag) CharAt(x int) AttributedChar {
	runes := []rune(t.Preview)
	pick := func(i int) rune {
		if i < 0 || i >= len(runes) {
			return ' '
		}
		return runes[i]
	}
	var ch rune
	switch t.Alignment {
	case AlignRight:
		ch = pick(t.Len() - x - 1)
	case AlignCenter:
		if x < t.Len()/2 {
			ch = pick(x)
		} else {
			ch = pick(t.Len() - x - 1)
		}
	default:
		ch = pick(x)
	}
	if t.Role == RoleDisplayCode {
		return NewChar(ch, t.Attribute)
	}
	attr := t.Attribute
	attr.SetUnderlined(true)
	return NewChar(ch, attr)
}
