// Copyright © 2026 Icebox contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: buffer/layer.go
// Summary: A positioned, stackable grid of attributed cells plus the
//          sixel images and hyperlinks anchored to it.
// Notes: Locked or hidden layers silently ignore writes; alpha-locked
//        layers only accept writes over already-visible cells.

package buffer

// LayerMode controls which part of a cell the layer contributes during
// compositing.
type LayerMode uint8

const (
	// ModeNormal composites whole cells.
	ModeNormal LayerMode = iota
	// ModeChars contributes only characters, keeping attributes beneath.
	ModeChars
	// ModeAttributes contributes only attributes, keeping characters beneath.
	ModeAttributes
)

// LayerRole tags what a layer is used for by editing front ends.
type LayerRole uint8

const (
	RoleNormal LayerRole = iota
	RolePastePreview
	RolePasteImage
	RoleImage
)

func (r LayerRole) IsPaste() bool { return r == RolePastePreview || r == RolePasteImage }

// LayerProperties is the user-editable state of a layer.
type LayerProperties struct {
	Title                string
	IsVisible            bool
	IsLocked             bool
	IsPositionLocked     bool
	IsAlphaChannelLocked bool
	HasAlphaChannel      bool
	Mode                 LayerMode
	Offset               Position
}

// Sixel is a decoded sixel image anchored to a layer position.
type Sixel struct {
	Position        Position
	VerticalScale   int
	HorizontalScale int

	// Width and Height are in pixels; Data is RGBA, Width*Height*4 bytes.
	Width, Height int
	Data          []byte
}

// AsRectangle returns the cell rectangle the image covers for the given
// font cell size.
func (s *Sixel) AsRectangle(fontSize Size) Rectangle {
	w := (s.Width*max(1, s.HorizontalScale) + fontSize.Width - 1) / fontSize.Width
	h := (s.Height*max(1, s.VerticalScale) + fontSize.Height - 1) / fontSize.Height
	return Rectangle{Start: s.Position, Size: Size{Width: w, Height: h}}
}

// HyperLink is a clickable region. When URL is empty the link text is
// the cells it covers.
type HyperLink struct {
	URL      string
	Position Position
	Length   int
}

// Layer is one plane of the buffer. Layers stack bottom to top.
type Layer struct {
	Role         LayerRole
	Transparency uint8
	Properties   LayerProperties

	// DefaultFontPage is the page "default" cells are generated with,
	// needed for font mapping.
	DefaultFontPage uint8

	previewOffset *Position
	size          Size
	Lines         []Line
	Sixels        []Sixel
	Hyperlinks    []HyperLink
}

// NewLayer creates a visible layer of the given size.
func NewLayer(title string, size Size) *Layer {
	lines := make([]Line, size.Height)
	for i := range lines {
		lines[i] = NewLine(size.Width)
	}
	return &Layer{
		Properties: LayerProperties{Title: title, IsVisible: true},
		size:       size,
		Lines:      lines,
	}
}

func (l *Layer) Width() int  { return l.size.Width }
func (l *Layer) Height() int { return l.size.Height }
func (l *Layer) Size() Size  { return l.size }

func (l *Layer) SetWidth(width int)   { l.size.Width = width }
func (l *Layer) SetHeight(height int) { l.size.Height = height }
func (l *Layer) SetSize(size Size)    { l.size = size }

// Offset is the compositing offset, honoring a preview override.
func (l *Layer) Offset() Position {
	if l.previewOffset != nil {
		return *l.previewOffset
	}
	return l.Properties.Offset
}

func (l *Layer) BaseOffset() Position { return l.Properties.Offset }

func (l *Layer) SetOffset(pos Position) {
	if l.Properties.IsPositionLocked {
		return
	}
	l.previewOffset = nil
	l.Properties.Offset = pos
}

func (l *Layer) PreviewOffset() *Position { return l.previewOffset }

func (l *Layer) SetPreviewOffset(pos *Position) { l.previewOffset = pos }

func (l *Layer) Title() string         { return l.Properties.Title }
func (l *Layer) SetTitle(title string) { l.Properties.Title = title }

func (l *Layer) IsVisible() bool         { return l.Properties.IsVisible }
func (l *Layer) SetVisible(visible bool) { l.Properties.IsVisible = visible }

// Char returns the cell at pos, invisible outside the layer bounds.
func (l *Layer) Char(pos Position) AttributedChar {
	if pos.X < 0 || pos.Y < 0 || pos.X >= l.size.Width || pos.Y >= l.size.Height {
		return InvisibleChar().WithFontPage(l.DefaultFontPage)
	}
	if pos.Y < len(l.Lines) {
		line := &l.Lines[pos.Y]
		if pos.X < len(line.Chars) {
			return line.Chars[pos.X]
		}
	}
	return InvisibleChar().WithFontPage(l.DefaultFontPage)
}

// SetChar stores a cell, honoring bounds, locks and the alpha channel.
// Writing over a cell removes sixel images it overlaps on that row.
func (l *Layer) SetChar(pos Position, ch AttributedChar) {
	if pos.X < 0 || pos.Y < 0 || pos.X >= l.size.Width || pos.Y >= l.size.Height {
		return
	}
	if l.Properties.IsLocked || !l.Properties.IsVisible {
		return
	}
	for pos.Y >= len(l.Lines) {
		l.Lines = append(l.Lines, NewLine(l.size.Width))
	}
	if l.Properties.HasAlphaChannel && l.Properties.IsAlphaChannelLocked {
		if !l.Char(pos).IsVisible() {
			return
		}
	}
	l.Lines[pos.Y].SetChar(pos.X, ch)

	fontDims := Size{Width: 8, Height: 16}
	kept := l.Sixels[:0]
	for i := range l.Sixels {
		s := l.Sixels[i]
		if !s.AsRectangle(fontDims).IsInside(pos) || pos.Y != s.Position.Y {
			kept = append(kept, s)
		}
	}
	l.Sixels = kept
}

// SwapChar exchanges two cells.
func (l *Layer) SwapChar(pos1, pos2 Position) {
	tmp := l.Char(pos1)
	l.SetChar(pos1, l.Char(pos2))
	l.SetChar(pos2, tmp)
}

// Join stamps every visible cell of another layer onto this one.
func (l *Layer) Join(other *Layer) {
	for y := range other.Lines {
		line := &other.Lines[y]
		for x := range line.Chars {
			if ch := line.Chars[x]; ch.IsVisible() {
				l.SetChar(Position{X: x, Y: y}, ch)
			}
		}
	}
}

// Clear drops all content, sixels and hyperlinks.
func (l *Layer) Clear() {
	l.Lines = nil
	l.Sixels = nil
	l.Hyperlinks = nil
}

// LineCount is the number of rows up to the last one with content.
func (l *Layer) LineCount() int {
	for i := len(l.Lines) - 1; i >= 0; i-- {
		if !l.Lines[i].IsEffectiveEmpty() {
			return i + 1
		}
	}
	return 0
}

// LineLength is the visible length of one row.
func (l *Layer) LineLength(line int) int {
	if line < 0 || line >= len(l.Lines) {
		return 0
	}
	return l.Lines[line].Length()
}

// RemoveLine deletes a row. Out-of-range indices are ignored, as are
// writes to locked or hidden layers.
func (l *Layer) RemoveLine(index int) {
	if l.Properties.IsLocked || !l.Properties.IsVisible {
		return
	}
	if index < 0 || index >= len(l.Lines) {
		return
	}
	l.Lines = append(l.Lines[:index], l.Lines[index+1:]...)
}

// InsertLine inserts a row, padding with blank rows when the index is
// past the current end.
func (l *Layer) InsertLine(index int, line Line) {
	if l.Properties.IsLocked || !l.Properties.IsVisible {
		return
	}
	if index < 0 {
		return
	}
	for index > len(l.Lines) {
		l.Lines = append(l.Lines, NewLine(l.size.Width))
	}
	l.Lines = append(l.Lines, Line{})
	copy(l.Lines[index+1:], l.Lines[index:])
	l.Lines[index] = line
}

// AddHyperlink anchors a clickable region to the layer.
func (l *Layer) AddHyperlink(h HyperLink) { l.Hyperlinks = append(l.Hyperlinks, h) }

// Clone returns a deep copy of the layer.
func (l *Layer) Clone() *Layer {
	c := *l
	if l.previewOffset != nil {
		offset := *l.previewOffset
		c.previewOffset = &offset
	}
	c.Lines = make([]Line, len(l.Lines))
	for i := range l.Lines {
		c.Lines[i] = Line{Chars: append([]AttributedChar(nil), l.Lines[i].Chars...)}
	}
	c.Sixels = make([]Sixel, len(l.Sixels))
	for i := range l.Sixels {
		s := l.Sixels[i]
		s.Data = append([]byte(nil), s.Data...)
		c.Sixels[i] = s
	}
	c.Hyperlinks = append([]HyperLink(nil), l.Hyperlinks...)
	return &c
}
