// Copyright © 2026 Icebox contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: screen/textscreen.go
// Summary: Cell-grid screen over a TextBuffer with terminal scrolling
//          and a capped scrollback ring.
// Usage: The ANSI/ASCII/PETSCII sink path runs against a TextScreen;
//        graphics protocols are rejected here and need a PaletteScreen.
// Notes: Terminal-mode scrolling evicts the top row into the ring
//        before the layer shifts; file loads grow the buffer instead.

package screen

import (
	"github.com/icebox-art/icebox/buffer"
	"github.com/icebox-art/icebox/font"
	"github.com/icebox-art/icebox/palette"
	"github.com/icebox-art/icebox/parser"
)

// DefaultScrollbackLines caps the scrollback ring until a consumer
// sets its own size.
const DefaultScrollbackLines = 1000

// TextScreen is the standard character-cell screen.
type TextScreen struct {
	buf          *buffer.TextBuffer
	caret        Caret
	ts           *TerminalState
	currentLayer int

	mouseFields   []MouseField
	savedCaret    SavedCaretState
	savedCaretPos buffer.Position

	scrollback     []buffer.Line
	scrollbackCap  int
	scrollbackHead int
	scrollbackLen  int
}

// NewTextScreen returns a terminal-mode screen of the given size.
func NewTextScreen(size buffer.Size) *TextScreen {
	ts := NewTerminalState(size)
	ts.IsTerminalBuffer = true
	return &TextScreen{
		buf:           buffer.New(size),
		caret:         NewCaret(),
		ts:            ts,
		scrollbackCap: DefaultScrollbackLines,
	}
}

// FromBuffer wraps a loaded buffer (file-load mode: no terminal
// scrolling, the buffer grows).
func FromBuffer(buf *buffer.TextBuffer) *TextScreen {
	return &TextScreen{
		buf:           buf,
		caret:         NewCaret(),
		ts:            NewTerminalState(buf.Size()),
		scrollbackCap: DefaultScrollbackLines,
	}
}

// Buffer exposes the underlying buffer for format codecs and editors.
func (s *TextScreen) Buffer() *buffer.TextBuffer { return s.buf }

func (s *TextScreen) layer() *buffer.Layer { return s.buf.Layers[s.currentLayer] }

// Screen interface.

func (s *TextScreen) Size() buffer.Size { return s.buf.Size() }
func (s *TextScreen) Width() int        { return s.buf.Width() }
func (s *TextScreen) Height() int       { return s.buf.Height() }
func (s *TextScreen) LineCount() int    { return s.buf.LineCount() }

func (s *TextScreen) LineLength(line int) int { return s.buf.LineLength(line) }

func (s *TextScreen) CharAt(pos buffer.Position) buffer.AttributedChar {
	return s.buf.CharAt(pos)
}

func (s *TextScreen) Graphics() GraphicsType { return GraphicsType{Kind: GraphicsText} }

func (s *TextScreen) Resolution() buffer.Size {
	dims := s.FontDimensions()
	return buffer.Size{
		Width:  s.ts.Width() * dims.Width,
		Height: s.ts.Height() * dims.Height,
	}
}

func (s *TextScreen) FontDimensions() buffer.Size {
	dims := s.buf.FontDimensions()
	if s.buf.UseLetterSpacing() && dims.Width == 8 {
		return buffer.Size{Width: 9, Height: dims.Height}
	}
	return dims
}

func (s *TextScreen) ScanLines() bool { return false }

func (s *TextScreen) Palette() *palette.Palette { return s.buf.Palette }
func (s *TextScreen) IceMode() buffer.IceMode   { return s.buf.IceMode }

func (s *TextScreen) Font(page uint8) *font.BitFont { return s.buf.Font(page) }
func (s *TextScreen) FontCount() int                { return s.buf.FontCount() }

func (s *TextScreen) Caret() *Caret                  { return &s.caret }
func (s *TextScreen) TerminalState() *TerminalState { return s.ts }

func (s *TextScreen) Hyperlinks() []buffer.HyperLink { return s.layer().Hyperlinks }
func (s *TextScreen) MouseFields() []MouseField      { return s.mouseFields }

func (s *TextScreen) Version() uint64 { return s.buf.Version() }

func (s *TextScreen) DefaultForeground() uint32 { return 7 }
func (s *TextScreen) MaxBaseColors() uint32     { return ^uint32(0) }

func (s *TextScreen) Raster() []uint8 { return nil }

// EditableScreen interface.

func (s *TextScreen) FirstVisibleLine() int {
	if s.ts.IsTerminalBuffer {
		if n := s.buf.LineCount() - s.ts.Height(); n > 0 {
			return n
		}
	}
	return 0
}

func (s *TextScreen) LastVisibleLine() int {
	return s.FirstVisibleLine() + s.ts.Height() - 1
}

func (s *TextScreen) FirstEditableLine() int {
	first := s.FirstVisibleLine()
	if top, _, ok := s.ts.MarginsTopBottom(); ok {
		return first + top
	}
	return first
}

func (s *TextScreen) LastEditableLine() int {
	first := s.FirstVisibleLine()
	if _, bottom, ok := s.ts.MarginsTopBottom(); ok {
		return min(first+bottom, first+s.ts.Height()-1)
	}
	return first + s.ts.Height() - 1
}

func (s *TextScreen) FirstEditableColumn() int {
	if left, _, ok := s.ts.MarginsLeftRight(); ok {
		return left
	}
	return 0
}

func (s *TextScreen) LastEditableColumn() int {
	if _, right, ok := s.ts.MarginsLeftRight(); ok {
		return min(right, s.Width()-1)
	}
	return s.Width() - 1
}

func (s *TextScreen) SetChar(pos buffer.Position, ch buffer.AttributedChar) {
	s.layer().SetChar(pos, ch)
	s.buf.MarkLineDirty(pos.Y)
}

func (s *TextScreen) SetSize(size buffer.Size) {
	s.buf.SetSize(size)
	s.buf.MarkDirty()
}

func (s *TextScreen) SetWidth(width int) {
	width = min(width, maxBufferWidth)
	s.buf.SetWidth(width)
	for _, layer := range s.buf.Layers {
		layer.SetWidth(width)
	}
}

func (s *TextScreen) SetHeight(height int) {
	height = min(height, maxBufferHeight)
	s.buf.SetHeight(height)
	for _, layer := range s.buf.Layers {
		layer.SetHeight(height)
	}
}

// ScrollUp shifts the editable region one row up. In terminal mode
// without margins the evicted top row lands in the scrollback ring.
func (s *TextScreen) ScrollUp() {
	_, _, hasMargins := s.ts.MarginsTopBottom()
	if !hasMargins && s.ts.IsTerminalBuffer {
		s.evictToScrollback(s.FirstEditableLine())
	}

	startLine := s.FirstEditableLine()
	endLine := s.LastEditableLine()
	startCol := s.FirstEditableColumn()
	endCol := s.LastEditableColumn()

	layer := s.layer()
	for x := startCol; x <= endCol; x++ {
		for y := startLine; y < endLine; y++ {
			layer.SetChar(buffer.Pos(x, y), layer.Char(buffer.Pos(x, y+1)))
		}
		layer.SetChar(buffer.Pos(x, endLine), buffer.NewChar(' ', buffer.DefaultAttribute()))
	}
	s.buf.MarkDirty()

	s.shiftSixelsVertical(startLine, endLine, -1)
}

// ScrollDown shifts the editable region one row down, losing the
// bottom row.
func (s *TextScreen) ScrollDown() {
	startLine := s.FirstEditableLine()
	endLine := s.LastEditableLine()
	startCol := s.FirstEditableColumn()
	endCol := s.LastEditableColumn()

	layer := s.layer()
	for x := startCol; x <= endCol; x++ {
		for y := endLine; y > startLine; y-- {
			layer.SetChar(buffer.Pos(x, y), layer.Char(buffer.Pos(x, y-1)))
		}
		layer.SetChar(buffer.Pos(x, startLine), buffer.NewChar(' ', buffer.DefaultAttribute()))
	}
	s.buf.MarkDirty()

	s.shiftSixelsVertical(startLine, endLine, 1)
}

// ScrollLeft shifts the editable band one column left.
func (s *TextScreen) ScrollLeft() {
	startLine := s.FirstEditableLine()
	endLine := s.LastEditableLine()
	startCol := s.FirstEditableColumn()
	endCol := s.LastEditableColumn()

	layer := s.layer()
	for y := startLine; y <= endLine && y < len(layer.Lines); y++ {
		line := &layer.Lines[y]
		if len(line.Chars) <= startCol {
			continue
		}
		line.Chars = append(line.Chars[:startCol], line.Chars[startCol+1:]...)
		line.SetChar(endCol, buffer.NewChar(' ', buffer.DefaultAttribute()))
	}
	s.buf.MarkDirty()

	s.shiftSixelsHorizontal(startLine, endLine, startCol, endCol, -1)
}

// ScrollRight shifts the editable band one column right.
func (s *TextScreen) ScrollRight() {
	startLine := s.FirstEditableLine()
	endLine := s.LastEditableLine()
	startCol := s.FirstEditableColumn()
	endCol := s.LastEditableColumn()

	layer := s.layer()
	for y := startLine; y <= endLine && y < len(layer.Lines); y++ {
		line := &layer.Lines[y]
		if len(line.Chars) <= startCol {
			continue
		}
		line.Chars = append(line.Chars, buffer.InvisibleChar())
		copy(line.Chars[startCol+1:], line.Chars[startCol:])
		line.Chars[startCol] = buffer.NewChar(' ', buffer.DefaultAttribute())
		if endCol+1 < len(line.Chars) {
			line.Chars = append(line.Chars[:endCol+1], line.Chars[endCol+2:]...)
		}
	}
	s.buf.MarkDirty()

	s.shiftSixelsHorizontal(startLine, endLine, startCol, endCol, 1)
}

func (s *TextScreen) shiftSixelsVertical(startLine, endLine, delta int) {
	fontDims := s.buf.FontDimensions()
	layer := s.layer()
	kept := layer.Sixels[:0]
	for i := range layer.Sixels {
		sixel := layer.Sixels[i]
		rect := sixel.AsRectangle(fontDims)
		top := rect.Start.Y
		bottom := top + rect.Size.Height - 1
		switch {
		case delta < 0 && top == startLine:
			// Top row is overwritten; drop the image.
			continue
		case delta < 0 && top > startLine && top <= endLine:
			sixel.Position.Y--
		case delta > 0 && bottom == endLine:
			continue
		case delta > 0 && top >= startLine && bottom < endLine:
			sixel.Position.Y++
		}
		kept = append(kept, sixel)
	}
	layer.Sixels = kept
}

func (s *TextScreen) shiftSixelsHorizontal(startLine, endLine, startCol, endCol, delta int) {
	fontDims := s.buf.FontDimensions()
	layer := s.layer()
	kept := layer.Sixels[:0]
	for i := range layer.Sixels {
		sixel := layer.Sixels[i]
		rect := sixel.AsRectangle(fontDims)
		if rect.Start.Y < startLine || rect.Start.Y > endLine {
			kept = append(kept, sixel)
			continue
		}
		left := rect.Start.X
		right := left + rect.Size.Width - 1
		switch {
		case delta < 0 && left == startCol:
			continue
		case delta < 0 && left > startCol && right <= endCol:
			sixel.Position.X--
		case delta > 0 && right == endCol:
			continue
		case delta > 0 && left >= startCol && right < endCol:
			sixel.Position.X++
		}
		kept = append(kept, sixel)
	}
	layer.Sixels = kept
}

// ClearScreen pushes the visible rows into scrollback, clears the
// layer and homes the caret.
func (s *TextScreen) ClearScreen() {
	if s.ts.IsTerminalBuffer {
		first := s.FirstVisibleLine()
		for y := first; y <= s.LastVisibleLine(); y++ {
			s.evictToScrollback(y)
		}
	}
	s.caret.SetPosition(buffer.Position{})
	s.layer().Clear()
	if s.ts.IsTerminalBuffer {
		s.buf.SetSize(s.ts.Size())
	}
	s.buf.MarkDirty()
}

func (s *TextScreen) ClearLine() {
	y := s.caret.Position.Y
	if y >= 0 && y < len(s.layer().Lines) {
		s.layer().Lines[y].Chars = s.layer().Lines[y].Chars[:0]
		s.buf.MarkLineDirty(y)
	}
}

func (s *TextScreen) ClearLineEnd() {
	pos := s.caret.Position
	if pos.Y >= 0 && pos.Y < len(s.layer().Lines) {
		line := &s.layer().Lines[pos.Y]
		if pos.X >= 0 && pos.X < len(line.Chars) {
			line.Chars = line.Chars[:pos.X]
		}
		s.buf.MarkLineDirty(pos.Y)
	}
}

func (s *TextScreen) ClearLineStart() {
	pos := s.caret.Position
	if pos.Y >= 0 && pos.Y < len(s.layer().Lines) {
		line := &s.layer().Lines[pos.Y]
		for x := 0; x < pos.X && x < len(line.Chars); x++ {
			line.Chars[x] = buffer.NewChar(' ', buffer.DefaultAttribute())
		}
		s.buf.MarkLineDirty(pos.Y)
	}
}

// InsertTerminalLine implements IL: lines scroll down within the
// region, the bottom line is lost.
func (s *TextScreen) InsertTerminalLine(line int) {
	top := s.FirstEditableLine()
	bottom := s.LastEditableLine()
	startCol := s.FirstEditableColumn()
	endCol := s.LastEditableColumn()

	if _, _, ok := s.ts.MarginsTopBottom(); ok {
		if line < top || line > bottom {
			return
		}
		layer := s.layer()
		for x := startCol; x <= endCol; x++ {
			for y := bottom - 1; y >= line; y-- {
				layer.SetChar(buffer.Pos(x, y+1), layer.Char(buffer.Pos(x, y)))
			}
			layer.SetChar(buffer.Pos(x, line), buffer.NewChar(' ', buffer.DefaultAttribute()))
		}
	} else {
		s.layer().InsertLine(line, buffer.NewLine(s.Width()))
	}
	s.buf.MarkDirty()
}

// RemoveTerminalLine implements DL: lines scroll up within the region,
// a blank line appears at the bottom.
func (s *TextScreen) RemoveTerminalLine(line int) {
	top := s.FirstEditableLine()
	bottom := s.LastEditableLine()
	startCol := s.FirstEditableColumn()
	endCol := s.LastEditableColumn()

	if _, _, ok := s.ts.MarginsTopBottom(); ok {
		if line < top || line > bottom {
			return
		}
		layer := s.layer()
		for x := startCol; x <= endCol; x++ {
			for y := line; y < bottom; y++ {
				layer.SetChar(buffer.Pos(x, y), layer.Char(buffer.Pos(x, y+1)))
			}
			layer.SetChar(buffer.Pos(x, bottom), buffer.NewChar(' ', buffer.DefaultAttribute()))
		}
	} else {
		if line >= s.buf.LineCount() {
			return
		}
		s.layer().RemoveLine(line)
	}
	s.buf.MarkDirty()
}

func (s *TextScreen) SetFont(page uint8, f *font.BitFont)  { s.buf.SetFont(page, f) }
func (s *TextScreen) RemoveFont(page uint8) *font.BitFont { return s.buf.RemoveFont(page) }

func (s *TextScreen) AddSixel(pos buffer.Position, sixel buffer.Sixel) {
	sixel.Position = pos
	fontDims := s.buf.FontDimensions()
	layer := s.buf.Layers[0]

	// Drop older images fully shadowed by the new one.
	newRect := sixel.AsRectangle(fontDims)
	kept := layer.Sixels[:0]
	for _, old := range layer.Sixels {
		oldRect := old.AsRectangle(fontDims)
		if containsRect(newRect, oldRect) {
			continue
		}
		kept = append(kept, old)
	}
	layer.Sixels = append(kept, sixel)
	s.buf.MarkDirty()
}

func (s *TextScreen) AddHyperlink(link buffer.HyperLink) { s.layer().AddHyperlink(link) }

func (s *TextScreen) ClearMouseFields()           { s.mouseFields = s.mouseFields[:0] }
func (s *TextScreen) AddMouseField(f MouseField)  { s.mouseFields = append(s.mouseFields, f) }
func (s *TextScreen) SetIceMode(m buffer.IceMode) { s.buf.IceMode = m }

func (s *TextScreen) ResetTerminal() {
	s.ts.Reset()
	s.caret.Reset()
	s.buf.MarkDirty()
}

func (s *TextScreen) MarkDirty() { s.buf.MarkDirty() }

func (s *TextScreen) SavedCaret() *SavedCaretState    { return &s.savedCaret }
func (s *TextScreen) SavedCaretPos() *buffer.Position { return &s.savedCaretPos }

func (s *TextScreen) HandleRip(parser.RipCommand)       {}
func (s *TextScreen) HandleIgs(parser.IgsCommand)       {}
func (s *TextScreen) HandleSkypix(parser.SkypixCommand) {}

// Scrollback ring.

// SetScrollbackSize caps the ring; zero disables scrollback.
func (s *TextScreen) SetScrollbackSize(lines int) {
	s.scrollbackCap = lines
	s.trimScrollback()
}

func (s *TextScreen) ClearScrollback() {
	s.scrollback = s.scrollback[:0]
	s.scrollbackHead = 0
	s.scrollbackLen = 0
}

// ScrollbackLen reports the number of evicted rows currently held.
func (s *TextScreen) ScrollbackLen() int { return s.scrollbackLen }

// ScrollbackLine returns the evicted row at index, 0 being the oldest.
func (s *TextScreen) ScrollbackLine(index int) buffer.Line {
	if index < 0 || index >= s.scrollbackLen {
		return buffer.Line{}
	}
	return s.scrollback[(s.scrollbackHead+index)%len(s.scrollback)]
}

func (s *TextScreen) evictToScrollback(row int) {
	if s.scrollbackCap <= 0 {
		return
	}
	layer := s.layer()
	var line buffer.Line
	if row >= 0 && row < len(layer.Lines) {
		src := layer.Lines[row]
		line.Chars = append([]buffer.AttributedChar(nil), src.Chars...)
	}
	if len(s.scrollback) < s.scrollbackCap {
		s.scrollback = append(s.scrollback, line)
		s.scrollbackLen = len(s.scrollback)
		return
	}
	// Ring is full: overwrite the oldest entry.
	s.scrollback[s.scrollbackHead] = line
	s.scrollbackHead = (s.scrollbackHead + 1) % len(s.scrollback)
}

func (s *TextScreen) trimScrollback() {
	if s.scrollbackCap <= 0 {
		s.ClearScrollback()
		return
	}
	if len(s.scrollback) <= s.scrollbackCap {
		return
	}
	trimmed := make([]buffer.Line, 0, s.scrollbackCap)
	start := s.scrollbackLen - s.scrollbackCap
	for i := start; i < s.scrollbackLen; i++ {
		trimmed = append(trimmed, s.ScrollbackLine(i))
	}
	s.scrollback = trimmed
	s.scrollbackHead = 0
	s.scrollbackLen = len(trimmed)
}

func containsRect(outer, inner buffer.Rectangle) bool {
	return outer.Start.X <= inner.Start.X && outer.Start.Y <= inner.Start.Y &&
		inner.Start.X+inner.Size.Width <= outer.Start.X+outer.Size.Width &&
		inner.Start.Y+inner.Size.Height <= outer.Start.Y+outer.Size.Height
}
