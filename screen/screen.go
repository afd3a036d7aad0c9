// Copyright © 2026 Icebox contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: screen/screen.go
// Summary: Screen and EditableScreen contracts plus the caret-motion
//          and print helpers shared by all screen implementations.
// Usage: TextScreen and PaletteScreen implement EditableScreen; the
//        parser sink drives them through these interfaces only.
// Notes: Motion helpers are free functions over EditableScreen so both
//        screen kinds share one wrap/scroll/margin rule set.

package screen

import (
	"github.com/icebox-art/icebox/buffer"
	"github.com/icebox-art/icebox/font"
	"github.com/icebox-art/icebox/palette"
	"github.com/icebox-art/icebox/parser"
)

// TerminalResolution is the Atari ST video mode an IGS session runs in.
type TerminalResolution uint8

const (
	// ResolutionLow is 320x200 in 16 colors.
	ResolutionLow TerminalResolution = iota
	// ResolutionMedium is 640x200 in 4 colors.
	ResolutionMedium
	// ResolutionHigh is 640x400 monochrome.
	ResolutionHigh
)

// GraphicsKind discriminates GraphicsType.
type GraphicsKind uint8

const (
	GraphicsText GraphicsKind = iota
	GraphicsRip
	GraphicsIgs
	GraphicsSkypix
)

// GraphicsType identifies what a screen currently displays.
type GraphicsType struct {
	Kind GraphicsKind
	// Resolution is only meaningful for GraphicsIgs.
	Resolution TerminalResolution
}

// ScanLines reports whether the mode is displayed with doubled scan
// lines (only ST medium resolution is).
func (g GraphicsType) ScanLines() bool {
	return g.Kind == GraphicsIgs && g.Resolution == ResolutionMedium
}

// DefaultForeground is the pen text is drawn with after a reset.
func (g GraphicsType) DefaultForeground() uint32 {
	if g.Kind == GraphicsIgs {
		switch g.Resolution {
		case ResolutionMedium:
			return 3
		case ResolutionHigh:
			return 1
		default:
			return 15
		}
	}
	return 7
}

// MouseField is a clickable region registered by RIP mouse fields or
// IGS zones. Host commands are sent when the field is clicked.
type MouseField struct {
	Rect        buffer.Rectangle
	HostCommand string
	Style       int
}

// Screen is the read side: everything a renderer or inspector needs.
type Screen interface {
	Size() buffer.Size
	Width() int
	Height() int
	LineCount() int
	LineLength(line int) int
	CharAt(pos buffer.Position) buffer.AttributedChar

	Graphics() GraphicsType
	// Resolution is the displayed size in pixels.
	Resolution() buffer.Size
	FontDimensions() buffer.Size
	ScanLines() bool

	Palette() *palette.Palette
	IceMode() buffer.IceMode
	Font(page uint8) *font.BitFont
	FontCount() int

	Caret() *Caret
	TerminalState() *TerminalState
	Hyperlinks() []buffer.HyperLink
	MouseFields() []MouseField

	// Version increments on every visible change; it is the only cache
	// invalidation signal.
	Version() uint64

	DefaultForeground() uint32
	MaxBaseColors() uint32

	RenderToRGBA(opts RenderOptions) (buffer.Size, []byte)
	RenderRegionToRGBA(region buffer.Rectangle, opts RenderOptions) (buffer.Size, []byte)

	// Raster exposes the indexed pixel store of raster screens; text
	// screens return nil.
	Raster() []uint8
}

// EditableScreen is the write side driven by ScreenSink. The motion
// helpers below build the higher-level cursor behavior on top of these
// primitives.
type EditableScreen interface {
	Screen

	FirstVisibleLine() int
	LastVisibleLine() int
	FirstEditableLine() int
	LastEditableLine() int
	FirstEditableColumn() int
	LastEditableColumn() int

	SetChar(pos buffer.Position, ch buffer.AttributedChar)

	SetSize(size buffer.Size)
	SetWidth(width int)
	SetHeight(height int)

	ScrollUp()
	ScrollDown()
	ScrollLeft()
	ScrollRight()

	ClearScreen()
	ClearLine()
	ClearLineEnd()
	ClearLineStart()

	InsertTerminalLine(line int)
	RemoveTerminalLine(line int)

	SetFont(page uint8, f *font.BitFont)
	RemoveFont(page uint8) *font.BitFont

	AddSixel(pos buffer.Position, sixel buffer.Sixel)
	AddHyperlink(link buffer.HyperLink)

	ClearMouseFields()
	AddMouseField(field MouseField)

	SetIceMode(mode buffer.IceMode)
	ResetTerminal()
	MarkDirty()

	// SavedCaret is the DECSC snapshot; SavedCaretPos the CSI s one.
	SavedCaret() *SavedCaretState
	SavedCaretPos() *buffer.Position

	HandleRip(cmd parser.RipCommand)
	HandleIgs(cmd parser.IgsCommand)
	HandleSkypix(cmd parser.SkypixCommand)
}

// UpperLeftPosition is the home position under the current origin mode.
func UpperLeftPosition(s EditableScreen) buffer.Position {
	if s.TerminalState().OriginMode == OriginWithinMargins {
		return buffer.Pos(0, s.FirstEditableLine())
	}
	return buffer.Pos(0, s.FirstVisibleLine())
}

// CaretDefaultColors resets the caret attribute keeping the font page.
func CaretDefaultColors(s EditableScreen) {
	caret := s.Caret()
	page := caret.FontPage()
	attr := buffer.NewAttribute(uint8(s.DefaultForeground()), 0)
	attr.FontPage = page
	caret.Attribute = attr
}

// SgrReset implements SGR 0: default colors, bold off, inverse off.
func SgrReset(s EditableScreen) {
	CaretDefaultColors(s)
	s.Caret().Attribute.ResetFlags()
	s.TerminalState().InverseVideo = false
}

// PrintChar writes ch at the caret and advances it, honoring insert
// mode, right margins and auto-wrap.
func PrintChar(s EditableScreen, ch buffer.AttributedChar) {
	if s.Caret().InsertMode {
		InsertColumn(s)
	}
	ts := s.TerminalState()
	pos := s.Caret().Position

	if pos.Y >= maxBufferHeight || pos.X >= maxBufferWidth {
		return
	}
	if !ts.IsTerminalBuffer && pos.Y+1 > s.Height() {
		s.SetHeight(pos.Y + 1)
	}

	s.SetChar(pos, ch)
	pos.X++

	// Left/right margins only constrain printing inside the vertical
	// margins, so status lines beyond them stay reachable.
	inMargins := s.FirstEditableLine() <= pos.Y && pos.Y <= s.LastEditableLine()
	lastCol := s.Width() - 1
	if inMargins {
		lastCol = s.LastEditableColumn()
	}

	if pos.X > lastCol {
		pos.X = lastCol
		if ts.AutoWrap {
			LineFeed(s)
			return
		}
	}
	s.Caret().SetPosition(pos)
}

// LineFeed moves the caret one row down, scrolling at the region
// bottom. Live buffers scroll; file loads grow instead.
func LineFeed(s EditableScreen) {
	ts := s.TerminalState()
	pos := s.Caret().Position
	inMargin := ts.InMargin(pos)
	inScrollRegion := ts.InScrollRegion(pos)

	pos.X = s.FirstEditableColumn()
	pos.Y++

	if ts.IsTerminalBuffer {
		bottom := s.Height() - 1
		if inScrollRegion {
			bottom = s.LastEditableLine()
		}
		for pos.Y > bottom {
			s.ScrollUp()
			pos.Y--
		}
	} else {
		if pos.Y+1 > s.Height() {
			s.SetHeight(pos.Y + 1)
		}
		s.Caret().SetPosition(pos)
		return
	}
	s.Caret().SetPosition(pos)
	limitCaretPos(s, inMargin)
}

// CarriageReturn moves the caret to the line start.
func CarriageReturn(s EditableScreen) {
	inMargin := s.TerminalState().InMargin(s.Caret().Position)
	s.Caret().Position.X = 0
	limitCaretPos(s, inMargin)
}

// FormFeed resets the terminal and clears the screen.
func FormFeed(s EditableScreen) {
	s.ResetTerminal()
	s.ClearScreen()
}

// Backspace moves the caret left without erasing.
func Backspace(s EditableScreen) {
	minX := 0
	if s.TerminalState().InMargin(s.Caret().Position) {
		minX = s.FirstEditableColumn()
	}
	if x := s.Caret().Position.X - 1; x >= minX {
		s.Caret().Position.X = x
	} else {
		s.Caret().Position.X = minX
	}
}

// Home moves the caret to the origin-mode upper left.
func Home(s EditableScreen) {
	s.Caret().SetPosition(UpperLeftPosition(s))
}

// EndOfLine moves the caret to the last column.
func EndOfLine(s EditableScreen) {
	s.Caret().Position.X = s.Width() - 1
}

// DeleteChar shifts the rest of the line left over the caret cell.
func DeleteChar(s EditableScreen) {
	pos := s.Caret().Position
	lineLen := s.LastEditableColumn()
	if pos.X < 0 || pos.Y < 0 || pos.X >= lineLen {
		return
	}
	for x := pos.X; x < lineLen-1; x++ {
		s.SetChar(buffer.Pos(x, pos.Y), s.CharAt(buffer.Pos(x+1, pos.Y)))
	}
	s.SetChar(buffer.Pos(lineLen-1, pos.Y), buffer.NewChar(' ', s.Caret().Attribute))
}

// InsertColumn shifts the line right from the caret, dropping the last
// cell.
func InsertColumn(s EditableScreen) {
	pos := s.Caret().Position
	if pos.X < 0 || pos.Y < 0 || pos.X >= s.Width() {
		return
	}
	blank := buffer.NewChar(' ', s.Caret().Attribute)
	lineLen := s.LineLength(pos.Y)
	if lineLen < s.Width() {
		s.SetChar(buffer.Pos(s.Width()-1, pos.Y), blank)
	}
	last := s.Width() - 1
	if m := lineLen; m > pos.X && m < last {
		last = m
	}
	for x := last; x > pos.X; x-- {
		s.SetChar(buffer.Pos(x, pos.Y), s.CharAt(buffer.Pos(x-1, pos.Y)))
	}
	s.SetChar(pos, blank)
}

// MoveLeft moves the caret num cells left, wrapping to the previous
// line end when autoWrap is requested and the mode allows it.
func MoveLeft(s EditableScreen, num int, scroll, autoWrap bool) {
	ts := s.TerminalState()
	inMargin := ts.InMargin(s.Caret().Position)
	inScrollRegion := ts.InScrollRegion(s.Caret().Position)

	if autoWrap && ts.AutoWrap && s.Caret().Position.X == 0 {
		originLine := s.FirstVisibleLine()
		if ts.OriginMode == OriginWithinMargins {
			originLine = s.FirstEditableLine()
		}
		if s.Caret().Position.Y <= originLine {
			return
		}
		s.Caret().Position.Y--
		s.Caret().Position.X = max(s.Width()-1, 0)
	} else {
		s.Caret().Position.X = max(s.Caret().Position.X-num, 0)
	}
	if scroll {
		checkScrollingOnCaretDown(s, false, inScrollRegion)
	}
	limitCaretPos(s, inMargin)
}

// MoveRight moves the caret num cells right, wrapping to the next line
// when autoWrap is requested and the mode allows it.
func MoveRight(s EditableScreen, num int, scroll, autoWrap bool) {
	ts := s.TerminalState()
	lastCol := max(s.Width()-1, 0)
	inMargin := ts.InMargin(s.Caret().Position)
	inScrollRegion := ts.InScrollRegion(s.Caret().Position)

	if autoWrap && ts.AutoWrap && s.Caret().Position.X >= lastCol {
		s.Caret().Position.X = lastCol
		LineFeed(s)
		return
	}
	s.Caret().Position.X += num
	if scroll {
		checkScrollingOnCaretDown(s, false, inScrollRegion)
	}
	limitCaretPos(s, inMargin)
}

// MoveUp moves the caret num cells up, scrolling down at the region
// top when scroll is set.
func MoveUp(s EditableScreen, num int, scroll bool) {
	ts := s.TerminalState()
	inMargin := ts.InMargin(s.Caret().Position)
	inScrollRegion := ts.InScrollRegion(s.Caret().Position)
	s.Caret().Position.Y = max(s.Caret().Position.Y-num, 0)
	if scroll {
		checkScrollingOnCaretUp(s, false, inScrollRegion)
	}
	limitCaretPos(s, inMargin)
}

// MoveDown moves the caret num cells down, scrolling up at the region
// bottom when scroll is set.
func MoveDown(s EditableScreen, num int, scroll bool) {
	ts := s.TerminalState()
	inMargin := ts.InMargin(s.Caret().Position)
	inScrollRegion := ts.InScrollRegion(s.Caret().Position)
	s.Caret().Position.Y += num
	if scroll {
		checkScrollingOnCaretDown(s, false, inScrollRegion)
	}
	limitCaretPos(s, inMargin)
}

// Index moves the caret down one row, always scrolling at the bottom.
func Index(s EditableScreen) {
	ts := s.TerminalState()
	inMargin := ts.InMargin(s.Caret().Position)
	inScrollRegion := ts.InScrollRegion(s.Caret().Position)
	s.Caret().Position.Y++
	checkScrollingOnCaretDown(s, true, inScrollRegion)
	limitCaretPos(s, inMargin)
}

// ReverseIndex moves the caret up one row, always scrolling at the top.
func ReverseIndex(s EditableScreen) {
	ts := s.TerminalState()
	inMargin := ts.InMargin(s.Caret().Position)
	inScrollRegion := ts.InScrollRegion(s.Caret().Position)
	s.Caret().Position.Y--
	checkScrollingOnCaretUp(s, true, inScrollRegion)
	limitCaretPos(s, inMargin)
}

// NextLine moves the caret to column 0 of the next row.
func NextLine(s EditableScreen, scroll bool) {
	ts := s.TerminalState()
	inMargin := ts.InMargin(s.Caret().Position)
	inScrollRegion := ts.InScrollRegion(s.Caret().Position)
	s.Caret().Position.Y++
	s.Caret().Position.X = 0
	if scroll {
		checkScrollingOnCaretDown(s, true, inScrollRegion)
	}
	limitCaretPos(s, inMargin)
}

// TabForward moves the caret to the next tab stop.
func TabForward(s EditableScreen) {
	pos := s.Caret().Position
	x := s.TerminalState().NextTabStop(pos.X)
	pos.X = min(x, s.Width()-1)
	s.Caret().SetPosition(pos)
}

// TabBackward moves the caret to the previous tab stop.
func TabBackward(s EditableScreen) {
	pos := s.Caret().Position
	pos.X = max(s.TerminalState().PrevTabStop(pos.X), 0)
	s.Caret().SetPosition(pos)
}

// ClearBufferDown erases from the caret to the screen end with the
// caret attribute.
func ClearBufferDown(s EditableScreen) {
	pos := s.Caret().Position
	ch := buffer.NewChar(' ', s.Caret().Attribute)
	for y := pos.Y; y <= s.LastVisibleLine(); y++ {
		for x := 0; x < s.Width(); x++ {
			s.SetChar(buffer.Pos(x, y), ch)
		}
	}
}

// ClearBufferUp erases from the screen start through the caret.
func ClearBufferUp(s EditableScreen) {
	pos := s.Caret().Position
	ch := buffer.NewChar(' ', s.Caret().Attribute)
	for y := s.FirstVisibleLine(); y < pos.Y; y++ {
		for x := 0; x < s.Width(); x++ {
			s.SetChar(buffer.Pos(x, y), ch)
		}
	}
	for x := 0; x <= pos.X; x++ {
		s.SetChar(buffer.Pos(x, pos.Y), ch)
	}
}

func checkScrollingOnCaretUp(s EditableScreen, force, inScrollRegion bool) {
	if !s.TerminalState().NeedsScrolling() && !force {
		return
	}
	first := 0
	if inScrollRegion {
		first = s.FirstEditableLine()
	}
	for s.Caret().Position.Y < first {
		s.ScrollDown()
		s.Caret().Position.Y++
	}
}

func checkScrollingOnCaretDown(s EditableScreen, force, inScrollRegion bool) {
	last := s.Height() - 1
	if inScrollRegion {
		last = s.LastEditableLine()
	}
	if (s.TerminalState().NeedsScrolling() || force) && s.Caret().Position.Y > last {
		s.ScrollUp()
		s.Caret().Position.Y--
	}
}

func limitCaretPos(s EditableScreen, wasInMargin bool) {
	ts := s.TerminalState()
	pos := s.Caret().Position
	if !wasInMargin || ts.OriginMode == OriginUpperLeft {
		if ts.IsTerminalBuffer {
			first := s.FirstVisibleLine()
			pos.Y = clamp(pos.Y, first, first+s.Height()-1)
		}
		pos.X = clamp(pos.X, 0, max(s.Width()-1, 0))
	} else {
		pos.Y = clamp(pos.Y, s.FirstEditableLine(), s.LastEditableLine())
		left := max(s.FirstEditableColumn(), 0)
		right := max(min(s.LastEditableColumn(), s.Width()-1), left)
		pos.X = clamp(pos.X, left, right)
	}
	s.Caret().SetPosition(pos)
}

const (
	maxBufferWidth  = 4096
	maxBufferHeight = 60000
)

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
