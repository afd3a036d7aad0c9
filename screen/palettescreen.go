// Copyright © 2026 Icebox contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: screen/palettescreen.go
// Summary: Indexed-color raster screen for the RIP, IGS and SkyPix
//          graphics protocols, with a character layer rendered into
//          the same pixel store.
// Usage: NewPaletteScreen(graphics) sizes the raster for the protocol;
//        the sink drives it like any other editable screen.
// Notes: Characters live twice: the layer keeps the cell model for
//        erase and scroll operations, the raster keeps the pixels the
//        vector commands paint over.

package screen

import (
	"sync/atomic"

	"github.com/icebox-art/icebox/buffer"
	"github.com/icebox-art/icebox/font"
	"github.com/icebox-art/icebox/palette"
)

// Protocol raster sizes.
var (
	ripScreenSize    = buffer.Size{Width: 640, Height: 350}
	skypixScreenSize = buffer.Size{Width: 640, Height: 200}
	igsLowSize       = buffer.Size{Width: 320, Height: 200}
	igsMediumSize    = buffer.Size{Width: 640, Height: 200}
	igsHighSize      = buffer.Size{Width: 640, Height: 400}
)

// PaletteScreen is a pixel screen addressed by palette index.
type PaletteScreen struct {
	raster    []uint8
	pixelSize buffer.Size
	charSize  buffer.Size // cells, pixelSize / font cell

	graphics GraphicsType
	pal      *palette.Palette
	fonts    map[uint8]*font.BitFont
	fontDims buffer.Size

	layer *buffer.Layer
	caret Caret
	ts    *TerminalState

	mouseFields   []MouseField
	savedCaret    SavedCaretState
	savedCaretPos buffer.Position

	paint VdiPaint
	bgi   bgiState
	sky   skyState

	dirty   atomic.Bool
	version atomic.Uint64
}

// NewPaletteScreen returns a raster screen sized for the protocol.
func NewPaletteScreen(graphics GraphicsType) *PaletteScreen {
	s := &PaletteScreen{
		fonts: map[uint8]*font.BitFont{},
		caret: NewCaret(),
	}
	s.setDefaultFont()
	s.SetGraphics(graphics)
	s.caret.Attribute = buffer.NewAttribute(uint8(graphics.DefaultForeground()), 0)
	s.paint.Reset()
	return s
}

func (s *PaletteScreen) setDefaultFont() {
	f := font.FromAnsiFontPage(0, 8)
	if f == nil {
		f = font.Default()
	}
	s.fonts[0] = f
	w, h := f.CellSize()
	s.fontDims = buffer.Size{Width: w, Height: h}
}

// SetGraphics switches protocol mode: raster size, default palette and
// a fresh character grid.
func (s *PaletteScreen) SetGraphics(graphics GraphicsType) {
	s.graphics = graphics
	switch graphics.Kind {
	case GraphicsRip:
		s.pal = palette.DOSDefault()
		s.SetResolution(ripScreenSize)
	case GraphicsSkypix:
		s.pal = palette.FromColors(palette.SkypixPalette[:])
		s.SetResolution(skypixScreenSize)
	case GraphicsIgs:
		s.paint.SetResolution(graphics.Resolution)
		switch graphics.Resolution {
		case ResolutionMedium:
			s.pal = palette.FromColors(atariMediumPalette[:])
			s.SetResolution(igsMediumSize)
		case ResolutionHigh:
			s.pal = palette.FromColors(atariHighPalette[:])
			s.SetResolution(igsHighSize)
		default:
			s.pal = palette.FromColors(igsDesktopPalette[:])
			s.SetResolution(igsLowSize)
		}
	default:
		s.pal = palette.DOSDefault()
		s.SetResolution(ripScreenSize)
	}
	s.MarkDirty()
}

// SetResolution reallocates the raster and the character grid.
func (s *PaletteScreen) SetResolution(size buffer.Size) {
	s.pixelSize = size
	s.raster = make([]uint8, size.Width*size.Height)
	s.charSize = buffer.Size{
		Width:  size.Width / s.fontDims.Width,
		Height: size.Height / s.fontDims.Height,
	}
	s.layer = buffer.NewLayer("text", s.charSize)
	s.ts = NewTerminalState(s.charSize)
	s.ts.IsTerminalBuffer = true
	s.caret.SetPosition(buffer.Position{})
	s.bgi.reset(size)
	s.sky.reset(size)
	s.MarkDirty()
}

// Screen interface.

func (s *PaletteScreen) Size() buffer.Size { return s.charSize }
func (s *PaletteScreen) Width() int        { return s.charSize.Width }
func (s *PaletteScreen) Height() int       { return s.charSize.Height }
func (s *PaletteScreen) LineCount() int    { return s.layer.LineCount() }

func (s *PaletteScreen) LineLength(line int) int { return s.layer.LineLength(line) }

func (s *PaletteScreen) CharAt(pos buffer.Position) buffer.AttributedChar {
	return s.layer.Char(pos)
}

func (s *PaletteScreen) Graphics() GraphicsType  { return s.graphics }
func (s *PaletteScreen) Resolution() buffer.Size { return s.pixelSize }

func (s *PaletteScreen) FontDimensions() buffer.Size { return s.fontDims }
func (s *PaletteScreen) ScanLines() bool             { return s.graphics.ScanLines() }

func (s *PaletteScreen) Palette() *palette.Palette { return s.pal }
func (s *PaletteScreen) IceMode() buffer.IceMode   { return buffer.IceColors }

func (s *PaletteScreen) Font(page uint8) *font.BitFont { return s.fonts[page] }
func (s *PaletteScreen) FontCount() int                { return len(s.fonts) }

func (s *PaletteScreen) Caret() *Caret                 { return &s.caret }
func (s *PaletteScreen) TerminalState() *TerminalState { return s.ts }

func (s *PaletteScreen) Hyperlinks() []buffer.HyperLink { return s.layer.Hyperlinks }
func (s *PaletteScreen) MouseFields() []MouseField      { return s.mouseFields }

func (s *PaletteScreen) Version() uint64 { return s.version.Load() }

func (s *PaletteScreen) DefaultForeground() uint32 { return s.graphics.DefaultForeground() }

// MaxBaseColors caps SGR base colors at the palette width of the mode.
func (s *PaletteScreen) MaxBaseColors() uint32 { return uint32(s.pal.Len()) }

func (s *PaletteScreen) Raster() []uint8 { return s.raster }

// RenderToRGBA expands palette indices into opaque RGBA.
func (s *PaletteScreen) RenderToRGBA(RenderOptions) (buffer.Size, []byte) {
	lut := make([][3]uint8, s.pal.Len())
	for i := range lut {
		lut[i][0], lut[i][1], lut[i][2] = s.pal.RGBAt(i)
	}
	pixels := make([]byte, len(s.raster)*4)
	for i, idx := range s.raster {
		var rgb [3]uint8
		if int(idx) < len(lut) {
			rgb = lut[idx]
		}
		off := i * 4
		pixels[off] = rgb[0]
		pixels[off+1] = rgb[1]
		pixels[off+2] = rgb[2]
		pixels[off+3] = 0xFF
	}
	return s.pixelSize, pixels
}

func (s *PaletteScreen) RenderRegionToRGBA(region buffer.Rectangle, opts RenderOptions) (buffer.Size, []byte) {
	full, pixels := s.RenderToRGBA(opts)
	return cropRGBA(full, pixels, region)
}

// EditableScreen interface.

func (s *PaletteScreen) FirstVisibleLine() int { return 0 }
func (s *PaletteScreen) LastVisibleLine() int  { return s.charSize.Height - 1 }

func (s *PaletteScreen) FirstEditableLine() int {
	if top, _, ok := s.ts.MarginsTopBottom(); ok {
		return top
	}
	return 0
}

func (s *PaletteScreen) LastEditableLine() int {
	if _, bottom, ok := s.ts.MarginsTopBottom(); ok {
		return min(bottom, s.charSize.Height-1)
	}
	return s.charSize.Height - 1
}

func (s *PaletteScreen) FirstEditableColumn() int {
	if left, _, ok := s.ts.MarginsLeftRight(); ok {
		return left
	}
	return 0
}

func (s *PaletteScreen) LastEditableColumn() int {
	if _, right, ok := s.ts.MarginsLeftRight(); ok {
		return min(right, s.charSize.Width-1)
	}
	return s.charSize.Width - 1
}

// SetChar stores the cell and rasterizes its glyph.
func (s *PaletteScreen) SetChar(pos buffer.Position, ch buffer.AttributedChar) {
	s.layer.SetChar(pos, ch)
	s.renderCharToRaster(pos, ch)
	s.MarkDirty()
}

// renderCharToRaster paints one cell's glyph into the pixel store.
// Bold promotes a low foreground to the bright half, matching VGA.
func (s *PaletteScreen) renderCharToRaster(pos buffer.Position, ch buffer.AttributedChar) {
	fg := ch.Attribute.ForegroundIndex()
	if ch.Attribute.IsBold() && fg < 8 {
		fg += 8
	}
	bg := ch.Attribute.BackgroundIndex()

	f := s.fonts[ch.Attribute.FontPage]
	if f == nil {
		f = s.fonts[0]
	}
	if f == nil {
		return
	}
	glyph := f.Glyph(ch.Ch)

	baseX := pos.X * s.fontDims.Width
	baseY := pos.Y * s.fontDims.Height
	for y := 0; y < s.fontDims.Height; y++ {
		py := baseY + y
		if py < 0 || py >= s.pixelSize.Height {
			continue
		}
		for x := 0; x < s.fontDims.Width; x++ {
			px := baseX + x
			if px < 0 || px >= s.pixelSize.Width {
				continue
			}
			idx := bg
			if glyph != nil && glyph.Pixel(x, y) {
				idx = fg
			}
			s.raster[py*s.pixelSize.Width+px] = idx
		}
	}
}

func (s *PaletteScreen) SetSize(size buffer.Size) {
	s.charSize = size
	s.ts.SetSize(size)
	s.layer.SetSize(size)
	s.MarkDirty()
}

func (s *PaletteScreen) SetWidth(width int)   { s.SetSize(buffer.Size{Width: width, Height: s.charSize.Height}) }
func (s *PaletteScreen) SetHeight(height int) { s.SetSize(buffer.Size{Width: s.charSize.Width, Height: height}) }

// ScrollUp shifts both the raster and the character grid one text row
// up.
func (s *PaletteScreen) ScrollUp() {
	rowPx := s.fontDims.Height * s.pixelSize.Width
	copy(s.raster, s.raster[rowPx:])
	clearRange(s.raster[len(s.raster)-rowPx:])

	if len(s.layer.Lines) > 0 {
		s.layer.RemoveLine(0)
		s.layer.InsertLine(s.layer.Height()-1, buffer.NewLine(s.charSize.Width))
	}
	s.MarkDirty()
}

func (s *PaletteScreen) ScrollDown() {
	rowPx := s.fontDims.Height * s.pixelSize.Width
	copy(s.raster[rowPx:], s.raster[:len(s.raster)-rowPx])
	clearRange(s.raster[:rowPx])

	if len(s.layer.Lines) > 0 {
		s.layer.RemoveLine(s.layer.Height() - 1)
		s.layer.InsertLine(0, buffer.NewLine(s.charSize.Width))
	}
	s.MarkDirty()
}

func (s *PaletteScreen) ScrollLeft() {
	colPx := s.fontDims.Width
	w := s.pixelSize.Width
	for y := 0; y < s.pixelSize.Height; y++ {
		row := s.raster[y*w : (y+1)*w]
		copy(row, row[colPx:])
		clearRange(row[w-colPx:])
	}
	for y := range s.layer.Lines {
		line := &s.layer.Lines[y]
		if len(line.Chars) > 0 {
			line.Chars = line.Chars[1:]
		}
	}
	s.MarkDirty()
}

func (s *PaletteScreen) ScrollRight() {
	colPx := s.fontDims.Width
	w := s.pixelSize.Width
	for y := 0; y < s.pixelSize.Height; y++ {
		row := s.raster[y*w : (y+1)*w]
		copy(row[colPx:], row[:w-colPx])
		clearRange(row[:colPx])
	}
	blank := buffer.NewChar(' ', buffer.DefaultAttribute())
	for y := range s.layer.Lines {
		line := &s.layer.Lines[y]
		if len(line.Chars) > 0 {
			line.Chars = append([]buffer.AttributedChar{blank}, line.Chars...)
		}
	}
	s.MarkDirty()
}

// ClearScreen zeroes the raster, clears the grid and homes the caret.
func (s *PaletteScreen) ClearScreen() {
	clearRange(s.raster)
	s.layer.Clear()
	s.caret.SetPosition(buffer.Position{})
	s.MarkDirty()
}

// ClearScreenDown clears pixels and cells from the caret row down.
func (s *PaletteScreen) ClearScreenDown() {
	fromPx := s.caret.Position.Y * s.fontDims.Height * s.pixelSize.Width
	if fromPx < len(s.raster) {
		clearRange(s.raster[fromPx:])
	}
	for y := s.caret.Position.Y; y < len(s.layer.Lines); y++ {
		s.layer.Lines[y].Chars = s.layer.Lines[y].Chars[:0]
	}
	s.MarkDirty()
}

func (s *PaletteScreen) ClearLine() {
	y := s.caret.Position.Y
	if y >= 0 && y < len(s.layer.Lines) {
		s.layer.Lines[y].Chars = s.layer.Lines[y].Chars[:0]
	}
	s.clearLinePixels(y, 0, s.charSize.Width)
	s.MarkDirty()
}

func (s *PaletteScreen) ClearLineEnd() {
	pos := s.caret.Position
	if pos.Y >= 0 && pos.Y < len(s.layer.Lines) {
		line := &s.layer.Lines[pos.Y]
		if pos.X >= 0 && pos.X < len(line.Chars) {
			line.Chars = line.Chars[:pos.X]
		}
	}
	s.clearLinePixels(pos.Y, pos.X, s.charSize.Width)
	s.MarkDirty()
}

func (s *PaletteScreen) ClearLineStart() {
	pos := s.caret.Position
	if pos.Y >= 0 && pos.Y < len(s.layer.Lines) {
		line := &s.layer.Lines[pos.Y]
		for x := 0; x < pos.X && x < len(line.Chars); x++ {
			line.Chars[x] = buffer.NewChar(' ', buffer.DefaultAttribute())
		}
	}
	s.clearLinePixels(pos.Y, 0, pos.X+1)
	s.MarkDirty()
}

func (s *PaletteScreen) clearLinePixels(row, fromCol, toCol int) {
	y0 := row * s.fontDims.Height
	x0 := fromCol * s.fontDims.Width
	x1 := min(toCol*s.fontDims.Width, s.pixelSize.Width)
	for y := y0; y < y0+s.fontDims.Height && y < s.pixelSize.Height; y++ {
		if y < 0 || x0 >= x1 {
			continue
		}
		clearRange(s.raster[y*s.pixelSize.Width+x0 : y*s.pixelSize.Width+x1])
	}
}

func (s *PaletteScreen) InsertTerminalLine(line int) {
	if line < 0 || line >= s.charSize.Height {
		return
	}
	// Shift rows below down by one text row.
	rowPx := s.fontDims.Height * s.pixelSize.Width
	from := line * rowPx
	copy(s.raster[from+rowPx:], s.raster[from:len(s.raster)-rowPx])
	clearRange(s.raster[from : from+rowPx])

	s.layer.InsertLine(line, buffer.NewLine(s.charSize.Width))
	if len(s.layer.Lines) > s.charSize.Height {
		s.layer.RemoveLine(len(s.layer.Lines) - 1)
	}
	s.MarkDirty()
}

func (s *PaletteScreen) RemoveTerminalLine(line int) {
	if line < 0 || line >= s.charSize.Height {
		return
	}
	rowPx := s.fontDims.Height * s.pixelSize.Width
	from := line * rowPx
	copy(s.raster[from:], s.raster[from+rowPx:])
	clearRange(s.raster[len(s.raster)-rowPx:])

	if line < len(s.layer.Lines) {
		s.layer.RemoveLine(line)
	}
	s.MarkDirty()
}

func (s *PaletteScreen) SetFont(page uint8, f *font.BitFont) { s.fonts[page] = f }

func (s *PaletteScreen) RemoveFont(page uint8) *font.BitFont {
	f := s.fonts[page]
	delete(s.fonts, page)
	return f
}

// AddSixel has no raster path; sixels are a text-screen feature.
func (s *PaletteScreen) AddSixel(buffer.Position, buffer.Sixel) {}

func (s *PaletteScreen) AddHyperlink(link buffer.HyperLink) { s.layer.AddHyperlink(link) }

func (s *PaletteScreen) ClearMouseFields()          { s.mouseFields = s.mouseFields[:0] }
func (s *PaletteScreen) AddMouseField(f MouseField) { s.mouseFields = append(s.mouseFields, f) }

func (s *PaletteScreen) SetIceMode(buffer.IceMode) {}

func (s *PaletteScreen) ResetTerminal() {
	s.ts.Reset()
	s.ts.IsTerminalBuffer = true
	s.caret.Reset()
	s.caret.Attribute = buffer.NewAttribute(uint8(s.graphics.DefaultForeground()), 0)
	s.paint.Reset()
	s.MarkDirty()
}

// MarkDirty bumps the version; renderers poll it.
func (s *PaletteScreen) MarkDirty() {
	s.dirty.Store(true)
	s.version.Add(1)
}

// TakeDirty reports and clears the dirty flag.
func (s *PaletteScreen) TakeDirty() bool { return s.dirty.Swap(false) }

func (s *PaletteScreen) SavedCaret() *SavedCaretState    { return &s.savedCaret }
func (s *PaletteScreen) SavedCaretPos() *buffer.Position { return &s.savedCaretPos }

// SetPixel writes one raster pixel, ignoring out-of-bounds writes.
func (s *PaletteScreen) SetPixel(x, y int, color uint8) {
	if x < 0 || y < 0 || x >= s.pixelSize.Width || y >= s.pixelSize.Height {
		return
	}
	s.raster[y*s.pixelSize.Width+x] = color
}

// Pixel reads one raster pixel; out of bounds reads zero.
func (s *PaletteScreen) Pixel(x, y int) uint8 {
	if x < 0 || y < 0 || x >= s.pixelSize.Width || y >= s.pixelSize.Height {
		return 0
	}
	return s.raster[y*s.pixelSize.Width+x]
}

func clearRange(b []uint8) {
	for i := range b {
		b[i] = 0
	}
}
