// Copyright © 2026 Icebox contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: buffer/buffer.go
// Summary: The layered character-cell document: layer stack, palette,
//          font table, color-depth modes and atomic dirty tracking.
// Notes: The version counter is the only cache invalidation signal;
//        every mutation path must go through MarkDirty or a line
//        variant. Readers synchronize on IsDirty/Version alone.

package buffer

import (
	"fmt"
	"sort"
	"strings"
	"sync/atomic"

	"github.com/icebox-art/icebox/font"
	"github.com/icebox-art/icebox/palette"
)

// BufferKind selects the character set and display aspect conventions
// of a document.
type BufferKind uint8

const (
	KindCP437 BufferKind = iota
	KindPetscii
	KindAtascii
	KindViewdata
)

// TextBuffer is a layered grid of attributed characters plus the
// palette, font table and mode flags that give the cells meaning.
type TextBuffer struct {
	originalSize Size
	size         Size

	Kind        BufferKind
	IceMode     IceMode
	FontMode    FontMode
	PaletteMode PaletteMode

	Palette *palette.Palette

	fontTable      map[uint8]*font.BitFont
	fontTableDirty bool

	Layers []*Layer

	useLetterSpacing bool
	useAspectRatio   bool

	ShowTags bool
	Tags     []Tag

	// MaxScrollbackLines caps the scrollback ring, 0 means unlimited.
	MaxScrollbackLines int

	// fontCellSize is the expected cell size of the document. Fonts
	// with other sizes are clipped or padded at render time.
	fontCellSize Size

	bufferDirty    atomic.Bool
	version        atomic.Uint64
	dirtyLineStart atomic.Int32
	dirtyLineEnd   atomic.Int32
	overlayDirty   atomic.Bool
}

// New creates a buffer with one background layer, the DOS palette and
// the built-in font in slot 0.
func New(size Size) *TextBuffer {
	b := &TextBuffer{
		originalSize:       size,
		size:               size,
		Kind:               KindCP437,
		IceMode:            IceUnlimited,
		FontMode:           FontSauce,
		PaletteMode:        PaletteRGB,
		Palette:            palette.DOSDefault(),
		fontTable:          map[uint8]*font.BitFont{0: font.Default()},
		Layers:             []*Layer{NewLayer("Background", size)},
		ShowTags:           true,
		MaxScrollbackLines: 10000,
		fontCellSize:       Size{Width: 8, Height: 16},
	}
	b.bufferDirty.Store(true)
	b.dirtyLineStart.Store(-1)
	b.dirtyLineEnd.Store(-1)
	return b
}

func (b *TextBuffer) Width() int  { return b.size.Width }
func (b *TextBuffer) Height() int { return b.size.Height }
func (b *TextBuffer) Size() Size  { return b.size }

func (b *TextBuffer) Rectangle() Rectangle {
	return Rectangle{Size: b.size}
}

func (b *TextBuffer) SetSize(size Size)        { b.size = size }
func (b *TextBuffer) SetDefaultSize(size Size) { b.originalSize = size }
func (b *TextBuffer) DefaultSize() Size        { return b.originalSize }
func (b *TextBuffer) SetWidth(width int)       { b.size.Width = width }
func (b *TextBuffer) SetHeight(height int)     { b.size.Height = height }

// LineCount is the tallest layer's content height, at least the buffer
// height.
func (b *TextBuffer) LineCount() int {
	count := 0
	for _, layer := range b.Layers {
		count = max(count, layer.LineCount())
	}
	if count == 0 {
		return b.size.Height
	}
	return count
}

// MarkDirty invalidates the whole buffer and bumps the version.
func (b *TextBuffer) MarkDirty() {
	b.bufferDirty.Store(true)
	b.version.Add(1)
	b.dirtyLineStart.Store(0)
	b.dirtyLineEnd.Store(int32(b.size.Height))
}

// MarkLineDirty extends the dirty range to cover one line.
func (b *TextBuffer) MarkLineDirty(line int) {
	b.MarkLinesDirty(line, line+1)
}

// MarkLinesDirty extends the dirty range to cover [startLine, endLine).
func (b *TextBuffer) MarkLinesDirty(startLine, endLine int) {
	b.bufferDirty.Store(true)
	b.version.Add(1)

	for {
		current := b.dirtyLineStart.Load()
		next := int32(startLine)
		if current >= 0 {
			next = min(current, next)
		}
		if b.dirtyLineStart.CompareAndSwap(current, next) {
			break
		}
	}
	for {
		current := b.dirtyLineEnd.Load()
		next := int32(endLine)
		if current >= 0 {
			next = max(current, next)
		}
		if b.dirtyLineEnd.CompareAndSwap(current, next) {
			break
		}
	}
}

func (b *TextBuffer) IsDirty() bool { return b.bufferDirty.Load() }
func (b *TextBuffer) ClearDirty()   { b.bufferDirty.Store(false) }

// Version is the monotonically increasing change counter.
func (b *TextBuffer) Version() uint64 { return b.version.Load() }

// DirtyLines returns the dirty line range without clearing it. The end
// line is exclusive; ok is false when nothing is dirty.
func (b *TextBuffer) DirtyLines() (start, end int, ok bool) {
	s, e := b.dirtyLineStart.Load(), b.dirtyLineEnd.Load()
	if s < 0 || e < 0 {
		return 0, 0, false
	}
	return int(s), int(e), true
}

// TakeDirtyLines returns the dirty line range and clears it.
func (b *TextBuffer) TakeDirtyLines() (start, end int, ok bool) {
	s := b.dirtyLineStart.Swap(-1)
	e := b.dirtyLineEnd.Swap(-1)
	if s < 0 || e < 0 {
		return 0, 0, false
	}
	return int(s), int(e), true
}

// MarkOverlayDirty requests a selection/marker overlay refresh without
// invalidating rendered content.
func (b *TextBuffer) MarkOverlayDirty()    { b.overlayDirty.Store(true) }
func (b *TextBuffer) IsOverlayDirty() bool { return b.overlayDirty.Load() }
func (b *TextBuffer) ClearOverlayDirty()   { b.overlayDirty.Store(false) }

// Font returns the font for a page, falling back to the built-in ANSI
// slot fonts for pages outside the table.
func (b *TextBuffer) Font(fontNumber uint8) *font.BitFont {
	if f, ok := b.fontTable[fontNumber]; ok {
		return f
	}
	return font.FromAnsiFontPage(int(fontNumber), b.fontCellSize.Height)
}

func (b *TextBuffer) HasFont(fontNumber uint8) bool {
	_, ok := b.fontTable[fontNumber]
	return ok
}

func (b *TextBuffer) HasFonts() bool { return len(b.fontTable) > 0 }
func (b *TextBuffer) FontCount() int { return len(b.fontTable) }

func (b *TextBuffer) SetFont(fontNumber uint8, f *font.BitFont) {
	b.fontTable[fontNumber] = f
	b.fontTableDirty = true
}

func (b *TextBuffer) RemoveFont(fontNumber uint8) *font.BitFont {
	f := b.fontTable[fontNumber]
	delete(b.fontTable, fontNumber)
	return f
}

func (b *TextBuffer) ClearFontTable() {
	b.fontTable = map[uint8]*font.BitFont{}
	b.fontTableDirty = true
}

// AppendFont stores the font in the lowest free slot and returns it.
func (b *TextBuffer) AppendFont(f *font.BitFont) uint8 {
	i := uint8(0)
	for {
		if _, ok := b.fontTable[i]; !ok {
			break
		}
		i++
	}
	b.fontTable[i] = f
	b.fontTableDirty = true
	return i
}

// SearchFontByName returns the slot of the font with that exact name.
func (b *TextBuffer) SearchFontByName(name string) (uint8, bool) {
	for i, f := range b.fontTable {
		if f.Name == name {
			return i, true
		}
	}
	return 0, false
}

// FontSlots returns the occupied slots in ascending order.
func (b *TextBuffer) FontSlots() []uint8 {
	slots := make([]uint8, 0, len(b.fontTable))
	for i := range b.fontTable {
		slots = append(slots, i)
	}
	sort.Slice(slots, func(a, c int) bool { return slots[a] < slots[c] })
	return slots
}

func (b *TextBuffer) IsFontTableUpdated() bool { return b.fontTableDirty }
func (b *TextBuffer) SetFontTableUpdated()     { b.fontTableDirty = false }

// Glyph resolves the bitmap for a cell through its font page.
func (b *TextBuffer) Glyph(ch AttributedChar) *font.Glyph {
	f := b.Font(ch.FontPage())
	if f == nil {
		return nil
	}
	return f.Glyph(ch.Ch)
}

// FontDimensions is the document cell size in pixels.
func (b *TextBuffer) FontDimensions() Size     { return b.fontCellSize }
func (b *TextBuffer) SetFontDimensions(s Size) { b.fontCellSize = s }

func (b *TextBuffer) UseLetterSpacing() bool { return b.useLetterSpacing }

func (b *TextBuffer) SetUseLetterSpacing(on bool) {
	if b.useLetterSpacing != on {
		b.useLetterSpacing = on
		b.fontTableDirty = true
	}
}

func (b *TextBuffer) UseAspectRatio() bool      { return b.useAspectRatio }
func (b *TextBuffer) SetUseAspectRatio(on bool) { b.useAspectRatio = on }

// AspectRatioStretchFactor is the vertical stretch applied when legacy
// aspect ratio correction is enabled, 0 when the font renders square.
func (b *TextBuffer) AspectRatioStretchFactor() float32 {
	switch b.Kind {
	case KindPetscii:
		return 1.2
	case KindAtascii:
		return 1.25
	}
	res := float32(1.2)
	if b.useLetterSpacing {
		res = 1.35
	}
	if f := b.Font(0); f != nil {
		switch {
		case strings.HasPrefix(f.Name, "IBM EGA"):
			res = 1.3714
		case strings.HasPrefix(f.Name, "IBM VGA25G"):
			res = 0.0
		case strings.HasPrefix(f.Name, "Amiga"):
			res = 1.4
		case strings.HasPrefix(f.Name, "C64"):
			res = 1.2
		case strings.HasPrefix(f.Name, "Atari ATASCII"):
			res = 1.25
		}
	}
	return res
}

// FontDimensionsWithAspectRatio is the effective display cell size.
func (b *TextBuffer) FontDimensionsWithAspectRatio() Size {
	if !b.useAspectRatio {
		return b.fontCellSize
	}
	stretch := b.AspectRatioStretchFactor()
	if stretch <= 0 {
		return b.fontCellSize
	}
	h := int(float32(b.fontCellSize.Height)*stretch + 0.5)
	return Size{Width: b.fontCellSize.Width, Height: h}
}

// CharAt composites the cell at pos through tags and the layer stack.
func (b *TextBuffer) CharAt(pos Position) AttributedChar {
	if b.ShowTags {
		for i := range b.Tags {
			tag := &b.Tags[i]
			if tag.IsEnabled && tag.Contains(pos) {
				return tag.CharAt(pos.X - tag.Position.X)
			}
		}
	}
	found := InvisibleChar()
	for _, layer := range b.Layers {
		if !layer.IsVisible() {
			continue
		}
		layerPos := pos.Sub(layer.Offset())
		if layerPos.X >= 0 && layerPos.Y >= 0 && layerPos.X < layer.Width() && layerPos.Y < layer.Height() {
			b.mergeLayerChar(&found, layer, layerPos)
		}
	}
	return found
}

// mergeLayerChar folds one layer's cell into the composite according
// to the layer mode.
func (b *TextBuffer) mergeLayerChar(found *AttributedChar, layer *Layer, pos Position) {
	cur := layer.Char(pos)
	switch layer.Properties.Mode {
	case ModeNormal:
		underlying := *found
		if cur.IsVisible() {
			*found = cur
		}
		if found.Attribute.IsForegroundTransparent() || found.Attribute.IsBackgroundTransparent() {
			*found = b.MakeSolidColor(*found, underlying)
		}
		if !layer.Properties.HasAlphaChannel {
			found.Attribute.Attr &^= AttrInvisible
			if found.Attribute.IsBackgroundTransparent() {
				found.Attribute.Background = PaletteColor(0)
			}
			if found.Attribute.IsForegroundTransparent() {
				found.Attribute.Foreground = PaletteColor(0)
			}
		}
	case ModeChars:
		if !cur.IsTransparent() {
			found.Ch = cur.Ch
			found.SetFontPage(cur.FontPage())
		}
	case ModeAttributes:
		if cur.IsVisible() {
			found.Attribute = cur.Attribute
		}
	}
}

// MakeSolidColor fills the transparent halves of a cell from the block
// colors of the cell beneath it. The per-glyph assignment asymmetry is
// a compatibility contract; keep it exactly as is.
func (b *TextBuffer) MakeSolidColor(transparentChar, underlyingChar AttributedChar) AttributedChar {
	halfBlock := HalfBlockFromChar(underlyingChar, Position{})

	switch transparentChar.Ch {
	case HalfBlockTop:
		if transparentChar.Attribute.IsForegroundTransparent() {
			transparentChar.Attribute.Foreground = halfBlock.UpperBlockColor
		}
		if transparentChar.Attribute.IsBackgroundTransparent() {
			transparentChar.Attribute.Background = halfBlock.LowerBlockColor
		}
	case HalfBlockBottom:
		if transparentChar.Attribute.IsBackgroundTransparent() {
			transparentChar.Attribute.Background = halfBlock.UpperBlockColor
		}
		if transparentChar.Attribute.IsForegroundTransparent() {
			transparentChar.Attribute.Foreground = halfBlock.LowerBlockColor
		}
	default:
		if transparentChar.Attribute.IsForegroundTransparent() {
			transparentChar.Attribute.Foreground = halfBlock.LowerBlockColor
		}
		if transparentChar.Attribute.IsBackgroundTransparent() {
			transparentChar.Attribute.Background = halfBlock.LowerBlockColor
		}
	}
	return transparentChar
}

// IsLineEmpty reports whether a composited line has only transparent
// cells.
func (b *TextBuffer) IsLineEmpty(line int) bool {
	for x := 0; x < b.Width(); x++ {
		if !b.CharAt(Pos(x, line)).IsTransparent() {
			return false
		}
	}
	return true
}

// LineLength is the composited length of one line: the last visible
// cell, extended over trailing cells whose predecessor painted a
// background, and over enabled tags.
func (b *TextBuffer) LineLength(line int) int {
	length := 0
	last := InvisibleChar()
	for x := 0; x < b.Width(); x++ {
		ch := b.CharAt(Pos(x, line))
		if x > 0 && ch.IsTransparent() {
			if !last.Attribute.IsBackgroundTransparent() && last.Attribute.BackgroundIndex() > 0 {
				length = x + 1
			}
		} else if !ch.IsTransparent() {
			length = x + 1
		}
		last = ch
	}
	for i := range b.Tags {
		tag := &b.Tags[i]
		if tag.IsEnabled && tag.Position.Y == line {
			length = max(length, tag.Position.X+tag.Len())
		}
	}
	return length
}

// RealBufferWidth is the widest content line across all layers.
func (b *TextBuffer) RealBufferWidth() int {
	w := 0
	for _, layer := range b.Layers {
		for i := range layer.Lines {
			w = max(w, layer.Lines[i].Length())
		}
	}
	return w
}

// Clone returns a deep copy sharing no mutable state, used for undo
// snapshots.
func (b *TextBuffer) Clone() *TextBuffer {
	c := &TextBuffer{
		originalSize:       b.originalSize,
		size:               b.size,
		Kind:               b.Kind,
		IceMode:            b.IceMode,
		FontMode:           b.FontMode,
		PaletteMode:        b.PaletteMode,
		Palette:            b.Palette.Clone(),
		fontTable:          make(map[uint8]*font.BitFont, len(b.fontTable)),
		fontTableDirty:     b.fontTableDirty,
		Layers:             make([]*Layer, 0, len(b.Layers)),
		useLetterSpacing:   b.useLetterSpacing,
		useAspectRatio:     b.useAspectRatio,
		ShowTags:           b.ShowTags,
		Tags:               append([]Tag(nil), b.Tags...),
		MaxScrollbackLines: b.MaxScrollbackLines,
		fontCellSize:       b.fontCellSize,
	}
	for i, f := range b.fontTable {
		c.fontTable[i] = f.Clone()
	}
	for _, layer := range b.Layers {
		c.Layers = append(c.Layers, layer.Clone())
	}
	c.bufferDirty.Store(b.bufferDirty.Load())
	c.version.Store(b.version.Load())
	c.dirtyLineStart.Store(b.dirtyLineStart.Load())
	c.dirtyLineEnd.Store(b.dirtyLineEnd.Load())
	c.overlayDirty.Store(b.overlayDirty.Load())
	return c
}

// String renders the composited buffer as plain text, one numbered
// line per row. Debug aid.
func (b *TextBuffer) String() string {
	var sb strings.Builder
	for y := 0; y < b.Height(); y++ {
		fmt.Fprintf(&sb, "%3d: ", y)
		for x := 0; x < b.Width(); x++ {
			ch := b.CharAt(Pos(x, y))
			if ch.Ch < ' ' {
				sb.WriteRune(' ')
			} else {
				sb.WriteRune(ch.Ch)
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

// BufferFeatures summarizes what a document uses, consumed by format
// pickers to decide what a save target must support.
type BufferFeatures struct {
	UseSixels             bool
	HasLinks              bool
	FontCount             int
	UseExtendedColors     bool
	UseColors             bool
	UseBlink              bool
	UseExtendedAttributes bool
}

// ScanBufferFeatures walks every layer cell once and collects features.
func (b *TextBuffer) ScanBufferFeatures() BufferFeatures {
	var result BufferFeatures
	for _, layer := range b.Layers {
		if len(layer.Sixels) > 0 {
			result.UseSixels = true
		}
		if len(layer.Hyperlinks) > 0 {
			result.HasLinks = true
		}
		for y := 0; y < layer.Height(); y++ {
			for x := 0; x < layer.Width(); x++ {
				ch := layer.Char(Pos(x, y))
				if ch.Attribute.ForegroundIndex() != 7 || ch.Attribute.BackgroundIndex() != 0 {
					result.UseColors = true
				}
				result.UseBlink = result.UseBlink || ch.Attribute.IsBlinking()
				result.UseExtendedAttributes = result.UseExtendedAttributes ||
					ch.Attribute.IsCrossedOut() ||
					ch.Attribute.IsUnderlined() ||
					ch.Attribute.IsConcealed() ||
					ch.Attribute.IsDoubleHeight() ||
					ch.Attribute.IsDoubleUnderlined() ||
					ch.Attribute.IsOverlined()
			}
		}
	}
	result.FontCount = len(AnalyzeFontUsage(b))
	result.UseExtendedColors = b.Palette.Len() > 16
	return result
}

// UsesTrueColor reports whether any cell carries an RGB color.
func (b *TextBuffer) UsesTrueColor() bool {
	for _, layer := range b.Layers {
		for y := 0; y < layer.Height(); y++ {
			for x := 0; x < layer.Width(); x++ {
				attr := layer.Char(Pos(x, y)).Attribute
				if attr.Foreground.IsRGB() || attr.Background.IsRGB() {
					return true
				}
			}
		}
	}
	return false
}

// HasControlChars reports whether any visible cell is a control code.
func (b *TextBuffer) HasControlChars() bool {
	for _, layer := range b.Layers {
		for y := 0; y < layer.Height(); y++ {
			for x := 0; x < layer.Width(); x++ {
				ch := layer.Char(Pos(x, y))
				if !ch.IsTransparent() && ch.Ch < 32 {
					return true
				}
			}
		}
	}
	return false
}

// AnalyzeFontUsage returns the distinct font pages referenced by the
// composited buffer, in ascending order.
func AnalyzeFontUsage(b *TextBuffer) []uint8 {
	var pages []uint8
	seen := [256]bool{}
	for y := 0; y < b.Height(); y++ {
		for x := 0; x < b.Width(); x++ {
			page := b.CharAt(Pos(x, y)).FontPage()
			if !seen[page] {
				seen[page] = true
				pages = append(pages, page)
			}
		}
	}
	sort.Slice(pages, func(a, c int) bool { return pages[a] < pages[c] })
	return pages
}
