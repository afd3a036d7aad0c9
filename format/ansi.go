// Copyright © 2026 Icebox contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: format/ansi.go
// Summary: ANSI text codec. StringGenerator turns a buffer back into an
//          escape stream with minimal SGR diffs and optional run-length
//          output; DecodeANSI replays a stream into a fresh buffer.
// Notes: True color is written as standard SGR 38;2/48;2 triples.
//        Sixel layers are not re-encoded, that would need an encoder.

package format

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/icebox-art/icebox/buffer"
	"github.com/icebox-art/icebox/font"
	"github.com/icebox-art/icebox/palette"
	"github.com/icebox-art/icebox/parser"
	"github.com/icebox-art/icebox/screen"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ansiColorOffsets maps a DOS palette index to its SGR color digit
// (30+offset selects the foreground, 40+offset the background).
var ansiColorOffsets = [8]uint8{0, 4, 2, 6, 1, 5, 3, 7}

// ansiControlChars are bytes the generator cannot emit verbatim without
// the terminal interpreting them.
const ansiControlChars = "\x1b\x07\x08\x09\x0c\x7f\r\n"

// ansiState is the attribute state of the receiving terminal while
// generating. Diffing against it yields the minimal SGR per cell.
type ansiState struct {
	bold            bool
	blink           bool
	faint           bool
	italic          bool
	underlined      bool
	doubleUnderline bool
	crossedOut      bool
	concealed       bool

	fgIdx uint32
	fg    palette.Color
	bgIdx uint32
	bg    palette.Color
}

func initialAnsiState() ansiState {
	return ansiState{
		fgIdx: 7,
		fg:    palette.DOSDefaultPalette[7],
		bgIdx: 0,
		bg:    palette.DOSDefaultPalette[0],
	}
}

// ansiCell is one output cell with the SGR params that must precede it
// and the terminal state in effect when it prints.
type ansiCell struct {
	ch       rune
	sgr      []uint8
	fontPage uint8
	state    ansiState
}

// StringGenerator encodes a buffer to ANSI bytes.
type StringGenerator struct {
	output        []byte
	opts          SaveOptions
	lastLineBreak int
	maxLineLength int

	extendedColors map[[3]uint8]uint8

	// Tags are rendered with their replacement value in place of the
	// underlying cells.
	Tags []buffer.Tag
}

// NewStringGenerator builds a generator; the modern-terminal option
// starts the output with a UTF-8 BOM.
func NewStringGenerator(opts SaveOptions) *StringGenerator {
	g := &StringGenerator{
		opts:          opts,
		maxLineLength: opts.OutputLineLength,
	}
	if g.maxLineLength <= 0 {
		g.maxLineLength = int(^uint(0) >> 1)
	}
	if opts.ModernTerminal {
		g.output = append(g.output, utf8BOM...)
	}
	if opts.UseExtendedColors {
		g.extendedColors = make(map[[3]uint8]uint8, len(palette.XTerm256Palette))
		for i, c := range palette.XTerm256Palette {
			key := [3]uint8{c.R, c.G, c.B}
			if _, ok := g.extendedColors[key]; !ok {
				g.extendedColors[key] = uint8(i)
			}
		}
	}
	return g
}

// Bytes returns the generated output.
func (g *StringGenerator) Bytes() []byte { return g.output }

// ScreenPrep emits the ice-color switch and the configured screen
// preparation sequence.
func (g *StringGenerator) ScreenPrep(buf *buffer.TextBuffer) {
	if buf.IceMode == buffer.IceColors {
		g.pushRaw([]byte("\x1b[?33h"))
	}
	switch g.opts.ScreenPreparation {
	case PrepClearScreen:
		g.pushRaw([]byte("\x1b[2J"))
	case PrepHome:
		g.pushRaw([]byte("\x1b[1;1H"))
	}
}

// ScreenEnd restores blink mode after an ice-color file.
func (g *StringGenerator) ScreenEnd(buf *buffer.TextBuffer) {
	if buf.IceMode == buffer.IceColors {
		g.pushRaw([]byte("\x1b[?33l"))
	}
}

// resolveRGB resolves an attribute color against the buffer palette.
func resolveRGB(pal *palette.Palette, c buffer.AttributeColor) palette.Color {
	switch {
	case c.IsRGB():
		r, gr, b := c.RGB()
		return palette.RGB(r, gr, b)
	case c.IsExtended():
		return palette.XTerm256Palette[c.Index()]
	default:
		r, gr, b := pal.RGBAt(int(c.Index()))
		return palette.RGB(r, gr, b)
	}
}

func dosIndexOf(c palette.Color) (int, bool) {
	for i, d := range palette.DOSDefaultPalette {
		if d.Equal(c) {
			return i, true
		}
	}
	return 0, false
}

// colorDiff computes the SGR parameters taking state to the given
// attribute and returns the updated state.
func (g *StringGenerator) colorDiff(buf *buffer.TextBuffer, attr buffer.TextAttribute, state ansiState) (ansiState, []uint8) {
	var sgr []uint8

	fore := resolveRGB(buf.Palette, attr.Foreground)
	back := resolveRGB(buf.Palette, attr.Background)

	foreIdx, foreOK := dosIndexOf(fore)
	backIdx, backOK := dosIndexOf(back)

	isBold := attr.IsBold()
	isBlink := attr.IsBlinking()

	// Brightness can arrive two ways: a bright palette index, or the
	// bold flag on a low index that render time promotes. Both are
	// emitted as bold plus the base color.
	if foreOK && foreIdx >= 8 {
		isBold = true
		foreIdx -= 8
	}

	switch buf.IceMode {
	case buffer.IceUnlimited:
		if backOK && backIdx > 7 {
			backOK = false
		}
	case buffer.IceBlink:
		if backOK && backIdx > 7 {
			backOK = false
		}
	case buffer.IceColors:
		if backOK {
			if backIdx > 7 {
				isBlink = true
				backIdx -= 8
			}
		}
	}

	_, stateFgInDOS := dosIndexOf(state.fg)

	// A full reset is needed when any flag must turn off, or when bold
	// turns on over a custom RGB foreground (bold re-derives the
	// foreground from the DOS palette).
	needsReset := !isBold && state.bold ||
		!isBlink && state.blink ||
		!attr.IsItalic() && state.italic ||
		!attr.IsFaint() && state.faint ||
		!attr.IsUnderlined() && state.underlined ||
		!attr.IsDoubleUnderlined() && state.doubleUnderline ||
		!attr.IsCrossedOut() && state.crossedOut ||
		!attr.IsConcealed() && state.concealed ||
		isBold && !state.bold && !stateFgInDOS

	if needsReset {
		sgr = append(sgr, 0)
		state = initialAnsiState()
	}

	if isBold && !state.bold {
		sgr = append(sgr, 1)
		state.fgIdx += 8
		if state.fgIdx < 16 {
			state.fg = palette.DOSDefaultPalette[state.fgIdx]
		}
		state.bold = true
	}
	if attr.IsFaint() && !state.faint {
		sgr = append(sgr, 2)
		state.faint = true
	}
	if attr.IsItalic() && !state.italic {
		sgr = append(sgr, 3)
		state.italic = true
	}
	if attr.IsUnderlined() && !state.underlined {
		sgr = append(sgr, 4)
		state.underlined = true
	}
	if isBlink && !state.blink {
		sgr = append(sgr, 5)
		state.blink = true
	}
	if attr.IsConcealed() && !state.concealed {
		sgr = append(sgr, 8)
		state.concealed = true
	}
	if attr.IsCrossedOut() && !state.crossedOut {
		sgr = append(sgr, 9)
		state.crossedOut = true
	}
	if attr.IsDoubleUnderlined() && !state.doubleUnderline {
		sgr = append(sgr, 21)
		state.doubleUnderline = true
	}

	if !fore.Equal(state.fg) {
		if foreOK {
			sgr = append(sgr, ansiColorOffsets[foreIdx]+30)
		} else if ext, ok := g.extendedColors[[3]uint8{fore.R, fore.G, fore.B}]; ok {
			sgr = append(sgr, 38, 5, ext)
		} else {
			sgr = append(sgr, 38, 2, fore.R, fore.G, fore.B)
		}
		state.fgIdx = uint32(attr.Foreground.Index())
		state.fg = fore
	}
	if !back.Equal(state.bg) {
		if backOK {
			sgr = append(sgr, ansiColorOffsets[backIdx]+40)
			state.bgIdx = uint32(backIdx)
		} else if ext, ok := g.extendedColors[[3]uint8{back.R, back.G, back.B}]; ok {
			sgr = append(sgr, 48, 5, ext)
			state.bgIdx = uint32(attr.Background.Index())
		} else {
			sgr = append(sgr, 48, 2, back.R, back.G, back.B)
			state.bgIdx = uint32(attr.Background.Index())
		}
		state.bg = back
	}
	return state, sgr
}

// ansiFontMap maps buffer font pages to the standard ANSI font slots
// when the glyph data matches a known slot font.
func ansiFontMap(buf *buffer.TextBuffer) map[uint8]uint8 {
	fontMap := make(map[uint8]uint8)
	for _, page := range buf.FontSlots() {
		f := buf.Font(page)
		to := page
		if f != nil {
			for _, slot := range []int{0, 1, 2, 3, 4} {
				if sf := font.FromAnsiFontPage(slot, 16); sf != nil && sf.Checksum() == f.Checksum() {
					to = uint8(slot)
					break
				}
			}
		}
		fontMap[page] = to
	}
	return fontMap
}

func (g *StringGenerator) generateCells(buf *buffer.TextBuffer, fontMap map[uint8]uint8) [][]ansiCell {
	var result [][]ansiCell
	state := initialAnsiState()
	area := buf.Rectangle()

	for y := 0; y < area.Size.Height; y++ {
		var line []ansiCell

		length := area.Size.Width
		if g.opts.Compress && !g.opts.PreserveLineLength {
			last := area.Size.Width - 1
			lastAttr := buf.CharAt(buffer.Pos(last, y)).Attribute
			if lastAttr.Background == buffer.PaletteColor(0) {
				for last > 0 {
					c := buf.CharAt(buffer.Pos(last, y))
					if c.Ch != ' ' && c.Ch != 0 && c.Ch != 0xFF {
						break
					}
					if c.Attribute != lastAttr {
						break
					}
					last--
				}
			}
			last++
			if last >= area.Size.Width-1 {
				// A one-cell saving loses to the two-byte line break.
				length = area.Size.Width
			} else {
				length = last
			}
		}

		// Zero-preview tags are invisible yet still extend the line.
		for i := range g.Tags {
			t := &g.Tags[i]
			if t.IsEnabled && t.Position.Y == y {
				length = max(length, t.Position.X+t.Len())
			}
		}

		x := 0
		for x < length {
			tagged := false
			for i := range g.Tags {
				t := &g.Tags[i]
				if t.IsEnabled && t.Position.Y == y && t.Position.X == x {
					for _, ch := range t.ReplacementValue {
						line = append(line, ansiCell{ch: ch, state: state})
					}
					x += t.Len()
					tagged = true
					break
				}
			}
			if tagged {
				continue
			}

			ch := buf.CharAt(buffer.Pos(x, y))
			page := fontMap[ch.FontPage()]
			if ch.IsVisible() {
				newState, sgr := g.colorDiff(buf, ch.Attribute, state)
				state = newState
				line = append(line, ansiCell{ch: ch.Ch, sgr: sgr, fontPage: page, state: state})
			} else {
				line = append(line, ansiCell{ch: ' ', fontPage: page, state: state})
			}
			x++
		}
		result = append(result, line)
	}
	return result
}

// Generate encodes the buffer cells. ScreenPrep/ScreenEnd bracket it.
func (g *StringGenerator) Generate(buf *buffer.TextBuffer) {
	var result []byte

	// Custom fonts in the upload range travel in-band before any cell
	// that uses them.
	for _, slot := range buffer.AnalyzeFontUsage(buf) {
		if slot >= 100 {
			if f := buf.Font(slot); f != nil {
				result = append(result, f.EncodeAsAnsi(int(slot))...)
			}
		}
	}

	fontMap := ansiFontMap(buf)
	cells := g.generateCells(buf, fontMap)
	curFontPage := uint8(0)

	width := buf.Width()
	height := buf.Height()

	for y, line := range cells {
		x := 0
		length := len(line)

		for x < length {
			cell := &line[x]
			if curFontPage != cell.fontPage && !g.opts.ModernTerminal {
				curFontPage = cell.fontPage
				result = append(result, fmt.Sprintf("\x1b[0;%d D", curFontPage)...)
				g.push(&result)
			}

			if len(cell.sgr) > 0 {
				result = append(result, "\x1b["...)
				for i, v := range cell.sgr {
					if i > 0 {
						result = append(result, ';')
					}
					result = append(result, fmt.Sprintf("%d", v)...)
				}
				result = append(result, 'm')
				g.push(&result)
			}

			cellChar := g.cellBytes(cell.ch)

			if g.opts.Compress {
				rle := x + 1
				for rle < length {
					if line[rle].ch != line[x].ch || len(line[rle].sgr) > 0 || line[rle].fontPage != line[x].fontPage {
						break
					}
					rle++
				}
				rle = rle - 1 - x

				if g.opts.UseCursorForward && line[x].ch == ' ' && line[x].state.bgIdx == 0 && !line[x].state.blink {
					seq := fmt.Sprintf("\x1b[%dC", rle+1)
					if len(seq) <= rle {
						g.push(&result)
						result = append(result, seq...)
						g.push(&result)
						x += rle + 1
						continue
					}
				}
				if g.opts.UseRepeatSequences {
					seq := fmt.Sprintf("\x1b[%db", rle)
					if len(seq) <= rle {
						g.push(&result)
						result = append(result, cellChar...)
						result = append(result, seq...)
						g.push(&result)
						x += rle + 1
						continue
					}
				}
			}

			result = append(result, cellChar...)
			g.push(&result)
			x++
		}

		if g.opts.ModernTerminal {
			result = append(result, "\x1b[0m\n"...)
			g.lastLineBreak = len(g.output) + len(result)
		} else if x < width && y+1 < height {
			if g.opts.Compress && x+1 >= width {
				// One padding space wraps the line and beats CRLF.
				result = append(result, ' ')
			} else {
				result = append(result, '\r', '\n')
			}
			g.lastLineBreak = len(g.output) + len(result)
		}
	}
	g.push(&result)
}

func (g *StringGenerator) cellBytes(ch rune) []byte {
	if g.opts.ModernTerminal {
		if ch == 0 {
			return []byte{' '}
		}
		if ch < 256 {
			return []byte(string(cp437ToUnicode[ch]))
		}
		return []byte(string(ch))
	}
	if ch < 256 && strings.IndexByte(ansiControlChars, byte(ch)) >= 0 {
		switch g.opts.ControlChars {
		case ControlEscapePrefix:
			return []byte{0x1B, byte(ch)}
		case ControlFilterOut:
			return []byte{'.'}
		}
	}
	return []byte{byte(ch)}
}

// push moves the pending bytes to the output, breaking the physical
// line first when it would exceed the configured maximum. The break is
// wrapped in save/restore cursor so the visual layout is unaffected.
func (g *StringGenerator) push(result *[]byte) {
	if len(g.output)+len(*result)-g.lastLineBreak > g.maxLineLength {
		g.output = append(g.output, "\x1b[s"...)
		g.output = append(g.output, '\r', '\n')
		g.lastLineBreak = len(g.output)
		g.output = append(g.output, "\x1b[u"...)
	}
	g.output = append(g.output, *result...)
	*result = (*result)[:0]
}

func (g *StringGenerator) pushRaw(data []byte) {
	g.push(&data)
}

// EncodeANSI encodes a buffer to an ANSI byte stream, appending the
// SAUCE record from the options when one is set.
func EncodeANSI(buf *buffer.TextBuffer, opts SaveOptions) []byte {
	g := NewStringGenerator(opts)
	g.Tags = buf.Tags
	g.ScreenPrep(buf)
	g.Generate(buf)
	g.ScreenEnd(buf)
	out := g.Bytes()

	if opts.Sauce != nil {
		s := opts.Sauce
		if s.DataType == 0 {
			s.DataType = SauceDataCharacter
			s.FileType = SauceFileAnsi
		}
		if s.TInfo1 == 0 {
			s.TInfo1 = uint16(buf.Width())
		}
		if s.TInfo2 == 0 {
			s.TInfo2 = uint16(buf.Height())
		}
		s.SetIce(buf.IceMode == buffer.IceColors)
		out = s.Append(out)
	}
	return out
}

// DecodeANSI replays an ANSI byte stream into a fresh buffer and
// returns it with the SAUCE record found at the end, if any.
func DecodeANSI(data []byte) (*buffer.TextBuffer, *Sauce) {
	sauce, trailer := ReadSauce(data)
	payload := data[:len(data)-trailer]

	modern := bytes.HasPrefix(payload, utf8BOM)
	if modern {
		payload = payload[len(utf8BOM):]
	}

	size := buffer.Size{Width: 80, Height: 25}
	if sauce != nil && sauce.DataType == SauceDataCharacter {
		if sauce.TInfo1 > 0 && sauce.TInfo1 <= 4096 {
			size.Width = int(sauce.TInfo1)
		}
		if sauce.TInfo2 > 0 && sauce.TInfo2 <= 4096 {
			size.Height = int(sauce.TInfo2)
		}
	}
	// Size the screen to the content so nothing scrolls away during
	// the replay.
	size.Height = max(size.Height, bytes.Count(payload, []byte{'\n'})+1)

	ts := screen.NewTextScreen(size)
	sink := screen.NewSink(ts)
	sink.ParseUTF8 = modern

	p := parser.NewAnsiParser()
	p.Parse(payload, sink)
	p.Flush(sink)

	buf := ts.Buffer()
	if sauce != nil && sauce.UseIce() || ts.TerminalState().IceColors || hasBrightBackgrounds(buf) {
		buf.IceMode = buffer.IceColors
	} else {
		buf.IceMode = buffer.IceBlink
	}
	return buf, sauce
}

// hasBrightBackgrounds reports whether any cell carries a background
// index above 7. Printing bakes the ice-color promotion into the cells,
// so such cells can only come from an ice stream even after the closing
// mode reset switched the terminal state back to blink.
func hasBrightBackgrounds(buf *buffer.TextBuffer) bool {
	for y := 0; y < buf.Height(); y++ {
		for x := 0; x < buf.Width(); x++ {
			bg := buf.CharAt(buffer.Pos(x, y)).Attribute.Background
			if bg.IsPalette() && bg.Index() > 7 {
				return true
			}
		}
	}
	return false
}
