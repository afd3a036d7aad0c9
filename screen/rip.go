// Copyright © 2026 Icebox contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: screen/rip.go
// Summary: RIPscrip graphics: a Borland BGI style drawing engine over
//          the indexed raster, driven by decoded RIP commands.
// Usage: The sink forwards parser.RipCommand values to HandleRip.
// Notes: Stroked CHR fonts are approximated with the 8x8 bitmap font;
//        the BGI character size acts as a pixel magnification factor.

package screen

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"

	"github.com/icebox-art/icebox/buffer"
	"github.com/icebox-art/icebox/font"
	"github.com/icebox-art/icebox/palette"
	"github.com/icebox-art/icebox/parser"
)

// EGA circles are drawn on non-square pixels; the vertical radius is
// squashed by the 640x350 over 640x480 ratio.
const ripAspect = 350.0 / 480.0 * 1.06

const (
	ripDegToRad = math.Pi / 180.0
	ripRadToDeg = 180.0 / math.Pi
)

type bgiWriteMode uint8

const (
	bgiCopy bgiWriteMode = iota
	bgiXor
	bgiOr
	bgiAnd
	bgiNot
)

func bgiWriteModeFrom(mode int) bgiWriteMode {
	switch mode {
	case 1:
		return bgiXor
	case 2:
		return bgiOr
	case 3:
		return bgiAnd
	case 4:
		return bgiNot
	default:
		return bgiCopy
	}
}

type bgiLineStyle uint8

const (
	bgiLineSolid bgiLineStyle = iota
	bgiLineDotted
	bgiLineCenter
	bgiLineDashed
	bgiLineUser
)

func bgiLineStyleFrom(style int) bgiLineStyle {
	switch style {
	case 1:
		return bgiLineDotted
	case 2:
		return bgiLineCenter
	case 3:
		return bgiLineDashed
	case 4:
		return bgiLineUser
	default:
		return bgiLineSolid
	}
}

var bgiLineMasks = [5]uint16{0xFFFF, 0xCCCC, 0xF878, 0xF8F8, 0xFFFF}

type bgiFillStyle uint8

const (
	bgiFillEmpty bgiFillStyle = iota
	bgiFillSolid
	bgiFillLine
	bgiFillLtSlash
	bgiFillSlash
	bgiFillBkSlash
	bgiFillLtBkSlash
	bgiFillHatch
	bgiFillXHatch
	bgiFillInterleave
	bgiFillWideDot
	bgiFillCloseDot
	bgiFillUser
)

func bgiFillStyleFrom(pattern int) bgiFillStyle {
	if pattern >= 0 && pattern <= int(bgiFillUser) {
		return bgiFillStyle(pattern)
	}
	return bgiFillSolid
}

// 8x8 fill patterns, one row per byte, bit 7 leftmost.
var bgiFillPatterns = [13][8]uint8{
	{0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00}, // empty
	{0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF}, // solid
	{0xFF, 0xFF, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00}, // line
	{0x01, 0x02, 0x04, 0x08, 0x10, 0x20, 0x40, 0x80}, // light slash
	{0xE0, 0xC1, 0x83, 0x07, 0x0E, 0x1C, 0x38, 0x70}, // slash
	{0xF0, 0x78, 0x3C, 0x1E, 0x0F, 0x87, 0xC3, 0xE1}, // backslash
	{0xA5, 0xD2, 0x69, 0xB4, 0x5A, 0x2D, 0x96, 0x4B}, // light backslash
	{0xFF, 0x88, 0x88, 0x88, 0xFF, 0x88, 0x88, 0x88}, // hatch
	{0x81, 0x42, 0x24, 0x18, 0x18, 0x24, 0x42, 0x81}, // cross hatch
	{0xCC, 0x33, 0xCC, 0x33, 0xCC, 0x33, 0xCC, 0x33}, // interleave
	{0x80, 0x00, 0x08, 0x00, 0x80, 0x00, 0x08, 0x00}, // wide dots
	{0x88, 0x00, 0x22, 0x00, 0x88, 0x00, 0x22, 0x00}, // close dots
	{0xAA, 0x55, 0xAA, 0x55, 0xAA, 0x55, 0xAA, 0x55}, // user slot
}

var bgiDefaultUserFill = [8]uint8{0xAA, 0x55, 0xAA, 0x55, 0xAA, 0x55, 0xAA, 0x55}

// Text direction.
const (
	ripDirHorizontal = 0
	ripDirVertical   = 1
)

// Button label orientation.
const (
	btnLabelAbove = iota
	btnLabelLeft
	btnLabelCenter
	btnLabelRight
	btnLabelBelow
)

func btnOrientationFrom(orient int) int {
	switch orient {
	case 0:
		return btnLabelAbove
	case 1:
		return btnLabelLeft
	case 3:
		return btnLabelRight
	case 4:
		return btnLabelBelow
	default:
		return btnLabelCenter
	}
}

// egaPalette is the 64-color EGA hardware palette RIP palette commands
// index into. Bits 0-2 are the high rgb components, bits 3-5 the low.
var egaPalette = buildEGAPalette()

func buildEGAPalette() [64]palette.Color {
	var pal [64]palette.Color
	for i := range pal {
		pal[i] = palette.Color{
			R: 0xAA*uint8((i>>2)&1) + 0x55*uint8((i>>5)&1),
			G: 0xAA*uint8((i>>1)&1) + 0x55*uint8((i>>4)&1),
			B: 0xAA*uint8(i&1) + 0x55*uint8((i>>3)&1),
		}
	}
	return pal
}

var (
	ripFontOnce sync.Once
	ripFontVal  *font.BitFont
)

// ripTextFont is the 8x8 font BGI text output magnifies.
func ripTextFont() *font.BitFont {
	ripFontOnce.Do(func() {
		ripFontVal = font.FromAnsiFontPage(0, 8)
		if ripFontVal == nil {
			ripFontVal = font.Default().ScaleToHeight(8)
		}
	})
	return ripFontVal
}

// ripImage is a grabbed rectangle of palette indices.
type ripImage struct {
	width, height int
	data          []uint8
}

// ripButtonStyle carries the sticky style applied to later buttons.
type ripButtonStyle struct {
	size        buffer.Size
	orientation int
	bevelSize   int

	labelColor  int
	shadowColor int
	bright      int
	dark        int
	surface     int
	underline   int
	corner      int
	group       int

	flags  int
	flags2 int
}

func (st *ripButtonStyle) displayChisel() bool     { return st.flags&8 != 0 }
func (st *ripButtonStyle) displayRecessed() bool   { return st.flags&16 != 0 }
func (st *ripButtonStyle) displayDropShadow() bool { return st.flags&32 != 0 }
func (st *ripButtonStyle) displayBevel() bool      { return st.flags&512 != 0 }
func (st *ripButtonStyle) underlineHotkey() bool   { return st.flags&2048 != 0 }
func (st *ripButtonStyle) displaySunken() bool     { return st.flags&32768 != 0 }

func (st *ripButtonStyle) highlightHotkey() bool { return st.flags2&2 != 0 }
func (st *ripButtonStyle) leftJustify() bool     { return st.flags2&8 != 0 }
func (st *ripButtonStyle) rightJustify() bool    { return st.flags2&16 != 0 }

// bgiState is the drawing state of the BGI engine: pens, patterns,
// viewport and the sticky text and button settings.
type bgiState struct {
	color   uint8
	bkcolor uint8

	writeMode bgiWriteMode

	lineStyle   bgiLineStyle
	linePattern [16]bool
	thickness   int

	fillStyle   bgiFillStyle
	fillColor   uint8
	userPattern [8]uint8

	viewport buffer.Rectangle
	pos      buffer.Position

	fontType  int
	direction int
	charSize  int

	suspendText bool
	image       *ripImage
	button      ripButtonStyle
}

// reset restores the power-on defaults for a raster of the given size.
func (b *bgiState) reset(size buffer.Size) {
	*b = bgiState{
		color:       7,
		thickness:   1,
		charSize:    4,
		userPattern: bgiDefaultUserFill,
		viewport:    buffer.Rect(0, 0, size.Width, size.Height),
	}
	b.setLineStyle(bgiLineSolid)
}

func (b *bgiState) vpLeft() int   { return b.viewport.Start.X }
func (b *bgiState) vpTop() int    { return b.viewport.Start.Y }
func (b *bgiState) vpRight() int  { return b.viewport.Start.X + b.viewport.Size.Width }
func (b *bgiState) vpBottom() int { return b.viewport.Start.Y + b.viewport.Size.Height }

func (b *bgiState) vpContains(x, y int) bool {
	return b.viewport.IsInside(buffer.Pos(x, y))
}

func (b *bgiState) setViewport(x0, y0, x1, y1 int) {
	b.viewport = buffer.Rect(x0, y0, x1-x0, y1-y0)
}

func (b *bgiState) setColor(c uint8)     { b.color = c % 16 }
func (b *bgiState) setBkColor(c uint8)   { b.bkcolor = c % 16 }
func (b *bgiState) setFillColor(c uint8) { b.fillColor = c % 16 }

func (b *bgiState) setLineStyle(style bgiLineStyle) {
	b.lineStyle = style
	mask := bgiLineMasks[style]
	for i := 0; i < 16; i++ {
		b.linePattern[i] = mask&(1<<i) != 0
	}
}

// setLinePattern installs a user line pattern, bit 0 first.
func (b *bgiState) setLinePattern(pattern int) {
	for i := 0; i < 16; i++ {
		b.linePattern[i] = pattern&(1<<i) != 0
	}
}

func (b *bgiState) setTextStyle(fontType, direction, charSize int) {
	b.fontType = fontType
	b.direction = direction
	b.charSize = clamp(charSize, 1, 10)
}

// currentFillPattern resolves the active 8x8 fill pattern.
func (b *bgiState) currentFillPattern() [8]uint8 {
	if b.fillStyle == bgiFillUser {
		return b.userPattern
	}
	return bgiFillPatterns[b.fillStyle]
}

func (b *bgiState) moveTo(x, y int) { b.pos = buffer.Pos(x, y) }

func (b *bgiState) pixel(s *PaletteScreen, x, y int) uint8 { return s.Pixel(x, y) }

// putPixel writes one pixel honoring the viewport and write mode.
func (b *bgiState) putPixel(s *PaletteScreen, x, y int, color uint8) {
	if !b.vpContains(x, y) {
		return
	}
	if x < 0 || y < 0 || x >= s.pixelSize.Width || y >= s.pixelSize.Height {
		return
	}
	idx := color % 16
	if b.writeMode != bgiCopy {
		cur := s.raster[y*s.pixelSize.Width+x]
		switch b.writeMode {
		case bgiXor:
			idx = (cur ^ color) % 16
		case bgiOr:
			idx = (cur | color) % 16
		case bgiAnd:
			idx = (cur & color) % 16
		case bgiNot:
			idx = (^color) & 0x0F
		}
	}
	s.raster[y*s.pixelSize.Width+x] = idx
}

// fillX draws one horizontal run of a styled line, thickness centered
// on the row, advancing the shared line pattern offset per pixel.
func (b *bgiState) fillX(s *PaletteScreen, y, startX, count int, offset *int) {
	startY := y - b.thickness/2
	endY := startY + b.thickness - 1
	endX := startX + count
	if count > 0 {
		endX--
	} else {
		endX++
		*offset -= count
	}
	if startY < 0 {
		startY = 0
	}
	endY = min(endY, b.vpBottom()-1)

	inc := 1
	if count < 0 {
		inc = -1
	}
	if startX > endX {
		startX, endX = endX, startX
	}
	if startX >= b.vpRight() {
		return
	}
	if startX < 0 {
		startX = 0
	}
	endX = min(endX, b.vpRight()-1)

	for x := startX; x <= endX; x++ {
		if b.linePattern[patIndex(*offset)] {
			for cy := startY; cy <= endY; cy++ {
				b.putPixel(s, x, cy, b.color)
			}
		}
		*offset += inc
	}
	if count < 0 {
		*offset -= count
	}
}

func (b *bgiState) fillY(s *PaletteScreen, x, startY, count int, offset *int) {
	startX := x - b.thickness/2
	endX := startX + b.thickness - 1
	endY := startY + count
	if count > 0 {
		endY--
	} else {
		endY++
		*offset -= count
	}
	if startX < 0 {
		startX = 0
	}
	endX = min(endX, b.vpRight()-1)

	if startY > endY {
		startY, endY = endY, startY
	}
	if startY >= b.vpBottom() {
		return
	}
	if startY < 0 {
		startY = 0
	}
	endY = min(endY, b.vpBottom()-1)

	for y := startY; y <= endY; y++ {
		if b.linePattern[patIndex(*offset)] {
			for cx := startX; cx <= endX; cx++ {
				b.putPixel(s, cx, y, b.color)
			}
		}
		*offset++
	}
	if count < 0 {
		*offset += count
	}
}

func patIndex(offset int) int {
	idx := offset % 16
	if idx < 0 {
		idx += 16
	}
	return idx
}

// line draws a styled, possibly thick line with the run-slice
// algorithm, emitting whole horizontal or vertical runs at a time.
func (b *bgiState) line(s *PaletteScreen, x1, y1, x2, y2 int) {
	yDelta := absInt(y2 - y1)
	xDelta := absInt(x2 - x1)
	offset := 0

	switch {
	case xDelta == 0:
		b.fillY(s, x1, min(y1, y2), yDelta+1, &offset)
	case yDelta == 0:
		b.fillX(s, y1, min(x1, x2), xDelta+1, &offset)
	case xDelta >= yDelta:
		var pos buffer.Position
		step := 1
		if y1 < y2 {
			pos = buffer.Pos(x1, y1)
			if x1 > x2 {
				step = -1
			}
		} else {
			pos = buffer.Pos(x2, y2)
			if x2 > x1 {
				step = -1
			}
		}

		wholeStep := (xDelta / yDelta) * step
		adjUp := xDelta % yDelta
		adjDown := yDelta * 2
		errTerm := adjUp - adjDown
		adjUp *= 2

		startLength := wholeStep/2 + step
		endLength := startLength
		if adjUp == 0 && wholeStep&1 == 0 {
			startLength -= step
		}
		if wholeStep&1 != 0 {
			errTerm += yDelta
		}

		b.fillX(s, pos.Y, pos.X, startLength, &offset)
		pos.X += startLength
		pos.Y++
		for i := 0; i < yDelta-1; i++ {
			runLength := wholeStep
			errTerm += adjUp
			if errTerm > 0 {
				runLength += step
				errTerm -= adjDown
			}
			b.fillX(s, pos.Y, pos.X, runLength, &offset)
			pos.X += runLength
			pos.Y++
		}
		b.fillX(s, pos.Y, pos.X, endLength, &offset)
	default:
		var pos buffer.Position
		advance := 1
		if y1 < y2 {
			pos = buffer.Pos(x1, y1)
			if x1 > x2 {
				advance = -1
			}
		} else {
			pos = buffer.Pos(x2, y2)
			if x2 > x1 {
				advance = -1
			}
		}

		wholeStep := yDelta / xDelta
		adjUp := yDelta % xDelta
		adjDown := xDelta * 2
		errTerm := adjUp - adjDown
		adjUp *= 2

		startLength := wholeStep/2 + 1
		endLength := startLength
		if adjUp == 0 && wholeStep&1 == 0 {
			startLength--
		}
		if wholeStep&1 != 0 {
			errTerm += xDelta
		}

		b.fillY(s, pos.X, pos.Y, startLength, &offset)
		pos.Y += startLength
		pos.X += advance
		for i := 0; i < xDelta-1; i++ {
			runLength := wholeStep
			errTerm += adjUp
			if errTerm > 0 {
				runLength++
				errTerm -= adjDown
			}
			b.fillY(s, pos.X, pos.Y, runLength, &offset)
			pos.Y += runLength
			pos.X += advance
		}
		b.fillY(s, pos.X, pos.Y, endLength, &offset)
	}
}

// drawLine is the plain one-pixel Bresenham used by button chrome,
// ignoring line style and thickness.
func (b *bgiState) drawLine(s *PaletteScreen, x0, y0, x1, y1 int, color uint8) {
	dx := absInt(x0 - x1)
	dy := absInt(y0 - y1)
	sx, sy := 1, 1
	if x0 >= x1 {
		sx = -1
	}
	if y0 >= y1 {
		sy = -1
	}
	err := dx - dy

	x, y := x0, y0
	for {
		b.putPixel(s, x, y, color)
		if x == x1 && y == y1 {
			return
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x += sx
		}
		if e2 < dx {
			err += dx
			y += sy
		}
	}
}

func (b *bgiState) rectangle(s *PaletteScreen, left, top, right, bottom int) {
	b.line(s, left, top, right, top)
	b.line(s, left, bottom, right, bottom)
	b.line(s, right, top, right, bottom)
	b.line(s, left, top, left, bottom)
}

func (b *bgiState) bar(s *PaletteScreen, left, top, right, bottom int) {
	b.barRect(s, buffer.Rect(left, top, right-left+1, bottom-top+1))
}

// barRect fills a rectangle with the current fill style. Solid fills
// write rows directly; patterned fills route through putPixel.
func (b *bgiState) barRect(s *PaletteScreen, rect buffer.Rectangle) {
	rect = intersectRect(rect, b.viewport)
	if rect.IsEmpty() {
		return
	}
	right := rect.Start.X + rect.Size.Width
	bottom := rect.Start.Y + rect.Size.Height

	if b.fillStyle == bgiFillSolid {
		w := s.pixelSize.Width
		x0 := max(rect.Start.X, 0)
		x1 := min(right, w)
		if x1 <= x0 {
			return
		}
		for y := max(rect.Start.Y, 0); y < min(bottom, s.pixelSize.Height); y++ {
			row := s.raster[y*w+x0 : y*w+x1]
			for i := range row {
				row[i] = b.fillColor
			}
		}
		return
	}

	pattern := b.currentFillPattern()
	ypat := patRow(rect.Start.Y)
	for y := rect.Start.Y; y < bottom; y++ {
		xpatmask := uint8(128 >> patRow(rect.Start.X))
		row := pattern[ypat]
		for x := rect.Start.X; x < right; x++ {
			col := b.bkcolor
			if row&xpatmask != 0 {
				col = b.fillColor
			}
			b.putPixel(s, x, y, col)
			xpatmask >>= 1
			if xpatmask == 0 {
				xpatmask = 128
			}
		}
		ypat = (ypat + 1) % 8
	}
}

func patRow(v int) int {
	r := v % 8
	if r < 0 {
		r += 8
	}
	return r
}

// floodFill is the BGI seed fill: it expands horizontal spans inside
// the border color, painting the fill pattern over fill and background
// colors as it goes.
func (b *bgiState) floodFill(s *PaletteScreen, startX, startY int, border uint8) {
	if !b.vpContains(startX, startY) {
		return
	}
	if b.pixel(s, startX, startY) == border {
		return
	}

	pattern := b.currentFillPattern()

	vpLeft, vpTop := b.vpLeft(), b.vpTop()
	vpRight, vpBottom := b.vpRight(), b.vpBottom()
	width := b.viewport.Size.Width
	height := b.viewport.Size.Height

	visited := make([]bool, width*height)
	idx := func(x, y int) (int, bool) {
		if x < vpLeft || x >= vpRight || y < vpTop || y >= vpBottom {
			return 0, false
		}
		return (y-vpTop)*width + (x - vpLeft), true
	}

	type savedPoint struct {
		x, y int
	}
	stack := []savedPoint{{startX, startY}}

	for len(stack) > 0 {
		pt := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		x, y := pt.x, pt.y

		if !b.vpContains(x, y) {
			continue
		}
		if b.pixel(s, x, y) == border {
			continue
		}
		if i, ok := idx(x, y); ok && visited[i] {
			continue
		}

		// Walk left to the span start.
		scanX := x
		for scanX > vpLeft {
			nx := scanX - 1
			if b.pixel(s, nx, y) == border {
				break
			}
			if i, ok := idx(nx, y); ok && visited[i] {
				break
			}
			scanX--
		}

		vx := (vpLeft + scanX) & 0x07
		vy := (vpTop + y) & 0x07
		prevY, nextY := y-1, y+1
		iszero := pattern[vy] == 0

		prevActive, nextActive := false, false

		for curX := scanX; curX < vpRight; curX++ {
			if b.pixel(s, curX, y) == border {
				break
			}
			i, ok := idx(curX, y)
			if !ok || visited[i] {
				break
			}

			patternRow := pattern[vy]
			bitMask := uint8(0x80) >> vx
			useFg := patternRow&bitMask != 0
			writeColor := b.bkcolor
			if useFg {
				writeColor = b.fillColor
			}
			b.putPixel(s, curX, y, writeColor)
			visited[i] = true

			if patternRow == 0 || useFg {
				if prevY >= vpTop && !iszero {
					prevPixel := b.pixel(s, curX, prevY)
					pi, pok := idx(curX, prevY)
					prevVisited := !pok || visited[pi]
					if prevActive {
						if prevPixel == border {
							prevActive = false
						}
					} else if curX > vpLeft && curX < vpRight-1 && prevPixel != border && !prevVisited {
						prevActive = true
						stack = append(stack, savedPoint{curX, prevY})
					}
				}
				if nextY < vpBottom && !iszero {
					nextPixel := b.pixel(s, curX, nextY)
					ni, nok := idx(curX, nextY)
					nextVisited := !nok || visited[ni]
					if nextActive {
						if nextPixel == border {
							nextActive = false
						}
					} else if curX > vpLeft && curX < vpRight-1 && nextPixel != border && !nextVisited {
						nextActive = true
						stack = append(stack, savedPoint{curX, nextY})
					}
				}
			}

			vx = (vx + 1) & 0x07
		}
	}
}

// ripBezier flattens a cubic Bezier into cnt segments drawn with the
// current line style.
func (b *bgiState) ripBezier(s *PaletteScreen, x1, y1, x2, y2, x3, y3, x4, y4, cnt int) {
	targets := []int{x1, y1}
	for step := 1; step < cnt; step++ {
		tf := float64(step) / float64(cnt)
		tr := float64(cnt-step) / float64(cnt)
		tfs := tf * tf
		tfstr := tfs * tr
		tfc := tf * tf * tf
		trs := tr * tr
		tftrs := tf * trs
		trc := tr * tr * tr

		x := trc*float64(x1) + 3.0*tftrs*float64(x2) + 3.0*tfstr*float64(x3) + tfc*float64(x4)
		y := trc*float64(y1) + 3.0*tftrs*float64(y2) + 3.0*tfstr*float64(y3) + tfc*float64(y4)
		targets = append(targets, int(x), int(y))
	}
	targets = append(targets, x4, y4)

	for j := 2; j+1 < len(targets); j += 2 {
		b.line(s, targets[j-2], targets[j-1], targets[j], targets[j+1])
	}
}

func (b *bgiState) drawPoly(s *PaletteScreen, points []buffer.Position) {
	if len(points) == 0 {
		return
	}
	last := points[0]
	for _, pt := range points {
		b.line(s, last.X, last.Y, pt.X, pt.Y)
		last = pt
	}
	b.line(s, last.X, last.Y, points[0].X, points[0].Y)
}

func (b *bgiState) drawPolyLine(s *PaletteScreen, points []buffer.Position) {
	if len(points) == 0 {
		return
	}
	last := points[0]
	for _, pt := range points {
		b.line(s, last.X, last.Y, pt.X, pt.Y)
		last = pt
	}
}

// fillPoly scan-fills a polygon: every edge contributes crossing
// points per row, sorted and filled in alternating pairs.
func (b *bgiState) fillPoly(s *PaletteScreen, points []buffer.Position) {
	if len(points) <= 1 {
		return
	}
	if !b.vpContains(points[0].X, points[0].Y) {
		return
	}
	rows := bgiScanRows()
	for i := 1; i < len(points); i++ {
		bgiScanEdge(points[i-1], points[i], rows, false)
	}
	bgiScanEdge(points[len(points)-1], points[0], rows, false)

	if b.fillStyle != bgiFillEmpty {
		for i := 1; i < len(rows); i++ {
			row := rows[i]
			if len(row) == 0 {
				continue
			}
			sort.Ints(row)
			y := i - 1
			on := false
			lastX := -1
			for _, curX := range row {
				if on {
					b.bar(s, lastX, y, curX, y)
				}
				on = !on
				lastX = curX
			}
		}
	}
	if b.color != 0 {
		b.drawPoly(s, points)
	}
}

// Scan rows are indexed by y+1 so row -1 (arc endpoints above the
// screen) has a slot.
func bgiScanRows() [][]int { return make([][]int, 352) }

func bgiAddScanRow(rows [][]int, x, y int) {
	if y < -1 || y > 350 {
		return
	}
	rows[y+1] = append(rows[y+1], x)
}

// bgiScanEdge walks one polygon edge and records the x crossing per
// row. With full set both endpoints are recorded unconditionally,
// which is what sector boundary lines need.
func bgiScanEdge(start, end buffer.Position, rows [][]int, full bool) {
	yDelta := absInt(end.Y - start.Y)

	if full || start.Y < end.Y {
		bgiAddScanRow(rows, start.X, start.Y)
	}
	if yDelta > 0 {
		xDelta := end.X - start.X
		minX := start.X
		if start.Y > end.Y {
			xDelta = start.X - end.X
			minX = end.X
		}
		posY := min(start.Y, end.Y) + 1
		for count := 1; count < yDelta; count++ {
			posX := xDelta*count/yDelta + minX
			if posY >= 0 && posY < len(rows) {
				bgiAddScanRow(rows, posX, posY)
			}
			posY++
		}
	}
	if full || end.Y < start.Y {
		bgiAddScanRow(rows, end.X, end.Y)
	}
}

func (b *bgiState) fillScan(s *PaletteScreen, rows [][]int) {
	for y := 0; y+2 < len(rows); y++ {
		row := rows[y+1]
		if len(row) == 0 {
			continue
		}
		sort.Ints(row)
		b.bar(s, row[0], y, row[len(row)-1], y)
	}
}

func (b *bgiState) drawScan(s *PaletteScreen, rows [][]int) {
	for i, row := range rows {
		if len(row) == 0 {
			continue
		}
		y := i - 1
		last := row[0]
		b.putPixel(s, last, y, b.color)
		for _, x := range row[1:] {
			if x == last {
				continue
			}
			b.putPixel(s, x, y, b.color)
			last = x
		}
	}
}

func (b *bgiState) circle(s *PaletteScreen, x, y, radius int) {
	ry := int(float64(radius) * ripAspect)
	b.ellipse(s, x, y, 0, 360, radius, ry)
}

func (b *bgiState) arc(s *PaletteScreen, x, y, startAngle, endAngle, radius int) {
	ry := int(math.Round(float64(radius) * ripAspect))
	b.ellipse(s, x, y, startAngle, endAngle, radius, ry)
}

// ellipse draws an ellipse arc with McIlroy's algorithm, restricting
// each quadrant's pixels to the requested angle range. Thickness 3
// adds an inner and an outer ring.
func (b *bgiState) ellipse(s *PaletteScreen, x, y, startAngle, endAngle, radiusX, radiusY int) {
	if radiusY == 0 {
		radiusY = 1
		radiusX--
	}
	if radiusX <= 0 {
		radiusX = 1
	}

	ex, ey := 0, radiusY
	a2 := radiusX * radiusX
	b2 := radiusY * radiusY
	crit1 := -(a2/4 + radiusX%2 + b2)
	crit2 := -(b2/4 + radiusY%2 + a2)
	crit3 := -(b2/4 + radiusY%2)
	t := -a2 * ey
	dxt := 2 * b2 * ex
	dyt := -2 * a2 * ey
	d2xt := 2 * b2
	d2yt := 2 * a2

	inv := endAngle < startAngle
	inRange := func(angle int) bool {
		if inv {
			return angle <= endAngle || angle >= startAngle
		}
		return angle >= startAngle && angle <= endAngle
	}

	skip := false
	for ey >= 0 && ex <= radiusX {
		angle := 90
		if ey != 0 {
			angle = int(math.Round(90.0 - math.Atan(float64(ex)/float64(ey))*ripRadToDeg))
		}

		if !skip {
			if ex != 0 || ey != 0 {
				if inRange(180 - angle) {
					b.putPixel(s, x-ex, y-ey, b.color)
				}
			}
			if ex != 0 && ey != 0 {
				if inRange(angle) {
					b.putPixel(s, x+ex, y-ey, b.color)
				}
				if inRange(180 + angle) {
					b.putPixel(s, x-ex, y+ey, b.color)
				}
			}
			if inRange(360 - angle) {
				b.putPixel(s, x+ex, y+ey, b.color)
			}
		}
		skip = false

		if t+b2*ex <= crit1 || t+a2*ey <= crit3 {
			ex++
			dxt += d2xt
			t += dxt
			if !(t+b2*ex <= crit1 || t+a2*ey <= crit3) && t-a2*ey > crit2 {
				skip = true
			}
		} else if t-a2*ey > crit2 {
			ey--
			dyt += d2yt
			t += dyt
			if t+b2*ex <= crit1 || t+a2*ey <= crit3 {
				skip = true
			}
		} else {
			ex++
			dxt += d2xt
			t += dxt
			ey--
			dyt += d2yt
			t += dyt
		}
	}

	if b.thickness == 3 {
		old := b.thickness
		b.thickness = 1
		if radiusX > 1 && radiusY > 1 {
			b.ellipse(s, x, y, startAngle, endAngle, radiusX-1, radiusY-1)
		}
		b.ellipse(s, x, y, startAngle, endAngle, radiusX+1, radiusY+1)
		b.thickness = old
	}
}

// scanEllipse records the ellipse outline into scan rows instead of
// drawing it.
func (b *bgiState) scanEllipse(x, y, startAngle, endAngle, radiusX, radiusY int, rows [][]int) {
	if radiusY == 0 {
		radiusY = 1
		radiusX--
	}
	if radiusX <= 0 {
		radiusX = 1
	}

	ex, ey := 0, radiusY
	a2 := radiusX * radiusX
	b2 := radiusY * radiusY
	crit1 := -(a2/4 + radiusX%2 + b2)
	crit2 := -(b2/4 + radiusY%2 + a2)
	crit3 := -(b2/4 + radiusY%2)
	t := -a2 * ey
	dxt := 2 * b2 * ex
	dyt := -2 * a2 * ey
	d2xt := 2 * b2
	d2yt := 2 * a2

	inv := endAngle < startAngle
	inRange := func(angle int) bool {
		if inv {
			return angle <= endAngle || angle >= startAngle
		}
		return angle >= startAngle && angle <= endAngle
	}

	skip := false
	for ey >= 0 && ex <= radiusX {
		angle := 90
		if ey != 0 {
			angle = int(math.Round(90.0 - math.Atan(float64(ex)/float64(ey))*ripRadToDeg))
		}

		if !skip {
			if ex != 0 || ey != 0 {
				if inRange(180 - angle) {
					bgiAddScanRow(rows, x-ex, y-ey)
				}
			}
			if ex != 0 && ey != 0 {
				if inRange(angle) {
					bgiAddScanRow(rows, x+ex, y-ey)
				}
				if inRange(180 + angle) {
					bgiAddScanRow(rows, x-ex, y+ey)
				}
			}
			if inRange(360 - angle) {
				bgiAddScanRow(rows, x+ex, y+ey)
			}
		}
		skip = false

		if t+b2*ex <= crit1 || t+a2*ey <= crit3 {
			ex++
			dxt += d2xt
			t += dxt
			if !(t+b2*ex <= crit1 || t+a2*ey <= crit3) && t-a2*ey > crit2 {
				skip = true
			}
		} else if t-a2*ey > crit2 {
			ey--
			dyt += d2yt
			t += dyt
			if t+b2*ex <= crit1 || t+a2*ey <= crit3 {
				skip = true
			}
		} else {
			ex++
			dxt += d2xt
			t += dxt
			ey--
			dyt += d2yt
			t += dyt
		}
	}
}

func (b *bgiState) fillEllipse(s *PaletteScreen, x, y, startAngle, endAngle, radiusX, radiusY int) {
	rows := bgiScanRows()
	b.scanEllipse(x, y, startAngle, endAngle, radiusX, radiusY, rows)
	b.fillScan(s, rows)
	b.drawScan(s, rows)
}

// angleEndpoint is the pixel offset of an ellipse point at the given
// angle in degrees, y axis pointing down.
func angleEndpoint(angle, radiusX, radiusY int) buffer.Position {
	return buffer.Pos(
		int(math.Round(math.Cos(float64(angle)*ripDegToRad)*float64(radiusX))),
		-int(math.Round(math.Sin(float64(angle)*ripDegToRad)*float64(radiusY))),
	)
}

// sector fills a pie slice: the arc plus the two boundary lines back
// to the center.
func (b *bgiState) sector(s *PaletteScreen, x, y, startAngle, endAngle, radiusX, radiusY int) {
	center := buffer.Pos(x, y)
	rows := bgiScanRows()
	startPoint := center.Add(angleEndpoint(startAngle, radiusX, radiusY))
	endPoint := center.Add(angleEndpoint(endAngle, radiusX, radiusY))

	oldThickness := b.thickness
	if b.lineStyle != bgiLineSolid {
		b.thickness = 1
	}

	b.scanEllipse(x, y, startAngle, endAngle, radiusX, radiusY, rows)
	bgiScanEdge(center, startPoint, rows, true)
	bgiScanEdge(center, endPoint, rows, true)

	if b.fillStyle != bgiFillEmpty {
		b.fillScan(s, rows)
	}
	if b.lineStyle == bgiLineSolid {
		rows = bgiScanRows()
		b.scanEllipse(x, y, startAngle, endAngle, radiusX, radiusY, rows)
		b.drawScan(s, rows)
	}
	if b.lineStyle != bgiLineSolid {
		b.thickness = oldThickness
	}

	b.line(s, center.X, center.Y, startPoint.X, startPoint.Y)
	b.line(s, center.X, center.Y, endPoint.X, endPoint.Y)
}

func (b *bgiState) pieSlice(s *PaletteScreen, x, y, startAngle, endAngle, radius int) {
	b.sector(s, x, y, startAngle, endAngle, radius, int(float64(radius)*ripAspect))
}

func (b *bgiState) clearDevice(s *PaletteScreen) {
	b.bar(s, 0, 0, s.pixelSize.Width, s.pixelSize.Height)
	b.moveTo(0, 0)
}

func (b *bgiState) clearViewport(s *PaletteScreen) {
	b.barRect(s, b.viewport)
}

// graphDefaults restores the reset-time drawing state: DOS palette,
// full-screen viewport, white pen on black, solid everything.
func (b *bgiState) graphDefaults(s *PaletteScreen) {
	s.pal = palette.DOSDefault()
	b.viewport = buffer.Rect(0, 0, s.pixelSize.Width, s.pixelSize.Height)
	b.setColor(7)
	b.setBkColor(0)
	b.setLineStyle(bgiLineSolid)
	b.userPattern = bgiDefaultUserFill
	b.fillStyle = bgiFillSolid
	b.setFillColor(0)
	b.clearDevice(s)
	b.charSize = 4
	b.fontType = 2
	s.ClearMouseFields()
	b.suspendText = false
}

// magnification is the pixel scale for text. Stroked fonts treat size
// 4 as their natural scale, so they shrink relative to the bitmap
// font's direct magnification.
func (b *bgiState) magnification() int {
	if b.fontType == 0 {
		return max(1, b.charSize)
	}
	return max(1, b.charSize/4)
}

func (b *bgiState) textSize(text string) buffer.Size {
	if text == "" {
		return buffer.Size{}
	}
	mag := b.magnification()
	n := len([]rune(text))
	if b.direction == ripDirVertical {
		return buffer.Size{Width: 8 * mag, Height: n * 8 * mag}
	}
	return buffer.Size{Width: n * 8 * mag, Height: 8 * mag}
}

func (b *bgiState) outText(s *PaletteScreen, text string) {
	b.pos = b.outTextXY(s, b.pos.X, b.pos.Y, text)
}

// outTextXY renders text with the 8x8 bitmap font magnified by the
// character size. Vertical text runs bottom to top.
func (b *bgiState) outTextXY(s *PaletteScreen, x, y int, text string) buffer.Position {
	if text == "" {
		return b.pos
	}
	mag := b.magnification()
	f := ripTextFont()

	xf, yf := x, y
	if b.direction == ripDirVertical {
		yf += b.textSize(text).Height
	}

	for _, c := range text {
		glyph := f.Glyph(c)
		charY := yf
		if b.direction == ripDirVertical {
			charY = yf - 8*mag
		}
		if glyph != nil {
			for gy := 0; gy < 8; gy++ {
				for gx := 0; gx < 8; gx++ {
					if !glyph.Pixel(gx, gy) {
						continue
					}
					for my := 0; my < mag; my++ {
						for mx := 0; mx < mag; mx++ {
							b.putPixel(s, xf+gx*mag+mx, charY+gy*mag+my, b.color)
						}
					}
				}
			}
		}
		if b.direction == ripDirVertical {
			yf -= 8 * mag
		} else {
			xf += 8 * mag
		}
	}
	return buffer.Pos(xf, yf)
}

func (b *bgiState) getImage(s *PaletteScreen, x0, y0, x1, y1 int) *ripImage {
	data := make([]uint8, 0, max(0, (x1-x0)*(y1-y0)))
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			data = append(data, b.pixel(s, x, y))
		}
	}
	return &ripImage{width: x1 - x0, height: y1 - y0, data: data}
}

func (b *bgiState) putImage(s *PaletteScreen, x, y int, img *ripImage, op bgiWriteMode) {
	oldMode := b.writeMode
	b.writeMode = op

	pos := 0
	for iy := 0; iy < img.height; iy++ {
		for ix := 0; ix < img.width; ix++ {
			col := img.data[pos]
			pos++
			if !b.vpContains(x+ix, y+iy) {
				continue
			}
			b.putPixel(s, x+ix, y+iy, col)
		}
	}
	b.writeMode = oldMode
}

func (b *bgiState) putRipImage(s *PaletteScreen, x, y int, op bgiWriteMode) {
	if b.image != nil {
		b.putImage(s, x, y, b.image, op)
	}
}

// setPalette rebuilds the 16-color palette from EGA hardware indices.
func (b *bgiState) setPalette(s *PaletteScreen, colors []int) {
	next := make([]palette.Color, 0, len(colors))
	for _, c := range colors {
		next = append(next, egaPalette[c&63])
	}
	s.pal = palette.FromColors(next)
}

func (b *bgiState) setPaletteColor(s *PaletteScreen, index, value int) {
	if index < 0 || index >= s.pal.Len() || value < 0 || value >= len(egaPalette) {
		return
	}
	s.pal.SetColor(index, egaPalette[value])
}

func chiselInset(height int) (xinset, yinset int) {
	switch {
	case height < 12:
		return 1, 1
	case height < 25:
		return 3, 2
	case height < 40:
		return 4, 3
	case height < 75:
		return 6, 5
	case height < 150:
		return 7, 5
	case height < 200:
		return 8, 6
	case height < 250:
		return 10, 7
	case height < 300:
		return 11, 8
	default:
		return 13, 9
	}
}

func (b *bgiState) renderButtonLabel(s *PaletteScreen, text string, tx, ty, hotkey int, ch, cs, ul uint8) {
	if b.button.displayDropShadow() {
		b.setColor(cs)
		b.outTextXY(s, tx+1, ty+1, text)
	}

	b.setColor(ch)
	b.outTextXY(s, tx, ty, text)

	if hotkey == 0 || hotkey == 255 {
		return
	}
	hk := strings.ToUpper(string(rune(hotkey)))
	runes := []rune(text)
	for i, r := range runes {
		if strings.ToUpper(string(r)) != hk {
			continue
		}
		prefixSize := b.textSize(string(runes[:i]))

		if b.button.highlightHotkey() {
			b.setColor(ul)
			b.outTextXY(s, tx+prefixSize.Width, ty, string(r))
		}
		if b.button.underlineHotkey() {
			hotkeySize := b.textSize(string(r))
			if b.button.displayDropShadow() {
				b.drawLine(s, tx+prefixSize.Width+1, ty+hotkeySize.Height+2,
					tx+prefixSize.Width+hotkeySize.Width, ty+hotkeySize.Height+2, cs)
			}
			b.drawLine(s, tx+prefixSize.Width, ty+hotkeySize.Height+1,
				tx+prefixSize.Width+hotkeySize.Width-1, ty+hotkeySize.Height+1, ul)
		}
		break
	}
}

// addButton registers the mouse field and draws the button chrome the
// style asks for: recessed frame, bevel, surface, sunken border,
// chisel and the label.
func (b *bgiState) addButton(s *PaletteScreen, x1, y1, x2, y2, hotkey int, text, hostCommand string, pressed bool) {
	const bg = 0
	ch := uint8(b.button.labelColor)
	cs := uint8(b.button.dark)
	su := uint8(b.button.surface)
	ul := uint8(b.button.underline)
	cc := uint8(b.button.corner)
	br := uint8(b.button.bright)

	width := x2 - x1 + 1
	height := y2 - y1 + 1
	if x2 == 0 {
		width = b.button.size.Width
		x2 = x1 + width - 1
	}
	if y2 == 0 {
		height = b.button.size.Height
		y2 = y1 + height - 1
	}

	s.AddMouseField(MouseField{
		Rect:        buffer.RectFromCorners(buffer.Pos(x1, y1), buffer.Pos(x2, y2)),
		HostCommand: hostCommand,
		Style:       b.button.flags,
	})

	if b.button.displayRecessed() && !pressed {
		rx1, ry1 := x1-2, y1-2
		rx2, ry2 := x2+2, y2+2

		b.drawLine(s, rx1, ry1, rx2, ry1, cs)
		b.drawLine(s, rx1, ry1, rx1, ry2, cs)
		b.drawLine(s, rx2, ry1, rx2, ry2, br)
		b.drawLine(s, rx1, ry2, rx2, ry2, br)

		b.putPixel(s, rx1, ry1, cc)
		b.putPixel(s, rx2, ry1, cc)
		b.putPixel(s, rx1, ry2, cc)
		b.putPixel(s, rx2, ry2, cc)

		b.drawLine(s, rx1+1, ry1+1, rx2-1, ry1+1, bg)
		b.drawLine(s, rx1+1, ry1+1, rx1+1, ry2-1, bg)
		b.drawLine(s, rx2-1, ry1+1, rx2-1, ry2-1, bg)
		b.drawLine(s, rx1+1, ry2-1, rx2-1, ry2-1, bg)
	}

	if b.button.displayBevel() {
		for i := 1; i <= b.button.bevelSize; i++ {
			b.drawLine(s, x1-i, y1-i, x2+i, y1-i, br)
			b.drawLine(s, x1-i, y1-i, x1-i, y2+i, br)
			b.drawLine(s, x2+i, y2+i, x2+i, y1-i, cs)
			b.drawLine(s, x2+i, y2+i, x1-i, y2+i, cs)
			b.putPixel(s, x1-i, y1-i, cc)
			b.putPixel(s, x2+i, y1-i, cc)
			b.putPixel(s, x1-i, y2+i, cc)
			b.putPixel(s, x2+i, y2+i, cc)
		}
	}

	for y := y1; y <= y2; y++ {
		for x := x1; x <= x2; x++ {
			b.putPixel(s, x, y, su)
		}
	}

	if b.button.displaySunken() {
		if pressed {
			b.drawLine(s, x1, y1, x2, y1, cs)
			b.drawLine(s, x1, y1, x1, y2, cs)
			b.drawLine(s, x2, y2, x2, y1, br)
			b.drawLine(s, x2, y2, x1, y2, br)
		} else {
			b.drawLine(s, x1, y1, x2, y1, br)
			b.drawLine(s, x1, y1, x1, y2, br)
			b.drawLine(s, x2, y2, x2, y1, cs)
			b.drawLine(s, x2, y2, x1, y2, cs)
		}
		b.putPixel(s, x1, y1, cc)
		b.putPixel(s, x2, y1, cc)
		b.putPixel(s, x2, y2, cc)
		b.putPixel(s, x1, y2, cc)
	}

	if b.button.displayChisel() {
		xinset, yinset := chiselInset(y2 - y1 + 1)
		if pressed {
			b.drawLine(s, x1+xinset, y1+yinset, x2-xinset, y1+yinset, cs)
			b.drawLine(s, x1+xinset, y1+yinset, x1+xinset, y2-yinset, cs)
			b.drawLine(s, x1+xinset+1, y2-yinset, x2-xinset, y2-yinset, br)
			b.drawLine(s, x2-xinset, y1+yinset+1, x2-xinset, y2-yinset, br)
		} else {
			b.drawLine(s, x1+xinset, y1+yinset, x2-xinset, y1+yinset, br)
			b.drawLine(s, x1+xinset, y1+yinset, x1+xinset, y2-yinset, br)
			b.drawLine(s, x1+xinset+1, y2-yinset, x2-xinset, y2-yinset, cs)
			b.drawLine(s, x2-xinset, y1+yinset+1, x2-xinset, y2-yinset, cs)
		}
	}

	if text == "" {
		return
	}
	text = strings.TrimPrefix(text, "<>")
	text = strings.TrimSuffix(text, "<>")

	oldColor := b.color
	textSize := b.textSize(text)

	var tx, ty int
	switch b.button.orientation {
	case btnLabelAbove:
		tx = x1 + (width-textSize.Width)/2
		if b.button.leftJustify() {
			tx = x1
		} else if b.button.rightJustify() {
			tx = x1 + width - textSize.Width
		}
		ty = y1 - textSize.Height - 2
	case btnLabelLeft:
		tx = x1 - textSize.Width - 2
		ty = y1 + (height-textSize.Height)/2
	case btnLabelRight:
		tx = x1 + width + 2
		ty = y1 + (height-textSize.Height)/2
	case btnLabelBelow:
		tx = x1 + (width-textSize.Width)/2
		if b.button.leftJustify() {
			tx = x1
		} else if b.button.rightJustify() {
			tx = x1 + width - textSize.Width
		}
		ty = y1 + height + 2
	default:
		tx = x1 + (width-textSize.Width)/2
		ty = y1 + (height-textSize.Height)/2
	}

	b.renderButtonLabel(s, text, tx, ty, hotkey, ch, cs, ul)
	b.setColor(oldColor)
}

// HandleRip executes one decoded RIP command against the raster.
// Icons, macros and file transfer commands have no local effect and
// are accepted as no-ops.
func (s *PaletteScreen) HandleRip(cmd parser.RipCommand) {
	b := &s.bgi
	switch cmd.Kind {
	case parser.RipTextWindow:
		if cmd.X0 == 0 && cmd.Y0 == 0 && cmd.X1 == 0 && cmd.Y1 == 0 && cmd.Size == 0 && !cmd.Wrap {
			b.suspendText = !b.suspendText
		}
		s.ts.SetMarginsTopBottom(cmd.Y0, cmd.Y1)
		s.ts.SetMarginsLeftRight(cmd.X0, cmd.X1)
		s.caret.SetFontPage(uint8(clamp(cmd.Size, 0, 4)))
		s.caret.SetPosition(buffer.Pos(cmd.X0, cmd.Y0))
	case parser.RipViewPort:
		b.setViewport(cmd.X0, cmd.Y0, cmd.X1, cmd.Y1)
	case parser.RipResetWindows:
		s.ts.ClearMarginsTopBottom()
		s.ts.ClearMarginsLeftRight()
		s.ClearScreen()
		s.ResetTerminal()
		b.graphDefaults(s)
	case parser.RipEraseWindow:
		s.ts.ClearMarginsTopBottom()
		s.ts.ClearMarginsLeftRight()
	case parser.RipEraseView:
		b.clearViewport(s)
	case parser.RipGotoXY, parser.RipMove:
		b.moveTo(cmd.X, cmd.Y)
	case parser.RipHome:
		s.caret.SetPosition(buffer.Position{})
	case parser.RipEraseEOL:
		s.ClearLineEnd()
	case parser.RipColor:
		b.setColor(uint8(cmd.Color))
	case parser.RipSetPalette:
		b.setPalette(s, cmd.Colors)
	case parser.RipOnePalette:
		b.setPaletteColor(s, cmd.Color, cmd.Value)
	case parser.RipWriteMode:
		b.writeMode = bgiWriteModeFrom(cmd.Mode)
	case parser.RipText:
		b.outText(s, cmd.Text)
	case parser.RipTextXY:
		b.outTextXY(s, cmd.X, cmd.Y, cmd.Text)
	case parser.RipFontStyle:
		b.setTextStyle(cmd.Font, cmd.Direction, cmd.Size)
	case parser.RipPixel:
		b.putPixel(s, cmd.X, cmd.Y, b.color)
	case parser.RipLine:
		b.line(s, cmd.X0, cmd.Y0, cmd.X1, cmd.Y1)
	case parser.RipRectangle:
		b.rectangle(s, cmd.X0, cmd.Y0, cmd.X1, cmd.Y1)
	case parser.RipBar:
		left, right := min(cmd.X0, cmd.X1), max(cmd.X0, cmd.X1)
		top, bottom := min(cmd.Y0, cmd.Y1), max(cmd.Y0, cmd.Y1)
		b.bar(s, left, top, right, bottom)
	case parser.RipCircle:
		b.circle(s, cmd.X, cmd.Y, cmd.Radius)
	case parser.RipOval, parser.RipOvalArc:
		b.ellipse(s, cmd.X, cmd.Y, cmd.StartAngle, cmd.EndAngle, cmd.XRadius, cmd.YRadius)
	case parser.RipFilledOval:
		b.fillEllipse(s, cmd.X, cmd.Y, 0, 360, cmd.XRadius, cmd.YRadius)
	case parser.RipArc:
		b.arc(s, cmd.X, cmd.Y, cmd.StartAngle, cmd.EndAngle, cmd.Radius)
	case parser.RipPieSlice:
		b.pieSlice(s, cmd.X, cmd.Y, cmd.StartAngle, cmd.EndAngle, cmd.Radius)
	case parser.RipOvalPieSlice:
		b.sector(s, cmd.X, cmd.Y, cmd.StartAngle, cmd.EndAngle, cmd.XRadius, cmd.YRadius)
	case parser.RipBezier:
		if len(cmd.Points) >= 8 {
			p := cmd.Points
			b.ripBezier(s, p[0], p[1], p[2], p[3], p[4], p[5], p[6], p[7], cmd.Count)
		}
	case parser.RipPolygon:
		b.drawPoly(s, ripPoints(cmd.Points))
	case parser.RipFilledPolygon:
		b.fillPoly(s, ripPoints(cmd.Points))
	case parser.RipPolyLine:
		b.drawPolyLine(s, ripPoints(cmd.Points))
	case parser.RipFill:
		b.floodFill(s, cmd.X, cmd.Y, uint8(cmd.Border))
	case parser.RipLineStyle:
		b.setLineStyle(bgiLineStyleFrom(cmd.Style))
		if cmd.Style == 4 {
			b.setLinePattern(cmd.UserPat)
		}
		b.thickness = cmd.Thickness
	case parser.RipFillStyle:
		b.fillStyle = bgiFillStyleFrom(cmd.Pattern)
		b.setFillColor(uint8(cmd.Color))
	case parser.RipFillPattern:
		if len(cmd.Colors) >= 9 {
			for i := 0; i < 8; i++ {
				b.userPattern[i] = uint8(cmd.Colors[i])
			}
			b.fillStyle = bgiFillUser
			b.setFillColor(uint8(cmd.Colors[8]))
		}
	case parser.RipMouse:
		b.addButton(s, cmd.X0, cmd.Y0, cmd.X1, cmd.Y1, 0, fmt.Sprintf("%d", cmd.Num), cmd.Text, false)
	case parser.RipMouseFields:
		s.ClearMouseFields()
	case parser.RipGetImage:
		b.image = b.getImage(s, cmd.X0, cmd.Y0, cmd.X1, cmd.Y1)
	case parser.RipPutImage:
		b.putRipImage(s, cmd.X, cmd.Y, bgiWriteModeFrom(cmd.Mode))
	case parser.RipButtonStyle:
		b.button = ripButtonStyle{
			size:        buffer.Size{Width: cmd.Width, Height: cmd.Height},
			orientation: btnOrientationFrom(cmd.Orientation),
			bevelSize:   cmd.BevelSize,
			labelColor:  cmd.LabelColor,
			shadowColor: cmd.ShadowColor,
			bright:      cmd.Bright,
			dark:        cmd.Dark,
			surface:     cmd.Surface,
			underline:   cmd.UnderlineColor,
			corner:      cmd.CornerColor,
			group:       cmd.Group,
			flags:       cmd.Flags,
			flags2:      cmd.Flags2,
		}
	case parser.RipButton:
		split := strings.Split(cmd.Text, "<>")
		if len(split) >= 2 {
			label := split[0]
			if len(split) >= 4 {
				label = split[1]
			}
			hostCmd := ""
			if len(split) >= 3 {
				hostCmd = split[len(split)-2]
			}
			b.addButton(s, cmd.X0, cmd.Y0, cmd.X1, cmd.Y1, cmd.Hotkey, label, hostCmd, false)
		}
	case parser.RipBeginText, parser.RipRegionText, parser.RipEndText,
		parser.RipWriteIcon, parser.RipLoadIcon, parser.RipDefine,
		parser.RipQuery, parser.RipCopyRegion, parser.RipReadScene,
		parser.RipFileQuery, parser.RipTextVariable, parser.RipNoMore,
		parser.RipEnterBlockMode:
		// Host-side or out-of-scope commands.
	}
	s.MarkDirty()
}

func ripPoints(coords []int) []buffer.Position {
	pts := make([]buffer.Position, 0, len(coords)/2)
	for i := 0; i+1 < len(coords); i += 2 {
		pts = append(pts, buffer.Pos(coords[i], coords[i+1]))
	}
	return pts
}

func intersectRect(a, b buffer.Rectangle) buffer.Rectangle {
	x0 := max(a.Start.X, b.Start.X)
	y0 := max(a.Start.Y, b.Start.Y)
	x1 := min(a.Start.X+a.Size.Width, b.Start.X+b.Size.Width)
	y1 := min(a.Start.Y+a.Size.Height, b.Start.Y+b.Size.Height)
	return buffer.Rect(x0, y0, max(0, x1-x0), max(0, y1-y0))
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
