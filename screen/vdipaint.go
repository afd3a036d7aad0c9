// Copyright © 2026 Icebox contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: screen/vdipaint.go
// Summary: GEM VDI style paint engine: patterned lines and fills,
//         curves, flood fill, raster blits and bitmap text on the
//         indexed raster.
// Usage: Owned by PaletteScreen; the IGS handler drives it.
// Notes: Patterns are 16-bit row masks, bit 0x8000 is the leftmost
//        pixel. Line masks rotate per drawn pixel like the ST VDI.

package screen

import (
	"math"
	"math/rand/v2"
	"sort"
	"sync"

	"github.com/icebox-art/icebox/buffer"
	"github.com/icebox-art/icebox/font"
	"github.com/icebox-art/icebox/parser"
)

// DrawMode is the VDI writing mode for fills.
type DrawMode uint8

const (
	// DrawReplace writes fore where the mask is set, back elsewhere.
	DrawReplace DrawMode = iota
	// DrawTransparent writes fore only where the mask is set.
	DrawTransparent
	// DrawXor inverts the destination where the mask is set.
	DrawXor
	// DrawReverseTransparent writes fore where the mask is clear.
	DrawReverseTransparent
)

// DrawModeFromVdi maps the wire value (vswr_mode, 1 based).
func DrawModeFromVdi(mode uint8) DrawMode {
	switch mode {
	case 2:
		return DrawTransparent
	case 3:
		return DrawXor
	case 4:
		return DrawReverseTransparent
	default:
		return DrawReplace
	}
}

// Fill interior styles.
type fillKind uint8

const (
	fillHollow fillKind = iota
	fillSolid
	fillPattern
	fillHatch
	fillUserDefined
)

// Text effect bits, matching the IGS wire values.
const (
	textThickened  = 1
	textGhosted    = 2
	textSkewed     = 4
	textUnderlined = 8
	textOutlined   = 16
)

// Text rotations.
const (
	rotateRight        = 0
	rotateUp           = 1
	rotateLeft         = 2
	rotateDown         = 3
	rotateRightReverse = 4
)

var hollowPattern = []uint16{0x0000}
var solidPattern = []uint16{0xFFFF}

// randomPattern is the VDI "intensity 0" dither, 100 rows of noise.
var randomPattern = []uint16{
	0x1c8c, 0x6987, 0x4b96, 0xbfbc, 0xaa0e, 0x1a66, 0x052b, 0xc73d, 0xf810, 0xad4e,
	0xf44a, 0x49d3, 0x66c9, 0x0677, 0xadf1, 0x718a, 0xb2e4, 0xbf43, 0x2ca1, 0xf3af,
	0x9530, 0xaf5c, 0xb4e8, 0x2ba6, 0x9b5a, 0x75f9, 0x5476, 0x7008, 0x1a3c, 0x923b,
	0x08eb, 0xf214, 0xb30c, 0xafd4, 0x6fcc, 0xdd74, 0x7b9d, 0xd39f, 0x74ca, 0x7866,
	0x4b0f, 0xb865, 0xdff6, 0x3832, 0x26c6, 0x0deb, 0x9c36, 0x182a, 0xd369, 0xae2a,
	0xc5cf, 0x6179, 0xd346, 0x88a0, 0x4ffa, 0xefbf, 0x4afb, 0x3c3f, 0xd4b1, 0x9b87,
	0x0ba9, 0x2a44, 0xb8d4, 0x4550, 0x4a9b, 0x0426, 0x9975, 0xe674, 0x679f, 0x7eac,
	0xda39, 0x27a6, 0xe41d, 0x8794, 0x6a77, 0xfcd3, 0xaf0e, 0x084d, 0x1264, 0x39ce,
	0x14f2, 0x130f, 0x6114, 0xaeeb, 0xd908, 0x7d4c, 0xd74b, 0xb139, 0xbdd3, 0xb642,
	0x9e2b, 0x0c51, 0xccd3, 0x0691, 0xfa29, 0x6f35, 0x45c4, 0x2da8, 0xe7ba, 0x993f,
}

// typePatterns are the 24 standard VDI interior patterns: eight
// intensity dithers followed by the pictorial fills.
var typePatterns = [24][]uint16{
	{0x0000, 0x4444, 0x0000, 0x1111, 0x0000, 0x4444, 0x0000, 0x1111},
	{0x0000, 0x5555, 0x0000, 0x5555, 0x0000, 0x5555, 0x0000, 0x5555},
	{0x8888, 0x5555, 0x2222, 0x5555, 0x8888, 0x5555, 0x2222, 0x5555},
	{0xAAAA, 0x5555, 0xAAAA, 0x5555, 0xAAAA, 0x5555, 0xAAAA, 0x5555},
	{0xAAAA, 0xDDDD, 0xAAAA, 0x7777, 0xAAAA, 0xDDDD, 0xAAAA, 0x7777},
	{0xAAAA, 0xFFFF, 0xAAAA, 0xFFFF, 0xAAAA, 0xFFFF, 0xAAAA, 0xFFFF},
	{0xEEEE, 0xFFFF, 0xBBBB, 0xFFFF, 0xEEEE, 0xFFFF, 0xBBBB, 0xFFFF},
	{0xFFFF, 0xFFFF, 0xFFFF, 0xFFFF, 0xFFFF, 0xFFFF, 0xFFFF, 0xFFFF},
	// brick
	{0xFFFF, 0x8080, 0x8080, 0x8080, 0xFFFF, 0x0808, 0x0808, 0x0808},
	// diagonal bricks
	{0x2020, 0x4040, 0x8080, 0x4141, 0x2222, 0x1414, 0x0808, 0x1010},
	// grass
	{0x0000, 0x0000, 0x1010, 0x2828, 0x0000, 0x0000, 0x0101, 0x8282},
	// trees
	{0x0202, 0x0202, 0xAAAA, 0x5050, 0x2020, 0x2020, 0xAAAA, 0x0505},
	// dashed x's
	{0x4040, 0x8080, 0x0000, 0x0808, 0x0404, 0x0202, 0x0000, 0x2020},
	// cobble stones
	{0x6606, 0xC6C6, 0xD8D8, 0x1818, 0x8181, 0x8DB1, 0x0C33, 0x6000},
	// sand
	{0x0000, 0x0000, 0x0400, 0x0000, 0x0010, 0x0000, 0x8000, 0x0000},
	// rough weave
	{0xF8F8, 0x6C6C, 0xC6C6, 0x8F8F, 0x1F1F, 0x3636, 0x6363, 0xF1F1},
	// quilt
	{0xAAAA, 0x0000, 0x8888, 0x1414, 0x2222, 0x4141, 0x8888, 0x0000},
	// patterned cross
	{0x0808, 0x0000, 0xAAAA, 0x0000, 0x0808, 0x0000, 0x8888, 0x0000},
	// balls
	{0x7777, 0x9898, 0xF8F8, 0xF8F8, 0x7777, 0x8989, 0x8F8F, 0x8F8F},
	// vertical scales
	{0x8080, 0x8080, 0x4141, 0x3E3E, 0x0808, 0x0808, 0x1414, 0xE3E3},
	// diagonal scales
	{0x8181, 0x4242, 0x2424, 0x1818, 0x0606, 0x0101, 0x8080, 0x8080},
	// checker board
	{0xF0F0, 0xF0F0, 0xF0F0, 0xF0F0, 0x0F0F, 0x0F0F, 0x0F0F, 0x0F0F},
	// filled diamond
	{0x0808, 0x1C1C, 0x3E3E, 0x7F7F, 0xFFFF, 0x7F7F, 0x3E3E, 0x1C1C},
	// herringbone
	{0x1111, 0x2222, 0x4444, 0xFFFF, 0x8888, 0x4444, 0x2222, 0xFFFF},
}

var hatchPatterns = [6][]uint16{
	{0x0101, 0x0202, 0x0404, 0x0808, 0x1010, 0x2020, 0x4040, 0x8080},
	{0x6060, 0xC0C0, 0x8181, 0x0303, 0x0606, 0x0C0C, 0x1818, 0x3030},
	{0x4242, 0x8181, 0x8181, 0x4242, 0x2424, 0x1818, 0x1818, 0x2424},
	{0x8080, 0x8080, 0x8080, 0x8080, 0x8080, 0x8080, 0x8080, 0x8080},
	{0xFFFF, 0x0000, 0x0000, 0x0000, 0x0000, 0x0000, 0x0000, 0x0000},
	{0xFFFF, 0x8080, 0x8080, 0x8080, 0x8080, 0x8080, 0x8080, 0x8080},
}

var hatchWidePatterns = [6][]uint16{
	{0x0001, 0x0002, 0x0004, 0x0008, 0x0010, 0x0020, 0x0040, 0x0080,
		0x0100, 0x0200, 0x0400, 0x0800, 0x1000, 0x2000, 0x4000, 0x8000},
	{0x8003, 0x0007, 0x000E, 0x001C, 0x0038, 0x0070, 0x00E0, 0x01C0,
		0x0380, 0x0700, 0x0E00, 0x1C00, 0x3800, 0x7000, 0xE000, 0xC001},
	{0x8001, 0x4002, 0x2004, 0x1008, 0x0810, 0x0420, 0x0240, 0x0180,
		0x0180, 0x0240, 0x0420, 0x0810, 0x1008, 0x2004, 0x4002, 0x8001},
	{0x8000, 0x8000, 0x8000, 0x8000, 0x8000, 0x8000, 0x8000, 0x8000,
		0x8000, 0x8000, 0x8000, 0x8000, 0x8000, 0x8000, 0x8000, 0x8000},
	{0xFFFF, 0x0000, 0x0000, 0x0000, 0x0000, 0x0000, 0x0000, 0x0000,
		0x0000, 0x0000, 0x0000, 0x0000, 0x0000, 0x0000, 0x0000, 0x0000},
	{0xFFFF, 0x8080, 0x8080, 0x8080, 0x8080, 0x8080, 0x8080, 0x8080,
		0xFFFF, 0x8080, 0x8080, 0x8080, 0x8080, 0x8080, 0x8080, 0x8080},
}

// lineStyleMasks by line kind: solid, long dash, dotted, dash-dot,
// dashed, dash-dot-dot.
var lineStyleMasks = [6]uint16{0xFFFF, 0xFFF0, 0xC0C0, 0xFF18, 0xFF00, 0xF191}

const lineKindUser = 6

// registerToPen maps ST hardware color registers to VDI pen numbers.
var registerToPen = [17]uint8{0, 2, 3, 6, 4, 7, 5, 8, 9, 10, 11, 14, 12, 12, 15, 13, 1}

// VdiPaint is the drawing state for one raster screen.
type VdiPaint struct {
	resolution TerminalResolution

	drawToPos buffer.Position

	PolymarkerColor uint8
	LineColor       uint8
	FillColor       uint8
	TextColor       uint8

	textEffects  uint8
	textSize     int
	textRotation uint8

	polymarkerType uint8
	polymarkerSize int
	lineKind       uint8
	userLineMask   uint16
	lineThickness  int
	scalingMode    uint8

	mode DrawMode

	fill        fillKind
	fillPat     []uint16
	fillBorder  bool
	hollow      bool
	userPattern map[uint8][]uint16

	blitBuf  []uint8
	blitSize buffer.Size

	randSmallMin int
	randSmallMax int
	randBigMin   int
	randBigMax   int
}

// Reset restores the VDI defaults: pen 1 everywhere, solid fills,
// replace mode, 9-point text.
func (p *VdiPaint) Reset() {
	p.drawToPos = buffer.Position{}
	p.PolymarkerColor = 1
	p.LineColor = 1
	p.FillColor = 1
	p.TextColor = 1
	p.textEffects = 0
	p.textSize = 9
	p.textRotation = rotateRight
	p.polymarkerType = 1
	p.polymarkerSize = 1
	p.lineKind = 0
	p.userLineMask = 0xFFFF
	p.lineThickness = 1
	p.mode = DrawReplace
	p.fill = fillSolid
	p.fillPat = solidPattern
	p.fillBorder = false
	p.hollow = false
	p.randSmallMin = 0
	p.randSmallMax = 199
	p.randBigMin = 0
	p.randBigMax = 199
}

// SetRandomRange stores the bounds the r and R parameter placeholders
// draw from. Two parameters set the r range; three set the R range,
// where the first parameter repeats the range minimum; four set both
// ranges at once.
func (p *VdiPaint) SetRandomRange(params []int) {
	switch {
	case len(params) >= 4:
		p.randSmallMin = params[0]
		p.randSmallMax = params[1]
		p.randBigMin = params[2]
		p.randBigMax = params[3]
	case len(params) == 3:
		p.randBigMin = params[1]
		p.randBigMax = params[2]
	case len(params) == 2:
		p.randSmallMin = params[0]
		p.randSmallMax = params[1]
	}
}

// resolveRandomParams replaces every r and R placeholder in the
// command with a value drawn from the stored bounds, so the drawing
// code only ever sees concrete coordinates.
func (p *VdiPaint) resolveRandomParams(cmd *parser.IgsCommand) {
	if cmd.Kind == parser.IgsSetRandomRange {
		return
	}
	cmd.X = p.randomValue(cmd.X)
	cmd.Y = p.randomValue(cmd.Y)
	cmd.X2 = p.randomValue(cmd.X2)
	cmd.Y2 = p.randomValue(cmd.Y2)
	cmd.Radius = p.randomValue(cmd.Radius)
	cmd.XRadius = p.randomValue(cmd.XRadius)
	cmd.YRadius = p.randomValue(cmd.YRadius)
	cmd.StartAngle = p.randomValue(cmd.StartAngle)
	cmd.EndAngle = p.randomValue(cmd.EndAngle)
	cmd.Width = p.randomValue(cmd.Width)
	cmd.Height = p.randomValue(cmd.Height)
	cmd.Density = p.randomValue(cmd.Density)
	for i, v := range cmd.Points {
		cmd.Points[i] = p.randomValue(v)
	}
	for i, v := range cmd.Params {
		cmd.Params[i] = p.randomValue(v)
	}
}

// randomValue resolves a parameter placeholder against the stored
// bounds; non-placeholder values pass through unchanged.
func (p *VdiPaint) randomValue(v int) int {
	switch v {
	case parser.IgsRandomSmall:
		return randWithin(p.randSmallMin, p.randSmallMax)
	case parser.IgsRandomBig:
		return randWithin(p.randBigMin, p.randBigMax)
	default:
		return v
	}
}

func randWithin(min, max int) int {
	if max <= min {
		return min
	}
	return min + rand.IntN(max-min+1)
}

func (p *VdiPaint) SetResolution(res TerminalResolution) { p.resolution = res }

func (p *VdiPaint) lineMask() uint16 {
	if p.lineKind >= lineKindUser {
		return p.userLineMask
	}
	return lineStyleMasks[p.lineKind]
}

// SetLineKind maps the wire style value. 0 and 1 are both solid;
// anything past the dash-dot-dot style selects the user mask.
func (p *VdiPaint) SetLineKind(style uint8) {
	switch style {
	case 0, 1:
		p.lineKind = 0
	case 2, 3, 4, 5, 6:
		p.lineKind = style - 1
	default:
		p.lineKind = lineKindUser
	}
}

// SetFillPattern selects the interior style: 0 hollow, 1 solid,
// 2 pattern, 3 hatch, 4 user defined.
func (p *VdiPaint) SetFillPattern(patternType, index uint8) {
	switch patternType {
	case 0:
		p.fill = fillHollow
	case 2:
		p.fill = fillPattern
	case 3:
		p.fill = fillHatch
	case 4:
		p.fill = fillUserDefined
	default:
		p.fill = fillSolid
	}

	switch p.fill {
	case fillHollow:
		p.fillPat = hollowPattern
	case fillPattern:
		switch {
		case index == 0:
			p.fillPat = randomPattern
		case index >= 1 && index <= 24:
			p.fillPat = typePatterns[index-1]
		default:
			p.fillPat = solidPattern
		}
	case fillHatch:
		switch {
		case index >= 1 && index <= 6:
			p.fillPat = hatchPatterns[index-1]
		case index >= 7 && index <= 12:
			p.fillPat = hatchWidePatterns[index-7]
		default:
			p.fillPat = solidPattern
		}
	case fillUserDefined:
		if pat, ok := p.userPattern[index]; ok && len(pat) > 0 {
			p.fillPat = pat
		} else {
			p.fillPat = randomPattern
		}
	default:
		p.fillPat = solidPattern
	}
	p.hollow = p.fill == fillHollow
}

// LoadUserPattern stores a downloadable fill pattern.
func (p *VdiPaint) LoadUserPattern(slot uint8, rows []uint16) {
	if p.userPattern == nil {
		p.userPattern = map[uint8][]uint16{}
	}
	p.userPattern[slot] = rows
}

func rotl16(v uint16) uint16 { return v<<1 | v>>15 }

func rotl16n(v uint16, n int) uint16 {
	n &= 15
	return v<<n | v>>(16-n)
}

// fillPixel paints one interior pixel honoring pattern and write mode.
func (p *VdiPaint) fillPixel(s *PaletteScreen, x, y int) {
	row := p.fillPat[((y%len(p.fillPat))+len(p.fillPat))%len(p.fillPat)]
	mask := row&(0x8000>>(((x%16)+16)%16)) != 0

	switch p.mode {
	case DrawReplace, DrawTransparent:
		if mask {
			s.SetPixel(x, y, p.FillColor)
		}
	case DrawXor:
		src := uint8(0x00)
		if mask {
			src = 0xFF
		}
		s.SetPixel(x, y, (src^s.Pixel(x, y))&0x0F)
	case DrawReverseTransparent:
		if !mask {
			s.SetPixel(x, y, p.FillColor)
		}
	}
}

func (p *VdiPaint) drawVLine(s *PaletteScreen, x, y0, y1 int, color uint8, mask uint16) {
	if y1 < y0 {
		y0, y1 = y1, y0
	}
	for y := y0; y <= y1; y++ {
		mask = rotl16(mask)
		if mask&1 != 0 {
			s.SetPixel(x, y, color)
		}
	}
}

func (p *VdiPaint) drawHLine(s *PaletteScreen, y, x0, x1 int, color uint8, mask uint16) {
	mask = rotl16n(mask, x0&0x0F)
	for x := x0; x <= x1; x++ {
		mask = rotl16(mask)
		if mask&1 != 0 {
			s.SetPixel(x, y, color)
		}
	}
}

// DrawLine is the VDI Bresenham with the style mask rotated per pixel.
func (p *VdiPaint) DrawLine(s *PaletteScreen, x0, y0, x1, y1 int, color uint8, mask uint16) {
	if x1 < x0 {
		x0, x1 = x1, x0
		y0, y1 = y1, y0
	}
	if x0 == x1 {
		p.drawVLine(s, x0, y0, y1, color, mask)
		return
	}
	if y0 == y1 {
		p.drawHLine(s, y0, x0, x1, color, mask)
		return
	}

	dx := x1 - x0
	dy := y1 - y0
	yinc := 1
	if dy < 0 {
		dy = -dy
		yinc = -1
	}

	x, y := x0, y0
	if dx >= dy {
		eps := -dx
		e1, e2 := 2*dy, 2*dx
		for ; dx >= 0; dx-- {
			mask = rotl16(mask)
			if mask&1 != 0 {
				s.SetPixel(x, y, color)
			}
			x++
			eps += e1
			if eps >= 0 {
				eps -= e2
				y += yinc
			}
		}
	} else {
		eps := -dy
		e1, e2 := 2*dx, 2*dy
		for ; dy >= 0; dy-- {
			mask = rotl16(mask)
			if mask&1 != 0 {
				s.SetPixel(x, y, color)
			}
			y += yinc
			eps += e1
			if eps >= 0 {
				eps -= e2
				x++
			}
		}
	}
}

// DrawStyledLine draws with the current line color and style and moves
// the draw-to position.
func (p *VdiPaint) DrawStyledLine(s *PaletteScreen, x0, y0, x1, y1 int) {
	p.DrawLine(s, x0, y0, x1, y1, p.LineColor, p.lineMask())
}

// DrawToPos is the last endpoint of a Line or LineDrawTo.
func (p *VdiPaint) DrawToPos() buffer.Position       { return p.drawToPos }
func (p *VdiPaint) SetDrawToPos(pos buffer.Position) { p.drawToPos = pos }

// circleAspect corrects the Y radius for the non-square ST pixels.
func (p *VdiPaint) circleAspect(xrad int) int {
	xsize := 372
	switch p.resolution {
	case ResolutionLow:
		xsize = 338
	case ResolutionMedium:
		xsize = 169
	}
	return xrad * xsize / 372
}

// gdpCurve samples an elliptical arc into a flat x,y point list.
// Angles are tenths of a degree; the step count scales with the radius
// like the GEM clc_nsteps does.
func gdpCurve(xm, ym, xr, yr, begAng, endAng int) []int {
	steps := clamp(max(xr, yr)/2, 16, 70)
	span := endAng - begAng
	for span < 0 {
		span += 3600
	}
	if span == 0 {
		span = 3600
	}
	steps = max(steps*span/3600, 1)

	points := make([]int, 0, (steps+1)*2)
	for i := 0; i <= steps; i++ {
		ang := float64(begAng+span*i/steps) * math.Pi / 1800
		x := xm + int(math.Round(float64(xr)*math.Cos(ang)))
		y := ym - int(math.Round(float64(yr)*math.Sin(ang)))
		points = append(points, x, y)
	}
	return points
}

// DrawPoly draws a point list, optionally closing it.
func (p *VdiPaint) DrawPoly(s *PaletteScreen, points []int, color uint8, close bool) {
	if len(points) < 4 {
		return
	}
	mask := p.lineMask()
	x, y := points[0], points[1]
	for i := 2; i+1 < len(points); i += 2 {
		nx, ny := points[i], points[i+1]
		p.DrawLine(s, x, y, nx, ny, color, mask)
		x, y = nx, ny
	}
	if close {
		p.DrawLine(s, x, y, points[0], points[1], color, mask)
	}
}

// DrawPolyline draws an open point list with the current line style.
func (p *VdiPaint) DrawPolyline(s *PaletteScreen, color uint8, points []int) {
	p.DrawPoly(s, points, color, false)
}

// FillPoly scan fills a polygon bottom to top, the way the VDI does.
// A hollow interior only strokes the outline.
func (p *VdiPaint) FillPoly(s *PaletteScreen, points []int) {
	if len(points) < 6 {
		return
	}
	if p.hollow {
		p.DrawPoly(s, points, p.FillColor, true)
		return
	}

	const maxVertices = 512
	yMin, yMax := points[1], points[1]
	for i := 3; i < len(points); i += 2 {
		yMin = min(yMin, points[i])
		yMax = max(yMax, points[i])
	}

	pointCnt := len(points) / 2
	var edges []int
	for y := yMax; y > yMin; y-- {
		edges = edges[:0]
		for i := 0; i < pointCnt; i++ {
			next := i + 1
			if next >= pointCnt {
				next = 0
			}
			y1 := points[i*2+1]
			y2 := points[next*2+1]
			dy := y2 - y1
			dy1 := y - y1
			dy2 := y - y2

			// Both deltas on the same side means no intersection;
			// the origin of this test is Newman and Sproull.
			if dy1^dy2 >= 0 {
				continue
			}
			x1 := points[i*2]
			x2 := points[next*2]
			dx := (x2 - x1) << 1
			if len(edges) >= maxVertices {
				break
			}
			var a int
			if dx < 0 {
				a = (dy2*dx/dy+1)>>1 + x2
			} else {
				a = (dy1*dx/dy+1)>>1 + x1
			}
			edges = append(edges, a)
		}

		if len(edges) < 2 {
			continue
		}
		sort.Ints(edges)
		for j := 0; j+1 < len(edges); j += 2 {
			for x := edges[j]; x <= edges[j+1]; x++ {
				p.fillPixel(s, x, y)
			}
		}
	}
	if p.fill == fillSolid {
		p.DrawPoly(s, points, p.FillColor, true)
	}
}

// FillRect fills the inclusive rectangle with the interior pattern.
func (p *VdiPaint) FillRect(s *PaletteScreen, x0, y0, x1, y1 int) {
	if y0 > y1 {
		y0, y1 = y1, y0
	}
	if x0 > x1 {
		x0, x1 = x1, x0
	}
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			p.fillPixel(s, x, y)
		}
	}
}

// DrawRect fills and optionally strokes the perimeter.
func (p *VdiPaint) DrawRect(s *PaletteScreen, x0, y0, x1, y1 int) {
	p.FillRect(s, x0, y0, x1, y1)
	if p.fillBorder {
		c := p.LineColor
		p.DrawLine(s, x0, y0, x0, y1, c, 0xFFFF)
		p.DrawLine(s, x1, y0, x1, y1, c, 0xFFFF)
		p.DrawLine(s, x0, y0, x1, y0, c, 0xFFFF)
		p.DrawLine(s, x0, y1, x1, y1, c, 0xFFFF)
	}
}

func (p *VdiPaint) DrawCircle(s *PaletteScreen, xm, ym, r int) {
	p.DrawPoly(s, gdpCurve(xm, ym, r, p.circleAspect(r), 0, 3600), p.LineColor, false)
}

func (p *VdiPaint) FillCircle(s *PaletteScreen, xm, ym, r int) {
	p.FillPoly(s, gdpCurve(xm, ym, r, max(p.circleAspect(r), 1), 0, 3600))
	if p.fillBorder {
		p.DrawCircle(s, xm, ym, r)
	}
}

func (p *VdiPaint) DrawEllipse(s *PaletteScreen, xm, ym, a, b int) {
	p.DrawPoly(s, gdpCurve(xm, ym, a, b, 0, 3600), p.LineColor, false)
}

func (p *VdiPaint) FillEllipse(s *PaletteScreen, xm, ym, a, b int) {
	p.FillPoly(s, gdpCurve(xm, ym, a, b, 0, 3600))
	if p.fillBorder {
		p.DrawEllipse(s, xm, ym, a, b)
	}
}

// DrawArc strokes an elliptical arc; angles are degrees.
func (p *VdiPaint) DrawArc(s *PaletteScreen, xm, ym, a, b, begAng, endAng int) {
	p.DrawPoly(s, gdpCurve(xm, ym, a, b, begAng*10, endAng*10), p.LineColor, false)
}

// FillPieSlice fills a circular wedge, border on request.
func (p *VdiPaint) FillPieSlice(s *PaletteScreen, xm, ym, radius, begAng, endAng int) {
	yr := p.circleAspect(radius)
	points := append(gdpCurve(xm, ym, radius, yr, begAng*10, endAng*10), xm, ym)
	p.FillPoly(s, points)
	if p.fillBorder {
		p.DrawPoly(s, points, p.LineColor, true)
	}
}

// FillEllipticalPieSlice fills an elliptical wedge, border on request.
func (p *VdiPaint) FillEllipticalPieSlice(s *PaletteScreen, xm, ym, xr, yr, begAng, endAng int) {
	points := append(gdpCurve(xm, ym, xr, yr, begAng*10, endAng*10), xm, ym)
	p.FillPoly(s, points)
	if p.fillBorder {
		p.DrawPoly(s, points, p.LineColor, true)
	}
}

// RoundRect strokes or fills a rectangle with quarter-ellipse corners.
func (p *VdiPaint) RoundRect(s *PaletteScreen, x1, y1, x2, y2 int, filled bool) {
	if x1 > x2 {
		x1, x2 = x2, x1
	}
	if y1 < y2 {
		y1, y2 = y2, y1
	}

	xRadius := min(s.Resolution().Width>>6, (x2-x1)/2) - 1
	yRadius := min(p.circleAspect(xRadius), (y1-y2)/2)

	const (
		isin225 = 12539
		isin450 = 23170
		isin675 = 30273
	)
	xOff := [5]int{0, isin225 * xRadius / 32767, isin450 * xRadius / 32767, isin675 * xRadius / 32767, xRadius}
	yOff := [5]int{yRadius, isin675 * yRadius / 32767, isin450 * yRadius / 32767, isin225 * yRadius / 32767, 0}

	var points []int

	xc := x2 - xRadius
	yc := y2 + yRadius
	for i := 0; i < 5; i++ {
		points = append(points, xc+xOff[i], yc-yOff[i])
	}
	yc = y1 - yRadius
	for i := 0; i < 5; i++ {
		points = append(points, xc+xOff[4-i], yc+yOff[4-i])
	}
	xc = x1 + xRadius
	for i := 0; i < 5; i++ {
		points = append(points, xc-xOff[i], yc+yOff[i])
	}
	yc = y2 + yRadius
	for i := 0; i < 5; i++ {
		points = append(points, xc-xOff[4-i], yc-yOff[4-i])
	}
	points = append(points, points[0], points[1])

	if filled {
		p.FillPoly(s, points)
	} else {
		p.DrawPoly(s, points, p.LineColor, false)
	}
}

// DrawRoundedRect fills and optionally strokes the outline.
func (p *VdiPaint) DrawRoundedRect(s *PaletteScreen, x1, y1, x2, y2 int) {
	p.RoundRect(s, x1, y1, x2, y2, true)
	if p.fillBorder {
		p.RoundRect(s, x1, y1, x2, y2, false)
	}
}

// FloodFill replaces the connected region of the start pixel's color.
func (p *VdiPaint) FloodFill(s *PaletteScreen, x0, y0 int) {
	res := s.Resolution()
	if x0 < 0 || y0 < 0 || x0 >= res.Width || y0 >= res.Height {
		return
	}
	old := s.Pixel(x0, y0)
	col := p.FillColor
	if old == col {
		return
	}

	stack := []buffer.Position{{X: x0, Y: y0}}
	for len(stack) > 0 {
		pos := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if pos.X < 0 || pos.Y < 0 || pos.X >= res.Width || pos.Y >= res.Height {
			continue
		}
		if s.Pixel(pos.X, pos.Y) != old {
			continue
		}
		s.SetPixel(pos.X, pos.Y, col)
		stack = append(stack,
			buffer.Pos(pos.X-1, pos.Y),
			buffer.Pos(pos.X+1, pos.Y),
			buffer.Pos(pos.X, pos.Y-1),
			buffer.Pos(pos.X, pos.Y+1))
	}
}

// Polymarker shapes, each: line count, then per line a point count and
// the relative coordinates.
var polymarkerShapes = [6][]int{
	{1, 2, 0, 0, 0, 0},
	{2, 2, 0, -3, 0, 3, 2, -4, 0, 4, 0},
	{3, 2, 0, -3, 0, 3, 2, 3, 2, -3, -2, 2, 3, -2, -3, 2},
	{1, 5, -4, -3, 4, -3, 4, 3, -4, 3, -4, -3},
	{2, 2, -4, -3, 4, 3, 2, -4, 3, 4, -3},
	{1, 5, -4, 0, 0, -3, 4, 0, 0, 3, -4, 0},
}

// DrawPolymarker stamps the current marker shape at a point, always
// with a solid line.
func (p *VdiPaint) DrawPolymarker(s *PaletteScreen, x0, y0 int) {
	shape := polymarkerShapes[clamp(int(p.polymarkerType)-1, 0, 5)]
	numLines := shape[0]
	i := 1
	oldKind := p.lineKind
	p.lineKind = 0
	for l := 0; l < numLines; l++ {
		numPoints := shape[i]
		i++
		pts := make([]int, 0, numPoints*2)
		for n := 0; n < numPoints; n++ {
			pts = append(pts, shape[i]+x0, shape[i+1]+y0)
			i += 2
		}
		p.DrawPolyline(s, p.PolymarkerColor, pts)
	}
	p.lineKind = oldKind
}

// blitPx combines source and destination indices in one of the 16 GEM
// raster modes.
func blitPx(mode uint8, s, d uint8) uint8 {
	var out uint8
	switch mode & 0x0F {
	case 0: // clear
		out = 0
	case 1:
		out = s & d
	case 2:
		out = s & ^d
	case 3: // replace
		out = s
	case 4: // erase
		out = ^s & d
	case 5: // unchanged
		out = d
	case 6:
		out = s ^ d
	case 7: // transparent
		out = s | d
	case 8:
		out = ^(s | d)
	case 9:
		out = ^(s ^ d)
	case 10:
		out = ^d
	case 11:
		out = s | ^d
	case 12:
		out = ^s
	case 13: // reverse transparent
		out = ^s | d
	case 14:
		out = ^(s & d)
	case 15: // fill
		out = 1
	}
	return out & 0x0F
}

type blitRegion struct {
	x, y          int
	width, height int
}

func blitRegionFromCorners(p1, p2 buffer.Position) blitRegion {
	x1, x2 := min(p1.X, p2.X), max(p1.X, p2.X)
	y1, y2 := min(p1.Y, p2.Y), max(p1.Y, p2.Y)
	return blitRegion{x: x1, y: y1, width: x2 - x1 + 1, height: y2 - y1 + 1}
}

func (r *blitRegion) clip(width, height int) bool {
	if r.x >= width || r.y >= height {
		return false
	}
	if r.x+r.width > width {
		r.width = width - r.x
	}
	if r.y+r.height > height {
		r.height = height - r.y
	}
	return r.width > 0 && r.height > 0
}

func (r *blitRegion) adjustNegativeDest(dest *buffer.Position) bool {
	if dest.X < 0 {
		off := -dest.X
		if off >= r.width {
			return false
		}
		r.x += off
		r.width -= off
		dest.X = 0
	}
	if dest.Y < 0 {
		off := -dest.Y
		if off >= r.height {
			return false
		}
		r.y += off
		r.height -= off
		dest.Y = 0
	}
	return true
}

func copyRegion(src []uint8, pitch int, region blitRegion) []uint8 {
	out := make([]uint8, 0, region.width*region.height)
	for y := 0; y < region.height; y++ {
		off := (region.y+y)*pitch + region.x
		out = append(out, src[off:off+region.width]...)
	}
	return out
}

func blitToBuffer(src []uint8, srcW, srcH int, region blitRegion, dst []uint8, dstW, dstH int, dest buffer.Position, mode uint8) {
	if !region.adjustNegativeDest(&dest) {
		return
	}
	if !region.clip(srcW, srcH) {
		return
	}
	if dest.X >= dstW || dest.Y >= dstH {
		return
	}
	copyW := min(region.width, dstW-dest.X)
	copyH := min(region.height, dstH-dest.Y)
	for y := 0; y < copyH; y++ {
		for x := 0; x < copyW; x++ {
			srcOff := (region.y+y)*srcW + region.x + x
			dstOff := (dest.Y+y)*dstW + dest.X + x
			dst[dstOff] = blitPx(mode, src[srcOff], dst[dstOff])
		}
	}
}

// BlitScreenToScreen copies a screen region onto itself through the
// blit modes, reading the source fully before writing.
func (p *VdiPaint) BlitScreenToScreen(s *PaletteScreen, mode uint8, from, to, dest buffer.Position) {
	res := s.Resolution()
	region := blitRegionFromCorners(from, to)
	if !region.clip(res.Width, res.Height) {
		return
	}
	src := copyRegion(s.raster, res.Width, region)
	srcRegion := blitRegion{width: region.width, height: region.height}
	blitToBuffer(src, region.width, region.height, srcRegion, s.raster, res.Width, res.Height, dest, mode)
}

// BlitScreenToMemory snapshots a screen region into the blit buffer.
func (p *VdiPaint) BlitScreenToMemory(s *PaletteScreen, from, to buffer.Position) {
	res := s.Resolution()
	region := blitRegionFromCorners(from, to)
	if !region.clip(res.Width, res.Height) {
		return
	}
	p.blitBuf = copyRegion(s.raster, res.Width, region)
	p.blitSize = buffer.Size{Width: region.width, Height: region.height}
}

// BlitMemoryToScreen pastes the whole blit buffer.
func (p *VdiPaint) BlitMemoryToScreen(s *PaletteScreen, mode uint8, dest buffer.Position) {
	res := s.Resolution()
	region := blitRegion{width: p.blitSize.Width, height: p.blitSize.Height}
	blitToBuffer(p.blitBuf, p.blitSize.Width, p.blitSize.Height, region, s.raster, res.Width, res.Height, dest, mode)
}

// BlitPieceOfMemoryToScreen pastes part of the blit buffer.
func (p *VdiPaint) BlitPieceOfMemoryToScreen(s *PaletteScreen, mode uint8, from, to, dest buffer.Position) {
	res := s.Resolution()
	region := blitRegionFromCorners(from, to)
	blitToBuffer(p.blitBuf, p.blitSize.Width, p.blitSize.Height, region, s.raster, res.Width, res.Height, dest, mode)
}

// BlitMemoryToMemory blits within the blit buffer itself.
func (p *VdiPaint) BlitMemoryToMemory(mode uint8, from, to, dest buffer.Position) {
	region := blitRegionFromCorners(from, to)
	if !region.clip(p.blitSize.Width, p.blitSize.Height) {
		return
	}
	tmp := copyRegion(p.blitBuf, p.blitSize.Width, region)
	srcRegion := blitRegion{width: region.width, height: region.height}
	blitToBuffer(tmp, region.width, region.height, srcRegion, p.blitBuf, p.blitSize.Width, p.blitSize.Height, dest, mode)
}

// atariFontMetrics pairs a derived ST font with its baseline offset.
type atariFontMetrics struct {
	yOff int
	font *font.BitFont
}

var atariFontsOnce sync.Once
var atariFonts map[int]atariFontMetrics

// atariFont resolves a VDI point size to the ST font size ladder.
func atariFont(textSize int) atariFontMetrics {
	atariFontsOnce.Do(func() {
		base := font.Default()
		atariFonts = map[int]atariFontMetrics{
			6:  {yOff: 3, font: base.ScaleToHeight(6)},
			8:  {yOff: 6, font: base.ScaleToHeight(8)},
			11: {yOff: 11, font: base.ScaleToHeight(11)},
			12: {yOff: 8, font: base.ScaleToHeight(12)},
			16: {yOff: 12, font: base.ScaleToHeight(16)},
			22: {yOff: 28, font: base.ScaleToHeight(22)},
		}
	})
	switch {
	case textSize <= 8:
		return atariFonts[6]
	case textSize == 9:
		return atariFonts[8]
	case textSize <= 15:
		return atariFonts[11]
	case textSize <= 17:
		return atariFonts[12]
	case textSize <= 19:
		return atariFonts[16]
	default:
		return atariFonts[22]
	}
}

// SetTextAttributes applies a text effects command.
func (p *VdiPaint) SetTextAttributes(effects, size, rotation uint8) {
	p.textEffects = effects
	p.textSize = int(size)
	p.textRotation = rotation
}

// WriteText renders bitmap text with the current effects. The ghost
// effect drops every other mask bit, thicken doubles set pixels to the
// right, skew shears the upper rows.
func (p *VdiPaint) WriteText(s *PaletteScreen, textPos buffer.Position, text string) {
	metrics := atariFont(p.textSize)
	f := metrics.font
	fw, fh := f.CellSize()

	pos := textPos
	pos.Y -= metrics.yOff

	color := p.TextColor
	drawMask := uint16(0xFFFF)
	if p.textEffects&textGhosted != 0 {
		drawMask = 0x5555
	}

	for _, ch := range text {
		glyph := f.Glyph(ch)
		for y := 0; y < fh; y++ {
			for x := 0; x < fw; x++ {
				drawMask = rotl16(drawMask)
				if glyph == nil || !glyph.Pixel(x, y) {
					continue
				}
				if drawMask&1 == 0 {
					continue
				}
				skew := 0
				if p.textEffects&textSkewed != 0 {
					skew = (fh-1-y)/2 - y%2
				}
				px, py := pos.X+x+skew, pos.Y+y
				s.SetPixel(px, py, color)
				if p.textEffects&textThickened != 0 {
					s.SetPixel(px+1, py, color)
				}
			}
			drawMask = rotl16(drawMask)
		}

		if p.textEffects&textUnderlined != 0 {
			y := fh - 1
			for x := 0; x < fw; x++ {
				s.SetPixel(pos.X+x, pos.Y+y, color)
				if p.textEffects&textThickened != 0 {
					s.SetPixel(pos.X+x+1, pos.Y+y, color)
				}
			}
		}

		switch p.textRotation {
		case rotateUp:
			pos.Y -= fh
		case rotateDown:
			pos.Y += fh
		case rotateLeft:
			pos.X -= fw
		default:
			pos.X += fw
		}
	}
}
