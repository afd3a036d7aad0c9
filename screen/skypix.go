// Copyright © 2026 Icebox contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: screen/skypix.go
// Summary: SkyPix command handler, a small Amiga-style paint engine on
//          the palette raster (pen A/B, brush grab and blit, flood
//          fills matching the Amiga Flood() modes).
// Usage: The sink routes decoded SkyPix commands to HandleSkypix.
// Notes: Brush blits ignore the minterm and mask parameters; the wire
//        protocol carries them but a plain copy is what boards sent.

package screen

import (
	"fmt"
	"math"

	"github.com/icebox-art/icebox/buffer"
	"github.com/icebox-art/icebox/font"
	"github.com/icebox-art/icebox/palette"
	"github.com/icebox-art/icebox/parser"
)

// skyState is the SkyPix paint state. Pen A draws, pen B is the
// background pen, the brush holds the last GrabBrush capture.
type skyState struct {
	penPos    buffer.Position
	penA      uint8
	penB      uint8
	viewport  buffer.Rectangle
	brush     *ripImage
	colorMask uint8
}

func (st *skyState) reset(size buffer.Size) {
	st.penPos = buffer.Position{}
	st.penA = 2
	st.penB = 0
	st.viewport = buffer.Rect(0, 0, size.Width, size.Height)
	st.brush = nil
	st.colorMask = 0x0F
}

func (st *skyState) movePen(x, y int) { st.penPos = buffer.Pos(x, y) }

// putPixel clips against the viewport and masks the color to the
// current display depth.
func (st *skyState) putPixel(s *PaletteScreen, x, y int, color uint8) {
	if !st.viewport.IsInside(buffer.Pos(x, y)) {
		return
	}
	s.SetPixel(x, y, color&st.colorMask)
}

func (st *skyState) line(s *PaletteScreen, x0, y0, x1, y1 int, color uint8) {
	dx := absInt(x1 - x0)
	dy := absInt(y1 - y0)
	sx := 1
	if x0 >= x1 {
		sx = -1
	}
	sy := 1
	if y0 >= y1 {
		sy = -1
	}
	err := dx - dy
	x, y := x0, y0
	for {
		st.putPixel(s, x, y, color)
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

func (st *skyState) lineTo(s *PaletteScreen, x, y int, color uint8) {
	st.line(s, st.penPos.X, st.penPos.Y, x, y, color)
	st.movePen(x, y)
}

// floodFill fills starting at (x, y) per the Amiga Flood() modes:
// outline mode fills everything that is not the boundary color, color
// mode replaces the connected region of the starting color.
func (st *skyState) floodFill(s *PaletteScreen, x, y int, mode parser.SkypixFillMode, fillColor uint8) {
	res := s.Resolution()
	if x < 0 || y < 0 || x >= res.Width || y >= res.Height {
		return
	}
	start := s.Pixel(x, y)
	switch mode {
	case parser.FillOutline:
		if start == fillColor {
			return
		}
		st.floodFillOutline(s, x, y, fillColor, res)
	case parser.FillColor:
		if start == fillColor {
			return
		}
		st.floodFillColor(s, x, y, start, fillColor, res)
	}
}

func (st *skyState) floodFillOutline(s *PaletteScreen, x, y int, outline uint8, res buffer.Size) {
	stack := []buffer.Position{buffer.Pos(x, y)}
	visited := map[buffer.Position]bool{}
	for len(stack) > 0 {
		pos := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if pos.X < 0 || pos.X >= res.Width || pos.Y < 0 || pos.Y >= res.Height {
			continue
		}
		if visited[pos] {
			continue
		}
		visited[pos] = true
		if s.Pixel(pos.X, pos.Y) == outline {
			continue
		}
		st.putPixel(s, pos.X, pos.Y, outline)
		stack = append(stack,
			buffer.Pos(pos.X+1, pos.Y),
			buffer.Pos(pos.X-1, pos.Y),
			buffer.Pos(pos.X, pos.Y+1),
			buffer.Pos(pos.X, pos.Y-1))
	}
}

func (st *skyState) floodFillColor(s *PaletteScreen, x, y int, target, fillColor uint8, res buffer.Size) {
	stack := []buffer.Position{buffer.Pos(x, y)}
	for len(stack) > 0 {
		pos := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if pos.X < 0 || pos.X >= res.Width || pos.Y < 0 || pos.Y >= res.Height {
			continue
		}
		if s.Pixel(pos.X, pos.Y) != target {
			continue
		}
		st.putPixel(s, pos.X, pos.Y, fillColor)
		stack = append(stack,
			buffer.Pos(pos.X+1, pos.Y),
			buffer.Pos(pos.X-1, pos.Y),
			buffer.Pos(pos.X, pos.Y+1),
			buffer.Pos(pos.X, pos.Y-1))
	}
}

// bar fills the inclusive rectangle clipped to the viewport.
func (st *skyState) bar(s *PaletteScreen, left, top, right, bottom int, color uint8) {
	rect := intersectRect(buffer.RectFromCorners(buffer.Pos(left, top), buffer.Pos(right, bottom)), st.viewport)
	if rect.IsEmpty() {
		return
	}
	color &= st.colorMask
	w := s.pixelSize.Width
	for y := rect.Start.Y; y < rect.Start.Y+rect.Size.Height; y++ {
		row := s.raster[y*w+rect.Start.X : y*w+rect.Start.X+rect.Size.Width]
		for i := range row {
			row[i] = color
		}
	}
}

// ellipse draws the outline with the two-region midpoint algorithm.
func (st *skyState) ellipse(s *PaletteScreen, cx, cy, rx, ry int, color uint8) {
	if rx <= 0 || ry <= 0 {
		return
	}
	x, y := 0, ry
	rx2 := int64(rx) * int64(rx)
	ry2 := int64(ry) * int64(ry)
	px := int64(0)
	py := 2 * rx2 * int64(y)

	p := ry2 - rx2*int64(ry) + rx2/4
	for px < py {
		st.putPixel(s, cx+x, cy+y, color)
		st.putPixel(s, cx-x, cy+y, color)
		st.putPixel(s, cx+x, cy-y, color)
		st.putPixel(s, cx-x, cy-y, color)
		x++
		px += 2 * ry2
		if p < 0 {
			p += ry2 + px
		} else {
			y--
			py -= 2 * rx2
			p += ry2 + px - py
		}
	}

	p = ry2*(int64(x)*2+1)*(int64(x)*2+1)/4 + rx2*(int64(y)-1)*(int64(y)-1) - rx2*ry2
	for y >= 0 {
		st.putPixel(s, cx+x, cy+y, color)
		st.putPixel(s, cx-x, cy+y, color)
		st.putPixel(s, cx+x, cy-y, color)
		st.putPixel(s, cx-x, cy-y, color)
		y--
		py -= 2 * rx2
		if p > 0 {
			p += rx2 - py
		} else {
			x++
			px += 2 * ry2
			p += rx2 - py + px
		}
	}
}

// fillEllipse scan-fills row extents and traces the outline on top.
func (st *skyState) fillEllipse(s *PaletteScreen, cx, cy, rx, ry int, color uint8) {
	if rx <= 0 || ry <= 0 {
		return
	}
	for y := -ry; y <= ry; y++ {
		ratio := float64(y) / float64(ry)
		extent := int(math.Round(math.Sqrt(1-ratio*ratio) * float64(rx)))
		for x := -extent; x <= extent; x++ {
			st.putPixel(s, cx+x, cy+y, color)
		}
	}
	st.ellipse(s, cx, cy, rx, ry, color)
}

// grab captures the exclusive pixel region as the current brush.
func (st *skyState) grab(s *PaletteScreen, x0, y0, x1, y1 int) {
	img := &ripImage{width: x1 - x0, height: y1 - y0}
	img.data = make([]uint8, 0, max(0, img.width)*max(0, img.height))
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			img.data = append(img.data, s.Pixel(x, y))
		}
	}
	st.brush = img
}

// blit copies a sub-rect of the brush to the destination.
func (st *skyState) blit(s *PaletteScreen, srcX, srcY, width, height, dstX, dstY int) {
	img := st.brush
	if img == nil {
		return
	}
	for iy := 0; iy < height; iy++ {
		if srcY+iy >= img.height {
			break
		}
		for ix := 0; ix < width; ix++ {
			if srcX+ix >= img.width {
				break
			}
			o := srcX + ix + (srcY+iy)*img.width
			if o >= 0 && o < len(img.data) {
				st.putPixel(s, dstX+ix, dstY+iy, img.data[o])
			}
		}
	}
}

// HandleSkypix applies one decoded SkyPix command to the raster.
func (s *PaletteScreen) HandleSkypix(cmd parser.SkypixCommand) {
	sky := &s.sky
	switch cmd.Kind {
	case parser.SkypixSetPixel:
		sky.putPixel(s, cmd.X, cmd.Y, sky.penA)
		sky.movePen(cmd.X, cmd.Y)

	case parser.SkypixDrawLine:
		sky.lineTo(s, cmd.X, cmd.Y, sky.penA)

	case parser.SkypixAreaFill:
		sky.floodFill(s, cmd.X, cmd.Y, cmd.Fill, sky.penA)

	case parser.SkypixRectangleFill:
		sky.bar(s, cmd.X, cmd.Y, cmd.X2, cmd.Y2, sky.penA)

	case parser.SkypixEllipse:
		sky.ellipse(s, cmd.X, cmd.Y, cmd.A, cmd.B, sky.penA)

	case parser.SkypixFilledEllipse:
		sky.fillEllipse(s, cmd.X, cmd.Y, cmd.A, cmd.B, sky.penA)

	case parser.SkypixGrabBrush:
		sky.grab(s, cmd.X, cmd.Y, cmd.X+cmd.Width, cmd.Y+cmd.Height)

	case parser.SkypixUseBrush:
		sky.blit(s, cmd.SrcX, cmd.SrcY, cmd.Width, cmd.Height, cmd.X, cmd.Y)

	case parser.SkypixMovePen:
		sky.movePen(cmd.X, cmd.Y)

	case parser.SkypixSetFont:
		s.setSkypixFont(cmd.Size)

	case parser.SkypixResetFont:
		s.setDefaultFont()

	case parser.SkypixNewPalette:
		s.setSkypixPalette(cmd.Colors)

	case parser.SkypixResetPalette:
		s.pal = palette.FromColors(palette.SkypixPalette[:])

	case parser.SkypixSetPenA:
		sky.penA = uint8(cmd.Color) & sky.colorMask

	case parser.SkypixSetPenB:
		sky.penB = uint8(cmd.Color) & sky.colorMask

	case parser.SkypixSetDisplayMode:
		if cmd.Display == parser.DisplayEightColors {
			sky.colorMask = 0x07
		} else {
			sky.colorMask = 0x0F
		}

	case parser.SkypixPositionCursor:
		// Cursor coordinates arrive in pixels.
		s.caret.SetPosition(buffer.Pos(cmd.X/s.fontDims.Width, cmd.Y/s.fontDims.Height))

	case parser.SkypixDefineGadget:
		s.AddMouseField(MouseField{
			Rect:        buffer.RectFromCorners(buffer.Pos(cmd.X, cmd.Y), buffer.Pos(cmd.X2, cmd.Y2)),
			HostCommand: fmt.Sprintf("%d", cmd.Cmd),
			Style:       cmd.Num,
		})

	case parser.SkypixComment, parser.SkypixPlaySample, parser.SkypixDelay,
		parser.SkypixCrcTransfer, parser.SkypixControllerReturn,
		parser.SkypixEndSkypix:
		// Audio, pacing and transfer commands have no raster effect.
	}
	s.MarkDirty()
}

// setSkypixFont swaps the text font for one scaled to the requested
// pixel height. The character grid keeps its current dimensions.
func (s *PaletteScreen) setSkypixFont(height int) {
	if height <= 0 {
		return
	}
	f := font.FromAnsiFontPage(0, height)
	if f == nil {
		f = font.Default().ScaleToHeight(height)
	}
	s.fonts[0] = f
	w, h := f.CellSize()
	s.fontDims = buffer.Size{Width: w, Height: h}
}

// setSkypixPalette loads Amiga 12-bit 0x0RGB palette entries.
func (s *PaletteScreen) setSkypixPalette(values []int) {
	if len(values) == 0 {
		return
	}
	colors := make([]palette.Color, len(values))
	for i, v := range values {
		colors[i] = palette.Color{
			R: uint8(v>>8&0xF) * 0x11,
			G: uint8(v>>4&0xF) * 0x11,
			B: uint8(v&0xF) * 0x11,
		}
	}
	s.pal = palette.FromColors(colors)
}
