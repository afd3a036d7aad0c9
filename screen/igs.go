// Copyright © 2026 Icebox contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: screen/igs.go
// Summary: IGS command execution against the raster screen: VDI paint
//          calls, Atari ST palettes and the VT52 text commands carried
//          in the same stream.
// Usage: The sink forwards parser.IgsCommand values to HandleIgs.
// Notes: IG color numbers go through a per-resolution map before they
//        touch the palette; the wire order is not the register order.

package screen

import (
	"strconv"
	"strings"

	"github.com/icebox-art/icebox/buffer"
	"github.com/icebox-art/icebox/palette"
	"github.com/icebox-art/icebox/parser"
)

// igsPalette is the Instant Graphics default drawing palette.
var igsPalette = [16]palette.Color{
	{Name: "white", R: 0xEE, G: 0xEE, B: 0xEE},
	{Name: "red", R: 0xEE, G: 0x00, B: 0x00},
	{Name: "green", R: 0x00, G: 0xEE, B: 0x00},
	{Name: "black", R: 0x00, G: 0x00, B: 0x00},
	{Name: "blue", R: 0x00, G: 0x00, B: 0xEE},
	{Name: "yellow", R: 0xEE, G: 0xEE, B: 0x00},
	{Name: "cyan", R: 0x00, G: 0xEE, B: 0xEE},
	{Name: "light purple", R: 0xAA, G: 0x88, B: 0xCC},
	{Name: "light brown", R: 0xAA, G: 0x66, B: 0x44},
	{Name: "peach", R: 0xEE, G: 0x88, B: 0x66},
	{Name: "sea green", R: 0x00, G: 0x88, B: 0x66},
	{Name: "dark green", R: 0x00, G: 0x66, B: 0x00},
	{Name: "mid gray", R: 0x66, G: 0x66, B: 0x66},
	{Name: "dark brown", R: 0x44, G: 0x22, B: 0x00},
	{Name: "steel blue", R: 0x22, G: 0x66, B: 0x88},
	{Name: "black 2", R: 0x00, G: 0x00, B: 0x00},
}

// igsDesktopPalette is the GEM desktop palette in ST low resolution.
var igsDesktopPalette = [16]palette.Color{
	{Name: "white", R: 0xEE, G: 0xEE, B: 0xEE},
	{Name: "red", R: 0xEE, G: 0x00, B: 0x00},
	{Name: "green", R: 0x00, G: 0xEE, B: 0x00},
	{Name: "yellow", R: 0xEE, G: 0xEE, B: 0x00},
	{Name: "blue", R: 0x00, G: 0x00, B: 0xEE},
	{Name: "magenta", R: 0xEE, G: 0x00, B: 0xEE},
	{Name: "cyan", R: 0x00, G: 0xEE, B: 0xEE},
	{Name: "light gray", R: 0xAA, G: 0xAA, B: 0xAA},
	{Name: "dark gray", R: 0x66, G: 0x66, B: 0x66},
	{Name: "light red", R: 0xEE, G: 0x66, B: 0x66},
	{Name: "light green", R: 0x66, G: 0xEE, B: 0x66},
	{Name: "light yellow", R: 0xEE, G: 0xEE, B: 0x66},
	{Name: "light blue", R: 0x66, G: 0x66, B: 0xEE},
	{Name: "light magenta", R: 0xEE, G: 0x66, B: 0xEE},
	{Name: "light cyan", R: 0x66, G: 0xEE, B: 0xEE},
	{Name: "black", R: 0x00, G: 0x00, B: 0x00},
}

// atariMediumPalette is the 4-color ST medium resolution palette.
var atariMediumPalette = [4]palette.Color{
	{Name: "white", R: 0xEE, G: 0xEE, B: 0xEE},
	{Name: "red", R: 0xEE, G: 0x00, B: 0x00},
	{Name: "green", R: 0x00, G: 0xEE, B: 0x00},
	{Name: "black", R: 0x00, G: 0x00, B: 0x00},
}

// atariHighPalette is the monochrome ST high resolution palette.
var atariHighPalette = [2]palette.Color{
	{Name: "white", R: 0xEE, G: 0xEE, B: 0xEE},
	{Name: "black", R: 0x00, G: 0x00, B: 0x00},
}

// Per-resolution maps from IG color numbers to palette registers. In
// medium and high the pens map directly and palette changes arrive via
// SetPenColor.
var igsLowColorMap = [16]uint8{0, 15, 1, 2, 4, 6, 3, 5, 7, 8, 9, 10, 12, 14, 11, 13}
var igsMediumColorMap = [16]uint8{0, 3, 1, 2, 3, 3, 3, 3, 3, 3, 3, 3, 3, 3, 3, 3}
var igsHighColorMap = [16]uint8{0, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1}

func (s *PaletteScreen) igsColorMap() (int, *[16]uint8) {
	if s.graphics.Kind == GraphicsIgs {
		switch s.graphics.Resolution {
		case ResolutionMedium:
			return 4, &igsMediumColorMap
		case ResolutionHigh:
			return 2, &igsHighColorMap
		}
	}
	return 16, &igsLowColorMap
}

// igsResolutionPalette is the palette a resolution resets to.
func igsResolutionPalette(res TerminalResolution) *palette.Palette {
	switch res {
	case ResolutionMedium:
		return palette.FromColors(atariMediumPalette[:])
	case ResolutionHigh:
		return palette.FromColors(atariHighPalette[:])
	default:
		return palette.FromColors(igsDesktopPalette[:])
	}
}

// ColorSet pen targets.
const (
	igsPenPolymarker = 0
	igsPenLine       = 1
	igsPenFill       = 2
	igsPenText       = 3
)

// HandleIgs executes one decoded IGS command. Sound, flow control and
// host query commands belong to the terminal layer and are ignored
// here.
func (s *PaletteScreen) HandleIgs(cmd parser.IgsCommand) {
	p := &s.paint
	p.resolveRandomParams(&cmd)
	switch cmd.Kind {
	case parser.IgsSetRandomRange:
		p.SetRandomRange(cmd.Params)

	case parser.IgsBox:
		if cmd.Rounded {
			p.DrawRoundedRect(s, cmd.X, cmd.Y, cmd.X2, cmd.Y2)
		} else {
			p.DrawRect(s, cmd.X, cmd.Y, cmd.X2, cmd.Y2)
		}

	case parser.IgsLine:
		p.DrawStyledLine(s, cmd.X, cmd.Y, cmd.X2, cmd.Y2)
		p.SetDrawToPos(buffer.Pos(cmd.X2, cmd.Y2))

	case parser.IgsLineDrawTo:
		pos := p.DrawToPos()
		p.DrawStyledLine(s, pos.X, pos.Y, cmd.X, cmd.Y)
		p.SetDrawToPos(buffer.Pos(cmd.X, cmd.Y))

	case parser.IgsCircle:
		p.FillCircle(s, cmd.X, cmd.Y, cmd.Radius)

	case parser.IgsEllipse:
		p.FillEllipse(s, cmd.X, cmd.Y, cmd.XRadius, cmd.YRadius)

	case parser.IgsArc:
		p.DrawArc(s, cmd.X, cmd.Y, cmd.Radius, cmd.Radius, cmd.StartAngle, cmd.EndAngle)

	case parser.IgsEllipticalArc:
		p.DrawArc(s, cmd.X, cmd.Y, cmd.XRadius, cmd.YRadius, cmd.StartAngle, cmd.EndAngle)

	case parser.IgsPieSlice:
		p.FillPieSlice(s, cmd.X, cmd.Y, cmd.Radius, cmd.StartAngle, cmd.EndAngle)

	case parser.IgsEllipticalPieSlice:
		p.FillEllipticalPieSlice(s, cmd.X, cmd.Y, cmd.XRadius, cmd.YRadius, cmd.StartAngle, cmd.EndAngle)

	case parser.IgsRoundedRectangles:
		p.DrawRoundedRect(s, cmd.X, cmd.Y, cmd.X2, cmd.Y2)

	case parser.IgsFilledRectangle:
		p.FillRect(s, cmd.X, cmd.Y, cmd.X2, cmd.Y2)

	case parser.IgsPolyLine:
		if len(cmd.Points) >= 2 {
			p.DrawPolyline(s, p.LineColor, cmd.Points)
			last := len(cmd.Points) - 2
			p.SetDrawToPos(buffer.Pos(cmd.Points[last], cmd.Points[last+1]))
		}

	case parser.IgsPolyFill:
		p.FillPoly(s, cmd.Points)

	case parser.IgsFloodFill:
		p.FloodFill(s, cmd.X, cmd.Y)

	case parser.IgsPolymarkerPlot:
		p.DrawPolymarker(s, cmd.X, cmd.Y)
		p.SetDrawToPos(buffer.Pos(cmd.X, cmd.Y))

	case parser.IgsColorSet:
		_, cmap := s.igsColorMap()
		mapped := cmap[int(cmd.Color)%len(cmap)]
		switch cmd.Pen {
		case igsPenPolymarker:
			p.PolymarkerColor = mapped
		case igsPenLine:
			p.LineColor = mapped
		case igsPenFill:
			p.FillColor = mapped
		case igsPenText:
			p.TextColor = mapped
		}

	case parser.IgsAttributeForFills:
		p.SetFillPattern(cmd.PatternType, cmd.PatternIndex)
		p.fillBorder = cmd.Border

	case parser.IgsLineStyle:
		if cmd.StyleKind == 1 {
			p.polymarkerType = cmd.Style
			p.polymarkerSize = int(cmd.Value)
		} else {
			p.SetLineKind(cmd.Style)
			if cmd.StyleKind == 2 {
				p.lineThickness = max(int(cmd.Value)%50, 1)
			}
		}

	case parser.IgsSetPenColor:
		size, cmap := s.igsColorMap()
		if int(cmd.Pen) < size {
			mapped := cmap[cmd.Pen]
			s.pal.SetRGB(int(mapped), cmd.Red*34, cmd.Green*34, cmd.Blue*34)
		}

	case parser.IgsDrawingMode:
		p.mode = DrawModeFromVdi(cmd.Mode)

	case parser.IgsHollowSet:
		// True is vsf_interior(0), vswr_mode(2), vsf_perimeter(1);
		// false restores solid replace fills.
		if cmd.Enabled {
			p.SetFillPattern(0, 0)
			p.mode = DrawTransparent
			p.fillBorder = true
		} else {
			p.SetFillPattern(1, 0)
			p.mode = DrawReplace
			p.fillBorder = false
		}

	case parser.IgsWriteText:
		p.WriteText(s, buffer.Pos(cmd.X, cmd.Y), cmd.Text)

	case parser.IgsTextEffects:
		p.SetTextAttributes(cmd.Effects, cmd.Size, cmd.Rotation)

	case parser.IgsGraphicScaling:
		p.scalingMode = cmd.Mode

	case parser.IgsGrabScreen:
		s.igsBlit(cmd)

	case parser.IgsInitialize:
		s.igsInitialize(cmd.Mode)

	case parser.IgsCursor:
		switch cmd.Mode {
		case 0:
			s.caret.Visible = false
		case 1:
			s.caret.Visible = true
		}

	case parser.IgsScreenClear:
		s.igsScreenClear(cmd.Mode)

	case parser.IgsSetResolution:
		s.igsSetResolution(cmd.Resolution, cmd.PaletteSelect)

	case parser.IgsLoadFillPattern:
		if rows := parsePatternRows(cmd.Text); len(rows) > 0 {
			p.LoadUserPattern(cmd.Pattern, rows)
		}

	case parser.IgsSetDrawtoBegin:
		p.SetDrawToPos(buffer.Pos(cmd.X, cmd.Y))

	case parser.IgsDefineZone:
		s.igsDefineZone(cmd)

	case parser.IgsDeleteLine:
		s.RemoveTerminalLine(cmd.Count)

	case parser.IgsInsertLine:
		s.InsertTerminalLine(cmd.Count)

	case parser.IgsClearLine:
		s.ClearLineEnd()

	case parser.IgsCursorMotion:
		pos := s.caret.Position
		switch cmd.Direction {
		case 0:
			pos.Y = max(pos.Y-cmd.Count, 0)
		case 1:
			pos.Y += cmd.Count
		case 2:
			pos.X = max(pos.X-cmd.Count, 0)
		case 3:
			pos.X += cmd.Count
		}
		s.caret.SetPosition(pos)

	case parser.IgsPositionCursor:
		s.caret.SetPosition(buffer.Pos(cmd.X, cmd.Y))

	case parser.IgsRememberCursor:
		s.savedCaretPos = s.caret.Position

	case parser.IgsInverseVideo:
		s.ts.InverseVideo = cmd.Enabled

	case parser.IgsLineWrap:
		s.ts.AutoWrap = cmd.Enabled

	case parser.IgsSetForeground:
		// Direct palette index, not an IG color number.
		s.caret.Attribute.Foreground = buffer.PaletteColor(cmd.Color)

	case parser.IgsSetBackground:
		s.caret.Attribute.Background = buffer.PaletteColor(cmd.Color)

	default:
		// Sound, pauses, loops, input and host queries have no screen
		// effect.
	}
	s.MarkDirty()
}

// GrabScreen blit operation selectors.
const (
	igsBlitScreenToScreen        = 0
	igsBlitScreenToMemory        = 1
	igsBlitMemoryToScreen        = 2
	igsBlitPieceOfMemoryToScreen = 3
	igsBlitMemoryToMemory        = 4
)

func (s *PaletteScreen) igsBlit(cmd parser.IgsCommand) {
	p := &s.paint
	at := func(i int) int {
		if i < len(cmd.Params) {
			return cmd.Params[i]
		}
		return 0
	}
	switch cmd.BlitType {
	case igsBlitScreenToScreen:
		p.BlitScreenToScreen(s, cmd.Mode,
			buffer.Pos(at(0), at(1)), buffer.Pos(at(2), at(3)), buffer.Pos(at(4), at(5)))
	case igsBlitScreenToMemory:
		p.BlitScreenToMemory(s, buffer.Pos(at(0), at(1)), buffer.Pos(at(2), at(3)))
	case igsBlitMemoryToScreen:
		p.BlitMemoryToScreen(s, cmd.Mode, buffer.Pos(at(0), at(1)))
	case igsBlitPieceOfMemoryToScreen:
		p.BlitPieceOfMemoryToScreen(s, cmd.Mode,
			buffer.Pos(at(0), at(1)), buffer.Pos(at(2), at(3)), buffer.Pos(at(4), at(5)))
	case igsBlitMemoryToMemory:
		p.BlitMemoryToMemory(cmd.Mode,
			buffer.Pos(at(0), at(1)), buffer.Pos(at(2), at(3)), buffer.Pos(at(4), at(5)))
	}
}

// Initialize modes.
const (
	igsInitPaletteAndAttributes = 0
	igsInitPaletteOnly          = 1
	igsInitAttributesOnly       = 2
	igsInitIgDefaultPalette     = 3
	igsInitVdiDefaultPalette    = 4
	igsInitResolutionClipping   = 5
)

// igsInitialize only applies in low resolution; the other modes keep
// their fixed hardware palettes.
func (s *PaletteScreen) igsInitialize(mode uint8) {
	if s.graphics.Kind == GraphicsIgs && s.graphics.Resolution != ResolutionLow {
		return
	}
	switch mode {
	case igsInitPaletteAndAttributes:
		s.pal = palette.FromColors(igsDesktopPalette[:])
		s.SetResolution(igsLowSize)
		s.paint.Reset()
	case igsInitPaletteOnly:
		s.pal = palette.FromColors(igsDesktopPalette[:])
	case igsInitAttributesOnly:
		s.paint.Reset()
	case igsInitIgDefaultPalette:
		s.pal = palette.FromColors(igsPalette[:])
	case igsInitVdiDefaultPalette:
		s.pal = igsResolutionPalette(s.graphics.Resolution)
	}
}

// ScreenClear modes.
const (
	igsClearAndHome         = 0
	igsClearHomeToCursor    = 1
	igsClearCursorToBottom  = 2
	igsClearWholeScreen     = 3
	igsClearWholeScreenHome = 4
	igsClearQuickVt52Reset  = 5
)

func (s *PaletteScreen) igsScreenClear(mode uint8) {
	if mode == igsClearQuickVt52Reset && s.graphics.Kind == GraphicsIgs {
		s.pal = igsResolutionPalette(s.graphics.Resolution)
	}
	switch mode {
	case igsClearAndHome, igsClearWholeScreen, igsClearWholeScreenHome, igsClearQuickVt52Reset:
		s.ClearScreen()
	case igsClearCursorToBottom:
		s.ClearScreenDown()
	}
}

// SetResolution palette selectors.
const (
	igsPaletteNoChange   = 0
	igsPaletteDesktop    = 1
	igsPaletteIgDefault  = 2
	igsPaletteVdiDefault = 3
)

func (s *PaletteScreen) igsSetResolution(resolution, paletteSelect uint8) {
	res := TerminalResolution(clamp(int(resolution), 0, int(ResolutionHigh)))
	s.graphics = GraphicsType{Kind: GraphicsIgs, Resolution: res}
	s.paint.SetResolution(res)

	switch res {
	case ResolutionMedium:
		s.SetResolution(igsMediumSize)
		s.pal = palette.FromColors(atariMediumPalette[:])
	case ResolutionHigh:
		s.SetResolution(igsHighSize)
		s.pal = palette.FromColors(atariHighPalette[:])
	default:
		s.SetResolution(igsLowSize)
		switch paletteSelect {
		case igsPaletteDesktop:
			s.pal = palette.FromColors(igsDesktopPalette[:])
		case igsPaletteIgDefault:
			s.pal = palette.FromColors(igsPalette[:])
		case igsPaletteVdiDefault:
			s.pal = igsResolutionPalette(res)
		}
	}
}

// Zone IDs 9997-9999 are control values, not definitions.
func (s *PaletteScreen) igsDefineZone(cmd parser.IgsCommand) {
	switch cmd.ZoneID {
	case 9999:
		s.ClearMouseFields()
	case 9998, 9997:
		// Loopback toggle and single-zone clear are host-side features.
	default:
		s.AddMouseField(MouseField{
			Rect:        buffer.RectFromCorners(buffer.Pos(cmd.X, cmd.Y), buffer.Pos(cmd.X2, cmd.Y2)),
			HostCommand: cmd.Text,
			Style:       igsZoneStyle,
		})
	}
}

// igsZoneStyle marks a mouse field as an IGS zone.
const igsZoneStyle = 1024

// parsePatternRows reads the comma separated 16-bit rows of a
// downloadable fill pattern.
func parsePatternRows(text string) []uint16 {
	var rows []uint16
	for _, field := range strings.Split(text, ",") {
		v, err := strconv.Atoi(strings.TrimSpace(field))
		if err != nil {
			continue
		}
		rows = append(rows, uint16(v))
	}
	return rows
}
