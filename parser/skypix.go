// Copyright © 2026 Icebox contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: parser/skypix.go
// Summary: SkyPix parser, the Amiga BBS graphics protocol (640x200,
//          8 or 16 colors). Commands are ESC[num;params! sequences; a
//          plain letter terminator selects a small ANSI subset instead.
// Notes: SET_FONT, COMMENT and CRC_TRANSFER carry a trailing string
//        that runs to the next '!'.

package parser

import "fmt"

// amigaColorOffsets remaps the ANSI base color order (black, red,
// green, yellow, blue, magenta, cyan, white) to SkyPix palette slots.
var amigaColorOffsets = [8]uint8{0, 3, 4, 6, 1, 7, 5, 2}

// SkyPix fill modes for AreaFill, matching the Amiga Flood() modes.
type SkypixFillMode uint8

const (
	// FillOutline floods until pixels matching the outline pen.
	FillOutline SkypixFillMode = 0
	// FillColor replaces connected pixels of the starting color.
	FillColor SkypixFillMode = 1
)

// SkypixCrcMode selects the payload type of a CRC XMODEM transfer.
type SkypixCrcMode uint8

const (
	CrcIffBrush       SkypixCrcMode = 1
	CrcIffSound       SkypixCrcMode = 2
	CrcFutureSound    SkypixCrcMode = 3
	CrcGeneralPurpose SkypixCrcMode = 20
)

// SkypixDisplayMode is the bitplane depth of the 640x200 screen.
type SkypixDisplayMode uint8

const (
	DisplayEightColors   SkypixDisplayMode = 1
	DisplaySixteenColors SkypixDisplayMode = 2
)

// SkyPix command numbers on the wire.
const (
	skypixComment        = 0
	skypixSetPixel       = 1
	skypixDrawLine       = 2
	skypixAreaFill       = 3
	skypixRectangleFill  = 4
	skypixEllipse        = 5
	skypixGrabBrush      = 6
	skypixUseBrush       = 7
	skypixMovePen        = 8
	skypixPlaySample     = 9
	skypixSetFont        = 10
	skypixNewPalette     = 11
	skypixResetPalette   = 12
	skypixFilledEllipse  = 13
	skypixDelay          = 14
	skypixSetPenA        = 15
	skypixCrcTransfer    = 16
	skypixSetDisplayMode = 17
	skypixSetPenB        = 18
	skypixPositionCursor = 19
	skypixControllerRet  = 21
	skypixDefineGadget   = 22
	// skypixEndSkypix is an unofficial extension that drops back to ANSI.
	skypixEndSkypix = 23
)

// SkypixCommandKind discriminates SkypixCommand.
type SkypixCommandKind uint8

const (
	SkypixComment SkypixCommandKind = iota
	SkypixSetPixel
	SkypixDrawLine
	SkypixAreaFill
	SkypixRectangleFill
	SkypixEllipse
	SkypixGrabBrush
	SkypixUseBrush
	SkypixMovePen
	SkypixPlaySample
	SkypixSetFont
	SkypixResetFont
	SkypixNewPalette
	SkypixResetPalette
	SkypixFilledEllipse
	SkypixDelay
	SkypixSetPenA
	SkypixCrcTransfer
	SkypixSetDisplayMode
	SkypixSetPenB
	SkypixPositionCursor
	SkypixControllerReturn
	SkypixDefineGadget
	SkypixEndSkypix
)

// SkypixCommand is one decoded SkyPix action. Field use depends on
// Kind; coordinates are pixels on the 640x200 screen.
type SkypixCommand struct {
	Kind SkypixCommandKind

	X, Y           int
	X2, Y2         int
	A, B           int // ellipse radii
	Width, Height  int
	SrcX, SrcY     int
	Minterm, Mask  int
	Speed          int
	Start, End     int
	Loops          int
	Size           int // font height
	Jiffies        int
	Color          int
	Num, Cmd       int // gadget number and bound command
	Controller     int
	Fill           SkypixFillMode
	Crc            SkypixCrcMode
	Display        SkypixDisplayMode
	Colors         []int // NewPalette, Amiga 12-bit 0x0RGB values
	Text           string
}

type skypixState uint8

const (
	skypixDefault skypixState = iota
	skypixGotEscape
	skypixGotBracket
	skypixReadingParams
	skypixReadingString
)

// SkypixParser decodes SkyPix streams. Bytes outside ESC[ sequences
// print as text; control bytes behave as in plain ANSI.
type SkypixParser struct {
	state    skypixState
	params   []int
	current  int
	hasParam bool
	negative bool
	cmdNum   int
	str      []byte
}

func NewSkypixParser() *SkypixParser { return &SkypixParser{} }

func (p *SkypixParser) reset() {
	p.params = p.params[:0]
	p.current = 0
	p.hasParam = false
	p.negative = false
	p.cmdNum = 0
	p.str = p.str[:0]
}

func (p *SkypixParser) pushParam() {
	if !p.hasParam {
		return
	}
	v := p.current
	if p.negative {
		v = -v
	}
	p.params = append(p.params, v)
	p.current = 0
	p.hasParam = false
	p.negative = false
}

func (p *SkypixParser) param(i, def int) int {
	if i < len(p.params) {
		return p.params[i]
	}
	return def
}

// paramMin1 reads a count parameter clamped to at least 1.
func (p *SkypixParser) paramMin1(i int) uint16 {
	n := p.param(i, 1)
	if n < 1 {
		n = 1
	}
	return uint16(n)
}

func (p *SkypixParser) Parse(input []byte, sink CommandSink) {
	start := 0

	flush := func(end int) {
		if start < end {
			sink.Print(input[start:end])
		}
	}

	for i := 0; i < len(input); i++ {
		ch := input[i]

		switch p.state {
		case skypixDefault:
			switch ch {
			case 0x1B:
				flush(i)
				p.state = skypixGotEscape
				p.reset()
				start = i + 1
			case 0x07:
				flush(i)
				sink.Emit(TerminalCommand{Kind: CmdBell})
				start = i + 1
			case 0x08:
				flush(i)
				sink.Emit(TerminalCommand{Kind: CmdBackspace})
				start = i + 1
			case 0x09:
				flush(i)
				sink.Emit(TerminalCommand{Kind: CmdTab})
				start = i + 1
			case 0x0A:
				flush(i)
				sink.Emit(TerminalCommand{Kind: CmdLineFeed})
				start = i + 1
			case 0x0B: // VT moves the cursor up in SkyPix
				flush(i)
				sink.Emit(MoveCursor(Up, 1))
				start = i + 1
			case 0x0C:
				flush(i)
				sink.Emit(TerminalCommand{Kind: CmdFormFeed})
				start = i + 1
			case 0x0D:
				flush(i)
				sink.Emit(TerminalCommand{Kind: CmdCarriageReturn})
				start = i + 1
			case 0x7F:
				flush(i)
				sink.Emit(TerminalCommand{Kind: CmdDelete})
				start = i + 1
			}

		case skypixGotEscape:
			if ch == '[' {
				p.state = skypixGotBracket
			} else {
				sink.Print([]byte{0x1B})
				sink.Print([]byte{ch})
				p.state = skypixDefault
			}
			start = i + 1

		case skypixGotBracket:
			switch {
			case ch >= '0' && ch <= '9':
				p.current = int(ch - '0')
				p.hasParam = true
				p.state = skypixReadingParams
			case ch == '-':
				p.negative = true
				p.hasParam = true
				p.state = skypixReadingParams
			case ch == '!':
				p.emitSkypix(sink)
				p.state = skypixDefault
				start = i + 1
			case isAsciiLetter(ch):
				p.emitAnsiSubset(ch, sink)
				p.state = skypixDefault
				start = i + 1
			default:
				sink.ReportError(malformedSequence("invalid character after CSI"), ErrorLevelWarning)
				p.state = skypixDefault
				start = i + 1
			}

		case skypixReadingParams:
			switch {
			case ch >= '0' && ch <= '9':
				p.current = p.current*10 + int(ch-'0')
				p.hasParam = true
			case ch == '-':
				p.negative = true
				p.hasParam = true
			case ch == ';':
				p.pushParam()
			case ch == '!':
				p.pushParam()
				if len(p.params) == 0 {
					p.emitSkypix(sink)
					p.state = skypixDefault
					start = i + 1
					break
				}
				p.cmdNum = p.params[0]
				p.params = p.params[1:]

				switch p.cmdNum {
				case skypixComment, skypixSetFont, skypixCrcTransfer:
					// Font reset (size 0) carries no trailing name.
					if p.cmdNum == skypixSetFont && len(p.params) > 0 && p.params[0] == 0 {
						p.emitSkypix(sink)
						p.state = skypixDefault
						start = i + 1
					} else {
						p.state = skypixReadingString
					}
				default:
					p.emitSkypix(sink)
					p.state = skypixDefault
					start = i + 1
				}
			case isAsciiLetter(ch):
				p.emitAnsiSubset(ch, sink)
				p.state = skypixDefault
				start = i + 1
			default:
				sink.ReportError(malformedSequence("invalid character in CSI parameter sequence"), ErrorLevelWarning)
				p.state = skypixDefault
				start = i + 1
			}

		case skypixReadingString:
			if ch == '!' {
				p.emitSkypix(sink)
				p.state = skypixDefault
				start = i + 1
			} else {
				p.str = append(p.str, ch)
			}
		}
	}

	if p.state == skypixDefault {
		flush(len(input))
	}
}

func (p *SkypixParser) Flush(CommandSink) {
	p.reset()
	p.state = skypixDefault
}

func isAsciiLetter(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

// checkParams reports an error and fails when fewer than required
// parameters were collected.
func (p *SkypixParser) checkParams(sink CommandSink, name string, required int) bool {
	if len(p.params) < required {
		sink.ReportError(ParseError{
			Kind:    ErrInvalidParameter,
			Command: name,
			Value:   fmt.Sprintf("%d parameters, need %d", len(p.params), required),
		}, ErrorLevelError)
		return false
	}
	return true
}

func (p *SkypixParser) emitSkypix(sink CommandSink) {
	p.pushParam()
	text := string(p.str)

	var cmd SkypixCommand
	switch p.cmdNum {
	case skypixComment:
		cmd = SkypixCommand{Kind: SkypixComment, Text: text}
	case skypixSetPixel:
		if !p.checkParams(sink, "SetPixel", 2) {
			return
		}
		cmd = SkypixCommand{Kind: SkypixSetPixel, X: p.params[0], Y: p.params[1]}
	case skypixDrawLine:
		if !p.checkParams(sink, "DrawLine", 2) {
			return
		}
		cmd = SkypixCommand{Kind: SkypixDrawLine, X: p.params[0], Y: p.params[1]}
	case skypixAreaFill:
		if !p.checkParams(sink, "AreaFill", 3) {
			return
		}
		if p.params[0] != 0 && p.params[0] != 1 {
			sink.ReportError(invalidParameter("AreaFill", uint16(p.params[0])), ErrorLevelError)
			return
		}
		cmd = SkypixCommand{Kind: SkypixAreaFill, Fill: SkypixFillMode(p.params[0]), X: p.params[1], Y: p.params[2]}
	case skypixRectangleFill:
		if !p.checkParams(sink, "RectangleFill", 4) {
			return
		}
		cmd = SkypixCommand{Kind: SkypixRectangleFill, X: p.params[0], Y: p.params[1], X2: p.params[2], Y2: p.params[3]}
	case skypixEllipse:
		if !p.checkParams(sink, "Ellipse", 4) {
			return
		}
		cmd = SkypixCommand{Kind: SkypixEllipse, X: p.params[0], Y: p.params[1], A: p.params[2], B: p.params[3]}
	case skypixGrabBrush:
		if !p.checkParams(sink, "GrabBrush", 4) {
			return
		}
		cmd = SkypixCommand{Kind: SkypixGrabBrush, X: p.params[0], Y: p.params[1], Width: p.params[2], Height: p.params[3]}
	case skypixUseBrush:
		if !p.checkParams(sink, "UseBrush", 8) {
			return
		}
		cmd = SkypixCommand{Kind: SkypixUseBrush, SrcX: p.params[0], SrcY: p.params[1],
			X: p.params[2], Y: p.params[3], Width: p.params[4], Height: p.params[5],
			Minterm: p.params[6], Mask: p.params[7]}
	case skypixMovePen:
		if !p.checkParams(sink, "MovePen", 2) {
			return
		}
		cmd = SkypixCommand{Kind: SkypixMovePen, X: p.params[0], Y: p.params[1]}
	case skypixPlaySample:
		if !p.checkParams(sink, "PlaySample", 4) {
			return
		}
		cmd = SkypixCommand{Kind: SkypixPlaySample, Speed: p.params[0], Start: p.params[1],
			End: p.params[2], Loops: p.params[3]}
	case skypixSetFont:
		if !p.checkParams(sink, "SetFont", 1) {
			return
		}
		if p.params[0] == 0 {
			cmd = SkypixCommand{Kind: SkypixResetFont}
		} else {
			cmd = SkypixCommand{Kind: SkypixSetFont, Size: p.params[0], Text: text}
		}
	case skypixNewPalette:
		if !p.checkParams(sink, "NewPalette", 16) {
			return
		}
		cmd = SkypixCommand{Kind: SkypixNewPalette, Colors: append([]int(nil), p.params...)}
	case skypixResetPalette:
		cmd = SkypixCommand{Kind: SkypixResetPalette}
	case skypixFilledEllipse:
		if !p.checkParams(sink, "FilledEllipse", 4) {
			return
		}
		cmd = SkypixCommand{Kind: SkypixFilledEllipse, X: p.params[0], Y: p.params[1], A: p.params[2], B: p.params[3]}
	case skypixDelay:
		if !p.checkParams(sink, "Delay", 1) {
			return
		}
		cmd = SkypixCommand{Kind: SkypixDelay, Jiffies: p.params[0]}
	case skypixSetPenA:
		cmd = SkypixCommand{Kind: SkypixSetPenA, Color: p.param(0, 2)}
	case skypixCrcTransfer:
		if !p.checkParams(sink, "CrcTransfer", 3) {
			return
		}
		switch p.params[0] {
		case 1, 2, 3, 20:
			cmd = SkypixCommand{Kind: SkypixCrcTransfer, Crc: SkypixCrcMode(p.params[0]),
				Width: p.params[1], Height: p.params[2], Text: text}
		default:
			sink.ReportError(invalidParameter("CrcTransfer", uint16(p.params[0])), ErrorLevelError)
			return
		}
	case skypixSetDisplayMode:
		if !p.checkParams(sink, "SetDisplayMode", 1) {
			return
		}
		switch p.params[0] {
		case 1, 2:
			cmd = SkypixCommand{Kind: SkypixSetDisplayMode, Display: SkypixDisplayMode(p.params[0])}
		default:
			sink.ReportError(invalidParameter("SetDisplayMode", uint16(p.params[0])), ErrorLevelError)
			return
		}
	case skypixSetPenB:
		cmd = SkypixCommand{Kind: SkypixSetPenB, Color: p.param(0, 0)}
	case skypixPositionCursor:
		if !p.checkParams(sink, "PositionCursor", 2) {
			return
		}
		cmd = SkypixCommand{Kind: SkypixPositionCursor, X: p.params[0], Y: p.params[1]}
	case skypixControllerRet:
		if !p.checkParams(sink, "ControllerReturn", 3) {
			return
		}
		cmd = SkypixCommand{Kind: SkypixControllerReturn, Controller: p.params[0], X: p.params[1], Y: p.params[2]}
	case skypixDefineGadget:
		if !p.checkParams(sink, "DefineGadget", 6) {
			return
		}
		cmd = SkypixCommand{Kind: SkypixDefineGadget, Num: p.params[0], Cmd: p.params[1],
			X: p.params[2], Y: p.params[3], X2: p.params[4], Y2: p.params[5]}
	case skypixEndSkypix:
		cmd = SkypixCommand{Kind: SkypixEndSkypix}
	default:
		if p.cmdNum > 0 {
			sink.ReportError(invalidParameter("SkypixCommand", uint16(p.cmdNum)), ErrorLevelError)
		}
		return
	}

	sink.EmitSkypix(cmd)
}

// emitAnsiSubset handles a CSI sequence with a letter terminator. Only
// the small subset SkyPix hosts actually emit is understood.
func (p *SkypixParser) emitAnsiSubset(terminator byte, sink CommandSink) {
	p.pushParam()

	switch terminator {
	case 'A':
		sink.Emit(MoveCursor(Up, p.paramMin1(0)))
	case 'B':
		sink.Emit(MoveCursor(Down, p.paramMin1(0)))
	case 'C':
		sink.Emit(MoveCursor(Right, p.paramMin1(0)))
	case 'D':
		sink.Emit(MoveCursor(Left, p.paramMin1(0)))
	case 'H', 'f':
		sink.Emit(CursorPosition(p.paramMin1(0), p.paramMin1(1)))
	case 'J':
		n := p.param(0, 0)
		if mode, ok := eraseDisplayMode(uint16(n)); ok && n <= 2 {
			sink.Emit(TerminalCommand{Kind: CmdEraseInDisplay, EraseDisplay: mode})
		} else {
			sink.ReportError(invalidParameter("EraseDisplay", uint16(n)), ErrorLevelWarning)
		}
	case 'K':
		n := p.param(0, 0)
		if mode, ok := eraseLineMode(uint16(n)); ok {
			sink.Emit(TerminalCommand{Kind: CmdEraseInLine, EraseLine: mode})
		} else {
			sink.ReportError(invalidParameter("EraseLine", uint16(n)), ErrorLevelWarning)
		}
	case 'm':
		p.emitSgrSubset(sink)
	case 'E':
		sink.Emit(TerminalCommand{Kind: CmdCursorNextLine, N: p.paramMin1(0)})
	case 'F':
		sink.Emit(TerminalCommand{Kind: CmdCursorPreviousLine, N: p.paramMin1(0)})
	case 'G':
		sink.Emit(TerminalCommand{Kind: CmdCursorHorizontalAbsolute, N: p.paramMin1(0)})
	case 'L':
		sink.Emit(TerminalCommand{Kind: CmdInsertLine, N: p.paramMin1(0)})
	case 'M':
		sink.Emit(TerminalCommand{Kind: CmdDeleteLine, N: p.paramMin1(0)})
	case 'P':
		sink.Emit(TerminalCommand{Kind: CmdDeleteCharacter, N: p.paramMin1(0)})
	case 'S':
		sink.Emit(Scroll(Up, p.paramMin1(0)))
	case 'T':
		sink.Emit(Scroll(Down, p.paramMin1(0)))
	case '@':
		sink.Emit(TerminalCommand{Kind: CmdInsertCharacter, N: p.paramMin1(0)})
	}
}

// emitSgrSubset maps the SGR parameters SkyPix supports, remapping
// base colors through the Amiga palette order.
func (p *SkypixParser) emitSgrSubset(sink CommandSink) {
	if len(p.params) == 0 {
		sink.Emit(Sgr(SgrAttribute{Kind: SgrReset}))
		return
	}
	for _, param := range p.params {
		switch {
		case param == 0:
			sink.Emit(Sgr(SgrAttribute{Kind: SgrReset}))
			sink.Emit(TerminalCommand{Kind: CmdSetFontPage, N: 0})
		case param == 1:
			sink.Emit(Sgr(SgrAttribute{Kind: SgrIntensity, Intensity: IntensityBold}))
		case param == 3:
			sink.Emit(Sgr(SgrAttribute{Kind: SgrItalic, On: true}))
		case param == 5:
			sink.Emit(Sgr(SgrAttribute{Kind: SgrBlink, Blink: BlinkSlow}))
		case param == 7:
			sink.Emit(Sgr(SgrAttribute{Kind: SgrInverse, On: true}))
		case param >= 30 && param <= 37:
			sink.Emit(Sgr(SgrAttribute{Kind: SgrForeground, Color: BaseColor(amigaColorOffsets[param-30])}))
		case param >= 40 && param <= 47:
			sink.Emit(Sgr(SgrAttribute{Kind: SgrBackground, Color: BaseColor(amigaColorOffsets[param-40])}))
		default:
			sink.ReportError(invalidParameter("SelectGraphicRendition", uint16(param)), ErrorLevelWarning)
		}
	}
}
