// Copyright © 2026 Icebox contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: parser/ansi.go
// Summary: Resumable ANSI/VT100 escape sequence parser.
// Usage: Feed arbitrary byte chunks to Parse; sequence state survives
//        across calls so input may split anywhere.
// Notes: CSI intermediates (? > ! = * $ SP) each get their own state.
//        DCS covers CTerm font uploads, DEC macros and sixel payloads.

package parser

import "encoding/base64"

type ansiState uint8

const (
	ansiGround ansiState = iota
	ansiEscape
	ansiCsiEntry
	ansiCsiParam
	// CSI with a specific intermediate byte.
	ansiCsiDecPrivate // CSI ? ...
	ansiCsiAsterisk   // CSI ... *
	ansiCsiDollar     // CSI ... $
	ansiCsiSpace      // CSI ... SP
	ansiCsiGreater    // CSI > ...
	ansiCsiExclaim    // CSI ! ...
	ansiCsiEquals     // CSI = ...
	// String states.
	ansiOscString
	ansiDcsString
	ansiDcsEscape
	ansiApsString
	ansiApsEscape
)

const ctermFontPrefix = "CTerm:Font:"

// AnsiParser decodes ANSI/VT100 escape sequences into terminal
// commands. DEC macros defined via DCS are stored on the parser and
// replayed when invoked with CSI {n} * z.
type AnsiParser struct {
	state  ansiState
	params []uint16
	buf    []byte
	macros map[int][]byte
}

func NewAnsiParser() *AnsiParser {
	return &AnsiParser{macros: make(map[int][]byte)}
}

func (p *AnsiParser) reset() {
	p.params = p.params[:0]
	p.state = ansiGround
}

// param returns the i-th parameter or def when absent.
func (p *AnsiParser) param(i int, def uint16) uint16 {
	if i < len(p.params) {
		return p.params[i]
	}
	return def
}

// pushDigit appends a decimal digit to the parameter under construction.
func (p *AnsiParser) pushDigit(b byte) {
	d := uint16(b - '0')
	if n := len(p.params); n > 0 {
		p.params[n-1] = p.params[n-1]*10 + d
	} else {
		p.params = append(p.params, d)
	}
}

func (p *AnsiParser) Parse(input []byte, sink CommandSink) {
	i := 0
	printableStart := 0

	for i < len(input) {
		b := input[i]

		switch p.state {
		case ansiGround:
			if kind := controlLUT[b]; b == 0x1B || kind != ctlNone {
				if i > printableStart {
					sink.Print(input[printableStart:i])
				}
				if b == 0x1B {
					p.state = ansiEscape
				} else {
					sink.Emit(TerminalCommand{Kind: controlCommands[kind]})
				}
				i++
				printableStart = i
			} else {
				i++
			}

		case ansiEscape:
			switch b {
			case '[':
				p.params = p.params[:0]
				p.state = ansiCsiEntry
			case ']':
				p.buf = p.buf[:0]
				p.state = ansiOscString
			case 'P':
				p.buf = p.buf[:0]
				p.state = ansiDcsString
			case '_':
				p.buf = p.buf[:0]
				p.state = ansiApsString
			case 'D':
				sink.Emit(TerminalCommand{Kind: CmdIndex})
				p.reset()
			case 'E':
				sink.Emit(TerminalCommand{Kind: CmdNextLine})
				p.reset()
			case 'H':
				sink.Emit(TerminalCommand{Kind: CmdSetTab})
				p.reset()
			case 'M':
				sink.Emit(TerminalCommand{Kind: CmdReverseIndex})
				p.reset()
			case '7':
				sink.Emit(TerminalCommand{Kind: CmdSaveCursor})
				p.reset()
			case '8':
				sink.Emit(TerminalCommand{Kind: CmdRestoreCursor})
				p.reset()
			case 'c':
				sink.Emit(TerminalCommand{Kind: CmdReset})
				p.reset()
			default:
				sink.ReportError(malformedSequence("unknown or malformed escape sequence"), ErrorLevelError)
				p.reset()
			}
			i++
			printableStart = i

		case ansiCsiEntry:
			switch {
			case b >= '0' && b <= '9':
				p.params = append(p.params, uint16(b-'0'))
				p.state = ansiCsiParam
				i++
			case b == ';':
				p.params = append(p.params, 0)
				i++
			case b == '?':
				p.state = ansiCsiDecPrivate
				i++
			case b == '>':
				p.state = ansiCsiGreater
				i++
			case b == '!':
				p.state = ansiCsiExclaim
				i++
			case b == '=':
				p.state = ansiCsiEquals
				i++
			case b == '*':
				p.state = ansiCsiAsterisk
				i++
			case b == '$':
				p.state = ansiCsiDollar
				i++
			case b == ' ':
				p.state = ansiCsiSpace
				i++
			case b >= '@' && b <= '~':
				p.handleCsiFinal(b, sink)
				p.reset()
				i++
				printableStart = i
			default:
				p.reset()
				i++
				printableStart = i
			}

		case ansiCsiParam:
			switch {
			case b >= '0' && b <= '9':
				p.pushDigit(b)
				i++
			case b == ';':
				p.params = append(p.params, 0)
				i++
			case b == '\'':
				// Non-standard HPA final byte, used in the wild.
				p.handleCsiFinal(b, sink)
				p.reset()
				i++
				printableStart = i
			case b == ' ':
				p.state = ansiCsiSpace
				i++
			case b == '*':
				p.state = ansiCsiAsterisk
				i++
			case b == '$':
				p.state = ansiCsiDollar
				i++
			case b >= '@' && b <= '~':
				p.handleCsiFinal(b, sink)
				p.reset()
				i++
				printableStart = i
			default:
				p.reset()
				i++
				printableStart = i
			}

		case ansiCsiDecPrivate:
			switch {
			case b >= '0' && b <= '9':
				p.pushDigit(b)
				i++
			case b == ';':
				p.params = append(p.params, 0)
				i++
			case b >= '@' && b <= '~':
				p.handleDecPrivateFinal(b, sink)
				p.reset()
				i++
				printableStart = i
			default:
				p.reset()
				i++
				printableStart = i
			}

		case ansiCsiAsterisk:
			switch {
			case b >= '0' && b <= '9':
				p.pushDigit(b)
				i++
			case b == ';':
				p.params = append(p.params, 0)
				i++
			case b == 'z':
				// Invoke macro, replayed through the parser itself.
				n := int(p.param(0, 0))
				p.invokeMacro(n, sink)
				p.reset()
				i++
				printableStart = i
			case b == 'r':
				sink.Emit(TerminalCommand{Kind: CmdSelectCommunicationSpeed, N: p.param(0, 0), M: p.param(1, 0)})
				p.reset()
				i++
				printableStart = i
			case b == 'y':
				// DECRQCRA: ESC[{Pid};{Ppage};{Pt};{Pl};{Pb};{Pr}*y, Pid ignored.
				sink.Emit(TerminalCommand{
					Kind: CmdRequestChecksumRectangularArea,
					N:    p.param(1, 0),
					Rect: Rectangle{Top: p.param(2, 0), Left: p.param(3, 0), Bottom: p.param(4, 0), Right: p.param(5, 0)},
				})
				p.reset()
				i++
				printableStart = i
			default:
				sink.ReportError(malformedSequence("unknown or malformed escape sequence"), ErrorLevelError)
				p.reset()
				i++
				printableStart = i
			}

		case ansiCsiDollar:
			switch {
			case b >= '0' && b <= '9':
				p.pushDigit(b)
				i++
			case b == ';':
				p.params = append(p.params, 0)
				i++
			case b == 'w':
				sink.Emit(TerminalCommand{Kind: CmdRequestTabStopReport, N: p.param(0, 0)})
				p.reset()
				i++
				printableStart = i
			case b == 'x':
				// DECFRA: fill character, then the region.
				sink.Emit(TerminalCommand{
					Kind: CmdFillRectangularArea,
					N:    p.param(0, 0),
					Rect: Rectangle{Top: p.param(1, 1), Left: p.param(2, 1), Bottom: p.param(3, 1), Right: p.param(4, 1)},
				})
				p.reset()
				i++
				printableStart = i
			case b == 'z':
				sink.Emit(TerminalCommand{
					Kind: CmdEraseRectangularArea,
					Rect: Rectangle{Top: p.param(0, 1), Left: p.param(1, 1), Bottom: p.param(2, 1), Right: p.param(3, 1)},
				})
				p.reset()
				i++
				printableStart = i
			case b == '{':
				sink.Emit(TerminalCommand{
					Kind: CmdSelectiveEraseRectangularArea,
					Rect: Rectangle{Top: p.param(0, 1), Left: p.param(1, 1), Bottom: p.param(2, 1), Right: p.param(3, 1)},
				})
				p.reset()
				i++
				printableStart = i
			default:
				sink.ReportError(malformedSequence("unknown or malformed escape sequence"), ErrorLevelError)
				p.reset()
				i++
				printableStart = i
			}

		case ansiCsiSpace:
			switch {
			case b >= '0' && b <= '9':
				p.pushDigit(b)
				i++
			case b == ';':
				p.params = append(p.params, 0)
				i++
			case b == 'q':
				// DECSCUSR: 0/1 blinking block, 2 steady block,
				// 3/4 underline, 5/6 bar.
				blinking, shape := true, CaretBlock
				switch p.param(0, 1) {
				case 0, 1:
				case 2:
					blinking = false
				case 3:
					shape = CaretUnderline
				case 4:
					blinking, shape = false, CaretUnderline
				case 5:
					shape = CaretBar
				case 6:
					blinking, shape = false, CaretBar
				}
				sink.Emit(TerminalCommand{Kind: CmdSetCaretStyle, CaretBlinking: blinking, Caret: shape})
				p.reset()
				i++
				printableStart = i
			case b == 'D':
				sink.Emit(TerminalCommand{Kind: CmdFontSelection, N: p.param(0, 0), M: p.param(1, 0)})
				p.reset()
				i++
				printableStart = i
			case b == 'A':
				sink.Emit(Scroll(Right, p.param(0, 1)))
				p.reset()
				i++
				printableStart = i
			case b == '@':
				sink.Emit(Scroll(Left, p.param(0, 1)))
				p.reset()
				i++
				printableStart = i
			case b == 'd':
				if p.param(0, 0) == 0 {
					sink.Emit(TerminalCommand{Kind: CmdClearTabulation})
				} else {
					sink.Emit(TerminalCommand{Kind: CmdClearAllTabs})
				}
				p.reset()
				i++
				printableStart = i
			default:
				sink.ReportError(malformedSequence("unknown or malformed escape sequence"), ErrorLevelError)
				p.reset()
				i++
				printableStart = i
			}

		case ansiCsiGreater, ansiCsiExclaim, ansiCsiEquals:
			switch {
			case b >= '0' && b <= '9':
				p.pushDigit(b)
				i++
			case b == ';':
				p.params = append(p.params, 0)
				i++
			default:
				sink.ReportError(malformedSequence("unsupported CSI intermediate sequence"), ErrorLevelError)
				p.reset()
				i++
				printableStart = i
			}

		case ansiOscString:
			switch b {
			case 0x07:
				p.emitOsc(sink)
				p.reset()
				i++
				printableStart = i
			case 0x1B:
				if i+1 < len(input) && input[i+1] == '\\' {
					p.emitOsc(sink)
					p.reset()
					i += 2
					printableStart = i
				} else {
					p.buf = append(p.buf, b)
					i++
				}
			default:
				p.buf = append(p.buf, b)
				i++
			}

		case ansiDcsString:
			if b == 0x1B {
				p.state = ansiDcsEscape
			} else {
				p.buf = append(p.buf, b)
			}
			i++

		case ansiDcsEscape:
			if b == '\\' {
				p.parseDcs(sink)
				p.buf = p.buf[:0]
				p.reset()
				i++
				printableStart = i
			} else {
				// ESC was part of the DCS payload.
				p.buf = append(p.buf, 0x1B, b)
				p.state = ansiDcsString
				i++
			}

		case ansiApsString:
			if b == 0x1B {
				p.state = ansiApsEscape
			} else {
				p.buf = append(p.buf, b)
			}
			i++

		case ansiApsEscape:
			if b == '\\' {
				sink.Aps(p.buf)
				p.reset()
				i++
				printableStart = i
			} else {
				p.buf = append(p.buf, 0x1B, b)
				p.state = ansiApsString
				i++
			}
		}
	}

	if i > printableStart && p.state == ansiGround {
		sink.Print(input[printableStart:i])
	}
}

func (p *AnsiParser) Flush(CommandSink) {
	p.reset()
}

func (p *AnsiParser) handleCsiFinal(final byte, sink CommandSink) {
	switch final {
	case 'A':
		sink.Emit(MoveCursor(Up, p.param(0, 1)))
	case 'B':
		sink.Emit(MoveCursor(Down, p.param(0, 1)))
	case 'C':
		sink.Emit(MoveCursor(Right, p.param(0, 1)))
	case 'D':
		sink.Emit(MoveCursor(Left, p.param(0, 1)))
	case 'E':
		sink.Emit(TerminalCommand{Kind: CmdCursorNextLine, N: p.param(0, 1)})
	case 'F':
		sink.Emit(TerminalCommand{Kind: CmdCursorPreviousLine, N: p.param(0, 1)})
	case 'G':
		sink.Emit(TerminalCommand{Kind: CmdCursorHorizontalAbsolute, N: p.param(0, 1)})
	case 'H', 'f':
		sink.Emit(CursorPosition(p.param(0, 1), p.param(1, 1)))
	case 'j':
		// HPB, alias for cursor back.
		sink.Emit(MoveCursor(Left, p.param(0, 1)))
	case 'k':
		// VPB, alias for cursor up.
		sink.Emit(MoveCursor(Up, p.param(0, 1)))
	case 'd':
		sink.Emit(TerminalCommand{Kind: CmdLinePositionAbsolute, N: p.param(0, 1)})
	case 'e':
		sink.Emit(TerminalCommand{Kind: CmdLinePositionForward, N: p.param(0, 1)})
	case 'a':
		sink.Emit(TerminalCommand{Kind: CmdCharacterPositionForward, N: p.param(0, 1)})
	case '\'':
		sink.Emit(TerminalCommand{Kind: CmdHorizontalPositionAbsolute, N: p.param(0, 1)})
	case 'J':
		n := p.param(0, 0)
		mode, ok := eraseDisplayMode(n)
		if !ok {
			sink.ReportError(invalidParameter("EraseInDisplay", n), ErrorLevelError)
			mode = EraseDisplayCursorToEnd
		}
		sink.Emit(TerminalCommand{Kind: CmdEraseInDisplay, EraseDisplay: mode})
	case 'K':
		n := p.param(0, 0)
		mode, ok := eraseLineMode(n)
		if !ok {
			sink.ReportError(invalidParameter("EraseInLine", n), ErrorLevelError)
			mode = EraseLineCursorToEnd
		}
		sink.Emit(TerminalCommand{Kind: CmdEraseInLine, EraseLine: mode})
	case 'S':
		sink.Emit(Scroll(Up, p.param(0, 1)))
	case 'T':
		sink.Emit(Scroll(Down, p.param(0, 1)))
	case 'm':
		params := p.params
		if len(params) == 0 {
			params = []uint16{0}
		}
		parseSgr(params, sink)
	case 'r':
		sink.Emit(TerminalCommand{Kind: CmdSetScrollingRegion, N: p.param(0, 1), M: p.param(1, 0)})
	case '@':
		sink.Emit(TerminalCommand{Kind: CmdInsertCharacter, N: p.param(0, 1)})
	case 'P':
		sink.Emit(TerminalCommand{Kind: CmdDeleteCharacter, N: p.param(0, 1)})
	case 'X':
		sink.Emit(TerminalCommand{Kind: CmdEraseCharacter, N: p.param(0, 1)})
	case 'L':
		sink.Emit(TerminalCommand{Kind: CmdInsertLine, N: p.param(0, 1)})
	case 'M':
		sink.Emit(TerminalCommand{Kind: CmdDeleteLine, N: p.param(0, 1)})
	case 'b':
		sink.Emit(TerminalCommand{Kind: CmdRepeatPrecedingCharacter, N: p.param(0, 1)})
	case 's':
		sink.Emit(TerminalCommand{Kind: CmdSaveCursorPosition})
	case 'u':
		sink.Emit(TerminalCommand{Kind: CmdRestoreCursorPosition})
	case 'g':
		if p.param(0, 0) == 0 {
			sink.Emit(TerminalCommand{Kind: CmdClearTabulation})
		} else {
			sink.Emit(TerminalCommand{Kind: CmdClearAllTabs})
		}
	case 'Y':
		sink.Emit(TerminalCommand{Kind: CmdCursorLineTabulationForward, N: p.param(0, 1)})
	case 'Z':
		sink.Emit(TerminalCommand{Kind: CmdCursorBackwardTabulation, N: p.param(0, 1)})
	case 't':
		p.handleWindowOps(sink)
	case '~':
		sink.Emit(TerminalCommand{Kind: CmdSpecialKey, N: p.param(0, 0)})
	case 'c':
		sink.Emit(TerminalCommand{Kind: CmdDeviceAttributes})
	case 'n':
		n := p.param(0, 0)
		if report, ok := statusReport(n); ok {
			sink.Emit(TerminalCommand{Kind: CmdDeviceStatusReport, Status: report})
		} else {
			sink.ReportError(invalidParameter("DeviceStatusReport", n), ErrorLevelError)
		}
	case 'h':
		for _, param := range p.params {
			if mode, ok := ansiMode(param); ok {
				sink.Emit(TerminalCommand{Kind: CmdSetMode, Mode: mode})
			} else {
				sink.ReportError(invalidParameter("SetMode", param), ErrorLevelError)
			}
		}
	case 'l':
		for _, param := range p.params {
			if mode, ok := ansiMode(param); ok {
				sink.Emit(TerminalCommand{Kind: CmdResetMode, Mode: mode})
			} else {
				sink.ReportError(invalidParameter("ResetMode", param), ErrorLevelError)
			}
		}
	default:
		sink.ReportError(malformedSequence("unknown or malformed escape sequence"), ErrorLevelError)
	}
}

// handleWindowOps handles the overloaded 't' final byte: with three
// parameters it is a window resize, with four a 24-bit color select.
func (p *AnsiParser) handleWindowOps(sink CommandSink) {
	switch len(p.params) {
	case 3:
		if p.params[0] != 8 {
			sink.ReportError(malformedSequence("unknown or malformed escape sequence"), ErrorLevelError)
			return
		}
		height := clampParam(p.params[1], 1, 60)
		width := clampParam(p.params[2], 1, 132)
		sink.Emit(TerminalCommand{Kind: CmdResizeTerminal, N: height, M: width})
	case 4:
		c := RGBColor(uint8(p.params[1]), uint8(p.params[2]), uint8(p.params[3]))
		switch p.params[0] {
		case 0:
			sink.Emit(Sgr(SgrAttribute{Kind: SgrBackground, Color: c}))
		case 1:
			sink.Emit(Sgr(SgrAttribute{Kind: SgrForeground, Color: c}))
		default:
			sink.ReportError(malformedSequence("unknown or malformed escape sequence"), ErrorLevelError)
		}
	default:
		sink.ReportError(malformedSequence("unknown or malformed escape sequence"), ErrorLevelError)
	}
}

func clampParam(v, lo, hi uint16) uint16 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func (p *AnsiParser) handleDecPrivateFinal(final byte, sink CommandSink) {
	switch final {
	case 'h':
		for _, param := range p.params {
			if mode, ok := decMode(param); ok {
				sink.Emit(TerminalCommand{Kind: CmdDecModeSet, Dec: mode})
			} else {
				sink.ReportError(invalidParameter("DecModeSet", param), ErrorLevelError)
			}
		}
	case 'l':
		for _, param := range p.params {
			if mode, ok := decMode(param); ok {
				sink.Emit(TerminalCommand{Kind: CmdDecModeReset, Dec: mode})
			} else {
				sink.ReportError(invalidParameter("DecModeReset", param), ErrorLevelError)
			}
		}
	default:
		sink.ReportError(malformedSequence("unknown or malformed escape sequence"), ErrorLevelError)
	}
}

// emitOsc decodes the collected OSC payload: "Ps;Pt".
func (p *AnsiParser) emitOsc(sink CommandSink) {
	if len(p.buf) == 0 {
		return
	}
	sep := -1
	for j, b := range p.buf {
		if b == ';' {
			sep = j
			break
		}
	}
	if sep >= 0 {
		if ps, ok := parseDecimal(p.buf[:sep]); ok {
			pt := p.buf[sep+1:]
			switch ps {
			case 0:
				sink.OperatingSystemCommand(OsCommand{Kind: OscSetTitle, Text: pt})
			case 1:
				sink.OperatingSystemCommand(OsCommand{Kind: OscSetIconName, Text: pt})
			case 2:
				sink.OperatingSystemCommand(OsCommand{Kind: OscSetWindowTitle, Text: pt})
			case 4:
				p.emitOscPalette(pt, sink)
			case 8:
				// Hyperlink: OSC 8 ; params ; URI
				for j, b := range pt {
					if b == ';' {
						sink.OperatingSystemCommand(OsCommand{Kind: OscHyperlink, Params: pt[:j], URI: pt[j+1:]})
						return
					}
				}
			default:
				sink.ReportError(malformedSequence("unknown or malformed escape sequence"), ErrorLevelError)
			}
			return
		}
	}
	sink.ReportError(malformedSequence("unknown or malformed escape sequence"), ErrorLevelError)
}

// emitOscPalette decodes OSC 4 palette entries. Each entry is
// "index;rgb:rr/gg/bb" and one sequence may chain several entries,
// so every complete pair yields its own command.
func (p *AnsiParser) emitOscPalette(pt []byte, sink CommandSink) {
	emitted := false
	for len(pt) > 0 {
		sep := -1
		for j, b := range pt {
			if b == ';' {
				sep = j
				break
			}
		}
		if sep < 0 {
			break
		}
		index, okIndex := parseDecimal(pt[:sep])
		rest := pt[sep+1:]
		end := len(rest)
		for j, b := range rest {
			if b == ';' {
				end = j
				break
			}
		}
		rgb, okColor := parseXColorSpec(rest[:end])
		if !okIndex || !okColor {
			break
		}
		sink.OperatingSystemCommand(OsCommand{Kind: OscSetPaletteColor, Index: index, RGB: rgb})
		emitted = true
		if end == len(rest) {
			return
		}
		pt = rest[end+1:]
	}
	if !emitted {
		sink.ReportError(malformedSequence("unknown or malformed escape sequence"), ErrorLevelError)
	}
}

// parseXColorSpec reads the "rgb:rr/gg/bb" form with two hex digits
// per channel.
func parseXColorSpec(spec []byte) ([3]uint8, bool) {
	var rgb [3]uint8
	if len(spec) != 12 || string(spec[:4]) != "rgb:" || spec[6] != '/' || spec[9] != '/' {
		return rgb, false
	}
	for i, off := range [3]int{4, 7, 10} {
		v, ok := parseHexByte(spec[off : off+2])
		if !ok {
			return rgb, false
		}
		rgb[i] = v
	}
	return rgb, true
}

func parseHexByte(data []byte) (uint8, bool) {
	var v uint8
	for _, b := range data {
		switch {
		case b >= '0' && b <= '9':
			v = v<<4 | (b - '0')
		case b >= 'a' && b <= 'f':
			v = v<<4 | (b - 'a' + 10)
		case b >= 'A' && b <= 'F':
			v = v<<4 | (b - 'A' + 10)
		default:
			return 0, false
		}
	}
	return v, true
}

func parseDecimal(data []byte) (int, bool) {
	if len(data) == 0 {
		return 0, false
	}
	n := 0
	for _, b := range data {
		if b < '0' || b > '9' {
			return 0, false
		}
		n = n*10 + int(b-'0')
	}
	return n, true
}

// parseDcs decodes a completed DCS payload. Recognized forms are the
// CTerm font upload, DEC macro definitions ({params}!z{data}) and
// sixel graphics ({params}q{data}).
func (p *AnsiParser) parseDcs(sink CommandSink) {
	if len(p.buf) >= len(ctermFontPrefix) && string(p.buf[:len(ctermFontPrefix)]) == ctermFontPrefix {
		rest := p.buf[len(ctermFontPrefix):]
		for j, b := range rest {
			if b != ':' {
				continue
			}
			if slot, ok := parseDecimal(rest[:j]); ok {
				decoded, err := base64.StdEncoding.DecodeString(string(rest[j+1:]))
				if err != nil {
					sink.ReportError(malformedSequence("invalid base64 in DCS font data"), ErrorLevelError)
					return
				}
				sink.DeviceControl(DeviceControl{Kind: DeviceControlLoadFont, FontSlot: slot, FontData: decoded})
				return
			}
			break
		}
		sink.ReportError(malformedSequence("unknown or malformed DCS sequence"), ErrorLevelError)
		return
	}

	// Numeric parameter prefix.
	i := 0
	p.params = append(p.params[:0], 0)
	for i < len(p.buf) {
		b := p.buf[i]
		if b >= '0' && b <= '9' {
			p.params[len(p.params)-1] = p.params[len(p.params)-1]*10 + uint16(b-'0')
		} else if b == ';' {
			p.params = append(p.params, 0)
		} else {
			break
		}
		i++
	}

	// Macro definition: ESC P {params} ! z {data} ESC \
	if i+2 < len(p.buf) && p.buf[i] == '!' && p.buf[i+1] == 'z' {
		p.defineMacro(p.buf[i+2:])
		return
	}

	// Sixel: ESC P {params} q {data} ESC \
	if i < len(p.buf) && p.buf[i] == 'q' {
		var scale int
		switch p.param(0, 0) {
		case 0, 1, 5, 6:
			scale = 2
		case 2:
			scale = 5
		case 3, 4:
			scale = 3
		default:
			scale = 1
		}
		sink.DeviceControl(DeviceControl{
			Kind:          DeviceControlSixel,
			VerticalScale: scale,
			Background:    [3]uint8{0, 0, 0},
			Data:          p.buf[i+1:],
		})
		return
	}

	sink.ReportError(malformedSequence("unknown or malformed escape sequence"), ErrorLevelError)
}

// defineMacro stores a DEC macro. Parameters are {pid};{pdt};{encoding};
// pdt 1 clears all macros first, encoding 0 is raw text and 1 is hex
// with !{count};{hex}; repeat groups.
func (p *AnsiParser) defineMacro(data []byte) {
	pid := int(p.param(0, 0))
	pdt := p.param(1, 0)
	encoding := p.param(2, 0)

	if pdt == 1 {
		p.macros = make(map[int][]byte)
	}

	switch encoding {
	case 0:
		p.macros[pid] = append([]byte(nil), data...)
	case 1:
		if decoded, ok := decodeHexMacro(data); ok {
			p.macros[pid] = decoded
		}
	}
}

func decodeHexMacro(data []byte) ([]byte, bool) {
	var result []byte
	i := 0
	repeatCount := 0
	inRepeat := false
	repeatStart := 0

	expand := func() {
		repeated := append([]byte(nil), result[repeatStart:]...)
		for n := 1; n < repeatCount; n++ {
			result = append(result, repeated...)
		}
	}

	for i < len(data) {
		switch {
		case data[i] == '!':
			i++
			repeatCount = 0
			for i < len(data) && data[i] >= '0' && data[i] <= '9' {
				repeatCount = repeatCount*10 + int(data[i]-'0')
				i++
			}
			if i < len(data) && data[i] == ';' {
				i++
				inRepeat = true
				repeatStart = len(result)
			}
		case inRepeat && data[i] == ';':
			expand()
			inRepeat = false
			i++
		case i+1 < len(data):
			high, ok1 := hexDigit(data[i])
			low, ok2 := hexDigit(data[i+1])
			if !ok1 || !ok2 {
				return nil, false
			}
			result = append(result, high<<4|low)
			i += 2
		default:
			i++
		}
	}

	if inRepeat {
		expand()
	}
	return result, true
}

func hexDigit(b byte) (uint8, bool) {
	switch {
	case b >= '0' && b <= '9':
		return b - '0', true
	case b >= 'A' && b <= 'F':
		return b - 'A' + 10, true
	case b >= 'a' && b <= 'f':
		return b - 'a' + 10, true
	}
	return 0, false
}

func (p *AnsiParser) invokeMacro(id int, sink CommandSink) {
	data, ok := p.macros[id]
	if !ok {
		return
	}
	// Replay a copy from ground state so a macro redefining itself
	// cannot corrupt the input being replayed.
	p.reset()
	p.Parse(append([]byte(nil), data...), sink)
}
