// Copyright © 2026 Icebox contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: parser/igs.go
// Summary: IGS parser for Atari ST BBS graphics. Text outside G#
//          sequences follows Atari VT52 rules including ESC sequences
//          and TOS direct color bytes.
// Notes: The loop command (&) has its own tokenizer because parameters
//        may be substitution symbols and expressions, not just numbers.

package parser

import (
	"strconv"
	"strings"
)

type igsState uint8

const (
	igsDefault igsState = iota
	igsGotG
	igsGotStart
	igsReadParams
	igsReadText
	igsReadLoopTokens
	igsReadZoneString
	igsReadFillPattern

	// VT52 states
	igsEscape
	igsReadFgColor
	igsReadBgColor
	igsReadCursorLine
	igsReadCursorRow
	igsReadInsertCount
)

// IgsParser decodes the G# command protocol plus the surrounding
// Atari VT52 terminal dialect.
type IgsParser struct {
	state igsState
	cmd   byte

	params  []int
	current int
	hasNum  bool
	text    []byte

	loopTokens []string
	loopBuf    []byte
	chainGang  bool

	zoneParams  []int
	fillPattern int

	cursorLine int

	reverseVideo bool
	// skipNextLF suppresses the LF ending a G> command line so the
	// screen does not scroll.
	skipNextLF bool
}

func NewIgsParser() *IgsParser { return &IgsParser{} }

func (p *IgsParser) resetParams() {
	p.params = p.params[:0]
	p.current = 0
	p.hasNum = false
	p.text = p.text[:0]
}

func (p *IgsParser) pushParam() {
	p.params = append(p.params, p.current)
	p.current = 0
	p.hasNum = false
}

// igsCommandChar reports whether ch starts a known G# command.
func igsCommandChar(ch byte) bool {
	switch ch {
	case 'A', 'B', 'C', 'D', 'E', 'F', 'G', 'H', 'I', 'J', 'K', 'L', 'M',
		'N', 'O', 'P', 'Q', 'R', 'S', 'T', 'U', 'V', 'W', 'X', 'Y', 'Z',
		'b', 'c', 'd', 'f', 'g', 'i', 'k', 'l', 'm', 'n', 'p', 'q', 'r',
		's', 't', 'v', 'w', 'z', '<', '?':
		return true
	}
	return false
}

// vt52Color decodes a VT52 color byte. Raw bytes 0x00-0x0F are the
// Atari extension; '0' onward is classic VT52.
func vt52Color(b byte) (Color, bool) {
	if b <= 0x0F {
		return BaseColor(b), true
	}
	if b >= '0' && b <= '0'+15 {
		return BaseColor(b - '0'), true
	}
	return Color{}, false
}

func (p *IgsParser) Parse(input []byte, sink CommandSink) {
	for _, b := range input {
		switch p.state {
		case igsDefault:
			p.parseDefault(b, sink)
		case igsGotG:
			p.skipNextLF = true
			if b == '#' {
				p.state = igsGotStart
				p.resetParams()
			} else {
				sink.Print([]byte{'G'})
				if b >= 0x20 {
					sink.Print([]byte{b})
				}
				p.state = igsDefault
			}
		case igsGotStart:
			switch {
			case b == '&':
				p.state = igsReadLoopTokens
				p.loopTokens = p.loopTokens[:0]
				p.loopBuf = p.loopBuf[:0]
				p.chainGang = false
			case igsCommandChar(b):
				p.cmd = b
				p.state = igsReadParams
			default:
				if b >= 0x20 && b != 0x7F {
					sink.ReportError(invalidParameter("IGS", uint16(b)), ErrorLevelError)
				}
				p.state = igsDefault
			}
		case igsReadParams:
			p.parseParams(b, sink)
		case igsReadText:
			if b == '@' || b == '\n' {
				p.emitIgsCommand('W', sink)
				if b == '\n' {
					p.state = igsDefault
				} else {
					p.state = igsGotStart
				}
			} else {
				p.text = append(p.text, b)
			}
		case igsReadZoneString:
			if b == ':' || b == '\n' {
				if len(p.zoneParams) == 7 {
					sink.EmitIgs(IgsCommand{
						Kind:   IgsDefineZone,
						ZoneID: p.zoneParams[1],
						X:      p.zoneParams[2], Y: p.zoneParams[3],
						X2: p.zoneParams[4], Y2: p.zoneParams[5],
						Length: uint16(p.zoneParams[6]),
						Text:   string(p.text),
					})
				}
				p.resetParams()
				if b == '\n' {
					p.state = igsDefault
				} else {
					p.state = igsGotStart
				}
			} else {
				p.text = append(p.text, b)
			}
		case igsReadFillPattern:
			if b == ':' || b == '\n' {
				sink.EmitIgs(IgsCommand{
					Kind:    IgsLoadFillPattern,
					Pattern: uint8(p.fillPattern),
					Text:    string(p.text),
				})
				p.resetParams()
				if b == '\n' {
					p.state = igsDefault
				} else {
					p.state = igsGotStart
				}
			} else {
				p.text = append(p.text, b)
			}
		case igsReadLoopTokens:
			p.parseLoopToken(b, sink)

		case igsEscape:
			p.parseEscape(b, sink)
		case igsReadFgColor:
			if color, ok := vt52Color(b); ok {
				if p.reverseVideo {
					sink.Emit(Sgr(SgrAttribute{Kind: SgrBackground, Color: color}))
				} else {
					sink.Emit(Sgr(SgrAttribute{Kind: SgrForeground, Color: color}))
				}
			} else {
				sink.ReportError(invalidParameter("ForegroundColor", uint16(b)), ErrorLevelError)
			}
			p.state = igsDefault
		case igsReadBgColor:
			if color, ok := vt52Color(b); ok {
				if p.reverseVideo {
					sink.Emit(Sgr(SgrAttribute{Kind: SgrForeground, Color: color}))
				} else {
					sink.Emit(Sgr(SgrAttribute{Kind: SgrBackground, Color: color}))
				}
			} else {
				sink.ReportError(invalidParameter("BackgroundColor", uint16(b)), ErrorLevelError)
			}
			p.state = igsDefault
		case igsReadCursorLine:
			if b >= ' ' && b <= '8' {
				p.cursorLine = int(b-' ') + 1
				p.state = igsReadCursorRow
			} else {
				sink.ReportError(invalidParameter("CursorPosition", uint16(b)), ErrorLevelError)
				p.state = igsDefault
			}
		case igsReadCursorRow:
			if b >= ' ' && b <= 'p' {
				col := uint16(b-' ') + 1
				sink.Emit(CursorPosition(uint16(p.cursorLine), col))
			} else {
				sink.ReportError(invalidParameter("CursorPosition", uint16(b)), ErrorLevelError)
			}
			p.state = igsDefault
		case igsReadInsertCount:
			sink.Emit(TerminalCommand{Kind: CmdInsertLine, N: uint16(b)})
			p.state = igsDefault
		}
	}

	// ESC-form commands like ESC m1,20 have no ':' terminator; flush
	// them at the end of the chunk.
	if p.state == igsReadParams {
		switch p.cmd {
		case 'm', 'v', 'w':
			if p.current != 0 || len(p.params) > 0 {
				p.pushParam()
			}
			if len(p.params) > 0 {
				p.emitIgsCommand(p.cmd, sink)
				p.state = igsDefault
			}
		}
	}
}

func (p *IgsParser) Flush(CommandSink) {
	p.resetParams()
	p.loopTokens = p.loopTokens[:0]
	p.loopBuf = p.loopBuf[:0]
	p.chainGang = false
	p.state = igsDefault
}

func (p *IgsParser) parseDefault(b byte, sink CommandSink) {
	switch {
	case b == 'G':
		p.state = igsGotG
	case b == 0x1B:
		p.state = igsEscape
	case b == 0x08 || b == 0x0B || b == 0x0C:
		sink.Emit(TerminalCommand{Kind: CmdBackspace})
	case b == 0x0D:
		sink.Emit(TerminalCommand{Kind: CmdCarriageReturn})
	case b == 0x0A:
		if p.skipNextLF {
			p.skipNextLF = false
			return
		}
		sink.Emit(TerminalCommand{Kind: CmdLineFeed})
	case b <= 0x0F:
		// TOS direct foreground color codes.
		if p.reverseVideo {
			sink.Emit(Sgr(SgrAttribute{Kind: SgrBackground, Color: BaseColor(b)}))
		} else {
			sink.Emit(Sgr(SgrAttribute{Kind: SgrForeground, Color: BaseColor(b)}))
		}
	case b <= 0x1F:
		// Remaining control characters have no effect.
	default:
		sink.Print([]byte{b})
	}
}

// xStringPending reports whether the next parameter byte starts an
// extended command's string payload (zone text or fill pattern), where
// a leading r or R is literal.
func (p *IgsParser) xStringPending() bool {
	if p.cmd != 'X' || len(p.params) == 0 {
		return false
	}
	return (p.params[0] == 4 && len(p.params) == 7) ||
		(p.params[0] == 7 && len(p.params) == 2)
}

func (p *IgsParser) parseParams(b byte, sink CommandSink) {
	ch := b
	switch {
	case ch >= '0' && ch <= '9':
		p.current = p.current*10 + int(ch-'0')
		p.hasNum = true

	case (ch == 'r' || ch == 'R') && !p.hasNum && !p.xStringPending():
		// Random placeholder; resolved by the paint engine against
		// the X 2 ranges.
		if ch == 'r' {
			p.current = IgsRandomSmall
		} else {
			p.current = IgsRandomBig
		}
		p.hasNum = true

	case ch == ',':
		p.pushParam()
		// W text starts after the x,y pair.
		if p.cmd == 'W' && len(p.params) == 2 {
			p.state = igsReadText
			p.text = p.text[:0]
		}

	case ch == '@' && p.cmd == 'W':
		p.pushParam()
		if len(p.params) == 2 {
			p.state = igsReadText
			p.text = p.text[:0]
		} else {
			p.resetParams()
			p.state = igsDefault
		}

	case ch == ':':
		p.pushParam()
		p.emitIgsCommand(p.cmd, sink)
		p.state = igsGotStart

	case ch == ' ' || ch == '>' || ch == '\r' || ch == '\n' || ch == '_':
		// Formatting characters. The extended command switches into
		// its string-reading states once the numeric prefix is full.
		if p.cmd == 'X' && len(p.params) > 0 {
			if p.params[0] == 4 && len(p.params) == 7 {
				p.zoneParams = append(p.zoneParams[:0], p.params...)
				p.text = p.text[:0]
				p.state = igsReadZoneString
			} else if p.params[0] == 7 && len(p.params) == 2 {
				p.fillPattern = p.params[1]
				p.text = p.text[:0]
				p.state = igsReadFillPattern
			}
		}

	default:
		if p.cmd == 'X' && len(p.params) > 0 && p.params[0] == 4 && len(p.params) == 7 {
			p.zoneParams = append(p.zoneParams[:0], p.params...)
			p.text = append(p.text[:0], ch)
			p.state = igsReadZoneString
		} else if p.cmd == 'X' && len(p.params) > 0 && p.params[0] == 7 && len(p.params) == 2 {
			p.fillPattern = p.params[1]
			p.text = append(p.text[:0], ch)
			p.state = igsReadFillPattern
		} else {
			sink.ReportError(invalidParameter("IGS", uint16(ch)), ErrorLevelError)
			p.resetParams()
			p.state = igsDefault
		}
	}
}

func (p *IgsParser) parseEscape(b byte, sink CommandSink) {
	p.state = igsDefault
	switch b {
	case 'A':
		sink.Emit(MoveCursor(Up, 1))
	case 'B':
		sink.Emit(MoveCursor(Down, 1))
	case 'C':
		sink.Emit(MoveCursor(Right, 1))
	case 'D':
		sink.Emit(MoveCursor(Left, 1))
	case 'E':
		sink.Emit(TerminalCommand{Kind: CmdEraseInDisplay, EraseDisplay: EraseDisplayAll})
		sink.Emit(CursorPosition(1, 1))
	case 'H':
		sink.Emit(CursorPosition(1, 1))
	case 'I':
		sink.Emit(TerminalCommand{Kind: CmdReverseIndex})
	case 'J':
		sink.Emit(TerminalCommand{Kind: CmdEraseInDisplay, EraseDisplay: EraseDisplayCursorToEnd})
	case 'K':
		sink.Emit(TerminalCommand{Kind: CmdEraseInLine, EraseLine: EraseLineCursorToEnd})
	case 'Y':
		p.state = igsReadCursorLine
	case '3', 'b':
		p.state = igsReadFgColor
	case '4', 'c':
		p.state = igsReadBgColor
	case 'e':
		sink.Emit(TerminalCommand{Kind: CmdDecModeSet, Dec: DecCursorVisible})
	case 'f':
		sink.Emit(TerminalCommand{Kind: CmdDecModeReset, Dec: DecCursorVisible})
	case 'j':
		sink.Emit(TerminalCommand{Kind: CmdSaveCursorPosition})
	case 'k':
		sink.Emit(TerminalCommand{Kind: CmdRestoreCursorPosition})
	case 'L':
		sink.Emit(TerminalCommand{Kind: CmdInsertLine, N: 1})
	case 'M':
		sink.Emit(TerminalCommand{Kind: CmdDeleteLine, N: 1})
	case 'p':
		p.reverseVideo = true
	case 'q':
		p.reverseVideo = false
	case 'v':
		sink.Emit(TerminalCommand{Kind: CmdDecModeSet, Dec: DecAutoWrap})
	case 'w':
		sink.Emit(TerminalCommand{Kind: CmdDecModeReset, Dec: DecAutoWrap})
	case 'd':
		sink.Emit(TerminalCommand{Kind: CmdEraseInDisplay, EraseDisplay: EraseDisplayStartToCursor})
	case 'o':
		sink.Emit(TerminalCommand{Kind: CmdEraseInLine, EraseLine: EraseLineStartToCursor})
	case 'i':
		p.state = igsReadInsertCount
	case 'l':
		sink.Emit(TerminalCommand{Kind: CmdEraseInLine, EraseLine: EraseLineAll})
	case 'r':
		sink.EmitIgs(IgsCommand{Kind: IgsRememberCursor})
	case 'm':
		// Cursor motion shares the G# parameter syntax.
		p.cmd = 'm'
		p.resetParams()
		p.state = igsReadParams
	}
}

// parseLoopToken consumes one byte of the loop command's token stream.
func (p *IgsParser) parseLoopToken(b byte, sink CommandSink) {
	ch := b
	switch ch {
	case ':':
		if len(p.loopBuf) > 0 {
			p.loopTokens = append(p.loopTokens, string(p.loopBuf))
			p.loopBuf = p.loopBuf[:0]
		}
		if len(p.loopTokens) >= 6 {
			wanted, _ := strconv.Atoi(p.loopTokens[5])
			have := 0
			for _, t := range p.loopTokens[6:] {
				if t != ":" {
					have++
				}
			}
			if have >= wanted {
				p.emitLoop(sink)
				p.loopTokens = p.loopTokens[:0]
				p.state = igsGotStart
			} else {
				// Group separator inside the parameter list.
				p.loopTokens = append(p.loopTokens, ":")
			}
		}
	case '\n':
		if len(p.loopBuf) > 0 {
			p.loopTokens = append(p.loopTokens, string(p.loopBuf))
			p.loopBuf = p.loopBuf[:0]
		}
		if len(p.loopTokens) >= 6 {
			p.emitLoop(sink)
		}
		p.loopTokens = p.loopTokens[:0]
		p.chainGang = false
		p.state = igsDefault
	case ',':
		if p.chainGang {
			p.loopBuf = append(p.loopBuf, ch)
		} else if len(p.loopBuf) > 0 {
			p.loopTokens = append(p.loopTokens, string(p.loopBuf))
			p.loopBuf = p.loopBuf[:0]
		}
	case ')':
		// Closing paren marks a command index in chain-gang
		// parameters; keep it in the token.
		if len(p.loopBuf) > 0 {
			p.loopBuf = append(p.loopBuf, ch)
			p.loopTokens = append(p.loopTokens, string(p.loopBuf))
			p.loopBuf = p.loopBuf[:0]
		}
	case '@':
		p.loopBuf = append(p.loopBuf, ch)
		if p.chainGang {
			p.loopTokens = append(p.loopTokens, string(p.loopBuf))
			p.loopBuf = p.loopBuf[:0]
			p.chainGang = false
		}
	case ' ', '\r', '_':
		// Formatting, ignored.
	case '>':
		// '>' starts a chain-gang identifier at the command position,
		// otherwise it is formatting.
		if len(p.loopBuf) == 0 && len(p.loopTokens) == 4 {
			p.loopBuf = append(p.loopBuf, ch)
			p.chainGang = true
		}
	default:
		p.loopBuf = append(p.loopBuf, ch)
	}
}

func classifyLoopToken(token string) IgsLoopToken {
	if token == ":" {
		return IgsLoopToken{Kind: LoopTokenSeparator}
	}
	if token == "x" || token == "y" {
		return IgsLoopToken{Kind: LoopTokenSymbol, Symbol: token[0]}
	}
	hasPrefix := strings.HasPrefix(token, "+") || strings.HasPrefix(token, "-") || strings.HasPrefix(token, "!")
	if !hasPrefix {
		if n, err := strconv.Atoi(token); err == nil {
			return IgsLoopToken{Kind: LoopTokenNumber, Number: n}
		}
	}
	return IgsLoopToken{Kind: LoopTokenExpr, Expr: token}
}

func (p *IgsParser) emitLoop(sink CommandSink) {
	if len(p.loopTokens) < 6 {
		sink.ReportError(invalidParameter("LoopCommand", uint16(len(p.loopTokens))), ErrorLevelError)
		return
	}
	atoi := func(s string) int {
		n, _ := strconv.Atoi(s)
		return n
	}

	ident := p.loopTokens[4]
	var target IgsLoopTarget
	var mods IgsLoopModifiers

	if strings.HasPrefix(ident, ">") && strings.Contains(ident, "@") {
		// Chain gang: modifiers follow the closing '@'.
		end := strings.IndexByte(ident, '@')
		for _, ch := range ident[end+1:] {
			switch ch {
			case '|':
				mods.XorStepping = true
			case '@':
				mods.RefreshText = true
			}
		}
		raw := ident[:end+1]
		inner := raw[1 : len(raw)-1]
		target = IgsLoopTarget{Chain: true, Raw: raw, Commands: []byte(inner)}
	} else {
		base := ident
		if pos := strings.IndexAny(ident, "|@"); pos >= 0 {
			base = ident[:pos]
			for _, ch := range ident[pos:] {
				switch ch {
				case '|':
					mods.XorStepping = true
				case '@':
					mods.RefreshText = true
				}
			}
		}
		single := byte(' ')
		if len(base) > 0 {
			single = base[0]
		}
		target = IgsLoopTarget{Single: single}
	}

	params := make([]IgsLoopToken, 0, len(p.loopTokens)-6)
	for _, tok := range p.loopTokens[6:] {
		params = append(params, classifyLoopToken(tok))
	}

	sink.EmitIgs(IgsCommand{Kind: IgsLoop, Loop: &IgsLoopData{
		From:       atoi(p.loopTokens[0]),
		To:         atoi(p.loopTokens[1]),
		Step:       atoi(p.loopTokens[2]),
		Delay:      atoi(p.loopTokens[3]),
		Target:     target,
		Modifiers:  mods,
		ParamCount: uint16(atoi(p.loopTokens[5])),
		Params:     params,
	}})
}

// emitIgsCommand converts collected parameters into one IgsCommand.
// Commands with too few parameters emit nothing.
func (p *IgsParser) emitIgsCommand(cmd byte, sink CommandSink) {
	defer p.resetParams()
	n := len(p.params)
	at := func(i int) int {
		if i < n {
			return p.params[i]
		}
		return 0
	}

	var c IgsCommand
	switch cmd {
	case 'B':
		if n < 5 {
			return
		}
		c = IgsCommand{Kind: IgsBox, X: at(0), Y: at(1), X2: at(2), Y2: at(3), Rounded: at(4) != 0}
	case 'L':
		if n < 4 {
			return
		}
		c = IgsCommand{Kind: IgsLine, X: at(0), Y: at(1), X2: at(2), Y2: at(3)}
	case 'D':
		if n < 2 {
			return
		}
		c = IgsCommand{Kind: IgsLineDrawTo, X: at(0), Y: at(1)}
	case 'O':
		if n < 3 {
			return
		}
		c = IgsCommand{Kind: IgsCircle, X: at(0), Y: at(1), Radius: at(2)}
	case 'Q':
		if n < 4 {
			return
		}
		c = IgsCommand{Kind: IgsEllipse, X: at(0), Y: at(1), XRadius: at(2), YRadius: at(3)}
	case 'K':
		if n < 5 {
			return
		}
		c = IgsCommand{Kind: IgsArc, X: at(0), Y: at(1), Radius: at(2), StartAngle: at(3), EndAngle: at(4)}
	case 'z', 'f':
		if n < 1 {
			return
		}
		count := p.params[0]
		if n < 1+count*2 {
			return
		}
		kind := IgsPolyLine
		if cmd == 'f' {
			kind = IgsPolyFill
		}
		c = IgsCommand{Kind: kind, Points: append([]int(nil), p.params[1:]...)}
	case 'F':
		if n < 2 {
			return
		}
		c = IgsCommand{Kind: IgsFloodFill, X: at(0), Y: at(1)}
	case 'P':
		if n < 2 {
			return
		}
		c = IgsCommand{Kind: IgsPolymarkerPlot, X: at(0), Y: at(1)}
	case 'C':
		if n < 2 {
			return
		}
		c = IgsCommand{Kind: IgsColorSet, Pen: uint8(at(0)), Color: uint8(at(1))}
	case 'A':
		if n < 3 {
			return
		}
		c = IgsCommand{Kind: IgsAttributeForFills, PatternType: uint8(at(0)), PatternIndex: uint8(at(1)), Border: at(2) != 0}
	case 'T':
		if n < 3 {
			return
		}
		c = IgsCommand{Kind: IgsLineStyle, StyleKind: uint8(at(0)), Style: uint8(at(1)), Value: uint16(at(2))}
	case 'S':
		if n < 4 {
			return
		}
		c = IgsCommand{Kind: IgsSetPenColor, Pen: uint8(at(0)), Red: uint8(at(1)), Green: uint8(at(2)), Blue: uint8(at(3))}
	case 'M':
		if n < 1 {
			return
		}
		c = IgsCommand{Kind: IgsDrawingMode, Mode: uint8(at(0))}
	case 'H':
		if n < 1 {
			return
		}
		c = IgsCommand{Kind: IgsHollowSet, Enabled: at(0) != 0}
	case 'W':
		if n < 2 {
			return
		}
		c = IgsCommand{Kind: IgsWriteText, X: at(0), Y: at(1), Text: string(p.text)}
	case 'E':
		if n < 3 {
			return
		}
		c = IgsCommand{Kind: IgsTextEffects, Effects: uint8(at(0)), Size: uint8(at(1)), Rotation: uint8(at(2))}
	case 'b':
		if n < 1 {
			return
		}
		switch p.params[0] {
		case 20:
			if n < 7 {
				return
			}
			c = IgsCommand{Kind: IgsAlterSoundEffect, PlayFlag: uint8(at(1)), SndNum: uint8(at(2)),
				ElementNum: uint8(at(3)), NegativeFlag: uint8(at(4)),
				Thousands: uint16(at(5)), Hundreds: uint16(at(6))}
		case 21:
			c = IgsCommand{Kind: IgsStopAllSound}
		case 22:
			if n < 2 {
				return
			}
			c = IgsCommand{Kind: IgsRestoreSoundEffect, SndNum: uint8(at(1))}
		case 23:
			if n < 2 {
				return
			}
			c = IgsCommand{Kind: IgsSetEffectLoops, Count: at(1)}
		default:
			c = IgsCommand{Kind: IgsBellsAndWhistles, Sound: uint8(at(0))}
		}
	case 'g':
		if n < 1 {
			return
		}
		c = IgsCommand{Kind: IgsGraphicScaling, Mode: uint8(at(0))}
	case 'G':
		if n < 2 {
			return
		}
		c = IgsCommand{Kind: IgsGrabScreen, BlitType: uint8(at(0)), Mode: uint8(at(1)),
			Params: append([]int(nil), p.params[2:]...)}
	case 'I':
		if n < 1 {
			return
		}
		c = IgsCommand{Kind: IgsInitialize, Mode: uint8(at(0))}
	case 'J':
		if n < 6 {
			return
		}
		c = IgsCommand{Kind: IgsEllipticalArc, X: at(0), Y: at(1), XRadius: at(2), YRadius: at(3),
			StartAngle: at(4), EndAngle: at(5)}
	case 'k':
		if n < 1 {
			return
		}
		c = IgsCommand{Kind: IgsCursor, Mode: uint8(at(0))}
	case 'n':
		if n < 6 {
			return
		}
		c = IgsCommand{Kind: IgsChipMusic, Sound: uint8(at(0)), Voice: uint8(at(1)), Volume: uint8(at(2)),
			Pitch: uint8(at(3)), Timing: at(4), StopType: uint8(at(5))}
	case 'N':
		if n < 1 {
			return
		}
		c = IgsCommand{Kind: IgsNoise, Params: append([]int(nil), p.params...)}
	case 'U':
		if n < 5 {
			return
		}
		c = IgsCommand{Kind: IgsRoundedRectangles, X: at(0), Y: at(1), X2: at(2), Y2: at(3), Enabled: at(4) != 0}
	case 'V':
		if n < 5 {
			return
		}
		c = IgsCommand{Kind: IgsPieSlice, X: at(0), Y: at(1), Radius: at(2), StartAngle: at(3), EndAngle: at(4)}
	case 'Y':
		if n < 6 {
			return
		}
		c = IgsCommand{Kind: IgsEllipticalPieSlice, X: at(0), Y: at(1), XRadius: at(2), YRadius: at(3),
			StartAngle: at(4), EndAngle: at(5)}
	case 'Z':
		if n < 4 {
			return
		}
		c = IgsCommand{Kind: IgsFilledRectangle, X: at(0), Y: at(1), X2: at(2), Y2: at(3)}
	case '<':
		if n < 1 {
			return
		}
		c = IgsCommand{Kind: IgsInputCommand, Mode: uint8(at(0)), Params: append([]int(nil), p.params[1:]...)}
	case '?':
		if n < 1 {
			return
		}
		c = IgsCommand{Kind: IgsAskIG, Query: uint8(at(0))}
	case 's':
		if n < 1 {
			return
		}
		c = IgsCommand{Kind: IgsScreenClear, Mode: uint8(at(0))}
	case 'R':
		if n < 2 {
			return
		}
		c = IgsCommand{Kind: IgsSetResolution, Resolution: uint8(at(0)), PaletteSelect: uint8(at(1))}
	case 't':
		if n < 1 {
			return
		}
		c = IgsCommand{Kind: IgsPauseSeconds, Vsyncs: at(0)}
	case 'q':
		if n < 1 {
			return
		}
		c = IgsCommand{Kind: IgsVsyncPause, Vsyncs: at(0)}
	case 'm':
		if n < 2 {
			return
		}
		c = IgsCommand{Kind: IgsCursorMotion, Direction: uint8(at(0)), Count: at(1)}
	case 'p':
		if n < 2 {
			return
		}
		c = IgsCommand{Kind: IgsPositionCursor, X: at(0), Y: at(1)}
	case 'r':
		if n < 1 {
			return
		}
		c = IgsCommand{Kind: IgsRememberCursor, Value: uint16(at(0))}
	case 'v':
		if n < 1 {
			return
		}
		c = IgsCommand{Kind: IgsInverseVideo, Enabled: at(0) != 0}
	case 'w':
		if n < 1 {
			return
		}
		c = IgsCommand{Kind: IgsLineWrap, Enabled: at(0) != 0}
	case 'd':
		if n < 1 {
			return
		}
		c = IgsCommand{Kind: IgsDeleteLine, Count: at(0)}
	case 'i':
		if n < 2 {
			return
		}
		c = IgsCommand{Kind: IgsInsertLine, Mode: uint8(at(0)), Count: at(1)}
	case 'l':
		if n < 1 {
			return
		}
		c = IgsCommand{Kind: IgsClearLine, Mode: uint8(at(0))}
	case 'c':
		// Text color, pen 1 selects the foreground.
		if n < 2 {
			return
		}
		if at(0) == 1 {
			c = IgsCommand{Kind: IgsSetForeground, Color: uint8(at(1))}
		} else {
			c = IgsCommand{Kind: IgsSetBackground, Color: uint8(at(1))}
		}
	case 'X':
		p.emitExtended(sink)
		return
	default:
		return
	}

	sink.EmitIgs(c)
}

// emitExtended dispatches the numeric X sub-commands.
func (p *IgsParser) emitExtended(sink CommandSink) {
	n := len(p.params)
	if n == 0 {
		return
	}
	at := func(i int) int {
		if i < n {
			return p.params[i]
		}
		return 0
	}

	var c IgsCommand
	switch p.params[0] {
	case 0:
		if n < 6 {
			return
		}
		c = IgsCommand{Kind: IgsSprayPaint, X: at(1), Y: at(2), Width: at(3), Height: at(4), Density: at(5)}
	case 1:
		if n < 3 {
			return
		}
		c = IgsCommand{Kind: IgsSetColorRegister, Register: uint8(at(1)), Value: uint16(at(2))}
	case 2:
		c = IgsCommand{Kind: IgsSetRandomRange, Params: append([]int(nil), p.params[1:]...)}
	case 3:
		c = IgsCommand{Kind: IgsRightMouseMacro, Params: append([]int(nil), p.params[1:]...)}
	case 4:
		// Numeric-only form carries the special clear/loopback IDs;
		// full zone definitions arrive through the string state.
		if n < 2 {
			return
		}
		c = IgsCommand{Kind: IgsDefineZone, ZoneID: at(1)}
	case 5:
		if n < 2 {
			return
		}
		c = IgsCommand{Kind: IgsFlowControl, Mode: uint8(at(1)), Params: append([]int(nil), p.params[2:]...)}
	case 6:
		if n < 2 {
			return
		}
		c = IgsCommand{Kind: IgsLeftMouseButton, Mode: uint8(at(1))}
	case 7:
		if n < 2 {
			return
		}
		c = IgsCommand{Kind: IgsLoadFillPattern, Pattern: uint8(at(1)), Text: string(p.text)}
	case 8:
		if n < 5 {
			return
		}
		c = IgsCommand{Kind: IgsRotateColorRegisters, StartReg: uint8(at(1)), EndReg: uint8(at(2)),
			Count: at(3), Delay: at(4)}
	case 9:
		c = IgsCommand{Kind: IgsLoadMidiBuffer, Params: append([]int(nil), p.params[1:]...)}
	case 10:
		if n < 3 {
			return
		}
		c = IgsCommand{Kind: IgsSetDrawtoBegin, X: at(1), Y: at(2)}
	case 11:
		c = IgsCommand{Kind: IgsLoadBitblitMemory, Params: append([]int(nil), p.params[1:]...)}
	case 12:
		c = IgsCommand{Kind: IgsLoadColorPalette, Params: append([]int(nil), p.params[1:]...)}
	default:
		sink.ReportError(invalidParameter("ExtendedCommand", uint16(p.params[0])), ErrorLevelError)
		return
	}

	sink.EmitIgs(c)
}
