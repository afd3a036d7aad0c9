// Copyright © 2026 Icebox contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: parser/rip.go
// Summary: RIPscrip parser. Commands start with !| and carry fixed
//          width base-36 parameters; plain text falls through to an
//          embedded ANSI parser.
// Notes: A parameter error aborts the whole command and drops back to
//        ANSI passthrough. Backslash before EOL continues a command on
//        the next line.

package parser

type ripState uint8

const (
	ripDefault ripState = iota
	ripGotExclaim
	ripGotPipe
	ripReadLevel1
	ripReadLevel9
	ripReadParams
	ripSkipToEOL
	ripGotEscape
	ripGotEscBracket
	ripReadAnsiNumber
)

// ripBuilder accumulates one command's parameters.
type ripBuilder struct {
	cmd        byte
	level      uint8
	paramState int
	npoints    int
	params     []int
	text       []byte
	charParam  byte
}

func (b *ripBuilder) reset() {
	b.cmd = 0
	b.level = 0
	b.paramState = 0
	b.npoints = 0
	b.params = b.params[:0]
	b.text = b.text[:0]
	b.charParam = 0
}

// digit folds a base-36 digit into params[idx], starting a new value
// on even paramState. Reports completion once paramState passes final.
func (b *ripBuilder) digit(ch byte, idx, final int) (done, ok bool) {
	d, ok := ParseBase36Digit(ch)
	if !ok {
		return false, false
	}
	if b.paramState%2 == 0 {
		for len(b.params) <= idx {
			b.params = append(b.params, 0)
		}
		b.params[idx] = d
	} else {
		b.params[idx] = b.params[idx]*36 + d
	}
	b.paramState++
	return b.paramState > final, true
}

// accumulate folds a digit into params[idx] without positional reset.
func (b *ripBuilder) accumulate(d, idx int) {
	for len(b.params) <= idx {
		b.params = append(b.params, 0)
	}
	b.params[idx] = b.params[idx]*36 + d
}

func (b *ripBuilder) at(idx int) int {
	if idx < len(b.params) {
		return b.params[idx]
	}
	return 0
}

// RipParser decodes RIPscrip command streams. Non-RIP bytes pass
// through to an embedded AnsiParser. ESC[0! / ESC[1! / ESC[2! query,
// disable and enable RIPscrip processing.
type RipParser struct {
	ripMode     bool
	state       ripState
	returnState ripState
	ansiDigits  []byte
	b           ripBuilder
	ansi        *AnsiParser
	enabled     bool
}

func NewRipParser() *RipParser {
	return &RipParser{
		ansi:    NewAnsiParser(),
		enabled: true,
	}
}

func (p *RipParser) Parse(input []byte, sink CommandSink) {
	for _, ch := range input {
		// Line continuation applies to any command-reading state.
		if p.ripMode && ch == '\\' &&
			p.state != ripSkipToEOL && p.state != ripDefault &&
			p.state != ripGotEscape && p.state != ripGotEscBracket &&
			p.state != ripReadAnsiNumber {
			p.returnState = p.state
			p.state = ripSkipToEOL
			continue
		}

		switch p.state {
		case ripDefault:
			switch {
			case ch == 0x1B:
				p.state = ripGotEscape
			case ch == '!' && (p.enabled || p.ripMode):
				p.ripMode = true
				p.state = ripGotExclaim
			default:
				p.ripMode = false
				p.ansi.Parse([]byte{ch}, sink)
			}

		case ripGotEscape:
			if ch == '[' {
				p.state = ripGotEscBracket
			} else {
				p.state = ripDefault
				p.ansi.Parse([]byte{0x1B, ch}, sink)
			}

		case ripGotEscBracket:
			switch {
			case ch == '!':
				// ESC[! is the version query, same as ESC[0!.
				sink.Request(RequestRipTerminalID)
				p.state = ripDefault
			case ch >= '0' && ch <= '9':
				p.ansiDigits = append(p.ansiDigits[:0], ch)
				p.state = ripReadAnsiNumber
			default:
				p.state = ripDefault
				p.ansi.Parse([]byte{0x1B, '['}, sink)
				p.ansi.Parse([]byte{ch}, sink)
			}

		case ripReadAnsiNumber:
			switch {
			case ch == '!':
				n, _ := parseDecimal(p.ansiDigits)
				switch n {
				case 0:
					sink.Request(RequestRipTerminalID)
				case 1:
					p.enabled = false
				case 2:
					p.enabled = true
				default:
					p.ansi.Parse([]byte{0x1B, '['}, sink)
					p.ansi.Parse(p.ansiDigits, sink)
					p.ansi.Parse([]byte{'!'}, sink)
				}
				p.state = ripDefault
			case ch >= '0' && ch <= '9':
				p.ansiDigits = append(p.ansiDigits, ch)
			default:
				p.state = ripDefault
				p.ansi.Parse([]byte{0x1B, '['}, sink)
				p.ansi.Parse(p.ansiDigits, sink)
				p.ansi.Parse([]byte{ch}, sink)
			}

		case ripGotExclaim:
			switch ch {
			case '!':
				// Repeated bang, stay put.
			case '|':
				p.state = ripGotPipe
			case '\n', '\r':
				p.ripMode = false
				p.state = ripDefault
				p.ansi.Parse([]byte{ch}, sink)
			default:
				// Not a RIP command after all.
				p.ripMode = false
				p.state = ripDefault
				p.ansi.Parse([]byte{'!'}, sink)
				p.ansi.Parse([]byte{ch}, sink)
			}

		case ripGotPipe:
			switch ch {
			case '1':
				p.b.level = 1
				p.state = ripReadLevel1
			case '9':
				p.b.level = 9
				p.state = ripReadLevel9
			case '#':
				p.b.cmd = '#'
				p.b.level = 0
				p.emitCommand(sink)
				p.b.reset()
				p.ripMode = false
				p.state = ripDefault
			default:
				p.b.level = 0
				p.b.cmd = ch
				p.state = ripReadParams
			}

		case ripReadLevel1, ripReadLevel9:
			p.b.cmd = ch
			p.state = ripReadParams

		case ripReadParams:
			p.parseParams(ch, sink)

		case ripSkipToEOL:
			if ch == '\n' {
				p.state = p.returnState
			}
		}
	}
}

func (p *RipParser) Flush(CommandSink) {
	p.b.reset()
	p.state = ripDefault
	p.ripMode = false
	p.ansi.Flush(nil)
}

// parseParams consumes one parameter byte of the current command. A
// bad digit aborts the command and leaves RIP mode.
func (p *RipParser) parseParams(ch byte, sink CommandSink) {
	b := &p.b

	switch ch {
	case '\r':
		return
	case '\n':
		p.emitCommand(sink)
		b.reset()
		p.state = ripDefault
		return
	case '|':
		p.emitCommand(sink)
		b.reset()
		p.state = ripGotPipe
		return
	}

	done, ok := true, true

	switch {
	// Commands without parameters complete on the next byte.
	case b.level == 0 && (b.cmd == '*' || b.cmd == 'e' || b.cmd == 'E' || b.cmd == 'H' || b.cmd == '>' || b.cmd == '#'),
		b.level == 1 && (b.cmd == 'K' || b.cmd == 'E'):
		p.emitCommand(sink)
		b.reset()
		p.state = ripGotExclaim
		return

	// Commands that consume the rest as a string.
	case b.level == 0 && (b.cmd == 'T' || b.cmd == '$'),
		b.level == 1 && (b.cmd == 'R' || b.cmd == 'F'):
		b.text = append(b.text, ch)
		done = false

	case b.level == 0 && b.cmd == '@':
		if b.paramState < 4 {
			_, ok = b.digit(ch, b.paramState/2, 3)
			done = false
		} else {
			b.text = append(b.text, ch)
			done = false
		}

	case b.level == 1 && b.cmd == 'U':
		if b.paramState < 14 {
			_, ok = b.digit(ch, b.paramState/2, 13)
			done = false
		} else {
			b.text = append(b.text, ch)
			done = false
		}

	case b.level == 1 && b.cmd == 'M':
		// num, x0, y0, x1, y1 two digits each, clk and clr one digit,
		// res five digits, then text.
		if b.paramState <= 16 {
			d, okd := ParseBase36Digit(ch)
			if !okd {
				ok = false
				break
			}
			if len(b.params) == 0 {
				b.params = make([]int, 8)
			}
			switch {
			case b.paramState <= 1:
				b.params[0] = b.params[0]*36 + d
			case b.paramState <= 3:
				b.params[1] = b.params[1]*36 + d
			case b.paramState <= 5:
				b.params[2] = b.params[2]*36 + d
			case b.paramState <= 7:
				b.params[3] = b.params[3]*36 + d
			case b.paramState <= 9:
				b.params[4] = b.params[4]*36 + d
			case b.paramState == 10:
				b.params[5] = d
			case b.paramState == 11:
				b.params[6] = d
			default:
				b.params[7] = b.params[7]*36 + d
			}
			b.paramState++
		} else {
			b.text = append(b.text, ch)
		}
		done = false

	case b.level == 1 && b.cmd == 'W':
		if b.paramState == 0 {
			b.charParam = ch
			b.paramState++
		} else {
			b.text = append(b.text, ch)
		}
		done = false

	case b.level == 1 && b.cmd == 'I':
		if b.paramState < 10 {
			_, ok = b.digit(ch, b.paramState/2, 9)
			done = false
		} else {
			b.text = append(b.text, ch)
			done = false
		}

	case b.level == 0 && (b.cmd == 'c' || b.cmd == 'W'):
		done, ok = b.digit(ch, 0, 1)

	case b.level == 0 && (b.cmd == 'g' || b.cmd == 'm' || b.cmd == 'X'):
		done, ok = b.digit(ch, b.paramState/2, 3)

	case b.level == 0 && b.cmd == 'a':
		done, ok = b.digit(ch, b.paramState/2, 3)

	case b.level == 0 && (b.cmd == 'C' || b.cmd == 'F'):
		done, ok = b.digit(ch, b.paramState/2, 5)

	case b.level == 0 && (b.cmd == 'v' || b.cmd == 'L' || b.cmd == 'R' || b.cmd == 'B' || b.cmd == 'o'):
		done, ok = b.digit(ch, b.paramState/2, 7)

	case b.level == 0 && b.cmd == 'w':
		// Four two-digit coordinates, then wrap and size one digit each.
		switch {
		case b.paramState < 8:
			_, ok = b.digit(ch, b.paramState/2, 8)
			done = false
		default:
			d, okd := ParseBase36Digit(ch)
			if !okd {
				ok = false
				break
			}
			b.params = append(b.params, d)
			b.paramState++
			done = b.paramState > 9
		}

	case b.level == 0 && (b.cmd == 'A' || b.cmd == 'I'):
		done, ok = b.digit(ch, b.paramState/2, 9)

	case b.level == 0 && (b.cmd == 'O' || b.cmd == 'V' || b.cmd == 'i'):
		done, ok = b.digit(ch, b.paramState/2, 11)

	case b.level == 0 && b.cmd == 'Y':
		done, ok = b.digit(ch, b.paramState/2, 7)

	case b.level == 0 && b.cmd == 'Z':
		done, ok = b.digit(ch, b.paramState/2, 17)

	case b.level == 0 && b.cmd == '=':
		// style 2 digits, user pattern 4 digits, thickness 2 digits.
		d, okd := ParseBase36Digit(ch)
		if !okd {
			ok = false
			break
		}
		switch {
		case b.paramState <= 1:
			b.accumulate(d, 0)
		case b.paramState <= 5:
			b.accumulate(d, 1)
		default:
			b.accumulate(d, 2)
		}
		b.paramState++
		done = b.paramState > 7

	case b.level == 0 && b.cmd == 'S':
		done, ok = b.digit(ch, b.paramState/2, 3)

	case b.level == 0 && b.cmd == 's':
		done, ok = b.digit(ch, b.paramState/2, 17)

	case b.level == 0 && b.cmd == 'Q':
		// Sixteen palette entries, two digits each.
		d, okd := ParseBase36Digit(ch)
		if !okd {
			ok = false
			break
		}
		if b.paramState%2 == 0 {
			b.params = append(b.params, d)
		} else {
			b.params[len(b.params)-1] = b.params[len(b.params)-1]*36 + d
		}
		b.paramState++
		done = b.paramState >= 32

	case b.level == 0 && (b.cmd == 'P' || b.cmd == 'p' || b.cmd == 'l'):
		d, okd := ParseBase36Digit(ch)
		if !okd {
			ok = false
			break
		}
		if b.paramState < 2 {
			if b.paramState == 0 {
				b.npoints = d
			} else {
				b.npoints = b.npoints*36 + d
			}
			b.paramState++
			done = false
		} else {
			if b.paramState%2 == 0 {
				b.params = append(b.params, d)
			} else {
				b.params[len(b.params)-1] = b.params[len(b.params)-1]*36 + d
			}
			b.paramState++
			done = b.paramState >= 2+b.npoints*4
		}

	case b.level == 1 && (b.cmd == 'T' || b.cmd == 'C' || b.cmd == 'P'):
		done, ok = b.digit(ch, b.paramState/2, 9)

	case b.level == 1 && b.cmd == 't':
		if b.paramState == 0 {
			d, okd := ParseBase36Digit(ch)
			if !okd {
				ok = false
				break
			}
			b.params = append(b.params, d)
			b.paramState++
		} else {
			b.text = append(b.text, ch)
		}
		done = false

	case b.level == 1 && b.cmd == 'B':
		// Three 2-digit params, 4-digit flags, ten 2-digit params,
		// then a 7-digit reserved field.
		d, okd := ParseBase36Digit(ch)
		if !okd {
			ok = false
			break
		}
		state := b.paramState
		switch {
		case state <= 5:
			idx := state / 2
			if state%2 == 0 {
				for len(b.params) <= idx {
					b.params = append(b.params, 0)
				}
				b.params[idx] = d
			} else {
				b.params[idx] = b.params[idx]*36 + d
			}
		case state <= 9:
			b.accumulate(d, 3)
		case state <= 29:
			idx := 4 + (state-10)/2
			if (state-10)%2 == 0 {
				for len(b.params) <= idx {
					b.params = append(b.params, 0)
				}
				b.params[idx] = d
			} else {
				b.params[idx] = b.params[idx]*36 + d
			}
		default:
			b.accumulate(d, 14)
		}
		b.paramState++
		done = b.paramState > 36

	case b.level == 1 && b.cmd == 'G':
		done, ok = b.digit(ch, b.paramState/2, 11)

	case b.level == 1 && b.cmd == 'D':
		// flags 3 digits, res 2 digits, then text.
		if b.paramState <= 4 {
			d, okd := ParseBase36Digit(ch)
			if !okd {
				ok = false
				break
			}
			if b.paramState <= 2 {
				b.accumulate(d, 0)
			} else {
				b.accumulate(d, 1)
			}
			b.paramState++
		} else {
			b.text = append(b.text, ch)
		}
		done = false

	case b.level == 1 && b.cmd == 0x1B:
		// Query: mode 1 digit, res 3 digits, then text.
		if b.paramState <= 3 {
			if d, okd := ParseBase36Digit(ch); okd {
				if b.paramState == 0 {
					b.params = append(b.params[:0], d, 0)
				} else {
					b.params[1] = b.params[1]*36 + d
				}
				b.paramState++
			} else {
				b.text = append(b.text, ch)
				b.paramState = 4
			}
		} else {
			b.text = append(b.text, ch)
		}
		done = false

	case b.level == 9 && b.cmd == 0x1B:
		// EnterBlockMode: mode 1, proto 1, file type 2, res 4, then
		// the file name.
		if b.paramState < 8 {
			if d, okd := ParseBase36Digit(ch); okd {
				var idx int
				switch {
				case b.paramState <= 1:
					idx = b.paramState
				case b.paramState <= 3:
					idx = 2
				default:
					idx = 3
				}
				b.accumulate(d, idx)
				b.paramState++
			} else {
				b.text = append(b.text, ch)
				b.paramState = 8
			}
		} else {
			b.text = append(b.text, ch)
		}
		done = false

	default:
		ok = false
	}

	if !ok {
		// Abort the command entirely, back to ANSI passthrough.
		b.reset()
		p.ripMode = false
		p.state = ripDefault
		return
	}
	if done {
		p.emitCommand(sink)
		b.reset()
		p.state = ripGotExclaim
	}
}

// emitCommand converts the builder into a RipCommand if the collected
// parameters are sufficient. Unknown commands emit nothing.
func (p *RipParser) emitCommand(sink CommandSink) {
	b := &p.b
	n := len(b.params)
	text := string(b.text)

	var cmd RipCommand
	switch {
	case b.level == 0 && b.cmd == 'w' && n >= 5:
		cmd = RipCommand{Kind: RipTextWindow, X0: b.params[0], Y0: b.params[1], X1: b.params[2], Y1: b.params[3],
			Wrap: b.params[4] != 0, Size: b.at(5)}
	case b.level == 0 && b.cmd == 'v' && n >= 4:
		cmd = RipCommand{Kind: RipViewPort, X0: b.params[0], Y0: b.params[1], X1: b.params[2], Y1: b.params[3]}
	case b.level == 0 && b.cmd == '*':
		cmd = RipCommand{Kind: RipResetWindows}
	case b.level == 0 && b.cmd == 'e':
		cmd = RipCommand{Kind: RipEraseWindow}
	case b.level == 0 && b.cmd == 'E':
		cmd = RipCommand{Kind: RipEraseView}
	case b.level == 0 && b.cmd == 'g' && n >= 2:
		cmd = RipCommand{Kind: RipGotoXY, X: b.params[0], Y: b.params[1]}
	case b.level == 0 && b.cmd == 'H':
		cmd = RipCommand{Kind: RipHome}
	case b.level == 0 && b.cmd == '>':
		cmd = RipCommand{Kind: RipEraseEOL}
	case b.level == 0 && b.cmd == 'c' && n >= 1:
		cmd = RipCommand{Kind: RipColor, Color: b.params[0]}
	case b.level == 0 && b.cmd == 'Q':
		cmd = RipCommand{Kind: RipSetPalette, Colors: append([]int(nil), b.params...)}
	case b.level == 0 && b.cmd == 'a' && n >= 2:
		cmd = RipCommand{Kind: RipOnePalette, Color: b.params[0], Value: b.params[1]}
	case b.level == 0 && b.cmd == 'W' && n >= 1:
		cmd = RipCommand{Kind: RipWriteMode, Mode: b.params[0]}
	case b.level == 0 && b.cmd == 'm' && n >= 2:
		cmd = RipCommand{Kind: RipMove, X: b.params[0], Y: b.params[1]}
	case b.level == 0 && b.cmd == 'T':
		cmd = RipCommand{Kind: RipText, Text: text}
	case b.level == 0 && b.cmd == '@' && n >= 2:
		cmd = RipCommand{Kind: RipTextXY, X: b.params[0], Y: b.params[1], Text: text}
	case b.level == 0 && b.cmd == 'Y' && n >= 4:
		cmd = RipCommand{Kind: RipFontStyle, Font: b.params[0], Direction: b.params[1], Size: b.params[2], Res: b.params[3]}
	case b.level == 0 && b.cmd == 'X' && n >= 2:
		cmd = RipCommand{Kind: RipPixel, X: b.params[0], Y: b.params[1]}
	case b.level == 0 && b.cmd == 'L' && n >= 4:
		cmd = RipCommand{Kind: RipLine, X0: b.params[0], Y0: b.params[1], X1: b.params[2], Y1: b.params[3]}
	case b.level == 0 && b.cmd == 'R' && n >= 4:
		cmd = RipCommand{Kind: RipRectangle, X0: b.params[0], Y0: b.params[1], X1: b.params[2], Y1: b.params[3]}
	case b.level == 0 && b.cmd == 'B' && n >= 4:
		cmd = RipCommand{Kind: RipBar, X0: b.params[0], Y0: b.params[1], X1: b.params[2], Y1: b.params[3]}
	case b.level == 0 && b.cmd == 'C' && n >= 3:
		cmd = RipCommand{Kind: RipCircle, X: b.params[0], Y: b.params[1], Radius: b.params[2]}
	case b.level == 0 && b.cmd == 'O' && n >= 6:
		cmd = RipCommand{Kind: RipOval, X: b.params[0], Y: b.params[1], StartAngle: b.params[2], EndAngle: b.params[3],
			XRadius: b.params[4], YRadius: b.params[5]}
	case b.level == 0 && b.cmd == 'o' && n >= 4:
		cmd = RipCommand{Kind: RipFilledOval, X: b.params[0], Y: b.params[1], XRadius: b.params[2], YRadius: b.params[3]}
	case b.level == 0 && b.cmd == 'A' && n >= 5:
		cmd = RipCommand{Kind: RipArc, X: b.params[0], Y: b.params[1], StartAngle: b.params[2], EndAngle: b.params[3], Radius: b.params[4]}
	case b.level == 0 && b.cmd == 'V' && n >= 6:
		cmd = RipCommand{Kind: RipOvalArc, X: b.params[0], Y: b.params[1], StartAngle: b.params[2], EndAngle: b.params[3],
			XRadius: b.params[4], YRadius: b.params[5]}
	case b.level == 0 && b.cmd == 'I' && n >= 5:
		cmd = RipCommand{Kind: RipPieSlice, X: b.params[0], Y: b.params[1], StartAngle: b.params[2], EndAngle: b.params[3], Radius: b.params[4]}
	case b.level == 0 && b.cmd == 'i' && n >= 6:
		cmd = RipCommand{Kind: RipOvalPieSlice, X: b.params[0], Y: b.params[1], StartAngle: b.params[2], EndAngle: b.params[3],
			XRadius: b.params[4], YRadius: b.params[5]}
	case b.level == 0 && b.cmd == 'Z' && n >= 9:
		cmd = RipCommand{Kind: RipBezier, Points: append([]int(nil), b.params[:8]...), Count: b.params[8]}
	case b.level == 0 && b.cmd == 'P':
		cmd = RipCommand{Kind: RipPolygon, Points: append([]int(nil), b.params...)}
	case b.level == 0 && b.cmd == 'p':
		cmd = RipCommand{Kind: RipFilledPolygon, Points: append([]int(nil), b.params...)}
	case b.level == 0 && b.cmd == 'l':
		cmd = RipCommand{Kind: RipPolyLine, Points: append([]int(nil), b.params...)}
	case b.level == 0 && b.cmd == 'F' && n >= 3:
		cmd = RipCommand{Kind: RipFill, X: b.params[0], Y: b.params[1], Border: b.params[2]}
	case b.level == 0 && b.cmd == '=' && n >= 3:
		cmd = RipCommand{Kind: RipLineStyle, Style: b.params[0], UserPat: b.params[1], Thickness: b.params[2]}
	case b.level == 0 && b.cmd == 'S' && n >= 2:
		cmd = RipCommand{Kind: RipFillStyle, Pattern: b.params[0], Color: b.params[1]}
	case b.level == 0 && b.cmd == 's' && n >= 9:
		cmd = RipCommand{Kind: RipFillPattern, Colors: append([]int(nil), b.params[:9]...)}
	case b.level == 0 && b.cmd == '$':
		cmd = RipCommand{Kind: RipTextVariable, Text: text}
	case b.level == 0 && b.cmd == '#':
		cmd = RipCommand{Kind: RipNoMore}

	case b.level == 1 && b.cmd == 'M' && n >= 8:
		cmd = RipCommand{Kind: RipMouse, Num: b.params[0], X0: b.params[1], Y0: b.params[2], X1: b.params[3], Y1: b.params[4],
			Clicks: b.params[5], Clear: b.params[6], Res: b.params[7], Text: text}
	case b.level == 1 && b.cmd == 'K':
		cmd = RipCommand{Kind: RipMouseFields}
	case b.level == 1 && b.cmd == 'T' && n >= 5:
		cmd = RipCommand{Kind: RipBeginText, X0: b.params[0], Y0: b.params[1], X1: b.params[2], Y1: b.params[3], Res: b.params[4]}
	case b.level == 1 && b.cmd == 't':
		cmd = RipCommand{Kind: RipRegionText, Justify: n > 0 && b.params[0] != 0, Text: text}
	case b.level == 1 && b.cmd == 'E':
		cmd = RipCommand{Kind: RipEndText}
	case b.level == 1 && b.cmd == 'C' && n >= 5:
		cmd = RipCommand{Kind: RipGetImage, X0: b.params[0], Y0: b.params[1], X1: b.params[2], Y1: b.params[3], Res: b.params[4]}
	case b.level == 1 && b.cmd == 'P' && n >= 4:
		cmd = RipCommand{Kind: RipPutImage, X: b.params[0], Y: b.params[1], Mode: b.params[2], Res: b.params[3]}
	case b.level == 1 && b.cmd == 'W':
		cmd = RipCommand{Kind: RipWriteIcon, IconRes: b.charParam, Text: text}
	case b.level == 1 && b.cmd == 'I' && n >= 5:
		cmd = RipCommand{Kind: RipLoadIcon, X: b.params[0], Y: b.params[1], Mode: b.params[2], Clipboard: b.params[3],
			Res: b.params[4], Text: text}
	case b.level == 1 && b.cmd == 'B' && n >= 15:
		cmd = RipCommand{Kind: RipButtonStyle, Width: b.params[0], Height: b.params[1], Orientation: b.params[2],
			Flags: b.params[3], BevelSize: b.params[4], LabelColor: b.params[5], ShadowColor: b.params[6],
			Bright: b.params[7], Dark: b.params[8], Surface: b.params[9], Group: b.params[10],
			Flags2: b.params[11], UnderlineColor: b.params[12], CornerColor: b.params[13], Res: b.params[14]}
	case b.level == 1 && b.cmd == 'U' && n >= 7:
		cmd = RipCommand{Kind: RipButton, X0: b.params[0], Y0: b.params[1], X1: b.params[2], Y1: b.params[3],
			Hotkey: b.params[4], Flags: b.params[5], Res: b.params[6], Text: text}
	case b.level == 1 && b.cmd == 'D' && n >= 2:
		cmd = RipCommand{Kind: RipDefine, Flags: b.params[0], Res: b.params[1], Text: text}
	case b.level == 1 && b.cmd == 0x1B && n >= 2:
		cmd = RipCommand{Kind: RipQuery, Mode: b.params[0], Res: b.params[1], Text: text}
	case b.level == 1 && b.cmd == 'G' && n >= 6:
		cmd = RipCommand{Kind: RipCopyRegion, X0: b.params[0], Y0: b.params[1], X1: b.params[2], Y1: b.params[3],
			Res: b.params[4], DestLine: b.params[5]}
	case b.level == 1 && b.cmd == 'R':
		cmd = RipCommand{Kind: RipReadScene, Text: text}
	case b.level == 1 && b.cmd == 'F':
		cmd = RipCommand{Kind: RipFileQuery, Text: text}

	case b.level == 9 && b.cmd == 0x1B && n >= 4:
		cmd = RipCommand{Kind: RipEnterBlockMode, Mode: b.params[0], Proto: b.params[1], FileType: b.params[2],
			Res: b.params[3], Text: text}

	default:
		return
	}

	sink.EmitRip(cmd)
}
