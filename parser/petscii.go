// Copyright © 2026 Icebox contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: parser/petscii.go
// Summary: PETSCII parser for Commodore 8-bit systems (C64, C128, PET).
// Notes: Printable bytes are remapped to internal screen codes before
//        delivery. Reverse video sets the high bit on the screen code.
//        C128 ESC sequences are recognized; unsupported ones are no-ops.

package parser

// C64 terminal dimensions.
const (
	C64Width  = 40
	C64Height = 25
)

// C64 palette indices.
const (
	petsciiBlack      = 0x00
	petsciiWhite      = 0x01
	petsciiRed        = 0x02
	petsciiCyan       = 0x03
	petsciiPurple     = 0x04
	petsciiGreen      = 0x05
	petsciiBlue       = 0x06
	petsciiYellow     = 0x07
	petsciiOrange     = 0x08
	petsciiBrown      = 0x09
	petsciiPink       = 0x0A
	petsciiGrey1      = 0x0B
	petsciiGrey2      = 0x0C
	petsciiLightGreen = 0x0D
	petsciiLightBlue  = 0x0E
	petsciiGrey3      = 0x0F
)

// petsciiColorCodes maps PETSCII color control bytes to palette indices.
var petsciiColorCodes = map[byte]uint8{
	0x05: petsciiWhite,
	0x1C: petsciiRed,
	0x1E: petsciiGreen,
	0x1F: petsciiBlue,
	0x81: petsciiOrange,
	0x90: petsciiBlack,
	0x95: petsciiBrown,
	0x96: petsciiPink,
	0x97: petsciiGrey1,
	0x98: petsciiGrey2,
	0x99: petsciiLightGreen,
	0x9A: petsciiLightBlue,
	0x9B: petsciiGrey3,
	0x9C: petsciiPurple,
	0x9E: petsciiYellow,
	0x9F: petsciiCyan,
}

// PetsciiParser decodes the Commodore character protocol. It tracks
// reverse video, the shifted/unshifted character set and the C128
// escape prefix across calls.
type PetsciiParser struct {
	gotEsc        bool
	reverseMode   bool
	underlineMode bool
	// shiftMode selects the shifted set (uppercase + lowercase) over
	// the unshifted set (uppercase + graphics).
	shiftMode bool
	cShift    bool
}

func NewPetsciiParser() *PetsciiParser { return &PetsciiParser{} }

// applyReverse sets the high bit of a screen code in reverse mode.
func (p *PetsciiParser) applyReverse(ch byte) byte {
	if p.reverseMode {
		return ch | 0x80
	}
	return ch
}

// petsciiToInternal converts a PETSCII byte to the internal screen
// code, or reports false for non-printable codes.
func (p *PetsciiParser) petsciiToInternal(code byte) (byte, bool) {
	switch {
	case code >= 0x20 && code <= 0x3F:
		return code, true
	case code >= 0x40 && code <= 0x5F:
		return code - 0x40, true
	case code >= 0x60 && code <= 0x7F:
		return code - 0x20, true
	case code >= 0xA0 && code <= 0xBF:
		return code - 0x40, true
	case code >= 0xC0 && code <= 0xFE:
		return code - 0x80, true
	}
	return 0, false
}

func (p *PetsciiParser) emitChar(sink CommandSink, b byte) {
	if ch, ok := p.petsciiToInternal(b); ok {
		sink.Print([]byte{p.applyReverse(ch)})
	}
}

func (p *PetsciiParser) emitRun(sink CommandSink, run []byte) {
	for _, b := range run {
		p.emitChar(sink, b)
	}
}

func (p *PetsciiParser) Parse(input []byte, sink CommandSink) {
	start := 0

	for i := 0; i < len(input); i++ {
		b := input[i]

		if p.gotEsc {
			p.gotEsc = false
			p.handleC128Escape(b, sink)
			start = i + 1
			continue
		}

		if color, ok := petsciiColorCodes[b]; ok {
			p.emitRun(sink, input[start:i])
			sink.Emit(Sgr(SgrAttribute{Kind: SgrForeground, Color: BaseColor(color)}))
			start = i + 1
			continue
		}

		switch b {
		case 0x02: // underline on (C128)
			p.emitRun(sink, input[start:i])
			p.underlineMode = true
			sink.Emit(Sgr(SgrAttribute{Kind: SgrUnderline, Underline: UnderlineSingle}))
			start = i + 1
		case 0x03: // underline off (C128)
			p.emitRun(sink, input[start:i])
			p.underlineMode = false
			sink.Emit(Sgr(SgrAttribute{Kind: SgrUnderline, Underline: UnderlineOff}))
			start = i + 1
		case 0x07:
			p.emitRun(sink, input[start:i])
			sink.Emit(TerminalCommand{Kind: CmdBell})
			start = i + 1
		case 0x08: // capital shift off
			p.emitRun(sink, input[start:i])
			p.cShift = false
			start = i + 1
		case 0x09: // capital shift on
			p.emitRun(sink, input[start:i])
			p.cShift = true
			start = i + 1
		case 0x0A: // PETSCII uses 0x0A as carriage return
			p.emitRun(sink, input[start:i])
			sink.Emit(TerminalCommand{Kind: CmdCarriageReturn})
			start = i + 1
		case 0x0D: // line feed, resets reverse mode
			p.emitRun(sink, input[start:i])
			sink.Emit(TerminalCommand{Kind: CmdLineFeed})
			p.reverseMode = false
			start = i + 1
		case 0x8D: // line feed without reverse reset
			p.emitRun(sink, input[start:i])
			sink.Emit(TerminalCommand{Kind: CmdLineFeed})
			start = i + 1
		case 0x0E: // unshifted set (uppercase + graphics)
			p.emitRun(sink, input[start:i])
			p.shiftMode = false
			sink.Emit(TerminalCommand{Kind: CmdSetFontPage, N: 0})
			start = i + 1
		case 0x0F, 0x8E: // shifted set (uppercase + lowercase)
			p.emitRun(sink, input[start:i])
			p.shiftMode = true
			sink.Emit(TerminalCommand{Kind: CmdSetFontPage, N: 1})
			start = i + 1
		case 0x11:
			p.emitRun(sink, input[start:i])
			sink.Emit(MoveCursor(Down, 1))
			start = i + 1
		case 0x91:
			p.emitRun(sink, input[start:i])
			sink.Emit(MoveCursor(Up, 1))
			start = i + 1
		case 0x1D:
			p.emitRun(sink, input[start:i])
			sink.Emit(MoveCursor(Right, 1))
			start = i + 1
		case 0x9D:
			p.emitRun(sink, input[start:i])
			sink.Emit(MoveCursor(Left, 1))
			start = i + 1
		case 0x12: // reverse on
			p.emitRun(sink, input[start:i])
			p.reverseMode = true
			start = i + 1
		case 0x92: // reverse off
			p.emitRun(sink, input[start:i])
			p.reverseMode = false
			sink.Emit(Sgr(SgrAttribute{Kind: SgrInverse, On: false}))
			start = i + 1
		case 0x13: // home
			p.emitRun(sink, input[start:i])
			sink.Emit(CursorPosition(1, 1))
			start = i + 1
		case 0x14: // backspace wraps to end of previous line on the C64
			p.emitRun(sink, input[start:i])
			sink.Emit(MoveCursor(Left, 1))
			sink.Emit(TerminalCommand{Kind: CmdDelete})
			start = i + 1
		case 0x1B: // C128 escape prefix
			p.emitRun(sink, input[start:i])
			p.gotEsc = true
			start = i + 1
		case 0x93: // clear screen and home
			p.emitRun(sink, input[start:i])
			sink.Emit(TerminalCommand{Kind: CmdEraseInDisplay, EraseDisplay: EraseDisplayAll})
			sink.Emit(CursorPosition(1, 1))
			start = i + 1
		case 0x94: // insert
			p.emitRun(sink, input[start:i])
			sink.Print([]byte{' '})
			start = i + 1
		case 0xFF: // PI
			p.emitRun(sink, input[start:i])
			sink.Print([]byte{94})
			start = i + 1
		}
	}

	if start < len(input) && !p.gotEsc {
		p.emitRun(sink, input[start:])
	}
}

// handleC128Escape dispatches the byte after a C128 ESC. Many of these
// codes control hardware features with no screen-model equivalent and
// are accepted as no-ops.
func (p *PetsciiParser) handleC128Escape(b byte, sink CommandSink) {
	switch b {
	case 'Q':
		sink.Emit(TerminalCommand{Kind: CmdEraseInLine, EraseLine: EraseLineCursorToEnd})
	case 'P':
		sink.Emit(TerminalCommand{Kind: CmdEraseInLine, EraseLine: EraseLineStartToCursor})
	case '@':
		sink.Emit(TerminalCommand{Kind: CmdEraseInDisplay, EraseDisplay: EraseDisplayCursorToEnd})
	case 'J':
		sink.Emit(TerminalCommand{Kind: CmdCarriageReturn})
	case 'K':
		sink.Emit(TerminalCommand{Kind: CmdLineFeed})
	case 'D':
		sink.Emit(TerminalCommand{Kind: CmdDeleteLine, N: 1})
	case 'I':
		sink.Emit(TerminalCommand{Kind: CmdInsertLine, N: 1})
	case 'Z':
		sink.Emit(TerminalCommand{Kind: CmdClearAllTabs})
	case 'O', 'A', 'C', 'Y', 'L', 'M', 'V', 'W', 'G', 'H',
		'E', 'F', 'B', 'T', 'X', 'U', 'S', 'R', 'N':
		// Quote mode, auto-insert, scrolling, bell, cursor style,
		// window bounds, 40/80 column swap and screen reverse are
		// hardware-level toggles with no screen-model equivalent.
	}
}

func (p *PetsciiParser) Flush(CommandSink) {
	p.gotEsc = false
}
