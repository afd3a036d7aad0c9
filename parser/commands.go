// Copyright © 2026 Icebox contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: parser/commands.go
// Summary: Command value types emitted by the protocol parsers.
// Usage: Consumed by every parser in this package and by screen sinks.
// Notes: Parsers only produce commands; interpretation happens in sinks.

package parser

// Direction of cursor motion or scrolling.
type Direction uint8

const (
	Up Direction = iota
	Down
	Left
	Right
)

// EraseDisplayMode selects the region cleared by ED (ESC[nJ).
type EraseDisplayMode uint8

const (
	EraseDisplayCursorToEnd EraseDisplayMode = iota
	EraseDisplayStartToCursor
	EraseDisplayAll
	EraseDisplayAllAndScrollback
)

func eraseDisplayMode(n uint16) (EraseDisplayMode, bool) {
	if n > 3 {
		return 0, false
	}
	return EraseDisplayMode(n), true
}

// EraseLineMode selects the region cleared by EL (ESC[nK).
type EraseLineMode uint8

const (
	EraseLineCursorToEnd EraseLineMode = iota
	EraseLineStartToCursor
	EraseLineAll
)

func eraseLineMode(n uint16) (EraseLineMode, bool) {
	if n > 2 {
		return 0, false
	}
	return EraseLineMode(n), true
}

// StatusReport is the DSR request type (ESC[nn).
type StatusReport uint8

const (
	StatusReportOperating      StatusReport = 5
	StatusReportCursorPosition StatusReport = 6
)

func statusReport(n uint16) (StatusReport, bool) {
	switch n {
	case 5:
		return StatusReportOperating, true
	case 6:
		return StatusReportCursorPosition, true
	}
	return 0, false
}

// AnsiMode is a standard mode toggled by SM/RM (ESC[nh / ESC[nl).
type AnsiMode uint16

const (
	// ModeInsertReplace is IRM: set inserts incoming characters,
	// reset overwrites.
	ModeInsertReplace AnsiMode = 4
)

func ansiMode(n uint16) (AnsiMode, bool) {
	if n == 4 {
		return ModeInsertReplace, true
	}
	return 0, false
}

// DecMode is a DEC private mode toggled by DECSET/DECRST (ESC[?nh / ESC[?nl).
type DecMode uint16

const (
	DecSmoothScroll    DecMode = 4
	DecOriginMode      DecMode = 6
	DecAutoWrap        DecMode = 7
	DecX10Mouse        DecMode = 9
	DecCursorVisible   DecMode = 25
	DecIceColors       DecMode = 33
	DecCursorBlinking  DecMode = 35
	DecLeftRightMargin DecMode = 69

	DecVT200Mouse          DecMode = 1000
	DecVT200HighlightMouse DecMode = 1001
	DecButtonEventMouse    DecMode = 1002
	DecAnyEventMouse       DecMode = 1003
	DecFocusEvent          DecMode = 1004
	DecExtendedMouseUTF8   DecMode = 1005
	DecExtendedMouseSGR    DecMode = 1006
	DecAlternateScroll     DecMode = 1007
	DecExtendedMouseURXVT  DecMode = 1015
	DecExtendedMousePixel  DecMode = 1016
)

func decMode(n uint16) (DecMode, bool) {
	switch n {
	case 4, 6, 7, 9, 25, 33, 35, 69,
		1000, 1001, 1002, 1003, 1004, 1005, 1006, 1007, 1015, 1016:
		return DecMode(n), true
	}
	return 0, false
}

// CaretShape set by DECSCUSR (ESC[n SP q).
type CaretShape uint8

const (
	CaretBlock CaretShape = iota
	CaretUnderline
	CaretBar
)

// ColorKind discriminates the Color payload.
type ColorKind uint8

const (
	// ColorDefault is the terminal default fg/bg.
	ColorDefault ColorKind = iota
	// ColorBase is one of the 16 base palette entries.
	ColorBase
	// ColorExtended is an xterm 256-palette index.
	ColorExtended
	// ColorRGB is a direct 24-bit color.
	ColorRGB
)

// Color is an SGR color value.
type Color struct {
	Kind    ColorKind
	Index   uint8
	R, G, B uint8
}

func BaseColor(n uint8) Color     { return Color{Kind: ColorBase, Index: n} }
func ExtendedColor(n uint8) Color { return Color{Kind: ColorExtended, Index: n} }
func RGBColor(r, g, b uint8) Color {
	return Color{Kind: ColorRGB, R: r, G: g, B: b}
}

// Intensity level for text display.
type Intensity uint8

const (
	IntensityNormal Intensity = iota
	IntensityBold
	IntensityFaint
)

// Underline style.
type Underline uint8

const (
	UnderlineOff Underline = iota
	UnderlineSingle
	UnderlineDouble
)

// BlinkRate for text.
type BlinkRate uint8

const (
	BlinkOff BlinkRate = iota
	BlinkSlow
	BlinkRapid
)

// SgrKind discriminates the SgrAttribute payload.
type SgrKind uint8

const (
	SgrReset SgrKind = iota
	SgrIntensity
	SgrItalic
	SgrFraktur
	SgrUnderline
	SgrCrossedOut
	SgrBlink
	SgrInverse
	SgrConcealed
	SgrOverlined
	SgrFont
	SgrForeground
	SgrBackground
	SgrIdeogram
)

// SgrAttribute is a single decoded SGR parameter. A sequence like
// ESC[1;31m is delivered as two attributes.
type SgrAttribute struct {
	Kind      SgrKind
	On        bool // Italic/CrossedOut/Inverse/Concealed/Overlined
	Intensity Intensity
	Underline Underline
	Blink     BlinkRate
	Font      uint8
	Color     Color
}

// CommandKind discriminates TerminalCommand.
type CommandKind uint8

const (
	CmdNone CommandKind = iota

	CmdCarriageReturn
	CmdLineFeed
	CmdBackspace
	CmdTab
	CmdFormFeed
	CmdBell
	CmdDelete

	// CmdMoveCursor moves the caret N cells in Dir.
	CmdMoveCursor
	CmdCursorNextLine
	CmdCursorPreviousLine
	CmdCursorHorizontalAbsolute
	CmdCursorPosition
	CmdLinePositionAbsolute
	CmdLinePositionForward
	CmdCharacterPositionForward
	CmdHorizontalPositionAbsolute
	CmdCursorLineTabulationForward
	CmdCursorBackwardTabulation

	CmdEraseInDisplay
	CmdEraseInLine

	// CmdScroll shifts the scroll region N cells in Dir.
	CmdScroll

	CmdSelectGraphicRendition

	CmdSetScrollingRegion

	CmdInsertCharacter
	CmdDeleteCharacter
	CmdEraseCharacter
	CmdInsertLine
	CmdDeleteLine

	CmdRepeatPrecedingCharacter

	CmdDeviceAttributes
	CmdDeviceStatusReport

	CmdDecModeSet
	CmdDecModeReset
	CmdSetMode
	CmdResetMode

	CmdFontSelection
	CmdSetFontPage
	CmdSetCaretStyle
	CmdSpecialKey
	CmdSelectCommunicationSpeed
	CmdRequestChecksumRectangularArea
	CmdRequestTabStopReport
	CmdFillRectangularArea
	CmdEraseRectangularArea
	CmdSelectiveEraseRectangularArea
	CmdSaveCursorPosition
	CmdRestoreCursorPosition
	CmdClearTabulation
	CmdClearAllTabs
	CmdResizeTerminal

	CmdIndex
	CmdNextLine
	CmdSetTab
	CmdReverseIndex
	CmdSaveCursor
	CmdRestoreCursor
	CmdReset
)

// Rectangle is a screen region in 1-based row/column coordinates, used
// by the DEC rectangular-area commands.
type Rectangle struct {
	Top, Left, Bottom, Right uint16
}

// TerminalCommand is one decoded terminal action.
type TerminalCommand struct {
	Kind CommandKind
	Dir  Direction

	// N, M carry numeric parameters (counts, CUP row/col, region
	// bounds, font selection pair, fill character, checksum page).
	N, M uint16

	Rect Rectangle

	EraseDisplay EraseDisplayMode
	EraseLine    EraseLineMode
	Status       StatusReport
	Mode         AnsiMode
	Dec          DecMode

	CaretBlinking bool
	Caret         CaretShape

	Sgr SgrAttribute
}

func MoveCursor(dir Direction, n uint16) TerminalCommand {
	return TerminalCommand{Kind: CmdMoveCursor, Dir: dir, N: n}
}

func Scroll(dir Direction, n uint16) TerminalCommand {
	return TerminalCommand{Kind: CmdScroll, Dir: dir, N: n}
}

func Sgr(attr SgrAttribute) TerminalCommand {
	return TerminalCommand{Kind: CmdSelectGraphicRendition, Sgr: attr}
}

func CursorPosition(row, col uint16) TerminalCommand {
	return TerminalCommand{Kind: CmdCursorPosition, N: row, M: col}
}

// DeviceControlKind discriminates DeviceControl payloads (DCS strings).
type DeviceControlKind uint8

const (
	// DeviceControlLoadFont is the CTerm font upload
	// (ESC P CTerm:Font:{slot}:{base64} ESC \).
	DeviceControlLoadFont DeviceControlKind = iota
	// DeviceControlSixel is a sixel graphics payload (ESC P {params} q … ESC \).
	DeviceControlSixel
)

// DeviceControl is a decoded DCS string. Data is only valid until the
// next parser call; sinks that retain it must copy.
type DeviceControl struct {
	Kind DeviceControlKind

	// LoadFont
	FontSlot int
	FontData []byte

	// Sixel
	VerticalScale int
	Background    [3]uint8
	Data          []byte
}

// OscKind discriminates OsCommand payloads.
type OscKind uint8

const (
	OscSetTitle OscKind = iota
	OscSetIconName
	OscSetWindowTitle
	OscSetPaletteColor
	OscHyperlink
)

// OsCommand is a decoded OSC string.
type OsCommand struct {
	Kind OscKind
	Text []byte
	// Hyperlink fields
	Params []byte
	URI    []byte
	// Palette-set fields (one OsCommand per OSC 4 entry)
	Index int
	RGB   [3]uint8
}
