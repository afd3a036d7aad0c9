// Copyright © 2026 Icebox contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: parser/ripcommand.go
// Summary: RIPscrip command values and their wire encoding.
// Notes: Numeric fields travel as fixed-width base-36. String returns
//        the command body starting at the pipe, without the !| prefix
//        shared by a command run.

package parser

import "strings"

// RipCommandKind discriminates RipCommand.
type RipCommandKind uint8

const (
	// Level 0.
	RipTextWindow RipCommandKind = iota
	RipViewPort
	RipResetWindows
	RipEraseWindow
	RipEraseView
	RipGotoXY
	RipHome
	RipEraseEOL
	RipColor
	RipSetPalette
	RipOnePalette
	RipWriteMode
	RipMove
	RipText
	RipTextXY
	RipFontStyle
	RipPixel
	RipLine
	RipRectangle
	RipBar
	RipCircle
	RipOval
	RipFilledOval
	RipArc
	RipOvalArc
	RipPieSlice
	RipOvalPieSlice
	RipBezier
	RipPolygon
	RipFilledPolygon
	RipPolyLine
	RipFill
	RipLineStyle
	RipFillStyle
	RipFillPattern
	RipTextVariable
	RipNoMore

	// Level 1.
	RipMouse
	RipMouseFields
	RipBeginText
	RipRegionText
	RipEndText
	RipGetImage
	RipPutImage
	RipWriteIcon
	RipLoadIcon
	RipButtonStyle
	RipButton
	RipDefine
	RipQuery
	RipCopyRegion
	RipReadScene
	RipFileQuery

	// Level 9.
	RipEnterBlockMode
)

// RipCommand is one decoded RIPscrip command. Field use depends on
// Kind; unused fields are zero.
type RipCommand struct {
	Kind RipCommandKind

	X, Y           int
	X0, Y0, X1, Y1 int
	StartAngle     int
	EndAngle       int
	Radius         int
	XRadius        int
	YRadius        int

	Wrap    bool
	Justify bool

	Color  int
	Value  int
	Mode   int
	Size   int
	Border int
	Count  int

	Style     int
	Pattern   int
	UserPat   int
	Thickness int

	Font      int
	Direction int

	Num    int
	Clicks int
	Clear  int
	Hotkey int
	Flags  int
	Flags2 int
	Res    int

	// Button style.
	Width, Height, Orientation         int
	BevelSize, LabelColor, ShadowColor int
	Bright, Dark, Surface, Group       int
	UnderlineColor, CornerColor        int

	Proto     int
	FileType  int
	Clipboard int
	DestLine  int

	// Colors holds SetPalette entries or FillPattern rows (8 rows
	// followed by the color). Points holds polygon x,y pairs.
	Colors []int
	Points []int

	IconRes byte
	Text    string
}

// ParseBase36Digit decodes one base-36 character, case insensitive.
func ParseBase36Digit(ch byte) (int, bool) {
	switch {
	case ch >= '0' && ch <= '9':
		return int(ch - '0'), true
	case ch >= 'A' && ch <= 'Z':
		return int(ch-'A') + 10, true
	case ch >= 'a' && ch <= 'z':
		return int(ch-'a') + 10, true
	}
	return 0, false
}

// ToBase36 renders a number as fixed-width uppercase base-36.
func ToBase36(width, number int) string {
	buf := make([]byte, width)
	for i := width - 1; i >= 0; i-- {
		d := byte(number % 36)
		if d < 10 {
			buf[i] = d + '0'
		} else {
			buf[i] = d - 10 + 'A'
		}
		number /= 36
	}
	return string(buf)
}

// escapeRipText escapes the RIPscrip delimiters in a text field:
// ! and | introduce commands, \ is the escape character.
func escapeRipText(text string) string {
	var sb strings.Builder
	sb.Grow(len(text))
	for _, ch := range text {
		switch ch {
		case '!', '|', '\\':
			sb.WriteByte('\\')
		}
		sb.WriteRune(ch)
	}
	return sb.String()
}

func boolDigit(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

// String encodes the command back into its wire form.
func (c RipCommand) String() string {
	var sb strings.Builder

	switch c.Kind {
	case RipTextWindow:
		sb.WriteString("|w")
		sb.WriteString(ToBase36(2, c.X0))
		sb.WriteString(ToBase36(2, c.Y0))
		sb.WriteString(ToBase36(2, c.X1))
		sb.WriteString(ToBase36(2, c.Y1))
		sb.WriteString(boolDigit(c.Wrap))
		sb.WriteString(ToBase36(1, c.Size))
	case RipViewPort:
		sb.WriteString("|v")
		sb.WriteString(ToBase36(2, c.X0))
		sb.WriteString(ToBase36(2, c.Y0))
		sb.WriteString(ToBase36(2, c.X1))
		sb.WriteString(ToBase36(2, c.Y1))
	case RipResetWindows:
		sb.WriteString("|*")
	case RipEraseWindow:
		sb.WriteString("|e")
	case RipEraseView:
		sb.WriteString("|E")
	case RipGotoXY:
		sb.WriteString("|g")
		sb.WriteString(ToBase36(2, c.X))
		sb.WriteString(ToBase36(2, c.Y))
	case RipHome:
		sb.WriteString("|H")
	case RipEraseEOL:
		sb.WriteString("|>")
	case RipColor:
		sb.WriteString("|c")
		sb.WriteString(ToBase36(2, c.Color))
	case RipSetPalette:
		sb.WriteString("|Q")
		for _, col := range c.Colors {
			sb.WriteString(ToBase36(2, col))
		}
	case RipOnePalette:
		sb.WriteString("|a")
		sb.WriteString(ToBase36(2, c.Color))
		sb.WriteString(ToBase36(2, c.Value))
	case RipWriteMode:
		sb.WriteString("|W")
		sb.WriteString(ToBase36(2, c.Mode))
	case RipMove:
		sb.WriteString("|m")
		sb.WriteString(ToBase36(2, c.X))
		sb.WriteString(ToBase36(2, c.Y))
	case RipText:
		sb.WriteString("|T")
		sb.WriteString(escapeRipText(c.Text))
	case RipTextXY:
		sb.WriteString("|@")
		sb.WriteString(ToBase36(2, c.X))
		sb.WriteString(ToBase36(2, c.Y))
		sb.WriteString(escapeRipText(c.Text))
	case RipFontStyle:
		sb.WriteString("|Y")
		sb.WriteString(ToBase36(2, c.Font))
		sb.WriteString(ToBase36(2, c.Direction))
		sb.WriteString(ToBase36(2, c.Size))
		sb.WriteString(ToBase36(2, c.Res))
	case RipPixel:
		sb.WriteString("|X")
		sb.WriteString(ToBase36(2, c.X))
		sb.WriteString(ToBase36(2, c.Y))
	case RipLine:
		sb.WriteString("|L")
		sb.WriteString(ToBase36(2, c.X0))
		sb.WriteString(ToBase36(2, c.Y0))
		sb.WriteString(ToBase36(2, c.X1))
		sb.WriteString(ToBase36(2, c.Y1))
	case RipRectangle:
		sb.WriteString("|R")
		sb.WriteString(ToBase36(2, c.X0))
		sb.WriteString(ToBase36(2, c.Y0))
		sb.WriteString(ToBase36(2, c.X1))
		sb.WriteString(ToBase36(2, c.Y1))
	case RipBar:
		sb.WriteString("|B")
		sb.WriteString(ToBase36(2, c.X0))
		sb.WriteString(ToBase36(2, c.Y0))
		sb.WriteString(ToBase36(2, c.X1))
		sb.WriteString(ToBase36(2, c.Y1))
	case RipCircle:
		sb.WriteString("|C")
		sb.WriteString(ToBase36(2, c.X))
		sb.WriteString(ToBase36(2, c.Y))
		sb.WriteString(ToBase36(2, c.Radius))
	case RipOval:
		sb.WriteString("|O")
		sb.WriteString(ToBase36(2, c.X))
		sb.WriteString(ToBase36(2, c.Y))
		sb.WriteString(ToBase36(2, c.StartAngle))
		sb.WriteString(ToBase36(2, c.EndAngle))
		sb.WriteString(ToBase36(2, c.XRadius))
		sb.WriteString(ToBase36(2, c.YRadius))
	case RipFilledOval:
		sb.WriteString("|o")
		sb.WriteString(ToBase36(2, c.X))
		sb.WriteString(ToBase36(2, c.Y))
		sb.WriteString(ToBase36(2, c.XRadius))
		sb.WriteString(ToBase36(2, c.YRadius))
	case RipArc:
		sb.WriteString("|A")
		sb.WriteString(ToBase36(2, c.X))
		sb.WriteString(ToBase36(2, c.Y))
		sb.WriteString(ToBase36(2, c.StartAngle))
		sb.WriteString(ToBase36(2, c.EndAngle))
		sb.WriteString(ToBase36(2, c.Radius))
	case RipOvalArc:
		sb.WriteString("|V")
		sb.WriteString(ToBase36(2, c.X))
		sb.WriteString(ToBase36(2, c.Y))
		sb.WriteString(ToBase36(2, c.StartAngle))
		sb.WriteString(ToBase36(2, c.EndAngle))
		sb.WriteString(ToBase36(2, c.XRadius))
		sb.WriteString(ToBase36(2, c.YRadius))
	case RipPieSlice:
		sb.WriteString("|I")
		sb.WriteString(ToBase36(2, c.X))
		sb.WriteString(ToBase36(2, c.Y))
		sb.WriteString(ToBase36(2, c.StartAngle))
		sb.WriteString(ToBase36(2, c.EndAngle))
		sb.WriteString(ToBase36(2, c.Radius))
	case RipOvalPieSlice:
		sb.WriteString("|i")
		sb.WriteString(ToBase36(2, c.X))
		sb.WriteString(ToBase36(2, c.Y))
		sb.WriteString(ToBase36(2, c.StartAngle))
		sb.WriteString(ToBase36(2, c.EndAngle))
		sb.WriteString(ToBase36(2, c.XRadius))
		sb.WriteString(ToBase36(2, c.YRadius))
	case RipBezier:
		sb.WriteString("|Z")
		for _, p := range c.Points {
			sb.WriteString(ToBase36(2, p))
		}
		sb.WriteString(ToBase36(2, c.Count))
	case RipPolygon, RipFilledPolygon, RipPolyLine:
		switch c.Kind {
		case RipPolygon:
			sb.WriteString("|P")
		case RipFilledPolygon:
			sb.WriteString("|p")
		default:
			sb.WriteString("|l")
		}
		sb.WriteString(ToBase36(2, len(c.Points)/2))
		for _, p := range c.Points {
			sb.WriteString(ToBase36(2, p))
		}
	case RipFill:
		sb.WriteString("|F")
		sb.WriteString(ToBase36(2, c.X))
		sb.WriteString(ToBase36(2, c.Y))
		sb.WriteString(ToBase36(2, c.Border))
	case RipLineStyle:
		sb.WriteString("|=")
		sb.WriteString(ToBase36(2, c.Style))
		sb.WriteString(ToBase36(4, c.UserPat))
		sb.WriteString(ToBase36(2, c.Thickness))
	case RipFillStyle:
		sb.WriteString("|S")
		sb.WriteString(ToBase36(2, c.Pattern))
		sb.WriteString(ToBase36(2, c.Color))
	case RipFillPattern:
		sb.WriteString("|s")
		for _, row := range c.Colors {
			sb.WriteString(ToBase36(2, row))
		}
	case RipTextVariable:
		sb.WriteString("|$")
		sb.WriteString(escapeRipText(c.Text))
	case RipNoMore:
		sb.WriteString("|#")

	case RipMouse:
		sb.WriteString("|1M")
		sb.WriteString(ToBase36(2, c.Num))
		sb.WriteString(ToBase36(2, c.X0))
		sb.WriteString(ToBase36(2, c.Y0))
		sb.WriteString(ToBase36(2, c.X1))
		sb.WriteString(ToBase36(2, c.Y1))
		sb.WriteString(ToBase36(1, c.Clicks))
		sb.WriteString(ToBase36(1, c.Clear))
		sb.WriteString(ToBase36(5, c.Res))
		sb.WriteString(escapeRipText(c.Text))
	case RipMouseFields:
		sb.WriteString("|1K")
	case RipBeginText:
		sb.WriteString("|1T")
		sb.WriteString(ToBase36(2, c.X0))
		sb.WriteString(ToBase36(2, c.Y0))
		sb.WriteString(ToBase36(2, c.X1))
		sb.WriteString(ToBase36(2, c.Y1))
		sb.WriteString(ToBase36(2, c.Res))
	case RipRegionText:
		sb.WriteString("|1t")
		sb.WriteString(boolDigit(c.Justify))
		sb.WriteString(escapeRipText(c.Text))
	case RipEndText:
		sb.WriteString("|1E")
	case RipGetImage:
		sb.WriteString("|1C")
		sb.WriteString(ToBase36(2, c.X0))
		sb.WriteString(ToBase36(2, c.Y0))
		sb.WriteString(ToBase36(2, c.X1))
		sb.WriteString(ToBase36(2, c.Y1))
		sb.WriteString(ToBase36(1, c.Res))
	case RipPutImage:
		sb.WriteString("|1P")
		sb.WriteString(ToBase36(2, c.X))
		sb.WriteString(ToBase36(2, c.Y))
		sb.WriteString(ToBase36(2, c.Mode))
		sb.WriteString(ToBase36(1, c.Res))
	case RipWriteIcon:
		sb.WriteString("|1W")
		sb.WriteByte(c.IconRes)
		sb.WriteString(escapeRipText(c.Text))
	case RipLoadIcon:
		sb.WriteString("|1I")
		sb.WriteString(ToBase36(2, c.X))
		sb.WriteString(ToBase36(2, c.Y))
		sb.WriteString(ToBase36(2, c.Mode))
		sb.WriteString(ToBase36(1, c.Clipboard))
		sb.WriteString(ToBase36(2, c.Res))
		sb.WriteString(escapeRipText(c.Text))
	case RipButtonStyle:
		sb.WriteString("|1B")
		sb.WriteString(ToBase36(2, c.Width))
		sb.WriteString(ToBase36(2, c.Height))
		sb.WriteString(ToBase36(2, c.Orientation))
		sb.WriteString(ToBase36(4, c.Flags))
		sb.WriteString(ToBase36(2, c.BevelSize))
		sb.WriteString(ToBase36(2, c.LabelColor))
		sb.WriteString(ToBase36(2, c.ShadowColor))
		sb.WriteString(ToBase36(2, c.Bright))
		sb.WriteString(ToBase36(2, c.Dark))
		sb.WriteString(ToBase36(2, c.Surface))
		sb.WriteString(ToBase36(2, c.Group))
		sb.WriteString(ToBase36(2, c.Flags2))
		sb.WriteString(ToBase36(2, c.UnderlineColor))
		sb.WriteString(ToBase36(2, c.CornerColor))
		sb.WriteString(ToBase36(6, c.Res))
	case RipButton:
		sb.WriteString("|1U")
		sb.WriteString(ToBase36(2, c.X0))
		sb.WriteString(ToBase36(2, c.Y0))
		sb.WriteString(ToBase36(2, c.X1))
		sb.WriteString(ToBase36(2, c.Y1))
		sb.WriteString(ToBase36(2, c.Hotkey))
		sb.WriteString(ToBase36(1, c.Flags))
		sb.WriteString(ToBase36(1, c.Res))
		sb.WriteString(escapeRipText(c.Text))
	case RipDefine:
		sb.WriteString("|1D")
		sb.WriteString(ToBase36(3, c.Flags))
		sb.WriteString(ToBase36(2, c.Res))
		sb.WriteString(escapeRipText(c.Text))
	case RipQuery:
		sb.WriteString("|1\x1B")
		sb.WriteString(ToBase36(1, c.Mode))
		sb.WriteString(ToBase36(3, c.Res))
		sb.WriteString(escapeRipText(c.Text))
	case RipCopyRegion:
		sb.WriteString("|1G")
		sb.WriteString(ToBase36(2, c.X0))
		sb.WriteString(ToBase36(2, c.Y0))
		sb.WriteString(ToBase36(2, c.X1))
		sb.WriteString(ToBase36(2, c.Y1))
		sb.WriteString(ToBase36(2, c.Res))
		sb.WriteString(ToBase36(2, c.DestLine))
	case RipReadScene:
		sb.WriteString("|1R")
		sb.WriteString(escapeRipText(c.Text))
	case RipFileQuery:
		sb.WriteString("|1F")
		sb.WriteString(escapeRipText(c.Text))

	case RipEnterBlockMode:
		sb.WriteString("|9\x1B")
		sb.WriteString(ToBase36(1, c.Mode))
		sb.WriteString(ToBase36(1, c.Proto))
		sb.WriteString(ToBase36(2, c.FileType))
		sb.WriteString(ToBase36(4, c.Res))
		sb.WriteString(escapeRipText(c.Text))
	}

	return sb.String()
}
