// Copyright © 2026 Icebox contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: parser/igscommand.go
// Summary: IGS command values, the Atari ST Interactive Graphics System.
// Notes: Wire format is G# plus a single command letter and comma
//        separated decimal parameters ending in ':'. Extended commands
//        share the 'X' letter with a numeric sub-command.

package parser

import (
	"fmt"
	"strings"
)

// IgsCommandKind discriminates IgsCommand.
type IgsCommandKind uint8

const (
	IgsBox IgsCommandKind = iota
	IgsLine
	IgsLineDrawTo
	IgsCircle
	IgsEllipse
	IgsArc
	IgsPolyLine
	IgsPolyFill
	IgsFloodFill
	IgsPolymarkerPlot
	IgsColorSet
	IgsAttributeForFills
	IgsLineStyle
	IgsSetPenColor
	IgsDrawingMode
	IgsHollowSet
	IgsWriteText
	IgsTextEffects
	IgsBellsAndWhistles
	IgsAlterSoundEffect
	IgsStopAllSound
	IgsRestoreSoundEffect
	IgsSetEffectLoops
	IgsGraphicScaling
	IgsGrabScreen
	IgsInitialize
	IgsEllipticalArc
	IgsCursor
	IgsChipMusic
	IgsNoise
	IgsRoundedRectangles
	IgsPieSlice
	IgsEllipticalPieSlice
	IgsFilledRectangle
	IgsInputCommand
	IgsAskIG
	IgsScreenClear
	IgsSetResolution
	IgsPauseSeconds
	IgsVsyncPause
	IgsLoop
	IgsSprayPaint
	IgsSetColorRegister
	IgsSetRandomRange
	IgsRightMouseMacro
	IgsDefineZone
	IgsFlowControl
	IgsLeftMouseButton
	IgsLoadFillPattern
	IgsRotateColorRegisters
	IgsLoadMidiBuffer
	IgsSetDrawtoBegin
	IgsLoadBitblitMemory
	IgsLoadColorPalette
	IgsSetForeground
	IgsSetBackground
	IgsDeleteLine
	IgsInsertLine
	IgsClearLine
	IgsCursorMotion
	IgsPositionCursor
	IgsRememberCursor
	IgsInverseVideo
	IgsLineWrap
)

// IgsLoopTokenKind discriminates one loop parameter token.
type IgsLoopTokenKind uint8

const (
	// LoopTokenNumber is a plain numeric value.
	LoopTokenNumber IgsLoopTokenKind = iota
	// LoopTokenSymbol is a substitution variable, usually 'x' or 'y'.
	LoopTokenSymbol
	// LoopTokenExpr is an expression like "+10", "-10" or "!99".
	LoopTokenExpr
	// LoopTokenSeparator is the ':' group separator.
	LoopTokenSeparator
)

type IgsLoopToken struct {
	Kind   IgsLoopTokenKind
	Number int
	Symbol byte
	Expr   string
}

// IgsLoopTarget names the command(s) a loop iterates. A chain gang
// (>CL@ on the wire) runs several commands per iteration.
type IgsLoopTarget struct {
	Chain bool
	// Raw keeps the wire form of a chain gang including > and @.
	Raw      string
	Commands []byte
	Single   byte
}

type IgsLoopModifiers struct {
	// XorStepping is the '|' modifier.
	XorStepping bool
	// RefreshText is the '@' modifier, refetching W text per iteration.
	RefreshText bool
}

// IgsLoopData is the payload of a Loop command
// (G#&>from,to,step,delay,cmd,count,params...:).
type IgsLoopData struct {
	From, To, Step, Delay int
	Target                IgsLoopTarget
	Modifiers             IgsLoopModifiers
	ParamCount            uint16
	Params                []IgsLoopToken
}

// Random parameter placeholders. A numeric parameter may be the
// letter r or R instead of a number; the paint engine resolves the
// placeholder against the ranges set with X 2 (both default 0-199).
const (
	IgsRandomSmall = -(1 << 30)
	IgsRandomBig   = -(1 << 30) + 1
)

// IgsCommand is one decoded IGS action. Field use depends on Kind.
type IgsCommand struct {
	Kind IgsCommandKind

	X, Y                   int
	X2, Y2                 int
	Radius                 int
	XRadius, YRadius       int
	StartAngle, EndAngle   int
	Width, Height, Density int

	Rounded bool
	Enabled bool
	Border  bool

	Pen, Color                 uint8
	PatternType, PatternIndex  uint8
	StyleKind, Style           uint8
	Value                      uint16
	Red, Green, Blue           uint8
	Mode                       uint8
	Effects, Size, Rotation    uint8
	Sound                      uint8
	Voice, Volume, Pitch       uint8
	Timing                     int
	StopType                   uint8
	PlayFlag, SndNum           uint8
	ElementNum, NegativeFlag   uint8
	Thousands, Hundreds        uint16
	Count                      int
	BlitType                   uint8
	Query                      uint8
	Resolution, PaletteSelect  uint8
	Vsyncs                     int
	Direction                  uint8
	Register                   uint8
	ZoneID                     int
	Length                     uint16
	Pattern                    uint8
	StartReg, EndReg           uint8
	Delay                      int

	Points []int
	Params []int
	Text   string

	Loop *IgsLoopData
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func writeIntList(sb *strings.Builder, params []int) {
	for _, p := range params {
		fmt.Fprintf(sb, ",%d", p)
	}
}

// String renders the command back to its wire form.
func (c IgsCommand) String() string {
	var sb strings.Builder
	switch c.Kind {
	case IgsBox:
		fmt.Fprintf(&sb, "G#B>%d,%d,%d,%d,%d:", c.X, c.Y, c.X2, c.Y2, boolInt(c.Rounded))
	case IgsLine:
		fmt.Fprintf(&sb, "G#L>%d,%d,%d,%d:", c.X, c.Y, c.X2, c.Y2)
	case IgsLineDrawTo:
		fmt.Fprintf(&sb, "G#D>%d,%d:", c.X, c.Y)
	case IgsCircle:
		fmt.Fprintf(&sb, "G#O>%d,%d,%d:", c.X, c.Y, c.Radius)
	case IgsEllipse:
		fmt.Fprintf(&sb, "G#Q>%d,%d,%d,%d:", c.X, c.Y, c.XRadius, c.YRadius)
	case IgsArc:
		fmt.Fprintf(&sb, "G#K>%d,%d,%d,%d,%d:", c.X, c.Y, c.Radius, c.StartAngle, c.EndAngle)
	case IgsPolyLine:
		fmt.Fprintf(&sb, "G#z>%d", len(c.Points)/2)
		writeIntList(&sb, c.Points)
		sb.WriteByte(':')
	case IgsPolyFill:
		fmt.Fprintf(&sb, "G#f>%d", len(c.Points)/2)
		writeIntList(&sb, c.Points)
		sb.WriteByte(':')
	case IgsFloodFill:
		fmt.Fprintf(&sb, "G#F>%d,%d:", c.X, c.Y)
	case IgsPolymarkerPlot:
		fmt.Fprintf(&sb, "G#P>%d,%d:", c.X, c.Y)
	case IgsColorSet:
		fmt.Fprintf(&sb, "G#C>%d,%d:", c.Pen, c.Color)
	case IgsAttributeForFills:
		fmt.Fprintf(&sb, "G#A>%d,%d,%d:", c.PatternType, c.PatternIndex, boolInt(c.Border))
	case IgsLineStyle:
		fmt.Fprintf(&sb, "G#T>%d,%d,%d:", c.StyleKind, c.Style, c.Value)
	case IgsSetPenColor:
		fmt.Fprintf(&sb, "G#S>%d,%d,%d,%d:", c.Pen, c.Red, c.Green, c.Blue)
	case IgsDrawingMode:
		fmt.Fprintf(&sb, "G#M>%d:", c.Mode)
	case IgsHollowSet:
		fmt.Fprintf(&sb, "G#H>%d:", boolInt(c.Enabled))
	case IgsWriteText:
		fmt.Fprintf(&sb, "G#W>%d,%d,%s@", c.X, c.Y, c.Text)
	case IgsTextEffects:
		fmt.Fprintf(&sb, "G#E>%d,%d,%d:", c.Effects, c.Size, c.Rotation)
	case IgsBellsAndWhistles:
		fmt.Fprintf(&sb, "G#b>%d:", c.Sound)
	case IgsAlterSoundEffect:
		fmt.Fprintf(&sb, "G#b>20,%d,%d,%d,%d,%d,%d:",
			c.PlayFlag, c.SndNum, c.ElementNum, c.NegativeFlag, c.Thousands, c.Hundreds)
	case IgsStopAllSound:
		sb.WriteString("G#b>21:")
	case IgsRestoreSoundEffect:
		fmt.Fprintf(&sb, "G#b>22,%d:", c.SndNum)
	case IgsSetEffectLoops:
		fmt.Fprintf(&sb, "G#b>23,%d:", c.Count)
	case IgsGraphicScaling:
		fmt.Fprintf(&sb, "G#g>%d:", c.Mode)
	case IgsGrabScreen:
		fmt.Fprintf(&sb, "G#G>%d,%d", c.BlitType, c.Mode)
		writeIntList(&sb, c.Params)
		sb.WriteByte(':')
	case IgsInitialize:
		fmt.Fprintf(&sb, "G#I>%d:", c.Mode)
	case IgsEllipticalArc:
		fmt.Fprintf(&sb, "G#J>%d,%d,%d,%d,%d,%d:", c.X, c.Y, c.XRadius, c.YRadius, c.StartAngle, c.EndAngle)
	case IgsCursor:
		fmt.Fprintf(&sb, "G#k>%d:", c.Mode)
	case IgsChipMusic:
		fmt.Fprintf(&sb, "G#n>%d,%d,%d,%d,%d,%d:", c.Sound, c.Voice, c.Volume, c.Pitch, c.Timing, c.StopType)
	case IgsNoise:
		sb.WriteString("G#N")
		for _, p := range c.Params {
			fmt.Fprintf(&sb, ">%d", p)
		}
		sb.WriteByte(':')
	case IgsRoundedRectangles:
		fmt.Fprintf(&sb, "G#U>%d,%d,%d,%d,%d:", c.X, c.Y, c.X2, c.Y2, boolInt(c.Enabled))
	case IgsPieSlice:
		fmt.Fprintf(&sb, "G#V>%d,%d,%d,%d,%d:", c.X, c.Y, c.Radius, c.StartAngle, c.EndAngle)
	case IgsEllipticalPieSlice:
		fmt.Fprintf(&sb, "G#Y>%d,%d,%d,%d,%d,%d:", c.X, c.Y, c.XRadius, c.YRadius, c.StartAngle, c.EndAngle)
	case IgsFilledRectangle:
		fmt.Fprintf(&sb, "G#Z>%d,%d,%d,%d:", c.X, c.Y, c.X2, c.Y2)
	case IgsInputCommand:
		fmt.Fprintf(&sb, "G#<>%d", c.Mode)
		writeIntList(&sb, c.Params)
		sb.WriteByte(':')
	case IgsAskIG:
		fmt.Fprintf(&sb, "G#?>%d:", c.Query)
	case IgsScreenClear:
		fmt.Fprintf(&sb, "G#s>%d:", c.Mode)
	case IgsSetResolution:
		fmt.Fprintf(&sb, "G#R>%d,%d:", c.Resolution, c.PaletteSelect)
	case IgsPauseSeconds:
		fmt.Fprintf(&sb, "G#t>%d:", c.Vsyncs)
	case IgsVsyncPause:
		fmt.Fprintf(&sb, "G#q>%d:", c.Vsyncs)
	case IgsLoop:
		c.writeLoop(&sb)
	case IgsSprayPaint:
		fmt.Fprintf(&sb, "G#X>0,%d,%d,%d,%d,%d:", c.X, c.Y, c.Width, c.Height, c.Density)
	case IgsSetColorRegister:
		fmt.Fprintf(&sb, "G#X>1,%d,%d:", c.Register, c.Value)
	case IgsSetRandomRange:
		sb.WriteString("G#X>2")
		writeIntList(&sb, c.Params)
		sb.WriteByte(':')
	case IgsRightMouseMacro:
		sb.WriteString("G#X>3")
		writeIntList(&sb, c.Params)
		sb.WriteByte(':')
	case IgsDefineZone:
		// Zone IDs 9997-9999 are clear/loopback controls without a body.
		if c.ZoneID >= 9997 && c.ZoneID <= 9999 {
			fmt.Fprintf(&sb, "G#X>4,%d:", c.ZoneID)
		} else {
			fmt.Fprintf(&sb, "G#X>4,%d,%d,%d,%d,%d,%d,%s:", c.ZoneID, c.X, c.Y, c.X2, c.Y2, c.Length, c.Text)
		}
	case IgsFlowControl:
		fmt.Fprintf(&sb, "G#X>5,%d", c.Mode)
		writeIntList(&sb, c.Params)
		sb.WriteByte(':')
	case IgsLeftMouseButton:
		fmt.Fprintf(&sb, "G#X>6,%d:", c.Mode)
	case IgsLoadFillPattern:
		fmt.Fprintf(&sb, "G#X>7,%d,%s:", c.Pattern, c.Text)
	case IgsRotateColorRegisters:
		fmt.Fprintf(&sb, "G#X>8,%d,%d,%d,%d:", c.StartReg, c.EndReg, c.Count, c.Delay)
	case IgsLoadMidiBuffer:
		sb.WriteString("G#X>9")
		writeIntList(&sb, c.Params)
		sb.WriteByte(':')
	case IgsSetDrawtoBegin:
		fmt.Fprintf(&sb, "G#X>10,%d,%d:", c.X, c.Y)
	case IgsLoadBitblitMemory:
		sb.WriteString("G#X>11")
		writeIntList(&sb, c.Params)
		sb.WriteByte(':')
	case IgsLoadColorPalette:
		sb.WriteString("G#X>12")
		writeIntList(&sb, c.Params)
		sb.WriteByte(':')
	case IgsSetForeground:
		fmt.Fprintf(&sb, "\x1bb%c", c.Color)
	case IgsSetBackground:
		fmt.Fprintf(&sb, "\x1bc%c", c.Color)
	case IgsDeleteLine:
		fmt.Fprintf(&sb, "\x1bd%c", byte(c.Count))
	case IgsInsertLine:
		fmt.Fprintf(&sb, "\x1bi%c", byte(c.Count))
	case IgsClearLine:
		if c.Mode == 0 {
			sb.WriteString("\x1bl")
		} else {
			fmt.Fprintf(&sb, "\x1bl%c", c.Mode)
		}
	case IgsCursorMotion:
		fmt.Fprintf(&sb, "\x1bm%d,%d", c.Direction, c.Count)
	case IgsPositionCursor:
		fmt.Fprintf(&sb, "G#p>%d,%d:", c.X, c.Y)
	case IgsRememberCursor:
		if c.Value == 0 {
			sb.WriteString("\x1br")
		} else {
			fmt.Fprintf(&sb, "\x1br%c", byte(c.Value))
		}
	case IgsInverseVideo:
		fmt.Fprintf(&sb, "G#v>%d:", boolInt(c.Enabled))
	case IgsLineWrap:
		fmt.Fprintf(&sb, "G#w>%d:", boolInt(c.Enabled))
	}
	return sb.String()
}

func (c IgsCommand) writeLoop(sb *strings.Builder) {
	d := c.Loop
	if d == nil {
		return
	}
	fmt.Fprintf(sb, "G#&>%d,%d,%d,%d", d.From, d.To, d.Step, d.Delay)
	if d.Target.Chain {
		fmt.Fprintf(sb, ",%s", d.Target.Raw)
	} else {
		fmt.Fprintf(sb, ",%c", d.Target.Single)
	}
	if d.Modifiers.XorStepping {
		sb.WriteByte('|')
	}
	if d.Modifiers.RefreshText {
		sb.WriteByte('@')
	}
	fmt.Fprintf(sb, ",%d", d.ParamCount)

	lastWasColon := false
	for _, tok := range d.Params {
		switch tok.Kind {
		case LoopTokenSeparator:
			sb.WriteByte(':')
			lastWasColon = true
		case LoopTokenNumber:
			if !lastWasColon {
				sb.WriteByte(',')
			}
			fmt.Fprintf(sb, "%d", tok.Number)
			lastWasColon = false
		case LoopTokenSymbol:
			if !lastWasColon {
				sb.WriteByte(',')
			}
			sb.WriteByte(tok.Symbol)
			lastWasColon = false
		case LoopTokenExpr:
			if !lastWasColon {
				sb.WriteByte(',')
			}
			sb.WriteString(tok.Expr)
			lastWasColon = false
		}
	}
	sb.WriteByte(':')
}
