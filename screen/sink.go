// Copyright © 2026 Icebox contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: screen/sink.go
// Summary: ScreenSink applies decoded parser commands to an editable
//          screen: printing, SGR state, DEC modes, DCS and OSC strings.
// Usage: Wire a parser to a screen with NewSink(screen), then feed
//        parser.Parse(input, sink).
// Notes: Ice-color promotion and inverse video are resolved at print
//        time so the caret attribute itself stays protocol-neutral.

package screen

import (
	"fmt"
	"unicode/utf8"

	"github.com/mattn/go-runewidth"

	"github.com/icebox-art/icebox/buffer"
	"github.com/icebox-art/icebox/font"
	"github.com/icebox-art/icebox/palette"
	"github.com/icebox-art/icebox/parser"
)

// ScreenSink drives an EditableScreen from parser output.
type ScreenSink struct {
	screen EditableScreen

	// ParseUTF8 switches Print from byte-per-cell (CP437 and friends)
	// to incremental UTF-8 decoding.
	ParseUTF8 bool

	// Title is the last OSC 0/1/2 window title.
	Title string

	// Respond, when set, receives answerback bytes for DSR/DA queries.
	Respond func(data []byte)
	// OnRequest receives protocol queries the sink cannot answer
	// itself (RIP terminal id).
	OnRequest func(req parser.TerminalRequest)
	// OnError receives reported parse problems; when nil they are
	// collected in Errors.
	OnError func(err parser.ParseError, level parser.ErrorLevel)
	// Errors collects reported problems when OnError is nil.
	Errors []parser.ParseError

	// Sixels, when set, decodes sixel payloads off-thread.
	Sixels *SixelWorker

	pendingUTF8 []byte
	lastPrinted rune
	linkStart   buffer.Position
	linkURL     string
	linkOpen    bool
}

var _ parser.CommandSink = (*ScreenSink)(nil)

// NewSink returns a sink writing to screen.
func NewSink(screen EditableScreen) *ScreenSink {
	return &ScreenSink{screen: screen, lastPrinted: ' '}
}

// Screen returns the sink's target.
func (s *ScreenSink) Screen() EditableScreen { return s.screen }

// displayAttribute resolves the caret attribute for printing: inverse
// video swaps the colors, ice mode turns a blinking low background
// into its bright variant.
func (s *ScreenSink) displayAttribute() buffer.TextAttribute {
	attr := s.screen.Caret().Attribute
	ts := s.screen.TerminalState()
	if ts.InverseVideo {
		attr.Foreground, attr.Background = attr.Background, attr.Foreground
	}
	if ts.IceColors && attr.IsBlinking() &&
		attr.Background.IsPalette() && attr.Background.Index() < 8 {
		attr.SetBlinking(false)
		attr.Background = buffer.PaletteColor(attr.Background.Index() + 8)
	}
	return attr
}

func (s *ScreenSink) printRune(r rune) {
	ch := buffer.NewChar(r, s.displayAttribute())
	PrintChar(s.screen, ch)
	if runewidth.RuneWidth(r) == 2 {
		// Wide runes occupy two cells; the continuation cell is blanked
		// with the same attribute.
		PrintChar(s.screen, buffer.NewChar(' ', ch.Attribute))
	}
	s.lastPrinted = r
}

// Print delivers displayable bytes from the parser.
func (s *ScreenSink) Print(text []byte) {
	if !s.ParseUTF8 {
		for _, b := range text {
			s.printRune(rune(b))
		}
		return
	}

	data := text
	if len(s.pendingUTF8) > 0 {
		data = append(s.pendingUTF8, text...)
	}
	for len(data) > 0 {
		r, size := utf8.DecodeRune(data)
		if r == utf8.RuneError && size <= 1 {
			if !utf8.FullRune(data) && len(data) < utf8.UTFMax {
				// Sequence continues in the next Parse call.
				s.pendingUTF8 = append(s.pendingUTF8[:0], data...)
				return
			}
			// Truly invalid byte: replacement character.
			r, size = utf8.RuneError, 1
		}
		s.printRune(r)
		data = data[size:]
	}
	s.pendingUTF8 = s.pendingUTF8[:0]
}

// Emit applies one decoded terminal command.
func (s *ScreenSink) Emit(cmd parser.TerminalCommand) {
	scr := s.screen
	ts := scr.TerminalState()

	switch cmd.Kind {
	case parser.CmdCarriageReturn:
		CarriageReturn(scr)
		if ts.NewlineMode {
			LineFeed(scr)
		}
	case parser.CmdLineFeed:
		LineFeed(scr)
	case parser.CmdBackspace:
		Backspace(scr)
	case parser.CmdTab:
		TabForward(scr)
	case parser.CmdFormFeed:
		FormFeed(scr)
	case parser.CmdBell:
		// Audible only; nothing to draw.
	case parser.CmdDelete:
		DeleteChar(scr)

	case parser.CmdMoveCursor:
		n := count(cmd.N)
		switch cmd.Dir {
		case parser.Up:
			MoveUp(scr, n, false)
		case parser.Down:
			MoveDown(scr, n, false)
		case parser.Left:
			MoveLeft(scr, n, false, false)
		case parser.Right:
			MoveRight(scr, n, false, false)
		}
	case parser.CmdCursorNextLine:
		MoveDown(scr, count(cmd.N), false)
		scr.Caret().Position.X = scr.FirstEditableColumn()
	case parser.CmdCursorPreviousLine:
		MoveUp(scr, count(cmd.N), false)
		scr.Caret().Position.X = scr.FirstEditableColumn()

	case parser.CmdCursorPosition:
		s.setAbsolutePosition(int(cmd.M), int(cmd.N))
	case parser.CmdCursorHorizontalAbsolute, parser.CmdHorizontalPositionAbsolute:
		s.setAbsolutePosition(int(cmd.N), 0)
	case parser.CmdLinePositionAbsolute:
		s.setAbsolutePosition(0, int(cmd.N))
	case parser.CmdLinePositionForward:
		MoveDown(scr, count(cmd.N), false)
	case parser.CmdCharacterPositionForward:
		MoveRight(scr, count(cmd.N), false, false)

	case parser.CmdCursorLineTabulationForward:
		for i := 0; i < count(cmd.N); i++ {
			TabForward(scr)
		}
	case parser.CmdCursorBackwardTabulation:
		for i := 0; i < count(cmd.N); i++ {
			TabBackward(scr)
		}

	case parser.CmdEraseInDisplay:
		s.eraseInDisplay(cmd.EraseDisplay)
	case parser.CmdEraseInLine:
		switch cmd.EraseLine {
		case parser.EraseLineCursorToEnd:
			scr.ClearLineEnd()
		case parser.EraseLineStartToCursor:
			scr.ClearLineStart()
		case parser.EraseLineAll:
			scr.ClearLine()
		}

	case parser.CmdScroll:
		for i := 0; i < count(cmd.N); i++ {
			switch cmd.Dir {
			case parser.Up:
				scr.ScrollUp()
			case parser.Down:
				scr.ScrollDown()
			case parser.Left:
				scr.ScrollLeft()
			case parser.Right:
				scr.ScrollRight()
			}
		}

	case parser.CmdSelectGraphicRendition:
		s.applySgr(cmd.Sgr)

	case parser.CmdSetScrollingRegion:
		top := count(cmd.N) - 1
		bottom := int(cmd.M) - 1
		if bottom < 0 {
			bottom = scr.Height() - 1
		}
		ts.SetMarginsTopBottom(top, bottom)
		scr.Caret().SetPosition(UpperLeftPosition(scr))

	case parser.CmdInsertCharacter:
		for i := 0; i < count(cmd.N); i++ {
			InsertColumn(scr)
		}
	case parser.CmdDeleteCharacter:
		for i := 0; i < count(cmd.N); i++ {
			DeleteChar(scr)
		}
	case parser.CmdEraseCharacter:
		pos := scr.Caret().Position
		blank := buffer.NewChar(' ', s.displayAttribute())
		for i := 0; i < count(cmd.N); i++ {
			scr.SetChar(buffer.Pos(pos.X+i, pos.Y), blank)
		}
	case parser.CmdInsertLine:
		for i := 0; i < count(cmd.N); i++ {
			scr.InsertTerminalLine(scr.Caret().Position.Y)
		}
	case parser.CmdDeleteLine:
		for i := 0; i < count(cmd.N); i++ {
			scr.RemoveTerminalLine(scr.Caret().Position.Y)
		}

	case parser.CmdRepeatPrecedingCharacter:
		for i := 0; i < count(cmd.N); i++ {
			s.printRune(s.lastPrinted)
		}

	case parser.CmdDeviceAttributes:
		s.respond("\x1b[?1;0c")
	case parser.CmdDeviceStatusReport:
		switch cmd.Status {
		case parser.StatusReportOperating:
			s.respond("\x1b[0n")
		case parser.StatusReportCursorPosition:
			pos := scr.Caret().Position
			s.respond(fmt.Sprintf("\x1b[%d;%dR", pos.Y+1, pos.X+1))
		}

	case parser.CmdDecModeSet:
		s.setDecMode(cmd.Dec, true)
	case parser.CmdDecModeReset:
		s.setDecMode(cmd.Dec, false)
	case parser.CmdSetMode:
		if cmd.Mode == parser.ModeInsertReplace {
			scr.Caret().InsertMode = true
		}
	case parser.CmdResetMode:
		if cmd.Mode == parser.ModeInsertReplace {
			scr.Caret().InsertMode = false
		}

	case parser.CmdFontSelection:
		s.selectFont(int(cmd.N), int(cmd.M))
	case parser.CmdSetFontPage:
		scr.Caret().SetFontPage(uint8(cmd.N))
	case parser.CmdSetCaretStyle:
		scr.Caret().Shape = cmd.Caret
		scr.Caret().Blinking = cmd.CaretBlinking

	case parser.CmdSpecialKey, parser.CmdSelectCommunicationSpeed:
		// Host-side concerns; the screen model ignores them.

	case parser.CmdRequestChecksumRectangularArea:
		// Always the trivial checksum; enough for capability detection.
		s.respond(fmt.Sprintf("\x1bP%d!~0000\x1b\\", cmd.N))
	case parser.CmdRequestTabStopReport:
		s.reportTabStops()

	case parser.CmdFillRectangularArea:
		s.fillArea(cmd.Rect, rune(cmd.N))
	case parser.CmdEraseRectangularArea, parser.CmdSelectiveEraseRectangularArea:
		s.fillArea(cmd.Rect, ' ')

	case parser.CmdSaveCursorPosition:
		*scr.SavedCaretPos() = scr.Caret().Position
	case parser.CmdRestoreCursorPosition:
		scr.Caret().SetPosition(*scr.SavedCaretPos())

	case parser.CmdClearTabulation:
		ts.RemoveTabStop(scr.Caret().Position.X)
	case parser.CmdClearAllTabs:
		ts.ClearTabStops()
	case parser.CmdSetTab:
		ts.SetTabAt(scr.Caret().Position.X)

	case parser.CmdResizeTerminal:
		size := buffer.Size{Width: int(cmd.M), Height: int(cmd.N)}
		if size.Width > 0 && size.Height > 0 {
			ts.SetSize(size)
			scr.SetSize(size)
			ts.ResetTabStops()
		}

	case parser.CmdIndex:
		Index(scr)
	case parser.CmdNextLine:
		NextLine(scr, true)
	case parser.CmdReverseIndex:
		ReverseIndex(scr)

	case parser.CmdSaveCursor:
		*scr.SavedCaret() = SavedCaretState{
			Caret:      *scr.Caret(),
			OriginMode: ts.OriginMode,
			AutoWrap:   ts.AutoWrap,
		}
	case parser.CmdRestoreCursor:
		saved := scr.SavedCaret()
		*scr.Caret() = saved.Caret
		ts.OriginMode = saved.OriginMode
		ts.AutoWrap = saved.AutoWrap

	case parser.CmdReset:
		scr.ResetTerminal()
		SgrReset(scr)
		scr.ClearScreen()
	}
}

// setAbsolutePosition applies 1-based col/row; zero keeps the current
// coordinate. Origin mode offsets rows by the region top.
func (s *ScreenSink) setAbsolutePosition(col, row int) {
	scr := s.screen
	pos := scr.Caret().Position
	upperLeft := UpperLeftPosition(scr)
	if col > 0 {
		pos.X = col - 1 + upperLeft.X
	}
	if row > 0 {
		pos.Y = row - 1 + upperLeft.Y
	}
	scr.Caret().SetPosition(pos)
	limitCaretPos(scr, scr.TerminalState().InMargin(pos))
}

func (s *ScreenSink) eraseInDisplay(mode parser.EraseDisplayMode) {
	scr := s.screen
	switch mode {
	case parser.EraseDisplayCursorToEnd:
		ClearBufferDown(scr)
	case parser.EraseDisplayStartToCursor:
		ClearBufferUp(scr)
	case parser.EraseDisplayAll:
		scr.TerminalState().ClearedScreen = true
		scr.ClearScreen()
	case parser.EraseDisplayAllAndScrollback:
		scr.TerminalState().ClearedScreen = true
		scr.ClearScreen()
		if ring, ok := scr.(interface{ ClearScrollback() }); ok {
			ring.ClearScrollback()
		}
	}
}

func (s *ScreenSink) applySgr(attr parser.SgrAttribute) {
	scr := s.screen
	caret := scr.Caret()

	switch attr.Kind {
	case parser.SgrReset:
		SgrReset(scr)
	case parser.SgrIntensity:
		switch attr.Intensity {
		case parser.IntensityNormal:
			caret.Attribute.SetBold(false)
			caret.Attribute.SetFaint(false)
		case parser.IntensityBold:
			caret.Attribute.SetBold(true)
			caret.Attribute.SetFaint(false)
		case parser.IntensityFaint:
			caret.Attribute.SetFaint(true)
			caret.Attribute.SetBold(false)
		}
	case parser.SgrItalic, parser.SgrFraktur:
		// Fraktur has no glyph support and renders italic.
		caret.Attribute.SetItalic(attr.Kind == parser.SgrFraktur || attr.On)
	case parser.SgrUnderline:
		switch attr.Underline {
		case parser.UnderlineOff:
			caret.Attribute.SetUnderlined(false)
			caret.Attribute.SetDoubleUnderlined(false)
		case parser.UnderlineSingle:
			caret.Attribute.SetUnderlined(true)
		case parser.UnderlineDouble:
			caret.Attribute.SetDoubleUnderlined(true)
		}
	case parser.SgrCrossedOut:
		caret.Attribute.SetCrossedOut(attr.On)
	case parser.SgrBlink:
		caret.Attribute.SetBlinking(attr.Blink != parser.BlinkOff)
	case parser.SgrInverse:
		scr.TerminalState().InverseVideo = attr.On
	case parser.SgrConcealed:
		caret.Attribute.SetConcealed(attr.On)
	case parser.SgrOverlined:
		caret.Attribute.SetOverlined(attr.On)
	case parser.SgrFont:
		caret.SetFontPage(attr.Font)
	case parser.SgrForeground:
		caret.Attribute.Foreground = s.resolveColor(attr.Color, uint8(scr.DefaultForeground()))
	case parser.SgrBackground:
		caret.Attribute.Background = s.resolveColor(attr.Color, 0)
	case parser.SgrIdeogram:
		// No ideogram attribute support.
	}
}

// resolveColor converts an SGR color into an attribute color, growing
// the palette for extended and RGB values.
func (s *ScreenSink) resolveColor(c parser.Color, def uint8) buffer.AttributeColor {
	pal := s.screen.Palette()
	switch c.Kind {
	case parser.ColorBase:
		idx := uint32(c.Index)
		if m := s.screen.MaxBaseColors(); m > 0 {
			idx %= m
		}
		return buffer.PaletteColor(uint8(idx))
	case parser.ColorExtended:
		xc := palette.XTerm256Palette[c.Index]
		return buffer.PaletteColor(uint8(pal.InsertColor(xc)))
	case parser.ColorRGB:
		return buffer.PaletteColor(uint8(pal.InsertRGB(c.R, c.G, c.B)))
	default:
		return buffer.PaletteColor(def)
	}
}

func (s *ScreenSink) setDecMode(mode parser.DecMode, on bool) {
	scr := s.screen
	ts := scr.TerminalState()
	switch mode {
	case parser.DecSmoothScroll:
		ts.SmoothScroll = on
	case parser.DecOriginMode:
		if on {
			ts.OriginMode = OriginWithinMargins
		} else {
			ts.OriginMode = OriginUpperLeft
		}
		scr.Caret().SetPosition(UpperLeftPosition(scr))
	case parser.DecAutoWrap:
		ts.AutoWrap = on
	case parser.DecX10Mouse:
		ts.MouseMode = mouseMode(on, MouseX10)
	case parser.DecCursorVisible:
		scr.Caret().Visible = on
	case parser.DecIceColors:
		ts.IceColors = on
	case parser.DecCursorBlinking:
		scr.Caret().Blinking = on
	case parser.DecLeftRightMargin:
		ts.SetUseLeftRightMargins(on)
		if !on {
			ts.ClearMarginsLeftRight()
		}
	case parser.DecVT200Mouse:
		ts.MouseMode = mouseMode(on, MouseVT200)
	case parser.DecVT200HighlightMouse:
		ts.MouseMode = mouseMode(on, MouseVT200Highlight)
	case parser.DecButtonEventMouse:
		ts.MouseMode = mouseMode(on, MouseButtonEvents)
	case parser.DecAnyEventMouse:
		ts.MouseMode = mouseMode(on, MouseAnyEvents)
	case parser.DecFocusEvent:
		ts.FocusEvents = on
	case parser.DecExtendedMouseUTF8:
		ts.MouseEncoding = mouseEncoding(on, MouseEncodingUTF8)
	case parser.DecExtendedMouseSGR:
		ts.MouseEncoding = mouseEncoding(on, MouseEncodingSGR)
	case parser.DecExtendedMouseURXVT:
		ts.MouseEncoding = mouseEncoding(on, MouseEncodingURXVT)
	case parser.DecExtendedMousePixel:
		ts.MouseEncoding = mouseEncoding(on, MouseEncodingPixel)
	case parser.DecAlternateScroll:
		// Scroll-wheel key translation happens host-side.
	}
}

func mouseMode(on bool, m MouseMode) MouseMode {
	if on {
		return m
	}
	return MouseOff
}

func mouseEncoding(on bool, e MouseEncoding) MouseEncoding {
	if on {
		return e
	}
	return MouseEncodingDefault
}

// selectFont implements CSI Ps0;Ps1 sp D. Ps1 names an ANSI font page;
// the slot that satisfied it is recorded per display combination so a
// later bold or blink change can re-select it.
func (s *ScreenSink) selectFont(combination, page int) {
	scr := s.screen
	ts := scr.TerminalState()

	slot := uint8(page)
	if scr.Font(slot) == nil {
		height := scr.FontDimensions().Height
		f := font.FromAnsiFontPage(page, height)
		if f == nil {
			ts.FontSelection = FontSelectionFailure
			s.ReportError(parser.ParseError{
				Kind:    parser.ErrInvalidParameter,
				Command: "font selection",
				Value:   fmt.Sprint(page),
			}, parser.ErrorLevelWarning)
			return
		}
		scr.SetFont(slot, f)
	}

	scr.Caret().SetFontPage(slot)
	ts.FontSelection = FontSelectionSuccess
	switch combination {
	case 0:
		ts.NormalFontSlot = int(slot)
	case 1:
		ts.BlinkFontSlot = int(slot)
	case 2:
		ts.BoldFontSlot = int(slot)
	case 3:
		ts.HighIntensityBlinkFontSlot = int(slot)
	}
}

func (s *ScreenSink) fillArea(rect parser.Rectangle, ch rune) {
	scr := s.screen
	attr := s.displayAttribute()
	top := int(rect.Top) - 1
	left := int(rect.Left) - 1
	bottom := int(rect.Bottom) - 1
	right := int(rect.Right) - 1
	if bottom < 0 || bottom >= scr.Height() {
		bottom = scr.Height() - 1
	}
	if right < 0 || right >= scr.Width() {
		right = scr.Width() - 1
	}
	for y := max(top, 0); y <= bottom; y++ {
		for x := max(left, 0); x <= right; x++ {
			scr.SetChar(buffer.Pos(x, y), buffer.NewChar(ch, attr))
		}
	}
}

func (s *ScreenSink) reportTabStops() {
	stops := s.screen.TerminalState().TabStops()
	out := "\x1bP2$u"
	for i, stop := range stops {
		if i > 0 {
			out += "/"
		}
		out += fmt.Sprint(stop + 1)
	}
	s.respond(out + "\x1b\\")
}

func (s *ScreenSink) respond(data string) {
	if s.Respond != nil {
		s.Respond([]byte(data))
	}
}

// EmitRip forwards a RIP command to the screen.
func (s *ScreenSink) EmitRip(cmd parser.RipCommand) { s.screen.HandleRip(cmd) }

// EmitSkypix forwards a SkyPix command to the screen.
func (s *ScreenSink) EmitSkypix(cmd parser.SkypixCommand) { s.screen.HandleSkypix(cmd) }

// EmitIgs forwards an IGS command to the screen.
func (s *ScreenSink) EmitIgs(cmd parser.IgsCommand) { s.screen.HandleIgs(cmd) }

// DeviceControl applies a decoded DCS string: CTerm font uploads and
// sixel images.
func (s *ScreenSink) DeviceControl(dcs parser.DeviceControl) {
	switch dcs.Kind {
	case parser.DeviceControlLoadFont:
		f, err := font.FromBytes(fmt.Sprintf("font %d", dcs.FontSlot), dcs.FontData)
		if err != nil {
			s.ReportError(parser.ParseError{
				Kind:        parser.ErrMalformedSequence,
				Description: "font upload: " + err.Error(),
			}, parser.ErrorLevelError)
			return
		}
		s.screen.SetFont(uint8(dcs.FontSlot), f)

	case parser.DeviceControlSixel:
		pos := s.screen.Caret().Position
		if s.Sixels != nil {
			s.Sixels.Enqueue(pos, dcs)
			return
		}
		sixel, err := DecodeSixel(dcs, s.screen.Palette())
		if err != nil {
			s.ReportError(parser.ParseError{
				Kind:        parser.ErrMalformedSequence,
				Description: "sixel: " + err.Error(),
			}, parser.ErrorLevelWarning)
			return
		}
		s.screen.AddSixel(pos, *sixel)
	}
}

// OperatingSystemCommand applies OSC strings: titles and hyperlinks.
func (s *ScreenSink) OperatingSystemCommand(osc parser.OsCommand) {
	switch osc.Kind {
	case parser.OscSetTitle, parser.OscSetWindowTitle, parser.OscSetIconName:
		s.Title = string(osc.Text)
	case parser.OscSetPaletteColor:
		s.screen.Palette().SetRGB(osc.Index, osc.RGB[0], osc.RGB[1], osc.RGB[2])
	case parser.OscHyperlink:
		caret := s.screen.Caret()
		if len(osc.URI) > 0 {
			s.linkOpen = true
			s.linkStart = caret.Position
			s.linkURL = string(osc.URI)
			caret.Attribute.SetUnderlined(true)
			return
		}
		// Empty URI terminates the open link.
		if s.linkOpen {
			length := caret.Position.X - s.linkStart.X
			if caret.Position.Y != s.linkStart.Y || length < 0 {
				length = 0
			}
			s.screen.AddHyperlink(buffer.HyperLink{
				URL:      s.linkURL,
				Position: s.linkStart,
				Length:   length,
			})
			s.linkOpen = false
		}
		caret.Attribute.SetUnderlined(false)
	}
}

// Aps ignores application program strings; no known producer targets
// the screen model.
func (s *ScreenSink) Aps(data []byte) {}

// Request forwards terminal queries to the host callback.
func (s *ScreenSink) Request(req parser.TerminalRequest) {
	if s.OnRequest != nil {
		s.OnRequest(req)
	}
}

// ReportError records or forwards a parse problem.
func (s *ScreenSink) ReportError(err parser.ParseError, level parser.ErrorLevel) {
	if s.OnError != nil {
		s.OnError(err, level)
		return
	}
	s.Errors = append(s.Errors, err)
}

func count(n uint16) int {
	if n == 0 {
		return 1
	}
	return int(n)
}
