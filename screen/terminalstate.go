// Copyright © 2026 Icebox contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: screen/terminalstate.go
// Summary: Mode flags, margins, tab stops and font-slot bookkeeping for
//          one terminal session.
// Notes: Margins are stored 0-based inclusive. Left/right margins only
//        take effect after DECLRMM (DEC mode 69) enables them.

package screen

import "github.com/icebox-art/icebox/buffer"

// OriginMode selects the reference corner for absolute cursor motion.
type OriginMode uint8

const (
	// OriginUpperLeft addresses rows from the screen top.
	OriginUpperLeft OriginMode = iota
	// OriginWithinMargins addresses rows from the scroll-region top.
	OriginWithinMargins
)

// MouseMode is the active xterm mouse reporting protocol.
type MouseMode uint8

const (
	MouseOff MouseMode = iota
	MouseX10
	MouseVT200
	MouseVT200Highlight
	MouseButtonEvents
	MouseAnyEvents
)

// MouseEncoding is the coordinate encoding for mouse reports.
type MouseEncoding uint8

const (
	MouseEncodingDefault MouseEncoding = iota
	MouseEncodingUTF8
	MouseEncodingSGR
	MouseEncodingURXVT
	MouseEncodingPixel
)

// FontSelectionState tracks whether CSI font selection succeeded, so
// later SGR bold/blink changes can re-select the matching slot.
type FontSelectionState uint8

const (
	FontSelectionNone FontSelectionState = iota
	FontSelectionSuccess
	FontSelectionFailure
)

const defaultTabWidth = 8

// TerminalState carries the session modes a parser sink mutates and the
// screens consult while printing and scrolling.
type TerminalState struct {
	size buffer.Size

	OriginMode   OriginMode
	AutoWrap     bool
	IceColors    bool
	InverseVideo bool
	SmoothScroll bool
	InsertMode   bool

	// NewlineMode makes CR also feed a line (used by PETSCII and some
	// BBS door streams).
	NewlineMode bool

	// IsTerminalBuffer distinguishes live-session scrolling from
	// file-load appends that grow the buffer instead.
	IsTerminalBuffer bool

	// ClearedScreen records that ED 2 ran at least once; save paths use
	// it to decide whether leading blank lines are meaningful.
	ClearedScreen bool

	MouseMode     MouseMode
	MouseEncoding MouseEncoding
	FocusEvents   bool

	FontSelection FontSelectionState
	// Font slots recorded for the four bold/blink combinations once a
	// selection succeeded.
	NormalFontSlot             int
	BoldFontSlot               int
	BlinkFontSlot              int
	HighIntensityBlinkFontSlot int

	marginsTopBottom    *[2]int
	marginsLeftRight    *[2]int
	useLeftRightMargins bool

	tabStops []int
}

// NewTerminalState returns the state for a screen of the given size
// with tab stops every eight columns.
func NewTerminalState(size buffer.Size) *TerminalState {
	ts := &TerminalState{size: size, AutoWrap: true}
	ts.ResetTabStops()
	return ts
}

func (ts *TerminalState) Size() buffer.Size     { return ts.size }
func (ts *TerminalState) Width() int            { return ts.size.Width }
func (ts *TerminalState) Height() int           { return ts.size.Height }
func (ts *TerminalState) SetSize(s buffer.Size) { ts.size = s }
func (ts *TerminalState) SetWidth(w int)        { ts.size.Width = w }
func (ts *TerminalState) SetHeight(h int)       { ts.size.Height = h }

// Reset restores the power-on state but keeps the size.
func (ts *TerminalState) Reset() {
	size := ts.size
	isTerminal := ts.IsTerminalBuffer
	*ts = TerminalState{size: size, AutoWrap: true, IsTerminalBuffer: isTerminal}
	ts.ResetTabStops()
}

// MarginsTopBottom returns the scroll region rows, 0-based inclusive.
func (ts *TerminalState) MarginsTopBottom() (top, bottom int, ok bool) {
	if ts.marginsTopBottom == nil {
		return 0, 0, false
	}
	return ts.marginsTopBottom[0], ts.marginsTopBottom[1], true
}

func (ts *TerminalState) SetMarginsTopBottom(top, bottom int) {
	ts.marginsTopBottom = &[2]int{top, bottom}
}

func (ts *TerminalState) ClearMarginsTopBottom() { ts.marginsTopBottom = nil }

// MarginsLeftRight returns the column margins, 0-based inclusive. They
// are only reported once DECLRMM enabled them.
func (ts *TerminalState) MarginsLeftRight() (left, right int, ok bool) {
	if !ts.useLeftRightMargins || ts.marginsLeftRight == nil {
		return 0, 0, false
	}
	return ts.marginsLeftRight[0], ts.marginsLeftRight[1], true
}

func (ts *TerminalState) SetMarginsLeftRight(left, right int) {
	ts.marginsLeftRight = &[2]int{left, right}
}

func (ts *TerminalState) ClearMarginsLeftRight() { ts.marginsLeftRight = nil }

func (ts *TerminalState) SetUseLeftRightMargins(on bool) { ts.useLeftRightMargins = on }
func (ts *TerminalState) UseLeftRightMargins() bool      { return ts.useLeftRightMargins }

// NeedsScrolling reports whether a scroll region restricts caret
// motion.
func (ts *TerminalState) NeedsScrolling() bool { return ts.marginsTopBottom != nil }

// InMargin reports whether pos lies inside the active margins.
func (ts *TerminalState) InMargin(pos buffer.Position) bool {
	if top, bottom, ok := ts.MarginsTopBottom(); ok {
		if pos.Y < top || pos.Y > bottom {
			return false
		}
	}
	if left, right, ok := ts.MarginsLeftRight(); ok {
		if pos.X < left || pos.X > right {
			return false
		}
	}
	return true
}

// InScrollRegion reports whether pos lies inside the vertical scroll
// region. Without a region the whole screen scrolls.
func (ts *TerminalState) InScrollRegion(pos buffer.Position) bool {
	top, bottom, ok := ts.MarginsTopBottom()
	if !ok {
		return true
	}
	return pos.Y >= top && pos.Y <= bottom
}

// Tab stop handling. The stop list is kept sorted.

func (ts *TerminalState) ResetTabStops() {
	ts.tabStops = ts.tabStops[:0]
	for x := 0; x < ts.size.Width; x += defaultTabWidth {
		ts.tabStops = append(ts.tabStops, x)
	}
}

func (ts *TerminalState) ClearTabStops() { ts.tabStops = ts.tabStops[:0] }

func (ts *TerminalState) TabStops() []int { return ts.tabStops }

func (ts *TerminalState) SetTabAt(x int) {
	for i, stop := range ts.tabStops {
		if stop == x {
			return
		}
		if stop > x {
			ts.tabStops = append(ts.tabStops, 0)
			copy(ts.tabStops[i+1:], ts.tabStops[i:])
			ts.tabStops[i] = x
			return
		}
	}
	ts.tabStops = append(ts.tabStops, x)
}

func (ts *TerminalState) RemoveTabStop(x int) {
	for i, stop := range ts.tabStops {
		if stop == x {
			ts.tabStops = append(ts.tabStops[:i], ts.tabStops[i+1:]...)
			return
		}
	}
}

// NextTabStop returns the first stop right of x, or the last column.
func (ts *TerminalState) NextTabStop(x int) int {
	for _, stop := range ts.tabStops {
		if stop > x {
			return stop
		}
	}
	return ts.size.Width - 1
}

// PrevTabStop returns the first stop left of x, or column 0.
func (ts *TerminalState) PrevTabStop(x int) int {
	for i := len(ts.tabStops) - 1; i >= 0; i-- {
		if ts.tabStops[i] < x {
			return ts.tabStops[i]
		}
	}
	return 0
}
