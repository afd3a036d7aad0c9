// Copyright © 2026 Icebox contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: screen/caret.go
// Summary: Caret state shared by text and raster screens.
// Notes: The caret owns the attribute new characters are written with;
//        inverse video and ice-color promotion are applied by the sink
//        at print time, not stored here.

package screen

import (
	"github.com/icebox-art/icebox/buffer"
	"github.com/icebox-art/icebox/parser"
)

// Caret is the write cursor of a screen.
type Caret struct {
	Position  buffer.Position
	Attribute buffer.TextAttribute

	InsertMode bool
	Visible    bool
	Blinking   bool
	Shape      parser.CaretShape
}

// NewCaret returns a caret at the origin with the default attribute,
// visible and blinking.
func NewCaret() Caret {
	return Caret{
		Attribute: buffer.DefaultAttribute(),
		Visible:   true,
		Blinking:  true,
	}
}

func (c *Caret) X() int { return c.Position.X }
func (c *Caret) Y() int { return c.Position.Y }

func (c *Caret) SetPosition(pos buffer.Position) { c.Position = pos }

func (c *Caret) FontPage() uint8        { return c.Attribute.FontPage }
func (c *Caret) SetFontPage(page uint8) { c.Attribute.FontPage = page }

// Reset restores the power-on caret state.
func (c *Caret) Reset() {
	*c = NewCaret()
}

// SavedCaretState is the full-state snapshot taken by DECSC. The
// CSI s variant saves only the position and lives beside this.
type SavedCaretState struct {
	Caret      Caret
	OriginMode OriginMode
	AutoWrap   bool
}
