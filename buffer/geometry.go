// Copyright © 2026 Icebox contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: buffer/geometry.go
// Summary: Cell-grid geometry primitives shared by the buffer model.
// Usage: Positions address cells (column, row); Rectangle spans are
//        half-open on the right/bottom edge unless noted.

package buffer

import "fmt"

// Position addresses a cell. Negative coordinates are legal for layer
// offsets that hang off the canvas.
type Position struct {
	X, Y int
}

func Pos(x, y int) Position { return Position{X: x, Y: y} }

func (p Position) Add(o Position) Position { return Position{p.X + o.X, p.Y + o.Y} }
func (p Position) Sub(o Position) Position { return Position{p.X - o.X, p.Y - o.Y} }

func (p Position) String() string { return fmt.Sprintf("(%d, %d)", p.X, p.Y) }

// Size is a width/height pair in cells (or pixels, for raster buffers).
type Size struct {
	Width, Height int
}

func (s Size) String() string { return fmt.Sprintf("(width: %d, height: %d)", s.Width, s.Height) }

// Rectangle is an origin plus a size.
type Rectangle struct {
	Start Position
	Size  Size
}

func Rect(x, y, width, height int) Rectangle {
	return Rectangle{Start: Position{x, y}, Size: Size{width, height}}
}

// RectFromCorners spans two inclusive corner points in any order.
func RectFromCorners(a, b Position) Rectangle {
	x1, x2 := min(a.X, b.X), max(a.X, b.X)
	y1, y2 := min(a.Y, b.Y), max(a.Y, b.Y)
	return Rect(x1, y1, x2-x1+1, y2-y1+1)
}

func (r Rectangle) Width() int  { return r.Size.Width }
func (r Rectangle) Height() int { return r.Size.Height }

func (r Rectangle) BottomRight() Position {
	return Position{r.Start.X + r.Size.Width, r.Start.Y + r.Size.Height}
}

func (r Rectangle) IsEmpty() bool { return r.Size.Width <= 0 || r.Size.Height <= 0 }

// IsInside reports whether pos lies within the half-open span.
func (r Rectangle) IsInside(pos Position) bool {
	return r.Start.X <= pos.X && r.Start.Y <= pos.Y &&
		pos.X < r.Start.X+r.Size.Width && pos.Y < r.Start.Y+r.Size.Height
}

func (r Rectangle) String() string {
	return fmt.Sprintf("(x:%d, y:%d, width: %d, height: %d)", r.Start.X, r.Start.Y, r.Size.Width, r.Size.Height)
}
