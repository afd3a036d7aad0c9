// Copyright © 2026 Icebox contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: buffer/halfblock_test.go
// Summary: Exercises half-block classification and the synthesized
//          cell produced when one half of a cell is repainted.
// Usage: Executed during `go test` to guard against regressions.

package buffer

import "testing"

func TestHalfBlockClassification(t *testing.T) {
	attr := NewAttribute(4, 1)

	cases := []struct {
		ch           rune
		wantType     HalfBlockType
		upper, lower AttributeColor
	}{
		{HalfBlockTop, HalfBlockUpper, PaletteColor(4), PaletteColor(1)},
		{HalfBlockBottom, HalfBlockLower, PaletteColor(1), PaletteColor(4)},
		{FullBlock, HalfBlockFull, PaletteColor(4), PaletteColor(4)},
		{' ', HalfBlockEmpty, PaletteColor(1), PaletteColor(1)},
		{EmptyBlock1, HalfBlockEmpty, PaletteColor(1), PaletteColor(1)},
		{EmptyBlock2, HalfBlockEmpty, PaletteColor(1), PaletteColor(1)},
	}
	for _, c := range cases {
		hb := HalfBlockFromChar(NewChar(c.ch, attr), Pos(0, 0))
		if hb.Type != c.wantType {
			t.Fatalf("char %d: type %v want %v", c.ch, hb.Type, c.wantType)
		}
		if hb.UpperBlockColor != c.upper || hb.LowerBlockColor != c.lower {
			t.Fatalf("char %d: colors %#v", c.ch, hb)
		}
		if !hb.IsBlocky() || hb.IsVerticallyBlocky() {
			t.Fatalf("char %d: blockiness %#v", c.ch, hb)
		}
	}
}

func TestHalfBlockVerticalClassification(t *testing.T) {
	attr := NewAttribute(4, 1)

	left := HalfBlockFromChar(NewChar(LeftBlock, attr), Pos(0, 0))
	if left.Type != HalfBlockLeft || left.LeftBlockColor != PaletteColor(4) || left.RightBlockColor != PaletteColor(1) {
		t.Fatalf("left block: %#v", left)
	}
	right := HalfBlockFromChar(NewChar(RightBlock, attr), Pos(0, 0))
	if right.Type != HalfBlockRight || right.LeftBlockColor != PaletteColor(1) || right.RightBlockColor != PaletteColor(4) {
		t.Fatalf("right block: %#v", right)
	}
	if !left.IsVerticallyBlocky() || left.IsBlocky() {
		t.Fatalf("left blockiness: %#v", left)
	}
}

func TestHalfBlockSameColorsIsFull(t *testing.T) {
	attr := NewAttribute(4, 4)
	hb := HalfBlockFromChar(NewChar('Q', attr), Pos(0, 0))
	if hb.Type != HalfBlockFull || hb.UpperBlockColor != PaletteColor(4) {
		t.Fatalf("same fg/bg should classify as full: %#v", hb)
	}

	other := HalfBlockFromChar(NewChar('Q', NewAttribute(4, 1)), Pos(0, 0))
	if other.Type != HalfBlockNone {
		t.Fatalf("ordinary glyph should not be blocky: %#v", other)
	}
}

func TestHalfBlockAddressedRow(t *testing.T) {
	ch := NewChar(' ', DefaultAttribute())
	if hb := HalfBlockFromChar(ch, Pos(0, 4)); !hb.IsTop {
		t.Fatalf("even half-row addresses the upper half")
	}
	if hb := HalfBlockFromChar(ch, Pos(0, 5)); hb.IsTop {
		t.Fatalf("odd half-row addresses the lower half")
	}
}

func TestCharWithColorPaintsHalves(t *testing.T) {
	// Painting the top of a blank cell leaves the bottom untouched.
	empty := NewChar(' ', NewAttribute(7, 1))
	hb := HalfBlockFromChar(empty, Pos(0, 0))
	got := hb.CharWithColor(PaletteColor(4), false)
	if got.Ch != HalfBlockTop || got.Attribute.Foreground != PaletteColor(4) || got.Attribute.Background != PaletteColor(1) {
		t.Fatalf("paint top: %#v", got)
	}

	// Painting the other half with the color already there completes a
	// full block.
	lower := NewChar(HalfBlockBottom, NewAttribute(4, 1))
	hb = HalfBlockFromChar(lower, Pos(0, 0))
	got = hb.CharWithColor(PaletteColor(4), false)
	if got.Ch != FullBlock || got.Attribute.Foreground != PaletteColor(4) {
		t.Fatalf("complete block: %#v", got)
	}
}

func TestCharWithColorTransparentKeepsOtherHalf(t *testing.T) {
	transparent := InvisibleChar()
	hb := HalfBlockFromChar(transparent, Pos(0, 0))
	got := hb.CharWithColor(PaletteColor(4), true)
	if got.Ch != HalfBlockTop || got.Attribute.Background != Transparent {
		t.Fatalf("transparent paint: %#v", got)
	}
}

func TestOptimizeBlockRewrites(t *testing.T) {
	// Painting black over black collapses to a plain space.
	empty := NewChar(' ', NewAttribute(7, 0))
	hb := HalfBlockFromChar(empty, Pos(0, 0))
	got := hb.CharWithColor(PaletteColor(0), false)
	if got.Ch != ' ' || got.Attribute != DefaultAttribute() {
		t.Fatalf("black on black: %#v", got)
	}

	// A black foreground over a colored half flips the glyph so the
	// color moves into the foreground.
	colored := NewChar(' ', NewAttribute(7, 1))
	hb = HalfBlockFromChar(colored, Pos(0, 0))
	got = hb.CharWithColor(PaletteColor(0), false)
	if got.Ch != HalfBlockBottom || got.Attribute.Foreground != PaletteColor(1) || got.Attribute.Background != PaletteColor(0) {
		t.Fatalf("black flip: %#v", got)
	}

	// A bright background flips so the bright color becomes the
	// blink-free foreground.
	bright := NewChar(' ', NewAttribute(7, 9))
	hb = HalfBlockFromChar(bright, Pos(0, 1))
	got = hb.CharWithColor(PaletteColor(2), false)
	if got.Ch != HalfBlockTop || got.Attribute.Foreground != PaletteColor(9) || got.Attribute.Background != PaletteColor(2) {
		t.Fatalf("bright flip: %#v", got)
	}
}
