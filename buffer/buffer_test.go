// Copyright © 2026 Icebox contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: buffer/buffer_test.go
// Summary: Exercises layer compositing, transparent half-block color
//          resolution, dirty tracking and tag overlays.
// Usage: Executed during `go test` to guard against regressions.

package buffer

import "testing"

func TestNewBufferDefaults(t *testing.T) {
	b := New(Size{Width: 80, Height: 25})

	if b.Width() != 80 || b.Height() != 25 {
		t.Fatalf("size: %v", b.Size())
	}
	if len(b.Layers) != 1 || b.Layers[0].Title() != "Background" {
		t.Fatalf("expected a single background layer: %#v", b.Layers)
	}
	if b.IceMode != IceUnlimited || b.FontMode != FontSauce {
		t.Fatalf("mode defaults: ice %v font %v", b.IceMode, b.FontMode)
	}
	if !b.Palette.IsDefault() {
		t.Fatalf("palette should default to DOS")
	}
	if f := b.Font(0); f == nil || !f.IsDefault() {
		t.Fatalf("slot 0 should hold the built-in font")
	}
	if !b.IsDirty() || b.Version() != 0 {
		t.Fatalf("fresh buffer: dirty %v version %d", b.IsDirty(), b.Version())
	}
}

func TestDirtyLineTracking(t *testing.T) {
	b := New(Size{Width: 10, Height: 10})

	if _, _, ok := b.TakeDirtyLines(); ok {
		t.Fatalf("fresh buffer should have no dirty line range")
	}

	b.MarkLineDirty(5)
	if b.Version() != 1 {
		t.Fatalf("version after one change: %d", b.Version())
	}
	b.MarkLinesDirty(2, 4)
	start, end, ok := b.DirtyLines()
	if !ok || start != 2 || end != 6 {
		t.Fatalf("dirty range: %d..%d ok=%v", start, end, ok)
	}

	start, end, ok = b.TakeDirtyLines()
	if !ok || start != 2 || end != 6 {
		t.Fatalf("take dirty range: %d..%d ok=%v", start, end, ok)
	}
	if _, _, ok := b.DirtyLines(); ok {
		t.Fatalf("range should be cleared after take")
	}

	b.MarkDirty()
	start, end, _ = b.DirtyLines()
	if start != 0 || end != 10 {
		t.Fatalf("full invalidation range: %d..%d", start, end)
	}
}

func TestCharAtEmptyCompositesToOpaqueBlank(t *testing.T) {
	b := New(Size{Width: 4, Height: 2})

	ch := b.CharAt(Pos(1, 1))
	if ch.Ch != ' ' || !ch.IsVisible() {
		t.Fatalf("empty cell: %#v", ch)
	}
	// The non-alpha background layer resolves transparent colors to
	// palette index 0.
	if ch.Attribute.Foreground != PaletteColor(0) || ch.Attribute.Background != PaletteColor(0) {
		t.Fatalf("empty cell colors: %#v", ch.Attribute)
	}
}

func TestHalfBlockSolidColorAsymmetry(t *testing.T) {
	b := New(Size{Width: 4, Height: 2})
	b.Layers[0].SetChar(Pos(0, 0), NewChar(HalfBlockBottom, NewAttribute(4, 1)))

	overlay := NewLayer("overlay", Size{Width: 4, Height: 2})
	overlay.Properties.HasAlphaChannel = true
	b.Layers = append(b.Layers, overlay)

	// A top half block with a transparent background takes its lower
	// half from the underlying cell's foreground.
	overlay.SetChar(Pos(0, 0), NewChar(HalfBlockTop, AttributeFromColors(PaletteColor(2), Transparent)))
	ch := b.CharAt(Pos(0, 0))
	if ch.Ch != HalfBlockTop || ch.Attribute.Foreground != PaletteColor(2) || ch.Attribute.Background != PaletteColor(4) {
		t.Fatalf("top half block: %#v", ch)
	}

	// A bottom half block swaps the assignment: background from the
	// upper color, foreground from the lower.
	overlay.SetChar(Pos(0, 0), NewChar(HalfBlockBottom, AttributeFromColors(Transparent, Transparent)))
	ch = b.CharAt(Pos(0, 0))
	if ch.Ch != HalfBlockBottom || ch.Attribute.Foreground != PaletteColor(4) || ch.Attribute.Background != PaletteColor(1) {
		t.Fatalf("bottom half block: %#v", ch)
	}
}

func TestLayerModeMerging(t *testing.T) {
	b := New(Size{Width: 4, Height: 2})
	b.Layers[0].SetChar(Pos(0, 0), NewChar('X', NewAttribute(4, 1)))

	chars := NewLayer("chars", Size{Width: 4, Height: 2})
	chars.Properties.Mode = ModeChars
	chars.SetChar(Pos(0, 0), NewChar('Y', DefaultAttribute()))
	b.Layers = append(b.Layers, chars)

	ch := b.CharAt(Pos(0, 0))
	if ch.Ch != 'Y' || ch.Attribute.ForegroundIndex() != 4 || ch.Attribute.BackgroundIndex() != 1 {
		t.Fatalf("chars mode should keep underlying attributes: %#v", ch)
	}

	attrs := NewLayer("attrs", Size{Width: 4, Height: 2})
	attrs.Properties.Mode = ModeAttributes
	attrs.SetChar(Pos(0, 0), NewChar(' ', NewAttribute(2, 3)))
	b.Layers = append(b.Layers, attrs)

	ch = b.CharAt(Pos(0, 0))
	if ch.Ch != 'Y' || ch.Attribute.ForegroundIndex() != 2 || ch.Attribute.BackgroundIndex() != 3 {
		t.Fatalf("attributes mode should keep underlying character: %#v", ch)
	}
}

func TestLayerOffsetInCompositing(t *testing.T) {
	b := New(Size{Width: 8, Height: 4})

	moved := NewLayer("moved", Size{Width: 2, Height: 2})
	moved.Properties.HasAlphaChannel = true
	moved.SetChar(Pos(0, 0), NewChar('M', DefaultAttribute()))
	moved.SetOffset(Pos(3, 1))
	b.Layers = append(b.Layers, moved)

	if ch := b.CharAt(Pos(3, 1)); ch.Ch != 'M' {
		t.Fatalf("offset layer content: %#v", ch)
	}
	if ch := b.CharAt(Pos(0, 0)); ch.Ch == 'M' {
		t.Fatalf("content must not leak outside the layer offset")
	}
}

func TestTagsOverrideCells(t *testing.T) {
	b := New(Size{Width: 10, Height: 2})
	b.Layers[0].SetChar(Pos(2, 0), NewChar('x', DefaultAttribute()))
	b.Tags = append(b.Tags, Tag{
		IsEnabled: true,
		Preview:   "AB",
		Position:  Pos(2, 0),
		Attribute: DefaultAttribute(),
	})

	if ch := b.CharAt(Pos(2, 0)); ch.Ch != 'A' {
		t.Fatalf("tag overlay: %#v", ch)
	}
	if ch := b.CharAt(Pos(3, 0)); ch.Ch != 'B' {
		t.Fatalf("tag overlay second cell: %#v", ch)
	}

	b.ShowTags = false
	if ch := b.CharAt(Pos(2, 0)); ch.Ch != 'x' {
		t.Fatalf("disabled tag display must read through: %#v", ch)
	}
}

func TestLineLength(t *testing.T) {
	b := New(Size{Width: 10, Height: 2})
	b.Layers[0].Properties.HasAlphaChannel = true

	for x := 0; x < 3; x++ {
		b.Layers[0].SetChar(Pos(x, 0), NewChar('a', DefaultAttribute()))
	}
	if got := b.LineLength(0); got != 3 {
		t.Fatalf("plain length: %d", got)
	}

	// A painted background extends the length one past the blank cell
	// that follows it.
	b.Layers[0].SetChar(Pos(3, 0), NewChar(' ', NewAttribute(7, 1)))
	if got := b.LineLength(0); got != 5 {
		t.Fatalf("background-extended length: %d", got)
	}

	// Enabled tags extend the line too.
	b.Tags = append(b.Tags, Tag{IsEnabled: true, Preview: "tag", Position: Pos(6, 0)})
	if got := b.LineLength(0); got != 9 {
		t.Fatalf("tag-extended length: %d", got)
	}

	if !b.IsLineEmpty(1) {
		t.Fatalf("untouched line should be empty")
	}
}

func TestAnalyzeFontUsage(t *testing.T) {
	b := New(Size{Width: 4, Height: 2})
	if pages := AnalyzeFontUsage(b); len(pages) != 1 || pages[0] != 0 {
		t.Fatalf("fresh buffer pages: %#v", pages)
	}

	b.Layers[0].SetChar(Pos(1, 0), NewChar('g', DefaultAttribute().WithFontPage(1)))
	pages := AnalyzeFontUsage(b)
	if len(pages) != 2 || pages[0] != 0 || pages[1] != 1 {
		t.Fatalf("pages after font switch: %#v", pages)
	}
}

func TestScanBufferFeatures(t *testing.T) {
	b := New(Size{Width: 4, Height: 2})

	attr := NewAttribute(4, 0)
	attr.SetBlinking(true)
	b.Layers[0].SetChar(Pos(0, 0), NewChar('b', attr))

	under := DefaultAttribute()
	under.SetUnderlined(true)
	b.Layers[0].SetChar(Pos(1, 0), NewChar('u', under))

	features := b.ScanBufferFeatures()
	if !features.UseColors || !features.UseBlink || !features.UseExtendedAttributes {
		t.Fatalf("features: %#v", features)
	}
	if features.UseSixels || features.HasLinks || features.UseExtendedColors {
		t.Fatalf("unexpected features: %#v", features)
	}
	if features.FontCount != 1 {
		t.Fatalf("font count: %d", features.FontCount)
	}
}

func TestUsesTrueColor(t *testing.T) {
	b := New(Size{Width: 4, Height: 2})
	if b.UsesTrueColor() {
		t.Fatalf("palette-only buffer must not report truecolor")
	}
	b.Layers[0].SetChar(Pos(0, 0), NewChar('r', AttributeFromColors(RGBColor(1, 2, 3), PaletteColor(0))))
	if !b.UsesTrueColor() {
		t.Fatalf("rgb cell must be detected")
	}
}

func TestFontTableOperations(t *testing.T) {
	b := New(Size{Width: 4, Height: 2})

	second := b.Font(0).Clone()
	second.Name = "second"
	if slot := b.AppendFont(second); slot != 1 {
		t.Fatalf("append slot: %d", slot)
	}
	if slot, ok := b.SearchFontByName("second"); !ok || slot != 1 {
		t.Fatalf("search: slot %d ok %v", slot, ok)
	}
	if slots := b.FontSlots(); len(slots) != 2 || slots[0] != 0 || slots[1] != 1 {
		t.Fatalf("slots: %#v", slots)
	}
	if !b.IsFontTableUpdated() {
		t.Fatalf("append must mark the table updated")
	}

	b.RemoveFont(1)
	if b.HasFont(1) || b.FontCount() != 1 {
		t.Fatalf("remove failed")
	}
}

func TestCloneIsIndependent(t *testing.T) {
	b := New(Size{Width: 4, Height: 2})
	b.Layers[0].SetChar(Pos(0, 0), NewChar('o', DefaultAttribute()))

	c := b.Clone()
	c.Layers[0].SetChar(Pos(0, 0), NewChar('c', DefaultAttribute()))
	c.Palette.SetRGB(1, 9, 9, 9)

	if b.Layers[0].Char(Pos(0, 0)).Ch != 'o' {
		t.Fatalf("clone write leaked into the original")
	}
	if r, g, _ := b.Palette.RGBAt(1); r == 9 && g == 9 {
		t.Fatalf("clone palette write leaked into the original")
	}
}
