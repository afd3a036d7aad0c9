// Copyright © 2026 Icebox contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: format/sauce_test.go
// Summary: Exercises SAUCE trailer writing and parsing.
// Usage: Executed during `go test`.

package format

import (
	"bytes"
	"strings"
	"testing"
)

func TestSauceAppendAndRead(t *testing.T) {
	payload := []byte("hello art")
	s := CharacterSauce(SauceFileAnsi, 80, 25)
	s.Title = "Blocktronics"
	s.Author = "someone"
	s.Group = "blocktronics"
	s.Date = "20260823"
	s.FontName = "IBM VGA"
	s.Comments = []string{"first line", "second line"}
	s.SetIce(true)

	data := s.Append(payload)

	if !bytes.HasPrefix(data, payload) {
		t.Fatalf("payload not preserved")
	}
	if data[len(payload)] != 0x1A {
		t.Fatalf("missing EOF byte before trailer")
	}

	got, trailer := ReadSauce(data)
	if got == nil {
		t.Fatalf("record not found")
	}
	if trailer != len(data)-len(payload) {
		t.Fatalf("trailer length %d, want %d", trailer, len(data)-len(payload))
	}
	if got.Title != "Blocktronics" || got.Author != "someone" || got.Group != "blocktronics" {
		t.Fatalf("identity fields: %#v", got)
	}
	if got.Date != "20260823" || got.FontName != "IBM VGA" {
		t.Fatalf("date/font: %q %q", got.Date, got.FontName)
	}
	if got.TInfo1 != 80 || got.TInfo2 != 25 {
		t.Fatalf("dimensions: %d x %d", got.TInfo1, got.TInfo2)
	}
	if !got.UseIce() {
		t.Fatalf("ice flag lost")
	}
	if len(got.Comments) != 2 || got.Comments[0] != "first line" || got.Comments[1] != "second line" {
		t.Fatalf("comments: %#v", got.Comments)
	}
}

func TestSauceAbsent(t *testing.T) {
	if s, trailer := ReadSauce([]byte("no metadata here")); s != nil || trailer != 0 {
		t.Fatalf("found a record in plain data: %#v %d", s, trailer)
	}
	long := make([]byte, 300)
	if s, _ := ReadSauce(long); s != nil {
		t.Fatalf("found a record in zero data")
	}
}

func TestSauceFieldTruncation(t *testing.T) {
	s := &Sauce{Title: strings.Repeat("x", 60), DataType: SauceDataCharacter}
	data := s.Append(nil)

	got, _ := ReadSauce(data)
	if got == nil {
		t.Fatalf("record not found")
	}
	if got.Title != strings.Repeat("x", 35) {
		t.Fatalf("title not clamped to field width: %q", got.Title)
	}
	// Empty date is filled with the current day.
	if len(got.Date) != 8 {
		t.Fatalf("date: %q", got.Date)
	}
}

func TestSauceFileSizeRecordsPayload(t *testing.T) {
	payload := make([]byte, 1234)
	data := (&Sauce{}).Append(payload)

	rec := data[len(data)-sauceRecordSize:]
	size := uint32(rec[90]) | uint32(rec[91])<<8 | uint32(rec[92])<<16 | uint32(rec[93])<<24
	if size != 1234 {
		t.Fatalf("file size field: %d", size)
	}
}
