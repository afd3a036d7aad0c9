// Copyright © 2026 Icebox contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: format/sauce.go
// Summary: SAUCE 00 trailer records: the 128-byte metadata block plus
//          the optional COMNT comment lines preceding it.
// Usage: ReadSauce strips and returns a trailing record, Sauce.Append
//        writes one after the file payload.

package format

import (
	"bytes"
	"encoding/binary"
	"strings"
	"time"
)

const (
	sauceRecordSize      = 128
	sauceCommentLineSize = 64

	sauceID   = "SAUCE"
	commentID = "COMNT"
)

// SAUCE data types used by the codecs here.
const (
	SauceDataCharacter uint8 = 1
	SauceDataXBin      uint8 = 6
)

// Character file types.
const (
	SauceFileAscii uint8 = 0
	SauceFileAnsi  uint8 = 1
)

// TFlags bits for character files.
const (
	sauceFlagIce           uint8 = 0b0000_0001
	sauceFlagLetterSpacing uint8 = 0b0000_0010
	sauceFlagAspectRatio   uint8 = 0b0000_1000
)

// Sauce is a decoded SAUCE 00 record.
type Sauce struct {
	Title  string
	Author string
	Group  string

	// Date is CCYYMMDD, filled from the current day on Append when
	// empty.
	Date string

	DataType uint8
	FileType uint8

	TInfo1 uint16
	TInfo2 uint16
	TInfo3 uint16
	TInfo4 uint16

	TFlags uint8

	// FontName is the TInfoS field, e.g. "IBM VGA".
	FontName string

	Comments []string
}

// CharacterSauce builds a record describing a character-mode file of
// the given cell dimensions.
func CharacterSauce(fileType uint8, width, height int) *Sauce {
	return &Sauce{
		DataType: SauceDataCharacter,
		FileType: fileType,
		TInfo1:   uint16(width),
		TInfo2:   uint16(height),
	}
}

func (s *Sauce) UseIce() bool { return s.TFlags&sauceFlagIce != 0 }

func (s *Sauce) SetIce(on bool) {
	if on {
		s.TFlags |= sauceFlagIce
	} else {
		s.TFlags &^= sauceFlagIce
	}
}

func (s *Sauce) UseLetterSpacing() bool { return s.TFlags&sauceFlagLetterSpacing != 0 }
func (s *Sauce) UseAspectRatio() bool   { return s.TFlags&sauceFlagAspectRatio != 0 }

// ReadSauce looks for a SAUCE record at the end of data. It returns the
// decoded record and the number of trailing bytes it occupies,
// including the comment block and the EOF byte separating it from the
// payload. A missing or unrecognized trailer returns (nil, 0).
func ReadSauce(data []byte) (*Sauce, int) {
	if len(data) < sauceRecordSize {
		return nil, 0
	}
	rec := data[len(data)-sauceRecordSize:]
	if string(rec[0:5]) != sauceID {
		return nil, 0
	}

	s := &Sauce{
		Title:    trimSauceField(rec[7:42]),
		Author:   trimSauceField(rec[42:62]),
		Group:    trimSauceField(rec[62:82]),
		Date:     trimSauceField(rec[82:90]),
		DataType: rec[94],
		FileType: rec[95],
		TInfo1:   binary.LittleEndian.Uint16(rec[96:98]),
		TInfo2:   binary.LittleEndian.Uint16(rec[98:100]),
		TInfo3:   binary.LittleEndian.Uint16(rec[100:102]),
		TInfo4:   binary.LittleEndian.Uint16(rec[102:104]),
		TFlags:   rec[105],
		FontName: trimSauceField(rec[106:128]),
	}

	trailer := sauceRecordSize
	commentCount := int(rec[104])
	if commentCount > 0 {
		blockLen := len(commentID) + commentCount*sauceCommentLineSize
		start := len(data) - trailer - blockLen
		if start >= 0 && string(data[start:start+len(commentID)]) == commentID {
			for i := 0; i < commentCount; i++ {
				at := start + len(commentID) + i*sauceCommentLineSize
				s.Comments = append(s.Comments, trimSauceField(data[at:at+sauceCommentLineSize]))
			}
			trailer += blockLen
		}
	}

	// The EOF byte keeps DOS TYPE from printing the record.
	if len(data) > trailer && data[len(data)-trailer-1] == 0x1A {
		trailer++
	}
	return s, trailer
}

// Append writes the EOF byte, the comment block and the record after
// the payload and returns the grown slice. The FileSize field records
// the payload length before the trailer.
func (s *Sauce) Append(payload []byte) []byte {
	fileSize := len(payload)
	out := append(payload, 0x1A)

	if len(s.Comments) > 0 {
		out = append(out, commentID...)
		for _, line := range s.Comments {
			out = appendSauceField(out, line, sauceCommentLineSize)
		}
	}

	date := s.Date
	if date == "" {
		date = time.Now().Format("20060102")
	}

	out = append(out, sauceID...)
	out = append(out, "00"...)
	out = appendSauceField(out, s.Title, 35)
	out = appendSauceField(out, s.Author, 20)
	out = appendSauceField(out, s.Group, 20)
	out = appendSauceField(out, date, 8)
	out = binary.LittleEndian.AppendUint32(out, uint32(fileSize))
	out = append(out, s.DataType, s.FileType)
	out = binary.LittleEndian.AppendUint16(out, s.TInfo1)
	out = binary.LittleEndian.AppendUint16(out, s.TInfo2)
	out = binary.LittleEndian.AppendUint16(out, s.TInfo3)
	out = binary.LittleEndian.AppendUint16(out, s.TInfo4)
	out = append(out, uint8(len(s.Comments)), s.TFlags)
	out = appendSauceZeroField(out, s.FontName, 22)
	return out
}

func trimSauceField(raw []byte) string {
	return strings.TrimRight(string(bytes.TrimRight(raw, "\x00")), " ")
}

func appendSauceField(out []byte, value string, width int) []byte {
	b := []byte(value)
	if len(b) > width {
		b = b[:width]
	}
	out = append(out, b...)
	for i := len(b); i < width; i++ {
		out = append(out, ' ')
	}
	return out
}

func appendSauceZeroField(out []byte, value string, width int) []byte {
	b := []byte(value)
	if len(b) > width {
		b = b[:width]
	}
	out = append(out, b...)
	for i := len(b); i < width; i++ {
		out = append(out, 0)
	}
	return out
}
