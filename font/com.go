// Copyright © 2026 Icebox contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: font/com.go
// Summary: Loader for DOS .COM loadable-font files. Recognizes PCMag
//          FontEdit and Fontraption (TSR and non-TSR) layouts by a
//          checksum of the stub header.

package font

import "fmt"

// comMinSize is the smallest file that can hold any of the known
// loader stubs.
const comMinSize = 0x64

// Stub checksums of the known editors.
const (
	comChecksumPCMag       = 0x8696
	comChecksumFontraption = 0xEF10
)

// FromCOM parses a DOS COM file containing font data.
func FromCOM(name string, data []byte) (*BitFont, error) {
	if len(data) < comMinSize {
		return nil, fmt.Errorf("com font: file too small to contain font data (%d bytes)", len(data))
	}

	var height uint8
	var dataOffset int
	switch checksum := comStubChecksum(data); {
	case checksum == comChecksumPCMag:
		// PCMag FontEdit .COM
		height, dataOffset = data[0x32], 0x63
	case checksum == comChecksumFontraption:
		// Fontraption non-TSR .COM
		height, dataOffset = data[0x15], 0x19
	case data[0x28] == 'V' && data[0x29] == 'I' && data[0x2A] == 'L' && data[0x2B] == 'E':
		// Fontraption TSR .COM
		height, dataOffset = data[0x5D], 0x63
	default:
		return nil, fmt.Errorf("com font: unknown format (not PCMag FontEdit or Fontraption)")
	}

	if height == 0 || height > MaxGlyphHeight {
		return nil, fmt.Errorf("com font: invalid font height %d (must be 1-%d)", height, MaxGlyphHeight)
	}
	fontSize := 256 * int(height)
	if len(data) < dataOffset+fontSize {
		return nil, fmt.Errorf("com font: need %d bytes for font data, file has %d", dataOffset+fontSize, len(data))
	}
	return New8(name, 8, height, data[dataOffset:dataOffset+fontSize]), nil
}

// comStubChecksum sums the first 16 bytes as little-endian words with
// wraparound, the scheme Fontraption uses to identify loader stubs.
func comStubChecksum(data []byte) uint16 {
	var sum uint16
	for i := 0; i+1 < 16; i += 2 {
		sum += uint16(data[i]) | uint16(data[i+1])<<8
	}
	return sum
}
