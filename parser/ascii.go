// Copyright © 2026 Icebox contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: parser/ascii.go
// Summary: Plain ASCII parser handling only C0 controls and DEL.
// Usage: Baseline protocol for sessions without escape processing.

package parser

type controlKind uint8

const (
	ctlNone controlKind = iota
	ctlBell
	ctlBackspace
	ctlTab
	ctlLineFeed
	ctlFormFeed
	ctlCarriageReturn
	ctlDelete
)

var controlLUT = func() [256]controlKind {
	var lut [256]controlKind
	lut[0x07] = ctlBell
	lut[0x08] = ctlBackspace
	lut[0x09] = ctlTab
	lut[0x0A] = ctlLineFeed
	lut[0x0C] = ctlFormFeed
	lut[0x0D] = ctlCarriageReturn
	lut[0x7F] = ctlDelete
	return lut
}()

var controlCommands = map[controlKind]CommandKind{
	ctlBell:           CmdBell,
	ctlBackspace:      CmdBackspace,
	ctlTab:            CmdTab,
	ctlLineFeed:       CmdLineFeed,
	ctlFormFeed:       CmdFormFeed,
	ctlCarriageReturn: CmdCarriageReturn,
	ctlDelete:         CmdDelete,
}

// AsciiParser emits printable runs and the seven C0/DEL controls.
// It keeps no state between calls.
type AsciiParser struct{}

func NewAsciiParser() *AsciiParser { return &AsciiParser{} }

func (p *AsciiParser) Parse(input []byte, sink CommandSink) {
	i := 0
	for i < len(input) {
		if kind := controlLUT[input[i]]; kind != ctlNone {
			sink.Emit(TerminalCommand{Kind: controlCommands[kind]})
			i++
			continue
		}
		start := i
		for i < len(input) && controlLUT[input[i]] == ctlNone {
			i++
		}
		sink.Print(input[start:i])
	}
}

func (p *AsciiParser) Flush(CommandSink) {}
