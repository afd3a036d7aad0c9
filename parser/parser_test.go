// Copyright © 2026 Icebox contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: parser/parser_test.go
// Summary: Shared recording sink for parser tests.
// Usage: Executed during `go test` to guard against regressions.
// Notes: Byte slices delivered to sinks alias parser buffers, so the
//        recorder copies everything it keeps.

package parser

type recordSink struct {
	text     []byte
	cmds     []TerminalCommand
	rips     []RipCommand
	skypix   []SkypixCommand
	igs      []IgsCommand
	dcs      []DeviceControl
	oscs     []OsCommand
	aps      [][]byte
	requests []TerminalRequest
	errors   []ParseError
}

func (r *recordSink) Print(text []byte) {
	r.text = append(r.text, text...)
}

func (r *recordSink) Emit(cmd TerminalCommand) {
	r.cmds = append(r.cmds, cmd)
}

func (r *recordSink) EmitRip(cmd RipCommand) {
	r.rips = append(r.rips, cmd)
}

func (r *recordSink) EmitSkypix(cmd SkypixCommand) {
	r.skypix = append(r.skypix, cmd)
}

func (r *recordSink) EmitIgs(cmd IgsCommand) {
	r.igs = append(r.igs, cmd)
}

func (r *recordSink) DeviceControl(dcs DeviceControl) {
	dcs.FontData = append([]byte(nil), dcs.FontData...)
	dcs.Data = append([]byte(nil), dcs.Data...)
	r.dcs = append(r.dcs, dcs)
}

func (r *recordSink) OperatingSystemCommand(osc OsCommand) {
	osc.Text = append([]byte(nil), osc.Text...)
	osc.Params = append([]byte(nil), osc.Params...)
	osc.URI = append([]byte(nil), osc.URI...)
	r.oscs = append(r.oscs, osc)
}

func (r *recordSink) Aps(data []byte) {
	r.aps = append(r.aps, append([]byte(nil), data...))
}

func (r *recordSink) Request(req TerminalRequest) {
	r.requests = append(r.requests, req)
}

func (r *recordSink) ReportError(err ParseError, level ErrorLevel) {
	r.errors = append(r.errors, err)
}
