// Copyright © 2026 Icebox contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: parser/sink.go
// Summary: CommandSink and CommandParser contracts plus parse errors.
// Usage: Screens implement CommandSink; every protocol parser implements
//        CommandParser.
// Notes: NopSink gives test and partial sinks a no-op base to embed.

package parser

import "fmt"

// ErrorLevel classifies a reported parse error.
type ErrorLevel uint8

const (
	ErrorLevelWarning ErrorLevel = iota
	ErrorLevelError
)

// ParseErrorKind classifies ParseError.
type ParseErrorKind uint8

const (
	// ErrInvalidParameter: a parameter value is out of range for a command.
	ErrInvalidParameter ParseErrorKind = iota
	// ErrIncompleteSequence: the input ended inside a sequence.
	ErrIncompleteSequence
	// ErrMalformedSequence: the sequence cannot be interpreted at all.
	ErrMalformedSequence
)

// ParseError describes a recoverable parsing problem. Parsers report it
// through the sink and continue; they never fail the parse call.
type ParseError struct {
	Kind        ParseErrorKind
	Command     string
	Value       string
	Description string
}

func (e ParseError) Error() string {
	switch e.Kind {
	case ErrInvalidParameter:
		return fmt.Sprintf("invalid parameter %s for %s", e.Value, e.Command)
	case ErrIncompleteSequence:
		return fmt.Sprintf("incomplete sequence: %s", e.Description)
	default:
		return fmt.Sprintf("malformed sequence: %s", e.Description)
	}
}

func invalidParameter(command string, value uint16) ParseError {
	return ParseError{Kind: ErrInvalidParameter, Command: command, Value: fmt.Sprint(value)}
}

func malformedSequence(description string) ParseError {
	return ParseError{Kind: ErrMalformedSequence, Description: description}
}

// TerminalRequest asks the host to answer a query from the remote
// side, usually by writing a response back to the wire.
type TerminalRequest uint8

const (
	// RequestRipTerminalID is the RIPscrip version query (ESC[0!).
	RequestRipTerminalID TerminalRequest = iota
)

// CommandSink receives the structured output of a parser. Byte slices
// handed to the sink alias the parser's input or scratch buffers and
// are only valid for the duration of the call.
type CommandSink interface {
	// Print delivers a contiguous run of displayable bytes.
	Print(text []byte)
	// Emit delivers one decoded terminal command.
	Emit(cmd TerminalCommand)
	// EmitRip delivers one decoded RIP vector-graphics command.
	EmitRip(cmd RipCommand)
	// EmitSkypix delivers one decoded SkyPix command.
	EmitSkypix(cmd SkypixCommand)
	// EmitIgs delivers one decoded IGS command.
	EmitIgs(cmd IgsCommand)
	// DeviceControl delivers a decoded DCS string.
	DeviceControl(dcs DeviceControl)
	// OperatingSystemCommand delivers a decoded OSC string.
	OperatingSystemCommand(osc OsCommand)
	// Aps delivers a raw application program string (ESC _ … ESC \).
	Aps(data []byte)
	// Request asks the host to answer a terminal query.
	Request(req TerminalRequest)
	// ReportError reports a recoverable parse problem. Parsing continues.
	ReportError(err ParseError, level ErrorLevel)
}

// CommandParser is a resumable byte-stream parser. Input may be split
// at arbitrary byte boundaries across calls; the parser keeps whatever
// pending state it needs between calls.
type CommandParser interface {
	Parse(input []byte, sink CommandSink)
	// Flush resets any pending mid-sequence state.
	Flush(sink CommandSink)
}

// NopSink implements CommandSink with no-ops. Embed it to implement
// only the callbacks a sink cares about.
type NopSink struct{}

func (NopSink) Print([]byte)                        {}
func (NopSink) Emit(TerminalCommand)                {}
func (NopSink) EmitRip(RipCommand)                  {}
func (NopSink) EmitSkypix(SkypixCommand)            {}
func (NopSink) EmitIgs(IgsCommand)                  {}
func (NopSink) DeviceControl(DeviceControl)         {}
func (NopSink) OperatingSystemCommand(OsCommand)    {}
func (NopSink) Aps([]byte)                          {}
func (NopSink) Request(TerminalRequest)             {}
func (NopSink) ReportError(ParseError, ErrorLevel)  {}
