// Copyright © 2026 Icebox contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: parser/igs_test.go
// Summary: Exercises IGS command decoding, the loop tokenizer and the
//          Atari VT52 dialect around it.
// Usage: Executed during `go test` to guard against regressions.

package parser

import "testing"

func TestIgsBox(t *testing.T) {
	p := NewIgsParser()
	sink := &recordSink{}
	p.Parse([]byte("G#B>0,0,100,80,0:"), sink)

	if len(sink.igs) != 1 {
		t.Fatalf("got %d commands, want 1: %#v", len(sink.igs), sink.igs)
	}
	c := sink.igs[0]
	if c.Kind != IgsBox || c.X != 0 || c.Y != 0 || c.X2 != 100 || c.Y2 != 80 || c.Rounded {
		t.Fatalf("unexpected box: %#v", c)
	}
}

func TestIgsWriteText(t *testing.T) {
	p := NewIgsParser()
	sink := &recordSink{}
	p.Parse([]byte("G#W 10,20,Hello world@"), sink)

	if len(sink.igs) != 1 {
		t.Fatalf("got %d commands, want 1", len(sink.igs))
	}
	c := sink.igs[0]
	if c.Kind != IgsWriteText || c.X != 10 || c.Y != 20 || c.Text != "Hello world" {
		t.Fatalf("unexpected text: %#v", c)
	}
}

func TestIgsPolyLine(t *testing.T) {
	p := NewIgsParser()
	sink := &recordSink{}
	p.Parse([]byte("G#z 3,0,0,10,10,20,0:"), sink)

	if len(sink.igs) != 1 {
		t.Fatalf("got %d commands, want 1: %#v", len(sink.igs), sink.igs)
	}
	c := sink.igs[0]
	want := []int{0, 0, 10, 10, 20, 0}
	if c.Kind != IgsPolyLine || len(c.Points) != len(want) {
		t.Fatalf("unexpected polyline: %#v", c)
	}
	for i, v := range want {
		if c.Points[i] != v {
			t.Fatalf("point %d = %d, want %d", i, c.Points[i], v)
		}
	}
}

func TestIgsChainedCommands(t *testing.T) {
	p := NewIgsParser()
	sink := &recordSink{}
	p.Parse([]byte("G#C 1,3:L 0,0,639,199:"), sink)

	if len(sink.igs) != 2 {
		t.Fatalf("got %d commands, want 2: %#v", len(sink.igs), sink.igs)
	}
	if sink.igs[0].Kind != IgsColorSet || sink.igs[0].Pen != 1 || sink.igs[0].Color != 3 {
		t.Fatalf("unexpected colorset: %#v", sink.igs[0])
	}
	if sink.igs[1].Kind != IgsLine || sink.igs[1].X2 != 639 || sink.igs[1].Y2 != 199 {
		t.Fatalf("unexpected line: %#v", sink.igs[1])
	}
}

func TestIgsSplitAcrossCalls(t *testing.T) {
	p := NewIgsParser()
	sink := &recordSink{}
	p.Parse([]byte("G#O 100,"), sink)
	p.Parse([]byte("50,25:"), sink)

	if len(sink.igs) != 1 {
		t.Fatalf("got %d commands, want 1: %#v", len(sink.igs), sink.igs)
	}
	c := sink.igs[0]
	if c.Kind != IgsCircle || c.X != 100 || c.Y != 50 || c.Radius != 25 {
		t.Fatalf("unexpected circle: %#v", c)
	}
}

func TestIgsChipMusic(t *testing.T) {
	p := NewIgsParser()
	sink := &recordSink{}
	p.Parse([]byte("G#n 1,2,3,4,500,6:"), sink)

	if len(sink.igs) != 1 {
		t.Fatalf("got %d commands, want 1", len(sink.igs))
	}
	c := sink.igs[0]
	if c.Kind != IgsChipMusic || c.Sound != 1 || c.Voice != 2 || c.Volume != 3 ||
		c.Pitch != 4 || c.Timing != 500 || c.StopType != 6 {
		t.Fatalf("unexpected chip music: %#v", c)
	}
}

func TestIgsSoundSubCommands(t *testing.T) {
	p := NewIgsParser()
	sink := &recordSink{}
	p.Parse([]byte("G#b 20,1,2,3,0,4,5:b 21:"), sink)

	if len(sink.igs) != 2 {
		t.Fatalf("got %d commands, want 2: %#v", len(sink.igs), sink.igs)
	}
	c := sink.igs[0]
	if c.Kind != IgsAlterSoundEffect || c.PlayFlag != 1 || c.SndNum != 2 ||
		c.ElementNum != 3 || c.Thousands != 4 || c.Hundreds != 5 {
		t.Fatalf("unexpected sound alteration: %#v", c)
	}
	if sink.igs[1].Kind != IgsStopAllSound {
		t.Fatalf("unexpected stop: %#v", sink.igs[1])
	}
}

func TestIgsExtendedSetColorRegister(t *testing.T) {
	p := NewIgsParser()
	sink := &recordSink{}
	p.Parse([]byte("G#X 1,3,1911:"), sink)

	if len(sink.igs) != 1 {
		t.Fatalf("got %d commands, want 1", len(sink.igs))
	}
	c := sink.igs[0]
	if c.Kind != IgsSetColorRegister || c.Register != 3 || c.Value != 1911 {
		t.Fatalf("unexpected register: %#v", c)
	}
}

func TestIgsRandomParameters(t *testing.T) {
	p := NewIgsParser()
	sink := &recordSink{}
	p.Parse([]byte("G#X 2,0,0,639,199:L 0,0,r,R:\n"), sink)

	if len(sink.errors) != 0 {
		t.Fatalf("unexpected parse errors: %v", sink.errors)
	}
	if len(sink.igs) != 2 {
		t.Fatalf("got %d commands, want 2: %#v", len(sink.igs), sink.igs)
	}
	rng := sink.igs[0]
	if rng.Kind != IgsSetRandomRange || len(rng.Params) != 4 {
		t.Fatalf("unexpected range command: %#v", rng)
	}
	line := sink.igs[1]
	if line.Kind != IgsLine || line.X != 0 || line.Y != 0 {
		t.Fatalf("unexpected line: %#v", line)
	}
	if line.X2 != IgsRandomSmall || line.Y2 != IgsRandomBig {
		t.Fatalf("placeholders not preserved: %#v", line)
	}
}

func TestIgsDefineZoneWithString(t *testing.T) {
	p := NewIgsParser()
	sink := &recordSink{}
	p.Parse([]byte("G#X 4,1,10,10,50,50,5,hello:"), sink)

	if len(sink.igs) != 1 {
		t.Fatalf("got %d commands, want 1: %#v", len(sink.igs), sink.igs)
	}
	c := sink.igs[0]
	if c.Kind != IgsDefineZone || c.ZoneID != 1 || c.X != 10 || c.Y != 10 ||
		c.X2 != 50 || c.Y2 != 50 || c.Length != 5 || c.Text != "hello" {
		t.Fatalf("unexpected zone: %#v", c)
	}
}

func TestIgsLoop(t *testing.T) {
	p := NewIgsParser()
	sink := &recordSink{}
	p.Parse([]byte("G#&>0,639,5,0,L,4,x,0,y,199:"), sink)

	if len(sink.igs) != 1 {
		t.Fatalf("got %d commands, want 1: %#v", len(sink.igs), sink.igs)
	}
	c := sink.igs[0]
	if c.Kind != IgsLoop || c.Loop == nil {
		t.Fatalf("expected a loop: %#v", c)
	}
	l := c.Loop
	if l.From != 0 || l.To != 639 || l.Step != 5 || l.Delay != 0 {
		t.Fatalf("unexpected loop bounds: %#v", l)
	}
	if l.Target.Chain || l.Target.Single != 'L' {
		t.Fatalf("unexpected target: %#v", l.Target)
	}
	if l.ParamCount != 4 || len(l.Params) != 4 {
		t.Fatalf("unexpected parameter list: %#v", l.Params)
	}
	if l.Params[0].Kind != LoopTokenSymbol || l.Params[0].Symbol != 'x' {
		t.Fatalf("first token should be x: %#v", l.Params[0])
	}
	if l.Params[3].Kind != LoopTokenNumber || l.Params[3].Number != 199 {
		t.Fatalf("last token should be 199: %#v", l.Params[3])
	}
}

func TestIgsLoopChainGang(t *testing.T) {
	p := NewIgsParser()
	sink := &recordSink{}
	p.Parse([]byte("G#& 0,10,1,0,>LD@,4,x,0,y,199:"), sink)

	if len(sink.igs) != 1 {
		t.Fatalf("got %d commands, want 1: %#v", len(sink.igs), sink.igs)
	}
	target := sink.igs[0].Loop.Target
	if !target.Chain || string(target.Commands) != "LD" || target.Raw != ">LD@" {
		t.Fatalf("unexpected chain gang: %#v", target)
	}
}

func TestIgsVt52Basics(t *testing.T) {
	p := NewIgsParser()
	sink := &recordSink{}
	p.Parse([]byte("\x1bE"), sink)

	if len(sink.cmds) != 2 {
		t.Fatalf("got %d commands, want 2: %#v", len(sink.cmds), sink.cmds)
	}
	if sink.cmds[0].Kind != CmdEraseInDisplay || sink.cmds[0].EraseDisplay != EraseDisplayAll {
		t.Fatalf("expected full clear: %#v", sink.cmds[0])
	}
	if sink.cmds[1].Kind != CmdCursorPosition {
		t.Fatalf("clear should home the cursor: %#v", sink.cmds[1])
	}
}

func TestIgsVt52CursorAddress(t *testing.T) {
	p := NewIgsParser()
	sink := &recordSink{}
	p.Parse([]byte("\x1bY!$"), sink)

	if len(sink.cmds) != 1 {
		t.Fatalf("got %d commands, want 1: %#v", len(sink.cmds), sink.cmds)
	}
	c := sink.cmds[0]
	if c.Kind != CmdCursorPosition || c.N != 2 || c.M != 5 {
		t.Fatalf("unexpected cursor address: %#v", c)
	}
}

func TestIgsVt52Colors(t *testing.T) {
	p := NewIgsParser()
	sink := &recordSink{}
	p.Parse([]byte{0x1B, 'b', 0x03}, sink)

	if len(sink.cmds) != 1 {
		t.Fatalf("got %d commands, want 1: %#v", len(sink.cmds), sink.cmds)
	}
	if sink.cmds[0].Sgr.Kind != SgrForeground || sink.cmds[0].Sgr.Color != BaseColor(3) {
		t.Fatalf("unexpected foreground: %#v", sink.cmds[0].Sgr)
	}
}

func TestIgsReverseVideoSwapsColorTargets(t *testing.T) {
	p := NewIgsParser()
	sink := &recordSink{}
	p.Parse([]byte{0x1B, 'p', 0x1B, 'b', 0x03}, sink)

	if len(sink.cmds) != 1 {
		t.Fatalf("got %d commands, want 1: %#v", len(sink.cmds), sink.cmds)
	}
	if sink.cmds[0].Sgr.Kind != SgrBackground {
		t.Fatalf("reverse video should set the background instead: %#v", sink.cmds[0].Sgr)
	}
}

func TestIgsDirectColorBytes(t *testing.T) {
	p := NewIgsParser()
	sink := &recordSink{}
	p.Parse([]byte{0x05}, sink)

	if len(sink.cmds) != 1 || sink.cmds[0].Sgr.Kind != SgrForeground ||
		sink.cmds[0].Sgr.Color != BaseColor(5) {
		t.Fatalf("TOS color byte should set the foreground: %#v", sink.cmds)
	}
}

func TestIgsCommandLineSwallowsNewline(t *testing.T) {
	p := NewIgsParser()
	sink := &recordSink{}
	p.Parse([]byte("G#s 0:\nok"), sink)

	if len(sink.igs) != 1 || sink.igs[0].Kind != IgsScreenClear {
		t.Fatalf("expected screen clear: %#v", sink.igs)
	}
	for _, c := range sink.cmds {
		if c.Kind == CmdLineFeed {
			t.Fatalf("the line feed ending a command line must not scroll")
		}
	}
	if string(sink.text) != "ok" {
		t.Fatalf("printed %q, want %q", sink.text, "ok")
	}
}

func TestIgsFalseAlarmPrintsG(t *testing.T) {
	p := NewIgsParser()
	sink := &recordSink{}
	p.Parse([]byte("Go"), sink)

	if string(sink.text) != "Go" {
		t.Fatalf("printed %q, want %q", sink.text, "Go")
	}
}

func TestIgsSetPenColor(t *testing.T) {
	p := NewIgsParser()
	sink := &recordSink{}
	p.Parse([]byte("G#S 2,7,0,0:"), sink)

	if len(sink.igs) != 1 {
		t.Fatalf("got %d commands, want 1", len(sink.igs))
	}
	c := sink.igs[0]
	if c.Kind != IgsSetPenColor || c.Pen != 2 || c.Red != 7 || c.Green != 0 || c.Blue != 0 {
		t.Fatalf("unexpected pen color: %#v", c)
	}
}

func TestIgsTextColorPenSelection(t *testing.T) {
	p := NewIgsParser()
	sink := &recordSink{}
	p.Parse([]byte("G#c 1,3:c 0,2:"), sink)

	if len(sink.igs) != 2 {
		t.Fatalf("got %d commands, want 2: %#v", len(sink.igs), sink.igs)
	}
	if sink.igs[0].Kind != IgsSetForeground || sink.igs[0].Color != 3 {
		t.Fatalf("unexpected foreground: %#v", sink.igs[0])
	}
	if sink.igs[1].Kind != IgsSetBackground || sink.igs[1].Color != 2 {
		t.Fatalf("unexpected background: %#v", sink.igs[1])
	}
}
