// Copyright © 2026 Icebox contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: cmd/iceterm/main.go
// Summary: Pty-driven terminal session. Runs a shell, mirrors its
//          output to the real terminal while the ANSI parser keeps a
//          live screen model, and optionally records the byte stream
//          for later replay.
// Usage: iceterm [-record] [-list] [-replay id] [-speed f] [-shell sh]

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/exec"
	"os/signal"
	"syscall"

	"github.com/creack/pty"
	"github.com/rs/zerolog"
	"golang.org/x/term"

	"github.com/icebox-art/icebox/buffer"
	"github.com/icebox-art/icebox/capture"
	"github.com/icebox-art/icebox/config"
	"github.com/icebox-art/icebox/internal/logging"
	"github.com/icebox-art/icebox/parser"
	"github.com/icebox-art/icebox/screen"
)

func main() {
	configPath := flag.String("config", "", "config file (default: the user config dir)")
	record := flag.Bool("record", false, "record the session even when the config disables capture")
	list := flag.Bool("list", false, "list recorded sessions and exit")
	replay := flag.Int64("replay", 0, "replay the given session id to stdout")
	speed := flag.Float64("speed", 1, "replay speed factor, 0 disables pacing")
	shell := flag.String("shell", "", "shell to run (default: $SHELL)")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	log := logging.New("iceterm", cfg.Log.Level)

	switch {
	case *list:
		err = listSessions(cfg)
	case *replay != 0:
		err = replaySession(cfg, *replay, *speed)
	default:
		err = runShell(cfg, log, *shell, *record || cfg.Capture.Enabled)
	}
	if err != nil {
		log.Fatal().Err(err).Msg("iceterm failed")
	}
}

func loadConfig(path string) (config.Config, error) {
	if path != "" {
		return config.Load(path)
	}
	return config.LoadOrDefault()
}

func listSessions(cfg config.Config) error {
	store, err := capture.Open(cfg.Capture.DBPath)
	if err != nil {
		return err
	}
	defer store.Close()

	sessions, err := store.Sessions()
	if err != nil {
		return err
	}
	for _, s := range sessions {
		state := "open"
		if !s.ClosedAt.IsZero() {
			state = s.ClosedAt.Sub(s.StartedAt).Truncate(1e9).String()
		}
		fmt.Printf("%4d  %-20s %-8s %3dx%-3d %s  %s\n",
			s.ID, s.Title, s.Protocol, s.Width, s.Height,
			s.StartedAt.Format("2006-01-02 15:04:05"), state)
	}
	return nil
}

func replaySession(cfg config.Config, id int64, speed float64) error {
	store, err := capture.Open(cfg.Capture.DBPath)
	if err != nil {
		return err
	}
	defer store.Close()
	return store.Play(context.Background(), id, os.Stdout, speed)
}

func runShell(cfg config.Config, log zerolog.Logger, shellPath string, recording bool) error {
	if shellPath == "" {
		shellPath = os.Getenv("SHELL")
	}
	if shellPath == "" {
		shellPath = "/bin/sh"
	}

	width, height := cfg.Screen.Width, cfg.Screen.Height
	if w, h, err := term.GetSize(int(os.Stdin.Fd())); err == nil {
		width, height = w, h
	}

	cmd := exec.Command(shellPath)
	cmd.Env = append(os.Environ(), "TERM=xterm-256color")
	ptmx, err := pty.StartWithSize(cmd, &pty.Winsize{
		Cols: uint16(width),
		Rows: uint16(height),
	})
	if err != nil {
		return fmt.Errorf("start shell: %w", err)
	}
	defer ptmx.Close()

	oldState, err := term.MakeRaw(int(os.Stdin.Fd()))
	if err != nil {
		return fmt.Errorf("raw mode: %w", err)
	}
	defer term.Restore(int(os.Stdin.Fd()), oldState)

	// Live screen model fed from the same byte stream the user sees.
	ts := screen.NewTextScreen(buffer.Size{Width: width, Height: height})
	if cfg.Screen.IceColors {
		ts.TerminalState().IceColors = true
		ts.Buffer().IceMode = buffer.IceColors
	}
	sink := screen.NewSink(ts)
	sink.ParseUTF8 = true
	sink.Respond = func(data []byte) { ptmx.Write(data) }
	p := parser.NewAnsiParser()

	var recorder *capture.Recorder
	if recording {
		store, err := capture.OpenWithConfig(capture.Config{
			DBPath: cfg.Capture.DBPath,
			Logger: log,
		})
		if err != nil {
			return fmt.Errorf("open capture store: %w", err)
		}
		defer store.Close()
		recorder, err = store.Begin(capture.SessionMeta{
			Title:    shellPath,
			Protocol: "ansi",
			Width:    width,
			Height:   height,
		})
		if err != nil {
			return fmt.Errorf("begin capture: %w", err)
		}
		defer recorder.Close()
		log.Info().Int64("session", recorder.SessionID()).Msg("recording")
	}

	winch := make(chan os.Signal, 1)
	signal.Notify(winch, syscall.SIGWINCH)
	defer signal.Stop(winch)
	go func() {
		for range winch {
			if err := pty.InheritSize(os.Stdin, ptmx); err != nil {
				continue
			}
			if w, h, err := term.GetSize(int(os.Stdin.Fd())); err == nil {
				ts.SetSize(buffer.Size{Width: w, Height: h})
			}
		}
	}()

	go io.Copy(ptmx, os.Stdin)

	buf := make([]byte, 32*1024)
	for {
		n, err := ptmx.Read(buf)
		if n > 0 {
			chunk := buf[:n]
			os.Stdout.Write(chunk)
			p.Parse(chunk, sink)
			if recorder != nil {
				recorder.Write(chunk)
			}
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			// Linux ptys report EIO when the child side closes.
			break
		}
	}
	p.Flush(sink)
	cmd.Wait()

	term.Restore(int(os.Stdin.Fd()), oldState)
	log.Info().
		Str("title", sink.Title).
		Int("parse_errors", len(sink.Errors)).
		Msg("session ended")
	return nil
}
