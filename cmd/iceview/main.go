// Copyright © 2026 Icebox contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: cmd/iceview/main.go
// Summary: Viewer for .ans and .xb files. Interactive tcell display
//          with scrolling and blink phases, or PNG export of the
//          software-rendered frame.
// Usage: iceview [-png out.png] [-zoom n] file

package main

import (
	"bytes"
	"flag"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gdamore/tcell/v2"
	xdraw "golang.org/x/image/draw"

	"github.com/icebox-art/icebox/buffer"
	"github.com/icebox-art/icebox/config"
	"github.com/icebox-art/icebox/format"
	"github.com/icebox-art/icebox/internal/logging"
	"github.com/icebox-art/icebox/palette"
	"github.com/icebox-art/icebox/screen"
)

var xbinMagic = []byte("XBIN\x1a")

func main() {
	pngPath := flag.String("png", "", "render to a PNG file instead of the terminal")
	zoom := flag.Int("zoom", 1, "PNG scale factor")
	configPath := flag.String("config", "", "config file (default: the user config dir)")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	log := logging.New("iceview", cfg.Log.Level)

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: iceview [-png out.png] [-zoom n] file")
		os.Exit(2)
	}
	path := flag.Arg(0)

	buf, sauce, err := loadArt(path)
	if err != nil {
		log.Fatal().Err(err).Str("file", path).Msg("load failed")
	}
	if sauce != nil && sauce.Title != "" {
		log.Info().Str("title", sauce.Title).Str("author", sauce.Author).Msg("sauce")
	}

	ts := screen.FromBuffer(buf)
	if *pngPath != "" {
		if err := exportPNG(ts, *pngPath, *zoom); err != nil {
			log.Fatal().Err(err).Msg("png export failed")
		}
		log.Info().Str("file", *pngPath).Msg("written")
		return
	}

	if err := view(ts); err != nil {
		log.Fatal().Err(err).Msg("viewer failed")
	}
}

func loadConfig(path string) (config.Config, error) {
	if path != "" {
		return config.Load(path)
	}
	return config.LoadOrDefault()
}

// loadArt decodes a file by magic first and extension second.
func loadArt(path string) (*buffer.TextBuffer, *format.Sauce, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}
	ext := strings.ToLower(filepath.Ext(path))
	if bytes.HasPrefix(data, xbinMagic) || ext == ".xb" || ext == ".xbin" {
		return format.DecodeXBin(data)
	}
	buf, sauce := format.DecodeANSI(data)
	return buf, sauce, nil
}

// exportPNG renders the screen to RGBA and scales it with the image
// stack before encoding.
func exportPNG(ts *screen.TextScreen, path string, zoom int) error {
	if zoom < 1 {
		zoom = 1
	}
	size, pixels := ts.RenderToRGBA(screen.RenderOptions{BlinkOn: true})
	src := &image.RGBA{
		Pix:    pixels,
		Stride: size.Width * 4,
		Rect:   image.Rect(0, 0, size.Width, size.Height),
	}
	img := image.Image(src)
	if zoom > 1 {
		dst := image.NewRGBA(image.Rect(0, 0, size.Width*zoom, size.Height*zoom))
		xdraw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, src.Bounds(), xdraw.Src, nil)
		img = dst
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return png.Encode(f, img)
}

// view runs the interactive tcell display.
func view(ts *screen.TextScreen) error {
	scr, err := tcell.NewScreen()
	if err != nil {
		return err
	}
	if err := scr.Init(); err != nil {
		return err
	}
	defer scr.Fini()

	quit := make(chan struct{})
	if ts.IceMode().HasBlink() {
		go func() {
			ticker := time.NewTicker(500 * time.Millisecond)
			defer ticker.Stop()
			for {
				select {
				case <-ticker.C:
					scr.PostEvent(tcell.NewEventInterrupt(nil))
				case <-quit:
					return
				}
			}
		}()
	}
	defer close(quit)

	offset := 0
	blinkOn := true
	for {
		draw(scr, ts, offset, blinkOn)
		switch ev := scr.PollEvent().(type) {
		case *tcell.EventResize:
			scr.Sync()
		case *tcell.EventInterrupt:
			blinkOn = !blinkOn
		case *tcell.EventKey:
			_, viewH := scr.Size()
			maxOffset := ts.LineCount() - viewH
			if maxOffset < 0 {
				maxOffset = 0
			}
			switch {
			case ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC || ev.Rune() == 'q':
				return nil
			case ev.Key() == tcell.KeyUp:
				offset--
			case ev.Key() == tcell.KeyDown:
				offset++
			case ev.Key() == tcell.KeyPgUp:
				offset -= viewH
			case ev.Key() == tcell.KeyPgDn:
				offset += viewH
			case ev.Key() == tcell.KeyHome:
				offset = 0
			case ev.Key() == tcell.KeyEnd:
				offset = maxOffset
			}
			if offset > maxOffset {
				offset = maxOffset
			}
			if offset < 0 {
				offset = 0
			}
		}
	}
}

// draw paints the visible cell window.
func draw(scr tcell.Screen, ts *screen.TextScreen, offset int, blinkOn bool) {
	scr.Clear()
	viewW, viewH := scr.Size()
	buf := ts.Buffer()
	blinkHides := buf.IceMode.HasBlink() && !blinkOn

	for y := 0; y < viewH && y+offset < ts.LineCount(); y++ {
		for x := 0; x < viewW && x < ts.Width(); x++ {
			ch := buf.CharAt(buffer.Pos(x, y+offset))
			attr := ch.Attribute

			fr, fg, fb := cellRGB(ts, attr.Foreground, attr.IsBold())
			br, bg, bb := cellRGB(ts, attr.Background, false)
			style := tcell.StyleDefault.
				Foreground(tcell.NewRGBColor(int32(fr), int32(fg), int32(fb))).
				Background(tcell.NewRGBColor(int32(br), int32(bg), int32(bb)))

			r := format.UnicodeFromCP437(ch.Ch)
			if attr.IsConcealed() || (attr.IsBlinking() && blinkHides) {
				r = ' '
			}
			scr.SetContent(x, y, r, nil, style)
		}
	}
	scr.Show()
}

// cellRGB resolves an attribute color the same way the rasterizer
// does: bold promotes the low palette half.
func cellRGB(ts *screen.TextScreen, c buffer.AttributeColor, bold bool) (uint8, uint8, uint8) {
	switch {
	case c.IsRGB():
		return c.RGB()
	case c.IsExtended():
		xc := palette.XTerm256Palette[c.Index()]
		return xc.R, xc.G, xc.B
	case c.IsTransparent():
		return 0, 0, 0
	default:
		idx := int(c.Index())
		if bold && idx < 8 {
			idx += 8
		}
		return ts.Palette().RGBAt(idx)
	}
}
