// Copyright © 2026 Icebox contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: screen/sixel.go
// Summary: Sixel payload decoder and the worker goroutine that keeps
//          decoding off the parse path.
// Usage: DecodeSixel for synchronous use; SixelWorker when a shared
//        screen is driven live.
// Notes: The worker owns its goroutine and channel; Enqueue never
//        blocks, a full queue drops the frame.

package screen

import (
	"errors"
	"sync"

	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/icebox-art/icebox/buffer"
	"github.com/icebox-art/icebox/palette"
	"github.com/icebox-art/icebox/parser"
)

// ErrEmptySixel reports a payload with no pixel data.
var ErrEmptySixel = errors.New("sixel: empty payload")

// DecodeSixel turns a sixel DCS payload into an RGBA image. The first
// 16 color registers default to the screen palette; the stream may
// redefine any register.
func DecodeSixel(dcs parser.DeviceControl, pal *palette.Palette) (*buffer.Sixel, error) {
	width, height := measureSixel(dcs.Data)
	if width == 0 || height == 0 {
		return nil, ErrEmptySixel
	}

	registers := make(map[int][3]uint8, 16)
	for i := 0; i < 16 && i < pal.Len(); i++ {
		r, g, b := pal.RGBAt(i)
		registers[i] = [3]uint8{r, g, b}
	}

	pixels := make([]byte, width*height*4)
	for i := 0; i < len(pixels); i += 4 {
		pixels[i] = dcs.Background[0]
		pixels[i+1] = dcs.Background[1]
		pixels[i+2] = dcs.Background[2]
		pixels[i+3] = 0xFF
	}

	var x, y, color, repeat int
	data := dcs.Data
	for i := 0; i < len(data); i++ {
		b := data[i]
		switch {
		case b == '"':
			// Raster attributes; sizes were handled by measureSixel.
			i = skipSixelParams(data, i)
		case b == '#':
			var params []int
			params, i = readSixelParams(data, i)
			if len(params) == 0 {
				break
			}
			color = params[0]
			if len(params) >= 5 {
				registers[color] = sixelColor(params[1], params[2], params[3], params[4])
			}
		case b == '!':
			var params []int
			params, i = readSixelParams(data, i)
			if len(params) > 0 {
				repeat = params[0]
			}
		case b == '$':
			x = 0
		case b == '-':
			x = 0
			y += 6
		case b >= '?' && b <= '~':
			n := max(repeat, 1)
			repeat = 0
			bits := b - '?'
			rgb := registers[color]
			for ; n > 0; n-- {
				for bit := 0; bit < 6; bit++ {
					if bits&(1<<bit) == 0 {
						continue
					}
					py := y + bit
					if x >= width || py >= height {
						continue
					}
					off := (py*width + x) * 4
					pixels[off] = rgb[0]
					pixels[off+1] = rgb[1]
					pixels[off+2] = rgb[2]
					pixels[off+3] = 0xFF
				}
				x++
			}
		}
	}

	return &buffer.Sixel{
		VerticalScale:   max(dcs.VerticalScale, 1),
		HorizontalScale: 1,
		Width:           width,
		Height:          height,
		Data:            pixels,
	}, nil
}

// measureSixel runs the cursor movements without painting to find the
// image extent. Raster attributes give a lower bound only; data may
// exceed them.
func measureSixel(data []byte) (width, height int) {
	var x, y, repeat int
	for i := 0; i < len(data); i++ {
		b := data[i]
		switch {
		case b == '"':
			var params []int
			params, i = readSixelParams(data, i)
			if len(params) >= 4 {
				width = max(width, params[2])
				height = max(height, params[3])
			}
		case b == '#', b == '!':
			var params []int
			params, i = readSixelParams(data, i)
			if b == '!' && len(params) > 0 {
				repeat = params[0]
			}
		case b == '$':
			x = 0
		case b == '-':
			x = 0
			y += 6
		case b >= '?' && b <= '~':
			x += max(repeat, 1)
			repeat = 0
			width = max(width, x)
			height = max(height, y+6)
		}
	}
	return width, height
}

// readSixelParams reads the semicolon list after the introducer at i,
// returning the index of the last consumed byte.
func readSixelParams(data []byte, i int) ([]int, int) {
	params := []int{}
	value, have := 0, false
	j := i + 1
	for ; j < len(data); j++ {
		b := data[j]
		if b >= '0' && b <= '9' {
			value = value*10 + int(b-'0')
			have = true
			continue
		}
		if b == ';' {
			params = append(params, value)
			value, have = 0, false
			continue
		}
		break
	}
	if have {
		params = append(params, value)
	}
	return params, j - 1
}

func skipSixelParams(data []byte, i int) int {
	_, end := readSixelParams(data, i)
	return end
}

// sixelColor resolves a register definition. System 2 carries RGB
// percentages, system 1 HLS degrees and percentages.
func sixelColor(system, px, py, pz int) [3]uint8 {
	switch system {
	case 2:
		return [3]uint8{
			uint8(px * 255 / 100),
			uint8(py * 255 / 100),
			uint8(pz * 255 / 100),
		}
	case 1:
		c := colorful.Hsl(float64(px), float64(pz)/100, float64(py)/100)
		r, g, b := c.RGB255()
		return [3]uint8{r, g, b}
	}
	return [3]uint8{}
}

// SharedScreen guards one editable screen for use from multiple
// goroutines (parser feed, renderer, sixel worker).
type SharedScreen struct {
	mu     sync.Mutex
	screen EditableScreen
}

func NewShared(screen EditableScreen) *SharedScreen {
	return &SharedScreen{screen: screen}
}

// WithLock runs fn with exclusive access to the screen.
func (s *SharedScreen) WithLock(fn func(EditableScreen)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.screen)
}

// Version reads the change counter.
func (s *SharedScreen) Version() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.screen.Version()
}

// RenderToRGBA renders under the lock.
func (s *SharedScreen) RenderToRGBA(opts RenderOptions) (buffer.Size, []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.screen.RenderToRGBA(opts)
}

type sixelJob struct {
	pos buffer.Position
	dcs parser.DeviceControl
}

// SixelWorker decodes sixel payloads on its own goroutine and applies
// the images to a shared screen.
type SixelWorker struct {
	shared *SharedScreen
	jobs   chan sixelJob
	done   chan struct{}
}

// NewSixelWorker starts a worker with a bounded queue.
func NewSixelWorker(shared *SharedScreen, queueLen int) *SixelWorker {
	w := &SixelWorker{
		shared: shared,
		jobs:   make(chan sixelJob, max(queueLen, 1)),
		done:   make(chan struct{}),
	}
	go w.run()
	return w
}

// Enqueue hands a payload to the worker. The DCS data is copied since
// it aliases parser buffers. A full queue drops the frame; blocking
// here could stall the parse loop that holds the screen lock.
func (w *SixelWorker) Enqueue(pos buffer.Position, dcs parser.DeviceControl) {
	dcs.Data = append([]byte(nil), dcs.Data...)
	select {
	case w.jobs <- sixelJob{pos: pos, dcs: dcs}:
	default:
	}
}

// Close stops the worker after draining queued jobs.
func (w *SixelWorker) Close() {
	close(w.jobs)
	<-w.done
}

func (w *SixelWorker) run() {
	defer close(w.done)
	for job := range w.jobs {
		var pal *palette.Palette
		w.shared.WithLock(func(s EditableScreen) {
			pal = s.Palette().Clone()
		})
		sixel, err := DecodeSixel(job.dcs, pal)
		if err != nil {
			continue
		}
		w.shared.WithLock(func(s EditableScreen) {
			s.AddSixel(job.pos, *sixel)
		})
	}
}
