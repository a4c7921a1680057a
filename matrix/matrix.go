// Copyright 2026 The Hacklace Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package matrix implements the column buffer and scroll engine of the
// Hacklace 5x7 dot matrix display.
//
// Message content is rendered into an off-screen column buffer via
// PrintChar, PrintByte and Image. A window of Width columns is pushed to an
// output Driver on every Refresh (the fast display tick), while Tick (the
// slower system tick) paces scrolling: it counts down the configured speed
// and then moves the window by the configured increment, honouring scroll
// direction and the pause between repetitions.
package matrix

import (
	"errors"
	"sync"

	"github.com/ManuelHirsch/Hacklace/font"
)

// DefaultWidth is the column count of the physical display.
const DefaultWidth = 5

// Driver is the output side of the display: it receives one visible frame of
// column data per Refresh. cols always has the configured width; bit 0 of a
// column is the top row, bit 6 the bottom row.
type Driver interface {
	Display(cols []byte) error
}

// Scrolling is the decoded per-message display configuration produced from a
// mode byte.
type Scrolling struct {
	// Increment is the number of columns the window moves per scroll step:
	// 1 for text, 5 for animation playback.
	Increment int
	// Bidirectional selects ping-pong scrolling instead of forward-only.
	Bidirectional bool
	// Speed is the number of system ticks between scroll steps.
	Speed uint8
	// Delay is the number of withheld scroll steps between repetitions.
	Delay uint8
}

// Opts configures a Display.
type Opts struct {
	// Width is the number of visible columns. Defaults to DefaultWidth.
	Width int

	_ struct{}
}

// Display is the dot matrix display engine.
//
// Refresh and Tick are called from the scheduler goroutines while message
// rendering happens on the main loop and serial echo on the receiver
// goroutine; all state is guarded by one mutex, the host equivalent of the
// original's interrupt masking.
type Display struct {
	drv   Driver
	width int

	mu       sync.Mutex
	buf      []byte // rendered message columns
	pos      int    // window origin into buf
	back     bool   // scrolling backwards (bidirectional return leg)
	sc       Scrolling
	speedCnt uint8 // ticks until the next scroll step
	delayCnt uint8 // withheld steps remaining at a repetition boundary
}

// New returns a Display pushing frames to drv.
func New(drv Driver, opts *Opts) (*Display, error) {
	if drv == nil {
		return nil, errors.New("matrix: driver is required")
	}
	width := DefaultWidth
	if opts != nil && opts.Width > 0 {
		width = opts.Width
	}
	return &Display{drv: drv, width: width, sc: Scrolling{Increment: 1}}, nil
}

// Width returns the number of visible columns.
func (d *Display) Width() int {
	return d.width
}

// Clear discards the rendered content and rewinds the scroll window. The
// blank frame reaches the device on the next Refresh.
func (d *Display) Clear() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.buf = d.buf[:0]
	d.rewind()
}

// PrintChar renders the glyph for a character code at the end of the buffer.
func (d *Display) PrintChar(c byte) {
	g := font.Glyph(c)
	d.mu.Lock()
	defer d.mu.Unlock()
	d.buf = append(d.buf, g[:]...)
}

// PrintByte appends one raw column. Bit 7 is not displayable and is masked.
func (d *Display) PrintByte(b byte) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.buf = append(d.buf, b&0x7F)
}

// Image appends pre-rendered column data, e.g. an animation image.
func (d *Display) Image(cols []byte) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, b := range cols {
		d.buf = append(d.buf, b&0x7F)
	}
}

// SetScrolling installs the scroll configuration of the message about to be
// rendered and rewinds the window.
func (d *Display) SetScrolling(sc Scrolling) {
	if sc.Increment < 1 {
		sc.Increment = 1
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.sc = sc
	d.rewind()
}

// rewind resets the scroll state. Callers hold d.mu.
func (d *Display) rewind() {
	d.pos = 0
	d.back = false
	d.speedCnt = d.sc.Speed
	d.delayCnt = 0
}

// Tick advances the scroll pacing by one system tick: the speed counter runs
// down and a scroll step is taken when it expires.
func (d *Display) Tick() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.speedCnt > 0 {
		d.speedCnt--
		return
	}
	d.speedCnt = d.sc.Speed
	d.step()
}

// step moves the window one scroll increment. Callers hold d.mu.
func (d *Display) step() {
	end := len(d.buf) - d.width
	if end <= 0 {
		// Content fits on the display; nothing to scroll.
		return
	}
	if d.delayCnt > 0 {
		d.delayCnt--
		return
	}
	if d.back {
		d.pos -= d.sc.Increment
		if d.pos <= 0 {
			d.pos = 0
			d.back = false
			d.delayCnt = d.sc.Delay
		}
		return
	}
	d.pos += d.sc.Increment
	if d.sc.Bidirectional {
		if d.pos >= end {
			d.pos = end
			d.back = true
			d.delayCnt = d.sc.Delay
		}
	} else if d.pos > end {
		// The window showed the final columns last step; restart.
		d.pos = 0
		d.delayCnt = d.sc.Delay
	}
}

// Frame returns a copy of the currently visible columns.
func (d *Display) Frame() []byte {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.frame()
}

// frame assembles the visible window. Callers hold d.mu.
func (d *Display) frame() []byte {
	cols := make([]byte, d.width)
	for i := range cols {
		if j := d.pos + i; j >= 0 && j < len(d.buf) {
			cols[i] = d.buf[j]
		}
	}
	return cols
}

// Refresh pushes the visible window to the output driver. It is driven by
// the fast display tick.
func (d *Display) Refresh() error {
	d.mu.Lock()
	cols := d.frame()
	d.mu.Unlock()
	return d.drv.Display(cols)
}

// Halt clears the display and stops the output driver if it supports it.
func (d *Display) Halt() error {
	d.Clear()
	if err := d.Refresh(); err != nil {
		return err
	}
	if h, ok := d.drv.(interface{ Halt() error }); ok {
		return h.Halt()
	}
	return nil
}
