// Copyright 2026 The Hacklace Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package hacklace

import (
	"context"
	"errors"
	"fmt"
	"time"

	"periph.io/x/conn/v3/gpio"

	"github.com/ManuelHirsch/Hacklace/button"
	"github.com/ManuelHirsch/Hacklace/font"
	"github.com/ManuelHirsch/Hacklace/matrix"
	"github.com/ManuelHirsch/Hacklace/msg"
	"github.com/ManuelHirsch/Hacklace/serial"
	"github.com/ManuelHirsch/Hacklace/store"
)

// Opts holds the device timing configuration.
type Opts struct {
	// TickPeriod is the system tick driving scroll pacing and button
	// sampling. Defaults to 1s/128, matching the original timer rate.
	TickPeriod time.Duration

	// RefreshPeriod is how often the current frame is pushed to the
	// display driver. Defaults to 20ms.
	RefreshPeriod time.Duration

	// HoldTicks is the long-press threshold in system ticks. Defaults to
	// button.DefaultHoldTicks, about one second.
	HoldTicks int

	// GlyphHold is how long the status glyphs (sad on power-down, happy
	// on wake, logo on reset) stay on screen. Defaults to 500ms.
	GlyphHold time.Duration

	// Width is the number of display columns. Defaults to the matrix
	// package default, the 5 columns of the original device.
	Width int
}

// DefaultOpts is the configuration of the original hardware.
var DefaultOpts = Opts{
	TickPeriod:    time.Second / 128,
	RefreshPeriod: 20 * time.Millisecond,
	HoldTicks:     button.DefaultHoldTicks,
	GlyphHold:     500 * time.Millisecond,
}

// Device is a complete Hacklace: store, display, player, serial protocol
// and button, paced by Run.
type Device struct {
	st     store.Store
	disp   *matrix.Display
	player *msg.Player
	recv   *serial.Receiver
	btn    *button.Button

	tick      time.Duration
	refresh   time.Duration
	glyphHold time.Duration
}

// New wires a Device from a message store, a display driver and the button
// line. A fresh (all-zero) store is seeded with the factory message set.
func New(st store.Store, drv matrix.Driver, pin gpio.PinIO, opts *Opts) (*Device, error) {
	if st == nil {
		return nil, errors.New("hacklace: store is required")
	}
	if opts == nil {
		opts = &DefaultOpts
	}
	o := *opts
	if o.TickPeriod <= 0 {
		o.TickPeriod = DefaultOpts.TickPeriod
	}
	if o.RefreshPeriod <= 0 {
		o.RefreshPeriod = DefaultOpts.RefreshPeriod
	}
	if o.GlyphHold <= 0 {
		o.GlyphHold = DefaultOpts.GlyphHold
	}

	disp, err := matrix.New(drv, &matrix.Opts{Width: o.Width})
	if err != nil {
		return nil, fmt.Errorf("hacklace: %w", err)
	}
	btn, err := button.New(pin, o.HoldTicks)
	if err != nil {
		return nil, err
	}
	if err := store.LoadDefaults(st); err != nil {
		return nil, fmt.Errorf("hacklace: %w", err)
	}
	player := msg.NewPlayer(st, disp)
	recv, err := serial.NewReceiver(st, disp, player)
	if err != nil {
		return nil, err
	}
	return &Device{
		st:        st,
		disp:      disp,
		player:    player,
		recv:      recv,
		btn:       btn,
		tick:      o.TickPeriod,
		refresh:   o.RefreshPeriod,
		glyphHold: o.GlyphHold,
	}, nil
}

func (d *Device) String() string {
	return "hacklace"
}

// Display returns the matrix display, for direct drawing.
func (d *Device) Display() *matrix.Display {
	return d.disp
}

// Player returns the message player.
func (d *Device) Player() *msg.Player {
	return d.player
}

// Receiver returns the serial protocol machine. Feed it bytes from a port
// with Receiver().Run, typically in its own goroutine.
func (d *Device) Receiver() *serial.Receiver {
	return d.recv
}

// Run is the main loop. The device starts asleep; the first button press
// wakes it, shows the happy glyph and plays the first message. After that a
// short press advances to the next message and a long press puts the device
// back to sleep. Run returns when ctx is cancelled, with the display
// blanked.
func (d *Device) Run(ctx context.Context) error {
	if err := d.sleep(ctx); err != nil {
		return d.halt(err)
	}

	refresh := time.NewTicker(d.refresh)
	defer refresh.Stop()
	tick := time.NewTicker(d.tick)
	defer tick.Stop()

	for {
		select {
		case <-ctx.Done():
			return d.halt(ctx.Err())
		case <-refresh.C:
			if err := d.disp.Refresh(); err != nil {
				return d.halt(err)
			}
		case <-tick.C:
			d.disp.Tick()
			d.btn.Sample()
			switch d.btn.Next() {
			case button.Release:
				d.player.Play()
			case button.Hold:
				if err := d.sleep(ctx); err != nil {
					return d.halt(err)
				}
			}
		}
	}
}

// sleep is the power-down sequence: sad glyph, wait for the button to be
// let go, blank the display, then block until the next press. On wake it
// shows the happy glyph and restarts playback from the first message. The
// press that woke the device is swallowed.
func (d *Device) sleep(ctx context.Context) error {
	if d.btn.State() != button.Released {
		if err := d.showGlyph(ctx, font.Sad); err != nil {
			return err
		}
		if err := d.waitRelease(ctx); err != nil {
			return err
		}
	}
	d.btn.Reset()

	d.disp.Clear()
	if err := d.disp.Refresh(); err != nil {
		return err
	}
	d.player.Rewind()
	if err := d.waitPress(ctx); err != nil {
		return err
	}

	if err := d.showGlyph(ctx, font.Happy); err != nil {
		return err
	}
	// Let the wake press go by before resuming, so its release is not
	// replayed as a message advance.
	if err := d.waitRelease(ctx); err != nil {
		return err
	}
	d.btn.Reset()
	d.player.Restart()
	return nil
}

// waitPress blocks on a falling edge of the button line, the low-power wait
// of the original. The edge detection is disarmed again before returning so
// the sampling state machine is the only consumer of the line afterwards.
func (d *Device) waitPress(ctx context.Context) error {
	pin := d.btn.Pin()
	if err := pin.In(gpio.PullUp, gpio.FallingEdge); err != nil {
		return fmt.Errorf("hacklace: %w", err)
	}
	defer pin.In(gpio.PullUp, gpio.NoEdge)
	for {
		if pin.WaitForEdge(100 * time.Millisecond) {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
	}
}

// waitRelease samples at the tick rate until the button is up.
func (d *Device) waitRelease(ctx context.Context) error {
	t := time.NewTicker(d.tick)
	defer t.Stop()
	for {
		d.btn.Sample()
		if d.btn.State() == button.Released {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
		}
	}
}

// showGlyph displays a single glyph for the configured hold time.
func (d *Device) showGlyph(ctx context.Context, c byte) error {
	d.disp.Clear()
	d.disp.PrintChar(c)
	if err := d.disp.Refresh(); err != nil {
		return err
	}
	t := time.NewTimer(d.glyphHold)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// halt blanks the display and returns err, keeping the first failure.
func (d *Device) halt(err error) error {
	if herr := d.disp.Halt(); herr != nil && err == nil {
		return herr
	}
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
