// Copyright 2026 The Hacklace Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package button turns a sampled GPIO line into debounced press events.
//
// The line is active low with the internal pull-up enabled, matching the
// bare push button of the original device. Debouncing comes from periodic
// sampling rather than edge interrupts: Sample is called once per system
// tick and contact bounce settles well within one tick period.
//
// A press held for fewer than HoldTicks samples yields a single Release
// event when the button is let go. Holding past HoldTicks yields a single
// Hold event while the button is still down; the Release that follows the
// physical let-go is still reported, and the power-down path consumes it so
// one physical press never triggers both outcomes.
package button

import (
	"errors"
	"fmt"
	"sync"

	"periph.io/x/conn/v3/gpio"
)

// DefaultHoldTicks is the long-press threshold at the default 128 Hz system
// tick, about one second.
const DefaultHoldTicks = 128

// Event is a one-shot outcome of a physical press. Events are produced by
// Sample and consumed exactly once by Next; an event that has not been
// consumed yet is never overwritten by a new one of the same kind.
type Event uint8

const (
	// None means no event is pending.
	None Event = iota
	// Release fires when the button goes up.
	Release
	// Hold fires once when the button has been down for HoldTicks samples.
	Hold
)

func (e Event) String() string {
	switch e {
	case None:
		return "none"
	case Release:
		return "release"
	case Hold:
		return "hold"
	}
	return fmt.Sprintf("event(%d)", uint8(e))
}

// State is the debounced position of the button.
type State uint8

const (
	// Released means the button is up.
	Released State = iota
	// Pressed means the button is down, short of the long-press threshold.
	Pressed
	// Held means the button is down past the threshold; Hold has fired.
	Held
)

// Button samples a single active-low input line and classifies presses.
//
// Sample has a single caller, the system tick. Next and State may be called
// from other goroutines; all shared fields are guarded by mu.
type Button struct {
	pin  gpio.PinIO
	hold int

	mu        sync.Mutex
	state     State
	countdown int
	release   bool
	held      bool
}

// New returns a Button reading pin. holdTicks is the number of consecutive
// pressed samples before a Hold event; 0 selects DefaultHoldTicks.
func New(pin gpio.PinIO, holdTicks int) (*Button, error) {
	if pin == nil {
		return nil, errors.New("button: pin is required")
	}
	if holdTicks <= 0 {
		holdTicks = DefaultHoldTicks
	}
	if err := pin.In(gpio.PullUp, gpio.NoEdge); err != nil {
		return nil, fmt.Errorf("button: %w", err)
	}
	return &Button{pin: pin, hold: holdTicks}, nil
}

func (b *Button) String() string {
	return fmt.Sprintf("button(%s)", b.pin)
}

// Sample reads the line once and advances the press state machine. Call it
// on every system tick.
func (b *Button) Sample() {
	down := b.pin.Read() == gpio.Low

	b.mu.Lock()
	defer b.mu.Unlock()
	switch b.state {
	case Released:
		if down {
			b.state = Pressed
			b.countdown = b.hold
		}
	case Pressed:
		if !down {
			b.state = Released
			b.release = true
			return
		}
		b.countdown--
		if b.countdown <= 0 {
			b.state = Held
			b.held = true
		}
	case Held:
		if !down {
			b.state = Released
			b.release = true
		}
	}
}

// Next returns a pending event and marks it consumed, or None. A Hold is
// reported before a Release pending at the same time.
func (b *Button) Next() Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.held {
		b.held = false
		return Hold
	}
	if b.release {
		b.release = false
		return Release
	}
	return None
}

// State returns the debounced button position.
func (b *Button) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Reset drops pending events and forces the released state. The power-down
// sequence uses it so the press that woke the device is not replayed as a
// message advance.
func (b *Button) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.state = Released
	b.countdown = 0
	b.release = false
	b.held = false
}

// Pin returns the underlying line, for edge-triggered wake-up.
func (b *Button) Pin() gpio.PinIO {
	return b.pin
}
