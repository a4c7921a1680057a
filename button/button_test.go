// Copyright 2026 The Hacklace Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package button

import (
	"testing"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpiotest"
)

func set(p *gpiotest.Pin, l gpio.Level) {
	p.Lock()
	p.L = l
	p.Unlock()
}

func sample(b *Button, n int) {
	for i := 0; i < n; i++ {
		b.Sample()
	}
}

func TestNew(t *testing.T) {
	if _, err := New(nil, 10); err == nil {
		t.Error("New(nil) did not fail")
	}
	pin := &gpiotest.Pin{N: "BTN", L: gpio.High}
	b, err := New(pin, 0)
	if err != nil {
		t.Fatal(err)
	}
	if b.hold != DefaultHoldTicks {
		t.Errorf("hold = %d, want DefaultHoldTicks", b.hold)
	}
	if got := b.Next(); got != None {
		t.Errorf("Next() = %v at rest, want none", got)
	}
}

func TestShortPress(t *testing.T) {
	pin := &gpiotest.Pin{N: "BTN", L: gpio.High}
	b, err := New(pin, 10)
	if err != nil {
		t.Fatal(err)
	}

	set(pin, gpio.Low)
	sample(b, 5) // held well short of the threshold
	if got := b.State(); got != Pressed {
		t.Errorf("State() = %v while down, want pressed", got)
	}
	if got := b.Next(); got != None {
		t.Errorf("Next() = %v while down, want none", got)
	}

	set(pin, gpio.High)
	b.Sample()
	if got := b.Next(); got != Release {
		t.Errorf("Next() = %v after short press, want release", got)
	}
	if got := b.Next(); got != None {
		t.Errorf("Next() = %v again, want none (one-shot)", got)
	}
}

func TestLongPress(t *testing.T) {
	pin := &gpiotest.Pin{N: "BTN", L: gpio.High}
	b, err := New(pin, 10)
	if err != nil {
		t.Fatal(err)
	}

	set(pin, gpio.Low)
	sample(b, 20) // held past the threshold
	if got := b.State(); got != Held {
		t.Errorf("State() = %v, want held", got)
	}
	if got := b.Next(); got != Hold {
		t.Errorf("Next() = %v, want hold", got)
	}
	if got := b.Next(); got != None {
		t.Errorf("Next() = %v while still down, want none (no re-fire)", got)
	}

	// The physical let-go still reports a release; the consumer that
	// handled the hold is expected to swallow it.
	set(pin, gpio.High)
	b.Sample()
	if got := b.Next(); got != Release {
		t.Errorf("Next() = %v after let-go, want release", got)
	}
}

func TestHoldReportedBeforeRelease(t *testing.T) {
	pin := &gpiotest.Pin{N: "BTN", L: gpio.High}
	b, err := New(pin, 5)
	if err != nil {
		t.Fatal(err)
	}

	// Full long press with no consumer polling in between: both events are
	// pending, the hold must come out first.
	set(pin, gpio.Low)
	sample(b, 8)
	set(pin, gpio.High)
	b.Sample()

	if got := b.Next(); got != Hold {
		t.Errorf("first Next() = %v, want hold", got)
	}
	if got := b.Next(); got != Release {
		t.Errorf("second Next() = %v, want release", got)
	}
}

func TestUnackedEventSurvivesNextPress(t *testing.T) {
	pin := &gpiotest.Pin{N: "BTN", L: gpio.High}
	b, err := New(pin, 10)
	if err != nil {
		t.Fatal(err)
	}

	// Two quick short presses without the consumer running.
	for i := 0; i < 2; i++ {
		set(pin, gpio.Low)
		sample(b, 2)
		set(pin, gpio.High)
		b.Sample()
	}
	if got := b.Next(); got != Release {
		t.Errorf("Next() = %v, want release", got)
	}
	// The second press did not queue a second one.
	if got := b.Next(); got != None {
		t.Errorf("Next() = %v, want none", got)
	}
}

func TestCountdownRestartsPerPress(t *testing.T) {
	pin := &gpiotest.Pin{N: "BTN", L: gpio.High}
	b, err := New(pin, 10)
	if err != nil {
		t.Fatal(err)
	}

	// Two presses of 6 samples each must not add up to a long press.
	for i := 0; i < 2; i++ {
		set(pin, gpio.Low)
		sample(b, 6)
		set(pin, gpio.High)
		b.Sample()
		if got := b.Next(); got != Release {
			t.Errorf("press %d: Next() = %v, want release", i, got)
		}
	}
}

func TestReset(t *testing.T) {
	pin := &gpiotest.Pin{N: "BTN", L: gpio.High}
	b, err := New(pin, 10)
	if err != nil {
		t.Fatal(err)
	}

	set(pin, gpio.Low)
	sample(b, 20)
	b.Reset()
	if got := b.Next(); got != None {
		t.Errorf("Next() = %v after Reset, want none", got)
	}
	if got := b.State(); got != Released {
		t.Errorf("State() = %v after Reset, want released", got)
	}
}
