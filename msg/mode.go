// Copyright 2026 The Hacklace Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package msg

import "github.com/ManuelHirsch/Hacklace/matrix"

// Mode is the decoded form of the mode byte that prefixes every stored
// message:
//
//	bit 7    scroll direction (0 forward-only, 1 bidirectional)
//	bit 6..4 delay level between scrolling repetitions (0 shortest)
//	bit 3    scroll increment selector (0 step 1 for text, 1 step 5 for
//	         animations)
//	bit 2..0 scroll speed level (1 slowest, 7 fastest; 0 is unused by the
//	         encoder and maps to fastest)
//
// Levels are perceptual: they go through the two conversion tables below
// rather than being used as tick counts directly.
type Mode struct {
	Bidirectional bool
	DelayLevel    uint8
	Animation     bool
	SpeedLevel    uint8
}

// speedTicks converts a speed level to the number of system ticks withheld
// between scroll steps. Roughly geometric so each level feels noticeably
// faster than the previous one. Level 0 is reserved and maps to fastest.
var speedTicks = [8]uint8{1, 64, 42, 28, 18, 11, 5, 1}

// delaySteps converts a delay level to the number of withheld scroll steps
// between repetitions.
var delaySteps = [8]uint8{0, 3, 6, 12, 24, 48, 96, 192}

// ParseMode decodes a mode byte.
func ParseMode(b byte) Mode {
	return Mode{
		Bidirectional: b&0x80 != 0,
		DelayLevel:    (b >> 4) & 0x07,
		Animation:     b&0x08 != 0,
		SpeedLevel:    b & 0x07,
	}
}

// Byte composes the stored form of m.
func (m Mode) Byte() byte {
	b := m.SpeedLevel & 0x07
	b |= (m.DelayLevel & 0x07) << 4
	if m.Animation {
		b |= 0x08
	}
	if m.Bidirectional {
		b |= 0x80
	}
	return b
}

// Increment returns the scroll increment in columns.
func (m Mode) Increment() int {
	if m.Animation {
		return 5
	}
	return 1
}

// SpeedTicks returns the system ticks between scroll steps for m.
func (m Mode) SpeedTicks() uint8 {
	return speedTicks[m.SpeedLevel&0x07]
}

// DelaySteps returns the withheld scroll steps between repetitions for m.
func (m Mode) DelaySteps() uint8 {
	return delaySteps[m.DelayLevel&0x07]
}

// Scrolling returns the display scroll configuration for m.
func (m Mode) Scrolling() matrix.Scrolling {
	return matrix.Scrolling{
		Increment:     m.Increment(),
		Bidirectional: m.Bidirectional,
		Speed:         m.SpeedTicks(),
		Delay:         m.DelaySteps(),
	}
}
