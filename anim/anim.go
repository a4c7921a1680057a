// Copyright 2026 The Hacklace Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package anim holds the built-in animation images referenced from message
// bodies with '~A'..'~Z'. An image is raw column data in the same 7-bit
// format the display buffer uses; its length is a multiple of 5 so that
// playing it with a scroll increment of 5 steps through it one frame at a
// time.
package anim

// FrameWidth is the number of columns per animation frame, which is also the
// width of the display.
const FrameWidth = 5

// Count is the number of built-in animations; '~' followed by a letter at or
// beyond 'A'+Count is ignored by the decoder.
func Count() int {
	return len(images)
}

// Image returns the column data of animation index i (0 for '~A'). The
// returned slice is read-only backing data and must not be modified.
func Image(i int) ([]byte, bool) {
	if i < 0 || i >= len(images) {
		return nil, false
	}
	return images[i], true
}

var images = [][]byte{
	heartbeat,
	pulse,
	invader,
	wave,
}

// heartbeat alternates a small and a large heart.
var heartbeat = []byte{
	0x08, 0x1C, 0x38, 0x1C, 0x08,
	0x0C, 0x1E, 0x3C, 0x1E, 0x0C,
	0x08, 0x1C, 0x38, 0x1C, 0x08,
	0x0C, 0x1E, 0x3C, 0x1E, 0x0C,
	0x0C, 0x1E, 0x3C, 0x1E, 0x0C,
	0x00, 0x08, 0x18, 0x08, 0x00,
}

// pulse is a dot expanding into rings.
var pulse = []byte{
	0x00, 0x00, 0x08, 0x00, 0x00,
	0x00, 0x08, 0x14, 0x08, 0x00,
	0x08, 0x14, 0x22, 0x14, 0x08,
	0x1C, 0x22, 0x41, 0x22, 0x1C,
	0x14, 0x22, 0x41, 0x22, 0x14,
	0x00, 0x00, 0x00, 0x00, 0x00,
}

// invader is a two frame space invader wiggling its legs.
var invader = []byte{
	0x4E, 0x3B, 0x1E, 0x3B, 0x4E,
	0x1E, 0x4B, 0x3E, 0x4B, 0x1E,
	0x4E, 0x3B, 0x1E, 0x3B, 0x4E,
	0x1E, 0x4B, 0x3E, 0x4B, 0x1E,
}

// wave is a travelling ripple.
var wave = []byte{
	0x08, 0x04, 0x02, 0x04, 0x08,
	0x04, 0x02, 0x04, 0x08, 0x10,
	0x02, 0x04, 0x08, 0x10, 0x20,
	0x04, 0x08, 0x10, 0x20, 0x40,
	0x08, 0x10, 0x20, 0x40, 0x20,
	0x10, 0x20, 0x40, 0x20, 0x10,
	0x20, 0x40, 0x20, 0x10, 0x08,
	0x40, 0x20, 0x10, 0x08, 0x04,
}
