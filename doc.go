// Copyright 2026 The Hacklace Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package hacklace drives a Hacklace wearable dot-matrix necklace.
//
// The Device ties the pieces together: a persistent message store, the 5x7
// scrolling matrix display, the message player, the serial programming
// protocol and a single push button. Run is the main loop; it starts asleep
// the way the original hardware does and the first button press wakes it.
//
// The sub-packages are usable on their own: matrix holds the frame buffer,
// scroll engine and the output drivers (MAX7219 over SPI, ANSI terminal),
// msg the message codec and player, serial the programming protocol, store
// the message memory, and preview an HTTP sink for development.
package hacklace
