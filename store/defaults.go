// Copyright 2026 The Hacklace Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package store

// DefaultMessages is the factory message set shipped on a blank device:
// a scrolling name tag, the first built-in animation, and a bidirectional
// "I<heart>U" banner. The trailing zero is the end-of-list sentinel that
// makes the record list circular.
var DefaultMessages = []byte{
	0x35, 'H', 'A', 'C', 'K', 'L', 'A', 'C', 'E', 0,
	0x2E, '~', 'A', 0,
	0xC4, 'I', '^', 'A', 'U', 0,
	0,
}

// LoadDefaults writes the factory message set to a store whose first byte is
// still zero. A store that already holds messages is left alone.
func LoadDefaults(s Store) error {
	if s.ReadByte(0) != 0 {
		return nil
	}
	return WriteImage(s, DefaultMessages)
}
