// Copyright 2026 The Hacklace Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package store provides the byte-addressable message memory of a Hacklace
// device. The persisted layout is a flat sequence of variable-length records
// [mode_byte][body...][0x00], logically circular: a record whose mode byte is
// zero marks the wrap point. There is no header and no checksum.
//
// The original device keeps this data in the 256 byte on-chip EEPROM. On a
// host the File store gives the same write-through persistence; Mem is the
// volatile equivalent for tests and previewing.
package store

import (
	"errors"
	"sync"
)

// DefaultSize is the capacity of the on-chip EEPROM of the original device.
const DefaultSize = 256

// ErrFull is returned by WriteByte for addresses past the end of storage.
// The write is a no-op; nothing outside the store is ever touched.
var ErrFull = errors.New("store: storage full")

// Store is byte-addressable persistent message memory. The base address is 0.
//
// ReadByte and WriteByte must be safe for concurrent use: the serial receiver
// appends bytes while the player may be reading.
type Store interface {
	// ReadByte returns the byte at addr. Reads outside the store return 0,
	// which the message codec treats as a terminator, so a runaway read
	// degrades to end-of-list instead of corruption.
	ReadByte(addr int) byte

	// WriteByte stores b at addr, or returns ErrFull when addr is outside
	// the store.
	WriteByte(addr int, b byte) error

	// Size returns the capacity in bytes.
	Size() int
}

// Mem is a volatile in-memory Store.
type Mem struct {
	mu   sync.Mutex
	data []byte
}

// NewMem returns a zeroed in-memory store. A size of 0 selects DefaultSize.
func NewMem(size int) *Mem {
	if size <= 0 {
		size = DefaultSize
	}
	return &Mem{data: make([]byte, size)}
}

func (m *Mem) String() string {
	return "store.Mem"
}

// ReadByte implements Store.
func (m *Mem) ReadByte(addr int) byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	if addr < 0 || addr >= len(m.data) {
		return 0
	}
	return m.data[addr]
}

// WriteByte implements Store.
func (m *Mem) WriteByte(addr int, b byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if addr < 0 || addr >= len(m.data) {
		return ErrFull
	}
	m.data[addr] = b
	return nil
}

// Size implements Store.
func (m *Mem) Size() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.data)
}

// WriteImage copies img to the store starting at the base address. It is used
// to load a factory message set or a test fixture in one call.
func WriteImage(s Store, img []byte) error {
	for i, b := range img {
		if err := s.WriteByte(i, b); err != nil {
			return err
		}
	}
	return nil
}

var _ Store = &Mem{}
