// Copyright 2026 The Hacklace Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package store

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
)

// File is a Store backed by a regular file. Every WriteByte is written
// through immediately, so contents survive power cycles the way the EEPROM
// of the original device does. The serial protocol runs at 2400 baud on real
// hardware precisely so that each storage write completes before the next
// byte arrives; a write-through file on a host is comfortably faster.
type File struct {
	mu   sync.Mutex
	f    *os.File
	data []byte
}

// NewFile opens or creates a file-backed store of the given capacity.
// Existing contents are loaded; a short file is padded with zero bytes.
// A size of 0 selects DefaultSize.
func NewFile(path string, size int) (*File, error) {
	if size <= 0 {
		size = DefaultSize
	}
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return nil, fmt.Errorf("store: %w", err)
	}
	data := make([]byte, size)
	// A short read leaves the tail zeroed, which is the blank-EEPROM state.
	if _, err := f.ReadAt(data, 0); err != nil && !errors.Is(err, io.EOF) {
		f.Close()
		return nil, fmt.Errorf("store: %w", err)
	}
	return &File{f: f, data: data}, nil
}

func (s *File) String() string {
	return "store.File(" + s.f.Name() + ")"
}

// ReadByte implements Store.
func (s *File) ReadByte(addr int) byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	if addr < 0 || addr >= len(s.data) {
		return 0
	}
	return s.data[addr]
}

// WriteByte implements Store.
func (s *File) WriteByte(addr int, b byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if addr < 0 || addr >= len(s.data) {
		return ErrFull
	}
	s.data[addr] = b
	if _, err := s.f.WriteAt([]byte{b}, int64(addr)); err != nil {
		return fmt.Errorf("store: %w", err)
	}
	return nil
}

// Size implements Store.
func (s *File) Size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.data)
}

// Close flushes and closes the backing file.
func (s *File) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.f.Close(); err != nil {
		return fmt.Errorf("store: %w", err)
	}
	return nil
}

var _ Store = &File{}
