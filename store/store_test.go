// Copyright 2026 The Hacklace Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package store

import (
	"errors"
	"path/filepath"
	"testing"
)

func TestMemBounds(t *testing.T) {
	m := NewMem(4)
	if m.Size() != 4 {
		t.Errorf("Size() = %d, want 4", m.Size())
	}
	if err := m.WriteByte(3, 0xAB); err != nil {
		t.Error(err)
	}
	if got := m.ReadByte(3); got != 0xAB {
		t.Errorf("ReadByte(3) = 0x%02x, want 0xab", got)
	}
	// Writes past the end must be rejected no-ops.
	if err := m.WriteByte(4, 0xFF); !errors.Is(err, ErrFull) {
		t.Errorf("WriteByte(4) err = %v, want ErrFull", err)
	}
	if err := m.WriteByte(-1, 0xFF); !errors.Is(err, ErrFull) {
		t.Errorf("WriteByte(-1) err = %v, want ErrFull", err)
	}
	// Reads past the end decode as a terminator.
	if got := m.ReadByte(4); got != 0 {
		t.Errorf("ReadByte(4) = 0x%02x, want 0", got)
	}
}

func TestDefaultSize(t *testing.T) {
	if got := NewMem(0).Size(); got != DefaultSize {
		t.Errorf("NewMem(0).Size() = %d, want %d", got, DefaultSize)
	}
}

func TestWriteImage(t *testing.T) {
	m := NewMem(8)
	img := []byte{1, 2, 3, 4}
	if err := WriteImage(m, img); err != nil {
		t.Fatal(err)
	}
	for i, want := range img {
		if got := m.ReadByte(i); got != want {
			t.Errorf("ReadByte(%d) = %d, want %d", i, got, want)
		}
	}
	if err := WriteImage(m, make([]byte, 9)); !errors.Is(err, ErrFull) {
		t.Errorf("oversized image err = %v, want ErrFull", err)
	}
}

func TestLoadDefaults(t *testing.T) {
	m := NewMem(0)
	if err := LoadDefaults(m); err != nil {
		t.Fatal(err)
	}
	if m.ReadByte(0) == 0 {
		t.Error("defaults not loaded into blank store")
	}
	// A store that already has content is not clobbered.
	m2 := NewMem(0)
	_ = m2.WriteByte(0, 0x11)
	_ = m2.WriteByte(1, 0x22)
	if err := LoadDefaults(m2); err != nil {
		t.Fatal(err)
	}
	if got := m2.ReadByte(1); got != 0x22 {
		t.Errorf("ReadByte(1) = 0x%02x, want 0x22", got)
	}
}

func TestFilePersistence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "messages.bin")
	f, err := NewFile(path, 16)
	if err != nil {
		t.Fatal(err)
	}
	if err := f.WriteByte(0, 0x35); err != nil {
		t.Error(err)
	}
	if err := f.WriteByte(15, 0x99); err != nil {
		t.Error(err)
	}
	if err := f.WriteByte(16, 0x01); !errors.Is(err, ErrFull) {
		t.Errorf("WriteByte(16) err = %v, want ErrFull", err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}

	// Reopen and verify the contents survived.
	f2, err := NewFile(path, 16)
	if err != nil {
		t.Fatal(err)
	}
	defer f2.Close()
	if got := f2.ReadByte(0); got != 0x35 {
		t.Errorf("ReadByte(0) = 0x%02x, want 0x35", got)
	}
	if got := f2.ReadByte(15); got != 0x99 {
		t.Errorf("ReadByte(15) = 0x%02x, want 0x99", got)
	}
	if got := f2.ReadByte(7); got != 0 {
		t.Errorf("ReadByte(7) = 0x%02x, want 0", got)
	}
}
