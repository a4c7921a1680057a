// Copyright 2026 The Hacklace Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package serial implements the byte-oriented protocol for loading message
// content into a Hacklace at runtime.
//
// The protocol is authenticated by the prefix 'H' followed by 'L' (append to
// the message store) or 'D' (transient direct-display mode). ESC (27) aborts
// any command and rewinds both the play and write cursors to the store base.
// Anything else returns the machine to idle; there is no error reporting
// beyond the live echo of typed bytes on the display. On real hardware the
// link runs at 2400 baud so a storage write always completes before the next
// byte arrives; bytes with framing errors are dropped by the UART before
// they reach this machine.
package serial

import (
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/ManuelHirsch/Hacklace/font"
	"github.com/ManuelHirsch/Hacklace/matrix"
	"github.com/ManuelHirsch/Hacklace/msg"
	"github.com/ManuelHirsch/Hacklace/store"
)

// Esc aborts the current command from any state.
const Esc byte = 27

// Authentication bytes.
const (
	authChar     = 'H'
	storeAuth    = 'L' // enter store-append mode
	transAuth    = 'D' // enter transient display mode
	specialChar  = '^'
	hexChar      = '$'
	escapeOffset = 63
)

type state uint8

const (
	idle state = iota
	auth
	dispSetMode
	dispChar
	eeNormal
	eeSpecial
	eeHex
)

// Display is the subset of display primitives the receiver drives, for the
// live echo side channel and the transient display mode.
type Display interface {
	Clear()
	PrintChar(c byte)
	PrintByte(b byte)
	SetScrolling(sc matrix.Scrolling)
}

// Receiver consumes the serial byte stream one byte per Feed call. It owns
// the store write cursor; the reset path additionally rewinds the player's
// play cursor.
type Receiver struct {
	st     store.Store
	disp   Display
	player *msg.Player

	mu     sync.Mutex
	state  state
	hexVal byte
	wptr   int // write cursor: next free byte to append
}

// NewReceiver returns a Receiver in the idle state with the write cursor at
// the store base.
func NewReceiver(st store.Store, disp Display, player *msg.Player) (*Receiver, error) {
	if st == nil || disp == nil || player == nil {
		return nil, errors.New("serial: store, display and player are required")
	}
	return &Receiver{st: st, disp: disp, player: player}, nil
}

// Feed processes one received byte.
func (r *Receiver) Feed(b byte) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if b == Esc {
		r.reset()
		return
	}

	// Live echo while in a typing state. Uses the state before the
	// transition; the transient display mode draws through its own arm.
	if r.state >= eeNormal {
		r.disp.Clear()
		r.disp.PrintChar(b)
	}

	switch r.state {
	case idle:
		if b == authChar {
			r.state = auth
		}
	case auth:
		switch b {
		case storeAuth:
			r.state = eeNormal
		case transAuth:
			r.state = dispSetMode
		default:
			r.state = idle
		}
	case dispSetMode:
		r.disp.Clear()
		r.disp.SetScrolling(msg.ParseMode(b).Scrolling())
		r.state = dispChar
	case dispChar:
		if b == '\r' || b == '\n' {
			r.disp.Clear()
		} else {
			r.disp.PrintChar(b)
			r.disp.PrintByte(0)
		}
	case eeNormal:
		r.feedNormal(b)
	case eeSpecial:
		r.appendByte(b + escapeOffset)
		r.state = eeNormal
	case eeHex:
		if v, ok := hexDigit(b); ok {
			r.hexVal = r.hexVal<<4 | v
			break
		}
		// Any other byte flushes the accumulated value and is then
		// handled as a normal append-mode byte itself.
		r.appendByte(r.hexVal)
		r.state = eeNormal
		r.feedNormal(b)
	}
}

// feedNormal handles one byte of store-append mode. Callers hold r.mu.
func (r *Receiver) feedNormal(b byte) {
	switch {
	case b == specialChar:
		r.state = eeSpecial
	case b == hexChar:
		r.hexVal = 0
		r.state = eeHex
	case b == '\r' || b == '\n':
		// End of record.
		r.appendByte(msg.Terminator)
	case b >= 0x20:
		r.appendByte(b)
	}
	// Other control bytes are ignored.
}

// appendByte writes b at the write cursor. A full store silently drops the
// byte; the cursor stays parked past the end.
func (r *Receiver) appendByte(b byte) {
	if err := r.st.WriteByte(r.wptr, b); err == nil {
		r.wptr++
	}
}

// reset rewinds both cursors to the store base, redisplays the logo and
// returns to idle. Callers hold r.mu.
func (r *Receiver) reset() {
	r.player.Rewind()
	r.wptr = 0
	r.disp.Clear()
	r.disp.PrintChar(font.Logo)
	r.state = idle
}

// WriteCursor returns the address of the next free byte to append.
func (r *Receiver) WriteCursor() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.wptr
}

func hexDigit(b byte) (byte, bool) {
	switch {
	case b >= '0' && b <= '9':
		return b - '0', true
	case b >= 'A' && b <= 'F':
		return b - 'A' + 10, true
	}
	return 0, false
}

// Run feeds the receiver from rd until it is exhausted or fails. It is meant
// to run on its own goroutine with the serial port as rd.
func (r *Receiver) Run(rd io.Reader) error {
	buf := make([]byte, 64)
	for {
		n, err := rd.Read(buf)
		for _, b := range buf[:n] {
			r.Feed(b)
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("serial: %w", err)
		}
	}
}
