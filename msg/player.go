// Copyright 2026 The Hacklace Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package msg

import (
	"sync"

	"github.com/ManuelHirsch/Hacklace/anim"
	"github.com/ManuelHirsch/Hacklace/matrix"
	"github.com/ManuelHirsch/Hacklace/store"
)

// Sink is the display primitive surface the player renders to.
// *matrix.Display implements it; tests use a recorder.
type Sink interface {
	Clear()
	PrintChar(c byte)
	PrintByte(b byte)
	Image(cols []byte)
	SetScrolling(sc matrix.Scrolling)
}

// Play decodes the message at addr and renders it to sink: it installs the
// scroll configuration from the mode byte, clears the display and emits the
// body units with a one-column blank spacer between consecutive units (never
// before the first, never inside a direct-mode run).
//
// next is the address of the following message's mode byte. wrapped reports
// that the byte after the terminator was zero, i.e. the end of the circular
// list; next is then the store base.
func Play(st store.Store, addr int, sink Sink) (next int, wrapped bool) {
	a := addr
	mode := ParseMode(st.ReadByte(a))
	a++
	sink.SetScrolling(mode.Scrolling())
	sink.Clear()

	ch := st.ReadByte(a)
	a++
	for ch != Terminator {
		switch {
		case ch == AnimMark:
			ch = st.ReadByte(a)
			a++
			if ch == AnimMark {
				sink.PrintChar(AnimMark)
			} else if img, ok := anim.Image(int(ch - 'A')); ok {
				sink.Image(img)
			}
			// An index past the animation count renders nothing.
		case ch == DirectMark:
			ch = st.ReadByte(a)
			a++
			// Zero bytes are legitimate blank columns here; only the
			// closing marker or running off the store ends the run.
			for ch != DirectMark && a <= st.Size() {
				sink.PrintByte(ch)
				ch = st.ReadByte(a)
				a++
			}
		default:
			if ch == EscapeMark {
				ch = st.ReadByte(a)
				a++
				if ch != EscapeMark {
					ch += escapeShift
				}
			}
			sink.PrintChar(ch)
		}
		ch = st.ReadByte(a)
		a++
		if ch != Terminator {
			sink.PrintByte(0)
		}
	}

	// a now points at the mode byte of the following message.
	if st.ReadByte(a) != Terminator {
		return a, false
	}
	return 0, true
}

// Player walks the circular message list of a store, rendering one message
// per Play call.
//
// The cursor always addresses the mode byte of the message about to be
// shown. It is written by the main loop (Play) and by the serial receiver's
// reset path (Rewind), hence the lock.
type Player struct {
	st   store.Store
	sink Sink

	mu     sync.Mutex
	cursor int
}

// NewPlayer returns a Player at the store base.
func NewPlayer(st store.Store, sink Sink) *Player {
	return &Player{st: st, sink: sink}
}

// Play renders the message at the cursor and advances the cursor to the next
// message, wrapping at the end-of-list sentinel.
func (p *Player) Play() {
	p.mu.Lock()
	addr := p.cursor
	p.mu.Unlock()

	next, _ := Play(p.st, addr, p.sink)

	p.mu.Lock()
	p.cursor = next
	p.mu.Unlock()
}

// Rewind moves the cursor back to the store base without rendering.
func (p *Player) Rewind() {
	p.mu.Lock()
	p.cursor = 0
	p.mu.Unlock()
}

// Restart rewinds and plays the first message, the power-on behavior.
func (p *Player) Restart() {
	p.Rewind()
	p.Play()
}

// Cursor returns the address of the message about to be shown.
func (p *Player) Cursor() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cursor
}
