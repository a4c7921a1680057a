// Copyright 2026 The Hacklace Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package serial

import (
	"bytes"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/ManuelHirsch/Hacklace/font"
	"github.com/ManuelHirsch/Hacklace/matrix"
	"github.com/ManuelHirsch/Hacklace/msg"
	"github.com/ManuelHirsch/Hacklace/store"
)

// Op is one recorded display call.
type Op struct {
	Name string
	B    byte
	Sc   matrix.Scrolling
}

// fakeDisplay records display calls; it doubles as the player sink.
type fakeDisplay struct {
	ops []Op
}

func (f *fakeDisplay) Clear()           { f.ops = append(f.ops, Op{Name: "clear"}) }
func (f *fakeDisplay) PrintChar(c byte) { f.ops = append(f.ops, Op{Name: "char", B: c}) }
func (f *fakeDisplay) PrintByte(b byte) { f.ops = append(f.ops, Op{Name: "byte", B: b}) }
func (f *fakeDisplay) Image(cols []byte) {
	f.ops = append(f.ops, Op{Name: "image"})
}
func (f *fakeDisplay) SetScrolling(sc matrix.Scrolling) {
	f.ops = append(f.ops, Op{Name: "scroll", Sc: sc})
}

func newReceiver(t *testing.T, size int) (*Receiver, *store.Mem, *msg.Player, *fakeDisplay) {
	t.Helper()
	st := store.NewMem(size)
	disp := &fakeDisplay{}
	player := msg.NewPlayer(st, disp)
	r, err := NewReceiver(st, disp, player)
	if err != nil {
		t.Fatal(err)
	}
	return r, st, player, disp
}

func feed(r *Receiver, bytes ...byte) {
	for _, b := range bytes {
		r.Feed(b)
	}
}

func feedString(r *Receiver, s string) {
	feed(r, []byte(s)...)
}

func stored(st *store.Mem, n int) []byte {
	out := make([]byte, n)
	for i := range out {
		out[i] = st.ReadByte(i)
	}
	return out
}

func TestAuthSequence(t *testing.T) {
	r, st, _, _ := newReceiver(t, 0)
	// Garbage before and after a failed auth never writes.
	feedString(r, "XYZHQAB")
	if r.WriteCursor() != 0 {
		t.Errorf("write cursor = %d after garbage, want 0", r.WriteCursor())
	}
	// A real auth followed by content appends from the base.
	feedString(r, "HLA\r")
	want := []byte{'A', 0}
	if diff := cmp.Diff(want, stored(st, 2)); diff != "" {
		t.Errorf("store (-want +got):\n%s", diff)
	}
	if r.WriteCursor() != 2 {
		t.Errorf("write cursor = %d, want 2", r.WriteCursor())
	}
}

func TestAppendMessage(t *testing.T) {
	r, st, _, _ := newReceiver(t, 0)
	// Mode byte via hex literal, then text, then the record terminator.
	feedString(r, "HL$35HI\n")
	want := []byte{0x35, 'H', 'I', 0}
	if diff := cmp.Diff(want, stored(st, 4)); diff != "" {
		t.Errorf("store (-want +got):\n%s", diff)
	}
}

func TestHexLiteralBoundary(t *testing.T) {
	r, st, _, _ := newReceiver(t, 0)
	// "$41" terminated by a space: the accumulated 0x41 is appended and
	// the space is then processed as a normal printable byte.
	feedString(r, "HL$41 ")
	want := []byte{0x41, ' '}
	if diff := cmp.Diff(want, stored(st, 2)); diff != "" {
		t.Errorf("store (-want +got):\n%s", diff)
	}
	if r.WriteCursor() != 2 {
		t.Errorf("write cursor = %d, want 2", r.WriteCursor())
	}
}

func TestHexLiteralChain(t *testing.T) {
	r, st, _, _ := newReceiver(t, 0)
	// '$' terminates the previous literal and starts the next one.
	feedString(r, "HL$1F$FF\r")
	want := []byte{0x1F, 0xFF, 0}
	if diff := cmp.Diff(want, stored(st, 3)); diff != "" {
		t.Errorf("store (-want +got):\n%s", diff)
	}
}

func TestSpecialCharAppend(t *testing.T) {
	r, st, _, _ := newReceiver(t, 0)
	feedString(r, "HL^A\r")
	want := []byte{'A' + 63, 0}
	if diff := cmp.Diff(want, stored(st, 2)); diff != "" {
		t.Errorf("store (-want +got):\n%s", diff)
	}
}

func TestControlBytesIgnored(t *testing.T) {
	r, _, _, _ := newReceiver(t, 0)
	feedString(r, "HL")
	feed(r, 0x07, 0x01, 0x1F)
	if r.WriteCursor() != 0 {
		t.Errorf("write cursor = %d, want 0", r.WriteCursor())
	}
}

func TestEscResetsFromEveryState(t *testing.T) {
	// Prefixes that leave the machine in each state.
	prefixes := []string{"", "H", "HD", "HD\x35", "HL", "HL^", "HL$4"}
	for _, prefix := range prefixes {
		r, _, player, disp := newReceiver(t, 0)
		// Move the play cursor off the base first.
		_ = store.WriteImage(r.st, []byte{0x01, 'A', 0, 0x02, 'B', 0, 0})
		player.Play()
		if player.Cursor() == 0 {
			t.Fatal("play cursor did not advance")
		}

		feedString(r, prefix)
		disp.ops = nil
		r.Feed(Esc)
		if r.WriteCursor() != 0 {
			t.Errorf("prefix %q: write cursor = %d, want 0", prefix, r.WriteCursor())
		}
		if player.Cursor() != 0 {
			t.Errorf("prefix %q: play cursor = %d, want 0", prefix, player.Cursor())
		}
		want := []Op{{Name: "clear"}, {Name: "char", B: font.Logo}}
		if diff := cmp.Diff(want, disp.ops); diff != "" {
			t.Errorf("prefix %q: reset ops (-want +got):\n%s", prefix, diff)
		}

		// The machine is idle again: a fresh command works from the base.
		feedString(r, "HLZ\r")
		if got := r.st.ReadByte(0); got != 'Z' {
			t.Errorf("prefix %q: store base = 0x%02x after reset, want 'Z'", prefix, got)
		}
	}
}

func TestTransientDisplayMode(t *testing.T) {
	r, _, _, disp := newReceiver(t, 0)
	feedString(r, "HD")
	disp.ops = nil
	feed(r, 0x8C) // mode byte: bidirectional, animation increment, speed 4
	feedString(r, "A")
	feed(r, '\r')

	want := []Op{
		{Name: "clear"},
		{Name: "scroll", Sc: msg.ParseMode(0x8C).Scrolling()},
		{Name: "char", B: 'A'},
		{Name: "byte", B: 0},
		{Name: "clear"},
	}
	if diff := cmp.Diff(want, disp.ops); diff != "" {
		t.Errorf("display ops (-want +got):\n%s", diff)
	}
	// Nothing was persisted.
	if r.WriteCursor() != 0 {
		t.Errorf("write cursor = %d, want 0", r.WriteCursor())
	}
}

func TestEchoInAppendMode(t *testing.T) {
	r, _, _, disp := newReceiver(t, 0)
	feedString(r, "HL")
	disp.ops = nil
	feed(r, 'A')
	want := []Op{{Name: "clear"}, {Name: "char", B: 'A'}}
	if diff := cmp.Diff(want, disp.ops); diff != "" {
		t.Errorf("echo ops (-want +got):\n%s", diff)
	}
}

func TestNoEchoDuringAuth(t *testing.T) {
	r, _, _, disp := newReceiver(t, 0)
	feedString(r, "H")
	if len(disp.ops) != 0 {
		t.Errorf("auth bytes were echoed: %v", disp.ops)
	}
}

func TestStoreFullDegradesSilently(t *testing.T) {
	r, st, _, _ := newReceiver(t, 2)
	feedString(r, "HLABCDE\r")
	want := []byte{'A', 'B'}
	if diff := cmp.Diff(want, stored(st, 2)); diff != "" {
		t.Errorf("store (-want +got):\n%s", diff)
	}
	if r.WriteCursor() != 2 {
		t.Errorf("write cursor = %d, want 2 (parked at the end)", r.WriteCursor())
	}
}

func TestRun(t *testing.T) {
	r, st, _, _ := newReceiver(t, 0)
	if err := r.Run(bytes.NewReader([]byte("HLOK\r"))); err != nil {
		t.Fatal(err)
	}
	want := []byte{'O', 'K', 0}
	if diff := cmp.Diff(want, stored(st, 3)); diff != "" {
		t.Errorf("store (-want +got):\n%s", diff)
	}
}
