// Copyright 2026 The Hacklace Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package matrix

import (
	"bytes"
	"fmt"
	"image/color"
	"io"

	"github.com/maruel/ansi256"
	"github.com/mattn/go-colorable"

	"github.com/ManuelHirsch/Hacklace/font"
)

// TermOpts represents the options available for the terminal driver.
type TermOpts struct {
	// Writer receives the ANSI output. Defaults to a colorable stdout.
	Writer io.Writer
	// Palette maps LED colors to terminal colors.
	Palette *ansi256.Palette
	// On and Off override the LED colors.
	On, Off color.NRGBA

	_ struct{}
}

// Term is a dot matrix emulator that draws frames on the console using ANSI
// color blocks.
//
// Useful while you are waiting for your necklace hardware to come by mail.
type Term struct {
	w       io.Writer
	palette ansi256.Palette
	on      color.NRGBA
	off     color.NRGBA

	drawn bool
	buf   bytes.Buffer
}

// NewTerm returns a Term that displays at the console.
func NewTerm(opts *TermOpts) *Term {
	t := &Term{
		w:   colorable.NewColorableStdout(),
		on:  color.NRGBA{R: 255, G: 40, B: 40, A: 255},
		off: color.NRGBA{R: 28, G: 28, B: 28, A: 255},
	}
	p := ansi256.Default
	if opts != nil {
		if opts.Writer != nil {
			t.w = opts.Writer
		}
		if opts.Palette != nil {
			p = opts.Palette
		}
		if opts.On.A != 0 {
			t.on = opts.On
		}
		if opts.Off.A != 0 {
			t.off = opts.Off
		}
	}
	t.palette = *p
	return t
}

func (t *Term) String() string {
	return "matrix.Term"
}

// Display implements Driver. Each frame redraws over the previous one.
func (t *Term) Display(cols []byte) error {
	// This code is designed to minimize the amount of memory allocated per
	// call.
	t.buf.Reset()
	if t.drawn {
		fmt.Fprintf(&t.buf, "\033[%dA", font.Rows)
	}
	for row := 0; row < font.Rows; row++ {
		_, _ = t.buf.WriteString("\r")
		for _, c := range cols {
			px := t.off
			if c&(1<<uint(row)) != 0 {
				px = t.on
			}
			_, _ = io.WriteString(&t.buf, t.palette.Block(px))
		}
		_, _ = t.buf.WriteString("\033[0m\n")
	}
	t.drawn = true
	_, err := t.buf.WriteTo(t.w)
	return err
}

// Halt implements conn.Resource in spirit: it resets the terminal state so
// the shell prompt is not corrupted.
func (t *Term) Halt() error {
	_, err := t.w.Write([]byte("\033[0m\n"))
	return err
}

var _ Driver = &Term{}
var _ fmt.Stringer = &Term{}
