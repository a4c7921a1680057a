// Copyright 2026 The Hacklace Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package matrix

import (
	"bytes"
	"strings"
	"testing"

	"github.com/ManuelHirsch/Hacklace/font"
)

func TestTermDisplay(t *testing.T) {
	var buf bytes.Buffer
	term := NewTerm(&TermOpts{Writer: &buf})
	if err := term.Display(make([]byte, DefaultWidth)); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if got := strings.Count(out, "\n"); got != font.Rows {
		t.Errorf("first frame has %d lines, want %d", got, font.Rows)
	}
	if strings.Contains(out, "\033[7A") {
		t.Error("first frame moved the cursor up")
	}

	buf.Reset()
	if err := term.Display(make([]byte, DefaultWidth)); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "\033[7A") {
		t.Error("second frame did not redraw over the first")
	}
}

func TestTermHalt(t *testing.T) {
	var buf bytes.Buffer
	term := NewTerm(&TermOpts{Writer: &buf})
	if err := term.Halt(); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "\033[0m") {
		t.Error("Halt did not reset terminal attributes")
	}
}
